// Package validator implements static scope checks over yap programs.
package validator

import (
	"fmt"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/diagnostics"
)

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.bindings[name] {
			return true
		}
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type validator struct {
	diags []diagnostics.Diagnostic
}

// Validate checks program for duplicate parameters and unbound names.
// globals lists the names the runtime binds before the program starts.
// A name declared anywhere in an enclosing block counts as bound, since a
// closure may run after a later let.
func Validate(program *ast.Program, globals []string) []diagnostics.Diagnostic {
	v := &validator{}
	root := newScope(nil)
	for _, name := range globals {
		root.add(name)
	}
	v.validateBlock(program.Body, newScope(root))
	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span, hint string) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &span, hint))
}

// hoist records the names a block declares directly.
func hoist(stmts []ast.Stmt, sc *scope) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			sc.add(s.Name)
		case *ast.FunctionDecl:
			sc.add(s.Name)
		}
	}
}

func (v *validator) validateBlock(stmts []ast.Stmt, sc *scope) {
	hoist(stmts, sc)
	for _, stmt := range stmts {
		v.validateStmt(stmt, sc)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt, sc *scope) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		v.validateExpr(s.Init, sc)

	case *ast.FunctionDecl:
		fnScope := newScope(sc)
		seen := make(map[string]bool, len(s.Params))
		for _, param := range s.Params {
			if seen[param] {
				v.addDiag(diagnostics.EDupParam,
					fmt.Sprintf("duplicate parameter '%s' in function '%s'", param, s.Name),
					s.Span, "rename one of the parameters")
			}
			seen[param] = true
			fnScope.add(param)
		}
		v.validateBlock(s.Body.Body, fnScope)

	case *ast.BlockStmt:
		v.validateBlock(s.Body, newScope(sc))

	case *ast.IfStmt:
		v.validateExpr(s.Test, sc)
		v.validateBlock(s.Consequent.Body, newScope(sc))
		if s.Alternate != nil {
			v.validateStmt(s.Alternate, sc)
		}

	case *ast.WhileStmt:
		v.validateExpr(s.Test, sc)
		v.validateBlock(s.Body.Body, newScope(sc))

	case *ast.ForStmt:
		loopScope := newScope(sc)
		if s.Init != nil {
			if decl, ok := s.Init.(*ast.VarDecl); ok {
				loopScope.add(decl.Name)
			}
			v.validateStmt(s.Init, loopScope)
		}
		v.validateExpr(s.Test, loopScope)
		v.validateExpr(s.Update, loopScope)
		v.validateBlock(s.Body.Body, newScope(loopScope))

	case *ast.ReturnStmt:
		v.validateExpr(s.Argument, sc)

	case *ast.ExprStmt:
		v.validateExpr(s.Expr, sc)

	case *ast.BreakStmt, *ast.ContinueStmt:
		// checked by the parser
	}
}

func (v *validator) checkBound(id *ast.Identifier, sc *scope) {
	if !sc.has(id.Name) {
		v.addDiag(diagnostics.EUnbound, fmt.Sprintf("unbound variable '%s'", id.Name),
			id.Span, "declare it with let before use")
	}
}

func (v *validator) validateExpr(expr ast.Expr, sc *scope) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *ast.NumberLiteral, *ast.StringLiteral, *ast.BooleanLiteral:

	case *ast.Identifier:
		v.checkBound(e, sc)

	case *ast.ArrayExpr:
		for _, elem := range e.Elements {
			v.validateExpr(elem, sc)
		}

	case *ast.BinaryExpr:
		v.validateExpr(e.Left, sc)
		v.validateExpr(e.Right, sc)

	case *ast.LogicalExpr:
		v.validateExpr(e.Left, sc)
		v.validateExpr(e.Right, sc)

	case *ast.UnaryExpr:
		v.validateExpr(e.Operand, sc)

	case *ast.AssignExpr:
		v.validateExpr(e.Value, sc)
		v.checkBound(e.Target, sc)

	case *ast.UpdateExpr:
		v.checkBound(e.Target, sc)

	case *ast.CallExpr:
		v.validateExpr(e.Callee, sc)
		for _, arg := range e.Args {
			v.validateExpr(arg, sc)
		}

	case *ast.MemberExpr:
		v.validateExpr(e.Object, sc)
		if e.Computed {
			v.validateExpr(e.Property, sc)
		}
	}
}
