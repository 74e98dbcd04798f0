// Package formatter prints yap ASTs back to source in one of several dialects.
package formatter

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/evaluator"
	"github.com/thomasrohde/yap/pkg/lexer"
)

const indent = "  "

// Dialect selects the keyword and built-in spelling of the output.
type Dialect string

const (
	DialectStandard   Dialect = "standard"
	DialectSlang      Dialect = "slang"
	DialectJavaScript Dialect = "javascript"
)

// ParseDialect maps a flag value to a Dialect. The empty string is standard.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case "", DialectStandard:
		return DialectStandard, nil
	case DialectSlang, DialectJavaScript:
		return Dialect(s), nil
	}
	return "", fmt.Errorf("unknown dialect %q (want standard, slang or javascript)", s)
}

// Options configures Format.
type Options struct {
	Dialect Dialect
}

// slangSpelling maps canonical keywords to one slang spelling.
// When several slang words share a meaning the alphabetically first wins.
var slangSpelling = func() map[string]string {
	words := make([]string, 0, len(lexer.SlangKeywords))
	for word := range lexer.SlangKeywords {
		words = append(words, word)
	}
	sort.Strings(words)
	out := make(map[string]string)
	for _, word := range words {
		canonical := lexer.SlangKeywords[word]
		if _, ok := out[canonical]; !ok {
			out[canonical] = word
		}
	}
	return out
}()

var builtinRenames = map[Dialect]map[string]string{
	DialectSlang: {
		"print": "yapping",
		"Math":  "nerdShit",
	},
	DialectJavaScript: {
		"print":    "console.log",
		"yapping":  "console.log",
		"nerdShit": "Math",
	},
}

// Precedence levels, loosest first.
const (
	precAssign = iota + 1
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
	precPrimary
)

var binaryPrecedence = map[ast.BinaryOp]int{
	ast.OpEq: precEquality, ast.OpNotEq: precEquality,
	ast.OpStrictEq: precEquality, ast.OpStrictNeq: precEquality,
	ast.OpLt: precRelational, ast.OpGt: precRelational,
	ast.OpLtEq: precRelational, ast.OpGtEq: precRelational,
	ast.OpAdd: precAdditive, ast.OpSub: precAdditive,
	ast.OpMul: precMultiplicative, ast.OpDiv: precMultiplicative, ast.OpMod: precMultiplicative,
}

func precedence(e ast.Expr) int {
	switch expr := e.(type) {
	case *ast.AssignExpr:
		return precAssign
	case *ast.LogicalExpr:
		if expr.Op == ast.OpOr {
			return precOr
		}
		return precAnd
	case *ast.BinaryExpr:
		return binaryPrecedence[expr.Op]
	case *ast.UnaryExpr:
		return precUnary
	case *ast.UpdateExpr:
		return precPostfix
	case *ast.CallExpr, *ast.MemberExpr:
		return precCall
	}
	return precPrimary
}

// scope tracks names the program itself declares, so that a user binding
// called print is never renamed to a built-in.
type scope struct {
	names  map[string]bool
	parent *scope
}

func (s *scope) declared(name string) bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.names[name] {
			return true
		}
	}
	return false
}

type printer struct {
	dialect Dialect
	renames map[string]string
	sb      strings.Builder
}

// Format pretty-prints a yap AST. The output ends with a newline unless the
// program is empty.
func Format(program *ast.Program, opts Options) string {
	dialect := opts.Dialect
	if dialect == "" {
		dialect = DialectStandard
	}
	p := &printer{dialect: dialect, renames: builtinRenames[dialect]}
	sc := p.enter(program.Body, nil)
	for i, stmt := range program.Body {
		if i > 0 && (isFunction(stmt) || isFunction(program.Body[i-1])) {
			p.sb.WriteString("\n")
		}
		p.stmt(stmt, 0, sc)
	}
	return p.sb.String()
}

func isFunction(s ast.Stmt) bool {
	_, ok := s.(*ast.FunctionDecl)
	return ok
}

func (p *printer) enter(stmts []ast.Stmt, parent *scope) *scope {
	sc := &scope{names: make(map[string]bool), parent: parent}
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDecl:
			sc.names[s.Name] = true
		case *ast.FunctionDecl:
			sc.names[s.Name] = true
		}
	}
	return sc
}

func (p *printer) keyword(canonical string) string {
	if p.dialect == DialectSlang {
		if word, ok := slangSpelling[canonical]; ok {
			return word
		}
	}
	return canonical
}

func (p *printer) line(depth int, text string) {
	p.sb.WriteString(strings.Repeat(indent, depth))
	p.sb.WriteString(text)
	p.sb.WriteString("\n")
}

func (p *printer) stmt(s ast.Stmt, depth int, sc *scope) {
	switch stmt := s.(type) {
	case *ast.VarDecl:
		p.line(depth, p.varDecl(stmt, sc)+";")

	case *ast.FunctionDecl:
		fnScope := &scope{names: make(map[string]bool), parent: sc}
		for _, param := range stmt.Params {
			fnScope.names[param] = true
		}
		header := fmt.Sprintf("%s %s(%s) ", p.keyword("function"), stmt.Name, strings.Join(stmt.Params, ", "))
		p.line(depth, header+p.block(stmt.Body, depth, fnScope))

	case *ast.BlockStmt:
		p.line(depth, p.block(stmt, depth, sc))

	case *ast.IfStmt:
		p.line(depth, p.ifChain(stmt, depth, sc))

	case *ast.WhileStmt:
		header := fmt.Sprintf("%s (%s) ", p.keyword("while"), p.expr(stmt.Test, precAssign, sc))
		p.line(depth, header+p.block(stmt.Body, depth, sc))

	case *ast.ForStmt:
		loopScope := &scope{names: make(map[string]bool), parent: sc}
		init := ""
		switch in := stmt.Init.(type) {
		case *ast.VarDecl:
			loopScope.names[in.Name] = true
			init = p.varDecl(in, loopScope)
		case *ast.ExprStmt:
			init = p.expr(in.Expr, precAssign, loopScope)
		}
		test := ""
		if stmt.Test != nil {
			test = " " + p.expr(stmt.Test, precAssign, loopScope)
		}
		update := ""
		if stmt.Update != nil {
			update = " " + p.expr(stmt.Update, precAssign, loopScope)
		}
		header := fmt.Sprintf("%s (%s;%s;%s) ", p.keyword("for"), init, test, update)
		p.line(depth, header+p.block(stmt.Body, depth, loopScope))

	case *ast.BreakStmt:
		p.line(depth, p.keyword("break")+";")

	case *ast.ContinueStmt:
		p.line(depth, p.keyword("continue")+";")

	case *ast.ReturnStmt:
		if stmt.Argument == nil {
			p.line(depth, p.keyword("return")+";")
			return
		}
		p.line(depth, p.keyword("return")+" "+p.expr(stmt.Argument, precAssign, sc)+";")

	case *ast.ExprStmt:
		p.line(depth, p.expr(stmt.Expr, precAssign, sc)+";")
	}
}

func (p *printer) varDecl(decl *ast.VarDecl, sc *scope) string {
	out := p.keyword("let") + " " + decl.Name
	if decl.Init != nil {
		out += " = " + p.expr(decl.Init, precAssign, sc)
	}
	return out
}

func (p *printer) ifChain(stmt *ast.IfStmt, depth int, sc *scope) string {
	out := fmt.Sprintf("%s (%s) %s", p.keyword("if"), p.expr(stmt.Test, precAssign, sc), p.block(stmt.Consequent, depth, sc))
	switch alt := stmt.Alternate.(type) {
	case *ast.IfStmt:
		out += " " + p.keyword("else") + " " + p.ifChain(alt, depth, sc)
	case *ast.BlockStmt:
		out += " " + p.keyword("else") + " " + p.block(alt, depth, sc)
	}
	return out
}

// block renders a braced body whose closing brace sits at depth. The opening
// brace is expected to continue the caller's current line.
func (p *printer) block(b *ast.BlockStmt, depth int, parent *scope) string {
	if len(b.Body) == 0 {
		return "{}"
	}
	inner := &printer{dialect: p.dialect, renames: p.renames}
	sc := p.enter(b.Body, parent)
	for _, stmt := range b.Body {
		inner.stmt(stmt, depth+1, sc)
	}
	return "{\n" + inner.sb.String() + strings.Repeat(indent, depth) + "}"
}

// expr renders e, parenthesized when it binds looser than min.
func (p *printer) expr(e ast.Expr, min int, sc *scope) string {
	out := p.exprText(e, sc)
	if precedence(e) < min {
		return "(" + out + ")"
	}
	return out
}

func (p *printer) exprText(e ast.Expr, sc *scope) string {
	switch expr := e.(type) {
	case *ast.NumberLiteral:
		return formatNumber(expr.Value)
	case *ast.StringLiteral:
		return quote(expr.Value)
	case *ast.BooleanLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.Identifier:
		return p.identifier(expr.Name, sc)
	case *ast.ArrayExpr:
		return "[" + p.list(expr.Elements, sc) + "]"
	case *ast.AssignExpr:
		return expr.Target.Name + " = " + p.expr(expr.Value, precAssign, sc)
	case *ast.LogicalExpr:
		prec := precedence(expr)
		return p.expr(expr.Left, prec, sc) + " " + string(expr.Op) + " " + p.expr(expr.Right, prec+1, sc)
	case *ast.BinaryExpr:
		prec := precedence(expr)
		return p.expr(expr.Left, prec, sc) + " " + string(expr.Op) + " " + p.expr(expr.Right, prec+1, sc)
	case *ast.UnaryExpr:
		operand := p.expr(expr.Operand, precUnary, sc)
		// "- -x" must not collapse into the "--" token.
		if inner, ok := expr.Operand.(*ast.UnaryExpr); ok && inner.Op == expr.Op && expr.Op != ast.OpNot {
			operand = "(" + operand + ")"
		}
		return string(expr.Op) + operand
	case *ast.UpdateExpr:
		return expr.Target.Name + string(expr.Op)
	case *ast.CallExpr:
		return p.expr(expr.Callee, precCall, sc) + "(" + p.list(expr.Args, sc) + ")"
	case *ast.MemberExpr:
		object := p.expr(expr.Object, precCall, sc)
		if expr.Computed {
			return object + "[" + p.expr(expr.Property, precAssign, sc) + "]"
		}
		if prop, ok := expr.Property.(*ast.Identifier); ok {
			return object + "." + prop.Name
		}
	}
	return ""
}

func (p *printer) identifier(name string, sc *scope) string {
	if renamed, ok := p.renames[name]; ok && !sc.declared(name) {
		return renamed
	}
	return name
}

func (p *printer) list(exprs []ast.Expr, sc *scope) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = p.expr(e, precAssign, sc)
	}
	return strings.Join(parts, ", ")
}

// formatNumber writes a literal that reads back as the same float64.
func formatNumber(v float64) string {
	if math.IsInf(v, 1) {
		return "1e999"
	}
	return evaluator.FormatNumber(v)
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// HasComments reports whether source contains // or /* comments, which the
// formatter does not preserve.
func HasComments(source string) bool {
	var quoteChar byte
	for i := 0; i < len(source); i++ {
		ch := source[i]
		if quoteChar != 0 {
			switch ch {
			case '\\':
				i++
			case quoteChar, '\n':
				quoteChar = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quoteChar = ch
		case '/':
			if i+1 < len(source) && (source[i+1] == '/' || source[i+1] == '*') {
				return true
			}
		}
	}
	return false
}
