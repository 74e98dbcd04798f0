// Package parser implements the yap language parser.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/thomasrohde/yap/pkg/ast"
	"github.com/thomasrohde/yap/pkg/diagnostics"
	"github.com/thomasrohde/yap/pkg/lexer"
)

// SyntaxError reports the first token the parser could not accept.
type SyntaxError struct {
	Expected string
	Found    lexer.Token
	Span     ast.Span
	// Message replaces the expected/found text when set.
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("expected %s, found %s", e.Expected, describe(e.Found))
}

// Diagnostic converts the error to an E_SYNTAX diagnostic.
func (e *SyntaxError) Diagnostic() diagnostics.Diagnostic {
	span := e.Span
	return diagnostics.MakeDiag(diagnostics.ESyntax, e.Error(), &span, "")
}

// IsIncomplete reports whether err is a syntax error caused by running out
// of input, meaning more source could still make the program valid.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Found.Kind == lexer.EOF
	}
	return false
}

type parser struct {
	tokens    []lexer.Token
	pos       int
	err       *SyntaxError
	loopDepth int
}

// Parse tokenizes source and parses it into an AST.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	return ParseWith(source, filename, lexer.Options{})
}

// ParseWith is Parse with explicit tokenizer options.
func ParseWith(source, filename string, opts lexer.Options) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.TokenizeWith(source, filename, opts)
	if err != nil {
		var le *lexer.LexError
		if errors.As(err, &le) {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}

	prog, err := ParseTokens(tokens)
	if err != nil {
		var se *SyntaxError
		if errors.As(err, &se) {
			return nil, []diagnostics.Diagnostic{se.Diagnostic()}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ESyntax, err.Error(), nil, "")}
	}
	return prog, nil
}

// ParseTokens parses a complete token stream, which must end with EOF.
// The first unexpected token aborts parsing with a *SyntaxError.
func ParseTokens(tokens []lexer.Token) (*ast.Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != lexer.EOF {
		tokens = append(append([]lexer.Token(nil), tokens...), lexer.Token{Kind: lexer.EOF})
	}
	p := &parser{tokens: tokens}
	prog := p.parseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind lexer.TokenKind, text string) bool {
	return p.current().Is(kind, text)
}

func (p *parser) atPunct(text string) bool {
	return p.at(lexer.Punctuation, text)
}

func (p *parser) atKeyword(text string) bool {
	return p.at(lexer.Keyword, text)
}

func (p *parser) atEOF() bool {
	return p.current().Kind == lexer.EOF
}

func (p *parser) expectPunct(text string) (lexer.Token, bool) {
	if !p.atPunct(text) {
		p.fail("'" + text + "'")
		return p.current(), false
	}
	return p.advance(), true
}

func (p *parser) expectIdent() (lexer.Token, bool) {
	if p.current().Kind != lexer.Identifier {
		p.fail("identifier")
		return p.current(), false
	}
	return p.advance(), true
}

// fail records a syntax error at the current token. Only the first error is kept.
func (p *parser) fail(expected string) {
	tok := p.current()
	p.failAt(&SyntaxError{Expected: expected, Found: tok, Span: tok.Span})
}

func (p *parser) failAt(err *SyntaxError) {
	if p.err == nil {
		p.err = err
	}
}

func (p *parser) spanFromTo(start, end ast.Span) ast.Span {
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.EOF:
		return "end of input"
	case lexer.String:
		return strconv.Quote(tok.Text)
	case lexer.Identifier:
		return fmt.Sprintf("identifier '%s'", tok.Text)
	case lexer.Number:
		return fmt.Sprintf("number %s", tok.Text)
	default:
		return "'" + tok.Text + "'"
	}
}

// --- Program ---

func (p *parser) parseProgram() *ast.Program {
	startSpan := p.current().Span
	var body []ast.Stmt
	for !p.atEOF() {
		stmt := p.parseStmt()
		if stmt == nil {
			return nil
		}
		body = append(body, stmt)
	}
	return &ast.Program{
		Span: p.spanFromTo(startSpan, p.current().Span),
		Body: body,
	}
}

// --- Statements ---

func (p *parser) parseStmt() ast.Stmt {
	tok := p.current()
	if tok.Kind == lexer.Keyword {
		switch tok.Text {
		case "function":
			if s := p.parseFunctionDecl(); s != nil {
				return s
			}
			return nil
		case "let":
			if s := p.parseVarDecl(true); s != nil {
				return s
			}
			return nil
		case "if":
			if s := p.parseIf(); s != nil {
				return s
			}
			return nil
		case "for":
			if s := p.parseFor(); s != nil {
				return s
			}
			return nil
		case "while":
			if s := p.parseWhile(); s != nil {
				return s
			}
			return nil
		case "return":
			if s := p.parseReturn(); s != nil {
				return s
			}
			return nil
		case "break", "continue":
			return p.parseJump()
		}
	}
	switch {
	case tok.Is(lexer.Punctuation, "{"):
		if s := p.parseBlock(); s != nil {
			return s
		}
		return nil
	case tok.Is(lexer.Punctuation, ";"):
		p.fail("statement")
		return nil
	}
	if s := p.parseExprStmt(); s != nil {
		return s
	}
	return nil
}

func (p *parser) parseBlock() *ast.BlockStmt {
	start, ok := p.expectPunct("{")
	if !ok {
		return nil
	}
	var body []ast.Stmt
	for !p.atPunct("}") && !p.atEOF() {
		stmt := p.parseStmt()
		if stmt == nil {
			return nil
		}
		body = append(body, stmt)
	}
	end, ok := p.expectPunct("}")
	if !ok {
		return nil
	}
	return &ast.BlockStmt{Span: p.spanFromTo(start.Span, end.Span), Body: body}
}

func (p *parser) parseFunctionDecl() *ast.FunctionDecl {
	start := p.advance() // consume 'function'
	nameTok, ok := p.expectIdent()
	if !ok {
		return nil
	}
	if _, ok := p.expectPunct("("); !ok {
		return nil
	}
	var params []string
	if !p.atPunct(")") {
		for {
			paramTok, ok := p.expectIdent()
			if !ok {
				return nil
			}
			params = append(params, paramTok.Text)
			if !p.atPunct(",") {
				break
			}
			p.advance()
		}
	}
	if _, ok := p.expectPunct(")"); !ok {
		return nil
	}

	// A function body is a fresh loop context.
	outer := p.loopDepth
	p.loopDepth = 0
	body := p.parseBlock()
	p.loopDepth = outer
	if body == nil {
		return nil
	}

	return &ast.FunctionDecl{
		Span:   p.spanFromTo(start.Span, body.Span),
		Name:   nameTok.Text,
		Params: params,
		Body:   body,
	}
}

// parseVarDecl parses `let name (= expr)?`, followed by ';' when terminated.
func (p *parser) parseVarDecl(terminated bool) *ast.VarDecl {
	start := p.advance() // consume 'let'
	nameTok, ok := p.expectIdent()
	if !ok {
		return nil
	}
	end := nameTok.Span
	var init ast.Expr
	if p.atPunct("=") {
		p.advance()
		init = p.parseExpr()
		if init == nil {
			return nil
		}
		end = init.NodeSpan()
	}
	if terminated {
		semi, ok := p.expectPunct(";")
		if !ok {
			return nil
		}
		end = semi.Span
	}
	return &ast.VarDecl{Span: p.spanFromTo(start.Span, end), Name: nameTok.Text, Init: init}
}

func (p *parser) parseIf() *ast.IfStmt {
	start := p.advance() // consume 'if'
	test := p.parseParenExpr()
	if test == nil {
		return nil
	}
	cons := p.parseBlock()
	if cons == nil {
		return nil
	}
	stmt := &ast.IfStmt{Span: p.spanFromTo(start.Span, cons.Span), Test: test, Consequent: cons}
	if !p.atKeyword("else") {
		return stmt
	}
	p.advance()
	if p.atKeyword("if") {
		alt := p.parseIf()
		if alt == nil {
			return nil
		}
		stmt.Alternate = alt
		stmt.Span = p.spanFromTo(start.Span, alt.Span)
		return stmt
	}
	alt := p.parseBlock()
	if alt == nil {
		return nil
	}
	stmt.Alternate = alt
	stmt.Span = p.spanFromTo(start.Span, alt.Span)
	return stmt
}

func (p *parser) parseParenExpr() ast.Expr {
	if _, ok := p.expectPunct("("); !ok {
		return nil
	}
	e := p.parseExpr()
	if e == nil {
		return nil
	}
	if _, ok := p.expectPunct(")"); !ok {
		return nil
	}
	return e
}

func (p *parser) parseFor() *ast.ForStmt {
	start := p.advance() // consume 'for'
	if _, ok := p.expectPunct("("); !ok {
		return nil
	}

	var init ast.Stmt
	switch {
	case p.atKeyword("let"):
		decl := p.parseVarDecl(false)
		if decl == nil {
			return nil
		}
		init = decl
	case !p.atPunct(";"):
		e := p.parseExpr()
		if e == nil {
			return nil
		}
		init = &ast.ExprStmt{Span: e.NodeSpan(), Expr: e}
	}
	if _, ok := p.expectPunct(";"); !ok {
		return nil
	}

	var test ast.Expr
	if !p.atPunct(";") {
		if test = p.parseExpr(); test == nil {
			return nil
		}
	}
	if _, ok := p.expectPunct(";"); !ok {
		return nil
	}

	var update ast.Expr
	if !p.atPunct(")") {
		if update = p.parseExpr(); update == nil {
			return nil
		}
	}
	if _, ok := p.expectPunct(")"); !ok {
		return nil
	}

	body := p.parseLoopBody()
	if body == nil {
		return nil
	}
	return &ast.ForStmt{
		Span:   p.spanFromTo(start.Span, body.Span),
		Init:   init,
		Test:   test,
		Update: update,
		Body:   body,
	}
}

func (p *parser) parseWhile() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	test := p.parseParenExpr()
	if test == nil {
		return nil
	}
	body := p.parseLoopBody()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{Span: p.spanFromTo(start.Span, body.Span), Test: test, Body: body}
}

func (p *parser) parseLoopBody() *ast.BlockStmt {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.parseBlock()
}

func (p *parser) parseReturn() *ast.ReturnStmt {
	start := p.advance() // consume 'return'
	var arg ast.Expr
	if !p.atPunct(";") {
		if arg = p.parseExpr(); arg == nil {
			return nil
		}
	}
	semi, ok := p.expectPunct(";")
	if !ok {
		return nil
	}
	return &ast.ReturnStmt{Span: p.spanFromTo(start.Span, semi.Span), Argument: arg}
}

func (p *parser) parseJump() ast.Stmt {
	tok := p.advance()
	if p.loopDepth == 0 {
		p.failAt(&SyntaxError{
			Expected: "enclosing loop",
			Found:    tok,
			Span:     tok.Span,
			Message:  fmt.Sprintf("'%s' outside of a loop", tok.Text),
		})
		return nil
	}
	semi, ok := p.expectPunct(";")
	if !ok {
		return nil
	}
	span := p.spanFromTo(tok.Span, semi.Span)
	if tok.Text == "break" {
		return &ast.BreakStmt{Span: span}
	}
	return &ast.ContinueStmt{Span: span}
}

func (p *parser) parseExprStmt() *ast.ExprStmt {
	e := p.parseExpr()
	if e == nil {
		return nil
	}
	semi, ok := p.expectPunct(";")
	if !ok {
		return nil
	}
	return &ast.ExprStmt{Span: p.spanFromTo(e.NodeSpan(), semi.Span), Expr: e}
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() ast.Expr {
	target := p.parseLogicalOr()
	if target == nil {
		return nil
	}
	if !p.atPunct("=") {
		return target
	}
	id, ok := target.(*ast.Identifier)
	if !ok {
		eq := p.current()
		p.failAt(&SyntaxError{
			Expected: "identifier",
			Found:    eq,
			Span:     target.NodeSpan(),
			Message:  "invalid assignment target: expected identifier",
		})
		return nil
	}
	p.advance()
	value := p.parseAssignment()
	if value == nil {
		return nil
	}
	return &ast.AssignExpr{
		Span:   p.spanFromTo(id.Span, value.NodeSpan()),
		Target: id,
		Value:  value,
	}
}

func (p *parser) parseLogicalOr() ast.Expr {
	left := p.parseLogicalAnd()
	if left == nil {
		return nil
	}
	for p.atPunct("||") {
		p.advance()
		right := p.parseLogicalAnd()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpOr,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseLogicalAnd() ast.Expr {
	left := p.parseEquality()
	if left == nil {
		return nil
	}
	for p.atPunct("&&") {
		p.advance()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		left = &ast.LogicalExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    ast.OpAnd,
			Left:  left,
			Right: right,
		}
	}
	return left
}

// binaryLevel parses one left-associative precedence level.
func (p *parser) binaryLevel(next func() ast.Expr, ops map[string]ast.BinaryOp) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for {
		tok := p.current()
		if tok.Kind != lexer.Punctuation {
			return left
		}
		op, ok := ops[tok.Text]
		if !ok {
			return left
		}
		p.advance()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFromTo(left.NodeSpan(), right.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

var (
	equalityOps = map[string]ast.BinaryOp{
		"==": ast.OpEq, "!=": ast.OpNotEq, "===": ast.OpStrictEq, "!==": ast.OpStrictNeq,
	}
	relationalOps = map[string]ast.BinaryOp{
		"<": ast.OpLt, ">": ast.OpGt, "<=": ast.OpLtEq, ">=": ast.OpGtEq,
	}
	additiveOps       = map[string]ast.BinaryOp{"+": ast.OpAdd, "-": ast.OpSub}
	multiplicativeOps = map[string]ast.BinaryOp{"*": ast.OpMul, "/": ast.OpDiv, "%": ast.OpMod}
)

func (p *parser) parseEquality() ast.Expr {
	return p.binaryLevel(p.parseRelational, equalityOps)
}

func (p *parser) parseRelational() ast.Expr {
	return p.binaryLevel(p.parseAdditive, relationalOps)
}

func (p *parser) parseAdditive() ast.Expr {
	return p.binaryLevel(p.parseMultiplicative, additiveOps)
}

func (p *parser) parseMultiplicative() ast.Expr {
	return p.binaryLevel(p.parseUnary, multiplicativeOps)
}

func (p *parser) parseUnary() ast.Expr {
	tok := p.current()
	var op ast.UnaryOp
	switch {
	case tok.Is(lexer.Punctuation, "!"):
		op = ast.OpNot
	case tok.Is(lexer.Punctuation, "-"):
		op = ast.OpNeg
	case tok.Is(lexer.Punctuation, "+"):
		op = ast.OpPlus
	default:
		return p.parsePostfix()
	}
	p.advance()
	operand := p.parseUnary()
	if operand == nil {
		return nil
	}
	return &ast.UnaryExpr{
		Span:    p.spanFromTo(tok.Span, operand.NodeSpan()),
		Op:      op,
		Operand: operand,
	}
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parseLeftHandSide()
	if expr == nil {
		return nil
	}
	var op ast.UpdateOp
	switch {
	case p.atPunct("++"):
		op = ast.OpInc
	case p.atPunct("--"):
		op = ast.OpDec
	default:
		return expr
	}
	id, ok := expr.(*ast.Identifier)
	if !ok {
		p.failAt(&SyntaxError{
			Expected: "identifier",
			Found:    p.current(),
			Span:     expr.NodeSpan(),
			Message:  fmt.Sprintf("invalid operand for '%s': expected identifier", op),
		})
		return nil
	}
	opTok := p.advance()
	return &ast.UpdateExpr{Span: p.spanFromTo(id.Span, opTok.Span), Op: op, Target: id}
}

func (p *parser) parseLeftHandSide() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch {
		case p.atPunct("("):
			p.advance()
			args, end, ok := p.parseArgList(")")
			if !ok {
				return nil
			}
			expr = &ast.CallExpr{Span: p.spanFromTo(expr.NodeSpan(), end.Span), Callee: expr, Args: args}
		case p.atPunct("."):
			p.advance()
			nameTok, ok := p.expectIdent()
			if !ok {
				return nil
			}
			expr = &ast.MemberExpr{
				Span:     p.spanFromTo(expr.NodeSpan(), nameTok.Span),
				Object:   expr,
				Property: &ast.Identifier{Span: nameTok.Span, Name: nameTok.Text},
			}
		case p.atPunct("["):
			p.advance()
			key := p.parseExpr()
			if key == nil {
				return nil
			}
			end, ok := p.expectPunct("]")
			if !ok {
				return nil
			}
			expr = &ast.MemberExpr{
				Span:     p.spanFromTo(expr.NodeSpan(), end.Span),
				Object:   expr,
				Property: key,
				Computed: true,
			}
		default:
			return expr
		}
	}
}

// parseArgList parses a possibly empty comma-separated expression list up to
// and including the closing punctuation. The opening token is already consumed.
func (p *parser) parseArgList(closing string) ([]ast.Expr, lexer.Token, bool) {
	var args []ast.Expr
	if !p.atPunct(closing) {
		for {
			arg := p.parseExpr()
			if arg == nil {
				return nil, lexer.Token{}, false
			}
			args = append(args, arg)
			if !p.atPunct(",") {
				break
			}
			p.advance()
		}
	}
	end, ok := p.expectPunct(closing)
	if !ok {
		return nil, lexer.Token{}, false
	}
	return args, end, true
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.current()
	switch tok.Kind {
	case lexer.Number:
		p.advance()
		v, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			// Out-of-range literals saturate to ±Inf; ParseFloat reports them as ErrRange.
			var ne *strconv.NumError
			if !errors.As(err, &ne) || ne.Err != strconv.ErrRange {
				p.failAt(&SyntaxError{Expected: "number", Found: tok, Span: tok.Span})
				return nil
			}
		}
		return &ast.NumberLiteral{Span: tok.Span, Value: v}
	case lexer.String:
		p.advance()
		return &ast.StringLiteral{Span: tok.Span, Value: tok.Text}
	case lexer.Identifier:
		p.advance()
		return &ast.Identifier{Span: tok.Span, Name: tok.Text}
	case lexer.Keyword:
		if tok.Text == "true" || tok.Text == "false" {
			p.advance()
			return &ast.BooleanLiteral{Span: tok.Span, Value: tok.Text == "true"}
		}
	case lexer.Punctuation:
		switch tok.Text {
		case "(":
			p.advance()
			e := p.parseExpr()
			if e == nil {
				return nil
			}
			if _, ok := p.expectPunct(")"); !ok {
				return nil
			}
			return e
		case "[":
			p.advance()
			elems, end, ok := p.parseArgList("]")
			if !ok {
				return nil
			}
			return &ast.ArrayExpr{Span: p.spanFromTo(tok.Span, end.Span), Elements: elems}
		}
	}
	p.fail("expression")
	return nil
}
