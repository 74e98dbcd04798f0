// Package ast defines the yap language AST node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// BinaryOp represents a binary (arithmetic, relational or equality) operator.
type BinaryOp string

const (
	OpAdd       BinaryOp = "+"
	OpSub       BinaryOp = "-"
	OpMul       BinaryOp = "*"
	OpDiv       BinaryOp = "/"
	OpMod       BinaryOp = "%"
	OpLt        BinaryOp = "<"
	OpGt        BinaryOp = ">"
	OpLtEq      BinaryOp = "<="
	OpGtEq      BinaryOp = ">="
	OpEq        BinaryOp = "=="
	OpNotEq     BinaryOp = "!="
	OpStrictEq  BinaryOp = "==="
	OpStrictNeq BinaryOp = "!=="
)

// LogicalOp represents a short-circuiting operator.
type LogicalOp string

const (
	OpAnd LogicalOp = "&&"
	OpOr  LogicalOp = "||"
)

// UnaryOp represents a prefix operator.
type UnaryOp string

const (
	OpNot  UnaryOp = "!"
	OpNeg  UnaryOp = "-"
	OpPlus UnaryOp = "+"
)

// UpdateOp represents a postfix increment or decrement.
type UpdateOp string

const (
	OpInc UpdateOp = "++"
	OpDec UpdateOp = "--"
)

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type NumberLiteral struct {
	Span  Span
	Value float64
}

func (n *NumberLiteral) Kind() string   { return "NumberLiteral" }
func (n *NumberLiteral) NodeSpan() Span { return n.Span }
func (n *NumberLiteral) exprNode()      {}

type StringLiteral struct {
	Span  Span
	Value string
}

func (n *StringLiteral) Kind() string   { return "StringLiteral" }
func (n *StringLiteral) NodeSpan() Span { return n.Span }
func (n *StringLiteral) exprNode()      {}

type BooleanLiteral struct {
	Span  Span
	Value bool
}

func (n *BooleanLiteral) Kind() string   { return "BooleanLiteral" }
func (n *BooleanLiteral) NodeSpan() Span { return n.Span }
func (n *BooleanLiteral) exprNode()      {}

// --- Identifiers ---

type Identifier struct {
	Span Span
	Name string
}

func (n *Identifier) Kind() string   { return "Identifier" }
func (n *Identifier) NodeSpan() Span { return n.Span }
func (n *Identifier) exprNode()      {}

// --- Collections ---

type ArrayExpr struct {
	Span     Span
	Elements []Expr
}

func (n *ArrayExpr) Kind() string   { return "ArrayExpr" }
func (n *ArrayExpr) NodeSpan() Span { return n.Span }
func (n *ArrayExpr) exprNode()      {}

// --- Operators ---

type BinaryExpr struct {
	Span  Span
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Kind() string   { return "BinaryExpr" }
func (n *BinaryExpr) NodeSpan() Span { return n.Span }
func (n *BinaryExpr) exprNode()      {}

// LogicalExpr evaluates Right only when Left does not decide the result.
type LogicalExpr struct {
	Span  Span
	Op    LogicalOp
	Left  Expr
	Right Expr
}

func (n *LogicalExpr) Kind() string   { return "LogicalExpr" }
func (n *LogicalExpr) NodeSpan() Span { return n.Span }
func (n *LogicalExpr) exprNode()      {}

type UnaryExpr struct {
	Span    Span
	Op      UnaryOp
	Operand Expr
}

func (n *UnaryExpr) Kind() string   { return "UnaryExpr" }
func (n *UnaryExpr) NodeSpan() Span { return n.Span }
func (n *UnaryExpr) exprNode()      {}

type AssignExpr struct {
	Span   Span
	Target *Identifier
	Value  Expr
}

func (n *AssignExpr) Kind() string   { return "AssignExpr" }
func (n *AssignExpr) NodeSpan() Span { return n.Span }
func (n *AssignExpr) exprNode()      {}

type UpdateExpr struct {
	Span   Span
	Op     UpdateOp
	Target *Identifier
}

func (n *UpdateExpr) Kind() string   { return "UpdateExpr" }
func (n *UpdateExpr) NodeSpan() Span { return n.Span }
func (n *UpdateExpr) exprNode()      {}

// --- Calls and member access ---

type CallExpr struct {
	Span   Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}

// MemberExpr is obj.name (Computed false, Property is an *Identifier)
// or obj[key] (Computed true).
type MemberExpr struct {
	Span     Span
	Object   Expr
	Property Expr
	Computed bool
}

func (n *MemberExpr) Kind() string   { return "MemberExpr" }
func (n *MemberExpr) NodeSpan() Span { return n.Span }
func (n *MemberExpr) exprNode()      {}

// --- Statements ---

type BlockStmt struct {
	Span Span
	Body []Stmt
}

func (n *BlockStmt) Kind() string   { return "BlockStmt" }
func (n *BlockStmt) NodeSpan() Span { return n.Span }
func (n *BlockStmt) stmtNode()      {}

type FunctionDecl struct {
	Span   Span
	Name   string
	Params []string
	Body   *BlockStmt
}

func (n *FunctionDecl) Kind() string   { return "FunctionDecl" }
func (n *FunctionDecl) NodeSpan() Span { return n.Span }
func (n *FunctionDecl) stmtNode()      {}

// VarDecl declares Name in the current scope. Init is nil for `let x;`.
type VarDecl struct {
	Span Span
	Name string
	Init Expr
}

func (n *VarDecl) Kind() string   { return "VarDecl" }
func (n *VarDecl) NodeSpan() Span { return n.Span }
func (n *VarDecl) stmtNode()      {}

// IfStmt's Alternate is nil, a *BlockStmt, or a nested *IfStmt for else-if.
type IfStmt struct {
	Span       Span
	Test       Expr
	Consequent *BlockStmt
	Alternate  Stmt
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) NodeSpan() Span { return n.Span }
func (n *IfStmt) stmtNode()      {}

// ForStmt's Init is nil, a *VarDecl, or an *ExprStmt.
type ForStmt struct {
	Span   Span
	Init   Stmt
	Test   Expr
	Update Expr
	Body   *BlockStmt
}

func (n *ForStmt) Kind() string   { return "ForStmt" }
func (n *ForStmt) NodeSpan() Span { return n.Span }
func (n *ForStmt) stmtNode()      {}

type WhileStmt struct {
	Span Span
	Test Expr
	Body *BlockStmt
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) NodeSpan() Span { return n.Span }
func (n *WhileStmt) stmtNode()      {}

type BreakStmt struct {
	Span Span
}

func (n *BreakStmt) Kind() string   { return "BreakStmt" }
func (n *BreakStmt) NodeSpan() Span { return n.Span }
func (n *BreakStmt) stmtNode()      {}

type ContinueStmt struct {
	Span Span
}

func (n *ContinueStmt) Kind() string   { return "ContinueStmt" }
func (n *ContinueStmt) NodeSpan() Span { return n.Span }
func (n *ContinueStmt) stmtNode()      {}

type ReturnStmt struct {
	Span     Span
	Argument Expr
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) NodeSpan() Span { return n.Span }
func (n *ReturnStmt) stmtNode()      {}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Span Span
	Body []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
