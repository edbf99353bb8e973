// Package ast defines the tree a front end hands to the evaluator: typed
// expression and statement nodes plus the externally tagged JSON codec the
// producer emits. Trees are read-only once built and a node value must not
// appear in two places in the same chunk.
package ast

// Expr represents an expression node
type Expr interface {
	exprNode()
}

// Stmt represents a statement node
type Stmt interface {
	stmtNode()
}

// LHS is an expression that can appear as an assignment target.
type LHS interface {
	Expr
	lhsNode()
}

// BinOp identifies a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpIdiv
	OpMod
	OpPow
	OpConcat
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpAnd
	OpOr
)

var binOpNames = [...]string{
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpIdiv: "Idiv",
	OpMod: "Mod", OpPow: "Pow", OpConcat: "Concat", OpEq: "Eq", OpNe: "Ne",
	OpLt: "Lt", OpGt: "Gt", OpLe: "Le", OpGe: "Ge", OpAnd: "And", OpOr: "Or",
}

func (op BinOp) String() string { return binOpNames[op] }

// UnOp identifies a unary operator.
type UnOp int

const (
	OpNot UnOp = iota
	OpUnm
	OpLen
)

var unOpNames = [...]string{OpNot: "Not", OpUnm: "Unm", OpLen: "Len"}

func (op UnOp) String() string { return unOpNames[op] }

// NilExpr is the nil literal
type NilExpr struct{}

func (e *NilExpr) exprNode() {}

// BoolExpr is a boolean literal
type BoolExpr struct {
	Value bool
}

func (e *BoolExpr) exprNode() {}

// NumberExpr is a numeric literal
type NumberExpr struct {
	Value float64
}

func (e *NumberExpr) exprNode() {}

// StringExpr is a string literal
type StringExpr struct {
	Value string
}

func (e *StringExpr) exprNode() {}

// VarargExpr is the ... expression, valid only inside vararg functions
type VarargExpr struct{}

func (e *VarargExpr) exprNode() {}

// NameExpr references a variable by name. Each occurrence is a distinct
// node; the resolver binds occurrences to slots by node identity.
type NameExpr struct {
	Name string
}

func (e *NameExpr) exprNode() {}
func (e *NameExpr) lhsNode()  {}

// IndexExpr represents indexing: obj[key]
type IndexExpr struct {
	Object Expr
	Key    Expr
}

func (e *IndexExpr) exprNode() {}
func (e *IndexExpr) lhsNode()  {}

// CallExpr represents a function call: fn(args...)
type CallExpr struct {
	Fn   Expr
	Args []Expr
}

func (e *CallExpr) exprNode() {}

// InvokeExpr represents a method call: obj:method(args...). The receiver is
// evaluated once and passed as the first argument.
type InvokeExpr struct {
	Object Expr
	Method string
	Args   []Expr
}

func (e *InvokeExpr) exprNode() {}

// FunctionExpr is a function literal. A trailing "..." in the wire form's
// parameter list marks the function vararg; Params never contains it.
type FunctionExpr struct {
	Params []string
	Vararg bool
	Body   []Stmt
}

func (e *FunctionExpr) exprNode() {}

// TableExpr is a table constructor. Items are positional entries except
// PairExpr items, which carry explicit keys.
type TableExpr struct {
	Items []Expr
}

func (e *TableExpr) exprNode() {}

// PairExpr is a keyed entry in a table constructor. It is not a standalone
// expression; outside a constructor the tree is malformed.
type PairExpr struct {
	Key   Expr
	Value Expr
}

func (e *PairExpr) exprNode() {}

// BinaryExpr represents a binary operation
type BinaryExpr struct {
	Op BinOp
	L  Expr
	R  Expr
}

func (e *BinaryExpr) exprNode() {}

// UnaryExpr represents a unary operation
type UnaryExpr struct {
	Op      UnOp
	Operand Expr
}

func (e *UnaryExpr) exprNode() {}

// ParenExpr adjusts its inner expression to exactly one value
type ParenExpr struct {
	Inner Expr
}

func (e *ParenExpr) exprNode() {}

// DoStmt is an explicit block: do ... end
type DoStmt struct {
	Body []Stmt
}

func (s *DoStmt) stmtNode() {}

// SetStmt is a multiple assignment: t1, t2 = e1, e2
type SetStmt struct {
	Targets []LHS
	Values  []Expr
}

func (s *SetStmt) stmtNode() {}

// WhileStmt is a while loop
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

func (s *WhileStmt) stmtNode() {}

// RepeatStmt is a repeat/until loop; Cond is resolved in the body scope
type RepeatStmt struct {
	Body []Stmt
	Cond Expr
}

func (s *RepeatStmt) stmtNode() {}

// IfClause is one cond/body arm of an if statement
type IfClause struct {
	Cond Expr
	Body []Stmt
}

// IfStmt is an if/elseif/else chain
type IfStmt struct {
	Clauses []IfClause
	Else    []Stmt
}

func (s *IfStmt) stmtNode() {}

// NumForStmt is a numeric for loop. Step is nil when omitted (defaults 1).
type NumForStmt struct {
	Name  string
	Start Expr
	Limit Expr
	Step  Expr
	Body  []Stmt
}

func (s *NumForStmt) stmtNode() {}

// GenForStmt is a generic for loop over an iterator triple
type GenForStmt struct {
	Names []string
	Exprs []Expr
	Body  []Stmt
}

func (s *GenForStmt) stmtNode() {}

// LocalStmt declares locals with optional initializers
type LocalStmt struct {
	Names  []string
	Values []Expr
}

func (s *LocalStmt) stmtNode() {}

// LocalFuncStmt is the local function form: the name is in scope inside the
// body, so the function can recurse.
type LocalFuncStmt struct {
	Name string
	Fn   *FunctionExpr
}

func (s *LocalFuncStmt) stmtNode() {}

// ReturnStmt returns zero or more values from the enclosing function
type ReturnStmt struct {
	Values []Expr
}

func (s *ReturnStmt) stmtNode() {}

// BreakStmt exits the innermost enclosing loop
type BreakStmt struct{}

func (s *BreakStmt) stmtNode() {}

// CallStmt is a call in statement position; Call is a *CallExpr or
// *InvokeExpr and its results are discarded.
type CallStmt struct {
	Call Expr
}

func (s *CallStmt) stmtNode() {}

// GotoStmt and LabelStmt are admitted by the grammar but rejected at run
// time; see the resolver.
type GotoStmt struct {
	Label string
}

func (s *GotoStmt) stmtNode() {}

// LabelStmt declares a goto target
type LabelStmt struct {
	Name string
}

func (s *LabelStmt) stmtNode() {}
