// Package parser builds an AST from a lexer.Token stream via
// recursive descent with Pratt-style precedence climbing for binary
// operators. It knows nothing about bytecode, only about the
// language's grammar.
package parser

import "lavendeux/internal/lexer"

// Expr is any AST node that produces a value when compiled.
type Expr interface {
	Accept(v ExprVisitor) error
	Line() int
}

type ExprVisitor interface {
	VisitBoolLiteral(e *BoolLiteral) error
	VisitIntLiteral(e *IntLiteral) error
	VisitDecimalLiteral(e *DecimalLiteral) error
	VisitStringLiteral(e *StringLiteral) error
	VisitRegexLiteral(e *RegexLiteral) error
	VisitIdentifier(e *Identifier) error
	VisitArrayLiteral(e *ArrayLiteral) error
	VisitObjectLiteral(e *ObjectLiteral) error
	VisitRangeExpr(e *RangeExpr) error
	VisitUnaryExpr(e *UnaryExpr) error
	VisitBinaryExpr(e *BinaryExpr) error
	VisitLogicalExpr(e *LogicalExpr) error
	VisitMatchExpr(e *MatchExpr) error
	VisitCastExpr(e *CastExpr) error
	VisitIndexExpr(e *IndexExpr) error
	VisitAssignExpr(e *AssignExpr) error
	VisitCompoundAssignExpr(e *CompoundAssignExpr) error
	VisitCallExpr(e *CallExpr) error
	VisitIfExpr(e *IfExpr) error
	VisitBlockExpr(e *BlockExpr) error
	VisitForInExpr(e *ForInExpr) error
	VisitWhileExpr(e *WhileExpr) error
	VisitBreakExpr(e *BreakExpr) error
	VisitContinueExpr(e *ContinueExpr) error
	VisitFunctionDecl(e *FunctionDecl) error
	VisitLambdaExpr(e *LambdaExpr) error
	VisitDecoratedExpr(e *DecoratedExpr) error
}

type baseExpr struct{ line int }

func (b baseExpr) Line() int { return b.line }

// ---- literals ----

type BoolLiteral struct {
	baseExpr
	Value bool
}

func (e *BoolLiteral) Accept(v ExprVisitor) error { return v.VisitBoolLiteral(e) }

type IntLiteral struct {
	baseExpr
	Text string // raw digits, parsed to big.Int by the compiler
}

func (e *IntLiteral) Accept(v ExprVisitor) error { return v.VisitIntLiteral(e) }

type DecimalLiteral struct {
	baseExpr
	Text string // raw lexeme including optional currency suffix
}

func (e *DecimalLiteral) Accept(v ExprVisitor) error { return v.VisitDecimalLiteral(e) }

type StringLiteral struct {
	baseExpr
	Value string
}

func (e *StringLiteral) Accept(v ExprVisitor) error { return v.VisitStringLiteral(e) }

type RegexLiteral struct {
	baseExpr
	Pattern string
	Flags   string
}

func (e *RegexLiteral) Accept(v ExprVisitor) error { return v.VisitRegexLiteral(e) }

type Identifier struct {
	baseExpr
	Name string
}

func (e *Identifier) Accept(v ExprVisitor) error { return v.VisitIdentifier(e) }

// ---- collections ----

type ArrayLiteral struct {
	baseExpr
	Elements []Expr
}

func (e *ArrayLiteral) Accept(v ExprVisitor) error { return v.VisitArrayLiteral(e) }

type ObjectLiteral struct {
	baseExpr
	Keys   []Expr
	Values []Expr
}

func (e *ObjectLiteral) Accept(v ExprVisitor) error { return v.VisitObjectLiteral(e) }

type RangeExpr struct {
	baseExpr
	Start, End Expr
}

func (e *RangeExpr) Accept(v ExprVisitor) error { return v.VisitRangeExpr(e) }

// ---- operators ----

type UnaryExpr struct {
	baseExpr
	Operator lexer.TokenType
	Operand  Expr
}

func (e *UnaryExpr) Accept(v ExprVisitor) error { return v.VisitUnaryExpr(e) }

type BinaryExpr struct {
	baseExpr
	Left, Right Expr
	Operator    lexer.TokenType
}

func (e *BinaryExpr) Accept(v ExprVisitor) error { return v.VisitBinaryExpr(e) }

// LogicalExpr covers && and || — kept distinct from BinaryExpr because
// the compiler must short-circuit them via jumps rather than opcodes.
type LogicalExpr struct {
	baseExpr
	Left, Right Expr
	Operator    lexer.TokenType
}

func (e *LogicalExpr) Accept(v ExprVisitor) error { return v.VisitLogicalExpr(e) }

// MatchExpr covers matches/starts_with/ends_with/contains.
type MatchExpr struct {
	baseExpr
	Left, Right Expr
	Operator    lexer.TokenType
}

func (e *MatchExpr) Accept(v ExprVisitor) error { return v.VisitMatchExpr(e) }

type CastExpr struct {
	baseExpr
	Operand  Expr
	TypeName string
}

func (e *CastExpr) Accept(v ExprVisitor) error { return v.VisitCastExpr(e) }

// ---- references / assignment ----

// IndexExpr is `Object[Index]`. When it appears on the left of an
// assignment it is not re-typed into a different node — the compiler
// recognizes an IndexExpr target and emits IDEX-then-WREF instead of
// IDEX-then-PUSH, mirroring the value-level Reference design where
// indexing composes lazily before a final resolve.
type IndexExpr struct {
	baseExpr
	Object Expr
	Index  Expr
}

func (e *IndexExpr) Accept(v ExprVisitor) error { return v.VisitIndexExpr(e) }

type AssignExpr struct {
	baseExpr
	Target Expr // *Identifier or *IndexExpr
	Value  Expr
}

func (e *AssignExpr) Accept(v ExprVisitor) error { return v.VisitAssignExpr(e) }

type CompoundAssignExpr struct {
	baseExpr
	Target   Expr
	Operator lexer.TokenType // +=, -=, *=, /=, %=
	Value    Expr
}

func (e *CompoundAssignExpr) Accept(v ExprVisitor) error { return v.VisitCompoundAssignExpr(e) }

// ---- calls & control flow ----

type CallExpr struct {
	baseExpr
	Callee Expr
	Args   []Expr
}

func (e *CallExpr) Accept(v ExprVisitor) error { return v.VisitCallExpr(e) }

type IfExpr struct {
	baseExpr
	Cond Expr
	Then Expr
	Else Expr // nil if no else branch
}

func (e *IfExpr) Accept(v ExprVisitor) error { return v.VisitIfExpr(e) }

type BlockExpr struct {
	baseExpr
	Exprs []Expr
}

func (e *BlockExpr) Accept(v ExprVisitor) error { return v.VisitBlockExpr(e) }

// NewBlockExpr builds a BlockExpr from outside the package — used to
// wrap a whole file's top-level expressions into the single Expr
// Compile expects, the way blockExpr does internally for `{ ... }`.
func NewBlockExpr(line int, exprs []Expr) *BlockExpr {
	return &BlockExpr{baseExpr{line}, exprs}
}

// ForInExpr is `for [ident] in ITER do BODY [where FILTER]`, lowered
// by the compiler into an accumulator array fed by NEXT/JMPE.
type ForInExpr struct {
	baseExpr
	VarName string // "" if the loop variable is elided
	Iter    Expr
	Body    Expr
	Filter  Expr // nil if no where-clause
}

func (e *ForInExpr) Accept(v ExprVisitor) error { return v.VisitForInExpr(e) }

type WhileExpr struct {
	baseExpr
	Cond Expr
	Body Expr
}

func (e *WhileExpr) Accept(v ExprVisitor) error { return v.VisitWhileExpr(e) }

type BreakExpr struct{ baseExpr }

func (e *BreakExpr) Accept(v ExprVisitor) error { return v.VisitBreakExpr(e) }

type ContinueExpr struct{ baseExpr }

func (e *ContinueExpr) Accept(v ExprVisitor) error { return v.VisitContinueExpr(e) }

// ---- functions ----

type Param struct {
	Name     string
	TypeName string // "" if untyped
	Default  Expr   // nil if required
}

type FunctionDecl struct {
	baseExpr
	Name       string
	Params     []Param
	ReturnType string // "" if undeclared
	Body       Expr
}

func (e *FunctionDecl) Accept(v ExprVisitor) error { return v.VisitFunctionDecl(e) }

type LambdaExpr struct {
	baseExpr
	Params     []Param
	ReturnType string
	Body       Expr
}

func (e *LambdaExpr) Accept(v ExprVisitor) error { return v.VisitLambdaExpr(e) }

// DecoratedExpr wraps a statement preceded by `@name(...)`. The
// compiler rejects these — see SPEC_FULL Supplemented Features.
type DecoratedExpr struct {
	baseExpr
	Name   string
	Args   []Expr
	Target Expr
}

func (e *DecoratedExpr) Accept(v ExprVisitor) error { return v.VisitDecoratedExpr(e) }
