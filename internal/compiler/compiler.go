// Package compiler walks a parser.Expr tree and emits bytecode into a
// bytecode.Chunk: one VisitXxx method per AST node, grounded on the
// teacher's internal/compiler/compiler.go visitor-dispatch pattern
// generalized to the language's expression-oriented grammar (no
// separate Stmt hierarchy — every node, including if/for/while/blocks,
// both emits code and leaves a value on the stack).
package compiler

import (
	"fmt"

	"lavendeux/internal/bytecode"
	"lavendeux/internal/errors"
	"lavendeux/internal/lexer"
	"lavendeux/internal/parser"
	"lavendeux/internal/value"
)

// Compiler turns one parsed program into a Chunk. A fresh Compiler is
// used per top-level compilation; nested function bodies are compiled
// into the same Chunk at a later byte offset (see functions.go) so
// that a single DebugProfile and constant pool cover the whole
// program, matching how CALL addresses functions by absolute offset.
type Compiler struct {
	chunk  *bytecode.Chunk
	file   string
	loops  []*loopFrame
	Errors []*errors.SentraError
}

func NewCompiler(file string) *Compiler {
	return &Compiler{chunk: bytecode.NewChunk(), file: file}
}

// Compile compiles expr as a complete program: its value is left on
// the stack with no trailing RET (the VM's top-level driver reads the
// final stack slot directly; RET is only emitted for function bodies).
func (c *Compiler) Compile(expr parser.Expr) (*bytecode.Chunk, []*errors.SentraError) {
	if err := expr.Accept(c); err != nil {
		c.fail(expr.Line(), "%s", err.Error())
	}
	return c.chunk, c.Errors
}

func (c *Compiler) fail(line int, format string, args ...any) {
	c.Errors = append(c.Errors, errors.NewCompileError(fmt.Sprintf(format, args...), c.file, line, 0))
}

func (c *Compiler) emit(line int, op bytecode.OpCode) int {
	off := c.chunk.WriteOp(op)
	c.chunk.Debug.Insert(off, bytecode.DebugTok{Line: line, File: c.file})
	return off
}

func (c *Compiler) emitU16(v uint16) { c.chunk.WriteU16(v) }
func (c *Compiler) emitU32(v uint32) { c.chunk.WriteU32(v) }
func (c *Compiler) emitByte(b byte)  { c.chunk.WriteByte(b) }

// here returns the current write position — the target a backward
// jump (loop continue) should aim at.
func (c *Compiler) here() int { return len(c.chunk.Code) }

// emitJump writes op followed by a placeholder u32 offset, returning
// the offset of that placeholder for a later patch call.
func (c *Compiler) emitJump(line int, op bytecode.OpCode) int {
	c.emit(line, op)
	pos := c.here()
	c.emitU32(0)
	return pos
}

// patchJump overwrites the placeholder at pos with the current write
// position as an absolute byte offset into the chunk.
func (c *Compiler) patchJump(pos int) {
	target := uint32(c.here())
	c.chunk.PatchU32(pos, target)
}

// ---- literals ----

func (c *Compiler) VisitBoolLiteral(e *parser.BoolLiteral) error {
	idx := c.chunk.AddConstant(value.Boolean(e.Value))
	c.emit(e.Line(), bytecode.PUSH)
	c.emitU16(idx)
	return nil
}

func (c *Compiler) VisitIntLiteral(e *parser.IntLiteral) error {
	n, err := value.ParseInteger(e.Text)
	if err != nil {
		c.fail(e.Line(), "%v", err)
		return nil
	}
	idx := c.chunk.AddConstant(n)
	c.emit(e.Line(), bytecode.PUSH)
	c.emitU16(idx)
	return nil
}

func (c *Compiler) VisitDecimalLiteral(e *parser.DecimalLiteral) error {
	d, err := value.ParseDecimal(e.Text)
	if err != nil {
		c.fail(e.Line(), "%v", err)
		return nil
	}
	idx := c.chunk.AddConstant(d)
	c.emit(e.Line(), bytecode.PUSH)
	c.emitU16(idx)
	return nil
}

func (c *Compiler) VisitStringLiteral(e *parser.StringLiteral) error {
	idx := c.chunk.AddConstant(value.String(e.Value))
	c.emit(e.Line(), bytecode.PUSH)
	c.emitU16(idx)
	return nil
}

func (c *Compiler) VisitRegexLiteral(e *parser.RegexLiteral) error {
	re, verr := value.NewRegex(e.Pattern, e.Flags)
	if verr != nil {
		c.fail(e.Line(), "%s", verr.Error())
		return nil
	}
	idx := c.chunk.AddConstant(re)
	c.emit(e.Line(), bytecode.PUSH)
	c.emitU16(idx)
	return nil
}

// VisitIdentifier pushes an Unresolved Reference to the named slot.
// RREF is never emitted here — every opcode that needs a concrete
// value resolves a Reference operand itself, so plain reads and
// assignment targets share one code path.
func (c *Compiler) VisitIdentifier(e *parser.Identifier) error {
	idx := c.chunk.AddName(e.Name)
	c.emit(e.Line(), bytecode.REF)
	c.emitU16(idx)
	return nil
}

// ---- collections ----

func (c *Compiler) VisitArrayLiteral(e *parser.ArrayLiteral) error {
	for _, elem := range e.Elements {
		if err := elem.Accept(c); err != nil {
			return err
		}
	}
	c.emit(e.Line(), bytecode.MKAR)
	c.emitU16(uint16(len(e.Elements)))
	return nil
}

func (c *Compiler) VisitObjectLiteral(e *parser.ObjectLiteral) error {
	for i := range e.Keys {
		if err := e.Keys[i].Accept(c); err != nil {
			return err
		}
		if err := e.Values[i].Accept(c); err != nil {
			return err
		}
	}
	c.emit(e.Line(), bytecode.MKOB)
	c.emitU16(uint16(len(e.Keys)))
	return nil
}

func (c *Compiler) VisitRangeExpr(e *parser.RangeExpr) error {
	if err := e.Start.Accept(c); err != nil {
		return err
	}
	if err := e.End.Accept(c); err != nil {
		return err
	}
	c.emit(e.Line(), bytecode.MKRG)
	return nil
}

// ---- operators ----

func (c *Compiler) VisitUnaryExpr(e *parser.UnaryExpr) error {
	if err := e.Operand.Accept(c); err != nil {
		return err
	}
	switch e.Operator {
	case lexer.TokenMinus:
		c.emit(e.Line(), bytecode.NEG)
	case lexer.TokenNot:
		c.emit(e.Line(), bytecode.NOT)
	case lexer.TokenTilde:
		c.emit(e.Line(), bytecode.BNOT)
	default:
		c.fail(e.Line(), "unsupported unary operator %q", e.Operator)
	}
	return nil
}

func (c *Compiler) VisitBinaryExpr(e *parser.BinaryExpr) error {
	if err := e.Left.Accept(c); err != nil {
		return err
	}
	if err := e.Right.Accept(c); err != nil {
		return err
	}
	op, ok := binaryOps[e.Operator]
	if !ok {
		c.fail(e.Line(), "unsupported binary operator %q", e.Operator)
		return nil
	}
	c.emit(e.Line(), op)
	return nil
}

// VisitLogicalExpr short-circuits && and || via jumps rather than
// always evaluating both sides.
func (c *Compiler) VisitLogicalExpr(e *parser.LogicalExpr) error {
	if err := e.Left.Accept(c); err != nil {
		return err
	}
	switch e.Operator {
	case lexer.TokenAnd:
		// if left is falsy, short-circuit with left's value; duplicate
		// so the falsy test doesn't consume the value we might return.
		c.emit(e.Line(), bytecode.DUP)
		shortCircuit := c.emitJump(e.Line(), bytecode.JMPF)
		c.emit(e.Line(), bytecode.POP)
		if err := e.Right.Accept(c); err != nil {
			return err
		}
		c.patchJump(shortCircuit)
	case lexer.TokenOr:
		c.emit(e.Line(), bytecode.DUP)
		shortCircuit := c.emitJump(e.Line(), bytecode.JMPT)
		c.emit(e.Line(), bytecode.POP)
		if err := e.Right.Accept(c); err != nil {
			return err
		}
		c.patchJump(shortCircuit)
	default:
		c.fail(e.Line(), "unsupported logical operator %q", e.Operator)
	}
	return nil
}

func (c *Compiler) VisitMatchExpr(e *parser.MatchExpr) error {
	if err := e.Left.Accept(c); err != nil {
		return err
	}
	if err := e.Right.Accept(c); err != nil {
		return err
	}
	op, ok := matchOps[e.Operator]
	if !ok {
		c.fail(e.Line(), "unsupported matching operator %q", e.Operator)
		return nil
	}
	c.emit(e.Line(), op)
	return nil
}

func (c *Compiler) VisitCastExpr(e *parser.CastExpr) error {
	if err := e.Operand.Accept(c); err != nil {
		return err
	}
	idx := c.chunk.AddName(e.TypeName)
	c.emit(e.Line(), bytecode.LCST)
	c.emitU16(idx)
	return nil
}

// ---- references / assignment ----

func (c *Compiler) VisitIndexExpr(e *parser.IndexExpr) error {
	if err := e.Object.Accept(c); err != nil {
		return err
	}
	if err := e.Index.Accept(c); err != nil {
		return err
	}
	c.emit(e.Line(), bytecode.IDEX)
	return nil
}

func (c *Compiler) VisitAssignExpr(e *parser.AssignExpr) error {
	if err := e.Value.Accept(c); err != nil {
		return err
	}
	if err := c.compileTarget(e.Target); err != nil {
		return err
	}
	c.emit(e.Line(), bytecode.WREF)
	return nil
}

// VisitCompoundAssignExpr desugars `target op= value` into reading the
// target, combining, and writing back, rather than adding a dedicated
// read-modify-write opcode.
func (c *Compiler) VisitCompoundAssignExpr(e *parser.CompoundAssignExpr) error {
	if err := c.compileTarget(e.Target); err != nil {
		return err
	}
	c.emit(e.Line(), bytecode.DUP)
	c.emit(e.Line(), bytecode.RREF)
	if err := e.Value.Accept(c); err != nil {
		return err
	}
	op, ok := compoundOps[e.Operator]
	if !ok {
		c.fail(e.Line(), "unsupported compound-assignment operator %q", e.Operator)
		return nil
	}
	c.emit(e.Line(), op)
	c.emit(e.Line(), bytecode.SWP)
	c.emit(e.Line(), bytecode.WREF)
	return nil
}

// compileTarget emits a Reference to an assignment target: REF for a
// bare identifier, or REF-then-IDEX-composed for an index chain.
func (c *Compiler) compileTarget(target parser.Expr) error {
	switch t := target.(type) {
	case *parser.Identifier:
		return t.Accept(c)
	case *parser.IndexExpr:
		if err := c.compileTarget(t.Object); err != nil {
			return err
		}
		if err := t.Index.Accept(c); err != nil {
			return err
		}
		c.emit(t.Line(), bytecode.IDEX)
		return nil
	default:
		c.fail(target.Line(), "invalid assignment target")
		return nil
	}
}

// ---- calls & control flow ----

func (c *Compiler) VisitCallExpr(e *parser.CallExpr) error {
	for _, arg := range e.Args {
		if err := arg.Accept(c); err != nil {
			return err
		}
	}
	if err := e.Callee.Accept(c); err != nil {
		return err
	}
	c.emit(e.Line(), bytecode.CALL)
	c.emitByte(byte(len(e.Args)))
	return nil
}

func (c *Compiler) VisitIfExpr(e *parser.IfExpr) error {
	if err := e.Cond.Accept(c); err != nil {
		return err
	}
	elseJump := c.emitJump(e.Line(), bytecode.JMPF)
	if err := e.Then.Accept(c); err != nil {
		return err
	}
	endJump := c.emitJump(e.Line(), bytecode.JMP)
	c.patchJump(elseJump)
	if e.Else != nil {
		if err := e.Else.Accept(c); err != nil {
			return err
		}
	} else {
		idx := c.chunk.AddConstant(value.Boolean(false))
		c.emit(e.Line(), bytecode.PUSH)
		c.emitU16(idx)
	}
	c.patchJump(endJump)
	return nil
}

func (c *Compiler) VisitBlockExpr(e *parser.BlockExpr) error {
	c.emit(e.Line(), bytecode.SCI)
	if len(e.Exprs) == 0 {
		idx := c.chunk.AddConstant(value.Boolean(false))
		c.emit(e.Line(), bytecode.PUSH)
		c.emitU16(idx)
	}
	for i, sub := range e.Exprs {
		if err := sub.Accept(c); err != nil {
			return err
		}
		if i < len(e.Exprs)-1 {
			c.emit(sub.Line(), bytecode.POP)
		}
	}
	c.emit(e.Line(), bytecode.SCO)
	return nil
}
