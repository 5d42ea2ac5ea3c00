package compiler

import (
	"lavendeux/internal/bytecode"
	"lavendeux/internal/parser"
)

// VisitForInExpr compiles `for [ident] in ITER do BODY [where FILTER]`.
// The accumulator and the remaining-iterable cursor live on the
// operand stack, in the order [acc, iterable] between iterations:
//
//   - the iterable is materialized to an Array up front (the same LCST
//     path a `as array` cast uses), so NEXT only ever has to step one
//     concrete type;
//   - each pass peeks the iterable for emptiness with JMPE before ever
//     calling NEXT (NEXT itself errors on an empty input), so an
//     exhausted iterable is left on the stack for the final cleanup
//     rather than consumed silently;
//   - NEXT splits a non-empty iterable into (rest, value); value is
//     bound to the loop variable if named;
//   - a `where` clause that evaluates falsy behaves like a break, not
//     a skip: the loop stops at the first element the filter rejects,
//     it does not skip over it and keep going;
//   - the body compiles with the accumulator (not the rest) on top, so
//     its own net-one-value-pushed contract lands the body's result
//     directly above the accumulator for PSAR, with no juggling beyond
//     the SWPs that get it into position and back.
//
// break/continue reached from inside the body run with the stack in
// that same [rest, acc] shape (the body's sub-expressions are net
// zero beyond their own each-one-value contract), which is the mirror
// image of the [acc, rest]-between-iterations shape everywhere else in
// this function — so both patch targets open with a single SWP to put
// the stack back in the shape the rest of the cleanup/loop expects.
func (c *Compiler) VisitForInExpr(e *parser.ForInExpr) error {
	line := e.Line()

	// MKAR with a zero element count, not a pooled empty-array constant:
	// a constant is a single shared *value.Array, and PSAR mutates in
	// place, so reusing the same constant across repeated executions of
	// this loop (e.g. a for-in inside a function called more than once)
	// would leak one call's accumulated elements into the next.
	c.emit(line, bytecode.MKAR)
	c.emitU16(0)
	// stack: acc

	if err := e.Iter.Accept(c); err != nil {
		return err
	}
	arrTypeIdx := c.chunk.AddName("array")
	c.emit(line, bytecode.LCST)
	c.emitU16(arrTypeIdx)
	// stack: acc, iterable

	c.emit(line, bytecode.SCI)
	c.startLoopDeferred()

	loopStart := c.here()
	emptyJump := c.emitJump(line, bytecode.JMPE)
	// stack: acc, iterable (JMPE only peeked; the iterable is still here
	// and known non-empty)

	c.emit(line, bytecode.NEXT)
	// stack: acc, rest, value

	if e.VarName != "" {
		varIdx := c.chunk.AddName(e.VarName)
		c.emit(line, bytecode.REF)
		c.emitU16(varIdx)
		c.emit(line, bytecode.WREF)
		c.emit(line, bytecode.POP)
	} else {
		c.emit(line, bytecode.POP)
	}
	// stack: acc, rest

	var filterBreakJump int
	hasFilter := e.Filter != nil
	if hasFilter {
		if err := e.Filter.Accept(c); err != nil {
			return err
		}
		// stack: acc, rest, filterVal
		passJump := c.emitJump(line, bytecode.JMPT)
		filterBreakJump = c.emitJump(line, bytecode.JMP)
		c.patchJump(passJump)
		// stack: acc, rest
	}

	c.emit(line, bytecode.SWP)
	// stack: rest, acc
	if err := e.Body.Accept(c); err != nil {
		return err
	}
	// stack: rest, acc, bodyVal
	c.emit(e.Body.Line(), bytecode.PSAR)
	// stack: rest, acc'
	c.emit(e.Body.Line(), bytecode.SWP)
	// stack: acc', rest
	c.emit(line, bytecode.JMP)
	c.emitU32(uint32(loopStart))

	// continue, reached mid-body with the stack in [rest, acc] shape:
	// rotate back to [acc, rest] and rejoin the loop top.
	continueStub := c.here()
	c.emit(line, bytecode.SWP)
	c.emit(line, bytecode.JMP)
	c.emitU32(uint32(loopStart))

	// natural exhaustion and a failed `where` both land here with the
	// stack in [acc, leftover] shape; the leftover iterable (empty, or
	// the remainder a where-break stopped on) is simply discarded.
	c.patchJump(emptyJump)
	if hasFilter {
		c.patchJump(filterBreakJump)
	}
	c.emit(line, bytecode.POP)
	// stack: acc
	tailJump := c.emitJump(line, bytecode.JMP)

	// break, reached mid-body with the stack in [rest, acc] shape.
	c.resolveDeferredContinue(continueStub)
	c.endLoop()
	c.emit(line, bytecode.SWP)
	c.emit(line, bytecode.POP)
	// stack: acc

	c.patchJump(tailJump)
	c.emit(line, bytecode.SCO)
	return nil
}
