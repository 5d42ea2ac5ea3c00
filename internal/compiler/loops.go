package compiler

import (
	"lavendeux/internal/bytecode"
	"lavendeux/internal/parser"
	"lavendeux/internal/value"
)

// loopFrame tracks one enclosing loop's patch points. continuePos is
// the absolute offset `continue` jumps back to when it's already known
// at loop-entry (while's condition re-check); continuePos is -1 when
// the continue target is only known after the body compiles (for-in's
// stack-fixup stub), in which case every continue emitted in the
// meantime is recorded in continueJumps for a later patch. breakPatches
// collects every break's forward-jump operand offset so endLoop can
// patch them all to the loop's exit once it's known. A stack rather
// than a single current-loop field, so nested loops resolve
// break/continue against the innermost enclosing one.
type loopFrame struct {
	continuePos   int
	continueJumps []int
	breakPatches  []int
}

// startLoop registers a loop whose continue target is already known
// (e.g. a while loop's condition re-check, the first instruction
// compiled for the loop).
func (c *Compiler) startLoop(continuePos int) {
	c.loops = append(c.loops, &loopFrame{continuePos: continuePos})
}

// startLoopDeferred registers a loop whose continue target isn't known
// until after its body compiles. Call resolveDeferredContinue once
// that target is known, before endLoop pops the frame.
func (c *Compiler) startLoopDeferred() {
	c.loops = append(c.loops, &loopFrame{continuePos: -1})
}

func (c *Compiler) currentLoop() *loopFrame {
	if len(c.loops) == 0 {
		return nil
	}
	return c.loops[len(c.loops)-1]
}

// resolveDeferredContinue patches every continue jump recorded while
// the innermost loop's continue target was still unknown. Must run
// before endLoop pops that frame.
func (c *Compiler) resolveDeferredContinue(target int) {
	frame := c.currentLoop()
	if frame == nil {
		return
	}
	for _, pos := range frame.continueJumps {
		c.chunk.PatchU32(pos, uint32(target))
	}
	frame.continueJumps = nil
}

func (c *Compiler) endLoop() {
	frame := c.loops[len(c.loops)-1]
	c.loops = c.loops[:len(c.loops)-1]
	for _, pos := range frame.breakPatches {
		c.patchJump(pos)
	}
}

func (c *Compiler) VisitBreakExpr(e *parser.BreakExpr) error {
	frame := c.currentLoop()
	if frame == nil {
		c.fail(e.Line(), "break used outside of a loop")
		return nil
	}
	pos := c.emitJump(e.Line(), bytecode.JMP)
	frame.breakPatches = append(frame.breakPatches, pos)
	return nil
}

func (c *Compiler) VisitContinueExpr(e *parser.ContinueExpr) error {
	frame := c.currentLoop()
	if frame == nil {
		c.fail(e.Line(), "continue used outside of a loop")
		return nil
	}
	if frame.continuePos >= 0 {
		c.emit(e.Line(), bytecode.JMP)
		c.emitU32(uint32(frame.continuePos))
		return nil
	}
	pos := c.emitJump(e.Line(), bytecode.JMP)
	frame.continueJumps = append(frame.continueJumps, pos)
	return nil
}

// VisitWhileExpr compiles `while COND do BODY` into: test condition,
// jump past the body if falsy, run body (discarding its value — a
// while loop's own value is always the boolean false sentinel, since
// an indeterminate number of iterations has no single body value to
// report), jump back to the test. break and the falsy-condition exit
// converge on the exact same offset (endLoop runs before the sentinel
// is pushed), so both paths leave the loop with that one false value
// on the stack — a break must never skip the sentinel the normal exit
// produces.
func (c *Compiler) VisitWhileExpr(e *parser.WhileExpr) error {
	condPos := c.here()
	c.startLoop(condPos)
	if err := e.Cond.Accept(c); err != nil {
		return err
	}
	exitJump := c.emitJump(e.Line(), bytecode.JMPF)
	if err := e.Body.Accept(c); err != nil {
		return err
	}
	c.emit(e.Line(), bytecode.POP)
	c.emit(e.Line(), bytecode.JMP)
	c.emitU32(uint32(condPos))
	c.patchJump(exitJump)
	c.endLoop()
	idx := c.chunk.AddConstant(value.Boolean(false))
	c.emit(e.Line(), bytecode.PUSH)
	c.emitU16(idx)
	return nil
}
