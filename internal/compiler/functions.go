package compiler

import (
	"lavendeux/internal/bytecode"
	"lavendeux/internal/parser"
	"lavendeux/internal/value"
)

// compileFunctionBody emits a function-builder bracket (FBEG, one FSIG
// per parameter with an optional FDFT, a JMP around the body so normal
// control flow skips it, the body itself wrapped in a call frame, and
// the closing MKFN) and leaves the resulting Function value on top of
// the stack. name is "" for an anonymous lambda.
func (c *Compiler) compileFunctionBody(line int, name string, params []parser.Param, returnType string, body parser.Expr) error {
	nameIdx := c.chunk.AddName(name)
	c.emit(line, bytecode.FBEG)
	c.emitU16(nameIdx)

	for _, p := range params {
		argIdx := c.chunk.AddName(p.Name)
		typeIdx := c.chunk.AddName(p.TypeName)
		c.emit(line, bytecode.FSIG)
		c.emitU16(argIdx)
		c.emitU16(typeIdx)
		if p.Default != nil {
			if err := p.Default.Accept(c); err != nil {
				return err
			}
			c.emit(line, bytecode.FDFT)
		}
	}

	skip := c.emitJump(line, bytecode.JMP)
	entry := c.here()
	// No SCI/SCL emitted here: CALL's own handler opens the lexical
	// scope and the call-frame lock natively (and binds each parameter
	// by name) before ever setting pc to Entry, mirroring RET's own
	// native scope_out/scope_unlock on the way back out.
	if err := body.Accept(c); err != nil {
		return err
	}
	c.emit(body.Line(), bytecode.RET)
	c.patchJump(skip)

	retIdx := c.chunk.AddName(returnType)
	c.emit(line, bytecode.MKFN)
	c.emitU32(uint32(entry))
	c.emitU16(retIdx)
	return nil
}

// VisitFunctionDecl compiles `fn NAME(...) = BODY` (or a `{...}` block
// body) and binds the resulting Function by name in the global table
// (WRFN writes globals). A function
// declaration has no value of its own, so it reports the same false
// sentinel as other statement-shaped expressions (if/while with no
// branch value).
func (c *Compiler) VisitFunctionDecl(e *parser.FunctionDecl) error {
	line := e.Line()
	if err := c.compileFunctionBody(line, e.Name, e.Params, e.ReturnType, e.Body); err != nil {
		return err
	}
	nameIdx := c.chunk.AddName(e.Name)
	c.emit(line, bytecode.WRFN)
	c.emitU16(nameIdx)

	idx := c.chunk.AddConstant(value.Boolean(false))
	c.emit(line, bytecode.PUSH)
	c.emitU16(idx)
	return nil
}

// VisitLambdaExpr compiles an anonymous `fn(...) = BODY` function
// literal. Unlike a declaration, the Function value itself is the
// expression's result — it's used directly (passed as an argument,
// assigned, called inline), never bound by name here.
func (c *Compiler) VisitLambdaExpr(e *parser.LambdaExpr) error {
	return c.compileFunctionBody(e.Line(), "", e.Params, e.ReturnType, e.Body)
}

// VisitDecoratedExpr rejects `@name(...)` decorators at compile time:
// this language has no runtime decorator-application mechanism, so a
// decorated expression can never be lowered to bytecode.
func (c *Compiler) VisitDecoratedExpr(e *parser.DecoratedExpr) error {
	c.fail(e.Line(), "decorators are not supported: @%s", e.Name)
	return nil
}
