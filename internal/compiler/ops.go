package compiler

import (
	"lavendeux/internal/bytecode"
	"lavendeux/internal/lexer"
)

var binaryOps = map[lexer.TokenType]bytecode.OpCode{
	lexer.TokenPlus:    bytecode.ADD,
	lexer.TokenMinus:   bytecode.SUB,
	lexer.TokenStar:    bytecode.MUL,
	lexer.TokenSlash:   bytecode.DIV,
	lexer.TokenPercent: bytecode.MOD,
	lexer.TokenPow:     bytecode.POW,

	lexer.TokenAmp:   bytecode.BAND,
	lexer.TokenPipe:  bytecode.BOR,
	lexer.TokenCaret: bytecode.BXOR,
	lexer.TokenShl:   bytecode.SHL,
	lexer.TokenShr:   bytecode.SHR,

	lexer.TokenDoubleEqual: bytecode.EQ,
	lexer.TokenNotEqual:    bytecode.NEQ,
	lexer.TokenStrictEqual: bytecode.SEQ,
	lexer.TokenStrictNeq:   bytecode.SNEQ,
	lexer.TokenLT:          bytecode.LT,
	lexer.TokenGT:          bytecode.GT,
	lexer.TokenLE:          bytecode.LE,
	lexer.TokenGE:          bytecode.GE,
}

var matchOps = map[lexer.TokenType]bytecode.OpCode{
	lexer.TokenMatches:    bytecode.MATCHES,
	lexer.TokenStartsWith: bytecode.STARTSWITH,
	lexer.TokenEndsWith:   bytecode.ENDSWITH,
	lexer.TokenContains:   bytecode.CONTAINS,
}

// compoundOps maps a `+=`-family token to the arithmetic/bitwise op it
// desugars to once the target has been read.
var compoundOps = map[lexer.TokenType]bytecode.OpCode{
	lexer.TokenPlusEq:    bytecode.ADD,
	lexer.TokenMinusEq:   bytecode.SUB,
	lexer.TokenStarEq:    bytecode.MUL,
	lexer.TokenSlashEq:   bytecode.DIV,
	lexer.TokenPercentEq: bytecode.MOD,
}
