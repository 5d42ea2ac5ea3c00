// internal/parser/parser.go
package parser

import (
	"fmt"
	"strings"

	"lavendeux/internal/errors"
	"lavendeux/internal/lexer"
)

// precedence gives the binding power of each infix operator for the
// Pratt climb in parseBinary. Matching keyword-operators bind just
// tighter than comparison and looser than the bitwise and additive
// levels.
var precedence = map[lexer.TokenType]int{
	lexer.TokenOr:  1,
	lexer.TokenAnd: 2,

	lexer.TokenDoubleEqual: 3,
	lexer.TokenNotEqual:    3,
	lexer.TokenStrictEqual: 3,
	lexer.TokenStrictNeq:   3,
	lexer.TokenLT:          3,
	lexer.TokenGT:          3,
	lexer.TokenLE:          3,
	lexer.TokenGE:          3,

	lexer.TokenMatches:    4,
	lexer.TokenStartsWith: 4,
	lexer.TokenEndsWith:   4,
	lexer.TokenContains:   4,

	lexer.TokenPipe:  5,
	lexer.TokenCaret: 6,
	lexer.TokenAmp:   7,
	lexer.TokenShl:   8,
	lexer.TokenShr:   8,

	lexer.TokenPlus:  9,
	lexer.TokenMinus: 9,

	lexer.TokenStar:    10,
	lexer.TokenSlash:   10,
	lexer.TokenPercent: 10,

	lexer.TokenPow: 11,

	lexer.TokenDotDot: 12,
}

var assignOps = map[lexer.TokenType]lexer.TokenType{
	lexer.TokenPlusEq:    lexer.TokenPlus,
	lexer.TokenMinusEq:   lexer.TokenMinus,
	lexer.TokenStarEq:    lexer.TokenStar,
	lexer.TokenSlashEq:   lexer.TokenSlash,
	lexer.TokenPercentEq: lexer.TokenPercent,
}

type Parser struct {
	tokens  []lexer.Token
	current int
	Errors  []error
	file    string
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

func NewParserWithFile(tokens []lexer.Token, file string) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// Parse consumes the whole token stream and returns the program as a
// sequence of top-level expressions, recovering from syntax errors by
// skipping to the next statement boundary so multiple errors can be
// reported in one pass.
func (p *Parser) Parse() (exprs []Expr, err error) {
	for !p.isAtEnd() {
		e, perr := p.safeExpression()
		if perr != nil {
			p.Errors = append(p.Errors, perr)
			p.synchronize()
			continue
		}
		if e != nil {
			exprs = append(exprs, e)
		}
		p.match(lexer.TokenSemicolon)
	}
	if len(p.Errors) > 0 {
		return exprs, p.Errors[0]
	}
	return exprs, nil
}

func (p *Parser) safeExpression() (e Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*errors.SentraError); ok {
				err = se
				return
			}
			panic(r)
		}
	}()
	return p.expression(), nil
}

func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.previous().Type == lexer.TokenSemicolon {
			return
		}
		switch p.peek().Type {
		case lexer.TokenFn, lexer.TokenIf, lexer.TokenFor, lexer.TokenWhile:
			return
		}
		p.advance()
	}
}

// expression is the entry point used both at top level and inside
// blocks; it dispatches to the declaration-like forms before falling
// into the Pratt climb for ordinary operator expressions.
func (p *Parser) expression() Expr {
	if p.check(lexer.TokenAt) {
		return p.decorated()
	}
	if p.check(lexer.TokenFn) && p.checkNext(lexer.TokenIdent) {
		return p.functionDecl()
	}
	if p.check(lexer.TokenIf) {
		return p.ifExpr()
	}
	if p.check(lexer.TokenFor) {
		return p.forInExpr()
	}
	if p.check(lexer.TokenWhile) {
		return p.whileExpr()
	}
	if p.check(lexer.TokenLBrace) && !(p.current+2 < len(p.tokens) && p.tokens[p.current+2].Type == lexer.TokenColon) {
		return p.blockExpr()
	}
	if p.check(lexer.TokenBreak) {
		line := p.advance().Line
		return &BreakExpr{baseExpr{line}}
	}
	if p.check(lexer.TokenContinue) {
		line := p.advance().Line
		return &ContinueExpr{baseExpr{line}}
	}
	return p.assignment()
}

func (p *Parser) decorated() Expr {
	line := p.advance().Line // '@'
	name := p.consume(lexer.TokenIdent, "expected decorator name").Lexeme
	var args []Expr
	if p.match(lexer.TokenLParen) {
		args = p.argumentList()
	}
	target := p.expression()
	return &DecoratedExpr{baseExpr{line}, name, args, target}
}

func (p *Parser) functionDecl() Expr {
	line := p.advance().Line // 'fn'
	name := p.consume(lexer.TokenIdent, "expected function name").Lexeme
	params := p.paramList()
	retType := p.optionalTypeAnnotation()
	body := p.functionBody()
	return &FunctionDecl{baseExpr{line}, name, params, retType, body}
}

func (p *Parser) paramList() []Param {
	p.consume(lexer.TokenLParen, "expected '(' after function name")
	var params []Param
	for !p.check(lexer.TokenRParen) && !p.isAtEnd() {
		name := p.consume(lexer.TokenIdent, "expected parameter name").Lexeme
		typeName := ""
		if p.match(lexer.TokenColon) {
			typeName = p.typeName()
		}
		var def Expr
		if p.match(lexer.TokenEqual) {
			def = p.ternaryLevel()
		}
		params = append(params, Param{Name: name, TypeName: typeName, Default: def})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "expected ')' after parameters")
	return params
}

func (p *Parser) typeName() string {
	t := p.advance()
	switch t.Type {
	case lexer.TokenTypeBool, lexer.TokenTypeInt, lexer.TokenTypeDecimal,
		lexer.TokenTypeString, lexer.TokenTypeArray, lexer.TokenTypeObject,
		lexer.TokenTypeRange, lexer.TokenTypeFunction, lexer.TokenIdent:
		return t.Lexeme
	}
	p.fail(t, "expected type name")
	return ""
}

func (p *Parser) optionalTypeAnnotation() string {
	if p.match(lexer.TokenColon) {
		return p.typeName()
	}
	return ""
}

func (p *Parser) functionBody() Expr {
	if p.match(lexer.TokenEqual) {
		return p.expression()
	}
	return p.blockExpr()
}

func (p *Parser) blockExpr() Expr {
	line := p.consume(lexer.TokenLBrace, "expected '{'").Line
	var exprs []Expr
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		exprs = append(exprs, p.expression())
		p.match(lexer.TokenSemicolon)
	}
	p.consume(lexer.TokenRBrace, "expected '}'")
	return &BlockExpr{baseExpr{line}, exprs}
}

func (p *Parser) ifExpr() Expr {
	line := p.advance().Line // 'if'
	cond := p.expression()
	then := p.blockExpr()
	var elseBranch Expr
	if p.match(lexer.TokenElse) {
		if p.check(lexer.TokenIf) {
			elseBranch = p.ifExpr()
		} else {
			elseBranch = p.blockExpr()
		}
	}
	return &IfExpr{baseExpr{line}, cond, then, elseBranch}
}

// forInExpr parses `for [ident] in EXPR do BODY [where FILTER]`. The
// loop variable is optional — a bare `for in 0..5 do ...` iterates
// without binding a name.
func (p *Parser) forInExpr() Expr {
	line := p.advance().Line // 'for'
	varName := ""
	if p.check(lexer.TokenIdent) {
		varName = p.advance().Lexeme
	}
	p.consume(lexer.TokenIn, "expected 'in' in for loop")
	iter := p.expression()
	p.consume(lexer.TokenDo, "expected 'do' in for loop")
	body := p.loopBody()
	var filter Expr
	if p.match(lexer.TokenWhere) {
		filter = p.expression()
	}
	return &ForInExpr{baseExpr{line}, varName, iter, body, filter}
}

func (p *Parser) whileExpr() Expr {
	line := p.advance().Line // 'while'
	cond := p.expression()
	p.consume(lexer.TokenDo, "expected 'do' in while loop")
	body := p.loopBody()
	return &WhileExpr{baseExpr{line}, cond, body}
}

// loopBody accepts either a brace block or a single bare expression,
// matching the `for i in 0..5 do i*i` surface form.
func (p *Parser) loopBody() Expr {
	if p.check(lexer.TokenLBrace) {
		return p.blockExpr()
	}
	return p.expression()
}

// assignment handles plain `=` and compound `+=`-family operators. It
// parses the left side as a full ternary/binary expression first and
// only reinterprets it as an assignment target once it sees the
// operator — this lets `a[i][j] = v` fall naturally out of the normal
// postfix-indexing chain built by postfix().
func (p *Parser) assignment() Expr {
	left := p.ternaryLevel()
	if p.check(lexer.TokenEqual) {
		line := p.advance().Line
		p.requireAssignable(left)
		value := p.assignment()
		return &AssignExpr{baseExpr{line}, left, value}
	}
	for tok, base := range assignOps {
		if p.check(tok) {
			line := p.advance().Line
			p.requireAssignable(left)
			value := p.assignment()
			return &CompoundAssignExpr{baseExpr{line}, left, base, value}
		}
	}
	return left
}

func (p *Parser) requireAssignable(e Expr) {
	switch e.(type) {
	case *Identifier, *IndexExpr:
		return
	}
	p.fail(p.previous(), "invalid assignment target")
}

func (p *Parser) ternaryLevel() Expr {
	return p.parseBinary(1)
}

// parseBinary is the precedence-climbing core shared by every binary,
// logical and matching operator.
func (p *Parser) parseBinary(minPrec int) Expr {
	left := p.castLevel()
	for {
		tok := p.peek()
		prec, ok := precedence[tok.Type]
		if !ok || prec < minPrec {
			return left
		}
		op := p.advance()
		right := p.parseBinary(prec + 1)
		left = p.combine(left, op, right)
	}
}

func (p *Parser) combine(left Expr, op lexer.Token, right Expr) Expr {
	line := op.Line
	switch op.Type {
	case lexer.TokenAnd, lexer.TokenOr:
		return &LogicalExpr{baseExpr{line}, left, right, op.Type}
	case lexer.TokenMatches, lexer.TokenStartsWith, lexer.TokenEndsWith, lexer.TokenContains:
		return &MatchExpr{baseExpr{line}, left, right, op.Type}
	case lexer.TokenDotDot:
		return &RangeExpr{baseExpr{line}, left, right}
	default:
		return &BinaryExpr{baseExpr{line}, left, right, op.Type}
	}
}

func (p *Parser) castLevel() Expr {
	e := p.unary()
	for p.match(lexer.TokenAs) {
		line := p.previous().Line
		typeName := p.typeName()
		e = &CastExpr{baseExpr{line}, e, typeName}
	}
	return e
}

func (p *Parser) unary() Expr {
	if p.check(lexer.TokenMinus) || p.check(lexer.TokenNot) || p.check(lexer.TokenTilde) {
		op := p.advance()
		operand := p.unary()
		return &UnaryExpr{baseExpr{op.Line}, op.Type, operand}
	}
	return p.postfix()
}

// postfix handles call-application and indexing chains: f(x)[0](y).
func (p *Parser) postfix() Expr {
	e := p.primary()
	for {
		switch {
		case p.match(lexer.TokenLParen):
			args := p.argumentList()
			e = &CallExpr{baseExpr{e.Line()}, e, args}
		case p.match(lexer.TokenLBracket):
			idx := p.expression()
			p.consume(lexer.TokenRBracket, "expected ']' after index")
			e = &IndexExpr{baseExpr{e.Line()}, e, idx}
		default:
			return e
		}
	}
}

func (p *Parser) argumentList() []Expr {
	var args []Expr
	for !p.check(lexer.TokenRParen) && !p.isAtEnd() {
		args = append(args, p.ternaryLevel())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "expected ')' after arguments")
	return args
}

func (p *Parser) primary() Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenTrue:
		p.advance()
		return &BoolLiteral{baseExpr{tok.Line}, true}
	case lexer.TokenFalse:
		p.advance()
		return &BoolLiteral{baseExpr{tok.Line}, false}
	case lexer.TokenInteger:
		p.advance()
		return &IntLiteral{baseExpr{tok.Line}, tok.Lexeme}
	case lexer.TokenDecimal:
		p.advance()
		return &DecimalLiteral{baseExpr{tok.Line}, tok.Lexeme}
	case lexer.TokenString:
		p.advance()
		return &StringLiteral{baseExpr{tok.Line}, tok.Lexeme}
	case lexer.TokenRegex:
		p.advance()
		pattern, flags := splitRegexLexeme(tok.Lexeme)
		return &RegexLiteral{baseExpr{tok.Line}, pattern, flags}
	case lexer.TokenIdent:
		p.advance()
		return &Identifier{baseExpr{tok.Line}, tok.Lexeme}
	case lexer.TokenLBracket:
		return p.arrayLiteral()
	case lexer.TokenLBrace:
		return p.objectLiteral()
	case lexer.TokenLParen:
		p.advance()
		e := p.expression()
		p.consume(lexer.TokenRParen, "expected ')'")
		return e
	case lexer.TokenFn:
		return p.lambdaExpr()
	case lexer.TokenIf:
		return p.ifExpr()
	}
	p.fail(tok, fmt.Sprintf("unexpected token %q", tok.Lexeme))
	return nil
}

func (p *Parser) lambdaExpr() Expr {
	line := p.advance().Line // 'fn'
	params := p.paramList()
	retType := p.optionalTypeAnnotation()
	body := p.functionBody()
	return &LambdaExpr{baseExpr{line}, params, retType, body}
}

func (p *Parser) arrayLiteral() Expr {
	line := p.advance().Line // '['
	var elems []Expr
	for !p.check(lexer.TokenRBracket) && !p.isAtEnd() {
		elems = append(elems, p.ternaryLevel())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBracket, "expected ']'")
	return &ArrayLiteral{baseExpr{line}, elems}
}

func (p *Parser) objectLiteral() Expr {
	line := p.advance().Line // '{'
	var keys, values []Expr
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		var key Expr
		if p.check(lexer.TokenIdent) {
			t := p.advance()
			key = &StringLiteral{baseExpr{t.Line}, t.Lexeme}
		} else {
			key = p.ternaryLevel()
		}
		p.consume(lexer.TokenColon, "expected ':' after object key")
		val := p.ternaryLevel()
		keys = append(keys, key)
		values = append(values, val)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBrace, "expected '}'")
	return &ObjectLiteral{baseExpr{line}, keys, values}
}

func splitRegexLexeme(lexeme string) (pattern, flags string) {
	last := strings.LastIndexByte(lexeme, '/')
	if last <= 0 {
		return lexeme, ""
	}
	return lexeme[1:last], lexeme[last+1:]
}

// ---- low-level token helpers ----

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) checkNext(t lexer.TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(p.peek(), msg)
	return lexer.Token{}
}

func (p *Parser) fail(tok lexer.Token, msg string) {
	err := errors.NewSyntaxError(msg, p.file, tok.Line, tok.Column)
	panic(err)
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}
