// Package parser turns a token stream into an AST forest of top-level
// function declarations, via recursive descent with one token of
// lookahead.
package parser

import (
	"strconv"

	"github.com/skx/tiny-c-compiler/internal/ast"
	"github.com/skx/tiny-c-compiler/internal/diag"
	"github.com/skx/tiny-c-compiler/internal/lexer"
	"github.com/skx/tiny-c-compiler/internal/token"
)

const stageName = "parser"

// Parser consumes a fixed token array left-to-right.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New lexes the entirety of input and returns a Parser positioned at
// its first token. The source buffer is fully tokenised up-front, so
// the parser never touches the lexer again.
func New(input string) *Parser {
	l := lexer.New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return &Parser{tokens: toks}
}

// ParseFile consumes the whole token stream and returns every
// top-level function definition it finds, in source order.
func (p *Parser) ParseFile() ([]*ast.FunctionDecl, error) {
	var functions []*ast.FunctionDecl

	for !p.atEnd() {
		if p.looksLikeFunction() {
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			functions = append(functions, fn)
			continue
		}
		// Not a recognised top-level construct: skip one token to
		// guarantee forward progress.
		p.advance()
	}

	return functions, nil
}

// looksLikeFunction reports whether the three-token prefix at the
// cursor is `<type-keyword> <identifier> (`.
func (p *Parser) looksLikeFunction() bool {
	return token.IsTypeKeyword(p.peek().Type) &&
		p.peekAhead(1).Type == token.IDENT &&
		p.peekAhead(2).Type == token.LPAREN
}

func (p *Parser) parseFunction() (*ast.FunctionDecl, error) {
	returnType := p.advance() // type keyword

	nameTok, err := p.expect(token.IDENT, "expected function name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}

	var params []*ast.VarDecl
	for p.peek().Type != token.RPAREN {
		param, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		params = append(params, param)

		if p.peek().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(token.RPAREN, "expected ')' after parameter list"); err != nil {
		return nil, err
	}

	// A function body must be braced; parseBlock alone would also
	// accept a single unbraced statement.
	if p.peek().Type != token.LBRACE {
		return nil, p.errorf("expected '{' to open function body (found %q at token index %d)", p.peek().Literal, p.pos)
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ast.FunctionDecl{
		ReturnType: returnType,
		NameToken:  nameTok,
		Parameters: params,
		Body:       body,
	}, nil
}

// parseVarDecl parses a bare `<type> <name>` pair, used for both
// function parameters and variable declarations.
func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	if !token.IsTypeKeyword(p.peek().Type) {
		return nil, p.errorf("expected a type keyword, found %q", p.peek().Literal)
	}
	typeTok := p.advance()

	nameTok, err := p.expect(token.IDENT, "expected an identifier after type")
	if err != nil {
		return nil, err
	}

	return &ast.VarDecl{NameToken: nameTok, TypeToken: typeTok}, nil
}

// parseBlock parses a `{ ... }` sequence of statements, or — if the
// next token is not `{` — a single statement wrapped in a singleton
// block.
func (p *Parser) parseBlock() (*ast.Block, error) {
	block := &ast.Block{}

	if p.peek().Type != token.LBRACE {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		return block, nil
	}

	p.advance() // consume '{'
	for p.peek().Type != token.RBRACE && !p.atEnd() {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}

	if _, err := p.expect(token.RBRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}

	return block, nil
}

// parseStatement dispatches on the leading token. A nil, nil result
// means "no-op statement" (a bare `;`, or defensive single-token skip)
// and the caller discards it rather than appending to the block.
func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.peek().Type {

	case token.INTTY, token.VOIDTY:
		return p.parseDeclarationStatement()

	case token.RETURN:
		return p.parseReturnStatement()

	case token.IF, token.ELSE:
		return p.parseIfElifElse()

	case token.WHILE:
		return p.parseWhileStatement()

	case token.IDENT:
		if p.peekAhead(1).Type == token.ASSIGN {
			return p.parseAssignmentStatement()
		}
		if p.peekAhead(1).Type == token.LPAREN {
			return p.parseCallStatement()
		}
		p.advance()
		return nil, nil

	case token.SEMICOLON:
		p.advance()
		return nil, nil

	default:
		// `for` has no dedicated statement form (see design notes),
		// and any other unexpected leading token is skipped to
		// guarantee forward progress rather than looping forever.
		p.advance()
		return nil, nil
	}
}

func (p *Parser) parseDeclarationStatement() (ast.Statement, error) {
	decl, err := p.parseVarDecl()
	if err != nil {
		return nil, err
	}

	if p.peek().Type != token.ASSIGN {
		// Bare declaration: the trailing ';', if present, is
		// consumed without further validation.
		if p.peek().Type == token.SEMICOLON {
			p.advance()
		}
		return decl, nil
	}

	p.advance() // consume '='
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after declaration"); err != nil {
		return nil, err
	}

	return &ast.Declaration{Target: decl, Expression: expr}, nil
}

func (p *Parser) parseAssignmentStatement() (ast.Statement, error) {
	nameTok := p.advance()
	p.advance() // consume '='

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after assignment"); err != nil {
		return nil, err
	}

	return &ast.Declaration{Target: &ast.Variable{Token: nameTok}, Expression: expr}, nil
}

func (p *Parser) parseCallStatement() (ast.Statement, error) {
	call, err := p.parseFunctionCall()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after call"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	p.advance() // consume 'return'

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON, "expected ';' after return expression"); err != nil {
		return nil, err
	}

	return &ast.Return{Expression: expr}, nil
}

// parseIfElifElse parses exactly one link of an if/else-if/else chain.
// The links are emitted as peers in the enclosing block, not nested;
// their source order carries the chain semantics.
func (p *Parser) parseIfElifElse() (ast.Statement, error) {
	if p.peek().Type == token.IF {
		p.advance()
		cond, body, err := p.parseParenCondAndBody()
		if err != nil {
			return nil, err
		}
		return &ast.Conditional{Kind: ast.If, Condition: cond, Body: body}, nil
	}

	// token.ELSE
	p.advance()

	if p.peek().Type == token.IF {
		p.advance()
		cond, body, err := p.parseParenCondAndBody()
		if err != nil {
			return nil, err
		}
		return &ast.Conditional{Kind: ast.ElseIf, Condition: cond, Body: body}, nil
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Kind: ast.Else, Body: body}, nil
}

func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	p.advance() // consume 'while'
	cond, body, err := p.parseParenCondAndBody()
	if err != nil {
		return nil, err
	}
	return &ast.While{Condition: cond, Body: body}, nil
}

// parseParenCondAndBody parses `( expr ) block`, used by `if`,
// `else if`, and `while`.
func (p *Parser) parseParenCondAndBody() (ast.Expression, *ast.Block, error) {
	if _, err := p.expect(token.LPAREN, "expected '(' after condition keyword"); err != nil {
		return nil, nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(token.RPAREN, "expected ')' after condition"); err != nil {
		return nil, nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}
	return cond, body, nil
}

// parseExpression parses a primary, and — if the following token is
// none of ')', ';' or ',' — one binary operator and its right-hand side,
// recursively. This is intentionally right-associative with no
// precedence; see the design notes for why that is preserved.
func (p *Parser) parseExpression() (ast.Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	next := p.peek().Type
	if next == token.RPAREN || next == token.SEMICOLON || next == token.COMMA {
		return left, nil
	}

	op := p.advance()
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.Binary{Left: left, Operator: op, Right: right}, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.peek().Type {

	case token.INT:
		tok := p.advance()
		v, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			return nil, p.errorfAt(tok.Line, "invalid integer literal %q: %s", tok.Literal, err)
		}
		return &ast.IntLiteral{Token: tok, Value: int32(v)}, nil

	case token.IDENT:
		if p.peekAhead(1).Type == token.LPAREN {
			return p.parseFunctionCall()
		}
		tok := p.advance()
		return &ast.Variable{Token: tok}, nil

	default:
		return nil, p.errorf("unexpected token %q in expression", p.peek().Literal)
	}
}

func (p *Parser) parseFunctionCall() (*ast.FunctionCall, error) {
	nameTok := p.advance()

	if _, err := p.expect(token.LPAREN, "expected '(' in function call"); err != nil {
		return nil, err
	}

	var args []ast.Expression
	for p.peek().Type != token.RPAREN {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.peek().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(token.RPAREN, "expected ')' to close argument list"); err != nil {
		return nil, err
	}

	return &ast.FunctionCall{NameToken: nameTok, Arguments: args}, nil
}

// --- token-stream plumbing -------------------------------------------------

func (p *Parser) peek() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekAhead(k int) token.Token {
	idx := p.pos + k
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[idx]
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) expect(t token.Type, message string) (token.Token, error) {
	if p.peek().Type != t {
		return token.Token{}, p.errorf("%s (found %q at token index %d)", message, p.peek().Literal, p.pos)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return diag.Fatalf(stageName, p.peek().Line, format, args...)
}

func (p *Parser) errorfAt(line int, format string, args ...any) error {
	return diag.Fatalf(stageName, line, format, args...)
}
