// Package parser builds an AST from tokens by recursive descent.
//
// Grammar, lowest precedence first:
//
//	program   -> 'program' ident ';' block '.'
//	block     -> { 'var' (idlist ':' ident ';')+ | procdecl }* compound
//	procdecl  -> 'procedure' ident [ '(' params { ';' params } ')' ] ';' block ';'
//	compound  -> 'begin' statement { ';' statement } 'end'
//	statement -> compound | ident ':=' expr | ident '(' [ args ] ')' | empty
//	expr      -> term { ('+'|'-') term }
//	term      -> unary { ('*'|'/'|'mod') unary }
//	unary     -> ('+'|'-') unary | number | ident | '(' expr ')'
//
// Syntax errors never stop the parser. Every parse function returns a node,
// possibly a placeholder, and records diagnostics in the reporter.
package parser

import (
	"github.com/strager/minipas/ast"
	"github.com/strager/minipas/lexer"
	"github.com/strager/minipas/report"
)

type Parser struct {
	tokens []lexer.Token
	pos    int
	r      *report.Reporter

	// lastErrorPos suppresses a second syntax error at the same token.
	lastErrorPos int
}

// New returns a parser over tokens, which must end with an EOF token as
// produced by lexer.Tokenize.
func New(tokens []lexer.Token, r *report.Reporter) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.EOF {
		pos := 0
		if len(tokens) > 0 {
			pos = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens, lexer.Token{Type: lexer.EOF, Pos: pos})
	}
	return &Parser{tokens: tokens, r: r, lastErrorPos: -1}
}

func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

// accept consumes the current token if it has type typ.
func (p *Parser) accept(typ lexer.TokenType) bool {
	if p.cur().Type == typ {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) errorAt(pos int, kind report.ErrorType, extra ...string) {
	if pos == p.lastErrorPos {
		return
	}
	p.lastErrorPos = pos
	p.r.Error(pos, kind, extra...)
}

// expect consumes a token of type typ. On mismatch it reports
// expected-token at the current token, consumes nothing, and returns a
// placeholder token positioned there.
func (p *Parser) expect(typ lexer.TokenType) lexer.Token {
	if p.cur().Type == typ {
		return p.advance()
	}
	p.errorAt(p.cur().Pos, report.ErrExpected, typ.String())
	return lexer.Token{Type: lexer.ILLEGAL, Pos: p.cur().Pos}
}

// ParseProgram parses a whole source file.
func (p *Parser) ParseProgram() *ast.Program {
	p.expect(lexer.PROGRAM)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.SEMICOLON)
	block := p.parseBlock()
	p.expect(lexer.DOT)
	if tok := p.cur(); tok.Type != lexer.EOF {
		p.errorAt(tok.Pos, report.ErrExpected, lexer.EOF.String())
	}
	return &ast.Program{Token: name, Name: name.Text, Block: block}
}

// ParseExpression parses a standalone expression followed by end of file.
func (p *Parser) ParseExpression() ast.Expression {
	expr := p.parseExpr()
	if tok := p.cur(); tok.Type != lexer.EOF {
		p.errorAt(tok.Pos, report.ErrExpected, lexer.EOF.String())
	}
	return expr
}

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{}
	for {
		if p.accept(lexer.VAR) {
			for {
				for _, decl := range p.parseVarDecls() {
					block.Declarations = append(block.Declarations, decl)
				}
				p.expect(lexer.SEMICOLON)
				if p.cur().Type != lexer.IDENT {
					break
				}
			}
		} else if p.accept(lexer.PROCEDURE) {
			block.Declarations = append(block.Declarations, p.parseProcDecl())
			p.expect(lexer.SEMICOLON)
		} else {
			break
		}
	}
	block.Body = p.parseCompound()
	return block
}

func (p *Parser) parseIdentList() []lexer.Token {
	ids := []lexer.Token{p.expect(lexer.IDENT)}
	for p.accept(lexer.COMMA) {
		ids = append(ids, p.expect(lexer.IDENT))
	}
	return ids
}

func (p *Parser) parseTypeRef() *ast.TypeRef {
	tok := p.expect(lexer.IDENT)
	return &ast.TypeRef{Token: tok, Name: tok.Text}
}

func variable(tok lexer.Token) *ast.Variable {
	return &ast.Variable{Token: tok, Name: tok.Text}
}

// parseVarDecls parses "a, b: integer" into one VarDecl per name.
func (p *Parser) parseVarDecls() []*ast.VarDecl {
	ids := p.parseIdentList()
	p.expect(lexer.COLON)
	typ := p.parseTypeRef()

	decls := make([]*ast.VarDecl, 0, len(ids))
	for _, id := range ids {
		t := *typ
		decls = append(decls, &ast.VarDecl{Var: variable(id), Type: &t})
	}
	return decls
}

func (p *Parser) parseParams() []*ast.Param {
	ids := p.parseIdentList()
	p.expect(lexer.COLON)
	typ := p.parseTypeRef()

	params := make([]*ast.Param, 0, len(ids))
	for _, id := range ids {
		t := *typ
		params = append(params, &ast.Param{Var: variable(id), Type: &t})
	}
	return params
}

func (p *Parser) parseProcDecl() *ast.ProcDecl {
	name := p.expect(lexer.IDENT)
	proc := &ast.ProcDecl{Token: name, Name: name.Text}
	if p.accept(lexer.LPAREN) {
		for {
			proc.Params = append(proc.Params, p.parseParams()...)
			if !p.accept(lexer.SEMICOLON) {
				break
			}
		}
		p.expect(lexer.RPAREN)
	}
	p.expect(lexer.SEMICOLON)
	proc.Block = p.parseBlock()
	return proc
}

func (p *Parser) parseCompound() *ast.Compound {
	begin := p.expect(lexer.BEGIN)
	compound := &ast.Compound{Token: begin}
	compound.Children = append(compound.Children, p.parseStatement())
	for {
		if p.accept(lexer.SEMICOLON) {
			compound.Children = append(compound.Children, p.parseStatement())
			continue
		}
		if t := p.cur().Type; t == lexer.END || t == lexer.DOT || t == lexer.EOF {
			break
		}
		p.errorAt(p.cur().Pos, report.ErrExpected, lexer.SEMICOLON.String())
		p.synchronize()
	}
	p.expect(lexer.END)
	return compound
}

// synchronize skips to the next token a statement list can resume at.
func (p *Parser) synchronize() {
	for {
		switch p.cur().Type {
		case lexer.SEMICOLON, lexer.END, lexer.DOT, lexer.EOF:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseStatement() ast.Statement {
	tok := p.cur()
	switch tok.Type {
	case lexer.BEGIN:
		return p.parseCompound()
	case lexer.IDENT:
		switch p.peek().Type {
		case lexer.ASSIGN:
			p.advance()
			op := p.advance()
			return &ast.Assignment{Token: op, Left: variable(tok), Right: p.parseExpr()}
		case lexer.LPAREN:
			p.advance()
			p.advance()
			return &ast.ProcCall{Token: tok, Name: tok.Text, Args: p.parseArgs()}
		default:
			p.advance()
			p.errorAt(tok.Pos, report.ErrIllegalStatement)
			return &ast.NullStatement{Token: tok}
		}
	case lexer.END:
		return &ast.NullStatement{Token: tok}
	default:
		p.errorAt(tok.Pos, report.ErrIllegalStatement)
		return &ast.NullStatement{Token: tok}
	}
}

// parseArgs parses a call's arguments after the '('.
func (p *Parser) parseArgs() []ast.Expression {
	var args []ast.Expression
	if p.accept(lexer.RPAREN) {
		return args
	}
	for {
		args = append(args, p.parseExpr())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parseExpr() ast.Expression {
	left := p.parseTerm()
	for {
		op := p.cur()
		if op.Type != lexer.PLUS && op.Type != lexer.MINUS {
			return left
		}
		p.advance()
		left = &ast.BinaryOp{Token: op, Op: op.Type, Left: left, Right: p.parseTerm()}
	}
}

func (p *Parser) parseTerm() ast.Expression {
	left := p.parseUnary()
	for {
		op := p.cur()
		if op.Type != lexer.STAR && op.Type != lexer.SLASH && op.Type != lexer.MOD {
			return left
		}
		p.advance()
		left = &ast.BinaryOp{Token: op, Op: op.Type, Left: left, Right: p.parseUnary()}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case lexer.PLUS, lexer.MINUS:
		p.advance()
		return &ast.UnaryOp{Token: tok, Op: tok.Type, Operand: p.parseUnary()}
	case lexer.NUMBER:
		p.advance()
		return &ast.Number{Token: tok, Value: tok.Text}
	case lexer.IDENT:
		p.advance()
		return variable(tok)
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpr()
		p.expect(lexer.RPAREN)
		return expr
	default:
		p.errorAt(tok.Pos, report.ErrUnexpectedWord)
		return &ast.NullStatement{Token: tok}
	}
}
