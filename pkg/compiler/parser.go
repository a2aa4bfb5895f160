package compiler

import (
	"fmt"

	"cfront/pkg/diag"
)

// Parser pulls tokens from a Lexer on demand and builds a typed AST.
// Declarations are entered into the symbol table as soon as their
// declarator is complete, so every later use sees the final type and
// linkage.
//
// Grammar (C23 subset, no struct/union):
//
//	unit        = (declaration | funcDef)* EOF
//	declaration = declSpecs (initDeclarator ("," initDeclarator)*)? ";"
//	            | static_assert "(" constExpr ("," STRING)? ")" ";"
//	declSpecs   = (storage | qualifier | typeSpec | inline | alignas)+
//	typeSpec    = void | bool | char | short | int | long | float | double
//	            | signed | unsigned | enumSpec | typeof | TYPEDEF_NAME
//	enumSpec    = "enum" IDENT? (":" specQuals)? ("{" enumerator ("," enumerator)* ","? "}")?
//	typeof      = ("typeof" | "typeof_unqual") "(" (typeName | expr) ")"
//	declarator  = ("*" qualifier*)* (IDENT | "(" declarator ")") suffix*
//	suffix      = "[" constExpr? "]" | "(" params ")"
//	statement   = block | if | while | do | for | switch | case | default
//	            | break | continue | return | goto | label | exprStmt
//	expr        = assign ("," assign)*
//	assign      = cond (assignOp assign)?
//	cond        = binary ("?" expr ":" cond)?
//	binary      = cast (binOp cast)*         precedence climbing
//	cast        = "(" typeName ")" cast | unary
//	unary       = ("++"|"--"|"&"|"*"|"+"|"-"|"~"|"!") cast | sizeof | alignof | postfix
//	postfix     = primary ("[" expr "]" | "(" args ")" | "++" | "--")*
type Parser struct {
	lex     *Lexer
	queue   *LiteralQueue
	buf     []Token // lookahead, filled lazily
	lexErr  error   // first lexer failure; the stream ends there
	lastRaw string  // queue entry of the literal consumed last

	syms  *SymbolTable
	res   *Resolver
	arena *Arena
	unit  *Unit
	fn    *funcState
}

// funcState is the per-function context while parsing a body.
type funcState struct {
	sym      *Symbol
	ret      *Type
	labels   map[string]bool
	gotos    []Token
	switches []*switchState
	loops    int // enclosing loops
	breaks   int // enclosing loops and switches
}

type switchState struct {
	stmt    *Stmt
	ctrl    *Type
	seen    map[uint64]bool
	hasDflt bool
}

// NewParser creates a parser reading from lex. Literal tokens are matched
// against entries of q as they are consumed.
func NewParser(lex *Lexer, q *LiteralQueue, syms *SymbolTable, res *Resolver) *Parser {
	arena := &Arena{}
	p := &Parser{
		lex:   lex,
		queue: q,
		syms:  syms,
		res:   res,
		arena: arena,
		unit:  &Unit{File: lex.file, Arena: arena},
	}
	p.predeclare()
	return p
}

// fill makes sure at least n tokens are buffered.
func (p *Parser) fill(n int) {
	for len(p.buf) < n {
		if p.lexErr != nil {
			p.buf = append(p.buf, Token{Type: EOF, Pos: p.lex.here()})
			continue
		}
		tok, err := p.lex.Next()
		if err != nil {
			p.lexErr = err
			tok = Token{Type: EOF, Pos: p.lex.here()}
		}
		p.buf = append(p.buf, tok)
	}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token { return p.peekAt(0) }

// peekAt returns the token at the given offset from the current position.
func (p *Parser) peekAt(offset int) Token {
	p.fill(offset + 1)
	return p.buf[offset]
}

// advance consumes and returns the current token. Consuming a character or
// string token also takes its entry off the literal queue.
func (p *Parser) advance() Token {
	p.fill(1)
	tok := p.buf[0]
	if tok.Type == EOF {
		return tok
	}
	p.buf = p.buf[1:]
	if tok.Type.isLiteral() {
		raw := p.queue.Pop()
		diag.Assert(raw == tok.Lexeme, "raw == tok.Lexeme")
		p.lastRaw = raw
	}
	return tok
}

// accept consumes the current token if it has type tt.
func (p *Parser) accept(tt TokenType) bool {
	if p.peek().Type == tt {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s, got %s", tt, describe(tok))
	}
	return p.advance(), nil
}

func describe(tok Token) string {
	if tok.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s (%q)", tok.Type, tok.Lexeme)
}

// errorf reports a syntax error at tok. If the lexer already failed, its
// error explains the problem better and is returned instead.
func (p *Parser) errorf(tok Token, format string, args ...any) error {
	if p.lexErr != nil {
		return p.lexErr
	}
	return syntaxErrorf(tok.Pos, format, args...)
}

// semErrorf reports a semantic error at pos.
func (p *Parser) semErrorf(pos Pos, format string, args ...any) error {
	if p.lexErr != nil {
		return p.lexErr
	}
	return semErrorf(pos, format, args...)
}

// nestArena gives the caller a fresh arena for the nodes of one block.
// The returned function restores the enclosing arena, merging the nested
// one into it on success and clearing it when *errp is set.
func (p *Parser) nestArena() func(errp *error) {
	outer, inner := p.arena, &Arena{}
	p.arena = inner
	return func(errp *error) {
		p.arena = outer
		if *errp != nil {
			inner.Clear()
			return
		}
		outer.Merge(inner)
	}
}

func (p *Parser) newExpr(e Expr) *Expr { return p.arena.Exprs.Add(e) }
func (p *Parser) newStmt(s Stmt) *Stmt { return p.arena.Stmts.Add(s) }
func (p *Parser) newDecl(d Decl) *Decl { return p.arena.Decls.Add(d) }

// ParseUnit parses the whole translation unit.
func (p *Parser) ParseUnit() (*Unit, error) {
	for p.peek().Type != EOF {
		decls, err := p.parseDeclaration(true)
		if err != nil {
			if p.lexErr != nil {
				return nil, p.lexErr
			}
			return nil, err
		}
		p.unit.Decls = append(p.unit.Decls, decls...)
	}
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	diag.Assert(p.queue.Len() == 0, "literal queue drained at end of unit")
	p.unit.Symbols = p.syms.All()
	return p.unit, nil
}

// skipBalanced consumes a parenthesised group, nested groups included.
func (p *Parser) skipBalanced(open, close TokenType) error {
	start, err := p.expect(open)
	if err != nil {
		return err
	}
	for depth := 1; depth > 0; {
		tok := p.advance()
		switch tok.Type {
		case EOF:
			return p.errorf(start, "unbalanced %s", open)
		case open:
			depth++
		case close:
			depth--
		}
	}
	return nil
}

// skipAttributes consumes GNU __attribute__((...)), __asm__("...") labels
// and C23 [[...]] attribute specifiers. None of them affect the IR.
func (p *Parser) skipAttributes() error {
	for {
		switch {
		case p.peek().Type == ATTRIBUTE || p.peek().Type == ASM:
			p.advance()
			if err := p.skipBalanced(LPAREN, RPAREN); err != nil {
				return err
			}
		case p.peek().Type == LBRACKET && p.peekAt(1).Type == LBRACKET:
			p.advance()
			if err := p.skipBalanced(LBRACKET, RBRACKET); err != nil {
				return err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return err
			}
		case p.peek().Type == EXTENSION:
			p.advance()
		default:
			return nil
		}
	}
}
