package compiler

// parseBlock parses a compound statement. Its nodes live in a nested arena
// until the closing brace is reached. newScope is false for a function
// body, which shares the scope of the parameters.
func (p *Parser) parseBlock(newScope bool) (s *Stmt, err error) {
	lb, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	defer p.nestArena()(&err)
	if newScope {
		defer p.syms.EnterScope()()
	}

	var stmts []*Stmt
	for p.peek().Type != RBRACE {
		if p.peek().Type == EOF {
			return nil, p.errorf(p.peek(), "expected '}' to match '{' at %s", lb.Pos)
		}
		st, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	p.advance()
	return p.newStmt(Stmt{Kind: StmtBlock, Pos: lb.Pos, Stmts: stmts}), nil
}

// parseBlockItem parses a declaration or a statement.
func (p *Parser) parseBlockItem() (*Stmt, error) {
	if err := p.skipAttributes(); err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.Type == IDENTIFIER && p.peekAt(1).Type == COLON {
		return p.parseStatement()
	}
	if p.isDeclStart(tok) {
		decls, err := p.parseDeclaration(false)
		if err != nil {
			return nil, err
		}
		return p.newStmt(Stmt{Kind: StmtDecl, Pos: tok.Pos, Decls: decls}), nil
	}
	return p.parseStatement()
}

// parseStatement parses one statement.
func (p *Parser) parseStatement() (*Stmt, error) {
	if err := p.skipAttributes(); err != nil {
		return nil, err
	}
	tok := p.peek()
	switch tok.Type {
	case LBRACE:
		return p.parseBlock(true)
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case DO:
		return p.parseDoWhile()
	case FOR:
		return p.parseFor()
	case SWITCH:
		return p.parseSwitch()
	case CASE:
		return p.parseCase()
	case DEFAULT:
		return p.parseDefault()
	case BREAK, CONTINUE:
		return p.parseJump()
	case RETURN:
		return p.parseReturn()
	case GOTO:
		p.advance()
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		p.fn.gotos = append(p.fn.gotos, name)
		return p.newStmt(Stmt{Kind: StmtGoto, Pos: tok.Pos, Label: name.Lexeme}), nil
	case SEMICOLON:
		p.advance()
		return p.newStmt(Stmt{Kind: StmtEmpty, Pos: tok.Pos}), nil
	case IDENTIFIER:
		if p.peekAt(1).Type == COLON {
			return p.parseLabel()
		}
	}

	if p.isDeclStart(tok) {
		return nil, p.errorf(tok, "a declaration is not a statement; enclose it in braces")
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if e, err = p.rvalue(e); err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return p.newStmt(Stmt{Kind: StmtExpr, Pos: tok.Pos, Expr: e}), nil
}

// labeledBody parses what follows a label. A label may also precede a
// declaration or the closing brace of a block.
func (p *Parser) labeledBody(pos Pos) (*Stmt, error) {
	tok := p.peek()
	switch {
	case tok.Type == RBRACE:
		return p.newStmt(Stmt{Kind: StmtEmpty, Pos: pos}), nil
	case p.isDeclStart(tok) && !(tok.Type == IDENTIFIER && p.peekAt(1).Type == COLON):
		decls, err := p.parseDeclaration(false)
		if err != nil {
			return nil, err
		}
		return p.newStmt(Stmt{Kind: StmtDecl, Pos: tok.Pos, Decls: decls}), nil
	}
	return p.parseStatement()
}

// parseCondition parses "(" expr ")" as a controlling expression.
func (p *Parser) parseCondition() (*Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return p.scalarCond(e)
}

func (p *Parser) scalarCond(e *Expr) (*Expr, error) {
	e, err := p.rvalue(e)
	if err != nil {
		return nil, err
	}
	if !e.Type.IsScalar() {
		return nil, p.semErrorf(e.Pos, "statement requires expression of scalar type ('%s' invalid)", e.Type)
	}
	return e, nil
}

func (p *Parser) parseIf() (*Stmt, error) {
	tok := p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	s := Stmt{Kind: StmtIf, Pos: tok.Pos, Cond: cond, Body: body}
	if p.accept(ELSE) {
		if s.Else, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return p.newStmt(s), nil
}

// loopBody parses the body of a loop, where break and continue are valid.
func (p *Parser) loopBody() (*Stmt, error) {
	p.fn.loops++
	p.fn.breaks++
	defer func() {
		p.fn.loops--
		p.fn.breaks--
	}()
	return p.parseStatement()
}

func (p *Parser) parseWhile() (*Stmt, error) {
	tok := p.advance()
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	return p.newStmt(Stmt{Kind: StmtWhile, Pos: tok.Pos, Cond: cond, Body: body}), nil
}

func (p *Parser) parseDoWhile() (*Stmt, error) {
	tok := p.advance()
	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(WHILE); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return p.newStmt(Stmt{Kind: StmtDoWhile, Pos: tok.Pos, Cond: cond, Body: body}), nil
}

// parseFor parses a for statement. The clause-1 declaration is scoped to
// the loop.
func (p *Parser) parseFor() (*Stmt, error) {
	tok := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	defer p.syms.EnterScope()()

	s := Stmt{Kind: StmtFor, Pos: tok.Pos}
	switch init := p.peek(); {
	case init.Type == SEMICOLON:
		p.advance()
	case p.isDeclStart(init):
		decls, err := p.parseDeclaration(false)
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			if d.Sym.Kind != SymObject || d.Sym.StaticDuration() {
				return nil, p.semErrorf(d.Pos, "declaration of non-local variable '%s' in 'for' loop", d.Sym.Name)
			}
		}
		s.Init = p.newStmt(Stmt{Kind: StmtDecl, Pos: init.Pos, Decls: decls})
	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if e, err = p.rvalue(e); err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		s.Init = p.newStmt(Stmt{Kind: StmtExpr, Pos: init.Pos, Expr: e})
	}

	if p.peek().Type != SEMICOLON {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if s.Cond, err = p.scalarCond(cond); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	if p.peek().Type != RPAREN {
		post, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if s.Post, err = p.rvalue(post); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	s.Body = body
	return p.newStmt(s), nil
}

// parseSwitch parses a switch statement. The controlling expression is
// promoted and every case value is converted to the promoted type.
func (p *Parser) parseSwitch() (*Stmt, error) {
	tok := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if cond, err = p.rvalue(cond); err != nil {
		return nil, err
	}
	if !cond.Type.IsInteger() {
		return nil, p.semErrorf(cond.Pos, "statement requires expression of integer type ('%s' invalid)", cond.Type)
	}
	ctrl := p.res.Promote(cond.Type)
	st := p.newStmt(Stmt{Kind: StmtSwitch, Pos: tok.Pos, Cond: p.convert(cond, ctrl)})

	p.fn.switches = append(p.fn.switches, &switchState{stmt: st, ctrl: ctrl, seen: make(map[uint64]bool)})
	p.fn.breaks++
	defer func() {
		p.fn.switches = p.fn.switches[:len(p.fn.switches)-1]
		p.fn.breaks--
	}()

	if st.Body, err = p.parseStatement(); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Parser) currentSwitch(tok Token) (*switchState, error) {
	if len(p.fn.switches) == 0 {
		return nil, p.semErrorf(tok.Pos, "'%s' statement not in switch statement", tok.Lexeme)
	}
	return p.fn.switches[len(p.fn.switches)-1], nil
}

func (p *Parser) parseCase() (*Stmt, error) {
	tok := p.advance()
	sw, err := p.currentSwitch(tok)
	if err != nil {
		return nil, err
	}
	e, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if !e.Type.IsInteger() {
		return nil, p.semErrorf(e.Pos, "case label has non-integer type '%s'", e.Type)
	}
	v, err := p.res.EvalInt(e)
	if err != nil {
		return nil, p.semErrorf(e.Pos, "case label does not reduce to an integer constant")
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	v = p.res.Convert(v, sw.ctrl)
	if sw.seen[v.Bits] {
		return nil, p.semErrorf(e.Pos, "duplicate case value '%s'", v)
	}
	sw.seen[v.Bits] = true

	st := p.newStmt(Stmt{Kind: StmtCase, Pos: tok.Pos, Val: v})
	sw.stmt.Cases = append(sw.stmt.Cases, st)
	if st.Body, err = p.labeledBody(tok.Pos); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Parser) parseDefault() (*Stmt, error) {
	tok := p.advance()
	sw, err := p.currentSwitch(tok)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	if sw.hasDflt {
		return nil, p.semErrorf(tok.Pos, "multiple default labels in one switch")
	}
	sw.hasDflt = true
	st := p.newStmt(Stmt{Kind: StmtDefault, Pos: tok.Pos})
	sw.stmt.Cases = append(sw.stmt.Cases, st)
	if st.Body, err = p.labeledBody(tok.Pos); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Parser) parseJump() (*Stmt, error) {
	tok := p.advance()
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	if tok.Type == BREAK {
		if p.fn.breaks == 0 {
			return nil, p.semErrorf(tok.Pos, "'break' statement not in loop or switch statement")
		}
		return p.newStmt(Stmt{Kind: StmtBreak, Pos: tok.Pos}), nil
	}
	if p.fn.loops == 0 {
		return nil, p.semErrorf(tok.Pos, "'continue' statement not in loop statement")
	}
	return p.newStmt(Stmt{Kind: StmtContinue, Pos: tok.Pos}), nil
}

func (p *Parser) parseReturn() (*Stmt, error) {
	tok := p.advance()
	name, ret := p.fn.sym.Name, p.fn.ret
	if p.accept(SEMICOLON) {
		if ret.Kind != KindVoid {
			return nil, p.semErrorf(tok.Pos, "non-void function '%s' should return a value", name)
		}
		return p.newStmt(Stmt{Kind: StmtReturn, Pos: tok.Pos}), nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	if ret.Kind == KindVoid {
		return nil, p.semErrorf(tok.Pos, "void function '%s' should not return a value", name)
	}
	if e, err = p.assignConv(e, ret, "returning"); err != nil {
		return nil, err
	}
	return p.newStmt(Stmt{Kind: StmtReturn, Pos: tok.Pos, Expr: e}), nil
}

func (p *Parser) parseLabel() (*Stmt, error) {
	name := p.advance()
	p.advance() // :
	if p.fn.labels[name.Lexeme] {
		return nil, p.semErrorf(name.Pos, "redefinition of label '%s'", name.Lexeme)
	}
	p.fn.labels[name.Lexeme] = true
	body, err := p.labeledBody(name.Pos)
	if err != nil {
		return nil, err
	}
	return p.newStmt(Stmt{Kind: StmtLabel, Pos: name.Pos, Label: name.Lexeme, Body: body}), nil
}
