package compiler

// binaryLevels lists the binary operators from loosest to tightest binding.
var binaryLevels = [][]TokenType{
	{OR_LOGICAL},
	{AND_LOGICAL},
	{PIPE},
	{CARET},
	{AND},
	{EQUALS, NOT_EQ},
	{LESS, GREATER, LESS_EQ, GREATER_EQ},
	{SHL_OP, SHR_OP},
	{PLUS, MINUS},
	{STAR, SLASH, PERCENT},
}

// compoundOps maps each compound assignment to its binary operator.
var compoundOps = map[TokenType]TokenType{
	PLUS_ASSIGN:    PLUS,
	MINUS_ASSIGN:   MINUS,
	STAR_ASSIGN:    STAR,
	SLASH_ASSIGN:   SLASH,
	PERCENT_ASSIGN: PERCENT,
	AND_ASSIGN:     AND,
	OR_ASSIGN:      PIPE,
	XOR_ASSIGN:     CARET,
	SHL_ASSIGN:     SHL_OP,
	SHR_ASSIGN:     SHR_OP,
}

// parseExpr parses a full expression, comma operator included.
func (p *Parser) parseExpr() (*Expr, error) {
	e, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == COMMA {
		tok := p.advance()
		r, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		if e, err = p.rvalue(e); err != nil {
			return nil, err
		}
		if r, err = p.rvalue(r); err != nil {
			return nil, err
		}
		e = p.newExpr(Expr{Kind: ExprComma, Type: r.Type.Unqualified(), Pos: tok.Pos, L: e, R: r})
	}
	return e, nil
}

// parseAssign parses an assignment expression. Assignment is right
// associative.
func (p *Parser) parseAssign() (*Expr, error) {
	lhs, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	tok := p.peek()
	if _, ok := compoundOps[tok.Type]; !ok && tok.Type != ASSIGN {
		return lhs, nil
	}
	p.advance()
	rhs, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return p.assign(tok, lhs, rhs)
}

// assign types lhs op= rhs. A compound assignment records in Calc the type
// its operation is carried out in.
func (p *Parser) assign(tok Token, lhs, rhs *Expr) (*Expr, error) {
	if err := p.checkModifiable(lhs); err != nil {
		return nil, err
	}
	e := Expr{Kind: ExprAssign, Op: tok.Type, Type: lhs.Type.Unqualified(), Pos: tok.Pos, L: lhs}
	if tok.Type == ASSIGN {
		r, err := p.assignConv(rhs, lhs.Type, "assigning to")
		if err != nil {
			return nil, err
		}
		e.R = r
		return p.newExpr(e), nil
	}

	op := Token{Type: compoundOps[tok.Type], Lexeme: tok.Lexeme[:len(tok.Lexeme)-1], Pos: tok.Pos}
	bin, err := p.binary(op, lhs, rhs)
	if err != nil {
		return nil, err
	}
	if e.Type.IsPointer() != bin.Type.IsPointer() {
		return nil, p.semErrorf(tok.Pos, "invalid operands to '%s' ('%s' and '%s')", tok.Lexeme, lhs.Type, rhs.Type)
	}
	e.Calc = bin.Type
	e.R = bin.R
	return p.newExpr(e), nil
}

// parseConditional parses c ? a : b.
func (p *Parser) parseConditional() (*Expr, error) {
	c, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != QUESTION {
		return c, nil
	}
	q := p.advance()
	if c, err = p.rvalue(c); err != nil {
		return nil, err
	}
	if !c.Type.IsScalar() {
		return nil, p.semErrorf(c.Pos, "used type '%s' where a scalar is required", c.Type)
	}
	l, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COLON); err != nil {
		return nil, err
	}
	r, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if l, err = p.rvalue(l); err != nil {
		return nil, err
	}
	if r, err = p.rvalue(r); err != nil {
		return nil, err
	}
	lt, rt := l.Type.Unqualified(), r.Type.Unqualified()

	var t *Type
	switch {
	case lt.IsArithmetic() && rt.IsArithmetic():
		t = p.res.UsualArith(lt, rt)
	case lt.Kind == KindVoid && rt.Kind == KindVoid:
		t = TyVoid
	case lt.Kind == KindNullptr && rt.Kind == KindNullptr:
		t = TyNullptr
	case lt.IsPointer() && p.isNullPtrConst(r):
		t = lt
	case rt.IsPointer() && p.isNullPtrConst(l):
		t = rt
	case lt.IsPointer() && rt.IsPointer():
		switch {
		case lt.Base.Kind == KindVoid || rt.Base.Kind == KindVoid:
			t = p.res.PointerTo(p.res.ResolveQualified(TyVoid, lt.Base.Quals|rt.Base.Quals))
		case Compatible(p.res.Unqual(lt.Base), p.res.Unqual(rt.Base)):
			t = p.res.PointerTo(p.res.ResolveQualified(lt.Base, rt.Base.Quals))
		}
	}
	if t == nil {
		return nil, p.semErrorf(q.Pos, "incompatible operand types ('%s' and '%s')", l.Type, r.Type)
	}
	if t.Kind != KindVoid {
		l, r = p.convert(l, t), p.convert(r, t)
	}
	return p.newExpr(Expr{Kind: ExprCond, Type: t, Pos: q.Pos, C: c, L: l, R: r}), nil
}

// parseBinary parses the binary operators of binaryLevels[level] and
// tighter.
func (p *Parser) parseBinary(level int) (*Expr, error) {
	if level == len(binaryLevels) {
		return p.parseCast()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if !hasToken(binaryLevels[level], tok.Type) {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		if left, err = p.binary(tok, left, right); err != nil {
			return nil, err
		}
	}
}

func hasToken(set []TokenType, tt TokenType) bool {
	for _, t := range set {
		if t == tt {
			return true
		}
	}
	return false
}

// binary types l op r, inserting the implicit conversions.
func (p *Parser) binary(op Token, l, r *Expr) (*Expr, error) {
	l, err := p.rvalue(l)
	if err != nil {
		return nil, err
	}
	if r, err = p.rvalue(r); err != nil {
		return nil, err
	}
	lt, rt := l.Type.Unqualified(), r.Type.Unqualified()
	e := Expr{Kind: ExprBinary, Op: op.Type, Pos: op.Pos, L: l, R: r}
	invalid := func() (*Expr, error) {
		return nil, p.semErrorf(op.Pos, "invalid operands to binary '%s' ('%s' and '%s')", op.Lexeme, l.Type, r.Type)
	}
	arith := func(ok bool) (*Expr, error) {
		if !ok {
			return invalid()
		}
		t := p.res.UsualArith(lt, rt)
		e.L, e.R, e.Type = p.convert(l, t), p.convert(r, t), t
		return p.newExpr(e), nil
	}

	switch op.Type {
	case AND_LOGICAL, OR_LOGICAL:
		if !lt.IsScalar() || !rt.IsScalar() {
			return invalid()
		}
		e.Kind, e.Type = ExprLogical, TyInt
		return p.newExpr(e), nil

	case STAR, SLASH:
		return arith(lt.IsArithmetic() && rt.IsArithmetic())

	case PERCENT, AND, PIPE, CARET:
		return arith(lt.IsInteger() && rt.IsInteger())

	case SHL_OP, SHR_OP:
		if !lt.IsInteger() || !rt.IsInteger() {
			return invalid()
		}
		e.Type = p.res.Promote(lt)
		e.L, e.R = p.convert(l, e.Type), p.convert(r, p.res.Promote(rt))
		return p.newExpr(e), nil

	case PLUS:
		if lt.IsInteger() && rt.IsPointer() {
			e.L, e.R = r, l
			lt, rt = rt, lt
		}
		if lt.IsPointer() && rt.IsInteger() {
			return p.pointerOffset(op, e, lt)
		}
		return arith(lt.IsArithmetic() && rt.IsArithmetic())

	case MINUS:
		switch {
		case lt.IsPointer() && rt.IsInteger():
			return p.pointerOffset(op, e, lt)
		case lt.IsPointer() && rt.IsPointer():
			if !Compatible(p.res.Unqual(lt.Base), p.res.Unqual(rt.Base)) {
				return invalid()
			}
			if !lt.Base.IsComplete() {
				return nil, p.semErrorf(op.Pos, "arithmetic on pointers to incomplete type '%s'", lt.Base)
			}
			e.Type = p.res.abi.typedefOr("ptrdiff_t", TyLong)
			return p.newExpr(e), nil
		}
		return arith(lt.IsArithmetic() && rt.IsArithmetic())

	case EQUALS, NOT_EQ, LESS, GREATER, LESS_EQ, GREATER_EQ:
		equality := op.Type == EQUALS || op.Type == NOT_EQ
		switch {
		case lt.IsArithmetic() && rt.IsArithmetic():
			t := p.res.UsualArith(lt, rt)
			e.L, e.R = p.convert(l, t), p.convert(r, t)
		case lt.IsPointer() && rt.IsPointer():
			lb, rb := p.res.Unqual(lt.Base), p.res.Unqual(rt.Base)
			if !Compatible(lb, rb) && !(equality && (lb.Kind == KindVoid || rb.Kind == KindVoid)) {
				return invalid()
			}
		case equality && (lt.IsPointer() || lt.Kind == KindNullptr) && p.isNullPtrConst(r):
			e.R = p.convert(r, lt)
		case equality && (rt.IsPointer() || rt.Kind == KindNullptr) && p.isNullPtrConst(l):
			e.L = p.convert(l, rt)
		default:
			return invalid()
		}
		e.Type = TyInt
		return p.newExpr(e), nil
	}
	return invalid()
}

// pointerOffset types pointer +/- integer. The integer is widened to the
// pointer-sized signed type; scaling is left to the IR builder.
func (p *Parser) pointerOffset(op Token, e Expr, pt *Type) (*Expr, error) {
	if !pt.Base.IsComplete() {
		return nil, p.semErrorf(op.Pos, "arithmetic on a pointer to incomplete type '%s'", pt.Base)
	}
	e.R = p.convert(e.R, p.res.abi.typedefOr("ptrdiff_t", TyLong))
	e.Type = pt
	return p.newExpr(e), nil
}

// parseCast parses "(" type-name ")" cast or falls through to unary.
func (p *Parser) parseCast() (*Expr, error) {
	if p.peek().Type != LPAREN || !p.isTypeStart(p.peekAt(1)) {
		return p.parseUnary()
	}
	lp := p.advance()
	t, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if p.peek().Type == LBRACE {
		return nil, p.semErrorf(lp.Pos, "compound literals are not supported")
	}
	x, err := p.parseCast()
	if err != nil {
		return nil, err
	}
	if x, err = p.rvalue(x); err != nil {
		return nil, err
	}
	t = t.Unqualified()
	xt := x.Type.Unqualified()
	switch {
	case t.Kind == KindVoid:
	case !t.IsScalar():
		return nil, p.semErrorf(lp.Pos, "cast to non-scalar type '%s'", t)
	case !t.IsComplete():
		return nil, p.semErrorf(lp.Pos, "cast to incomplete type '%s'", t)
	case !xt.IsScalar():
		return nil, p.semErrorf(lp.Pos, "operand of type '%s' where arithmetic or pointer type is required", x.Type)
	case t.IsFloat() && (xt.IsPointer() || xt.Kind == KindNullptr), xt.IsFloat() && t.IsPointer():
		return nil, p.semErrorf(lp.Pos, "cannot cast '%s' to '%s'", x.Type, t)
	case t.Kind == KindNullptr && xt.Kind != KindNullptr && !p.isNullPtrConst(x):
		return nil, p.semErrorf(lp.Pos, "cannot cast '%s' to 'nullptr_t'", x.Type)
	}
	return p.newExpr(Expr{Kind: ExprCast, Type: t, Pos: lp.Pos, L: x}), nil
}

// parseUnary parses the prefix operators, sizeof and alignof.
func (p *Parser) parseUnary() (*Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case PLUS_PLUS, MINUS_MINUS:
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// ++x is x += 1.
		op := Token{Type: PLUS_ASSIGN, Lexeme: "+=", Pos: tok.Pos}
		if tok.Type == MINUS_MINUS {
			op = Token{Type: MINUS_ASSIGN, Lexeme: "-=", Pos: tok.Pos}
		}
		return p.assign(op, x, p.intConst(1, TyInt, tok.Pos))

	case AND:
		p.advance()
		x, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.addressOf(tok, x)

	case STAR:
		p.advance()
		x, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		return p.deref(tok.Pos, x)

	case PLUS, MINUS, TILDE, NOT:
		p.advance()
		x, err := p.parseCast()
		if err != nil {
			return nil, err
		}
		if x, err = p.rvalue(x); err != nil {
			return nil, err
		}
		xt := x.Type.Unqualified()
		e := Expr{Kind: ExprUnary, Op: tok.Type, Pos: tok.Pos}
		switch {
		case tok.Type == NOT && xt.IsScalar():
			e.L, e.Type = x, TyInt
		case tok.Type == TILDE && xt.IsInteger(), tok.Type != NOT && tok.Type != TILDE && xt.IsArithmetic():
			e.Type = p.res.Promote(xt)
			e.L = p.convert(x, e.Type)
		default:
			return nil, p.semErrorf(tok.Pos, "invalid argument type '%s' to unary '%s'", x.Type, tok.Lexeme)
		}
		return p.newExpr(e), nil

	case SIZEOF, ALIGNOF:
		return p.parseSizeof()

	case EXTENSION:
		p.advance()
		return p.parseCast()
	}
	return p.parsePostfix()
}

// parseSizeof parses sizeof or alignof applied to a type name or an
// unevaluated expression. The result is folded to a size_t constant.
func (p *Parser) parseSizeof() (*Expr, error) {
	kw := p.advance()
	var t *Type
	if p.peek().Type == LPAREN && p.isTypeStart(p.peekAt(1)) {
		p.advance()
		var err error
		if t, err = p.parseTypeName(); err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		if p.peek().Type == LBRACE {
			return nil, p.semErrorf(kw.Pos, "compound literals are not supported")
		}
	} else {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		t = x.Type
	}

	kind, measure := ExprSizeof, p.res.Sizeof
	if kw.Type == ALIGNOF {
		kind, measure = ExprAlignof, p.res.Alignof
	}
	n, err := measure(t)
	if err != nil {
		return nil, p.semErrorf(kw.Pos, "invalid application of '%s' to %v", kw.Lexeme, err)
	}
	st := p.res.abi.typedefOr("size_t", TyULong)
	return p.newExpr(Expr{Kind: kind, Type: st, Pos: kw.Pos, Val: p.res.Const(uint64(n), st)}), nil
}

// addressOf types &x.
func (p *Parser) addressOf(tok Token, x *Expr) (*Expr, error) {
	switch {
	case x.Kind == ExprIdent && x.Sym.Kind == SymFunc:
	case x.Kind == ExprIdent && x.Sym.Storage == SCRegister:
		return nil, p.semErrorf(tok.Pos, "address of register variable '%s' requested", x.Sym.Name)
	case !isLvalue(x):
		return nil, p.semErrorf(tok.Pos, "cannot take the address of an rvalue of type '%s'", x.Type)
	}
	return p.newExpr(Expr{Kind: ExprAddr, Type: p.res.PointerTo(x.Type), Pos: tok.Pos, L: x}), nil
}

// deref types *x.
func (p *Parser) deref(pos Pos, x *Expr) (*Expr, error) {
	x = p.decay(x)
	if !x.Type.IsPointer() {
		return nil, p.semErrorf(pos, "indirection requires pointer operand ('%s' invalid)", x.Type)
	}
	return p.newExpr(Expr{Kind: ExprDeref, Type: x.Type.Base, Pos: pos, L: x}), nil
}

// parsePostfix parses subscripts, calls and postfix ++/--.
func (p *Parser) parsePostfix() (*Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		switch tok.Type {
		case LBRACKET:
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
			// a[i] is *(a + i).
			sum, err := p.binary(Token{Type: PLUS, Lexeme: "[]", Pos: tok.Pos}, e, idx)
			if err != nil {
				return nil, err
			}
			if e, err = p.deref(tok.Pos, sum); err != nil {
				return nil, err
			}
		case LPAREN:
			p.advance()
			if e, err = p.parseCall(tok, e); err != nil {
				return nil, err
			}
		case PLUS_PLUS, MINUS_MINUS:
			p.advance()
			if err := p.checkModifiable(e); err != nil {
				return nil, err
			}
			t := e.Type.Unqualified()
			if !t.IsArithmetic() && !(t.IsPointer() && t.Base.IsComplete()) {
				return nil, p.semErrorf(tok.Pos, "cannot increment value of type '%s'", e.Type)
			}
			e = p.newExpr(Expr{Kind: ExprPostfix, Op: tok.Type, Type: t, Pos: tok.Pos, L: e})
		case DOT, ARROW:
			return nil, p.semErrorf(tok.Pos, "member access with '%s' requires a struct or union, which are not supported", tok.Lexeme)
		default:
			return e, nil
		}
	}
}

// parseCall parses the argument list of a call to fn.
func (p *Parser) parseCall(lp Token, fn *Expr) (*Expr, error) {
	fn = p.decay(fn)
	if !fn.Type.IsPointer() || fn.Type.Base.Kind != KindFunc {
		return nil, p.semErrorf(lp.Pos, "called object type '%s' is not a function or function pointer", fn.Type)
	}
	ft := fn.Type.Base
	var args []*Expr
	if !p.accept(RPAREN) {
		for {
			a, err := p.parseAssign()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.accept(COMMA) {
				break
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
	}
	switch {
	case len(args) < len(ft.Params):
		return nil, p.semErrorf(lp.Pos, "too few arguments to function call, expected %d, have %d", len(ft.Params), len(args))
	case len(args) > len(ft.Params) && !ft.Variadic:
		return nil, p.semErrorf(lp.Pos, "too many arguments to function call, expected %d, have %d", len(ft.Params), len(args))
	}
	for i, a := range args {
		var err error
		if i < len(ft.Params) {
			args[i], err = p.assignConv(a, ft.Params[i], "passing to parameter of type")
		} else {
			args[i], err = p.defaultPromote(a)
		}
		if err != nil {
			return nil, err
		}
	}
	ret := ft.Base.Unqualified()
	if ret.Kind != KindVoid && !ret.IsComplete() {
		return nil, p.semErrorf(lp.Pos, "calling function with incomplete return type '%s'", ret)
	}
	return p.newExpr(Expr{Kind: ExprCall, Type: ret, Pos: lp.Pos, L: fn, Args: args}), nil
}

// defaultPromote applies the default argument promotions to an argument
// matching "...".
func (p *Parser) defaultPromote(a *Expr) (*Expr, error) {
	a, err := p.rvalue(a)
	if err != nil {
		return nil, err
	}
	t := a.Type.Unqualified()
	switch {
	case t.Kind == KindFloat:
		return p.convert(a, TyDouble), nil
	case t.IsInteger():
		return p.convert(a, p.res.Promote(t)), nil
	case t.IsScalar():
		return a, nil
	}
	return nil, p.semErrorf(a.Pos, "cannot pass an expression of type '%s' to a variadic function", a.Type)
}

// parsePrimary parses identifiers, constants, string literals and
// parenthesised expressions.
func (p *Parser) parsePrimary() (*Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case INTEGER:
		p.advance()
		v, err := IntLiteral(tok.Lexeme, p.res, tok.Pos)
		if err != nil {
			return nil, err
		}
		return p.newExpr(Expr{Kind: ExprInt, Type: v.T, Pos: tok.Pos, Val: v}), nil

	case FLOATING:
		p.advance()
		f, t, err := FloatLiteral(tok.Lexeme, tok.Pos)
		if err != nil {
			return nil, err
		}
		return p.newExpr(Expr{Kind: ExprFloat, Type: t, Pos: tok.Pos, F: f}), nil

	case CHARACTER:
		p.advance()
		v, err := DecodeChar(p.lastRaw, p.res, tok.Pos)
		if err != nil {
			return nil, err
		}
		return p.newExpr(Expr{Kind: ExprInt, Type: v.T, Pos: tok.Pos, Val: v}), nil

	case STRING:
		return p.stringLiteral()

	case TRUE, FALSE:
		p.advance()
		return p.intConst(b2u(tok.Type == TRUE), TyBool, tok.Pos), nil

	case NULLPTR:
		p.advance()
		return p.intConst(0, TyNullptr, tok.Pos), nil

	case IDENTIFIER:
		p.advance()
		sym, ok := p.syms.Lookup(tok.Lexeme)
		if !ok {
			if tok.Lexeme == "__func__" && p.fn != nil {
				return p.funcName(tok)
			}
			return nil, p.semErrorf(tok.Pos, "use of undeclared identifier '%s'", tok.Lexeme)
		}
		if sym.Kind == SymTypedef {
			return nil, p.errorf(tok, "unexpected type name '%s': expected expression", tok.Lexeme)
		}
		return p.newExpr(Expr{Kind: ExprIdent, Type: sym.Type, Pos: tok.Pos, Sym: sym}), nil

	case LPAREN:
		p.advance()
		if p.peek().Type == LBRACE {
			return nil, p.semErrorf(tok.Pos, "statement expressions are not supported")
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, p.errorf(tok, "expected expression, got %s", describe(tok))
}

// stringLiteral consumes one or more adjacent string tokens and decodes
// them, in order, from the literal queue.
func (p *Parser) stringLiteral() (*Expr, error) {
	first, err := p.expect(STRING)
	if err != nil {
		return nil, err
	}
	raws := []string{p.lastRaw}
	for p.peek().Type == STRING {
		p.advance()
		raws = append(raws, p.lastRaw)
	}
	lit, err := DecodeString(raws, p.res, first.Pos)
	if err != nil {
		return nil, err
	}
	t := p.res.ArrayOf(lit.Elem, lit.Len())
	return p.newExpr(Expr{Kind: ExprString, Type: t, Pos: first.Pos, Str: lit}), nil
}

// funcName builds the predefined __func__ of the current function.
func (p *Parser) funcName(tok Token) (*Expr, error) {
	lit, err := DecodeString([]string{`"` + p.fn.sym.Name + `"`}, p.res, tok.Pos)
	if err != nil {
		return nil, err
	}
	t := p.res.ArrayOf(p.res.ResolveQualified(TyChar, QualConst), lit.Len())
	return p.newExpr(Expr{Kind: ExprString, Type: t, Pos: tok.Pos, Str: lit}), nil
}

func (p *Parser) intConst(x uint64, t *Type, pos Pos) *Expr {
	return p.newExpr(Expr{Kind: ExprInt, Type: t, Pos: pos, Val: p.res.Const(x, t)})
}

// decay converts array and function designators to pointers.
func (p *Parser) decay(e *Expr) *Expr {
	switch e.Type.Kind {
	case KindArray:
		return p.newExpr(Expr{Kind: ExprAddr, Type: p.res.PointerTo(e.Type.Base), Pos: e.Pos, L: e, Implicit: true})
	case KindFunc:
		return p.newExpr(Expr{Kind: ExprAddr, Type: p.res.PointerTo(e.Type), Pos: e.Pos, L: e, Implicit: true})
	}
	return e
}

// rvalue is decay for an operand whose value is used. Only void may be
// incomplete there.
func (p *Parser) rvalue(e *Expr) (*Expr, error) {
	e = p.decay(e)
	if e.Type.Kind != KindVoid && !e.Type.IsComplete() {
		return nil, p.semErrorf(e.Pos, "incomplete type '%s' used in expression", e.Type)
	}
	return e, nil
}

// convert inserts an implicit conversion of e to t when the types differ.
func (p *Parser) convert(e *Expr, t *Type) *Expr {
	t = t.Unqualified()
	if Identical(e.Type.Unqualified(), t) {
		return e
	}
	return p.newExpr(Expr{Kind: ExprCast, Type: t, Pos: e.Pos, L: e, Implicit: true})
}

// isNullPtrConst reports whether e is a null pointer constant: nullptr,
// an integer constant expression with value 0, or such a constant cast to
// void *.
func (p *Parser) isNullPtrConst(e *Expr) bool {
	switch {
	case e.Type.Kind == KindNullptr:
		return true
	case e.Kind == ExprCast && e.Type.IsPointer() && e.Type.Base.Kind == KindVoid && e.Type.Base.Quals == 0:
		return p.isNullPtrConst(e.L)
	case !e.Type.IsInteger():
		return false
	}
	v, err := p.res.EvalInt(e)
	return err == nil && v.IsZero()
}

// assignConv converts e as if by assignment to an object of type t. what
// names the context in diagnostics.
func (p *Parser) assignConv(e *Expr, t *Type, what string) (*Expr, error) {
	e, err := p.rvalue(e)
	if err != nil {
		return nil, err
	}
	dst, src := t.Unqualified(), e.Type.Unqualified()
	switch {
	case dst.IsArithmetic() && src.IsArithmetic():
		return p.convert(e, dst), nil
	case dst.Kind == KindBool && (src.IsPointer() || src.Kind == KindNullptr):
		return p.convert(e, dst), nil
	case dst.Kind == KindNullptr && p.isNullPtrConst(e):
		return p.convert(e, dst), nil
	case dst.IsPointer() && p.isNullPtrConst(e):
		return p.convert(e, dst), nil
	case dst.IsPointer() && src.IsPointer():
		if lost := quals(src.Base) &^ quals(dst.Base); lost != 0 {
			return nil, p.semErrorf(e.Pos, "%s '%s' from '%s' discards '%s' qualifier", what, t, e.Type, lost)
		}
		db, sb := p.res.Unqual(dst.Base), p.res.Unqual(src.Base)
		voidPtr := db.Kind == KindVoid && sb.Kind != KindFunc || sb.Kind == KindVoid && db.Kind != KindFunc
		if !voidPtr && !Compatible(db, sb) {
			return nil, p.semErrorf(e.Pos, "incompatible pointer types %s '%s' from '%s'", what, t, e.Type)
		}
		return p.convert(e, dst), nil
	case dst.IsPointer() && src.IsInteger():
		return nil, p.semErrorf(e.Pos, "%s '%s' from '%s' makes pointer from integer without a cast", what, t, e.Type)
	case dst.IsInteger() && src.IsPointer():
		return nil, p.semErrorf(e.Pos, "%s '%s' from '%s' makes integer from pointer without a cast", what, t, e.Type)
	}
	return nil, p.semErrorf(e.Pos, "incompatible types %s '%s' from '%s'", what, t, e.Type)
}

// quals returns the qualifiers of t, looking through arrays to the element.
func quals(t *Type) Qualifiers { return elemOf(t).Quals }

func isLvalue(e *Expr) bool {
	switch e.Kind {
	case ExprIdent:
		return e.Sym.Kind == SymObject
	case ExprDeref, ExprString:
		return true
	}
	return false
}

// checkModifiable rejects assignment targets that are not modifiable
// lvalues.
func (p *Parser) checkModifiable(e *Expr) error {
	if !isLvalue(e) {
		return p.semErrorf(e.Pos, "expression is not assignable")
	}
	t := e.Type
	switch {
	case t.Kind == KindArray:
		return p.semErrorf(e.Pos, "array type '%s' is not assignable", t)
	case t.Quals&QualConst != 0:
		if e.Kind == ExprIdent {
			return p.semErrorf(e.Pos, "cannot assign to variable '%s' with const-qualified type '%s'", e.Sym.Name, t)
		}
		return p.semErrorf(e.Pos, "read-only location of type '%s' is not assignable", t)
	case !t.IsComplete():
		return p.semErrorf(e.Pos, "cannot assign to an object of incomplete type '%s'", t)
	}
	return nil
}
