package compiler

import "cfront/pkg/diag"

// declSpec is the result of parsing declaration specifiers.
type declSpec struct {
	storage  StorageClass
	typ      *Type
	inline   bool
	noreturn bool
	align    int64 // largest _Alignas, 0 if none
	pos      Pos
}

// Type specifier keywords are counted rather than matched, so "long int
// long unsigned" and "unsigned long long" land on the same key. Each
// keyword gets its own bit field wide enough for "long long".
const (
	specVoid     = 1 << 0
	specBool     = 1 << 2
	specChar     = 1 << 4
	specShort    = 1 << 6
	specInt      = 1 << 8
	specLong     = 1 << 10
	specFloat    = 1 << 12
	specDouble   = 1 << 14
	specSigned   = 1 << 16
	specUnsigned = 1 << 18
)

var specKeywords = map[TokenType]int{
	VOID: specVoid, BOOL: specBool, CHAR: specChar, SHORT: specShort, INT: specInt,
	LONG: specLong, FLOAT: specFloat, DOUBLE: specDouble, SIGNED: specSigned, UNSIGNED: specUnsigned,
}

// specKinds maps every valid combination of counted keywords to its type.
var specKinds = map[int]Kind{
	specVoid: KindVoid,
	specBool: KindBool,

	specChar:                KindChar,
	specSigned + specChar:   KindSChar,
	specUnsigned + specChar: KindUChar,

	specShort:                          KindShort,
	specShort + specInt:                KindShort,
	specSigned + specShort:             KindShort,
	specSigned + specShort + specInt:   KindShort,
	specUnsigned + specShort:           KindUShort,
	specUnsigned + specShort + specInt: KindUShort,

	specInt:                KindInt,
	specSigned:             KindInt,
	specSigned + specInt:   KindInt,
	specUnsigned:           KindUInt,
	specUnsigned + specInt: KindUInt,

	specLong:                          KindLong,
	specLong + specInt:                KindLong,
	specSigned + specLong:             KindLong,
	specSigned + specLong + specInt:   KindLong,
	specUnsigned + specLong:           KindULong,
	specUnsigned + specLong + specInt: KindULong,

	2 * specLong:                        KindLongLong,
	2*specLong + specInt:                KindLongLong,
	specSigned + 2*specLong:             KindLongLong,
	specSigned + 2*specLong + specInt:   KindLongLong,
	specUnsigned + 2*specLong:           KindULongLong,
	specUnsigned + 2*specLong + specInt: KindULongLong,

	specFloat:             KindFloat,
	specDouble:            KindDouble,
	specLong + specDouble: KindLongDouble,
}

var storageTokens = map[TokenType]StorageClass{
	TYPEDEF: SCTypedef, EXTERN: SCExtern, STATIC: SCStatic, AUTO: SCAuto, REGISTER: SCRegister,
}

var qualTokens = map[TokenType]Qualifiers{
	CONST: QualConst, VOLATILE: QualVolatile, RESTRICT: QualRestrict,
}

// isTypeStart reports whether tok can begin a type name.
func (p *Parser) isTypeStart(tok Token) bool {
	if _, ok := specKeywords[tok.Type]; ok {
		return true
	}
	if _, ok := qualTokens[tok.Type]; ok {
		return true
	}
	switch tok.Type {
	case ENUM, STRUCT, UNION, TYPEOF, TYPEOF_UNQUAL, ALIGNAS:
		return true
	case IDENTIFIER:
		return p.syms.IsTypedefName(tok.Lexeme)
	}
	return false
}

// isDeclStart reports whether tok can begin a declaration.
func (p *Parser) isDeclStart(tok Token) bool {
	if _, ok := storageTokens[tok.Type]; ok {
		return true
	}
	switch tok.Type {
	case INLINE, NORETURN, STATIC_ASSERT:
		return true
	}
	return p.isTypeStart(tok)
}

// predeclare installs the typedef names the ABI defines, such as size_t,
// as if a system header had declared them.
func (p *Parser) predeclare() {
	for _, td := range p.res.abi.typedefs {
		sym, err := p.syms.Declare(DeclInfo{Name: td.name, Kind: SymTypedef, Type: basicType(td.kind)})
		diag.Assert(err == nil, "predeclared typedefs are distinct")
		sym.Builtin = true
	}
}

// parseDeclSpecs parses declaration specifiers. Storage classes and
// function specifiers are only accepted when allowStorage is set.
func (p *Parser) parseDeclSpecs(allowStorage bool) (declSpec, error) {
	ds := declSpec{pos: p.peek().Pos}
	counter := 0
	var quals Qualifiers
	var other *Type // enum, typeof or typedef name
	consumed := false

specs:
	for {
		if err := p.skipAttributes(); err != nil {
			return ds, err
		}
		tok := p.peek()
		if sc, ok := storageTokens[tok.Type]; ok {
			if !allowStorage {
				return ds, p.errorf(tok, "storage class '%s' is not allowed here", tok.Lexeme)
			}
			if ds.storage != SCNone {
				return ds, p.semErrorf(tok.Pos, "cannot combine '%s' with '%s'", sc, ds.storage)
			}
			ds.storage = sc
			p.advance()
			consumed = true
			continue
		}
		if q, ok := qualTokens[tok.Type]; ok {
			quals |= q
			p.advance()
			consumed = true
			continue
		}
		if bit, ok := specKeywords[tok.Type]; ok {
			if other != nil {
				return ds, p.semErrorf(tok.Pos, "cannot combine '%s' with a previous type specifier", tok.Lexeme)
			}
			counter += bit
			if _, ok := specKinds[counter]; !ok {
				return ds, p.semErrorf(tok.Pos, "invalid combination of type specifiers at '%s'", tok.Lexeme)
			}
			p.advance()
			consumed = true
			continue
		}

		switch tok.Type {
		case INLINE, NORETURN:
			if !allowStorage {
				return ds, p.errorf(tok, "function specifier '%s' is not allowed here", tok.Lexeme)
			}
			ds.inline = ds.inline || tok.Type == INLINE
			ds.noreturn = ds.noreturn || tok.Type == NORETURN
			p.advance()
		case ALIGNAS:
			a, err := p.parseAlignas()
			if err != nil {
				return ds, err
			}
			ds.align = max(ds.align, a)
		case ENUM, TYPEOF, TYPEOF_UNQUAL:
			if other != nil || counter != 0 {
				return ds, p.semErrorf(tok.Pos, "cannot combine '%s' with a previous type specifier", tok.Lexeme)
			}
			var t *Type
			var err error
			if tok.Type == ENUM {
				t, err = p.parseEnumSpecifier()
			} else {
				t, err = p.parseTypeof()
			}
			if err != nil {
				return ds, err
			}
			other = t
		case STRUCT, UNION:
			return ds, p.semErrorf(tok.Pos, "'%s' types are not supported", tok.Lexeme)
		case IDENTIFIER:
			// A typedef name is a type specifier only if no other type
			// specifier came first; "typedef int T; { unsigned T; }" declares
			// a variable named T.
			sym, ok := p.syms.Lookup(tok.Lexeme)
			if !ok || sym.Kind != SymTypedef || counter != 0 || other != nil {
				break specs
			}
			other = sym.Type
			p.advance()
		default:
			break specs
		}
		consumed = true
	}

	base := other
	if base == nil {
		if counter == 0 {
			if !consumed {
				tok := p.peek()
				return ds, p.errorf(tok, "expected declaration specifiers, got %s", describe(tok))
			}
			return ds, p.semErrorf(ds.pos, "type specifier missing; C23 has no implicit int")
		}
		base = basicType(specKinds[counter])
	}
	if quals&QualRestrict != 0 && elemOf(base).Kind != KindPointer {
		return ds, p.semErrorf(ds.pos, "restrict requires a pointer type ('%s' is invalid)", base)
	}
	ds.typ = p.res.ResolveQualified(base, quals)
	return ds, nil
}

// elemOf looks through array types to the innermost element.
func elemOf(t *Type) *Type {
	for t.Kind == KindArray {
		t = t.Base
	}
	return t
}

// parseAlignas parses _Alignas(type-name) or _Alignas(constant).
func (p *Parser) parseAlignas() (int64, error) {
	kw := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return 0, err
	}
	var a int64
	if p.isTypeStart(p.peek()) {
		t, err := p.parseTypeName()
		if err != nil {
			return 0, err
		}
		if a, err = p.res.Alignof(t); err != nil {
			return 0, p.semErrorf(kw.Pos, "invalid application of 'alignas' to %v", err)
		}
	} else {
		e, err := p.parseConditional()
		if err != nil {
			return 0, err
		}
		v, err := p.res.EvalInt(e)
		if err != nil {
			return 0, err
		}
		a = v.Int64()
		if v.IsNeg() || a&(a-1) != 0 {
			return 0, p.semErrorf(e.Pos, "requested alignment %s is not a positive power of 2", v)
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return 0, err
	}
	return a, nil
}

// parseEnumSpecifier parses an enum specifier after the current "enum"
// keyword and returns the type it names or defines.
func (p *Parser) parseEnumSpecifier() (*Type, error) {
	kw := p.advance()
	if err := p.skipAttributes(); err != nil {
		return nil, err
	}
	tag := ""
	if p.peek().Type == IDENTIFIER {
		tag = p.advance().Lexeme
	}
	var fixed *Type
	if p.peek().Type == COLON {
		p.advance()
		ds, err := p.parseDeclSpecs(false)
		if err != nil {
			return nil, err
		}
		fixed = ds.typ
	}

	if p.peek().Type != LBRACE {
		if tag == "" {
			return nil, p.errorf(p.peek(), "expected identifier or '{' after 'enum', got %s", describe(p.peek()))
		}
		if fixed != nil {
			return p.declareFixedEnum(kw, tag, fixed)
		}
		if t, ok := p.syms.LookupTag(tag); ok {
			return t, nil
		}
		// First mention: an incomplete type until the body turns up.
		t := NewEnumType(tag)
		p.syms.DeclareTag(tag, t)
		return t, nil
	}

	var t *Type
	if tag != "" {
		if prev, ok := p.syms.LookupTagLocal(tag); ok {
			if len(prev.Enum.Constants) > 0 {
				return nil, p.semErrorf(kw.Pos, "redefinition of 'enum %s'", tag)
			}
			t = prev
		} else {
			t = NewEnumType(tag)
			p.syms.DeclareTag(tag, t)
		}
	}
	b, err := p.res.BeginEnum(t, tag, fixed)
	if err != nil {
		return nil, p.semErrorf(kw.Pos, "%v", err)
	}

	p.advance() // {
	var consts []*Symbol
	for {
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, err
		}
		if err := p.skipAttributes(); err != nil {
			return nil, err
		}
		var explicit *Value
		if p.accept(ASSIGN) {
			e, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			v, err := p.res.EvalInt(e)
			if err != nil {
				return nil, err
			}
			explicit = &v
		}
		v, err := b.Add(name.Lexeme, explicit)
		if err != nil {
			return nil, p.semErrorf(name.Pos, "%v", err)
		}
		sym, err := p.syms.Declare(DeclInfo{Name: name.Lexeme, Kind: SymEnumConst, Type: v.T, Value: v, Pos: name.Pos})
		if err != nil {
			return nil, err
		}
		consts = append(consts, sym)
		if !p.accept(COMMA) || p.peek().Type == RBRACE {
			break
		}
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}

	t, err = b.Finish()
	if err != nil {
		return nil, p.semErrorf(kw.Pos, "%v", err)
	}
	for i, sym := range consts {
		sym.Value = t.Enum.Constants[i].Value
		sym.Type = sym.Value.T
	}
	return t, nil
}

// declareFixedEnum handles "enum tag : T" without a body, which declares
// a complete type.
func (p *Parser) declareFixedEnum(kw Token, tag string, fixed *Type) (*Type, error) {
	if prev, ok := p.syms.LookupTagLocal(tag); ok {
		want := fixed.Unqualified()
		if want.Kind == KindEnum {
			want = want.Enum.Underlying
		}
		if !prev.Enum.Fixed || !Identical(prev.Enum.Underlying, want) {
			return nil, p.semErrorf(kw.Pos, "enumeration 'enum %s' redeclared with a different underlying type", tag)
		}
		return prev, nil
	}
	b, err := p.res.BeginEnum(nil, tag, fixed)
	if err != nil {
		return nil, p.semErrorf(kw.Pos, "%v", err)
	}
	b.t.Enum.Complete = true
	p.syms.DeclareTag(tag, b.t)
	return b.t, nil
}

// parseTypeof parses typeof(...) or typeof_unqual(...). The operand is
// either a type name or an expression, which is typed but never lowered.
func (p *Parser) parseTypeof() (*Type, error) {
	kw := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	var operand Typed
	if p.isTypeStart(p.peek()) {
		t, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		operand = t
	} else {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		operand = e
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return p.res.ResolveTypeof(operand, kw.Type == TYPEOF_UNQUAL), nil
}

// parseTypeName parses a specifier-qualifier list and an abstract declarator.
func (p *Parser) parseTypeName() (*Type, error) {
	ds, err := p.parseDeclSpecs(false)
	if err != nil {
		return nil, err
	}
	d, err := p.parseDeclarator(true)
	if err != nil {
		return nil, err
	}
	if d.ident().Type == IDENTIFIER {
		return nil, p.errorf(d.ident(), "unexpected identifier '%s' in type name", d.ident().Lexeme)
	}
	return p.applyDeclarator(ds.typ, d)
}

// parseStaticAssert parses static_assert(expr) or static_assert(expr, "msg").
func (p *Parser) parseStaticAssert() error {
	kw := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return err
	}
	e, err := p.parseConditional()
	if err != nil {
		return err
	}
	v, err := p.res.EvalInt(e)
	if err != nil {
		return err
	}
	msg := ""
	if p.accept(COMMA) {
		lit, err := p.stringLiteral()
		if err != nil {
			return err
		}
		msg = unitsText(lit.Str)
	}
	if _, err := p.expect(RPAREN); err != nil {
		return err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return err
	}
	if v.IsZero() {
		if msg != "" {
			return p.semErrorf(kw.Pos, "static assertion failed: %s", msg)
		}
		return p.semErrorf(kw.Pos, "static assertion failed")
	}
	return nil
}

// declarator is a parsed but not yet applied declarator. Types are built
// inside out, so the parts are kept until the base type is known.
//
//	int *(*f)(int)[3]
//	     ^^^^ inner: ptrs=[0], name=f
//	    ^          ^^^^^^^^^^^^ outer: ptrs=[0], suffixes=[(int), [3]]
type declarator struct {
	name     Token // EOF for an abstract declarator
	ptrs     []Qualifiers
	inner    *declarator
	suffixes []declSuffix
}

type declSuffix struct {
	fn       bool
	n        int64 // array length, -1 if unknown
	params   []paramDecl
	variadic bool
	pos      Pos
}

type paramDecl struct {
	name Token
	t    *Type
	pos  Pos
}

// ident returns the declared identifier, or an EOF token when abstract.
func (d *declarator) ident() Token {
	if d.inner != nil {
		return d.inner.ident()
	}
	return d.name
}

// nearest returns the function suffix that applies directly to the
// declared name, if the name's closest derivation is a function. done
// reports whether any derivation was found at this level or below.
func (d *declarator) nearest() (s *declSuffix, done bool) {
	if d.inner != nil {
		if s, ok := d.inner.nearest(); ok {
			return s, true
		}
	}
	if len(d.suffixes) > 0 {
		if d.suffixes[0].fn {
			return &d.suffixes[0], true
		}
		return nil, true
	}
	return nil, len(d.ptrs) > 0
}

// parseDeclarator parses a declarator. When abstract is set the name may
// be missing.
func (p *Parser) parseDeclarator(abstract bool) (*declarator, error) {
	d := &declarator{name: Token{Type: EOF, Pos: p.peek().Pos}}
	for p.accept(STAR) {
		var q Qualifiers
		for {
			if err := p.skipAttributes(); err != nil {
				return nil, err
			}
			bit, ok := qualTokens[p.peek().Type]
			if !ok {
				break
			}
			q |= bit
			p.advance()
		}
		d.ptrs = append(d.ptrs, q)
	}
	if err := p.skipAttributes(); err != nil {
		return nil, err
	}

	switch tok := p.peek(); {
	case tok.Type == IDENTIFIER:
		d.name = p.advance()
	case tok.Type == LPAREN && p.nestedDeclarator():
		p.advance()
		inner, err := p.parseDeclarator(abstract)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		d.inner = inner
	case !abstract:
		return nil, p.errorf(tok, "expected identifier or '(', got %s", describe(tok))
	}

	for {
		switch tok := p.peek(); {
		case tok.Type == LBRACKET && p.peekAt(1).Type != LBRACKET:
			n, err := p.parseArraySuffix()
			if err != nil {
				return nil, err
			}
			d.suffixes = append(d.suffixes, declSuffix{n: n, pos: tok.Pos})
		case tok.Type == LPAREN:
			p.advance()
			params, variadic, err := p.parseParams()
			if err != nil {
				return nil, err
			}
			d.suffixes = append(d.suffixes, declSuffix{fn: true, params: params, variadic: variadic, pos: tok.Pos})
		default:
			return d, p.skipAttributes()
		}
	}
}

// nestedDeclarator decides, at a "(", between a parenthesised declarator
// and a parameter list. The decision needs one token of lookahead; a
// typedef name or a type keyword starts a parameter list.
func (p *Parser) nestedDeclarator() bool {
	next := p.peekAt(1)
	switch next.Type {
	case STAR, LPAREN, ATTRIBUTE:
		return true
	case LBRACKET:
		return p.peekAt(2).Type == LBRACKET
	case IDENTIFIER:
		return !p.syms.IsTypedefName(next.Lexeme)
	}
	return false
}

// parseArraySuffix parses "[" size? "]" and returns the length, or -1.
func (p *Parser) parseArraySuffix() (int64, error) {
	p.advance() // [
	for {
		if _, ok := qualTokens[p.peek().Type]; ok || p.peek().Type == STATIC {
			p.advance()
			continue
		}
		break
	}
	if p.accept(RBRACKET) {
		return -1, nil
	}
	if p.peek().Type == STAR && p.peekAt(1).Type == RBRACKET {
		return 0, p.semErrorf(p.peek().Pos, "variable length arrays are not supported")
	}
	e, err := p.parseAssign()
	if err != nil {
		return 0, err
	}
	if !e.Type.IsInteger() {
		return 0, p.semErrorf(e.Pos, "size of array has non-integer type '%s'", e.Type)
	}
	v, err := p.res.EvalInt(e)
	if notICE(err) {
		return 0, p.semErrorf(e.Pos, "array size is not an integer constant expression; variable length arrays are not supported")
	}
	if err != nil {
		return 0, err
	}
	if v.IsNeg() {
		return 0, p.semErrorf(e.Pos, "array size is negative")
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// parseParams parses a parameter list after "(". An empty list means the
// function takes no arguments, as "(void)" does.
func (p *Parser) parseParams() ([]paramDecl, bool, error) {
	if p.accept(RPAREN) {
		return nil, false, nil
	}
	if p.peek().Type == VOID && p.peekAt(1).Type == RPAREN {
		p.advance()
		p.advance()
		return nil, false, nil
	}
	var params []paramDecl
	for {
		if p.accept(ELLIPSIS) {
			_, err := p.expect(RPAREN)
			return params, true, err
		}
		tok := p.peek()
		if !p.isDeclStart(tok) {
			return nil, false, p.errorf(tok, "expected parameter declaration, got %s", describe(tok))
		}
		ds, err := p.parseDeclSpecs(true)
		if err != nil {
			return nil, false, err
		}
		if ds.storage != SCNone && ds.storage != SCRegister {
			return nil, false, p.semErrorf(tok.Pos, "invalid storage class '%s' for parameter", ds.storage)
		}
		d, err := p.parseDeclarator(true)
		if err != nil {
			return nil, false, err
		}
		t, err := p.applyDeclarator(ds.typ, d)
		if err != nil {
			return nil, false, err
		}
		if t.Kind == KindVoid {
			return nil, false, p.semErrorf(tok.Pos, "parameter has incomplete type 'void'")
		}
		params = append(params, paramDecl{name: d.ident(), t: t, pos: tok.Pos})
		if !p.accept(COMMA) {
			break
		}
	}
	_, err := p.expect(RPAREN)
	return params, false, err
}

// applyDeclarator builds the type d declares from base.
func (p *Parser) applyDeclarator(base *Type, d *declarator) (*Type, error) {
	t := base
	for _, q := range d.ptrs {
		t = p.res.ResolveQualified(p.res.PointerTo(t), q)
	}
	for i := len(d.suffixes) - 1; i >= 0; i-- {
		s := d.suffixes[i]
		if s.fn {
			switch t.Kind {
			case KindArray:
				return nil, p.semErrorf(s.pos, "function cannot return array type '%s'", t)
			case KindFunc:
				return nil, p.semErrorf(s.pos, "function cannot return function type '%s'", t)
			}
			params := make([]*Type, len(s.params))
			for j, prm := range s.params {
				params[j] = prm.t
			}
			t = p.res.FuncOf(t.Unqualified(), params, s.variadic)
			continue
		}
		if t.Kind == KindFunc {
			return nil, p.semErrorf(s.pos, "declaration of array of functions")
		}
		if !t.IsComplete() {
			return nil, p.semErrorf(s.pos, "array has incomplete element type '%s'", t)
		}
		t = p.res.ArrayOf(t, s.n)
	}
	if d.inner != nil {
		return p.applyDeclarator(t, d.inner)
	}
	return t, nil
}

// parseDeclaration parses one declaration, or a function definition when
// atFile is set. It returns a Decl for every object and function declared.
func (p *Parser) parseDeclaration(atFile bool) ([]*Decl, error) {
	if err := p.skipAttributes(); err != nil {
		return nil, err
	}
	switch tok := p.peek(); tok.Type {
	case STATIC_ASSERT:
		return nil, p.parseStaticAssert()
	case SEMICOLON:
		p.advance()
		return nil, nil
	default:
		if !p.isDeclStart(tok) {
			return nil, p.errorf(tok, "expected declaration, got %s", describe(tok))
		}
	}

	ds, err := p.parseDeclSpecs(true)
	if err != nil {
		return nil, err
	}
	if p.accept(SEMICOLON) {
		return nil, nil
	}

	var decls []*Decl
	for {
		d, err := p.parseDeclarator(false)
		if err != nil {
			return nil, err
		}
		name := d.ident()
		t, err := p.applyDeclarator(ds.typ, d)
		if err != nil {
			return nil, err
		}

		if t.Kind == KindFunc && p.peek().Type == LBRACE {
			if !atFile || len(decls) > 0 {
				return nil, p.errorf(p.peek(), "function definition is not allowed here")
			}
			decl, err := p.parseFuncDef(ds, d, name, t)
			if err != nil {
				return nil, err
			}
			return []*Decl{decl}, nil
		}

		decl, err := p.declare(ds, name, t, p.peek().Type == ASSIGN)
		if err != nil {
			return nil, err
		}
		if p.peek().Type == ASSIGN {
			if err := p.parseDeclInit(ds, decl, name); err != nil {
				return nil, err
			}
		}
		if decl != nil {
			decls = append(decls, decl)
		}
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return decls, nil
}

// declare enters one declarator into the symbol table. Typedefs produce no
// Decl.
func (p *Parser) declare(ds declSpec, name Token, t *Type, defines bool) (*Decl, error) {
	kind := SymObject
	switch {
	case ds.storage == SCTypedef:
		kind = SymTypedef
	case t.Kind == KindFunc:
		kind = SymFunc
	}

	switch kind {
	case SymObject:
		if t.Kind == KindVoid {
			return nil, p.semErrorf(name.Pos, "variable '%s' has incomplete type '%s'", name.Lexeme, t)
		}
		if !t.IsComplete() && ds.storage != SCExtern && !defines && p.syms.Depth() > 0 {
			return nil, p.semErrorf(name.Pos, "variable '%s' has incomplete type '%s'", name.Lexeme, t)
		}
	case SymFunc:
		if ds.storage == SCAuto || ds.storage == SCRegister {
			return nil, p.semErrorf(name.Pos, "invalid storage class '%s' for function '%s'", ds.storage, name.Lexeme)
		}
		if ds.align != 0 {
			return nil, p.semErrorf(name.Pos, "'alignas' cannot be applied to function '%s'", name.Lexeme)
		}
	}
	if (ds.inline || ds.noreturn) && kind != SymFunc {
		return nil, p.semErrorf(name.Pos, "function specifier on '%s', which is not a function", name.Lexeme)
	}

	sym, err := p.syms.Declare(DeclInfo{
		Name:    name.Lexeme,
		Kind:    kind,
		Type:    t,
		Storage: ds.storage,
		Defines: defines,
		Pos:     name.Pos,
	})
	if err != nil {
		return nil, err
	}
	if ds.align != 0 {
		if kind == SymTypedef {
			return nil, p.semErrorf(name.Pos, "'alignas' cannot be applied to typedef '%s'", name.Lexeme)
		}
		if nat, err := p.res.Alignof(t); err == nil && ds.align < nat {
			return nil, p.semErrorf(name.Pos, "requested alignment %d is less than the minimum alignment %d of '%s'", ds.align, nat, t)
		}
		sym.Align = max(sym.Align, ds.align)
	}
	if kind == SymTypedef {
		return nil, nil
	}
	return p.newDecl(Decl{Sym: sym, Storage: ds.storage, Pos: name.Pos}), nil
}

// parseDeclInit parses "= initializer" for a just-declared object.
func (p *Parser) parseDeclInit(ds declSpec, decl *Decl, name Token) error {
	assign := p.advance()
	switch {
	case decl == nil:
		return p.semErrorf(assign.Pos, "typedef '%s' is initialized", name.Lexeme)
	case decl.Sym.Kind == SymFunc:
		return p.semErrorf(assign.Pos, "function '%s' is initialized like a variable", name.Lexeme)
	case ds.storage == SCExtern && p.syms.Depth() > 0:
		return p.semErrorf(assign.Pos, "'%s' has both 'extern' and an initializer", name.Lexeme)
	}
	sym := decl.Sym
	init, t, err := p.parseInitializer(sym.Type)
	if err != nil {
		return err
	}
	if sym.Type.Kind == KindArray && sym.Type.Len < 0 {
		sym.Type = t
	}
	decl.Init = init
	if sym.StaticDuration() {
		if decl.Static, err = p.res.FoldInit(init, sym.Type, 0, nil); err != nil {
			return err
		}
	}
	return nil
}

// parseInitializer parses an initializer for an object of type t. It
// returns t with the length filled in when t is an array of unknown length.
func (p *Parser) parseInitializer(t *Type) (*Expr, *Type, error) {
	tok := p.peek()
	if t.Kind == KindArray {
		if t.Base.IsInteger() && (tok.Type == STRING || tok.Type == LBRACE && p.peekAt(1).Type == STRING) {
			return p.parseStringInit(t)
		}
		lb, err := p.expect(LBRACE)
		if err != nil {
			return nil, nil, p.semErrorf(tok.Pos, "array initializer must be an initializer list")
		}
		list := p.newExpr(Expr{Kind: ExprInitList, Pos: lb.Pos})
		for p.peek().Type != RBRACE {
			if tt := p.peek().Type; tt == DOT || tt == LBRACKET {
				return nil, nil, p.semErrorf(p.peek().Pos, "designated initializers are not supported")
			}
			if t.Len >= 0 && int64(len(list.Args)) >= t.Len {
				return nil, nil, p.semErrorf(p.peek().Pos, "excess elements in array initializer")
			}
			el, _, err := p.parseInitializer(t.Base)
			if err != nil {
				return nil, nil, err
			}
			list.Args = append(list.Args, el)
			if !p.accept(COMMA) {
				break
			}
		}
		if _, err := p.expect(RBRACE); err != nil {
			return nil, nil, err
		}
		if t.Len < 0 {
			t = p.res.ArrayOf(t.Base, int64(len(list.Args)))
		}
		list.Type = t
		return list, t, nil
	}

	if tok.Type == LBRACE {
		p.advance()
		list := p.newExpr(Expr{Kind: ExprInitList, Type: t, Pos: tok.Pos})
		if !p.accept(RBRACE) {
			el, _, err := p.parseInitializer(t)
			if err != nil {
				return nil, nil, err
			}
			list.Args = []*Expr{el}
			p.accept(COMMA)
			if _, err := p.expect(RBRACE); err != nil {
				return nil, nil, err
			}
		}
		return list, t, nil
	}

	e, err := p.parseAssign()
	if err != nil {
		return nil, nil, err
	}
	e, err = p.assignConv(e, t, "initializing")
	return e, t, err
}

// parseStringInit initializes a character array from a string literal,
// optionally enclosed in braces.
func (p *Parser) parseStringInit(t *Type) (*Expr, *Type, error) {
	braced := p.accept(LBRACE)
	e, err := p.stringLiteral()
	if err != nil {
		return nil, nil, err
	}
	elem := t.Base.Unqualified()
	lit := e.Str
	switch lit.Prefix {
	case PrefixNone, PrefixUTF8:
		switch elem.Kind {
		case KindChar, KindSChar, KindUChar:
		default:
			return nil, nil, p.semErrorf(e.Pos, "initializing '%s' from a string literal of '%s'", t, lit.Elem)
		}
	default:
		if !Compatible(elem, lit.Elem) {
			return nil, nil, p.semErrorf(e.Pos, "initializing '%s' from a string literal of '%s'", t, lit.Elem)
		}
	}
	switch n := lit.Len(); {
	case t.Len < 0:
		t = p.res.ArrayOf(t.Base, n)
	case n-1 > t.Len:
		return nil, nil, p.semErrorf(e.Pos, "initializer-string for array of '%s' is too long", t)
	}
	if braced {
		p.accept(COMMA)
		if _, err := p.expect(RBRACE); err != nil {
			return nil, nil, err
		}
	}
	return e, t, nil
}

// parseFuncDef parses the body of a function definition whose declarator
// has just been read.
func (p *Parser) parseFuncDef(ds declSpec, d *declarator, name Token, t *Type) (*Decl, error) {
	if ds.storage == SCTypedef {
		return nil, p.semErrorf(name.Pos, "function definition declared 'typedef'")
	}
	sfx, _ := d.nearest()
	if sfx == nil {
		return nil, p.semErrorf(name.Pos, "function definition of '%s' needs a parameter list", name.Lexeme)
	}
	if t.Base.Kind != KindVoid && !t.Base.IsComplete() {
		return nil, p.semErrorf(name.Pos, "function '%s' returns incomplete type '%s'", name.Lexeme, t.Base)
	}
	decl, err := p.declare(ds, name, t, true)
	if err != nil {
		return nil, err
	}

	defer p.syms.EnterScope()()
	p.fn = &funcState{sym: decl.Sym, ret: t.Base, labels: make(map[string]bool)}
	defer func() { p.fn = nil }()

	for i, prm := range sfx.params {
		if prm.name.Type != IDENTIFIER {
			return nil, p.semErrorf(prm.pos, "parameter name omitted")
		}
		pt := t.Params[i]
		if !pt.IsComplete() {
			return nil, p.semErrorf(prm.pos, "parameter '%s' has incomplete type '%s'", prm.name.Lexeme, pt)
		}
		sym, err := p.syms.Declare(DeclInfo{Name: prm.name.Lexeme, Kind: SymObject, Type: pt, Pos: prm.name.Pos})
		if err != nil {
			return nil, err
		}
		sym.Param = true
		decl.Params = append(decl.Params, sym)
	}

	body, err := p.parseBlock(false)
	if err != nil {
		return nil, err
	}
	for _, g := range p.fn.gotos {
		if !p.fn.labels[g.Lexeme] {
			return nil, p.semErrorf(g.Pos, "use of undeclared label '%s'", g.Lexeme)
		}
	}
	decl.Body = body
	return decl, nil
}
