package compiler

import (
	"log"
	"strconv"

	"cfront/pkg/diag"
	"cfront/pkg/ir"
)

// Lowerer walks a parsed unit and appends triples to an ir.Program.
type Lowerer struct {
	prog  *ir.Program
	res   *Resolver
	trace *log.Logger

	syms    map[*Symbol]ir.Operand
	strs    map[*StringLit]ir.Operand
	globals map[*Symbol]int // index into prog.Globals
	called  map[*Symbol]bool
	calls   []funcRef // first reference to each internal-linkage function
	temps   int

	loopStack []loopLabels
	labels    map[string]ir.Operand // goto targets of the current function
	caseLabel map[*Stmt]ir.Operand
}

type funcRef struct {
	sym *Symbol
	pos Pos
}

type loopLabels struct {
	brk  ir.Operand
	cont ir.Operand // none inside a switch
}

// Lower turns u into a program. When trace is not nil every triple is
// logged as it is appended.
func Lower(u *Unit, res *Resolver, trace *log.Logger) (*ir.Program, error) {
	g := &Lowerer{
		prog:      &ir.Program{},
		res:       res,
		trace:     trace,
		syms:      make(map[*Symbol]ir.Operand),
		strs:      make(map[*StringLit]ir.Operand),
		globals:   make(map[*Symbol]int),
		called:    make(map[*Symbol]bool),
		caseLabel: make(map[*Stmt]ir.Operand),
	}
	for _, d := range u.Decls {
		if err := g.genDecl(d); err != nil {
			return nil, err
		}
	}
	for _, ref := range g.calls {
		if !ref.sym.Defined {
			return nil, semErrorf(ref.pos, "function '%s' has internal linkage but is not defined", ref.sym.Name)
		}
	}
	return g.prog, nil
}

func (g *Lowerer) emit(op ir.Op, a1, a2 ir.Operand) ir.Operand {
	t := ir.Triple{Op: op, Arg1: a1, Arg2: a2}
	i := g.prog.Append(t)
	if g.trace != nil {
		g.trace.Print(g.prog.Format(t))
	}
	return ir.TempRef(i)
}

func (g *Lowerer) label(l ir.Operand) { g.emit(ir.OpLabel, l, ir.Operand{}) }

// objectSize is the storage size of t; an array of unknown length that
// was never completed gets one element.
func (g *Lowerer) objectSize(t *Type) int64 {
	switch t.Kind {
	case KindFunc:
		return 0
	case KindArray:
		if t.Len < 0 {
			return g.objectSize(t.Base)
		}
	}
	n, err := g.res.Sizeof(t)
	diag.Assert(err == nil, "lowered objects are complete")
	return n
}

func (g *Lowerer) alignOf(t *Type) int64 {
	for t.Kind == KindArray {
		t = t.Base
	}
	if t.Kind == KindFunc {
		return 1
	}
	a, err := g.res.Alignof(t)
	diag.Assert(err == nil, "lowered objects are complete")
	return a
}

// symbol returns the operand for s, registering it on first use.
func (g *Lowerer) symbol(s *Symbol) ir.Operand {
	if op, ok := g.syms[s]; ok {
		return op
	}
	irs := ir.Symbol{
		Name:     s.Name,
		Size:     g.objectSize(s.Type),
		Align:    max(s.Align, g.alignOf(s.Type)),
		External: s.Linkage == LinkExternal,
	}
	switch {
	case s.Kind == SymFunc:
		irs.Storage = ir.StorageFunc
		irs.Size, irs.Align = 0, 1
	case s.Param:
		irs.Storage = ir.StorageParam
	case s.StaticDuration():
		irs.Storage = ir.StorageGlobal
		if s.Depth > 0 && s.Linkage == LinkNone {
			irs.Name = s.Name + "." + strconv.Itoa(s.ID)
		}
	default:
		irs.Storage = ir.StorageLocal
	}
	op := g.prog.AddSymbol(irs)
	g.syms[s] = op
	return op
}

// temp allocates a synthetic temporary able to hold a value of type t.
func (g *Lowerer) temp(t *Type) ir.Operand {
	name := ".t" + strconv.Itoa(g.temps)
	g.temps++
	return g.prog.AddSymbol(ir.Symbol{Name: name, Size: g.objectSize(t), Align: g.alignOf(t), Storage: ir.StorageTemp})
}

func (g *Lowerer) stringConst(s *StringLit) ir.Operand {
	if op, ok := g.strs[s]; ok {
		return op
	}
	op := g.prog.AddString(ir.StringConst{Data: s.Data, ElemSize: int(g.res.size(s.Elem))})
	g.strs[s] = op
	return op
}

// genDecl lowers one file-scope or block-scope declaration.
func (g *Lowerer) genDecl(d *Decl) error {
	sym := d.Sym
	if sym.Kind == SymFunc {
		if d.Body != nil {
			return g.genFunc(d)
		}
		return nil
	}
	if sym.StaticDuration() {
		g.genGlobal(d)
		return nil
	}
	if d.Init == nil {
		g.symbol(sym)
		return nil
	}
	return g.genLocalInit(sym, d.Init)
}

// genGlobal records a static-duration object. Repeated file-scope
// declarations of one symbol share a single Global whose initializer is
// the one from the defining declaration; an extern declaration alone
// defines nothing.
func (g *Lowerer) genGlobal(d *Decl) {
	sym := d.Sym
	idx, ok := g.globals[sym]
	if !ok {
		if d.Init == nil && d.Storage == SCExtern {
			return
		}
		g.prog.Globals = append(g.prog.Globals, ir.Global{Sym: g.symbol(sym).ID})
		idx = len(g.prog.Globals) - 1
		g.globals[sym] = idx
	}
	if d.Init == nil {
		return
	}
	inits := make([]ir.Init, 0, len(d.Static))
	for _, s := range d.Static {
		in := ir.Init{Offset: s.Offset, Size: s.Size, Addend: s.AddOff}
		switch {
		case s.IsFloat:
			in.Value = ir.FloatConst(s.Float)
		case s.Addr != nil:
			in.Value = g.symbol(s.Addr)
			g.noteCall(s.Addr, d.Pos)
		case s.Str != nil:
			in.Value = g.stringConst(s.Str)
		default:
			in.Value = ir.Const(s.Int.Int64())
		}
		inits = append(inits, in)
	}
	g.prog.Globals[idx].Init = inits
}

func (g *Lowerer) genFunc(d *Decl) error {
	g.labels = make(map[string]ir.Operand)
	g.emit(ir.OpFunc, g.symbol(d.Sym), ir.Operand{})
	for i, p := range d.Params {
		g.emit(ir.OpParam, g.symbol(p), ir.Const(int64(i)))
	}
	if err := g.genStmt(d.Body); err != nil {
		return err
	}
	g.emit(ir.OpRet, ir.Operand{}, ir.Operand{})
	g.labels = nil
	return nil
}

// genLocalInit assigns the initializer of an automatic object. Array
// elements not named by the initializer are zeroed.
func (g *Lowerer) genLocalInit(sym *Symbol, init *Expr) error {
	dst := g.symbol(sym)
	if sym.Type.Kind != KindArray {
		v, err := g.scalarInit(init, sym.Type)
		if err != nil {
			return err
		}
		g.emit(ir.OpAssign, dst, v)
		return nil
	}
	base := g.emit(ir.OpAddr, dst, ir.Operand{})
	return g.storeInit(base, sym.Type, 0, init)
}

func (g *Lowerer) scalarInit(e *Expr, t *Type) (ir.Operand, error) {
	if e != nil && e.Kind == ExprInitList {
		if len(e.Args) == 0 {
			e = nil
		} else {
			e = e.Args[0]
		}
	}
	if e == nil {
		if t.IsFloat() {
			return ir.FloatConst(0), nil
		}
		return ir.Const(0), nil
	}
	return g.genExpr(e)
}

func (g *Lowerer) storeInit(base ir.Operand, t *Type, off int64, e *Expr) error {
	if t.Kind == KindArray {
		esz := g.res.size(t.Base)
		for i := range t.Len {
			var el *Expr
			switch {
			case e == nil:
			case e.Kind == ExprString:
				var u uint32
				if i < int64(len(e.Str.Units)) {
					u = e.Str.Units[i]
				}
				g.store(base, off+i*esz, ir.Const(g.res.Const(uint64(u), t.Base).Int64()))
				continue
			case i < int64(len(e.Args)):
				el = e.Args[i]
			}
			if err := g.storeInit(base, t.Base, off+i*esz, el); err != nil {
				return err
			}
		}
		return nil
	}
	v, err := g.scalarInit(e, t)
	if err != nil {
		return err
	}
	g.store(base, off, v)
	return nil
}

func (g *Lowerer) store(base ir.Operand, off int64, v ir.Operand) {
	addr := base
	if off != 0 {
		addr = g.emit(ir.OpAdd, base, ir.Const(off))
	}
	g.emit(ir.OpStore, addr, v)
}

func (g *Lowerer) gotoLabel(name string) ir.Operand {
	l, ok := g.labels[name]
	if !ok {
		l = g.prog.NewLabel()
		g.labels[name] = l
	}
	return l
}

func (g *Lowerer) genStmt(s *Stmt) error {
	switch s.Kind {
	case StmtEmpty:

	case StmtExpr:
		_, err := g.genExpr(s.Expr)
		return err

	case StmtDecl:
		for _, d := range s.Decls {
			if err := g.genDecl(d); err != nil {
				return err
			}
		}

	case StmtBlock:
		for _, st := range s.Stmts {
			if err := g.genStmt(st); err != nil {
				return err
			}
		}

	case StmtIf:
		elseL, endL := g.prog.NewLabel(), g.prog.NewLabel()
		c, err := g.genExpr(s.Cond)
		if err != nil {
			return err
		}
		if s.Else == nil {
			elseL = endL
		}
		g.emit(ir.OpJmpFalse, c, elseL)
		if err := g.genStmt(s.Body); err != nil {
			return err
		}
		if s.Else != nil {
			g.emit(ir.OpJmp, endL, ir.Operand{})
			g.label(elseL)
			if err := g.genStmt(s.Else); err != nil {
				return err
			}
		}
		g.label(endL)

	case StmtWhile:
		startL, endL := g.prog.NewLabel(), g.prog.NewLabel()
		g.label(startL)
		c, err := g.genExpr(s.Cond)
		if err != nil {
			return err
		}
		g.emit(ir.OpJmpFalse, c, endL)
		if err := g.genLoopBody(s.Body, endL, startL); err != nil {
			return err
		}
		g.emit(ir.OpJmp, startL, ir.Operand{})
		g.label(endL)

	case StmtDoWhile:
		startL, condL, endL := g.prog.NewLabel(), g.prog.NewLabel(), g.prog.NewLabel()
		g.label(startL)
		if err := g.genLoopBody(s.Body, endL, condL); err != nil {
			return err
		}
		g.label(condL)
		c, err := g.genExpr(s.Cond)
		if err != nil {
			return err
		}
		g.emit(ir.OpJmpTrue, c, startL)
		g.label(endL)

	case StmtFor:
		if s.Init != nil {
			if err := g.genStmt(s.Init); err != nil {
				return err
			}
		}
		startL, postL, endL := g.prog.NewLabel(), g.prog.NewLabel(), g.prog.NewLabel()
		g.label(startL)
		if s.Cond != nil {
			c, err := g.genExpr(s.Cond)
			if err != nil {
				return err
			}
			g.emit(ir.OpJmpFalse, c, endL)
		}
		if err := g.genLoopBody(s.Body, endL, postL); err != nil {
			return err
		}
		g.label(postL)
		if s.Post != nil {
			if _, err := g.genExpr(s.Post); err != nil {
				return err
			}
		}
		g.emit(ir.OpJmp, startL, ir.Operand{})
		g.label(endL)

	case StmtSwitch:
		return g.genSwitch(s)

	case StmtCase, StmtDefault:
		g.label(g.caseLabel[s])
		return g.genStmt(s.Body)

	case StmtBreak:
		diag.Assert(len(g.loopStack) > 0, "break inside a loop or switch")
		g.emit(ir.OpJmp, g.loopStack[len(g.loopStack)-1].brk, ir.Operand{})

	case StmtContinue:
		for i := len(g.loopStack) - 1; i >= 0; i-- {
			if !g.loopStack[i].cont.IsNone() {
				g.emit(ir.OpJmp, g.loopStack[i].cont, ir.Operand{})
				return nil
			}
		}
		diag.Failf("continue outside a loop")

	case StmtReturn:
		var v ir.Operand
		if s.Expr != nil {
			var err error
			if v, err = g.genExpr(s.Expr); err != nil {
				return err
			}
		}
		g.emit(ir.OpRet, v, ir.Operand{})

	case StmtGoto:
		g.emit(ir.OpJmp, g.gotoLabel(s.Label), ir.Operand{})

	case StmtLabel:
		g.label(g.gotoLabel(s.Label))
		return g.genStmt(s.Body)

	default:
		diag.Failf("unexpected statement kind %d", s.Kind)
	}
	return nil
}

func (g *Lowerer) genLoopBody(body *Stmt, brk, cont ir.Operand) error {
	g.loopStack = append(g.loopStack, loopLabels{brk: brk, cont: cont})
	err := g.genStmt(body)
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	return err
}

// genSwitch lowers a switch to a chain of equality tests followed by a
// jump to the default label, or past the body when there is none.
func (g *Lowerer) genSwitch(s *Stmt) error {
	c, err := g.genExpr(s.Cond)
	if err != nil {
		return err
	}
	endL := g.prog.NewLabel()
	exit := endL
	for _, cs := range s.Cases {
		l := g.prog.NewLabel()
		g.caseLabel[cs] = l
		if cs.Kind == StmtDefault {
			exit = l
			continue
		}
		eq := g.emit(ir.OpEq, c, ir.Const(cs.Val.Int64()))
		g.emit(ir.OpJmpTrue, eq, l)
	}
	g.emit(ir.OpJmp, exit, ir.Operand{})
	if err := g.genLoopBody(s.Body, endL, ir.Operand{}); err != nil {
		return err
	}
	g.label(endL)
	return nil
}

// genAddress computes the address of an lvalue or function designator.
func (g *Lowerer) genAddress(e *Expr) (ir.Operand, error) {
	switch e.Kind {
	case ExprIdent:
		g.noteCall(e.Sym, e.Pos)
		return g.emit(ir.OpAddr, g.symbol(e.Sym), ir.Operand{}), nil
	case ExprDeref:
		return g.genExpr(e.L)
	case ExprString:
		return g.emit(ir.OpAddr, g.stringConst(e.Str), ir.Operand{}), nil
	case ExprAddr:
		if e.Implicit {
			return g.genAddress(e.L)
		}
	}
	return ir.Operand{}, semErrorf(e.Pos, "cannot take the address of an rvalue")
}

func (g *Lowerer) noteCall(s *Symbol, pos Pos) {
	if s.Kind == SymFunc && s.Linkage == LinkInternal && !g.called[s] {
		g.called[s] = true
		g.calls = append(g.calls, funcRef{s, pos})
	}
}

var binaryOps = map[TokenType]ir.Op{
	PLUS:       ir.OpAdd,
	MINUS:      ir.OpSub,
	STAR:       ir.OpMul,
	SLASH:      ir.OpDiv,
	PERCENT:    ir.OpMod,
	AND:        ir.OpAnd,
	PIPE:       ir.OpOr,
	CARET:      ir.OpXor,
	SHL_OP:     ir.OpShl,
	SHR_OP:     ir.OpShr,
	EQUALS:     ir.OpEq,
	NOT_EQ:     ir.OpNe,
	LESS:       ir.OpLt,
	LESS_EQ:    ir.OpLe,
	GREATER:    ir.OpGt,
	GREATER_EQ: ir.OpGe,
}

var unaryOps = map[TokenType]ir.Op{
	MINUS: ir.OpNeg,
	TILDE: ir.OpBitNot,
	NOT:   ir.OpNot,
}

// genExpr lowers e and returns the operand holding its value.
func (g *Lowerer) genExpr(e *Expr) (ir.Operand, error) {
	switch e.Kind {
	case ExprInt:
		return ir.Const(e.Val.Int64()), nil

	case ExprFloat:
		return ir.FloatConst(e.F), nil

	case ExprString:
		return g.genAddress(e)

	case ExprIdent:
		switch {
		case e.Sym.Kind == SymEnumConst:
			return ir.Const(g.res.Convert(e.Sym.Value, e.Type).Int64()), nil
		case e.Type.Kind == KindArray, e.Type.Kind == KindFunc:
			return g.genAddress(e)
		}
		return g.symbol(e.Sym), nil

	case ExprSizeof:
		return g.emit(ir.OpSizeof, ir.Const(e.Val.Int64()), ir.Operand{}), nil

	case ExprAlignof:
		return g.emit(ir.OpAlignof, ir.Const(e.Val.Int64()), ir.Operand{}), nil

	case ExprUnary:
		v, err := g.genExpr(e.L)
		if err != nil {
			return ir.Operand{}, err
		}
		op, ok := unaryOps[e.Op]
		if !ok {
			return v, nil
		}
		return g.emit(op, v, ir.Operand{}), nil

	case ExprAddr:
		return g.genAddress(e.L)

	case ExprDeref:
		p, err := g.genExpr(e.L)
		if err != nil {
			return ir.Operand{}, err
		}
		if e.Type.Kind == KindArray || e.Type.Kind == KindFunc {
			return p, nil
		}
		return g.emit(ir.OpDeref, p, ir.Operand{}), nil

	case ExprBinary:
		return g.genBinary(e)

	case ExprLogical:
		return g.genLogical(e)

	case ExprCond:
		return g.genCond(e)

	case ExprComma:
		if _, err := g.genExpr(e.L); err != nil {
			return ir.Operand{}, err
		}
		return g.genExpr(e.R)

	case ExprCast:
		v, err := g.genExpr(e.L)
		if err != nil {
			return ir.Operand{}, err
		}
		return g.convert(v, e.L.Type, e.Type), nil

	case ExprCall:
		return g.genCall(e)

	case ExprAssign:
		return g.genAssign(e)

	case ExprPostfix:
		return g.genPostfix(e)
	}
	diag.Failf("unexpected expression kind %d", e.Kind)
	return ir.Operand{}, nil
}

func (g *Lowerer) genBinary(e *Expr) (ir.Operand, error) {
	l, err := g.genExpr(e.L)
	if err != nil {
		return ir.Operand{}, err
	}
	r, err := g.genExpr(e.R)
	if err != nil {
		return ir.Operand{}, err
	}
	op := binaryOps[e.Op]
	switch {
	case e.Type.IsPointer() && e.R.Type.IsInteger():
		r = g.scale(r, e.Type.Base)
	case e.Op == MINUS && e.L.Type.IsPointer() && e.R.Type.IsPointer():
		diff := g.emit(ir.OpSub, l, r)
		if n := g.res.size(e.L.Type.Base); n != 1 {
			return g.emit(ir.OpDiv, diff, ir.Const(n)), nil
		}
		return diff, nil
	}
	return g.emit(op, l, r), nil
}

// scale multiplies an element count by the size of elem.
func (g *Lowerer) scale(n ir.Operand, elem *Type) ir.Operand {
	sz := g.res.size(elem)
	if sz == 1 {
		return n
	}
	if n.Kind == ir.Imm {
		return ir.Const(n.Int * sz)
	}
	return g.emit(ir.OpMul, n, ir.Const(sz))
}

func (g *Lowerer) genLogical(e *Expr) (ir.Operand, error) {
	res := g.temp(TyInt)
	shortL, endL := g.prog.NewLabel(), g.prog.NewLabel()
	jump, short := ir.OpJmpFalse, ir.Const(0)
	if e.Op == OR_LOGICAL {
		jump, short = ir.OpJmpTrue, ir.Const(1)
	}
	a, err := g.genExpr(e.L)
	if err != nil {
		return ir.Operand{}, err
	}
	g.emit(jump, a, shortL)
	b, err := g.genExpr(e.R)
	if err != nil {
		return ir.Operand{}, err
	}
	g.emit(ir.OpAssign, res, g.emit(ir.OpNe, b, ir.Const(0)))
	g.emit(ir.OpJmp, endL, ir.Operand{})
	g.label(shortL)
	g.emit(ir.OpAssign, res, short)
	g.label(endL)
	return res, nil
}

func (g *Lowerer) genCond(e *Expr) (ir.Operand, error) {
	var res ir.Operand
	if e.Type.Kind != KindVoid {
		res = g.temp(e.Type)
	}
	elseL, endL := g.prog.NewLabel(), g.prog.NewLabel()
	c, err := g.genExpr(e.C)
	if err != nil {
		return ir.Operand{}, err
	}
	g.emit(ir.OpJmpFalse, c, elseL)
	for i, arm := range []*Expr{e.L, e.R} {
		v, err := g.genExpr(arm)
		if err != nil {
			return ir.Operand{}, err
		}
		if !res.IsNone() {
			g.emit(ir.OpAssign, res, v)
		}
		if i == 0 {
			g.emit(ir.OpJmp, endL, ir.Operand{})
			g.label(elseL)
		}
	}
	g.label(endL)
	return res, nil
}

func (g *Lowerer) genCall(e *Expr) (ir.Operand, error) {
	var callee ir.Operand
	if fn := e.L; fn.Kind == ExprAddr && fn.L.Kind == ExprIdent && fn.L.Sym.Kind == SymFunc {
		g.noteCall(fn.L.Sym, fn.Pos)
		callee = g.symbol(fn.L.Sym)
	} else {
		var err error
		if callee, err = g.genExpr(fn); err != nil {
			return ir.Operand{}, err
		}
	}
	args := make([]ir.Operand, len(e.Args))
	for i, a := range e.Args {
		v, err := g.genExpr(a)
		if err != nil {
			return ir.Operand{}, err
		}
		args[i] = v
	}
	for _, a := range args {
		g.emit(ir.OpArg, a, ir.Operand{})
	}
	return g.emit(ir.OpCall, callee, ir.Const(int64(len(args)))), nil
}

// lvalue is the destination of an assignment: a named object or an
// address to store through.
type lvalue struct {
	sym  ir.Operand
	addr ir.Operand
}

func (g *Lowerer) genLvalue(e *Expr) (lvalue, error) {
	if e.Kind == ExprIdent {
		return lvalue{sym: g.symbol(e.Sym)}, nil
	}
	a, err := g.genAddress(e)
	return lvalue{addr: a}, err
}

func (g *Lowerer) load(lv lvalue) ir.Operand {
	if lv.addr.IsNone() {
		return lv.sym
	}
	return g.emit(ir.OpDeref, lv.addr, ir.Operand{})
}

func (g *Lowerer) storeTo(lv lvalue, v ir.Operand) {
	if lv.addr.IsNone() {
		g.emit(ir.OpAssign, lv.sym, v)
		return
	}
	g.emit(ir.OpStore, lv.addr, v)
}

func (g *Lowerer) genAssign(e *Expr) (ir.Operand, error) {
	lv, err := g.genLvalue(e.L)
	if err != nil {
		return ir.Operand{}, err
	}
	r, err := g.genExpr(e.R)
	if err != nil {
		return ir.Operand{}, err
	}
	if e.Op == ASSIGN {
		g.storeTo(lv, r)
		return r, nil
	}

	lt := e.L.Type.Unqualified()
	cur := g.load(lv)
	var v ir.Operand
	if lt.IsPointer() {
		v = g.emit(binaryOps[compoundOps[e.Op]], cur, g.scale(r, lt.Base))
	} else {
		v = g.emit(binaryOps[compoundOps[e.Op]], g.convert(cur, lt, e.Calc), r)
		v = g.convert(v, e.Calc, lt)
	}
	g.storeTo(lv, v)
	return v, nil
}

// genPostfix lowers x++ and x--; the result is the value before the update.
func (g *Lowerer) genPostfix(e *Expr) (ir.Operand, error) {
	lv, err := g.genLvalue(e.L)
	if err != nil {
		return ir.Operand{}, err
	}
	old := g.temp(e.Type)
	g.emit(ir.OpAssign, old, g.load(lv))
	op := ir.OpAdd
	if e.Op == MINUS_MINUS {
		op = ir.OpSub
	}
	var step ir.Operand
	switch {
	case e.Type.IsPointer():
		step = ir.Const(g.res.size(e.Type.Base))
	case e.Type.IsFloat():
		step = ir.FloatConst(1)
	default:
		step = ir.Const(1)
	}
	if e.Type.Kind == KindBool {
		// bool++ is always true; bool-- flips the value.
		if op == ir.OpAdd {
			g.storeTo(lv, ir.Const(1))
		} else {
			g.storeTo(lv, g.emit(ir.OpNot, old, ir.Operand{}))
		}
		return old, nil
	}
	g.storeTo(lv, g.emit(op, old, step))
	return old, nil
}

// scalarClass reports the Type operand describing values of t.
func (g *Lowerer) scalarClass(t *Type) ir.Operand {
	t = t.Unqualified()
	class := ir.ClassUint
	switch {
	case t.IsFloat():
		class = ir.ClassFloat
	case t.IsPointer(), t.Kind == KindNullptr:
		class = ir.ClassPtr
	case g.res.IsSigned(t):
		class = ir.ClassInt
	}
	return ir.TypeRef(class, g.res.size(t))
}

// convert changes the representation of v from type from to type to. A
// conversion between integer or pointer types of one size emits nothing;
// conversion to bool compares against zero.
func (g *Lowerer) convert(v ir.Operand, from, to *Type) ir.Operand {
	to = to.Unqualified()
	if to.Kind == KindVoid {
		return ir.Operand{}
	}
	if from.Kind == KindArray || from.Kind == KindFunc {
		return v
	}
	if to.Kind == KindBool {
		if from.Unqualified().Kind == KindBool {
			return v
		}
		return g.emit(ir.OpNe, v, ir.Const(0))
	}
	src, dst := g.scalarClass(from), g.scalarClass(to)
	if src == dst {
		return v
	}
	if src.ID != ir.ClassFloat && dst.ID != ir.ClassFloat && src.Int == dst.Int {
		return v
	}
	if v.Kind == ir.Imm && dst.ID != ir.ClassFloat {
		return ir.Const(g.res.Const(uint64(v.Int), to).Int64())
	}
	return g.emit(ir.OpCast, v, dst)
}
