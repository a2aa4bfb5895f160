package compiler

import (
	"errors"
	"math"

	"cfront/pkg/diag"
)

const (
	msgNotICE   = "expression is not an integer constant expression"
	msgOverflow = "integer overflow in constant expression"
)

// notICE reports whether err is the plain "not a constant" failure rather
// than a more specific diagnostic such as division by zero.
func notICE(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Msg == msgNotICE
}

// EvalInt evaluates an integer constant expression. Enumerators, sizeof
// and alignof results, casts and the arithmetic, bitwise, relational and
// logical operators are allowed; anything that needs run-time state is an
// error.
func (r *Resolver) EvalInt(e *Expr) (Value, error) {
	switch e.Kind {
	case ExprInt, ExprSizeof, ExprAlignof:
		return e.Val, nil

	case ExprIdent:
		if e.Sym.Kind == SymEnumConst {
			return r.Convert(e.Sym.Value, e.Type), nil
		}

	case ExprCast:
		if !e.Type.IsInteger() {
			break
		}
		if e.L.Type.IsFloat() {
			f, err := r.EvalFloat(e.L)
			if err != nil {
				return Value{}, err
			}
			return r.floatToInt(f, e.Type), nil
		}
		if e.L.Type.IsInteger() {
			v, err := r.EvalInt(e.L)
			if err != nil {
				return Value{}, err
			}
			return r.Convert(v, e.Type), nil
		}

	case ExprUnary:
		v, err := r.EvalInt(e.L)
		if err != nil {
			return Value{}, err
		}
		switch e.Op {
		case PLUS:
			return r.Convert(v, e.Type), nil
		case MINUS:
			v = r.Convert(v, e.Type)
			if v.Signed && signedOverflow(MINUS, 0, v.Int64(), r.width(e.Type)) {
				return Value{}, semErrorf(e.Pos, msgOverflow)
			}
			return r.Const(-v.Bits, e.Type), nil
		case TILDE:
			return r.Const(^r.Convert(v, e.Type).Bits, e.Type), nil
		case NOT:
			return r.Const(b2u(v.IsZero()), TyInt), nil
		}

	case ExprLogical:
		a, err := r.EvalInt(e.L)
		if err != nil {
			return Value{}, err
		}
		if e.Op == AND_LOGICAL && a.IsZero() {
			return r.Const(0, TyInt), nil
		}
		if e.Op == OR_LOGICAL && !a.IsZero() {
			return r.Const(1, TyInt), nil
		}
		b, err := r.EvalInt(e.R)
		if err != nil {
			return Value{}, err
		}
		return r.Const(b2u(!b.IsZero()), TyInt), nil

	case ExprCond:
		c, err := r.EvalInt(e.C)
		if err != nil {
			return Value{}, err
		}
		pick := e.R
		if !c.IsZero() {
			pick = e.L
		}
		v, err := r.EvalInt(pick)
		if err != nil {
			return Value{}, err
		}
		return r.Convert(v, e.Type), nil

	case ExprBinary:
		if e.Type.IsInteger() && e.L.Type.IsInteger() && e.R.Type.IsInteger() {
			return r.evalBinary(e)
		}
	}
	return Value{}, semErrorf(e.Pos, msgNotICE)
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (r *Resolver) evalBinary(e *Expr) (Value, error) {
	a, err := r.EvalInt(e.L)
	if err != nil {
		return Value{}, err
	}
	b, err := r.EvalInt(e.R)
	if err != nil {
		return Value{}, err
	}

	switch e.Op {
	case SHL_OP, SHR_OP:
		a = r.Convert(a, e.Type)
		width := r.size(e.Type) * 8
		if b.IsNeg() || b.Bits >= uint64(width) {
			return Value{}, semErrorf(e.Pos, "shift count %s is out of range", b)
		}
		if e.Op == SHL_OP {
			return r.Const(a.Bits<<b.Bits, e.Type), nil
		}
		if a.Signed {
			return r.Const(uint64(int64(a.Bits)>>b.Bits), e.Type), nil
		}
		return r.Const(a.Bits>>b.Bits, e.Type), nil
	}

	opType := e.Type
	switch e.Op {
	case EQUALS, NOT_EQ, LESS, GREATER, LESS_EQ, GREATER_EQ:
		opType = r.UsualArith(e.L.Type, e.R.Type)
	}
	a, b = r.Convert(a, opType), r.Convert(b, opType)
	x, y := a.Bits, b.Bits
	signed := a.Signed

	switch e.Op {
	case PLUS, MINUS, STAR, SLASH, PERCENT:
		if signed && y != 0 && signedOverflow(e.Op, int64(x), int64(y), r.width(e.Type)) {
			return Value{}, semErrorf(e.Pos, msgOverflow)
		}
	}

	switch e.Op {
	case PLUS:
		return r.Const(x+y, e.Type), nil
	case MINUS:
		return r.Const(x-y, e.Type), nil
	case STAR:
		return r.Const(x*y, e.Type), nil
	case SLASH, PERCENT:
		if y == 0 {
			return Value{}, semErrorf(e.Pos, "division by zero in constant expression")
		}
		if signed {
			q, m := int64(x)/int64(y), int64(x)%int64(y)
			if e.Op == SLASH {
				return r.Const(uint64(q), e.Type), nil
			}
			return r.Const(uint64(m), e.Type), nil
		}
		if e.Op == SLASH {
			return r.Const(x/y, e.Type), nil
		}
		return r.Const(x%y, e.Type), nil
	case AND:
		return r.Const(x&y, e.Type), nil
	case PIPE:
		return r.Const(x|y, e.Type), nil
	case CARET:
		return r.Const(x^y, e.Type), nil
	case EQUALS:
		return r.Const(b2u(x == y), TyInt), nil
	case NOT_EQ:
		return r.Const(b2u(x != y), TyInt), nil
	}

	eq, less := x == y, x < y
	if signed {
		less = int64(x) < int64(y)
	}
	switch e.Op {
	case LESS:
		return r.Const(b2u(less), TyInt), nil
	case GREATER:
		return r.Const(b2u(!less && !eq), TyInt), nil
	case LESS_EQ:
		return r.Const(b2u(less || eq), TyInt), nil
	case GREATER_EQ:
		return r.Const(b2u(!less), TyInt), nil
	}
	return Value{}, semErrorf(e.Pos, msgNotICE)
}

func (r *Resolver) width(t *Type) uint { return uint(r.size(t) * 8) }

// signedOverflow reports whether a op b, computed exactly, falls outside
// the range of a signed type of the given width. a and b are in range.
func signedOverflow(op TokenType, a, b int64, width uint) bool {
	lo, hi := int64(-1)<<(width-1), int64(1)<<(width-1)-1
	switch op {
	case PLUS:
		s := a + b
		return b > 0 && s < a || b < 0 && s > a || s < lo || s > hi
	case MINUS:
		d := a - b
		return b < 0 && d < a || b > 0 && d > a || d < lo || d > hi
	case STAR:
		if a == 0 || b == 0 {
			return false
		}
		p := a * b
		return p/b != a || a == -1 && b == math.MinInt64 || b == -1 && a == math.MinInt64 || p < lo || p > hi
	case SLASH, PERCENT:
		return b == -1 && a == lo
	}
	return false
}

// EvalFloat evaluates an arithmetic constant expression as a float64.
func (r *Resolver) EvalFloat(e *Expr) (float64, error) {
	if e.Type.IsInteger() {
		v, err := r.EvalInt(e)
		if err != nil {
			return 0, err
		}
		if v.Signed {
			return float64(int64(v.Bits)), nil
		}
		return float64(v.Bits), nil
	}
	switch e.Kind {
	case ExprFloat:
		return e.F, nil
	case ExprUnary:
		f, err := r.EvalFloat(e.L)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case MINUS:
			return -f, nil
		case PLUS:
			return f, nil
		}
	case ExprCast:
		f, err := r.EvalFloat(e.L)
		if err != nil {
			return 0, err
		}
		if e.Type.Kind == KindFloat {
			return float64(float32(f)), nil
		}
		if e.Type.IsFloat() {
			return f, nil
		}
	case ExprBinary:
		if !e.Type.IsFloat() {
			break
		}
		a, err := r.EvalFloat(e.L)
		if err != nil {
			return 0, err
		}
		b, err := r.EvalFloat(e.R)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case PLUS:
			return a + b, nil
		case MINUS:
			return a - b, nil
		case STAR:
			return a * b, nil
		case SLASH:
			return a / b, nil
		}
	case ExprCond:
		c, err := r.EvalInt(e.C)
		if err != nil {
			return 0, err
		}
		if !c.IsZero() {
			return r.EvalFloat(e.L)
		}
		return r.EvalFloat(e.R)
	}
	return 0, semErrorf(e.Pos, "initializer element is not a constant expression")
}

func (r *Resolver) floatToInt(f float64, t *Type) Value {
	if t.Unqualified().Kind == KindBool {
		return r.Const(b2u(f != 0), t)
	}
	if f >= 0 && !r.IsSigned(t) {
		return r.Const(uint64(f), t)
	}
	return r.Const(uint64(int64(f)), t)
}

// StaticInit is one scalar of a folded static initializer. Exactly one of
// the value fields applies: Float when IsFloat, the address of Addr or Str
// (plus AddOff bytes) when either is set, Int otherwise.
type StaticInit struct {
	Offset  int64
	Size    int64
	Int     Value
	Float   float64
	IsFloat bool
	Addr    *Symbol
	Str     *StringLit
	AddOff  int64
}

// FoldInit flattens the initializer e of an object of type t, placed off
// bytes into the enclosing object, into scalar entries. Elements that are
// not mentioned are zero and produce no entry.
func (r *Resolver) FoldInit(e *Expr, t *Type, off int64, out []StaticInit) ([]StaticInit, error) {
	if t.Kind == KindArray {
		esz := r.size(t.Base)
		if e.Kind == ExprString {
			for i, u := range append(e.Str.Units, 0) {
				if int64(i) >= t.Len {
					break
				}
				out = append(out, StaticInit{Offset: off + int64(i)*esz, Size: esz, Int: r.Const(uint64(u), t.Base)})
			}
			return out, nil
		}
		diag.Assert(e.Kind == ExprInitList, "array initializer is a list or a string")
		for i, el := range e.Args {
			var err error
			if out, err = r.FoldInit(el, t.Base, off+int64(i)*esz, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	if e.Kind == ExprInitList {
		if len(e.Args) == 0 {
			return out, nil
		}
		return r.FoldInit(e.Args[0], t, off, out)
	}

	in := StaticInit{Offset: off, Size: r.size(t)}
	switch {
	case t.IsFloat():
		f, err := r.EvalFloat(e)
		if err != nil {
			return nil, err
		}
		if t.Unqualified().Kind == KindFloat {
			f = float64(float32(f))
		}
		in.Float, in.IsFloat = f, true
	case t.IsInteger():
		if e.Type.IsFloat() {
			f, err := r.EvalFloat(e)
			if err != nil {
				return nil, err
			}
			in.Int = r.floatToInt(f, t)
			break
		}
		v, err := r.EvalInt(e)
		if notICE(err) {
			return nil, semErrorf(e.Pos, "initializer element is not a compile-time constant")
		}
		if err != nil {
			return nil, err
		}
		in.Int = r.Convert(v, t)
	default:
		if err := r.addrConst(e, &in); err != nil {
			return nil, err
		}
	}
	return append(out, in), nil
}

// addrConst folds an address constant: a null pointer, the address of a
// static object, function or string literal, optionally offset by an
// integer constant.
func (r *Resolver) addrConst(e *Expr, in *StaticInit) error {
	switch e.Kind {
	case ExprCast:
		if e.L.Type.IsInteger() {
			v, err := r.EvalInt(e.L)
			if err != nil {
				return err
			}
			in.Int = r.Const(v.Bits, TyULong)
			return nil
		}
		return r.addrConst(e.L, in)
	case ExprAddr:
		switch e.L.Kind {
		case ExprIdent:
			if e.L.Sym.Kind == SymFunc || e.L.Sym.StaticDuration() {
				in.Addr = e.L.Sym
				return nil
			}
		case ExprString:
			in.Str = e.L.Str
			return nil
		case ExprDeref:
			return r.addrConst(e.L.L, in)
		}
	case ExprBinary:
		if (e.Op == PLUS || e.Op == MINUS) && e.Type.IsPointer() && e.R.Type.IsInteger() {
			v, err := r.EvalInt(e.R)
			if err != nil {
				return err
			}
			n := int64(v.Bits) * r.size(e.Type.Base)
			if e.Op == MINUS {
				n = -n
			}
			in.AddOff += n
			return r.addrConst(e.L, in)
		}
	case ExprInt:
		in.Int = e.Val
		return nil
	}
	if e.Type.IsInteger() {
		v, err := r.EvalInt(e)
		if err == nil {
			in.Int = v
			return nil
		}
	}
	return semErrorf(e.Pos, "initializer element is not a compile-time constant")
}
