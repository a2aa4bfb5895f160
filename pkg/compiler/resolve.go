package compiler

import (
	"errors"
	"fmt"
	"strconv"

	"cfront/pkg/diag"
)

// Typed is anything with a static type: a *Type names itself, an *Expr
// reports the type it was given when it was parsed.
type Typed interface {
	StaticType() *Type
}

// Resolver builds and measures types for one translation unit. Derived
// types are interned, so resolving the same qualified, pointer or array
// type twice yields the same *Type.
type Resolver struct {
	abi    *ABI
	quals  map[qualKey]*Type
	ptrs   map[*Type]*Type
	arrays map[arrayKey]*Type
}

type qualKey struct {
	t *Type
	q Qualifiers
}

type arrayKey struct {
	elem *Type
	n    int64
}

var (
	errIncomplete = errors.New("incomplete type")
	errFuncSize   = errors.New("function type has no size")
)

// NewResolver creates a resolver for the given ABI.
func NewResolver(abi *ABI) *Resolver {
	if abi == nil {
		abi = DefaultABI()
	}
	return &Resolver{
		abi:    abi,
		quals:  make(map[qualKey]*Type),
		ptrs:   make(map[*Type]*Type),
		arrays: make(map[arrayKey]*Type),
	}
}

// ABI returns the data model the resolver measures against.
func (r *Resolver) ABI() *ABI { return r.abi }

// ResolveQualified adds q to base. Qualifying an array qualifies its
// element type; function types cannot be qualified and come back unchanged.
func (r *Resolver) ResolveQualified(base *Type, q Qualifiers) *Type {
	if q == 0 || base.Quals|q == base.Quals {
		return base
	}
	switch base.Kind {
	case KindArray:
		return r.ArrayOf(r.ResolveQualified(base.Base, q), base.Len)
	case KindFunc:
		return base
	}
	u := base.Unqualified()
	key := qualKey{u, base.Quals | q}
	if t, ok := r.quals[key]; ok {
		return t
	}
	t := *u
	t.Quals = key.q
	t.unqual = u
	r.quals[key] = &t
	return &t
}

// Unqual strips every qualifier from t, looking through arrays.
func (r *Resolver) Unqual(t *Type) *Type {
	if t.Kind == KindArray {
		elem := r.Unqual(t.Base)
		if elem == t.Base {
			return t
		}
		return r.ArrayOf(elem, t.Len)
	}
	return t.Unqualified()
}

// ResolveTypeof returns the type named by typeof(operand), or by
// typeof_unqual(operand) when unqual is set. The operand is never
// evaluated and keeps array and function types undecayed.
func (r *Resolver) ResolveTypeof(operand Typed, unqual bool) *Type {
	t := operand.StaticType()
	diag.Assert(t != nil, "typeof operand has a type")
	if unqual {
		return r.Unqual(t)
	}
	return t
}

// PointerTo returns the pointer type whose pointee is base.
func (r *Resolver) PointerTo(base *Type) *Type {
	if t, ok := r.ptrs[base]; ok {
		return t
	}
	t := &Type{Kind: KindPointer, Base: base}
	r.ptrs[base] = t
	return t
}

// ArrayOf returns the type of an n-element array of elem; n < 0 means the
// length is unknown.
func (r *Resolver) ArrayOf(elem *Type, n int64) *Type {
	if n < 0 {
		n = -1
	}
	key := arrayKey{elem, n}
	if t, ok := r.arrays[key]; ok {
		return t
	}
	t := &Type{Kind: KindArray, Base: elem, Len: n}
	r.arrays[key] = t
	return t
}

// FuncOf builds a function type. Parameter types are adjusted: arrays and
// functions become pointers and top-level qualifiers are dropped.
func (r *Resolver) FuncOf(ret *Type, params []*Type, variadic bool) *Type {
	adj := make([]*Type, len(params))
	for i, p := range params {
		adj[i] = r.AdjustParam(p)
	}
	return &Type{Kind: KindFunc, Base: ret, Params: adj, Variadic: variadic}
}

// AdjustParam applies the parameter type adjustments.
func (r *Resolver) AdjustParam(t *Type) *Type {
	switch t.Kind {
	case KindArray:
		return r.PointerTo(t.Base)
	case KindFunc:
		return r.PointerTo(t)
	}
	return t.Unqualified()
}

// Sizeof returns the size of t in bytes.
func (r *Resolver) Sizeof(t *Type) (int64, error) {
	switch t.Kind {
	case KindVoid:
		return 0, fmt.Errorf("%w 'void'", errIncomplete)
	case KindFunc:
		return 0, errFuncSize
	case KindArray:
		if t.Len < 0 {
			return 0, fmt.Errorf("%w '%s'", errIncomplete, t)
		}
		n, err := r.Sizeof(t.Base)
		if err != nil {
			return 0, err
		}
		return n * t.Len, nil
	case KindEnum:
		if !t.Enum.Complete {
			return 0, fmt.Errorf("%w '%s'", errIncomplete, t)
		}
		return r.Sizeof(t.Enum.Underlying)
	}
	return r.abi.layout(t.Kind).Size, nil
}

// Alignof returns the alignment of t in bytes.
func (r *Resolver) Alignof(t *Type) (int64, error) {
	switch t.Kind {
	case KindVoid:
		return 0, fmt.Errorf("%w 'void'", errIncomplete)
	case KindFunc:
		return 0, errFuncSize
	case KindArray:
		return r.Alignof(t.Base)
	case KindEnum:
		if !t.Enum.Complete {
			return 0, fmt.Errorf("%w '%s'", errIncomplete, t)
		}
		return r.Alignof(t.Enum.Underlying)
	}
	return r.abi.layout(t.Kind).Align, nil
}

// size is Sizeof for types already known to be complete.
func (r *Resolver) size(t *Type) int64 {
	n, err := r.Sizeof(t)
	diag.Assert(err == nil, "size of complete type")
	return n
}

// IsSigned reports whether an arithmetic type is signed.
func (r *Resolver) IsSigned(t *Type) bool {
	switch t.Kind {
	case KindChar:
		return r.abi.CharSigned
	case KindSChar, KindShort, KindInt, KindLong, KindLongLong:
		return true
	case KindEnum:
		if t.Enum.Underlying == nil {
			return true
		}
		return r.IsSigned(t.Enum.Underlying)
	}
	return t.IsFloat()
}

// rank orders the integer kinds for the conversion rules.
func rank(k Kind) int {
	switch k {
	case KindBool:
		return 1
	case KindChar, KindSChar, KindUChar:
		return 2
	case KindShort, KindUShort:
		return 3
	case KindInt, KindUInt:
		return 4
	case KindLong, KindULong:
		return 5
	case KindLongLong, KindULongLong:
		return 6
	}
	return 0
}

var toUnsigned = map[Kind]Kind{
	KindChar: KindUChar, KindSChar: KindUChar, KindShort: KindUShort,
	KindInt: KindUInt, KindLong: KindULong, KindLongLong: KindULongLong,
}

// Promote applies the integer promotions to an unqualified arithmetic type.
func (r *Resolver) Promote(t *Type) *Type {
	t = t.Unqualified()
	if t.Kind == KindEnum {
		if t.Enum.Underlying == nil {
			return TyInt
		}
		t = t.Enum.Underlying
	}
	if !t.IsInteger() || rank(t.Kind) >= rank(KindInt) {
		return t
	}
	if r.size(t) < r.size(TyInt) || r.IsSigned(t) {
		return TyInt
	}
	return TyUInt
}

// UsualArith returns the common type of two arithmetic operands.
func (r *Resolver) UsualArith(a, b *Type) *Type {
	a, b = a.Unqualified(), b.Unqualified()
	for _, k := range []Kind{KindLongDouble, KindDouble, KindFloat} {
		if a.Kind == k || b.Kind == k {
			return basicType(k)
		}
	}
	a, b = r.Promote(a), r.Promote(b)
	if a.Kind == b.Kind {
		return a
	}
	sa, sb := r.IsSigned(a), r.IsSigned(b)
	if sa == sb {
		if rank(a.Kind) >= rank(b.Kind) {
			return a
		}
		return b
	}
	u, s := a, b
	if sa {
		u, s = b, a
	}
	if rank(u.Kind) >= rank(s.Kind) {
		return u
	}
	if r.size(s) > r.size(u) {
		return s
	}
	return basicType(toUnsigned[s.Kind])
}

// Value is an integer constant. Bits holds the two's-complement pattern
// normalised to the width of T: sign-extended for signed types and
// zero-extended for unsigned ones.
type Value struct {
	Bits   uint64
	T      *Type
	Signed bool
}

func (v Value) Int64() int64   { return int64(v.Bits) }
func (v Value) Uint64() uint64 { return v.Bits }
func (v Value) IsNeg() bool    { return v.Signed && int64(v.Bits) < 0 }
func (v Value) IsZero() bool   { return v.Bits == 0 }

func (v Value) String() string {
	if v.Signed {
		return strconv.FormatInt(int64(v.Bits), 10)
	}
	return strconv.FormatUint(v.Bits, 10)
}

// Const converts the bit pattern x to type t, truncating to its width.
func (r *Resolver) Const(x uint64, t *Type) Value {
	u := t.Unqualified()
	if u.Kind == KindPointer || u.Kind == KindNullptr {
		return Value{Bits: x, T: t}
	}
	if u.Kind == KindBool {
		if x != 0 {
			x = 1
		}
		return Value{Bits: x, T: t}
	}
	signed := r.IsSigned(u)
	if bits := uint(r.size(u) * 8); bits < 64 {
		x &= 1<<bits - 1
		if signed && x&(1<<(bits-1)) != 0 {
			x |= ^uint64(0) << bits
		}
	}
	return Value{Bits: x, T: t, Signed: signed}
}

// Convert re-types v as t.
func (r *Resolver) Convert(v Value, t *Type) Value { return r.Const(v.Bits, t) }

// Fits reports whether v's mathematical value is representable in t.
func (r *Resolver) Fits(v Value, t *Type) bool {
	w := r.Convert(v, t)
	if w.Bits != v.Bits {
		return false
	}
	// Same bit pattern can still flip sign between signed and unsigned.
	return v.IsNeg() == w.IsNeg()
}
