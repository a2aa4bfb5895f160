package compiler

import (
	"fmt"
	"math"

	"modernc.org/mathutil"
)

// EnumInit is one enumerator handed to ResolveEnum. Explicit is nil when
// the enumerator has no initializer.
type EnumInit struct {
	Name     string
	Explicit *Value
}

// ResolveEnum defines an enumeration in one call. fixed is the explicit
// underlying type, or nil.
func (r *Resolver) ResolveEnum(tag string, fixed *Type, enumerators []EnumInit) (*Type, error) {
	b, err := r.BeginEnum(nil, tag, fixed)
	if err != nil {
		return nil, err
	}
	for _, e := range enumerators {
		if _, err := b.Add(e.Name, e.Explicit); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// EnumBuilder assigns enumerator values one at a time, so that later
// initializers can refer to earlier enumerators.
type EnumBuilder struct {
	r    *Resolver
	t    *Type
	last *Value
}

// NewEnumType returns a fresh, incomplete enumeration type.
func NewEnumType(tag string) *Type {
	return &Type{Kind: KindEnum, Enum: &EnumInfo{Tag: tag}}
}

// BeginEnum starts defining an enumeration. When t is non-nil it is a
// previously declared (incomplete or forward-declared) type for the same
// tag that the definition completes.
func (r *Resolver) BeginEnum(t *Type, tag string, fixed *Type) (*EnumBuilder, error) {
	if fixed != nil {
		fixed = fixed.Unqualified()
		if fixed.Kind == KindEnum {
			fixed = fixed.Enum.Underlying
		}
		if fixed == nil || !fixed.IsInteger() || fixed.Kind == KindBool {
			return nil, fmt.Errorf("invalid underlying type for enumeration %s", enumName(tag))
		}
	}
	if t == nil {
		t = NewEnumType(tag)
	}
	info := t.Enum
	if info.Fixed && (fixed == nil || !Identical(info.Underlying, fixed)) {
		return nil, fmt.Errorf("enumeration %s redeclared with a different underlying type", enumName(tag))
	}
	if fixed != nil {
		info.Fixed = true
		info.Underlying = fixed
	}
	info.Constants = info.Constants[:0]
	return &EnumBuilder{r: r, t: t}, nil
}

func enumName(tag string) string {
	if tag == "" {
		return "<anonymous>"
	}
	return "'" + tag + "'"
}

// Add assigns the next enumerator's value: explicit if given, otherwise
// one more than its predecessor (0 for the first). The returned value has
// the type the constant carries while the enumeration is being defined.
func (b *EnumBuilder) Add(name string, explicit *Value) (Value, error) {
	r, info := b.r, b.t.Enum
	var v Value
	switch {
	case explicit != nil:
		if !explicit.T.IsInteger() {
			return Value{}, fmt.Errorf("enumerator value for '%s' is not an integer constant", name)
		}
		v = *explicit
	case b.last == nil:
		v = r.Const(0, TyInt)
	default:
		prev := *b.last
		switch {
		case info.Fixed:
			if prev.Bits == maxBits(r, info.Underlying) {
				return Value{}, fmt.Errorf("enumerator value for '%s' overflows %s", name, info.Underlying)
			}
			v = r.Const(prev.Bits+1, info.Underlying)
		case prev.Signed && int64(prev.Bits) == math.MaxInt64:
			v = r.Const(prev.Bits+1, TyULongLong)
		case !prev.Signed && prev.Bits == math.MaxUint64:
			return Value{}, fmt.Errorf("enumerator value for '%s' overflows", name)
		default:
			v = Value{Bits: prev.Bits + 1, T: TyLongLong, Signed: prev.Signed}
			if !prev.Signed {
				v.T = TyULongLong
			}
			if r.Fits(v, prev.T) {
				v = r.Convert(v, prev.T)
			}
		}
	}

	if info.Fixed {
		if !r.Fits(v, info.Underlying) {
			return Value{}, fmt.Errorf("enumerator value %s for '%s' is outside the range of %s", v, name, info.Underlying)
		}
		v = r.Convert(v, info.Underlying)
	} else if r.Fits(v, TyInt) {
		v = r.Convert(v, TyInt)
	} else {
		t := v.T.Unqualified()
		if t.Kind == KindEnum {
			t = t.Enum.Underlying
		}
		v = r.Convert(v, t)
	}
	info.Constants = append(info.Constants, EnumConst{Name: name, Value: v})
	b.last = &v
	return v, nil
}

func maxBits(r *Resolver, t *Type) uint64 {
	bits := uint(r.size(t) * 8)
	if r.IsSigned(t) {
		return 1<<(bits-1) - 1
	}
	if bits == 64 {
		return math.MaxUint64
	}
	return 1<<bits - 1
}

// Finish completes the enumeration: it picks the underlying type when none
// was given and re-types the constants. Constants have type int when no
// underlying type was written and every value fits in int; otherwise they
// have the enumerated type.
func (b *EnumBuilder) Finish() (*Type, error) {
	r, info := b.r, b.t.Enum
	if !info.Fixed {
		u, err := r.enumUnderlying(info.Constants)
		if err != nil {
			return nil, fmt.Errorf("enumeration %s: %w", enumName(info.Tag), err)
		}
		info.Underlying = u
	}
	info.Complete = true
	allInt := !info.Fixed
	for _, c := range info.Constants {
		allInt = allInt && r.Fits(c.Value, TyInt)
	}
	for i := range info.Constants {
		if allInt {
			info.Constants[i].Value = r.Convert(info.Constants[i].Value, TyInt)
		} else {
			info.Constants[i].Value = r.Convert(info.Constants[i].Value, b.t)
		}
	}
	return b.t, nil
}

// enumUnderlying selects the narrowest signed standard type of at least 32
// bits that holds every value. Values above INT64_MAX need an unsigned
// 64-bit type, which then cannot hold negative values.
func (r *Resolver) enumUnderlying(consts []EnumConst) (*Type, error) {
	w := 32
	var neg, huge bool
	for _, c := range consts {
		v := c.Value
		switch {
		case v.IsNeg():
			neg = true
			w = mathutil.Max(w, mathutil.BitLenUint64(uint64(-int64(v.Bits))))
		case !v.Signed && v.Bits > math.MaxInt64:
			huge = true
		default:
			w = mathutil.Max(w, mathutil.BitLenUint64(v.Bits)+1)
		}
	}
	if huge {
		if neg {
			return nil, fmt.Errorf("enumerator values exceed the range of the largest integer type")
		}
		return r.narrowest(64, false), nil
	}
	return r.narrowest(w, true), nil
}

func (r *Resolver) narrowest(w int, signed bool) *Type {
	var best *Type
	for _, t := range []*Type{TyInt, TyLong, TyLongLong, TyUInt, TyULong, TyULongLong} {
		if r.IsSigned(t) != signed || int(r.size(t))*8 < w {
			continue
		}
		if best == nil || r.size(t) < r.size(best) {
			best = t
		}
	}
	if best == nil {
		return TyULongLong
	}
	return best
}
