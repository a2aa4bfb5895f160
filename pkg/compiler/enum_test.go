package compiler

import (
	"testing"

	"github.com/nalgeon/be"
)

func explicit(r *Resolver, x uint64, t *Type) *Value {
	v := r.Const(x, t)
	return &v
}

func TestResolveEnum(t *testing.T) {
	r := NewResolver(nil)

	t.Run("Implicit Values", func(t *testing.T) {
		e, err := r.ResolveEnum("f", nil, []EnumInit{
			{Name: "A", Explicit: explicit(r, 2, TyInt)},
			{Name: "B"},
			{Name: "C", Explicit: explicit(r, 20, TyInt)},
			{Name: "D", Explicit: explicit(r, 4, TyInt)},
		})
		be.Err(t, err, nil)
		be.Equal(t, e.Enum.Underlying, TyInt)
		be.True(t, e.Enum.Complete)
		var got []int64
		for _, c := range e.Enum.Constants {
			got = append(got, c.Value.Int64())
			be.Equal(t, c.Value.T, TyInt)
		}
		be.Equal(t, got, []int64{2, 3, 20, 4})
	})

	t.Run("Negative", func(t *testing.T) {
		e, err := r.ResolveEnum("", nil, []EnumInit{
			{Name: "M", Explicit: explicit(r, ^uint64(0), TyInt)},
			{Name: "Z"},
		})
		be.Err(t, err, nil)
		be.Equal(t, e.Enum.Underlying, TyInt)
		be.Equal(t, e.Enum.Constants[0].Value.Int64(), int64(-1))
		be.Equal(t, e.Enum.Constants[1].Value.Int64(), int64(0))
	})

	t.Run("Wider Than Int", func(t *testing.T) {
		e, err := r.ResolveEnum("w", nil, []EnumInit{
			{Name: "BIG", Explicit: explicit(r, 1<<32, TyLong)},
			{Name: "SMALL", Explicit: explicit(r, 1, TyInt)},
		})
		be.Err(t, err, nil)
		be.Equal(t, e.Enum.Underlying, TyLong)
		// Not every value fits in int, so the constants take the enumerated type.
		be.True(t, e.Enum.Constants[1].Value.T == e)
		be.Equal(t, e.Enum.Constants[0].Value.Bits, uint64(1<<32))
	})

	t.Run("Past INT_MAX", func(t *testing.T) {
		e, err := r.ResolveEnum("p", nil, []EnumInit{
			{Name: "MAX", Explicit: explicit(r, 2147483647, TyInt)},
			{Name: "NEXT"},
		})
		be.Err(t, err, nil)
		be.Equal(t, e.Enum.Underlying, TyLong)
		be.Equal(t, e.Enum.Constants[1].Value.Int64(), int64(2147483648))
	})

	t.Run("Unsigned 64", func(t *testing.T) {
		e, err := r.ResolveEnum("u", nil, []EnumInit{
			{Name: "TOP", Explicit: explicit(r, ^uint64(0), TyULong)},
		})
		be.Err(t, err, nil)
		be.Equal(t, e.Enum.Underlying, TyULong)
	})

	t.Run("Negative And Huge", func(t *testing.T) {
		_, err := r.ResolveEnum("bad", nil, []EnumInit{
			{Name: "N", Explicit: explicit(r, ^uint64(0), TyInt)},
			{Name: "H", Explicit: explicit(r, ^uint64(0), TyULong)},
		})
		be.Err(t, err, "exceed the range")
	})
}

func TestResolveEnum_Fixed(t *testing.T) {
	r := NewResolver(nil)

	t.Run("Constants Take Enum Type", func(t *testing.T) {
		e, err := r.ResolveEnum("g", TyULong, []EnumInit{
			{Name: "G0", Explicit: explicit(r, 4294967296, TyLong)},
			{Name: "G1"},
		})
		be.Err(t, err, nil)
		be.True(t, e.Enum.Fixed)
		be.Equal(t, e.Enum.Underlying, TyULong)
		be.Equal(t, e.Enum.Constants[1].Value.Uint64(), uint64(4294967297))
		be.True(t, e.Enum.Constants[1].Value.T == e)
	})

	t.Run("Out Of Range", func(t *testing.T) {
		_, err := r.ResolveEnum("c", TyUChar, []EnumInit{
			{Name: "C", Explicit: explicit(r, 256, TyInt)},
		})
		be.Err(t, err, "outside the range of unsigned char")
	})

	t.Run("Overflow", func(t *testing.T) {
		_, err := r.ResolveEnum("c", TyUChar, []EnumInit{
			{Name: "C", Explicit: explicit(r, 255, TyInt)},
			{Name: "D"},
		})
		be.Err(t, err, "overflows")
	})

	t.Run("Invalid Underlying", func(t *testing.T) {
		_, err := r.ResolveEnum("b", TyBool, nil)
		be.Err(t, err, "invalid underlying type")
		_, err = r.ResolveEnum("d", TyDouble, nil)
		be.Err(t, err, "invalid underlying type")
	})

	t.Run("Redeclared Underlying", func(t *testing.T) {
		fwd := NewEnumType("h")
		fwd.Enum.Fixed, fwd.Enum.Underlying = true, TyShort
		_, err := r.BeginEnum(fwd, "h", TyInt)
		be.Err(t, err, "different underlying type")
	})
}

func TestEnumBuilder_Incremental(t *testing.T) {
	r := NewResolver(nil)
	b, err := r.BeginEnum(nil, "k", nil)
	be.Err(t, err, nil)
	a, err := b.Add("A", explicit(r, 7, TyInt))
	be.Err(t, err, nil)
	// While the enumeration is open, later initializers can use earlier values.
	next, err := b.Add("B", explicit(r, a.Bits*2, TyInt))
	be.Err(t, err, nil)
	be.Equal(t, next.Int64(), int64(14))
	e, err := b.Finish()
	be.Err(t, err, nil)
	be.Equal(t, len(e.Enum.Constants), 2)
}
