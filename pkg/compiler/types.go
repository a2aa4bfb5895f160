package compiler

import (
	"fmt"
	"strings"
)

// Kind classifies a Type.
type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindChar
	KindSChar
	KindUChar
	KindShort
	KindUShort
	KindInt
	KindUInt
	KindLong
	KindULong
	KindLongLong
	KindULongLong
	KindFloat
	KindDouble
	KindLongDouble
	KindEnum
	KindPointer
	KindArray
	KindFunc
	KindNullptr

	kindCount
)

var kindNames = [...]string{
	KindVoid:       "void",
	KindBool:       "bool",
	KindChar:       "char",
	KindSChar:      "signed char",
	KindUChar:      "unsigned char",
	KindShort:      "short",
	KindUShort:     "unsigned short",
	KindInt:        "int",
	KindUInt:       "unsigned int",
	KindLong:       "long",
	KindULong:      "unsigned long",
	KindLongLong:   "long long",
	KindULongLong:  "unsigned long long",
	KindFloat:      "float",
	KindDouble:     "double",
	KindLongDouble: "long double",
	KindEnum:       "enum",
	KindPointer:    "pointer",
	KindArray:      "array",
	KindFunc:       "function",
	KindNullptr:    "nullptr_t",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Qualifiers is a set of type qualifiers. Combining sets is a union, so
// applying the same qualifier twice or in another order changes nothing.
type Qualifiers uint8

const (
	QualConst Qualifiers = 1 << iota
	QualVolatile
	QualRestrict
)

func (q Qualifiers) String() string {
	var parts []string
	if q&QualConst != 0 {
		parts = append(parts, "const")
	}
	if q&QualVolatile != 0 {
		parts = append(parts, "volatile")
	}
	if q&QualRestrict != 0 {
		parts = append(parts, "restrict")
	}
	return strings.Join(parts, " ")
}

// Type is a resolved C type. Types are compared by identity when they come
// from the same Resolver; Identical gives the structural comparison.
type Type struct {
	Kind     Kind
	Quals    Qualifiers
	Base     *Type   // pointee, array element or function result
	Len      int64   // array length, -1 if unknown
	Params   []*Type // function parameter types, already adjusted
	Variadic bool
	Enum     *EnumInfo

	unqual *Type // same type without qualifiers; nil when Quals == 0
}

// EnumInfo is shared by every qualified variant of one enumeration.
type EnumInfo struct {
	Tag        string // empty for an anonymous enumeration
	Underlying *Type
	Fixed      bool // underlying type was written explicitly
	Complete   bool
	Constants  []EnumConst
}

// EnumConst is one enumerator and its value.
type EnumConst struct {
	Name  string
	Value Value
}

// Predeclared unqualified types. They are never mutated, so translation
// units compiled concurrently can share them.
var (
	TyVoid       = &Type{Kind: KindVoid}
	TyBool       = &Type{Kind: KindBool}
	TyChar       = &Type{Kind: KindChar}
	TySChar      = &Type{Kind: KindSChar}
	TyUChar      = &Type{Kind: KindUChar}
	TyShort      = &Type{Kind: KindShort}
	TyUShort     = &Type{Kind: KindUShort}
	TyInt        = &Type{Kind: KindInt}
	TyUInt       = &Type{Kind: KindUInt}
	TyLong       = &Type{Kind: KindLong}
	TyULong      = &Type{Kind: KindULong}
	TyLongLong   = &Type{Kind: KindLongLong}
	TyULongLong  = &Type{Kind: KindULongLong}
	TyFloat      = &Type{Kind: KindFloat}
	TyDouble     = &Type{Kind: KindDouble}
	TyLongDouble = &Type{Kind: KindLongDouble}
	TyNullptr    = &Type{Kind: KindNullptr}
)

var basicTypes = [...]*Type{
	KindVoid:       TyVoid,
	KindBool:       TyBool,
	KindChar:       TyChar,
	KindSChar:      TySChar,
	KindUChar:      TyUChar,
	KindShort:      TyShort,
	KindUShort:     TyUShort,
	KindInt:        TyInt,
	KindUInt:       TyUInt,
	KindLong:       TyLong,
	KindULong:      TyULong,
	KindLongLong:   TyLongLong,
	KindULongLong:  TyULongLong,
	KindFloat:      TyFloat,
	KindDouble:     TyDouble,
	KindLongDouble: TyLongDouble,
}

// basicType returns the predeclared type for an arithmetic or void kind.
func basicType(k Kind) *Type {
	if int(k) < len(basicTypes) && basicTypes[k] != nil {
		return basicTypes[k]
	}
	return nil
}

// StaticType lets a *Type stand in wherever an expression-or-type operand
// is accepted (typeof, sizeof, alignof).
func (t *Type) StaticType() *Type { return t }

// Unqualified returns t without its top-level qualifiers.
func (t *Type) Unqualified() *Type {
	if t.unqual != nil {
		return t.unqual
	}
	return t
}

func (t *Type) IsInteger() bool {
	return (t.Kind >= KindBool && t.Kind <= KindULongLong) || t.Kind == KindEnum
}

func (t *Type) IsFloat() bool {
	return t.Kind >= KindFloat && t.Kind <= KindLongDouble
}

func (t *Type) IsArithmetic() bool { return t.IsInteger() || t.IsFloat() }

func (t *Type) IsPointer() bool { return t.Kind == KindPointer }

func (t *Type) IsScalar() bool {
	return t.IsArithmetic() || t.Kind == KindPointer || t.Kind == KindNullptr
}

// IsComplete reports whether objects of type t have a known size.
func (t *Type) IsComplete() bool {
	switch t.Kind {
	case KindVoid, KindFunc:
		return false
	case KindArray:
		return t.Len >= 0 && t.Base.IsComplete()
	case KindEnum:
		return t.Enum.Complete
	}
	return true
}

// Identical reports whether a and b denote the same type, qualifiers
// included.
func Identical(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind || a.Quals != b.Quals {
		return false
	}
	switch a.Kind {
	case KindPointer:
		return Identical(a.Base, b.Base)
	case KindArray:
		return a.Len == b.Len && Identical(a.Base, b.Base)
	case KindEnum:
		return a.Enum == b.Enum
	case KindFunc:
		if a.Variadic != b.Variadic || len(a.Params) != len(b.Params) || !Identical(a.Base, b.Base) {
			return false
		}
		for i := range a.Params {
			if !Identical(a.Params[i], b.Params[i]) {
				return false
			}
		}
	}
	return true
}

// Compatible reports whether a and b are compatible types: the rule that
// governs redeclarations and pointer assignment. An enumeration is
// compatible with its underlying type and arrays of unknown length are
// compatible with any length.
func Compatible(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Quals != b.Quals {
		return false
	}
	if a.Kind == KindEnum && b.Kind != KindEnum && a.Enum.Underlying != nil {
		return Compatible(a.Enum.Underlying, b.Unqualified())
	}
	if b.Kind == KindEnum && a.Kind != KindEnum {
		return Compatible(b, a)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindPointer:
		return Compatible(a.Base, b.Base)
	case KindArray:
		return (a.Len < 0 || b.Len < 0 || a.Len == b.Len) && Compatible(a.Base, b.Base)
	case KindEnum:
		return a.Enum == b.Enum
	case KindFunc:
		if a.Variadic != b.Variadic || len(a.Params) != len(b.Params) || !Compatible(a.Base, b.Base) {
			return false
		}
		for i := range a.Params {
			if !Compatible(a.Params[i].Unqualified(), b.Params[i].Unqualified()) {
				return false
			}
		}
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return typeString(t, "")
}

// typeString renders t in declarator form around inner, e.g. "int (*)[3]".
func typeString(t *Type, inner string) string {
	quals := t.Quals.String()
	switch t.Kind {
	case KindPointer:
		s := "*"
		if quals != "" {
			s += " " + quals
		}
		if inner != "" {
			s += " " + inner
		}
		if t.Base.Kind == KindArray || t.Base.Kind == KindFunc {
			s = "(" + s + ")"
		}
		return typeString(t.Base, s)
	case KindArray:
		n := ""
		if t.Len >= 0 {
			n = fmt.Sprint(t.Len)
		}
		return typeString(t.Base, strings.TrimSpace(inner+" ")+"["+n+"]")
	case KindFunc:
		params := make([]string, 0, len(t.Params)+1)
		for _, p := range t.Params {
			params = append(params, p.String())
		}
		if t.Variadic {
			params = append(params, "...")
		}
		if len(params) == 0 {
			params = append(params, "void")
		}
		return typeString(t.Base, inner+"("+strings.Join(params, ", ")+")")
	}
	name := t.Kind.String()
	if t.Kind == KindEnum {
		if t.Enum.Tag != "" {
			name = "enum " + t.Enum.Tag
		} else {
			name = "enum <anonymous>"
		}
	}
	if quals != "" {
		name = quals + " " + name
	}
	if inner != "" {
		name += " " + inner
	}
	return name
}
