package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func obj(name string, t *Type, sc StorageClass) DeclInfo {
	return DeclInfo{Name: name, Kind: SymObject, Type: t, Storage: sc}
}

func fn(name string, t *Type, sc StorageClass) DeclInfo {
	return DeclInfo{Name: name, Kind: SymFunc, Type: t, Storage: sc}
}

func TestSymbolTable_Scopes(t *testing.T) {
	st := NewSymbolTable()
	outer, err := st.Declare(obj("x", TyInt, SCNone))
	be.Err(t, err, nil)
	be.Equal(t, outer.Linkage, LinkExternal)
	be.Equal(t, outer.Depth, 0)

	leave := st.EnterScope()
	be.Equal(t, st.Depth(), 1)
	inner, err := st.Declare(obj("x", TyLong, SCNone))
	be.Err(t, err, nil)
	be.Equal(t, inner.Linkage, LinkNone)

	got, ok := st.Lookup("x")
	be.True(t, ok)
	be.True(t, got == inner)
	leave()

	got, ok = st.Lookup("x")
	be.True(t, ok)
	be.True(t, got == outer)
	_, ok = st.Lookup("y")
	be.True(t, !ok)
}

func TestSymbolTable_ExitFileScope(t *testing.T) {
	defer func() { be.True(t, recover() != nil) }()
	NewSymbolTable().ExitScope()
}

func TestSymbolTable_Linkage(t *testing.T) {
	r := NewResolver(nil)
	fnType := r.FuncOf(TyInt, nil, false)

	t.Run("Block Extern Joins File Static", func(t *testing.T) {
		st := NewSymbolTable()
		b, err := st.Declare(obj("b", TyInt, SCStatic))
		be.Err(t, err, nil)
		be.Equal(t, b.Linkage, LinkInternal)

		leave := st.EnterScope()
		again, err := st.Declare(obj("b", TyInt, SCExtern))
		be.Err(t, err, nil)
		leave()
		be.True(t, again == b)
		be.Equal(t, again.Linkage, LinkInternal)
		be.True(t, b.StaticDuration())
	})

	t.Run("Hidden Entity Found Through Registry", func(t *testing.T) {
		st := NewSymbolTable()
		leave := st.EnterScope()
		first, err := st.Declare(obj("v", TyInt, SCExtern))
		be.Err(t, err, nil)
		leave()
		_, ok := st.Lookup("v")
		be.True(t, !ok)

		def, err := st.Declare(DeclInfo{Name: "v", Kind: SymObject, Type: TyInt, Defines: true})
		be.Err(t, err, nil)
		be.True(t, def == first)
		be.True(t, def.Defined)
		be.Equal(t, def.Storage, SCNone)
	})

	t.Run("Function Declarations Merge", func(t *testing.T) {
		st := NewSymbolTable()
		decl, err := st.Declare(fn("f", fnType, SCStatic))
		be.Err(t, err, nil)
		def, err := st.Declare(DeclInfo{Name: "f", Kind: SymFunc, Type: fnType, Defines: true})
		be.Err(t, err, nil)
		be.True(t, def == decl)
		// A plain declaration after a static one keeps internal linkage.
		be.Equal(t, def.Linkage, LinkInternal)
		be.True(t, !def.StaticDuration())
	})

	t.Run("Array Completed By Redeclaration", func(t *testing.T) {
		st := NewSymbolTable()
		a, err := st.Declare(obj("a", r.ArrayOf(TyInt, -1), SCExtern))
		be.Err(t, err, nil)
		_, err = st.Declare(obj("a", r.ArrayOf(TyInt, 3), SCNone))
		be.Err(t, err, nil)
		be.Equal(t, a.Type.Len, int64(3))
	})
}

func TestSymbolTable_Errors(t *testing.T) {
	r := NewResolver(nil)
	fnType := r.FuncOf(TyInt, nil, false)

	tests := []struct {
		name  string
		decls []DeclInfo
		block bool
		want  string
	}{
		{
			name:  "Block Redefinition",
			decls: []DeclInfo{obj("x", TyInt, SCNone), obj("x", TyInt, SCNone)},
			block: true,
			want:  "redefinition of 'x'",
		},
		{
			name: "Two Initializers",
			decls: []DeclInfo{
				{Name: "x", Kind: SymObject, Type: TyInt, Defines: true},
				{Name: "x", Kind: SymObject, Type: TyInt, Defines: true},
			},
			want: "redefinition of 'x'",
		},
		{
			name:  "Conflicting Types",
			decls: []DeclInfo{obj("x", TyInt, SCNone), obj("x", TyLong, SCNone)},
			want:  "conflicting types for 'x'",
		},
		{
			name:  "Static After Extern",
			decls: []DeclInfo{obj("x", TyInt, SCNone), obj("x", TyInt, SCStatic)},
			want:  "static declaration of 'x' follows non-static declaration",
		},
		{
			name:  "Different Kind",
			decls: []DeclInfo{obj("x", TyInt, SCNone), {Name: "x", Kind: SymTypedef, Type: TyInt, Storage: SCTypedef}},
			want:  "redeclared as a different kind of symbol",
		},
		{
			name: "Typedef Conflict",
			decls: []DeclInfo{
				{Name: "T", Kind: SymTypedef, Type: TyInt, Storage: SCTypedef},
				{Name: "T", Kind: SymTypedef, Type: TyLong, Storage: SCTypedef},
			},
			want: "conflicting types for typedef 'T'",
		},
		{
			name:  "Static Function In Block",
			decls: []DeclInfo{fn("g", fnType, SCStatic)},
			block: true,
			want:  "invalid storage class for function 'g'",
		},
		{
			name:  "File Scope Auto",
			decls: []DeclInfo{obj("z", TyInt, SCAuto)},
			want:  "file-scope declaration of 'z' specifies 'auto'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewSymbolTable()
			if tt.block {
				defer st.EnterScope()()
			}
			var err error
			for _, d := range tt.decls {
				if _, err = st.Declare(d); err != nil {
					break
				}
			}
			be.Err(t, err, tt.want)
			be.True(t, errors.Is(err, ErrSemantic))
		})
	}
}

func TestSymbolTable_TypedefRedeclaration(t *testing.T) {
	st := NewSymbolTable()
	d := DeclInfo{Name: "T", Kind: SymTypedef, Type: TyInt, Storage: SCTypedef}
	first, err := st.Declare(d)
	be.Err(t, err, nil)
	second, err := st.Declare(d)
	be.Err(t, err, nil)
	be.True(t, first == second)
	be.True(t, st.IsTypedefName("T"))
	be.True(t, !st.IsTypedefName("U"))
}

func TestSymbolTable_Tags(t *testing.T) {
	st := NewSymbolTable()
	e := NewEnumType("color")
	st.DeclareTag("color", e)

	leave := st.EnterScope()
	_, ok := st.LookupTagLocal("color")
	be.True(t, !ok)
	got, ok := st.LookupTag("color")
	be.True(t, ok)
	be.True(t, got == e)
	leave()
}

func TestSymbolTable_String(t *testing.T) {
	st := NewSymbolTable()
	st.Declare(obj("zeta", TyInt, SCStatic))
	st.Declare(obj("alpha", TyLong, SCNone))
	st.Declare(DeclInfo{Name: "RED", Kind: SymEnumConst, Type: TyInt, Value: Value{Bits: 3, T: TyInt, Signed: true}})
	leave := st.EnterScope()
	defer leave()
	st.Declare(obj("local", TyChar, SCNone))

	dump := st.String()
	be.True(t, strings.HasPrefix(dump, "File scope:\n"))
	be.True(t, strings.Index(dump, "RED") < strings.Index(dump, "alpha"))
	be.True(t, strings.Index(dump, "alpha") < strings.Index(dump, "zeta"))
	be.True(t, contains(dump, "value=3"))
	be.True(t, contains(dump, "linkage=internal type=int"))
	be.True(t, contains(dump, "Scope 1:\n  local"))
	be.Equal(t, len(st.All()), 4)
}
