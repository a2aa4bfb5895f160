package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestDefaultABI(t *testing.T) {
	abi := DefaultABI()
	be.Equal(t, abi.Name, "lp64")
	be.True(t, abi.CharSigned)

	tests := []struct {
		name string
		want *Type
	}{
		{"size_t", TyULong},
		{"ptrdiff_t", TyLong},
		{"wchar_t", TyInt},
		{"char8_t", TyUChar},
		{"char16_t", TyUShort},
		{"char32_t", TyUInt},
		{"sig_atomic_t", TyInt},
		{"wctype_t", TyULong},
	}
	for _, tt := range tests {
		got, ok := abi.Typedef(tt.name)
		be.True(t, ok)
		be.Equal(t, got, tt.want)
	}
	_, ok := abi.Typedef("FILE")
	be.True(t, !ok)
}

const ilp32 = `
name: ilp32
char_signed: false
pointer: {size: 4, align: 4}
types:
  bool: {size: 1, align: 1}
  char: {size: 1, align: 1}
  short: {size: 2, align: 2}
  int: {size: 4, align: 4}
  long: {size: 4, align: 4}
  long long: {size: 8, align: 4}
  float: {size: 4, align: 4}
  double: {size: 8, align: 4}
  long double: {size: 12, align: 4}
typedefs:
  size_t: unsigned   int
  ptrdiff_t: int
`

func TestParseABI(t *testing.T) {
	abi, err := ParseABI([]byte(ilp32))
	be.Err(t, err, nil)

	r := NewResolver(abi)
	size, _ := r.Sizeof(r.PointerTo(TyChar))
	be.Equal(t, size, int64(4))
	size, _ = r.Sizeof(TyLong)
	be.Equal(t, size, int64(4))
	align, _ := r.Alignof(TyLongLong)
	be.Equal(t, align, int64(4))
	be.True(t, !r.IsSigned(TyChar))

	st, ok := abi.Typedef("size_t")
	be.True(t, ok)
	be.Equal(t, st, TyUInt)
	// int and long have the same width here, so uint + long is unsigned long.
	be.Equal(t, r.UsualArith(TyUInt, TyLong), TyULong)
}

func TestParseABI_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"Bad YAML", "name: [", "abi:"},
		{"No Pointer", "name: x\ntypes: {}\n", "invalid layout for pointer"},
		{"Missing Type", "name: x\npointer: {size: 8, align: 8}\ntypes: {bool: {size: 1, align: 1}}\n", `missing layout for "char"`},
		{"Bad Align", "name: x\npointer: {size: 8, align: 3}\n", "invalid layout for pointer"},
		{"Unknown Typedef Type", ilp32 + "  foo_t: quad\n", `unknown type "quad"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseABI([]byte(tt.data))
			be.Err(t, err, tt.want)
		})
	}
}

func TestLoadABI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ilp32.yaml")
	be.Err(t, os.WriteFile(path, []byte(ilp32), 0o644), nil)
	abi, err := LoadABI(path)
	be.Err(t, err, nil)
	be.Equal(t, abi.Name, "ilp32")

	_, err = LoadABI(filepath.Join(t.TempDir(), "missing.yaml"))
	be.Err(t, err)
}
