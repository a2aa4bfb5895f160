package compiler

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"cfront/pkg/diag"
)

//go:embed abi_lp64.yaml
var lp64YAML []byte

// Layout is the size and alignment of a type, in bytes.
type Layout struct {
	Size  int64 `yaml:"size"`
	Align int64 `yaml:"align"`
}

// ABI describes the target's data model: the layout of every arithmetic
// type, the pointer layout, the signedness of plain char and the typedefs
// that the system headers expect to find predeclared.
type ABI struct {
	Name       string            `yaml:"name"`
	CharSigned bool              `yaml:"char_signed"`
	Pointer    Layout            `yaml:"pointer"`
	Types      map[string]Layout `yaml:"types"`
	Typedefs   map[string]string `yaml:"typedefs"`

	layouts  [kindCount]Layout
	typedefs []abiTypedef // sorted by name
}

type abiTypedef struct {
	name string
	kind Kind
}

// kindSpellings maps the type names accepted in ABI files to kinds.
var kindSpellings = map[string]Kind{
	"bool":               KindBool,
	"char":               KindChar,
	"signed char":        KindSChar,
	"unsigned char":      KindUChar,
	"short":              KindShort,
	"unsigned short":     KindUShort,
	"int":                KindInt,
	"unsigned int":       KindUInt,
	"long":               KindLong,
	"unsigned long":      KindULong,
	"long long":          KindLongLong,
	"unsigned long long": KindULongLong,
	"float":              KindFloat,
	"double":             KindDouble,
	"long double":        KindLongDouble,
}

// layoutKeys lists the entries every ABI file must define, and the kinds
// that share each entry's layout.
var layoutKeys = []struct {
	key   string
	kinds []Kind
}{
	{"bool", []Kind{KindBool}},
	{"char", []Kind{KindChar, KindSChar, KindUChar}},
	{"short", []Kind{KindShort, KindUShort}},
	{"int", []Kind{KindInt, KindUInt}},
	{"long", []Kind{KindLong, KindULong}},
	{"long long", []Kind{KindLongLong, KindULongLong}},
	{"float", []Kind{KindFloat}},
	{"double", []Kind{KindDouble}},
	{"long double", []Kind{KindLongDouble}},
}

// ParseABI decodes and validates a YAML ABI description.
func ParseABI(data []byte) (*ABI, error) {
	var a ABI
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("abi: %w", err)
	}
	if err := checkLayout("pointer", a.Pointer); err != nil {
		return nil, err
	}
	a.layouts[KindPointer] = a.Pointer
	a.layouts[KindNullptr] = a.Pointer
	for _, lk := range layoutKeys {
		l, ok := a.Types[lk.key]
		if !ok {
			return nil, fmt.Errorf("abi %s: missing layout for %q", a.Name, lk.key)
		}
		if err := checkLayout(lk.key, l); err != nil {
			return nil, err
		}
		for _, k := range lk.kinds {
			a.layouts[k] = l
		}
	}
	for name, spelled := range a.Typedefs {
		k, ok := kindSpellings[strings.Join(strings.Fields(spelled), " ")]
		if !ok {
			return nil, fmt.Errorf("abi %s: typedef %s: unknown type %q", a.Name, name, spelled)
		}
		a.typedefs = append(a.typedefs, abiTypedef{name: name, kind: k})
	}
	sort.Slice(a.typedefs, func(i, j int) bool { return a.typedefs[i].name < a.typedefs[j].name })
	return &a, nil
}

func checkLayout(what string, l Layout) error {
	if l.Size <= 0 || l.Align <= 0 || l.Align&(l.Align-1) != 0 {
		return fmt.Errorf("abi: invalid layout for %s: size=%d align=%d", what, l.Size, l.Align)
	}
	return nil
}

// LoadABI reads an ABI description from a file.
func LoadABI(path string) (*ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseABI(data)
}

var defaultABI = sync.OnceValues(func() (*ABI, error) { return ParseABI(lp64YAML) })

// DefaultABI returns the built-in LP64 description.
func DefaultABI() *ABI {
	a, err := defaultABI()
	if err != nil {
		diag.Failf("embedded ABI table: %v", err)
	}
	return a
}

func (a *ABI) layout(k Kind) Layout { return a.layouts[k] }

// Typedef returns the type the ABI gives a predeclared typedef name.
func (a *ABI) Typedef(name string) (*Type, bool) {
	i := sort.Search(len(a.typedefs), func(i int) bool { return a.typedefs[i].name >= name })
	if i < len(a.typedefs) && a.typedefs[i].name == name {
		return basicType(a.typedefs[i].kind), true
	}
	return nil, false
}

// typedefOr is Typedef with a fallback for ABI files that omit name.
func (a *ABI) typedefOr(name string, def *Type) *Type {
	if t, ok := a.Typedef(name); ok {
		return t
	}
	return def
}
