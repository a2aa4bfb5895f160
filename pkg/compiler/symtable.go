package compiler

import (
	"fmt"
	"sort"
	"strings"

	"cfront/pkg/diag"
)

// Linkage says whether declarations in different scopes name one entity.
type Linkage uint8

const (
	LinkNone Linkage = iota
	LinkInternal
	LinkExternal
)

func (l Linkage) String() string {
	switch l {
	case LinkInternal:
		return "internal"
	case LinkExternal:
		return "external"
	}
	return "none"
}

// StorageClass is the storage-class specifier written on a declaration.
type StorageClass uint8

const (
	SCNone StorageClass = iota
	SCAuto
	SCRegister
	SCStatic
	SCExtern
	SCTypedef
)

var storageNames = [...]string{"", "auto", "register", "static", "extern", "typedef"}

func (sc StorageClass) String() string { return storageNames[sc] }

// SymbolKind separates the entities that share the ordinary identifier
// namespace.
type SymbolKind uint8

const (
	SymObject SymbolKind = iota
	SymFunc
	SymTypedef
	SymEnumConst
)

var symbolKindNames = [...]string{"object", "function", "typedef", "enumerator"}

func (k SymbolKind) String() string { return symbolKindNames[k] }

// Symbol is one declared entity. Every scope that can see the entity binds
// the same *Symbol, so identity comparison answers "same entity?".
type Symbol struct {
	ID      int
	Name    string
	Kind    SymbolKind
	Type    *Type
	Linkage Linkage
	Storage StorageClass // as written on the first declaration
	Depth   int          // scope depth of the first declaration, 0 = file scope
	Value   Value        // enumerators only
	Align   int64        // explicit _Alignas, 0 if none
	Defined bool         // function body or initializer seen
	Param   bool
	Builtin bool // predeclared from the ABI table
	Pos     Pos
}

// StaticDuration reports whether an object lives for the whole program.
func (s *Symbol) StaticDuration() bool {
	return s.Kind == SymObject && (s.Linkage != LinkNone || s.Storage == SCStatic)
}

// DeclInfo describes one declaration handed to Declare.
type DeclInfo struct {
	Name    string
	Kind    SymbolKind
	Type    *Type
	Storage StorageClass
	Defines bool // this declaration is a definition with a body or initializer
	Value   Value
	Pos     Pos
}

type scope struct {
	names map[string]*Symbol
	tags  map[string]*Type
}

func newScope() *scope {
	return &scope{names: make(map[string]*Symbol), tags: make(map[string]*Type)}
}

// SymbolTable tracks identifier bindings across nested scopes. Index 0 of
// the scope stack is file scope. Entities with linkage are also recorded
// in a per-unit registry so that a block-scope extern finds the entity
// even when an intermediate declaration hides it.
type SymbolTable struct {
	scopes  []*scope
	linked  map[string]*Symbol
	symbols []*Symbol
}

// NewSymbolTable returns a table positioned at file scope.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		scopes: []*scope{newScope()},
		linked: make(map[string]*Symbol),
	}
}

// Depth returns the current scope depth; 0 is file scope.
func (s *SymbolTable) Depth() int { return len(s.scopes) - 1 }

// EnterScope opens a nested scope and returns the function that closes it.
// Callers defer the closer so the scope is left on every path.
func (s *SymbolTable) EnterScope() func() {
	s.scopes = append(s.scopes, newScope())
	depth := len(s.scopes)
	return func() {
		diag.Assert(len(s.scopes) == depth, "scopes closed in LIFO order")
		s.ExitScope()
	}
}

// ExitScope closes the innermost scope.
func (s *SymbolTable) ExitScope() {
	diag.Assert(len(s.scopes) > 1, "file scope is never closed")
	s.scopes = s.scopes[:len(s.scopes)-1]
}

func (s *SymbolTable) current() *scope { return s.scopes[len(s.scopes)-1] }

// Lookup searches innermost to outermost.
func (s *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if sym, ok := s.scopes[i].names[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// IsTypedefName reports whether name currently denotes a typedef.
func (s *SymbolTable) IsTypedefName(name string) bool {
	sym, ok := s.Lookup(name)
	return ok && sym.Kind == SymTypedef
}

// LookupTag finds an enum tag, innermost first.
func (s *SymbolTable) LookupTag(name string) (*Type, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if t, ok := s.scopes[i].tags[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// LookupTagLocal finds an enum tag declared in the current scope only.
func (s *SymbolTable) LookupTagLocal(name string) (*Type, bool) {
	t, ok := s.current().tags[name]
	return t, ok
}

// DeclareTag binds a tag in the current scope.
func (s *SymbolTable) DeclareTag(name string, t *Type) {
	diag.Assert(name != "", "tag has a name")
	s.current().tags[name] = t
}

// All returns every symbol ever created, in declaration order.
func (s *SymbolTable) All() []*Symbol { return s.symbols }

func (s *SymbolTable) newSymbol(d DeclInfo, link Linkage) *Symbol {
	sym := &Symbol{
		ID:      len(s.symbols),
		Name:    d.Name,
		Kind:    d.Kind,
		Type:    d.Type,
		Linkage: link,
		Storage: d.Storage,
		Depth:   s.Depth(),
		Value:   d.Value,
		Defined: d.Defines,
		Pos:     d.Pos,
	}
	s.symbols = append(s.symbols, sym)
	return sym
}

// Declare binds d.Name in the current scope and returns the entity it
// denotes, which is an existing symbol when the declaration redeclares an
// entity with linkage.
func (s *SymbolTable) Declare(d DeclInfo) (*Symbol, error) {
	cur := s.current()
	prev, inScope := cur.names[d.Name]

	if d.Kind == SymTypedef || d.Kind == SymEnumConst {
		if inScope {
			if d.Kind == SymTypedef && prev.Kind == SymTypedef {
				if Identical(prev.Type, d.Type) {
					return prev, nil
				}
				if prev.Builtin {
					return nil, semErrorf(d.Pos, "conflicting types for '%s': the target ABI defines it as '%s', not '%s'", d.Name, prev.Type, d.Type)
				}
				return nil, semErrorf(d.Pos, "conflicting types for typedef '%s' ('%s' vs '%s')", d.Name, d.Type, prev.Type)
			}
			return nil, s.redeclared(d, prev)
		}
		sym := s.newSymbol(d, LinkNone)
		cur.names[d.Name] = sym
		return sym, nil
	}

	link, err := s.linkageOf(d)
	if err != nil {
		return nil, err
	}

	if inScope {
		if prev.Kind != d.Kind {
			return nil, s.redeclared(d, prev)
		}
		if prev.Linkage == LinkNone || link == LinkNone {
			return nil, semErrorf(d.Pos, "redefinition of '%s'", d.Name)
		}
		if prev.Linkage != link {
			if link == LinkExternal {
				return nil, semErrorf(d.Pos, "non-static declaration of '%s' follows static declaration", d.Name)
			}
			return nil, semErrorf(d.Pos, "static declaration of '%s' follows non-static declaration", d.Name)
		}
		return s.merge(prev, d)
	}

	if link != LinkNone {
		if ent, ok := s.linked[d.Name]; ok {
			if ent.Kind != d.Kind {
				return nil, s.redeclared(d, ent)
			}
			if ent.Linkage != link {
				return nil, semErrorf(d.Pos, "'%s' declared with %s linkage after a declaration with %s linkage", d.Name, link, ent.Linkage)
			}
			sym, err := s.merge(ent, d)
			if err != nil {
				return nil, err
			}
			cur.names[d.Name] = sym
			return sym, nil
		}
	}

	sym := s.newSymbol(d, link)
	cur.names[d.Name] = sym
	if link != LinkNone {
		s.linked[d.Name] = sym
	}
	return sym, nil
}

// linkageOf computes the linkage a declaration gets.
func (s *SymbolTable) linkageOf(d DeclInfo) (Linkage, error) {
	fileScope := s.Depth() == 0
	switch {
	case d.Storage == SCStatic && d.Kind == SymFunc && !fileScope:
		return 0, semErrorf(d.Pos, "invalid storage class for function '%s'", d.Name)
	case d.Storage == SCStatic && fileScope:
		return LinkInternal, nil
	case d.Storage == SCExtern, d.Kind == SymFunc && d.Storage == SCNone:
		// A visible declaration with linkage decides.
		if prev, ok := s.Lookup(d.Name); ok && prev.Linkage != LinkNone {
			return prev.Linkage, nil
		}
		return LinkExternal, nil
	case fileScope:
		if d.Storage == SCAuto || d.Storage == SCRegister {
			return 0, semErrorf(d.Pos, "file-scope declaration of '%s' specifies '%s'", d.Name, d.Storage)
		}
		return LinkExternal, nil
	}
	return LinkNone, nil
}

// merge folds a redeclaration of an entity with linkage into sym.
func (s *SymbolTable) merge(sym *Symbol, d DeclInfo) (*Symbol, error) {
	if !Compatible(sym.Type, d.Type) {
		return nil, semErrorf(d.Pos, "conflicting types for '%s' ('%s' vs '%s')", d.Name, d.Type, sym.Type)
	}
	if d.Defines && sym.Defined {
		return nil, semErrorf(d.Pos, "redefinition of '%s'", d.Name)
	}
	// A later declaration may complete an array of unknown length.
	if sym.Type.Kind == KindArray && sym.Type.Len < 0 && d.Type.Len >= 0 {
		sym.Type = d.Type
	}
	sym.Defined = sym.Defined || d.Defines
	if sym.Storage == SCExtern && d.Storage != SCExtern && d.Kind == SymObject {
		// "extern int x; int x;" makes x a (tentative) definition.
		sym.Storage = d.Storage
	}
	return sym, nil
}

func (s *SymbolTable) redeclared(d DeclInfo, prev *Symbol) error {
	if prev.Kind != d.Kind {
		return semErrorf(d.Pos, "'%s' redeclared as a different kind of symbol (previously a %s)", d.Name, prev.Kind)
	}
	return semErrorf(d.Pos, "redefinition of '%s'", d.Name)
}

// String returns a deterministically ordered dump of the visible scopes.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	for i, sc := range s.scopes {
		if i == 0 {
			sb.WriteString("File scope:\n")
		} else {
			fmt.Fprintf(&sb, "Scope %d:\n", i)
		}
		names := make([]string, 0, len(sc.names))
		for name := range sc.names {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sym := sc.names[name]
			if sym.Builtin {
				continue
			}
			fmt.Fprintf(&sb, "  %-20s  %-10s %-8s linkage=%s type=%s", name, sym.Kind, sym.Storage, sym.Linkage, sym.Type)
			if sym.Kind == SymEnumConst {
				fmt.Fprintf(&sb, " value=%s", sym.Value)
			}
			sb.WriteByte('\n')
		}
		tags := make([]string, 0, len(sc.tags))
		for tag := range sc.tags {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			t := sc.tags[tag]
			fmt.Fprintf(&sb, "  enum %-15s  underlying=%s complete=%v\n", tag, t.Enum.Underlying, t.Enum.Complete)
		}
	}
	return sb.String()
}
