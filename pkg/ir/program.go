package ir

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// Storage says where a symbol lives at run time.
type Storage uint8

const (
	StorageGlobal Storage = iota // static storage duration
	StorageLocal                 // automatic object
	StorageParam                 // function parameter
	StorageTemp                  // synthetic temporary introduced by lowering
	StorageFunc                  // function
)

func (s Storage) String() string {
	switch s {
	case StorageGlobal:
		return "global"
	case StorageLocal:
		return "local"
	case StorageParam:
		return "param"
	case StorageTemp:
		return "temp"
	case StorageFunc:
		return "func"
	}
	return fmt.Sprintf("Storage(%d)", int(s))
}

// Symbol is the IR view of a named (or synthetic) object.
type Symbol struct {
	Name     string
	Size     int64
	Align    int64
	Storage  Storage
	External bool // visible to other translation units
}

// StringConst is the encoded contents of a string literal, terminator
// included.
type StringConst struct {
	Data     []byte
	ElemSize int
}

// Init is one scalar in a global's initializer. Offset is in bytes from
// the start of the object. Value is an Imm, FImm, String, or Sym operand;
// String and Sym mean "address of", displaced by Addend bytes.
type Init struct {
	Offset int64
	Size   int64
	Value  Operand
	Addend int64
}

// Global is an object with static storage duration.
type Global struct {
	Sym  int
	Init []Init // empty means zero-initialised
}

// Program is the lowered form of one translation unit. Triples can only
// be appended and read front to back.
type Program struct {
	Symbols []Symbol
	Strings []StringConst
	Globals []Global

	code   []Triple
	labels int
}

// Append adds t and returns the index under which its result can be
// referenced.
func (p *Program) Append(t Triple) int {
	p.code = append(p.code, t)
	return len(p.code) - 1
}

// Len reports the number of triples.
func (p *Program) Len() int { return len(p.code) }

// NewLabel allocates a fresh label ID.
func (p *Program) NewLabel() Operand {
	l := LabelRef(p.labels)
	p.labels++
	return l
}

// AddSymbol registers a symbol and returns its operand.
func (p *Program) AddSymbol(s Symbol) Operand {
	p.Symbols = append(p.Symbols, s)
	return SymRef(len(p.Symbols) - 1)
}

// AddString registers a string constant and returns its operand.
func (p *Program) AddString(s StringConst) Operand {
	p.Strings = append(p.Strings, s)
	return StringRef(len(p.Strings) - 1)
}

// Iter returns a forward-only iterator positioned before the first triple.
func (p *Program) Iter() *Iterator { return &Iterator{code: p.code, pos: -1} }

// All yields (index, triple) pairs in program order.
func (p *Program) All() iter.Seq2[int, Triple] {
	return func(yield func(int, Triple) bool) {
		for i, t := range p.code {
			if !yield(i, t) {
				return
			}
		}
	}
}

// Iterator walks a program's triples once, front to back.
type Iterator struct {
	code []Triple
	pos  int
}

// Next advances the iterator and reports whether a triple is available.
func (it *Iterator) Next() bool {
	if it.pos < len(it.code) {
		it.pos++
	}
	return it.pos < len(it.code)
}

// Triple returns the current triple.
func (it *Iterator) Triple() Triple { return it.code[it.pos] }

// Index returns the position of the current triple.
func (it *Iterator) Index() int { return it.pos }

// OperandText renders o, resolving symbol IDs to their names.
func (p *Program) OperandText(o Operand) string {
	if o.Kind == Sym && o.ID >= 0 && o.ID < len(p.Symbols) {
		return p.Symbols[o.ID].Name
	}
	return o.Text()
}

// Format renders t in the numeric trace form with
// symbol names resolved.
func (p *Program) Format(t Triple) string {
	return fmt.Sprintf("op = %d arg1 = %s arg2 = %s", int(t.Op), p.OperandText(t.Arg1), p.OperandText(t.Arg2))
}

// Dump writes a readable listing: symbols, globals, strings, then code.
func (p *Program) Dump(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("; symbols\n")
	for i, s := range p.Symbols {
		ext := ""
		if s.External {
			ext = " extern"
		}
		fmt.Fprintf(&sb, ";   $%d %-16s %-6s size=%d align=%d%s\n", i, s.Name, s.Storage, s.Size, s.Align, ext)
	}
	if len(p.Strings) > 0 {
		sb.WriteString("; strings\n")
		for i, s := range p.Strings {
			fmt.Fprintf(&sb, ";   S%d elem=%d % x\n", i, s.ElemSize, s.Data)
		}
	}
	if len(p.Globals) > 0 {
		sb.WriteString("; globals\n")
		for _, g := range p.Globals {
			fmt.Fprintf(&sb, ";   %s", p.Symbols[g.Sym].Name)
			for _, in := range g.Init {
				fmt.Fprintf(&sb, " [%d:%d]=%s", in.Offset, in.Size, p.OperandText(in.Value))
				if in.Addend != 0 {
					fmt.Fprintf(&sb, "%+d", in.Addend)
				}
			}
			sb.WriteByte('\n')
		}
	}
	for i, t := range p.code {
		sb.WriteString(p.Line(i, t))
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Line renders one triple of the listing.
func (p *Program) Line(i int, t Triple) string {
	switch t.Op {
	case OpLabel:
		return p.OperandText(t.Arg1) + ":"
	case OpFunc:
		return "\nfunc " + p.OperandText(t.Arg1)
	}
	s := fmt.Sprintf("  t%-4d %-8s %s", i, t.Op, p.OperandText(t.Arg1))
	if !t.Arg2.IsNone() {
		s += ", " + p.OperandText(t.Arg2)
	}
	return s
}
