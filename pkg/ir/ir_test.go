package ir

import (
	"strings"
	"testing"
)

func TestTriple_String(t *testing.T) {
	tests := []struct {
		tr   Triple
		want string
	}{
		{Triple{Op: OpAdd, Arg1: TempRef(3), Arg2: Const(1)}, "op = 3 arg1 = t3 arg2 = 1"},
		{Triple{Op: OpJmp, Arg1: LabelRef(2)}, "op = 28 arg1 = L2 arg2 = "},
		{Triple{Op: OpAssign, Arg1: SymRef(0), Arg2: StringRef(1)}, "op = 1 arg1 = $0 arg2 = S1"},
		{Triple{Op: OpAssign, Arg1: SymRef(0), Arg2: FloatConst(1.5)}, "op = 1 arg1 = $0 arg2 = 1.5"},
	}
	for _, tt := range tests {
		if got := tt.tr.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestOp_String(t *testing.T) {
	for op := OpNop; op <= OpRet; op++ {
		if strings.HasPrefix(op.String(), "Op(") {
			t.Errorf("op %d has no name", int(op))
		}
	}
	if got := Op(999).String(); got != "Op(999)" {
		t.Errorf("Op(999).String() = %q", got)
	}
	if OpLabel.String() != "label" || OpJmpTrue.String() != "jmptrue" || OpJmpFalse.String() != "jmpfalse" {
		t.Error("control op names changed")
	}
}

func TestProgram_AppendAndIterate(t *testing.T) {
	var p Program
	x := p.AddSymbol(Symbol{Name: "x", Size: 4, Align: 4, Storage: StorageLocal})
	i0 := p.Append(Triple{Op: OpAdd, Arg1: x, Arg2: Const(1)})
	i1 := p.Append(Triple{Op: OpAssign, Arg1: x, Arg2: TempRef(i0)})
	if i0 != 0 || i1 != 1 || p.Len() != 2 {
		t.Fatalf("indices = %d,%d len=%d", i0, i1, p.Len())
	}

	it := p.Iter()
	var ops []Op
	for it.Next() {
		ops = append(ops, it.Triple().Op)
	}
	if len(ops) != 2 || ops[0] != OpAdd || ops[1] != OpAssign {
		t.Errorf("iterated ops = %v", ops)
	}
	if it.Next() {
		t.Error("iterator restarted after exhaustion")
	}

	n := 0
	for i, tr := range p.All() {
		if i == 0 && tr.Op != OpAdd {
			t.Errorf("All()[0] = %v", tr)
		}
		n++
	}
	if n != 2 {
		t.Errorf("All yielded %d", n)
	}

	if got := p.Format(p.code[1]); got != "op = 1 arg1 = x arg2 = t0" {
		t.Errorf("Format = %q", got)
	}
}

func TestProgram_Labels(t *testing.T) {
	var p Program
	a, b := p.NewLabel(), p.NewLabel()
	if a.ID == b.ID || a.Kind != Label {
		t.Fatalf("labels not distinct: %v %v", a, b)
	}
}

func TestProgram_Dump(t *testing.T) {
	var p Program
	f := p.AddSymbol(Symbol{Name: "main", Storage: StorageFunc, External: true})
	g := p.AddSymbol(Symbol{Name: "g", Size: 4, Align: 4, Storage: StorageGlobal})
	s := p.AddString(StringConst{Data: []byte("hi\x00"), ElemSize: 1})
	p.Globals = append(p.Globals, Global{Sym: g.ID, Init: []Init{{Size: 4, Value: Const(7)}}})
	p.Append(Triple{Op: OpFunc, Arg1: f})
	p.Append(Triple{Op: OpAssign, Arg1: g, Arg2: Const(1)})
	p.Append(Triple{Op: OpLabel, Arg1: p.NewLabel()})
	p.Append(Triple{Op: OpRet, Arg1: s})

	var sb strings.Builder
	if err := p.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{"func main", "assign   g, 1", "L0:", "ret      S0", "g [0:4]=7", "S0 elem=1 68 69 00", "extern"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestOperand_Text(t *testing.T) {
	tests := []struct {
		op   Operand
		want string
	}{
		{Operand{}, ""},
		{TypeRef(ClassInt, 4), "i4"},
		{TypeRef(ClassUint, 1), "u1"},
		{TypeRef(ClassFloat, 8), "f8"},
		{TypeRef(ClassPtr, 8), "p8"},
		{TypeRef(9, 8), "?"},
		{Const(-3), "-3"},
		{FloatConst(0.25), "0.25"},
	}
	for _, tt := range tests {
		if got := tt.op.Text(); got != tt.want {
			t.Errorf("Text() = %q, want %q", got, tt.want)
		}
	}
	if !(Operand{}).IsNone() || Const(0).IsNone() {
		t.Error("IsNone confuses the empty operand with a zero constant")
	}
}

func TestProgram_DumpAddressInit(t *testing.T) {
	var p Program
	arr := p.AddSymbol(Symbol{Name: "arr", Size: 16, Align: 4, Storage: StorageGlobal, External: true})
	ptr := p.AddSymbol(Symbol{Name: "ptr", Size: 8, Align: 8, Storage: StorageGlobal})
	back := p.AddSymbol(Symbol{Name: "back", Size: 8, Align: 8, Storage: StorageGlobal})
	p.Globals = append(p.Globals,
		Global{Sym: arr.ID},
		Global{Sym: ptr.ID, Init: []Init{{Size: 8, Value: arr, Addend: 8}}},
		Global{Sym: back.ID, Init: []Init{{Size: 8, Value: arr, Addend: -4}}},
	)

	var sb strings.Builder
	if err := p.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{";   arr\n", ";   ptr [0:8]=arr+8\n", ";   back [0:8]=arr-4\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "; strings") {
		t.Error("empty string table was printed")
	}
}

func TestIterator_Index(t *testing.T) {
	var p Program
	for range 3 {
		p.Append(Triple{Op: OpNop})
	}
	it := p.Iter()
	want := 0
	for it.Next() {
		if it.Index() != want {
			t.Errorf("Index() = %d, want %d", it.Index(), want)
		}
		want++
	}
	if want != 3 {
		t.Errorf("visited %d triples", want)
	}
}

func TestStorage_String(t *testing.T) {
	names := map[Storage]string{
		StorageGlobal: "global",
		StorageLocal:  "local",
		StorageParam:  "param",
		StorageTemp:   "temp",
		StorageFunc:   "func",
		Storage(42):   "Storage(42)",
	}
	for s, want := range names {
		if got := s.String(); got != want {
			t.Errorf("Storage(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
