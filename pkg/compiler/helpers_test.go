package compiler

import (
	"strings"
	"testing"

	"cfront/pkg/ir"
)

func contains(s, sub string) bool { return strings.Contains(s, sub) }

// parseUnit parses src with the default ABI and fails the test on error.
func parseUnit(t *testing.T, src string) (*Unit, *Context) {
	t.Helper()
	c := NewContext(Options{File: "test.c"})
	u, err := c.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v\nsource:\n%s", err, src)
	}
	return u, c
}

// parseErr parses src and returns the error it must produce.
func parseErr(t *testing.T, src string) error {
	t.Helper()
	_, err := NewContext(Options{File: "test.c"}).Parse(src)
	if err == nil {
		t.Fatalf("Parse succeeded, want error\nsource:\n%s", src)
	}
	return err
}

// lower parses and lowers src.
func lower(t *testing.T, src string) *ir.Program {
	t.Helper()
	_, prog, err := Compile(src, Options{File: "test.c"})
	if err != nil {
		t.Fatalf("Compile: %v\nsource:\n%s", err, src)
	}
	return prog
}

// lookup finds the file-scope or most recent symbol called name.
func lookup(t *testing.T, u *Unit, name string) *Symbol {
	t.Helper()
	var found *Symbol
	for _, s := range u.Symbols {
		if s.Name == name && !s.Builtin {
			found = s
		}
	}
	if found == nil {
		t.Fatalf("no symbol %q", name)
	}
	return found
}

// listing renders the code part of a program, one triple per line with
// runs of blanks collapsed, without the symbol and global tables.
func listing(p *ir.Program) string {
	var sb strings.Builder
	for i, tr := range p.All() {
		sb.WriteString(strings.Join(strings.Fields(p.Line(i, tr)), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
