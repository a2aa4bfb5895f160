package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nalgeon/be"
	"gopkg.in/yaml.v3"
)

type compileCase struct {
	Name  string   `yaml:"name"`
	Input string   `yaml:"input"`
	IR    []string `yaml:"ir"`
	Kind  string   `yaml:"kind"`
	Error string   `yaml:"error"`
	Line  int      `yaml:"line"`
}

var errorKinds = map[string]error{
	"lexical":  ErrLexical,
	"syntax":   ErrSyntax,
	"semantic": ErrSemantic,
}

func TestCompileYAML(t *testing.T) {
	data, err := os.ReadFile("testdata/compile.yaml")
	if err != nil {
		t.Fatalf("failed to read compile.yaml: %v", err)
	}
	var file struct {
		Tests []compileCase `yaml:"tests"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		t.Fatalf("failed to parse compile.yaml: %v", err)
	}
	be.True(t, len(file.Tests) > 0)

	for _, tc := range file.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			_, prog, err := Compile(tc.Input, Options{File: "case.c"})
			if tc.Error != "" {
				be.Err(t, err, tc.Error)
				be.True(t, errors.Is(err, errorKinds[tc.Kind]))
				var ce *Error
				be.True(t, errors.As(err, &ce))
				be.Equal(t, ce.Pos.Line, tc.Line)
				be.Equal(t, ce.Pos.File, "case.c")
				return
			}
			be.Err(t, err, nil)
			lines := strings.Split(listing(prog), "\n")
			next := 0
			for _, want := range tc.IR {
				for next < len(lines) && lines[next] != want {
					next++
				}
				if next == len(lines) {
					t.Fatalf("listing lacks %q in order\n%s", want, listing(prog))
				}
				next++
			}
		})
	}
}

func TestCompile_LanguageFiles(t *testing.T) {
	files, err := filepath.Glob("testdata/lang/*.c")
	if err != nil {
		t.Fatal(err)
	}
	be.True(t, len(files) > 0)
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			src, err := os.ReadFile(path)
			be.Err(t, err, nil)
			u, prog, err := Compile(string(src), Options{File: path})
			be.Err(t, err, nil)
			be.True(t, len(u.Decls) > 0)
			be.True(t, prog.Len() > 0)

			var sb strings.Builder
			be.Err(t, prog.Dump(&sb), nil)
			be.True(t, strings.HasPrefix(sb.String(), "; symbols\n"))
		})
	}
}

func TestCompile_Snippet(t *testing.T) {
	src := "int main(void) {\n  return y;\n}\n"
	_, _, err := Compile(src, Options{File: "snip.c"})
	var ce *Error
	be.True(t, errors.As(err, &ce))
	be.Equal(t, ce.Snippet, "return y;")
	be.Err(t, err, "snip.c:2:10: semantic error: use of undeclared identifier 'y'\n  |> return y;")
}

func TestCompile_SnippetSkipsRemappedPositions(t *testing.T) {
	src := "# 10 \"header.h\"\nint f(void) { return q; }\n"
	_, _, err := Compile(src, Options{File: "main.i"})
	var ce *Error
	be.True(t, errors.As(err, &ce))
	be.Equal(t, ce.Pos.File, "header.h")
	be.Equal(t, ce.Pos.Line, 10)
	be.Equal(t, ce.Snippet, "")
}

func TestCompile_NoFileName(t *testing.T) {
	_, _, err := Compile("int x = ;", Options{})
	be.Err(t, err, "<input>:1:9: syntax error")
}

func TestContext_ParseThenLower(t *testing.T) {
	c := NewContext(Options{File: "two.c"})
	u, err := c.Parse("int g; int f(void) { return g; }")
	be.Err(t, err, nil)

	g, ok := c.Symbols().Lookup("g")
	be.True(t, ok)
	be.Equal(t, g.Type.Kind, KindInt)
	be.Equal(t, g.Linkage, LinkExternal)

	prog, err := c.Lower(u)
	be.Err(t, err, nil)
	be.Equal(t, len(prog.Globals), 1)
}

// Contexts share no state, so units can be compiled in parallel.
func TestCompile_Concurrent(t *testing.T) {
	srcs := []string{
		"int a(void) { return 1; }",
		"enum { K = 3 }; int b(void) { return K; }",
		"static int c; int d(void) { return c++; }",
		"char *e(char *p) { return p + 2; }",
	}
	var wg sync.WaitGroup
	out := make([]string, len(srcs))
	errs := make([]error, len(srcs))
	for i, src := range srcs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, prog, err := Compile(src, Options{})
			errs[i] = err
			if err == nil {
				out[i] = listing(prog)
			}
		}()
	}
	wg.Wait()
	for i, src := range srcs {
		be.Err(t, errs[i], nil)
		be.Equal(t, out[i], listing(lower(t, src)))
	}
}
