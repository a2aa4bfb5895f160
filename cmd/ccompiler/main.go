package main

import (
	"fmt"
	"os"

	"cfront/pkg/compiler"
	"cfront/pkg/source"
)

const testSource = `enum { N = 4 };
int table[N];
int *last = &table[N - 1];

int sum(void) {
	int s = 0;
	for (int i = 0; i < N; i++)
		s += table[i];
	return s;
}
`

func main() {
	name, src := "demo.c", testSource
	if len(os.Args) > 1 {
		f, err := source.NewSet().LoadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		name, src = f.Name, string(f.Data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex. The queue is thrown away; the parser lexes again with its own.
	var q compiler.LiteralQueue
	tokens, err := compiler.Lex(src, &q)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	c := compiler.NewContext(compiler.Options{File: name})
	unit, err := c.Parse(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	fmt.Println("AST")
	for _, d := range unit.Decls {
		fmt.Println(" ", d)
	}
	fmt.Println()
	fmt.Print(c.Symbols())
	fmt.Println()

	// IR
	prog, err := c.Lower(unit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lower error:", err)
		os.Exit(1)
	}

	fmt.Println("IR")
	if err := prog.Dump(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
		os.Exit(1)
	}
}
