package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cfront/pkg/compiler"
	"cfront/pkg/source"

	"golang.org/x/sync/errgroup"
)

// inputs collects repeated -in flags.
type inputs []string

func (in *inputs) String() string     { return strings.Join(*in, ",") }
func (in *inputs) Set(v string) error { *in = append(*in, v); return nil }

func main() {
	var in inputs
	flag.Var(&in, "in", "preprocessed C file to compile (repeatable)")
	dir := flag.String("dir", "", "compile every .c and .i file in this directory")
	outDir := flag.String("out", "", "directory for .ir listings (default: stdout)")
	abiPath := flag.String("abi", "", "YAML ABI description (default: built-in LP64)")
	jobs := flag.Int("j", runtime.NumCPU(), "translation units compiled in parallel")
	trace := flag.Bool("trace", false, "log every triple as it is emitted")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("cfront: ")

	if len(in) == 0 && *dir == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in <file> or -dir <directory>")
		flag.Usage()
		os.Exit(2)
	}

	set := source.NewSet()
	for _, path := range in {
		if _, err := set.LoadFile(path); err != nil {
			log.Fatalf("failed to read input file %q: %v", path, err)
		}
	}
	if *dir != "" {
		if _, err := set.LoadDir(*dir); err != nil {
			log.Fatalf("failed to read directory %q: %v", *dir, err)
		}
	}

	abi := compiler.DefaultABI()
	if *abiPath != "" {
		var err error
		if abi, err = compiler.LoadABI(*abiPath); err != nil {
			log.Fatalf("failed to load ABI %q: %v", *abiPath, err)
		}
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatalf("failed to create output directory: %v", err)
		}
	}

	names := set.List()
	listings := make([][]byte, len(names))

	var g errgroup.Group
	g.SetLimit(max(*jobs, 1))
	for i, name := range names {
		g.Go(func() error {
			data, err := set.Read(name)
			if err != nil {
				return err
			}
			opts := compiler.Options{File: name, ABI: abi}
			if *trace {
				opts.Trace = log.New(os.Stderr, name+": ", 0)
			}
			_, prog, err := compiler.Compile(string(data), opts)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := prog.Dump(&buf); err != nil {
				return err
			}
			listings[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("compilation failed: %v", err)
	}

	for i, name := range names {
		if *outDir == "" {
			fmt.Printf("; %s\n", name)
			os.Stdout.Write(listings[i])
			continue
		}
		path := filepath.Join(*outDir, strings.TrimSuffix(name, filepath.Ext(name))+".ir")
		if err := os.WriteFile(path, listings[i], 0o644); err != nil {
			log.Fatalf("failed to write %q: %v", path, err)
		}
		log.Printf("%s -> %s (%d bytes)", name, path, len(listings[i]))
	}
}
