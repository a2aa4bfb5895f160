package compiler

import (
	"fmt"
	"log"
	"strings"

	"cfront/pkg/ir"
)

// Options configures one compilation.
type Options struct {
	File  string      // name used in positions; may be empty
	ABI   *ABI        // nil means DefaultABI
	Trace *log.Logger // receives every triple as it is appended
}

// Context owns the state of one translation unit: its literal queue,
// symbol table and resolver. Contexts share nothing, so separate units can
// be compiled on separate goroutines.
type Context struct {
	opts  Options
	queue LiteralQueue
	syms  *SymbolTable
	res   *Resolver
	lines []string
}

// NewContext returns a fresh context.
func NewContext(opts Options) *Context {
	if opts.ABI == nil {
		opts.ABI = DefaultABI()
	}
	return &Context{
		opts: opts,
		syms: NewSymbolTable(),
		res:  NewResolver(opts.ABI),
	}
}

// Resolver returns the type resolver of the unit.
func (c *Context) Resolver() *Resolver { return c.res }

// Symbols returns the symbol table of the unit.
func (c *Context) Symbols() *SymbolTable { return c.syms }

// Parse lexes and parses src.
func (c *Context) Parse(src string) (*Unit, error) {
	c.lines = strings.Split(src, "\n")
	lex := NewLexer(c.opts.File, src, &c.queue)
	u, err := NewParser(lex, &c.queue, c.syms, c.res).ParseUnit()
	if err != nil {
		return nil, c.withSource(err)
	}
	return u, nil
}

// Lower builds the IR for a unit parsed by c.
func (c *Context) Lower(u *Unit) (*ir.Program, error) {
	prog, err := Lower(u, c.res, c.opts.Trace)
	if err != nil {
		return nil, c.withSource(err)
	}
	return prog, nil
}

func (c *Context) withSource(err error) error {
	return attachSnippet(err, c.opts.File, c.lines)
}

// Compile runs the whole pipeline over one preprocessed translation unit.
func Compile(src string, opts Options) (*Unit, *ir.Program, error) {
	c := NewContext(opts)
	u, err := c.Parse(src)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	prog, err := c.Lower(u)
	if err != nil {
		return u, nil, fmt.Errorf("lower: %w", err)
	}
	return u, prog, nil
}
