package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every *Error unwraps to exactly one of these, so
// callers can test with errors.Is(err, ErrSyntax).
var (
	ErrLexical  = errors.New("lexical error")
	ErrSyntax   = errors.New("syntax error")
	ErrSemantic = errors.New("semantic error")
)

// Pos is a source position. Line and Col are 1-based.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	file := p.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
}

// Error is a positioned user-facing diagnostic. It aborts the current
// translation unit.
type Error struct {
	Kind    error // ErrLexical, ErrSyntax or ErrSemantic
	Pos     Pos
	Msg     string
	Snippet string // offending source line, filled in by the Context
}

func (e *Error) Error() string {
	s := fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	if e.Snippet != "" {
		s += "\n  |> " + e.Snippet
	}
	return s
}

func (e *Error) Unwrap() error { return e.Kind }

func lexErrorf(pos Pos, format string, args ...any) *Error {
	return &Error{Kind: ErrLexical, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func syntaxErrorf(pos Pos, format string, args ...any) *Error {
	return &Error{Kind: ErrSyntax, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func semErrorf(pos Pos, format string, args ...any) *Error {
	return &Error{Kind: ErrSemantic, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// attachSnippet fills in the source line for err if it is an *Error
// positioned in file. Positions remapped by a line marker are left alone.
func attachSnippet(err error, file string, lines []string) error {
	var e *Error
	if !errors.As(err, &e) || e.Snippet != "" || e.Pos.File != file {
		return err
	}
	if idx := e.Pos.Line - 1; idx >= 0 && idx < len(lines) {
		e.Snippet = strings.TrimSpace(lines[idx])
	}
	return err
}
