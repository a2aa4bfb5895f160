package compiler

import (
	"errors"
	"testing"
)

type tokSpec struct {
	Type   TokenType
	Lexeme string
}

func lexAll(t *testing.T, src string) ([]Token, *LiteralQueue) {
	t.Helper()
	var q LiteralQueue
	toks, err := Lex(src, &q)
	if err != nil {
		t.Fatalf("Lex(%q): %v", src, err)
	}
	return toks, &q
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokSpec
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []tokSpec{{EOF, ""}},
		},
		{
			name:  "Punctuators",
			input: "+ - * / & = == != < > ; , { } ( ) <<= ... -> ++ &&",
			expected: []tokSpec{
				{PLUS, "+"}, {MINUS, "-"}, {STAR, "*"}, {SLASH, "/"}, {AND, "&"},
				{ASSIGN, "="}, {EQUALS, "=="}, {NOT_EQ, "!="}, {LESS, "<"}, {GREATER, ">"},
				{SEMICOLON, ";"}, {COMMA, ","}, {LBRACE, "{"}, {RBRACE, "}"},
				{LPAREN, "("}, {RPAREN, ")"}, {SHL_ASSIGN, "<<="}, {ELLIPSIS, "..."},
				{ARROW, "->"}, {PLUS_PLUS, "++"}, {AND_LOGICAL, "&&"}, {EOF, ""},
			},
		},
		{
			name:  "Keywords and Identifiers",
			input: "int _Bool typeof_unqual __restrict variableName _under_score",
			expected: []tokSpec{
				{INT, "int"}, {BOOL, "_Bool"}, {TYPEOF_UNQUAL, "typeof_unqual"},
				{RESTRICT, "__restrict"}, {IDENTIFIER, "variableName"},
				{IDENTIFIER, "_under_score"}, {EOF, ""},
			},
		},
		{
			name:  "Integers",
			input: "123 0 0x1A 0b1010 1'000'000 42ull 017",
			expected: []tokSpec{
				{INTEGER, "123"}, {INTEGER, "0"}, {INTEGER, "0x1A"}, {INTEGER, "0b1010"},
				{INTEGER, "1'000'000"}, {INTEGER, "42ull"}, {INTEGER, "017"}, {EOF, ""},
			},
		},
		{
			name:  "Floats",
			input: "1.5 .25 1e10 2.f 0x1p-3 3.0L",
			expected: []tokSpec{
				{FLOATING, "1.5"}, {FLOATING, ".25"}, {FLOATING, "1e10"}, {FLOATING, "2.f"},
				{FLOATING, "0x1p-3"}, {FLOATING, "3.0L"}, {EOF, ""},
			},
		},
		{
			name:  "Prefixed Literals",
			input: `u8"a" u'b' U"c" L'd' u x`,
			expected: []tokSpec{
				{STRING, `u8"a"`}, {CHARACTER, "u'b'"}, {STRING, `U"c"`}, {CHARACTER, "L'd'"},
				{IDENTIFIER, "u"}, {IDENTIFIER, "x"}, {EOF, ""},
			},
		},
		{
			name:  "Comments",
			input: "a // line\n/* block\n */ b",
			expected: []tokSpec{
				{IDENTIFIER, "a"}, {IDENTIFIER, "b"}, {EOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, _ := lexAll(t, tt.input)
			if len(toks) != len(tt.expected) {
				t.Fatalf("got %d tokens, want %d: %v", len(toks), len(tt.expected), toks)
			}
			for i, want := range tt.expected {
				if toks[i].Type != want.Type || toks[i].Lexeme != want.Lexeme {
					t.Errorf("token %d = %s %q, want %s %q", i, toks[i].Type, toks[i].Lexeme, want.Type, want.Lexeme)
				}
			}
		})
	}
}

func TestLex_Positions(t *testing.T) {
	toks, _ := lexAll(t, "int x;\n  return")
	want := []Pos{{Line: 1, Col: 1}, {Line: 1, Col: 5}, {Line: 1, Col: 6}, {Line: 2, Col: 3}}
	for i, p := range want {
		if toks[i].Pos != p {
			t.Errorf("token %d at %v, want %v", i, toks[i].Pos, p)
		}
	}
}

func TestLex_LineMarkers(t *testing.T) {
	var q LiteralQueue
	l := NewLexer("pre.i", "# 40 \"orig.c\" 1\nint\n#pragma once\nx", &q)
	tok, err := l.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Pos.File != "orig.c" || tok.Pos.Line != 40 {
		t.Errorf("int at %v, want orig.c:40", tok.Pos)
	}
	tok, err = l.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Lexeme != "x" || tok.Pos.Line != 42 {
		t.Errorf("got %q at %v, want x at line 42", tok.Lexeme, tok.Pos)
	}
}

func TestLex_LiteralQueue(t *testing.T) {
	_, q := lexAll(t, `f('a', "one" "two", L'x', u8"z");`)
	want := []string{"'a'", `"one"`, `"two"`, "L'x'", `u8"z"`}
	if q.Len() != len(want) {
		t.Fatalf("queue holds %d entries, want %d", q.Len(), len(want))
	}
	for _, w := range want {
		if got := q.Pop(); got != w {
			t.Errorf("Pop() = %q, want %q", got, w)
		}
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"abc`, "unterminated string literal"},
		{"'a\n'", "unterminated character constant"},
		{"''", "empty character constant"},
		{"12xyz", `invalid suffix "xyz" on integer constant`},
		{"1.5q", `invalid suffix "q" on floating constant`},
		{"0x", "invalid integer constant"},
		{"0x1.8", "requires an exponent"},
		{"/* open", "unterminated block comment"},
		{"#include <stdio.h>", "unexpected preprocessing directive #include"},
		{"@", "unexpected character"},
	}
	for _, tt := range tests {
		var q LiteralQueue
		_, err := Lex(tt.input, &q)
		if err == nil {
			t.Errorf("Lex(%q) succeeded, want error", tt.input)
			continue
		}
		if !errors.Is(err, ErrLexical) {
			t.Errorf("Lex(%q) error %v is not lexical", tt.input, err)
		}
		if !contains(err.Error(), tt.want) {
			t.Errorf("Lex(%q) error = %q, want it to mention %q", tt.input, err, tt.want)
		}
	}
}
