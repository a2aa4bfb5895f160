package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable / function / typedef name
	INTEGER    // integer constant, suffix included
	FLOATING   // floating constant, suffix included
	CHARACTER  // character constant 'x' (raw text is queued)
	STRING     // string literal "..." (raw text is queued)

	// Keywords
	AUTO
	BOOL // bool, _Bool
	BREAK
	CASE
	CHAR
	CONST
	CONTINUE
	DEFAULT
	DO
	DOUBLE
	ELSE
	ENUM
	EXTERN
	FALSE
	FLOAT
	FOR
	GOTO
	IF
	INLINE
	INT
	LONG
	NORETURN
	NULLPTR
	REGISTER
	RESTRICT
	RETURN
	SHORT
	SIGNED
	SIZEOF
	STATIC
	STRUCT
	SWITCH
	TRUE
	TYPEDEF
	UNION
	UNSIGNED
	VOID
	VOLATILE
	WHILE
	ALIGNAS       // alignas, _Alignas
	ALIGNOF       // alignof, _Alignof
	STATIC_ASSERT // static_assert, _Static_assert
	TYPEOF        // typeof, __typeof__
	TYPEOF_UNQUAL // typeof_unqual, __typeof_unqual__
	ATTRIBUTE     // __attribute__
	EXTENSION     // __extension__
	ASM           // __asm__

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT       // .
	ARROW     // ->
	ELLIPSIS  // ...
	SEMICOLON // ;
	COMMA     // ,
	COLON     // :
	QUESTION  // ?

	// Arithmetic operators
	PLUS        // +
	MINUS       // -
	STAR        // *
	SLASH       // /
	PERCENT     // %
	AND         // & (binary bitwise AND, or unary address-of)
	PIPE        // |
	CARET       // ^
	TILDE       // ~
	NOT         // !
	SHL_OP      // <<
	SHR_OP      // >>
	AND_LOGICAL // &&
	OR_LOGICAL  // ||
	PLUS_PLUS   // ++
	MINUS_MINUS // --

	// Assignment
	ASSIGN         // =
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	AND_ASSIGN     // &=
	OR_ASSIGN      // |=
	XOR_ASSIGN     // ^=
	SHL_ASSIGN     // <<=
	SHR_ASSIGN     // >>=

	// Comparison
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
)

var tokenNames = [...]string{
	EOF:            "EOF",
	IDENTIFIER:     "IDENTIFIER",
	INTEGER:        "INTEGER",
	FLOATING:       "FLOATING",
	CHARACTER:      "CHARACTER",
	STRING:         "STRING",
	AUTO:           "AUTO",
	BOOL:           "BOOL",
	BREAK:          "BREAK",
	CASE:           "CASE",
	CHAR:           "CHAR",
	CONST:          "CONST",
	CONTINUE:       "CONTINUE",
	DEFAULT:        "DEFAULT",
	DO:             "DO",
	DOUBLE:         "DOUBLE",
	ELSE:           "ELSE",
	ENUM:           "ENUM",
	EXTERN:         "EXTERN",
	FALSE:          "FALSE",
	FLOAT:          "FLOAT",
	FOR:            "FOR",
	GOTO:           "GOTO",
	IF:             "IF",
	INLINE:         "INLINE",
	INT:            "INT",
	LONG:           "LONG",
	NORETURN:       "NORETURN",
	NULLPTR:        "NULLPTR",
	REGISTER:       "REGISTER",
	RESTRICT:       "RESTRICT",
	RETURN:         "RETURN",
	SHORT:          "SHORT",
	SIGNED:         "SIGNED",
	SIZEOF:         "SIZEOF",
	STATIC:         "STATIC",
	STRUCT:         "STRUCT",
	SWITCH:         "SWITCH",
	TRUE:           "TRUE",
	TYPEDEF:        "TYPEDEF",
	UNION:          "UNION",
	UNSIGNED:       "UNSIGNED",
	VOID:           "VOID",
	VOLATILE:       "VOLATILE",
	WHILE:          "WHILE",
	ALIGNAS:        "ALIGNAS",
	ALIGNOF:        "ALIGNOF",
	STATIC_ASSERT:  "STATIC_ASSERT",
	TYPEOF:         "TYPEOF",
	TYPEOF_UNQUAL:  "TYPEOF_UNQUAL",
	ATTRIBUTE:      "ATTRIBUTE",
	EXTENSION:      "EXTENSION",
	ASM:            "ASM",
	LBRACE:         "LBRACE",
	RBRACE:         "RBRACE",
	LPAREN:         "LPAREN",
	RPAREN:         "RPAREN",
	LBRACKET:       "LBRACKET",
	RBRACKET:       "RBRACKET",
	DOT:            "DOT",
	ARROW:          "ARROW",
	ELLIPSIS:       "ELLIPSIS",
	SEMICOLON:      "SEMICOLON",
	COMMA:          "COMMA",
	COLON:          "COLON",
	QUESTION:       "QUESTION",
	PLUS:           "PLUS",
	MINUS:          "MINUS",
	STAR:           "STAR",
	SLASH:          "SLASH",
	PERCENT:        "PERCENT",
	AND:            "AND",
	PIPE:           "PIPE",
	CARET:          "CARET",
	TILDE:          "TILDE",
	NOT:            "NOT",
	SHL_OP:         "SHL_OP",
	SHR_OP:         "SHR_OP",
	AND_LOGICAL:    "AND_LOGICAL",
	OR_LOGICAL:     "OR_LOGICAL",
	PLUS_PLUS:      "PLUS_PLUS",
	MINUS_MINUS:    "MINUS_MINUS",
	ASSIGN:         "ASSIGN",
	PLUS_ASSIGN:    "PLUS_ASSIGN",
	MINUS_ASSIGN:   "MINUS_ASSIGN",
	STAR_ASSIGN:    "STAR_ASSIGN",
	SLASH_ASSIGN:   "SLASH_ASSIGN",
	PERCENT_ASSIGN: "PERCENT_ASSIGN",
	AND_ASSIGN:     "AND_ASSIGN",
	OR_ASSIGN:      "OR_ASSIGN",
	XOR_ASSIGN:     "XOR_ASSIGN",
	SHL_ASSIGN:     "SHL_ASSIGN",
	SHR_ASSIGN:     "SHR_ASSIGN",
	EQUALS:         "EQUALS",
	NOT_EQ:         "NOT_EQ",
	LESS:           "LESS",
	GREATER:        "GREATER",
	LESS_EQ:        "LESS_EQ",
	GREATER_EQ:     "GREATER_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// isLiteral reports whether tokens of this type carry a literal-queue entry.
func (tt TokenType) isLiteral() bool { return tt == CHARACTER || tt == STRING }

// Prefix is the encoding prefix of a character constant or string literal.
type Prefix uint8

const (
	PrefixNone  Prefix = iota
	PrefixUTF8         // u8
	PrefixUTF16        // u
	PrefixUTF32        // U
	PrefixWide         // L
)

var prefixNames = [...]string{"", "u8", "u", "U", "L"}

func (p Prefix) String() string {
	if int(p) < len(prefixNames) {
		return prefixNames[p]
	}
	return fmt.Sprintf("Prefix(%d)", int(p))
}

// prefixOf maps the identifier text preceding a quote to its Prefix.
func prefixOf(s string) (Prefix, bool) {
	switch s {
	case "u8":
		return PrefixUTF8, true
	case "u":
		return PrefixUTF16, true
	case "U":
		return PrefixUTF32, true
	case "L":
		return PrefixWide, true
	}
	return PrefixNone, false
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Pos    Pos
	Prefix Prefix // CHARACTER and STRING only
}

func (t Token) String() string {
	return fmt.Sprintf("%-13s %-16q  %d:%d", t.Type, t.Lexeme, t.Pos.Line, t.Pos.Col)
}
