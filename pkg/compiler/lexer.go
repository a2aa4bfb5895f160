package compiler

import (
	"strconv"
	"strings"
	"unicode"
)

// keywords maps source text to its keyword TokenType. GNU spellings found
// in preprocessed system headers map onto their standard counterparts.
var keywords = map[string]TokenType{
	"auto":              AUTO,
	"bool":              BOOL,
	"_Bool":             BOOL,
	"break":             BREAK,
	"case":              CASE,
	"char":              CHAR,
	"const":             CONST,
	"__const":           CONST,
	"__const__":         CONST,
	"continue":          CONTINUE,
	"default":           DEFAULT,
	"do":                DO,
	"double":            DOUBLE,
	"else":              ELSE,
	"enum":              ENUM,
	"extern":            EXTERN,
	"false":             FALSE,
	"float":             FLOAT,
	"for":               FOR,
	"goto":              GOTO,
	"if":                IF,
	"inline":            INLINE,
	"__inline":          INLINE,
	"__inline__":        INLINE,
	"int":               INT,
	"long":              LONG,
	"_Noreturn":         NORETURN,
	"nullptr":           NULLPTR,
	"register":          REGISTER,
	"restrict":          RESTRICT,
	"__restrict":        RESTRICT,
	"__restrict__":      RESTRICT,
	"return":            RETURN,
	"short":             SHORT,
	"signed":            SIGNED,
	"__signed__":        SIGNED,
	"sizeof":            SIZEOF,
	"static":            STATIC,
	"struct":            STRUCT,
	"switch":            SWITCH,
	"true":              TRUE,
	"typedef":           TYPEDEF,
	"union":             UNION,
	"unsigned":          UNSIGNED,
	"void":              VOID,
	"volatile":          VOLATILE,
	"__volatile__":      VOLATILE,
	"while":             WHILE,
	"alignas":           ALIGNAS,
	"_Alignas":          ALIGNAS,
	"alignof":           ALIGNOF,
	"_Alignof":          ALIGNOF,
	"__alignof__":       ALIGNOF,
	"static_assert":     STATIC_ASSERT,
	"_Static_assert":    STATIC_ASSERT,
	"typeof":            TYPEOF,
	"__typeof":          TYPEOF,
	"__typeof__":        TYPEOF,
	"typeof_unqual":     TYPEOF_UNQUAL,
	"__typeof_unqual__": TYPEOF_UNQUAL,
	"__attribute__":     ATTRIBUTE,
	"__attribute":       ATTRIBUTE,
	"__extension__":     EXTENSION,
	"__asm__":           ASM,
	"__asm":             ASM,
}

// punctuators lists multi-character punctuators longest first so that a
// greedy prefix match picks the right one.
var punctuators = []struct {
	text string
	tt   TokenType
}{
	{"<<=", SHL_ASSIGN}, {">>=", SHR_ASSIGN}, {"...", ELLIPSIS},
	{"->", ARROW}, {"++", PLUS_PLUS}, {"--", MINUS_MINUS},
	{"<<", SHL_OP}, {">>", SHR_OP}, {"<=", LESS_EQ}, {">=", GREATER_EQ},
	{"==", EQUALS}, {"!=", NOT_EQ}, {"&&", AND_LOGICAL}, {"||", OR_LOGICAL},
	{"+=", PLUS_ASSIGN}, {"-=", MINUS_ASSIGN}, {"*=", STAR_ASSIGN},
	{"/=", SLASH_ASSIGN}, {"%=", PERCENT_ASSIGN}, {"&=", AND_ASSIGN},
	{"|=", OR_ASSIGN}, {"^=", XOR_ASSIGN},
}

var singlePunct = map[rune]TokenType{
	'{': LBRACE, '}': RBRACE, '(': LPAREN, ')': RPAREN, '[': LBRACKET, ']': RBRACKET,
	'.': DOT, ';': SEMICOLON, ',': COMMA, ':': COLON, '?': QUESTION,
	'+': PLUS, '-': MINUS, '*': STAR, '/': SLASH, '%': PERCENT,
	'&': AND, '|': PIPE, '^': CARET, '~': TILDE, '!': NOT,
	'=': ASSIGN, '<': LESS, '>': GREATER,
}

// Lexer holds all mutable state for a single scanning pass over src. It
// produces tokens on demand through Next; the sequence cannot be restarted.
type Lexer struct {
	src   []rune
	pos   int // index of the next rune to consume
	line  int // current 1-based source line
	col   int // current 1-based column
	file  string
	bol   bool // only whitespace seen since the start of the line
	done  bool
	queue *LiteralQueue
}

// NewLexer creates a lexer over src that pushes literal lexemes onto q.
func NewLexer(file, src string, q *LiteralQueue) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1, file: file, bol: true, queue: q}
}

// Lex tokenizes src in one go. Literal lexemes are pushed onto q.
func Lex(src string, q *LiteralQueue) ([]Token, error) {
	l := NewLexer("", src, q)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) here() Pos { return Pos{File: l.file, Line: l.line, Col: l.col} }

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune { return l.peekAt(0) }

// peekAt returns the rune n positions ahead of the current position.
func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
		l.bol = true
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) hasPrefix(s string) bool {
	i := 0
	for _, r := range s {
		if l.peekAt(i) != r {
			return false
		}
		i++
	}
	return true
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed.
func (l *Lexer) skipBlockComment(start Pos) error {
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return lexErrorf(start, "unterminated block comment")
}

// skipSpace skips whitespace, comments and line-marker directives.
func (l *Lexer) skipSpace() error {
	for l.pos < len(l.src) {
		r := l.peek()
		switch {
		case r == '\n':
			l.advance()
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case r == '/' && l.peekAt(1) == '*':
			start := l.here()
			l.advance()
			l.advance()
			if err := l.skipBlockComment(start); err != nil {
				return err
			}
		case r == '#' && l.bol:
			if err := l.directive(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

// directive handles a '#' at the start of a line. Preprocessed input only
// carries line markers ("# 12 "file.c" 1") and pragmas; anything else means
// the input was not run through a preprocessor.
func (l *Lexer) directive() error {
	start := l.here()
	l.advance() // #
	lineStart := l.pos
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
	text := strings.TrimSpace(string(l.src[lineStart:l.pos]))
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil // null directive
	}
	if fields[0] == "pragma" || fields[0] == "ident" {
		return nil
	}
	if fields[0] == "line" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return lexErrorf(start, "malformed line marker")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return lexErrorf(start, "unexpected preprocessing directive #%s", strings.Fields(text)[0])
	}
	if len(fields) > 1 {
		name := fields[1]
		if len(name) < 2 || name[0] != '"' || name[len(name)-1] != '"' {
			return lexErrorf(start, "malformed file name in line marker")
		}
		l.file = name[1 : len(name)-1]
	}
	// The marker names the line that follows it.
	l.line = n - 1
	return nil
}

// Next returns the next token. After EOF has been returned, further calls
// keep returning EOF.
func (l *Lexer) Next() (Token, error) {
	if l.done {
		return Token{Type: EOF, Pos: l.here()}, nil
	}
	if err := l.skipSpace(); err != nil {
		return Token{}, err
	}
	if l.pos >= len(l.src) {
		l.done = true
		return Token{Type: EOF, Pos: l.here()}, nil
	}
	l.bol = false

	ch := l.peek()
	switch {
	case unicode.IsLetter(ch) || ch == '_' || ch == '$':
		return l.scanIdent()
	case unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peekAt(1))):
		return l.scanNumber()
	case ch == '"' || ch == '\'':
		return l.scanQuoted(l.here(), l.pos, PrefixNone)
	}

	pos := l.here()
	for _, p := range punctuators {
		if l.hasPrefix(p.text) {
			for range len(p.text) {
				l.advance()
			}
			return Token{Type: p.tt, Lexeme: p.text, Pos: pos}, nil
		}
	}
	if tt, ok := singlePunct[ch]; ok {
		l.advance()
		return Token{Type: tt, Lexeme: string(ch), Pos: pos}, nil
	}
	return Token{}, lexErrorf(pos, "unexpected character %q", ch)
}

// scanIdent collects an identifier or keyword. An encoding prefix directly
// followed by a quote starts a character or string literal instead.
func (l *Lexer) scanIdent() (Token, error) {
	pos := l.here()
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	if q := l.peek(); q == '"' || q == '\'' {
		if prefix, ok := prefixOf(lexeme); ok {
			return l.scanQuoted(pos, start, prefix)
		}
	}
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Pos: pos}, nil
}

// scanQuoted collects a character constant or string literal whose prefix
// (if any) started at src[start]. Escapes are validated for shape only and
// left undecoded; the raw lexeme is pushed onto the literal queue.
func (l *Lexer) scanQuoted(pos Pos, start int, prefix Prefix) (Token, error) {
	quote := l.advance()
	tt, what := STRING, "string literal"
	if quote == '\'' {
		tt, what = CHARACTER, "character constant"
	}
	n := 0
	for {
		r := l.peek()
		if l.pos >= len(l.src) || r == '\n' {
			return Token{}, lexErrorf(pos, "unterminated %s", what)
		}
		if r == quote {
			l.advance()
			break
		}
		l.advance()
		if r == '\\' {
			if l.pos >= len(l.src) || l.peek() == '\n' {
				return Token{}, lexErrorf(pos, "unterminated %s", what)
			}
			l.advance()
		}
		n++
	}
	if tt == CHARACTER && n == 0 {
		return Token{}, lexErrorf(pos, "empty character constant")
	}
	lexeme := string(l.src[start:l.pos])
	l.queue.Push(lexeme)
	return Token{Type: tt, Lexeme: lexeme, Pos: pos, Prefix: prefix}, nil
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// scanNumber collects an integer or floating constant. Digit separators
// (1'000'000) are kept in the lexeme; suffixes are validated here so a
// malformed constant is a lexical error.
func (l *Lexer) scanNumber() (Token, error) {
	pos := l.here()
	start := l.pos
	isDigit := unicode.IsDigit
	float := false

	switch {
	case l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X'):
		l.advance()
		l.advance()
		isDigit = isHexDigit
	case l.peek() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B'):
		l.advance()
		l.advance()
		isDigit = func(r rune) bool { return r == '0' || r == '1' }
	}
	hex := l.pos-start == 2 && (l.src[start+1] == 'x' || l.src[start+1] == 'X')
	bin := l.pos-start == 2 && !hex

	digits := func() int {
		n := 0
		for l.pos < len(l.src) {
			r := l.peek()
			if isDigit(r) {
				l.advance()
				n++
				continue
			}
			if r == '\'' && n > 0 && isDigit(l.peekAt(1)) {
				l.advance()
				continue
			}
			break
		}
		return n
	}

	n := digits()
	if !bin && l.peek() == '.' {
		float = true
		l.advance()
		n += digits()
	}
	if (bin || hex) && n == 0 {
		return Token{}, lexErrorf(pos, "invalid integer constant %q", string(l.src[start:l.pos]))
	}
	exp := 'e'
	if hex {
		exp = 'p'
	}
	if r := unicode.ToLower(l.peek()); r == exp && !bin {
		next := l.peekAt(1)
		if unicode.IsDigit(next) || ((next == '+' || next == '-') && unicode.IsDigit(l.peekAt(2))) {
			float = true
			l.advance()
			if next == '+' || next == '-' {
				l.advance()
			}
			for unicode.IsDigit(l.peek()) {
				l.advance()
			}
		}
	}
	if hex && float && !strings.ContainsAny(string(l.src[start:l.pos]), "pP") {
		return Token{}, lexErrorf(pos, "hexadecimal floating constant requires an exponent")
	}

	sufStart := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	suffix := strings.ToLower(string(l.src[sufStart:l.pos]))
	lexeme := string(l.src[start:l.pos])
	if float {
		if suffix != "" && suffix != "f" && suffix != "l" {
			return Token{}, lexErrorf(pos, "invalid suffix %q on floating constant", suffix)
		}
		return Token{Type: FLOATING, Lexeme: lexeme, Pos: pos}, nil
	}
	if !validIntSuffix(suffix) {
		return Token{}, lexErrorf(pos, "invalid suffix %q on integer constant", suffix)
	}
	return Token{Type: INTEGER, Lexeme: lexeme, Pos: pos}, nil
}

func validIntSuffix(s string) bool {
	switch s {
	case "", "u", "l", "ul", "lu", "ll", "ull", "llu":
		return true
	}
	return false
}
