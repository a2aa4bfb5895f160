package compiler

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

func TestParse_DeclaredTypes(t *testing.T) {
	tests := []struct {
		src  string
		name string
		want string
	}{
		{"int x;", "x", "int"},
		{"const char *s;", "s", "const char *"},
		{"char const *s;", "s", "const char *"},
		{"long unsigned int long u;", "u", "unsigned long long"},
		{"int a[3][4];", "a", "int [3][4]"},
		{"int (*fp)(int, ...);", "fp", "int (*)(int, ...)"},
		{"int *(*g)[2];", "g", "int * (*)[2]"},
		{"long double ld;", "ld", "long double"},
		{"char str[] = \"hi\";", "str", "char [3]"},
		{"int arr[] = {1, 2, 3,};", "arr", "int [3]"},
		{"typedef unsigned int uint; uint v;", "v", "unsigned int"},
		{"size_t n;", "n", "unsigned long"},
		{"int f(void);", "f", "int (void)"},
		{"int g();", "g", "int (void)"},
		{"void h(int a[], void fn(void));", "h", "void (int *, void (*)(void))"},
		{"int a2[5]; typeof(a2) b2;", "b2", "int [5]"},
		{"const int ci = 1; typeof(ci) k = 2;", "k", "const int"},
		{"const int ci = 1; typeof_unqual(ci) m;", "m", "int"},
		{"const int ca[2] = {0}; typeof_unqual(ca) m;", "m", "int [2]"},
		{"int * restrict rp;", "rp", "int * restrict"},
		{"_Bool flag; bool flag2;", "flag2", "bool"},
		{"int __attribute__((unused)) attr;", "attr", "int"},
		{"[[nodiscard]] int std_attr(void);", "std_attr", "int (void)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			u, _ := parseUnit(t, tt.src)
			be.Equal(t, lookup(t, u, tt.name).Type.String(), tt.want)
		})
	}
}

func TestParse_ConstantExpressions(t *testing.T) {
	src := `
int a[10];
double d;
static_assert(sizeof(int) == 4);
static_assert(sizeof(long double) == 16, "x86-64 long double");
static_assert(sizeof a == 40);
static_assert(sizeof(typeof(a)) == sizeof a);
static_assert(sizeof a[0] == 4);
static_assert(sizeof(int (*)[3]) == 8);
static_assert(alignof(double) == 8);
static_assert(_Alignof(char) == 1);
static_assert(sizeof "abc" == 4);
static_assert(sizeof L"ab" == 12);
static_assert(sizeof u8"é" == 3);
static_assert(sizeof(d + 1) == 8);
static_assert(sizeof 'a' == 4);
static_assert((1 ? 2 : 3) == 2);
static_assert((unsigned char)300 == 44);
static_assert(-1 < 0 && !(-1 < 0u));
static_assert((1 << 4 | 3) == 19);
static_assert(~0u == 4294967295);
static_assert(2147483648 > 0);
static_assert((int)2.9 == 2);
static_assert('\377' == -1);
static_assert(true + true == 2);
`
	parseUnit(t, src)
}

func exprOf(t *testing.T, decls, expr string) *Expr {
	t.Helper()
	u, _ := parseUnit(t, decls+"\nvoid sample(void) { "+expr+"; }")
	fn := u.Decls[len(u.Decls)-1]
	return fn.Body.Stmts[0].Expr
}

func TestParse_Expressions(t *testing.T) {
	const decls = `int x, y; int *p; int a[4]; double d; char c; long f2(long); const int *cp;`
	tests := []struct {
		expr string
		want string
		typ  string
	}{
		{"x + y * 2", "(x PLUS (y STAR 2))", "int"},
		{"(x + y) * 2", "((x PLUS y) STAR 2)", "int"},
		{"x - y - 1", "((x MINUS y) MINUS 1)", "int"},
		{"x = y = 3", "(x ASSIGN (y ASSIGN 3))", "int"},
		{"p[1]", "(* (p PLUS 1))", "int"},
		{"1[p]", "(* (p PLUS 1))", "int"},
		{"a[2]", "(* (a PLUS 2))", "int"},
		{"++x", "(x PLUS_ASSIGN 1)", "int"},
		{"x++", "(x PLUS_PLUS)", "int"},
		{"p--", "(p MINUS_MINUS)", "int *"},
		{"c + 1", "(c PLUS 1)", "int"},
		{"d < x", "(d LESS x)", "int"},
		{"x && p", "(x AND_LOGICAL p)", "int"},
		{"x ? p : 0", "(x ? p : 0)", "int *"},
		{"x ? d : c", "(x ? d : c)", "double"},
		{"x ? cp : p", "(x ? cp : p)", "const int *"},
		{"(char)x", "((char) x)", "char"},
		{"-c", "(MINUS c)", "int"},
		{"!d", "(NOT d)", "int"},
		{"sizeof x", "sizeof=4", "unsigned long"},
		{"&x", "(& x)", "int *"},
		{"&a", "(& a)", "int (*)[4]"},
		{"*p", "(* p)", "int"},
		{"*cp", "(* cp)", "const int"},
		{"p - p", "(p MINUS p)", "long"},
		{"p + 1 - a", "((p PLUS 1) MINUS a)", "long"},
		{"x, d", "(x, d)", "double"},
		{"f2(c)", "f2(c)", "long"},
		{"x += d", "(x PLUS_ASSIGN d)", "int"},
		{"x <<= 1", "(x SHL_ASSIGN 1)", "int"},
		{"c << 2L", "(c SHL_OP 2)", "int"},
		{"'a'", "97", "int"},
		{"nullptr", "0", "nullptr_t"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e := exprOf(t, decls, tt.expr)
			be.Equal(t, e.String(), tt.want)
			be.Equal(t, e.Type.String(), tt.typ)
		})
	}
}

func TestParse_CompoundAssignCalc(t *testing.T) {
	e := exprOf(t, "char c; double d;", "c *= d")
	be.Equal(t, e.Calc, TyDouble)
	be.Equal(t, e.Type, TyChar)

	e = exprOf(t, "int *p;", "p += 2")
	be.True(t, e.Calc.IsPointer())
	be.Equal(t, e.R.Type, TyLong)
}

func TestParse_Typeof(t *testing.T) {
	u, _ := parseUnit(t, `
int a;
typeof(a) *b = &a;
const volatile int cv;
typeof_unqual(cv) plain;
void f(void) { plain = 1; *b = 5; }
static_assert(sizeof b == 8);
`)
	be.Equal(t, lookup(t, u, "b").Type.String(), "int *")
	be.Equal(t, lookup(t, u, "plain").Type, TyInt)

	// typeof does not evaluate its operand.
	u, _ = parseUnit(t, "int n; typeof(n++) m;")
	be.Equal(t, lookup(t, u, "m").Type, TyInt)
}

func TestParse_Enum(t *testing.T) {
	u, _ := parseUnit(t, `
enum color { RED, GREEN = 5, BLUE };
enum color c = BLUE;
enum big : unsigned long { HUGE = 4294967296, NEXT };
enum { LATER = BLUE * 2 };
int arr[LATER];
`)
	blue := lookup(t, u, "BLUE")
	be.Equal(t, blue.Kind, SymEnumConst)
	be.Equal(t, blue.Value.Int64(), int64(6))
	be.Equal(t, blue.Type, TyInt)

	c := lookup(t, u, "c")
	be.Equal(t, c.Type.String(), "enum color")
	be.True(t, c.Type.Enum.Complete)
	be.Equal(t, c.Type.Enum.Underlying, TyInt)

	next := lookup(t, u, "NEXT")
	be.Equal(t, next.Type.String(), "enum big")
	be.Equal(t, next.Value.Uint64(), uint64(4294967297))

	be.Equal(t, lookup(t, u, "arr").Type.Len, int64(12))
}

func TestParse_EnumForwardDeclaration(t *testing.T) {
	u, _ := parseUnit(t, `
enum e;
enum e *ptr;
enum e { E0 };
enum fixed : short;
enum fixed fv;
`)
	be.Equal(t, lookup(t, u, "ptr").Type.Base.Enum.Complete, true)
	be.Equal(t, lookup(t, u, "fv").Type.Enum.Underlying, TyShort)
}

func TestParse_Switch(t *testing.T) {
	u, _ := parseUnit(t, `
void f(char c) {
	switch (c) {
	case 'a': break;
	default: break;
	case 300: ;
	}
}`)
	body := u.Decls[0].Body
	sw := body.Stmts[0]
	be.Equal(t, sw.Kind, StmtSwitch)
	be.Equal(t, sw.Cond.Type, TyInt)
	be.Equal(t, len(sw.Cases), 3)
	be.Equal(t, sw.Cases[0].Kind, StmtCase)
	be.Equal(t, sw.Cases[0].Val.Int64(), int64(97))
	be.Equal(t, sw.Cases[1].Kind, StmtDefault)
	be.Equal(t, sw.Cases[2].Val.Int64(), int64(300))
}

func TestParse_Statements(t *testing.T) {
	u, _ := parseUnit(t, `
int f(int n) {
	int s = 0;
	for (int i = 0; i < n; i++) {
		if (i % 2) continue; else s += i;
	}
	while (n) n--;
	do { s++; } while (s < 10);
	goto done;
done:
	return s;
}`)
	want := []StmtKind{StmtDecl, StmtFor, StmtWhile, StmtDoWhile, StmtGoto, StmtLabel}
	stmts := u.Decls[0].Body.Stmts
	be.Equal(t, len(stmts), len(want))
	for i, k := range want {
		be.Equal(t, stmts[i].Kind, k)
	}
	be.Equal(t, stmts[5].Body.Kind, StmtReturn)
	be.Equal(t, stmts[1].Init.Decls[0].Sym.Name, "i")
	be.Equal(t, u.Decls[0].Params[0].Name, "n")
	be.True(t, u.Decls[0].Params[0].Param)
}

func TestParse_Linkage(t *testing.T) {
	u, _ := parseUnit(t, `
static int b;
int f(void) { extern int b; return b; }
int g(void) { static int counter; return ++counter; }
`)
	var bs []*Symbol
	for _, s := range u.Symbols {
		if s.Name == "b" {
			bs = append(bs, s)
		}
	}
	be.Equal(t, len(bs), 1)
	be.Equal(t, bs[0].Linkage, LinkInternal)

	counter := lookup(t, u, "counter")
	be.Equal(t, counter.Linkage, LinkNone)
	be.True(t, counter.StaticDuration())
	be.Equal(t, counter.Depth, 1)
}

func TestParse_ArenaOwnsNodes(t *testing.T) {
	u, _ := parseUnit(t, "int f(int x) { { int y = x; return y + 1; } }")
	// Nested block arenas are merged into the unit's arena on success.
	be.True(t, u.Arena.Len() > 0)
	n := 0
	for range u.Arena.Exprs.All() {
		n++
	}
	be.Equal(t, n, u.Arena.Exprs.Len())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
		want string
	}{
		{"Implicit Int", "static x;", ErrSemantic, "type specifier missing"},
		{"Struct", "struct s { int a; };", ErrSemantic, "'struct' types are not supported"},
		{"Union", "union u *up;", ErrSemantic, "'union' types are not supported"},
		{"Bad Specifiers", "int int x;", ErrSemantic, "invalid combination of type specifiers"},
		{"Two Storage Classes", "static extern int x;", ErrSemantic, "cannot combine"},
		{"Restrict Int", "restrict int x;", ErrSemantic, "restrict requires a pointer type"},
		{"VLA", "void f(int n) { int a[n]; }", ErrSemantic, "variable length arrays are not supported"},
		{"VLA Star", "void f(int a[*]);", ErrSemantic, "variable length arrays are not supported"},
		{"Negative Array", "int a[-1];", ErrSemantic, "array size is negative"},
		{"Designated Initializer", "int a[3] = {[1] = 2};", ErrSemantic, "designated initializers are not supported"},
		{"Compound Literal", "int *p = (int[]){1};", ErrSemantic, "compound literals are not supported"},
		{"Statement Expression", "int f(void) { return ({ 1; }); }", ErrSemantic, "statement expressions are not supported"},
		{"Break Outside Loop", "void f(void) { break; }", ErrSemantic, "'break' statement not in loop or switch statement"},
		{"Continue In Switch", "void f(int x) { switch (x) { case 1: continue; } }", ErrSemantic, "'continue' statement not in loop statement"},
		{"Duplicate Case", "void f(int x) { switch (x) { case 1: case 2 - 1: break; } }", ErrSemantic, "duplicate case value '1'"},
		{"Duplicate Case After Conversion", "void f(char x) { switch (x) { case 1: case 1L: break; } }", ErrSemantic, "duplicate case value"},
		{"Case Outside Switch", "void f(void) { case 1: ; }", ErrSemantic, "'case' statement not in switch statement"},
		{"Two Defaults", "void f(int x) { switch (x) { default: default: ; } }", ErrSemantic, "multiple default labels"},
		{"Non-constant Case", "void f(int x) { switch (x) { case x: ; } }", ErrSemantic, "case label does not reduce to an integer constant"},
		{"Switch On Double", "void f(double d) { switch (d) { } }", ErrSemantic, "statement requires expression of integer type"},
		{"Undeclared Identifier", "int f(void) { return y; }", ErrSemantic, "use of undeclared identifier 'y'"},
		{"Undeclared Label", "void f(void) { goto out; }", ErrSemantic, "use of undeclared label 'out'"},
		{"Duplicate Label", "void f(void) { a: ; a: ; }", ErrSemantic, "redefinition of label 'a'"},
		{"Assign To Const", "void f(void) { const int c = 1; c = 2; }", ErrSemantic, "cannot assign to variable 'c' with const-qualified type"},
		{"Assign Through Const Pointer", "void f(const int *p) { *p = 1; }", ErrSemantic, "read-only location"},
		{"Increment Const", "void f(void) { const int c = 0; c++; }", ErrSemantic, "const-qualified type"},
		{"Assign To Rvalue", "void f(int x) { x + 1 = 2; }", ErrSemantic, "expression is not assignable"},
		{"Assign To Array", "int a[2], b[2]; void f(void) { a = b; }", ErrSemantic, "array type 'int [2]' is not assignable"},
		{"Discard Qualifier", "const char *s; char *t = s;", ErrSemantic, "discards 'const' qualifier"},
		{"Pointer From Integer", "int *p = 5;", ErrSemantic, "makes pointer from integer without a cast"},
		{"Integer From Pointer", "int x; long y = &x;", ErrSemantic, "makes integer from pointer without a cast"},
		{"Incompatible Pointers", "int *p; long *q = p;", ErrSemantic, "incompatible pointer types"},
		{"Static Assert", `static_assert(sizeof(int) == 2, "int is 16 bits");`, ErrSemantic, "static assertion failed: int is 16 bits"},
		{"Static Assert Not Constant", "int x; static_assert(x);", ErrSemantic, "not an integer constant expression"},
		{"Too Few Arguments", "int g(int, int); int f(void) { return g(1); }", ErrSemantic, "too few arguments"},
		{"Too Many Arguments", "int g(void); int f(void) { return g(1); }", ErrSemantic, "too many arguments"},
		{"Not A Function", "int x; int f(void) { return x(); }", ErrSemantic, "called object type 'int'"},
		{"Void Return Value", "void f(void) { return 1; }", ErrSemantic, "void function 'f' should not return a value"},
		{"Missing Return Value", "int f(void) { return; }", ErrSemantic, "non-void function 'f' should return a value"},
		{"Member Access", "int f(int *p) { return p->x; }", ErrSemantic, "member access"},
		{"Extern Initialized In Block", "void f(void) { extern int e = 1; }", ErrSemantic, "has both 'extern' and an initializer"},
		{"Excess Elements", "int a[2] = {1, 2, 3};", ErrSemantic, "excess elements in array initializer"},
		{"String Too Long", `char s[2] = "abc";`, ErrSemantic, "initializer-string for array of 'char [2]' is too long"},
		{"Wide String Into Char Array", `char s[] = L"x";`, ErrSemantic, "from a string literal"},
		{"Redefinition", "int x = 1; int x = 2;", ErrSemantic, "redefinition of 'x'"},
		{"Register Address", "void f(void) { register int r; int *p = &r; }", ErrSemantic, "address of register variable 'r'"},
		{"Void Variable", "void v;", ErrSemantic, "variable 'v' has incomplete type 'void'"},
		{"Sizeof Function", "int g(void); static_assert(sizeof g == 1);", ErrSemantic, "invalid application of 'sizeof'"},
		{"Non-constant Static Init", "int x; int y = x;", ErrSemantic, "not a compile-time constant"},
		{"Nested Function", "void f(void) { void g(void) {} }", ErrSyntax, "function definition is not allowed here"},
		{"Missing Semicolon", "int x", ErrSyntax, "expected SEMICOLON, got end of input"},
		{"Declaration As Statement", "void f(int x) { if (x) int y; }", ErrSyntax, "a declaration is not a statement"},
		{"Unbalanced Brace", "void f(void) { ", ErrSyntax, "expected '}'"},
		{"Lexical", "int x = @;", ErrLexical, "unexpected character"},
		{"Cast To Incomplete Enum", "enum Q *p; int f(void) { return (enum Q)1; }", ErrSemantic, "cast to incomplete type 'enum Q'"},
		{"Cast To Incomplete Enum In Initializer", "int x = (enum Q)0;", ErrSemantic, "cast to incomplete type 'enum Q'"},
		{"Incomplete Enum Operand", "enum Q *p; int f(void) { return *p + 1; }", ErrSemantic, "incomplete type 'enum Q' used in expression"},
		{"Incomplete Enum Returned", "enum Q *p; int f(void) { return *p; }", ErrSemantic, "incomplete type 'enum Q' used in expression"},
		{"Incomplete Enum Switch", "enum Q *p; void f(void) { switch (*p) { } }", ErrSemantic, "incomplete type 'enum Q' used in expression"},
		{"Incomplete Enum Condition", "enum Q *p; void f(void) { if (*p) ; }", ErrSemantic, "incomplete type 'enum Q' used in expression"},
		{"Incomplete Enum Statement", "enum Q *p; void f(void) { *p; }", ErrSemantic, "incomplete type 'enum Q' used in expression"},
		{"Incomplete Enum Increment", "enum Q *p; void f(void) { (*p)++; }", ErrSemantic, "object of incomplete type 'enum Q'"},
		{"Incomplete Enum Negated", "enum Q *p; int f(void) { return -*p; }", ErrSemantic, "incomplete type 'enum Q' used in expression"},
		{"Enumerator Overflow", "enum { X = 2147483647 + 1 };", ErrSemantic, "integer overflow in constant expression"},
		{"Array Size Overflow", "int arr[2147483647 * 3];", ErrSemantic, "integer overflow in constant expression"},
		{"Incomplete Return Type", "enum Q g(void); void f(void) { g(); }", ErrSemantic, "incomplete return type 'enum Q'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErr(t, tt.src)
			if !errors.Is(err, tt.kind) {
				t.Errorf("error %v is not a %v", err, tt.kind)
			}
			be.Err(t, err, tt.want)
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	err := parseErr(t, "int x;\nint f(void) {\n  return y;\n}\n")
	var e *Error
	be.True(t, errors.As(err, &e))
	be.Equal(t, e.Pos, Pos{File: "test.c", Line: 3, Col: 10})
	be.Equal(t, e.Snippet, "return y;")
	be.Err(t, err, "test.c:3:10: semantic error: use of undeclared identifier 'y'\n  |> return y;")
}
