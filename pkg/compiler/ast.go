package compiler

import (
	"fmt"
	"strings"

	"cfront/pkg/pool"
)

// ExprKind identifies the shape of an Expr.
type ExprKind uint8

const (
	ExprInt     ExprKind = iota // integer constant, Val
	ExprFloat                   // floating constant, F
	ExprString                  // string literal, Str
	ExprIdent                   // object, function or enumerator, Sym
	ExprUnary                   // Op L for Op in + - ! ~
	ExprAddr                    // &L; also array and function decay
	ExprDeref                   // *L; a[i] is parsed as *(a + i)
	ExprBinary                  // L Op R
	ExprLogical                 // L && R, L || R
	ExprAssign                  // L Op R for = and the compound forms
	ExprPostfix                 // L++ or L--
	ExprCond                    // C ? L : R
	ExprComma                   // L, R
	ExprCast                    // (Type) L
	ExprCall                    // L(Args...)
	ExprSizeof                  // sizeof; the size is folded into Val
	ExprAlignof                 // alignof; folded into Val
	ExprInitList                // { Args... } in an initializer
)

// Expr is an expression node. Every node carries the static type it was
// given by the parser; which other fields are used depends on Kind.
//
//	x + 1
//	^ ^ ^
//	| | R
//	| Op
//	L
type Expr struct {
	Kind ExprKind
	Op   TokenType
	Type *Type
	Pos  Pos

	L, R, C  *Expr
	Args     []*Expr
	Sym      *Symbol
	Val      Value
	F        float64
	Str      *StringLit
	Calc     *Type // compound assignment: type the operation is done in
	Implicit bool  // cast inserted by a conversion rule
}

// StaticType reports the type the node was parsed with.
func (e *Expr) StaticType() *Type { return e.Type }

func (e *Expr) String() string {
	switch e.Kind {
	case ExprInt:
		return e.Val.String()
	case ExprFloat:
		return fmt.Sprint(e.F)
	case ExprString:
		return fmt.Sprintf("%s%q", e.Str.Prefix, unitsText(e.Str))
	case ExprIdent:
		return e.Sym.Name
	case ExprUnary:
		return fmt.Sprintf("(%s %s)", e.Op, e.L)
	case ExprAddr:
		if e.Implicit {
			return e.L.String()
		}
		return fmt.Sprintf("(& %s)", e.L)
	case ExprDeref:
		return fmt.Sprintf("(* %s)", e.L)
	case ExprBinary, ExprLogical, ExprAssign:
		return fmt.Sprintf("(%s %s %s)", e.L, e.Op, e.R)
	case ExprPostfix:
		return fmt.Sprintf("(%s %s)", e.L, e.Op)
	case ExprCond:
		return fmt.Sprintf("(%s ? %s : %s)", e.C, e.L, e.R)
	case ExprComma:
		return fmt.Sprintf("(%s, %s)", e.L, e.R)
	case ExprCast:
		if e.Implicit {
			return e.L.String()
		}
		return fmt.Sprintf("((%s) %s)", e.Type, e.L)
	case ExprCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", e.L, strings.Join(args, ", "))
	case ExprSizeof:
		return fmt.Sprintf("sizeof=%s", e.Val)
	case ExprAlignof:
		return fmt.Sprintf("alignof=%s", e.Val)
	case ExprInitList:
		elems := make([]string, len(e.Args))
		for i, a := range e.Args {
			elems[i] = a.String()
		}
		return "{" + strings.Join(elems, ", ") + "}"
	}
	return fmt.Sprintf("Expr(%d)", e.Kind)
}

func unitsText(s *StringLit) string {
	var sb strings.Builder
	for _, u := range s.Units {
		if s.Prefix == PrefixNone || s.Prefix == PrefixUTF8 {
			sb.WriteByte(byte(u))
		} else {
			sb.WriteRune(rune(u))
		}
	}
	return sb.String()
}

// StmtKind identifies the shape of a Stmt.
type StmtKind uint8

const (
	StmtExpr StmtKind = iota
	StmtDecl          // block-scope declarations, Decls
	StmtBlock
	StmtIf
	StmtWhile
	StmtDoWhile
	StmtFor
	StmtSwitch
	StmtCase // case Val: Body
	StmtDefault
	StmtBreak
	StmtContinue
	StmtReturn
	StmtGoto
	StmtLabel
	StmtEmpty
)

// Stmt is a statement node.
//
//	for (Init; Cond; Post) Body
//	if (Cond) Body else Else
type Stmt struct {
	Kind StmtKind
	Pos  Pos

	Expr  *Expr // expression statement, return value
	Cond  *Expr
	Post  *Expr
	Init  *Stmt
	Body  *Stmt
	Else  *Stmt
	Stmts []*Stmt
	Decls []*Decl
	Cases []*Stmt // switch: its case and default statements in source order
	Val   Value   // case label
	Label string  // goto target or label name
}

func (s *Stmt) String() string {
	switch s.Kind {
	case StmtExpr:
		return s.Expr.String() + ";"
	case StmtDecl:
		parts := make([]string, len(s.Decls))
		for i, d := range s.Decls {
			parts[i] = d.String()
		}
		return strings.Join(parts, " ")
	case StmtBlock:
		parts := make([]string, len(s.Stmts))
		for i, st := range s.Stmts {
			parts[i] = st.String()
		}
		return "{ " + strings.Join(parts, " ") + " }"
	case StmtIf:
		if s.Else != nil {
			return fmt.Sprintf("if %s %s else %s", s.Cond, s.Body, s.Else)
		}
		return fmt.Sprintf("if %s %s", s.Cond, s.Body)
	case StmtWhile:
		return fmt.Sprintf("while %s %s", s.Cond, s.Body)
	case StmtDoWhile:
		return fmt.Sprintf("do %s while %s;", s.Body, s.Cond)
	case StmtFor:
		init, cond, post := "", "", ""
		if s.Init != nil {
			init = s.Init.String()
		}
		if s.Cond != nil {
			cond = s.Cond.String()
		}
		if s.Post != nil {
			post = s.Post.String()
		}
		return fmt.Sprintf("for (%s %s; %s) %s", init, cond, post, s.Body)
	case StmtSwitch:
		return fmt.Sprintf("switch %s %s", s.Cond, s.Body)
	case StmtCase:
		return fmt.Sprintf("case %s: %s", s.Val, s.Body)
	case StmtDefault:
		return fmt.Sprintf("default: %s", s.Body)
	case StmtBreak:
		return "break;"
	case StmtContinue:
		return "continue;"
	case StmtReturn:
		if s.Expr == nil {
			return "return;"
		}
		return fmt.Sprintf("return %s;", s.Expr)
	case StmtGoto:
		return fmt.Sprintf("goto %s;", s.Label)
	case StmtLabel:
		return fmt.Sprintf("%s: %s", s.Label, s.Body)
	case StmtEmpty:
		return ";"
	}
	return fmt.Sprintf("Stmt(%d)", s.Kind)
}

// Decl is one declarator of a declaration that the IR cares about: an
// object or a function. Typedefs and enumerators leave no Decl behind.
type Decl struct {
	Sym     *Symbol
	Storage StorageClass // as written on this declaration
	Init    *Expr        // initializer, or nil
	Static  []StaticInit // folded initializer of a static-duration object
	Body    *Stmt        // function definition body, or nil
	Params  []*Symbol    // function definitions only
	Pos     Pos
}

func (d *Decl) String() string {
	s := fmt.Sprintf("%s %s", d.Sym.Type, d.Sym.Name)
	if d.Storage != SCNone {
		s = d.Storage.String() + " " + s
	}
	if d.Init != nil {
		s += " = " + d.Init.String()
	}
	if d.Body != nil {
		s += " " + d.Body.String()
		return s
	}
	return s + ";"
}

// Unit is a parsed translation unit.
type Unit struct {
	File    string
	Decls   []*Decl   // file-scope declarations in source order
	Symbols []*Symbol // every symbol created while parsing
	Arena   *Arena
}

// Arena owns the nodes allocated while parsing one block. A nested block
// parses into its own arena, which is merged into the enclosing one when
// the block is complete and cleared when parsing fails.
type Arena struct {
	Exprs pool.Pool[Expr]
	Stmts pool.Pool[Stmt]
	Decls pool.Pool[Decl]
}

// Merge moves every node owned by other into a.
func (a *Arena) Merge(other *Arena) {
	a.Exprs.Merge(&other.Exprs)
	a.Stmts.Merge(&other.Stmts)
	a.Decls.Merge(&other.Decls)
}

// Clear releases every node.
func (a *Arena) Clear() {
	a.Exprs.Clear()
	a.Stmts.Clear()
	a.Decls.Clear()
}

// Len reports the number of nodes owned.
func (a *Arena) Len() int { return a.Exprs.Len() + a.Stmts.Len() + a.Decls.Len() }
