// Package ir defines the linear three-address intermediate representation
// produced by the front end: an append-only sequence of triples whose
// operands are tagged references rather than text.
package ir

import (
	"fmt"
	"math"
	"strconv"
)

// Op identifies the operation a triple performs.
type Op int

const (
	OpNop Op = iota

	OpAssign // dst(arg1) = arg2
	OpStore  // *arg1 = arg2

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	// Unary
	OpNeg
	OpNot    // logical !
	OpBitNot // ~
	OpAddr   // &arg1
	OpDeref  // *arg1
	OpCast   // arg1 converted to the scalar type arg2

	// Bitwise
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr

	// Comparisons
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Size / alignment queries
	OpSizeof
	OpAlignof

	// Control
	OpLabel // listed as "label"; older consumers spell it "lable"
	OpJmp
	OpJmpTrue  // if arg1 goto arg2
	OpJmpFalse // if !arg1 goto arg2

	// Procedures
	OpFunc  // start of function arg1
	OpParam // declare parameter arg1 (index arg2)
	OpArg   // pass arg1 as argument
	OpCall  // call arg1 with arg2 arguments
	OpRet   // return arg1 (may be none)
)

var opNames = [...]string{
	OpNop:      "nop",
	OpAssign:   "assign",
	OpStore:    "store",
	OpAdd:      "add",
	OpSub:      "sub",
	OpMul:      "mul",
	OpDiv:      "div",
	OpMod:      "mod",
	OpNeg:      "neg",
	OpNot:      "not",
	OpBitNot:   "bitnot",
	OpAddr:     "addr",
	OpDeref:    "deref",
	OpCast:     "cast",
	OpAnd:      "and",
	OpOr:       "or",
	OpXor:      "xor",
	OpShl:      "shl",
	OpShr:      "shr",
	OpEq:       "eq",
	OpNe:       "ne",
	OpLt:       "lt",
	OpLe:       "le",
	OpGt:       "gt",
	OpGe:       "ge",
	OpSizeof:   "sizeof",
	OpAlignof:  "alignof",
	OpLabel:    "label",
	OpJmp:      "jmp",
	OpJmpTrue:  "jmptrue",
	OpJmpFalse: "jmpfalse",
	OpFunc:     "func",
	OpParam:    "param",
	OpArg:      "arg",
	OpCall:     "call",
	OpRet:      "ret",
}

func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// OperandKind tags the variant held by an Operand.
type OperandKind uint8

const (
	None   OperandKind = iota
	Temp               // result of the triple at index ID
	Sym                // symbol ID in Program.Symbols
	Imm                // integer immediate in Int
	FImm               // float immediate, bits in Int
	Label              // label ID
	String             // string constant ID in Program.Strings
	Type               // scalar type: class in ID, size in bytes in Int
)

// Scalar classes carried by a Type operand.
const (
	ClassInt   = iota // signed integer
	ClassUint         // unsigned integer or bool
	ClassFloat
	ClassPtr
)

var classPrefix = [...]string{ClassInt: "i", ClassUint: "u", ClassFloat: "f", ClassPtr: "p"}

// Operand is a tagged reference to a value.
type Operand struct {
	Kind OperandKind
	ID   int
	Int  int64
}

func TempRef(index int) Operand { return Operand{Kind: Temp, ID: index} }
func SymRef(id int) Operand     { return Operand{Kind: Sym, ID: id} }
func Const(v int64) Operand     { return Operand{Kind: Imm, Int: v} }
func LabelRef(id int) Operand   { return Operand{Kind: Label, ID: id} }
func StringRef(id int) Operand  { return Operand{Kind: String, ID: id} }

// TypeRef describes the target of a cast.
func TypeRef(class int, size int64) Operand { return Operand{Kind: Type, ID: class, Int: size} }

func FloatConst(f float64) Operand {
	return Operand{Kind: FImm, Int: int64(math.Float64bits(f))}
}

// Float returns the value of an FImm operand.
func (o Operand) Float() float64 { return math.Float64frombits(uint64(o.Int)) }

// IsNone reports whether the operand slot is unused.
func (o Operand) IsNone() bool { return o.Kind == None }

// Text renders the operand without symbol names; Program.OperandText
// resolves symbol IDs to names.
func (o Operand) Text() string {
	switch o.Kind {
	case None:
		return ""
	case Temp:
		return "t" + strconv.Itoa(o.ID)
	case Sym:
		return "$" + strconv.Itoa(o.ID)
	case Imm:
		return strconv.FormatInt(o.Int, 10)
	case FImm:
		return strconv.FormatFloat(o.Float(), 'g', -1, 64)
	case Label:
		return "L" + strconv.Itoa(o.ID)
	case String:
		return "S" + strconv.Itoa(o.ID)
	case Type:
		if o.ID >= 0 && o.ID < len(classPrefix) {
			return classPrefix[o.ID] + strconv.FormatInt(o.Int, 10)
		}
	}
	return "?"
}

// Triple is a single IR instruction. Its result, if any, is referenced by
// later triples as TempRef(index).
type Triple struct {
	Op   Op
	Arg1 Operand
	Arg2 Operand
}

func (t Triple) String() string {
	return fmt.Sprintf("op = %d arg1 = %s arg2 = %s", int(t.Op), t.Arg1.Text(), t.Arg2.Text())
}
