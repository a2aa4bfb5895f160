// Package diag is the fail-fast assertion primitive used for internal
// consistency checks. A failed assertion is a logic defect, not bad input, so
// it panics with a *Violation instead of returning an error.
package diag

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Violation describes a failed internal assertion.
type Violation struct {
	Expr string // source text of the asserted condition
	File string
	Line int
	Func string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s:%d: %s: assertion %q failed", filepath.Base(v.File), v.Line, v.Func, v.Expr)
}

// Assert panics with a *Violation naming the caller when cond is false.
func Assert(cond bool, expr string) {
	if cond {
		return
	}
	panic(violation(expr, 2))
}

// Failf panics unconditionally; used for unreachable switch arms.
func Failf(format string, args ...any) {
	panic(violation(fmt.Sprintf(format, args...), 2))
}

func violation(expr string, skip int) *Violation {
	v := &Violation{Expr: expr, File: "?", Func: "?"}
	pc, file, line, ok := runtime.Caller(skip)
	if ok {
		v.File = file
		v.Line = line
		if fn := runtime.FuncForPC(pc); fn != nil {
			v.Func = fn.Name()
		}
	}
	return v
}
