// Package invariant provides assertions for states the rewrite stage treats
// as impossible. A failed assertion is a logic defect, not bad input.
//
// All functions panic with a *Violation. Pass boundaries recover that type
// with Recover and turn it into an error; any other panic keeps unwinding.
package invariant

import (
	"fmt"
	"runtime"
)

// Violation is the panic value raised by a failed assertion.
type Violation struct {
	Kind    string
	Message string
	Caller  string
}

func (v *Violation) Error() string {
	if v.Caller == "" {
		return fmt.Sprintf("%s VIOLATION: %s", v.Kind, v.Message)
	}
	return fmt.Sprintf("%s VIOLATION: %s (at %s)", v.Kind, v.Message, v.Caller)
}

// Precondition checks an input contract at function entry.
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Invariant checks internal consistency during execution.
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// Unreachable marks a branch that must never execute.
func Unreachable(format string, args ...any) {
	fail("UNREACHABLE", format, args...)
}

// Recover converts a recovered *Violation into an error and stores it in
// errp. It must be called directly by a deferred function:
//
//	defer invariant.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	v, ok := r.(*Violation)
	if !ok {
		panic(r)
	}
	*errp = v
}

func fail(kind, format string, args ...any) {
	v := &Violation{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if _, file, line, ok := runtime.Caller(2); ok {
		v.Caller = fmt.Sprintf("%s:%d", file, line)
	}
	panic(v)
}
