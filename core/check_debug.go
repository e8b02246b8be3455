//go:build debug

package core

import "fmt"

// DebugChecks reports whether invariant checks are compiled in
const DebugChecks = true

// Fail reports a programming error. Under the debug tag it panics so the
// violation surfaces at the point of the bug
func Fail(format string, args ...any) {
	panic(fmt.Sprintf(format, args...))
}

// Check panics with the given message when cond is false
func Check(cond bool, format string, args ...any) {
	if !cond {
		Fail(format, args...)
	}
}
