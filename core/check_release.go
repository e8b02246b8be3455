//go:build !debug

package core

import "github.com/sirupsen/logrus"

// DebugChecks reports whether invariant checks are compiled in
const DebugChecks = false

// Fail reports a programming error. Release builds log and continue: the
// input path is foreground-critical, so availability wins over
// crash-on-invariant-violation
func Fail(format string, args ...any) {
	logrus.Errorf(format, args...)
}

// Check logs the given message when cond is false
func Check(cond bool, format string, args ...any) {
	if !cond {
		Fail(format, args...)
	}
}
