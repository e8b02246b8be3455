package core

import (
	"fmt"
	"os"
	"runtime/debug"
)

// HandleCrash is the unified panic handler for binaries embedding the engine.
// Prints the error and stack trace to stderr and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	os.Stdout.Sync()
	os.Stderr.Sync()

	fmt.Fprintf(os.Stderr, "\r\nSOFTKEY CRASHED: %v\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword so a crashed worker still reports
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
