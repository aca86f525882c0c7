package logging

import (
	"fmt"
	"io"
	"os"
)

// debugOutput is where debug lines go; stdout carries command output.
var debugOutput io.Writer = os.Stderr

// DebugEnabled returns true if debug mode is enabled via HABIT_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv("HABIT_DEBUG") != ""
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintf(debugOutput, format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Fprintln(debugOutput, args...)
	}
}
