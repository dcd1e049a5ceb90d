// Package debug provides env-gated diagnostic output for groomer.
//
// Debug output goes to stderr so it never corrupts the MCP stdio protocol
// or JSON command output on stdout.
package debug

import (
	"fmt"
	"os"
)

var (
	enabled     = os.Getenv("GROOMER_DEBUG") != ""
	verboseMode = false
	quietMode   = false
)

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

func Logf(format string, args ...interface{}) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled.
// Use this for informational output that should be suppressed in quiet mode.
func PrintNormal(format string, args ...interface{}) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}
