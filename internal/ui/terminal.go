// Package ui holds the terminal color helpers the CLI output uses.
package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor reports whether ANSI colors should be written to
// stdout. It honors an explicit ForceNoColor call, then NO_COLOR,
// CLICOLOR_FORCE, CLICOLOR, and finally TTY detection.
func ShouldUseColor() bool {
	if noColor {
		return false
	}
	// https://no-color.org — any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
