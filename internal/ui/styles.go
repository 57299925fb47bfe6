package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 114 // green
	colorCmd    = 252 // light gray
	colorMuted  = 244 // medium gray
)

var noColor bool

// RenderAccent returns s in the accent color.
func RenderAccent(s string) string {
	return render(colorAccent, s)
}

// RenderMuted returns s in the muted gray.
func RenderMuted(s string) string {
	return render(colorMuted, s)
}

// RenderCommand returns s styled as a command name.
func RenderCommand(s string) string {
	return render(colorCmd, s)
}

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
