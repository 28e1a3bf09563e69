package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders bot replies as markdown using
// glamour. When stdout is not a terminal the text passes through untouched,
// so piped output stays clean.
func NewRenderer() func(string) (string, error) {
	if !IsInteractive() {
		return func(text string) (string, error) {
			return text + "\n", nil
		}
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsInteractive reports whether stdout is attached to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
