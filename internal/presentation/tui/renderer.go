package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders assistant replies using glamour.
// Replies are written line by line, so every newline becomes a hard break.
// A positive width wraps long lines.
func NewRenderer(width int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return plain
	}

	return func(reply string) (string, error) {
		return r.Render(hardBreaks(reply))
	}
}

func plain(reply string) (string, error) {
	return reply + "\n", nil
}

func hardBreaks(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines[:len(lines)-1] {
		if strings.TrimSpace(l) != "" && strings.TrimSpace(lines[i+1]) != "" {
			lines[i] = l + "  "
		}
	}
	return strings.Join(lines, "\n")
}
