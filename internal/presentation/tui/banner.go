package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Teller.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Amen Bank green, fading to teal
	lines := []struct{ text, color string }{
		{" _____    _ _           ", "#15803d"},
		{"|_   _|__| | | ___ _ __ ", "#16a34a"},
		{"  | |/ _ \\ | |/ _ \\ '__|", "#22c55e"},
		{"  | |  __/ | |  __/ |   ", "#14b8a6"},
		{"  |_|\\___|_|_|\\___|_|   ", "#0d9488"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  assistant bancaire v"+v).Faint())
	}
	fmt.Fprintln(w)
}
