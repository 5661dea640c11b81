// Package tui holds the terminal presentation helpers used by the
// interactive runner.
package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner with a gradient color scheme.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`  ___ ___  _ ____   _____  `, "#818cf8"},
		{` / __/ _ \| '_ \ \ / / _ \ `, "#a78bfa"},
		{`| (_| (_) | | | \ V / (_) |`, "#c084fc"},
		{` \___\___/|_| |_|\_/ \___/ `, "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, line := range lines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}
