package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the scenery ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ___  ___ ___ _ __   ___ _ __ _   _ ", "#818cf8"},
		{" / __|/ __/ _ \\ '_ \\ / _ \\ '__| | | |", "#a78bfa"},
		{" \\__ \\ (_|  __/ | | |  __/ |  | |_| |", "#c084fc"},
		{" |___/\\___\\___|_| |_|\\___|_|   \\__, |", "#e879f9"},
		{"                                |___/ ", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
