package cmd

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
)

var rawMarkdown = flag.Bool("raw", false, "print reports as raw markdown instead of rendering them")

// printMarkdown renders md for the terminal, or prints it as is when it cannot.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}
