// Package renderer renders vth reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"rate": formatRate,
}

// formatRate prints a rate with up to 8 significant digits and no exponent.
func formatRate(r float64) string {
	s := strconv.FormatFloat(r, 'g', 8, 64)
	if strings.ContainsAny(s, "e") {
		s = strconv.FormatFloat(r, 'f', -1, 64)
	}
	return s
}

// RenderValuation renders a portfolio valuation to a markdown string.
func RenderValuation(v *Valuation) string {
	partials := map[string]string{
		"valuation_title":   "valuation_title.md",
		"valuation_wallets": "valuation_wallets.md",
	}
	return renderTemplate("valuation", "valuation.md", partials, v)
}

// RenderRates renders the current rate table to a markdown string.
func RenderRates(r *Rates) string {
	partials := map[string]string{
		"rates_title":  "rates_title.md",
		"rates_table":  "rates_table.md",
		"rates_errors": "rates_errors.md",
	}
	return renderTemplate("rates", "rates.md", partials, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
