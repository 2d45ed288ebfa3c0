// Package report renders a prediction's StageView for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/smartpaddy/advisor/pkg/domain"
)

// Format selects an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// NotAvailable is shown for a nutrient the response left out.
const NotAvailable = "n/a"

// ParseFormat validates s. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case FormatText, FormatMarkdown, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q: must be one of: text, markdown, json, yaml", s)
}

// Write renders view to w. Markdown is written raw; use RenderMarkdown for
// terminal output.
func Write(w io.Writer, view domain.StageView, format Format) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(w, PlainText(view))
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(view))
		return err
	case FormatJSON, FormatYAML:
		return Encode(w, view, format)
	}
	return fmt.Errorf("report: unknown format %q", format)
}

// Encode writes v as indented JSON or YAML.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("report: %s is not a data format", format)
}

// PlainText is the copyable form of view: one block per stage, then the
// fertilizer block when present.
func PlainText(view domain.StageView) string {
	var b strings.Builder
	for i, s := range view.Stages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s.Name)
		b.WriteByte('\n')
		if len(s.Fields) == 0 {
			b.WriteString("  (no recommendations)\n")
		}
		for _, f := range s.Fields {
			fmt.Fprintf(&b, "  %s: %s\n", f.Label, domain.FormatValue(f.Value))
		}
	}
	if fb := view.Fertilizer; fb != nil {
		b.WriteString("\nFertilizer Recommendation\n")
		for _, n := range Nutrients(fb) {
			fmt.Fprintf(&b, "  %s: %s kg\n", n.Name, n.Amount)
		}
	}
	return b.String()
}

// Markdown is view as a markdown document.
func Markdown(view domain.StageView) string {
	var b strings.Builder
	b.WriteString("# Cultivation Plan\n")
	for _, s := range view.Stages {
		fmt.Fprintf(&b, "\n## %s\n\n", s.Name)
		if len(s.Fields) == 0 {
			b.WriteString("_No recommendations._\n")
			continue
		}
		for _, f := range s.Fields {
			fmt.Fprintf(&b, "- **%s**: %s\n", f.Label, domain.FormatValue(f.Value))
		}
	}
	if fb := view.Fertilizer; fb != nil {
		b.WriteString("\n## Fertilizer Recommendation\n\n| Nutrient | Amount (kg) |\n|---|---|\n")
		for _, n := range Nutrients(fb) {
			fmt.Fprintf(&b, "| %s | %s |\n", n.Name, n.Amount)
		}
	}
	return b.String()
}

// RenderMarkdown styles md for a terminal of the given width. styled=false
// renders without colour escapes.
func RenderMarkdown(md string, width int, styled bool) (string, error) {
	if width <= 0 {
		width = 80
	}
	style := glamour.WithStandardStyle("notty")
	if styled {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("report.RenderMarkdown: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("report.RenderMarkdown: %w", err)
	}
	return out, nil
}

// Nutrient is one display line of the fertilizer block.
type Nutrient struct {
	Name   string
	Amount string
}

// Nutrients lists TSP, MOP and Urea in that order, with NotAvailable for
// missing amounts.
func Nutrients(fb *domain.FertilizerBlock) []Nutrient {
	if fb == nil {
		return nil
	}
	amount := func(v any) string {
		if v == nil {
			return NotAvailable
		}
		return domain.FormatValue(v)
	}
	return []Nutrient{
		{"TSP", amount(fb.TSP)},
		{"MOP", amount(fb.MOP)},
		{"Urea", amount(fb.Urea)},
	}
}
