// Package renderer displays scan results as markdown, JSON or styled
// terminal text.
package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/northcutted/scanmodel/pkg/types"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatText     = "text"
)

// RenderOptions controls what part of a result is shown and how.
type RenderOptions struct {
	Title          string
	SortBySeverity bool
	// MinSeverity hides findings below it. Empty shows everything.
	MinSeverity types.Severity
	NoColor     bool
}

// TemplateSelection picks a built-in template by Name or a template file by
// Path. The zero value selects the default built-in.
type TemplateSelection struct {
	Name string
	Path string
}

// Format returns the output format the selection produces.
func (s TemplateSelection) Format() string {
	if s.Path != "" {
		return FormatMarkdown
	}
	if b, ok := builtins[s.Name]; ok {
		return b.format
	}
	return FormatMarkdown
}

// ReportContext holds all data passed to a template.
type ReportContext struct {
	Title          string
	Success        bool
	Timestamp      time.Time
	Error          string
	Kind           types.ResultKind
	Findings       []types.Vulnerability
	Hidden         int
	PatchesApplied []string
	Summary        *types.Summary
	Counts         types.SeveritySummary
}

// NewReportContext prepares r for a template. Counts always cover every
// finding, including those hidden by MinSeverity.
func NewReportContext(r *types.ScanResult, opts RenderOptions) ReportContext {
	ctx := ReportContext{
		Title:          opts.Title,
		Success:        r.Success(),
		Timestamp:      r.Timestamp(),
		Kind:           r.Kind(),
		PatchesApplied: r.PatchesApplied(),
	}
	if ctx.Title == "" {
		ctx.Title = "Scan Report"
	}
	if msg, ok := r.ErrorMessage(); ok {
		ctx.Error = msg
	}
	if s, ok := r.Summary(); ok {
		ctx.Summary = &s
	}

	findings := r.Findings()
	ctx.Counts = types.Summarize(findings)
	if opts.MinSeverity != "" {
		shown := types.FilterBySeverity(findings, opts.MinSeverity)
		ctx.Hidden = len(findings) - len(shown)
		findings = shown
	}
	if opts.SortBySeverity {
		findings = types.SortBySeverity(findings)
	}
	ctx.Findings = findings
	return ctx
}

var funcMap = template.FuncMap{
	"upper": func(s fmt.Stringer) string { return strings.ToUpper(s.String()) },
	"deref": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
	"count": func(s types.SeveritySummary, sev string) int { return s.BySeverity[types.Severity(sev)] },
	"rfc3339": func(t time.Time) string { return t.Format(time.RFC3339) },
	"escape": escapeCell,
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// escapeCell keeps a value inside a single markdown table cell.
func escapeCell(s string) string { return cellReplacer.Replace(s) }

// Render produces the document for r using the selected template.
func Render(r *types.ScanResult, opts RenderOptions, sel TemplateSelection) (string, error) {
	if r == nil {
		return "", fmt.Errorf("no result to render")
	}

	switch sel.Format() {
	case FormatJSON:
		return renderJSON(r, opts)
	case FormatText:
		return renderText(NewReportContext(r, opts), opts), nil
	}

	src, err := loadTemplate(sel)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New("scanmodel").Funcs(funcMap).Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewReportContext(r, opts)); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func loadTemplate(sel TemplateSelection) (string, error) {
	if sel.Path != "" {
		content, err := os.ReadFile(sel.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read template: %w", err)
		}
		return string(content), nil
	}
	name := sel.Name
	if name == "" {
		name = "default"
	}
	b, ok := builtins[name]
	if !ok {
		return "", fmt.Errorf("unknown built-in template: %s", name)
	}
	return b.source, nil
}

// ValidateTemplate parses a custom template file without executing it.
func ValidateTemplate(path string) error {
	src, err := loadTemplate(TemplateSelection{Path: path})
	if err != nil {
		return err
	}
	if _, err := template.New("scanmodel").Funcs(funcMap).Parse(src); err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return nil
}

// renderJSON writes the wire form. Sorting and filtering apply to the
// findings sequence; the summary is left as the producer sent it, so a
// filtered document is only emitted when it stays consistent.
func renderJSON(r *types.ScanResult, opts RenderOptions) (string, error) {
	w := r.Wire()
	if w.Findings != nil {
		findings := *w.Findings
		if opts.MinSeverity != "" {
			findings = types.FilterBySeverity(findings, opts.MinSeverity)
			if len(findings) != len(*w.Findings) {
				w.Summary = nil
			}
		}
		if opts.SortBySeverity {
			findings = types.SortBySeverity(findings)
		}
		w.Findings = &findings
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data) + "\n", nil
}
