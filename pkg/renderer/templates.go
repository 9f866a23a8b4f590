package renderer

import "sort"

type builtin struct {
	format      string
	description string
	source      string
}

// BuiltinInfo describes a built-in template.
type BuiltinInfo struct {
	Name        string
	Format      string
	Description string
}

const defaultTemplate = `## {{ .Title }}

| Field | Value |
|-------|-------|
| Status | {{ if .Success }}success{{ else }}failed{{ end }} |
| Timestamp | {{ rfc3339 .Timestamp }} |
{{- if .Error }}
| Error | {{ escape .Error }} |
{{- end }}
{{- with .Summary }}
| Summary | {{ .Total }} total, {{ .Successful }} successful, {{ .Failed }} failed |
{{- end }}
{{- if eq (print .Kind) "findings" }}

### Security Summary
Critical: {{ count .Counts "critical" }} | High: {{ count .Counts "high" }} | Medium: {{ count .Counts "medium" }} | Low: {{ count .Counts "low" }}

{{- if .Findings }}

| ID | Severity | Type | Description | CVE | Recommendation |
|----|----------|------|-------------|-----|----------------|
{{- range .Findings }}
| {{ escape .ID }} | {{ upper .Severity }} | {{ escape .Type }} | {{ escape .Description }} | {{ escape (deref .CVE) }} | {{ escape (deref .Recommendation) }} |
{{- end }}
{{- else }}

*No findings.*
{{- end }}
{{- if .Hidden }}

*{{ .Hidden }} lower-severity finding(s) hidden.*
{{- end }}
{{- end }}
{{- if .PatchesApplied }}

### Patches Applied
{{- range .PatchesApplied }}
- {{ . }}
{{- end }}
{{- end }}
`

const minimalTemplate = `**{{ .Title }}**: {{ if .Success }}success{{ else }}failed ({{ .Error }}){{ end }} at {{ rfc3339 .Timestamp }}
{{- if eq (print .Kind) "findings" }} | {{ .Counts.Total }} finding(s): {{ count .Counts "critical" }} critical, {{ count .Counts "high" }} high, {{ count .Counts "medium" }} medium, {{ count .Counts "low" }} low
{{- end }}
{{- if .PatchesApplied }} | patched: {{ range $i, $p := .PatchesApplied }}{{ if $i }}, {{ end }}{{ $p }}{{ end }}
{{- end }}
`

var builtins = map[string]builtin{
	"default": {format: FormatMarkdown, description: "Status table, severity counts and a findings table", source: defaultTemplate},
	"minimal": {format: FormatMarkdown, description: "One-line status with severity counts", source: minimalTemplate},
	"json":    {format: FormatJSON, description: "Indented JSON wire form"},
	"text":    {format: FormatText, description: "Colored terminal output"},
}

// IsBuiltin reports whether name is a built-in template.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// ListBuiltin returns every built-in template sorted by name.
func ListBuiltin() []BuiltinInfo {
	out := make([]BuiltinInfo, 0, len(builtins))
	for name, b := range builtins {
		out = append(out, BuiltinInfo{Name: name, Format: b.format, Description: b.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ExportBuiltin returns the source of a markdown built-in so it can be used
// as a starting point for a custom template.
func ExportBuiltin(name string) (string, bool) {
	b, ok := builtins[name]
	if !ok || b.source == "" {
		return "", false
	}
	return b.source, true
}
