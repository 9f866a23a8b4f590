// Package injector splices rendered reports into existing documents between
// marker comments.
package injector

import (
	"fmt"
	"strings"
)

const tool = "scanmodel"

// Markers returns the begin and end comments for a named section. An empty
// name gives the default markers.
func Markers(name string) (begin, end string) {
	id := tool
	if name != "" {
		id += ":" + name
	}
	return "<!-- BEGIN: " + id + " -->", "<!-- END: " + id + " -->"
}

// Inject replaces whatever sits between the markers for name with section.
// The markers themselves are kept.
func Inject(content, name, section string) (string, error) {
	begin, end := Markers(name)

	start := strings.Index(content, begin)
	if start == -1 {
		return "", fmt.Errorf("marker %q not found", begin)
	}
	bodyStart := start + len(begin)

	stop := strings.Index(content[bodyStart:], end)
	if stop == -1 {
		return "", fmt.Errorf("marker %q not found after %q", end, begin)
	}
	stop += bodyStart

	var b strings.Builder
	b.WriteString(content[:bodyStart])
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(section))
	b.WriteString("\n")
	b.WriteString(content[stop:])
	return b.String(), nil
}
