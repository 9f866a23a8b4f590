// Test file for output path resolution helpers.
//
// No globals are mutated by these tests; all functions are pure.
package cmd

import (
	"path/filepath"
	"testing"
)

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		format   string
		expected string
	}{
		{"markdown keeps extension", "README.md", "markdown", "README.md"},
		{"json keeps explicit extension", "out.txt", "json", "out.txt"},
		{"bare name gets json", "report", "json", "report.json"},
		{"bare name gets text", "report", "text", "report.txt"},
		{"bare name gets markdown", "report", "markdown", "report.md"},
		{"subdirectory", filepath.Join("docs", "scan"), "json", filepath.Join("docs", "scan.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resolveOutputPath(tt.output, tt.format)
			if result != tt.expected {
				t.Errorf("resolveOutputPath(%q, %q) = %q, want %q", tt.output, tt.format, result, tt.expected)
			}
		})
	}
}
