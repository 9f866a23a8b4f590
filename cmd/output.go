package cmd

import (
	"path/filepath"

	"github.com/northcutted/scanmodel/pkg/renderer"
)

// outputExtension maps a render format to a file extension.
func outputExtension(format string) string {
	switch format {
	case renderer.FormatJSON:
		return ".json"
	case renderer.FormatText:
		return ".txt"
	default:
		return ".md"
	}
}

// resolveOutputPath determines the output file path for a given template format.
// A path with an extension is used as-is; a bare name gets the extension of
// the format (e.g. report -> report.json).
func resolveOutputPath(output string, format string) string {
	if filepath.Ext(output) != "" {
		return output
	}
	return output + outputExtension(format)
}
