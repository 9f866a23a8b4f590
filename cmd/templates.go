package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/northcutted/scanmodel/pkg/renderer"
)

// resolveTemplateSel turns a template setting into a TemplateSelection.
// Values that look like file paths select a template file.
func resolveTemplateSel(name string) renderer.TemplateSelection {
	if name == "" {
		return renderer.TemplateSelection{}
	}
	// If it looks like a file path (contains / or .tmpl), treat as file
	if strings.Contains(name, "/") || strings.HasSuffix(name, ".tmpl") {
		return renderer.TemplateSelection{Path: name}
	}
	return renderer.TemplateSelection{Name: name}
}

// describeTemplate returns a human-readable description of the template being used.
func describeTemplate(sel renderer.TemplateSelection) string {
	if sel.Path != "" {
		return fmt.Sprintf("custom file: %s", sel.Path)
	}
	if sel.Name != "" {
		return fmt.Sprintf("built-in: %s", sel.Name)
	}
	return "built-in: default"
}

// handleListTemplates prints all available built-in templates.
func handleListTemplates() error { //nolint:unparam // error return is part of RunE handler contract
	fmt.Fprintln(stdout, "Available built-in templates:")
	fmt.Fprintln(stdout)
	for _, b := range renderer.ListBuiltin() {
		fmt.Fprintf(stdout, "  %-10s  [%s]  %s\n", b.Name, b.Format, b.Description)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintln(stdout, "  scanmodel report <file> --template <name>")
	fmt.Fprintln(stdout, "  scanmodel --export-template <name> > my-template.tmpl")
	return nil
}

// handleExportTemplate exports a built-in template to stdout.
func handleExportTemplate(name string) error {
	if !renderer.IsBuiltin(name) {
		return fmt.Errorf("unknown built-in template: %s (use --list-templates to see available templates)", name)
	}
	content, ok := renderer.ExportBuiltin(name)
	if !ok {
		return fmt.Errorf("built-in template %s is generated in code and cannot be exported", name)
	}
	if _, err := fmt.Fprint(stdout, content); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}

// handleValidateTemplate validates a custom template file for syntax errors.
func handleValidateTemplate(path string) error {
	if err := renderer.ValidateTemplate(path); err != nil {
		log.Error().Str("path", path).Err(err).Msg("template validation failed")
		return err
	}
	fmt.Fprintf(stdout, "Template %s is valid.\n", path)
	return nil
}
