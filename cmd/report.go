package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/northcutted/scanmodel/pkg/injector"
	"github.com/northcutted/scanmodel/pkg/parser"
	"github.com/northcutted/scanmodel/pkg/renderer"
	"github.com/northcutted/scanmodel/pkg/types"
)

var (
	templateName   string
	reportTitle    string
	sortFindings   bool
	minSeverity    string
	noColor        bool
	outputFile     string
	markerName     string
	dryRun         bool
	debugTemplate  bool
	reportInFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report <file|->",
	Short: "Render a report from a scan result payload",
	Long: `Render a validated scan result with a built-in or custom template.

Markdown output is injected between the scanmodel markers of an existing
output file:

  <!-- BEGIN: scanmodel -->
  <!-- END: scanmodel -->

JSON and text output are written to the output file directly. Without an
output file, or with --dry-run, the report goes to stdout.`,
	Example: `  scanmodel report result.json
  scanmodel report result.json --sort --min-severity high -o README.md
  scanmodel report result.yaml --template text
  cat result.json | scanmodel report - --template minimal`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&templateName, "template", "default", "Template to use (built-in name or file path)")
	reportCmd.Flags().StringVar(&reportTitle, "title", "Scan Report", "Report heading")
	reportCmd.Flags().BoolVar(&sortFindings, "sort", false, "Order findings from critical to low")
	reportCmd.Flags().StringVar(&minSeverity, "min-severity", "", "Hide findings below this severity")
	reportCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors in text output")
	reportCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Path to output file")
	reportCmd.Flags().StringVar(&markerName, "marker", "", "Marker name for injection (scanmodel:<name>)")
	reportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print to stdout instead of writing to file")
	reportCmd.Flags().BoolVar(&debugTemplate, "debug-template", false, "Log template resolution info during rendering")
	reportCmd.Flags().StringVar(&reportInFormat, "input-format", "", "Payload format when reading stdin (json, yaml)")

	bindFlag(reportCmd.Flags(), "template", "report.template")
	bindFlag(reportCmd.Flags(), "title", "report.title")
	bindFlag(reportCmd.Flags(), "sort", "report.sort")
	bindFlag(reportCmd.Flags(), "min-severity", "report.min_severity")
	bindFlag(reportCmd.Flags(), "no-color", "report.no_color")
	bindFlag(reportCmd.Flags(), "output", "report.output")
	bindFlag(reportCmd.Flags(), "marker", "report.marker")
}

func runReport(cmd *cobra.Command, args []string) error {
	result, err := readResult(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	sel := resolveTemplateSel(cfg.Report.Template)
	if debugTemplate {
		log.Debug().Str("template", describeTemplate(sel)).Str("format", sel.Format()).Msg("template resolved")
	}

	opts := renderer.RenderOptions{
		Title:          cfg.Report.Title,
		SortBySeverity: cfg.Report.Sort,
		MinSeverity:    types.Severity(cfg.Report.MinSeverity),
		NoColor:        cfg.Report.NoColor,
	}
	rendered, err := renderer.Render(result, opts, sel)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	output := cfg.Report.Output
	if dryRun || output == "" {
		fmt.Fprintln(stdout, rendered)
		return nil
	}

	format := sel.Format()
	if format != renderer.FormatMarkdown {
		outPath := resolveOutputPath(output, format)
		if err := os.WriteFile(outPath, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().Str("path", outPath).Msg("wrote output file")
		return nil
	}

	// Markdown: inject into the existing file between markers
	content, err := os.ReadFile(output)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("file", output).Msg("output file does not exist, printing to stdout")
			fmt.Fprintln(stdout, rendered)
			return nil
		}
		return err
	}

	updated, err := injector.Inject(string(content), cfg.Report.Marker, rendered)
	if err != nil {
		log.Warn().Err(err).Msg("injection failed, printing to stdout")
		fmt.Fprintln(stdout, rendered)
		return nil
	}
	if err := os.WriteFile(output, []byte(updated), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("path", output).Msg("updated output file")
	return nil
}

// readResult loads a payload from path, or from in when path is "-".
func readResult(in io.Reader, path string) (*types.ScanResult, error) {
	if path != "-" {
		return parser.ParseResultFile(path)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	format := parser.FormatJSON
	if reportInFormat != "" {
		format = parser.Format(reportInFormat)
	}
	return parser.DecodeResult(data, format)
}
