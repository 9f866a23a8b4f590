package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/northcutted/scanmodel/pkg/config"
)

// Build metadata, set through -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// stderr receives log output.
var stderr io.Writer = os.Stderr

var (
	configFile       string
	verbose          bool
	logLevel         string
	logFormat        string
	listTemplates    bool
	exportTemplate   string
	validateTemplate string
)

// cfg is the merged configuration for the running command.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "scanmodel",
	Short: "Validate, render and ingest security scan results",
	Long: `Work with security scan requests and results.

scanmodel checks scan parameters and scan result payloads against the result
model, renders reports from valid results and converts scanner output into
result payloads.

Settings are read, in increasing precedence, from built-in defaults,
scanmodel.yaml (or --config), SCANMODEL_* environment variables and flags.`,
	Example: `  # Validate scan parameters
  scanmodel params --target 192.168.1.10 --action check --depth deep

  # Validate a batch of result payloads
  scanmodel validate results/*.json

  # Render a report into README.md between scanmodel markers
  scanmodel report result.json -o README.md

  # Scan an image with grype and emit a result payload
  scanmodel ingest alpine:3.19 -o result.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		setupLogging(cfg.Log, verbose)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Template developer flags exit early
		if listTemplates {
			return handleListTemplates()
		}
		if exportTemplate != "" {
			return handleExportTemplate(exportTemplate)
		}
		if validateTemplate != "" {
			return handleValidateTemplate(validateTemplate)
		}
		return cmd.Help()
	},
}

// Execute runs the root cobra command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Dynamically append producer status to the help description
	rootCmd.Long += "\n" + checkToolStatus()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: scanmodel.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	bindFlag(rootCmd.PersistentFlags(), "log-level", "log.level")
	bindFlag(rootCmd.PersistentFlags(), "log-format", "log.format")

	// Template flags
	rootCmd.Flags().BoolVar(&listTemplates, "list-templates", false, "List all available built-in templates")
	rootCmd.Flags().StringVar(&exportTemplate, "export-template", "", "Export a built-in template to stdout (e.g. 'default')")
	rootCmd.Flags().StringVar(&validateTemplate, "validate-template", "", "Validate a custom template file for syntax errors")

	rootCmd.AddCommand(paramsCmd, validateCmd, reportCmd, ingestCmd, versionCmd)

	// Add version flag as shortcut for "version" command
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("scanmodel {{.Version}}\n")
}
