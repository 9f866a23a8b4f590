package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/northcutted/scanmodel/pkg/runner"
	"github.com/northcutted/scanmodel/pkg/types"
)

var (
	ingestAction  string
	ingestScope   string
	ingestDepth   string
	ingestTimeout time.Duration
	ingestOutput  string
)

// newProducer builds the scanner ingest runs. Tests replace it.
var newProducer = func(timeout time.Duration) runner.Producer {
	return &runner.GrypeRunner{Timeout: timeout}
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <target>",
	Short: "Scan a target with grype and emit a scan result payload",
	Long: `Run grype against a target (image, directory or SBOM) and convert its
report into a scan result payload. Grype only reports, so --action patch is
rejected.`,
	Example: `  scanmodel ingest alpine:3.19
  scanmodel ingest dir:. --depth deep -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestAction, "action", "", "Action: check or report")
	ingestCmd.Flags().StringVar(&ingestScope, "scope", "", "Scope: system, network or device")
	ingestCmd.Flags().StringVar(&ingestDepth, "depth", "", "Depth: quick, normal or deep")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", runner.TimeoutScan, "Maximum time one scan may take")
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "", "Write the payload to this file instead of stdout")
	bindFlag(ingestCmd.Flags(), "timeout", "ingest.timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	params := types.ScanParams{Target: args[0]}
	flags := cmd.Flags()
	if flags.Changed("action") {
		params.Action = types.Ptr(types.Action(ingestAction))
	}
	if flags.Changed("scope") {
		params.Scope = types.Ptr(types.Scope(ingestScope))
	}
	if flags.Changed("depth") {
		params.Depth = types.Ptr(types.Depth(ingestDepth))
	}

	producer := newProducer(cfg.Ingest.Timeout)
	log.Info().Str("target", params.Target).Str("producer", producer.Name()).Msg("scanning")

	result, err := producer.Run(cmd.Context(), params)
	if err != nil {
		return fmt.Errorf("%s scan failed: %w", producer.Name(), err)
	}

	out, err := json.MarshalIndent(result.Wire(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	out = append(out, '\n')

	if ingestOutput == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(ingestOutput, out, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("path", ingestOutput).Int("findings", len(result.Findings())).Msg("wrote result")
	return nil
}
