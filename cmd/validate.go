package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/northcutted/scanmodel/pkg/analysis"
	"github.com/northcutted/scanmodel/pkg/verify"
)

var (
	validateConcurrency int
	validateKeyring     string
	signatureSuffix     string
	ignoreErrors        bool
	lenient             bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate scan result payloads",
	Long: `Decode and validate scan result payloads (JSON or YAML) concurrently.

Each payload is reported on its own line followed by batch totals. With
--lenient string booleans and numeric strings are coerced. With
--keyring every payload must carry a detached OpenPGP signature next to it
(<file>.asc by default) made by a key in the keyring.`,
	Example: `  scanmodel validate results/*.json
  scanmodel validate --keyring trusted.asc result.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().IntVar(&validateConcurrency, "concurrency", 4, "Maximum payloads validated at once")
	validateCmd.Flags().StringVar(&validateKeyring, "keyring", "", "Armored public keyring; enables signature checks")
	validateCmd.Flags().StringVar(&signatureSuffix, "signature-suffix", ".asc", "Suffix appended to a payload path to find its signature")
	validateCmd.Flags().BoolVar(&lenient, "lenient", false, "Accept loosely typed values such as \"true\" or \"3\"")
	validateCmd.Flags().BoolVar(&ignoreErrors, "ignore-errors", false, "Exit successfully even when payloads are invalid (default false)")
	bindFlag(validateCmd.Flags(), "concurrency", "validate.concurrency")
	bindFlag(validateCmd.Flags(), "keyring", "verify.keyring")
}

func runValidate(cmd *cobra.Command, args []string) error {
	opts := analysis.Options{
		Concurrency: cfg.Validate.Concurrency,
		Lenient:     lenient,
	}

	if cfg.Verify.Keyring != "" {
		keys, err := verify.LoadKeyring(cfg.Verify.Keyring)
		if err != nil {
			return err
		}
		verifier := verify.NewVerifier(keys)
		log.Debug().Int("keys", verifier.KeyCount()).Msg("signature checks enabled")
		opts.Verify = signatureCheck(verifier, signatureSuffix)
	}

	reports, err := analysis.ValidateFiles(cmd.Context(), args, opts)
	if err != nil {
		return err
	}

	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintf(stdout, "FAIL  %s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(stdout, "OK    %s (%s)\n", r.Path, describeResult(r))
	}

	stats := analysis.Aggregate(reports)
	fmt.Fprintf(stdout, "\n%d file(s): %d valid, %d invalid\n", stats.Files, stats.Valid, stats.Invalid)
	if stats.Valid > 0 {
		bySev := stats.Findings.BySeverity
		fmt.Fprintf(stdout, "results: %d succeeded, %d failed, %d patch(es) applied\n", stats.Succeeded, stats.Failed, stats.PatchesApplied)
		fmt.Fprintf(stdout, "findings: %d total (critical=%d high=%d medium=%d low=%d)\n",
			stats.Findings.Total, bySev["critical"], bySev["high"], bySev["medium"], bySev["low"])
	}

	if stats.Invalid > 0 && !ignoreErrors {
		return fmt.Errorf("%d of %d payload(s) invalid", stats.Invalid, stats.Files)
	}
	return nil
}

func signatureCheck(v *verify.Verifier, suffix string) analysis.VerifyFunc {
	return func(_ context.Context, path string) error {
		signer, err := v.VerifyFile(path, path+suffix)
		if err != nil {
			return err
		}
		log.Debug().Str("path", path).Str("signer", signer).Msg("signature ok")
		return nil
	}
}

func describeResult(r analysis.FileReport) string {
	res := r.Result
	status := "success"
	if !res.Success() {
		status = "failed"
	}
	switch {
	case res.HasFindings():
		return fmt.Sprintf("%s, %d finding(s)", status, len(res.Findings()))
	case res.HasPatches():
		return fmt.Sprintf("%s, %d patch(es)", status, len(res.PatchesApplied()))
	default:
		return status
	}
}
