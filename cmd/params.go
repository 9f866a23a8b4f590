package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/northcutted/scanmodel/pkg/parser"
)

var (
	paramsTarget string
	paramsAction string
	paramsScope  string
	paramsDepth  string
)

var paramsCmd = &cobra.Command{
	Use:   "params [file]",
	Short: "Validate scan parameters",
	Long: `Validate a scan request and print its normalized JSON form.

Parameters are read from a JSON or YAML file when one is given. Flags
override individual fields, so a file may leave the target to the command
line. Fields left unspecified stay absent.`,
	Example: `  scanmodel params --target 10.0.0.5 --scope network
  scanmodel params request.yaml --depth quick`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParams,
}

func init() {
	paramsCmd.Flags().StringVar(&paramsTarget, "target", "", "Scan target (host, address or image)")
	paramsCmd.Flags().StringVar(&paramsAction, "action", "", "Action: check, patch or report")
	paramsCmd.Flags().StringVar(&paramsScope, "scope", "", "Scope: system, network or device")
	paramsCmd.Flags().StringVar(&paramsDepth, "depth", "", "Depth: quick, normal or deep")
}

func runParams(cmd *cobra.Command, args []string) error {
	fields := map[string]any{}
	if len(args) == 1 {
		f, err := parser.ReadFields(args[0])
		if err != nil {
			return err
		}
		fields = f
	}

	flags := cmd.Flags()
	for name, value := range map[string]string{
		"target": paramsTarget,
		"action": paramsAction,
		"scope":  paramsScope,
		"depth":  paramsDepth,
	} {
		if flags.Changed(name) {
			fields[name] = value
		}
	}

	valid, err := parser.ParamsFromMap(fields)
	if err != nil {
		return fmt.Errorf("invalid scan parameters: %w", err)
	}
	log.Debug().Str("target", valid.Target).Msg("scan parameters valid")

	out, err := json.MarshalIndent(valid, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	fmt.Fprintln(stdout, string(out))
	return nil
}
