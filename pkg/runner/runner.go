// Package runner adapts external scanners into producers of scan results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/northcutted/scanmodel/pkg/types"
)

// TimeoutScan bounds a single scanner invocation unless the caller's
// context is shorter.
const TimeoutScan = 5 * time.Minute

// lookupTool resolves the path to an external tool binary.
var lookupTool = exec.LookPath

// Producer is an external scan engine whose output becomes a ScanResult.
type Producer interface {
	Name() string
	IsAvailable() bool
	Run(ctx context.Context, target types.ScanParams) (*types.ScanResult, error)
}

// runCommand executes cmd and returns its stdout. Stderr is folded into the
// error when the command fails.
func runCommand(cmd *exec.Cmd) ([]byte, error) {
	log.Debug().Str("cmd", cmd.String()).Msg("running")

	output, err := cmd.Output()
	if err != nil {
		var stderr []byte
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr = exitErr.Stderr
		}
		return nil, fmt.Errorf("command failed: %w\nStderr: %s", err, string(stderr))
	}

	log.Debug().Int("bytes", len(output)).Msg("command output")
	return output, nil
}
