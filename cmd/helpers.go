package cmd

import (
	"fmt"
	"strings"

	"github.com/northcutted/scanmodel/pkg/runner"
)

// producers lists the scanners ingest can drive.
func producers() []runner.Producer {
	return []runner.Producer{&runner.GrypeRunner{}}
}

// checkToolStatus returns a string indicating the status of external scanners.
func checkToolStatus() string {
	var status strings.Builder
	status.WriteString("\nProducers:\n")
	for _, p := range producers() {
		if p.IsAvailable() {
			fmt.Fprintf(&status, "  [OK] %s\n", p.Name())
		} else {
			fmt.Fprintf(&status, "  [MISSING] %s (required for 'scanmodel ingest')\n", p.Name())
		}
	}
	return status.String()
}
