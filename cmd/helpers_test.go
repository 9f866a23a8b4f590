// Shared helpers for command tests.
//
// Commands bind flags to package globals, so every test that executes a
// command uses defer resetFlags()() to restore them.
package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestMain(m *testing.M) {
	stderr = io.Discard
	rootCmd.SetErr(io.Discard)
	os.Exit(m.Run())
}

// captureOutput collects everything written to stdout while f runs.
func captureOutput(f func()) string {
	var buf bytes.Buffer
	old := stdout
	stdout = &buf
	defer func() { stdout = old }()

	f()
	return buf.String()
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	var err error
	output := captureOutput(func() {
		rootCmd.SetArgs(args)
		err = rootCmd.Execute()
	})
	return output, err
}

// resetFlags snapshots mutable globals and returns a func restoring them and
// every flag to its default.
func resetFlags() func() {
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	oldProducer := newProducer
	oldCfg := cfg

	return func() {
		Version, Commit, Date = oldVersion, oldCommit, oldDate
		newProducer = oldProducer
		cfg = oldCfg
		resetCommandFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

func resetCommandFlags(c *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, sub := range c.Commands() {
		resetCommandFlags(sub)
	}
}

func TestCheckToolStatus(t *testing.T) {
	status := checkToolStatus()

	if !strings.Contains(status, "Producers:") {
		t.Error("expected 'Producers:' header in status")
	}
	if !strings.Contains(status, "grype") {
		t.Error("expected grype in producer status")
	}
}
