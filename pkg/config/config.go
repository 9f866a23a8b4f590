// Package config loads scanmodel settings from defaults, an optional YAML
// file, SCANMODEL_* environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/northcutted/scanmodel/pkg/types"
)

// DefaultFile is picked up from the working directory when no --config is
// given.
const DefaultFile = "scanmodel.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SCANMODEL_"

// Config is the merged configuration.
type Config struct {
	Log      LogConfig      `koanf:"log"`
	Report   ReportConfig   `koanf:"report"`
	Validate ValidateConfig `koanf:"validate"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Verify   VerifyConfig   `koanf:"verify"`
}

// LogConfig controls zerolog output.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // console, json
}

// ReportConfig holds rendering defaults.
type ReportConfig struct {
	Template    string `koanf:"template"`
	Title       string `koanf:"title"`
	Sort        bool   `koanf:"sort"`
	MinSeverity string `koanf:"min_severity"`
	NoColor     bool   `koanf:"no_color"`
	Output      string `koanf:"output"`
	Marker      string `koanf:"marker"`
}

// ValidateConfig tunes batch validation.
type ValidateConfig struct {
	Concurrency int `koanf:"concurrency"`
}

// IngestConfig tunes external producers.
type IngestConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// VerifyConfig points at the keyring used for payload signatures.
type VerifyConfig struct {
	Keyring string `koanf:"keyring"`
}

// Defaults returns the baseline configuration as a flat koanf map.
func Defaults() map[string]any {
	return map[string]any{
		"log.level":  "info",
		"log.format": "console",

		"report.template":     "default",
		"report.title":        "Scan Report",
		"report.sort":         false,
		"report.min_severity": "",
		"report.no_color":     false,
		"report.output":       "",
		"report.marker":       "",

		"validate.concurrency": 4,

		"ingest.timeout": "5m",

		"verify.keyring": "",
	}
}

// Load merges, in increasing precedence: defaults, the YAML file at path
// (skipped when path is empty), environment variables and overrides. Keys in
// overrides use the dotted form, e.g. "report.sort".
func Load(path string, overrides map[string]any) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("error loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("error loading config from environment: %w", err)
	}

	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return Config{}, fmt.Errorf("error loading flag overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps SCANMODEL_REPORT_MIN_SEVERITY to report.min_severity. Only the
// first underscore separates section from key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Check rejects settings the commands cannot act on.
func (c Config) Check() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Report.MinSeverity != "" && !types.Severity(c.Report.MinSeverity).IsValid() {
		errs = append(errs, fmt.Errorf("report.min_severity: %q is not one of %v", c.Report.MinSeverity, types.AllSeverities()))
	}
	if c.Validate.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("validate.concurrency: must not be negative"))
	}
	if c.Ingest.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("ingest.timeout: must be positive"))
	}

	return errors.Join(errs...)
}
