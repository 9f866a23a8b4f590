package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/northcutted/scanmodel/pkg/config"
)

// configKeyAnnotation marks flags that override a config key.
const configKeyAnnotation = "scanmodel/config-key"

// bindFlag ties a flag to a dotted config key. Only flags set explicitly on
// the command line override the config.
func bindFlag(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
		panic(err)
	}
}

// flagOverrides collects the config keys of every changed, bound flag.
func flagOverrides(fs *pflag.FlagSet) map[string]any {
	overrides := map[string]any{}
	fs.Visit(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 {
			return
		}
		overrides[keys[0]] = flagValue(f)
	})
	return overrides
}

func flagValue(f *pflag.Flag) any {
	raw := f.Value.String()
	switch f.Value.Type() {
	case "bool":
		return cast.ToBool(raw)
	case "int":
		return cast.ToInt(raw)
	case "duration":
		return cast.ToDuration(raw)
	default:
		return raw
	}
}

// loadConfig merges defaults, the config file, the environment and flags
// into cfg.
func loadConfig(cmd *cobra.Command) error {
	path := configFile
	if path == "" {
		if _, err := os.Stat(config.DefaultFile); err == nil {
			path = config.DefaultFile
		}
	}

	loaded, err := config.Load(path, flagOverrides(cmd.Flags()))
	if err != nil {
		return err
	}
	cfg = loaded
	if path != "" {
		log.Debug().Str("path", path).Msg("loaded config file")
	}
	return nil
}

// setupLogging configures the global zerolog logger. --verbose forces debug.
func setupLogging(lc config.LogConfig, verbose bool) {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if lc.Format == "json" {
		log.Logger = zerolog.New(stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
}
