// Package config resolves pack settings from flags, DRIVEPACK_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zeldaos/drivepack/pkg/packer"
)

const (
	EnvPrefix = "DRIVEPACK"

	KeyRoot     = "root"
	KeyOutput   = "output"
	KeySymlinks = "symlinks"
	KeyExclude  = "exclude"
	KeyStaging  = "staging"
	KeyChecksum = "checksum"

	// Defaults mirror the layout of the OS source tree: the drive contents
	// live in ./root and the image is written next to the packer directory.
	DefaultRoot   = "root"
	DefaultOutput = "../Zelda" + packer.ArchiveExtension
)

type Config struct {
	Root     string
	Output   string
	Symlinks packer.SymlinkPolicy
	Exclude  []string
	Staging  bool
	Checksum bool
}

func Default() Config {
	return Config{
		Root:     DefaultRoot,
		Output:   DefaultOutput,
		Symlinks: packer.SymlinkSkip,
	}
}

// Load merges flags, environment and cfgFile (when not empty) into a Config.
// flags may be nil.
func Load(flags *pflag.FlagSet, cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault(KeyRoot, defaults.Root)
	v.SetDefault(KeyOutput, defaults.Output)
	v.SetDefault(KeySymlinks, string(defaults.Symlinks))
	v.SetDefault(KeyExclude, []string{})
	v.SetDefault(KeyStaging, defaults.Staging)
	v.SetDefault(KeyChecksum, defaults.Checksum)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		slog.Debug("Loaded config file", slog.String("path", v.ConfigFileUsed()))
	}

	if flags != nil {
		for _, key := range []string{KeyRoot, KeyOutput, KeySymlinks, KeyExclude, KeyStaging, KeyChecksum} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	cfg := &Config{
		Root:     v.GetString(KeyRoot),
		Output:   v.GetString(KeyOutput),
		Symlinks: packer.SymlinkPolicy(v.GetString(KeySymlinks)),
		Exclude:  splitList(v.GetStringSlice(KeyExclude)),
		Staging:  v.GetBool(KeyStaging),
		Checksum: v.GetBool(KeyChecksum),
	}
	if err := cfg.Symlinks.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeySymlinks, err)
	}
	if cfg.Root == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyRoot)
	}
	if cfg.Output == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyOutput)
	}
	return cfg, nil
}

// splitList splits comma-separated items so DRIVEPACK_EXCLUDE="a,b" reads the
// same as -x a,b. viper only splits environment values on whitespace.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
