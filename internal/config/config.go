// Package config loads paramflow settings from .paramflow.yaml, PARAMFLOW_*
// environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/phillarmonic/paramflow/internal/resolver"
	"github.com/phillarmonic/paramflow/internal/secrets"
)

// FileName is the settings file looked up in the working directory and $HOME
const FileName = ".paramflow"

// EnvPrefix prefixes environment overrides: PARAMFLOW_LOG_LEVEL sets log.level
const EnvPrefix = "PARAMFLOW"

// Interactive modes
const (
	InteractiveAuto   = "auto"
	InteractiveAlways = "always"
	InteractiveNever  = "never"
)

// Config holds resolved settings
type Config struct {
	Log         LogConfig     `mapstructure:"log"`
	Interactive string        `mapstructure:"interactive"`
	Prompt      PromptConfig  `mapstructure:"prompt"`
	Schema      string        `mapstructure:"schema"`
	Environment string        `mapstructure:"environment"`
	EnvFiles    []string      `mapstructure:"env_files"`
	Keyring     KeyringConfig `mapstructure:"keyring"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type PromptConfig struct {
	Optional bool `mapstructure:"optional"`
	Attempts int  `mapstructure:"attempts"`
	Groups   bool `mapstructure:"groups"`
}

type KeyringConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Service string `mapstructure:"service"`
}

// New returns a viper instance with defaults, the settings file search path
// and environment overrides configured
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("interactive", InteractiveAuto)
	v.SetDefault("prompt.optional", false)
	v.SetDefault("prompt.attempts", resolver.DefaultMaxPromptAttempts)
	v.SetDefault("prompt.groups", true)
	v.SetDefault("schema", "")
	v.SetDefault("environment", "")
	v.SetDefault("env_files", []string{})
	v.SetDefault("keyring.enabled", true)
	v.SetDefault("keyring.service", secrets.DefaultService)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads settings into a Config. When file is empty the search path is
// used and a missing settings file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated and bounded settings
func (c *Config) Validate() error {
	switch c.Interactive {
	case InteractiveAuto, InteractiveAlways, InteractiveNever:
	default:
		return fmt.Errorf("invalid interactive mode '%s': expected auto, always or never", c.Interactive)
	}
	if c.Prompt.Attempts < 1 {
		return fmt.Errorf("prompt.attempts must be at least 1, got %d", c.Prompt.Attempts)
	}
	return nil
}

// InteractiveFor decides whether a run may prompt given whether stdin is a
// terminal
func (c *Config) InteractiveFor(isTerminal bool) bool {
	switch c.Interactive {
	case InteractiveAlways:
		return true
	case InteractiveNever:
		return false
	default:
		return isTerminal
	}
}

// ResolverOptions maps the prompt settings onto resolver options
func (c *Config) ResolverOptions() []resolver.Option {
	return []resolver.Option{
		resolver.WithMaxPromptAttempts(c.Prompt.Attempts),
		resolver.WithOptionalPrompts(c.Prompt.Optional),
		resolver.WithGroupOrder(c.Prompt.Groups),
	}
}
