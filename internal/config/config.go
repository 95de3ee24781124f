package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/nobl9/govy/pkg/govy"
	"github.com/nobl9/govy/pkg/rules"
	"gopkg.in/yaml.v3"
)

const (
	OnErrorFail = "fail"
	OnErrorSkip = "skip"

	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the main configuration struct.
// Input is the OpenAPI document to document.
// Output is the directory pages are written to.
// RuntimeRefs promotes nested inline objects to tables of their own,
// when disabled they are expanded in place.
// SampleFormat is the encoding of example payloads: json or yaml.
// OnError decides whether a broken schema aborts the build or is skipped with a notice.
type Config struct {
	Input        string        `yaml:"input" env:"OASDOCS_INPUT"`
	Output       string        `yaml:"output" env:"OASDOCS_OUTPUT"`
	RuntimeRefs  bool          `yaml:"runtimeRefs" env:"OASDOCS_RUNTIME_REFS"`
	SampleFormat string        `yaml:"sampleFormat" env:"OASDOCS_SAMPLE_FORMAT"`
	OnError      string        `yaml:"onError" env:"OASDOCS_ON_ERROR"`
	Preview      PreviewConfig `yaml:"preview" envPrefix:"OASDOCS_PREVIEW_"`
	LogLevel     string        `yaml:"logLevel" env:"OASDOCS_LOG_LEVEL"`
	LogFormat    string        `yaml:"logFormat" env:"OASDOCS_LOG_FORMAT"`
}

// PreviewConfig is the preview server configuration.
type PreviewConfig struct {
	Address string `yaml:"address" env:"ADDRESS"`
}

// NewDefaultConfig creates a new default config in case the config file is missing.
func NewDefaultConfig() *Config {
	return &Config{
		Output:       "docs",
		RuntimeRefs:  true,
		SampleFormat: "json",
		OnError:      OnErrorFail,
		Preview: PreviewConfig{
			Address: ":2200",
		},
		LogLevel:  "info",
		LogFormat: LogFormatAuto,
	}
}

// Load reads the YAML file over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(filePath string) (*Config, error) {
	res := NewDefaultConfig()

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, res); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, filePath, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config file not found, using defaults", "path", filePath)
		default:
			return nil, err
		}
	}

	if err := env.Parse(res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return res, nil
}

var configValidator = govy.New(
	govy.For(func(c Config) string { return c.Input }).
		WithName("input").
		Required(),
	govy.For(func(c Config) string { return c.SampleFormat }).
		WithName("sampleFormat").
		Rules(rules.OneOf("json", "yaml")),
	govy.For(func(c Config) string { return c.OnError }).
		WithName("onError").
		Rules(rules.OneOf(OnErrorFail, OnErrorSkip)),
	govy.For(func(c Config) string { return c.Preview.Address }).
		WithName("preview.address").
		Required(),
	govy.For(func(c Config) string { return c.LogLevel }).
		WithName("logLevel").
		Rules(rules.OneOf("debug", "info", "warn", "error")),
	govy.For(func(c Config) string { return c.LogFormat }).
		WithName("logFormat").
		Rules(rules.OneOf(LogFormatAuto, LogFormatText, LogFormatJSON)),
).WithName("Config")

// Validate checks the config values.
func (c *Config) Validate() error {
	if err := configValidator.Validate(*c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SlogLevel returns the log level, info when it is not recognized.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
