// Package config loads studio settings from an optional YAML file and the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/hjstudio/imagegen"
)

type Config struct {
	// APIKey may be empty at load time; a missing key is reported by the
	// first generation request.
	APIKey          string        `yaml:"api_key" env:"GEMINI_API_KEY" env-description:"Gemini API key"`
	Model           string        `yaml:"model" env:"STUDIO_MODEL" env-default:"nano-banana-1" env-description:"public model name"`
	Timeout         time.Duration `yaml:"timeout" env:"STUDIO_TIMEOUT" env-default:"2m" env-description:"per-request timeout, 0 disables"`
	LogLevel        string        `yaml:"log_level" env:"STUDIO_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	OutputDir       string        `yaml:"output_dir" env:"STUDIO_OUTPUT_DIR" env-default:"generated" env-description:"directory for saved images"`
	WaitOnRateLimit time.Duration `yaml:"wait_on_rate_limit" env:"STUDIO_WAIT_ON_RATE_LIMIT" env-default:"0s" env-description:"how long to wait for rate limit capacity, 0 fails fast"`
	AspectRatio     string        `yaml:"aspect_ratio" env:"STUDIO_ASPECT_RATIO" env-default:"1:1" env-description:"initial aspect ratio"`
}

// Load reads the file at path, if any, and then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("config: %w; %s", err, desc)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if err := imagegen.ValidateAspectRatio(c.Ratio()); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", c.Timeout)
	}
	if c.WaitOnRateLimit < 0 {
		return fmt.Errorf("rate limit wait must not be negative: %v", c.WaitOnRateLimit)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Ratio returns the configured aspect ratio.
func (c *Config) Ratio() imagegen.AspectRatio {
	return imagegen.AspectRatio(strings.TrimSpace(c.AspectRatio))
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}
