// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sheetrecon/internal/match"
	"sheetrecon/internal/review"
)

// Prefix is the environment variable prefix, e.g. SHEETRECON_CATALOG.
const Prefix = "sheetrecon"

// Config holds every tunable of the importer.
type Config struct {
	Catalog string `envconfig:"CATALOG" default:"catalog.yaml"`

	AutoAccept       float64 `envconfig:"AUTO_ACCEPT" default:"0.7"`
	MinSimilarity    float64 `envconfig:"MIN_SIMILARITY" default:"0.5"`
	ContainmentRatio float64 `envconfig:"CONTAINMENT_RATIO" default:"0.6"`
	ContainmentScore float64 `envconfig:"CONTAINMENT_SCORE" default:"0.8"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// Load reads .env (if present) and the SHEETRECON_* variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks that every threshold lies in [0, 1] and the log settings are known.
func (c *Config) Validate() error {
	var errs []error

	for name, v := range map[string]float64{
		"AUTO_ACCEPT":       c.AutoAccept,
		"MIN_SIMILARITY":    c.MinSimilarity,
		"CONTAINMENT_RATIO": c.ContainmentRatio,
		"CONTAINMENT_SCORE": c.ContainmentScore,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %v", name, v))
		}
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// MatchOptions returns the scoring options.
func (c *Config) MatchOptions() match.Options {
	return match.Options{
		MinSimilarity:    c.MinSimilarity,
		ContainmentRatio: c.ContainmentRatio,
		ContainmentScore: c.ContainmentScore,
	}
}

// ReviewConfig returns the review settings.
func (c *Config) ReviewConfig() review.Config {
	return review.Config{Threshold: c.AutoAccept, Match: c.MatchOptions()}
}

// Logger builds a zap logger at the configured level: a development console
// logger or a production JSON logger.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	zc := zap.NewDevelopmentConfig()
	if c.LogFormat == "json" {
		zc = zap.NewProductionConfig()
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	return zc.Build()
}
