// Package config loads retry presets and duplicate thresholds from YAML and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jzx17/callguard/pkg/dedup"
	"github.com/jzx17/callguard/pkg/retry"
)

// Environment variables that override the loaded thresholds
const (
	EnvTitleThreshold    = "CALLGUARD_DEDUP_TITLE_THRESHOLD"
	EnvBodyThreshold     = "CALLGUARD_DEDUP_BODY_THRESHOLD"
	EnvCombinedThreshold = "CALLGUARD_DEDUP_COMBINED_THRESHOLD"
)

// Config is the top-level configuration
type Config struct {
	Retry RetryConfig `yaml:"retry"`
	Dedup DedupConfig `yaml:"dedup"`
}

// RetryConfig configures the default policy and per-scope policies
type RetryConfig struct {
	Default PolicyConfig            `yaml:"default"`
	Scopes  map[string]PolicyConfig `yaml:"scopes"`
}

// PolicyConfig mirrors retry.Policy. Unset fields take the value of
// retry.DefaultPolicy.
type PolicyConfig struct {
	MaxAttempts *int          `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	Multiplier  float64       `yaml:"multiplier"`
	Jitter      *float64      `yaml:"jitter"`

	RateLimitMultiplier float64 `yaml:"rate_limit_multiplier"`
}

// DedupConfig configures the duplicate matcher
type DedupConfig struct {
	Thresholds  dedup.Thresholds `yaml:"thresholds"`
	Concurrency int              `yaml:"concurrency"`
}

// Default returns the configuration used when nothing is loaded
func Default() *Config {
	return &Config{
		Dedup: DedupConfig{
			Thresholds:  dedup.DefaultThresholds(),
			Concurrency: 1,
		},
	}
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are ignored; existing variables are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from a YAML file, expanding ${VAR} references,
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration the same way Load does
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Dedup.Concurrency == 0 {
		cfg.Dedup.Concurrency = 1
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides thresholds from the environment
func (c *Config) ApplyEnv() error {
	overrides := []struct {
		name   string
		target *float64
	}{
		{EnvTitleThreshold, &c.Dedup.Thresholds.Title},
		{EnvBodyThreshold, &c.Dedup.Thresholds.Body},
		{EnvCombinedThreshold, &c.Dedup.Thresholds.Combined},
	}

	for _, o := range overrides {
		raw, ok := os.LookupEnv(o.name)
		if !ok || raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", o.name, raw, err)
		}
		*o.target = v
	}
	return nil
}

// Validate checks thresholds and every retry policy
func (c *Config) Validate() error {
	if err := c.Dedup.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Dedup.Concurrency < 1 {
		return fmt.Errorf("%w: %d", dedup.ErrInvalidConcurrency, c.Dedup.Concurrency)
	}
	_, err := c.Presets()
	return err
}

// Presets builds retry presets: the built-in scopes, overlaid by the
// configured scopes, with the configured default as fallback.
func (c *Config) Presets() (retry.Presets, error) {
	builder := retry.NewPresetsBuilder()

	def, err := c.Retry.Default.Policy(retry.DefaultPolicy())
	if err != nil {
		return retry.Presets{}, fmt.Errorf("default policy: %w", err)
	}
	builder.WithDefault(def)

	builtin := retry.DefaultPresets()
	for _, scope := range builtin.Scopes() {
		builder.WithScope(scope, builtin.For(scope))
	}

	for scope, pc := range c.Retry.Scopes {
		base, ok := builtin.Lookup(scope)
		if !ok {
			base = def
		}
		p, err := pc.Policy(base)
		if err != nil {
			return retry.Presets{}, fmt.Errorf("scope %q: %w", scope, err)
		}
		builder.WithScope(scope, p)
	}

	return builder.Build()
}

// Policy builds a retry.Policy, taking unset fields from base
func (pc PolicyConfig) Policy(base retry.Policy) (retry.Policy, error) {
	maxAttempts := base.MaxAttempts()
	if pc.MaxAttempts != nil {
		maxAttempts = *pc.MaxAttempts
	}
	baseDelay := base.BaseDelay()
	if pc.BaseDelay != 0 {
		baseDelay = pc.BaseDelay
	}
	maxDelay := base.MaxDelay()
	if pc.MaxDelay != 0 {
		maxDelay = pc.MaxDelay
	}
	multiplier := base.Multiplier()
	if pc.Multiplier != 0 {
		multiplier = pc.Multiplier
	}
	jitter := base.JitterFraction()
	if pc.Jitter != nil {
		jitter = *pc.Jitter
	}
	rateLimit := base.RateLimitMultiplier()
	if pc.RateLimitMultiplier != 0 {
		rateLimit = pc.RateLimitMultiplier
	}

	return retry.NewPolicy(maxAttempts, baseDelay,
		retry.WithMaxDelay(maxDelay),
		retry.WithMultiplier(multiplier),
		retry.WithJitter(jitter),
		retry.WithRateLimitMultiplier(rateLimit))
}

// MatcherOptions returns the dedup options described by the configuration
func (c *Config) MatcherOptions() []dedup.MatcherOption {
	return []dedup.MatcherOption{
		dedup.WithThresholds(c.Dedup.Thresholds),
		dedup.WithConcurrency(c.Dedup.Concurrency),
	}
}
