// Package config loads the blockform host configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-blockform/pkg/backend"
	"github.com/goliatone/go-blockform/pkg/finance"
	"github.com/goliatone/go-blockform/pkg/orchestrator"
)

// ErrNoBackend is returned by Validate when neither a backend URL nor a data
// directory is configured.
var ErrNoBackend = errors.New("config: backend url or data dir required")

// Config holds the host settings.
type Config struct {
	Backend      BackendConfig      `yaml:"backend"`
	Language     string             `yaml:"language"`
	Translations TranslationsConfig `yaml:"translations"`
	Periods      []string           `yaml:"periods"`
	SubmitPolicy string             `yaml:"submit_policy"`
	Link         string             `yaml:"link"`
	Geo          GeoConfig          `yaml:"geo"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// BackendConfig selects the remote service or a local data directory.
type BackendConfig struct {
	URL      string        `yaml:"url"`
	DataDir  string        `yaml:"data_dir"`
	Callback string        `yaml:"callback"`
	Timeout  time.Duration `yaml:"timeout"`
}

// TranslationsConfig configures the persistent translation cache. An empty
// CachePath keeps the cache in memory.
type TranslationsConfig struct {
	CachePath string        `yaml:"cache_path"`
	TTL       time.Duration `yaml:"ttl"`
}

// GeoConfig configures country autofill. An empty Endpoint disables it.
type GeoConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Callback: backend.DefaultCallback,
			Timeout:  10 * time.Second,
		},
		Language:     "de",
		Translations: TranslationsConfig{TTL: time.Hour},
		Periods:      finance.DefaultPeriods(),
		SubmitPolicy: orchestrator.OptimisticSubmit.String(),
		Logging:      LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults;
// environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv(lookup)
	return cfg, nil
}

// applyEnv overrides the backend location and log level from BLOCKFORM_*
// variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("BLOCKFORM_BACKEND_URL"); ok && v != "" {
		c.Backend.URL = v
	}
	if v, ok := lookup("BLOCKFORM_DATA_DIR"); ok && v != "" {
		c.Backend.DataDir = v
	}
	if v, ok := lookup("BLOCKFORM_LANGUAGE"); ok && v != "" {
		c.Language = v
	}
	if v, ok := lookup("BLOCKFORM_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.URL) == "" && strings.TrimSpace(c.Backend.DataDir) == "" {
		return ErrNoBackend
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("config: backend timeout must not be negative")
	}
	if c.Translations.TTL < 0 {
		return fmt.Errorf("config: translations ttl must not be negative")
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Periods))
	for _, p := range c.Periods {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("config: empty period")
		}
		if _, dup := seen[p]; dup {
			return fmt.Errorf("config: duplicate period %q", p)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// Policy parses SubmitPolicy.
func (c *Config) Policy() (orchestrator.SubmitPolicy, error) {
	policy, err := orchestrator.ParseSubmitPolicy(c.SubmitPolicy)
	if err != nil {
		return policy, fmt.Errorf("config: %w", err)
	}
	return policy, nil
}

// ParseLevel checks a log level name. The empty string means info.
func ParseLevel(raw string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "":
		return "info", nil
	case "debug", "info", "warn", "error":
		return level, nil
	}
	return "", fmt.Errorf("config: unknown log level %q", raw)
}
