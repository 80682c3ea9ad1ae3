package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockform/pkg/orchestrator"
)

func noEnv(string) (string, bool) { return "", false }

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := load(filepath.Join(t.TempDir(), "absent.yaml"), noEnv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blockform.yaml")
	data := `
backend:
  url: https://forms.example.test/api
  timeout: 3s
language: en
translations:
  cache_path: /tmp/blockform-translations.json
  ttl: 30m
periods: ["2022", "2023"]
submit_policy: acknowledged
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := load(path, noEnv)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Default()
	want.Backend.URL = "https://forms.example.test/api"
	want.Backend.Timeout = 3 * time.Second
	want.Language = "en"
	want.Translations = TranslationsConfig{CachePath: "/tmp/blockform-translations.json", TTL: 30 * time.Minute}
	want.Periods = []string{"2022", "2023"}
	want.SubmitPolicy = "acknowledged"
	want.Logging.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	policy, err := cfg.Policy()
	if err != nil || policy != orchestrator.AcknowledgedSubmit {
		t.Fatalf("policy = %v, %v", policy, err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("backend: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"BLOCKFORM_DATA_DIR":  "./data",
		"BLOCKFORM_LOG_LEVEL": "warn",
		"BLOCKFORM_LANGUAGE":  "",
	}
	cfg := Default()
	cfg.applyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	if cfg.Backend.DataDir != "./data" || cfg.Logging.Level != "warn" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Language != "de" {
		t.Fatalf("empty override must keep language, got %q", cfg.Language)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	withDir := func(mutate func(*Config)) *Config {
		cfg := Default()
		cfg.Backend.DataDir = "./data"
		if mutate != nil {
			mutate(cfg)
		}
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
		is      error
	}{
		{name: "defaults with data dir", cfg: withDir(nil)},
		{name: "no backend", cfg: Default(), wantErr: true, is: ErrNoBackend},
		{name: "bad policy", cfg: withDir(func(c *Config) { c.SubmitPolicy = "eventually" }), wantErr: true},
		{name: "bad level", cfg: withDir(func(c *Config) { c.Logging.Level = "loud" }), wantErr: true},
		{name: "duplicate period", cfg: withDir(func(c *Config) { c.Periods = []string{"2024", "2024"} }), wantErr: true},
		{name: "negative ttl", cfg: withDir(func(c *Config) { c.Translations.TTL = -time.Second }), wantErr: true},
		{name: "empty level", cfg: withDir(func(c *Config) { c.Logging.Level = "" })},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected %v, got %v", tt.is, err)
			}
		})
	}
}
