package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("server.address: got %q", cfg.Server.Address)
	}
	if cfg.Store.Driver != DriverCSV || cfg.Store.Backend != BackendLocal {
		t.Fatalf("store defaults: got driver=%q backend=%q", cfg.Store.Driver, cfg.Store.Backend)
	}
	if cfg.Store.EntriesKey != "data.csv" || cfg.Store.ReferenceKey != "data.json" {
		t.Fatalf("store keys: got %q %q", cfg.Store.EntriesKey, cfg.Store.ReferenceKey)
	}
	if cfg.Survey.StepThreshold != 6000 {
		t.Fatalf("survey.step_threshold: got %d want 6000", cfg.Survey.StepThreshold)
	}
	if cfg.Survey.MaxStepsCap != 100000 {
		t.Fatalf("survey.max_steps_cap: got %d want 100000", cfg.Survey.MaxStepsCap)
	}
}

func TestLoadConfigReadsYAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	body := "server:\n" +
		"  address: \":9090\"\n" +
		"store:\n" +
		"  data_dir: /srv/survey\n" +
		"survey:\n" +
		"  step_threshold: 8000\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SURVEY_STEP_THRESHOLD", "7500")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("server.address: got %q want :9090", cfg.Server.Address)
	}
	if cfg.Store.DataDir != "/srv/survey" {
		t.Fatalf("store.data_dir: got %q", cfg.Store.DataDir)
	}
	if cfg.Survey.StepThreshold != 7500 {
		t.Fatalf("env override: got %d want 7500", cfg.Survey.StepThreshold)
	}
}

func TestValidateRejectsBadStore(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "redis" }, "store.driver"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "ftp" }, "store.backend"},
		{"s3 without bucket", func(c *Config) { c.Store.Backend = BackendS3 }, "bucket_name"},
		{"unknown gin mode", func(c *Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"negative threshold", func(c *Config) { c.Survey.StepThreshold = -1 }, "step_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Server: ServerConfig{Mode: "release"},
				Store:  StoreConfig{Driver: DriverCSV, Backend: BackendLocal, EntriesKey: "data.csv"},
				Survey: SurveyConfig{StepThreshold: 6000, MaxStepsCap: 100000},
			}
			tt.mut(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
