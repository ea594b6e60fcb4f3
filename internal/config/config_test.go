package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("database", "practice.db", "")
	flags.String("listen", ":8321", "")
	flags.String("repos", "repos", "")
	flags.Duration("interval", 30*time.Minute, "")
	flags.String("engine", "fsrs", "")
	flags.Float64("retention", 0.9, "")
	if err := flags.Parse(args); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	return flags
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(testFlags(t))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Database != "practice.db" {
		t.Errorf("Expected default database, got %q", cfg.Database)
	}
	if cfg.Engine != "fsrs" {
		t.Errorf("Expected default engine fsrs, got %q", cfg.Engine)
	}
	if cfg.Interval != 30*time.Minute {
		t.Errorf("Expected default interval 30m, got %v", cfg.Interval)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PAWN_LISTEN", ":9000")
	t.Setenv("PAWN_ENGINE", "sm2")

	cfg, err := Load(testFlags(t))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("Expected listen from environment, got %q", cfg.Listen)
	}
	if cfg.Engine != "sm2" {
		t.Errorf("Expected engine from environment, got %q", cfg.Engine)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("PAWN_LISTEN", ":9000")

	cfg, err := Load(testFlags(t, "--listen", ":7000"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Listen != ":7000" {
		t.Errorf("Expected explicitly set flag to win, got %q", cfg.Listen)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("database: from-file.db\nretention: 0.85\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(testFlags(t, "--config", path))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Database != "from-file.db" {
		t.Errorf("Expected database from file, got %q", cfg.Database)
	}
	if cfg.Retention != 0.85 {
		t.Errorf("Expected retention from file, got %f", cfg.Retention)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown engine", []string{"--engine", "anki"}},
		{"retention out of range", []string{"--retention", "1.5"}},
		{"empty listen", []string{"--listen", ""}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(testFlags(t, tc.args...)); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}
