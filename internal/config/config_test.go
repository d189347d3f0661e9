package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig verifies defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", cfg.MaxAttempts, DefaultMaxAttempts)
	}
	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, DefaultMaxPages)
	}
	if cfg.Rules == nil {
		t.Error("Rules should never be nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// TestConfigValidate verifies each validation sentinel.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tweak func(*Config)
		want  error
	}{
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, ErrInvalidMaxPages},
		{"zero workers", func(c *Config) { c.Workers = 0 }, ErrInvalidWorkers},
		{"zero quick scan pages", func(c *Config) { c.QuickScanPages = 0 }, ErrInvalidQuickScanPages},
		{"negative delay", func(c *Config) { c.CrawlDelay = -time.Second }, ErrInvalidCrawlDelay},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"json and markdown together", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.tweak(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestLoadRulesFile tests rules parsing and normalization.
func TestLoadRulesFile(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".bizscan")
		content := `exclude_paths:
  - /admin
  - cart
  - "  "
priority_paths:
  - about
  - /contact
variables:
  - slogan
  - " "
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		rules, err := LoadRulesFile(path)
		if err != nil {
			t.Fatalf("LoadRulesFile failed: %v", err)
		}

		wantExclude := []string{"/admin", "/cart"}
		if len(rules.ExcludePaths) != len(wantExclude) {
			t.Fatalf("ExcludePaths = %v, want %v", rules.ExcludePaths, wantExclude)
		}
		for i := range wantExclude {
			if rules.ExcludePaths[i] != wantExclude[i] {
				t.Errorf("ExcludePaths[%d] = %q, want %q", i, rules.ExcludePaths[i], wantExclude[i])
			}
		}

		wantPriority := []string{"/about", "/contact"}
		for i := range wantPriority {
			if rules.PriorityPaths[i] != wantPriority[i] {
				t.Errorf("PriorityPaths[%d] = %q, want %q", i, rules.PriorityPaths[i], wantPriority[i])
			}
		}

		if len(rules.Variables) != 1 || rules.Variables[0] != "slogan" {
			t.Errorf("Variables = %v, want [slogan]", rules.Variables)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadRulesFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrRulesNotFound) {
			t.Errorf("got %v, want ErrRulesNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".bizscan")
		if err := os.WriteFile(path, []byte("exclude_paths: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadRulesFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

// TestFindRulesFile tests rules file discovery.
func TestFindRulesFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}

		if got := FindRulesFile(path); got != path {
			t.Errorf("got %q, want %q", got, path)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		t.Parallel()

		if got := FindRulesFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}
