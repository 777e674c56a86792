package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/feudadrien/a11yscan/internal/config"
)

// TestNewScanCmd tests the scan command definition.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{"ruleset", "r", "wcag22"},
			{"level", "l", "AA"},
			{"tags", "", "[]"},
			{"file", "f", ""},
			{"stdin", "", "false"},
			{"timeout", "t", "1m0s"},
			{"concurrency", "b", "1"},
			{"script", "", ""},
			{"browser", "", ""},
			{"login-url", "", ""},
			{"username", "", ""},
			{"password-env", "", ""},
			{"username-selector", "", ""},
			{"password-selector", "", ""},
			{"submit-selector", "", ""},
			{"config", "c", ""},
			{"json", "j", "false"},
			{"markdown", "m", "false"},
			{"summary", "s", "false"},
			{"output", "o", ""},
		}

		for _, tc := range testCases {
			flag := cmd.Flags().Lookup(tc.name)
			if flag == nil {
				t.Errorf("expected flag %q", tc.name)
				continue
			}
			if flag.Shorthand != tc.shorthand {
				t.Errorf("flag %q shorthand = %q, expected %q", tc.name, flag.Shorthand, tc.shorthand)
			}
			if flag.DefValue != tc.defValue {
				t.Errorf("flag %q default = %q, expected %q", tc.name, flag.DefValue, tc.defValue)
			}
		}
	})

	t.Run("accepts arbitrary args", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{"https://a.example", "https://b.example"}); err != nil {
			t.Errorf("unexpected args error: %v", err)
		}
	})
}

// TestBuildScanConfig tests config construction from flags.
func TestBuildScanConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd := NewScanCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildScanConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Ruleset != "wcag22" || cfg.Level != "AA" {
			t.Errorf("rules = %s/%s", cfg.Ruleset, cfg.Level)
		}
		if cfg.StepTimeout != 60*time.Second {
			t.Errorf("timeout = %v", cfg.StepTimeout)
		}
		if !cfg.SaveToDB {
			t.Error("scans should be saved by default")
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://example.com" {
			t.Errorf("targets = %v", cfg.Targets)
		}
		if cfg.Login.Active() {
			t.Error("login should be inactive without flags")
		}
	})

	t.Run("flag values propagate", func(t *testing.T) {
		cmd := NewScanCmd()
		err := cmd.ParseFlags([]string{
			"--ruleset", "wcag21", "--level", "AAA",
			"--tags", "best-practice", "--timeout", "30s",
			"--concurrency", "4", "--json",
		})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildScanConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Ruleset != "wcag21" || cfg.Level != "AAA" {
			t.Errorf("rules = %s/%s", cfg.Ruleset, cfg.Level)
		}
		if len(cfg.ExtraTags) != 1 || cfg.ExtraTags[0] != "best-practice" {
			t.Errorf("tags = %v", cfg.ExtraTags)
		}
		if cfg.StepTimeout != 30*time.Second || cfg.Concurrency != 4 {
			t.Errorf("timeout=%v concurrency=%d", cfg.StepTimeout, cfg.Concurrency)
		}
		if !cfg.JSONReport {
			t.Error("json flag not applied")
		}
	})

	t.Run("login from flags with env password", func(t *testing.T) {
		t.Setenv("A11YSCAN_CMD_TEST_PW", "hunter2")

		cmd := NewScanCmd()
		err := cmd.ParseFlags([]string{
			"--login-url", "https://app.example/login",
			"--username", "alice",
			"--password-env", "A11YSCAN_CMD_TEST_PW",
			"--username-selector", "#u",
			"--password-selector", "#p",
			"--submit-selector", "#s",
		})
		if err != nil {
			t.Fatal(err)
		}

		cfg, err := buildScanConfig(cmd, []string{"https://app.example/dash"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.Login.Active() {
			t.Fatal("expected an active login config")
		}
		if cfg.Login.Password != "hunter2" {
			t.Error("password not resolved from environment")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("config should validate: %v", err)
		}
	})

	t.Run("unset password env rejected", func(t *testing.T) {
		cmd := NewScanCmd()
		err := cmd.ParseFlags([]string{
			"--login-url", "https://app.example/login",
			"--password-env", "A11YSCAN_DEFINITELY_UNSET_VAR",
		})
		if err != nil {
			t.Fatal(err)
		}

		if _, err := buildScanConfig(cmd, []string{"https://app.example/dash"}); err == nil {
			t.Error("expected error for unset password environment variable")
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml")}); err != nil {
			t.Fatal(err)
		}

		if _, err := buildScanConfig(cmd, []string{"https://example.com"}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("site config supplies login", func(t *testing.T) {
		t.Setenv("A11YSCAN_SITE_TEST_PW", "s3cret")

		path := filepath.Join(t.TempDir(), ".a11yscan")
		content := `
sites:
  app.example.com:
    loginUrl: https://app.example.com/login
    username: scanner
    passwordEnv: A11YSCAN_SITE_TEST_PW
    usernameSelector: "#email"
    passwordSelector: "#password"
    submitSelector: "button[type=submit]"
    level: AAA
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildScanConfig(cmd, []string{"https://app.example.com/dashboard"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !cfg.Login.Active() {
			t.Fatal("expected login from site config")
		}
		if cfg.Login.Password != "s3cret" {
			t.Error("site config password not resolved from environment")
		}
		if cfg.Level != "AAA" {
			t.Errorf("site level should apply, got %q", cfg.Level)
		}
	})

	t.Run("flags win over site config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".a11yscan")
		if err := os.WriteFile(path, []byte("defaults:\n  level: AAA\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--config", path, "--level", "A"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildScanConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Level != "A" {
			t.Errorf("explicit flag should win, got %q", cfg.Level)
		}
	})

	t.Run("conflicting formats rejected by validation", func(t *testing.T) {
		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--json", "--markdown"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildScanConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}
