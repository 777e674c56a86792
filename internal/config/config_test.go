package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfigDefaults tests the default values.
func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Ruleset != "wcag22" {
		t.Errorf("default ruleset = %q, expected wcag22", cfg.Ruleset)
	}
	if cfg.Level != "AA" {
		t.Errorf("default level = %q, expected AA", cfg.Level)
	}
	if cfg.StepTimeout != 60*time.Second {
		t.Errorf("default step timeout = %v, expected 60s", cfg.StepTimeout)
	}
	if cfg.Concurrency != 1 {
		t.Errorf("default concurrency = %d, expected 1", cfg.Concurrency)
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		modify   func(*Config)
		expected error
	}{
		{
			name:     "valid single target",
			modify:   func(c *Config) { c.Targets = []string{"https://example.com"} },
			expected: nil,
		},
		{
			name:     "valid file target",
			modify:   func(c *Config) { c.FilePath = "index.html" },
			expected: nil,
		},
		{
			name:     "valid stdin target",
			modify:   func(c *Config) { c.HTMLFromStdin = true },
			expected: nil,
		},
		{
			name:     "no target",
			modify:   func(c *Config) {},
			expected: ErrNoTarget,
		},
		{
			name: "conflicting targets",
			modify: func(c *Config) {
				c.Targets = []string{"https://example.com"}
				c.FilePath = "index.html"
			},
			expected: ErrConflictingTargets,
		},
		{
			name: "invalid ruleset",
			modify: func(c *Config) {
				c.Targets = []string{"https://example.com"}
				c.Ruleset = "wcag20"
			},
			expected: ErrInvalidRuleset,
		},
		{
			name: "invalid level",
			modify: func(c *Config) {
				c.Targets = []string{"https://example.com"}
				c.Level = "AAAA"
			},
			expected: ErrInvalidLevel,
		},
		{
			name: "zero timeout",
			modify: func(c *Config) {
				c.Targets = []string{"https://example.com"}
				c.StepTimeout = 0
			},
			expected: ErrInvalidTimeout,
		},
		{
			name: "zero concurrency",
			modify: func(c *Config) {
				c.Targets = []string{"https://example.com"}
				c.Concurrency = 0
			},
			expected: ErrInvalidConcurrency,
		},
		{
			name: "conflicting report formats",
			modify: func(c *Config) {
				c.Targets = []string{"https://example.com"}
				c.JSONReport = true
				c.MarkdownReport = true
			},
			expected: ErrConflictingReportFormats,
		},
		{
			name: "login with batch targets",
			modify: func(c *Config) {
				c.Targets = []string{"https://a.example", "https://b.example"}
				c.Login = LoginConfig{LoginURL: "https://a.example/login"}
			},
			expected: ErrLoginRequiresSingleTarget,
		},
		{
			name: "login without selectors",
			modify: func(c *Config) {
				c.Targets = []string{"https://example.com"}
				c.Login = LoginConfig{LoginURL: "https://example.com/login"}
			},
			expected: ErrIncompleteLoginConfig,
		},
		{
			name: "complete login config",
			modify: func(c *Config) {
				c.Targets = []string{"https://example.com"}
				c.Login = LoginConfig{
					LoginURL:         "https://example.com/login",
					Username:         "alice",
					Password:         "secret",
					UsernameSelector: "#user",
					PasswordSelector: "#pass",
					SubmitSelector:   "button[type=submit]",
				}
			},
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.expected == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			} else if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
		})
	}
}

// TestLoadConfigFile tests YAML site config loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `
defaults:
  level: AA
sites:
  app.example.com:
    loginUrl: https://app.example.com/login
    username: scanner
    passwordEnv: APP_SCAN_PASSWORD
    usernameSelector: "#email"
    passwordSelector: "#password"
    submitSelector: "button[type=submit]"
    level: AAA
    tags: [best-practice]
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		site := cf.GetSiteConfig("app.example.com")
		if site.LoginURL != "https://app.example.com/login" {
			t.Errorf("unexpected login URL: %q", site.LoginURL)
		}
		if site.Level != "AAA" {
			t.Errorf("site level should override default, got %q", site.Level)
		}
		if len(site.Tags) != 1 || site.Tags[0] != "best-practice" {
			t.Errorf("unexpected tags: %v", site.Tags)
		}
	})

	t.Run("unknown site gets defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("defaults:\n  level: AAA\n"), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		site := cf.GetSiteConfig("other.example.com")
		if site.Level != "AAA" {
			t.Errorf("expected defaults, got level %q", site.Level)
		}
		if site.LoginURL != "" {
			t.Errorf("unexpected login URL: %q", site.LoginURL)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: ["), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestSiteConfigLoginConfig tests conversion to a LoginConfig.
func TestSiteConfigLoginConfig(t *testing.T) {
	t.Run("resolves password from environment", func(t *testing.T) {
		t.Setenv("A11YSCAN_TEST_PASSWORD", "hunter2")

		sc := SiteConfig{
			LoginURL:         "https://example.com/login",
			Username:         "alice",
			PasswordEnv:      "A11YSCAN_TEST_PASSWORD",
			UsernameSelector: "#user",
			PasswordSelector: "#pass",
			SubmitSelector:   "#submit",
		}

		login := sc.LoginConfig()
		if !login.Active() {
			t.Fatal("expected active login config")
		}
		if login.Password != "hunter2" {
			t.Errorf("password not resolved from environment: %q", login.Password)
		}
	})

	t.Run("no login url yields inactive config", func(t *testing.T) {
		t.Parallel()

		login := SiteConfig{Username: "alice"}.LoginConfig()
		if login.Active() {
			t.Error("expected inactive login config")
		}
	})
}

// TestFindConfigFile tests config file resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile(%q) = %q", path, got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("expected empty result, got %q", got)
		}
	})
}
