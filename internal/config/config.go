package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/feudadrien/a11yscan/internal/wcag"
)

// Default configuration values.
const (
	// DefaultStepTimeout bounds every navigation and wait step of a scan.
	// 60 seconds accommodates slow pages behind login walls while keeping
	// a hung target from stalling a batch indefinitely.
	DefaultStepTimeout = 60 * time.Second

	// DefaultConcurrency is the number of targets scanned at once during
	// a batch. 1 keeps batch execution sequential with at most one page
	// open at a time; output order equals request order at any setting.
	DefaultConcurrency = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "a11yscan"
)

// Config holds all configuration options for a11yscan.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
type Config struct {
	// Targets is the list of URLs to scan. One target uses the direct
	// URL strategy; several use the batch strategy.
	Targets []string

	// FilePath is a local HTML file to scan instead of a URL.
	FilePath string

	// HTMLFromStdin scans raw HTML read from standard input.
	HTMLFromStdin bool

	// Ruleset selects the WCAG specification version (wcag22 or wcag21).
	Ruleset string

	// Level selects the conformance level (A, AA, or AAA).
	Level string

	// ExtraTags are additional rule engine tags appended to the resolved
	// conformance tag set, passed through unmodified.
	ExtraTags []string

	// StepTimeout bounds each navigation/wait step of a scan.
	StepTimeout time.Duration

	// Concurrency is the number of targets scanned at once in batch mode.
	Concurrency int

	// ScriptPath is an explicit path to the axe-core script. Empty means
	// search the well-known locations.
	ScriptPath string

	// BrowserPath is an explicit path to the Chrome/Chromium binary.
	// Empty lets the browser layer find one.
	BrowserPath string

	// ConfigFilePath is the path to the YAML configuration file.
	// If empty, the tool searches for .a11yscan in the current and then
	// the home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site login configuration loaded from the
	// config file.
	SiteConfigs *File

	// Login holds credentials and selectors for an authenticated scan,
	// populated from flags or from the matching site config.
	Login LoginConfig

	// JSONReport outputs the raw scan result as indented JSON.
	JSONReport bool

	// MarkdownReport outputs the summary digest as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// Summary prints the summary digest instead of the full result.
	Summary bool

	// ReportFile writes output to this path instead of stdout.
	ReportFile string

	// SaveToDB persists scan results to the history database.
	SaveToDB bool

	// DBDir is the directory holding the SQLite history database.
	DBDir string

	// Verbose enables debug-level log output.
	Verbose bool
}

// LoginConfig describes how to authenticate before scanning a target.
// A LoginConfig is active when LoginURL is non-empty.
type LoginConfig struct {
	// LoginURL is the page carrying the login form.
	LoginURL string

	// Username is typed into UsernameSelector.
	Username string

	// Password is typed into PasswordSelector. Never logged, never
	// persisted.
	Password string

	// UsernameSelector locates the username input.
	UsernameSelector string

	// PasswordSelector locates the password input.
	PasswordSelector string

	// SubmitSelector locates the submit control.
	SubmitSelector string
}

// Active reports whether an authenticated scan was requested.
func (l LoginConfig) Active() bool {
	return l.LoginURL != ""
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Ruleset:     string(wcag.DefaultRuleset),
		Level:       string(wcag.DefaultLevel),
		StepTimeout: DefaultStepTimeout,
		Concurrency: DefaultConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for a11yscan.
// On Linux: ~/.local/share/a11yscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for a11yscan.
// On Linux: ~/.config/a11yscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration, returning the first problem found.
// It is called once after CLI parsing, before any browser resource is
// acquired.
func (c *Config) Validate() error {
	hasTargets := len(c.Targets) > 0

	sources := 0
	if hasTargets {
		sources++
	}
	if c.FilePath != "" {
		sources++
	}
	if c.HTMLFromStdin {
		sources++
	}
	if sources == 0 {
		return ErrNoTarget
	}
	if sources > 1 {
		return ErrConflictingTargets
	}

	if !wcag.ValidRuleset(c.Ruleset) {
		return ErrInvalidRuleset
	}
	if !wcag.ValidLevel(c.Level) {
		return ErrInvalidLevel
	}

	if c.StepTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Login.Active() {
		if len(c.Targets) != 1 {
			return ErrLoginRequiresSingleTarget
		}
		if c.Login.UsernameSelector == "" || c.Login.PasswordSelector == "" || c.Login.SubmitSelector == "" {
			return ErrIncompleteLoginConfig
		}
	}

	return nil
}
