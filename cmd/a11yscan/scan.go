package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/feudadrien/a11yscan/internal/axe"
	"github.com/feudadrien/a11yscan/internal/browser"
	"github.com/feudadrien/a11yscan/internal/config"
	"github.com/feudadrien/a11yscan/internal/history"
	"github.com/feudadrien/a11yscan/internal/log"
	"github.com/feudadrien/a11yscan/internal/model"
	"github.com/feudadrien/a11yscan/internal/report"
	"github.com/feudadrien/a11yscan/internal/scan"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Scan web pages for accessibility issues",
		Long: `Scan audits web pages for accessibility issues with the axe-core
rule engine running in headless Chrome.

One URL runs a direct scan. Several URLs run as a batch: every target
gets its own result entry, in request order, and one failing target
never aborts the rest. Local documents are scanned with --file or
--stdin.

Examples:
  # Scan a single URL
  a11yscan scan https://example.com

  # Scan multiple URLs as a batch
  a11yscan scan https://example.com https://example.org

  # Scan a local HTML file
  a11yscan scan --file index.html

  # Scan raw HTML from stdin
  cat page.html | a11yscan scan --stdin

  # Scan against WCAG 2.1 level AAA with extra rules
  a11yscan scan --ruleset wcag21 --level AAA --tags best-practice https://example.com

  # Scan behind a login form (password read from $APP_PASSWORD)
  a11yscan scan --login-url https://app.example.com/login \
    --username alice --password-env APP_PASSWORD \
    --username-selector '#user' --password-selector '#pass' \
    --submit-selector 'button[type=submit]' \
    https://app.example.com/dashboard

  # Output the full result as JSON
  a11yscan scan --json https://example.com

Configuration file (.a11yscan) example:
  sites:
    app.example.com:
      loginUrl: https://app.example.com/login
      username: scanner
      passwordEnv: APP_SCAN_PASSWORD
      usernameSelector: "#email"
      passwordSelector: "#password"
      submitSelector: "button[type=submit]"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Rule selection flags
	cmd.Flags().StringP("ruleset", "r", string(config.NewConfig().Ruleset),
		"WCAG specification version (wcag22 or wcag21)")
	cmd.Flags().StringP("level", "l", string(config.NewConfig().Level),
		"Conformance level (A, AA, or AAA)")
	cmd.Flags().StringSlice("tags", nil,
		"Additional rule engine tags, passed through unmodified")

	// Input source flags
	cmd.Flags().StringP("file", "f", "",
		"Scan a local HTML file instead of a URL")
	cmd.Flags().Bool("stdin", false,
		"Scan raw HTML read from standard input")

	// Scan behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultStepTimeout,
		"Timeout for each navigation and wait step")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of targets scanned at once in batch mode")
	cmd.Flags().String("script", "",
		"Path to the axe-core script (default: search well-known locations)")
	cmd.Flags().String("browser", "",
		"Path to the Chrome/Chromium binary (default: auto-detect)")

	// Login flags
	cmd.Flags().String("login-url", "", "Page carrying the login form")
	cmd.Flags().String("username", "", "Username typed into the login form")
	cmd.Flags().String("password-env", "",
		"Environment variable holding the login password")
	cmd.Flags().String("username-selector", "", "CSS selector of the username input")
	cmd.Flags().String("password-selector", "", "CSS selector of the password input")
	cmd.Flags().String("submit-selector", "", "CSS selector of the submit control")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .a11yscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the full result as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().BoolP("summary", "s", false,
		"Output only the critical and serious issues")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildScanConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Structured logging to stderr with credential masking.
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, logger, cmd.InOrStdin())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildScanConfig creates a Config from cobra command flags.
func buildScanConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Ruleset, err = cmd.Flags().GetString("ruleset")
	if err != nil {
		return nil, err
	}
	cfg.Level, err = cmd.Flags().GetString("level")
	if err != nil {
		return nil, err
	}
	cfg.ExtraTags, err = cmd.Flags().GetStringSlice("tags")
	if err != nil {
		return nil, err
	}

	cfg.FilePath, err = cmd.Flags().GetString("file")
	if err != nil {
		return nil, err
	}
	cfg.HTMLFromStdin, err = cmd.Flags().GetBool("stdin")
	if err != nil {
		return nil, err
	}

	cfg.StepTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}
	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}
	cfg.ScriptPath, err = cmd.Flags().GetString("script")
	if err != nil {
		return nil, err
	}
	cfg.BrowserPath, err = cmd.Flags().GetString("browser")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.Summary, err = cmd.Flags().GetBool("summary")
	if err != nil {
		return nil, err
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	cfg.Targets = args

	if err := applyLoginFlags(cmd, cfg); err != nil {
		return nil, err
	}
	applySiteConfig(cmd, cfg)

	return cfg, nil
}

// applyLoginFlags populates the login config from flags. The password
// is read from an environment variable, never from argv.
func applyLoginFlags(cmd *cobra.Command, cfg *config.Config) error {
	loginURL, err := cmd.Flags().GetString("login-url")
	if err != nil {
		return err
	}
	if loginURL == "" {
		return nil
	}

	username, err := cmd.Flags().GetString("username")
	if err != nil {
		return err
	}
	passwordEnv, err := cmd.Flags().GetString("password-env")
	if err != nil {
		return err
	}
	usernameSelector, err := cmd.Flags().GetString("username-selector")
	if err != nil {
		return err
	}
	passwordSelector, err := cmd.Flags().GetString("password-selector")
	if err != nil {
		return err
	}
	submitSelector, err := cmd.Flags().GetString("submit-selector")
	if err != nil {
		return err
	}

	var password string
	if passwordEnv != "" {
		password = os.Getenv(passwordEnv)
		if password == "" {
			return fmt.Errorf("environment variable %s is empty or unset", passwordEnv)
		}
	}

	cfg.Login = config.LoginConfig{
		LoginURL:         loginURL,
		Username:         username,
		Password:         password,
		UsernameSelector: usernameSelector,
		PasswordSelector: passwordSelector,
		SubmitSelector:   submitSelector,
	}
	return nil
}

// applySiteConfig fills settings from the matching site entry for a
// single URL target. Flags win over the config file; the file only
// fills what the user left at defaults.
func applySiteConfig(cmd *cobra.Command, cfg *config.Config) {
	if len(cfg.Targets) != 1 || cfg.SiteConfigs == nil {
		return
	}

	u, err := url.Parse(cfg.Targets[0])
	if err != nil || u.Host == "" {
		return
	}
	site := cfg.SiteConfigs.GetSiteConfig(u.Hostname())

	if !cfg.Login.Active() {
		cfg.Login = site.LoginConfig()
	}
	if site.Ruleset != "" && !cmd.Flags().Changed("ruleset") {
		cfg.Ruleset = site.Ruleset
	}
	if site.Level != "" && !cmd.Flags().Changed("level") {
		cfg.Level = site.Level
	}
	if len(site.Tags) > 0 && !cmd.Flags().Changed("tags") {
		cfg.ExtraTags = site.Tags
	}
}

// runScan executes the scan described by cfg.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdin io.Reader) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"ruleset", cfg.Ruleset,
		"level", cfg.Level,
		"stepTimeout", cfg.StepTimeout,
	)

	// Open database connection if saving is enabled
	var db *history.DB
	if cfg.SaveToDB {
		var err error
		db, err = history.Open(cfg.DBDir, history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("history database opened", "dir", cfg.DBDir)
	}

	scanner := newScanner(cfg, logger)
	rules := scan.RuleOptions{Ruleset: cfg.Ruleset, Level: cfg.Level, Tags: cfg.ExtraTags}

	start := time.Now()

	switch {
	case cfg.HTMLFromStdin:
		html, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		result, err := scanner.ScanHTML(ctx, scan.HTMLRequest{HTML: string(html), Rules: rules})
		if err != nil {
			return err
		}
		return finishScan(ctx, cfg, db, logger, "stdin", "html", result, start)

	case cfg.FilePath != "":
		result, err := scanner.ScanFile(ctx, scan.FileRequest{Path: cfg.FilePath, Rules: rules})
		if err != nil {
			return err
		}
		return finishScan(ctx, cfg, db, logger, result.URL, "file", result, start)

	case cfg.Login.Active():
		result, err := scanner.ScanWithLogin(ctx, scan.LoginRequest{
			URL:   cfg.Targets[0],
			Login: cfg.Login,
			Rules: rules,
		})
		if err != nil {
			return err
		}
		return finishScan(ctx, cfg, db, logger, cfg.Targets[0], "login", result, start)

	case len(cfg.Targets) == 1:
		result, err := scanner.ScanURL(ctx, scan.URLRequest{URL: cfg.Targets[0], Rules: rules})
		if err != nil {
			return err
		}
		return finishScan(ctx, cfg, db, logger, cfg.Targets[0], "url", result, start)

	default:
		batch, err := scanner.ScanBatch(ctx, scan.BatchRequest{URLs: cfg.Targets, Rules: rules})
		if err != nil {
			return err
		}
		return finishBatch(ctx, cfg, db, logger, batch, start)
	}
}

// newScanner wires the browser launcher and rule engine runtime into a
// scanner per the configuration.
func newScanner(cfg *config.Config, logger *slog.Logger) *scan.Scanner {
	var launcherOpts []browser.ChromeOption
	if cfg.BrowserPath != "" {
		launcherOpts = append(launcherOpts, browser.WithExecPath(cfg.BrowserPath))
	}
	launcherOpts = append(launcherOpts,
		browser.WithStepTimeout(cfg.StepTimeout),
		browser.WithLogger(logger),
	)
	launcher := browser.NewChromeLauncher(launcherOpts...)

	var runtimeOpts []axe.Option
	if cfg.ScriptPath != "" {
		runtimeOpts = append(runtimeOpts, axe.WithScriptPath(cfg.ScriptPath))
	}
	runtime := axe.NewRuntime(runtimeOpts...)

	return scan.NewScanner(launcher, runtime,
		scan.WithLogger(logger),
		scan.WithConcurrency(cfg.Concurrency),
	)
}

// finishScan reports and persists a single-target result.
func finishScan(ctx context.Context, cfg *config.Config, db *history.DB, logger *slog.Logger,
	target, strategy string, result *model.ScanResult, start time.Time,
) error {
	logger.Info("scan completed",
		"target", target,
		"violations", len(result.Violations),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := outputResult(cfg, result); err != nil {
		return err
	}
	return saveScan(ctx, db, logger, target, strategy, result)
}

// finishBatch reports and persists every successful batch entry.
func finishBatch(ctx context.Context, cfg *config.Config, db *history.DB, logger *slog.Logger,
	batch *model.BatchResult, start time.Time,
) error {
	logger.Info("batch completed",
		"targets", len(batch.Entries),
		"succeeded", batch.Succeeded(),
		"failed", batch.Failed(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if err := outputBatch(cfg, batch); err != nil {
		return err
	}

	for _, entry := range batch.Entries {
		if entry.Result == nil {
			continue
		}
		if err := saveScan(ctx, db, logger, entry.Target, "batch", entry.Result); err != nil {
			logger.Error("failed to save scan", "target", entry.Target, "error", err)
		}
	}
	return nil
}

// openOutput resolves the report destination, creating directories for
// a file target.
func openOutput(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newWriter selects the report format requested by the configuration.
func newWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// outputResult outputs the scan result in the requested format.
func outputResult(cfg *config.Config, result *model.ScanResult) error {
	output, closeFn, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck // Best effort close after write error

	w := newWriter(cfg, output)
	if cfg.Summary {
		_, err = w.WriteDigest(model.NewSummaryDigest(result))
		return err
	}
	_, err = w.WriteResult(result)
	return err
}

// outputBatch outputs the batch result in the requested format.
func outputBatch(cfg *config.Config, batch *model.BatchResult) error {
	output, closeFn, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck // Best effort close after write error

	_, err = newWriter(cfg, output).WriteBatch(batch)
	return err
}

// saveScan saves the scan result to the database if enabled.
// If db is nil, this function is a no-op.
func saveScan(ctx context.Context, db *history.DB, logger *slog.Logger,
	target, strategy string, result *model.ScanResult,
) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveScan(ctx, target, strategy, result)
	if err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}

	logger.Debug("scan saved", "target", target, "id", id)
	return nil
}
