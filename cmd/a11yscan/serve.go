package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/feudadrien/a11yscan/internal/config"
	"github.com/feudadrien/a11yscan/internal/log"
	"github.com/feudadrien/a11yscan/internal/mcp"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scans as tools over the Model Context Protocol",
		Long: `Serve runs an MCP server on stdin/stdout so coding agents can call
accessibility scans as tools: scan_url, scan_html, scan_file,
scan_batch, scan_with_login, and summarize_results.

All logging goes to stderr; stdout carries only protocol frames.

Example MCP client configuration:
  {
    "mcpServers": {
      "a11yscan": {
        "command": "a11yscan",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultStepTimeout,
		"Timeout for each navigation and wait step")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of targets scanned at once in batch mode")
	cmd.Flags().String("script", "",
		"Path to the axe-core script (default: search well-known locations)")
	cmd.Flags().String("browser", "",
		"Path to the Chrome/Chromium binary (default: auto-detect)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.StepTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return err
	}
	cfg.ScriptPath, err = cmd.Flags().GetString("script")
	if err != nil {
		return err
	}
	cfg.BrowserPath, err = cmd.Flags().GetString("browser")
	if err != nil {
		return err
	}
	if cfg.StepTimeout <= 0 {
		return config.ErrInvalidTimeout
	}
	if cfg.Concurrency <= 0 {
		return config.ErrInvalidConcurrency
	}

	// Logging must stay off stdout: the protocol owns it.
	logger := log.NewLogger(os.Stderr, cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scanner := newScanner(cfg, logger)
	server := mcp.NewServer(scanner,
		mcp.WithLogger(logger),
		mcp.WithVersion(getVersion()),
	)

	logger.Info("mcp server started", "stepTimeout", cfg.StepTimeout)
	if err := server.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
