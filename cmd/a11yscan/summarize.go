package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/feudadrien/a11yscan/internal/config"
	"github.com/feudadrien/a11yscan/internal/model"
	"github.com/feudadrien/a11yscan/internal/report"
)

// NewSummarizeCmd creates the summarize command.
func NewSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [result-file]",
		Short: "Reduce a scan result to its critical and serious issues",
		Long: `Summarize reads a JSON scan result produced by 'a11yscan scan --json'
and reduces it to a severity-ranked digest: only critical and serious
violations are listed, with their WCAG success criteria and affected
node counts. Moderate and minor violations are counted but not listed.

The result is read from the given file, or from stdin when no file is
specified.

Examples:
  # Summarize a stored result
  a11yscan summarize result.json

  # Summarize directly from a scan
  a11yscan scan --json https://example.com | a11yscan summarize

  # Output the digest as Markdown
  a11yscan summarize --markdown result.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSummarizeCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output the digest as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the digest as Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the digest to specified file path")

	return cmd
}

// runSummarizeCmd executes the summarize command.
func runSummarizeCmd(cmd *cobra.Command, args []string) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOut && markdownOut {
		return config.ErrConflictingReportFormats
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	var data []byte
	if len(args) == 1 {
		data, err = os.ReadFile(args[0]) //nolint:gosec // User-provided result path is intentional
		if err != nil {
			return fmt.Errorf("failed to read result file: %w", err)
		}
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	result, err := model.ParseScanResult(data)
	if err != nil {
		return err
	}
	digest := model.NewSummaryDigest(result)

	var output io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case markdownOut:
		w = report.NewMarkdownWriter(output)
	case jsonOut:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(getVerboseFlag(cmd)))
	}

	_, err = w.WriteDigest(digest)
	return err
}
