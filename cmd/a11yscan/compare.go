package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feudadrien/a11yscan/internal/config"
	"github.com/feudadrien/a11yscan/internal/history"
	"github.com/feudadrien/a11yscan/internal/model"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [target-url]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the two most recent scans of a
target stored in the history database:
- Rules violated now but not before (introduced)
- Rules violated before but not now (resolved)
- Rules violated in both scans with a different affected node count

Scans are stored automatically by 'a11yscan scan'. The comparison
requires at least two stored scans for the target.

Examples:
  # Compare the latest two scans of a target
  a11yscan compare https://example.com

  # List the scan history of a target
  a11yscan compare --list https://example.com

  # Compare the latest scan with a specific stored scan
  a11yscan compare --with-scan-id 5 https://example.com

  # List all targets in the database
  a11yscan compare --list-targets

  # Output the comparison as JSON
  a11yscan compare --json https://example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List scan history for the specified target")
	cmd.Flags().BoolP("list-targets", "L", false,
		"List all targets in the database")

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use --list to see available IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listTargets, err := cmd.Flags().GetBool("list-targets")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so that a usage
	// error never touches the history file.
	var target string
	if !listTargets {
		if len(args) == 0 {
			return errors.New("target URL is required (use --list-targets to see stored targets)")
		}
		target = args[0]
	}

	opts := history.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := history.Open(config.XDGDataDir(), opts)
	if err != nil {
		return fmt.Errorf("no scan history available: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if listTargets {
		return runListTargets(ctx, db, out)
	}

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		return runListScans(ctx, db, out, target)
	}

	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	return runCompare(ctx, db, out, target, withScanID, jsonOut)
}

// runListTargets prints all targets with stored scans.
func runListTargets(ctx context.Context, db *history.DB, out io.Writer) error {
	targets, err := db.ListTargets(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Fprintln(out, "No scans stored yet.")
		return nil
	}

	for _, target := range targets {
		fmt.Fprintln(out, target)
	}
	return nil
}

// runListScans prints the scan history of a target.
func runListScans(ctx context.Context, db *history.DB, out io.Writer, target string) error {
	scans, err := db.ListScans(ctx, target)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		fmt.Fprintf(out, "No scans stored for %s\n", target)
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s:\n\n", target)
	for _, meta := range scans {
		fmt.Fprintf(out, "  #%d  %s  %-6s  %d violations (critical: %d, serious: %d)\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.Strategy,
			meta.TotalViolations,
			meta.ImpactSummary["critical"],
			meta.ImpactSummary["serious"],
		)
	}
	return nil
}

// runCompare diffs the latest scan against a baseline scan.
func runCompare(ctx context.Context, db *history.DB, out io.Writer,
	target string, withScanID int64, jsonOut bool,
) error {
	current, err := db.GetLatestScan(ctx, target)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("no scans stored for %s", target)
	}

	var previous *model.ScanResult
	if withScanID > 0 {
		previous, err = db.GetScanByID(ctx, withScanID)
		if err != nil {
			return err
		}
		if previous == nil {
			return fmt.Errorf("no scan with ID %d", withScanID)
		}
	} else {
		scans, err := db.ListScans(ctx, target)
		if err != nil {
			return err
		}
		if len(scans) < 2 {
			return fmt.Errorf("at least two stored scans are required for %s (found %d)", target, len(scans))
		}
		previous, err = db.GetScanByID(ctx, scans[1].ID)
		if err != nil {
			return err
		}
	}

	diff := history.Diff(previous, current)
	if diff.Target == "" {
		diff.Target = target
	}

	if jsonOut {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(diff)
	}

	printDiff(out, diff)
	return nil
}

// printDiff renders a change summary as plain text.
func printDiff(out io.Writer, diff *history.ChangeSummary) {
	fmt.Fprintf(out, "Comparison for %s\n", diff.Target)
	fmt.Fprintln(out, strings.Repeat("-", 70))

	if !diff.HasChanges() {
		fmt.Fprintln(out, "No changes between the compared scans.")
		return
	}

	if len(diff.Introduced) > 0 {
		fmt.Fprintf(out, "\nIntroduced (%d):\n", len(diff.Introduced))
		for _, c := range diff.Introduced {
			fmt.Fprintf(out, "  + %s [%s] affecting %d node(s)\n", c.RuleID, c.Impact, c.CurrentNodes)
		}
	}
	if len(diff.Resolved) > 0 {
		fmt.Fprintf(out, "\nResolved (%d):\n", len(diff.Resolved))
		for _, c := range diff.Resolved {
			fmt.Fprintf(out, "  - %s [%s] previously affecting %d node(s)\n", c.RuleID, c.Impact, c.PreviousNodes)
		}
	}
	if len(diff.Changed) > 0 {
		fmt.Fprintf(out, "\nChanged (%d):\n", len(diff.Changed))
		for _, c := range diff.Changed {
			fmt.Fprintf(out, "  ~ %s [%s] %d -> %d node(s)\n", c.RuleID, c.Impact, c.PreviousNodes, c.CurrentNodes)
		}
	}

	fmt.Fprintln(out)
	if diff.Improved() {
		fmt.Fprintln(out, "Overall: improved")
	} else if len(diff.Introduced) > len(diff.Resolved) {
		fmt.Fprintln(out, "Overall: worsened")
	} else {
		fmt.Fprintln(out, "Overall: mixed")
	}
}
