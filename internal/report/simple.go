package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/feudadrien/a11yscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteResult outputs the scan result as a digest in human-readable
// format. The full violation detail belongs to the JSON format; the
// text format always shows the reduced view.
func (w *SimpleWriter) WriteResult(result *model.ScanResult) (int, error) {
	return w.WriteDigest(model.NewSummaryDigest(result))
}

// WriteDigest outputs the summary digest in human-readable format.
func (w *SimpleWriter) WriteDigest(digest *model.SummaryDigest) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, digest)
	w.writeIssues(&sb, digest)

	return io.WriteString(w.output, sb.String())
}

// WriteBatch outputs one digest section per batch entry, in request
// order. Failed entries render their error in place of a digest.
func (w *SimpleWriter) WriteBatch(batch *model.BatchResult) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("BATCH SCAN: %d targets, %d succeeded, %d failed\n",
		len(batch.Entries), batch.Succeeded(), batch.Failed()))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	for i, entry := range batch.Entries {
		sb.WriteString(fmt.Sprintf("[%d/%d] %s\n", i+1, len(batch.Entries), entry.Target))
		if entry.Error != "" {
			sb.WriteString(fmt.Sprintf("  FAILED: %s\n\n", entry.Error))
			continue
		}

		digest := model.NewSummaryDigest(entry.Result)
		w.writeIssues(&sb, digest)
	}

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the digest header with scan information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, digest *model.SummaryDigest) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    ACCESSIBILITY SCAN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if digest.Target != "" {
		sb.WriteString(fmt.Sprintf("Target:           %s\n", digest.Target))
	}
	sb.WriteString(fmt.Sprintf("Total Violations: %d\n", digest.TotalViolations))
	sb.WriteString(fmt.Sprintf("Top Issues:       %d\n", len(digest.Issues)))
	sb.WriteString("\n")
}

// writeIssues writes the ranked issue list, or the fixed no-issue
// message when the digest has none.
func (w *SimpleWriter) writeIssues(sb *strings.Builder, digest *model.SummaryDigest) {
	if !digest.HasTopIssues() {
		sb.WriteString("  " + model.NoTopIssuesMessage + "\n")
		if digest.TotalViolations > 0 {
			sb.WriteString(fmt.Sprintf("  (%d lower-impact violations remain; see the JSON report)\n",
				digest.TotalViolations))
		}
		sb.WriteString("\n")
		return
	}

	for _, issue := range digest.Issues {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", strings.ToUpper(string(issue.Impact)), issue.Title))
		sb.WriteString(fmt.Sprintf("    Affected nodes: %d\n", issue.AffectedNodeCount))
		if len(issue.StandardsIDs) > 0 {
			sb.WriteString(fmt.Sprintf("    WCAG criteria:  %s\n", strings.Join(issue.StandardsIDs, ", ")))
		}
		if issue.HelpURL != "" {
			sb.WriteString(fmt.Sprintf("    Help:           %s\n", issue.HelpURL))
		}
		if w.verbose && issue.Description != "" {
			sb.WriteString(fmt.Sprintf("    Description:    %s\n", issue.Description))
		}
	}
	sb.WriteString("\n")
}
