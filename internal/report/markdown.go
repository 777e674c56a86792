package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/feudadrien/a11yscan/internal/model"
	"github.com/feudadrien/a11yscan/internal/wcag"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteResult outputs the scan result as a Markdown digest.
func (w *MarkdownWriter) WriteResult(result *model.ScanResult) (int, error) {
	return w.WriteDigest(model.NewSummaryDigest(result))
}

// WriteDigest outputs the summary digest in Markdown format.
func (w *MarkdownWriter) WriteDigest(digest *model.SummaryDigest) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Accessibility Scan Report")
	md.PlainText("")

	w.writeSummary(md, digest)
	w.writeIssues(md, digest)

	return len(md.String()), md.Build()
}

// WriteBatch outputs one digest section per batch entry, in request
// order.
func (w *MarkdownWriter) WriteBatch(batch *model.BatchResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Accessibility Batch Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Targets", "Succeeded", "Failed"},
		Rows: [][]string{{
			strconv.Itoa(len(batch.Entries)),
			strconv.Itoa(batch.Succeeded()),
			strconv.Itoa(batch.Failed()),
		}},
	})
	md.PlainText("")

	for _, entry := range batch.Entries {
		md.H2(entry.Target)
		md.PlainText("")
		if entry.Error != "" {
			md.Cautionf("Scan failed: %s", entry.Error)
			md.PlainText("")
			continue
		}

		digest := model.NewSummaryDigest(entry.Result)
		w.writeSummary(md, digest)
		w.writeIssues(md, digest)
	}

	return len(md.String()), md.Build()
}

// writeSummary writes the digest overview table and severity alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, digest *model.SummaryDigest) {
	rows := [][]string{
		{"Total Violations", strconv.Itoa(digest.TotalViolations)},
		{"Top Issues", strconv.Itoa(len(digest.Issues))},
	}
	if digest.Target != "" {
		rows = append([][]string{{"Target", "`" + digest.Target + "`"}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if digest.HasTopIssues() {
		w.writePieChart(md, digest)
	}
	w.writeAlert(md, digest)
}

// writePieChart writes a mermaid pie chart of the top issue impacts.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, digest *model.SummaryDigest) {
	var critical, serious uint64
	for _, issue := range digest.Issues {
		switch issue.Impact {
		case model.ImpactCritical:
			critical++
		case model.ImpactSerious:
			serious++
		}
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Top Issue Impact Distribution"),
		piechart.WithShowData(true),
	)
	if critical > 0 {
		chart.LabelAndIntValue("Critical", critical)
	}
	if serious > 0 {
		chart.LabelAndIntValue("Serious", serious)
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the digest contents.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, digest *model.SummaryDigest) {
	critical := 0
	for _, issue := range digest.Issues {
		if issue.Impact == model.ImpactCritical {
			critical++
		}
	}

	switch {
	case critical > 0:
		md.Cautionf("%d critical accessibility issue(s) require immediate attention.", critical)
	case digest.HasTopIssues():
		md.Warningf("%d serious accessibility issue(s) should be addressed.", len(digest.Issues))
	case digest.TotalViolations > 0:
		md.Notef("%s %d lower-impact violations remain.", model.NoTopIssuesMessage, digest.TotalViolations)
	default:
		md.Tip(model.NoTopIssuesMessage)
	}
	md.PlainText("")
}

// writeIssues writes the ranked issue table with per-issue details.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, digest *model.SummaryDigest) {
	if !digest.HasTopIssues() {
		return
	}

	md.H2("Top Issues")
	md.PlainText("")

	rows := make([][]string, len(digest.Issues))
	for i, issue := range digest.Issues {
		criteria := "-"
		if len(issue.StandardsIDs) > 0 {
			links := make([]string, len(issue.StandardsIDs))
			for j, id := range issue.StandardsIDs {
				ref := wcag.ReferenceLinks(id, wcag.DefaultRuleset)
				links[j] = "[" + ref.ID + "](" + ref.QuickRefURL + ")"
			}
			criteria = strings.Join(links, ", ")
		}
		help := "-"
		if issue.HelpURL != "" {
			help = "[docs](" + issue.HelpURL + ")"
		}

		rows[i] = []string{
			issue.Title,
			string(issue.Impact),
			strconv.Itoa(issue.AffectedNodeCount),
			criteria,
			help,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Issue", "Impact", "Nodes", "WCAG Criteria", "Help"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, issue := range digest.Issues {
		if issue.Description != "" {
			md.Details(issue.Title, issue.Description)
		}
	}
	md.PlainText("")
}
