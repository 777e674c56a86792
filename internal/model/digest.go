package model

import (
	"github.com/feudadrien/a11yscan/internal/wcag"
)

// NoTopIssuesMessage is rendered when a digest contains no critical or
// serious issues. A fixed sentinel distinguishes "nothing critical" from
// "nothing at all" in downstream rendering.
const NoTopIssuesMessage = "No critical or serious accessibility issues found."

// RankedIssue is one entry in the severity-ranked digest.
type RankedIssue struct {
	// Title is the rule's short remediation text, falling back to the
	// rule ID when the engine supplied none.
	Title string `json:"title"`

	// Impact is the severity classification (critical or serious).
	Impact Impact `json:"impact"`

	// Description explains what the rule checks.
	Description string `json:"description,omitempty"`

	// StandardsIDs are the WCAG success criteria the rule maps to,
	// in dotted form ("1.4.3"), derived from the rule's tags.
	StandardsIDs []string `json:"standards_ids,omitempty"`

	// HelpURL links to the rule's documentation page.
	HelpURL string `json:"help_url,omitempty"`

	// AffectedNodeCount is the number of DOM nodes failing the rule.
	AffectedNodeCount int `json:"affected_node_count"`
}

// SummaryDigest is the reduced, human-oriented view of a scan result.
// It is rebuilt fresh on every summarization call and never mutated in
// place.
type SummaryDigest struct {
	// Target is the document URL from the underlying result.
	Target string `json:"target,omitempty"`

	// TotalViolations counts all violation records regardless of impact.
	TotalViolations int `json:"total_violations"`

	// Issues are the critical and serious violations, in the order the
	// rule engine returned them.
	Issues []RankedIssue `json:"issues"`
}

// NewSummaryDigest reduces a scan result into a severity-ranked digest.
//
// TotalViolations counts every violation. Issues contains only critical
// and serious violations; moderate and minor are counted but not ranked.
// Ordering within Issues is stable, preserving the order in which the
// rule engine returned the violations. The engine already groups results
// by rule; callers who need critical-before-serious ordering must
// post-sort. This is current behavior, not a bug.
func NewSummaryDigest(result *ScanResult) *SummaryDigest {
	digest := &SummaryDigest{
		Target:          result.URL,
		TotalViolations: len(result.Violations),
		Issues:          make([]RankedIssue, 0),
	}

	for _, v := range result.Violations {
		if !v.Impact.IsTopIssue() {
			continue
		}

		title := v.Help
		if title == "" {
			title = v.ID
		}

		digest.Issues = append(digest.Issues, RankedIssue{
			Title:             title,
			Impact:            v.Impact,
			Description:       v.Description,
			StandardsIDs:      wcag.IDsFromTags(v.Tags),
			HelpURL:           v.HelpURL,
			AffectedNodeCount: len(v.Nodes),
		})
	}

	return digest
}

// HasTopIssues reports whether the digest contains any ranked issues.
func (d *SummaryDigest) HasTopIssues() bool {
	return len(d.Issues) > 0
}
