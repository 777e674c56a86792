package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Impact is the severity classification axe-core assigns to a violation.
//
// Design decision: We use a string-typed enum rather than iota constants
// because the values round-trip through the engine's JSON output verbatim.
// Rank() provides ordering where numeric comparison is needed.
type Impact string

const (
	// ImpactMinor indicates cosmetic issues with little barrier effect.
	ImpactMinor Impact = "minor"

	// ImpactModerate indicates issues that frustrate some users.
	ImpactModerate Impact = "moderate"

	// ImpactSerious indicates issues that block content for some users.
	ImpactSerious Impact = "serious"

	// ImpactCritical indicates issues that make content unusable with
	// assistive technology.
	ImpactCritical Impact = "critical"
)

// Rank returns a numeric severity rank for ordering. Higher is worse.
// Unknown impact values rank below minor.
func (i Impact) Rank() int {
	switch i {
	case ImpactCritical:
		return 4
	case ImpactSerious:
		return 3
	case ImpactModerate:
		return 2
	case ImpactMinor:
		return 1
	default:
		return 0
	}
}

// IsTopIssue reports whether this impact level belongs in the ranked
// issue list of a summary digest. Only critical and serious qualify;
// moderate and minor are counted but not ranked.
func (i Impact) IsTopIssue() bool {
	return i == ImpactCritical || i == ImpactSerious
}

// NodeResult describes one DOM node affected by a violation.
// The fields mirror the axe-core node result shape.
type NodeResult struct {
	// HTML is the source snippet of the offending element.
	HTML string `json:"html,omitempty"`

	// Target is the CSS selector path identifying the element.
	Target []string `json:"target,omitempty"`

	// FailureSummary explains what must change for the node to pass.
	FailureSummary string `json:"failureSummary,omitempty"` //nolint:tagliatelle // axe-core field name
}

// ViolationRecord is one rule violation produced by the rule engine.
// The record is treated as opaque except for Tags and Impact, which the
// standards mapper and summarizer read.
type ViolationRecord struct {
	// ID is the axe-core rule identifier, e.g. "image-alt".
	ID string `json:"id"`

	// Description explains what the rule checks.
	Description string `json:"description,omitempty"`

	// Help is the short remediation text.
	Help string `json:"help,omitempty"`

	// HelpURL links to the rule's documentation page.
	HelpURL string `json:"helpUrl,omitempty"` //nolint:tagliatelle // axe-core field name

	// Impact is the severity classification.
	Impact Impact `json:"impact,omitempty"`

	// Tags are the engine's rule tags, including conformance tags
	// ("wcag22aa") and criterion tags ("wcag143").
	Tags []string `json:"tags,omitempty"`

	// Nodes lists the affected DOM nodes in document order.
	Nodes []NodeResult `json:"nodes,omitempty"`
}

// ScanResult is the full output of one rule engine run against a page.
//
// Passes, Incomplete, and Inapplicable are carried as raw JSON: the
// scanner passes them through untouched and nothing downstream reads
// their structure.
type ScanResult struct {
	// URL is the document URL the engine ran against. For raw-HTML and
	// file scans this is the synthetic page URL (about:blank or file://).
	URL string `json:"url,omitempty"`

	// Timestamp is when the engine run completed.
	Timestamp time.Time `json:"timestamp,omitzero"`

	// Violations are the failed rules.
	Violations []ViolationRecord `json:"violations"`

	// Passes are the rules that passed. Opaque pass-through.
	Passes json.RawMessage `json:"passes,omitempty"`

	// Incomplete are the rules the engine could not decide. Opaque.
	Incomplete json.RawMessage `json:"incomplete,omitempty"`

	// Inapplicable are the rules with no matching elements. Opaque.
	Inapplicable json.RawMessage `json:"inapplicable,omitempty"`
}

// ErrInvalidResultPayload is returned by ParseScanResult when the
// supplied payload is not a previously produced scan result.
var ErrInvalidResultPayload = errors.New("payload is not a valid scan result")

// ParseScanResult decodes and shape-checks a serialized ScanResult.
// It is used for summarize requests, whose payload may come from outside
// the process. A payload without a violations array is rejected: an
// engine run always produces one, even when empty.
func ParseScanResult(data []byte) (*ScanResult, error) {
	// Probe for the violations key before decoding so that a JSON
	// document of the wrong shape (e.g. a digest, or a batch result)
	// produces ErrInvalidResultPayload rather than a zero-valued result.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResultPayload, err)
	}
	if _, ok := probe["violations"]; !ok {
		return nil, fmt.Errorf("%w: missing violations field", ErrInvalidResultPayload)
	}

	var result ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResultPayload, err)
	}
	return &result, nil
}

// BatchEntry is the per-target outcome within a batch scan.
// Exactly one of Result or Error is set.
type BatchEntry struct {
	// Target is the requested URL.
	Target string `json:"target"`

	// Result is the scan result when the target succeeded.
	Result *ScanResult `json:"result,omitempty"`

	// Error is the failure message when the target failed.
	Error string `json:"error,omitempty"`
}

// BatchResult holds one entry per requested URL, in request order.
// The length always equals the request length regardless of individual
// failures; a failing target never removes or reorders entries.
type BatchResult struct {
	// Entries are the per-target outcomes, request-ordered.
	Entries []BatchEntry `json:"entries"`
}

// Succeeded returns the number of entries that produced a result.
func (b *BatchResult) Succeeded() int {
	n := 0
	for _, e := range b.Entries {
		if e.Result != nil {
			n++
		}
	}
	return n
}

// Failed returns the number of entries that recorded an error.
func (b *BatchResult) Failed() int {
	return len(b.Entries) - b.Succeeded()
}
