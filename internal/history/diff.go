package history

import "github.com/feudadrien/a11yscan/internal/model"

// RuleChange describes how one rule's violation count changed between
// two scans of the same target.
type RuleChange struct {
	// RuleID is the rule identifier, e.g. "color-contrast".
	RuleID string `json:"rule_id"`

	// Impact is the rule's impact in the scan where it appears.
	Impact model.Impact `json:"impact,omitempty"`

	// PreviousNodes is the affected node count in the earlier scan.
	PreviousNodes int `json:"previous_nodes"`

	// CurrentNodes is the affected node count in the later scan.
	CurrentNodes int `json:"current_nodes"`
}

// ChangeSummary is the difference between two scans of a target.
type ChangeSummary struct {
	// Target is the compared target, taken from the current scan.
	Target string `json:"target,omitempty"`

	// Introduced lists rules violated now but not before.
	Introduced []RuleChange `json:"introduced"`

	// Resolved lists rules violated before but not now.
	Resolved []RuleChange `json:"resolved"`

	// Changed lists rules violated in both scans with a different
	// affected node count.
	Changed []RuleChange `json:"changed"`
}

// Improved reports whether the later scan resolved more rules than it
// introduced.
func (c *ChangeSummary) Improved() bool {
	return len(c.Resolved) > len(c.Introduced)
}

// HasChanges reports whether anything differs between the two scans.
func (c *ChangeSummary) HasChanges() bool {
	return len(c.Introduced) > 0 || len(c.Resolved) > 0 || len(c.Changed) > 0
}

// Diff compares two scan results by rule ID. Rules are matched by
// identifier, not position: the engine's output order carries no
// meaning across runs.
func Diff(previous, current *model.ScanResult) *ChangeSummary {
	summary := &ChangeSummary{
		Target:     current.URL,
		Introduced: make([]RuleChange, 0),
		Resolved:   make([]RuleChange, 0),
		Changed:    make([]RuleChange, 0),
	}

	prevByID := make(map[string]model.ViolationRecord, len(previous.Violations))
	for _, v := range previous.Violations {
		prevByID[v.ID] = v
	}

	seen := make(map[string]bool, len(current.Violations))
	for _, v := range current.Violations {
		seen[v.ID] = true

		prev, ok := prevByID[v.ID]
		if !ok {
			summary.Introduced = append(summary.Introduced, RuleChange{
				RuleID:       v.ID,
				Impact:       v.Impact,
				CurrentNodes: len(v.Nodes),
			})
			continue
		}
		if len(prev.Nodes) != len(v.Nodes) {
			summary.Changed = append(summary.Changed, RuleChange{
				RuleID:        v.ID,
				Impact:        v.Impact,
				PreviousNodes: len(prev.Nodes),
				CurrentNodes:  len(v.Nodes),
			})
		}
	}

	for _, v := range previous.Violations {
		if !seen[v.ID] {
			summary.Resolved = append(summary.Resolved, RuleChange{
				RuleID:        v.ID,
				Impact:        v.Impact,
				PreviousNodes: len(v.Nodes),
			})
		}
	}

	return summary
}
