package model

import (
	"reflect"
	"testing"
)

// TestNewSummaryDigest tests the reduction of a scan result into a digest.
func TestNewSummaryDigest(t *testing.T) {
	t.Parallel()

	t.Run("counts all violations but ranks only critical and serious", func(t *testing.T) {
		t.Parallel()
		result := &ScanResult{
			URL: "https://example.com/",
			Violations: []ViolationRecord{
				{ID: "image-alt", Impact: ImpactCritical, Help: "Images must have alternative text"},
				{ID: "color-contrast", Impact: ImpactModerate},
				{ID: "label", Impact: ImpactSerious, Help: "Form elements must have labels"},
				{ID: "region", Impact: ImpactMinor},
			},
		}

		digest := NewSummaryDigest(result)

		if digest.TotalViolations != 4 {
			t.Errorf("TotalViolations = %d, expected 4", digest.TotalViolations)
		}
		if len(digest.Issues) != 2 {
			t.Fatalf("expected 2 ranked issues, got %d", len(digest.Issues))
		}

		// Engine order preserved: critical first because it came first,
		// not because it outranks serious.
		if digest.Issues[0].Title != "Images must have alternative text" {
			t.Errorf("unexpected first issue: %q", digest.Issues[0].Title)
		}
		if digest.Issues[1].Title != "Form elements must have labels" {
			t.Errorf("unexpected second issue: %q", digest.Issues[1].Title)
		}
	})

	t.Run("preserves engine order without severity re-sort", func(t *testing.T) {
		t.Parallel()
		result := &ScanResult{
			Violations: []ViolationRecord{
				{ID: "first-serious", Impact: ImpactSerious},
				{ID: "then-critical", Impact: ImpactCritical},
			},
		}

		digest := NewSummaryDigest(result)

		if len(digest.Issues) != 2 {
			t.Fatalf("expected 2 issues, got %d", len(digest.Issues))
		}
		if digest.Issues[0].Impact != ImpactSerious || digest.Issues[1].Impact != ImpactCritical {
			t.Error("issues were re-sorted by impact; engine order must be preserved")
		}
	})

	t.Run("no top issues still counts totals", func(t *testing.T) {
		t.Parallel()
		result := &ScanResult{
			Violations: []ViolationRecord{
				{ID: "a", Impact: ImpactModerate},
				{ID: "b", Impact: ImpactMinor},
				{ID: "c", Impact: ImpactMinor},
			},
		}

		digest := NewSummaryDigest(result)

		if digest.TotalViolations != 3 {
			t.Errorf("TotalViolations = %d, expected 3", digest.TotalViolations)
		}
		if digest.HasTopIssues() {
			t.Error("expected no top issues")
		}
		if digest.Issues == nil {
			t.Error("Issues must be an empty slice, not nil, for JSON rendering")
		}
	})

	t.Run("standards ids derived from tags", func(t *testing.T) {
		t.Parallel()
		result := &ScanResult{
			Violations: []ViolationRecord{
				{
					ID:     "image-alt",
					Impact: ImpactCritical,
					Tags:   []string{"cat.text-alternatives", "wcag2a", "wcag111"},
				},
			},
		}

		digest := NewSummaryDigest(result)

		expected := []string{"1.1.1"}
		if !reflect.DeepEqual(digest.Issues[0].StandardsIDs, expected) {
			t.Errorf("StandardsIDs = %v, expected %v", digest.Issues[0].StandardsIDs, expected)
		}
	})

	t.Run("title falls back to rule id", func(t *testing.T) {
		t.Parallel()
		result := &ScanResult{
			Violations: []ViolationRecord{
				{ID: "image-alt", Impact: ImpactCritical},
			},
		}

		digest := NewSummaryDigest(result)

		if digest.Issues[0].Title != "image-alt" {
			t.Errorf("Title = %q, expected rule ID fallback", digest.Issues[0].Title)
		}
	})

	t.Run("affected node count", func(t *testing.T) {
		t.Parallel()
		result := &ScanResult{
			Violations: []ViolationRecord{
				{
					ID:     "image-alt",
					Impact: ImpactCritical,
					Nodes:  []NodeResult{{HTML: "<img>"}, {HTML: "<img src=\"a.png\">"}},
				},
			},
		}

		digest := NewSummaryDigest(result)

		if digest.Issues[0].AffectedNodeCount != 2 {
			t.Errorf("AffectedNodeCount = %d, expected 2", digest.Issues[0].AffectedNodeCount)
		}
	})
}
