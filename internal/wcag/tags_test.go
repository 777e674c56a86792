package wcag

import (
	"reflect"
	"testing"
)

// TestResolve tests conformance tag set resolution.
func TestResolve(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		ruleset  Ruleset
		level    Level
		extra    []string
		expected []string
	}{
		{
			name:     "defaults",
			ruleset:  "",
			level:    "",
			expected: []string{"wcag22aa"},
		},
		{
			name:     "wcag22 AA",
			ruleset:  RulesetWCAG22,
			level:    LevelAA,
			expected: []string{"wcag22aa"},
		},
		{
			name:     "wcag22 AAA",
			ruleset:  RulesetWCAG22,
			level:    LevelAAA,
			expected: []string{"wcag22aaa"},
		},
		{
			name:     "wcag21 A",
			ruleset:  RulesetWCAG21,
			level:    LevelA,
			expected: []string{"wcag21a"},
		},
		{
			name:     "wcag21 AAA",
			ruleset:  RulesetWCAG21,
			level:    LevelAAA,
			expected: []string{"wcag21aaa"},
		},
		{
			name:     "extra tags appended in order",
			ruleset:  RulesetWCAG22,
			level:    LevelAA,
			extra:    []string{"best-practice", "experimental"},
			expected: []string{"wcag22aa", "best-practice", "experimental"},
		},
		{
			name:     "extra tags not deduplicated",
			ruleset:  RulesetWCAG22,
			level:    LevelAA,
			extra:    []string{"wcag22aa", "wcag22aa"},
			expected: []string{"wcag22aa", "wcag22aa", "wcag22aa"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tc.ruleset, tc.level, tc.extra)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Resolve(%q, %q, %v) = %v, expected %v",
					tc.ruleset, tc.level, tc.extra, got, tc.expected)
			}
		})
	}
}

// TestResolveBaseTagFirst verifies the base tag is always the first element
// for every ruleset/level pair.
func TestResolveBaseTagFirst(t *testing.T) {
	t.Parallel()

	rulesets := []Ruleset{RulesetWCAG22, RulesetWCAG21}
	levels := []Level{LevelA, LevelAA, LevelAAA}
	expected := map[Ruleset]map[Level]string{
		RulesetWCAG22: {LevelA: "wcag22a", LevelAA: "wcag22aa", LevelAAA: "wcag22aaa"},
		RulesetWCAG21: {LevelA: "wcag21a", LevelAA: "wcag21aa", LevelAAA: "wcag21aaa"},
	}

	for _, rs := range rulesets {
		for _, lv := range levels {
			tags := Resolve(rs, lv, []string{"extra"})
			if tags[0] != expected[rs][lv] {
				t.Errorf("Resolve(%q, %q)[0] = %q, expected %q", rs, lv, tags[0], expected[rs][lv])
			}
		}
	}
}

// TestValidRuleset tests ruleset validation.
func TestValidRuleset(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected bool
	}{
		{"wcag22", true},
		{"wcag21", true},
		{"wcag20", false},
		{"WCAG22", false},
		{"", false},
		{"section508", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := ValidRuleset(tc.input); got != tc.expected {
				t.Errorf("ValidRuleset(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

// TestValidLevel tests conformance level validation.
func TestValidLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected bool
	}{
		{"A", true},
		{"AA", true},
		{"AAA", true},
		{"aa", false},
		{"AAAA", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			if got := ValidLevel(tc.input); got != tc.expected {
				t.Errorf("ValidLevel(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}
