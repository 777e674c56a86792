package wcag

import "strings"

// Ruleset identifies a WCAG specification version used for conformance
// filtering. The zero value is not valid; use DefaultRuleset.
type Ruleset string

const (
	// RulesetWCAG22 selects WCAG 2.2 rules. This is the default.
	RulesetWCAG22 Ruleset = "wcag22"

	// RulesetWCAG21 selects WCAG 2.1 rules.
	RulesetWCAG21 Ruleset = "wcag21"

	// DefaultRuleset is used when a request does not specify a ruleset.
	DefaultRuleset = RulesetWCAG22
)

// Level identifies a WCAG conformance level.
type Level string

const (
	// LevelA is the minimum conformance level.
	LevelA Level = "A"

	// LevelAA is the mid conformance level and the common legal baseline.
	// This is the default.
	LevelAA Level = "AA"

	// LevelAAA is the strictest conformance level.
	LevelAAA Level = "AAA"

	// DefaultLevel is used when a request does not specify a level.
	DefaultLevel = LevelAA
)

// ValidRuleset reports whether s is a supported ruleset identifier.
// Requests with other values must be rejected at the request boundary;
// Resolve itself performs no validation.
func ValidRuleset(s string) bool {
	switch Ruleset(s) {
	case RulesetWCAG22, RulesetWCAG21:
		return true
	}
	return false
}

// ValidLevel reports whether s is a supported conformance level.
func ValidLevel(s string) bool {
	switch Level(s) {
	case LevelA, LevelAA, LevelAAA:
		return true
	}
	return false
}

// Resolve builds the conformance tag set for a scan.
//
// The first element is the base tag, the lowercase concatenation of the
// ruleset and level (e.g. "wcag22" + "AAA" -> "wcag22aaa"). Any extra
// tags are appended verbatim, order-preserving and without deduplication:
// the rule engine treats the tag list as a set, and callers may pass
// engine-specific tags (e.g. "best-practice") beyond the standard ones.
//
// Empty ruleset or level fall back to DefaultRuleset and DefaultLevel.
// Resolve is a pure function with no error conditions; invalid enum
// values are the request boundary's problem, not this package's.
func Resolve(ruleset Ruleset, level Level, extra []string) []string {
	if ruleset == "" {
		ruleset = DefaultRuleset
	}
	if level == "" {
		level = DefaultLevel
	}

	base := strings.ToLower(string(ruleset) + string(level))

	tags := make([]string, 0, 1+len(extra))
	tags = append(tags, base)
	tags = append(tags, extra...)
	return tags
}
