package wcag

import (
	"regexp"
	"strings"
)

// criterionTagPattern matches axe-core tags that encode a WCAG success
// criterion: the "wcag" prefix followed by exactly three digits, e.g.
// "wcag143" for criterion 1.4.3. Matching is case-insensitive because
// axe-core tags are lowercase by convention but payloads supplied from
// outside the process are not guaranteed to be.
var criterionTagPattern = regexp.MustCompile(`(?i)^wcag(\d{3})$`)

// IDsFromTags extracts WCAG success criterion identifiers from a rule's
// tag list. Tags matching criterionTagPattern are converted to dotted
// form by inserting separators after the first and second digit:
// "wcag143" -> "1.4.3". Non-matching tags (level tags like "wcag22aa",
// engine tags like "cat.text-alternatives") are excluded.
//
// The conversion is purely positional (Principle.Guideline.Criterion)
// and performs no validation against a real success criterion table.
// The three-digit assumption is inherited from the upstream tag
// convention; a future tag scheme with more digits would not match.
//
// Ordering preserves the filtered input order. Duplicate tags produce
// duplicate identifiers; callers needing a set must dedupe themselves.
func IDsFromTags(tags []string) []string {
	var ids []string
	for _, tag := range tags {
		m := criterionTagPattern.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		digits := m[1]
		ids = append(ids, digits[0:1]+"."+digits[1:2]+"."+digits[2:3])
	}
	return ids
}

// Reference holds canonical W3C links for one WCAG success criterion.
// References are derived on demand and never persisted; their lifetime
// is the duration of one summarization call.
type Reference struct {
	// ID is the success criterion in dotted form, e.g. "1.4.3".
	ID string `json:"id"`

	// SpecURL is the technical recommendation document.
	SpecURL string `json:"spec_url"`

	// QuickRefURL is the "How to Meet" quick reference, anchored to
	// the criterion.
	QuickRefURL string `json:"quick_ref_url"`

	// UnderstandingURL is the Understanding documents landing page.
	// It is not criterion-specific; callers needing a precise
	// Understanding link must combine it with the criterion slug
	// themselves. Known limitation.
	UnderstandingURL string `json:"understanding_url"`
}

// ReferenceLinks builds the canonical W3C links for a success criterion
// identifier in dotted form. The ruleset selects between the WCAG 2.2
// and WCAG 2.1 document trees; empty falls back to DefaultRuleset.
func ReferenceLinks(id string, ruleset Ruleset) Reference {
	spec := "WCAG22"
	if ruleset == RulesetWCAG21 {
		spec = "WCAG21"
	}

	anchor := strings.ReplaceAll(id, ".", "")

	return Reference{
		ID:               id,
		SpecURL:          "https://www.w3.org/TR/" + spec + "/",
		QuickRefURL:      "https://www.w3.org/WAI/" + spec + "/quickref/#" + anchor,
		UnderstandingURL: "https://www.w3.org/WAI/" + spec + "/Understanding/",
	}
}
