// Package wcag maps between axe-core conformance tags and WCAG success
// criteria. It resolves ruleset/level pairs into the tag set the rule
// engine runs with, extracts success criterion identifiers from rule
// tags, and builds canonical W3C reference links.
package wcag
