// Package model defines the data structures shared across the scanner:
// rule violation records as returned by the axe-core engine, scan and
// batch results, and the severity-ranked summary digest derived from them.
package model
