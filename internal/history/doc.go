// Package history provides SQLite-based storage for scan results.
// Stored scans power the history listing and the comparison of a
// target's accessibility posture over time.
package history
