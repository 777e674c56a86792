// Package axe manages the axe-core rule engine program text. The script
// source is located on disk, read once, and held as immutable process-wide
// state so that concurrent scans can share it safely. The package also
// builds the JavaScript expression that invokes the engine with a
// conformance tag filter.
package axe
