package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no URL, file, or stdin source is given.
	ErrNoTarget = errors.New("no target specified: provide one or more URLs, --file, or --stdin")

	// ErrConflictingTargets is returned when more than one of URLs,
	// --file, and --stdin is given. Each scan has exactly one source.
	ErrConflictingTargets = errors.New("conflicting targets: URLs, --file, and --stdin are mutually exclusive")

	// ErrInvalidRuleset is returned for rulesets other than wcag22/wcag21.
	ErrInvalidRuleset = errors.New("invalid ruleset: must be wcag22 or wcag21")

	// ErrInvalidLevel is returned for levels other than A, AA, or AAA.
	ErrInvalidLevel = errors.New("invalid level: must be A, AA, or AAA")

	// ErrInvalidTimeout is returned when the step timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when batch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrLoginRequiresSingleTarget is returned when login flags are
	// combined with batch, file, or stdin scanning.
	ErrLoginRequiresSingleTarget = errors.New("login requires exactly one target URL")

	// ErrIncompleteLoginConfig is returned when a login URL is given
	// without the three form selectors.
	ErrIncompleteLoginConfig = errors.New("incomplete login config: username, password, and submit selectors are required")
)
