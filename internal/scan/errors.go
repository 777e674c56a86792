package scan

import "errors"

// Request validation and orchestration errors. Validation errors are
// returned before any browser resource is acquired.
var (
	// ErrInvalidURL is returned when a target is not an absolute
	// http or https URL.
	ErrInvalidURL = errors.New("target must be an absolute http(s) URL")

	// ErrEmptyHTML is returned when a raw-HTML scan request carries no
	// markup.
	ErrEmptyHTML = errors.New("html content is empty")

	// ErrEmptyPath is returned when a file scan request carries no path.
	ErrEmptyPath = errors.New("file path is empty")

	// ErrFileRead is returned when the HTML file for a file scan cannot
	// be read.
	ErrFileRead = errors.New("failed to read html file")

	// ErrEmptyBatch is returned when a batch scan request lists no URLs.
	ErrEmptyBatch = errors.New("batch contains no targets")

	// ErrIncompleteLogin is returned when an authenticated scan request
	// is missing credentials or form selectors.
	ErrIncompleteLogin = errors.New("login requires url, username, password, and all three selectors")

	// ErrInvalidRuleset is returned for an unsupported ruleset value.
	ErrInvalidRuleset = errors.New("ruleset must be wcag22 or wcag21")

	// ErrInvalidLevel is returned for an unsupported conformance level.
	ErrInvalidLevel = errors.New("level must be A, AA, or AAA")

	// ErrAuditFailed is returned when the rule engine run inside the
	// page fails or produces an unusable payload.
	ErrAuditFailed = errors.New("accessibility audit failed")
)
