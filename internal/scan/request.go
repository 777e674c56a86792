package scan

import (
	"net/url"

	"github.com/feudadrien/a11yscan/internal/config"
	"github.com/feudadrien/a11yscan/internal/wcag"
)

// RuleOptions selects which rules the engine runs. Zero values fall
// back to the defaults (wcag22, AA).
type RuleOptions struct {
	// Ruleset is the WCAG specification version (wcag22 or wcag21).
	Ruleset string `json:"ruleset,omitempty"`

	// Level is the conformance level (A, AA, or AAA).
	Level string `json:"level,omitempty"`

	// Tags are additional engine tags appended verbatim after the
	// resolved conformance tag.
	Tags []string `json:"tags,omitempty"`
}

// Validate checks the ruleset and level values. Empty values are valid
// and mean "use the default".
func (o RuleOptions) Validate() error {
	if o.Ruleset != "" && !wcag.ValidRuleset(o.Ruleset) {
		return ErrInvalidRuleset
	}
	if o.Level != "" && !wcag.ValidLevel(o.Level) {
		return ErrInvalidLevel
	}
	return nil
}

// ResolvedTags returns the engine tag list for these options, applying
// defaults for empty fields. The conformance tag always comes first.
func (o RuleOptions) ResolvedTags() []string {
	ruleset := wcag.Ruleset(o.Ruleset)
	if ruleset == "" {
		ruleset = wcag.DefaultRuleset
	}
	level := wcag.Level(o.Level)
	if level == "" {
		level = wcag.DefaultLevel
	}
	return wcag.Resolve(ruleset, level, o.Tags)
}

// URLRequest asks for a scan of one live URL.
type URLRequest struct {
	// URL is the absolute http(s) target.
	URL string `json:"url"`

	// Rules selects the rule set to run.
	Rules RuleOptions `json:"rules,omitzero"`
}

// Validate checks the request before browser acquisition.
func (r URLRequest) Validate() error {
	if err := validateTargetURL(r.URL); err != nil {
		return err
	}
	return r.Rules.Validate()
}

// HTMLRequest asks for a scan of a raw HTML document.
type HTMLRequest struct {
	// HTML is the document markup.
	HTML string `json:"html"`

	// Rules selects the rule set to run.
	Rules RuleOptions `json:"rules,omitzero"`
}

// Validate checks the request before browser acquisition.
func (r HTMLRequest) Validate() error {
	if r.HTML == "" {
		return ErrEmptyHTML
	}
	return r.Rules.Validate()
}

// FileRequest asks for a scan of a local HTML file.
type FileRequest struct {
	// Path is the file system path to the HTML document.
	Path string `json:"path"`

	// Rules selects the rule set to run.
	Rules RuleOptions `json:"rules,omitzero"`
}

// Validate checks the request before browser acquisition. File
// readability is checked separately, also before acquisition.
func (r FileRequest) Validate() error {
	if r.Path == "" {
		return ErrEmptyPath
	}
	return r.Rules.Validate()
}

// LoginRequest asks for an authenticated scan: perform a scripted form
// login, then scan the target URL within the same session.
type LoginRequest struct {
	// URL is the page to scan after login.
	URL string `json:"url"`

	// Login carries the credentials and form selectors. The password is
	// used for typing only and never appears in logs or results.
	Login config.LoginConfig `json:"-"`

	// Rules selects the rule set to run.
	Rules RuleOptions `json:"rules,omitzero"`
}

// Validate checks the request before browser acquisition.
func (r LoginRequest) Validate() error {
	if err := validateTargetURL(r.URL); err != nil {
		return err
	}
	if err := validateTargetURL(r.Login.LoginURL); err != nil {
		return err
	}
	if r.Login.Username == "" || r.Login.Password == "" ||
		r.Login.UsernameSelector == "" || r.Login.PasswordSelector == "" ||
		r.Login.SubmitSelector == "" {
		return ErrIncompleteLogin
	}
	return r.Rules.Validate()
}

// BatchRequest asks for a scan of several URLs in one browser session.
type BatchRequest struct {
	// URLs are the targets, scanned in request order. An individually
	// invalid or failing URL is recorded per entry and never aborts the
	// rest of the batch.
	URLs []string `json:"urls"`

	// Rules selects the rule set to run against every target.
	Rules RuleOptions `json:"rules,omitzero"`
}

// Validate checks the batch shape and rule options. Per-URL validity is
// deliberately not checked here: a malformed URL becomes a per-entry
// error so the remaining targets still get scanned.
func (r BatchRequest) Validate() error {
	if len(r.URLs) == 0 {
		return ErrEmptyBatch
	}
	return r.Rules.Validate()
}

// validateTargetURL checks that raw is an absolute http or https URL
// with a host.
func validateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
