package browser

import "context"

// Page is the capability surface a scan strategy needs from one browser
// tab. Every method is a suspension point bounded by the configured step
// timeout; implementations must respect context cancellation.
//
// Design decision: Strategies depend on this interface rather than on
// chromedp directly because:
//  1. Scan logic becomes testable with in-memory fakes
//  2. The protocol plumbing stays in one place
//  3. A different driver could be swapped in without touching strategies
type Page interface {
	// Navigate loads the URL and waits for the document to settle.
	Navigate(ctx context.Context, url string) error

	// SetContent replaces the document with the given HTML and waits
	// for the DOM to be ready.
	SetContent(ctx context.Context, html string) error

	// Type focuses the element matching selector and types text into it.
	Type(ctx context.Context, selector, text string) error

	// Click clicks the element matching selector.
	Click(ctx context.Context, selector string) error

	// WaitNavigation blocks until the page completes a navigation,
	// typically triggered by a form submit. It does not verify where
	// the navigation went.
	WaitNavigation(ctx context.Context) error

	// InjectScript evaluates the script source in the page, defining
	// whatever globals it declares. Called exactly once per page.
	InjectScript(ctx context.Context, source string) error

	// EvaluateAudit evaluates a JavaScript expression that resolves to
	// a JSON-serializable value and returns the raw JSON.
	EvaluateAudit(ctx context.Context, expression string) ([]byte, error)
}

// Session is one browser process. Pages opened from it are exclusively
// owned by the single in-flight work function that created them.
type Session interface {
	// WithPage opens a fresh tab, runs work with it, and closes the tab
	// on every exit path. The work function's result is returned
	// unchanged; tab close failures are logged, never propagated.
	WithPage(ctx context.Context, work func(Page) error) error
}

// Launcher creates browser sessions with scoped lifetimes.
type Launcher interface {
	// WithSession launches a browser process, runs work with the
	// session, and tears the process down on every exit path. A launch
	// failure wraps ErrLaunch; teardown failures are logged, never
	// suppressing or replacing the work function's result.
	WithSession(ctx context.Context, work func(Session) error) error
}
