package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/feudadrien/a11yscan/internal/config"
)

// ChromeLauncher launches headless Chrome processes via chromedp.
// Each WithSession call owns one Chrome process; no state is shared
// between sessions.
type ChromeLauncher struct {
	// execPath is an explicit Chrome/Chromium binary path. Empty lets
	// chromedp locate one.
	execPath string

	// stepTimeout bounds each page operation.
	stepTimeout time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// ChromeOption configures a ChromeLauncher.
type ChromeOption func(*ChromeLauncher)

// WithExecPath sets an explicit browser binary path.
func WithExecPath(path string) ChromeOption {
	return func(l *ChromeLauncher) {
		l.execPath = path
	}
}

// WithStepTimeout sets the per-step timeout.
func WithStepTimeout(d time.Duration) ChromeOption {
	return func(l *ChromeLauncher) {
		if d > 0 {
			l.stepTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the launcher.
func WithLogger(logger *slog.Logger) ChromeOption {
	return func(l *ChromeLauncher) {
		l.logger = logger
	}
}

// NewChromeLauncher creates a ChromeLauncher with the given options.
func NewChromeLauncher(opts ...ChromeOption) *ChromeLauncher {
	l := &ChromeLauncher{
		stepTimeout: config.DefaultStepTimeout,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.logger == nil {
		l.logger = slog.Default()
	}

	return l
}

// WithSession launches a Chrome process, runs work against it, and
// shuts the process down on every exit path. The caller's context
// roots the allocator chain, so caller cancellation propagates into
// every page operation of the session.
func (l *ChromeLauncher) WithSession(ctx context.Context, work func(Session) error) error {
	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if l.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(l.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer func() {
		// Graceful shutdown; close failures must never replace the
		// result already computed by work.
		if err := chromedp.Cancel(browserCtx); err != nil {
			l.logger.Warn("browser shutdown failed", "error", err)
		}
		cancelBrowser()
	}()

	// Start the process eagerly so that a launch failure surfaces here
	// as a fatal error rather than inside the first page operation.
	if err := chromedp.Run(browserCtx); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	return work(&chromeSession{
		browserCtx:  browserCtx,
		stepTimeout: l.stepTimeout,
		logger:      l.logger,
	})
}

// chromeSession is one running Chrome process.
type chromeSession struct {
	browserCtx  context.Context
	stepTimeout time.Duration
	logger      *slog.Logger
}

// WithPage opens a fresh tab, runs work with it, and closes the tab on
// every exit path.
func (s *chromeSession) WithPage(ctx context.Context, work func(Page) error) error {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer func() {
		if err := chromedp.Cancel(tabCtx); err != nil {
			s.logger.Warn("tab close failed", "error", err)
		}
		cancelTab()
	}()

	// Materialize the tab before handing it to work.
	if err := chromedp.Run(tabCtx); err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}

	p := &chromePage{
		tabCtx:      tabCtx,
		stepTimeout: s.stepTimeout,
		loadFired:   make(chan struct{}, 1),
	}

	// The listener lives as long as the tab. Arming it here, before any
	// step runs, means a load event firing between a click and the
	// subsequent WaitNavigation call cannot be lost.
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if _, ok := ev.(*page.EventLoadEventFired); ok {
			select {
			case p.loadFired <- struct{}{}:
			default:
			}
		}
	})

	return work(p)
}

// chromePage drives one Chrome tab.
type chromePage struct {
	tabCtx      context.Context
	stepTimeout time.Duration

	// loadFired receives one signal per load event, capacity one.
	loadFired chan struct{}
}

// run executes chromedp actions as one timeout-bounded step. The
// caller's context is linked in so that cancelling the scan cancels
// the in-flight protocol command.
func (p *chromePage) run(ctx context.Context, step string, actions ...chromedp.Action) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stepCtx, cancel := context.WithTimeout(p.tabCtx, p.stepTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(stepCtx, actions...); err != nil {
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", step, ErrStepTimeout)
		}
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}

// Navigate loads the URL and waits for the load event and a ready body.
// The load event is the closest chromedp equivalent of waiting for the
// network to go idle.
func (p *chromePage) Navigate(ctx context.Context, url string) error {
	err := p.run(ctx, "navigate",
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil && !errors.Is(err, ErrStepTimeout) && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}
	return err
}

// SetContent replaces the document with the given HTML on a blank page
// and waits for the DOM to be ready.
func (p *chromePage) SetContent(ctx context.Context, html string) error {
	return p.run(ctx, "set content",
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Type waits for the element and types text into it.
func (p *chromePage) Type(ctx context.Context, selector, text string) error {
	return p.run(ctx, "type",
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
}

// Click waits for the element and clicks it.
func (p *chromePage) Click(ctx context.Context, selector string) error {
	// Drop any load event left over from an earlier navigation so that
	// WaitNavigation only observes one triggered by this click.
	select {
	case <-p.loadFired:
	default:
	}

	return p.run(ctx, "click",
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

// WaitNavigation blocks until the tab fires a load event, which a form
// submit triggers when the site responds with a page transition. It
// does not check where the navigation went; a failed login that still
// navigates is indistinguishable from success at this layer.
func (p *chromePage) WaitNavigation(ctx context.Context) error {
	stepCtx, cancel := context.WithTimeout(p.tabCtx, p.stepTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	// The tab-scoped listener armed in WithPage feeds loadFired, so an
	// event that fired before this call is already buffered here.
	select {
	case <-p.loadFired:
		// Give the new document a settled body before the next step.
		return p.run(ctx, "wait navigation", chromedp.WaitReady("body", chromedp.ByQuery))
	case <-stepCtx.Done():
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("wait navigation: %w", ErrStepTimeout)
		}
		return stepCtx.Err()
	}
}

// InjectScript evaluates the script source in the page.
func (p *chromePage) InjectScript(ctx context.Context, source string) error {
	return p.run(ctx, "inject script",
		chromedp.Evaluate(source, nil),
	)
}

// EvaluateAudit evaluates an expression resolving to a JSON value,
// awaiting it when it is a promise, and returns the raw JSON.
func (p *chromePage) EvaluateAudit(ctx context.Context, expression string) ([]byte, error) {
	var raw json.RawMessage
	err := p.run(ctx, "evaluate audit",
		chromedp.Evaluate(expression, &raw, func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
			return params.WithAwaitPromise(true)
		}),
	)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
