package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/feudadrien/a11yscan/internal/axe"
	"github.com/feudadrien/a11yscan/internal/browser"
	"github.com/feudadrien/a11yscan/internal/config"
	"github.com/feudadrien/a11yscan/internal/model"
)

// Scanner runs accessibility scans by composing a browser launcher and
// the rule engine runtime. A Scanner is safe for concurrent use; each
// scan owns its browser session exclusively.
type Scanner struct {
	launcher    browser.Launcher
	runtime     *axe.Runtime
	logger      *slog.Logger
	concurrency int
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets a custom logger for the scanner.
func WithLogger(logger *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithConcurrency sets how many targets a batch scans at once.
// Values below 1 are ignored.
func WithConcurrency(n int) ScannerOption {
	return func(s *Scanner) {
		if n >= 1 {
			s.concurrency = n
		}
	}
}

// NewScanner creates a Scanner with the given browser launcher and rule
// engine runtime.
func NewScanner(launcher browser.Launcher, runtime *axe.Runtime, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		launcher:    launcher,
		runtime:     runtime,
		concurrency: config.DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// ScanURL scans one live URL.
func (s *Scanner) ScanURL(ctx context.Context, req URLRequest) (*model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	source, err := s.runtime.Source()
	if err != nil {
		return nil, err
	}

	tags := req.Rules.ResolvedTags()
	s.logger.Info("scanning url", "url", req.URL, "tags", tags)

	var result *model.ScanResult
	err = s.launcher.WithSession(ctx, func(sess browser.Session) error {
		r, err := s.scanTarget(ctx, sess, source, req.URL, tags)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ScanHTML scans a raw HTML document.
func (s *Scanner) ScanHTML(ctx context.Context, req HTMLRequest) (*model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	source, err := s.runtime.Source()
	if err != nil {
		return nil, err
	}

	tags := req.Rules.ResolvedTags()
	s.logger.Info("scanning raw html", "bytes", len(req.HTML), "tags", tags)

	return s.scanDocument(ctx, source, req.HTML, "", tags)
}

// ScanFile scans a local HTML file. The file is read before any
// browser resource is acquired; an unreadable file wraps ErrFileRead.
func (s *Scanner) ScanFile(ctx context.Context, req FileRequest) (*model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(req.Path) //nolint:gosec // User-requested scan target
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileRead, req.Path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrFileRead, req.Path)
	}

	source, err := s.runtime.Source()
	if err != nil {
		return nil, err
	}

	tags := req.Rules.ResolvedTags()
	s.logger.Info("scanning file", "path", req.Path, "tags", tags)

	label := req.Path
	if abs, absErr := filepath.Abs(req.Path); absErr == nil {
		label = "file://" + abs
	}
	return s.scanDocument(ctx, source, string(data), label, tags)
}

// ScanWithLogin performs a scripted form login and then scans the
// target URL in the same authenticated session. Navigation completing
// after submit is the only login signal; a login page that re-renders
// its form is not detected as a failure here.
func (s *Scanner) ScanWithLogin(ctx context.Context, req LoginRequest) (*model.ScanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	source, err := s.runtime.Source()
	if err != nil {
		return nil, err
	}

	tags := req.Rules.ResolvedTags()
	login := req.Login
	s.logger.Info("scanning with login",
		"url", req.URL, "loginUrl", login.LoginURL, "username", login.Username, "tags", tags)

	var result *model.ScanResult
	err = s.launcher.WithSession(ctx, func(sess browser.Session) error {
		return sess.WithPage(ctx, func(p browser.Page) error {
			if err := p.Navigate(ctx, login.LoginURL); err != nil {
				return err
			}
			if err := p.Type(ctx, login.UsernameSelector, login.Username); err != nil {
				return err
			}
			if err := p.Type(ctx, login.PasswordSelector, login.Password); err != nil {
				return err
			}
			if err := p.Click(ctx, login.SubmitSelector); err != nil {
				return err
			}
			if err := p.WaitNavigation(ctx); err != nil {
				return err
			}
			if err := p.Navigate(ctx, req.URL); err != nil {
				return err
			}

			r, err := s.audit(ctx, p, source, tags)
			if err != nil {
				return err
			}
			if r.URL == "" {
				r.URL = req.URL
			}
			result = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scanDocument loads markup into a blank page and audits it. label, if
// non-empty, is recorded as the result URL when the engine supplied
// none useful.
func (s *Scanner) scanDocument(ctx context.Context, source, html, label string, tags []string) (*model.ScanResult, error) {
	var result *model.ScanResult
	err := s.launcher.WithSession(ctx, func(sess browser.Session) error {
		return sess.WithPage(ctx, func(p browser.Page) error {
			if err := p.SetContent(ctx, html); err != nil {
				return err
			}
			r, err := s.audit(ctx, p, source, tags)
			if err != nil {
				return err
			}
			if label != "" {
				r.URL = label
			}
			result = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// scanTarget navigates a fresh page to target and audits it.
func (s *Scanner) scanTarget(ctx context.Context, sess browser.Session, source, target string, tags []string) (*model.ScanResult, error) {
	var result *model.ScanResult
	err := sess.WithPage(ctx, func(p browser.Page) error {
		if err := p.Navigate(ctx, target); err != nil {
			return err
		}
		r, err := s.audit(ctx, p, source, tags)
		if err != nil {
			return err
		}
		if r.URL == "" {
			r.URL = target
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// audit injects the rule engine into the page, runs it once, and
// decodes the result.
func (s *Scanner) audit(ctx context.Context, p browser.Page, source string, tags []string) (*model.ScanResult, error) {
	if err := p.InjectScript(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to inject rule engine: %w", err)
	}

	raw, err := p.EvaluateAudit(ctx, axe.RunExpression(tags))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuditFailed, err)
	}

	result, err := model.ParseScanResult(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuditFailed, err)
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = time.Now().UTC()
	}
	return result, nil
}
