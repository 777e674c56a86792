package scan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/feudadrien/a11yscan/internal/browser"
	"github.com/feudadrien/a11yscan/internal/model"
)

// ScanBatch scans several URLs within one browser session.
//
// The returned BatchResult has exactly one entry per requested URL, in
// request order, regardless of individual failures: an invalid or
// failing target records its error in its own entry and the remaining
// targets still run. Only a session launch failure aborts the batch.
//
// Design decision: Entries are written into a pre-sized slice indexed
// by request position. Workers never append, so output order equals
// request order at any concurrency setting, and the default
// concurrency of 1 keeps execution strictly sequential.
func (s *Scanner) ScanBatch(ctx context.Context, req BatchRequest) (*model.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	source, err := s.runtime.Source()
	if err != nil {
		return nil, err
	}

	tags := req.Rules.ResolvedTags()
	s.logger.Info("scanning batch", "targets", len(req.URLs), "concurrency", s.concurrency, "tags", tags)

	entries := make([]model.BatchEntry, len(req.URLs))

	err = s.launcher.WithSession(ctx, func(sess browser.Session) error {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)

		for i, target := range req.URLs {
			entries[i].Target = target

			if err := validateTargetURL(target); err != nil {
				entries[i].Error = err.Error()
				s.logger.Warn("skipping invalid batch target", "url", target, "error", err)
				continue
			}

			g.Go(func() error {
				result, err := s.scanTarget(gctx, sess, source, target, tags)
				if err != nil {
					// Per-target failures stay in their entry; only a
					// cancelled batch context propagates.
					entries[i].Error = err.Error()
					s.logger.Warn("batch target failed", "url", target, "error", err)
					return gctx.Err()
				}
				entries[i].Result = result
				return nil
			})
		}

		return g.Wait()
	})
	if err != nil {
		return nil, err
	}

	batch := &model.BatchResult{Entries: entries}
	s.logger.Info("batch complete",
		"targets", len(req.URLs), "succeeded", batch.Succeeded(), "failed", batch.Failed())

	return batch, nil
}
