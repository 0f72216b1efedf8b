package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/iconidentify/streamrelay/internal/metrics"
)

// BestEffort runs fn and reports its result as present or absent. Errors and
// panics are logged and turned into absence; they never reach the caller.
func BestEffort[T any](ctx context.Context, logger *slog.Logger, op string, fn func(context.Context) (T, error)) (result T, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("best-effort operation panicked", "op", op, "panic", r)
			var zero T
			result, ok = zero, false
		}
	}()

	v, err := fn(ctx)
	if err != nil {
		logger.Warn("best-effort operation failed", "op", op, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

// Pool runs tasks on a bounded set of workers and waits for each to finish.
type Pool interface {
	Do(ctx context.Context, task func()) error
}

// Enricher attaches media URLs to records. A nil or disabled Enricher
// resolves nothing.
type Enricher struct {
	resolver *Resolver
	pool     Pool
	quality  string
	logger   *slog.Logger
}

// NewEnricher creates an enricher resolving at quality through pool. A nil
// pool runs every resolution on its own goroutine.
func NewEnricher(r *Resolver, pool Pool, quality string, logger *slog.Logger) *Enricher {
	if quality == "" {
		quality = DefaultQuality
	}
	return &Enricher{resolver: r, pool: pool, quality: quality, logger: logger}
}

// MediaURL resolves one subject, returning nil when no URL could be produced.
func (e *Enricher) MediaURL(ctx context.Context, subject Subject) *string {
	if e == nil || e.resolver == nil {
		return nil
	}

	url, ok := BestEffort(ctx, e.logger, fmt.Sprintf("resolve %s", subject), func(ctx context.Context) (string, error) {
		return e.resolver.Resolve(ctx, subject, e.quality)
	})
	if !ok {
		metrics.IncEnrichment(subject.Kind.String(), metrics.OutcomeFailed)
		return nil
	}
	metrics.IncEnrichment(subject.Kind.String(), metrics.OutcomeResolved)
	return &url
}

// MediaURLs resolves subjects concurrently. The result is aligned with
// subjects; entries that could not be resolved are nil.
func (e *Enricher) MediaURLs(ctx context.Context, subjects []Subject) []*string {
	out := make([]*string, len(subjects))
	if e == nil || e.resolver == nil || len(subjects) == 0 {
		return out
	}

	var g errgroup.Group
	for i, subject := range subjects {
		g.Go(func() error {
			task := func() { out[i] = e.MediaURL(ctx, subject) }
			if e.pool == nil {
				task()
				return nil
			}
			if err := e.pool.Do(ctx, task); err != nil {
				e.logger.Warn("enrichment not scheduled", "subject", subject.String(), "error", err)
				metrics.IncEnrichment(subject.Kind.String(), metrics.OutcomeSkipped)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
