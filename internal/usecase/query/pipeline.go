package query

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/logger"
	"github.com/kailas-cloud/wikindex/internal/metrics"
)

// Pipeline runs a store: provider, then enrichment, then result hooks.
type Pipeline[T any] struct {
	name     string
	provider Provider[T]
	enricher Enricher[T]
	hooks    []Hook[T]
}

// NewPipeline creates a store pipeline. enricher may be nil.
func NewPipeline[T any](name string, provider Provider[T], enricher Enricher[T], hooks ...Hook[T]) *Pipeline[T] {
	return &Pipeline[T]{name: name, provider: provider, enricher: enricher, hooks: hooks}
}

// Name returns the store name.
func (p *Pipeline[T]) Name() string { return p.name }

// Run executes the request.
func (p *Pipeline[T]) Run(ctx context.Context, req request.Request) (result.Set[T], error) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues(p.name).Observe(time.Since(start).Seconds())
	}()

	set, err := p.provider.Query(ctx, req)
	if err != nil {
		return result.Set[T]{}, fmt.Errorf("query %s store: %w", p.name, err)
	}
	if p.enricher != nil {
		if set, err = p.enricher.Enrich(ctx, set); err != nil {
			return result.Set[T]{}, fmt.Errorf("enrich %s store: %w", p.name, err)
		}
	}
	for _, h := range p.hooks {
		if err := h.OnResult(ctx, p.name, &set); err != nil {
			return result.Set[T]{}, fmt.Errorf("result hook %s: %w", p.name, err)
		}
	}

	logger.FromContext(ctx).Debug("store query",
		zap.String("store", p.name),
		zap.String("query", req.Query()),
		zap.Int("results", set.Len()),
		zap.Int("total", set.Total()),
		zap.Duration("duration", time.Since(start)),
	)
	return set, nil
}

// MetricsHook records the size of every result.
func MetricsHook[T any]() Hook[T] {
	return HookFunc[T](func(_ context.Context, store string, set *result.Set[T]) error {
		metrics.QueryResultSize.WithLabelValues(store).Observe(float64(set.Len()))
		return nil
	})
}
