package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
)

// Response is a store result with the record type erased, as served to clients.
type Response struct {
	Results any                          `json:"results"`
	Total   int                          `json:"total"`
	Buckets map[string]map[string]string `json:"buckets,omitempty"`
}

type runFunc func(ctx context.Context, req request.Request) (Response, error)

// Registry resolves store names to pipelines.
type Registry struct {
	stores map[string]runFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]runFunc)}
}

// Register adds p under its name, replacing any store of the same name.
func Register[T any](r *Registry, p *Pipeline[T]) {
	r.stores[p.Name()] = func(ctx context.Context, req request.Request) (Response, error) {
		set, err := p.Run(ctx, req)
		if err != nil {
			return Response{}, err
		}
		return Response{Results: set.Records(), Total: set.Total(), Buckets: set.Buckets()}, nil
	}
}

// Names returns the registered store names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run executes req against the named store.
func (r *Registry) Run(ctx context.Context, store string, req request.Request) (Response, error) {
	run, ok := r.stores[store]
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", domain.ErrUnknownStore, store)
	}
	return run(ctx, req)
}
