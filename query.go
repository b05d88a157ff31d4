package wikindex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	queryuc "github.com/kailas-cloud/wikindex/internal/usecase/query"
)

// Filter is one field condition.
type Filter struct {
	Field string
	Op    Comparison
	Value any
}

// Query describes a store request. The zero value lists the first page.
type Query struct {
	Text        string
	Filters     []Filter
	Sort        []Sort
	Offset      int
	Limit       int
	Node        string   // tree store: node to expand, "ns:key" or a prefixed title
	ExpandPaths []string // tree store: branches to return expanded
}

func (q Query) toRequest() (request.Request, error) {
	filters := make(filter.List, 0, len(q.Filters))
	for _, f := range q.Filters {
		ff, err := filter.New(f.Field, f.Op, f.Value)
		if err != nil {
			return request.Request{}, domain.NewInvalidParam("filter", err)
		}
		filters = append(filters, ff)
	}
	req, err := request.New(request.Params{
		Query:       q.Text,
		Filters:     filters,
		Sort:        q.Sort,
		Offset:      q.Offset,
		Limit:       q.Limit,
		Node:        q.Node,
		ExpandPaths: q.ExpandPaths,
	})
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return req, nil
}

// Result is a typed page of store records.
type Result[T any] struct {
	Records []T
	Total   int
	Buckets map[string]map[string]string
}

// QueryBuilder is a fluent builder for typed store queries.
type QueryBuilder[T any] struct {
	client   *Client
	pipeline *queryuc.Pipeline[T]
	q        Query
}

func newBuilder[T any](c *Client, p *queryuc.Pipeline[T]) *QueryBuilder[T] {
	return &QueryBuilder[T]{client: c, pipeline: p}
}

// Text sets the free-text query.
func (b *QueryBuilder[T]) Text(s string) *QueryBuilder[T] {
	b.q.Text = s
	return b
}

// Where adds a filter.
func (b *QueryBuilder[T]) Where(field string, op Comparison, value any) *QueryBuilder[T] {
	b.q.Filters = append(b.q.Filters, Filter{Field: field, Op: op, Value: value})
	return b
}

// OrderBy adds a sort key.
func (b *QueryBuilder[T]) OrderBy(property string, dir Direction) *QueryBuilder[T] {
	b.q.Sort = append(b.q.Sort, Sort{Property: property, Direction: dir})
	return b
}

// Page sets the window.
func (b *QueryBuilder[T]) Page(offset, limit int) *QueryBuilder[T] {
	b.q.Offset = offset
	b.q.Limit = limit
	return b
}

// Node expands one tree node instead of listing roots.
func (b *QueryBuilder[T]) Node(id string) *QueryBuilder[T] {
	b.q.Node = id
	return b
}

// Expand returns the given tree branches expanded.
func (b *QueryBuilder[T]) Expand(paths ...string) *QueryBuilder[T] {
	b.q.ExpandPaths = append(b.q.ExpandPaths, paths...)
	return b
}

// Do runs the query.
func (b *QueryBuilder[T]) Do(ctx context.Context) (Result[T], error) {
	req, err := b.q.toRequest()
	if err != nil {
		return Result[T]{}, err
	}
	set, err := b.pipeline.Run(b.client.withLogger(ctx), req)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Records: set.Records(), Total: set.Total(), Buckets: set.Buckets()}, nil
}
