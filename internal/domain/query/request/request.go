package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
)

// Request parameter limits.
const (
	// MaxQueryLength is the maximum allowed free-text query length.
	MaxQueryLength = 1024
	DefaultLimit   = 25
	MaxLimit       = 500
	MaxExpandPaths = 64
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Sort orders results by one property.
type Sort struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

// Params carries the optional parts of a request.
type Params struct {
	Query       string
	Filters     filter.List
	Sort        []Sort
	Offset      int
	Limit       int
	Node        string
	ExpandPaths []string
}

// Request is a validated store query.
type Request struct {
	query       string
	filters     filter.List
	sort        []Sort
	offset      int
	limit       int
	node        string
	expandPaths []string
}

// New validates and normalizes query parameters.
// Defaults: offset=0, limit=25. Limit is clamped to MaxLimit.
func New(p Params) (Request, error) {
	query := strings.TrimSpace(p.Query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if len(p.Filters) > filter.MaxFilters {
		return Request{}, fmt.Errorf("too many filters (max %d)", filter.MaxFilters)
	}
	if len(p.ExpandPaths) > MaxExpandPaths {
		return Request{}, fmt.Errorf("too many expand paths (max %d)", MaxExpandPaths)
	}
	if p.Offset < 0 {
		return Request{}, fmt.Errorf("start must be non-negative")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sorts := make([]Sort, 0, len(p.Sort))
	for _, s := range p.Sort {
		if s.Property == "" {
			continue
		}
		dir := Direction(strings.ToUpper(string(s.Direction)))
		if dir != Desc {
			dir = Asc
		}
		sorts = append(sorts, Sort{Property: s.Property, Direction: dir})
	}

	paths := make([]string, 0, len(p.ExpandPaths))
	for _, path := range p.ExpandPaths {
		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}

	return Request{
		query:       query,
		filters:     p.Filters,
		sort:        sorts,
		offset:      p.Offset,
		limit:       limit,
		node:        strings.TrimSpace(p.Node),
		expandPaths: paths,
	}, nil
}

// Query returns the free-text query.
func (r *Request) Query() string { return r.query }

// Filters returns the ordered filter list.
func (r *Request) Filters() filter.List { return r.filters }

// Sort returns the requested sort order.
func (r *Request) Sort() []Sort { return r.sort }

// Offset returns the pagination offset.
func (r *Request) Offset() int { return r.offset }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Node returns the tree node to expand, empty for a root listing.
func (r *Request) Node() string { return r.node }

// ExpandPaths returns tree paths to pre-expand.
func (r *Request) ExpandPaths() []string { return r.expandPaths }
