// Package query runs filtered, paginated scans over the index tables.
package query

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
)

// ColumnKind selects how a generic filter value is coerced.
type ColumnKind int

// Column kinds.
const (
	TextColumn ColumnKind = iota
	NumberColumn
	BoolColumn
)

// Column maps a record property to a SQL column for the generic filter pass.
type Column struct {
	Name string
	Kind ColumnKind
}

// Table describes the scan of one store.
type Table struct {
	From        string
	Joins       []db.Join
	Fields      []string
	Filterable  map[string]Column
	Sortable    map[string]string
	DefaultSort []db.Order
}

// Scan accumulates the conditions of one request. Rewriters consume the
// free-text query by clearing Text.
type Scan struct {
	Text  string
	Where []db.Cond
}

// Add appends conditions.
func (s *Scan) Add(conds ...db.Cond) {
	s.Where = append(s.Where, conds...)
}

// Rewriter turns request parts into conditions. Filters it handles must be
// marked applied.
type Rewriter interface {
	Rewrite(ctx context.Context, req *request.Request, scan *Scan) error
}

// RewriterFunc adapts a function to Rewriter.
type RewriterFunc func(ctx context.Context, req *request.Request, scan *Scan) error

// Rewrite calls f.
func (f RewriterFunc) Rewrite(ctx context.Context, req *request.Request, scan *Scan) error {
	return f(ctx, req, scan)
}

// Page is one window of matching rows. Where holds the full condition set, so
// callers can build subqueries over the unpaginated match.
type Page struct {
	Rows  []db.Row
	Total int
	Where []db.Cond
}

// Engine is a filtered table scan extended by rewriters.
type Engine struct {
	store     Store
	table     Table
	rewriters []Rewriter
}

// NewEngine creates a scan over table. Rewriters run in order before the
// generic filter pass.
func NewEngine(store Store, table Table, rewriters ...Rewriter) *Engine {
	return &Engine{store: store, table: table, rewriters: rewriters}
}

// Execute counts all matches and fetches the requested window.
func (e *Engine) Execute(ctx context.Context, req request.Request) (Page, error) {
	scan := &Scan{Text: req.Query()}
	for _, rw := range e.rewriters {
		if err := rw.Rewrite(ctx, &req, scan); err != nil {
			return Page{}, err
		}
	}
	for _, f := range req.Filters().Pending() {
		if c, ok := e.genericCond(f); ok {
			scan.Add(c)
			f.MarkApplied()
		}
	}

	q := e.selectOf(scan.Where, e.table.Fields...)
	total, err := e.store.Count(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("count %s: %w", e.table.From, err)
	}

	q.OrderBy = e.order(req.Sort())
	q.Offset = req.Offset()
	q.Limit = req.Limit()
	rows, err := e.store.Select(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("select %s: %w", e.table.From, err)
	}
	return Page{Rows: rows, Total: total, Where: scan.Where}, nil
}

// Subquery selects fields over the same tables and conditions, unpaginated.
func (e *Engine) Subquery(where []db.Cond, fields ...string) *db.Select {
	return e.selectOf(where, fields...)
}

func (e *Engine) selectOf(where []db.Cond, fields ...string) *db.Select {
	return &db.Select{
		Table:  e.table.From,
		Joins:  append([]db.Join(nil), e.table.Joins...),
		Fields: append([]string(nil), fields...),
		Where:  append([]db.Cond(nil), where...),
	}
}

// order maps whitelisted sort properties; the default sort always follows as
// a tiebreaker so windows are stable.
func (e *Engine) order(sorts []request.Sort) []db.Order {
	var out []db.Order
	seen := make(map[string]bool)
	for _, s := range sorts {
		col, ok := e.table.Sortable[s.Property]
		if !ok || seen[col] {
			continue
		}
		seen[col] = true
		out = append(out, db.Order{Col: col, Desc: s.Direction == request.Desc})
	}
	for _, o := range e.table.DefaultSort {
		if !seen[o.Col] {
			seen[o.Col] = true
			out = append(out, o)
		}
	}
	return out
}

// genericCond maps a filter on a filterable column. ok is false for unknown
// fields, unknown comparisons and values that do not fit the column.
func (e *Engine) genericCond(f *filter.Filter) (db.Cond, bool) {
	col, ok := e.table.Filterable[f.Field()]
	if !ok {
		return nil, false
	}
	switch col.Kind {
	case NumberColumn:
		return numberCond(col.Name, f)
	case BoolColumn:
		v, ok := f.Bool()
		if !ok {
			return nil, false
		}
		n := 0
		if v {
			n = 1
		}
		switch f.Comparison() {
		case filter.Equals:
			return db.Eq(col.Name, n), true
		case filter.NotEquals:
			return db.Ne(col.Name, n), true
		}
		return nil, false
	default:
		return TextCond(col.Name, f, func(s string) string { return s })
	}
}

func numberCond(col string, f *filter.Filter) (db.Cond, bool) {
	if f.Comparison() == filter.In {
		return db.InList(col, f.Ints()), true
	}
	n, ok := f.Number()
	if !ok {
		return nil, false
	}
	switch f.Comparison() {
	case filter.Equals:
		return db.Eq(col, n), true
	case filter.NotEquals:
		return db.Ne(col, n), true
	case filter.Less:
		return db.Lt(col, n), true
	case filter.LessOrEqual:
		return db.Lte(col, n), true
	case filter.Greater:
		return db.Gt(col, n), true
	case filter.GreaterOrEqual:
		return db.Gte(col, n), true
	}
	return nil, false
}

// TextCond maps a string filter on col, passing values through norm first.
func TextCond(col string, f *filter.Filter, norm func(string) string) (db.Cond, bool) {
	switch f.Comparison() {
	case filter.Equals:
		return db.Eq(col, norm(f.String())), true
	case filter.NotEquals:
		return db.Ne(col, norm(f.String())), true
	case filter.Contains, filter.Like:
		return db.Contains(col, norm(f.String())), true
	case filter.In:
		values := f.Strings()
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = norm(v)
		}
		return db.InList(col, out), true
	}
	return nil, false
}
