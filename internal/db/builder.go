package db

import (
	"fmt"
	"strings"
)

// JoinKind is a SQL join type.
type JoinKind string

// Join kinds.
const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
)

// Join attaches a table to a Select.
type Join struct {
	Kind  JoinKind
	Table string
	On    []Cond
}

// Order is one ORDER BY term.
type Order struct {
	Col  string
	Desc bool
}

// Select describes a row scan.
type Select struct {
	Table    string
	Joins    []Join
	Fields   []string
	Where    []Cond
	GroupBy  []string
	OrderBy  []Order
	Offset   int
	Limit    int
	Distinct bool
}

// Validate checks the select for structural errors.
func (q *Select) Validate() error {
	if q.Table == "" {
		return fmt.Errorf("%w: table is required", ErrInvalidQuery)
	}
	if q.Offset < 0 || q.Limit < 0 {
		return fmt.Errorf("%w: negative window", ErrInvalidQuery)
	}
	for _, j := range q.Joins {
		if j.Table == "" || len(j.On) == 0 {
			return fmt.Errorf("%w: join needs a table and a condition", ErrInvalidQuery)
		}
	}
	return nil
}

// Clone returns a copy whose slices can be appended to independently.
func (q *Select) Clone() *Select {
	c := *q
	c.Joins = append([]Join(nil), q.Joins...)
	c.Fields = append([]string(nil), q.Fields...)
	c.Where = append([]Cond(nil), q.Where...)
	c.GroupBy = append([]string(nil), q.GroupBy...)
	c.OrderBy = append([]Order(nil), q.OrderBy...)
	return &c
}

// String returns a debug representation.
func (q *Select) String() string {
	parts := []string{"SELECT"}
	if q.Distinct {
		parts = append(parts, "DISTINCT")
	}
	if len(q.Fields) == 0 {
		parts = append(parts, "*")
	} else {
		parts = append(parts, strings.Join(q.Fields, ", "))
	}
	parts = append(parts, "FROM", q.Table)
	for _, j := range q.Joins {
		parts = append(parts, string(j.Kind), j.Table)
	}
	if len(q.Where) > 0 {
		parts = append(parts, fmt.Sprintf("WHERE <%d conds>", len(q.Where)))
	}
	if q.Limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d OFFSET %d", q.Limit, q.Offset))
	}
	return strings.Join(parts, " ")
}

// SelectBuilder is a fluent builder for Select.
type SelectBuilder struct {
	q Select
}

// From starts building a select over table.
func From(table string) *SelectBuilder {
	return &SelectBuilder{q: Select{Table: table}}
}

// Fields sets the selected columns or expressions.
func (b *SelectBuilder) Fields(fields ...string) *SelectBuilder {
	b.q.Fields = append(b.q.Fields, fields...)
	return b
}

// Distinct selects distinct rows.
func (b *SelectBuilder) Distinct() *SelectBuilder {
	b.q.Distinct = true
	return b
}

// Join adds an inner join.
func (b *SelectBuilder) Join(table string, on ...Cond) *SelectBuilder {
	b.q.Joins = append(b.q.Joins, Join{Kind: InnerJoin, Table: table, On: on})
	return b
}

// LeftJoin adds a left outer join.
func (b *SelectBuilder) LeftJoin(table string, on ...Cond) *SelectBuilder {
	b.q.Joins = append(b.q.Joins, Join{Kind: LeftJoin, Table: table, On: on})
	return b
}

// Where appends conditions combined with AND.
func (b *SelectBuilder) Where(conds ...Cond) *SelectBuilder {
	b.q.Where = append(b.q.Where, conds...)
	return b
}

// GroupBy sets grouping columns.
func (b *SelectBuilder) GroupBy(cols ...string) *SelectBuilder {
	b.q.GroupBy = append(b.q.GroupBy, cols...)
	return b
}

// OrderBy appends an ascending sort term.
func (b *SelectBuilder) OrderBy(col string) *SelectBuilder {
	b.q.OrderBy = append(b.q.OrderBy, Order{Col: col})
	return b
}

// OrderByDesc appends a descending sort term.
func (b *SelectBuilder) OrderByDesc(col string) *SelectBuilder {
	b.q.OrderBy = append(b.q.OrderBy, Order{Col: col, Desc: true})
	return b
}

// Page sets the pagination window. A zero limit means no limit.
func (b *SelectBuilder) Page(offset, limit int) *SelectBuilder {
	b.q.Offset = offset
	b.q.Limit = limit
	return b
}

// Build validates and returns the select.
func (b *SelectBuilder) Build() (*Select, error) {
	if err := b.q.Validate(); err != nil {
		return nil, err
	}
	q := b.q.Clone()
	return q, nil
}

// MustBuild calls Build and panics on error.
func (b *SelectBuilder) MustBuild() *Select {
	q, err := b.Build()
	if err != nil {
		panic(err)
	}
	return q
}
