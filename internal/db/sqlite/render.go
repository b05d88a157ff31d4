package sqlite

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/wikindex/internal/db"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// renderer writes SQL with positional "?" placeholders.
type renderer struct {
	sb   strings.Builder
	args []any
}

func (r *renderer) write(parts ...string) {
	for _, p := range parts {
		r.sb.WriteString(p)
	}
}

func (r *renderer) bind(v any) {
	r.sb.WriteByte('?')
	r.args = append(r.args, v)
}

func (r *renderer) selectStmt(q *db.Select) error {
	if err := q.Validate(); err != nil {
		return err
	}
	r.write("SELECT ")
	if q.Distinct {
		r.write("DISTINCT ")
	}
	if len(q.Fields) == 0 {
		r.write("*")
	} else {
		r.write(strings.Join(q.Fields, ", "))
	}
	r.write(" FROM ", q.Table)
	for _, j := range q.Joins {
		r.write(" ", string(j.Kind), " ", j.Table, " ON ")
		if err := r.conds(j.On); err != nil {
			return err
		}
	}
	if len(q.Where) > 0 {
		r.write(" WHERE ")
		if err := r.conds(q.Where); err != nil {
			return err
		}
	}
	if len(q.GroupBy) > 0 {
		r.write(" GROUP BY ", strings.Join(q.GroupBy, ", "))
	}
	if len(q.OrderBy) > 0 {
		r.write(" ORDER BY ")
		for i, o := range q.OrderBy {
			if i > 0 {
				r.write(", ")
			}
			r.write(o.Col)
			if o.Desc {
				r.write(" DESC")
			} else {
				r.write(" ASC")
			}
		}
	}
	switch {
	case q.Limit > 0:
		r.write(" LIMIT ")
		r.bind(q.Limit)
		r.write(" OFFSET ")
		r.bind(q.Offset)
	case q.Offset > 0:
		r.write(" LIMIT -1 OFFSET ")
		r.bind(q.Offset)
	}
	return nil
}

// conds writes conditions joined with AND.
func (r *renderer) conds(cs []db.Cond) error {
	for i, c := range cs {
		if i > 0 {
			r.write(" AND ")
		}
		if err := r.cond(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) cond(c db.Cond) error {
	switch c := c.(type) {
	case db.Compare:
		r.write(c.Col, " ", string(c.Op), " ")
		r.bind(c.Value)
	case db.Like:
		pattern := likeEscaper.Replace(c.Text) + "%"
		if c.Mode == db.LikeContains {
			pattern = "%" + pattern
		}
		r.write(c.Col)
		if c.Negate {
			r.write(" NOT")
		}
		r.write(" LIKE ")
		r.bind(pattern)
		r.write(` ESCAPE '\'`)
	case db.In:
		if len(c.Values) == 0 {
			if c.Negate {
				r.write("1 = 1")
			} else {
				r.write("0 = 1")
			}
			return nil
		}
		r.write(c.Col)
		if c.Negate {
			r.write(" NOT")
		}
		r.write(" IN (")
		for i, v := range c.Values {
			if i > 0 {
				r.write(", ")
			}
			r.bind(v)
		}
		r.write(")")
	case db.InSelect:
		if c.Query == nil {
			return fmt.Errorf("%w: subquery is nil", db.ErrInvalidQuery)
		}
		r.write(c.Col)
		if c.Negate {
			r.write(" NOT")
		}
		r.write(" IN (")
		if err := r.selectStmt(c.Query); err != nil {
			return err
		}
		r.write(")")
	case db.Null:
		r.write(c.Col, " IS ")
		if c.Negate {
			r.write("NOT ")
		}
		r.write("NULL")
	case db.ColumnsEqual:
		r.write(c.Left, " = ", c.Right)
	case db.Or:
		if len(c) == 0 {
			r.write("0 = 1")
			return nil
		}
		r.write("(")
		for i, child := range c {
			if i > 0 {
				r.write(" OR ")
			}
			if err := r.cond(child); err != nil {
				return err
			}
		}
		r.write(")")
	case db.And:
		if len(c) == 0 {
			r.write("1 = 1")
			return nil
		}
		r.write("(")
		if err := r.conds(c); err != nil {
			return err
		}
		r.write(")")
	default:
		return fmt.Errorf("%w: unsupported condition %T", db.ErrInvalidQuery, c)
	}
	return nil
}

func renderSelect(q *db.Select) (string, []any, error) {
	var r renderer
	if err := r.selectStmt(q); err != nil {
		return "", nil, err
	}
	return r.sb.String(), r.args, nil
}

func renderCount(q *db.Select) (string, []any, error) {
	inner := q.Clone()
	inner.OrderBy = nil
	inner.Offset = 0
	inner.Limit = 0
	var r renderer
	r.write("SELECT COUNT(*) FROM (")
	if err := r.selectStmt(inner); err != nil {
		return "", nil, err
	}
	r.write(")")
	return r.sb.String(), r.args, nil
}

func renderDelete(table string, where []db.Cond) (string, []any, error) {
	if table == "" {
		return "", nil, fmt.Errorf("%w: table is required", db.ErrInvalidQuery)
	}
	var r renderer
	r.write("DELETE FROM ", table)
	if len(where) > 0 {
		r.write(" WHERE ")
		if err := r.conds(where); err != nil {
			return "", nil, err
		}
	}
	return r.sb.String(), r.args, nil
}

func insertVerb(mode db.InsertMode) string {
	switch mode {
	case db.InsertIgnore:
		return "INSERT OR IGNORE INTO "
	case db.InsertReplace:
		return "INSERT OR REPLACE INTO "
	default:
		return "INSERT INTO "
	}
}

func renderInsert(table string, cols []string, rows []db.Row, mode db.InsertMode) (string, []any) {
	var r renderer
	r.write(insertVerb(mode), table, " (", strings.Join(cols, ", "), ") VALUES ")
	for i, row := range rows {
		if i > 0 {
			r.write(", ")
		}
		r.write("(")
		for j, c := range cols {
			if j > 0 {
				r.write(", ")
			}
			r.bind(row[c])
		}
		r.write(")")
	}
	return r.sb.String(), r.args
}
