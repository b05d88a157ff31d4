package sqlite

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/db"
)

// maxParams keeps multi-row inserts below SQLite's bound-variable limit.
const maxParams = 900

// Select runs q and returns all rows.
func (s *Store) Select(ctx context.Context, q *db.Select) ([]db.Row, error) {
	query, args, err := renderSelect(q)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	var out []db.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		row := make(db.Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}

// Count returns the number of rows q matches, ignoring its window.
func (s *Store) Count(ctx context.Context, q *db.Select) (int, error) {
	query, args, err := renderCount(q)
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Insert writes rows in chunks, all sharing the first row's columns.
func (s *Store) Insert(ctx context.Context, table string, rows []db.Row, mode db.InsertMode) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if table == "" {
		return 0, &db.Error{Op: db.OpInsert, Err: fmt.Errorf("%w: table is required", db.ErrInvalidQuery)}
	}
	cols := rows[0].Columns()
	if len(cols) == 0 {
		return 0, &db.Error{Op: db.OpInsert, Err: fmt.Errorf("%w: row has no columns", db.ErrInvalidQuery)}
	}

	chunk := maxParams / len(cols)
	if chunk < 1 {
		chunk = 1
	}
	var total int64
	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		query, args := renderInsert(table, cols, rows[start:end], mode)
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, &db.Error{Op: db.OpInsert, Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, &db.Error{Op: db.OpInsert, Err: err}
		}
		total += n
	}
	return total, nil
}

// Delete removes rows matching all conditions.
func (s *Store) Delete(ctx context.Context, table string, where ...db.Cond) (int64, error) {
	query, args, err := renderDelete(table, where)
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return n, nil
}
