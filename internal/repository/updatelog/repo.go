// Package updatelog records one-shot maintenance jobs that already ran.
package updatelog

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/wikindex/internal/db"
)

const table = "updatelog"

// store is the consumer interface for the update log (ISP).
type store interface {
	Count(ctx context.Context, q *db.Select) (int, error)
	Insert(ctx context.Context, table string, rows []db.Row, mode db.InsertMode) (int64, error)
}

// Repo reads and writes update keys.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates an update log repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// Has reports whether key was recorded.
func (r *Repo) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.store.Count(ctx, db.From(table).Where(db.Eq("ul_key", key)).MustBuild())
	if err != nil {
		return false, fmt.Errorf("check update key %s: %w", key, err)
	}
	return n > 0, nil
}

// Record marks key as done.
func (r *Repo) Record(ctx context.Context, key string) error {
	row := db.Row{"ul_key": key, "ul_value": r.now().UTC().Format(time.RFC3339)}
	if _, err := r.store.Insert(ctx, table, []db.Row{row}, db.InsertReplace); err != nil {
		return fmt.Errorf("record update key %s: %w", key, err)
	}
	return nil
}
