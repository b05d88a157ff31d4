// Package indextable writes rows of the secondary index tables.
package indextable

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/db"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
)

// store is the consumer interface for index writes (ISP).
type store interface {
	TableExists(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, table string, rows []db.Row, mode db.InsertMode) (int64, error)
	Delete(ctx context.Context, table string, where ...db.Cond) (int64, error)
}

// Repo implements the index writers used by updaters and population jobs.
type Repo struct {
	store store
}

// New creates an index table repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// TableExists reports whether an index table has been migrated.
func (r *Repo) TableExists(ctx context.Context, table string) (bool, error) {
	ok, err := r.store.TableExists(ctx, table)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return ok, nil
}

// Clear removes all rows from an index table.
func (r *Repo) Clear(ctx context.Context, table string) (int64, error) {
	n, err := r.store.Delete(ctx, table)
	if err != nil {
		return 0, fmt.Errorf("clear %s: %w", table, err)
	}
	return n, nil
}

// --- title ---

// UpsertTitle deletes the row of the page id, then inserts the new row. Any
// stale row holding the same key is replaced.
func (r *Repo) UpsertTitle(ctx context.Context, row domidx.TitleRow) error {
	if _, err := r.store.Delete(ctx, domidx.TitleTable, db.Eq("mti_page_id", row.PageID)); err != nil {
		return fmt.Errorf("delete title row: %w", err)
	}
	if _, err := r.store.Insert(ctx, domidx.TitleTable, []db.Row{titleRow(row)}, db.InsertReplace); err != nil {
		return fmt.Errorf("insert title row: %w", err)
	}
	return nil
}

// DeleteTitle removes the row with the given namespace and normalized key.
func (r *Repo) DeleteTitle(ctx context.Context, ns int, key string) (int64, error) {
	n, err := r.store.Delete(ctx, domidx.TitleTable, db.Eq("mti_namespace", ns), db.Eq("mti_title", key))
	if err != nil {
		return 0, fmt.Errorf("delete title row: %w", err)
	}
	return n, nil
}

// InsertTitles inserts rows, ignoring duplicates.
func (r *Repo) InsertTitles(ctx context.Context, rows []domidx.TitleRow) (int64, error) {
	out := make([]db.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, titleRow(row))
	}
	n, err := r.store.Insert(ctx, domidx.TitleTable, out, db.InsertIgnore)
	if err != nil {
		return 0, fmt.Errorf("insert title rows: %w", err)
	}
	return n, nil
}

func titleRow(row domidx.TitleRow) db.Row {
	return db.Row{
		"mti_page_id":      row.PageID,
		"mti_namespace":    row.Namespace,
		"mti_title":        row.Title,
		"mti_displaytitle": row.DisplayTitle,
	}
}

// --- user ---

// UpsertUser replaces the row of the user id.
func (r *Repo) UpsertUser(ctx context.Context, row domidx.UserRow) error {
	if _, err := r.store.Delete(ctx, domidx.UserTable, db.Eq("mui_user_id", row.UserID)); err != nil {
		return fmt.Errorf("delete user row: %w", err)
	}
	if _, err := r.store.Insert(ctx, domidx.UserTable, []db.Row{userRow(row)}, db.InsertIgnore); err != nil {
		return fmt.Errorf("insert user row: %w", err)
	}
	return nil
}

// DeleteUser removes the row of the user id.
func (r *Repo) DeleteUser(ctx context.Context, id int64) (int64, error) {
	n, err := r.store.Delete(ctx, domidx.UserTable, db.Eq("mui_user_id", id))
	if err != nil {
		return 0, fmt.Errorf("delete user row: %w", err)
	}
	return n, nil
}

// InsertUsers inserts rows, ignoring duplicates.
func (r *Repo) InsertUsers(ctx context.Context, rows []domidx.UserRow) (int64, error) {
	out := make([]db.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, userRow(row))
	}
	n, err := r.store.Insert(ctx, domidx.UserTable, out, db.InsertIgnore)
	if err != nil {
		return 0, fmt.Errorf("insert user rows: %w", err)
	}
	return n, nil
}

func userRow(row domidx.UserRow) db.Row {
	return db.Row{
		"mui_user_id":        row.UserID,
		"mui_user_name":      row.Name,
		"mui_user_real_name": row.RealName,
	}
}

// --- category ---

// DeleteCategory removes the row with the given normalized key.
func (r *Repo) DeleteCategory(ctx context.Context, key string) (int64, error) {
	n, err := r.store.Delete(ctx, domidx.CategoryTable, db.Eq("mci_title", key))
	if err != nil {
		return 0, fmt.Errorf("delete category row: %w", err)
	}
	return n, nil
}

// InsertCategories inserts rows, ignoring duplicates.
func (r *Repo) InsertCategories(ctx context.Context, rows []domidx.CategoryRow) (int64, error) {
	out := make([]db.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, db.Row{
			"mci_cat_id":     row.CatID,
			"mci_title":      row.Title,
			"mci_page_title": row.PageTitle,
			"mci_count":      row.Count,
		})
	}
	n, err := r.store.Insert(ctx, domidx.CategoryTable, out, db.InsertIgnore)
	if err != nil {
		return 0, fmt.Errorf("insert category rows: %w", err)
	}
	return n, nil
}
