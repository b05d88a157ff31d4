// Package category reads category metadata and membership links.
package category

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/db"
)

const (
	table      = "category"
	linksTable = "categorylinks"
)

// store is the consumer interface for category lookups (ISP).
type store interface {
	Select(ctx context.Context, q *db.Select) ([]db.Row, error)
	Count(ctx context.Context, q *db.Select) (int, error)
}

// Category is a row of the category page-count cache.
type Category struct {
	ID    int64
	Title string
	Pages int
}

// LinkTarget is a category named by at least one membership link.
type LinkTarget struct {
	Title string
	Count int
}

// Repo reads categories.
type Repo struct {
	store store
}

// New creates a category repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Info returns the cached category row for a key. found is false when the
// category table has no row.
func (r *Repo) Info(ctx context.Context, dbKey string) (Category, bool, error) {
	q := db.From(table).
		Fields("cat_id", "cat_title", "cat_pages").
		Where(db.Eq("cat_title", dbKey)).
		Page(0, 1).
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return Category{}, false, fmt.Errorf("get category: %w", err)
	}
	if len(rows) == 0 {
		return Category{}, false, nil
	}
	return categoryFromRow(rows[0]), true, nil
}

// LinkCount returns the number of pages linked to the category.
func (r *Repo) LinkCount(ctx context.Context, dbKey string) (int, error) {
	q := db.From(linksTable).Where(db.Eq("cl_to", dbKey)).MustBuild()
	n, err := r.store.Count(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count category links: %w", err)
	}
	return n, nil
}

// Batch returns up to limit category rows with a title after afterTitle.
func (r *Repo) Batch(ctx context.Context, afterTitle string, limit int) ([]Category, error) {
	q := db.From(table).
		Fields("cat_id", "cat_title", "cat_pages").
		Where(db.Gt("cat_title", afterTitle)).
		OrderBy("cat_title").
		Page(0, limit).
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load category batch: %w", err)
	}
	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryFromRow(row))
	}
	return out, nil
}

// LinkTargets returns up to limit distinct link targets after afterTitle with
// their member counts.
func (r *Repo) LinkTargets(ctx context.Context, afterTitle string, limit int) ([]LinkTarget, error) {
	q := db.From(linksTable).
		Fields("cl_to", "COUNT(*) AS members").
		Where(db.Gt("cl_to", afterTitle)).
		GroupBy("cl_to").
		OrderBy("cl_to").
		Page(0, limit).
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load category links: %w", err)
	}
	out := make([]LinkTarget, 0, len(rows))
	for _, row := range rows {
		out = append(out, LinkTarget{Title: row.String("cl_to"), Count: row.Int("members")})
	}
	return out, nil
}

func categoryFromRow(row db.Row) Category {
	return Category{
		ID:    row.Int64("cat_id"),
		Title: row.String("cat_title"),
		Pages: row.Int("cat_pages"),
	}
}
