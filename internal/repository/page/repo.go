// Package page resolves primary-store page identities.
package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain"
)

const (
	table            = "page"
	propsTable       = "page_props"
	displayTitleProp = "displaytitle"
)

var pageFields = []string{
	"page_id", "page_namespace", "page_title", "page_is_redirect", "page_content_model", "page_touched",
}

// store is the consumer interface for page lookups (ISP).
type store interface {
	Select(ctx context.Context, q *db.Select) ([]db.Row, error)
}

// Page is a primary-store page.
type Page struct {
	ID           int64
	Title        domain.Title
	IsRedirect   bool
	ContentModel string
	Touched      string
}

// Repo reads pages and their properties.
type Repo struct {
	store store
}

// New creates a page repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns the page with the given title or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, t domain.Title) (Page, error) {
	return r.one(ctx, db.Eq("page_namespace", t.Namespace), db.Eq("page_title", t.DBKey))
}

// GetByID returns the page with the given id or domain.ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, id int64) (Page, error) {
	return r.one(ctx, db.Eq("page_id", id))
}

func (r *Repo) one(ctx context.Context, where ...db.Cond) (Page, error) {
	q := db.From(table).Fields(pageFields...).Where(where...).Page(0, 1).MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return Page{}, fmt.Errorf("get page: %w", err)
	}
	if len(rows) == 0 {
		return Page{}, domain.ErrNotFound
	}
	return pageFromRow(rows[0]), nil
}

// Existing returns the subset of titles that exist, keyed by Title.ID().
func (r *Repo) Existing(ctx context.Context, titles []domain.Title) (map[string]Page, error) {
	out := make(map[string]Page, len(titles))
	byNS := make(map[int][]string)
	for _, t := range titles {
		byNS[t.Namespace] = append(byNS[t.Namespace], t.DBKey)
	}
	for ns, keys := range byNS {
		q := db.From(table).
			Fields(pageFields...).
			Where(db.Eq("page_namespace", ns), db.InList("page_title", keys)).
			MustBuild()
		rows, err := r.store.Select(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("load pages: %w", err)
		}
		for _, row := range rows {
			p := pageFromRow(row)
			out[p.Title.ID()] = p
		}
	}
	return out, nil
}

// DisplayTitle returns the displaytitle property of a page, "" when unset.
func (r *Repo) DisplayTitle(ctx context.Context, id int64) (string, error) {
	titles, err := r.DisplayTitles(ctx, []int64{id})
	if err != nil {
		return "", err
	}
	return titles[id], nil
}

// DisplayTitles returns displaytitle properties keyed by page id.
func (r *Repo) DisplayTitles(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := db.From(propsTable).
		Fields("pp_page", "pp_value").
		Where(db.Eq("pp_propname", displayTitleProp), db.InList("pp_page", ids)).
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load display titles: %w", err)
	}
	for _, row := range rows {
		out[row.Int64("pp_page")] = row.String("pp_value")
	}
	return out, nil
}

// Descendants returns all pages below t in the subpage hierarchy, sorted by key.
func (r *Repo) Descendants(ctx context.Context, t domain.Title) ([]Page, error) {
	prefix := t.DBKey + domain.SubpageSeparator
	q := db.From(table).
		Fields(pageFields...).
		Where(db.Eq("page_namespace", t.Namespace), db.HasPrefix("page_title", prefix)).
		OrderBy("page_title").
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load subpages: %w", err)
	}
	out := make([]Page, 0, len(rows))
	for _, row := range rows {
		p := pageFromRow(row)
		// LIKE is case-insensitive for ASCII; keys are not.
		if strings.HasPrefix(p.Title.DBKey, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

// HasSubpages reports whether any page lies below t.
func (r *Repo) HasSubpages(ctx context.Context, t domain.Title) (bool, error) {
	pages, err := r.Descendants(ctx, t)
	if err != nil {
		return false, err
	}
	return len(pages) > 0, nil
}

// Batch returns up to limit pages with id greater than afterID, ordered by id.
func (r *Repo) Batch(ctx context.Context, afterID int64, limit int) ([]Page, error) {
	q := db.From(table).
		Fields(pageFields...).
		Where(db.Gt("page_id", afterID)).
		OrderBy("page_id").
		Page(0, limit).
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load page batch: %w", err)
	}
	out := make([]Page, 0, len(rows))
	for _, row := range rows {
		out = append(out, pageFromRow(row))
	}
	return out, nil
}

func pageFromRow(row db.Row) Page {
	return Page{
		ID:           row.Int64("page_id"),
		Title:        domain.Title{Namespace: row.Int("page_namespace"), DBKey: row.String("page_title")},
		IsRedirect:   row.Bool("page_is_redirect"),
		ContentModel: row.String("page_content_model"),
		Touched:      row.String("page_touched"),
	}
}
