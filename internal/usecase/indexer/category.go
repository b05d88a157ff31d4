package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
)

// CategoryUpdater recomputes category rows on structural changes to category
// pages and on membership changes.
type CategoryUpdater struct {
	pages      PageReader
	categories CategoryReader
	index      CategoryWriter
}

// NewCategoryUpdater creates a category index updater.
func NewCategoryUpdater(pages PageReader, categories CategoryReader, index CategoryWriter) *CategoryUpdater {
	return &CategoryUpdater{pages: pages, categories: categories, index: index}
}

// OnPageSaved refreshes the category when t is a category page.
func (u *CategoryUpdater) OnPageSaved(ctx context.Context, t domain.Title) (Outcome, error) {
	return u.refreshPage(ctx, t)
}

// OnPageImported refreshes the category when t is a category page.
func (u *CategoryUpdater) OnPageImported(ctx context.Context, t domain.Title) (Outcome, error) {
	return u.refreshPage(ctx, t)
}

// OnPageRestored refreshes the category when t is a category page.
func (u *CategoryUpdater) OnPageRestored(ctx context.Context, t domain.Title, _ int64) (Outcome, error) {
	return u.refreshPage(ctx, t)
}

// OnPageDeleted refreshes the category when t is a category page.
func (u *CategoryUpdater) OnPageDeleted(ctx context.Context, t domain.Title) (Outcome, error) {
	return u.refreshPage(ctx, t)
}

// OnPageMoved refreshes both ends of a move that touches the category namespace.
func (u *CategoryUpdater) OnPageMoved(ctx context.Context, from, to domain.Title) (Outcome, error) {
	fromOutcome, err := u.refreshPage(ctx, from)
	if err != nil {
		return "", err
	}
	if from == to {
		return fromOutcome, nil
	}
	toOutcome, err := u.refreshPage(ctx, to)
	if err != nil {
		return "", err
	}
	if fromOutcome == Ignored {
		return toOutcome, nil
	}
	return fromOutcome, nil
}

// OnCategoryMembershipChanged refreshes the named category.
func (u *CategoryUpdater) OnCategoryMembershipChanged(ctx context.Context, category string) (Outcome, error) {
	return u.Refresh(ctx, domain.DBKey(category))
}

func (u *CategoryUpdater) refreshPage(ctx context.Context, t domain.Title) (Outcome, error) {
	if t.Namespace != domain.NSCategory {
		return Ignored, nil
	}
	return u.Refresh(ctx, t.DBKey)
}

// Refresh deletes the row of the category and, if the category still exists,
// inserts it again with a freshly computed member count.
func (u *CategoryUpdater) Refresh(ctx context.Context, dbKey string) (Outcome, error) {
	ok, err := u.index.TableExists(ctx, domidx.CategoryTable)
	if err != nil {
		return "", fmt.Errorf("check category index: %w", err)
	}
	if !ok {
		return SkippedNoTable, nil
	}

	key := domain.NormalizeKey(dbKey)
	if _, err := u.index.DeleteCategory(ctx, key); err != nil {
		return "", fmt.Errorf("delete category: %w", err)
	}

	count, err := u.categories.LinkCount(ctx, dbKey)
	if err != nil {
		return "", err
	}
	exists := count > 0
	if !exists {
		_, err := u.pages.Get(ctx, domain.Title{Namespace: domain.NSCategory, DBKey: dbKey})
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return Applied, nil
		case err != nil:
			return "", fmt.Errorf("load category page: %w", err)
		}
	}

	info, _, err := u.categories.Info(ctx, dbKey)
	if err != nil {
		return "", err
	}
	row := domidx.CategoryRow{
		CatID:     info.ID,
		Title:     key,
		PageTitle: dbKey,
		Count:     int64(count),
	}
	if _, err := u.index.InsertCategories(ctx, []domidx.CategoryRow{row}); err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}
	return Applied, nil
}
