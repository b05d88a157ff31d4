package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
)

// TitleUpdater keeps the title index in step with page events.
type TitleUpdater struct {
	pages PageReader
	index TitleWriter
}

// NewTitleUpdater creates a title index updater.
func NewTitleUpdater(pages PageReader, index TitleWriter) *TitleUpdater {
	return &TitleUpdater{pages: pages, index: index}
}

// OnPageSaved indexes the current state of the page.
func (u *TitleUpdater) OnPageSaved(ctx context.Context, t domain.Title) (Outcome, error) {
	if ok, err := u.ready(ctx); !ok || err != nil {
		return SkippedNoTable, err
	}
	return u.upsert(ctx, t, 0)
}

// OnPageImported behaves like a save.
func (u *TitleUpdater) OnPageImported(ctx context.Context, t domain.Title) (Outcome, error) {
	return u.OnPageSaved(ctx, t)
}

// OnPageRestored indexes the page under the restored page id.
func (u *TitleUpdater) OnPageRestored(ctx context.Context, t domain.Title, pageID int64) (Outcome, error) {
	if ok, err := u.ready(ctx); !ok || err != nil {
		return SkippedNoTable, err
	}
	return u.upsert(ctx, t, pageID)
}

// OnPageDeleted removes the page row.
func (u *TitleUpdater) OnPageDeleted(ctx context.Context, t domain.Title) (Outcome, error) {
	if ok, err := u.ready(ctx); !ok || err != nil {
		return SkippedNoTable, err
	}
	if _, err := u.index.DeleteTitle(ctx, t.Namespace, t.Key()); err != nil {
		return "", fmt.Errorf("delete title: %w", err)
	}
	return Applied, nil
}

// OnPageMoved drops the old identity and indexes the new one.
func (u *TitleUpdater) OnPageMoved(ctx context.Context, from, to domain.Title) (Outcome, error) {
	if ok, err := u.ready(ctx); !ok || err != nil {
		return SkippedNoTable, err
	}
	if from.Namespace != to.Namespace || from.Key() != to.Key() {
		if _, err := u.index.DeleteTitle(ctx, from.Namespace, from.Key()); err != nil {
			return "", fmt.Errorf("delete moved title: %w", err)
		}
	}
	outcome, err := u.upsert(ctx, to, 0)
	if err != nil {
		return "", err
	}
	if outcome == SkippedMissingEntity && (from.Namespace != to.Namespace || from.Key() != to.Key()) {
		// the old row is gone either way
		return Applied, nil
	}
	return outcome, nil
}

func (u *TitleUpdater) ready(ctx context.Context) (bool, error) {
	ok, err := u.index.TableExists(ctx, domidx.TitleTable)
	if err != nil {
		return false, fmt.Errorf("check title index: %w", err)
	}
	return ok, nil
}

// upsert replaces the row of the page. forceID overrides the stored page id when non-zero.
func (u *TitleUpdater) upsert(ctx context.Context, t domain.Title, forceID int64) (Outcome, error) {
	p, err := u.pages.Get(ctx, t)
	if errors.Is(err, domain.ErrNotFound) {
		return SkippedMissingEntity, nil
	}
	if err != nil {
		return "", fmt.Errorf("load page: %w", err)
	}
	id := p.ID
	if forceID > 0 {
		id = forceID
	}
	display, err := u.pages.DisplayTitle(ctx, p.ID)
	if err != nil {
		return "", fmt.Errorf("load display title: %w", err)
	}
	if err := u.index.UpsertTitle(ctx, TitleRow(id, p.Title, display)); err != nil {
		return "", fmt.Errorf("upsert title: %w", err)
	}
	return Applied, nil
}

// TitleRow builds the normalized title index row.
func TitleRow(pageID int64, t domain.Title, displayTitle string) domidx.TitleRow {
	return domidx.TitleRow{
		PageID:       pageID,
		Namespace:    t.Namespace,
		Title:        t.Key(),
		DisplayTitle: domain.NormalizeKey(displayTitle),
	}
}
