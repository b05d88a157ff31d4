// Package enrich attaches display fields to query records.
package enrich

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
)

const blankNamespaceMsg = "blanknamespace"

// Titles enriches title records.
type Titles struct {
	ns      *domain.Namespaces
	msgs    Messages
	site    Site
	display DisplayTitleReader
}

// NewTitles creates a title enricher.
func NewTitles(ns *domain.Namespaces, msgs Messages, site Site, display DisplayTitleReader) *Titles {
	return &Titles{ns: ns, msgs: msgs, site: site, display: display}
}

// Enrich implements the title store enricher.
func (e *Titles) Enrich(ctx context.Context, set result.Set[record.Title]) (result.Set[record.Title], error) {
	recs := set.Records()
	ptrs := make([]*record.Title, len(recs))
	for i := range recs {
		ptrs[i] = &recs[i]
	}
	if err := e.apply(ctx, ptrs); err != nil {
		return set, err
	}
	return set, nil
}

// apply fills display fields of titles in place, loading display titles in one batch.
func (e *Titles) apply(ctx context.Context, titles []*record.Title) error {
	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		if t.ID > 0 {
			ids = append(ids, t.ID)
		}
	}
	display, err := e.display.DisplayTitles(ctx, ids)
	if err != nil {
		return fmt.Errorf("load display titles: %w", err)
	}
	for _, t := range titles {
		e.fill(t, display[t.ID])
	}
	return nil
}

func (e *Titles) fill(r *record.Title, displayTitle string) {
	t := domain.Title{Namespace: r.Namespace, DBKey: r.DBKey}
	r.Text = t.Text()
	r.Prefixed = t.Prefixed(e.ns)
	r.URL = e.site.ArticleURL(t.PrefixedDBKey(e.ns))
	r.NamespaceText = e.namespaceText(r.Namespace)
	r.IsContentPage = e.ns.IsContent(r.Namespace)
	if displayTitle != "" {
		r.DisplayTitle = domain.Text(displayTitle)
	} else {
		r.DisplayTitle = r.Text
	}
	if t.IsSubpage() && e.ns.HasSubpages(t.Namespace) {
		r.LeafTitle = t.LeafText()
		r.BaseTitle = t.BaseText()
	}
}

func (e *Titles) namespaceText(ns int) string {
	if ns == domain.NSMain {
		return e.msgs.Text(blankNamespaceMsg)
	}
	name, _ := e.ns.Name(ns)
	return domain.Text(name)
}

// Categories enriches category records through their title.
type Categories struct {
	titles *Titles
}

// NewCategories creates a category enricher.
func NewCategories(titles *Titles) *Categories {
	return &Categories{titles: titles}
}

// Enrich implements the category store enricher.
func (e *Categories) Enrich(ctx context.Context, set result.Set[record.Category]) (result.Set[record.Category], error) {
	recs := set.Records()
	ptrs := make([]*record.Title, len(recs))
	for i := range recs {
		ptrs[i] = &recs[i].Title
	}
	return set, e.titles.apply(ctx, ptrs)
}
