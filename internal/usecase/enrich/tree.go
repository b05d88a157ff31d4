package enrich

import (
	"context"

	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
)

// Trees enriches tree nodes and all their loaded descendants.
type Trees struct {
	titles *Titles
}

// NewTrees creates a tree enricher.
func NewTrees(titles *Titles) *Trees {
	return &Trees{titles: titles}
}

// Enrich implements the title tree store enricher.
func (e *Trees) Enrich(ctx context.Context, set result.Set[record.TreeNode]) (result.Set[record.TreeNode], error) {
	recs := set.Records()
	var ptrs []*record.Title
	for i := range recs {
		recs[i].Walk(func(n *record.TreeNode) {
			ptrs = append(ptrs, &n.Title)
		})
	}
	return set, e.titles.apply(ctx, ptrs)
}
