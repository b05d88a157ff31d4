package tree

import (
	"context"

	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/repository/page"
)

// Matcher runs the flat title query the tree is built from.
type Matcher interface {
	Query(ctx context.Context, req request.Request) (result.Set[record.Title], error)
}

// PageReader resolves pages of the primary store.
type PageReader interface {
	Existing(ctx context.Context, titles []domain.Title) (map[string]page.Page, error)
	Descendants(ctx context.Context, t domain.Title) ([]page.Page, error)
}
