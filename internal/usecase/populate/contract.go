package populate

import (
	"context"

	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/repository/category"
	"github.com/kailas-cloud/wikindex/internal/repository/page"
	"github.com/kailas-cloud/wikindex/internal/repository/user"
)

// UpdateLog records which one-shot jobs have completed.
type UpdateLog interface {
	Has(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, key string) error
}

// IndexWriter clears and bulk-loads index tables.
type IndexWriter interface {
	TableExists(ctx context.Context, table string) (bool, error)
	Clear(ctx context.Context, table string) (int64, error)
	InsertTitles(ctx context.Context, rows []domidx.TitleRow) (int64, error)
	InsertUsers(ctx context.Context, rows []domidx.UserRow) (int64, error)
	InsertCategories(ctx context.Context, rows []domidx.CategoryRow) (int64, error)
}

// PageSource streams pages by ascending id.
type PageSource interface {
	Batch(ctx context.Context, afterID int64, limit int) ([]page.Page, error)
	DisplayTitles(ctx context.Context, ids []int64) (map[int64]string, error)
}

// UserSource streams accounts by ascending id.
type UserSource interface {
	Batch(ctx context.Context, afterID int64, limit int) ([]user.User, error)
}

// CategorySource streams the category cache and link targets by ascending title.
type CategorySource interface {
	Batch(ctx context.Context, afterTitle string, limit int) ([]category.Category, error)
	LinkTargets(ctx context.Context, afterTitle string, limit int) ([]category.LinkTarget, error)
}
