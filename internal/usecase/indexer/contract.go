package indexer

import (
	"context"

	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/repository/category"
	"github.com/kailas-cloud/wikindex/internal/repository/page"
	"github.com/kailas-cloud/wikindex/internal/repository/user"
)

// Outcome is the result of applying one event in one updater.
type Outcome string

// Event outcomes.
const (
	Applied              Outcome = "applied"
	Ignored              Outcome = "ignored"
	SkippedNoTable       Outcome = "skipped_no_table"
	SkippedMissingEntity Outcome = "skipped_missing"
)

// PageEventHandler reacts to page lifecycle events.
type PageEventHandler interface {
	OnPageSaved(ctx context.Context, t domain.Title) (Outcome, error)
	OnPageMoved(ctx context.Context, from, to domain.Title) (Outcome, error)
	OnPageDeleted(ctx context.Context, t domain.Title) (Outcome, error)
	OnPageRestored(ctx context.Context, t domain.Title, pageID int64) (Outcome, error)
	OnPageImported(ctx context.Context, t domain.Title) (Outcome, error)
}

// CategoryEventHandler reacts to category membership changes.
type CategoryEventHandler interface {
	OnCategoryMembershipChanged(ctx context.Context, category string) (Outcome, error)
}

// UserEventHandler reacts to account changes.
type UserEventHandler interface {
	OnUserSaved(ctx context.Context, id int64) (Outcome, error)
	OnUserDeleted(ctx context.Context, id int64) (Outcome, error)
}

// PageReader resolves pages in the primary store.
type PageReader interface {
	Get(ctx context.Context, t domain.Title) (page.Page, error)
	DisplayTitle(ctx context.Context, id int64) (string, error)
}

// UserReader resolves accounts in the primary store.
type UserReader interface {
	Get(ctx context.Context, id int64) (user.User, error)
}

// CategoryReader reads the category page-count cache and membership links.
type CategoryReader interface {
	Info(ctx context.Context, dbKey string) (category.Category, bool, error)
	LinkCount(ctx context.Context, dbKey string) (int, error)
}

// TableChecker reports whether an index table exists.
type TableChecker interface {
	TableExists(ctx context.Context, table string) (bool, error)
}

// TitleWriter writes the title index.
type TitleWriter interface {
	TableChecker
	UpsertTitle(ctx context.Context, row domidx.TitleRow) error
	DeleteTitle(ctx context.Context, ns int, key string) (int64, error)
}

// UserWriter writes the user index.
type UserWriter interface {
	TableChecker
	UpsertUser(ctx context.Context, row domidx.UserRow) error
	DeleteUser(ctx context.Context, id int64) (int64, error)
}

// CategoryWriter writes the category index.
type CategoryWriter interface {
	TableChecker
	DeleteCategory(ctx context.Context, key string) (int64, error)
	InsertCategories(ctx context.Context, rows []domidx.CategoryRow) (int64, error)
}
