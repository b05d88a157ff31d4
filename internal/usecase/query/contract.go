package query

import (
	"context"

	"github.com/RoaringBitmap/roaring"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
)

// Store runs row scans against the primary store.
type Store interface {
	Select(ctx context.Context, q *db.Select) ([]db.Row, error)
	Count(ctx context.Context, q *db.Select) (int, error)
}

// Exclusions lists the users and groups hidden from user queries.
type Exclusions interface {
	Users() []string
	Groups() []string
}

// GroupReader loads group memberships and blocks for a page of users.
type GroupReader interface {
	GroupsFor(ctx context.Context, ids []int64, exclude []string) (map[int64][]string, error)
	DistinctGroups(ctx context.Context, userIDs *db.Select, exclude []string) ([]string, error)
	BlockedIDs(ctx context.Context) (*roaring.Bitmap, error)
}

// Provider produces the base records of a store.
type Provider[T any] interface {
	Query(ctx context.Context, req request.Request) (result.Set[T], error)
}

// Enricher attaches computed fields to a page of records.
type Enricher[T any] interface {
	Enrich(ctx context.Context, set result.Set[T]) (result.Set[T], error)
}

// Hook observes or rewrites a finished result before it is returned.
type Hook[T any] interface {
	OnResult(ctx context.Context, store string, set *result.Set[T]) error
}

// HookFunc adapts a function to Hook.
type HookFunc[T any] func(ctx context.Context, store string, set *result.Set[T]) error

// OnResult calls f.
func (f HookFunc[T]) OnResult(ctx context.Context, store string, set *result.Set[T]) error {
	return f(ctx, store, set)
}
