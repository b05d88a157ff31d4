// Package user reads primary-store users, their groups and blocks.
package user

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain"
)

const (
	table       = "user"
	groupsTable = "user_groups"
)

var userFields = []string{
	"user_id", "user_name", "user_real_name", "user_email", "user_registration", "user_editcount",
}

// store is the consumer interface for user lookups (ISP).
type store interface {
	Select(ctx context.Context, q *db.Select) ([]db.Row, error)
}

// User is a primary-store account.
type User struct {
	ID           int64
	Name         string
	RealName     string
	Email        string
	Registration string
	EditCount    int
}

// Repo reads users.
type Repo struct {
	store store
}

// New creates a user repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns the user with the given id or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id int64) (User, error) {
	q := db.From(table).Fields(userFields...).Where(db.Eq("user_id", id)).Page(0, 1).MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	if len(rows) == 0 {
		return User{}, domain.ErrNotFound
	}
	return FromRow(rows[0]), nil
}

// Batch returns up to limit users with id greater than afterID, ordered by id.
func (r *Repo) Batch(ctx context.Context, afterID int64, limit int) ([]User, error) {
	q := db.From(table).
		Fields(userFields...).
		Where(db.Gt("user_id", afterID)).
		OrderBy("user_id").
		Page(0, limit).
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load user batch: %w", err)
	}
	out := make([]User, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

// GroupsFor returns group memberships of the given users, skipping excluded groups.
func (r *Repo) GroupsFor(ctx context.Context, ids []int64, exclude []string) (map[int64][]string, error) {
	out := make(map[int64][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := db.From(groupsTable).
		Fields("ug_user", "ug_group").
		Where(db.InList("ug_user", ids), db.NotInList("ug_group", exclude)).
		OrderBy("ug_user").
		OrderBy("ug_group").
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load user groups: %w", err)
	}
	for _, row := range rows {
		id := row.Int64("ug_user")
		out[id] = append(out[id], row.String("ug_group"))
	}
	return out, nil
}

// DistinctGroups returns the groups held by the users selected by userIDs
// (a single-column subquery), skipping excluded groups.
func (r *Repo) DistinctGroups(ctx context.Context, userIDs *db.Select, exclude []string) ([]string, error) {
	q := db.From(groupsTable).
		Distinct().
		Fields("ug_group").
		Where(db.InSelect{Col: "ug_user", Query: userIDs}, db.NotInList("ug_group", exclude)).
		OrderBy("ug_group").
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load group buckets: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.String("ug_group"))
	}
	return out, nil
}

// BlockedIDs returns the ids of all users with an active block.
func (r *Repo) BlockedIDs(ctx context.Context) (*roaring.Bitmap, error) {
	q := db.From("block").
		Join("block_target", db.ColEq("bt_id", "bl_target")).
		Fields("bt_user").
		Where(db.NotNull("bt_user")).
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}
	bm := roaring.New()
	for _, row := range rows {
		if id := row.Int64("bt_user"); id > 0 && id <= int64(^uint32(0)) {
			bm.Add(uint32(id))
		}
	}
	return bm, nil
}

// FromRow maps a row carrying the user table columns.
func FromRow(row db.Row) User {
	return User{
		ID:           row.Int64("user_id"),
		Name:         row.String("user_name"),
		RealName:     row.String("user_real_name"),
		Email:        row.String("user_email"),
		Registration: row.String("user_registration"),
		EditCount:    row.Int("user_editcount"),
	}
}
