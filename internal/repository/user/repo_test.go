package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/db/sqlite/sqlitetest"
	"github.com/kailas-cloud/wikindex/internal/domain"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	s := sqlitetest.New(t)
	sqlitetest.NewFixture(t, s).
		User(1, "Alice", "Alice Liddell", "").
		User(2, "Bob", "", "").
		User(3, "MediaWiki default", "", "*** INVALID ***").
		Group(1, "bot").
		Group(2, "sysop").
		Group(2, "editor").
		Block(10, 2)
	return New(s)
}

func TestGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "Alice Liddell", u.RealName)
	assert.Equal(t, "20240101000000", u.Registration)

	_, err = repo.Get(ctx, 99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBatch(t *testing.T) {
	repo := newTestRepo(t)
	users, err := repo.Batch(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(2), users[0].ID)
}

func TestGroupsFor_ExcludesBlacklisted(t *testing.T) {
	repo := newTestRepo(t)
	groups, err := repo.GroupsFor(context.Background(), []int64{1, 2}, []string{"bot"})
	require.NoError(t, err)
	assert.NotContains(t, groups, int64(1))
	assert.Equal(t, []string{"editor", "sysop"}, groups[2])
}

func TestDistinctGroups(t *testing.T) {
	repo := newTestRepo(t)
	ids := db.From("user").Fields("user_id").Where(db.InList("user_id", []int64{1, 2})).MustBuild()

	groups, err := repo.DistinctGroups(context.Background(), ids, []string{"bot"})
	require.NoError(t, err)
	assert.Equal(t, []string{"editor", "sysop"}, groups)
}

func TestBlockedIDs(t *testing.T) {
	repo := newTestRepo(t)
	bm, err := repo.BlockedIDs(context.Background())
	require.NoError(t, err)
	assert.True(t, bm.Contains(2))
	assert.False(t, bm.Contains(1))
	assert.Equal(t, uint64(1), bm.GetCardinality())
}
