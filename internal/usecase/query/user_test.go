package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wikindex/internal/db/sqlite/sqlitetest"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/repository/indextable"
	"github.com/kailas-cloud/wikindex/internal/repository/user"
	"github.com/kailas-cloud/wikindex/internal/usecase/indexer"
)

type staticExclusions struct {
	users, groups []string
}

func (e staticExclusions) Users() []string  { return e.users }
func (e staticExclusions) Groups() []string { return e.groups }

func newUserFixture(t *testing.T) *UserProvider {
	t.Helper()
	s := sqlitetest.New(t)
	sqlitetest.NewFixture(t, s).
		User(1, "Alice", "", "t1").Group(1, "bot").
		User(2, "Bob", "Bob Builder", "t2").Group(2, "editor").Group(2, "sysop").
		User(3, "Carol", "Carol <b>King</b>", "t3").
		User(4, "MediaWiki default", "", "t4").
		User(5, "Maintenance script", "", "*** INVALID ***").
		User(6, "Dave", "", "t6").Group(6, "editor").
		Block(1, 6)

	rows := []domidx.UserRow{
		indexer.UserRow(1, "Alice", ""),
		indexer.UserRow(2, "Bob", "Bob Builder"),
		indexer.UserRow(3, "Carol", "Carol <b>King</b>"),
		indexer.UserRow(4, "MediaWiki default", ""),
		indexer.UserRow(5, "Maintenance script", ""),
		indexer.UserRow(6, "Dave", ""),
	}
	_, err := indextable.New(s).InsertUsers(context.Background(), rows)
	require.NoError(t, err)

	excl := staticExclusions{users: []string{"MediaWiki default"}, groups: []string{"bot"}}
	return NewUserProvider(s, user.New(s), excl)
}

func names(users []record.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Name
	}
	return out
}

func TestUserProvider_UnfilteredHidesExcludedAndSystemUsers(t *testing.T) {
	p := newUserFixture(t)

	set, err := p.Query(context.Background(), mustRequest(t, request.Params{}))
	require.NoError(t, err)
	assert.Equal(t, 4, set.Total())
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, names(set.Records()))

	byName := map[string]record.User{}
	for _, u := range set.Records() {
		byName[u.Name] = u
	}
	assert.Empty(t, byName["Alice"].Groups, "excluded group must not leak")
	assert.Equal(t, []string{"editor", "sysop"}, byName["Bob"].Groups)
	assert.Equal(t, "Bob Builder", byName["Bob"].DisplayName)
	assert.Equal(t, "Alice", byName["Alice"].DisplayName)
	assert.False(t, byName["Dave"].Enabled)
	assert.True(t, byName["Bob"].Enabled)

	assert.Equal(t, map[string]string{"editor": "editor", "sysop": "sysop"}, set.Buckets()[GroupBucket])
}

func TestUserProvider_GroupFilter(t *testing.T) {
	p := newUserFixture(t)
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldGroups, filter.Equals, "editor")},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Dave"}, names(set.Records()))
	assert.Equal(t, map[string]string{"editor": "editor", "sysop": "sysop"}, set.Buckets()[GroupBucket])

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldGroups, filter.Equals, "bot")},
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Total())
	assert.Empty(t, set.Buckets()[GroupBucket])
}

func TestUserProvider_FreeText(t *testing.T) {
	p := newUserFixture(t)
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{Query: "ALI"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, names(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{Query: "king"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Carol"}, names(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{Query: "default"}))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Total(), "excluded users never match")
}

func TestUserProvider_NameFilterOverridesQuery(t *testing.T) {
	p := newUserFixture(t)

	set, err := p.Query(context.Background(), mustRequest(t, request.Params{
		Query:   "nobody-matches-this",
		Filters: filter.List{mustFilter(t, FieldUserName, filter.Contains, "BO")},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob"}, names(set.Records()))
}

func TestUserProvider_EnabledFilter(t *testing.T) {
	p := newUserFixture(t)
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldEnabled, filter.Equals, false)},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Dave"}, names(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldEnabled, filter.Equals, "true")},
	}))
	require.NoError(t, err)
	assert.Equal(t, 3, set.Total())
}

func TestUserProvider_Pagination(t *testing.T) {
	p := newUserFixture(t)

	set, err := p.Query(context.Background(), mustRequest(t, request.Params{Offset: 1, Limit: 2}))
	require.NoError(t, err)
	assert.Equal(t, 4, set.Total())
	assert.Equal(t, []string{"Bob", "Carol"}, names(set.Records()))
}

func TestUserProvider_FreeTextKeepsUnderscores(t *testing.T) {
	s := sqlitetest.New(t)
	sqlitetest.NewFixture(t, s).
		User(1, "Eve", "Team_Lead Eve", "t1").
		User(2, "Frank", "Team Lead Frank", "t2")
	_, err := indextable.New(s).InsertUsers(context.Background(), []domidx.UserRow{
		indexer.UserRow(1, "Eve", "Team_Lead Eve"),
		indexer.UserRow(2, "Frank", "Team Lead Frank"),
	})
	require.NoError(t, err)
	p := NewUserProvider(s, user.New(s), staticExclusions{})
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{Query: "TEAM_LEAD"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Eve"}, names(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{Query: "team lead"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Frank"}, names(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldUserRealName, filter.Contains, "Team_")},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Eve"}, names(set.Records()))
}
