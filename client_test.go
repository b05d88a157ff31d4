package wikindex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wikindex/internal/db/sqlite/sqlitetest"
)

func newSeededClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	s := sqlitetest.New(t)
	sqlitetest.NewFixture(t, s).
		Page(1, 0, "Foo").
		Page(2, 0, "Foo/Bar").
		Page(3, 12, "Manual").
		User(1, "Alice", "", "t1").
		User(2, "Bob", "Bob <i>Builder</i>", "t2").Group(2, "sysop")

	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	c := wireClient(s, cfg)

	results, err := c.Populate(context.Background(), "all", false)
	require.NoError(t, err)
	require.Len(t, results, 3)
	return c
}

func TestNew_NoDatabase(t *testing.T) {
	_, err := New()
	require.Error(t, err)
}

func TestNew_OpensDatabase(t *testing.T) {
	c, err := New(WithDatabase(filepath.Join(t.TempDir(), "wiki.db")))
	require.NoError(t, err)
	defer func() { require.NoError(t, c.Close()) }()

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, []string{StoreCategory, StoreFile, StoreTitle, StoreTitleTree, StoreUser}, c.Stores())
}

func TestClient_Titles(t *testing.T) {
	c := newSeededClient(t, WithSite("/w/index.php?title=$1", "/img"))
	ctx := context.Background()

	res, err := c.Titles().Text("foo").OrderBy("title", Asc).Do(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
	assert.Equal(t, "Foo", res.Records[0].DBKey)
	assert.Equal(t, "/w/index.php?title=Foo", res.Records[0].URL)

	res, err = c.Titles().Where("namespace", In, []string{"12"}).Do(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "Manual", res.Records[0].DBKey)
}

func TestClient_Users(t *testing.T) {
	c := newSeededClient(t, WithMessages(map[string]string{"group-sysop": "Admins"}))

	res, err := c.Users().Do(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
	bob := res.Records[1]
	assert.Equal(t, "Bob", bob.Name)
	assert.Equal(t, "Bob Builder", bob.DisplayName)
	assert.Equal(t, []string{"Admins"}, bob.Groups)
	assert.Equal(t, "Admins", res.Buckets["groups"]["sysop"])
}

func TestClient_TreeRespectsReadPolicy(t *testing.T) {
	c := newSeededClient(t, WithReadPolicy(map[int][]string{12: {"sysop"}}))
	ctx := context.Background()

	roots := func(ctx context.Context) []string {
		res, err := c.Tree().Do(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(res.Records))
		for _, n := range res.Records {
			ids = append(ids, n.NodeID)
		}
		return ids
	}
	assert.Equal(t, []string{"0:Foo"}, roots(ctx))
	assert.Equal(t, []string{"0:Foo", "12:Manual"}, roots(WithPrincipal(ctx, "Bob", "sysop")))

	res, err := c.Tree().Node("0:Foo").Do(ctx)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Foo/Bar", res.Records[0].DBKey)
}

func TestClient_ApplyAndQueryByName(t *testing.T) {
	c := newSeededClient(t)
	ctx := context.Background()

	sqlitetest.NewFixture(t, c.store).Page(4, 0, "Fresh")
	require.NoError(t, c.Apply(ctx, Event{Kind: PageSaved, Title: "Fresh"}))

	resp, err := c.Query(ctx, StoreTitle, Query{Text: "fresh"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)

	_, err = c.Query(ctx, "pages", Query{})
	require.ErrorIs(t, err, ErrUnknownStore)

	err = c.Apply(ctx, Event{Kind: "page.exploded", Title: "Fresh"})
	require.ErrorIs(t, err, ErrUnknownEvent)
}

func TestClient_PopulateSkipsAndRejects(t *testing.T) {
	c := newSeededClient(t)
	ctx := context.Background()

	results, err := c.Populate(ctx, "title", false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)

	results, err = c.Populate(ctx, "title", true)
	require.NoError(t, err)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, int64(3), results[0].Rows)

	_, err = c.Populate(ctx, "pages", false)
	require.ErrorIs(t, err, ErrInvalidRequest)
}
