package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wikindex/internal/db/sqlite"
	"github.com/kailas-cloud/wikindex/internal/db/sqlite/sqlitetest"
	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/repository/indextable"
	"github.com/kailas-cloud/wikindex/internal/usecase/indexer"
)

type seedPage struct {
	id      int64
	ns      int
	key     string
	display string
}

// seedTitles writes primary pages and their title index rows.
func seedTitles(t *testing.T, s *sqlite.Store, pages ...seedPage) {
	t.Helper()
	fx := sqlitetest.NewFixture(t, s)
	rows := make([]domidx.TitleRow, 0, len(pages))
	for _, p := range pages {
		fx.Page(p.id, p.ns, p.key)
		if p.display != "" {
			fx.DisplayTitle(p.id, p.display)
		}
		rows = append(rows, indexer.TitleRow(p.id, domain.Title{Namespace: p.ns, DBKey: p.key}, p.display))
	}
	_, err := indextable.New(s).InsertTitles(context.Background(), rows)
	require.NoError(t, err)
}

func mustFilter(t *testing.T, field string, cmp filter.Comparison, value any) *filter.Filter {
	t.Helper()
	f, err := filter.New(field, cmp, value)
	require.NoError(t, err)
	return f
}

func mustRequest(t *testing.T, p request.Params) request.Request {
	t.Helper()
	req, err := request.New(p)
	require.NoError(t, err)
	return req
}

func keys(titles []record.Title) []string {
	out := make([]string, len(titles))
	for i, ti := range titles {
		out[i] = ti.DBKey
	}
	return out
}

func newTitleFixture(t *testing.T) *TitleProvider {
	t.Helper()
	s := sqlitetest.New(t)
	seedTitles(t, s,
		seedPage{id: 1, ns: 0, key: "Getting_There"},
		seedPage{id: 2, ns: 12, key: "Getting_Started", display: "Starter Guide"},
		seedPage{id: 3, ns: 0, key: "Foo"},
		seedPage{id: 4, ns: 0, key: "Foo/Bar"},
		seedPage{id: 5, ns: 2, key: "Alice"},
	)
	sqlitetest.NewFixture(t, s).PageModel(6, 0, "Data.json", "json", false)
	_, err := indextable.New(s).InsertTitles(context.Background(), []domidx.TitleRow{
		indexer.TitleRow(6, domain.Title{Namespace: 0, DBKey: "Data.json"}, ""),
	})
	require.NoError(t, err)
	return NewTitleProvider(s, domain.DefaultNamespaces())
}

func TestTitleProvider_EmptyRequestReturnsAll(t *testing.T) {
	p := newTitleFixture(t)

	set, err := p.Query(context.Background(), mustRequest(t, request.Params{}))
	require.NoError(t, err)
	assert.Equal(t, 6, set.Total())
	assert.Equal(t, []string{"Data.json", "Foo", "Foo/Bar", "Getting_There", "Alice", "Getting_Started"},
		keys(set.Records()))
}

func TestTitleProvider_FreeTextMatchesTitleOrDisplayTitle(t *testing.T) {
	p := newTitleFixture(t)
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{Query: "getting_"}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Getting_There", "Getting_Started"}, keys(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{Query: "STARTER"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Getting_Started"}, keys(set.Records()))
}

func TestTitleProvider_NamespacePrefix(t *testing.T) {
	p := newTitleFixture(t)
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{Query: "Help:getting"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Getting_Started"}, keys(set.Records()))

	// an explicit namespace filter wins; the prefix becomes literal text
	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Query:   "Help:getting",
		Filters: filter.List{mustFilter(t, FieldNamespace, filter.Equals, "0")},
	}))
	require.NoError(t, err)
	assert.Equal(t, 0, set.Total())
}

func TestTitleProvider_NamespaceAndContentFilters(t *testing.T) {
	p := newTitleFixture(t)
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldNamespace, filter.In, []string{"2", "Help"})},
	}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alice", "Getting_Started"}, keys(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldIsContentPage, filter.Equals, false)},
	}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Alice", "Getting_Started"}, keys(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldIsContentPage, filter.Equals, true)},
	}))
	require.NoError(t, err)
	assert.Equal(t, 4, set.Total())
	for _, r := range set.Records() {
		assert.True(t, r.IsContentPage)
	}

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldContentModel, filter.Equals, "json")},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Data.json"}, keys(set.Records()))
}

func TestTitleProvider_TitleFilters(t *testing.T) {
	p := newTitleFixture(t)
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldTitle, filter.Equals, "FOO")},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, keys(set.Records()), "eq on the normalized key")

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldTitle, filter.Equals, "foo/bar")},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo/Bar"}, keys(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldDBKey, filter.Contains, "foo")},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo", "Foo/Bar"}, keys(set.Records()))
}

func TestTitleProvider_UnknownFilterIgnored(t *testing.T) {
	p := newTitleFixture(t)

	set, err := p.Query(context.Background(), mustRequest(t, request.Params{
		Filters: filter.List{
			mustFilter(t, "no_such_field", filter.Equals, "x"),
			mustFilter(t, "page_id", "between", "1"),
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, 6, set.Total())
}

func TestTitleProvider_GenericFilterAndSort(t *testing.T) {
	p := newTitleFixture(t)

	set, err := p.Query(context.Background(), mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, "page_id", filter.LessOrEqual, 3.0)},
		Sort:    []request.Sort{{Property: FieldTitle, Direction: request.Desc}},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Getting_There", "Getting_Started", "Foo"}, keys(set.Records()))
}

func TestTitleProvider_Pagination(t *testing.T) {
	p := newTitleFixture(t)
	ctx := context.Background()

	first, err := p.Query(ctx, mustRequest(t, request.Params{Limit: 4}))
	require.NoError(t, err)
	second, err := p.Query(ctx, mustRequest(t, request.Params{Offset: 4, Limit: 4}))
	require.NoError(t, err)

	assert.Equal(t, 6, first.Total())
	assert.Equal(t, 6, second.Total())
	assert.Equal(t, 4, first.Len())
	assert.Equal(t, 2, second.Len())
	assert.NotContains(t, keys(second.Records()), first.Records()[0].DBKey)
}

func TestFileProvider_PinsFileNamespaceWithFilter(t *testing.T) {
	s := sqlitetest.New(t)
	seedTitles(t, s,
		seedPage{id: 1, ns: domain.NSFile, key: "Cat.png"},
		seedPage{id: 2, ns: 0, key: "Cat"},
	)
	p := NewFileProvider(s, domain.DefaultNamespaces())

	set, err := p.Query(context.Background(), mustRequest(t, request.Params{
		Query:   "cat",
		Filters: filter.List{mustFilter(t, FieldNamespace, filter.Equals, "0")},
	}))
	require.NoError(t, err)
	require.Equal(t, 1, set.Total())
	assert.Equal(t, "Cat.png", set.Records()[0].DBKey)
}

func TestCategoryProvider(t *testing.T) {
	s := sqlitetest.New(t)
	sqlitetest.NewFixture(t, s).Page(10, domain.NSCategory, "Birds")
	_, err := indextable.New(s).InsertCategories(context.Background(), []domidx.CategoryRow{
		{CatID: 1, Title: "birds", PageTitle: "Birds", Count: 3},
		{CatID: 0, Title: "birdwatchers", PageTitle: "Birdwatchers", Count: 1},
		{CatID: 2, Title: "cats", PageTitle: "Cats", Count: 0},
	})
	require.NoError(t, err)
	p := NewCategoryProvider(s, domain.DefaultNamespaces())
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{Query: "BIRD"}))
	require.NoError(t, err)
	require.Equal(t, 2, set.Total())
	birds := set.Records()[0]
	assert.Equal(t, "Birds", birds.DBKey)
	assert.True(t, birds.Exists)
	assert.Equal(t, int64(10), birds.ID)
	assert.Equal(t, 3, birds.Count)
	assert.False(t, set.Records()[1].Exists)

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, "count", filter.Greater, 0)},
		Sort:    []request.Sort{{Property: "count", Direction: request.Desc}},
	}))
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "Birds", set.Records()[0].DBKey)
}
