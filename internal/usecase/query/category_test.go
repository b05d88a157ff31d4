package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wikindex/internal/db/sqlite/sqlitetest"
	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
	"github.com/kailas-cloud/wikindex/internal/repository/indextable"
)

func newCategoryFixture(t *testing.T) *CategoryProvider {
	t.Helper()
	s := sqlitetest.New(t)
	sqlitetest.NewFixture(t, s).
		Page(10, domain.NSCategory, "Birds").
		Page(11, domain.NSCategory, "Cats")

	_, err := indextable.New(s).InsertCategories(context.Background(), []domidx.CategoryRow{
		{CatID: 1, Title: "birds", PageTitle: "Birds", Count: 12},
		{CatID: 2, Title: "cats", PageTitle: "Cats", Count: 3},
		{CatID: 0, Title: "big cats", PageTitle: "Big_cats", Count: 1},
	})
	require.NoError(t, err)
	return NewCategoryProvider(s, domain.DefaultNamespaces())
}

func catKeys(cats []record.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = c.DBKey
	}
	return out
}

func TestCategoryProvider_ListsWithExistence(t *testing.T) {
	p := newCategoryFixture(t)

	set, err := p.Query(context.Background(), mustRequest(t, request.Params{}))
	require.NoError(t, err)
	require.Equal(t, 3, set.Total())
	assert.Equal(t, []string{"Big_cats", "Birds", "Cats"}, catKeys(set.Records()))

	big := set.Records()[0]
	assert.False(t, big.Exists, "link-only category has no page")
	assert.Equal(t, domain.NSCategory, big.Namespace)

	birds := set.Records()[1]
	assert.True(t, birds.Exists)
	assert.Equal(t, int64(10), birds.ID)
	assert.Equal(t, int64(1), birds.CatID)
	assert.Equal(t, 12, birds.Count)
}

func TestCategoryProvider_FreeTextAndCountFilter(t *testing.T) {
	p := newCategoryFixture(t)
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{Query: "Cats"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Big_cats", "Cats"}, catKeys(set.Records()))

	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, "count", filter.GreaterOrEqual, 3)},
		Sort:    []request.Sort{{Property: "count", Direction: request.Desc}},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Birds", "Cats"}, catKeys(set.Records()))
}
