package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wikindex/internal/db/sqlite/sqlitetest"
	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
)

func TestFileProvider_PinsFileNamespace(t *testing.T) {
	s := sqlitetest.New(t)
	seedTitles(t, s,
		seedPage{id: 1, ns: domain.NSFile, key: "Cat.png"},
		seedPage{id: 2, ns: domain.NSFile, key: "Dog.jpg"},
		seedPage{id: 3, ns: domain.NSMain, key: "Cat"},
	)
	p := NewFileProvider(s, domain.DefaultNamespaces())
	ctx := context.Background()

	set, err := p.Query(ctx, mustRequest(t, request.Params{Query: "cat"}))
	require.NoError(t, err)
	require.Equal(t, 1, set.Total())
	assert.Equal(t, "Cat.png", set.Records()[0].DBKey)
	assert.Equal(t, domain.NSFile, set.Records()[0].Namespace)

	// namespace filters of the caller cannot widen the store
	set, err = p.Query(ctx, mustRequest(t, request.Params{
		Filters: filter.List{mustFilter(t, FieldNamespace, filter.Equals, "0")},
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, set.Total())
}
