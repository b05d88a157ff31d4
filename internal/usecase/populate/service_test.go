package populate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/db/sqlite"
	"github.com/kailas-cloud/wikindex/internal/db/sqlite/sqlitetest"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/repository/category"
	"github.com/kailas-cloud/wikindex/internal/repository/indextable"
	"github.com/kailas-cloud/wikindex/internal/repository/page"
	"github.com/kailas-cloud/wikindex/internal/repository/updatelog"
	"github.com/kailas-cloud/wikindex/internal/repository/user"
)

func newRunner(t *testing.T) (*Runner, *sqlite.Store) {
	t.Helper()
	s := sqlitetest.New(t)
	r := New(updatelog.New(s), indextable.New(s), page.New(s), user.New(s), category.New(s)).
		WithBatchSize(2)
	return r, s
}

func count(t *testing.T, s *sqlite.Store, table string, where ...db.Cond) int {
	t.Helper()
	n, err := s.Count(context.Background(), db.From(table).Where(where...).MustBuild())
	require.NoError(t, err)
	return n
}

func TestRun_TitleIsIdempotent(t *testing.T) {
	r, s := newRunner(t)
	sqlitetest.NewFixture(t, s).
		Page(1, 0, "Foo").
		Page(2, 0, "Foo/Bar").
		Page(3, 12, "Getting_Started").
		Page(4, 2, "Alice").
		Page(5, 0, "Baz").
		DisplayTitle(3, "Getting Started Guide")
	ctx := context.Background()

	res, err := r.Run(ctx, JobTitle, false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, int64(5), res.Rows)
	assert.Equal(t, 5, count(t, s, domidx.TitleTable))
	assert.Equal(t, 1, count(t, s, domidx.TitleTable,
		db.Eq("mti_title", "getting started"), db.Eq("mti_displaytitle", "getting started guide")))

	// second run without force is a no-op
	res, err = r.Run(ctx, JobTitle, false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	// forced rerun converges to the same table
	res, err = r.Run(ctx, JobTitle, true)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 5, count(t, s, domidx.TitleTable))
}

func TestRun_ForceDropsStaleRows(t *testing.T) {
	r, s := newRunner(t)
	sqlitetest.NewFixture(t, s).Page(1, 0, "Foo")
	ctx := context.Background()

	_, err := indextable.New(s).InsertTitles(ctx, []domidx.TitleRow{{PageID: 42, Title: "ghost"}})
	require.NoError(t, err)

	_, err = r.Run(ctx, JobTitle, true)
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, s, domidx.TitleTable))
	assert.Equal(t, 0, count(t, s, domidx.TitleTable, db.Eq("mti_title", "ghost")))
}

func TestRun_User(t *testing.T) {
	r, s := newRunner(t)
	sqlitetest.NewFixture(t, s).
		User(1, "Alice", "Alice Smith", "t1").
		User(2, "Bob", "", "t2").
		User(3, "Carol", "", "t3")

	res, err := r.Run(context.Background(), JobUser, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rows)
	assert.Equal(t, 1, count(t, s, domidx.UserTable,
		db.Eq("mui_user_name", "alice"), db.Eq("mui_user_real_name", "alice smith")))
}

func TestRun_CategoryMergesCacheAndLinks(t *testing.T) {
	r, s := newRunner(t)
	sqlitetest.NewFixture(t, s).
		Category(1, "Birds", 10).
		Category(2, "Zebras", 3).
		Link(100, "Apes").
		Link(100, "Birds").
		Link(101, "Birds").
		Link(102, "Cats")

	res, err := r.Run(context.Background(), JobCategory, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Rows)

	rows, err := s.Select(context.Background(), db.From(domidx.CategoryTable).
		Fields("mci_title", "mci_cat_id", "mci_count").
		OrderBy("mci_title").
		MustBuild())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	got := map[string][2]int64{}
	for _, row := range rows {
		got[row.String("mci_title")] = [2]int64{row.Int64("mci_cat_id"), row.Int64("mci_count")}
	}
	assert.Equal(t, map[string][2]int64{
		"apes":   {0, 1},
		"birds":  {1, 2},
		"cats":   {0, 1},
		"zebras": {2, 0},
	}, got)
}

// unmigrated hides the listed index tables as if their migration had not run.
type unmigrated struct {
	*indextable.Repo
	missing map[string]bool
}

func (u *unmigrated) TableExists(ctx context.Context, table string) (bool, error) {
	if u.missing[table] {
		return false, nil
	}
	return u.Repo.TableExists(ctx, table)
}

func TestRun_MissingTableIsNoop(t *testing.T) {
	s := sqlitetest.New(t)
	sqlitetest.NewFixture(t, s).
		Page(1, 0, "Foo").
		User(1, "Alice", "", "t1").
		Link(1, "Birds")
	idx := &unmigrated{Repo: indextable.New(s), missing: map[string]bool{
		domidx.TitleTable:    true,
		domidx.CategoryTable: true,
		domidx.UserTable:     true,
	}}
	log := updatelog.New(s)
	r := New(log, idx, page.New(s), user.New(s), category.New(s))
	ctx := context.Background()

	for _, job := range Jobs() {
		res, err := r.Run(ctx, job, false)
		require.NoError(t, err, job)
		assert.True(t, res.Skipped, job)
		assert.True(t, res.NoTable, job)
		assert.Zero(t, res.Rows, job)

		done, err := log.Has(ctx, job.UpdateKey())
		require.NoError(t, err)
		assert.False(t, done, "update key must stay unset for %s", job)
	}
	assert.Equal(t, 0, count(t, s, domidx.TitleTable))

	// once the table shows up the job runs normally
	delete(idx.missing, domidx.TitleTable)
	res, err := r.Run(ctx, JobTitle, false)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.False(t, res.NoTable)
	assert.Equal(t, int64(1), res.Rows)
}

func TestParseJob(t *testing.T) {
	j, err := ParseJob("category")
	require.NoError(t, err)
	assert.Equal(t, "mws-category-index-init", j.UpdateKey())
	assert.Equal(t, domidx.CategoryTable, j.Table())

	_, err = ParseJob("bogus")
	assert.Error(t, err)
}
