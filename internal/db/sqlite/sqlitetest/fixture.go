// Package sqlitetest provides a migrated SQLite store and primary-store
// fixtures for tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/db/sqlite"
)

// New opens a fresh store in a temporary directory, closed on test cleanup.
func New(t testing.TB) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(sqlite.Config{Path: filepath.Join(t.TempDir(), "wiki.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Fixture seeds primary-store rows.
type Fixture struct {
	t     testing.TB
	store db.Writer
}

// NewFixture wraps a store for seeding.
func NewFixture(t testing.TB, s db.Writer) *Fixture {
	return &Fixture{t: t, store: s}
}

func (f *Fixture) insert(table string, row db.Row) {
	f.t.Helper()
	_, err := f.store.Insert(context.Background(), table, []db.Row{row}, db.InsertReplace)
	require.NoError(f.t, err)
}

// Page adds a wikitext page.
func (f *Fixture) Page(id int64, ns int, dbKey string) *Fixture {
	f.t.Helper()
	f.insert("page", db.Row{
		"page_id":            id,
		"page_namespace":     ns,
		"page_title":         dbKey,
		"page_is_redirect":   0,
		"page_content_model": "wikitext",
	})
	return f
}

// PageModel adds a page with an explicit content model and redirect flag.
func (f *Fixture) PageModel(id int64, ns int, dbKey, model string, redirect bool) *Fixture {
	f.t.Helper()
	isRedirect := 0
	if redirect {
		isRedirect = 1
	}
	f.insert("page", db.Row{
		"page_id":            id,
		"page_namespace":     ns,
		"page_title":         dbKey,
		"page_is_redirect":   isRedirect,
		"page_content_model": model,
	})
	return f
}

// DisplayTitle sets the displaytitle property of a page.
func (f *Fixture) DisplayTitle(pageID int64, value string) *Fixture {
	f.t.Helper()
	f.insert("page_props", db.Row{"pp_page": pageID, "pp_propname": "displaytitle", "pp_value": value})
	return f
}

// User adds an account. token may contain "INVALID" to mark a system user.
func (f *Fixture) User(id int64, name, realName, token string) *Fixture {
	f.t.Helper()
	f.insert("user", db.Row{
		"user_id":           id,
		"user_name":         name,
		"user_real_name":    realName,
		"user_email":        "",
		"user_registration": "20240101000000",
		"user_editcount":    0,
		"user_token":        token,
	})
	return f
}

// Group adds a group membership.
func (f *Fixture) Group(userID int64, group string) *Fixture {
	f.t.Helper()
	f.insert("user_groups", db.Row{"ug_user": userID, "ug_group": group})
	return f
}

// Block blocks a user.
func (f *Fixture) Block(id, userID int64) *Fixture {
	f.t.Helper()
	f.insert("block_target", db.Row{"bt_id": id, "bt_user": userID})
	f.insert("block", db.Row{"bl_id": id, "bl_target": id})
	return f
}

// Category adds a page-count cache row.
func (f *Fixture) Category(id int64, dbKey string, pages int) *Fixture {
	f.t.Helper()
	f.insert("category", db.Row{"cat_id": id, "cat_title": dbKey, "cat_pages": pages})
	return f
}

// Link adds a category membership.
func (f *Fixture) Link(pageID int64, category string) *Fixture {
	f.t.Helper()
	f.insert("categorylinks", db.Row{"cl_from": pageID, "cl_to": category})
	return f
}

// File adds media metadata for a file key.
func (f *Fixture) File(name string, size int64, width, height int, mediaType, timestamp string) *Fixture {
	f.t.Helper()
	f.insert("image", db.Row{
		"img_name":       name,
		"img_size":       size,
		"img_width":      width,
		"img_height":     height,
		"img_media_type": mediaType,
		"img_timestamp":  timestamp,
	})
	return f
}
