// Package index holds the denormalized rows stored in the secondary index tables.
package index

// Table names of the secondary indexes.
const (
	TitleTable    = "mws_title_index"
	UserTable     = "mws_user_index"
	CategoryTable = "mws_category_index"
)

// TitleRow is one row of the title index.
type TitleRow struct {
	PageID       int64
	Namespace    int
	Title        string // normalized key
	DisplayTitle string // normalized display title, "" when unset
}

// UserRow is one row of the user index.
type UserRow struct {
	UserID   int64
	Name     string
	RealName string
}

// CategoryRow is one row of the category index.
type CategoryRow struct {
	CatID     int64
	Title     string // normalized key
	PageTitle string // primary-store key
	Count     int64
}
