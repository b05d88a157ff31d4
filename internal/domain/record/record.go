// Package record holds the result records returned by the query stores.
package record

// Title is a page of the title and file stores.
type Title struct {
	ID            int64  `json:"page_id"`
	Namespace     int    `json:"namespace"`
	DBKey         string `json:"dbkey"`
	ContentModel  string `json:"content_model"`
	IsContentPage bool   `json:"is_content_page"`
	Exists        bool   `json:"exists"`

	Text          string `json:"title"`
	Prefixed      string `json:"prefixed"`
	URL           string `json:"url"`
	NamespaceText string `json:"namespace_text"`
	DisplayTitle  string `json:"displaytitle"`
	IsRedirect    bool   `json:"is_redirect"`
	LeafTitle     string `json:"leaf_title,omitempty"`
	BaseTitle     string `json:"base_title,omitempty"`
}

// File is a file page with media metadata.
type File struct {
	Title

	Size               int64  `json:"file_size_bytes"`
	SizeText           string `json:"file_size"`
	Timestamp          string `json:"file_timestamp"`
	TimestampFormatted string `json:"file_timestamp_formatted"`
	ThumbnailURL       string `json:"file_thumbnail_url"`
	PreviewURL         string `json:"file_thumbnail_url_preview"`
	MediaType          string `json:"file_mediatype"`
	Width              int    `json:"file_width"`
	Height             int    `json:"file_height"`
}

// Category is an entry of the category store. ID is zero for categories that
// exist only as link targets.
type Category struct {
	Title
	CatID int64 `json:"cat_id"`
	Count int   `json:"count"`
}

// User is an entry of the user store.
type User struct {
	ID           int64    `json:"user_id"`
	Name         string   `json:"user_name"`
	RealName     string   `json:"user_real_name"`
	Registration string   `json:"user_registration"`
	EditCount    int      `json:"user_editcount"`
	Email        string   `json:"user_email"`
	Groups       []string `json:"groups"`
	GroupsRaw    []string `json:"groups_raw"`
	Enabled      bool     `json:"enabled"`
	DisplayName  string   `json:"display_name"`
	PageURL      string   `json:"page_url"`
	PagePrefixed string   `json:"page_prefixed_text"`
}

// TreeNode is a title-tree node. Synthetic nodes fill gaps in a path and carry
// Exists=false.
type TreeNode struct {
	Title

	NodeID   string      `json:"id"`
	Path     string      `json:"path"`
	Leaf     bool        `json:"leaf"`
	Expanded bool        `json:"expanded"`
	Loaded   bool        `json:"loaded"`
	Children []*TreeNode `json:"children"`
}

// Walk calls fn for n and every descendant, depth first.
func (n *TreeNode) Walk(fn func(*TreeNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
