package enrich

import (
	"crypto/md5" //nolint:gosec // path hashing, not security
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

// Thumbnail widths attached to file records.
const (
	ThumbWidth   = 40
	PreviewWidth = 120
)

// Site builds local URLs.
type Site struct {
	ArticlePath string // "$1" is replaced by the prefixed key
	UploadPath  string
}

var titleUnescaper = strings.NewReplacer("%2F", "/", "%3B", ";", "%2C", ",")

func escapeTitle(key string) string {
	return titleUnescaper.Replace(url.PathEscape(key))
}

// ArticleURL returns the local URL of a page.
func (s Site) ArticleURL(prefixedDBKey string) string {
	return strings.Replace(s.ArticlePath, "$1", escapeTitle(prefixedDBKey), 1)
}

// hashPath returns the "a/ab" upload directory of a file key.
func hashPath(name string) string {
	sum := md5.Sum([]byte(name)) //nolint:gosec
	h := hex.EncodeToString(sum[:])
	return h[:1] + "/" + h[:2]
}

// FileURL returns the URL of the original upload.
func (s Site) FileURL(name string) string {
	return strings.TrimRight(s.UploadPath, "/") + "/" + hashPath(name) + "/" + escapeTitle(name)
}

// ThumbURL returns the URL of a scaled rendition. Files no wider than width,
// and files without a pixel width, are served as the original.
func (s Site) ThumbURL(name string, fileWidth, width int, mediaType string) string {
	if fileWidth <= 0 || fileWidth <= width {
		return s.FileURL(name)
	}
	thumbName := strconv.Itoa(width) + "px-" + name
	if mediaType == "DRAWING" {
		// vector sources are rasterized
		thumbName += ".png"
	}
	return strings.TrimRight(s.UploadPath, "/") + "/thumb/" + hashPath(name) + "/" +
		escapeTitle(name) + "/" + escapeTitle(thumbName)
}
