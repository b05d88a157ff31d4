package enrich

import (
	"context"

	"github.com/kailas-cloud/wikindex/internal/repository/file"
)

// Messages resolves localized interface texts.
type Messages interface {
	Exists(key string) bool
	Text(key string) string
}

// DisplayTitleReader loads displaytitle page properties.
type DisplayTitleReader interface {
	DisplayTitles(ctx context.Context, ids []int64) (map[int64]string, error)
}

// FileReader loads media metadata by file key.
type FileReader interface {
	ByNames(ctx context.Context, names []string) (map[string]file.Metadata, error)
}
