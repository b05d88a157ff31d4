// Package file reads media metadata of file pages.
package file

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/wikindex/internal/db"
)

const table = "image"

// store is the consumer interface for file metadata (ISP).
type store interface {
	Select(ctx context.Context, q *db.Select) ([]db.Row, error)
}

// Metadata describes an uploaded file.
type Metadata struct {
	Name      string
	Size      int64
	Width     int
	Height    int
	MediaType string
	Timestamp string
}

// Repo reads file metadata.
type Repo struct {
	store store
}

// New creates a file repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// ByNames returns metadata keyed by file key for the files that exist.
func (r *Repo) ByNames(ctx context.Context, names []string) (map[string]Metadata, error) {
	out := make(map[string]Metadata, len(names))
	if len(names) == 0 {
		return out, nil
	}
	q := db.From(table).
		Fields("img_name", "img_size", "img_width", "img_height", "img_media_type", "img_timestamp").
		Where(db.InList("img_name", names)).
		MustBuild()
	rows, err := r.store.Select(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load file metadata: %w", err)
	}
	for _, row := range rows {
		m := Metadata{
			Name:      row.String("img_name"),
			Size:      row.Int64("img_size"),
			Width:     row.Int("img_width"),
			Height:    row.Int("img_height"),
			MediaType: row.String("img_media_type"),
			Timestamp: row.String("img_timestamp"),
		}
		out[m.Name] = m
	}
	return out, nil
}
