package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
)

const (
	storeTimestampLayout = "20060102150405"
	dateLayout           = "2 January 2006"
)

// Files enriches file records with title fields and media metadata.
type Files struct {
	titles *Titles
	files  FileReader
	site   Site
}

// NewFiles creates a file enricher.
func NewFiles(titles *Titles, files FileReader, site Site) *Files {
	return &Files{titles: titles, files: files, site: site}
}

// Enrich implements the file store enricher. Pages without an upload keep
// empty media fields.
func (e *Files) Enrich(ctx context.Context, set result.Set[record.File]) (result.Set[record.File], error) {
	recs := set.Records()
	ptrs := make([]*record.Title, len(recs))
	names := make([]string, len(recs))
	for i := range recs {
		ptrs[i] = &recs[i].Title
		names[i] = recs[i].DBKey
	}
	if err := e.titles.apply(ctx, ptrs); err != nil {
		return set, err
	}

	meta, err := e.files.ByNames(ctx, names)
	if err != nil {
		return set, fmt.Errorf("load file metadata: %w", err)
	}
	for i := range recs {
		m, ok := meta[recs[i].DBKey]
		if !ok {
			continue
		}
		f := &recs[i]
		f.Size = m.Size
		f.SizeText = humanize.IBytes(uint64(max(m.Size, 0)))
		f.Timestamp = m.Timestamp
		f.TimestampFormatted = formatTimestamp(m.Timestamp)
		f.ThumbnailURL = e.site.ThumbURL(m.Name, m.Width, ThumbWidth, m.MediaType)
		f.PreviewURL = e.site.ThumbURL(m.Name, m.Width, PreviewWidth, m.MediaType)
		f.MediaType = m.MediaType
		f.Width = m.Width
		f.Height = m.Height
	}
	return set, nil
}

// formatTimestamp renders a store timestamp as a date; unparsable input is returned as is.
func formatTimestamp(ts string) string {
	t, err := time.Parse(storeTimestampLayout, ts)
	if err != nil {
		return ts
	}
	return t.Format(dateLayout)
}
