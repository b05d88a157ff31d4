package query

import (
	"context"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
)

// FileProvider queries the title index restricted to the file namespace.
type FileProvider struct {
	titles *TitleProvider
}

// NewFileProvider creates the file store provider.
func NewFileProvider(store Store, ns *domain.Namespaces) *FileProvider {
	titles := &TitleProvider{ns: ns}
	titles.engine = NewEngine(store, titleTable(), RewriterFunc(pinFileNamespace), &titleRewriter{ns: ns})
	return &FileProvider{titles: titles}
}

// pinFileNamespace swallows namespace filters of the caller.
func pinFileNamespace(_ context.Context, req *request.Request, scan *Scan) error {
	for _, f := range req.Filters().ByField(FieldNamespace, FieldIsContentPage) {
		f.MarkApplied()
	}
	scan.Add(db.Eq("mti_namespace", domain.NSFile))
	return nil
}

// Query returns matching file pages.
func (p *FileProvider) Query(ctx context.Context, req request.Request) (result.Set[record.File], error) {
	titles, err := p.titles.Query(ctx, req)
	if err != nil {
		return result.Set[record.File]{}, err
	}
	return result.Map(titles, func(t record.Title) record.File {
		return record.File{Title: t}
	}), nil
}
