package query

import (
	"context"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
)

func categoryTable() Table {
	return Table{
		From: domidx.CategoryTable,
		Joins: []db.Join{{
			Kind:  db.LeftJoin,
			Table: "page",
			On: []db.Cond{
				db.Eq("page_namespace", domain.NSCategory),
				db.ColEq("page_title", "mci_page_title"),
			},
		}},
		Fields: []string{
			"mci_cat_id", "mci_title", "mci_page_title", "mci_count",
			"page_id", "page_is_redirect", "page_content_model",
		},
		Filterable: map[string]Column{
			"count":  {Name: "mci_count", Kind: NumberColumn},
			"cat_id": {Name: "mci_cat_id", Kind: NumberColumn},
		},
		Sortable: map[string]string{
			FieldTitle: "mci_title",
			FieldDBKey: "mci_page_title",
			"count":    "mci_count",
		},
		DefaultSort: []db.Order{{Col: "mci_title"}},
	}
}

// CategoryProvider queries the category index. Categories that only exist as
// link targets are returned with Exists=false.
type CategoryProvider struct {
	engine *Engine
	ns     *domain.Namespaces
}

// NewCategoryProvider creates the category store provider.
func NewCategoryProvider(store Store, ns *domain.Namespaces, extra ...Rewriter) *CategoryProvider {
	rewriters := append([]Rewriter{RewriterFunc(rewriteCategory)}, extra...)
	return &CategoryProvider{engine: NewEngine(store, categoryTable(), rewriters...), ns: ns}
}

// Query returns matching categories.
func (p *CategoryProvider) Query(ctx context.Context, req request.Request) (result.Set[record.Category], error) {
	page, err := p.engine.Execute(ctx, req)
	if err != nil {
		return result.Set[record.Category]{}, err
	}
	out := make([]record.Category, 0, len(page.Rows))
	for _, row := range page.Rows {
		out = append(out, record.Category{
			Title: record.Title{
				ID:            row.Int64("page_id"),
				Namespace:     domain.NSCategory,
				DBKey:         row.String("mci_page_title"),
				ContentModel:  row.String("page_content_model"),
				IsContentPage: p.ns.IsContent(domain.NSCategory),
				Exists:        !row.IsNull("page_id"),
				IsRedirect:    row.Bool("page_is_redirect"),
			},
			CatID: row.Int64("mci_cat_id"),
			Count: row.Int("mci_count"),
		})
	}
	return result.New(out, page.Total), nil
}

func rewriteCategory(_ context.Context, req *request.Request, scan *Scan) error {
	for _, f := range req.Filters().ByField(FieldTitle, FieldDBKey) {
		f.MarkApplied()
		if f.Comparison().IsSubstring() && scan.Text == "" {
			scan.Text = f.String()
			continue
		}
		if c, ok := TextCond("mci_title", f, domain.NormalizeKey); ok {
			scan.Add(c)
		}
	}
	if scan.Text != "" {
		if key := domain.NormalizeKey(scan.Text); key != "" {
			scan.Add(db.Contains("mci_title", key))
		}
		scan.Text = ""
	}
	return nil
}
