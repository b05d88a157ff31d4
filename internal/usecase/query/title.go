package query

import (
	"context"
	"strings"

	"github.com/kailas-cloud/wikindex/internal/db"
	"github.com/kailas-cloud/wikindex/internal/domain"
	domidx "github.com/kailas-cloud/wikindex/internal/domain/index"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	"github.com/kailas-cloud/wikindex/internal/domain/query/result"
	"github.com/kailas-cloud/wikindex/internal/domain/record"
)

// Title store filter fields handled outside the generic pass.
const (
	FieldTitle         = "title"
	FieldDBKey         = "dbkey"
	FieldDisplayTitle  = "displaytitle"
	FieldNamespace     = "namespace"
	FieldContentModel  = "content_model"
	FieldIsContentPage = "is_content_page"
)

var titleFields = []string{
	"mti_page_id", "mti_namespace", "mti_title", "mti_displaytitle",
	"page_title", "page_is_redirect", "page_content_model",
}

func titleTable() Table {
	return Table{
		From: domidx.TitleTable,
		Joins: []db.Join{{
			Kind: db.InnerJoin, Table: "page", On: []db.Cond{db.ColEq("page_id", "mti_page_id")},
		}},
		Fields: titleFields,
		Filterable: map[string]Column{
			"page_id":     {Name: "mti_page_id", Kind: NumberColumn},
			"is_redirect": {Name: "page_is_redirect", Kind: BoolColumn},
		},
		Sortable: map[string]string{
			FieldTitle:        "mti_title",
			FieldDBKey:        "page_title",
			FieldDisplayTitle: "mti_displaytitle",
			FieldNamespace:    "mti_namespace",
			"page_id":         "mti_page_id",
		},
		DefaultSort: []db.Order{{Col: "mti_namespace"}, {Col: "mti_title"}, {Col: "mti_page_id"}},
	}
}

// TitleProvider queries the title index.
type TitleProvider struct {
	engine *Engine
	ns     *domain.Namespaces
}

// NewTitleProvider creates the title store provider. extra rewriters run after
// the built-in ones.
func NewTitleProvider(store Store, ns *domain.Namespaces, extra ...Rewriter) *TitleProvider {
	rewriters := append([]Rewriter{&titleRewriter{ns: ns}}, extra...)
	return &TitleProvider{engine: NewEngine(store, titleTable(), rewriters...), ns: ns}
}

// Query returns matching pages.
func (p *TitleProvider) Query(ctx context.Context, req request.Request) (result.Set[record.Title], error) {
	page, err := p.engine.Execute(ctx, req)
	if err != nil {
		return result.Set[record.Title]{}, err
	}
	out := make([]record.Title, 0, len(page.Rows))
	for _, row := range page.Rows {
		out = append(out, p.titleFromRow(row))
	}
	return result.New(out, page.Total), nil
}

func (p *TitleProvider) titleFromRow(row db.Row) record.Title {
	ns := row.Int("mti_namespace")
	return record.Title{
		ID:            row.Int64("mti_page_id"),
		Namespace:     ns,
		DBKey:         row.String("page_title"),
		ContentModel:  row.String("page_content_model"),
		IsContentPage: p.ns.IsContent(ns),
		Exists:        true,
		IsRedirect:    row.Bool("page_is_redirect"),
	}
}

// titleRewriter consumes title, namespace and content model filters and the
// free-text query.
type titleRewriter struct {
	ns *domain.Namespaces
}

func (r *titleRewriter) Rewrite(_ context.Context, req *request.Request, scan *Scan) error {
	var namespaces []int
	explicitNS := false

	for _, f := range req.Filters().Pending() {
		switch f.Field() {
		case FieldTitle, FieldDBKey, FieldDisplayTitle:
			f.MarkApplied()
			col := "mti_title"
			if f.Field() == FieldDisplayTitle {
				col = "mti_displaytitle"
			}
			if f.Comparison().IsSubstring() && scan.Text == "" {
				// a contains filter stands in for the free-text query
				scan.Text = f.String()
				continue
			}
			if c, ok := TextCond(col, f, domain.NormalizeKey); ok {
				scan.Add(c)
			}
		case FieldNamespace:
			f.MarkApplied()
			explicitNS = true
			ids := r.namespaceIDs(f.Strings())
			if f.Comparison() == filter.NotEquals {
				scan.Add(db.NotInList("mti_namespace", ids))
				continue
			}
			namespaces = append(namespaces, ids...)
			if len(ids) == 0 {
				// nothing resolvable matches nothing
				scan.Add(db.InList("mti_namespace", ids))
			}
		case FieldIsContentPage:
			f.MarkApplied()
			v, ok := f.Bool()
			if !ok {
				continue
			}
			if v {
				explicitNS = true
				namespaces = append(namespaces, r.ns.Content()...)
			} else {
				scan.Add(db.NotInList("mti_namespace", r.ns.Content()))
			}
		case FieldContentModel:
			f.MarkApplied()
			if f.Comparison() == filter.NotEquals {
				scan.Add(db.NotInList("page_content_model", f.Strings()))
			} else {
				scan.Add(db.InList("page_content_model", f.Strings()))
			}
		}
	}

	if text := scan.Text; text != "" {
		scan.Text = ""
		if !explicitNS {
			if prefix, rest, found := strings.Cut(text, ":"); found && prefix != "" {
				if idx, ok := r.ns.Index(prefix); ok && idx != domain.NSMain {
					namespaces = append(namespaces, idx)
					text = rest
				}
			}
		}
		if key := strings.TrimSpace(domain.NormalizeKey(text)); key != "" {
			scan.Add(db.AnyOf(
				db.Contains("mti_title", key),
				db.Contains("mti_displaytitle", key),
			))
		}
	}

	if len(namespaces) > 0 {
		scan.Add(db.InList("mti_namespace", namespaces))
	}
	return nil
}

// namespaceIDs resolves names or numbers; unknown entries are dropped.
func (r *titleRewriter) namespaceIDs(values []string) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if idx, ok := r.ns.Index(v); ok {
			out = append(out, idx)
		}
	}
	return out
}
