package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
)

// QueryStoreParams are the query parameters of GET /api/v1/stores/{store}.
type QueryStoreParams struct {
	Query       *string
	Filter      *string // JSON list of filters
	Sort        *string // JSON list of {property, direction}
	Start       *int
	Limit       *int
	Node        *string
	ExpandPaths *string // JSON list or comma separated
}

// bindQueryStoreParams decodes the query string the way generated binders do.
func bindQueryStoreParams(r *http.Request) (QueryStoreParams, error) {
	var p QueryStoreParams
	q := r.URL.Query()
	binds := []struct {
		name string
		dest any
	}{
		{"query", &p.Query},
		{"filter", &p.Filter},
		{"sort", &p.Sort},
		{"start", &p.Start},
		{"limit", &p.Limit},
		{"node", &p.Node},
		{"expand-paths", &p.ExpandPaths},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return p, domain.NewInvalidParam(b.name, err)
		}
	}
	return p, nil
}

// toRequest validates the bound parameters. A missing limit becomes
// defaultLimit and larger ones are clamped to maxLimit; zero keeps the
// request defaults.
func (p QueryStoreParams) toRequest(defaultLimit, maxLimit int) (request.Request, error) {
	var params request.Params
	params.Query = deref(p.Query)
	params.Node = deref(p.Node)
	if p.Start != nil {
		params.Offset = *p.Start
	}
	params.Limit = defaultLimit
	if p.Limit != nil {
		params.Limit = *p.Limit
	}
	if maxLimit > 0 && params.Limit > maxLimit {
		params.Limit = maxLimit
	}

	if raw := deref(p.Filter); raw != "" {
		filters, err := filter.Parse([]byte(raw))
		if err != nil {
			return request.Request{}, domain.NewInvalidParam("filter", err)
		}
		params.Filters = filters
	}
	if raw := deref(p.Sort); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params.Sort); err != nil {
			return request.Request{}, domain.NewInvalidParam("sort", err)
		}
	}
	if raw := strings.TrimSpace(deref(p.ExpandPaths)); raw != "" {
		paths, err := parseExpandPaths(raw)
		if err != nil {
			return request.Request{}, domain.NewInvalidParam("expand-paths", err)
		}
		params.ExpandPaths = paths
	}

	req, err := request.New(params)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return req, nil
}

func parseExpandPaths(raw string) ([]string, error) {
	if strings.HasPrefix(raw, "[") {
		var paths []string
		if err := json.Unmarshal([]byte(raw), &paths); err != nil {
			return nil, err
		}
		return paths, nil
	}
	return strings.Split(raw, ","), nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
