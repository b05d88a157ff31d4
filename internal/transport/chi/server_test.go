package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/event"
	"github.com/kailas-cloud/wikindex/internal/domain/query/request"
	healthuc "github.com/kailas-cloud/wikindex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/wikindex/internal/usecase/query"
)

// --- Mocks ---

type mockStores struct {
	store string
	req   request.Request
	resp  queryuc.Response
	err   error
}

func (m *mockStores) Run(_ context.Context, store string, req request.Request) (queryuc.Response, error) {
	m.store = store
	m.req = req
	return m.resp, m.err
}

type mockDispatcher struct {
	events []event.Event
	err    error
}

func (m *mockDispatcher) Dispatch(_ context.Context, ev event.Event) error {
	m.events = append(m.events, ev)
	return m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestRouter(stores StoreRunner, events EventDispatcher, health HealthChecker) http.Handler {
	r := chi.NewRouter()
	NewServer(stores, events, health, zap.NewNop()).Register(r)
	return r
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", target, http.NoBody))
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Store queries ---

func TestQueryStore_BindsParameters(t *testing.T) {
	stores := &mockStores{resp: queryuc.Response{
		Results: []map[string]any{{"dbkey": "Foo"}},
		Total:   7,
		Buckets: map[string]map[string]string{"groups": {"sysop": "Administrators"}},
	}}
	h := newTestRouter(stores, nil, &mockHealth{})

	q := url.Values{}
	q.Set("query", "Help:Getting")
	q.Set("filter", `[{"property":"namespace","value":[0,12],"operator":"in","type":"list"}]`)
	q.Set("sort", `[{"property":"title","direction":"desc"}]`)
	q.Set("start", "5")
	q.Set("limit", "10")
	q.Set("node", "0:Foo")
	q.Set("expand-paths", "Foo/Bar, Foo/Baz")

	rr := get(h, "/api/v1/stores/user?"+q.Encode())
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if stores.store != "user" {
		t.Errorf("store: %q", stores.store)
	}
	req := stores.req
	if req.Query() != "Help:Getting" || req.Offset() != 5 || req.Limit() != 10 || req.Node() != "0:Foo" {
		t.Errorf("request: query=%q offset=%d limit=%d node=%q", req.Query(), req.Offset(), req.Limit(), req.Node())
	}
	if len(req.Filters()) != 1 || req.Filters()[0].Field() != "namespace" || len(req.Filters()[0].Ints()) != 2 {
		t.Errorf("filters: %+v", req.Filters())
	}
	if len(req.Sort()) != 1 || req.Sort()[0].Property != "title" || req.Sort()[0].Direction != request.Desc {
		t.Errorf("sort: %+v", req.Sort())
	}
	if paths := req.ExpandPaths(); len(paths) != 2 || paths[0] != "Foo/Bar" || paths[1] != "Foo/Baz" {
		t.Errorf("expand paths: %v", paths)
	}

	var body struct {
		Results []map[string]any             `json:"results"`
		Total   int                          `json:"total"`
		Buckets map[string]map[string]string `json:"buckets"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 7 || len(body.Results) != 1 || body.Buckets["groups"]["sysop"] != "Administrators" {
		t.Errorf("body: %+v", body)
	}
}

func TestQueryStore_Defaults(t *testing.T) {
	stores := &mockStores{resp: queryuc.Response{Results: []string{}}}
	h := newTestRouter(stores, nil, &mockHealth{})

	rr := get(h, "/api/v1/stores/title")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if stores.req.Offset() != 0 || stores.req.Limit() != request.DefaultLimit || len(stores.req.Filters()) != 0 {
		t.Errorf("defaults: offset=%d limit=%d", stores.req.Offset(), stores.req.Limit())
	}
	if strings.Contains(rr.Body.String(), "buckets") {
		t.Errorf("empty buckets must be omitted: %s", rr.Body.String())
	}
}

func TestQueryStore_Pagination(t *testing.T) {
	stores := &mockStores{resp: queryuc.Response{Results: []string{}}}
	r := chi.NewRouter()
	NewServer(stores, nil, &mockHealth{}, zap.NewNop()).WithPagination(10, 50).Register(r)

	if rr := get(r, "/api/v1/stores/title"); rr.Code != http.StatusOK || stores.req.Limit() != 10 {
		t.Errorf("default page: status=%d limit=%d", rr.Code, stores.req.Limit())
	}
	if rr := get(r, "/api/v1/stores/title?limit=200"); rr.Code != http.StatusOK || stores.req.Limit() != 50 {
		t.Errorf("clamped page: status=%d limit=%d", rr.Code, stores.req.Limit())
	}
}

func TestQueryStore_ExpandPathsJSON(t *testing.T) {
	stores := &mockStores{}
	h := newTestRouter(stores, nil, &mockHealth{})

	q := url.Values{}
	q.Set("expand-paths", `["A/B","C"]`)
	if rr := get(h, "/api/v1/stores/title-tree?"+q.Encode()); rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if paths := stores.req.ExpandPaths(); len(paths) != 2 || paths[0] != "A/B" || paths[1] != "C" {
		t.Errorf("expand paths: %v", paths)
	}
}

func TestQueryStore_BadParameters(t *testing.T) {
	h := newTestRouter(&mockStores{}, nil, &mockHealth{})

	cases := map[string]string{
		"filter":       "filter=" + url.QueryEscape("{not json"),
		"sort":         "sort=" + url.QueryEscape("title"),
		"start":        "start=abc",
		"expand-paths": "expand-paths=" + url.QueryEscape("[1,"),
	}
	for param, query := range cases {
		rr := get(h, "/api/v1/stores/title?"+query)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", param, rr.Code)
			continue
		}
		resp := decodeError(t, rr)
		if resp.Code != ErrorCodeBadRequest || resp.Message != "invalid parameter "+param {
			t.Errorf("%s: unexpected error %+v", param, resp)
		}
	}

	rr := get(h, "/api/v1/stores/title?start=-1")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("negative start: got %d", rr.Code)
	}
}

func TestQueryStore_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   ErrorCode
	}{
		{fmt.Errorf("%w: %q", domain.ErrUnknownStore, "pages"), http.StatusNotFound, ErrorCodeUnknownStore},
		{errors.New("database is locked"), http.StatusInternalServerError, ErrorCodeInternal},
	}
	for _, tc := range cases {
		h := newTestRouter(&mockStores{err: tc.err}, nil, &mockHealth{})
		rr := get(h, "/api/v1/stores/pages")
		if rr.Code != tc.status {
			t.Errorf("%v: got %d, want %d", tc.err, rr.Code, tc.status)
			continue
		}
		resp := decodeError(t, rr)
		if resp.Code != tc.code {
			t.Errorf("%v: code %q, want %q", tc.err, resp.Code, tc.code)
		}
		if strings.Contains(resp.Message, "locked") {
			t.Errorf("internal details leaked: %q", resp.Message)
		}
	}
}

// --- Events ---

func postEvent(h http.Handler, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rr, req)
	return rr
}

func TestPostEvent_Dispatches(t *testing.T) {
	events := &mockDispatcher{}
	h := newTestRouter(&mockStores{}, events, &mockHealth{})

	rr := postEvent(h, `{"kind":"page.moved","namespace":0,"title":"New","old_namespace":0,"old_title":"Old"}`)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if len(events.events) != 1 {
		t.Fatalf("dispatched %d events", len(events.events))
	}
	ev := events.events[0]
	if ev.Kind != event.PageMoved || ev.Title != "New" || ev.OldTitle != "Old" {
		t.Errorf("event: %+v", ev)
	}
}

func TestPostEvent_Rejects(t *testing.T) {
	events := &mockDispatcher{}
	h := newTestRouter(&mockStores{}, events, &mockHealth{})

	cases := map[string]ErrorCode{
		`{"kind":`:                             ErrorCodeBadRequest,
		`{"kind":"page.exploded","title":"X"}`: ErrorCodeUnknownEvent,
		`{"kind":"user.saved"}`:                ErrorCodeBadRequest,
	}
	for body, code := range cases {
		rr := postEvent(h, body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", body, rr.Code)
			continue
		}
		if resp := decodeError(t, rr); resp.Code != code {
			t.Errorf("%s: code %q, want %q", body, resp.Code, code)
		}
	}
	if len(events.events) != 0 {
		t.Errorf("invalid events must not be dispatched: %+v", events.events)
	}
}

func TestPostEvent_DispatchError(t *testing.T) {
	h := newTestRouter(&mockStores{}, &mockDispatcher{err: errors.New("disk I/O error")}, &mockHealth{})

	rr := postEvent(h, `{"kind":"page.saved","namespace":0,"title":"Foo"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("got %d, want 500", rr.Code)
	}
}

func TestPostEvent_DisabledWithoutDispatcher(t *testing.T) {
	h := newTestRouter(&mockStores{}, nil, &mockHealth{})

	rr := postEvent(h, `{"kind":"page.saved","namespace":0,"title":"Foo"}`)
	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("got %d, want route to be absent", rr.Code)
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	cases := []struct {
		status healthuc.Status
		code   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		health := &mockHealth{report: healthuc.Report{
			Status: tc.status,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}}
		rr := get(newTestRouter(&mockStores{}, nil, health), "/health")
		if rr.Code != tc.code {
			t.Errorf("%s: got %d, want %d", tc.status, rr.Code, tc.code)
		}
		var body HealthResponse
		if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Status != string(tc.status) || body.Checks["database"] != "ok" {
			t.Errorf("body: %+v", body)
		}
	}
}
