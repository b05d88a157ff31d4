package request

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/wikindex/internal/domain/query/filter"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New(Params{Query: "  foo "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "foo" {
		t.Errorf("expected trimmed query, got %q", r.Query())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("expected limit %d, got %d", DefaultLimit, r.Limit())
	}
	if r.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", r.Offset())
	}
}

func TestNew_ClampsLimit(t *testing.T) {
	r, err := New(Params{Limit: MaxLimit + 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("expected limit %d, got %d", MaxLimit, r.Limit())
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"query too long", Params{Query: strings.Repeat("a", MaxQueryLength+1)}},
		{"negative offset", Params{Offset: -1}},
		{"too many filters", Params{Filters: make(filter.List, filter.MaxFilters+1)}},
		{"too many expand paths", Params{ExpandPaths: make([]string, MaxExpandPaths+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.p); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNew_NormalizesSort(t *testing.T) {
	r, err := New(Params{Sort: []Sort{
		{Property: "title", Direction: "desc"},
		{Property: "", Direction: "ASC"},
		{Property: "namespace", Direction: "sideways"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := r.Sort()
	if len(got) != 2 {
		t.Fatalf("expected 2 sorts, got %d", len(got))
	}
	if got[0].Direction != Desc || got[1].Direction != Asc {
		t.Errorf("unexpected directions: %+v", got)
	}
}

func TestNew_ExpandPathsTrimmed(t *testing.T) {
	r, err := New(Params{Node: " Foo ", ExpandPaths: []string{" Foo/Bar ", "", "  "}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Node() != "Foo" {
		t.Errorf("expected node Foo, got %q", r.Node())
	}
	if len(r.ExpandPaths()) != 1 || r.ExpandPaths()[0] != "Foo/Bar" {
		t.Errorf("unexpected expand paths: %v", r.ExpandPaths())
	}
}
