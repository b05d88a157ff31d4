package filter

import (
	"testing"
)

func TestParse_AcceptsBothKeyStyles(t *testing.T) {
	list, err := Parse([]byte(`[
		{"property":"namespace","value":[0,4],"operator":"in","type":"list"},
		{"field":"title","value":"Foo","comparison":"ct","type":"string"},
		{"value":"dropped"}
	]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(list))
	}
	if list[0].Field() != "namespace" || list[0].Comparison() != In {
		t.Errorf("unexpected first filter: %s %s", list[0].Field(), list[0].Comparison())
	}
	ints := list[0].Ints()
	if len(ints) != 2 || ints[0] != 0 || ints[1] != 4 {
		t.Errorf("expected [0 4], got %v", ints)
	}
	if list[1].Field() != "title" || list[1].String() != "Foo" {
		t.Errorf("unexpected second filter: %s=%q", list[1].Field(), list[1].String())
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestParse_Empty(t *testing.T) {
	list, err := Parse(nil)
	if err != nil || list != nil {
		t.Fatalf("expected nil list, got %v %v", list, err)
	}
}

func TestFilter_ScalarInList(t *testing.T) {
	list, err := Parse([]byte(`[{"property":"group","value":"sysop","operator":"in"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := list[0].Strings()
	if len(got) != 1 || got[0] != "sysop" {
		t.Errorf("expected [sysop], got %v", got)
	}
}

func TestFilter_Bool(t *testing.T) {
	tests := []struct {
		value  any
		want   bool
		wantOK bool
	}{
		{true, true, true},
		{"false", false, true},
		{float64(1), true, true},
		{"maybe", false, false},
		{nil, false, false},
	}
	for _, tt := range tests {
		f, _ := New("is_content_page", Equals, tt.value)
		got, ok := f.Bool()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Bool(%v) = %v,%v; want %v,%v", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFilter_AppliedIsExcludedFromPending(t *testing.T) {
	a, _ := New("title", Contains, "foo")
	b, _ := New("namespace", Equals, float64(0))
	list := List{a, b}
	a.MarkApplied()

	pending := list.Pending()
	if len(pending) != 1 || pending[0] != b {
		t.Fatalf("expected only namespace filter pending, got %d", len(pending))
	}
	if !list.Has("title") || list.Has("user") {
		t.Error("Has reported wrong result")
	}
}

func TestNew_RequiresField(t *testing.T) {
	if _, err := New("", Equals, "x"); err == nil {
		t.Fatal("expected error")
	}
	f, err := New("x", "", "y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Comparison() != Equals {
		t.Errorf("expected default eq, got %s", f.Comparison())
	}
}

func TestComparison_IsKnown(t *testing.T) {
	if !Like.IsKnown() || Comparison("regex").IsKnown() {
		t.Error("IsKnown mismatch")
	}
	if !Contains.IsSubstring() || Equals.IsSubstring() {
		t.Error("IsSubstring mismatch")
	}
}

func TestList_CloneResetsApplied(t *testing.T) {
	f, _ := New("title", Contains, "foo")
	f.MarkApplied()
	list := List{f}

	cp := list.Clone()
	if cp[0] == f {
		t.Fatal("clone must not share filters")
	}
	if cp[0].Applied() {
		t.Error("clone must clear the applied flag")
	}
	if cp[0].Field() != "title" || cp[0].String() != "foo" {
		t.Errorf("unexpected clone: %s %s", cp[0].Field(), cp[0].String())
	}
	if !f.Applied() {
		t.Error("original must keep its flag")
	}
}
