package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxFilters is the maximum number of filters accepted per request.
const MaxFilters = 32

// Comparison is a filter operator.
type Comparison string

// Supported comparisons.
const (
	Equals         Comparison = "eq"
	NotEquals      Comparison = "neq"
	Contains       Comparison = "ct"
	Like           Comparison = "like"
	In             Comparison = "in"
	Less           Comparison = "lt"
	LessOrEqual    Comparison = "lte"
	Greater        Comparison = "gt"
	GreaterOrEqual Comparison = "gte"
)

// IsKnown reports whether c is a supported comparison.
func (c Comparison) IsKnown() bool {
	switch c {
	case Equals, NotEquals, Contains, Like, In, Less, LessOrEqual, Greater, GreaterOrEqual:
		return true
	}
	return false
}

// IsSubstring reports whether c matches by substring.
func (c Comparison) IsSubstring() bool { return c == Contains || c == Like }

// Filter is one field condition of a query request. The applied flag is set by
// specialized handlers so the generic pass skips the filter.
type Filter struct {
	field      string
	comparison Comparison
	value      any
	applied    bool
}

// New creates a filter. Unknown comparisons are kept and ignored downstream.
func New(field string, cmp Comparison, value any) (*Filter, error) {
	if field == "" {
		return nil, fmt.Errorf("filter field is required")
	}
	if cmp == "" {
		cmp = Equals
	}
	return &Filter{field: field, comparison: cmp, value: value}, nil
}

// Field returns the filtered field name.
func (f *Filter) Field() string { return f.field }

// Comparison returns the operator.
func (f *Filter) Comparison() Comparison { return f.comparison }

// Value returns the raw value.
func (f *Filter) Value() any { return f.value }

// Applied reports whether a specialized handler already consumed the filter.
func (f *Filter) Applied() bool { return f.applied }

// MarkApplied flags the filter as consumed.
func (f *Filter) MarkApplied() { f.applied = true }

// String returns the value as a string. Lists are joined with ",".
func (f *Filter) String() string {
	switch v := f.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return scalarString(v)
	}
}

// Strings returns the value as a list. Scalars become one-element lists.
func (f *Filter) Strings() []string {
	switch v := f.value.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, scalarString(item))
		}
		return out
	default:
		return []string{scalarString(v)}
	}
}

// Ints returns list values parseable as integers; others are dropped.
func (f *Filter) Ints() []int {
	raw := f.Strings()
	out := make([]int, 0, len(raw))
	for _, s := range raw {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Bool interprets the value as a boolean.
func (f *Filter) Bool() (bool, bool) {
	switch v := f.value.(type) {
	case bool:
		return v, true
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

// Number interprets the value as a number.
func (f *Filter) Number() (float64, bool) {
	switch v := f.value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

// List is the ordered filter list of one request.
type List []*Filter

// Pending returns filters no handler has consumed yet.
func (l List) Pending() List {
	out := make(List, 0, len(l))
	for _, f := range l {
		if !f.applied {
			out = append(out, f)
		}
	}
	return out
}

// ByField returns filters on any of the given fields.
func (l List) ByField(fields ...string) List {
	var out List
	for _, f := range l {
		for _, name := range fields {
			if f.field == name {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Has reports whether any filter targets field.
func (l List) Has(field string) bool { return len(l.ByField(field)) > 0 }

// Clone returns copies of all filters with the applied flags cleared, so the
// same request can be executed again.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, f := range l {
		out[i] = &Filter{field: f.field, comparison: f.comparison, value: f.value}
	}
	return out
}
