package filter

import (
	"encoding/json"
	"fmt"
)

// Raw is the wire form of a filter. Both the "operator" and "comparison" keys
// and both "property" and "field" are accepted.
type Raw struct {
	Property   string          `json:"property"`
	Field      string          `json:"field"`
	Operator   string          `json:"operator"`
	Comparison string          `json:"comparison"`
	Type       string          `json:"type"`
	Value      json.RawMessage `json:"value"`
}

// Parse decodes a JSON filter list. Entries without a field are skipped.
func Parse(data []byte) (List, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raws []Raw
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	if len(raws) > MaxFilters {
		return nil, fmt.Errorf("too many filters (max %d)", MaxFilters)
	}
	out := make(List, 0, len(raws))
	for _, r := range raws {
		f, err := r.toFilter()
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (r Raw) toFilter() (*Filter, error) {
	field := r.Property
	if field == "" {
		field = r.Field
	}
	cmp := r.Comparison
	if cmp == "" {
		cmp = r.Operator
	}
	value, err := decodeValue(r.Value)
	if err != nil {
		return nil, err
	}
	if r.Type == "list" || cmp == string(In) {
		value = toList(value)
	}
	return New(field, Comparison(cmp), value)
}

func decodeValue(data json.RawMessage) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode filter value: %w", err)
	}
	if list, ok := v.([]any); ok {
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, scalarString(item))
		}
		return out, nil
	}
	return v, nil
}

func toList(v any) any {
	switch t := v.(type) {
	case []string:
		return t
	case nil:
		return []string{}
	default:
		return []string{scalarString(t)}
	}
}
