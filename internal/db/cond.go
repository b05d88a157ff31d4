package db

// Cond is a WHERE condition node. Column names are trusted identifiers chosen
// by code, never by request input; values are always bound as parameters.
type Cond interface {
	isCond()
}

// CompareOp is a binary comparison operator.
type CompareOp string

// Comparison operators.
const (
	OpEq  CompareOp = "="
	OpNe  CompareOp = "<>"
	OpLt  CompareOp = "<"
	OpLte CompareOp = "<="
	OpGt  CompareOp = ">"
	OpGte CompareOp = ">="
)

// Compare is "col op value".
type Compare struct {
	Col   string
	Op    CompareOp
	Value any
}

// LikeMode selects where the pattern may occur.
type LikeMode int

// Like modes.
const (
	LikeContains LikeMode = iota
	LikePrefix
)

// Like is a substring or prefix match. Text is matched literally; wildcard
// characters inside it are escaped by the renderer.
type Like struct {
	Col    string
	Text   string
	Mode   LikeMode
	Negate bool
}

// In is list membership. An empty list matches nothing (or everything when
// negated).
type In struct {
	Col    string
	Values []any
	Negate bool
}

// InSelect is membership in a single-column subquery.
type InSelect struct {
	Col    string
	Query  *Select
	Negate bool
}

// Null is "col IS [NOT] NULL".
type Null struct {
	Col    string
	Negate bool
}

// ColumnsEqual compares two columns, used in join conditions.
type ColumnsEqual struct {
	Left  string
	Right string
}

// Or matches when any child matches. An empty Or matches nothing.
type Or []Cond

// And matches when all children match. An empty And matches everything.
type And []Cond

func (Compare) isCond()      {}
func (Like) isCond()         {}
func (In) isCond()           {}
func (InSelect) isCond()     {}
func (Null) isCond()         {}
func (ColumnsEqual) isCond() {}
func (Or) isCond()           {}
func (And) isCond()          {}

// Eq returns col = v.
func Eq(col string, v any) Cond { return Compare{Col: col, Op: OpEq, Value: v} }

// Ne returns col <> v.
func Ne(col string, v any) Cond { return Compare{Col: col, Op: OpNe, Value: v} }

// Lt returns col < v.
func Lt(col string, v any) Cond { return Compare{Col: col, Op: OpLt, Value: v} }

// Lte returns col <= v.
func Lte(col string, v any) Cond { return Compare{Col: col, Op: OpLte, Value: v} }

// Gt returns col > v.
func Gt(col string, v any) Cond { return Compare{Col: col, Op: OpGt, Value: v} }

// Gte returns col >= v.
func Gte(col string, v any) Cond { return Compare{Col: col, Op: OpGte, Value: v} }

// Contains matches rows whose col contains text.
func Contains(col, text string) Cond { return Like{Col: col, Text: text} }

// NotContains matches rows whose col does not contain text.
func NotContains(col, text string) Cond { return Like{Col: col, Text: text, Negate: true} }

// HasPrefix matches rows whose col starts with text.
func HasPrefix(col, text string) Cond { return Like{Col: col, Text: text, Mode: LikePrefix} }

// IsNull matches rows where col is NULL.
func IsNull(col string) Cond { return Null{Col: col} }

// NotNull matches rows where col is not NULL.
func NotNull(col string) Cond { return Null{Col: col, Negate: true} }

// ColEq joins two columns.
func ColEq(left, right string) Cond { return ColumnsEqual{Left: left, Right: right} }

// AnyOf combines conditions with OR.
func AnyOf(conds ...Cond) Cond { return Or(conds) }

// AllOf combines conditions with AND.
func AllOf(conds ...Cond) Cond { return And(conds) }

// InList builds an In condition from a typed slice.
func InList[T any](col string, values []T) Cond {
	return In{Col: col, Values: toAny(values)}
}

// NotInList builds a negated In condition from a typed slice.
func NotInList[T any](col string, values []T) Cond {
	return In{Col: col, Values: toAny(values), Negate: true}
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
