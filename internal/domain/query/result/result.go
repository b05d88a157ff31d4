package result

// Set is an ordered page of records plus the total match count, which is
// independent of the pagination window.
type Set[T any] struct {
	records []T
	total   int
	buckets map[string]map[string]string
}

// New creates a result set.
func New[T any](records []T, total int) Set[T] {
	if records == nil {
		records = []T{}
	}
	return Set[T]{records: records, total: total}
}

// WithBuckets returns a copy carrying facet buckets (e.g. user groups).
func (s Set[T]) WithBuckets(name string, bucket map[string]string) Set[T] {
	out := make(map[string]map[string]string, len(s.buckets)+1)
	for k, v := range s.buckets {
		out[k] = v
	}
	out[name] = bucket
	s.buckets = out
	return s
}

// Records returns the page of records.
func (s Set[T]) Records() []T { return s.records }

// Total returns the number of matches ignoring pagination.
func (s Set[T]) Total() int { return s.total }

// Len returns the number of records on this page.
func (s Set[T]) Len() int { return len(s.records) }

// Buckets returns facet buckets keyed by name.
func (s Set[T]) Buckets() map[string]map[string]string { return s.buckets }

// Map applies fn to every record, returning a new set with the same total.
func Map[T, U any](s Set[T], fn func(T) U) Set[U] {
	out := make([]U, len(s.records))
	for i, r := range s.records {
		out[i] = fn(r)
	}
	return Set[U]{records: out, total: s.total, buckets: s.buckets}
}
