package populate

// cursor pages through a source ordered by a string key.
type cursor[T any] struct {
	fetch func(after string) ([]T, error)
	key   func(T) string
	buf   []T
	after string
	done  bool
}

func newCursor[T any](fetch func(after string) ([]T, error), key func(T) string) *cursor[T] {
	return &cursor[T]{fetch: fetch, key: key}
}

// peek returns the current item without consuming it. ok is false once exhausted.
func (c *cursor[T]) peek() (item T, ok bool, err error) {
	if len(c.buf) == 0 && !c.done {
		batch, err := c.fetch(c.after)
		if err != nil {
			return item, false, err
		}
		if len(batch) == 0 {
			c.done = true
		} else {
			c.buf = batch
			c.after = c.key(batch[len(batch)-1])
		}
	}
	if len(c.buf) == 0 {
		return item, false, nil
	}
	return c.buf[0], true, nil
}

func (c *cursor[T]) advance() {
	if len(c.buf) > 0 {
		c.buf = c.buf[1:]
	}
}
