package redis

import "github.com/redis/rueidis"

// NewStreamForTest creates a Stream with an injected client (for unit tests with mocks).
func NewStreamForTest(c rueidis.Client, stream, group, consumer string) *Stream {
	return newStream(c, Config{Stream: stream, Group: group, Consumer: consumer})
}
