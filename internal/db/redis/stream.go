package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/wikindex/internal/db"
)

// PayloadField is the stream entry field holding the JSON-encoded event.
const PayloadField = "event"

// Message is one stream entry.
type Message struct {
	ID      string
	Payload []byte
}

// EnsureGroup creates the consumer group (and the stream) if missing.
func (s *Stream) EnsureGroup(ctx context.Context) error {
	cmd := s.client.B().XgroupCreate().Key(s.stream).Group(s.group).Id("0").Mkstream().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "busygroup") {
			return nil
		}
		return &db.Error{Op: db.OpXGroup, Err: err}
	}
	return nil
}

// Read fetches up to count new entries for this consumer, blocking up to block.
// A timeout with no entries returns an empty slice.
func (s *Stream) Read(ctx context.Context, count int64, block time.Duration) ([]Message, error) {
	cmd := s.client.B().Xreadgroup().
		Group(s.group, s.consumer).
		Count(count).
		Block(block.Milliseconds()).
		Streams().Key(s.stream).Id(">").
		Build()
	return s.read(ctx, cmd)
}

// ReadPending fetches up to count entries that were delivered to this consumer
// but never acknowledged, starting after the entry id after ("0" for the
// beginning of the pending list). It never blocks; an empty slice means the
// pending list is exhausted.
func (s *Stream) ReadPending(ctx context.Context, after string, count int64) ([]Message, error) {
	if after == "" {
		after = "0"
	}
	cmd := s.client.B().Xreadgroup().
		Group(s.group, s.consumer).
		Count(count).
		Streams().Key(s.stream).Id(after).
		Build()
	return s.read(ctx, cmd)
}

func (s *Stream) read(ctx context.Context, cmd rueidis.Completed) ([]Message, error) {
	res, err := s.client.Do(ctx, cmd).AsXRead()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpXReadGroup, Err: err}
	}
	return decodeEntries(res[s.stream]), nil
}

// Ack acknowledges processed entries.
func (s *Stream) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	cmd := s.client.B().Xack().Key(s.stream).Group(s.group).Id(ids...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpXAck, Err: err}
	}
	return nil
}

// Publish appends an encoded event to the stream and returns its entry id.
func (s *Stream) Publish(ctx context.Context, payload []byte) (string, error) {
	cmd := s.client.B().Xadd().Key(s.stream).Id("*").FieldValue().FieldValue(PayloadField, string(payload)).Build()
	id, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		return "", &db.Error{Op: db.OpXAdd, Err: err}
	}
	return id, nil
}

// decodeEntries keeps the payload field of each entry. Entries without one
// are returned with an empty payload so they can still be acknowledged.
func decodeEntries(entries []rueidis.XRangeEntry) []Message {
	out := make([]Message, 0, len(entries))
	for _, e := range entries {
		out = append(out, Message{ID: e.ID, Payload: []byte(e.FieldValues[PayloadField])})
	}
	return out
}
