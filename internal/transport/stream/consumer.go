// Package stream feeds mutation events from a Redis stream into the index updaters.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/wikindex/internal/db/redis"
	"github.com/kailas-cloud/wikindex/internal/domain"
	"github.com/kailas-cloud/wikindex/internal/domain/event"
	"github.com/kailas-cloud/wikindex/internal/metrics"
)

const (
	defaultBatchSize  = 64
	defaultBlock      = 5 * time.Second
	defaultRetryDelay = time.Second
)

// Source is a consumer-group view of the event stream.
type Source interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context, count int64, block time.Duration) ([]dbRedis.Message, error)
	ReadPending(ctx context.Context, after string, count int64) ([]dbRedis.Message, error)
	Ack(ctx context.Context, ids ...string) error
}

// EventDispatcher applies mutation events to the index tables.
type EventDispatcher interface {
	Dispatch(ctx context.Context, ev event.Event) error
}

// Options tune the read loop. Zero values use the defaults.
type Options struct {
	BatchSize  int64
	Block      time.Duration
	RetryDelay time.Duration
}

// Consumer reads events, dispatches each one synchronously and acknowledges
// the entries that were applied. Entries whose dispatch failed stay pending
// in the consumer group and are redelivered from the pending list at startup
// and once per RetryDelay while any remain.
type Consumer struct {
	src    Source
	events EventDispatcher
	opts   Options
	logger *zap.Logger
}

// NewConsumer creates a stream consumer.
func NewConsumer(src Source, events EventDispatcher, opts Options, logger *zap.Logger) *Consumer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Block <= 0 {
		opts.Block = defaultBlock
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	return &Consumer{src: src, events: events, opts: opts, logger: logger}
}

// Run consumes until ctx is canceled. Read errors are logged and retried.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.src.EnsureGroup(ctx); err != nil {
		return err
	}
	// zero means the pending list is known to be empty
	var retryAt time.Time
	drain := true
	for {
		if ctx.Err() != nil {
			return nil
		}
		if drain || (!retryAt.IsZero() && !time.Now().Before(retryAt)) {
			left, err := c.drainPending(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Warn("stream pending read failed", zap.Error(err))
				if !c.wait(ctx) {
					return nil
				}
				continue
			}
			drain, retryAt = false, time.Time{}
			if left > 0 {
				retryAt = time.Now().Add(c.opts.RetryDelay)
			}
		}

		block := c.opts.Block
		if !retryAt.IsZero() {
			block = max(min(block, time.Until(retryAt)), time.Millisecond)
		}
		msgs, err := c.src.Read(ctx, c.opts.BatchSize, block)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Warn("stream read failed", zap.Error(err))
			if !c.wait(ctx) {
				return nil
			}
			continue
		}
		if len(msgs) == 0 {
			continue
		}
		if acked := c.Handle(ctx, msgs); acked < len(msgs) && retryAt.IsZero() {
			retryAt = time.Now().Add(c.opts.RetryDelay)
		}
	}
}

// drainPending walks this consumer's pending list once and redelivers every
// entry on it. It returns the number of entries still pending afterwards.
func (c *Consumer) drainPending(ctx context.Context) (int, error) {
	left := 0
	after := "0"
	for {
		msgs, err := c.src.ReadPending(ctx, after, c.opts.BatchSize)
		if err != nil {
			return left, err
		}
		if len(msgs) == 0 {
			if left > 0 {
				c.logger.Info("stream entries still pending", zap.Int("entries", left))
			}
			return left, nil
		}
		left += len(msgs) - c.Handle(ctx, msgs)
		after = msgs[len(msgs)-1].ID
	}
}

func (c *Consumer) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.opts.RetryDelay):
		return true
	}
}

// Handle dispatches a batch and acknowledges applied and unprocessable entries.
// It returns the number of acknowledged entries.
func (c *Consumer) Handle(ctx context.Context, msgs []dbRedis.Message) int {
	ack := make([]string, 0, len(msgs))
	for _, m := range msgs {
		log := c.logger.With(zap.String("entry_id", m.ID))

		var ev event.Event
		if err := json.Unmarshal(m.Payload, &ev); err != nil {
			log.Error("dropping undecodable stream entry", zap.Error(err))
			metrics.StreamMessagesTotal.WithLabelValues("rejected").Inc()
			ack = append(ack, m.ID)
			continue
		}

		err := c.events.Dispatch(ctx, ev)
		switch {
		case err == nil:
			metrics.StreamMessagesTotal.WithLabelValues("acked").Inc()
			ack = append(ack, m.ID)
		case errors.Is(err, domain.ErrUnknownEvent), errors.Is(err, domain.ErrInvalidRequest):
			// malformed events are acknowledged so they are not redelivered
			log.Error("dropping invalid event", zap.String("kind", string(ev.Kind)), zap.Error(err))
			metrics.StreamMessagesTotal.WithLabelValues("rejected").Inc()
			ack = append(ack, m.ID)
		default:
			log.Warn("event dispatch failed, left pending", zap.String("kind", string(ev.Kind)), zap.Error(err))
			metrics.StreamMessagesTotal.WithLabelValues("failed").Inc()
		}
	}

	if err := c.src.Ack(ctx, ack...); err != nil {
		c.logger.Warn("stream ack failed", zap.Int("entries", len(ack)), zap.Error(err))
		return 0
	}
	return len(ack)
}
