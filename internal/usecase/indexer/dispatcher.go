package indexer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wikindex/internal/domain/event"
	"github.com/kailas-cloud/wikindex/internal/logger"
	"github.com/kailas-cloud/wikindex/internal/metrics"
)

type named[H any] struct {
	name    string
	handler H
}

// Dispatcher routes mutation events to every registered handler.
// Handlers run synchronously, in registration order.
type Dispatcher struct {
	pages      []named[PageEventHandler]
	categories []named[CategoryEventHandler]
	users      []named[UserEventHandler]
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds h under name for every handler interface it implements.
func (d *Dispatcher) Register(name string, h any) *Dispatcher {
	if ph, ok := h.(PageEventHandler); ok {
		d.pages = append(d.pages, named[PageEventHandler]{name, ph})
	}
	if ch, ok := h.(CategoryEventHandler); ok {
		d.categories = append(d.categories, named[CategoryEventHandler]{name, ch})
	}
	if uh, ok := h.(UserEventHandler); ok {
		d.users = append(d.users, named[UserEventHandler]{name, uh})
	}
	return d
}

// Dispatch validates ev and applies it in every matching handler.
// A failing handler does not stop the others; errors are joined.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	var errs []error
	record := func(name string, outcome Outcome, err error) {
		if err != nil {
			outcome = "error"
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		metrics.IndexEventsTotal.WithLabelValues(name, string(ev.Kind), string(outcome)).Inc()
		logger.FromContext(ctx).Debug("index event handled",
			zap.String("updater", name),
			zap.String("kind", string(ev.Kind)),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
	}

	switch ev.Kind {
	case event.PageSaved, event.PageMoved, event.PageDeleted, event.PageRestored, event.PageImported:
		for _, h := range d.pages {
			outcome, err := applyPage(ctx, h.handler, ev)
			record(h.name, outcome, err)
		}
	case event.CategoryMembership:
		for _, h := range d.categories {
			outcome, err := h.handler.OnCategoryMembershipChanged(ctx, ev.Category)
			record(h.name, outcome, err)
		}
	case event.UserSaved, event.UserDeleted:
		for _, h := range d.users {
			var (
				outcome Outcome
				err     error
			)
			if ev.Kind == event.UserSaved {
				outcome, err = h.handler.OnUserSaved(ctx, ev.UserID)
			} else {
				outcome, err = h.handler.OnUserDeleted(ctx, ev.UserID)
			}
			record(h.name, outcome, err)
		}
	}

	return errors.Join(errs...)
}

func applyPage(ctx context.Context, h PageEventHandler, ev event.Event) (Outcome, error) {
	switch ev.Kind {
	case event.PageSaved:
		return h.OnPageSaved(ctx, ev.Target())
	case event.PageMoved:
		return h.OnPageMoved(ctx, ev.Source(), ev.Target())
	case event.PageDeleted:
		return h.OnPageDeleted(ctx, ev.Target())
	case event.PageRestored:
		return h.OnPageRestored(ctx, ev.Target(), ev.PageID)
	case event.PageImported:
		return h.OnPageImported(ctx, ev.Target())
	}
	return Ignored, nil
}
