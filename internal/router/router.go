// Package router subscribes event plugins to the platform event stream.
package router

import (
	"context"
	"sync"

	"github.com/keshon/dispatchbot/internal/plugin"

	"github.com/rs/zerolog"
)

// Listener receives one event payload.
type Listener func(ctx context.Context, payload any)

// Bus is the platform's event subscription API.
type Bus interface {
	// On delivers every occurrence of event to fn.
	On(event string, fn Listener)
	// Once delivers only the first occurrence of event to fn.
	Once(event string, fn Listener)
}

// Router subscribes event handlers to a bus.
type Router struct {
	log zerolog.Logger
}

// New returns a router that logs handler failures to log.
func New(log zerolog.Logger) *Router {
	return &Router{log: log.With().Str("component", "router").Logger()}
}

// Subscribe attaches h to bus and reports whether a subscription was created.
// Inactive handlers are skipped. A once handler runs at most one time even if the bus
// redelivers.
func (r *Router) Subscribe(h plugin.EventHandler, bus Bus) bool {
	meta := h.Metadata()
	if !meta.Active {
		r.log.Info().Str("event", meta.Event).Msg("Event skipped")
		return false
	}

	if meta.Once {
		var once sync.Once
		bus.Once(meta.Event, func(ctx context.Context, payload any) {
			once.Do(func() { r.deliver(ctx, meta.Event, h, payload) })
		})
	} else {
		bus.On(meta.Event, func(ctx context.Context, payload any) {
			r.deliver(ctx, meta.Event, h, payload)
		})
	}

	r.log.Debug().Str("event", meta.Event).Bool("once", meta.Once).Msg("Event subscribed")
	return true
}

// SubscribeAll subscribes every handler and returns the number of subscriptions made.
func (r *Router) SubscribeAll(handlers []plugin.EventHandler, bus Bus) int {
	n := 0
	for _, h := range handlers {
		if r.Subscribe(h, bus) {
			n++
		}
	}
	return n
}

func (r *Router) deliver(ctx context.Context, event string, h plugin.EventHandler, payload any) {
	if err := h.Handle(ctx, payload); err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("Event handler failed")
	}
}
