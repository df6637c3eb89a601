// Package feed is the in-process broadcast channel for derived order events.
// Every subscriber receives every event published after its subscription
// began; there is no replay.
package feed

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xenking/courier-market/internal/domain/order"
)

// DefaultBuffer is the per-subscriber channel capacity used when the
// configured buffer size is not positive.
const DefaultBuffer = 64

// Hub fans events out to any number of live subscribers. Publish never
// blocks: when a subscriber's buffer is full the oldest buffered event for
// that subscriber is dropped to make room. Slow subscribers only ever lose
// their own events.
type Hub struct {
	lg     *zap.Logger
	buffer int

	mu   sync.RWMutex
	subs map[*subscriber]struct{}

	dropped atomic.Int64
}

type subscriber struct {
	ch chan order.Event
}

// New creates a Hub with the given per-subscriber buffer size.
func New(lg *zap.Logger, buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		lg:     lg,
		buffer: buffer,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Publish delivers ev to every current subscriber. Safe for any number of
// concurrent publishers; per-subscriber overflow is isolated and counted.
func (h *Hub) Publish(ev order.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.ch <- ev:
			continue
		default:
		}

		// Buffer full: drop the oldest event for this subscriber, then
		// retry once. Another publisher may have freed or taken the slot
		// in between; losing that race just means the drop counts against
		// the current event instead.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- ev:
		default:
		}

		n := h.dropped.Add(1)
		if n%100 == 1 {
			h.lg.Warn("Slow feed subscriber dropping events",
				zap.Int64("total_dropped", n))
		}
	}
}

// Subscribe registers a new listener and returns its event channel. The
// channel is closed and the slot released as soon as ctx is cancelled.
func (h *Hub) Subscribe(ctx context.Context) <-chan order.Event {
	sub := &subscriber{ch: make(chan order.Event, h.buffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		// Publishers hold the read lock while sending, so after the
		// delete above no send on sub.ch can be in flight.
		close(sub.ch)
	}()

	return sub.ch
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped returns the total number of events discarded due to slow
// subscribers since the hub was created.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
