// Package service implements event fan-out: a bounded non-blocking notifier
// fed by the token lifecycle and a dispatcher draining it into persistence.
package service

import (
	"context"
	"log/slog"
	"sync"

	eventDomain "github.com/allisson/identity/internal/event/domain"
)

// ChannelNotifier buffers events in a bounded channel. Notify never blocks:
// when the buffer is full the event is dropped and counted, keeping the token
// lifecycle latency independent of event consumers.
type ChannelNotifier struct {
	events  chan *eventDomain.Event
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
	dropped int64
}

// NewChannelNotifier creates a notifier with the given buffer size.
func NewChannelNotifier(bufferSize int, logger *slog.Logger) *ChannelNotifier {
	return &ChannelNotifier{
		events: make(chan *eventDomain.Event, bufferSize),
		logger: logger,
	}
}

// Notify enqueues the event or drops it when the buffer is full.
func (c *ChannelNotifier) Notify(ctx context.Context, event *eventDomain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.events <- event:
	default:
		c.dropped++
		c.logger.Warn("event buffer full, dropping event",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)),
			slog.Int64("dropped_total", c.dropped),
		)
	}
}

// Events returns the receive side of the buffer for the dispatcher.
func (c *ChannelNotifier) Events() <-chan *eventDomain.Event {
	return c.events
}

// Dropped returns how many events were discarded due to a full buffer.
func (c *ChannelNotifier) Dropped() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Close stops accepting events and closes the channel so the dispatcher can
// drain the remainder and exit.
func (c *ChannelNotifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}
