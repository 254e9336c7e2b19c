package service

import (
	"context"
	"log/slog"

	eventDomain "github.com/allisson/identity/internal/event/domain"
)

// EventRepository persists dispatched events.
type EventRepository interface {
	Insert(ctx context.Context, event *eventDomain.Event) error
}

// Dispatcher drains the notifier buffer into the event repository. Persistence
// failures are logged and the event is discarded; delivery is best-effort.
type Dispatcher struct {
	notifier *ChannelNotifier
	repo     EventRepository
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher consuming from the notifier.
func NewDispatcher(notifier *ChannelNotifier, repo EventRepository, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		repo:     repo,
		logger:   logger,
	}
}

// Run consumes events until the context is canceled or the notifier is
// closed. On cancellation the already-buffered events are drained before
// returning.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("starting event dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.logger.Info("stopping event dispatcher")
			return ctx.Err()
		case event, ok := <-d.notifier.Events():
			if !ok {
				d.logger.Info("event channel closed, stopping dispatcher")
				return nil
			}
			d.persist(event)
		}
	}
}

// drain persists whatever is still buffered without waiting for new events.
func (d *Dispatcher) drain() {
	for {
		select {
		case event, ok := <-d.notifier.Events():
			if !ok {
				return
			}
			d.persist(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) persist(event *eventDomain.Event) {
	// Persistence uses its own context: the run context may already be
	// canceled during drain.
	if err := d.repo.Insert(context.Background(), event); err != nil {
		d.logger.Error("failed to persist event",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)),
			slog.Any("error", err),
		)
	}
}
