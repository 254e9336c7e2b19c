package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/identity/internal/document"
	eventDomain "github.com/allisson/identity/internal/event/domain"
)

// recordingRepository collects inserted events for assertions.
type recordingRepository struct {
	mu     sync.Mutex
	events []*eventDomain.Event
	err    error
}

func (r *recordingRepository) Insert(ctx context.Context, event *eventDomain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingRepository) collected() []*eventDomain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*eventDomain.Event(nil), r.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEvent(id string) *eventDomain.Event {
	payload := document.New()
	payload.Set("token", "raw-token")
	return &eventDomain.Event{
		ID:           id,
		Type:         eventDomain.EventTokenGenerated,
		UserID:       "user-1",
		MembershipID: "membership-1",
		Payload:      payload,
		EventTime:    time.Now().UTC(),
	}
}

func TestChannelNotifier_NonBlockingWhenFull(t *testing.T) {
	notifier := NewChannelNotifier(2, discardLogger())
	ctx := context.Background()

	notifier.Notify(ctx, testEvent("e1"))
	notifier.Notify(ctx, testEvent("e2"))

	// Buffer is full; this must return immediately and drop.
	done := make(chan struct{})
	go func() {
		notifier.Notify(ctx, testEvent("e3"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full buffer")
	}

	assert.Equal(t, int64(1), notifier.Dropped())
	notifier.Close()
}

func TestChannelNotifier_NotifyAfterCloseIsNoOp(t *testing.T) {
	notifier := NewChannelNotifier(1, discardLogger())
	notifier.Close()

	// Must not panic on the closed channel.
	notifier.Notify(context.Background(), testEvent("e1"))
	notifier.Close()
}

func TestDispatcher_PersistsBufferedEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	notifier := NewChannelNotifier(16, discardLogger())
	repo := &recordingRepository{}
	dispatcher := NewDispatcher(notifier, repo, discardLogger())

	ctx := context.Background()
	notifier.Notify(ctx, testEvent("e1"))
	notifier.Notify(ctx, testEvent("e2"))
	notifier.Notify(ctx, testEvent("e3"))
	notifier.Close()

	err := dispatcher.Run(ctx)
	require.NoError(t, err)

	events := repo.collected()
	require.Len(t, events, 3)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "e3", events[2].ID)
}

func TestDispatcher_DrainsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	notifier := NewChannelNotifier(16, discardLogger())
	repo := &recordingRepository{}
	dispatcher := NewDispatcher(notifier, repo, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier.Notify(context.Background(), testEvent("e1"))
	notifier.Notify(context.Background(), testEvent("e2"))

	err := dispatcher.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, repo.collected(), 2)

	notifier.Close()
}

func TestDispatcher_PersistFailureDoesNotStopLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	notifier := NewChannelNotifier(16, discardLogger())
	repo := &recordingRepository{err: assert.AnError}
	dispatcher := NewDispatcher(notifier, repo, discardLogger())

	ctx := context.Background()
	notifier.Notify(ctx, testEvent("e1"))
	notifier.Notify(ctx, testEvent("e2"))
	notifier.Close()

	err := dispatcher.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, repo.collected())
}
