package auditrouter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandlers struct {
	mu      sync.Mutex
	actions int
	undo    int
	failFor int
	calls   int
	done    chan struct{}
}

func (h *recordingHandlers) HandleActionRecorded(*message.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.calls <= h.failFor {
		return errors.New("db down")
	}
	h.actions++
	h.done <- struct{}{}
	return nil
}

func (h *recordingHandlers) HandleUndoSlotChanged(*message.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo++
	h.done <- struct{}{}
	return nil
}

func (h *recordingHandlers) HandleListLogs(http.ResponseWriter, *http.Request) {}

func runRouter(t *testing.T, handlers *recordingHandlers) *gochannel.GoChannel {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wmLogger := watermill.NewSlogLogger(logger)
	bus := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	require.NoError(t, err)

	ar := NewAuditRouter(logger, router, bus, nil)
	require.NoError(t, ar.Configure(context.Background(), handlers))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = router.Run(ctx) }()
	<-router.Running()
	t.Cleanup(func() {
		cancel()
		_ = ar.Close()
		_ = bus.Close()
	})
	return bus
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}
}

func TestAuditRouter_RoutesBothTopics(t *testing.T) {
	handlers := &recordingHandlers{done: make(chan struct{}, 2)}
	bus := runRouter(t, handlers)

	require.NoError(t, bus.Publish(sharedevents.ActionRecordedV1, message.NewMessage(watermill.NewUUID(), []byte(`{}`))))
	waitFor(t, handlers.done)
	require.NoError(t, bus.Publish(sharedevents.UndoSlotChangedV1, message.NewMessage(watermill.NewUUID(), []byte(`{}`))))
	waitFor(t, handlers.done)

	handlers.mu.Lock()
	defer handlers.mu.Unlock()
	assert.Equal(t, 1, handlers.actions)
	assert.Equal(t, 1, handlers.undo)
}

func TestAuditRouter_RetriesTransientFailures(t *testing.T) {
	handlers := &recordingHandlers{failFor: 2, done: make(chan struct{}, 1)}
	bus := runRouter(t, handlers)

	require.NoError(t, bus.Publish(sharedevents.ActionRecordedV1, message.NewMessage(watermill.NewUUID(), []byte(`{}`))))
	waitFor(t, handlers.done)

	handlers.mu.Lock()
	defer handlers.mu.Unlock()
	assert.Equal(t, 3, handlers.calls)
	assert.Equal(t, 1, handlers.actions)
}
