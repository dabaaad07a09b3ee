package eventbus

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInProcessBusRoundTrip(t *testing.T) {
	bus, err := New("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer bus.Close()
	assert.Equal(t, "gochannel", bus.Transport)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscriber.Subscribe(ctx, "console.test")
	require.NoError(t, err)

	ctx = attr.WithCorrelationID(ctx, "corr-1")
	require.NoError(t, PublishJSON(ctx, bus.Publisher, "console.test", map[string]string{"hello": "world"}))

	select {
	case msg := <-messages:
		var got map[string]string
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, "world", got["hello"])
		assert.Equal(t, "corr-1", middleware.MessageCorrelationID(msg))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}

func TestNewJSONMessageGeneratesCorrelationID(t *testing.T) {
	msg, err := NewJSONMessage(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.NotEmpty(t, middleware.MessageCorrelationID(msg))
}
