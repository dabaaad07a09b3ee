// Package eventbus builds the watermill publisher/subscriber pair the console publishes
// its action and undo events on.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus is a publisher and subscriber sharing one transport.
type EventBus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Transport  string
	logger     *slog.Logger
}

// New connects to NATS when natsURL is set and falls back to an in-process gochannel
// otherwise.
func New(natsURL string, logger *slog.Logger) (*EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if natsURL == "" {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wmLogger)
		logger.Info("Event bus using in-process channel")
		return &EventBus{Publisher: ch, Subscriber: ch, Transport: "gochannel", logger: logger}, nil
	}

	marshaler := &nats.NATSMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}
	// Console events are fire-and-forget notifications; core NATS is enough.
	jsConfig := nats.JetStreamConfig{Disabled: true}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         natsURL,
			NatsOptions: options,
			Marshaler:   marshaler,
			JetStream:   jsConfig,
		},
		wmLogger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:            natsURL,
			CloseTimeout:   30 * time.Second,
			AckWaitTimeout: 30 * time.Second,
			NatsOptions:    options,
			Unmarshaler:    marshaler,
			JetStream:      jsConfig,
		},
		wmLogger,
	)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.Info("Event bus connected to NATS", attr.String("url", natsURL))
	return &EventBus{Publisher: publisher, Subscriber: subscriber, Transport: "nats", logger: logger}, nil
}

// Close closes both halves. With gochannel they are the same object.
func (b *EventBus) Close() error {
	if b.Transport == "gochannel" {
		return b.Publisher.Close()
	}
	return errors.Join(b.Publisher.Close(), b.Subscriber.Close())
}

// NewJSONMessage encodes payload and carries the context's correlation ID.
func NewJSONMessage(ctx context.Context, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	correlationID, _ := ctx.Value(attr.CorrelationIDKey).(string)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	msg.SetContext(ctx)
	return msg, nil
}

// PublishJSON publishes payload to topic.
func PublishJSON(ctx context.Context, pub message.Publisher, topic string, payload any) error {
	msg, err := NewJSONMessage(ctx, payload)
	if err != nil {
		return err
	}
	if err := pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}
