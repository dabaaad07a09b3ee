// Package undoevents mirrors undo register changes onto the message bus.
package undoevents

import (
	"context"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/stage-console/app/eventbus"
	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/ThreeDotsLabs/watermill/message"
)

const defaultBuffer = 256

// Bridge is a register listener that publishes every change to UndoSlotChangedV1.
// Listen only enqueues; Run does the publishing so the register is never held up by
// the transport.
type Bridge struct {
	publisher message.Publisher
	logger    *slog.Logger
	queue     chan sharedevents.UndoSlotChangedPayloadV1
	now       func() time.Time
}

func NewBridge(publisher message.Publisher, logger *slog.Logger, buffer int) *Bridge {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bridge{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan sharedevents.UndoSlotChangedPayloadV1, buffer),
		now:       time.Now,
	}
}

// Listen is an undoservice.Listener.
func (b *Bridge) Listen(c undoservice.Change) {
	if c.Reason == undoservice.ReasonInitial {
		return
	}
	payload := Payload(c, b.now())
	select {
	case b.queue <- payload:
	default:
		b.logger.Warn("Undo event dropped; bridge queue full",
			attr.Scope(c.Scope.String()),
			attr.String("reason", string(c.Reason)),
		)
	}
}

// Run publishes queued changes until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case payload := <-b.queue:
			if err := eventbus.PublishJSON(ctx, b.publisher, sharedevents.UndoSlotChangedV1, payload); err != nil {
				b.logger.ErrorContext(ctx, "Failed to publish undo event",
					attr.Scope(payload.Scope.String()),
					attr.Error(err),
				)
			}
		}
	}
}

// Payload converts a register change into its bus form. For applied changes the entry
// described is the one that was executed.
func Payload(c undoservice.Change, at time.Time) sharedevents.UndoSlotChangedPayloadV1 {
	p := sharedevents.UndoSlotChangedPayloadV1{
		Scope:      c.Scope,
		Reason:     string(c.Reason),
		OccurredAt: at.UTC(),
	}
	e := c.Entry
	if c.Reason == undoservice.ReasonApplied {
		e = c.Applied
	}
	if e != nil {
		p.EntryID = e.ID.String()
		p.Kind = string(e.Kind)
		p.Label = e.Label
		if e.Command != nil {
			p.Command = string(e.Command.Type())
		}
	}
	return p
}
