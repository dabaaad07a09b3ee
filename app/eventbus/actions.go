package eventbus

import (
	"context"
	"log/slog"

	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ActionPublisher publishes operator actions to ActionRecordedV1.
type ActionPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
}

func NewActionPublisher(publisher message.Publisher, logger *slog.Logger) *ActionPublisher {
	return &ActionPublisher{publisher: publisher, logger: logger}
}

// PublishAction sends payload. Failures are logged and returned; callers treat them as
// non-fatal because the action itself already happened.
func (p *ActionPublisher) PublishAction(ctx context.Context, payload sharedevents.ActionRecordedPayloadV1) error {
	if err := PublishJSON(ctx, p.publisher, sharedevents.ActionRecordedV1, payload); err != nil {
		p.logger.WarnContext(ctx, "Failed to publish console action",
			attr.ExtractCorrelationID(ctx),
			attr.Scope(payload.Scope.String()),
			attr.String("action", payload.Action),
			attr.Error(err),
		)
		return err
	}
	return nil
}
