package auditrouter

import (
	"context"
	"log/slog"
	"time"

	audithandlers "github.com/Black-And-White-Club/stage-console/app/modules/audit/infrastructure/handlers"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// AuditRouter registers the activity log consumers on a watermill router.
type AuditRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewAuditRouter creates the router wrapper. A nil registry disables router metrics.
func NewAuditRouter(logger *slog.Logger, router *message.Router, subscriber message.Subscriber, registry prometheus.Registerer) *AuditRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil {
		b := metrics.NewPrometheusMetricsBuilder(registry, "console", "audit")
		metricsBuilder = &b
	}
	return &AuditRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		metricsBuilder: metricsBuilder,
	}
}

// Configure adds middleware and the audit consumers.
func (r *AuditRouter) Configure(_ context.Context, handlers audithandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	retry := middleware.Retry{
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		Logger:          watermill.NewSlogLogger(r.logger),
	}
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		r.dropAfterRetries,
		retry.Middleware,
		middleware.Recoverer,
	)

	r.logger.Info("Registering audit module handlers",
		attr.String("action_topic", sharedevents.ActionRecordedV1),
		attr.String("undo_topic", sharedevents.UndoSlotChangedV1),
	)

	r.Router.AddNoPublisherHandler(
		"audit."+sharedevents.ActionRecordedV1,
		sharedevents.ActionRecordedV1,
		r.subscriber,
		handlers.HandleActionRecorded,
	)
	r.Router.AddNoPublisherHandler(
		"audit."+sharedevents.UndoSlotChangedV1,
		sharedevents.UndoSlotChangedV1,
		r.subscriber,
		handlers.HandleUndoSlotChanged,
	)
	return nil
}

// dropAfterRetries acks a message whose handler still fails after the retries. The
// activity log is best effort; a stuck message must not block the topic.
func (r *AuditRouter) dropAfterRetries(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		produced, err := h(msg)
		if err != nil {
			r.logger.ErrorContext(msg.Context(), "Dropping audit message after retries",
				attr.String("message_id", msg.UUID),
				attr.String("correlation_id", attr.MessageCorrelationID(msg.Metadata)),
				attr.Error(err),
			)
			return nil, nil
		}
		return produced, nil
	}
}

// Close shuts down the router.
func (r *AuditRouter) Close() error {
	return r.Router.Close()
}
