package audithandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	auditservice "github.com/Black-And-White-Club/stage-console/app/modules/audit/application"
	sharedevents "github.com/Black-And-White-Club/stage-console/app/shared/events"
	"github.com/Black-And-White-Club/stage-console/app/shared/httpapi"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

const defaultLimit = 50

// AuditHandlers implements Handlers.
type AuditHandlers struct {
	service auditservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewAuditHandlers(service auditservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &AuditHandlers{service: service, logger: logger, tracer: tracer}
}

// messageContext carries the message's correlation ID into the service call.
func messageContext(msg *message.Message) (context.Context, string) {
	correlationID := attr.MessageCorrelationID(msg.Metadata)
	return attr.WithCorrelationID(msg.Context(), correlationID), correlationID
}

// HandleActionRecorded stores one action. Undecodable payloads are acknowledged and
// dropped; storage errors are returned so the router retries them.
func (h *AuditHandlers) HandleActionRecorded(msg *message.Message) error {
	ctx, correlationID := messageContext(msg)
	ctx, span := h.tracer.Start(ctx, "AuditHandlers.HandleActionRecorded")
	defer span.End()

	var payload sharedevents.ActionRecordedPayloadV1
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.WarnContext(ctx, "Dropping malformed action event",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return nil
	}

	res, err := h.service.RecordAction(ctx, payload, correlationID)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	if res.IsFailure() {
		h.logger.WarnContext(ctx, "Action event rejected",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", msg.UUID),
			attr.Error(*res.Failure),
		)
	}
	return nil
}

func (h *AuditHandlers) HandleUndoSlotChanged(msg *message.Message) error {
	ctx, correlationID := messageContext(msg)
	ctx, span := h.tracer.Start(ctx, "AuditHandlers.HandleUndoSlotChanged")
	defer span.End()

	var payload sharedevents.UndoSlotChangedPayloadV1
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.WarnContext(ctx, "Dropping malformed undo event",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return nil
	}

	res, err := h.service.RecordUndoChange(ctx, payload, correlationID)
	if err != nil {
		return fmt.Errorf("failed to record undo change: %w", err)
	}
	if res.IsFailure() {
		h.logger.WarnContext(ctx, "Undo event rejected",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", msg.UUID),
			attr.Error(*res.Failure),
		)
	}
	return nil
}

func (h *AuditHandlers) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := httpapi.Limit(r, defaultLimit, auditservice.MaxLimit)

	res, err := h.service.ListRecent(r.Context(), scope, limit)
	if err != nil {
		httpapi.WriteInternal(r.Context(), w, h.logger, "failed to list logs", err)
		return
	}
	if res.IsFailure() {
		httpapi.WriteError(w, http.StatusBadRequest, (*res.Failure).Error())
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, res.Success)
}

// Mount registers the log routes on an event-scoped router.
func Mount(r chi.Router, h Handlers) {
	r.Get("/logs", h.HandleListLogs)
}
