package eventhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	eventservice "github.com/Black-And-White-Club/stage-console/app/modules/event/application"
	eventdomain "github.com/Black-And-White-Club/stage-console/app/modules/event/domain"
	"github.com/Black-And-White-Club/stage-console/app/shared/httpapi"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// EventHandlers implements Handlers.
type EventHandlers struct {
	service eventservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewEventHandlers(service eventservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &EventHandlers{service: service, logger: logger, tracer: tracer}
}

type addParticipantRequest struct {
	Name string `json:"name"`
}

func write[S any](h *EventHandlers, w http.ResponseWriter, r *http.Request, status int, res results.OperationResult[S, error], err error) {
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Event operation failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.Error(err),
		)
		httpapi.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	if res.IsFailure() {
		failure := *res.Failure
		status := http.StatusUnprocessableEntity
		if errors.Is(failure, eventservice.ErrParticipantNotFound) {
			status = http.StatusNotFound
		}
		httpapi.WriteError(w, status, failure.Error())
		return
	}
	httpapi.WriteJSON(w, status, res.Success)
}

func (h *EventHandlers) HandleGetFlags(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.GetFlags(r.Context(), scope)
	write(h, w, r, http.StatusOK, res, err)
}

func (h *EventHandlers) HandleSetFlags(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleSetFlags")
	defer span.End()

	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var flags eventdomain.Flags
	if err := httpapi.ReadJSON(w, r, &flags); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.SetFlags(ctx, scope, flags)
	write(h, w, r, http.StatusOK, res, err)
}

func (h *EventHandlers) HandleListParticipants(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.ListParticipants(r.Context(), scope)
	write(h, w, r, http.StatusOK, res, err)
}

func (h *EventHandlers) HandleAddParticipant(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req addParticipantRequest
	if err := httpapi.ReadJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.AddParticipant(r.Context(), scope, req.Name)
	write(h, w, r, http.StatusCreated, res, err)
}

func (h *EventHandlers) HandleSetParticipantStatuses(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "EventHandlers.HandleSetParticipantStatuses")
	defer span.End()

	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var changes []eventdomain.StatusChange
	if err := httpapi.ReadJSON(w, r, &changes); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.SetParticipantStatuses(ctx, scope, changes)
	write(h, w, r, http.StatusOK, res, err)
}

// Mount registers the event routes on a router already scoped to /api/events/{scope}.
func Mount(r chi.Router, h Handlers) {
	r.Get("/flags", h.HandleGetFlags)
	r.Put("/flags", h.HandleSetFlags)
	r.Get("/participants", h.HandleListParticipants)
	r.Post("/participants", h.HandleAddParticipant)
	r.Put("/participants/status", h.HandleSetParticipantStatuses)
}
