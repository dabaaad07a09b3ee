package undohandlers

import (
	"errors"
	"log/slog"
	"net/http"

	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	undodomain "github.com/Black-And-White-Club/stage-console/app/modules/undo/domain"
	"github.com/Black-And-White-Club/stage-console/app/shared/httpapi"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
)

// UndoHandlers implements Handlers.
type UndoHandlers struct {
	service  undoservice.Service
	logger   *slog.Logger
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

// NewUndoHandlers creates the handlers. allowedOrigins restricts websocket upgrades; an
// empty list accepts same-origin requests only.
func NewUndoHandlers(service undoservice.Service, logger *slog.Logger, tracer trace.Tracer, allowedOrigins []string) Handlers {
	return &UndoHandlers{
		service:  service,
		logger:   logger,
		tracer:   tracer,
		upgrader: newUpgrader(allowedOrigins),
	}
}

// PeekResponse describes the scope's pending undo action.
type PeekResponse struct {
	Entry                *undodomain.Entry `json:"entry"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
}

type navigateRequest struct {
	Route string `json:"route"`
}

type navigateResponse struct {
	Changed bool `json:"changed"`
}

func (h *UndoHandlers) HandlePeek(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := PeekResponse{Entry: h.service.Peek(scope)}
	if resp.Entry != nil {
		resp.RequiresConfirmation = h.service.Gate().RequiresConfirmation(*resp.Entry)
	}
	httpapi.WriteJSON(w, http.StatusOK, resp)
}

func (h *UndoHandlers) HandleExecute(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UndoHandlers.HandleExecute")
	defer span.End()

	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Execute(ctx, scope, httpapi.QueryConfirmer(r))
	if err != nil {
		var unsupported *undoservice.UnsupportedCommandError
		if errors.As(err, &unsupported) {
			httpapi.WriteInternal(ctx, w, h.logger, "undo command not supported", err)
			return
		}
		h.logger.WarnContext(ctx, "Undo failed; entry kept for retry",
			attr.ExtractCorrelationID(ctx),
			attr.Scope(scope.String()),
			attr.Error(err),
		)
		httpapi.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	if res.IsFailure() {
		failure := *res.Failure
		var required *undoservice.ConfirmationRequiredError
		switch {
		case errors.As(failure, &required):
			httpapi.WritePrompt(w, required.Prompt)
		case errors.Is(failure, undoservice.ErrNothingToUndo):
			httpapi.WriteError(w, http.StatusNotFound, failure.Error())
		case errors.Is(failure, undoservice.ErrUndoInFlight), errors.Is(failure, undoservice.ErrEntryReplaced):
			httpapi.WriteError(w, http.StatusConflict, failure.Error())
		default:
			httpapi.WriteError(w, http.StatusUnprocessableEntity, failure.Error())
		}
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, res.Success)
}

func (h *UndoHandlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.service.Clear(r.Context(), scope)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UndoHandlers) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req navigateRequest
	if err := httpapi.ReadJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Route == "" {
		httpapi.WriteError(w, http.StatusBadRequest, "route is required")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, navigateResponse{Changed: h.service.Navigate(r.Context(), scope, req.Route)})
}
