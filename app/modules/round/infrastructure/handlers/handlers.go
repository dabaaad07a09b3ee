package roundhandlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	roundservice "github.com/Black-And-White-Club/stage-console/app/modules/round/application"
	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	undoservice "github.com/Black-And-White-Club/stage-console/app/modules/undo/application"
	"github.com/Black-And-White-Club/stage-console/app/shared/httpapi"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/attr"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// RoundHandlers implements Handlers.
type RoundHandlers struct {
	service roundservice.Service
	gate    *undoservice.Gate
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRoundHandlers creates the handlers. gate asks before irreversible actions.
func NewRoundHandlers(service roundservice.Service, gate *undoservice.Gate, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &RoundHandlers{
		service: service,
		gate:    gate,
		logger:  logger,
		tracer:  tracer,
	}
}

type reorderRequest struct {
	Direction roundservice.Direction `json:"direction"`
}

// failureStatus maps a domain failure to its HTTP status.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, rounddomain.ErrRoundNotFound), errors.Is(err, roundservice.ErrNoDraft):
		return http.StatusNotFound
	case errors.Is(err, rounddomain.ErrIllegalTransition),
		errors.Is(err, roundservice.ErrRoundFrozen),
		errors.Is(err, roundservice.ErrNoNeighbor):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

// respond writes a service result. Infrastructure errors become 502; the backend is the
// only thing behind the service that can fail that way.
func respond[S any](h *RoundHandlers, ctx context.Context, w http.ResponseWriter, status int, res results.OperationResult[S, error], err error) {
	if err != nil {
		h.logger.ErrorContext(ctx, "Round operation failed",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		httpapi.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	if res.IsFailure() {
		failure := *res.Failure
		httpapi.WriteError(w, failureStatus(failure), failure.Error())
		return
	}
	httpapi.WriteJSON(w, status, res.Success)
}

// target reads the scope and round ID. It writes the 400 itself and reports false when
// either is missing.
func target(w http.ResponseWriter, r *http.Request) (sharedtypes.Scope, sharedtypes.RoundID, bool) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return "", 0, false
	}
	roundID, err := httpapi.RoundID(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return "", 0, false
	}
	return scope, roundID, true
}

func (h *RoundHandlers) HandleListRounds(w http.ResponseWriter, r *http.Request) {
	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.ListRounds(r.Context(), scope)
	respond(h, r.Context(), w, http.StatusOK, res, err)
}

func (h *RoundHandlers) HandleGetRound(w http.ResponseWriter, r *http.Request) {
	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	res, err := h.service.GetRound(r.Context(), scope, roundID)
	respond(h, r.Context(), w, http.StatusOK, res, err)
}

func (h *RoundHandlers) HandleCreateRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleCreateRound")
	defer span.End()

	scope, err := httpapi.Scope(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req rounddomain.NewRound
	if err := httpapi.ReadJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.CreateRound(ctx, scope, req)
	respond(h, ctx, w, http.StatusCreated, res, err)
}

func (h *RoundHandlers) HandleEditRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleEditRound")
	defer span.End()

	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	var patch rounddomain.Patch
	if err := httpapi.ReadJSON(w, r, &patch); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.EditRound(ctx, scope, roundID, patch)
	respond(h, ctx, w, http.StatusOK, res, err)
}

// HandleDeleteRound cannot be undone, so it answers 428 with a warning until the request
// carries ?confirm=true.
func (h *RoundHandlers) HandleDeleteRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleDeleteRound")
	defer span.End()

	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	prompt := undoservice.Prompt{
		Title:   fmt.Sprintf("Delete round %d?", roundID),
		Message: "Deleting a round cannot be undone.",
	}
	var (
		res     roundservice.RoundResult
		callErr error
	)
	proceeded, err := h.gate.WarnNonUndoable(ctx, httpapi.QueryConfirmer(r), prompt.Title, prompt.Message, func(ctx context.Context) error {
		res, callErr = h.service.DeleteRound(ctx, scope, roundID)
		return callErr
	})
	if !proceeded {
		if err != nil {
			httpapi.WriteInternal(ctx, w, h.logger, "confirmation failed", err)
			return
		}
		httpapi.WritePrompt(w, prompt)
		return
	}
	respond(h, ctx, w, http.StatusOK, res, callErr)
}

// HandleTransition serves the reversible state events named by {event}.
func (h *RoundHandlers) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleTransition")
	defer span.End()

	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}

	var call func(context.Context, sharedtypes.Scope, sharedtypes.RoundID) (roundservice.RoundResult, error)
	switch rounddomain.Event(chi.URLParam(r, "event")) {
	case rounddomain.EventPublish:
		call = h.service.Publish
	case rounddomain.EventUnpublish:
		call = h.service.Unpublish
	case rounddomain.EventActivate:
		call = h.service.Activate
	case rounddomain.EventFreeze:
		call = h.service.Freeze
	case rounddomain.EventReveal:
		call = h.service.Reveal
	case rounddomain.EventUnreveal:
		call = h.service.Unreveal
	default:
		httpapi.WriteError(w, http.StatusNotFound, "unknown round event")
		return
	}

	res, err := call(ctx, scope, roundID)
	respond(h, ctx, w, http.StatusOK, res, err)
}

// HandleShortlist eliminates participants, which cannot be undone; it warns first like
// HandleDeleteRound.
func (h *RoundHandlers) HandleShortlist(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleShortlist")
	defer span.End()

	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	var policy rounddomain.EliminationPolicy
	if err := httpapi.ReadJSON(w, r, &policy); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	prompt := undoservice.Prompt{
		Title:   fmt.Sprintf("Shortlist round %d?", roundID),
		Message: "Eliminations are applied immediately and cannot be undone.",
	}
	var (
		res     roundservice.RoundResult
		callErr error
	)
	proceeded, err := h.gate.WarnNonUndoable(ctx, httpapi.QueryConfirmer(r), prompt.Title, prompt.Message, func(ctx context.Context) error {
		res, callErr = h.service.Shortlist(ctx, scope, roundID, policy)
		return callErr
	})
	if !proceeded {
		if err != nil {
			httpapi.WriteInternal(ctx, w, h.logger, "confirmation failed", err)
			return
		}
		httpapi.WritePrompt(w, prompt)
		return
	}
	respond(h, ctx, w, http.StatusOK, res, callErr)
}

func (h *RoundHandlers) HandleReorder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleReorder")
	defer span.End()

	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if err := httpapi.ReadJSON(w, r, &req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.Reorder(ctx, scope, roundID, req.Direction)
	respond(h, ctx, w, http.StatusOK, res, err)
}
