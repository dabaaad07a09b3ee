package roundhandlers

import (
	"net/http"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	"github.com/Black-And-White-Club/stage-console/app/shared/httpapi"
)

func (h *RoundHandlers) HandleGetDraft(w http.ResponseWriter, r *http.Request) {
	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	res, err := h.service.GetDraft(r.Context(), scope, roundID)
	respond(h, r.Context(), w, http.StatusOK, res, err)
}

func (h *RoundHandlers) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	var patch rounddomain.Patch
	if err := httpapi.ReadJSON(w, r, &patch); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.service.UpdateDraft(r.Context(), scope, roundID, patch)
	respond(h, r.Context(), w, http.StatusOK, res, err)
}

func (h *RoundHandlers) HandleSaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.HandleSaveDraft")
	defer span.End()

	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	res, err := h.service.SaveDraft(ctx, scope, roundID)
	respond(h, ctx, w, http.StatusOK, res, err)
}

func (h *RoundHandlers) HandleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	h.service.DiscardDraft(r.Context(), scope, roundID)
	w.WriteHeader(http.StatusNoContent)
}
