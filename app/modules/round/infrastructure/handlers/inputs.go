package roundhandlers

import (
	"context"
	"net/http"

	rounddomain "github.com/Black-And-White-Club/stage-console/app/modules/round/domain"
	"github.com/Black-And-White-Club/stage-console/app/shared/httpapi"
	sharedtypes "github.com/Black-And-White-Club/stage-console/app/shared/types"
	"github.com/Black-And-White-Club/stage-console/pkg/results"
)

// putItems decodes a JSON array body and hands it to call.
func putItems[T any](
	h *RoundHandlers,
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	call func(context.Context, sharedtypes.Scope, sharedtypes.RoundID, []T) (results.OperationResult[[]T, error], error),
) {
	ctx, span := h.tracer.Start(r.Context(), spanName)
	defer span.End()

	scope, roundID, ok := target(w, r)
	if !ok {
		return
	}
	var items []T
	if err := httpapi.ReadJSON(w, r, &items); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := call(ctx, scope, roundID, items)
	respond(h, ctx, w, http.StatusOK, res, err)
}

func (h *RoundHandlers) HandleSetAttendance(w http.ResponseWriter, r *http.Request) {
	putItems[rounddomain.AttendanceMark](h, w, r, "RoundHandlers.HandleSetAttendance", h.service.SetAttendance)
}

func (h *RoundHandlers) HandleSetScores(w http.ResponseWriter, r *http.Request) {
	putItems[rounddomain.Score](h, w, r, "RoundHandlers.HandleSetScores", h.service.SetScores)
}

func (h *RoundHandlers) HandleReplacePanels(w http.ResponseWriter, r *http.Request) {
	putItems[rounddomain.Panel](h, w, r, "RoundHandlers.HandleReplacePanels", h.service.ReplacePanels)
}

func (h *RoundHandlers) HandleAssignPanels(w http.ResponseWriter, r *http.Request) {
	putItems[rounddomain.PanelAssignment](h, w, r, "RoundHandlers.HandleAssignPanels", h.service.AssignPanels)
}
