package roundhandlers

import "net/http"

// Handlers is the HTTP surface of the round lifecycle controller.
type Handlers interface {
	HandleListRounds(w http.ResponseWriter, r *http.Request)
	HandleGetRound(w http.ResponseWriter, r *http.Request)
	HandleCreateRound(w http.ResponseWriter, r *http.Request)
	HandleEditRound(w http.ResponseWriter, r *http.Request)
	HandleDeleteRound(w http.ResponseWriter, r *http.Request)
	HandleTransition(w http.ResponseWriter, r *http.Request)
	HandleShortlist(w http.ResponseWriter, r *http.Request)
	HandleReorder(w http.ResponseWriter, r *http.Request)

	HandleSetAttendance(w http.ResponseWriter, r *http.Request)
	HandleSetScores(w http.ResponseWriter, r *http.Request)
	HandleReplacePanels(w http.ResponseWriter, r *http.Request)
	HandleAssignPanels(w http.ResponseWriter, r *http.Request)

	HandleGetDraft(w http.ResponseWriter, r *http.Request)
	HandleUpdateDraft(w http.ResponseWriter, r *http.Request)
	HandleSaveDraft(w http.ResponseWriter, r *http.Request)
	HandleDiscardDraft(w http.ResponseWriter, r *http.Request)
}
