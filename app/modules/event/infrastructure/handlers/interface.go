package eventhandlers

import "net/http"

// Handlers is the HTTP surface of the event module.
type Handlers interface {
	HandleGetFlags(w http.ResponseWriter, r *http.Request)
	HandleSetFlags(w http.ResponseWriter, r *http.Request)
	HandleListParticipants(w http.ResponseWriter, r *http.Request)
	HandleAddParticipant(w http.ResponseWriter, r *http.Request)
	HandleSetParticipantStatuses(w http.ResponseWriter, r *http.Request)
}
