package undohandlers

import "net/http"

// Handlers is the HTTP surface of the undo module.
type Handlers interface {
	HandlePeek(w http.ResponseWriter, r *http.Request)
	HandleExecute(w http.ResponseWriter, r *http.Request)
	HandleClear(w http.ResponseWriter, r *http.Request)
	HandleNavigate(w http.ResponseWriter, r *http.Request)
	HandleStream(w http.ResponseWriter, r *http.Request)
}
