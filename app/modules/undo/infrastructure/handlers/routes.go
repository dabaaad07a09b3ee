package undohandlers

import "github.com/go-chi/chi/v5"

// Mount registers the undo routes on a router already scoped to /api/events/{scope}.
func Mount(r chi.Router, h Handlers) {
	r.Get("/undo", h.HandlePeek)
	r.Post("/undo", h.HandleExecute)
	r.Delete("/undo", h.HandleClear)
	r.Get("/undo/stream", h.HandleStream)
	r.Post("/navigate", h.HandleNavigate)
}
