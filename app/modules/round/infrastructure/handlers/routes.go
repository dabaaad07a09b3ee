package roundhandlers

import "github.com/go-chi/chi/v5"

// Mount registers the round routes on a router already scoped to /api/events/{scope}.
func Mount(r chi.Router, h Handlers) {
	r.Route("/rounds", func(r chi.Router) {
		r.Get("/", h.HandleListRounds)
		r.Post("/", h.HandleCreateRound)

		r.Route("/{roundID}", func(r chi.Router) {
			r.Get("/", h.HandleGetRound)
			r.Patch("/", h.HandleEditRound)
			r.Delete("/", h.HandleDeleteRound)

			r.Post("/shortlist", h.HandleShortlist)
			r.Post("/reorder", h.HandleReorder)

			r.Put("/attendance", h.HandleSetAttendance)
			r.Put("/scores", h.HandleSetScores)
			r.Put("/panels", h.HandleReplacePanels)
			r.Put("/panel-assignments", h.HandleAssignPanels)

			r.Get("/draft", h.HandleGetDraft)
			r.Put("/draft", h.HandleUpdateDraft)
			r.Delete("/draft", h.HandleDiscardDraft)
			r.Post("/draft/save", h.HandleSaveDraft)

			r.Post("/{event}", h.HandleTransition)
		})
	})
}
