package customers

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the customer CRUD API under /customers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Patch("/", h.Update)
			r.Get("/addresses", h.ListAddresses)
			r.Post("/addresses", h.AddAddress)
			r.Delete("/addresses/{addressID}", h.DeleteAddress)
		})
	})
}
