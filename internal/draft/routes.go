package draft

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the wizard API under /drafts.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", h.Open)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Show)
			r.Delete("/", h.CloseSession)
			r.Post("/customer", h.SelectCustomer)
			r.Post("/step/advance", h.AdvanceStep)
			r.Post("/step/retreat", h.RetreatStep)
			r.Post("/items", h.AddItem)
			r.Post("/items/remove", h.RemoveItems)
			r.Patch("/items/{itemID}", h.UpdateItem)
			r.Post("/items/{itemID}/save", h.SaveItem)
			r.Put("/addresses", h.SetAddresses)
			r.Post("/addresses/saved", h.SelectSavedAddress)
			r.Put("/checkout-details", h.SetCheckoutDetails)
			r.Put("/shipping-details", h.SetShippingDetails)
			r.Put("/status", h.SetStatus)
			r.Get("/summary", h.GetSummary)
			r.Put("/notes", h.NotesChange)
			r.Post("/notes/save", h.NotesForceSave)
			r.Get("/notes/status", h.NotesStatus)
			r.Post("/connectivity", h.SetConnectivity)
			r.Post("/submit", h.Submit)
		})
	})
}
