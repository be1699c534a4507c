package webhook

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the webhook router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/checkout", h.HandleCheckoutEvent)
	return r
}
