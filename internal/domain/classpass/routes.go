package classpass

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the admin class pass router
func (h *Handler) Routes(authMiddleware, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminOnly)
		r.Get("/{id}/credits", h.UserCredits)
	})

	return r
}
