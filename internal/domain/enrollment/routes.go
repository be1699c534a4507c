package enrollment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the admin enrollment router
func (h *Handler) Routes(authMiddleware, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminOnly)
		r.Get("/{id}/enrollments", h.ListByProgram)
	})

	return r
}
