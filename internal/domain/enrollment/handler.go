package enrollment

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/pkg/response"
)

// Handler handles admin enrollment HTTP requests
type Handler struct {
	reconciler *Reconciler
}

// NewHandler creates enrollment handler
func NewHandler(reconciler *Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// ListByProgram handles GET /admin/programs/{id}/enrollments
func (h *Handler) ListByProgram(w http.ResponseWriter, r *http.Request) {
	programID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid program id")
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	enrollments, err := h.reconciler.ListByProgram(r.Context(), programID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, enrollments)
}
