package classpass

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/pkg/response"
)

// Handler handles admin class pass HTTP requests
type Handler struct {
	granter *Granter
}

// NewHandler creates class pass handler
func NewHandler(granter *Granter) *Handler {
	return &Handler{granter: granter}
}

// UserCredits handles GET /admin/users/{id}/credits?studio_id=...
func (h *Handler) UserCredits(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}
	studioID, err := uuid.Parse(r.URL.Query().Get("studio_id"))
	if err != nil {
		response.BadRequest(w, "invalid studio_id")
		return
	}

	limit := 20
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

	balance, err := h.granter.Balance(r.Context(), userID, studioID)
	if err != nil {
		response.InternalError(w)
		return
	}
	entries, err := h.granter.History(r.Context(), userID, studioID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"balance": balance,
		"ledger":  entries,
	})
}
