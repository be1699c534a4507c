package transaction

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studiora/studiora-api/internal/pkg/response"
	"github.com/studiora/studiora-api/internal/pkg/validator"
)

// Handler handles admin transaction HTTP requests
type Handler struct {
	updater *Updater
}

// NewHandler creates transaction handler
func NewHandler(updater *Updater) *Handler {
	return &Handler{updater: updater}
}

// List handles GET /admin/transactions?status=needs_manual_review_full
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if err := validator.ValidateVar(string(status), "transaction_status"); err != nil {
		response.BadRequest(w, "invalid status filter")
		return
	}
	if status == "" {
		// Default to the manual-review queue, the listing admins act on.
		status = StatusNeedsManualReviewFull
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

	transactions, err := h.updater.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, transactions)
}

// Get handles GET /admin/transactions/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid transaction id")
		return
	}

	tx, err := h.updater.GetByID(r.Context(), id)
	if err != nil {
		response.InternalError(w)
		return
	}
	if tx == nil {
		response.NotFound(w, "transaction not found")
		return
	}

	response.OK(w, tx)
}
