package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/studiora/studiora-api/internal/pkg/checkout"
	"github.com/studiora/studiora-api/internal/pkg/logger"
	"github.com/studiora/studiora-api/internal/pkg/response"
	"github.com/studiora/studiora-api/internal/pkg/validator"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Handler handles inbound checkout webhook requests
type Handler struct {
	orchestrator *Orchestrator
	dedupe       *Deduper
	secret       string
}

// NewHandler creates webhook handler
func NewHandler(orchestrator *Orchestrator, dedupe *Deduper, secret string) *Handler {
	return &Handler{orchestrator: orchestrator, dedupe: dedupe, secret: secret}
}

// HandleCheckoutEvent handles POST /webhooks/checkout.
//
// Responses: 200 for accepted work and legitimate no-ops, 400 for a
// signature that fails verification, 500 for unexpected internal errors
// (the transport retries those, which is safe under the idempotency
// guarantees downstream).
func (h *Handler) HandleCheckoutEvent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		response.BadRequest(w, "failed to read request body")
		return
	}

	signature := r.Header.Get(checkout.SignatureHeader)
	if signature == "" {
		// Unsigned requests are acknowledged as no-ops with zero state
		// mutation. Whether this tolerance is a delivery quirk or an
		// oversight is an open product question; keep the behavior visible
		// in logs either way.
		log.Warn().Str("path", r.URL.Path).Msg("unsigned webhook request acknowledged as no-op")
		response.OK(w, map[string]string{"status": "ignored"})
		return
	}

	if !checkout.VerifySignature(body, signature, h.secret) {
		log.Warn().Msg("webhook signature verification failed")
		response.Error(w, http.StatusBadRequest, "INVALID_SIGNATURE", "signature verification failed")
		return
	}

	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		response.BadRequest(w, "invalid event payload")
		return
	}
	if errs := validator.Validate(evt); errs != nil {
		response.ErrorWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid event payload", errs)
		return
	}

	if evt.Type != EventCheckoutCompleted {
		response.OK(w, map[string]string{"status": "ignored"})
		return
	}

	if h.dedupe.Seen(r.Context(), evt.ID) {
		response.OK(w, map[string]string{"status": "duplicate"})
		return
	}

	complete, err := h.orchestrator.HandleEvent(r.Context(), &evt)
	if err != nil {
		log.Error().Err(err).Str("event_id", evt.ID).Msg("event reconciliation failed")
		response.InternalError(w)
		return
	}

	// Mark only fully reconciled events: an incomplete run is acknowledged
	// but must not swallow its own redelivery as a duplicate.
	if complete {
		h.dedupe.Mark(r.Context(), evt.ID)
	}
	response.OK(w, map[string]string{"status": "processed"})
}
