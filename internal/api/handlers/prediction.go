package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nereus/internal/api/live"
	"nereus/internal/domain/pond"
	"nereus/internal/domain/prediction"
	predictionsvc "nereus/internal/services/prediction"
	"nereus/pkg/errors"
)

// PredictionHandler serves prediction query, on-demand run, and feedback
// endpoints
type PredictionHandler struct {
	ponds       pond.Repository
	predictions prediction.Repository
	svc         *predictionsvc.Service
	hub         *live.Hub
}

// NewPredictionHandler creates the prediction handler. The hub may be nil.
func NewPredictionHandler(
	ponds pond.Repository,
	predictions prediction.Repository,
	svc *predictionsvc.Service,
	hub *live.Hub,
) *PredictionHandler {
	return &PredictionHandler{
		ponds:       ponds,
		predictions: predictions,
		svc:         svc,
		hub:         hub,
	}
}

// List handles GET /api/v1/ponds/{pondID}/predictions?limit=N
func (h *PredictionHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 200 {
			writeError(w, errors.Wrap(errors.ErrInvalidInput, "limit must be 1-200"))
			return
		}
		limit = parsed
	}

	preds, err := h.predictions.GetByPond(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, preds)
}

// Latest handles GET /api/v1/ponds/{pondID}/predictions/latest
func (h *PredictionHandler) Latest(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	latest, err := h.predictions.GetLatest(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, latest)
}

// Run handles POST /api/v1/ponds/{pondID}/predictions, an on-demand
// prediction outside the worker schedule
func (h *PredictionHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.ponds.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.Predict(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastPrediction(id, result)
	}

	writeJSON(w, http.StatusCreated, result)
}

type verifyRequest struct {
	Verified bool `json:"verified"`
}

// Verify handles POST /api/v1/predictions/{predictionID}/verify
func (h *PredictionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "predictionID"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid prediction id"))
		return
	}

	var req verifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Verify(r.Context(), id, req.Verified); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
