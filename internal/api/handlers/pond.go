package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nereus/internal/domain/pond"
	"nereus/pkg/errors"
)

// PondHandler serves pond CRUD endpoints
type PondHandler struct {
	ponds pond.Repository
}

// NewPondHandler creates the pond handler
func NewPondHandler(ponds pond.Repository) *PondHandler {
	return &PondHandler{ponds: ponds}
}

type createPondRequest struct {
	UserID     uuid.UUID    `json:"user_id"`
	Name       string       `json:"name"`
	Species    pond.Species `json:"species"`
	StockCount int          `json:"stock_count"`
	StartDate  time.Time    `json:"start_date"`
}

// Create handles POST /api/v1/ponds
func (h *PondHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPondRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Name == "" {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "name is required"))
		return
	}
	if !req.Species.Valid() {
		writeError(w, errors.Wrapf(errors.ErrInvalidInput, "unknown species %q", req.Species))
		return
	}
	if req.StockCount <= 0 {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "stock_count must be positive"))
		return
	}
	if req.StartDate.IsZero() {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "start_date is required"))
		return
	}

	now := time.Now().UTC()
	p := &pond.Pond{
		ID:         uuid.New(),
		UserID:     req.UserID,
		Name:       req.Name,
		Species:    req.Species,
		StockCount: req.StockCount,
		StartDate:  req.StartDate,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.ponds.Create(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// Get handles GET /api/v1/ponds/{pondID}
func (h *PondHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, p)
}

// List handles GET /api/v1/ponds?user_id=...
func (h *PondHandler) List(w http.ResponseWriter, r *http.Request) {
	userParam := r.URL.Query().Get("user_id")
	if userParam == "" {
		ponds, err := h.ponds.GetActive(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ponds)
		return
	}

	userID, err := uuid.Parse(userParam)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid user_id"))
		return
	}

	ponds, err := h.ponds.GetByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ponds)
}

type updatePondRequest struct {
	Name       *string       `json:"name"`
	Species    *pond.Species `json:"species"`
	StockCount *int          `json:"stock_count"`
	Active     *bool         `json:"active"`
}

// Update handles PUT /api/v1/ponds/{pondID}
func (h *PondHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req updatePondRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Species != nil {
		if !req.Species.Valid() {
			writeError(w, errors.Wrapf(errors.ErrInvalidInput, "unknown species %q", *req.Species))
			return
		}
		p.Species = *req.Species
	}
	if req.StockCount != nil {
		if *req.StockCount <= 0 {
			writeError(w, errors.Wrap(errors.ErrInvalidInput, "stock_count must be positive"))
			return
		}
		p.StockCount = *req.StockCount
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := h.ponds.Update(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/v1/ponds/{pondID}
func (h *PondHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.ponds.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pondID extracts the pond UUID from the route
func pondID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "pondID"))
	if err != nil {
		return uuid.Nil, errors.Wrap(errors.ErrInvalidInput, "invalid pond id")
	}
	return id, nil
}
