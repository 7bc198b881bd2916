package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nereus/internal/domain/modelversion"
	modelsvc "nereus/internal/services/modelversion"
	"nereus/pkg/errors"
)

// ModelHandler serves the model distribution endpoints mobile clients use
// to discover and download on-device model updates
type ModelHandler struct {
	svc *modelsvc.Service
}

// NewModelHandler creates the model handler
func NewModelHandler(svc *modelsvc.Service) *ModelHandler {
	return &ModelHandler{svc: svc}
}

// Latest handles GET /api/v1/models/latest
func (h *ModelHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.svc.GetLatest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, latest)
}

// CheckUpdate handles GET /api/v1/models/check-update?current_version=&app_version=
func (h *ModelHandler) CheckUpdate(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.CheckForUpdate(r.Context(),
		r.URL.Query().Get("current_version"),
		r.URL.Query().Get("app_version"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// List handles GET /api/v1/models?limit=&offset=
func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	versions, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, versions)
}

// Register handles POST /api/v1/models
func (h *ModelHandler) Register(w http.ResponseWriter, r *http.Request) {
	var m modelversion.ModelVersion
	if err := decodeBody(r, &m); err != nil {
		writeError(w, err)
		return
	}

	if err := h.svc.Register(r.Context(), &m); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

// Activate handles POST /api/v1/models/{modelID}/activate
func (h *ModelHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "modelID"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid model id"))
		return
	}

	if err := h.svc.Activate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
