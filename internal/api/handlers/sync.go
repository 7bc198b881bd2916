package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"nereus/internal/api/live"
	"nereus/internal/domain/reading"
	"nereus/internal/services/ingest"
	"nereus/pkg/errors"
)

// maxSyncBatch caps the number of readings one sync request may carry
const maxSyncBatch = 500

// SyncHandler serves the mobile offline-sync and reading query endpoints.
// Each client (keyed by device header, falling back to remote address) gets
// its own token bucket so a misbehaving gateway cannot starve the rest.
type SyncHandler struct {
	ingest   *ingest.Service
	readings reading.Repository
	hub      *live.Hub

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewSyncHandler creates the sync handler. The hub may be nil.
func NewSyncHandler(ingestSvc *ingest.Service, readings reading.Repository, hub *live.Hub, perSecond float64, burst int) *SyncHandler {
	return &SyncHandler{
		ingest:   ingestSvc,
		readings: readings,
		hub:      hub,
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (h *SyncHandler) limiter(key string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.limiters[key]
	if !ok {
		l = rate.NewLimiter(h.limit, h.burst)
		h.limiters[key] = l
	}
	return l
}

type syncRequest struct {
	Readings []reading.Reading `json:"readings"`
}

// Sync handles POST /api/v1/ponds/{pondID}/readings
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Device-ID")
	if key == "" {
		key = r.RemoteAddr
	}
	if !h.limiter(key).Allow() {
		writeError(w, errors.Wrapf(errors.ErrRateLimitExceeded, "client %s", key))
		return
	}

	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req syncRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Readings) > maxSyncBatch {
		writeError(w, errors.Wrapf(errors.ErrInvalidInput,
			"batch too large: %d readings, limit %d", len(req.Readings), maxSyncBatch))
		return
	}

	result, err := h.ingest.Ingest(r.Context(), id, req.Readings, "api")
	if err != nil {
		writeError(w, err)
		return
	}

	if h.hub != nil && result.Accepted > 0 {
		h.hub.BroadcastReadings(id, map[string]int{"accepted": result.Accepted})
	}

	writeJSON(w, http.StatusOK, result)
}

// Latest handles GET /api/v1/ponds/{pondID}/readings/latest
func (h *SyncHandler) Latest(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	latest, err := h.readings.GetLatest(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, latest)
}

// Recent handles GET /api/v1/ponds/{pondID}/readings?limit=N
func (h *SyncHandler) Recent(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 || parsed > 1000 {
			writeError(w, errors.Wrap(errors.ErrInvalidInput, "limit must be 1-1000"))
			return
		}
		limit = parsed
	}

	readings, err := h.readings.GetRecent(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

// Range handles GET /api/v1/ponds/{pondID}/readings/range?from=&to=
func (h *SyncHandler) Range(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "from must be RFC3339"))
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "to must be RFC3339"))
		return
	}
	if !to.After(from) {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "to must be after from"))
		return
	}

	readings, err := h.readings.GetRange(r.Context(), id, from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, readings)
}
