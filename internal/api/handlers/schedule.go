package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"nereus/internal/domain/schedule"
	schedulesvc "nereus/internal/services/schedule"
	"nereus/pkg/errors"
)

// ScheduleHandler serves feeding schedule endpoints
type ScheduleHandler struct {
	svc *schedulesvc.Service
}

// NewScheduleHandler creates the schedule handler
func NewScheduleHandler(svc *schedulesvc.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

type scheduleRequest struct {
	FeedingTime  string          `json:"feeding_time"`
	FeedAmountKg decimal.Decimal `json:"feed_amount_kg"`
	FeedType     string          `json:"feed_type"`
	Enabled      *bool           `json:"enabled"`
}

// Create handles POST /api/v1/ponds/{pondID}/schedules
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req scheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	sched := &schedule.Schedule{
		PondID:       id,
		FeedingTime:  req.FeedingTime,
		FeedAmountKg: req.FeedAmountKg,
		FeedType:     req.FeedType,
		Enabled:      enabled,
	}

	if err := h.svc.Create(r.Context(), sched); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sched)
}

// List handles GET /api/v1/ponds/{pondID}/schedules
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	schedules, err := h.svc.GetByPond(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, schedules)
}

type nextFeedingResponse struct {
	Schedule *schedule.Schedule `json:"schedule"`
	NextAt   time.Time          `json:"next_at"`
}

// Next handles GET /api/v1/ponds/{pondID}/schedules/next
func (h *ScheduleHandler) Next(w http.ResponseWriter, r *http.Request) {
	id, err := pondID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sched, at, err := h.svc.NextFeeding(r.Context(), id, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nextFeedingResponse{Schedule: sched, NextAt: at})
}

// Delete handles DELETE /api/v1/schedules/{scheduleID}
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "scheduleID"))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrInvalidInput, "invalid schedule id"))
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
