package handlers

import (
	"encoding/json"
	"net/http"

	"nereus/pkg/errors"
	"nereus/pkg/logger"
)

// errorResponse is the JSON body for all error replies
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain sentinel errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, errors.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidInput), errors.Is(err, errors.ErrReadingOutOfRange):
		code = http.StatusBadRequest
	case errors.Is(err, errors.ErrAlreadyExists):
		code = http.StatusConflict
	case errors.Is(err, errors.ErrRateLimitExceeded):
		code = http.StatusTooManyRequests
	case errors.Is(err, errors.ErrNoData):
		code = http.StatusNotFound
	case errors.Is(err, errors.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, errors.ErrUnavailable), errors.Is(err, errors.ErrModelLoad):
		code = http.StatusServiceUnavailable
	}

	if code == http.StatusInternalServerError {
		logger.Get().Errorf("Request failed: %v", err)
	}

	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, "malformed request body")
	}
	return nil
}
