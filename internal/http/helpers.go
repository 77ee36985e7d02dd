package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"dailyspend/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps the domain failure kinds to HTTP responses. Anything
// unrecognized becomes a plain 500 without leaking internals.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrParse):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrClockOverride):
		writeError(w, http.StatusBadRequest, "override date must be YYYY-MM-DD")
	case errors.Is(err, core.ErrConfiguration):
		writeError(w, http.StatusServiceUnavailable, "could not retrieve budget configuration")
	case errors.Is(err, core.ErrExternalStore):
		writeError(w, http.StatusBadGateway, "ledger store temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}
