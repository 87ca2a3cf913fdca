package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"carteira/internal/core"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// ownerHeader identifies the requesting owner. Authentication proper sits
// in front of this service.
const ownerHeader = "X-Owner-ID"

func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(ownerHeader)
	if id == "" {
		writeError(w, r, core.ValidationError{Field: "owner", Reason: "missing " + ownerHeader + " header"})
		return "", false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, core.ValidationError{Field: "body", Reason: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Anything
// unclassified is an internal error and the detail stays in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status = http.StatusInternalServerError
		kind   = "internal"
		msg    = "internal error"
	)

	var consistency core.ConsistencyError
	switch {
	case core.IsValidation(err):
		status, kind, msg = http.StatusBadRequest, "validation", err.Error()
	case core.IsNotFound(err):
		status, kind, msg = http.StatusNotFound, "not_found", err.Error()
	case core.IsConflict(err):
		status, kind, msg = http.StatusConflict, "conflict", err.Error()
	case core.IsTransient(err):
		status, kind, msg = http.StatusServiceUnavailable, "transient", "temporary failure, retry the request"
	case errors.As(err, &consistency):
		status, kind, msg = http.StatusInternalServerError, "consistency", err.Error()
	}

	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}
