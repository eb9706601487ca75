package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"fooddelivery/internal/downstream"
	"fooddelivery/internal/model"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *model.Pagination  `json:"pagination,omitempty"`
	Errors     []model.FieldError `json:"errors,omitempty"`
	Details    json.RawMessage    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Message: message})
}

// decodeJSON reads a JSON body into v. An empty body is accepted when
// optional is set.
func decodeJSON(r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// writeError maps classified failures to status codes. Anything
// unclassified is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *model.ValidationError
		derr *downstream.Error
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Message: "validation failed", Errors: verr.Errors})
	case errors.Is(err, model.ErrValidation):
		writeFailure(w, http.StatusBadRequest, "validation failed")
	case errors.Is(err, model.ErrInvalidTransition):
		writeFailure(w, http.StatusBadRequest, "order cannot change status")
	case errors.Is(err, model.ErrUnauthorized):
		writeFailure(w, http.StatusUnauthorized, model.ErrUnauthorized.Error())
	case errors.Is(err, model.ErrAccountInactive):
		writeFailure(w, http.StatusForbidden, model.ErrAccountInactive.Error())
	case errors.Is(err, model.ErrForbidden):
		writeFailure(w, http.StatusForbidden, "access denied")
	case errors.Is(err, model.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrConflict):
		writeFailure(w, http.StatusConflict, "conflict: already exists or modified concurrently")
	case errors.Is(err, model.ErrStoreUnavailable):
		writeFailure(w, http.StatusServiceUnavailable, "database unavailable")
	case errors.As(err, &derr):
		writeDownstreamError(w, derr)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeFailure(w, http.StatusInternalServerError, "internal error")
	}
}

func writeDownstreamError(w http.ResponseWriter, derr *downstream.Error) {
	switch {
	case errors.Is(derr, downstream.ErrUpstreamUnavailable):
		writeFailure(w, http.StatusServiceUnavailable, derr.Kind.Error())
	case errors.Is(derr, downstream.ErrUpstreamRejected):
		status := derr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, envelope{Message: derr.Message, Details: derr.Details})
	default:
		slog.Error("delivery backend call failed", "op", derr.Op, "error", derr)
		writeFailure(w, http.StatusInternalServerError, derr.Kind.Error())
	}
}
