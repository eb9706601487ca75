package downstream

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUpstreamUnavailable = errors.New("delivery backend is unavailable")
	ErrUpstreamRejected    = errors.New("delivery backend rejected the request")
	ErrLocal               = errors.New("internal error communicating with delivery backend")
)

// Error is a classified delivery backend failure. Kind is one of
// ErrUpstreamUnavailable, ErrUpstreamRejected or ErrLocal.
type Error struct {
	Kind       error
	Op         string
	StatusCode int
	Message    string
	Details    json.RawMessage
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(op string, err error) *Error {
	return &Error{Kind: ErrUpstreamUnavailable, Op: op, Err: err}
}

func local(op string, err error) *Error {
	return &Error{Kind: ErrLocal, Op: op, Err: err}
}

func rejected(op string, status int, body []byte) *Error {
	e := &Error{Kind: ErrUpstreamRejected, Op: op, StatusCode: status, Message: "delivery backend error"}
	if !json.Valid(body) {
		return e
	}
	e.Details = json.RawMessage(body)

	var payload struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			e.Message = payload.Message
		case payload.Detail != nil:
			if s, ok := payload.Detail.(string); ok {
				e.Message = s
			}
		}
	}
	return e
}
