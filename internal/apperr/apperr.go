// Package apperr classifies domain errors into the HTTP-facing taxonomy and
// renders them as JSON bodies.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind is the category an error is reported under.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAuth
	KindForbidden
	KindRateLimited
	KindUpstream
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a stable message key.
type Error struct {
	Kind    Kind
	Key     string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two *Error values by key.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Key != "" && other.Key == e.Key
}

var (
	// ErrInvalidBody is returned when a request body cannot be decoded.
	ErrInvalidBody = New(KindValidation, "invalid_body", "invalid request body")
	// ErrUnauthorized is returned when the caller has no valid credentials.
	ErrUnauthorized = New(KindAuth, "unauthorized", "authentication required")
	// ErrForbidden is returned when the session lacks the required role.
	ErrForbidden = New(KindForbidden, "forbidden", "not allowed")
)

// New builds a classified sentinel.
func New(kind Kind, key, message string) *Error {
	return &Error{Kind: kind, Key: key, Message: message}
}

// WithDetails returns a copy of e carrying structured details.
func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of e wrapping cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// As extracts the classified error from the chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Body is the JSON shape written for failures.
type Body struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Details  any    `json:"details,omitempty"`
	Conflict bool   `json:"conflict,omitempty"`
}

// Write renders err as JSON. Unclassified errors become a 500 without leaking
// their text.
func Write(w http.ResponseWriter, err error) {
	appErr, ok := As(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, Body{Error: "internal_error", Message: "internal server error"})
		return
	}
	WriteJSON(w, appErr.Kind.Status(), Body{
		Error:    appErr.Key,
		Message:  appErr.Message,
		Details:  appErr.Details,
		Conflict: appErr.Kind == KindConflict,
	})
}

// WriteJSON writes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
