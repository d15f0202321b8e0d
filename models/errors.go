package models

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrForbidden      = errors.New("only admins can retrain the model")
	ErrUnknownTab     = errors.New("unknown tab")
	ErrBusy           = errors.New("a request is already in progress")
	ErrStaleResponse  = errors.New("response superseded by a newer request")
	ErrSessionExpired = errors.New("stored session expired")
	ErrShuttingDown   = errors.New("dashboard service is shutting down")
)

// AuthError is an invalid-credentials answer from the backend.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// NetworkError is a transport failure (Status == 0) or a non-2xx answer.
type NetworkError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Transport reports whether the request never got an HTTP answer.
func (e *NetworkError) Transport() bool {
	return e.Status == 0
}

// PartialDataError marks a single chart dataset as missing or malformed.
type PartialDataError struct {
	Kind   ChartKind
	Reason string
}

func (e *PartialDataError) Error() string {
	return fmt.Sprintf("chart %s: %s", e.Kind, e.Reason)
}

// ValidationError is malformed prediction or login input.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
