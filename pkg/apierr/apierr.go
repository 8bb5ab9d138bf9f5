// Package apierr holds the error kinds returned by the lookup services and
// writes them as JSON responses.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

type Kind int

const (
	// KindValidation is a missing or malformed request field; no I/O was attempted.
	KindValidation Kind = iota
	// KindUpstreamAuth is an upstream rejection of the caller's API key.
	KindUpstreamAuth
	// KindUpstreamStatus is any other non-200 answer from the upstream API.
	KindUpstreamStatus
	// KindNetwork is a transport failure talking to the upstream API.
	KindNetwork
	// KindUnavailable means the local wordlist does not exist.
	KindUnavailable
	// KindIO is a failure reading the local wordlist.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUpstreamAuth:
		return "upstream_auth"
	case KindUpstreamStatus:
		return "upstream_status"
	case KindNetwork:
		return "network"
	case KindUnavailable:
		return "unavailable"
	case KindIO:
		return "io"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a classified failure with the status and message shown to the caller.
type Error struct {
	Kind       Kind
	Status     int
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a 400 error with the given message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

// New builds an error of the given kind. The status is derived from the kind,
// except for KindUpstreamStatus where the upstream status must be supplied.
func New(kind Kind, status int, msg string, cause error) *Error {
	if status == 0 {
		status = statusFor(kind)
	}
	return &Error{Kind: kind, Status: status, Message: msg, Err: cause}
}

func statusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUpstreamAuth:
		return http.StatusUnauthorized
	case KindUpstreamStatus:
		return http.StatusBadGateway
	case KindUnavailable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Detail returns a message for err that is safe to show to callers:
// filesystem paths are stripped from path errors.
func Detail(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

type body struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Write encodes err as a JSON error response. Errors that are not *Error are
// written as a generic 500.
func Write(logger *logrus.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = New(KindIO, http.StatusInternalServerError, "Internal server error", err)
	}

	entry := logger.WithFields(logrus.Fields{
		"kind":   e.Kind.String(),
		"status": e.Status,
		"path":   r.URL.Path,
	})
	if e.Err != nil {
		entry = entry.WithError(e.Err)
	}

	if e.Status >= http.StatusInternalServerError {
		entry.Error(e.Message)
		sentry.CaptureException(err)
	} else {
		entry.Debug(e.Message)
	}

	WriteJSON(logger, w, e.Status, body{Error: e.Message, Suggestion: e.Suggestion})
}

// WriteJSON encodes v with the given status.
func WriteJSON(logger *logrus.Logger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to write response")
	}
}
