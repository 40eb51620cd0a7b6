// Package apperr defines the error kinds surfaced by the service and the
// single table that maps them to HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the HTTP boundary.
type Kind int

const (
	Unexpected Kind = iota
	UnsupportedFileType
	InvalidRequest
	PayloadTooLarge
	ProviderError
	NetworkError
)

// String returns the machine-readable code written in error responses.
func (k Kind) String() string {
	switch k {
	case UnsupportedFileType:
		return "unsupported_file_type"
	case InvalidRequest:
		return "invalid_request"
	case PayloadTooLarge:
		return "payload_too_large"
	case ProviderError:
		return "provider_error"
	case NetworkError:
		return "network_error"
	default:
		return "unexpected_error"
	}
}

// Error is a classified failure. Status is only meaningful for ProviderError,
// where it carries the upstream HTTP status (0 when the body was unusable).
type Error struct {
	Kind   Kind
	Status int
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// UnsupportedFile reports an upload whose extension is not recognized.
func UnsupportedFile(filename string) *Error {
	return &Error{Kind: UnsupportedFileType, Detail: fmt.Sprintf("Unsupported file type: %q", filename)}
}

// Invalid reports a malformed client request.
func Invalid(detail string) *Error {
	return &Error{Kind: InvalidRequest, Detail: detail}
}

// TooLarge reports an upload exceeding the configured size limit.
func TooLarge(limit int64) *Error {
	return &Error{Kind: PayloadTooLarge, Detail: fmt.Sprintf("Upload exceeds the %d byte limit", limit)}
}

// Provider reports a non-2xx status or an undecodable body from an upstream API.
func Provider(status int, detail string) *Error {
	return &Error{Kind: ProviderError, Status: status, Detail: detail}
}

// Network reports a connection-level failure reaching an upstream API.
func Network(service string, cause error) *Error {
	return &Error{
		Kind:   NetworkError,
		Detail: fmt.Sprintf("Network error connecting to %s service", service),
		Cause:  cause,
	}
}

// statusByKind is the one place kinds turn into HTTP statuses.
var statusByKind = map[Kind]int{
	UnsupportedFileType: http.StatusBadRequest,
	InvalidRequest:      http.StatusBadRequest,
	PayloadTooLarge:     http.StatusRequestEntityTooLarge,
	ProviderError:       http.StatusInternalServerError,
	NetworkError:        http.StatusInternalServerError,
	Unexpected:          http.StatusInternalServerError,
}

// KindOf returns the kind of err, or Unexpected if err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unexpected
}

// HTTPStatus maps err to the status the API responds with. Provider errors
// pass the upstream status through when it is itself an error status.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return statusByKind[Unexpected]
	}
	if ae.Kind == ProviderError && ae.Status >= 400 && ae.Status <= 599 {
		return ae.Status
	}
	if status, ok := statusByKind[ae.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Detail returns the client-facing message for err.
func Detail(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind == NetworkError && ae.Cause != nil {
			return fmt.Sprintf("%s: %v", ae.Detail, ae.Cause)
		}
		return ae.Detail
	}
	return fmt.Sprintf("Unexpected error in processing: %v", err)
}
