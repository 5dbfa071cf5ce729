package records

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("records: not found")

	// ErrNotSupported is returned for operations the system of record does not offer.
	ErrNotSupported = errors.New("records: operation not supported")

	// ErrUnauthorized is returned when the credentials are missing or rejected.
	ErrUnauthorized = errors.New("records: unauthorized")

	// ErrInvalidCredentials is returned when a username/password pair does not match.
	ErrInvalidCredentials = errors.New("records: invalid credentials")
)

// UpstreamError is a non-2xx answer from the system of record.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// Is lets callers match upstream answers against the package sentinels.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotSupported:
		return e.Status == http.StatusNotImplemented
	}
	return false
}

// FieldErrors maps form fields to user-facing messages. A non-empty value is a
// validation failure that must never reach the network.
type FieldErrors map[string]string

// Add records the first message for field.
func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// Err returns f as an error, or nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+f[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsFieldErrors extracts validation failures from err.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
