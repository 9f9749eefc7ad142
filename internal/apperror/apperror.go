// Package apperror holds the error taxonomy shared by the forecast store,
// the upstream clients and the planning services. Handlers translate these
// into HTTP responses through Status.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError: istemci girdisi hatalı, hiçbir kayıt/ağ işlemi yapılmadı.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s bulunamadı (id=%v)", e.Resource, e.ID)
}

func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError signals a duplicate purchase order, detected either by the
// local lookback check or by ERP itself (409).
type ConflictError struct {
	// ExistingID is set when the duplicate was found locally.
	ExistingID *int64
	Message    string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// UpstreamError: ERP/Catalog cevap verdi ama başarısız status döndü.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s hata döndü (status %d): %s", e.Service, e.StatusCode, e.Body)
}

// UpstreamUnavailableError covers transport failures, non-success reads and
// malformed payloads on the read path.
type UpstreamUnavailableError struct {
	Service string
	Err     error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s servisine ulaşılamadı: %v", e.Service, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

func Unavailable(service string, err error) error {
	return &UpstreamUnavailableError{Service: service, Err: err}
}

// Status maps an error from this package to an HTTP status code. Unknown
// errors map to 500.
func Status(err error) int {
	var (
		validation  *ValidationError
		notFound    *NotFoundError
		conflict    *ConflictError
		upstream    *UpstreamError
		unavailable *UpstreamUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &upstream), errors.As(err, &unavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsKnown reports whether err belongs to the taxonomy.
func IsKnown(err error) bool {
	return Status(err) != http.StatusInternalServerError
}
