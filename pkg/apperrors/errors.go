package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownQuery    = errors.New("unknown query template")
)

// UpstreamError reports a failed call to the Knora backend: a transport
// failure or an error envelope in the response.
type UpstreamError struct {
	Op         string // backend operation, e.g. "getResource"
	StatusCode int    // 0 for transport failures
	Payload    string // knora-api:error text, or the raw body
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Payload != "":
		return fmt.Sprintf("%s: upstream status %d: %s", e.Op, e.StatusCode, e.Payload)
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": upstream failure"
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is lets callers match upstream status families against the sentinels.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// IsRetryable reports transient failures: transport errors, 429 and 5xx.
func (e *UpstreamError) IsRetryable() bool {
	if e.StatusCode == 0 {
		return e.Err != nil
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// SchemaResolutionError reports a class or property that is missing from a
// fetched ontology, or an ontology that could not be fetched for a schema lookup.
type SchemaResolutionError struct {
	OntologyIRI string
	ClassIRI    string
	PropertyIRI string
	Err         error
}

func (e *SchemaResolutionError) Error() string {
	msg := "schema resolution failed for ontology " + e.OntologyIRI
	if e.ClassIRI != "" {
		msg += ", class " + e.ClassIRI
	}
	if e.PropertyIRI != "" {
		msg += ", property " + e.PropertyIRI
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaResolutionError) Unwrap() error { return e.Err }
