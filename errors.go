package transloader

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials is returned by New when the API key or secret is empty.
	ErrNoCredentials = errors.New("transloader: missing API key or secret")

	// ErrNoAssemblyURL is returned when a create or replay response lacks
	// the assembly_url field needed to build a handle.
	ErrNoAssemblyURL = errors.New("transloader: response missing assembly_url")
)

// RemoteError is an error reported by the Transloadit API. It is returned
// whenever a response body declares an error code, or the HTTP status falls
// outside the 200–399 range, or a success status carries a body that is not
// the expected JSON document.
type RemoteError struct {
	// Message is the server's error message, or the raw response body when
	// the server did not send a structured error.
	Message string

	// Code is the server's error code, e.g. "INVALID_FILE_META_DATA".
	// Empty when the failure was detected from the HTTP status alone.
	Code string

	// Status is the HTTP status code of the response.
	Status int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("transloader: %s (%d): %s", e.Code, e.Status, e.Message)
}
