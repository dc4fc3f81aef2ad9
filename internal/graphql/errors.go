package graphql

import (
	"errors"
	"fmt"
)

// TransportKind classifies endpoint failures.
type TransportKind int

const (
	// Unreachable: connection refused, DNS, timeout, 5xx.
	Unreachable TransportKind = iota
	// Malformed: the body is not a GraphQL response.
	Malformed
	// Rejected: 4xx or a GraphQL errors array.
	Rejected
	// PayloadTooLarge: HTTP 413.
	PayloadTooLarge
)

func (k TransportKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Malformed:
		return "malformed"
	case Rejected:
		return "rejected"
	case PayloadTooLarge:
		return "payload too large"
	default:
		return "unknown"
	}
}

type TransportError struct {
	URL    string
	Kind   TransportKind
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("graphql %s %s (status %d): %v", e.URL, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("graphql %s %s: %v", e.URL, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsPayloadTooLarge reports whether err came from an HTTP 413.
func IsPayloadTooLarge(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == PayloadTooLarge
}

// ResponseError is one entry of a GraphQL errors array.
type ResponseError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// ResponseErrors is returned (wrapped in a TransportError) when the
// endpoint answered 200 with a non-empty errors array.
type ResponseErrors []ResponseError

func (r ResponseErrors) Error() string {
	if len(r) == 0 {
		return "graphql errors"
	}
	if len(r) == 1 {
		return r[0].Message
	}
	return fmt.Sprintf("%s (and %d more)", r[0].Message, len(r)-1)
}
