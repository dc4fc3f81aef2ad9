package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies model failures.
type ErrorKind int

const (
	// KindUnavailable: the provider could not be reached or answered 5xx.
	KindUnavailable ErrorKind = iota
	// KindRejected: the provider refused the request (4xx).
	KindRejected
	// KindTimeout: the advisory timeout expired.
	KindTimeout
	// KindMalformed: the provider answered with something we cannot use.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRejected:
		return "rejected"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ModelError is returned by every provider and prompt helper.
type ModelError struct {
	Provider string
	Kind     ErrorKind
	Status   int
	// TooLarge is set when the provider rejected the request for its size.
	TooLarge bool
	Err      error
}

func (e *ModelError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s model %s (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s model %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// IsTooLarge reports whether err is a model rejection caused by request size.
func IsTooLarge(err error) bool {
	var me *ModelError
	return errors.As(err, &me) && me.TooLarge
}

// transportError classifies an error returned before any HTTP status was seen.
func transportError(provider string, ctx context.Context, err error) *ModelError {
	if errors.Is(err, context.DeadlineExceeded) || (ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return &ModelError{Provider: provider, Kind: KindTimeout, Err: err}
	}
	return &ModelError{Provider: provider, Kind: KindUnavailable, Err: err}
}

// statusError classifies a non-200 answer. Only a 413 or a message naming a
// size or token limit marks the rejection as too large.
func statusError(provider string, status int, message string) *ModelError {
	kind := KindRejected
	if status >= 500 {
		kind = KindUnavailable
	}
	return &ModelError{
		Provider: provider,
		Kind:     kind,
		Status:   status,
		TooLarge: status == http.StatusRequestEntityTooLarge || (status < 500 && mentionsSizeLimit(message)),
		Err:      fmt.Errorf("%s request failed: status %d, body: %s", provider, status, message),
	}
}

var sizeLimitHints = []string{
	"too long",
	"too large",
	"too_large",
	"too many tokens",
	"maximum context",
	"context length",
	"context window",
	"token limit",
	"max_tokens",
	"exceeds the limit",
	"exceeds the maximum",
}

func mentionsSizeLimit(message string) bool {
	m := strings.ToLower(message)
	for _, h := range sizeLimitHints {
		if strings.Contains(m, h) {
			return true
		}
	}
	return false
}

func malformed(provider string, err error) *ModelError {
	return &ModelError{Provider: provider, Kind: KindMalformed, Err: err}
}
