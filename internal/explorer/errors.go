package explorer

import (
	"errors"
	"fmt"

	"github.com/ccastromar/aos-graphql-explorer/internal/graphql"
	"github.com/ccastromar/aos-graphql-explorer/internal/llm"
)

const tooLargeMessage = "That query was too large for the API. Could you try a more specific question?"

// DiscoveryFailure: introspection was unreachable, rejected or malformed.
type DiscoveryFailure struct {
	URL string
	Err error
}

func (e *DiscoveryFailure) Error() string {
	return fmt.Sprintf("discover %s: %v", e.URL, e.Err)
}

func (e *DiscoveryFailure) Unwrap() error { return e.Err }

func (e *DiscoveryFailure) Message() string {
	return fmt.Sprintf("I had trouble analyzing the API at %s: %v. Could you check the endpoint and try again?", e.URL, e.Err)
}

// SummarizationFailure: the schema was fetched but the model could not
// summarize it. Nothing is registered.
type SummarizationFailure struct {
	URL string
	Err error
}

func (e *SummarizationFailure) Error() string {
	return fmt.Sprintf("summarize %s: %v", e.URL, e.Err)
}

func (e *SummarizationFailure) Unwrap() error { return e.Err }

func (e *SummarizationFailure) Message() string {
	return fmt.Sprintf("I reached %s but couldn't work out what it offers (%v). Share the URL again to retry.", e.URL, e.Err)
}

// Stage names where a query turn can fail.
const (
	StageDraft   = "draft"
	StageParse   = "parse"
	StageGuard   = "guard"
	StageExecute = "execute"
	StageNarrate = "narrate"
)

// QueryExecutionFailure covers every failure after an API was chosen.
type QueryExecutionFailure struct {
	API   string
	Stage string
	Err   error
}

func (e *QueryExecutionFailure) Error() string {
	return fmt.Sprintf("query %s (%s): %v", e.API, e.Stage, e.Err)
}

func (e *QueryExecutionFailure) Unwrap() error { return e.Err }

// TooLarge is true for an HTTP 413 from the endpoint or a size rejection
// from the model.
func (e *QueryExecutionFailure) TooLarge() bool {
	return graphql.IsPayloadTooLarge(e.Err) || llm.IsTooLarge(e.Err)
}

func (e *QueryExecutionFailure) Message() string {
	if e.TooLarge() {
		return tooLargeMessage
	}
	return fmt.Sprintf("I ran into an issue: %v. Would you like to try a different approach?", e.Err)
}

// userMessage renders any failure of a turn as text for the user.
func userMessage(err error) string {
	var (
		df *DiscoveryFailure
		sf *SummarizationFailure
		qf *QueryExecutionFailure
	)
	switch {
	case errors.As(err, &df):
		return df.Message()
	case errors.As(err, &sf):
		return sf.Message()
	case errors.As(err, &qf):
		return qf.Message()
	default:
		return fmt.Sprintf("I ran into an issue: %v. Would you like to try a different approach?", err)
	}
}
