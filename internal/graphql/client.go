package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	gqlclient "github.com/hasura/go-graphql-client"

	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
	"github.com/ccastromar/aos-graphql-explorer/internal/metrics"
)

// DefaultTimeout bounds a single GraphQL round trip.
const DefaultTimeout = 20 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// Client posts GraphQL documents through the hasura client. One call, no retries.
type Client struct {
	HTTP    *http.Client
	Timeout time.Duration
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{HTTP: &http.Client{}, Timeout: timeout}
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors ResponseErrors  `json:"errors"`
}

// Introspect fetches the full schema of endpoint.
func (c *Client) Introspect(ctx context.Context, endpoint string) (*Schema, error) {
	logx.GraphQLRequest("Introspection", endpoint, IntrospectionQuery)

	data, err := c.do(ctx, "introspect", endpoint, IntrospectionQuery)
	if err != nil {
		return nil, err
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		metrics.GraphQLRequests.WithLabelValues("introspect", "malformed").Inc()
		return nil, &TransportError{URL: endpoint, Kind: Malformed, Err: fmt.Errorf("decode schema: %w", err)}
	}
	if s.Schema.QueryType == nil && len(s.Schema.Types) == 0 {
		metrics.GraphQLRequests.WithLabelValues("introspect", "malformed").Inc()
		return nil, &TransportError{URL: endpoint, Kind: Malformed, Err: errors.New("response has no __schema")}
	}
	logx.GraphQLResponse("Introspection", map[string]any{"types": len(s.Schema.Types)})
	metrics.GraphQLRequests.WithLabelValues("introspect", "ok").Inc()
	return &s, nil
}

// Execute runs query against endpoint and returns the decoded data object.
func (c *Client) Execute(ctx context.Context, endpoint, query string) (map[string]any, error) {
	logx.GraphQLRequest("Query", endpoint, query)

	data, err := c.do(ctx, "execute", endpoint, query)
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &out); err != nil {
			metrics.GraphQLRequests.WithLabelValues("execute", "malformed").Inc()
			return nil, &TransportError{URL: endpoint, Kind: Malformed, Err: fmt.Errorf("decode data: %w", err)}
		}
	}
	logx.GraphQLResponse("Query", out)
	metrics.GraphQLRequests.WithLabelValues("execute", "ok").Inc()
	return out, nil
}

// do returns the raw data member, or a classified *TransportError.
func (c *Client) do(ctx context.Context, op, endpoint, query string) (json.RawMessage, error) {
	fail := func(kind TransportKind, status int, err error) error {
		metrics.GraphQLRequests.WithLabelValues(op, kind.String()).Inc()
		return &TransportError{URL: endpoint, Kind: kind, Status: status, Err: err}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	to := c.Timeout
	if to <= 0 {
		to = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, to)
	defer cancel()

	httpClient := http.Client{}
	if c.HTTP != nil {
		httpClient = *c.HTTP
	}
	httpClient.Transport = limitedTransport{base: httpClient.Transport}
	gql := gqlclient.NewClient(endpoint, &httpClient)

	data, err := gql.ExecRaw(ctx, query, nil)
	if err == nil {
		return data, nil
	}

	var errs gqlclient.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return nil, fail(Unreachable, 0, err)
	}

	cause := errs[0].Unwrap()
	if cause == nil {
		// the endpoint answered with a regular errors array
		return nil, fail(Rejected, http.StatusOK, toResponseErrors(errs))
	}

	var ne networkError
	if errors.As(cause, &ne) {
		status, body := ne.StatusCode(), []byte(ne.Body())
		switch {
		case status == http.StatusRequestEntityTooLarge:
			return nil, fail(PayloadTooLarge, status, fmt.Errorf("status %d: %s", status, truncate(body)))
		case status >= 500:
			return nil, fail(Unreachable, status, fmt.Errorf("status %d: %s", status, truncate(body)))
		}
		// many servers answer 400 with a regular errors array
		var r response
		if json.Unmarshal(body, &r) == nil && len(r.Errors) > 0 {
			return nil, fail(Rejected, status, r.Errors)
		}
		return nil, fail(Rejected, status, fmt.Errorf("status %d: %s", status, truncate(body)))
	}

	var urlErr *url.Error
	var netErr net.Error
	if ctx.Err() != nil || errors.As(cause, &urlErr) || errors.As(cause, &netErr) {
		return nil, fail(Unreachable, 0, cause)
	}
	return nil, fail(Malformed, http.StatusOK, fmt.Errorf("decode response: %w", cause))
}

// networkError matches the non-200 error of the GraphQL client.
type networkError interface {
	error
	StatusCode() int
	Body() string
}

func toResponseErrors(errs gqlclient.Errors) ResponseErrors {
	var out ResponseErrors
	if b, err := json.Marshal(errs); err == nil && json.Unmarshal(b, &out) == nil && len(out) > 0 {
		return out
	}
	for _, e := range errs {
		out = append(out, ResponseError{Message: e.Message})
	}
	return out
}

// limitedTransport caps how much of a response body is read.
type limitedTransport struct {
	base http.RoundTripper
}

func (t limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Body = struct {
		io.Reader
		io.Closer
	}{io.LimitReader(resp.Body, maxResponseBytes), resp.Body}
	return resp, nil
}

func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
