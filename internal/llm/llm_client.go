package llm

import (
	"context"
	"time"

	"github.com/ccastromar/aos-graphql-explorer/internal/metrics"
)

// DefaultTimeout bounds every model call. On expiry the call fails; it is
// never retried.
const DefaultTimeout = 30 * time.Second

type LLMClient interface {
	Ping(ctx context.Context) error
	Chat(ctx context.Context, prompt string) (string, error)
}

// Image is a raw image plus its media type (image/png, image/jpeg...).
type Image struct {
	MediaType string
	Data      []byte
}

// VisionClient is implemented by providers that can look at images.
type VisionClient interface {
	LLMClient
	ChatImage(ctx context.Context, prompt string, img Image) (string, error)
}

// withTimeout derives the per-call context.
func withTimeout(ctx context.Context, to time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if to <= 0 {
		to = DefaultTimeout
	}
	return context.WithTimeout(ctx, to)
}

func observeChat(provider string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMChats.WithLabelValues(provider, outcome).Inc()
	metrics.LLMChatDur.WithLabelValues(provider, outcome).Observe(time.Since(start).Seconds())
}

func observePing(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMPings.WithLabelValues(provider, outcome).Inc()
}
