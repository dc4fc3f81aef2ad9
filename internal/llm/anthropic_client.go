package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-5-sonnet-latest"
	defaultSystemPrompt     = "You are an API research assistant helping users explore GraphQL APIs."
)

type AnthropicClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	System    string
	HTTP      *http.Client
	Timeout   time.Duration
}

// Compile-time interface conformance
var _ VisionClient = (*AnthropicClient)(nil)

// NewAnthropicClient accepts the base URL with or without the /v1 suffix.
func NewAnthropicClient(baseURL, apiKey, model string) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicClient{
		BaseURL:   strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1"),
		APIKey:    apiKey,
		Model:     model,
		MaxTokens: 1000,
		System:    defaultSystemPrompt,
		HTTP:      &http.Client{},
		Timeout:   DefaultTimeout,
	}
}

func (c *AnthropicClient) client() anthropic.Client {
	opts := []option.RequestOption{
		option.WithBaseURL(c.BaseURL),
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(0),
	}
	if c.HTTP != nil {
		opts = append(opts, option.WithHTTPClient(c.HTTP))
	}
	return anthropic.NewClient(opts...)
}

// Ping checks the key against the models listing.
func (c *AnthropicClient) Ping(ctx context.Context) error {
	if c.APIKey == "" {
		return fmt.Errorf("anthropic api key is empty")
	}
	ctx, cancel := withTimeout(ctx, min(c.Timeout, 5*time.Second))
	defer cancel()

	cl := c.client()
	if _, err := cl.Models.List(ctx, anthropic.ModelListParams{}); err != nil {
		observePing("anthropic", err)
		return fmt.Errorf("anthropic ping failed: %w", err)
	}
	observePing("anthropic", nil)
	return nil
}

// Chat sends a single user message and returns the first text block.
func (c *AnthropicClient) Chat(ctx context.Context, prompt string) (string, error) {
	return c.send(ctx, prompt, anthropic.NewTextBlock(prompt))
}

// ChatImage sends the prompt followed by a base64 image block.
func (c *AnthropicClient) ChatImage(ctx context.Context, prompt string, img Image) (string, error) {
	return c.send(ctx, prompt,
		anthropic.NewTextBlock(prompt),
		anthropic.NewImageBlockBase64(img.MediaType, base64.StdEncoding.EncodeToString(img.Data)),
	)
}

func (c *AnthropicClient) send(ctx context.Context, prompt string, blocks ...anthropic.ContentBlockParamUnion) (string, error) {
	if c.APIKey == "" {
		return "", &ModelError{Provider: "anthropic", Kind: KindRejected, Err: fmt.Errorf("anthropic api key is empty")}
	}
	if strings.TrimSpace(prompt) == "" {
		return "", &ModelError{Provider: "anthropic", Kind: KindRejected, Err: fmt.Errorf("invalid message content")}
	}

	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.Model),
		MaxTokens: int64(maxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if c.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.System}}
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	cl := c.client()
	msg, err := cl.Messages.New(ctx, params)
	if err != nil {
		me := classifyAnthropic(ctx, err)
		observeChat("anthropic", start, me)
		return "", me
	}

	// only the first text block is used
	for _, block := range msg.Content {
		if block.Type == "text" {
			observeChat("anthropic", start, nil)
			return block.Text, nil
		}
	}
	observeChat("anthropic", start, nil)
	return "", nil
}

type anthropicErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func classifyAnthropic(ctx context.Context, err error) *ModelError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		var body anthropicErrorBody
		_ = json.Unmarshal([]byte(apiErr.RawJSON()), &body)
		msg := body.Error.Message
		if msg == "" {
			msg = apiErr.RawJSON()
		}
		if body.Error.Type != "" {
			msg = body.Error.Type + ": " + msg
		}
		return statusError("anthropic", apiErr.StatusCode, msg)
	}
	var urlErr *url.Error
	var netErr net.Error
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return transportError("anthropic", ctx, err)
	}
	// anything else failed while decoding the answer
	return malformed("anthropic", err)
}
