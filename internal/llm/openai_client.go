package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	HTTP      *http.Client
	Timeout   time.Duration
}

// Compile-time interface conformance
var _ VisionClient = (*OpenAIClient)(nil)

// NewOpenAIClient crea un nuevo proveedor OpenAI.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		Model:     model,
		MaxTokens: 1000,
		HTTP:      &http.Client{},
		Timeout:   DefaultTimeout,
	}
}

// client is built per call so tests can tweak fields after construction.
func (c *OpenAIClient) client() *openai.Client {
	cfg := openai.DefaultConfig(c.APIKey)
	cfg.BaseURL = c.BaseURL
	if c.HTTP != nil {
		cfg.HTTPClient = c.HTTP
	}
	return openai.NewClientWithConfig(cfg)
}

// Ping lists models; any answer other than 200 is a failure.
func (c *OpenAIClient) Ping(ctx context.Context) error {
	if c.APIKey == "" {
		return fmt.Errorf("openai api key is empty")
	}
	to := c.Timeout
	if to <= 0 || to > 5*time.Second {
		to = 5 * time.Second
	}
	ctx, cancel := withTimeout(ctx, to)
	defer cancel()

	if _, err := c.client().ListModels(ctx); err != nil {
		me := c.classify(ctx, err)
		observePing("openai", me)
		return fmt.Errorf("openai ping failed: %w", me)
	}
	observePing("openai", nil)
	return nil
}

// Chat llama al modelo de OpenAI en modo no-stream
func (c *OpenAIClient) Chat(ctx context.Context, prompt string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
}

// ChatImage attaches the image as a data URL.
func (c *OpenAIClient) ChatImage(ctx context.Context, prompt string, img Image) (string, error) {
	url := fmt.Sprintf("data:%s;base64,%s", img.MediaType, base64.StdEncoding.EncodeToString(img.Data))
	return c.complete(ctx, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    url,
				Detail: openai.ImageURLDetailAuto,
			}},
		},
	})
}

func (c *OpenAIClient) complete(ctx context.Context, msg openai.ChatCompletionMessage) (string, error) {
	if c.APIKey == "" {
		return "", &ModelError{Provider: "openai", Kind: KindRejected, Err: fmt.Errorf("openai api key is empty")}
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    []openai.ChatCompletionMessage{msg},
		MaxTokens:   c.MaxTokens,
		Temperature: 0,
	})
	if err != nil {
		me := c.classify(ctx, err)
		observeChat("openai", start, me)
		return "", me
	}
	if len(resp.Choices) == 0 {
		me := malformed("openai", fmt.Errorf("openai: empty response"))
		observeChat("openai", start, me)
		return "", me
	}

	observeChat("openai", start, nil)
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) classify(ctx context.Context, err error) *ModelError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError("openai", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError("openai", reqErr.HTTPStatusCode, fmt.Sprint(reqErr.Err))
	}
	return transportError("openai", ctx, err)
}
