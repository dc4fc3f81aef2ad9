package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type OllamaClient struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Asegura que implementa la interfaz
var _ VisionClient = (*OllamaClient)(nil)

func NewOllamaClient(baseURL, model string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaClient{
		BaseURL:    baseURL,
		Model:      model,
		HTTPClient: &http.Client{},
		Timeout:    DefaultTimeout,
	}
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

func (c *OllamaClient) Chat(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, ollamaMessage{Role: "user", Content: prompt})
}

// ChatImage needs a multimodal model (llava, qwen2.5vl...).
func (c *OllamaClient) ChatImage(ctx context.Context, prompt string, img Image) (string, error) {
	return c.chat(ctx, ollamaMessage{
		Role:    "user",
		Content: prompt,
		Images:  []string{base64.StdEncoding.EncodeToString(img.Data)},
	})
}

func (c *OllamaClient) chat(ctx context.Context, msg ollamaMessage) (string, error) {
	data, err := json.Marshal(ollamaChatRequest{
		Model:    c.Model,
		Messages: []ollamaMessage{msg},
		Stream:   true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		me := transportError("ollama", ctx, err)
		observeChat("ollama", start, me)
		return "", me
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		me := statusError("ollama", resp.StatusCode, string(b))
		observeChat("ollama", start, me)
		return "", me
	}

	// el stream llega como objetos JSON concatenados
	dec := json.NewDecoder(resp.Body)
	var out bytes.Buffer
	for {
		var chunk struct {
			Message *struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			Done bool `json:"done"`
		}
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var me *ModelError
			if ctx.Err() != nil {
				me = transportError("ollama", ctx, err)
			} else {
				me = malformed("ollama", err)
			}
			observeChat("ollama", start, me)
			return "", me
		}
		if chunk.Message != nil {
			out.WriteString(chunk.Message.Content)
		}
		if chunk.Done {
			break
		}
	}

	observeChat("ollama", start, nil)
	return out.String(), nil
}

// Ping checks if Ollama is reachable and responding.
func (c *OllamaClient) Ping(ctx context.Context) error {
	// Ollama health: GET /api/tags
	ctx, cancel := withTimeout(ctx, time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		observePing("ollama", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("llm ping failed: status %d", resp.StatusCode)
		observePing("ollama", err)
		return err
	}
	observePing("ollama", nil)
	return nil
}

func (c *OllamaClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
