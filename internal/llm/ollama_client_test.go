package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPing_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"models":[{"name":"qwen3:0.6b"}]}`))
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "qwen3:0.6b")
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() unexpected error: %v", err)
	}
}

func TestPing_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "qwen3:0.6b")
	if err := c.Ping(context.Background()); err == nil {
		t.Fatalf("expected error when non-200 status")
	}
}

func TestChat_StreamsConcatenated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		bw := bufio.NewWriter(w)
		// two chunks with content, then done=true
		_ = json.NewEncoder(bw).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "Hello"},
			"done":    false,
		})
		bw.Flush()
		_ = json.NewEncoder(bw).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": ", world"},
			"done":    false,
		})
		bw.Flush()
		_ = json.NewEncoder(bw).Encode(map[string]any{"done": true})
		bw.Flush()
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "qwen3:0.6b")
	out, err := c.Chat(context.Background(), "Say hello")
	if err != nil {
		t.Fatalf("Chat() unexpected error: %v", err)
	}
	if out != "Hello, world" {
		t.Fatalf("unexpected chat output: %q", out)
	}
}

func TestChat_ErrorStatus(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "fail", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "qwen3:0.6b")
	_, err := c.Chat(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected error on non-200 status")
	}
	if !strings.Contains(err.Error(), "status 500") || !strings.Contains(err.Error(), "fail") {
		t.Fatalf("error should include status and body, got: %v", err)
	}
	var me *ModelError
	if !errors.As(err, &me) || me.Kind != KindUnavailable {
		t.Fatalf("expected unavailable ModelError, got: %#v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestChat_BadJSONChunk(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{invalid json}"))
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "qwen3:0.6b")
	_, err := c.Chat(context.Background(), "x")
	var me *ModelError
	if !errors.As(err, &me) || me.Kind != KindMalformed {
		t.Fatalf("expected malformed ModelError, got: %v", err)
	}
}

func TestChat_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "qwen3:0.6b")
	c.Timeout = 30 * time.Millisecond
	_, err := c.Chat(context.Background(), "x")
	var me *ModelError
	if !errors.As(err, &me) || me.Kind != KindTimeout {
		t.Fatalf("expected timeout ModelError, got: %v", err)
	}
}

func TestChatImage_SendsBase64(t *testing.T) {
	var got ollamaChatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "a cat"},
			"done":    true,
		})
	}))
	defer ts.Close()

	c := NewOllamaClient(ts.URL, "llava")
	out, err := c.ChatImage(context.Background(), "describe", Image{MediaType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("ChatImage() unexpected error: %v", err)
	}
	if out != "a cat" {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(got.Messages) != 1 || len(got.Messages[0].Images) != 1 || got.Messages[0].Images[0] != "cG5n" {
		t.Fatalf("image not sent as base64: %+v", got.Messages)
	}
}
