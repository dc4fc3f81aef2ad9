// Package vision is the image-aware chat: images are analyzed once and the
// analyses are handed to the model as context for every later message.
package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ccastromar/aos-graphql-explorer/internal/llm"
	"github.com/ccastromar/aos-graphql-explorer/internal/logx"
)

const defaultCacheSize = 64

var (
	ErrEmptyImage = errors.New("image is empty")
	ErrNoVision   = errors.New("the configured model provider cannot analyze images")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Session struct {
	model llm.LLMClient

	mu       sync.Mutex
	history  []Message
	analyses []string
	cache    *lru.ARCCache
}

func NewSession(model llm.LLMClient, cacheSize int) (*Session, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.NewARC(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create analysis cache: %w", err)
	}
	return &Session{model: model, cache: cache}, nil
}

// Say sends text to the model, prefixed with every analysis so far.
func (s *Session) Say(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		text = "Hello"
	}

	s.mu.Lock()
	prompt := s.contextLocked() + text
	s.mu.Unlock()

	out, err := s.model.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.history = append(s.history, Message{Role: "user", Content: text}, Message{Role: "assistant", Content: out})
	s.mu.Unlock()
	return out, nil
}

// Analyze runs the detailed analysis over img and keeps it as context.
// An image already analyzed in this session is not sent again.
func (s *Session) Analyze(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", ErrEmptyImage
	}
	v, ok := s.model.(llm.VisionClient)
	if !ok {
		return "", ErrNoVision
	}

	sum := sha256.Sum256(img)
	key := hex.EncodeToString(sum[:])

	if cached, ok := s.cache.Get(key); ok {
		logx.Debug("Chat", "image %s already analyzed", key[:12])
		analysis := cached.(string)
		s.record(analysis, false)
		return analysis, nil
	}

	mime := DetectMIME(img)
	logx.Info("Chat", "analyzing image: %d bytes, %s", len(img), mime)

	analysis, err := llm.AnalyzeImage(ctx, v, llm.Image{MediaType: mime, Data: img})
	if err != nil {
		return "", err
	}
	s.cache.Add(key, analysis)
	s.record(analysis, true)
	return analysis, nil
}

func (s *Session) record(analysis string, fresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fresh {
		s.analyses = append(s.analyses, analysis)
	}
	s.history = append(s.history, Message{Role: "user", Content: "Uploaded an image"}, Message{Role: "assistant", Content: analysis})
}

func (s *Session) contextLocked() string {
	if len(s.analyses) == 0 {
		return ""
	}
	return "Previous image analysis:\n" + strings.Join(s.analyses, "\n\n") + "\n\n"
}

// History returns a copy of the conversation so far.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...)
}

// Analyses returns the stored image analyses, oldest first.
func (s *Session) Analyses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.analyses...)
}
