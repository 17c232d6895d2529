// Package ai talks to an OpenAI-compatible chat-completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VoHoang203/VibeMelodyBE/internal/config"
	"golang.org/x/time/rate"
)

var (
	ErrNotConfigured = errors.New("ai provider not configured")
	ErrEmptyReply    = errors.New("ai provider returned no content")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TextGenerator produces a single reply for a conversation.
type TextGenerator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type OpenAIClient struct {
	apiKey  string
	url     string
	model   string
	http    *http.Client
	limiter *rate.Limiter
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	limit := rate.Limit(cfg.AIRateLimit)
	if cfg.AIRateLimit <= 0 {
		limit = rate.Inf
	}
	return &OpenAIClient{
		apiKey:  cfg.AIAPIKey,
		url:     cfg.AIAPIURL,
		model:   cfg.AIModel,
		http:    &http.Client{Timeout: cfg.AITimeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, messages []Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ai rate limit: %w", err)
	}

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: 0.7})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ai provider status %d after %s: %s", resp.StatusCode, time.Since(start).Round(time.Millisecond), snippet)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ai decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}
