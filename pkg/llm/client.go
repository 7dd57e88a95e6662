package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrProvider wraps non-200 replies and error payloads from the backend.
	ErrProvider = errors.New("llm provider error")
	// ErrEmptyCompletion is returned when the reply carries no choices.
	ErrEmptyCompletion = errors.New("completion has no choices")
)

// maxResponseBytes caps the completion body read from the backend.
const maxResponseBytes = 1 << 20

// Client is the chat backend behind the cargo classifier.
type Client interface {
	// Chat sends one system prompt and one user message and returns the
	// text of the first choice.
	Chat(ctx context.Context, systemPrompt, userQuery string) (string, error)
}

// OpenAIClient talks to any /chat/completions endpoint (OpenAI, Ollama, vLLM).
type OpenAIClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient initializes a new LLM client.
func NewClient(cfg Config) *OpenAIClient {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Chat performs one non-streaming completion.
func (c *OpenAIClient) Chat(ctx context.Context, systemPrompt, userQuery string) (string, error) {
	messages := make([]Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userQuery})

	payload := ChatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   max(c.cfg.MaxTokens, 0),
	}
	if c.cfg.JSONMode {
		payload.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	return c.complete(ctx, payload)
}

// complete posts payload and returns the first choice of the reply.
func (c *OpenAIClient) complete(ctx context.Context, payload ChatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(limited, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var completion ChatResponse
	if err := json.NewDecoder(limited).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode chat completion: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrProvider, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return completion.Choices[0].Message.Content, nil
}
