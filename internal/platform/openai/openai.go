// Package openai provides a translation.Provider backed by the OpenAI chat
// completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/translation"
	"github.com/iav0207/fcards2-sub001/internal/translation/llm"
)

// Name is the provider name used in configuration and results.
const Name = "openai"

// DefaultBaseURL is the public OpenAI API.
const DefaultBaseURL = "https://api.openai.com/v1"

const systemPrompt = "You are a precise translator and language teacher. Follow the output format exactly."

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4 << 10

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Client sends prompts to the chat completions endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

// New creates an OpenAI translation provider. httpClient may be nil.
func New(logger *slog.Logger, cfg config.OpenAIConfig, retry translation.RetryPolicy, httpClient *http.Client) (*llm.Provider, error) {
	client, err := NewClient(cfg, httpClient)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", translation.ErrInvalidConfig)
	}
	logger.Info("initializing OpenAI translation provider",
		slog.String("model", cfg.Model),
		slog.String("endpoint", client.endpoint))

	return llm.NewProvider(Name, client, retry, logger)
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg config.OpenAIConfig, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", translation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: openai model name cannot be empty", translation.ErrInvalidConfig)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   baseURL + "/chat/completions",
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

// Complete posts one chat completion request and returns the first choice.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: 0.2,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", translation.ErrInvalidConfig, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send request: %w", translation.ErrTransientFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", llm.ClassifyStatus(resp.StatusCode, readAPIError(resp))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", translation.ErrInvalidResponse, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: API error: %s", translation.ErrProviderFailed, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices returned", translation.ErrInvalidResponse)
	}
	if parsed.Choices[0].FinishReason == "content_filter" {
		return "", fmt.Errorf("%w: content filtered", translation.ErrContentBlocked)
	}

	return parsed.Choices[0].Message.Content, nil
}

func readAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil {
		return fmt.Errorf("status %d: %s", resp.StatusCode, parsed.Error.Message)
	}
	return fmt.Errorf("status %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
