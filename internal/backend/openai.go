package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/otvetbot/internal/logging"
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	BaseURL string
	// APIKey is optional; local gateways usually accept anonymous requests.
	APIKey  string
	Timeout time.Duration
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

type OpenAICompleter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

func NewOpenAICompleter(cfg OpenAIConfig, logger logging.Logger) *OpenAICompleter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAICompleter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		logger:     logger,
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Provider  string          `json:"provider,omitempty"`
	Messages  []openAIMessage `json:"messages"`
	WebSearch bool            `json:"web_search"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *openAIError `json:"error"`
}

func (c *OpenAICompleter) Complete(ctx context.Context, req Request) (Response, error) {
	body := openAIRequest{
		Model:     req.Model,
		Provider:  req.Provider,
		Messages:  make([]openAIMessage, 0, len(req.Messages)),
		WebSearch: req.WebSearch,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug(ctx, "completion finished", "model", req.Model, "provider", req.Provider,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	var out openAIResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != nil {
			return Response{}, toAPIError(resp.StatusCode, out.Error)
		}
		return Response{}, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if decodeErr != nil {
		return Response{}, fmt.Errorf("decode response: %w", decodeErr)
	}
	if out.Error != nil {
		return Response{}, toAPIError(resp.StatusCode, out.Error)
	}
	if len(out.Choices) == 0 {
		return Response{}, fmt.Errorf("%w: no choices returned", ErrBackendMalformedResponse)
	}

	return Response{Text: out.Choices[0].Message.Content, Model: out.Model}, nil
}

func toAPIError(status int, e *openAIError) *APIError {
	code := e.Type
	switch v := e.Code.(type) {
	case string:
		if v != "" {
			code = v
		}
	case float64:
		code = fmt.Sprintf("%.0f", v)
	}
	return &APIError{Status: status, Code: code, Message: e.Message}
}
