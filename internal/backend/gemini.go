package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
}

// GeminiCompleter answers through the Gemini API. Provider and WebSearch in
// a Request are ignored.
type GeminiCompleter struct {
	client *genai.Client
	logger logging.Logger
}

func NewGeminiCompleter(ctx context.Context, cfg GeminiConfig, logger logging.Logger) (*GeminiCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiCompleter{client: client, logger: logger}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, req Request) (Response, error) {
	sys, rest := split(req.Messages)

	contents := make([]*genai.Content, 0, len(rest))
	for _, m := range rest {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	var config *genai.GenerateContentConfig
	if sys != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(sys, genai.RoleUser),
		}
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return Response{}, fromGenAIError(err)
	}
	c.logger.Debug(ctx, "completion finished", "model", req.Model, "elapsed", time.Since(start))

	if result == nil || len(result.Candidates) == 0 {
		return Response{}, fmt.Errorf("%w: no candidates returned", ErrBackendMalformedResponse)
	}
	return Response{Text: result.Text(), Model: result.ModelVersion}, nil
}

func fromGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return convertGenAIError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return convertGenAIError(*apiErrPtr)
	}
	return fmt.Errorf("generate content: %w", err)
}

func convertGenAIError(e genai.APIError) *APIError {
	return &APIError{
		Status:   e.Code,
		Code:     strings.ToLower(e.Status),
		Message:  e.Message,
		QuotaIDs: quotaIDs(e.Details),
	}
}

// quotaIDs extracts violations[].quotaId from google.rpc.QuotaFailure details.
func quotaIDs(details []map[string]any) []string {
	var ids []string
	for _, d := range details {
		violations, _ := d["violations"].([]any)
		for _, v := range violations {
			m, _ := v.(map[string]any)
			if id, ok := m["quotaId"].(string); ok && id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
