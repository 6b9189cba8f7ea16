package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/translation"
	"github.com/iav0207/fcards2-sub001/internal/translation/llm"
	"google.golang.org/genai"
)

// Name is the provider name used in configuration and results.
const Name = "gemini"

// contentGenerator is the part of the genai client this package uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// completer sends prompts to a Gemini model.
type completer struct {
	// models is the Gemini API surface for making requests
	models contentGenerator

	// model is the name of the Gemini model to use
	model string
}

// New creates a Gemini translation provider.
//
// Parameters:
//   - ctx: Context for client initialization
//   - logger: A structured logger for operation logging
//   - cfg: Gemini settings containing the API key and model name
//   - retry: Retry policy for transient API failures
//
// Returns:
//   - A translation provider named "gemini"
//   - An error wrapping translation.ErrInvalidConfig if initialization fails
func New(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.GeminiConfig,
	retry translation.RetryPolicy,
) (*llm.Provider, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", translation.ErrInvalidConfig, err)
	}

	return newProvider(logger, client.Models, cfg.Model, retry)
}

func newProvider(
	logger *slog.Logger,
	models contentGenerator,
	model string,
	retry translation.RetryPolicy,
) (*llm.Provider, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", translation.ErrInvalidConfig)
	}
	logger.Info("initializing Gemini translation provider", slog.String("model", model))
	return llm.NewProvider(Name, &completer{models: models, model: model}, retry, logger)
}

func validateConfig(cfg config.GeminiConfig) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", translation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return fmt.Errorf("%w: gemini model name cannot be empty", translation.ErrInvalidConfig)
	}
	return nil
}

// Complete calls GenerateContent once and returns the concatenated text of
// the first candidate.
func (c *completer) Complete(ctx context.Context, req llm.Request) (string, error) {
	var genConfig *genai.GenerateContentConfig
	if req.JSON {
		genConfig = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), genConfig)
	switch {
	case err != nil:
		return "", llm.ClassifyError(err)
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", translation.ErrInvalidResponse)
	case resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "":
		return "", fmt.Errorf("%w: prompt blocked: %s", translation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	case len(resp.Candidates) == 0:
		return "", fmt.Errorf("%w: no content generated", translation.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", translation.ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", translation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: response has no text", translation.ErrInvalidResponse)
	}
	return text.String(), nil
}
