package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/translation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeModels records GenerateContent calls and replays scripted responses.
type fakeModels struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	models    []string
	configs   []*genai.GenerateContentConfig
	prompts   []string
}

func (f *fakeModels) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	i := len(f.models)
	f.models = append(f.models, model)
	f.configs = append(f.configs, config)
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, errors.New("no scripted response")
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

func newTestProvider(t *testing.T, models *fakeModels) translation.Provider {
	t.Helper()
	_, log := logger.NewTestLogger(t)
	p, err := newProvider(log, models, "gemini-2.0-flash", translation.RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond})
	require.NoError(t, err)
	return p
}

var evalReq = domain.EvaluationRequest{
	SourceContent:        "thank you",
	SourceLanguage:       "en",
	TargetLanguage:       "de",
	UserTranslation:      "Danke",
	ReferenceTranslation: "Danke",
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateConfig(config.GeminiConfig{APIKey: "k", Model: "m"}))
	assert.ErrorIs(t, validateConfig(config.GeminiConfig{Model: "m"}), translation.ErrInvalidConfig)
	assert.ErrorIs(t, validateConfig(config.GeminiConfig{APIKey: "k"}), translation.ErrInvalidConfig)

	_, log := logger.NewTestLogger(t)
	_, err := New(context.Background(), log, config.GeminiConfig{}, translation.RetryPolicy{})
	assert.ErrorIs(t, err, translation.ErrInvalidConfig)
}

func TestEvaluateTranslation(t *testing.T) {
	t.Parallel()

	models := &fakeModels{responses: []*genai.GenerateContentResponse{
		textResponse(`{"correct": true, "score": 1, "feedback": "Perfect.", "suggested_translation": "Danke"}`),
	}}
	p := newTestProvider(t, models)

	res, err := p.EvaluateTranslation(context.Background(), evalReq)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, "Danke", res.SuggestedTranslation)

	assert.Equal(t, []string{"gemini-2.0-flash"}, models.models)
	require.NotNil(t, models.configs[0])
	assert.Equal(t, "application/json", models.configs[0].ResponseMIMEType)
	assert.Contains(t, models.prompts[0], `"thank you"`)
	assert.Equal(t, Name, p.Name())
}

func TestGenerateTranslation(t *testing.T) {
	t.Parallel()

	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("Gute Nacht\n")}}
	p := newTestProvider(t, models)

	got, err := p.GenerateTranslation(context.Background(), domain.GenerationRequest{
		Content: "good night", SourceLanguage: "en", TargetLanguage: "de",
	})
	require.NoError(t, err)
	assert.Equal(t, "Gute Nacht", got)
	assert.Nil(t, models.configs[0])
}

func TestCompleteErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		err     error
		want    error
		retried bool
	}{
		{
			name: "invalid key",
			err:  errors.New("Error 400, Message: API key not valid. Please pass a valid API key., Status: INVALID_ARGUMENT"),
			want: translation.ErrAPIKey,
		},
		{
			name:    "unavailable",
			err:     errors.New("Error 503, Message: The model is overloaded., Status: UNAVAILABLE"),
			want:    translation.ErrTransientFailure,
			retried: true,
		},
		{
			name: "safety",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
			want: translation.ErrContentBlocked,
		},
		{
			name: "blocked prompt",
			resp: &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{
				BlockReason: genai.BlockedReasonSafety,
			}},
			want: translation.ErrContentBlocked,
		},
		{
			name: "no candidates",
			resp: &genai.GenerateContentResponse{},
			want: translation.ErrInvalidResponse,
		},
		{
			name: "empty text",
			resp: textResponse(""),
			want: translation.ErrInvalidResponse,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			models := &fakeModels{}
			if tc.err != nil {
				models.errs = []error{tc.err, tc.err}
			} else {
				models.responses = []*genai.GenerateContentResponse{tc.resp, tc.resp}
			}
			p := newTestProvider(t, models)

			_, err := p.GenerateTranslation(context.Background(), domain.GenerationRequest{
				Content: "hello", SourceLanguage: "en", TargetLanguage: "de",
			})
			assert.ErrorIs(t, err, tc.want)
			if tc.retried {
				assert.Len(t, models.models, 2)
			} else {
				assert.Len(t, models.models, 1)
			}
		})
	}
}
