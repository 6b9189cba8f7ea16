package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iav0207/fcards2-sub001/internal/api/shared"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
)

// Translator is the translation surface exposed over HTTP.
type Translator interface {
	EvaluateTranslation(ctx context.Context, req domain.EvaluationRequest) (*domain.EvaluationResult, error)
	GenerateTranslation(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
	Primary() string
	Providers() []string
}

// TranslationHandler handles translation requests.
type TranslationHandler struct {
	translator Translator
	logger     *slog.Logger
}

// NewTranslationHandler creates a new TranslationHandler.
func NewTranslationHandler(translator Translator, logger *slog.Logger) *TranslationHandler {
	if translator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("translator cannot be nil for TranslationHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslationHandler{
		translator: translator,
		logger:     logger.With(slog.String("component", "translation_handler")),
	}
}

// Evaluate handles POST /translations/evaluate.
func (h *TranslationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req domain.EvaluationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.translator.EvaluateTranslation(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if result.Fallback {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("evaluation served by baseline",
			slog.Bool("provider_error", result.Error),
			slog.Bool("api_key_error", result.APIKeyError))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Generate handles POST /translations/generate.
func (h *TranslationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.translator.GenerateTranslation(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Health handles GET /health.
func (h *TranslationHandler) Health(w http.ResponseWriter, r *http.Request) {
	providers := h.translator.Providers()
	if providers == nil {
		providers = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:          "ok",
		PrimaryProvider: h.translator.Primary(),
		Providers:       providers,
	})
}
