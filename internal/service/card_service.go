package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/store"
	"github.com/iav0207/fcards2-sub001/internal/translation/baseline"
)

// CardServiceError is a custom error type for card service errors.
type CardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for CardServiceError.
func (e *CardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("card service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("card service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CardServiceError) Unwrap() error {
	return e.Err
}

// NewCardServiceError creates a new CardServiceError.
func NewCardServiceError(operation, message string, err error) *CardServiceError {
	return &CardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// Translator generates translations for new cards.
type Translator interface {
	GenerateTranslation(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

// CreateCardParams describes a new card.
type CreateCardParams struct {
	Content         string   `json:"content" validate:"required"`
	SourceLanguage  string   `json:"source_language" validate:"required,max=16"`
	Comment         string   `json:"comment"`
	UserTranslation string   `json:"user_translation"`
	Tags            []string `json:"tags"`
	// TranslateTo asks for a generated translation when UserTranslation is empty.
	TranslateTo string `json:"translate_to,omitempty" validate:"omitempty,max=16"`
}

// CardService provides card-related operations
type CardService interface {
	// Create validates and stores a new card, generating its translation
	// when requested.
	Create(ctx context.Context, params CreateCardParams) (*domain.FlashCard, error)

	// Save creates card when its ID is nil or unknown and updates the stored
	// card otherwise.
	Save(ctx context.Context, card *domain.FlashCard) (*domain.FlashCard, error)

	// Update applies a partial update to an existing card.
	Update(ctx context.Context, id uuid.UUID, update domain.CardUpdate) (*domain.FlashCard, error)

	// Get retrieves a card by its ID
	Get(ctx context.Context, id uuid.UUID) (*domain.FlashCard, error)

	// Delete removes a card. Sessions that reference it keep working.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the cards matching q.
	List(ctx context.Context, q store.CardQuery) ([]*domain.FlashCard, error)

	// AvailableTags aggregates the tags of one language's cards.
	AvailableTags(ctx context.Context, sourceLanguage string) (*domain.TagSummary, error)
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cards      store.CardStore
	translator Translator
	logger     *slog.Logger
}

// NewCardService creates a new CardService.
// translator may be nil, in which case TranslateTo is ignored.
func NewCardService(cards store.CardStore, translator Translator, logger *slog.Logger) (CardService, error) {
	if cards == nil {
		return nil, fmt.Errorf("%w: cards cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cards:      cards,
		translator: translator,
		logger:     logger.With(slog.String("component", "card_service")),
	}, nil
}

// Create implements CardService.Create
func (s *cardServiceImpl) Create(ctx context.Context, params CreateCardParams) (*domain.FlashCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewFlashCard(params.Content, params.SourceLanguage, params.Comment, params.UserTranslation, params.Tags)
	if err != nil {
		return nil, NewCardServiceError("create", "invalid card", fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}

	if card.UserTranslation == "" && params.TranslateTo != "" && s.translator != nil {
		card.UserTranslation = s.generateTranslation(ctx, card, params.TranslateTo)
	}

	if err := s.cards.Create(ctx, card); err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return nil, NewCardServiceError("create", "failed to save card", err)
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("source_language", card.SourceLanguage),
		slog.Int("tag_count", len(card.Tags)))
	return card, nil
}

// generateTranslation returns a generated translation for card, or an
// empty string when none is usable. Baseline misses are not stored.
func (s *cardServiceImpl) generateTranslation(ctx context.Context, card *domain.FlashCard, target string) string {
	log := logger.FromContextOrDefault(ctx, s.logger)

	res, err := s.translator.GenerateTranslation(ctx, domain.GenerationRequest{
		Content:        card.Content,
		SourceLanguage: card.SourceLanguage,
		TargetLanguage: domain.NormalizeLanguage(target),
	})
	if err != nil {
		log.Warn("translation generation failed, saving card without translation",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return ""
	}
	if res.Fallback && baseline.IsUntranslated(res.Translation) {
		log.Debug("no translation available for card", slog.String("card_id", card.ID.String()))
		return ""
	}
	return res.Translation
}

// Save implements CardService.Save
func (s *cardServiceImpl) Save(ctx context.Context, card *domain.FlashCard) (*domain.FlashCard, error) {
	if card == nil {
		return nil, NewCardServiceError("save", "card cannot be nil", domain.ErrValidation)
	}

	if card.ID != uuid.Nil {
		_, err := s.cards.GetByID(ctx, card.ID)
		switch {
		case err == nil:
			return s.Update(ctx, card.ID, domain.CardUpdate{
				Content:         &card.Content,
				SourceLanguage:  &card.SourceLanguage,
				Comment:         &card.Comment,
				UserTranslation: &card.UserTranslation,
				Tags:            &card.Tags,
			})
		case !errors.Is(err, store.ErrNotFound):
			return nil, NewCardServiceError("save", "failed to look up card", err)
		}
	}

	created, err := domain.NewFlashCard(card.Content, card.SourceLanguage, card.Comment, card.UserTranslation, card.Tags)
	if err != nil {
		return nil, NewCardServiceError("save", "invalid card", fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}
	if card.ID != uuid.Nil {
		created.ID = card.ID
	}
	if !card.CreatedAt.IsZero() {
		created.CreatedAt = card.CreatedAt.UTC()
		created.UpdatedAt = time.Now().UTC()
	}

	if err := s.cards.Create(ctx, created); err != nil {
		return nil, NewCardServiceError("save", "failed to save card", err)
	}
	return created, nil
}

// Update implements CardService.Update
func (s *cardServiceImpl) Update(ctx context.Context, id uuid.UUID, update domain.CardUpdate) (*domain.FlashCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, NewCardServiceError("update", "failed to retrieve card", err)
	}

	if err := card.Update(update); err != nil {
		return nil, NewCardServiceError("update", "invalid card", fmt.Errorf("%w: %w", domain.ErrValidation, err))
	}

	if err := s.cards.Update(ctx, card); err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, NewCardServiceError("update", "failed to save card", err)
	}
	return card, nil
}

// Get implements CardService.Get
func (s *cardServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.FlashCard, error) {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewCardServiceError("get", "card not found", store.ErrCardNotFound)
		}
		return nil, NewCardServiceError("get", "failed to retrieve card", err)
	}
	return card, nil
}

// Delete implements CardService.Delete
func (s *cardServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.cards.Delete(ctx, id); err != nil {
		return NewCardServiceError("delete", "failed to delete card", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("card deleted", slog.String("card_id", id.String()))
	return nil
}

// List implements CardService.List
func (s *cardServiceImpl) List(ctx context.Context, q store.CardQuery) ([]*domain.FlashCard, error) {
	q.SourceLanguage = domain.NormalizeLanguage(q.SourceLanguage)
	cards, err := s.cards.List(ctx, q)
	if err != nil {
		return nil, NewCardServiceError("list", "failed to list cards", err)
	}
	return cards, nil
}

// AvailableTags implements CardService.AvailableTags
func (s *cardServiceImpl) AvailableTags(ctx context.Context, sourceLanguage string) (*domain.TagSummary, error) {
	lang := domain.NormalizeLanguage(sourceLanguage)
	if lang == "" {
		return nil, NewCardServiceError("available_tags", "source language is required", domain.ErrValidation)
	}
	summary, err := s.cards.AvailableTags(ctx, lang)
	if err != nil {
		return nil, NewCardServiceError("available_tags", "failed to aggregate tags", err)
	}
	return summary, nil
}
