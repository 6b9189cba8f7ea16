package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
)

// CardQuery selects cards for listing. An empty SourceLanguage means every
// language; an empty Filter means every tag state.
type CardQuery struct {
	SourceLanguage string
	Filter         domain.TagFilter
}

// CardStore defines the interface for flashcard persistence.
type CardStore interface {
	// Create saves a new card together with its tags.
	// Returns ErrInvalidEntity wrapping the validation error if the card is invalid,
	// and ErrDuplicate if a card with the same ID already exists.
	Create(ctx context.Context, card *domain.FlashCard) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	// The returned card always has a non-nil Tags slice.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FlashCard, error)

	// Update replaces the stored fields and tags of an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.FlashCard) error

	// Delete removes a card and its tags.
	// Returns ErrCardNotFound if the card does not exist.
	// Sessions keep their card ids; resolving a deleted id later yields ErrCardNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns the cards matching q ordered by creation time.
	//
	// Tag filtering follows domain.TagFilter: no tags and no untagged flag
	// means no filtering; requested tags are OR-ed; untagged cards are added
	// when IncludeUntagged is set.
	List(ctx context.Context, q CardQuery) ([]*domain.FlashCard, error)

	// AvailableTags aggregates the tags of one language's cards. Tags are
	// sorted alphabetically with exact per-tag card counts.
	AvailableTags(ctx context.Context, sourceLanguage string) (*domain.TagSummary, error)
}
