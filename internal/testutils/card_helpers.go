package testutils

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/store"
	"github.com/stretchr/testify/require"
)

// CardOption customizes a test card.
type CardOption func(*domain.FlashCard)

// WithCardID sets the card ID.
func WithCardID(id uuid.UUID) CardOption {
	return func(c *domain.FlashCard) { c.ID = id }
}

// WithCardContent sets the card content.
func WithCardContent(content string) CardOption {
	return func(c *domain.FlashCard) { c.Content = content }
}

// WithCardLanguage sets the source language.
func WithCardLanguage(lang string) CardOption {
	return func(c *domain.FlashCard) { c.SourceLanguage = lang }
}

// WithCardTranslation sets the user translation.
func WithCardTranslation(translation string) CardOption {
	return func(c *domain.FlashCard) { c.UserTranslation = translation }
}

// WithCardComment sets the comment.
func WithCardComment(comment string) CardOption {
	return func(c *domain.FlashCard) { c.Comment = comment }
}

// WithCardTags sets the tags. Calling it without arguments leaves the card
// with an empty tag list.
func WithCardTags(tags ...string) CardOption {
	return func(c *domain.FlashCard) { c.Tags = append([]string{}, tags...) }
}

// WithNilCardTags leaves Tags nil, as a loosely built card from storage would.
func WithNilCardTags() CardOption {
	return func(c *domain.FlashCard) { c.Tags = nil }
}

// WithCardCreatedAt sets both timestamps.
func WithCardCreatedAt(at time.Time) CardOption {
	return func(c *domain.FlashCard) {
		c.CreatedAt = at.UTC()
		c.UpdatedAt = at.UTC()
	}
}

// MustCreateCardForTest builds a valid English card without persisting it.
func MustCreateCardForTest(t *testing.T, opts ...CardOption) *domain.FlashCard {
	t.Helper()

	now := time.Now().UTC()
	card := &domain.FlashCard{
		ID:             uuid.New(),
		Content:        "hello",
		SourceLanguage: "en",
		Tags:           []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for _, opt := range opts {
		opt(card)
	}

	require.NoError(t, card.Validate(), "test card must be valid")
	return card
}

// MustInsertCard builds a card and persists it through cards.
func MustInsertCard(t *testing.T, cards store.CardStore, opts ...CardOption) *domain.FlashCard {
	t.Helper()

	card := MustCreateCardForTest(t, opts...)
	require.NoError(t, cards.Create(context.Background(), card), "failed to insert test card")
	return card
}

// InsertTagScenario stores the fixture used by tag filtering tests: three
// tagged English cards, one with an empty tag list, one with nil tags and a
// German card tagged "greeting". Cards are returned in insertion order.
func InsertTagScenario(t *testing.T, cards store.CardStore) []*domain.FlashCard {
	t.Helper()

	base := time.Now().UTC().Add(-time.Hour)
	at := func(i int) CardOption { return WithCardCreatedAt(base.Add(time.Duration(i) * time.Second)) }

	return []*domain.FlashCard{
		MustInsertCard(t, cards, at(0), WithCardContent("hello"), WithCardTranslation("Hallo"),
			WithCardTags("common", "greeting")),
		MustInsertCard(t, cards, at(1), WithCardContent("goodbye"), WithCardTranslation("Auf Wiedersehen"),
			WithCardTags("common", "farewell")),
		MustInsertCard(t, cards, at(2), WithCardContent("thank you"), WithCardTranslation("Danke"),
			WithCardTags("common", "polite")),
		MustInsertCard(t, cards, at(3), WithCardContent("yes"), WithCardTranslation("Ja"),
			WithCardTags()),
		MustInsertCard(t, cards, at(4), WithCardContent("no"), WithCardTranslation("Nein"),
			WithNilCardTags()),
		MustInsertCard(t, cards, at(5), WithCardContent("Guten Morgen"), WithCardLanguage("de"),
			WithCardTags("greeting")),
	}
}
