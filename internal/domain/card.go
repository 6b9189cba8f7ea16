package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardContentEmpty is returned when a card's content is empty.
	ErrCardContentEmpty = errors.New("card content cannot be empty")

	// ErrCardLanguageEmpty is returned when a card has no source language.
	ErrCardLanguageEmpty = errors.New("card source language cannot be empty")

	// ErrCardLanguageInvalid is returned when a language code is malformed.
	ErrCardLanguageInvalid = errors.New("card source language is not a valid language code")
)

const maxLanguageCodeLength = 16

// FlashCard is a unit of study content in one source language.
// Tags are always a non-nil slice once the card has passed through
// NewFlashCard, Update or a store read.
type FlashCard struct {
	ID              uuid.UUID `json:"id"`
	Content         string    `json:"content"`
	SourceLanguage  string    `json:"source_language"`
	Comment         string    `json:"comment"`
	UserTranslation string    `json:"user_translation"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CardUpdate describes a partial card mutation. Nil fields are left unchanged.
type CardUpdate struct {
	Content         *string
	SourceLanguage  *string
	Comment         *string
	UserTranslation *string
	Tags            *[]string
}

// NewFlashCard creates a new FlashCard with a fresh UUID and timestamps.
// Tags are normalized. Returns an error if validation fails.
func NewFlashCard(content, sourceLanguage, comment, userTranslation string, tags []string) (*FlashCard, error) {
	now := time.Now().UTC()
	card := &FlashCard{
		ID:              uuid.New(),
		Content:         strings.TrimSpace(content),
		SourceLanguage:  NormalizeLanguage(sourceLanguage),
		Comment:         strings.TrimSpace(comment),
		UserTranslation: strings.TrimSpace(userTranslation),
		Tags:            NormalizeTags(tags),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the FlashCard has valid data.
func (c *FlashCard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if strings.TrimSpace(c.Content) == "" {
		return ErrCardContentEmpty
	}

	if c.SourceLanguage == "" {
		return ErrCardLanguageEmpty
	}

	if !validLanguageCode(c.SourceLanguage) {
		return ErrCardLanguageInvalid
	}

	return nil
}

// Update applies u to the card and refreshes UpdatedAt. The card is left
// untouched when the result would be invalid.
func (c *FlashCard) Update(u CardUpdate) error {
	updated := *c
	if u.Content != nil {
		updated.Content = strings.TrimSpace(*u.Content)
	}
	if u.SourceLanguage != nil {
		updated.SourceLanguage = NormalizeLanguage(*u.SourceLanguage)
	}
	if u.Comment != nil {
		updated.Comment = strings.TrimSpace(*u.Comment)
	}
	if u.UserTranslation != nil {
		updated.UserTranslation = strings.TrimSpace(*u.UserTranslation)
	}
	if u.Tags != nil {
		updated.Tags = NormalizeTags(*u.Tags)
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	updated.UpdatedAt = time.Now().UTC()
	*c = updated
	return nil
}

// IsUntagged reports whether the card carries no tags.
func (c *FlashCard) IsUntagged() bool {
	return len(c.Tags) == 0
}

// NormalizeLanguage lowercases and trims a language code.
func NormalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func validLanguageCode(code string) bool {
	if len(code) > maxLanguageCodeLength {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
