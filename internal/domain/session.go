package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SessionStatus is the position of a session in its lifecycle.
type SessionStatus string

const (
	// SessionCreated means no response has been recorded yet.
	SessionCreated SessionStatus = "created"
	// SessionInProgress means some but not all cards have been answered.
	SessionInProgress SessionStatus = "in_progress"
	// SessionComplete means every card has a response. No transition leaves it.
	SessionComplete SessionStatus = "complete"
)

// Response is one recorded answer within a session.
type Response struct {
	CardID       uuid.UUID `json:"card_id"`
	UserResponse string    `json:"user_response"`
	Correct      bool      `json:"correct"`
	Skipped      bool      `json:"skipped"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Session is one practice run over a fixed sequence of cards.
//
// CardIDs never change after creation and len(Responses) always equals
// CurrentCardIndex. CompletedAt is set once, when the last card is answered.
type Session struct {
	ID               string      `json:"id"`
	SourceLanguage   string      `json:"source_language"`
	TargetLanguage   string      `json:"target_language"`
	CardIDs          []uuid.UUID `json:"card_ids"`
	CurrentCardIndex int         `json:"current_card_index"`
	Responses        []Response  `json:"responses"`
	CreatedAt        time.Time   `json:"created_at"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
}

// Progress is the 1-based position of the current card.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// SessionStats is derived from a session's responses.
type SessionStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Skipped  int     `json:"skipped"`
	Accuracy float64 `json:"accuracy"`
}

// NewSession creates a session over cardIDs. The ids are copied.
func NewSession(sourceLanguage, targetLanguage string, cardIDs []uuid.UUID, now time.Time) (*Session, error) {
	if err := ValidateLanguagePair(sourceLanguage, targetLanguage); err != nil {
		return nil, err
	}
	if len(cardIDs) == 0 {
		return nil, ErrNoCardsAvailable
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	ids := make([]uuid.UUID, len(cardIDs))
	copy(ids, cardIDs)

	return &Session{
		ID:             id,
		SourceLanguage: NormalizeLanguage(sourceLanguage),
		TargetLanguage: NormalizeLanguage(targetLanguage),
		CardIDs:        ids,
		Responses:      []Response{},
		CreatedAt:      now.UTC(),
	}, nil
}

// ValidateLanguagePair requires both languages to be present and different.
func ValidateLanguagePair(sourceLanguage, targetLanguage string) error {
	source := NormalizeLanguage(sourceLanguage)
	target := NormalizeLanguage(targetLanguage)
	if source == "" || target == "" {
		return fmt.Errorf("%w: source and target language are required", ErrInvalidLanguagePair)
	}
	if source == target {
		return fmt.Errorf("%w: source and target language must differ", ErrInvalidLanguagePair)
	}
	return nil
}

// Status reports where the session is in its lifecycle.
func (s *Session) Status() SessionStatus {
	switch {
	case s.IsComplete():
		return SessionComplete
	case s.CurrentCardIndex == 0:
		return SessionCreated
	default:
		return SessionInProgress
	}
}

// IsComplete reports whether every card has a response.
func (s *Session) IsComplete() bool {
	return s.CurrentCardIndex >= len(s.CardIDs)
}

// CurrentCardID returns the id of the card awaiting a response. The second
// result is false when the session is complete.
func (s *Session) CurrentCardID() (uuid.UUID, bool) {
	if s.IsComplete() {
		return uuid.Nil, false
	}
	return s.CardIDs[s.CurrentCardIndex], true
}

// Progress returns the position of the current card. Once complete, Current
// equals Total.
func (s *Session) Progress() Progress {
	current := s.CurrentCardIndex + 1
	if current > len(s.CardIDs) {
		current = len(s.CardIDs)
	}
	return Progress{Current: current, Total: len(s.CardIDs)}
}

// RecordResponse appends a response for the current card and advances the
// cursor. cardID must be the current card.
func (s *Session) RecordResponse(cardID uuid.UUID, userResponse string, correct bool, now time.Time) error {
	return s.record(Response{
		CardID:       cardID,
		UserResponse: userResponse,
		Correct:      correct,
		RecordedAt:   now.UTC(),
	})
}

// Skip records the current card as skipped and returns its id.
func (s *Session) Skip(now time.Time) (uuid.UUID, error) {
	cardID, ok := s.CurrentCardID()
	if !ok {
		return uuid.Nil, ErrSessionComplete
	}
	err := s.record(Response{
		CardID:     cardID,
		Skipped:    true,
		RecordedAt: now.UTC(),
	})
	return cardID, err
}

func (s *Session) record(r Response) error {
	current, ok := s.CurrentCardID()
	if !ok {
		return ErrSessionComplete
	}
	if r.CardID != current {
		return fmt.Errorf("%w: got %s, expected %s", ErrCardMismatch, r.CardID, current)
	}

	s.Responses = append(s.Responses, r)
	s.CurrentCardIndex++

	if s.CurrentCardIndex == len(s.CardIDs) && s.CompletedAt == nil {
		completed := r.RecordedAt
		s.CompletedAt = &completed
	}
	return nil
}

// Stats computes totals and accuracy (percent, two decimals) over the
// recorded responses. It is valid at any point of the lifecycle.
func (s *Session) Stats() SessionStats {
	stats := SessionStats{Total: len(s.Responses)}
	for _, r := range s.Responses {
		if r.Correct {
			stats.Correct++
		}
		if r.Skipped {
			stats.Skipped++
		}
	}
	if stats.Total > 0 {
		stats.Accuracy = math.Round(10000*float64(stats.Correct)/float64(stats.Total)) / 100
	}
	return stats
}
