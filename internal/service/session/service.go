// Package session runs practice sessions: it samples cards under language
// and tag filters, walks the session through its cards, records answers
// evaluated by the translation chain and derives statistics.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
)

// DefaultMaxCards is the session size used when none is configured.
const DefaultMaxCards = 20

// ErrCardUnavailable indicates that the current card of a session was
// deleted. The session is left unchanged; AdvanceSession skips the card.
var ErrCardUnavailable = errors.New("session card is no longer available")

// Evaluator judges answers. *translation.Chain satisfies it.
type Evaluator interface {
	EvaluateTranslation(ctx context.Context, req domain.EvaluationRequest) (*domain.EvaluationResult, error)
}

// CreateOptions selects the cards of a new session.
type CreateOptions struct {
	SourceLanguage string `json:"source_language" validate:"required,max=16"`
	TargetLanguage string `json:"target_language" validate:"required,max=16"`
	// MaxCards caps the session size. Zero means the configured default.
	MaxCards        int      `json:"max_cards" validate:"gte=0"`
	Tags            []string `json:"tags"`
	IncludeUntagged bool     `json:"include_untagged"`
	// UseSampleCards replaces the card store with the built-in sample set
	// and ignores every filter.
	UseSampleCards bool `json:"use_sample_cards"`
}

// CurrentCard is the card to practice next and the session position.
type CurrentCard struct {
	SessionID string            `json:"session_id"`
	Card      *domain.FlashCard `json:"card"`
	Progress  domain.Progress   `json:"progress"`
}

// AnswerResult is the outcome of SubmitAnswer.
type AnswerResult struct {
	Evaluation *domain.EvaluationResult `json:"evaluation"`
	Progress   domain.Progress          `json:"progress"`
	Complete   bool                     `json:"complete"`
}

// Service provides the practice session operations.
type Service interface {
	// CreateSession samples up to MaxCards cards matching opts and persists
	// a new session over them.
	//
	// Returns:
	//   - domain.ErrInvalidLanguagePair when the languages are missing or equal
	//   - domain.ErrNoCardsAvailable when no card matches and samples were not requested
	//   - domain.ErrValidation for other invalid options
	CreateSession(ctx context.Context, opts CreateOptions) (*domain.Session, error)

	// GetSession loads a session snapshot.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// GetCurrentCard returns the card at the session cursor, or nil without
	// an error once the session is complete. A deleted card yields
	// ErrCardUnavailable.
	GetCurrentCard(ctx context.Context, sessionID string) (*CurrentCard, error)

	// RecordResponse stores an answer for the current card and advances the
	// cursor. A cardID other than the current card is a
	// domain.ErrSessionStateViolation.
	RecordResponse(ctx context.Context, sessionID string, cardID uuid.UUID, userResponse string, correct bool) (*domain.Session, error)

	// SubmitAnswer evaluates answer against the current card and records the
	// verdict.
	SubmitAnswer(ctx context.Context, sessionID string, cardID uuid.UUID, answer string) (*AnswerResult, error)

	// AdvanceSession skips the current card and returns the next one, or nil
	// when the skip completed the session.
	AdvanceSession(ctx context.Context, sessionID string) (*CurrentCard, error)

	// GetSessionStats derives statistics from the recorded responses. It is
	// valid at any point of the session.
	GetSessionStats(ctx context.Context, sessionID string) (*domain.SessionStats, error)
}
