package store

import (
	"context"

	"github.com/iav0207/fcards2-sub001/internal/domain"
)

// SessionStore defines the interface for practice session persistence.
type SessionStore interface {
	// Create persists a new session with its card sequence.
	// The card sequence is never rewritten afterwards.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID loads a session with its card ids and responses in order.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id string) (*domain.Session, error)

	// Save persists progress: the cursor, the completion time and any
	// responses not yet stored. Stored responses are never rewritten.
	// Returns ErrSessionNotFound if the session does not exist.
	Save(ctx context.Context, session *domain.Session) error
}
