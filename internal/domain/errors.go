// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrNoCardsAvailable is returned when no card matches the filters of a
	// new session. Callers may retry with different filters or sample cards.
	ErrNoCardsAvailable = errors.New("no cards available")

	// ErrInvalidLanguagePair is returned when a session's source and target
	// languages are missing or equal.
	ErrInvalidLanguagePair = errors.New("invalid language pair")

	// ErrSessionStateViolation is returned when an operation does not respect
	// the session state machine. It indicates a caller bug.
	ErrSessionStateViolation = errors.New("session state violation")
)

// Session state violations.
var (
	// ErrSessionComplete is returned when a response is recorded on a
	// session that has no cards left.
	ErrSessionComplete = fmt.Errorf("%w: session is already complete", ErrSessionStateViolation)

	// ErrCardMismatch is returned when a response names a card other than
	// the current one.
	ErrCardMismatch = fmt.Errorf("%w: card is not the current card", ErrSessionStateViolation)
)
