package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/service/session"
	"github.com/iav0207/fcards2-sub001/internal/store"
	"github.com/iav0207/fcards2-sub001/internal/translation"
)

// Machine-readable error codes carried in ErrorResponse.Code.
const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeNoCardsAvailable = "no_cards_available"
	CodeSessionComplete  = "session_complete"
	CodeCardMismatch     = "card_mismatch"
	CodeCardUnavailable  = "card_unavailable"
	CodeAPIKey           = "api_key_error"
	CodeProviderFailed   = "provider_failed"
	CodeInternal         = "internal_error"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case isBadRequest(err):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrNoCardsAvailable):
		return http.StatusUnprocessableEntity

	case errors.Is(err, session.ErrCardUnavailable):
		return http.StatusGone

	case errors.Is(err, domain.ErrSessionStateViolation),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Only reachable in strict mode; otherwise the chain degrades.
	case errors.Is(err, translation.ErrProviderFailed):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

func isBadRequest(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidID) ||
		errors.Is(err, domain.ErrEmptyContent) ||
		errors.Is(err, domain.ErrCardIDEmpty) ||
		errors.Is(err, domain.ErrCardContentEmpty) ||
		errors.Is(err, domain.ErrCardLanguageEmpty) ||
		errors.Is(err, domain.ErrCardLanguageInvalid) ||
		errors.Is(err, domain.ErrInvalidLanguagePair) ||
		errors.Is(err, store.ErrInvalidEntity)
}

// ErrorCode returns the machine-readable code for err.
func ErrorCode(err error) string {
	switch {
	case isBadRequest(err):
		return CodeValidation
	case errors.Is(err, store.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, domain.ErrNoCardsAvailable):
		return CodeNoCardsAvailable
	case errors.Is(err, session.ErrCardUnavailable):
		return CodeCardUnavailable
	case errors.Is(err, domain.ErrSessionComplete):
		return CodeSessionComplete
	case errors.Is(err, domain.ErrCardMismatch):
		return CodeCardMismatch
	case errors.Is(err, domain.ErrSessionStateViolation), errors.Is(err, store.ErrDuplicate):
		return CodeConflict
	case errors.Is(err, translation.ErrAPIKey):
		return CodeAPIKey
	case errors.Is(err, translation.ErrProviderFailed):
		return CodeProviderFailed
	default:
		return CodeInternal
	}
}

// GetSafeErrorMessage returns a user-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verrs validator.ValidationErrors
	var perr *translation.ProviderError

	switch {
	case errors.As(err, &verrs):
		return SanitizeValidationError(err)

	case errors.Is(err, domain.ErrInvalidLanguagePair):
		return "Source and target language must be set and differ"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	case errors.Is(err, domain.ErrCardContentEmpty), errors.Is(err, domain.ErrEmptyContent):
		return "Content cannot be empty"

	case errors.Is(err, domain.ErrCardLanguageEmpty), errors.Is(err, domain.ErrCardLanguageInvalid):
		return "Invalid source language"

	case isBadRequest(err):
		return "Validation error"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Card already exists"

	case errors.Is(err, domain.ErrNoCardsAvailable):
		return "No cards match the selected language and tags"

	case errors.Is(err, session.ErrCardUnavailable):
		return "The current card was deleted; advance the session to continue"

	case errors.Is(err, domain.ErrSessionComplete):
		return "Session is already complete"

	case errors.Is(err, domain.ErrCardMismatch):
		return "Card is not the current card of the session"

	case errors.As(err, &perr):
		return perr.UserMessage()

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into a short message that
// names the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	first := verrs[0]
	field := strings.ToLower(first.Field())
	if msg := getValidationTagMessage(first.Tag()); msg != "" {
		return fmt.Sprintf("Invalid %s: %s", field, msg)
	}
	return fmt.Sprintf("Invalid %s", field)
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
