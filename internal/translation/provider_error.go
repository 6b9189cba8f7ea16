package translation

import (
	"errors"
	"fmt"
	"strings"
)

// APIKeyMessage is the user-facing advice attached to credential failures.
const APIKeyMessage = "check your API key in settings"

// ProviderError describes why no provider produced a result. It is returned
// as-is in strict mode and otherwise summarized on the baseline result.
type ProviderError struct {
	// Provider is the configured primary provider name, empty when none is set.
	Provider string
	// Attempted lists the providers that were called, in order.
	Attempted []string
	// HasProviders reports whether any provider is registered.
	HasProviders bool
	// APIAvailable reports whether the primary provider is registered.
	APIAvailable   bool
	SourceLanguage string
	TargetLanguage string
	// APIKeyError is set when a failure points at bad credentials.
	APIKeyError bool
	// Err is the failure of the last attempted provider.
	Err error
}

func (e *ProviderError) Error() string {
	name := e.Provider
	if name == "" {
		name = strings.Join(e.Attempted, ", ")
	}
	if e.APIKeyError {
		return fmt.Sprintf("translation provider %q rejected the request: %s", name, APIKeyMessage)
	}
	if e.Err != nil {
		return fmt.Sprintf("translation provider %q failed (%s to %s): %v",
			name, e.SourceLanguage, e.TargetLanguage, e.Err)
	}
	return fmt.Sprintf("translation provider %q failed (%s to %s)", name, e.SourceLanguage, e.TargetLanguage)
}

// Unwrap exposes ErrProviderFailed, ErrAPIKey when applicable, and the
// underlying provider error.
func (e *ProviderError) Unwrap() []error {
	errs := []error{ErrProviderFailed}
	if e.APIKeyError {
		errs = append(errs, ErrAPIKey)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UserMessage is a short notice suitable for display next to a degraded result.
func (e *ProviderError) UserMessage() string {
	if e.APIKeyError {
		return "Translation service authentication failed: " + APIKeyMessage + "."
	}
	return "Translation service unavailable; a basic offline method was used."
}

var apiKeyHints = []string{
	"api key",
	"api_key",
	"apikey",
	"x-api-key",
	"authentication",
	"unauthorized",
	"unauthenticated",
	"permission denied",
	"invalid key",
}

// IsAPIKeyError reports whether err signals a credential problem, either by
// wrapping ErrAPIKey or by the wording of its message.
func IsAPIKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAPIKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range apiKeyHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
