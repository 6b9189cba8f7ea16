package translation

import "errors"

// Common errors returned by the translation package and its providers.
var (
	// ErrProviderFailed is returned when a provider call fails for any reason.
	ErrProviderFailed = errors.New("translation provider failed")

	// ErrAPIKey is returned when a provider rejects its credentials.
	ErrAPIKey = errors.New("translation provider rejected the API key")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during translation")

	// ErrInvalidConfig is returned when a provider configuration is invalid
	ErrInvalidConfig = errors.New("invalid translation provider configuration")

	// ErrDuplicateProvider is returned when two providers share a name.
	ErrDuplicateProvider = errors.New("translation provider already registered")
)
