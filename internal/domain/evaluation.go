package domain

// EvaluationRequest asks whether UserTranslation is a correct rendering of
// SourceContent. ReferenceTranslation is optional ground truth.
type EvaluationRequest struct {
	SourceContent        string `json:"source_content" validate:"required"`
	SourceLanguage       string `json:"source_language" validate:"required,max=16"`
	TargetLanguage       string `json:"target_language" validate:"required,max=16"`
	UserTranslation      string `json:"user_translation" validate:"required"`
	ReferenceTranslation string `json:"reference_translation,omitempty"`
}

// GenerationRequest asks for a translation of Content.
type GenerationRequest struct {
	Content        string `json:"content" validate:"required"`
	SourceLanguage string `json:"source_language" validate:"required,max=16"`
	TargetLanguage string `json:"target_language" validate:"required,max=16"`
}

// EvaluationDetails breaks feedback down by aspect.
type EvaluationDetails struct {
	Grammar    string `json:"grammar"`
	Vocabulary string `json:"vocabulary"`
	Accuracy   string `json:"accuracy"`
}

// EvaluationResult is the structured verdict on a translation.
//
// Provider names who produced it. Fallback is set when the baseline
// translator answered, Error when a provider failed on the way there, and
// Warning carries a user-facing note about that failure.
type EvaluationResult struct {
	Correct              bool              `json:"correct"`
	Score                float64           `json:"score"`
	Feedback             string            `json:"feedback"`
	SuggestedTranslation string            `json:"suggested_translation"`
	Details              EvaluationDetails `json:"details"`
	Provider             string            `json:"provider,omitempty"`
	Fallback             bool              `json:"_fallback,omitempty"`
	Error                bool              `json:"_error,omitempty"`
	Warning              string            `json:"warning,omitempty"`
	APIKeyError          bool              `json:"api_key_error,omitempty"`
}

// GenerationResult carries a generated translation and the same degradation
// flags as EvaluationResult.
type GenerationResult struct {
	Translation string `json:"translation"`
	Provider    string `json:"provider,omitempty"`
	Fallback    bool   `json:"_fallback,omitempty"`
	Error       bool   `json:"_error,omitempty"`
	Warning     string `json:"warning,omitempty"`
	APIKeyError bool   `json:"api_key_error,omitempty"`
}
