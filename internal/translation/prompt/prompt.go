// Package prompt renders the prompts shared by every LLM translation
// provider and parses their replies.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"text/template"

	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/translation"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var languageNames = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"sv": "Swedish",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"zh": "Chinese",
}

// LanguageName returns the English name of a language code, or the code
// itself when it is unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[domain.NormalizeLanguage(code)]; ok {
		return name
	}
	return code
}

type evaluationData struct {
	domain.EvaluationRequest
	SourceLanguageName string
	TargetLanguageName string
}

type generationData struct {
	domain.GenerationRequest
	SourceLanguageName string
	TargetLanguageName string
}

// Evaluation renders the grading prompt for req.
func Evaluation(req domain.EvaluationRequest) (string, error) {
	return render("evaluate.tmpl", evaluationData{
		EvaluationRequest:  req,
		SourceLanguageName: LanguageName(req.SourceLanguage),
		TargetLanguageName: LanguageName(req.TargetLanguage),
	})
}

// Generation renders the translation prompt for req.
func Generation(req domain.GenerationRequest) (string, error) {
	return render("generate.tmpl", generationData{
		GenerationRequest:  req,
		SourceLanguageName: LanguageName(req.SourceLanguage),
		TargetLanguageName: LanguageName(req.TargetLanguage),
	})
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}
	return buf.String(), nil
}

// evaluationSchema mirrors the JSON object the evaluation prompt asks for.
// Pointers distinguish missing fields from zero values.
type evaluationSchema struct {
	Correct              *bool    `json:"correct"`
	Score                *float64 `json:"score"`
	Feedback             string   `json:"feedback"`
	SuggestedTranslation string   `json:"suggested_translation"`
	Details              struct {
		Grammar    string `json:"grammar"`
		Vocabulary string `json:"vocabulary"`
		Accuracy   string `json:"accuracy"`
	} `json:"details"`
}

// ParseEvaluation extracts the evaluation object from an LLM reply. The
// reply may wrap the object in prose or code fences. The score is clamped
// to [0, 1]; a missing score is derived from correct.
func ParseEvaluation(text string) (*domain.EvaluationResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in evaluation reply", translation.ErrInvalidResponse)
	}

	var parsed evaluationSchema
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse evaluation JSON: %v", translation.ErrInvalidResponse, err)
	}
	if parsed.Correct == nil {
		return nil, fmt.Errorf("%w: evaluation is missing \"correct\"", translation.ErrInvalidResponse)
	}

	score := 0.0
	if *parsed.Correct {
		score = 1.0
	}
	if parsed.Score != nil && !math.IsNaN(*parsed.Score) {
		score = math.Min(1, math.Max(0, *parsed.Score))
	}

	return &domain.EvaluationResult{
		Correct:              *parsed.Correct,
		Score:                score,
		Feedback:             strings.TrimSpace(parsed.Feedback),
		SuggestedTranslation: strings.TrimSpace(parsed.SuggestedTranslation),
		Details: domain.EvaluationDetails{
			Grammar:    parsed.Details.Grammar,
			Vocabulary: parsed.Details.Vocabulary,
			Accuracy:   parsed.Details.Accuracy,
		},
	}, nil
}

// ParseGeneration cleans a translation reply: code fences, surrounding
// quotes and whitespace are removed.
func ParseGeneration(text string) (string, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, "'", "“"} {
		closing := q
		if q == "“" {
			closing = "”"
		}
		if len(s) >= len(q)+len(closing) && strings.HasPrefix(s, q) && strings.HasSuffix(s, closing) {
			s = strings.TrimSpace(s[len(q) : len(s)-len(closing)])
			break
		}
	}
	if s == "" {
		return "", fmt.Errorf("%w: empty translation", translation.ErrInvalidResponse)
	}
	return s, nil
}
