// Package baseline implements the offline translator used when no external
// translation provider is available. It is deterministic and never fails.
//
// The close-match rule is lexical: substring containment or enough shared
// whitespace-separated tokens. Paraphrases and reordered sentences are
// misjudged in both directions.
package baseline

import (
	"strings"

	"github.com/iav0207/fcards2-sub001/internal/domain"
	"golang.org/x/text/cases"
)

const (
	scoreExact = 1.0
	scoreClose = 0.8
	scoreMiss  = 0.2
)

// Translator is the baseline evaluator and generator.
type Translator struct {
	phrases map[phraseKey]string
}

// New returns a Translator backed by the built-in phrase table.
func New() *Translator {
	return &Translator{phrases: phrases}
}

// Evaluate judges a translation without any external service.
func (t *Translator) Evaluate(req domain.EvaluationRequest) domain.EvaluationResult {
	user := normalize(req.UserTranslation)

	if strings.TrimSpace(req.ReferenceTranslation) == "" {
		return domain.EvaluationResult{
			Correct:              true,
			Score:                scoreExact,
			Feedback:             "Translation accepted. No reference translation is available to compare against.",
			SuggestedTranslation: req.UserTranslation,
			Details: domain.EvaluationDetails{
				Grammar:    "Not checked.",
				Vocabulary: "Not checked.",
				Accuracy:   "Not checked without a reference translation.",
			},
		}
	}

	ref := normalize(req.ReferenceTranslation)
	switch {
	case user == ref:
		return domain.EvaluationResult{
			Correct:              true,
			Score:                scoreExact,
			Feedback:             "Perfect! Your translation matches exactly.",
			SuggestedTranslation: req.ReferenceTranslation,
			Details: domain.EvaluationDetails{
				Grammar:    "Correct.",
				Vocabulary: "Correct.",
				Accuracy:   "Exact match.",
			},
		}
	case closeMatch(user, ref):
		return domain.EvaluationResult{
			Correct:              true,
			Score:                scoreClose,
			Feedback:             "Good job! Your translation is close to the expected answer.",
			SuggestedTranslation: req.ReferenceTranslation,
			Details: domain.EvaluationDetails{
				Grammar:    "Mostly correct.",
				Vocabulary: "Mostly correct.",
				Accuracy:   "Close match.",
			},
		}
	default:
		return domain.EvaluationResult{
			Correct:              false,
			Score:                scoreMiss,
			Feedback:             "Try again. The expected translation is: " + req.ReferenceTranslation,
			SuggestedTranslation: req.ReferenceTranslation,
			Details: domain.EvaluationDetails{
				Grammar:    "Could not verify.",
				Vocabulary: "Differs from the expected translation.",
				Accuracy:   "Does not match.",
			},
		}
	}
}

// Generate looks content up in the phrase table. A miss returns the
// original content in square brackets.
func (t *Translator) Generate(req domain.GenerationRequest) string {
	key := phraseKey{
		source: domain.NormalizeLanguage(req.SourceLanguage),
		target: domain.NormalizeLanguage(req.TargetLanguage),
		phrase: normalize(req.Content),
	}
	if translated, ok := t.phrases[key]; ok {
		return translated
	}
	return "[" + req.Content + "]"
}

// IsUntranslated reports whether s is a bracketed Generate miss.
func IsUntranslated(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}

// normalize trims and case-folds s. A Caser is stateful, so each call
// builds its own.
func normalize(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// closeMatch reports whether a and b contain one another, or whether at
// least half of the shorter string's whitespace-separated tokens occur in
// the other string. Repeated tokens count each time. Both must be
// normalized and non-empty.
func closeMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	short, long := strings.Fields(a), strings.Fields(b)
	if len(long) < len(short) {
		short, long = long, short
	}
	if len(short) == 0 {
		return false
	}

	other := make(map[string]struct{}, len(long))
	for _, tok := range long {
		other[tok] = struct{}{}
	}
	shared := 0
	for _, tok := range short {
		if _, ok := other[tok]; ok {
			shared++
		}
	}
	return 2*shared >= len(short)
}
