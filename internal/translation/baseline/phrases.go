package baseline

import (
	"slices"

	"github.com/iav0207/fcards2-sub001/internal/domain"
)

type phraseKey struct {
	source string
	target string
	phrase string
}

// English phrases and their translations, keyed by target language.
var englishPhrases = map[string]map[string]string{
	"de": {
		"hello":                 "Hallo",
		"goodbye":               "Auf Wiedersehen",
		"thank you":             "Danke",
		"please":                "Bitte",
		"yes":                   "Ja",
		"no":                    "Nein",
		"good morning":          "Guten Morgen",
		"good evening":          "Guten Abend",
		"good night":            "Gute Nacht",
		"how are you?":          "Wie geht es dir?",
		"excuse me":             "Entschuldigung",
		"i love you":            "Ich liebe dich",
		"water":                 "Wasser",
		"bread":                 "Brot",
		"where is the station?": "Wo ist der Bahnhof?",
	},
	"es": {
		"hello":        "Hola",
		"goodbye":      "Adiós",
		"thank you":    "Gracias",
		"please":       "Por favor",
		"yes":          "Sí",
		"no":           "No",
		"good morning": "Buenos días",
		"good night":   "Buenas noches",
		"how are you?": "¿Cómo estás?",
		"water":        "Agua",
	},
	"fr": {
		"hello":        "Bonjour",
		"goodbye":      "Au revoir",
		"thank you":    "Merci",
		"please":       "S'il vous plaît",
		"yes":          "Oui",
		"no":           "Non",
		"good night":   "Bonne nuit",
		"how are you?": "Comment allez-vous ?",
		"water":        "Eau",
	},
}

var phrases = buildPhraseTable()

// Lookup returns the built-in translation of phrase from sourceLanguage to
// targetLanguage. Matching ignores case and surrounding whitespace.
func Lookup(sourceLanguage, targetLanguage, phrase string) (string, bool) {
	translated, ok := phrases[phraseKey{
		source: domain.NormalizeLanguage(sourceLanguage),
		target: domain.NormalizeLanguage(targetLanguage),
		phrase: normalize(phrase),
	}]
	return translated, ok
}

// buildPhraseTable indexes the English table in both directions. Reverse
// lookups return the lowercase English phrase, and the alphabetically first
// one when two share a translation.
func buildPhraseTable() map[phraseKey]string {
	table := make(map[phraseKey]string)
	for target, phrases := range englishPhrases {
		for en, translated := range phrases {
			table[phraseKey{source: "en", target: target, phrase: normalize(en)}] = translated
		}
	}
	for target, phrases := range englishPhrases {
		for _, en := range sortedKeys(phrases) {
			key := phraseKey{source: target, target: "en", phrase: normalize(phrases[en])}
			if _, ok := table[key]; !ok {
				table[key] = en
			}
		}
	}
	return table
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
