package session

import (
	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/translation/baseline"
)

// sampleTargetLanguage is the language of the translations stored on sample cards.
const sampleTargetLanguage = "de"

// sampleNamespace seeds the deterministic ids of the built-in sample cards.
var sampleNamespace = uuid.MustParse("6f1c4a52-3d0e-4b7a-9c55-2a8f0e6d9b41")

var sampleData = []struct {
	content     string
	translation string
	tags        []string
}{
	{"hello", "Hallo", []string{"greeting"}},
	{"goodbye", "Auf Wiedersehen", []string{"greeting"}},
	{"thank you", "Danke", []string{"polite"}},
	{"please", "Bitte", []string{"polite"}},
	{"good morning", "Guten Morgen", []string{"greeting"}},
	{"good night", "Gute Nacht", []string{"greeting"}},
	{"excuse me", "Entschuldigung", []string{"polite"}},
	{"water", "Wasser", []string{"food"}},
	{"bread", "Brot", []string{"food"}},
	{"where is the station?", "Wo ist der Bahnhof?", []string{"travel"}},
}

// SampleCards returns the built-in English to German practice set. Ids are
// stable across runs so sessions over samples survive a restart.
func SampleCards() []*domain.FlashCard {
	cards := make([]*domain.FlashCard, 0, len(sampleData))
	for _, s := range sampleData {
		cards = append(cards, &domain.FlashCard{
			ID:              uuid.NewSHA1(sampleNamespace, []byte("sample:"+s.content)),
			Content:         s.content,
			SourceLanguage:  "en",
			UserTranslation: s.translation,
			Tags:            append([]string{}, s.tags...),
		})
	}
	return cards
}

// sampleReference returns the reference translation of a sample card for
// targetLanguage. Pairs missing from the phrase table get an empty
// reference, so the answer is judged without ground truth.
func sampleReference(card *domain.FlashCard, targetLanguage string) string {
	target := domain.NormalizeLanguage(targetLanguage)
	if target == sampleTargetLanguage {
		return card.UserTranslation
	}
	if translated, ok := baseline.Lookup(card.SourceLanguage, target, card.Content); ok {
		return translated
	}
	return ""
}
