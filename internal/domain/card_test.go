package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewFlashCard(t *testing.T) {
	t.Parallel()

	card, err := NewFlashCard("  hello ", " EN ", "greeting", "Hallo", []string{"common", " greeting", "common", ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if card.Content != "hello" {
		t.Errorf("Expected trimmed content %q, got %q", "hello", card.Content)
	}
	if card.SourceLanguage != "en" {
		t.Errorf("Expected language %q, got %q", "en", card.SourceLanguage)
	}
	if len(card.Tags) != 2 || card.Tags[0] != "common" || card.Tags[1] != "greeting" {
		t.Errorf("Expected normalized tags [common greeting], got %v", card.Tags)
	}
	if card.CreatedAt.IsZero() || card.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	untagged, err := NewFlashCard("bye", "en", "", "", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if untagged.Tags == nil || len(untagged.Tags) != 0 {
		t.Errorf("Expected empty non-nil tags, got %#v", untagged.Tags)
	}
	if !untagged.IsUntagged() {
		t.Error("Expected card without tags to be untagged")
	}
}

func TestNewFlashCardValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		language string
		want     error
	}{
		{name: "empty content", content: "  ", language: "en", want: ErrCardContentEmpty},
		{name: "empty language", content: "hello", language: "", want: ErrCardLanguageEmpty},
		{name: "malformed language", content: "hello", language: "en gb", want: ErrCardLanguageInvalid},
		{name: "overlong language", content: "hello", language: "abcdefghijklmnopq", want: ErrCardLanguageInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFlashCard(tt.content, tt.language, "", "", nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected error %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFlashCardUpdate(t *testing.T) {
	t.Parallel()

	card, err := NewFlashCard("hello", "en", "", "", []string{"a"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	card.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	before := card.UpdatedAt

	translation := "Hallo"
	tags := []string{"b", "b", "c"}
	if err := card.Update(CardUpdate{UserTranslation: &translation, Tags: &tags}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.UserTranslation != "Hallo" {
		t.Errorf("Expected translation to be updated, got %q", card.UserTranslation)
	}
	if len(card.Tags) != 2 || card.Tags[0] != "b" || card.Tags[1] != "c" {
		t.Errorf("Expected tags [b c], got %v", card.Tags)
	}
	if card.Content != "hello" {
		t.Errorf("Expected content to be unchanged, got %q", card.Content)
	}
	if !card.UpdatedAt.After(before) {
		t.Error("Expected UpdatedAt to be refreshed")
	}

	empty := ""
	err = card.Update(CardUpdate{Content: &empty, UserTranslation: &empty})
	if !errors.Is(err, ErrCardContentEmpty) {
		t.Errorf("Expected error %v, got %v", ErrCardContentEmpty, err)
	}
	if card.Content != "hello" || card.UserTranslation != "Hallo" {
		t.Error("Expected card to be unchanged after a failed update")
	}
}

func TestFlashCardUpdateLanguage(t *testing.T) {
	t.Parallel()

	card, err := NewFlashCard("hola", "en", "", "", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	lang := " ES "
	if err := card.Update(CardUpdate{SourceLanguage: &lang}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if card.SourceLanguage != "es" {
		t.Errorf("Expected normalized language %q, got %q", "es", card.SourceLanguage)
	}

	invalid := "es es"
	err = card.Update(CardUpdate{SourceLanguage: &invalid})
	if !errors.Is(err, ErrCardLanguageInvalid) {
		t.Errorf("Expected error %v, got %v", ErrCardLanguageInvalid, err)
	}
	blank := "  "
	err = card.Update(CardUpdate{SourceLanguage: &blank})
	if !errors.Is(err, ErrCardLanguageEmpty) {
		t.Errorf("Expected error %v, got %v", ErrCardLanguageEmpty, err)
	}
	if card.SourceLanguage != "es" {
		t.Errorf("Expected language to be unchanged after a failed update, got %q", card.SourceLanguage)
	}
}
