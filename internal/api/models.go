package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/service"
	"github.com/iav0207/fcards2-sub001/internal/service/session"
)

// CreateCardRequest defines the payload for POST /cards.
type CreateCardRequest struct {
	// ID is optional. When it names an existing card the card is replaced.
	ID              *uuid.UUID `json:"id,omitempty"`
	Content         string     `json:"content" validate:"required"`
	SourceLanguage  string     `json:"source_language" validate:"required,max=16"`
	Comment         string     `json:"comment"`
	UserTranslation string     `json:"user_translation"`
	Tags            []string   `json:"tags"`
	// TranslateTo asks for a generated translation when UserTranslation is empty.
	TranslateTo string `json:"translate_to,omitempty" validate:"omitempty,max=16"`
}

func (r CreateCardRequest) toParams() service.CreateCardParams {
	return service.CreateCardParams{
		Content:         r.Content,
		SourceLanguage:  r.SourceLanguage,
		Comment:         r.Comment,
		UserTranslation: r.UserTranslation,
		Tags:            r.Tags,
		TranslateTo:     r.TranslateTo,
	}
}

// UpdateCardRequest defines the payload for PUT /cards/{id}. Omitted fields
// are left unchanged.
type UpdateCardRequest struct {
	Content         *string   `json:"content"`
	SourceLanguage  *string   `json:"source_language" validate:"omitempty,max=16"`
	Comment         *string   `json:"comment"`
	UserTranslation *string   `json:"user_translation"`
	Tags            *[]string `json:"tags"`
}

func (r UpdateCardRequest) toUpdate() domain.CardUpdate {
	return domain.CardUpdate{
		Content:         r.Content,
		SourceLanguage:  r.SourceLanguage,
		Comment:         r.Comment,
		UserTranslation: r.UserTranslation,
		Tags:            r.Tags,
	}
}

// CardListResponse wraps GET /cards results.
type CardListResponse struct {
	Cards []*domain.FlashCard `json:"cards"`
	Count int                 `json:"count"`
}

// TagsResponse is the response of GET /languages/{lang}/tags.
type TagsResponse struct {
	Language string `json:"language"`
	domain.TagSummary
}

// CreateSessionRequest defines the payload for POST /sessions.
type CreateSessionRequest struct {
	SourceLanguage  string   `json:"source_language" validate:"required,max=16"`
	TargetLanguage  string   `json:"target_language" validate:"required,max=16"`
	MaxCards        int      `json:"max_cards" validate:"gte=0"`
	Tags            []string `json:"tags"`
	IncludeUntagged bool     `json:"include_untagged"`
	UseSampleCards  bool     `json:"use_sample_cards"`
}

func (r CreateSessionRequest) toOptions() session.CreateOptions {
	return session.CreateOptions{
		SourceLanguage:  r.SourceLanguage,
		TargetLanguage:  r.TargetLanguage,
		MaxCards:        r.MaxCards,
		Tags:            r.Tags,
		IncludeUntagged: r.IncludeUntagged,
		UseSampleCards:  r.UseSampleCards,
	}
}

// SessionResponse is the snapshot of a session.
type SessionResponse struct {
	ID               string               `json:"id"`
	SourceLanguage   string               `json:"source_language"`
	TargetLanguage   string               `json:"target_language"`
	CardIDs          []uuid.UUID          `json:"card_ids"`
	CurrentCardIndex int                  `json:"current_card_index"`
	Status           domain.SessionStatus `json:"status"`
	Progress         domain.Progress      `json:"progress"`
	Responses        []domain.Response    `json:"responses"`
	CreatedAt        time.Time            `json:"created_at"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
}

func sessionToResponse(s *domain.Session) SessionResponse {
	responses := s.Responses
	if responses == nil {
		responses = []domain.Response{}
	}
	return SessionResponse{
		ID:               s.ID,
		SourceLanguage:   s.SourceLanguage,
		TargetLanguage:   s.TargetLanguage,
		CardIDs:          s.CardIDs,
		CurrentCardIndex: s.CurrentCardIndex,
		Status:           s.Status(),
		Progress:         s.Progress(),
		Responses:        responses,
		CreatedAt:        s.CreatedAt,
		CompletedAt:      s.CompletedAt,
	}
}

// SubmitAnswerRequest defines the payload for POST /sessions/{id}/answers.
type SubmitAnswerRequest struct {
	CardID uuid.UUID `json:"card_id" validate:"required"`
	Answer string    `json:"answer" validate:"required"`
}

// AdvanceResponse is returned by POST /sessions/{id}/advance. Current is
// nil once the session is complete.
type AdvanceResponse struct {
	Current  *session.CurrentCard `json:"current"`
	Complete bool                 `json:"complete"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status          string   `json:"status"`
	PrimaryProvider string   `json:"primary_provider,omitempty"`
	Providers       []string `json:"providers"`
}
