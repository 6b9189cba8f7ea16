package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iav0207/fcards2-sub001/internal/api/shared"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/service"
	"github.com/iav0207/fcards2-sub001/internal/store"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cardService service.CardService
	logger      *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService service.CardService, logger *slog.Logger) *CardHandler {
	if cardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardService cannot be nil for CardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CardHandler{
		cardService: cardService,
		logger:      logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /cards.
// Without an id, or with an unknown one, the card is created (201). An id
// naming a stored card replaces that card (200).
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateCardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if req.ID == nil {
		card, err := h.cardService.Create(r.Context(), req.toParams())
		if err != nil {
			respondError(w, r, err)
			return
		}
		log.Debug("card created", slog.String("card_id", card.ID.String()))
		shared.RespondWithJSON(w, r, http.StatusCreated, card)
		return
	}

	existed := true
	if _, err := h.cardService.Get(r.Context(), *req.ID); err != nil {
		existed = false
	}

	card, err := h.cardService.Save(r.Context(), &domain.FlashCard{
		ID:              *req.ID,
		Content:         req.Content,
		SourceLanguage:  req.SourceLanguage,
		Comment:         req.Comment,
		UserTranslation: req.UserTranslation,
		Tags:            req.Tags,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if !existed {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, card)
}

// ListCards handles GET /cards?language=&tags=a,b&include_untagged=.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	includeUntagged, err := queryBool(r, "include_untagged")
	if err != nil {
		respondError(w, r, err)
		return
	}

	cards, err := h.cardService.List(r.Context(), store.CardQuery{
		SourceLanguage: r.URL.Query().Get("language"),
		Filter:         domain.TagFilter{Tags: queryTags(r), IncludeUntagged: includeUntagged},
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	if cards == nil {
		cards = []*domain.FlashCard{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardListResponse{Cards: cards, Count: len(cards)})
}

// GetCard handles GET /cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	card, err := h.cardService.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// UpdateCard handles PUT /cards/{id}.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req UpdateCardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	card, err := h.cardService.Update(r.Context(), id, req.toUpdate())
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Debug("card updated", slog.String("card_id", id.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.cardService.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AvailableTags handles GET /languages/{lang}/tags.
func (h *CardHandler) AvailableTags(w http.ResponseWriter, r *http.Request) {
	lang := domain.NormalizeLanguage(chi.URLParam(r, "lang"))

	summary, err := h.cardService.AvailableTags(r.Context(), lang)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if summary.Tags == nil {
		summary.Tags = []domain.TagCount{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TagsResponse{Language: lang, TagSummary: *summary})
}
