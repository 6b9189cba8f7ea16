package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/api"
	"github.com/iav0207/fcards2-sub001/internal/api/shared"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/sqlstore"
	"github.com/iav0207/fcards2-sub001/internal/service"
	"github.com/iav0207/fcards2-sub001/internal/service/session"
	"github.com/iav0207/fcards2-sub001/internal/testutils"
	"github.com/iav0207/fcards2-sub001/internal/translation"
	"github.com/iav0207/fcards2-sub001/internal/translation/baseline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	cards   *sqlstore.CardStore
}

// newTestServer wires the real services over an in-memory database. The
// translator defaults to a provider-less chain that always degrades to the
// baseline.
func newTestServer(t *testing.T, translator api.Translator) *testServer {
	t.Helper()

	log := testutils.QuietLogger()
	db := testutils.NewTestDB(t)
	cards := sqlstore.NewCardStore(db, log)
	sessions := sqlstore.NewSessionStore(db, log)

	chain := translation.NewChain(nil, baseline.New(), translation.ChainConfig{}, log)
	if translator == nil {
		translator = chain
	}

	cardService, err := service.NewCardService(cards, translator, log)
	require.NoError(t, err)
	sessionService := session.NewService(cards, sessions, translator, log,
		session.WithShuffler(func([]uuid.UUID) {}))

	handler := api.NewRouter(api.RouterConfig{
		Cards:        api.NewCardHandler(cardService, log),
		Sessions:     api.NewSessionHandler(sessionService, log),
		Translations: api.NewTranslationHandler(translator, log),
		Logger:       log,
	})
	return &testServer{handler: handler, cards: cards}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Get(shared.TraceIDHeader), 32)

	health := decode[api.HealthResponse](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Empty(t, health.PrimaryProvider)
	assert.Empty(t, health.Providers)
}

func TestCardLifecycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/cards", map[string]any{
		"content":         "  hello ",
		"source_language": "EN",
		"tags":            []string{"greeting", " greeting", " common ", ""},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[domain.FlashCard](t, w)
	assert.Equal(t, "hello", created.Content)
	assert.Equal(t, "en", created.SourceLanguage)
	assert.Equal(t, []string{"greeting", "common"}, created.Tags)

	w = srv.do(t, http.MethodGet, "/api/v1/cards/"+created.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[domain.FlashCard](t, w).ID)

	w = srv.do(t, http.MethodPut, "/api/v1/cards/"+created.ID.String(), map[string]any{
		"user_translation": "Hallo",
		"tags":             []string{},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domain.FlashCard](t, w)
	assert.Equal(t, "Hallo", updated.UserTranslation)
	assert.Equal(t, "hello", updated.Content)
	assert.Empty(t, updated.Tags)
	assert.NotNil(t, updated.Tags)

	w = srv.do(t, http.MethodDelete, "/api/v1/cards/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/cards/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode[shared.ErrorResponse](t, w)
	assert.Equal(t, "Card not found", resp.Error)
	assert.Equal(t, api.CodeNotFound, resp.Code)
	assert.NotEmpty(t, resp.TraceID)

	w = srv.do(t, http.MethodDelete, "/api/v1/cards/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCardWithID(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	id := uuid.New()

	body := map[string]any{"id": id, "content": "water", "source_language": "en"}
	w := srv.do(t, http.MethodPost, "/api/v1/cards", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, id, decode[domain.FlashCard](t, w).ID)

	body["content"] = "still water"
	w = srv.do(t, http.MethodPost, "/api/v1/cards", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "still water", decode[domain.FlashCard](t, w).Content)
}

func TestCreateCardGeneratesTranslation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/cards", map[string]any{
		"content": "Hello", "source_language": "en", "translate_to": "de",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Hallo", decode[domain.FlashCard](t, w).UserTranslation)

	w = srv.do(t, http.MethodPost, "/api/v1/cards", map[string]any{
		"content": "unknown phrase", "source_language": "en", "translate_to": "de",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, decode[domain.FlashCard](t, w).UserTranslation, "baseline misses are not stored")
}

func TestCreateCardValidation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"missing content", map[string]any{"source_language": "en"}},
		{"blank content", map[string]any{"content": "   ", "source_language": "en"}},
		{"missing language", map[string]any{"content": "x"}},
		{"malformed json", `{"content": `},
		{"unknown field", map[string]any{"content": "x", "source_language": "en", "owner": "me"}},
		{"empty body", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := srv.do(t, http.MethodPost, "/api/v1/cards", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, api.CodeValidation, decode[shared.ErrorResponse](t, w).Code)
		})
	}

	w := srv.do(t, http.MethodGet, "/api/v1/cards/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", decode[shared.ErrorResponse](t, w).Error)
}

func TestListCardsAndTags(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	testutils.InsertTagScenario(t, srv.cards)

	contents := func(w *httptest.ResponseRecorder) []string {
		t.Helper()
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		list := decode[api.CardListResponse](t, w)
		assert.Equal(t, len(list.Cards), list.Count)
		out := make([]string, 0, len(list.Cards))
		for _, c := range list.Cards {
			out = append(out, c.Content)
		}
		return out
	}

	assert.Len(t, contents(srv.do(t, http.MethodGet, "/api/v1/cards", nil)), 6)
	assert.Equal(t, []string{"hello", "goodbye", "thank you", "yes", "no"},
		contents(srv.do(t, http.MethodGet, "/api/v1/cards?language=en", nil)))
	assert.Equal(t, []string{"hello", "goodbye"},
		contents(srv.do(t, http.MethodGet, "/api/v1/cards?language=en&tags=greeting,,farewell", nil)))
	assert.Equal(t, []string{"thank you", "yes", "no"},
		contents(srv.do(t, http.MethodGet, "/api/v1/cards?language=en&tags=polite&include_untagged=true", nil)))
	assert.Empty(t, contents(srv.do(t, http.MethodGet, "/api/v1/cards?language=ja", nil)))

	w := srv.do(t, http.MethodGet, "/api/v1/cards?include_untagged=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/languages/EN/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[api.TagsResponse](t, w)
	assert.Equal(t, "en", tags.Language)
	assert.Equal(t, []domain.TagCount{
		{Tag: "common", Count: 3},
		{Tag: "farewell", Count: 1},
		{Tag: "greeting", Count: 1},
		{Tag: "polite", Count: 1},
	}, tags.Tags)
	assert.Equal(t, 2, tags.UntaggedCount)

	w = srv.do(t, http.MethodGet, "/api/v1/languages/ja/tags", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags = decode[api.TagsResponse](t, w)
	assert.Empty(t, tags.Tags)
	assert.NotNil(t, tags.Tags)
}

func TestSessionFlow(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	testutils.InsertTagScenario(t, srv.cards)

	w := srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{
		"source_language": "en", "target_language": "de", "tags": []string{"greeting", "farewell"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	snapshot := decode[api.SessionResponse](t, w)
	require.Len(t, snapshot.CardIDs, 2)
	assert.Equal(t, domain.SessionCreated, snapshot.Status)
	assert.Equal(t, domain.Progress{Current: 1, Total: 2}, snapshot.Progress)
	base := "/api/v1/sessions/" + snapshot.ID

	w = srv.do(t, http.MethodGet, base+"/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	current := decode[session.CurrentCard](t, w)
	assert.Equal(t, "hello", current.Card.Content)

	// Wrong card is a conflict and records nothing.
	w = srv.do(t, http.MethodPost, base+"/answers", map[string]any{"card_id": snapshot.CardIDs[1], "answer": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, api.CodeCardMismatch, decode[shared.ErrorResponse](t, w).Code)

	w = srv.do(t, http.MethodPost, base+"/answers", map[string]any{"card_id": current.Card.ID, "answer": "hallo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	answer := decode[session.AnswerResult](t, w)
	assert.True(t, answer.Evaluation.Correct)
	assert.True(t, answer.Evaluation.Fallback)
	assert.Equal(t, domain.Progress{Current: 2, Total: 2}, answer.Progress)
	assert.False(t, answer.Complete)

	w = srv.do(t, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	advance := decode[api.AdvanceResponse](t, w)
	assert.True(t, advance.Complete)
	assert.Nil(t, advance.Current)

	w = srv.do(t, http.MethodGet, base+"/current", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = srv.do(t, http.MethodGet, base+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.SessionStats{Total: 2, Correct: 1, Skipped: 1, Accuracy: 50}, decode[domain.SessionStats](t, w))

	w = srv.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snapshot = decode[api.SessionResponse](t, w)
	assert.Equal(t, domain.SessionComplete, snapshot.Status)
	assert.NotNil(t, snapshot.CompletedAt)
	assert.Len(t, snapshot.Responses, 2)

	w = srv.do(t, http.MethodPost, base+"/advance", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, api.CodeSessionComplete, decode[shared.ErrorResponse](t, w).Code)
}

func TestCreateSessionErrors(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	testutils.InsertTagScenario(t, srv.cards)

	w := srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{
		"source_language": "en", "target_language": "de", "tags": []string{"nothing"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, api.CodeNoCardsAvailable, decode[shared.ErrorResponse](t, w).Code)

	w = srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{
		"source_language": "en", "target_language": "en",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{
		"source_language": "en", "target_language": "de", "max_cards": -2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", decode[shared.ErrorResponse](t, w).Error)
}

func TestSampleSession(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{
		"source_language": "en", "target_language": "de", "max_cards": 3, "use_sample_cards": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode[api.SessionResponse](t, w).CardIDs, 3)
}

func TestTranslations(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/translations/evaluate", domain.EvaluationRequest{
		SourceContent: "thank you", SourceLanguage: "en", TargetLanguage: "de",
		UserTranslation: "Danke", ReferenceTranslation: "Danke",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	eval := decode[domain.EvaluationResult](t, w)
	assert.True(t, eval.Correct)
	assert.Equal(t, "baseline", eval.Provider)
	assert.True(t, eval.Fallback)
	assert.JSONEq(t, `true`, string(mustField(t, w.Body.Bytes(), "_fallback")))

	w = srv.do(t, http.MethodPost, "/api/v1/translations/generate", domain.GenerationRequest{
		Content: "thank you", SourceLanguage: "en", TargetLanguage: "de",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Danke", decode[domain.GenerationResult](t, w).Translation)

	w = srv.do(t, http.MethodPost, "/api/v1/translations/generate", map[string]any{"content": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// strictTranslator fails every call the way a strict chain does.
type strictTranslator struct{}

func (strictTranslator) EvaluateTranslation(context.Context, domain.EvaluationRequest) (*domain.EvaluationResult, error) {
	return nil, &translation.ProviderError{Provider: "gemini", APIKeyError: true, Err: translation.ErrAPIKey}
}

func (strictTranslator) GenerateTranslation(context.Context, domain.GenerationRequest) (*domain.GenerationResult, error) {
	return nil, &translation.ProviderError{Provider: "gemini", Err: translation.ErrTransientFailure}
}

func (strictTranslator) Primary() string     { return "gemini" }
func (strictTranslator) Providers() []string { return []string{"gemini"} }

func TestStrictProviderErrors(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, strictTranslator{})

	w := srv.do(t, http.MethodPost, "/api/v1/translations/evaluate", domain.EvaluationRequest{
		SourceContent: "x", SourceLanguage: "en", TargetLanguage: "de", UserTranslation: "y",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode[shared.ErrorResponse](t, w)
	assert.Equal(t, api.CodeAPIKey, resp.Code)
	assert.Contains(t, resp.Error, "API key")

	w = srv.do(t, http.MethodPost, "/api/v1/translations/generate", domain.GenerationRequest{
		Content: "x", SourceLanguage: "en", TargetLanguage: "de",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, api.CodeProviderFailed, decode[shared.ErrorResponse](t, w).Code)

	w = srv.do(t, http.MethodGet, "/api/v1/health", nil)
	health := decode[api.HealthResponse](t, w)
	assert.Equal(t, "gemini", health.PrimaryProvider)
	assert.Equal(t, []string{"gemini"}, health.Providers)
}

func TestDeletedCardDuringSession(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)
	card := testutils.MustInsertCard(t, srv.cards, testutils.WithCardTranslation("Hallo"))

	w := srv.do(t, http.MethodPost, "/api/v1/sessions", map[string]any{"source_language": "en", "target_language": "de"})
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/v1/sessions/" + decode[api.SessionResponse](t, w).ID

	require.NoError(t, srv.cards.Delete(context.Background(), card.ID))

	w = srv.do(t, http.MethodGet, base+"/current", nil)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, api.CodeCardUnavailable, decode[shared.ErrorResponse](t, w).Code)

	w = srv.do(t, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[api.AdvanceResponse](t, w).Complete)
}

func TestRouting(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/v1/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, api.CodeNotFound, decode[shared.ErrorResponse](t, w).Code)

	w = srv.do(t, http.MethodPatch, "/api/v1/cards", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCORS(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cards", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func mustField(t *testing.T, body []byte, name string) json.RawMessage {
	t.Helper()
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	raw, ok := fields[name]
	require.True(t, ok, "missing field %q", name)
	return raw
}
