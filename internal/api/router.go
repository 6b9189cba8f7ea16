package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/iav0207/fcards2-sub001/internal/api/middleware"
	"github.com/iav0207/fcards2-sub001/internal/api/shared"
	"github.com/rs/cors"
)

// DefaultAllowedOrigins are the renderer origins accepted when none are configured.
var DefaultAllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*", "app://*"}

// RouterConfig holds the handlers and settings of the HTTP boundary.
type RouterConfig struct {
	Cards          *CardHandler
	Sessions       *SessionHandler
	Translations   *TranslationHandler
	AllowedOrigins []string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter creates the application router with all routes under /api/v1.
func NewRouter(cfg RouterConfig) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	r := chi.NewRouter()

	r.Use(middleware.NewTraceMiddleware(cfg.Logger))
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		ExposedHeaders:   []string{shared.TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)
	r.Use(chimw.Timeout(timeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Route not found", shared.WithCode(CodeNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", cfg.Translations.Health)

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cfg.Cards.CreateCard)
			r.Get("/", cfg.Cards.ListCards)
			r.Get("/{id}", cfg.Cards.GetCard)
			r.Put("/{id}", cfg.Cards.UpdateCard)
			r.Delete("/{id}", cfg.Cards.DeleteCard)
		})
		r.Get("/languages/{lang}/tags", cfg.Cards.AvailableTags)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", cfg.Sessions.CreateSession)
			r.Get("/{id}", cfg.Sessions.GetSession)
			r.Get("/{id}/current", cfg.Sessions.GetCurrentCard)
			r.Post("/{id}/answers", cfg.Sessions.SubmitAnswer)
			r.Post("/{id}/advance", cfg.Sessions.AdvanceSession)
			r.Get("/{id}/stats", cfg.Sessions.GetSessionStats)
		})

		r.Post("/translations/evaluate", cfg.Translations.Evaluate)
		r.Post("/translations/generate", cfg.Translations.Generate)
	})

	return r
}
