package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/iav0207/fcards2-sub001/internal/api"
	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/platform/sqlstore"
	"github.com/iav0207/fcards2-sub001/internal/service"
	"github.com/iav0207/fcards2-sub001/internal/service/session"
	"github.com/iav0207/fcards2-sub001/internal/store"
	"github.com/iav0207/fcards2-sub001/internal/translation"
	"github.com/iav0207/fcards2-sub001/internal/translation/baseline"
	"github.com/jmoiron/sqlx"
)

// application holds the shared dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	cardStore    store.CardStore
	sessionStore store.SessionStore

	chain          *translation.Chain
	cardService    service.CardService
	sessionService session.Service
}

// newApplication wires stores, translation providers and services. db must
// already be migrated.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config:       cfg,
		logger:       logger,
		db:           db,
		cardStore:    sqlstore.NewCardStore(db, logger),
		sessionStore: sqlstore.NewSessionStore(db, logger),
	}

	registry, err := buildRegistry(ctx, cfg, logger, http.DefaultClient)
	if err != nil {
		return nil, err
	}

	app.chain = translation.NewChain(registry, baseline.New(), translation.ChainConfig{
		Primary: cfg.Translation.PrimaryProvider,
		Timeout: cfg.Translation.Timeout,
		Strict:  cfg.Translation.Strict,
	}, logger)
	logger.Info("translation chain ready",
		slog.String("primary", app.chain.Primary()),
		slog.Any("providers", app.chain.Providers()),
		slog.Bool("strict", cfg.Translation.Strict))

	app.cardService, err = service.NewCardService(app.cardStore, app.chain, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.sessionService = session.NewService(app.cardStore, app.sessionStore, app.chain, logger,
		session.WithDefaultMaxCards(cfg.Session.DefaultMaxCards))

	logger.Info("application initialized")
	return app, nil
}

// router builds the HTTP boundary over the application's services.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Cards:          api.NewCardHandler(app.cardService, app.logger),
		Sessions:       api.NewSessionHandler(app.sessionService, app.logger),
		Translations:   api.NewTranslationHandler(app.chain, app.logger),
		AllowedOrigins: app.config.Server.AllowedOrigins,
		RequestTimeout: 2*app.config.Translation.Timeout + requestTimeoutMargin,
		Logger:         app.logger,
	})
}

// Run serves the API until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", app.config.Server.Host, app.config.Server.Port)
	if err := serve(ctx, addr, app.router(), app.logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
