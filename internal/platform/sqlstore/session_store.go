package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/store"
)

type sessionRow struct {
	ID               string       `db:"id"`
	SourceLanguage   string       `db:"source_language"`
	TargetLanguage   string       `db:"target_language"`
	CurrentCardIndex int          `db:"current_card_index"`
	CreatedAt        time.Time    `db:"created_at"`
	CompletedAt      sql.NullTime `db:"completed_at"`
}

type responseRow struct {
	CardID       uuid.UUID `db:"card_id"`
	UserResponse string    `db:"user_response"`
	Correct      bool      `db:"correct"`
	Skipped      bool      `db:"skipped"`
	RecordedAt   time.Time `db:"recorded_at"`
}

// SessionStore implements store.SessionStore with sqlx and squirrel.
type SessionStore struct {
	db      store.DBTX
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

// NewSessionStore creates a session store on a connection or transaction.
// If logger is nil, a default logger will be used.
func NewSessionStore(db store.DBTX, logger *slog.Logger) *SessionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SessionStore{
		db:      db,
		builder: statementBuilder(db),
		logger:  logger.With(slog.String("component", "session_store")),
	}
}

// Ensure SessionStore implements store.SessionStore interface
var _ store.SessionStore = (*SessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if session.ID == "" || len(session.CardIDs) == 0 {
		return fmt.Errorf("%w: session needs an id and at least one card", store.ErrInvalidEntity)
	}

	err := inTx(ctx, s.db, func(db store.DBTX) error {
		query, args, err := s.builder.
			Insert("practice_sessions").
			Columns("id", "source_language", "target_language", "current_card_index", "created_at", "completed_at").
			Values(session.ID, session.SourceLanguage, session.TargetLanguage, session.CurrentCardIndex,
				session.CreatedAt, nullTime(session.CompletedAt)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return MapError(err)
		}

		cards := s.builder.Insert("session_cards").Columns("session_id", "position", "card_id")
		for i, id := range session.CardIDs {
			cards = cards.Values(session.ID, i, id)
		}
		query, args, err = cards.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build card insert: %w", err)
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return MapError(err)
		}

		return s.insertResponses(ctx, db, session.ID, 0, session.Responses)
	})
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID))
		return err
	}

	log.Debug("session created",
		slog.String("session_id", session.ID),
		slog.Int("cards", len(session.CardIDs)))
	return nil
}

// GetByID implements store.SessionStore.GetByID.
func (s *SessionStore) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := s.builder.
		Select("id", "source_language", "target_language", "current_card_index", "created_at", "completed_at").
		From("practice_sessions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build session query: %w", err)
	}

	var row sessionRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found", slog.String("session_id", id))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return nil, MapError(err)
	}

	session := &domain.Session{
		ID:               row.ID,
		SourceLanguage:   row.SourceLanguage,
		TargetLanguage:   row.TargetLanguage,
		CurrentCardIndex: row.CurrentCardIndex,
		CreatedAt:        row.CreatedAt.UTC(),
		Responses:        []domain.Response{},
	}
	if row.CompletedAt.Valid {
		completed := row.CompletedAt.Time.UTC()
		session.CompletedAt = &completed
	}

	query, args, err = s.builder.
		Select("card_id").
		From("session_cards").
		Where(sq.Eq{"session_id": id}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build session cards query: %w", err)
	}
	if err := s.db.SelectContext(ctx, &session.CardIDs, query, args...); err != nil {
		log.Error("failed to load session cards",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return nil, MapError(err)
	}

	query, args, err = s.builder.
		Select("card_id", "user_response", "correct", "skipped", "recorded_at").
		From("session_responses").
		Where(sq.Eq{"session_id": id}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build responses query: %w", err)
	}
	var responses []responseRow
	if err := s.db.SelectContext(ctx, &responses, query, args...); err != nil {
		log.Error("failed to load session responses",
			slog.String("error", err.Error()),
			slog.String("session_id", id))
		return nil, MapError(err)
	}
	for _, r := range responses {
		session.Responses = append(session.Responses, domain.Response{
			CardID:       r.CardID,
			UserResponse: r.UserResponse,
			Correct:      r.Correct,
			Skipped:      r.Skipped,
			RecordedAt:   r.RecordedAt.UTC(),
		})
	}

	return session, nil
}

// Save implements store.SessionStore.Save.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(session.Responses) != session.CurrentCardIndex {
		return fmt.Errorf("%w: %d responses recorded for card index %d",
			store.ErrInvalidEntity, len(session.Responses), session.CurrentCardIndex)
	}

	err := inTx(ctx, s.db, func(db store.DBTX) error {
		query, args, err := s.builder.
			Update("practice_sessions").
			Set("current_card_index", session.CurrentCardIndex).
			Set("completed_at", nullTime(session.CompletedAt)).
			Where(sq.Eq{"id": session.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update: %w", err)
		}
		result, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrSessionNotFound); err != nil {
			return err
		}

		query, args, err = s.builder.
			Select("COUNT(*)").
			From("session_responses").
			Where(sq.Eq{"session_id": session.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build count query: %w", err)
		}
		var stored int
		if err := db.GetContext(ctx, &stored, query, args...); err != nil {
			return MapError(err)
		}
		if stored > len(session.Responses) {
			return fmt.Errorf("%w: session %s has %d stored responses, got %d",
				store.ErrUpdateFailed, session.ID, stored, len(session.Responses))
		}

		return s.insertResponses(ctx, db, session.ID, stored, session.Responses[stored:])
	})
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			log.Debug("session not found for save", slog.String("session_id", session.ID))
			return err
		}
		log.Error("failed to save session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID))
		return err
	}

	log.Debug("session saved",
		slog.String("session_id", session.ID),
		slog.Int("current_card_index", session.CurrentCardIndex),
		slog.Bool("complete", session.CompletedAt != nil))
	return nil
}

func (s *SessionStore) insertResponses(
	ctx context.Context,
	db store.DBTX,
	sessionID string,
	offset int,
	responses []domain.Response,
) error {
	if len(responses) == 0 {
		return nil
	}

	insert := s.builder.
		Insert("session_responses").
		Columns("session_id", "position", "card_id", "user_response", "correct", "skipped", "recorded_at")
	for i, r := range responses {
		insert = insert.Values(sessionID, offset+i, r.CardID, r.UserResponse, r.Correct, r.Skipped, r.RecordedAt)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build response insert: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return MapError(err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
