package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/store"
	"github.com/jmoiron/sqlx"
)

var cardColumns = []string{
	"f.id",
	"f.content",
	"f.source_language",
	"f.comment",
	"f.user_translation",
	"f.created_at",
	"f.updated_at",
}

type cardRow struct {
	ID              uuid.UUID `db:"id"`
	Content         string    `db:"content"`
	SourceLanguage  string    `db:"source_language"`
	Comment         string    `db:"comment"`
	UserTranslation string    `db:"user_translation"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r cardRow) toDomain() *domain.FlashCard {
	return &domain.FlashCard{
		ID:              r.ID,
		Content:         r.Content,
		SourceLanguage:  r.SourceLanguage,
		Comment:         r.Comment,
		UserTranslation: r.UserTranslation,
		Tags:            []string{},
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

type tagRow struct {
	CardID uuid.UUID `db:"card_id"`
	Tag    string    `db:"tag"`
}

// CardStore implements store.CardStore with sqlx and squirrel.
type CardStore struct {
	db      store.DBTX
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

// NewCardStore creates a card store on a connection or transaction.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:      db,
		builder: statementBuilder(db),
		logger:  logger.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// WithTx returns a card store bound to tx.
func (s *CardStore) WithTx(tx *sqlx.Tx) *CardStore {
	return &CardStore{db: tx, builder: s.builder, logger: s.logger}
}

// Create implements store.CardStore.Create.
func (s *CardStore) Create(ctx context.Context, card *domain.FlashCard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card.Tags = domain.NormalizeTags(card.Tags)
	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := inTx(ctx, s.db, func(db store.DBTX) error {
		query, args, err := s.builder.
			Insert("flashcards").
			Columns("id", "content", "source_language", "comment", "user_translation", "created_at", "updated_at").
			Values(card.ID, card.Content, card.SourceLanguage, card.Comment, card.UserTranslation,
				card.CreatedAt, card.UpdatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return MapError(err)
		}
		return s.insertTags(ctx, db, card.ID, card.Tags)
	})
	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("source_language", card.SourceLanguage),
		slog.Int("tags", len(card.Tags)))
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlashCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := s.selectCards(ctx, sq.Eq{"f.id": id.String()})
	if err != nil {
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}
	if len(cards) == 0 {
		log.Debug("card not found", slog.String("card_id", id.String()))
		return nil, store.ErrCardNotFound
	}
	return cards[0], nil
}

// Update implements store.CardStore.Update.
// Tags are replaced wholesale and keep the order they have on the card.
func (s *CardStore) Update(ctx context.Context, card *domain.FlashCard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card.Tags = domain.NormalizeTags(card.Tags)
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := inTx(ctx, s.db, func(db store.DBTX) error {
		query, args, err := s.builder.
			Update("flashcards").
			Set("content", card.Content).
			Set("source_language", card.SourceLanguage).
			Set("comment", card.Comment).
			Set("user_translation", card.UserTranslation).
			Set("updated_at", card.UpdatedAt).
			Where(sq.Eq{"id": card.ID.String()}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update: %w", err)
		}
		result, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return MapError(err)
		}
		if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
			return err
		}

		query, args, err = s.builder.Delete("flashcard_tags").Where(sq.Eq{"card_id": card.ID.String()}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build tag delete: %w", err)
		}
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return MapError(err)
		}
		return s.insertTags(ctx, db, card.ID, card.Tags)
	})
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Debug("card not found for update", slog.String("card_id", card.ID.String()))
			return err
		}
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	log.Debug("card updated", slog.String("card_id", card.ID.String()))
	return nil
}

// Delete implements store.CardStore.Delete.
// Tags are removed by the ON DELETE CASCADE constraint.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := s.builder.Delete("flashcards").Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		log.Debug("card not found for delete", slog.String("card_id", id.String()))
		return err
	}

	log.Debug("card deleted", slog.String("card_id", id.String()))
	return nil
}

// List implements store.CardStore.List.
func (s *CardStore) List(ctx context.Context, q store.CardQuery) ([]*domain.FlashCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := sq.And{}
	if lang := domain.NormalizeLanguage(q.SourceLanguage); lang != "" {
		where = append(where, sq.Eq{"f.source_language": lang})
	}
	if pred := tagPredicate(q.Filter); pred != nil {
		where = append(where, pred)
	}

	cards, err := s.selectCards(ctx, where)
	if err != nil {
		log.Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("source_language", q.SourceLanguage))
		return nil, err
	}

	log.Debug("cards listed",
		slog.String("source_language", q.SourceLanguage),
		slog.Any("tags", q.Filter.Tags),
		slog.Bool("include_untagged", q.Filter.IncludeUntagged),
		slog.Int("count", len(cards)))
	return cards, nil
}

// AvailableTags implements store.CardStore.AvailableTags.
func (s *CardStore) AvailableTags(ctx context.Context, sourceLanguage string) (*domain.TagSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	lang := domain.NormalizeLanguage(sourceLanguage)

	query, args, err := s.builder.
		Select("t.tag", "COUNT(*) AS count").
		From("flashcard_tags t").
		Join("flashcards f ON f.id = t.card_id").
		Where(sq.Eq{"f.source_language": lang}).
		GroupBy("t.tag").
		OrderBy("t.tag").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tag query: %w", err)
	}

	summary := &domain.TagSummary{Tags: []domain.TagCount{}}
	if err := s.db.SelectContext(ctx, &summary.Tags, query, args...); err != nil {
		log.Error("failed to aggregate tags",
			slog.String("error", err.Error()),
			slog.String("source_language", lang))
		return nil, MapError(err)
	}

	query, args, err = s.builder.
		Select("COUNT(*)").
		From("flashcards f").
		Where(sq.Eq{"f.source_language": lang}).
		Where(untaggedPredicate()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build untagged query: %w", err)
	}
	if err := s.db.GetContext(ctx, &summary.UntaggedCount, query, args...); err != nil {
		log.Error("failed to count untagged cards",
			slog.String("error", err.Error()),
			slog.String("source_language", lang))
		return nil, MapError(err)
	}

	return summary, nil
}

// selectCards loads the cards matching where, then their tags with a join
// on the same condition.
func (s *CardStore) selectCards(ctx context.Context, where sq.Sqlizer) ([]*domain.FlashCard, error) {
	query, args, err := s.builder.
		Select(cardColumns...).
		From("flashcards f").
		Where(where).
		OrderBy("f.created_at", "f.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}

	var rows []cardRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, MapError(err)
	}

	cards := make([]*domain.FlashCard, 0, len(rows))
	byID := make(map[uuid.UUID]*domain.FlashCard, len(rows))
	for _, r := range rows {
		card := r.toDomain()
		cards = append(cards, card)
		byID[card.ID] = card
	}
	if len(cards) == 0 {
		return cards, nil
	}

	query, args, err = s.builder.
		Select("t.card_id", "t.tag").
		From("flashcard_tags t").
		Join("flashcards f ON f.id = t.card_id").
		Where(where).
		OrderBy("t.card_id", "t.position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build tag query: %w", err)
	}

	var tags []tagRow
	if err := s.db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, MapError(err)
	}
	for _, t := range tags {
		if card, ok := byID[t.CardID]; ok {
			card.Tags = append(card.Tags, t.Tag)
		}
	}

	return cards, nil
}

func (s *CardStore) insertTags(ctx context.Context, db store.DBTX, cardID uuid.UUID, tags []string) error {
	if len(tags) == 0 {
		return nil
	}

	insert := s.builder.Insert("flashcard_tags").Columns("card_id", "tag", "position")
	for i, tag := range tags {
		insert = insert.Values(cardID, tag, i)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build tag insert: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return MapError(err)
	}
	return nil
}

// tagPredicate translates a TagFilter into a condition on flashcards f.
// It returns nil when the filter lets every card through.
func tagPredicate(f domain.TagFilter) sq.Sqlizer {
	tags := domain.NormalizeTags(f.Tags)
	if len(tags) == 0 && !f.IncludeUntagged {
		return nil
	}

	var or sq.Or
	if len(tags) > 0 {
		sub, args, err := sq.Select("1").
			From("flashcard_tags ft").
			Where("ft.card_id = f.id").
			Where(sq.Eq{"ft.tag": tags}).
			ToSql()
		if err != nil {
			return sq.Expr("1 = 0")
		}
		or = append(or, sq.Expr("EXISTS ("+sub+")", args...))
	}
	if f.IncludeUntagged {
		or = append(or, untaggedPredicate())
	}
	return or
}

func untaggedPredicate() sq.Sqlizer {
	return sq.Expr("NOT EXISTS (SELECT 1 FROM flashcard_tags ft WHERE ft.card_id = f.id)")
}

// inTx runs fn in a transaction when db is a connection pool, and directly
// when db already is a transaction.
func inTx(ctx context.Context, db store.DBTX, fn func(db store.DBTX) error) error {
	pool, ok := db.(*sqlx.DB)
	if !ok {
		return fn(db)
	}
	return store.RunInTransaction(ctx, pool, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(tx)
	})
}
