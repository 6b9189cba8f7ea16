package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/iav0207/fcards2-sub001/internal/domain"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// Shuffler reorders ids in place.
type Shuffler func(ids []uuid.UUID)

// Option configures the session service.
type Option func(*serviceImpl)

// WithShuffler replaces the random shuffle used for sampling.
func WithShuffler(shuffle Shuffler) Option {
	return func(s *serviceImpl) { s.shuffle = shuffle }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

// WithDefaultMaxCards sets the session size used when CreateOptions.MaxCards is zero.
func WithDefaultMaxCards(n int) Option {
	return func(s *serviceImpl) {
		if n > 0 {
			s.defaultMaxCards = n
		}
	}
}

// WithSampleCards replaces the built-in sample set.
func WithSampleCards(cards []*domain.FlashCard) Option {
	return func(s *serviceImpl) { s.samples = indexSamples(cards) }
}

type sampleSet struct {
	ordered []*domain.FlashCard
	byID    map[uuid.UUID]*domain.FlashCard
}

func indexSamples(cards []*domain.FlashCard) sampleSet {
	set := sampleSet{ordered: cards, byID: make(map[uuid.UUID]*domain.FlashCard, len(cards))}
	for _, c := range cards {
		set.byID[c.ID] = c
	}
	return set
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	cards     store.CardStore
	sessions  store.SessionStore
	evaluator Evaluator
	validate  *validator.Validate
	logger    *slog.Logger

	shuffle         Shuffler
	now             func() time.Time
	defaultMaxCards int
	samples         sampleSet

	// mu serialises load-modify-save of session progress.
	mu sync.Mutex
}

// NewService creates a new session Service.
func NewService(
	cards store.CardStore,
	sessions store.SessionStore,
	evaluator Evaluator,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if cards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cards cannot be nil")
	}
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil")
	}
	if evaluator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("evaluator cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		cards:     cards,
		sessions:  sessions,
		evaluator: evaluator,
		validate:  validator.New(),
		logger:    logger.With(slog.String("component", "session_service")),
		shuffle: func(ids []uuid.UUID) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		},
		now:             func() time.Time { return time.Now().UTC() },
		defaultMaxCards: DefaultMaxCards,
		samples:         indexSamples(SampleCards()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession implements Service.CreateSession.
func (s *serviceImpl) CreateSession(ctx context.Context, opts CreateOptions) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateLanguagePair(opts.SourceLanguage, opts.TargetLanguage); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	maxCards := opts.MaxCards
	if maxCards == 0 {
		maxCards = s.defaultMaxCards
	}

	var candidates []uuid.UUID
	if opts.UseSampleCards {
		for _, c := range s.samples.ordered {
			candidates = append(candidates, c.ID)
		}
	} else {
		ids, err := s.matchingCardIDs(ctx, opts)
		if err != nil {
			return nil, err
		}
		candidates = ids
	}

	if len(candidates) == 0 {
		log.Info("no cards match session filters",
			slog.String("source_language", opts.SourceLanguage),
			slog.Any("tags", opts.Tags),
			slog.Bool("include_untagged", opts.IncludeUntagged))
		return nil, domain.ErrNoCardsAvailable
	}

	s.shuffle(candidates)
	if len(candidates) > maxCards {
		candidates = candidates[:maxCards]
	}

	session, err := domain.NewSession(opts.SourceLanguage, opts.TargetLanguage, candidates, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error("failed to persist session", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("session created",
		slog.String("session_id", session.ID),
		slog.Int("card_count", len(session.CardIDs)),
		slog.Bool("sample_cards", opts.UseSampleCards))
	return session, nil
}

// matchingCardIDs queries the store and re-applies the filter to every
// returned card.
func (s *serviceImpl) matchingCardIDs(ctx context.Context, opts CreateOptions) ([]uuid.UUID, error) {
	filter := domain.TagFilter{Tags: domain.NormalizeTags(opts.Tags), IncludeUntagged: opts.IncludeUntagged}
	lang := domain.NormalizeLanguage(opts.SourceLanguage)

	cards, err := s.cards.List(ctx, store.CardQuery{SourceLanguage: lang, Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(cards))
	seen := make(map[uuid.UUID]struct{}, len(cards))
	for _, c := range cards {
		if c == nil || c.SourceLanguage != lang || !filter.Matches(c.Tags) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// GetSession implements Service.GetSession.
func (s *serviceImpl) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// GetCurrentCard implements Service.GetCurrentCard.
func (s *serviceImpl) GetCurrentCard(ctx context.Context, sessionID string) (*CurrentCard, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.currentCard(ctx, session)
}

func (s *serviceImpl) currentCard(ctx context.Context, session *domain.Session) (*CurrentCard, error) {
	cardID, ok := session.CurrentCardID()
	if !ok {
		return nil, nil
	}

	card, err := s.resolveCard(ctx, session, cardID)
	if err != nil {
		return nil, err
	}
	return &CurrentCard{SessionID: session.ID, Card: card, Progress: session.Progress()}, nil
}

// resolveCard finds a session card among the samples or in the store.
// A sample card carries the reference translation for the session's target
// language.
func (s *serviceImpl) resolveCard(ctx context.Context, session *domain.Session, cardID uuid.UUID) (*domain.FlashCard, error) {
	if c, ok := s.samples.byID[cardID]; ok {
		copied := *c
		copied.Tags = append([]string{}, c.Tags...)
		copied.UserTranslation = sampleReference(c, session.TargetLanguage)
		return &copied, nil
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Warn("session card was deleted",
				slog.String("card_id", cardID.String()))
			return nil, fmt.Errorf("%w: %s", ErrCardUnavailable, cardID)
		}
		return nil, fmt.Errorf("failed to load card: %w", err)
	}
	return card, nil
}

// RecordResponse implements Service.RecordResponse.
func (s *serviceImpl) RecordResponse(
	ctx context.Context,
	sessionID string,
	cardID uuid.UUID,
	userResponse string,
	correct bool,
) (*domain.Session, error) {
	return s.mutate(ctx, sessionID, func(session *domain.Session) error {
		return session.RecordResponse(cardID, userResponse, correct, s.now())
	})
}

// SubmitAnswer implements Service.SubmitAnswer.
// The evaluation runs without holding the session lock; the card is checked
// again when the verdict is recorded.
func (s *serviceImpl) SubmitAnswer(
	ctx context.Context,
	sessionID string,
	cardID uuid.UUID,
	answer string,
) (*AnswerResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	current, ok := session.CurrentCardID()
	if !ok {
		return nil, domain.ErrSessionComplete
	}
	if current != cardID {
		return nil, fmt.Errorf("%w: got %s, expected %s", domain.ErrCardMismatch, cardID, current)
	}

	card, err := s.resolveCard(ctx, session, cardID)
	if err != nil {
		return nil, err
	}

	evaluation, err := s.evaluator.EvaluateTranslation(ctx, domain.EvaluationRequest{
		SourceContent:        card.Content,
		SourceLanguage:       session.SourceLanguage,
		TargetLanguage:       session.TargetLanguage,
		UserTranslation:      answer,
		ReferenceTranslation: card.UserTranslation,
	})
	if err != nil {
		log.Warn("answer evaluation failed",
			slog.String("session_id", sessionID),
			slog.String("card_id", cardID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to evaluate answer: %w", err)
	}

	updated, err := s.RecordResponse(ctx, sessionID, cardID, answer, evaluation.Correct)
	if err != nil {
		return nil, err
	}

	log.Debug("answer recorded",
		slog.String("session_id", sessionID),
		slog.String("card_id", cardID.String()),
		slog.Bool("correct", evaluation.Correct),
		slog.String("provider", evaluation.Provider))

	return &AnswerResult{
		Evaluation: evaluation,
		Progress:   updated.Progress(),
		Complete:   updated.IsComplete(),
	}, nil
}

// AdvanceSession implements Service.AdvanceSession.
func (s *serviceImpl) AdvanceSession(ctx context.Context, sessionID string) (*CurrentCard, error) {
	session, err := s.mutate(ctx, sessionID, func(session *domain.Session) error {
		_, err := session.Skip(s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.currentCard(ctx, session)
}

// GetSessionStats implements Service.GetSessionStats.
func (s *serviceImpl) GetSessionStats(ctx context.Context, sessionID string) (*domain.SessionStats, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	stats := session.Stats()
	return &stats, nil
}

// mutate loads a session, applies fn and saves the result under the lock.
func (s *serviceImpl) mutate(ctx context.Context, sessionID string, fn func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if session.IsComplete() {
		logger.FromContextOrDefault(ctx, s.logger).Info("session complete",
			slog.String("session_id", session.ID),
			slog.Int("card_count", len(session.CardIDs)))
	}
	return session, nil
}
