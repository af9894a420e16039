package quiz

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/signacademy/signquiz/internal/progress"
)

// Service owns the quiz session lifecycle: start, per-question answering,
// and finalization. It is the only writer of sessions and of the progression
// ledger. Per-session serialization comes from the store's lock; ledger
// mutations run inside the ledger store's transactional Update.
type Service struct {
	sessions SessionStore
	ledger   progress.Store
	builder  *Builder
	logger   zerolog.Logger

	defaultCount int
	maxCount     int
}

// ServiceOptions configures the quiz service.
type ServiceOptions struct {
	DefaultQuestionCount int
	MaxQuestionCount     int
}

// NewService creates the quiz session service.
func NewService(sessions SessionStore, ledger progress.Store, builder *Builder, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.DefaultQuestionCount <= 0 {
		opts.DefaultQuestionCount = DefaultQuestionCount
	}
	if opts.MaxQuestionCount <= 0 {
		opts.MaxQuestionCount = 10
	}
	return &Service{
		sessions:     sessions,
		ledger:       ledger,
		builder:      builder,
		logger:       logger.With().Str("component", "quiz").Logger(),
		defaultCount: opts.DefaultQuestionCount,
		maxCount:     opts.MaxQuestionCount,
	}
}

// Start opens a new session at the requested level. The level must already be
// unlocked for the user. The returned projection withholds the answer key.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, params StartParams) (*StartResult, error) {
	if params.Level < 1 {
		params.Level = 1
	}
	count := params.Count
	if count <= 0 {
		count = s.defaultCount
	}
	if count > s.maxCount {
		count = s.maxCount
	}

	ledger, err := s.ledger.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if params.Level > ledger.UnlockedLevel {
		return nil, ErrLevelLocked
	}

	questions, err := s.builder.Build(ctx, params.Level, params.Topic, count)
	if err != nil {
		return nil, err
	}

	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = AnswerPending
	}

	session := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		Level:     params.Level,
		Questions: questions,
		Answers:   answers,
		StartedAt: time.Now().UTC(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", userID.String()).
		Int("level", session.Level).
		Int("questions", len(questions)).
		Msg("quiz session started")

	views := make([]QuestionView, len(questions))
	for i, q := range questions {
		views[i] = QuestionView{MediaRef: q.MediaRef, Choices: q.Choices}
	}

	return &StartResult{
		SessionID: session.ID,
		Level:     session.Level,
		Total:     len(questions),
		Questions: views,
	}, nil
}

// Answer records a choice for one question slot. Slots are write-once: a
// replay reports the stored outcome without touching the session score, the
// correct count, or the ledger.
func (s *Service) Answer(ctx context.Context, userID uuid.UUID, sessionID string, questionIndex, choice int) (*AnswerResult, error) {
	unlock, err := s.sessions.Lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, ErrAlreadyFinished
	}
	if questionIndex < 0 || questionIndex >= len(session.Questions) {
		return nil, ErrInvalidIndex
	}

	question := session.Questions[questionIndex]

	if prev := session.Answers[questionIndex]; prev != AnswerPending {
		return &AnswerResult{
			Correct:         prev == question.CorrectIndex,
			CorrectIndex:    question.CorrectIndex,
			AlreadyAnswered: true,
		}, nil
	}

	// Out-of-range choices count as wrong; clamp so the pending sentinel
	// cannot be forged.
	if choice < 0 || choice >= len(question.Choices) {
		choice = AnswerTimedOut
	}

	correct := choice == question.CorrectIndex
	delta := ScoreWrong
	if correct {
		delta = ScoreCorrect
	}

	session.Answers[questionIndex] = choice
	session.Score += delta
	if correct {
		session.CorrectCount++
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}

	if _, err := s.ledger.Update(ctx, userID, func(l *progress.Ledger) error {
		l.AddScore(delta)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("apply score delta: %w", err)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("user_id", userID.String()).
		Int("question_index", questionIndex).
		Bool("correct", correct).
		Int("delta", delta).
		Msg("answer submitted")

	return &AnswerResult{Correct: correct, CorrectIndex: question.CorrectIndex}, nil
}

// Finish closes the session: still-pending slots become timed-out with the
// wrong-answer penalty, the ledger absorbs the penalties plus the level
// result, and the session becomes read-only. Finishing twice fails with
// ErrAlreadyFinished instead of re-charging penalties.
func (s *Service) Finish(ctx context.Context, userID uuid.UUID, sessionID string) (*FinishResult, error) {
	unlock, err := s.sessions.Lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	defer unlock()

	session, err := s.loadOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.Open() {
		return nil, ErrAlreadyFinished
	}

	penalty := 0
	for i, answer := range session.Answers {
		if answer == AnswerPending {
			session.Answers[i] = AnswerTimedOut
			penalty += ScoreWrong
		}
	}
	session.Score += penalty

	now := time.Now().UTC()
	session.FinishedAt = &now

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("persist finish: %w", err)
	}

	stars := session.CorrectCount
	if stars > MaxStars {
		stars = MaxStars
	}
	perfect := session.CorrectCount == len(session.Questions)

	ledger, err := s.ledger.Update(ctx, userID, func(l *progress.Ledger) error {
		l.AddScore(penalty)
		l.RecordResult(session.Level, stars, perfect)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record result: %w", err)
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Str("user_id", userID.String()).
		Int("level", session.Level).
		Int("correct", session.CorrectCount).
		Int("stars", stars).
		Int("final_score", session.Score).
		Int("unlocked_level", ledger.UnlockedLevel).
		Msg("quiz session finished")

	return &FinishResult{
		CorrectCount:  session.CorrectCount,
		Total:         len(session.Questions),
		Stars:         stars,
		FinalScore:    session.Score,
		UnlockedLevel: ledger.UnlockedLevel,
	}, nil
}

// Status returns the user's progression ledger.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (progress.Ledger, error) {
	return s.ledger.Get(ctx, userID)
}

// Reset reinitializes the user's progression ledger.
func (s *Service) Reset(ctx context.Context, userID uuid.UUID) (progress.Ledger, error) {
	return s.ledger.Reset(ctx, userID)
}

// loadOwned fetches a session and hides sessions owned by other users behind
// ErrSessionNotFound.
func (s *Service) loadOwned(ctx context.Context, sessionID string, userID uuid.UUID) (*Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
