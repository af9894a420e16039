package quiz

import (
	"time"

	"github.com/google/uuid"
)

// Scoring constants. A question earns +5 when answered correctly; a wrong or
// timed-out answer costs 2 points.
const (
	ScoreCorrect = 5
	ScoreWrong   = -2

	// MaxStars caps the per-level star rating.
	MaxStars = 3

	// DefaultQuestionCount matches one level's worth of questions.
	DefaultQuestionCount = 3

	// choicesPerQuestion is one correct text plus three distractors.
	choicesPerQuestion = 4
)

// Answer slot sentinels. Client choices are clamped to >= -1 before storage
// so neither sentinel can be forged.
const (
	// AnswerPending marks a slot not yet written.
	AnswerPending = -2
	// AnswerTimedOut fills still-pending slots at finish time.
	AnswerTimedOut = -1
)

// Question is one server-side quiz item. CorrectIndex never leaves the server.
type Question struct {
	SignID       string   `json:"sign_id"`
	MediaRef     string   `json:"media_ref"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correct_index"`
}

// Session is the full state of one quiz attempt, answer key included. It is
// owned exclusively by the Service and persisted through a SessionStore.
type Session struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Level        int        `json:"level"`
	Questions    []Question `json:"questions"`
	Answers      []int      `json:"answers"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Score        int        `json:"score"`
	CorrectCount int        `json:"correct_count"`
}

// Open reports whether the session still accepts answers.
func (s *Session) Open() bool {
	return s.FinishedAt == nil
}

// QuestionView is the client-safe projection of a question.
type QuestionView struct {
	MediaRef string   `json:"media_ref"`
	Choices  []string `json:"choices"`
}

// StartParams configures a new session.
type StartParams struct {
	Level int
	Topic string
	Count int
}

// StartResult is returned to the client when a session opens.
type StartResult struct {
	SessionID uuid.UUID      `json:"session_id"`
	Level     int            `json:"level"`
	Total     int            `json:"total"`
	Questions []QuestionView `json:"questions"`
}

// AnswerResult reports the outcome of one submission. CorrectIndex is revealed
// only here, after the slot is committed.
type AnswerResult struct {
	Correct         bool `json:"correct"`
	CorrectIndex    int  `json:"correct_index"`
	AlreadyAnswered bool `json:"already_answered,omitempty"`
}

// FinishResult summarizes a finalized session.
type FinishResult struct {
	CorrectCount  int `json:"correct_count"`
	Total         int `json:"total"`
	Stars         int `json:"stars"`
	FinalScore    int `json:"final_score"`
	UnlockedLevel int `json:"unlocked_level"`
}
