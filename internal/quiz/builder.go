package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/signacademy/signquiz/internal/catalog"
)

const distractorsPerQuestion = choicesPerQuestion - 1

// Pool is the content source questions are built from (implemented by
// catalog.Service).
type Pool interface {
	SampleUsable(ctx context.Context, f catalog.Filter, count int) ([]catalog.Sign, error)
	ListUsableDisplayTexts(ctx context.Context) ([]string, error)
}

// Builder assembles randomized multiple-choice questions from the sign pool.
// The random source is injected so tests can assert exact orderings.
type Builder struct {
	pool Pool

	// rng is not safe for concurrent use; Build serializes access.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder creates a question builder. A nil rng gets a time-seeded source.
func NewBuilder(pool Pool, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Builder{pool: pool, rng: rng}
}

// Build produces count questions for the given level and optional topic. Each
// question pairs one correct sign with three distractor texts drawn from the
// usable pool, shuffled uniformly. Pure over the pool snapshot: no writes.
func (b *Builder) Build(ctx context.Context, level int, topic string, count int) ([]Question, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}

	signs, err := b.pool.SampleUsable(ctx, catalog.Filter{Topic: topic, MaxDifficulty: level}, count)
	if err != nil {
		return nil, fmt.Errorf("sample pool: %w", err)
	}
	if len(signs) < count {
		return nil, fmt.Errorf("%w: need %d signs, pool has %d", ErrInsufficientContent, count, len(signs))
	}

	texts, err := b.pool.ListUsableDisplayTexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list distractor texts: %w", err)
	}
	distinct := dedupe(texts)

	b.mu.Lock()
	defer b.mu.Unlock()

	questions := make([]Question, 0, count)
	for _, sign := range signs {
		q, err := b.buildQuestion(sign, distinct)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// buildQuestion picks distractors and shuffles choices for one sign. Caller
// holds b.mu.
func (b *Builder) buildQuestion(sign catalog.Sign, textPool []string) (Question, error) {
	candidates := make([]string, 0, len(textPool))
	for _, t := range textPool {
		if t != sign.Display {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) < distractorsPerQuestion {
		return Question{}, fmt.Errorf("%w: need %d distractor texts for %q, have %d",
			ErrInsufficientContent, distractorsPerQuestion, sign.Display, len(candidates))
	}

	choices := make([]string, 0, choicesPerQuestion)
	choices = append(choices, sign.Display)
	for _, idx := range b.rng.Perm(len(candidates))[:distractorsPerQuestion] {
		choices = append(choices, candidates[idx])
	}

	shuffled := make([]string, choicesPerQuestion)
	correctIndex := 0
	for dst, src := range b.rng.Perm(choicesPerQuestion) {
		shuffled[dst] = choices[src]
		if src == 0 {
			correctIndex = dst
		}
	}

	return Question{
		SignID:       sign.ID,
		MediaRef:     sign.MediaRef,
		Choices:      shuffled,
		CorrectIndex: correctIndex,
	}, nil
}

func dedupe(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
