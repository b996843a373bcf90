package app

import (
	"math/rand"
	"time"

	"tietotesti/internal/domain"
)

// Session is one player's attempt at a fixed sequence of questions.
// It is owned by a single play connection and is not safe for concurrent use.
type Session struct {
	pool     []domain.Question
	index    int
	score    int
	selected domain.Choice
	revealed bool
	done     bool
	saved    bool
}

// SessionOption tunes StartSession.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	rnd *rand.Rand
}

// WithRand makes question selection deterministic in tests.
func WithRand(r *rand.Rand) SessionOption {
	return func(c *sessionConfig) {
		c.rnd = r
	}
}

// StartSession picks min(requested, len(pool)) questions in uniformly random
// order. The caller's slice is left untouched.
func StartSession(pool []domain.Question, requested int, opts ...SessionOption) (*Session, error) {
	if len(pool) == 0 {
		return nil, domain.ErrEmptyPool
	}
	if requested <= 0 {
		return nil, domain.NewValidationError("count", "must be positive")
	}

	cfg := sessionConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rnd == nil {
		cfg.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)
	// rand.Shuffle is Fisher-Yates.
	cfg.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := requested
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return &Session{pool: shuffled[:n:n]}, nil
}

// SelectAnswer marks a choice for the current question. Selecting after the
// answer was revealed is ignored.
func (s *Session) SelectAnswer(choice domain.Choice) error {
	if s.done {
		return domain.ErrSessionCompleted
	}
	if !choice.Valid() {
		return domain.NewValidationError("choice", "must be one of A, B, C or D")
	}
	if s.revealed {
		return nil
	}
	s.selected = choice
	return nil
}

// AnswerResult is the feedback for a submitted answer.
type AnswerResult struct {
	Correct       bool          `json:"correct"`
	Selected      domain.Choice `json:"selected"`
	CorrectOption domain.Choice `json:"correct_option"`
	CorrectText   string        `json:"correct_text"`
	Feedback      string        `json:"feedback"`
	Score         int           `json:"score"`
	Last          bool          `json:"last"`
}

// Submit evaluates the selected answer exactly once per question.
func (s *Session) Submit() (AnswerResult, error) {
	if s.done {
		return AnswerResult{}, domain.ErrSessionCompleted
	}
	if s.revealed {
		return AnswerResult{}, domain.ErrAlreadyRevealed
	}
	if s.selected == "" {
		return AnswerResult{}, domain.ErrNoSelection
	}

	q := s.pool[s.index]
	correct := s.selected == q.Correct
	if correct {
		s.score++
	}
	s.revealed = true

	return AnswerResult{
		Correct:       correct,
		Selected:      s.selected,
		CorrectOption: q.Correct,
		CorrectText:   q.Option(q.Correct),
		Feedback:      feedback(correct, q),
		Score:         s.score,
		Last:          s.index+1 == len(s.pool),
	}, nil
}

// Advance moves past a revealed question, completing the session after the last one.
func (s *Session) Advance() error {
	if s.done {
		return domain.ErrSessionCompleted
	}
	if !s.revealed {
		return domain.ErrNotRevealed
	}
	if s.index+1 == len(s.pool) {
		s.done = true
		return nil
	}
	s.index++
	s.selected = ""
	s.revealed = false
	return nil
}

// IsComplete reports whether the last question has been passed.
func (s *Session) IsComplete() bool {
	return s.done
}

// FinalScore returns (score, total) once the session is complete.
func (s *Session) FinalScore() (int, int, error) {
	if !s.done {
		return 0, 0, domain.ErrSessionNotCompleted
	}
	return s.score, len(s.pool), nil
}

// Current returns the question being played.
func (s *Session) Current() (domain.Question, error) {
	if s.done {
		return domain.Question{}, domain.ErrSessionCompleted
	}
	return s.pool[s.index], nil
}

// Feedback is the player-facing verdict once the answer is revealed.
func (s *Session) Feedback() string {
	if !s.revealed || s.done {
		return ""
	}
	q := s.pool[s.index]
	return feedback(s.selected == q.Correct, q)
}

// SessionSnapshot is a read-only view of the play state.
type SessionSnapshot struct {
	Position int           `json:"position"`
	Total    int           `json:"total"`
	Score    int           `json:"score"`
	Selected domain.Choice `json:"selected,omitempty"`
	Revealed bool          `json:"revealed"`
	Done     bool          `json:"done"`
}

// Snapshot reports the 1-based position alongside the running score.
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		Position: s.index + 1,
		Total:    len(s.pool),
		Score:    s.score,
		Selected: s.selected,
		Revealed: s.revealed,
		Done:     s.done,
	}
}

func feedback(correct bool, q domain.Question) string {
	if correct {
		return "Oikein! Hienoa!"
	}
	return "Väärin. Oikea vastaus oli: " + q.Option(q.Correct)
}
