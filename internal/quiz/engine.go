package quiz

import (
	"math/rand/v2"
	"strconv"

	"github.com/m3rciful/hskbot/internal/vocab"
)

// Vocabulary is the read side of the vocabulary store the engine draws
// questions from.
type Vocabulary interface {
	Query(level int) ([]vocab.Entry, error)
}

// Engine drives session transitions. It is stateless itself and safe for
// concurrent use as long as each Session is mutated under its own lock,
// which the session store guarantees.
type Engine struct {
	vocab Vocabulary
	pick  func(n int) int
}

// Option configures an Engine.
type Option func(*Engine)

// WithPicker replaces the random index picker, used by tests to make
// question selection deterministic.
func WithPicker(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

// New builds an engine over the given vocabulary.
func New(v Vocabulary, opts ...Option) *Engine {
	e := &Engine{vocab: v, pick: rand.IntN}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetLevel picks the HSK level. Valid only while choosing a level; a level
// outside 1..6 fails without touching the session.
func (e *Engine) SetLevel(s *Session, level int) error {
	if s.State != StateChoosingLevel {
		return &InvalidStateError{Op: "set level", State: s.State}
	}
	if !vocab.ValidLevel(level) {
		return &InvalidLevelError{Raw: strconv.Itoa(level)}
	}
	s.Level = level
	s.State = StateChoosingDirection
	return nil
}

// SetDirection picks the practice direction and issues the first question
// as part of the same transition.
func (e *Engine) SetDirection(s *Session, d Direction) (Prompt, error) {
	if s.State != StateChoosingDirection {
		return Prompt{}, &InvalidStateError{Op: "set direction", State: s.State}
	}
	s.Direction = d
	s.State = StateAwaitingAnswer

	p, err := e.next(s, nil)
	if err != nil {
		// Nothing to ask at this level. Fall all the way back to the level
		// choice so the next level pick is a valid transition.
		s.Direction = ""
		s.Level = 0
		s.State = StateChoosingLevel
		return Prompt{}, err
	}
	return p, nil
}

// NextQuestion draws a fresh question for a session that is already
// answering, excluding the word shown last.
func (e *Engine) NextQuestion(s *Session) (Prompt, error) {
	if s.State != StateAwaitingAnswer {
		return Prompt{}, &InvalidStateError{Op: "next question", State: s.State}
	}
	return e.next(s, s.Current)
}

// next selects uniformly from the level pool. With more than one entry the
// previous question is excluded by re-rolling over the remaining indexes,
// so back-to-back repeats cannot happen.
func (e *Engine) next(s *Session, prev *vocab.Entry) (Prompt, error) {
	pool, err := e.vocab.Query(s.Level)
	if err != nil {
		return Prompt{}, &EmptyPoolError{Level: s.Level, Err: err}
	}

	idx := e.pick(len(pool))
	if prev != nil && len(pool) > 1 && pool[idx] == *prev {
		idx2 := e.pick(len(pool) - 1)
		if idx2 >= idx {
			idx2++
		}
		idx = idx2
	}

	entry := pool[idx]
	s.Current = &entry
	return Prompt{
		Text:      PromptText(entry, s.Direction),
		Direction: s.Direction,
		Level:     s.Level,
	}, nil
}

// SubmitAnswer grades raw against the current question and advances to the
// next one. Outside StateAwaitingAnswer it fails without touching the
// score. Grading is strict equality after Normalize on both sides.
func (e *Engine) SubmitAnswer(s *Session, raw string) (Feedback, error) {
	if s.State != StateAwaitingAnswer || s.Current == nil {
		return Feedback{}, &InvalidStateError{Op: "submit answer", State: s.State}
	}

	graded := *s.Current
	expected := ExpectedText(graded, s.Direction)
	correct := Normalize(raw) == Normalize(expected)

	s.Score.Total++
	if correct {
		s.Score.Correct++
	}
	s.Current = nil

	fb := Feedback{
		WasCorrect: correct,
		Expected:   expected,
		Pinyin:     graded.Pinyin,
		Score:      s.Score,
	}

	next, err := e.next(s, &graded)
	if err != nil {
		// Graded but nothing left to ask: drop back to level choice and
		// let the caller surface the empty pool alongside the feedback.
		s.State = StateChoosingLevel
		s.Current = nil
		return fb, err
	}
	fb.Next = next
	return fb, nil
}

// Reset returns the session to the level choice with a zeroed score.
// Valid from any state, never fails.
func (e *Engine) Reset(s *Session) {
	s.State = StateChoosingLevel
	s.Level = 0
	s.Direction = ""
	s.Current = nil
	s.Score = Score{}
}
