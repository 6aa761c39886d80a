package quiz

import (
	"errors"
	"testing"

	"github.com/m3rciful/hskbot/internal/vocab"
)

func testStore() *vocab.Store {
	return vocab.NewStore([]vocab.Entry{
		{Source: "回", Target: "return", Pinyin: "huí", Level: 1},
		{Source: "好", Target: "good", Pinyin: "hǎo", Level: 1},
		{Source: "经济", Target: "economy", Pinyin: "jīngjì", Level: 4},
	})
}

func pickFirst(int) int { return 0 }

func TestLevelAndDirectionFlow(t *testing.T) {
	e := New(testStore(), WithPicker(pickFirst))
	s := NewSession(42)

	if s.State != StateChoosingLevel {
		t.Fatalf("fresh session state = %s", s.State)
	}
	if err := e.SetLevel(s, 1); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if s.State != StateChoosingDirection {
		t.Fatalf("state after SetLevel = %s", s.State)
	}

	p, err := e.SetDirection(s, SourceToTarget)
	if err != nil {
		t.Fatalf("SetDirection: %v", err)
	}
	if s.State != StateAwaitingAnswer {
		t.Fatalf("state after SetDirection = %s", s.State)
	}
	if p.Level != 1 {
		t.Fatalf("prompt level = %d, want 1", p.Level)
	}
	if p.Text != "回" {
		t.Fatalf("prompt text = %q, want 回", p.Text)
	}
	if s.Current == nil {
		t.Fatal("current question not set")
	}
}

func TestSetLevelOutOfRange(t *testing.T) {
	e := New(testStore())
	s := NewSession(1)

	err := e.SetLevel(s, 7)
	var levelErr *InvalidLevelError
	if !errors.As(err, &levelErr) {
		t.Fatalf("SetLevel(7) error = %v, want InvalidLevelError", err)
	}
	if s.State != StateChoosingLevel || s.Level != 0 {
		t.Fatalf("session mutated on invalid level: state=%s level=%d", s.State, s.Level)
	}
}

func TestSetDirectionBeforeLevel(t *testing.T) {
	e := New(testStore())
	s := NewSession(1)

	_, err := e.SetDirection(s, SourceToTarget)
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("SetDirection error = %v, want InvalidStateError", err)
	}
	if s.State != StateChoosingLevel || s.Direction != "" {
		t.Fatalf("session mutated: state=%s direction=%q", s.State, s.Direction)
	}
}

func TestSetDirectionEmptyLevelFallsBackToLevelChoice(t *testing.T) {
	store := vocab.NewStore([]vocab.Entry{
		{Source: "回", Target: "return", Pinyin: "huí", Level: 1},
	})
	e := New(store, WithPicker(pickFirst))
	s := NewSession(1)
	if err := e.SetLevel(s, 1); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	store.Replace(nil)

	_, err := e.SetDirection(s, SourceToTarget)
	var poolErr *EmptyPoolError
	if !errors.As(err, &poolErr) {
		t.Fatalf("SetDirection error = %v, want EmptyPoolError", err)
	}
	if s.State != StateChoosingLevel || s.Level != 0 || s.Direction != "" {
		t.Fatalf("session not back at level choice: state=%s level=%d direction=%q", s.State, s.Level, s.Direction)
	}

	// Picking another level straight away has to work; the user is shown
	// the level keyboard after this failure.
	store.Replace([]vocab.Entry{{Source: "好", Target: "good", Level: 2}})
	res := e.HandleCommand(s, CommandLevel, "2")
	if res.Kind != ResultPrompt || res.State != StateChoosingDirection {
		t.Fatalf("level re-pick after empty pool = %+v", res)
	}
}

func TestSubmitAnswerOutsideAwaiting(t *testing.T) {
	e := New(testStore())
	s := NewSession(1)

	_, err := e.SubmitAnswer(s, "whatever")
	var stateErr *InvalidStateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("SubmitAnswer error = %v, want InvalidStateError", err)
	}
	if s.Score.Total != 0 || s.Score.Correct != 0 {
		t.Fatalf("score mutated: %+v", s.Score)
	}
}

func TestSubmitAnswerGradesAndAdvances(t *testing.T) {
	e := New(testStore(), WithPicker(pickFirst))
	s := NewSession(1)
	mustStart(t, e, s, 1, SourceToTarget)

	// Normalization: case and whitespace must not matter.
	fb, err := e.SubmitAnswer(s, "  Return ")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !fb.WasCorrect {
		t.Fatal("answer graded wrong, want correct")
	}
	if fb.Expected != "return" {
		t.Fatalf("expected = %q", fb.Expected)
	}
	if fb.Pinyin != "huí" {
		t.Fatalf("pinyin = %q", fb.Pinyin)
	}
	if fb.Score.Correct != 1 || fb.Score.Total != 1 {
		t.Fatalf("score = %+v, want 1/1", fb.Score)
	}
	// The first pool entry was just asked; the re-roll must pick the other one.
	if fb.Next.Text != "好" {
		t.Fatalf("next prompt = %q, want 好", fb.Next.Text)
	}
	if s.State != StateAwaitingAnswer {
		t.Fatalf("state after grading = %s", s.State)
	}
}

func TestSubmitWrongAnswerCountsTotal(t *testing.T) {
	e := New(testStore(), WithPicker(pickFirst))
	s := NewSession(1)
	mustStart(t, e, s, 1, SourceToTarget)

	fb, err := e.SubmitAnswer(s, "wrong")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if fb.WasCorrect {
		t.Fatal("graded correct, want wrong")
	}
	if fb.Score.Correct != 0 || fb.Score.Total != 1 {
		t.Fatalf("score = %+v, want 0/1", fb.Score)
	}
}

func TestScoreTotalsAccumulate(t *testing.T) {
	e := New(testStore(), WithPicker(pickFirst))
	s := NewSession(1)
	mustStart(t, e, s, 1, SourceToTarget)

	const n = 10
	for i := 0; i < n; i++ {
		if _, err := e.SubmitAnswer(s, "anything"); err != nil {
			t.Fatalf("SubmitAnswer #%d: %v", i+1, err)
		}
	}
	if s.Score.Total != n {
		t.Fatalf("total = %d, want %d", s.Score.Total, n)
	}
}

func TestNoImmediateRepeat(t *testing.T) {
	e := New(testStore()) // random picker
	s := NewSession(1)
	mustStart(t, e, s, 1, SourceToTarget)

	prev := *s.Current
	for i := 0; i < 50; i++ {
		fb, err := e.SubmitAnswer(s, "x")
		if err != nil {
			t.Fatalf("SubmitAnswer #%d: %v", i+1, err)
		}
		if fb.Next.Text == PromptText(prev, SourceToTarget) {
			t.Fatalf("question repeated back-to-back at round %d: %q", i+1, fb.Next.Text)
		}
		prev = *s.Current
	}
}

func TestSingleWordPoolMayRepeat(t *testing.T) {
	store := vocab.NewStore([]vocab.Entry{
		{Source: "回", Target: "return", Pinyin: "huí", Level: 1},
	})
	e := New(store, WithPicker(pickFirst))
	s := NewSession(1)
	mustStart(t, e, s, 1, SourceToTarget)

	fb, err := e.SubmitAnswer(s, "return")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if fb.Next.Text != "回" {
		t.Fatalf("next prompt = %q, want the only word back", fb.Next.Text)
	}
}

func TestSubmitAnswerPoolDrained(t *testing.T) {
	store := vocab.NewStore([]vocab.Entry{
		{Source: "回", Target: "return", Pinyin: "huí", Level: 1},
		{Source: "好", Target: "good", Pinyin: "hǎo", Level: 1},
	})
	e := New(store, WithPicker(pickFirst))
	s := NewSession(1)
	mustStart(t, e, s, 1, SourceToTarget)

	// Simulate a reload that removed the level mid-quiz.
	store.Replace(nil)

	fb, err := e.SubmitAnswer(s, "return")
	var poolErr *EmptyPoolError
	if !errors.As(err, &poolErr) {
		t.Fatalf("SubmitAnswer error = %v, want EmptyPoolError", err)
	}
	if fb.Score.Total != 1 || fb.Score.Correct != 1 {
		t.Fatalf("grade lost on drained pool: %+v", fb.Score)
	}
	if s.State != StateChoosingLevel {
		t.Fatalf("state = %s, want %s", s.State, StateChoosingLevel)
	}
}

func TestTargetToSourceDirection(t *testing.T) {
	e := New(testStore(), WithPicker(pickFirst))
	s := NewSession(1)
	mustStart(t, e, s, 1, TargetToSource)

	if got := PromptText(*s.Current, s.Direction); got != "return" {
		t.Fatalf("prompt = %q, want return", got)
	}
	fb, err := e.SubmitAnswer(s, "回")
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !fb.WasCorrect {
		t.Fatal("answer 回 graded wrong")
	}
}

func TestResetClearsEverything(t *testing.T) {
	e := New(testStore(), WithPicker(pickFirst))
	s := NewSession(1)
	mustStart(t, e, s, 1, SourceToTarget)
	if _, err := e.SubmitAnswer(s, "return"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	e.Reset(s)
	if s.State != StateChoosingLevel || s.Level != 0 || s.Direction != "" || s.Current != nil {
		t.Fatalf("session not reset: %+v", s)
	}
	if s.Score != (Score{}) {
		t.Fatalf("score not zeroed: %+v", s.Score)
	}
}

func TestHandleCommand(t *testing.T) {
	e := New(testStore(), WithPicker(pickFirst))
	s := NewSession(1)

	res := e.HandleCommand(s, CommandStart, "")
	if res.Kind != ResultPrompt || res.State != StateChoosingLevel {
		t.Fatalf("start result = %+v", res)
	}

	res = e.HandleCommand(s, CommandLevel, "abc")
	if res.Kind != ResultError {
		t.Fatalf("non-numeric level result kind = %v", res.Kind)
	}
	var levelErr *InvalidLevelError
	if !errors.As(res.Err, &levelErr) {
		t.Fatalf("err = %v, want InvalidLevelError", res.Err)
	}

	res = e.HandleCommand(s, CommandLevel, "4")
	if res.Kind != ResultPrompt || res.State != StateChoosingDirection {
		t.Fatalf("level result = %+v", res)
	}

	res = e.HandleCommand(s, CommandDirection, "sideways")
	if res.Kind != ResultError {
		t.Fatalf("bad direction result kind = %v", res.Kind)
	}

	res = e.HandleCommand(s, CommandDirection, "st")
	if res.Kind != ResultPrompt || res.Prompt == nil {
		t.Fatalf("direction result = %+v", res)
	}
	if res.Prompt.Text != "经济" {
		t.Fatalf("prompt = %q, want 经济", res.Prompt.Text)
	}

	res = e.HandleCommand(s, CommandAnswer, "economy")
	if res.Kind != ResultFeedback || res.Feedback == nil {
		t.Fatalf("answer result = %+v", res)
	}
	if !res.Feedback.WasCorrect {
		t.Fatal("answer graded wrong")
	}

	res = e.HandleCommand(s, Command("dance"), "")
	if res.Kind != ResultError {
		t.Fatalf("unknown command result kind = %v", res.Kind)
	}
	var unknownErr *UnknownCommandError
	if !errors.As(res.Err, &unknownErr) {
		t.Fatalf("err = %v, want UnknownCommandError", res.Err)
	}
}

func mustStart(t *testing.T, e *Engine, s *Session, level int, d Direction) {
	t.Helper()
	if err := e.SetLevel(s, level); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if _, err := e.SetDirection(s, d); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}
}
