// Package quiz implements the per-user practice state machine and the
// answer grading rules. The engine performs no I/O and never blocks; all
// persistence and rendering belongs to the callers.
package quiz

import (
	"time"

	"github.com/m3rciful/hskbot/internal/vocab"
)

// State identifies the conversation step a session is in.
type State string

const (
	// StateChoosingLevel waits for the user to pick an HSK level.
	StateChoosingLevel State = "choosing_level"
	// StateChoosingDirection waits for the user to pick a practice direction.
	StateChoosingDirection State = "choosing_direction"
	// StateAwaitingAnswer waits for a typed translation of the current word.
	StateAwaitingAnswer State = "awaiting_answer"
)

// Direction selects which side of an entry is the prompt.
type Direction string

const (
	// SourceToTarget prompts with the Chinese side and expects the translation.
	SourceToTarget Direction = "st"
	// TargetToSource prompts with the translation and expects the Chinese side.
	TargetToSource Direction = "ts"
)

// ParseDirection maps a wire value to a Direction.
func ParseDirection(raw string) (Direction, bool) {
	switch Direction(raw) {
	case SourceToTarget, TargetToSource:
		return Direction(raw), true
	}
	return "", false
}

// Score tracks grading totals for one session.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Session is the per-user conversation state. Current is set exactly while
// the session is in StateAwaitingAnswer.
type Session struct {
	UserID    int64        `json:"user_id"`
	State     State        `json:"state"`
	Level     int          `json:"level,omitempty"`
	Direction Direction    `json:"direction,omitempty"`
	Current   *vocab.Entry `json:"current,omitempty"`
	Score     Score        `json:"score"`
	StartedAt time.Time    `json:"started_at"`
}

// NewSession returns a fresh session waiting for a level choice.
func NewSession(userID int64) *Session {
	return &Session{
		UserID:    userID,
		State:     StateChoosingLevel,
		StartedAt: time.Now(),
	}
}

// PromptText returns the side of e shown to the user for direction d.
func PromptText(e vocab.Entry, d Direction) string {
	if d == TargetToSource {
		return e.Target
	}
	return e.Source
}

// ExpectedText returns the side of e the user has to type for direction d.
func ExpectedText(e vocab.Entry, d Direction) string {
	if d == TargetToSource {
		return e.Source
	}
	return e.Target
}
