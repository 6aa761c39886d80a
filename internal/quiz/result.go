package quiz

import (
	"errors"
	"strconv"
)

// Command names the operations the dispatcher can ask the engine to run.
type Command string

const (
	CommandStart     Command = "start"
	CommandLevel     Command = "level"
	CommandDirection Command = "direction"
	CommandAnswer    Command = "answer"
	CommandReset     Command = "reset"
)

// ResultKind tags the variant carried by a Result.
type ResultKind int

const (
	// ResultPrompt means the session moved on and the dispatcher should
	// render the next step: a level keyboard, a direction keyboard, or the
	// question in Prompt.
	ResultPrompt ResultKind = iota + 1
	// ResultFeedback carries grading output, usually with the next question.
	ResultFeedback
	// ResultError carries a typed engine error; the session is unchanged.
	ResultError
)

// Prompt is a question shown to the user.
type Prompt struct {
	Text      string
	Direction Direction
	Level     int
}

// Feedback is the outcome of grading one answer.
type Feedback struct {
	WasCorrect bool
	Expected   string
	Pinyin     string
	Score      Score
	Next       Prompt
}

// Result is the tagged union handed back to the dispatcher. State is the
// session state after the operation so rendering never has to re-read the
// session.
type Result struct {
	Kind     ResultKind
	State    State
	Prompt   *Prompt
	Feedback *Feedback
	Err      error
}

// HandleCommand adapts the engine operations into a Result. All engine
// failures come back as ResultError values; the method itself never
// returns an error, so the dispatcher has a single rendering path.
func (e *Engine) HandleCommand(s *Session, cmd Command, arg string) Result {
	switch cmd {
	case CommandStart, CommandReset:
		e.Reset(s)
		return Result{Kind: ResultPrompt, State: s.State}

	case CommandLevel:
		level, err := strconv.Atoi(arg)
		if err != nil {
			return Result{Kind: ResultError, State: s.State, Err: &InvalidLevelError{Raw: arg}}
		}
		if err := e.SetLevel(s, level); err != nil {
			return Result{Kind: ResultError, State: s.State, Err: err}
		}
		return Result{Kind: ResultPrompt, State: s.State}

	case CommandDirection:
		d, ok := ParseDirection(arg)
		if !ok {
			return Result{Kind: ResultError, State: s.State, Err: &InvalidDirectionError{Raw: arg}}
		}
		p, err := e.SetDirection(s, d)
		if err != nil {
			return Result{Kind: ResultError, State: s.State, Err: err}
		}
		return Result{Kind: ResultPrompt, State: s.State, Prompt: &p}

	case CommandAnswer:
		fb, err := e.SubmitAnswer(s, arg)
		if err != nil {
			var stateErr *InvalidStateError
			if errors.As(err, &stateErr) {
				return Result{Kind: ResultError, State: s.State, Err: err}
			}
			// Graded, but the pool ran dry while advancing.
			return Result{Kind: ResultFeedback, State: s.State, Feedback: &fb, Err: err}
		}
		return Result{Kind: ResultFeedback, State: s.State, Feedback: &fb}

	default:
		return Result{Kind: ResultError, State: s.State, Err: &UnknownCommandError{Command: string(cmd)}}
	}
}
