package bot

import (
	"fmt"
	"strings"
	"time"

	"log/slog"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/hskbot/core/logger"
	coretelegram "github.com/m3rciful/hskbot/core/telegram"
	"github.com/m3rciful/hskbot/core/telegram/callbacks"
	"github.com/m3rciful/hskbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/hskbot/core/telegram/helpers"
	"github.com/m3rciful/hskbot/internal/quiz"
)

const (
	cbLevel     = "level"
	cbDirection = "direction"
)

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Start practicing",
	})
	reg.RegisterCommand("/reset", commands.Command{
		Handler:     a.handleReset,
		Description: "Restart from level choice",
	})
	reg.RegisterCommand("/score", commands.Command{
		Handler:     a.handleScore,
		Description: "Show your current score",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "How the bot works",
	})
	reg.RegisterCommand("/reload", commands.Command{
		Handler:     a.handleReload,
		Description: "Reload the vocabulary source",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) error {
	if err := reg.RegisterCallback(cbLevel, a.handleLevelCallback); err != nil {
		return err
	}
	return reg.RegisterCallback(cbDirection, a.handleDirectionCallback)
}

// dispatch runs one engine command under the user's session lock and
// renders whatever came out. Session creation is implicit on first use.
func (a *App) dispatch(c tele.Context, cmd quiz.Command, arg string) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	var res quiz.Result
	if err := a.sessions.Mutate(ctx, sender.ID, func(s *quiz.Session) error {
		res = a.engine.HandleCommand(s, cmd, arg)
		return nil
	}); err != nil {
		logger.Error(ctx, "session", "mutate.fail",
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, "Something went wrong, please try again.")
	}

	a.logResult(c, cmd, res)
	return a.renderResult(c, res)
}

func (a *App) logResult(c tele.Context, cmd quiz.Command, res quiz.Result) {
	ctx := tghelpers.BuildContext(c)
	if res.Kind == quiz.ResultFeedback && res.Feedback != nil {
		fb := res.Feedback
		logger.QUIZ.LogAttrs(ctx, slog.LevelInfo, "answer graded",
			slog.String("event", "graded"),
			slog.Bool("correct", fb.WasCorrect),
			slog.String("expected", fb.Expected),
			slog.Int("score_correct", fb.Score.Correct),
			slog.Int("score_total", fb.Score.Total),
		)
		return
	}
	if logger.ShouldSampleDebug() {
		logger.QUIZ.LogAttrs(ctx, slog.LevelDebug, "command handled",
			slog.String("event", "command"),
			slog.String("state", string(res.State)),
			slog.String("payload", string(cmd)),
		)
	}
}

func (a *App) handleStart(c tele.Context) error {
	return a.dispatch(c, quiz.CommandStart, "")
}

func (a *App) handleReset(c tele.Context) error {
	return a.dispatch(c, quiz.CommandReset, "")
}

func (a *App) handleScore(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	s, ok, err := a.sessions.Peek(ctx, sender.ID)
	if err != nil {
		logger.Error(ctx, "session", "peek.fail", slog.String("err", err.Error()))
		return tghelpers.SendText(c, "Something went wrong, please try again.")
	}
	if !ok || s.Score.Total == 0 {
		return tghelpers.SendText(c, "No answers yet. Send /start to begin practicing.")
	}
	return tghelpers.SendText(c, fmt.Sprintf("Score: %d/%d correct.", s.Score.Correct, s.Score.Total))
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, helpText)
}

// handleReload re-reads the vocabulary source and atomically swaps the
// word set. Running quizzes keep their current question; the next draw
// uses the new set.
func (a *App) handleReload(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	start := time.Now()

	entries, err := loadVocabulary(a.cfg.Vocabulary)
	if err != nil {
		logger.VOCAB.LogAttrs(ctx, slog.LevelError, "reload failed",
			slog.String("event", "reload"),
			slog.String("status", "fail"),
			slog.String("source", a.cfg.Vocabulary.Source),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, "Reload failed: "+err.Error())
	}

	a.vocab.Replace(entries)
	logger.VOCAB.LogAttrs(ctx, slog.LevelInfo, "vocabulary reloaded",
		slog.String("event", "reload"),
		slog.String("status", "ok"),
		slog.String("source", a.cfg.Vocabulary.Source),
		slog.Int("entries", a.vocab.Len()),
		slog.Duration("duration", logger.Took(start)),
	)
	return tghelpers.SendText(c, fmt.Sprintf("Vocabulary reloaded: %d entries across %d levels.", a.vocab.Len(), len(a.vocab.Levels())))
}

func (a *App) handleLevelCallback(c tele.Context) error {
	return a.dispatch(c, quiz.CommandLevel, callbacks.PayloadString(c))
}

func (a *App) handleDirectionCallback(c tele.Context) error {
	return a.dispatch(c, quiz.CommandDirection, callbacks.PayloadString(c))
}

// AnswerHandler implements router.AnswerSink. The message router calls it
// for free text whenever the sender is mid-question.
func (a *App) AnswerHandler(c tele.Context) error {
	return a.dispatch(c, quiz.CommandAnswer, c.Text())
}

func (a *App) handleUnknownText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())
	if strings.HasPrefix(text, "/") {
		return tghelpers.SendText(c, "Unknown command. Send /help for the list.")
	}
	return tghelpers.SendText(c, "Pick a level first. Send /start to begin.")
}
