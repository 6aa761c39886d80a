package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/hskbot/core/telegram/format"
	tghelpers "github.com/m3rciful/hskbot/core/telegram/helpers"
	"github.com/m3rciful/hskbot/core/telegram/keyboard"
	"github.com/m3rciful/hskbot/internal/quiz"
	"github.com/m3rciful/hskbot/internal/vocab"
)

const (
	chooseLevelText     = "Choose your HSK level:"
	chooseDirectionText = "Choose practice direction:"

	helpText = "I quiz you on HSK vocabulary.\n\n" +
		"/start — pick a level and direction, then translate the words I send\n" +
		"/score — show how many answers you got right\n" +
		"/reset — start over from the level choice\n" +
		"/help — this message"
)

func levelKeyboard() *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, vocab.MaxLevel-vocab.MinLevel+1)
	for lvl := vocab.MinLevel; lvl <= vocab.MaxLevel; lvl++ {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   fmt.Sprintf("HSK %d", lvl),
			Unique: cbLevel,
			Data:   strconv.Itoa(lvl),
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 3)
}

func directionKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "中文 → English", Unique: cbDirection, Data: string(quiz.SourceToTarget)},
		{Text: "English → 中文", Unique: cbDirection, Data: string(quiz.TargetToSource)},
	})
}

func escapeMD(text string) string {
	escaped, err := format.EscapeMarkdown(text, format.MarkdownV1)
	if err != nil {
		return text
	}
	return escaped
}

func questionText(p quiz.Prompt) string {
	return "Translate:\n*" + escapeMD(p.Text) + "*"
}

func (a *App) renderResult(c tele.Context, res quiz.Result) error {
	switch res.Kind {
	case quiz.ResultPrompt:
		switch res.State {
		case quiz.StateChoosingLevel:
			return tghelpers.SendMD(c, chooseLevelText, levelKeyboard())
		case quiz.StateChoosingDirection:
			return tghelpers.SendMD(c, chooseDirectionText, directionKeyboard())
		case quiz.StateAwaitingAnswer:
			if res.Prompt != nil {
				return tghelpers.SendMD(c, questionText(*res.Prompt))
			}
		}
		return nil

	case quiz.ResultFeedback:
		if res.Feedback == nil {
			return nil
		}
		return a.renderFeedback(c, res)

	case quiz.ResultError:
		return a.renderError(c, res)
	}
	return nil
}

func (a *App) renderFeedback(c tele.Context, res quiz.Result) error {
	fb := res.Feedback

	var b strings.Builder
	if fb.WasCorrect {
		b.WriteString("✅ Correct!")
	} else {
		b.WriteString("❌ Wrong. The answer is *" + escapeMD(fb.Expected) + "*")
		if fb.Pinyin != "" {
			b.WriteString(" (" + escapeMD(fb.Pinyin) + ")")
		}
	}
	b.WriteString(fmt.Sprintf("\nScore: %d/%d", fb.Score.Correct, fb.Score.Total))

	// Pool ran dry while advancing: deliver the grade, then fall back to
	// the level choice.
	if res.Err != nil {
		if err := tghelpers.SendMD(c, b.String()); err != nil {
			return err
		}
		return tghelpers.SendMD(c, "No more words for this level. "+chooseLevelText, levelKeyboard())
	}

	b.WriteString("\n\n" + questionText(fb.Next))
	return tghelpers.SendMD(c, b.String())
}

func (a *App) renderError(c tele.Context, res quiz.Result) error {
	var (
		levelErr     *quiz.InvalidLevelError
		stateErr     *quiz.InvalidStateError
		directionErr *quiz.InvalidDirectionError
		poolErr      *quiz.EmptyPoolError
		notFoundErr  *vocab.NotFoundError
	)

	switch {
	case errors.As(res.Err, &levelErr):
		return tghelpers.SendMD(c, fmt.Sprintf("Levels go from HSK %d to HSK %d.", vocab.MinLevel, vocab.MaxLevel), levelKeyboard())

	case errors.As(res.Err, &poolErr), errors.As(res.Err, &notFoundErr):
		return tghelpers.SendMD(c, "No words for that level yet. "+chooseLevelText, levelKeyboard())

	case errors.As(res.Err, &directionErr):
		return tghelpers.SendMD(c, chooseDirectionText, directionKeyboard())

	case errors.As(res.Err, &stateErr):
		switch res.State {
		case quiz.StateChoosingLevel:
			return tghelpers.SendMD(c, chooseLevelText, levelKeyboard())
		case quiz.StateChoosingDirection:
			return tghelpers.SendMD(c, chooseDirectionText, directionKeyboard())
		default:
			return tghelpers.SendText(c, "Type your answer, or send /reset to start over.")
		}

	default:
		return tghelpers.SendText(c, "Something went wrong, please try again.")
	}
}
