package router

import (
	"time"

	tg "github.com/m3rciful/hskbot/core/telegram"
	"github.com/m3rciful/hskbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// AnswerSink receives free-form text when a user has an answer pending.
type AnswerSink interface {
	AwaitingAnswer(userID int64) bool
	AnswerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the handler that routes plain text messages. Text goes to
// the answer sink when the sender is mid-question, otherwise it is matched
// against registered commands and finally the fallback.
func TextRoutes(sink AnswerSink, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if sink != nil && c.Sender() != nil && sink.AwaitingAnswer(c.Sender().ID) {
			return handleWithSummary(c, "answer", start, "", "", func() error {
				return sink.AnswerHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
	}
}
