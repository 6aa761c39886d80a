// Package bot wires the vocabulary store, the session store and the quiz
// engine into Telegram handlers.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"log/slog"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/hskbot/core/config"
	"github.com/m3rciful/hskbot/core/logger"
	coretelegram "github.com/m3rciful/hskbot/core/telegram"
	tghelpers "github.com/m3rciful/hskbot/core/telegram/helpers"
	"github.com/m3rciful/hskbot/core/telegram/router"
	"github.com/m3rciful/hskbot/internal/quiz"
	"github.com/m3rciful/hskbot/internal/session"
	"github.com/m3rciful/hskbot/internal/vocab"
)

// App carries the assembled application. One instance serves all users.
type App struct {
	cfg      *coreconfig.Config
	vocab    *vocab.Store
	sessions session.Store
	engine   *quiz.Engine
	sweeper  *gocron.Scheduler
}

// New initializes logging, loads the vocabulary and builds the session
// store. A vocabulary that fails validation aborts startup; the bot never
// runs with a partial word list.
func New(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config provided")
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("bot: logger init failed: %w", err)
	}

	entries, err := loadVocabulary(cfg.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("bot: vocabulary load failed: %w", err)
	}
	store := vocab.NewStore(entries)
	logger.VOCAB.Info("vocabulary loaded",
		slog.String("event", "load"),
		slog.String("source", cfg.Vocabulary.Source),
		slog.Int("entries", store.Len()),
		slog.Int("levels", len(store.Levels())),
	)

	sessions, err := session.New(session.Options{
		Driver:  cfg.Session.Driver,
		IdleTTL: time.Duration(cfg.Session.IdleTTLMinutes) * time.Minute,
		Redis: session.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bot: session store init failed: %w", err)
	}
	logger.SESS.Info("session store ready",
		slog.String("event", "init"),
		slog.String("driver", cfg.Session.Driver),
	)

	app := &App{
		cfg:      cfg,
		vocab:    store,
		sessions: sessions,
		engine:   quiz.New(store),
	}

	if mem, ok := sessions.(*session.MemoryStore); ok && cfg.Session.IdleTTLMinutes > 0 {
		sched := gocron.NewScheduler(time.UTC)
		_, err := sched.Every(cfg.Session.SweepIntervalSeconds).Seconds().Do(func() {
			if evicted := mem.Sweep(time.Now()); evicted > 0 {
				logger.SESS.Info("idle sessions evicted",
					slog.String("event", "sweep"),
					slog.Int("sessions_evicted", evicted),
				)
			}
		})
		if err != nil {
			_ = sessions.Close()
			return nil, fmt.Errorf("bot: sweep job init failed: %w", err)
		}
		app.sweeper = sched
	}

	return app, nil
}

// loadVocabulary reads entries from the configured source. An explicit
// table name forces the SQLite path regardless of extension.
func loadVocabulary(cfg coreconfig.VocabularyConfig) ([]vocab.Entry, error) {
	if table := strings.TrimSpace(cfg.Table); table != "" {
		return vocab.LoadSQLite(cfg.Source, table)
	}
	return vocab.Load(cfg.Source)
}

// CoreConfig exposes the embedded configuration for the runner.
func (a *App) CoreConfig() *coreconfig.Config {
	return a.cfg
}

// TelegramRunOptions assembles registry, middlewares and routes for RunTelegram.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	if err := a.registerCallbacks(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, "This command is not available.")
		},
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownText: a.handleUnknownText,
	})...)

	mws := coretelegram.DefaultMiddlewares(a.cfg, func(c tele.Context) error {
		return tghelpers.SendText(c, "Too many requests, give it a second.")
	})

	return coretelegram.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			if a.sweeper != nil {
				a.sweeper.StartAsync()
			}
			return nil
		},
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			if a.sweeper != nil {
				a.sweeper.Stop()
			}
			return a.sessions.Close()
		},
	}, nil
}

// AwaitingAnswer implements router.AnswerSink. It reports whether the user
// has a question on the table, so free text should be graded instead of
// matched against commands.
func (a *App) AwaitingAnswer(userID int64) bool {
	s, ok, err := a.sessions.Peek(context.Background(), userID)
	if err != nil || !ok {
		return false
	}
	return s.State == quiz.StateAwaitingAnswer
}
