// Package session keeps one quiz session per Telegram user. Stores
// serialize all mutation per user so duplicate updates for the same user
// cannot race, while different users proceed fully in parallel.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/hskbot/internal/quiz"
)

// ErrUnknownDriver is returned by New for an unrecognised driver name.
var ErrUnknownDriver = errors.New("session: unknown driver")

// Store is the per-user session storage contract. Mutate creates the
// session on first use (implicit, idempotent per user) and runs fn under a
// per-user critical section; when fn returns an error the mutation is
// discarded and the error propagated.
type Store interface {
	Mutate(ctx context.Context, userID int64, fn func(*quiz.Session) error) error
	Peek(ctx context.Context, userID int64) (*quiz.Session, bool, error)
	Clear(ctx context.Context, userID int64) error
	Close() error
}

// Driver names accepted by New.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

const defaultRedisTTL = 24 * time.Hour

// RedisOptions carries the connection settings for the redis driver.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// Options configures New.
type Options struct {
	Driver  string
	IdleTTL time.Duration
	Redis   RedisOptions
}

// New builds a session store for the configured driver. The redis driver
// verifies connectivity up front so a bad address fails startup instead of
// the first user interaction.
func New(opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(opts.IdleTTL), nil

	case DriverRedis:
		ttl := opts.IdleTTL
		if ttl <= 0 {
			ttl = defaultRedisTTL
		}
		client := redis.NewClient(&redis.Options{
			Addr:     opts.Redis.Addr,
			Password: opts.Redis.Password,
			DB:       opts.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("session: redis ping: %w", err)
		}
		return NewRedis(client, ttl), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
