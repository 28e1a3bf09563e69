// Package cli carries the logic behind the interactive chat and scenario
// commands, keeping cmd/parley thin.
package cli

import (
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/parleybot/parley"
	"github.com/parleybot/parley/internal/logging"
	redisadapter "github.com/parleybot/parley/pkg/adapters/redis"
)

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from the chat flow on Stdout).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// BuildBot loads the bot definition and wires persistence. With a Redis URL
// the session store and distributed lock go through Redis; otherwise sessions
// live in memory for the lifetime of the process. The returned cleanup
// releases the Redis connection.
func BuildBot(configPath, redisURL string, logger *slog.Logger, extra ...parley.Option) (*parley.Bot, func(), error) {
	opts := []parley.Option{parley.WithLogger(logger)}
	opts = append(opts, extra...)
	cleanup := func() {}

	if redisURL != "" {
		ropts, err := goredis.ParseURL(redisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := goredis.NewClient(ropts)
		opts = append(opts,
			parley.WithStore(redisadapter.NewFromClient(client)),
			parley.WithLocker(redisadapter.NewLocker(client, "parley:session:")),
		)
		cleanup = func() { _ = client.Close() }
	}

	bot, err := parley.Load(configPath, opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return bot, cleanup, nil
}
