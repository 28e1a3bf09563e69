package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/parleybot/parley"
	"github.com/parleybot/parley/internal/presentation/tui"
	"github.com/parleybot/parley/pkg/domain"
)

// ChatOptions contains the configuration for the chat command.
type ChatOptions struct {
	ConfigPath string
	SessionID  string
	Fresh      bool
	Debug      bool
	RedisURL   string
}

// RunChat drives an interactive conversation on stdin/stdout until the bot
// ends the session, stdin closes, or a signal arrives.
func RunChat(opts ChatOptions) error {
	logger := createLogger(opts.Debug)

	bot, cleanup, err := BuildBot(opts.ConfigPath, opts.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("error initializing bot: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if tui.IsInteractive() {
		tui.PrintBanner(parley.Version)
		printSystemMessage("Chatting with '%s'. Ctrl+D or Ctrl+C to leave.", bot.Name())
	}

	if opts.Fresh && opts.SessionID != "" {
		if err := bot.Reset(ctx, opts.SessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Warn("failed to reset session", "session_id", opts.SessionID, "err", err)
		}
	}

	render := tui.NewRenderer()
	sessionID := opts.SessionID
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Print("> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Print("> ")
			continue
		}

		reply, err := bot.Say(ctx, sessionID, line)
		if errors.Is(err, domain.ErrSessionEnded) {
			printSystemMessage("Session '%s' already ended. Start again with --fresh.", sessionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("turn failed: %w", err)
		}
		sessionID = reply.SessionID

		out, rerr := render(reply.Text())
		if rerr != nil {
			out = reply.Text() + "\n"
		}
		fmt.Print(out)

		if reply.Ended {
			printSystemMessage("Conversation finished.")
			return nil
		}
		fmt.Print("> ")
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("input error: %w", err)
	}
	fmt.Println()
	return nil
}
