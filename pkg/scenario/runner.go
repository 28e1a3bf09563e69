package scenario

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/parleybot/parley/internal/logging"
	"github.com/parleybot/parley/pkg/domain"
)

// Conversationalist is the surface the runner drives; *parley.Bot satisfies
// it.
type Conversationalist interface {
	Converse(ctx context.Context, sessionID string, input domain.Input) (*domain.Reply, error)
}

// Failure records one unmet expectation.
type Failure struct {
	Turn   int    `json:"turn"`
	Reason string `json:"reason"`
}

func (f Failure) String() string {
	return fmt.Sprintf("turn %d: %s", f.Turn, f.Reason)
}

// Result is the outcome of one scenario run.
type Result struct {
	Scenario  string    `json:"scenario"`
	SessionID string    `json:"session_id"`
	Turns     int       `json:"turns"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Runner replays scenarios against a bot.
type Runner struct {
	bot    Conversationalist
	logger *slog.Logger
}

// Option configures the runner.
type Option func(*Runner)

// WithLogger sets a structured logger for per-turn tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a runner for the given bot.
func NewRunner(bot Conversationalist, opts ...Option) *Runner {
	r := &Runner{bot: bot, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays the scenario under a fresh session and collects expectation
// failures. A transport or engine error aborts the run; unmet expectations do
// not.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	if err := sc.validate(); err != nil {
		return nil, err
	}

	result := &Result{
		Scenario:  sc.Name,
		SessionID: uuid.NewString(),
	}

	for i, turn := range sc.Turns {
		n := i + 1

		var input domain.Input
		if turn.Intent != "" {
			input = domain.IntentInput(turn.Intent, turn.Slots)
		} else {
			input = domain.TextInput(turn.Say)
		}

		reply, err := r.bot.Converse(ctx, result.SessionID, input)
		if err != nil {
			return result, fmt.Errorf("scenario %q turn %d: %w", sc.Name, n, err)
		}
		result.Turns = n

		r.logger.Debug("scenario turn",
			"scenario", sc.Name,
			"turn", n,
			"recognized", reply.RecognizedIntent,
			"ended", reply.Ended,
		)

		if turn.ExpectIntent != "" && reply.RecognizedIntent != turn.ExpectIntent {
			result.Failures = append(result.Failures, Failure{
				Turn:   n,
				Reason: fmt.Sprintf("expected intent %q, recognized %q", turn.ExpectIntent, reply.RecognizedIntent),
			})
		}
		for _, cp := range turn.ExpectCheckpoints {
			if !reply.Has(cp) {
				result.Failures = append(result.Failures, Failure{
					Turn:   n,
					Reason: fmt.Sprintf("checkpoint %q not reached (got %s)", cp, messageNames(reply)),
				})
			}
		}
		if turn.ExpectEnded != nil && reply.Ended != *turn.ExpectEnded {
			result.Failures = append(result.Failures, Failure{
				Turn:   n,
				Reason: fmt.Sprintf("expected ended=%v, got %v", *turn.ExpectEnded, reply.Ended),
			})
		}
	}

	return result, nil
}

func messageNames(reply *domain.Reply) string {
	names := make([]string, 0, len(reply.Messages))
	for _, m := range reply.Messages {
		names = append(names, m.Name)
	}
	return fmt.Sprintf("%v", names)
}
