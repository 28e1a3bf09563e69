package parley

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/parleybot/parley/internal/engine"
	"github.com/parleybot/parley/internal/logging"
	"github.com/parleybot/parley/pkg/adapters/fulfillment"
	"github.com/parleybot/parley/pkg/adapters/memory"
	"github.com/parleybot/parley/pkg/adapters/nlu"
	"github.com/parleybot/parley/pkg/config"
	"github.com/parleybot/parley/pkg/domain"
	"github.com/parleybot/parley/pkg/entity"
	"github.com/parleybot/parley/pkg/ports"
	"github.com/parleybot/parley/pkg/session"
)

// Bot is the high-level entry point for the Parley library. It wires the
// engine, the entity registry, the recognizer and the session manager behind
// a single Converse call.
type Bot struct {
	cfg      *config.Config
	engine   *engine.Engine
	registry *entity.Registry
	sessions *session.Manager

	store      ports.SessionStore
	locker     ports.DistributedLocker
	recognizer ports.Recognizer
	invoker    ports.FulfillmentInvoker
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) { b.logger = logger }
}

// WithStore injects a session store (default: in-memory).
func WithStore(store ports.SessionStore) Option {
	return func(b *Bot) { b.store = store }
}

// WithLocker enables distributed session locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(b *Bot) { b.locker = locker }
}

// WithRecognizer injects a recognizer, bypassing the configured provider.
func WithRecognizer(r ports.Recognizer) Option {
	return func(b *Bot) { b.recognizer = r }
}

// WithFulfillment injects a fulfillment invoker (default: HTTP POST).
func WithFulfillment(inv ports.FulfillmentInvoker) Option {
	return func(b *Bot) { b.invoker = inv }
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) { b.hooks = hooks }
}

// WithEntityRegistry replaces the default handler registry.
func WithEntityRegistry(reg *entity.Registry) Option {
	return func(b *Bot) { b.registry = reg }
}

// New initializes a Bot from a validated definition.
func New(cfg *config.Config, opts ...Option) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	b := &Bot{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.registry == nil {
		b.registry = entity.NewRegistry()
	}
	if err := cfg.Validate(b.registry.Has); err != nil {
		return nil, fmt.Errorf("invalid bot definition: %w", err)
	}

	if b.recognizer == nil {
		r, err := buildRecognizer(cfg)
		if err != nil {
			return nil, err
		}
		b.recognizer = r
	}
	if b.invoker == nil {
		b.invoker = fulfillment.NewHTTPInvoker()
	}
	if b.store == nil {
		b.store = memory.NewStore()
	}

	sessOpts := []session.Option{session.WithLogger(b.logger)}
	if b.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(b.locker))
	}
	b.sessions = session.NewManager(b.store, sessOpts...)

	b.engine = engine.New(cfg, b.registry, b.recognizer,
		engine.WithLogger(b.logger),
		engine.WithHooks(b.hooks),
		engine.WithInvoker(b.invoker),
	)

	return b, nil
}

// Load reads a bot definition from a YAML file and initializes a Bot.
func Load(path string, opts ...Option) (*Bot, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

func buildRecognizer(cfg *config.Config) (ports.Recognizer, error) {
	switch cfg.NLU.Provider {
	case "keyword":
		return nlu.NewKeyword(cfg.NLU.Patterns, cfg.NLU.EntityPatterns)
	case "luis":
		if cfg.NLU.URL == "" {
			return nil, fmt.Errorf("nlu provider %q requires a url", cfg.NLU.Provider)
		}
		return nlu.NewLUIS(cfg.NLU.URL, cfg.NLU.Key), nil
	}
	return nil, fmt.Errorf("unknown nlu provider %q", cfg.NLU.Provider)
}

// Converse processes one turn for the session. An empty session ID starts a
// new conversation under a generated ID. Turns for the same session are
// serialized; distinct sessions proceed concurrently.
func (b *Bot) Converse(ctx context.Context, sessionID string, input domain.Input) (*domain.Reply, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var reply *domain.Reply
	err := b.sessions.WithLock(ctx, sessionID, func(ctx context.Context) error {
		sess, err := b.store.Load(ctx, sessionID)
		if err == domain.ErrSessionNotFound {
			sess = domain.NewSession(sessionID)
			err = nil
		}
		if err != nil {
			return err
		}

		reply, err = b.engine.Turn(ctx, sess, input)
		if err != nil {
			return err
		}

		return b.store.Save(ctx, sessionID, sess)
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// Say is shorthand for a text turn.
func (b *Bot) Say(ctx context.Context, sessionID, text string) (*domain.Reply, error) {
	return b.Converse(ctx, sessionID, domain.TextInput(text))
}

// Trigger injects a resolved intent, bypassing recognition. The slots map
// pre-fills slot values by entity type.
func (b *Bot) Trigger(ctx context.Context, sessionID, intent string, slots map[string]string) (*domain.Reply, error) {
	return b.Converse(ctx, sessionID, domain.IntentInput(intent, slots))
}

// Reset deletes the session so the next turn starts fresh.
func (b *Bot) Reset(ctx context.Context, sessionID string) error {
	return b.sessions.Delete(ctx, sessionID)
}

// Session loads a snapshot of the session state.
func (b *Bot) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return b.sessions.Load(ctx, sessionID)
}

// Sessions returns the session manager.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

// Config returns the bot definition.
func (b *Bot) Config() *config.Config {
	return b.cfg
}

// Name returns the configured bot name.
func (b *Bot) Name() string {
	return b.cfg.Bot
}
