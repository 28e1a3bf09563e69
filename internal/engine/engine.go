// Package engine implements the dialog orchestration state machine: intent
// resolution, the intent stack, slot filling with confirmation, attempt
// limits, fulfillment dispatch and response selection. The engine mutates the
// session it is handed and never persists it; callers own storage and
// per-session serialization.
package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/parleybot/parley/internal/logging"
	"github.com/parleybot/parley/pkg/config"
	"github.com/parleybot/parley/pkg/domain"
	"github.com/parleybot/parley/pkg/entity"
	"github.com/parleybot/parley/pkg/ports"
)

// Engine executes turns against the bot definition. It is stateless across
// turns; everything mutable lives in the session.
type Engine struct {
	cfg        *config.Config
	registry   *entity.Registry
	recognizer ports.Recognizer
	invoker    ports.FulfillmentInvoker
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger configures the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithHooks attaches lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithInvoker sets the fulfillment invoker. Without one, intents with a
// fulfillment URL complete as if the endpoint succeeded silently.
func WithInvoker(inv ports.FulfillmentInvoker) Option {
	return func(e *Engine) { e.invoker = inv }
}

// New creates an engine for the given definition.
func New(cfg *config.Config, registry *entity.Registry, recognizer ports.Recognizer, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		registry:   registry,
		recognizer: recognizer,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// turn carries the per-turn working state.
type turn struct {
	e     *Engine
	sess  *domain.Session
	reply *domain.Reply

	// progress marks that this turn resolved something: an intent, a slot
	// value, an answer. No progress feeds the interaction counter.
	progress bool

	// answered marks that the recognized answer intent was consumed by a
	// confirmation or pending question.
	answered bool

	// prompted marks that a confirmation prompt was already emitted this
	// turn, so advance does not ask twice.
	prompted bool
}

// Turn processes one input against the session and returns the reply.
// The session is mutated in place. Returns domain.ErrSessionEnded for
// terminated sessions and domain.ErrUnknownIntent for injected intents the
// bot does not define.
func (e *Engine) Turn(ctx context.Context, sess *domain.Session, input domain.Input) (*domain.Reply, error) {
	if sess.Ended() {
		return nil, domain.ErrSessionEnded
	}
	if e.hooks.OnTurnStart != nil {
		e.hooks.OnTurnStart(ctx, sess.ID, input)
	}
	sess.Turns++

	t := &turn{
		e:    e,
		sess: sess,
		reply: &domain.Reply{
			SessionID: sess.ID,
			TurnID:    uuid.NewString(),
		},
	}

	res, err := t.resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	intents := res.FilterIntents(e.cfg.Thresholds.IntentFilter)
	entities := res.FilterEntities(e.cfg.Thresholds.EntityFilter)

	var top string
	if len(intents) > 0 {
		top = intents[0].Name
		t.reply.RecognizedIntent = top
	}

	e.logger.Debug("turn resolved",
		"session_id", sess.ID,
		"turn_id", t.reply.TurnID,
		"intent", top,
		"entities", len(entities),
	)

	if top == domain.IntentRepeat {
		t.handleRepeat(ctx)
	} else {
		sess.Counters.Repeat = 0
		switch top {
		case domain.IntentHelp:
			t.handleHelp(ctx)
		case domain.IntentWhy:
			t.handleWhy(ctx)
		default:
			t.process(ctx, top, entities)
		}
	}

	t.finish()
	return t.reply, nil
}

// resolve produces the NLU result for the input: recognizer for text,
// a synthesized full-confidence result for an injected intent. Recognizer
// failures and timeouts degrade to an empty result, never to an unresolved
// turn.
func (t *turn) resolve(ctx context.Context, input domain.Input) (*domain.NLUResult, error) {
	if input.Type == domain.InputIntent {
		name := input.Intent
		if _, ok := t.e.cfg.Intents[name]; !ok && !domain.BuiltinIntent(name) && name != domain.IntentWelcome {
			return nil, domain.ErrUnknownIntent
		}
		res := &domain.NLUResult{
			Intents: []domain.IntentScore{{Name: name, Confidence: 1.0}},
		}
		for typ, val := range input.Context {
			res.Entities = append(res.Entities, domain.EntityMatch{Type: typ, Value: val, Confidence: 1.0})
		}
		return res, nil
	}

	rctx, cancel := context.WithTimeout(ctx, t.e.cfg.NLU.Timeout.Std())
	defer cancel()

	res, err := t.e.recognizer.Recognize(rctx, input.Text, t.recognizerContext())
	if err != nil {
		t.e.logger.Warn("recognizer failed, treating as no match",
			"session_id", t.sess.ID,
			"err", err,
		)
		return &domain.NLUResult{Query: input.Text}, nil
	}
	return res, nil
}

// recognizerContext exposes the currently awaited slot so providers can bias
// extraction toward the expected answer.
func (t *turn) recognizerContext() ports.SessionContext {
	active := t.sess.Active()
	if active == nil {
		return ports.SessionContext{}
	}
	slot := active.AwaitingConfirmation()
	if slot == nil {
		slot = active.NextPending()
	}
	if slot == nil {
		return ports.SessionContext{}
	}
	def := t.slotDef(active.Name, slot.Name)
	if def == nil {
		return ports.SessionContext{AwaitingSlot: slot.Name, AwaitingEntity: slot.Name}
	}
	return ports.SessionContext{AwaitingSlot: slot.Name, AwaitingEntity: def.EntityType()}
}

// process runs the main pipeline for a turn that is neither a repeat nor a
// help request.
func (t *turn) process(ctx context.Context, top string, entities []domain.EntityMatch) {
	sess := t.sess

	if top == domain.IntentWelcome || (top != "" && t.e.cfg.Intents[top].Greeting) {
		t.handleWelcome(ctx, top)
		top = ""
	}

	if top == domain.IntentCancel {
		// With nothing to cancel the request resolves nothing and falls
		// through to the fallback path.
		if sess.Active() != nil {
			t.cancelActive(ctx)
		}
		top = ""
	}

	if top != "" && !domain.BuiltinIntent(top) {
		if _, ok := t.e.cfg.Intents[top]; ok {
			t.considerIntent(ctx, top)
		}
	}

	if active := sess.Active(); active != nil && !sess.Ended() {
		if cs := active.AwaitingConfirmation(); cs != nil {
			entities = t.handleConfirmation(ctx, active, cs, top, entities)
		}
	}

	if sess.PendingQuestion != "" && !t.answered && !sess.Ended() {
		if top == domain.IntentConfirmYes || top == domain.IntentConfirmNo {
			t.answerPending(ctx, top)
		}
	}

	if active := sess.Active(); active != nil && !sess.Ended() {
		t.applyEntities(ctx, active, entities)
	}

	if sess.Ended() {
		return
	}

	if t.progress {
		sess.Counters.Interaction = 0
	} else {
		sess.Counters.Interaction++
		if sess.Counters.Interaction > t.e.cfg.Limits.InteractionAttempts {
			t.escalate(ctx, domain.EscalationInteraction)
			t.common(ctx, "escalated")
			return
		}
		t.common(ctx, "fallback")
	}

	t.advance(ctx)
}

// handleRepeat replays the last prompt verbatim, bounded by the repeat limit.
func (t *turn) handleRepeat(ctx context.Context) {
	sess := t.sess
	sess.Counters.Repeat++
	if sess.Counters.Repeat > t.e.cfg.Limits.RepeatAttempts {
		t.escalate(ctx, domain.EscalationRepeat)
		t.common(ctx, "escalated")
		return
	}
	t.common(ctx, "repeat")
	t.replayPrompt()
}

// handleHelp answers with the active intent's help text when it has one, then
// re-asks the open question so the conversation does not stall.
func (t *turn) handleHelp(ctx context.Context) {
	t.progress = true
	active := t.sess.Active()
	if active != nil {
		if help := t.e.cfg.Intents[active.Name].Help; help != "" {
			t.say(active.Name+":help", []string{help})
			t.replayPrompt()
			return
		}
	}
	t.common(ctx, "help")
	if active != nil {
		t.replayPrompt()
	}
}

// handleWhy explains the open question. The awaited slot's why text wins over
// the intent's, which wins over the generic message; the question is then
// re-asked.
func (t *turn) handleWhy(ctx context.Context) {
	t.progress = true
	active := t.sess.Active()
	if active != nil {
		slot := active.AwaitingConfirmation()
		if slot == nil {
			slot = active.NextPending()
		}
		if slot != nil {
			if def := t.slotDef(active.Name, slot.Name); def != nil && def.Why != "" {
				t.say(active.Name+":"+slot.Name+":why", []string{def.Why})
				t.replayPrompt()
				return
			}
		}
		if why := t.e.cfg.Intents[active.Name].Why; why != "" {
			t.say(active.Name+":why", []string{why})
			t.replayPrompt()
			return
		}
	}
	t.common(ctx, "why")
	if active != nil {
		t.replayPrompt()
	}
}

// replayPrompt re-emits the last prompt so a meta question does not swallow
// the one the bot is waiting on.
func (t *turn) replayPrompt() {
	if t.sess.LastPrompt != nil {
		t.emit(*t.sess.LastPrompt)
	}
}

// handleWelcome greets on the conversation's opening turn; a greeting later
// in the conversation is ignored rather than treated as a request.
func (t *turn) handleWelcome(ctx context.Context, top string) {
	if t.sess.Turns > 1 {
		return
	}
	t.progress = true
	if top != "" {
		if responses := t.e.cfg.Intents[top].Responses[config.VariantActive]; len(responses) > 0 {
			t.say(top+":"+config.VariantActive, responses)
			return
		}
	}
	t.common(ctx, "welcome")
}

// escalate records the exceeded attempt axis on the reply.
func (t *turn) escalate(ctx context.Context, axis domain.EscalationAxis) {
	t.reply.Escalation = axis
	t.e.logger.Info("attempt limit exceeded",
		"session_id", t.sess.ID,
		"axis", string(axis),
	)
	if t.e.hooks.OnEscalation != nil {
		t.e.hooks.OnEscalation(ctx, t.sess.ID, axis)
	}
}

// endConversation terminates the session and says goodbye. The phase flips
// first so message groups whose action ends the conversation cannot recurse.
func (t *turn) endConversation(ctx context.Context) {
	if t.sess.Ended() {
		return
	}
	t.sess.Phase = domain.PhaseEnded
	t.sess.PendingQuestion = ""
	t.common(ctx, "goodbye")
}

// finish derives the closing phase and pins the last prompt for repeats.
func (t *turn) finish() {
	sess := t.sess
	if len(t.reply.Messages) > 0 {
		last := t.reply.Messages[len(t.reply.Messages)-1]
		sess.LastPrompt = &last
	}
	t.reply.Ended = sess.Ended()
	if sess.Ended() {
		return
	}

	active := sess.Active()
	switch {
	case active == nil && sess.PendingQuestion != "":
		sess.Phase = domain.PhaseCompleting
	case active == nil:
		sess.Phase = domain.PhaseIdle
	case active.AwaitingConfirmation() != nil:
		sess.Phase = domain.PhaseConfirming
	default:
		sess.Phase = domain.PhaseFilling
	}
}

// slotDef finds the declaration for a slot of an intent.
func (t *turn) slotDef(intentName, slotName string) *config.Slot {
	intent, ok := t.e.cfg.Intents[intentName]
	if !ok {
		return nil
	}
	for i := range intent.Slots {
		if intent.Slots[i].Name == slotName {
			return &intent.Slots[i]
		}
	}
	return nil
}
