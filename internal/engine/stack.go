package engine

import (
	"context"

	"github.com/parleybot/parley/pkg/config"
	"github.com/parleybot/parley/pkg/domain"
)

// considerIntent routes a recognized, defined, non-builtin intent: start it
// on an empty stack, treat a repeat of the active intent as continuation, or
// handle the interruption.
func (t *turn) considerIntent(ctx context.Context, name string) {
	sess := t.sess
	active := sess.Active()

	switch {
	case active == nil:
		t.startIntent(ctx, name)
	case active.Name == name:
		// Restating the active request is continuation, not interruption.
		t.progress = true
	default:
		t.interrupt(ctx, name)
	}
}

// interrupt defers the active intent in favor of a new one, unless the
// deferral depth is exhausted.
func (t *turn) interrupt(ctx context.Context, name string) {
	sess := t.sess
	if sess.DeferredCount() >= t.e.cfg.Limits.NewIntents {
		t.e.logger.Info("interruption rejected, deferral limit reached",
			"session_id", sess.ID,
			"intent", name,
			"deferred", sess.DeferredCount(),
		)
		t.progress = true
		t.common(ctx, "interruption_rejected")
		return
	}

	active := sess.Active()
	active.State = domain.IntentDeferred
	t.sayVariant(active.Name, config.VariantDeferred)
	if t.e.hooks.OnIntentDefer != nil {
		t.e.hooks.OnIntentDefer(ctx, sess.ID, active.Name)
	}

	t.startIntent(ctx, name)
}

// startIntent pushes a fresh instance and announces it.
func (t *turn) startIntent(ctx context.Context, name string) {
	sess := t.sess
	intentCfg := t.e.cfg.Intents[name]

	slotNames := make([]string, 0, len(intentCfg.Slots))
	for _, s := range intentCfg.Slots {
		slotNames = append(slotNames, s.Name)
	}

	in := domain.NewIntentInstance(name, slotNames)
	sess.Push(in)
	sess.PendingQuestion = ""
	t.progress = true

	t.e.logger.Info("intent started",
		"session_id", sess.ID,
		"intent", name,
		"stack_depth", len(sess.Stack),
	)

	t.sayVariant(name, config.VariantActive)
	if t.e.hooks.OnIntentStart != nil {
		t.e.hooks.OnIntentStart(ctx, sess.ID, name)
	}
}

// resume reactivates the intent now on top of the stack after a completion
// or abort. Deferred intents resume in LIFO order.
func (t *turn) resume(ctx context.Context, in *domain.IntentInstance) {
	in.State = domain.IntentResumed
	t.sayVariant(in.Name, config.VariantResumed)
	if t.e.hooks.OnIntentResume != nil {
		t.e.hooks.OnIntentResume(ctx, t.sess.ID, in.Name)
	}
}

// abortActive abandons the active intent. The abort message's configured
// action decides whether the conversation survives; with the stock
// configuration it ends.
func (t *turn) abortActive(ctx context.Context) {
	sess := t.sess
	active := sess.Pop()
	if active == nil {
		return
	}
	t.e.logger.Info("intent aborted",
		"session_id", sess.ID,
		"intent", active.Name,
	)
	t.common(ctx, "intent_aborted")

	if sess.Ended() {
		return
	}
	if next := sess.Active(); next != nil {
		t.resume(ctx, next)
	}
}

// cancelActive drops the active intent at the user's request. Unlike an
// abort the conversation keeps going: the most recently deferred intent
// resumes, or the bot asks what else it can do.
func (t *turn) cancelActive(ctx context.Context) {
	sess := t.sess
	canceled := sess.Pop()
	if canceled == nil {
		return
	}
	t.progress = true
	t.e.logger.Info("intent canceled",
		"session_id", sess.ID,
		"intent", canceled.Name,
	)
	t.common(ctx, "intent_canceled")

	if next := sess.Active(); next != nil {
		t.resume(ctx, next)
		return
	}
	t.common(ctx, "intents_complete")
}
