package engine

import (
	"context"

	"github.com/parleybot/parley/pkg/domain"
)

// dispatch runs fulfillment for a fully filled intent and completes it.
// Failures retry in-turn up to the configured count, then abort the intent.
// Returns true when the intent completed and was popped.
func (t *turn) dispatch(ctx context.Context, active *domain.IntentInstance) bool {
	sess := t.sess
	name := active.Name
	intentCfg := t.e.cfg.Intents[name]

	result := domain.FulfillmentResult{Success: true}

	if intentCfg.Fulfillment != nil && t.e.invoker != nil {
		sess.Phase = domain.PhaseDispatching
		req := domain.FulfillmentRequest{
			SessionID: sess.ID,
			TurnID:    t.reply.TurnID,
			Intent:    name,
			Slots:     active.FilledValues(),
		}
		timeout := intentCfg.Fulfillment.Timeout.Std()
		if timeout == 0 {
			timeout = t.e.cfg.Fulfillment.Timeout.Std()
		}

		for attempt := 0; attempt <= intentCfg.Fulfillment.Retries; attempt++ {
			ictx, cancel := context.WithTimeout(ctx, timeout)
			res, err := t.e.invoker.Invoke(ictx, intentCfg.Fulfillment.URL, req)
			cancel()
			result = res
			if err != nil {
				t.e.logger.Warn("fulfillment attempt failed",
					"session_id", sess.ID,
					"intent", name,
					"attempt", attempt+1,
					"err", err,
				)
				result.Success = false
				if result.Reason == "" {
					result.Reason = err.Error()
				}
			}
			if result.Success {
				break
			}
		}

		if t.e.hooks.OnFulfillment != nil {
			t.e.hooks.OnFulfillment(ctx, sess.ID, name, result)
		}

		if !result.Success {
			t.e.logger.Error("fulfillment failed",
				"session_id", sess.ID,
				"intent", name,
				"reason", result.Reason,
			)
			t.common(ctx, "fulfillment_failed")
			t.abortActive(ctx)
			return false
		}
	}

	active.State = domain.IntentCompleted
	active.Attempts = make(map[string]int)
	sess.Completed[name] = active
	sess.Pop()
	t.reply.CompletedIntent = name
	t.progress = true

	t.e.logger.Info("intent completed",
		"session_id", sess.ID,
		"intent", name,
	)
	if t.e.hooks.OnIntentComplete != nil {
		t.e.hooks.OnIntentComplete(ctx, sess.ID, name)
	}

	if result.Message != "" {
		t.say(name+":fulfillment", []string{result.Message})
	}
	if result.Action == domain.ActionEndConversation {
		t.endConversation(ctx)
		return false
	}
	return true
}
