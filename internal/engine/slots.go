package engine

import (
	"context"

	"github.com/parleybot/parley/pkg/config"
	"github.com/parleybot/parley/pkg/domain"
)

// handleConfirmation routes the turn's input at a slot awaiting confirmation.
// A replacement entity re-confirms with the new value; a configured answer
// intent applies its action; anything else leaves the confirmation open for
// advance to re-ask. Returns the entities not consumed here.
func (t *turn) handleConfirmation(ctx context.Context, active *domain.IntentInstance, cs *domain.SlotInstance, top string, entities []domain.EntityMatch) []domain.EntityMatch {
	def := t.slotDef(active.Name, cs.Name)
	if def == nil {
		return entities
	}

	// A fresh value for the same slot replaces the pending one and asks again.
	for i, en := range entities {
		if en.Type != def.EntityType() {
			continue
		}
		normalized, err := t.normalize(def, en)
		if err != nil {
			t.e.logger.Debug("replacement value rejected",
				"session_id", t.sess.ID,
				"slot", cs.Name,
				"err", err,
			)
			continue
		}
		cs.Value = &domain.SlotValue{Raw: en.Value, Normalized: normalized}
		delete(active.Attempts, cs.Name)
		t.progress = true
		t.answered = true
		t.askConfirm(ctx, active, cs)
		return append(entities[:i:i], entities[i+1:]...)
	}

	action, ok := def.FollowUp.Actions()[top]
	if !ok {
		return entities
	}
	t.progress = true
	t.answered = true

	switch action {
	case domain.ActionNone:
		cs.State = domain.SlotFilled
		delete(active.Attempts, confirmKey(cs.Name))
		delete(active.Attempts, cs.Name)
		t.e.logger.Debug("slot confirmed",
			"session_id", t.sess.ID,
			"intent", active.Name,
			"slot", cs.Name,
			"value", cs.Value.Normalized,
		)
	case domain.ActionRepeatSlot:
		cs.Value = nil
		cs.State = domain.SlotUnfilled
	case domain.ActionAbortIntent:
		t.abortActive(ctx)
	case domain.ActionEndConversation:
		t.endConversation(ctx)
	}
	return entities
}

// applyEntities fills unfilled slots of the active intent from recognized
// entities. Values that fail their handler are skipped; the open prompt
// stands.
func (t *turn) applyEntities(ctx context.Context, active *domain.IntentInstance, entities []domain.EntityMatch) {
	if len(entities) == 0 {
		return
	}
	for _, slot := range active.Slots {
		if slot.State != domain.SlotUnfilled {
			continue
		}
		def := t.slotDef(active.Name, slot.Name)
		if def == nil {
			continue
		}
		for _, en := range entities {
			if en.Type != def.EntityType() {
				continue
			}
			normalized, err := t.normalize(def, en)
			if err != nil {
				t.e.logger.Debug("entity value rejected",
					"session_id", t.sess.ID,
					"slot", slot.Name,
					"err", err,
				)
				continue
			}
			slot.Value = &domain.SlotValue{Raw: en.Value, Normalized: normalized}
			// Any exit from Unfilled returns the re-ask budget; a later
			// rejected confirmation starts the question over fresh.
			delete(active.Attempts, slot.Name)
			if def.FollowUp != nil {
				slot.State = domain.SlotAwaitingConfirmation
			} else {
				slot.State = domain.SlotFilled
			}
			t.progress = true
			break
		}
	}
}

// normalize runs the entity value through the bound handler chain: the
// slot's own handler, then the config-level binding for the entity type,
// then passthrough.
func (t *turn) normalize(def *config.Slot, en domain.EntityMatch) (string, error) {
	name := def.EntityHandler
	if name == "" {
		name = t.e.cfg.EntityHandlers[def.EntityType()]
	}
	if name == "" {
		name = "passthrough"
	}
	handler, ok := t.e.registry.Get(name)
	if !ok {
		// Validation catches unknown bindings at load; this guards custom
		// registries swapped in afterwards.
		t.e.logger.Warn("entity handler not registered, using raw value",
			"handler", name,
		)
		return en.Value, nil
	}
	return handler.Normalize(en.Value)
}

// advance drives the active intent forward: re-ask an open confirmation,
// prompt the next unfilled slot, or dispatch a complete intent and resume
// whatever was deferred beneath it.
func (t *turn) advance(ctx context.Context) {
	sess := t.sess
	for {
		if sess.Ended() {
			return
		}
		active := sess.Active()
		if active == nil {
			return
		}

		if cs := active.AwaitingConfirmation(); cs != nil {
			if !t.prompted {
				t.askConfirm(ctx, active, cs)
			}
			return
		}

		if next := active.NextPending(); next != nil {
			t.askSlot(ctx, active, next)
			return
		}

		if !t.dispatch(ctx, active) {
			return
		}

		if next := sess.Active(); next != nil {
			t.resume(ctx, next)
			continue
		}

		t.common(ctx, "intents_complete")
		return
	}
}

// askSlot emits the slot's prompt, counting the ask against the question
// attempt limit.
func (t *turn) askSlot(ctx context.Context, active *domain.IntentInstance, slot *domain.SlotInstance) {
	def := t.slotDef(active.Name, slot.Name)
	if def == nil {
		return
	}
	if !t.countAsk(ctx, active, slot.Name) {
		return
	}
	t.say(active.Name+":"+slot.Name, def.Prompts)
}

// askConfirm emits the follow-up question for a slot awaiting confirmation.
func (t *turn) askConfirm(ctx context.Context, active *domain.IntentInstance, slot *domain.SlotInstance) {
	def := t.slotDef(active.Name, slot.Name)
	if def == nil || def.FollowUp == nil {
		// No follow-up declared; accept the value outright.
		slot.State = domain.SlotFilled
		return
	}
	if !t.countAsk(ctx, active, confirmKey(slot.Name)) {
		return
	}
	t.prompted = true
	t.say(active.Name+":"+slot.Name+":confirm", def.FollowUp.Prompts)
}

// countAsk increments the question's attempt counter and aborts the intent
// when re-asks are exhausted. Returns false when the ask must not happen.
func (t *turn) countAsk(ctx context.Context, active *domain.IntentInstance, key string) bool {
	active.Attempts[key]++
	if active.Attempts[key] <= t.e.cfg.Limits.QuestionAttempts {
		return true
	}
	t.escalate(ctx, domain.EscalationSlot)
	t.abortActive(ctx)
	return false
}

// answerPending applies the answer table of the open common question
// (e.g. "anything else?").
func (t *turn) answerPending(ctx context.Context, top string) {
	sess := t.sess
	name := sess.PendingQuestion
	group, ok := t.e.cfg.CommonMessages[name]
	if !ok {
		sess.PendingQuestion = ""
		return
	}
	action, ok := group.IntentActions[top]
	if !ok {
		return
	}
	sess.PendingQuestion = ""
	t.progress = true
	t.answered = true

	switch action {
	case domain.ActionNone:
		// Accepted; point the user at what the bot can do next.
		t.common(ctx, "help")
	case domain.ActionRepeatSlot:
		t.common(ctx, name)
	case domain.ActionAbortIntent:
		t.abortActive(ctx)
	case domain.ActionEndConversation:
		t.endConversation(ctx)
	}
}

func confirmKey(slot string) string {
	return slot + ":confirm"
}
