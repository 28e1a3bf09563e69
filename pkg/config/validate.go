package config

import (
	"errors"
	"fmt"

	"github.com/parleybot/parley/pkg/domain"
)

// HandlerLookup reports whether an entity handler name is registered. It lets
// validation check handler bindings without importing the registry package.
type HandlerLookup func(name string) bool

// Validate checks structural soundness of the definition. A nil lookup skips
// handler-binding checks (used while parsing, before a registry exists).
func (c *Config) Validate(handlerKnown HandlerLookup) error {
	var errs []error

	if c.Thresholds.IntentFilter < 0 || c.Thresholds.IntentFilter > 1 {
		errs = append(errs, fmt.Errorf("thresholds.intent_filter %v outside [0,1]", c.Thresholds.IntentFilter))
	}
	if c.Thresholds.EntityFilter < 0 || c.Thresholds.EntityFilter > 1 {
		errs = append(errs, fmt.Errorf("thresholds.entity_filter %v outside [0,1]", c.Thresholds.EntityFilter))
	}
	for name, v := range map[string]int{
		"limits.new_intents":          c.Limits.NewIntents,
		"limits.question_attempts":    c.Limits.QuestionAttempts,
		"limits.interaction_attempts": c.Limits.InteractionAttempts,
		"limits.repeat_attempts":      c.Limits.RepeatAttempts,
	} {
		if v < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", name, v))
		}
	}

	for name, group := range c.CommonMessages {
		if len(group.Prompts) == 0 {
			errs = append(errs, fmt.Errorf("common_messages.%s: no prompts", name))
		}
		for intent, action := range group.IntentActions {
			if !validAnswerIntent(intent) {
				errs = append(errs, fmt.Errorf("common_messages.%s: unknown answer intent %q", name, intent))
			}
			if _, err := domain.ParseAction(string(action)); err != nil {
				errs = append(errs, fmt.Errorf("common_messages.%s: %w", name, err))
			}
		}
		if group.Action != "" {
			if _, err := domain.ParseAction(string(group.Action)); err != nil {
				errs = append(errs, fmt.Errorf("common_messages.%s: %w", name, err))
			}
		}
	}

	if len(c.Intents) == 0 {
		errs = append(errs, errors.New("no intents defined"))
	}
	for name, intent := range c.Intents {
		errs = append(errs, c.validateIntent(name, intent, handlerKnown)...)
	}

	if handlerKnown != nil {
		for entity, handler := range c.EntityHandlers {
			if !handlerKnown(handler) {
				errs = append(errs, fmt.Errorf("entity_handlers.%s: handler %q not registered", entity, handler))
			}
		}
	}

	return errors.Join(errs...)
}

func (c *Config) validateIntent(name string, intent Intent, handlerKnown HandlerLookup) []error {
	var errs []error

	for variant := range intent.Responses {
		switch variant {
		case VariantActive, VariantDeferred, VariantResumed:
		default:
			errs = append(errs, fmt.Errorf("intents.%s: unknown response variant %q", name, variant))
		}
	}

	seen := map[string]bool{}
	for i, slot := range intent.Slots {
		if slot.Name == "" {
			errs = append(errs, fmt.Errorf("intents.%s: slot %d has no name", name, i))
			continue
		}
		if seen[slot.Name] {
			errs = append(errs, fmt.Errorf("intents.%s: duplicate slot %q", name, slot.Name))
		}
		seen[slot.Name] = true
		if len(slot.Prompts) == 0 {
			errs = append(errs, fmt.Errorf("intents.%s.%s: no prompts", name, slot.Name))
		}
		if handlerKnown != nil && slot.EntityHandler != "" && !handlerKnown(slot.EntityHandler) {
			errs = append(errs, fmt.Errorf("intents.%s.%s: handler %q not registered", name, slot.Name, slot.EntityHandler))
		}
		if slot.FollowUp != nil {
			if len(slot.FollowUp.Prompts) == 0 {
				errs = append(errs, fmt.Errorf("intents.%s.%s: follow_up has no prompts", name, slot.Name))
			}
			for intent, action := range slot.FollowUp.IntentActions {
				if !validAnswerIntent(intent) {
					errs = append(errs, fmt.Errorf("intents.%s.%s: unknown follow_up answer intent %q", name, slot.Name, intent))
				}
				if _, err := domain.ParseAction(string(action)); err != nil {
					errs = append(errs, fmt.Errorf("intents.%s.%s: %w", name, slot.Name, err))
				}
			}
		}
	}

	if intent.Fulfillment != nil {
		if intent.Fulfillment.URL == "" {
			errs = append(errs, fmt.Errorf("intents.%s: fulfillment without url", name))
		}
		if intent.Fulfillment.Retries < 0 {
			errs = append(errs, fmt.Errorf("intents.%s: negative fulfillment retries", name))
		}
	}

	return errs
}

func validAnswerIntent(name string) bool {
	switch name {
	case domain.IntentConfirmYes, domain.IntentConfirmNo:
		return true
	}
	return false
}
