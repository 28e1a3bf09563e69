package engine

import (
	"context"
	"regexp"

	"github.com/parleybot/parley/pkg/domain"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// say emits one message under the tag, rotating deterministically through the
// variants and substituting {slot} placeholders from the active intent's
// recognized values.
func (t *turn) say(tag string, variants []string) {
	if len(variants) == 0 {
		return
	}
	idx := t.sess.EmitCounts[tag] % len(variants)
	t.sess.EmitCounts[tag]++

	text := substitute(variants[idx], t.params())
	t.emit(message(tag, text))
}

// sayVariant emits an intent's configured response for the given lifecycle
// variant, when one is declared.
func (t *turn) sayVariant(intentName, variant string) {
	responses := t.e.cfg.Intents[intentName].Responses[variant]
	t.say(intentName+":"+variant, responses)
}

// common emits a named common message group. A group with an answer table
// becomes the session's pending question; a group with an action triggers it
// after the message.
func (t *turn) common(ctx context.Context, name string) {
	group, ok := t.e.cfg.CommonMessages[name]
	if !ok {
		t.e.logger.Warn("common message not configured", "name", name)
		return
	}
	t.say(name, group.Prompts)
	if len(group.IntentActions) > 0 {
		t.sess.PendingQuestion = name
	}
	switch group.Action {
	case domain.ActionEndConversation:
		t.endConversation(ctx)
	case domain.ActionAbortIntent:
		t.abortActive(ctx)
	}
}

// emit appends a prepared message to the reply.
func (t *turn) emit(m domain.Message) {
	t.reply.Messages = append(t.reply.Messages, m)
}

func message(tag, text string) domain.Message {
	return domain.Message{Name: tag, Text: text}
}

// params returns the substitution map: every recognized value of the active
// intent, keyed by slot name.
func (t *turn) params() map[string]string {
	active := t.sess.Active()
	if active == nil {
		return nil
	}
	return active.FilledValues()
}

func substitute(text string, params map[string]string) string {
	if len(params) == 0 {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := params[key]; ok {
			return v
		}
		return m
	})
}
