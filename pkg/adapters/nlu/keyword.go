// Package nlu provides recognizer adapters: a deterministic keyword matcher
// for tests and offline bots, and a LUIS-style HTTP client.
package nlu

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/parleybot/parley/pkg/domain"
	"github.com/parleybot/parley/pkg/ports"
)

// Keyword is a deterministic recognizer: intents match by utterance
// substrings, entities by regular expressions. It exists for scenario tests
// and demo bots, not as a serious language model.
type Keyword struct {
	patterns map[string][]string
	entities map[string]*regexp.Regexp
}

// NewKeyword builds the matcher. Intent patterns are matched
// case-insensitively as substrings; entity patterns are compiled as regular
// expressions and matched against the raw utterance.
func NewKeyword(patterns map[string][]string, entityPatterns map[string]string) (*Keyword, error) {
	k := &Keyword{
		patterns: make(map[string][]string),
		entities: make(map[string]*regexp.Regexp),
	}
	for name, ps := range defaultPatterns() {
		k.patterns[name] = ps
	}
	for name, ps := range patterns {
		k.patterns[name] = ps
	}
	for typ, expr := range entityPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("entity pattern %s: %w", typ, err)
		}
		k.entities[typ] = re
	}
	return k, nil
}

// Recognition patterns for the built-in conversational intents.
func defaultPatterns() map[string][]string {
	return map[string][]string{
		domain.IntentConfirmYes: {"yes", "yeah", "yep", "sure", "correct", "right"},
		domain.IntentConfirmNo:  {"no", "nope", "nah", "wrong", "incorrect"},
		domain.IntentRepeat:     {"repeat", "say that again", "what was that", "pardon"},
		domain.IntentHelp:       {"help", "what can you do"},
		domain.IntentWhy:        {"why", "why do you need that", "why do you ask"},
		domain.IntentCancel:     {"cancel", "nevermind", "never mind", "forget it"},
		domain.IntentWelcome:    {"hi", "hello", "hey", "good morning", "good afternoon"},
	}
}

// Recognize matches the utterance against configured patterns. Matched
// intents score 1.0; everything else is omitted. When a slot answer is
// awaited and its entity pattern matches, the whole utterance is also offered
// as a low-confidence fallback value for that entity type.
func (k *Keyword) Recognize(ctx context.Context, utterance string, sctx ports.SessionContext) (*domain.NLUResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &domain.NLUResult{Query: utterance}
	lowered := strings.ToLower(strings.TrimSpace(utterance))

	for name, patterns := range k.patterns {
		for _, p := range patterns {
			if matchPattern(lowered, p) {
				res.Intents = append(res.Intents, domain.IntentScore{Name: name, Confidence: 1.0})
				break
			}
		}
	}
	res.Sort()

	for typ, re := range k.entities {
		if m := re.FindString(utterance); m != "" {
			res.Entities = append(res.Entities, domain.EntityMatch{Type: typ, Value: m, Confidence: 1.0})
		}
	}

	// A bare answer to an open prompt counts as that slot's entity when no
	// pattern claimed it.
	if sctx.AwaitingEntity != "" && len(res.Intents) == 0 && lowered != "" {
		if !hasEntity(res.Entities, sctx.AwaitingEntity) {
			res.Entities = append(res.Entities, domain.EntityMatch{
				Type:       sctx.AwaitingEntity,
				Value:      strings.TrimSpace(utterance),
				Confidence: 0.6,
			})
		}
	}

	return res, nil
}

func hasEntity(entities []domain.EntityMatch, typ string) bool {
	for _, e := range entities {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// matchPattern matches single-word patterns against whole words only, so
// "no" does not fire inside "piano"; multi-word patterns match as substrings.
func matchPattern(lowered, pattern string) bool {
	p := strings.ToLower(pattern)
	if !strings.Contains(p, " ") {
		for _, w := range strings.FieldsFunc(lowered, func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
		}) {
			if w == p {
				return true
			}
		}
		return false
	}
	return strings.Contains(lowered, p)
}
