// Package config defines the bot definition consumed at startup: thresholds,
// attempt limits, intent and slot declarations, common message groups and
// entity-handler bindings. The definition is loaded once, validated, and
// treated as immutable for the life of the process; it is safe to share
// across concurrent sessions without locking.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/parleybot/parley/pkg/domain"
)

// Duration is a time.Duration that decodes from YAML strings like "5s".
type Duration time.Duration

// UnmarshalYAML parses the Go duration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Response variant keys for intent activation messages.
const (
	VariantActive   = "active"
	VariantDeferred = "deferred"
	VariantResumed  = "resumed"
)

// Config is the root bot definition.
type Config struct {
	Bot string `yaml:"bot"`

	Thresholds Thresholds `yaml:"thresholds"`
	Limits     Limits     `yaml:"limits"`

	NLU         NLUConfig          `yaml:"nlu"`
	Fulfillment FulfillmentDefault `yaml:"fulfillment"`

	// EntityHandlers binds entity types to handler names for slots that do
	// not declare their own handler.
	EntityHandlers map[string]string `yaml:"entity_handlers"`

	CommonMessages map[string]MessageGroup `yaml:"common_messages"`
	Intents        map[string]Intent       `yaml:"intents"`
}

// Thresholds are the NLU confidence filters, both in [0,1].
type Thresholds struct {
	IntentFilter float64 `yaml:"intent_filter"`
	EntityFilter float64 `yaml:"entity_filter"`
}

// Limits bound the loops a confused conversation can enter.
type Limits struct {
	// NewIntents caps how many intents may sit deferred below the active
	// one; an interruption past the cap is rejected.
	NewIntents int `yaml:"new_intents"`

	// QuestionAttempts caps consecutive re-asks of the same question.
	QuestionAttempts int `yaml:"question_attempts"`

	// InteractionAttempts caps consecutive turns resolving nothing.
	InteractionAttempts int `yaml:"interaction_attempts"`

	// RepeatAttempts caps consecutive explicit repeat requests.
	RepeatAttempts int `yaml:"repeat_attempts"`
}

// NLUConfig selects and parameterizes the recognizer.
type NLUConfig struct {
	// Provider is a registry key: "keyword" (built-in, deterministic) or
	// "luis" (HTTP endpoint).
	Provider string   `yaml:"provider"`
	URL      string   `yaml:"url"`
	Key      string   `yaml:"key"`
	Timeout  Duration `yaml:"timeout"`

	// Patterns maps intent names to utterance substrings for the keyword
	// provider. Built-in answers (yes/no/repeat/help/why/cancel) have
	// defaults.
	Patterns map[string][]string `yaml:"patterns"`

	// EntityPatterns maps entity types to regular expressions for the
	// keyword provider.
	EntityPatterns map[string]string `yaml:"entity_patterns"`
}

// FulfillmentDefault holds process-wide fulfillment settings.
type FulfillmentDefault struct {
	Timeout Duration `yaml:"timeout"`
}

// Intent declares one goal the bot can pursue.
type Intent struct {
	// Help is shown when the user asks for help while this intent is active.
	Help string `yaml:"help"`

	// Why explains why the intent needs its answers when the user asks;
	// a slot may carry a more specific text of its own.
	Why string `yaml:"why"`

	// Greeting marks an intent honored only as the first turn's top intent.
	Greeting bool `yaml:"greeting"`

	// Responses maps variant (active|deferred|resumed) to candidate texts.
	Responses map[string][]string `yaml:"responses"`

	// Slots are collected in declaration order.
	Slots []Slot `yaml:"slots"`

	Fulfillment *Fulfillment `yaml:"fulfillment"`
}

// Slot declares one piece of information an intent requires.
type Slot struct {
	Name    string   `yaml:"name"`
	Prompts []string `yaml:"prompts"`

	// Entity is the NLU entity type that fills this slot; defaults to the
	// slot name.
	Entity string `yaml:"entity"`

	// EntityHandler names the validator/normalizer; falls back to the
	// config-level binding for the entity type, then to passthrough.
	EntityHandler string `yaml:"entity_handler"`

	// Why explains why this particular question is being asked.
	Why string `yaml:"why"`

	// FollowUp, when present, asks the user to confirm the recognized value
	// before the slot is considered filled.
	FollowUp *FollowUp `yaml:"follow_up"`
}

// EntityType returns the bound entity type for the slot.
func (s Slot) EntityType() string {
	if s.Entity != "" {
		return s.Entity
	}
	return s.Name
}

// FollowUp is a confirmation question for a freshly recognized slot value.
type FollowUp struct {
	Prompts []string `yaml:"prompts"`

	// IntentActions overrides the default answer table
	// {ConfirmYes: none, ConfirmNo: repeat_slot}.
	IntentActions map[string]domain.Action `yaml:"intent_actions"`
}

// Actions returns the effective answer table for the follow-up.
func (f *FollowUp) Actions() map[string]domain.Action {
	if f != nil && len(f.IntentActions) > 0 {
		return f.IntentActions
	}
	return map[string]domain.Action{
		domain.IntentConfirmYes: domain.ActionNone,
		domain.IntentConfirmNo:  domain.ActionRepeatSlot,
	}
}

// Fulfillment configures the external action for a completed intent.
type Fulfillment struct {
	URL string `yaml:"url"`

	// Retries is the number of in-turn re-attempts after a failure.
	Retries int `yaml:"retries"`

	Timeout Duration `yaml:"timeout"`
}

// MessageGroup is a named set of prompt variants, optionally expecting an
// answer (intent_actions) or triggering an action when emitted. In YAML a
// group may be written as a bare string, a sequence of strings, or a mapping.
type MessageGroup struct {
	Prompts       []string                 `mapstructure:"prompts"`
	IntentActions map[string]domain.Action `mapstructure:"intent_actions"`
	Action        domain.Action            `mapstructure:"action"`
}

// UnmarshalYAML accepts the three spellings of a message group.
func (g *MessageGroup) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		g.Prompts = []string{s}
		return nil
	case yaml.SequenceNode:
		return value.Decode(&g.Prompts)
	case yaml.MappingNode:
		var raw map[string]any
		if err := value.Decode(&raw); err != nil {
			return err
		}
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           g,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return err
		}
		if err := dec.Decode(raw); err != nil {
			return fmt.Errorf("message group: %w", err)
		}
		return nil
	}
	return fmt.Errorf("message group: unsupported YAML node kind %d", value.Kind)
}

// Load reads and validates a bot definition from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a bot definition.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(nil); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Thresholds.IntentFilter == 0 {
		c.Thresholds.IntentFilter = 0.5
	}
	if c.Thresholds.EntityFilter == 0 {
		c.Thresholds.EntityFilter = 0.5
	}
	if c.Limits.NewIntents == 0 {
		c.Limits.NewIntents = 2
	}
	if c.Limits.QuestionAttempts == 0 {
		c.Limits.QuestionAttempts = 2
	}
	if c.Limits.InteractionAttempts == 0 {
		c.Limits.InteractionAttempts = 3
	}
	if c.Limits.RepeatAttempts == 0 {
		c.Limits.RepeatAttempts = 2
	}
	if c.NLU.Provider == "" {
		c.NLU.Provider = "keyword"
	}
	if c.NLU.Timeout == 0 {
		c.NLU.Timeout = Duration(5 * time.Second)
	}
	if c.Fulfillment.Timeout == 0 {
		c.Fulfillment.Timeout = Duration(10 * time.Second)
	}
	if c.CommonMessages == nil {
		c.CommonMessages = map[string]MessageGroup{}
	}
	for name, group := range defaultCommonMessages() {
		if _, ok := c.CommonMessages[name]; !ok {
			c.CommonMessages[name] = group
		}
	}
}

func defaultCommonMessages() map[string]MessageGroup {
	return map[string]MessageGroup{
		"fallback": {Prompts: []string{"Sorry, I didn't get that."}},
		"welcome":  {Prompts: []string{"Hello! How can I help you today?"}},
		"help":     {Prompts: []string{"You can ask me for one of the things I know how to do."}},
		"repeat":   {Prompts: []string{"Sure, once more:"}},
		"why":      {Prompts: []string{"I need that information to complete your request."}},
		"goodbye":  {Prompts: []string{"Thanks. Have a nice day!"}},
		"intents_complete": {
			Prompts: []string{"Is there anything else I can help you with today?"},
			IntentActions: map[string]domain.Action{
				domain.IntentConfirmYes: domain.ActionNone,
				domain.IntentConfirmNo:  domain.ActionEndConversation,
			},
		},
		"intent_aborted": {
			Prompts: []string{"I'm sorry, I'm unable to help you with that right now."},
			Action:  domain.ActionEndConversation,
		},
		"intent_canceled": {
			Prompts: []string{"Okay, I've canceled that request."},
		},
		"interruption_rejected": {
			Prompts: []string{"I can't take on another request just yet. Let's finish this one first."},
		},
		"escalated": {
			Prompts: []string{"I seem to be having trouble helping you. Let me hand you off."},
			Action:  domain.ActionEndConversation,
		},
		"fulfillment_failed": {
			Prompts: []string{"Something went wrong completing that request. Please try again later."},
		},
	}
}
