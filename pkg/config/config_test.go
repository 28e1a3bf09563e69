package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/pkg/domain"
)

const sampleYAML = `
bot: pizza-bot
thresholds:
  intent_filter: 0.6
limits:
  new_intents: 1
nlu:
  provider: keyword
  patterns:
    OrderPizza: ["i would like", "order a pizza"]
  entity_patterns:
    zipcode: '\b\d{5}(-\d{4})?\b'
common_messages:
  fallback: "Come again?"
  goodbye:
    - "Bye!"
    - "See you, {name}!"
  intent_aborted:
    prompts:
      - "Can't do that right now."
    action: end_conversation
intents:
  OrderPizza:
    help: Tell me where to deliver.
    responses:
      active: ["Pizza coming up."]
      deferred: ["Hold that pizza thought."]
      resumed: ["Back to your pizza."]
    slots:
      - name: zipcode
        prompts: ["What is your zipcode?"]
        entity_handler: zipcode
        follow_up:
          prompts: ["You said {zipcode}, correct?"]
      - name: email
        prompts: ["What is your email?"]
    fulfillment:
      url: http://orders.internal/pizza
      retries: 1
      timeout: 2s
`

func TestParse_Sample(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "pizza-bot", cfg.Bot)
	assert.Equal(t, 0.6, cfg.Thresholds.IntentFilter)
	assert.Equal(t, 0.5, cfg.Thresholds.EntityFilter, "default applies when unset")
	assert.Equal(t, 1, cfg.Limits.NewIntents)
	assert.Equal(t, 2, cfg.Limits.QuestionAttempts)

	intent, ok := cfg.Intents["OrderPizza"]
	require.True(t, ok)
	require.Len(t, intent.Slots, 2)
	assert.Equal(t, "zipcode", intent.Slots[0].EntityType())
	require.NotNil(t, intent.Fulfillment)
	assert.Equal(t, 2*time.Second, intent.Fulfillment.Timeout.Std())
}

func TestParse_MessageGroupSpellings(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	scalar := cfg.CommonMessages["fallback"]
	assert.Equal(t, []string{"Come again?"}, scalar.Prompts)

	seq := cfg.CommonMessages["goodbye"]
	assert.Len(t, seq.Prompts, 2)

	mapping := cfg.CommonMessages["intent_aborted"]
	assert.Equal(t, domain.ActionEndConversation, mapping.Action)

	// Defaults backfill groups the file never mentions.
	complete := cfg.CommonMessages["intents_complete"]
	assert.Equal(t, domain.ActionEndConversation, complete.IntentActions[domain.IntentConfirmNo])
}

func TestParse_RejectsEmptyIntents(t *testing.T) {
	_, err := Parse([]byte("bot: empty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no intents")
}

func TestValidate_BadVariantAndDuplicateSlot(t *testing.T) {
	const bad = `
intents:
  Broken:
    responses:
      activated: ["wrong key"]
    slots:
      - name: a
        prompts: ["?"]
      - name: a
        prompts: ["?"]
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown response variant")
	assert.Contains(t, err.Error(), "duplicate slot")
}

func TestValidate_HandlerLookup(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	err = cfg.Validate(func(name string) bool { return name == "email" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), `handler "zipcode" not registered`)

	assert.NoError(t, cfg.Validate(func(string) bool { return true }))
}

func TestValidate_BadAction(t *testing.T) {
	const bad = `
common_messages:
  weird:
    prompts: ["..."]
    action: explode
intents:
  X:
    slots:
      - name: s
        prompts: ["?"]
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown action "explode"`)
}

func TestFollowUpActions_Default(t *testing.T) {
	var f *FollowUp
	acts := f.Actions()
	assert.Equal(t, domain.ActionNone, acts[domain.IntentConfirmYes])
	assert.Equal(t, domain.ActionRepeatSlot, acts[domain.IntentConfirmNo])
}
