package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/internal/engine"
	"github.com/parleybot/parley/pkg/adapters/nlu"
	"github.com/parleybot/parley/pkg/config"
	"github.com/parleybot/parley/pkg/domain"
	"github.com/parleybot/parley/pkg/entity"
	"github.com/parleybot/parley/pkg/ports"
)

const testBotYAML = `
bot: test-bot
limits:
  new_intents: 2
  question_attempts: 2
  interaction_attempts: 3
  repeat_attempts: 2
nlu:
  provider: keyword
  patterns:
    IntentXYZ: ["i would like xyz", "xyz please"]
    OrderPizza: ["order a pizza"]
    BookFlight: ["book a flight"]
    CheckWeather: ["check the weather"]
  entity_patterns:
    zipcode: '\b\d{5}(-\d{4})?\b'
    email: '\b[^@\s]+@[^@\s]+\.[^@\s]+\b'
intents:
  IntentXYZ:
    help: Give me a zipcode and an email address.
    why: XYZ needs a little information about you to work.
    responses:
      active: ["Let's get XYZ going."]
      deferred: ["Putting XYZ on hold."]
      resumed: ["Back to XYZ."]
    slots:
      - name: zipcode
        prompts: ["What is your zipcode?"]
        why: Your zipcode tells me where to send things.
        entity_handler: zipcode
        follow_up:
          prompts: ["You said {zipcode}, is that right?"]
      - name: email
        prompts: ["What is your email?"]
        entity_handler: email
  OrderPizza:
    responses:
      active: ["Pizza time."]
      deferred: ["Pizza on hold."]
      resumed: ["Back to your pizza."]
    slots:
      - name: zipcode
        prompts: ["Delivery zipcode?"]
  BookFlight:
    responses:
      active: ["Flight it is."]
      deferred: ["Flight on hold."]
      resumed: ["Back to your flight."]
    slots:
      - name: email
        prompts: ["Contact email?"]
  CheckWeather:
    slots:
      - name: zipcode
        prompts: ["Which zipcode?"]
`

func newEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	cfg, err := config.Parse([]byte(testBotYAML))
	require.NoError(t, err)

	recognizer, err := nlu.NewKeyword(cfg.NLU.Patterns, cfg.NLU.EntityPatterns)
	require.NoError(t, err)

	return engine.New(cfg, entity.NewRegistry(), recognizer, opts...)
}

func say(t *testing.T, e *engine.Engine, sess *domain.Session, text string) *domain.Reply {
	t.Helper()
	reply, err := e.Turn(context.Background(), sess, domain.TextInput(text))
	require.NoError(t, err)
	return reply
}

// TestScriptedConversation walks the canonical happy path end to end.
func TestScriptedConversation(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("script")

	// Greeting.
	reply := say(t, e, sess, "Hi")
	assert.Equal(t, domain.IntentWelcome, reply.RecognizedIntent)
	assert.True(t, reply.Has("welcome"))

	// Intent activation prompts the first slot.
	reply = say(t, e, sess, "I would like XYZ")
	assert.Equal(t, "IntentXYZ", reply.RecognizedIntent)
	assert.True(t, reply.Has("IntentXYZ"))
	assert.True(t, reply.Has("IntentXYZ:zipcode"))
	assert.Equal(t, domain.PhaseFilling, sess.Phase)

	// Slot value with a follow-up goes to confirmation.
	reply = say(t, e, sess, "my zip is 12345")
	assert.True(t, reply.Has("IntentXYZ:zipcode:confirm"))
	assert.Contains(t, reply.Text(), "12345", "confirmation substitutes the recognized value")
	assert.Equal(t, domain.PhaseConfirming, sess.Phase)
	require.NotNil(t, sess.Active())
	require.NotNil(t, sess.Active().Slot("zipcode"))
	assert.Equal(t, domain.SlotAwaitingConfirmation, sess.Active().Slot("zipcode").State)

	// Confirming fills the slot and moves to the next one.
	reply = say(t, e, sess, "Yes")
	assert.Equal(t, domain.SlotFilled, sess.Active().Slot("zipcode").State)
	assert.True(t, reply.Has("IntentXYZ:email"))

	// Final slot completes the intent and asks whether anything else is needed.
	reply = say(t, e, sess, "john@example.com")
	assert.Equal(t, "IntentXYZ", reply.CompletedIntent)
	assert.True(t, reply.Has("intents_complete"))
	assert.Equal(t, domain.PhaseCompleting, sess.Phase)
	assert.Empty(t, sess.Stack)
	assert.Contains(t, sess.Completed, "IntentXYZ")

	// Declining ends the conversation.
	reply = say(t, e, sess, "No")
	assert.True(t, reply.Has("goodbye"))
	assert.True(t, reply.Ended)
	assert.Equal(t, domain.PhaseEnded, sess.Phase)

	// Further turns are rejected.
	_, err := e.Turn(context.Background(), sess, domain.TextInput("hello?"))
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
}

func TestTurn_AnythingElseYes(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("more")

	say(t, e, sess, "check the weather")
	say(t, e, sess, "12345")
	require.Equal(t, domain.PhaseCompleting, sess.Phase)

	// Accepting the offer keeps the session open for a new request.
	reply := say(t, e, sess, "Yes")
	assert.False(t, reply.Ended)

	reply = say(t, e, sess, "order a pizza")
	assert.Equal(t, "OrderPizza", reply.RecognizedIntent)
	assert.True(t, reply.Has("OrderPizza:zipcode"))
}

func TestTurn_IntentInjection(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("inject")

	reply, err := e.Turn(context.Background(), sess, domain.IntentInput("IntentXYZ", map[string]string{
		"zipcode": "12345",
	}))
	require.NoError(t, err)

	assert.Equal(t, "IntentXYZ", reply.RecognizedIntent)
	// The injected value lands in the slot and triggers its confirmation.
	assert.True(t, reply.Has("IntentXYZ:zipcode:confirm"))
	assert.Equal(t, domain.SlotAwaitingConfirmation, sess.Active().Slot("zipcode").State)
	assert.Equal(t, "12345", sess.Active().Slot("zipcode").Value.Normalized)
}

func TestTurn_UnknownInjectedIntent(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("inject-bad")

	_, err := e.Turn(context.Background(), sess, domain.IntentInput("LaunchRockets", nil))
	assert.ErrorIs(t, err, domain.ErrUnknownIntent)
}

func TestTurn_HelpUsesActiveIntent(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("help")

	// No active intent: generic help.
	reply := say(t, e, sess, "help")
	assert.True(t, reply.Has("help"))

	say(t, e, sess, "I would like XYZ")
	reply = say(t, e, sess, "help")
	assert.True(t, reply.Has("IntentXYZ:help"))
	assert.Contains(t, reply.Text(), "zipcode")
	// The open question is re-asked after the help text.
	assert.True(t, reply.Has("IntentXYZ:zipcode"))
}

func TestTurn_WhyUsesSlotThenIntent(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("why")

	say(t, e, sess, "I would like XYZ")

	// The awaited slot declares its own why text.
	reply := say(t, e, sess, "why do you need that")
	assert.True(t, reply.Has("IntentXYZ:zipcode:why"))
	assert.Contains(t, reply.Text(), "where to send things")
	assert.True(t, reply.Has("IntentXYZ:zipcode"), "the open question is re-asked")

	// The email slot has no text of its own, so the intent's is used.
	say(t, e, sess, "12345")
	say(t, e, sess, "yes")
	reply = say(t, e, sess, "why")
	assert.True(t, reply.Has("IntentXYZ:why"))
	assert.True(t, reply.Has("IntentXYZ:email"))
	assert.False(t, reply.Ended)
}

func TestTurn_WhyFallsBackToCommonMessage(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("why-generic")

	// No active intent: the generic explanation.
	reply := say(t, e, sess, "why")
	assert.True(t, reply.Has("why"))
	assert.False(t, reply.Ended)

	// An intent with no why text of its own also gets the generic answer.
	say(t, e, sess, "order a pizza")
	reply = say(t, e, sess, "why do you ask")
	assert.True(t, reply.Has("why"))
	assert.True(t, reply.Has("OrderPizza:zipcode"))
}

func TestTurn_GreetingIgnoredMidConversation(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("late-hi")

	say(t, e, sess, "I would like XYZ")
	reply := say(t, e, sess, "hello")

	assert.False(t, reply.Has("welcome"))
	assert.True(t, reply.Has("fallback"), "a late greeting resolves nothing")
	assert.Len(t, sess.Stack, 1, "the active intent survives")
}

func TestTurn_RecognizerFailureIsNoMatch(t *testing.T) {
	cfg, err := config.Parse([]byte(testBotYAML))
	require.NoError(t, err)

	e := engine.New(cfg, entity.NewRegistry(), failingRecognizer{})
	sess := domain.NewSession("nlu-down")

	reply, err := e.Turn(context.Background(), sess, domain.TextInput("I would like XYZ"))
	require.NoError(t, err)
	assert.Empty(t, reply.RecognizedIntent)
	assert.True(t, reply.Has("fallback"))
}

type failingRecognizer struct{}

func (failingRecognizer) Recognize(ctx context.Context, utterance string, _ ports.SessionContext) (*domain.NLUResult, error) {
	return nil, context.DeadlineExceeded
}
