package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/pkg/domain"
)

// question_attempts is 2 in the test definition: one ask, one re-ask, then
// the intent aborts.
func TestAttempts_SlotReAskExhaustion(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("slot-limit")

	say(t, e, sess, "I would like XYZ") // ask #1

	reply := say(t, e, sess, "blah blah") // re-ask #2
	assert.True(t, reply.Has("fallback"))
	assert.True(t, reply.Has("IntentXYZ:zipcode"))
	assert.False(t, reply.Ended)

	reply = say(t, e, sess, "blah blah") // would be ask #3: abort
	assert.Equal(t, domain.EscalationSlot, reply.Escalation)
	assert.True(t, reply.Has("intent_aborted"))
	assert.True(t, reply.Ended)
	assert.Empty(t, sess.Stack)
}

func TestAttempts_ResetOnFill(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("slot-reset")

	say(t, e, sess, "I would like XYZ") // zipcode ask #1
	say(t, e, sess, "blah blah")        // zipcode ask #2
	say(t, e, sess, "12345")            // filled (awaiting confirmation)
	reply := say(t, e, sess, "yes")     // confirmed; email ask #1

	require.True(t, reply.Has("IntentXYZ:email"))
	assert.False(t, reply.Ended)

	// The email question gets its own budget.
	reply = say(t, e, sess, "blah blah")
	assert.False(t, reply.Ended)
	assert.True(t, reply.Has("IntentXYZ:email"))
}

// A rejected confirmation puts the slot back to unfilled with a fresh re-ask
// budget; only the confirmation question's own counter keeps climbing.
func TestAttempts_ResetOnRejectedConfirmation(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("reject-cycle")

	say(t, e, sess, "I would like XYZ") // zipcode ask #1
	say(t, e, sess, "12345")            // accepted, confirm ask #1
	reply := say(t, e, sess, "no")      // rejected: zipcode asked again
	require.True(t, reply.Has("IntentXYZ:zipcode"))

	say(t, e, sess, "12345")      // confirm ask #2
	reply = say(t, e, sess, "no") // second reject cycle, still within budget
	assert.True(t, reply.Has("IntentXYZ:zipcode"))
	assert.False(t, reply.Ended)
	assert.Empty(t, reply.Escalation)
	require.NotNil(t, sess.Active(), "two reject cycles must not abort the intent")
	assert.Equal(t, 1, sess.Active().Attempts["zipcode"], "each cycle re-asks on a fresh budget")
}

func TestAttempts_InteractionExhaustion(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("interaction")

	// interaction_attempts is 3; with no active intent nothing else aborts
	// first.
	for i := 0; i < 3; i++ {
		reply := say(t, e, sess, "blah blah")
		assert.True(t, reply.Has("fallback"))
		assert.False(t, reply.Ended)
	}

	reply := say(t, e, sess, "blah blah")
	assert.Equal(t, domain.EscalationInteraction, reply.Escalation)
	assert.True(t, reply.Has("escalated"))
	assert.True(t, reply.Ended)
}

func TestAttempts_InteractionResetOnProgress(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("interaction-reset")

	say(t, e, sess, "blah blah")
	say(t, e, sess, "blah blah")
	require.Equal(t, 2, sess.Counters.Interaction)

	say(t, e, sess, "I would like XYZ")
	assert.Equal(t, 0, sess.Counters.Interaction, "a recognized intent resets the counter")
}

func TestAttempts_RepeatReplaysLastPrompt(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("repeat")

	say(t, e, sess, "I would like XYZ")

	reply := say(t, e, sess, "repeat")
	assert.True(t, reply.Has("repeat"))
	assert.True(t, reply.Has("IntentXYZ:zipcode"), "the last prompt is replayed verbatim")
	assert.False(t, reply.Ended)
}

func TestAttempts_RepeatExhaustion(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("repeat-limit")

	say(t, e, sess, "I would like XYZ")

	// repeat_attempts is 2.
	say(t, e, sess, "repeat")
	say(t, e, sess, "repeat")

	reply := say(t, e, sess, "repeat")
	assert.Equal(t, domain.EscalationRepeat, reply.Escalation)
	assert.True(t, reply.Has("escalated"))
	assert.True(t, reply.Ended)
}

func TestAttempts_RepeatCounterResetsOnOtherInput(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("repeat-reset")

	say(t, e, sess, "I would like XYZ")
	say(t, e, sess, "repeat")
	say(t, e, sess, "repeat")
	require.Equal(t, 2, sess.Counters.Repeat)

	say(t, e, sess, "12345")
	assert.Equal(t, 0, sess.Counters.Repeat)

	// The budget is fresh again.
	reply := say(t, e, sess, "repeat")
	assert.False(t, reply.Ended)
}
