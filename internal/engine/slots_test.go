package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/pkg/domain"
)

func TestConfirmation_RejectReAsks(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("confirm-no")

	say(t, e, sess, "I would like XYZ")
	say(t, e, sess, "12345")
	require.Equal(t, domain.SlotAwaitingConfirmation, sess.Active().Slot("zipcode").State)

	reply := say(t, e, sess, "no")
	slot := sess.Active().Slot("zipcode")
	assert.Equal(t, domain.SlotUnfilled, slot.State)
	assert.Nil(t, slot.Value, "a rejected value is discarded entirely")
	assert.True(t, reply.Has("IntentXYZ:zipcode"), "the slot is asked again")
}

func TestConfirmation_ReplacementValueReConfirms(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("confirm-replace")

	say(t, e, sess, "I would like XYZ")
	say(t, e, sess, "12345")

	// Answering the confirmation with a different value swaps it in and
	// asks again.
	reply := say(t, e, sess, "no wait, 90210")
	slot := sess.Active().Slot("zipcode")
	assert.Equal(t, domain.SlotAwaitingConfirmation, slot.State)
	assert.Equal(t, "90210", slot.Value.Normalized)
	assert.True(t, reply.Has("IntentXYZ:zipcode:confirm"))
	assert.Contains(t, reply.Text(), "90210")
}

func TestConfirmation_UnrelatedAnswerReAsksConfirmation(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("confirm-unrelated")

	say(t, e, sess, "I would like XYZ")
	say(t, e, sess, "12345")

	reply := say(t, e, sess, "purple monkey dishwasher")
	assert.True(t, reply.Has("fallback"))
	assert.True(t, reply.Has("IntentXYZ:zipcode:confirm"))
	assert.Equal(t, domain.SlotAwaitingConfirmation, sess.Active().Slot("zipcode").State)
}

func TestConfirmation_ExhaustionAborts(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("confirm-limit")

	say(t, e, sess, "I would like XYZ")
	say(t, e, sess, "12345")                        // confirm ask #1
	say(t, e, sess, "purple monkey dishwasher")     // confirm ask #2
	reply := say(t, e, sess, "purple monkey again") // would be #3: abort

	assert.Equal(t, domain.EscalationSlot, reply.Escalation)
	assert.True(t, reply.Has("intent_aborted"))
	assert.True(t, reply.Ended)
}

func TestSlots_InvalidValueIsIgnored(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("invalid-value")

	say(t, e, sess, "I would like XYZ")

	// The zipcode handler rejects a four-digit value; the prompt stands.
	reply := say(t, e, sess, "1234")
	slot := sess.Active().Slot("zipcode")
	assert.Equal(t, domain.SlotUnfilled, slot.State)
	assert.Nil(t, slot.Value)
	assert.True(t, reply.Has("IntentXYZ:zipcode"))
}

func TestSlots_ZipPlusFourNormalized(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("zip-norm")

	say(t, e, sess, "I would like XYZ")
	say(t, e, sess, "12345-6789")

	slot := sess.Active().Slot("zipcode")
	require.NotNil(t, slot.Value)
	assert.Equal(t, "12345-6789", slot.Value.Raw)
	assert.Equal(t, "12345", slot.Value.Normalized, "handler normalizes to the five-digit code")
}

func TestSlots_NoFollowUpFillsDirectly(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("direct-fill")

	say(t, e, sess, "order a pizza")
	reply := say(t, e, sess, "12345")

	// OrderPizza's zipcode has no follow-up: the value fills and the intent
	// completes in the same turn.
	assert.Equal(t, "OrderPizza", reply.CompletedIntent)
	assert.True(t, reply.Has("intents_complete"))
}

func TestSlots_EmailNormalizedLowercase(t *testing.T) {
	e := newEngine(t)
	sess := domain.NewSession("email-norm")

	say(t, e, sess, "book a flight")
	say(t, e, sess, "Jane.Doe@Example.COM")

	done := sess.Completed["BookFlight"]
	require.NotNil(t, done)
	require.NotNil(t, done.Slot("email").Value)
	assert.Equal(t, "jane.doe@example.com", done.Slot("email").Value.Normalized)
}
