package nlu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/pkg/domain"
	"github.com/parleybot/parley/pkg/ports"
)

func newKeyword(t *testing.T) *Keyword {
	t.Helper()
	k, err := NewKeyword(
		map[string][]string{
			"OrderPizza": {"i would like", "order a pizza"},
		},
		map[string]string{
			"zipcode": `\b\d{5}(-\d{4})?\b`,
			"email":   `\b[^@\s]+@[^@\s]+\.[^@\s]+\b`,
		},
	)
	require.NoError(t, err)
	return k
}

func TestKeyword_IntentMatch(t *testing.T) {
	k := newKeyword(t)
	ctx := context.Background()

	res, err := k.Recognize(ctx, "I would like a pepperoni pizza", ports.SessionContext{})
	require.NoError(t, err)
	require.Len(t, res.Intents, 1)
	assert.Equal(t, "OrderPizza", res.Intents[0].Name)
	assert.Equal(t, 1.0, res.Intents[0].Confidence)
}

func TestKeyword_BuiltinAnswers(t *testing.T) {
	k := newKeyword(t)
	ctx := context.Background()

	tests := []struct {
		utterance string
		intent    string
	}{
		{"Yes", domain.IntentConfirmYes},
		{"nope", domain.IntentConfirmNo},
		{"could you repeat that", domain.IntentRepeat},
		{"help", domain.IntentHelp},
		{"why do you ask", domain.IntentWhy},
		{"nevermind", domain.IntentCancel},
		{"Hi there", domain.IntentWelcome},
	}
	for _, tt := range tests {
		res, err := k.Recognize(ctx, tt.utterance, ports.SessionContext{})
		require.NoError(t, err)
		require.NotEmpty(t, res.Intents, tt.utterance)
		assert.Equal(t, tt.intent, res.Intents[0].Name, tt.utterance)
	}
}

func TestKeyword_WholeWordOnly(t *testing.T) {
	k := newKeyword(t)

	res, err := k.Recognize(context.Background(), "I love playing piano", ports.SessionContext{})
	require.NoError(t, err)
	assert.Empty(t, res.Intents, `"no" must not fire inside "piano"`)
}

func TestKeyword_EntityExtraction(t *testing.T) {
	k := newKeyword(t)

	res, err := k.Recognize(context.Background(), "my zip is 12345-6789", ports.SessionContext{})
	require.NoError(t, err)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "zipcode", res.Entities[0].Type)
	assert.Equal(t, "12345-6789", res.Entities[0].Value)
}

func TestKeyword_AwaitedSlotFallback(t *testing.T) {
	k := newKeyword(t)

	sctx := ports.SessionContext{AwaitingSlot: "name", AwaitingEntity: "fullname"}
	res, err := k.Recognize(context.Background(), "Jane Smith", sctx)
	require.NoError(t, err)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "fullname", res.Entities[0].Type)
	assert.Equal(t, "Jane Smith", res.Entities[0].Value)
	assert.Less(t, res.Entities[0].Confidence, 1.0, "fallback value is not a certain match")
}

func TestKeyword_NoFallbackWhenIntentMatched(t *testing.T) {
	k := newKeyword(t)

	sctx := ports.SessionContext{AwaitingSlot: "zipcode", AwaitingEntity: "zipcode"}
	res, err := k.Recognize(context.Background(), "help", sctx)
	require.NoError(t, err)
	assert.Empty(t, res.Entities, "a recognized intent is not a slot answer")
}

func TestNewKeyword_BadEntityPattern(t *testing.T) {
	_, err := NewKeyword(nil, map[string]string{"bad": `(`})
	assert.Error(t, err)
}

func TestKeyword_CanceledContext(t *testing.T) {
	k := newKeyword(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := k.Recognize(ctx, "hello", ports.SessionContext{})
	assert.ErrorIs(t, err, context.Canceled)
}
