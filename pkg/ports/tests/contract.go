// Package tests provides reusable contract suites for ports implementations.
package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleybot/parley/pkg/domain"
	"github.com/parleybot/parley/pkg/ports"
)

// RunSessionStoreContract verifies that an adapter complies with
// ports.SessionStore semantics.
func RunSessionStoreContract(t *testing.T, store ports.SessionStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Save_Load_RoundTrip", func(t *testing.T) {
		sess := domain.NewSession("s1")
		sess.Phase = domain.PhaseFilling
		sess.Counters.Interaction = 2
		in := domain.NewIntentInstance("OrderPizza", []string{"size", "address"})
		in.Slots[0].State = domain.SlotFilled
		in.Slots[0].Value = &domain.SlotValue{Raw: "a large one", Normalized: "large"}
		sess.Push(in)

		require.NoError(t, store.Save(ctx, sess.ID, sess))

		got, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, domain.PhaseFilling, got.Phase)
		assert.Equal(t, 2, got.Counters.Interaction)
		require.Len(t, got.Stack, 1)
		require.NotNil(t, got.Stack[0].Slots[0].Value)
		assert.Equal(t, "large", got.Stack[0].Slots[0].Value.Normalized)
	})

	t.Run("Load_Isolation", func(t *testing.T) {
		sess := domain.NewSession("s2")
		require.NoError(t, store.Save(ctx, sess.ID, sess))

		first, err := store.Load(ctx, "s2")
		require.NoError(t, err)
		first.Counters.Repeat = 99

		second, err := store.Load(ctx, "s2")
		require.NoError(t, err)
		assert.Equal(t, 0, second.Counters.Repeat, "mutating a loaded session must not leak into the store")
	})

	t.Run("Delete", func(t *testing.T) {
		sess := domain.NewSession("s3")
		require.NoError(t, store.Save(ctx, sess.ID, sess))
		require.NoError(t, store.Delete(ctx, "s3"))

		_, err := store.Load(ctx, "s3")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "list-a", domain.NewSession("list-a")))
		require.NoError(t, store.Save(ctx, "list-b", domain.NewSession("list-b")))

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, "list-a")
		assert.Contains(t, ids, "list-b")
	})
}
