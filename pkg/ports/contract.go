package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/teller/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.UserID = 7
		state.Begin(domain.IntentTransfer)
		state.Entities[domain.SlotBeneficiary] = "Ahmed"
		state.Entities[domain.SlotAmount] = 500.0
		state.Entities[domain.SlotFromAccount] = int64(12)

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.IntentTransfer, loaded.CurrentIntent)
		assert.Equal(t, int64(7), loaded.UserID)
		assert.Equal(t, "Ahmed", loaded.Entities[domain.SlotBeneficiary])

		// JSON-backed stores return numbers as float64; the typed accessors absorb that.
		amount, ok := loaded.Entities.Float(domain.SlotAmount)
		assert.True(t, ok)
		assert.Equal(t, 500.0, amount)
		id, ok := loaded.Entities.Int(domain.SlotFromAccount)
		assert.True(t, ok)
		assert.Equal(t, int64(12), id)
	})

	t.Run("Load is isolated from later mutation", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Begin(domain.IntentDeposit)
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.Entities[domain.SlotAmount] = 1.0

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.False(t, loaded.Entities.Has(domain.SlotAmount))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
