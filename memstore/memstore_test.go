package memstore_test

import (
	"context"
	"testing"

	"github.com/helmspoke/go-identity"
	"github.com/helmspoke/go-identity/memstore"
	"github.com/helmspoke/go-identity/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) identity.Store {
		store := memstore.New()
		require.NoError(t, store.Initialize(context.Background()))
		return store
	})
}

func TestRunInTxHonorsCancelledContext(t *testing.T) {
	store := memstore.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.RunInTx(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestReturnedRecordsDoNotAliasStorage(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	user := &identity.User{Username: "alice99"}
	user.AddMetadata("source", "signup")
	require.NoError(t, store.Users().Create(ctx, user))

	// Mutating the caller's copy after Create must not leak into the store.
	user.AddMetadata("tampered", true)

	got, err := store.Users().Get(ctx, "alice99")
	require.NoError(t, err)
	assert.NotContains(t, got.Metadata, "tampered")

	// Mutating a returned copy must not change what the next read sees.
	got.Deactivated = true
	again, err := store.Users().Get(ctx, "alice99")
	require.NoError(t, err)
	assert.False(t, again.Deactivated)
}
