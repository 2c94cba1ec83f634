package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/shopfront/internal/domain"
)

func TestLoadCart_RoundTrip(t *testing.T) {
	store := NewMemory()
	items := []domain.CartItem{
		{ProductID: "p1", Name: "Lamp", Price: 100, Quantity: 2},
		{ProductID: "p2", Name: "Mug", Price: 12.5, Quantity: 1},
	}

	require.NoError(t, SaveCart(store, items))
	assert.Equal(t, items, LoadCart(store))
}

func TestLoadCart_Missing(t *testing.T) {
	store := NewMemory()
	assert.Empty(t, LoadCart(store))
}

func TestLoadCart_SentinelStrings(t *testing.T) {
	for _, payload := range []string{"undefined", "null", "  null  "} {
		store := NewMemory()
		require.NoError(t, store.Set(KeyCart, []byte(payload)))

		assert.Empty(t, LoadCart(store), "payload %q", payload)

		// the corrupt key is removed, not left to fail again
		_, err := store.Get(KeyCart)
		assert.ErrorIs(t, err, ErrNotFound, "payload %q", payload)
	}
}

func TestLoadCart_InvalidJSON(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Set(KeyCart, []byte("{not json")))

	assert.NotPanics(t, func() {
		assert.Empty(t, LoadCart(store))
	})
	_, err := store.Get(KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCart_NotAnArray(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Set(KeyCart, []byte(`{"productId":"p1"}`)))

	assert.Empty(t, LoadCart(store))
	_, err := store.Get(KeyCart)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveCart_NilBecomesEmptyList(t *testing.T) {
	store := NewMemory()
	require.NoError(t, SaveCart(store, nil))

	raw, err := store.Get(KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(raw))
	assert.Empty(t, LoadCart(store))
}
