package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

type failingSink struct {
	*MemorySink
	loadErr error
	saveErr error
	saves   int
}

func (f *failingSink) Load(ctx context.Context, key string) (State, bool, error) {
	if f.loadErr != nil {
		return State{}, false, f.loadErr
	}
	return f.MemorySink.Load(ctx, key)
}

func (f *failingSink) Save(ctx context.Context, key string, state State) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemorySink.Save(ctx, key, state)
}

func TestStorePersistsAndRehydrates(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()

	store, err := NewStore(ctx, sink, OwnerKey("guest-1"))
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, phone("v1", "128GB", 2)))
	require.NoError(t, store.Add(ctx, phone("v2", "256GB", 1)))

	reopened, err := NewStore(ctx, sink, OwnerKey("guest-1"))
	require.NoError(t, err)
	assert.Equal(t, store.Items(), reopened.Items())

	other, err := NewStore(ctx, sink, OwnerKey("guest-2"))
	require.NoError(t, err)
	assert.Empty(t, other.Items())
}

func TestStoreClearPersistsEmptyDocument(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	store, err := NewStore(ctx, sink, "")
	require.NoError(t, err)
	assert.Equal(t, StorageKey, store.Key())

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Add(ctx, phone("v1", "128GB", 1)))
	}
	require.NoError(t, store.Clear(ctx))

	assert.Empty(t, store.Items())
	raw, ok := sink.Raw(StorageKey)
	require.True(t, ok)
	assert.JSONEq(t, `{"cartItems":[]}`, string(raw))
}

func TestStoreDecrementAndRemove(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, nil, "cart-storage:test")
	require.NoError(t, err)

	require.NoError(t, store.Add(ctx, phone("v1", "128GB", 3)))
	require.NoError(t, store.RemoveOne(ctx, "v1", "128GB"))
	require.Len(t, store.Items(), 1)
	assert.Equal(t, 2, store.Items()[0].Quantity)

	require.NoError(t, store.RemoveFromCart(ctx, "v1", "128GB"))
	assert.Empty(t, store.Items())

	require.NoError(t, store.RemoveOne(ctx, "v1", "128GB"))
	require.NoError(t, store.RemoveFromCart(ctx, "missing", "1TB"))
	assert.Empty(t, store.Items())
}

func TestStoreUsesConfiguredRemovalRule(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, nil, "", WithRemovalRule(RemovalLegacy))
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, phone("v1", "128GB", 1)))
	require.NoError(t, store.Add(ctx, phone("v1", "256GB", 1)))

	require.NoError(t, store.RemoveFromCart(ctx, "v1", "128GB"))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "128GB", items[0].Variant.Storage)
}

func TestStoreAppliesTransitionWhenSinkFails(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	sink := &failingSink{MemorySink: NewMemorySink()}
	store, err := NewStore(ctx, sink, "")
	require.NoError(t, err)

	sink.saveErr = boom
	err = store.Add(ctx, phone("v1", "128GB", 1))
	require.ErrorIs(t, err, boom)
	assert.Len(t, store.Items(), 1, "in-memory state still updated")
	assert.Equal(t, 1, sink.saves)

	sink.saveErr = nil
	require.NoError(t, store.Add(ctx, phone("v1", "128GB", 1)))
	reopened, err := NewStore(ctx, sink, "")
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Items()[0].Quantity)
}

func TestNewStoreFailsWhenRehydrationFails(t *testing.T) {
	sink := &failingSink{MemorySink: NewMemorySink(), loadErr: errors.New("unreachable")}
	_, err := NewStore(context.Background(), sink, "")
	assert.Error(t, err)
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, nil, "")
	require.NoError(t, err)

	var events []Event
	unsubscribe := store.Subscribe(func(evt Event) {
		events = append(events, evt)
	})

	require.NoError(t, store.Add(ctx, phone("v1", "128GB", 2)))
	require.NoError(t, store.RemoveOne(ctx, "v1", "128GB"))
	require.NoError(t, store.Clear(ctx))

	require.Len(t, events, 3)
	assert.Equal(t, enums.CartOperationAdd, events[0].Op)
	assert.Equal(t, 2, events[0].State.Items[0].Quantity)
	assert.Equal(t, enums.CartOperationRemoveOne, events[1].Op)
	assert.Equal(t, enums.CartOperationClear, events[2].Op)
	assert.Empty(t, events[2].State.Items)

	unsubscribe()
	unsubscribe()
	require.NoError(t, store.Add(ctx, phone("v1", "128GB", 1)))
	assert.Len(t, events, 3)
}

func TestStoreEventCarriesPersistenceError(t *testing.T) {
	ctx := context.Background()
	sink := &failingSink{MemorySink: NewMemorySink(), saveErr: errors.New("offline")}
	store, err := NewStore(ctx, sink, "")
	require.NoError(t, err)

	var got Event
	store.Subscribe(func(evt Event) { got = evt })
	_ = store.Clear(ctx)

	assert.Error(t, got.Err)
	assert.Equal(t, enums.CartOperationClear, got.Op)
}

func TestStoreSnapshotIsDetached(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, nil, "")
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, phone("v1", "128GB", 1)))

	items := store.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, store.Items()[0].Quantity)
}

func TestStoreConcurrentAddsMerge(t *testing.T) {
	ctx := context.Background()
	sink := NewMemorySink()
	store, err := NewStore(ctx, sink, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Add(ctx, phone("v1", "128GB", 1))
		}()
	}
	wg.Wait()

	require.Len(t, store.Items(), 1)
	assert.Equal(t, 50, store.Items()[0].Quantity)

	reopened, err := NewStore(ctx, sink, "")
	require.NoError(t, err)
	assert.Equal(t, 50, reopened.Items()[0].Quantity)
}

func TestCodecRoundTrip(t *testing.T) {
	state := Add(State{}, phone("v1", "128GB", 2))
	state = Add(state, phone("v2", "256GB", 5))

	payload, err := Encode(state)
	require.NoError(t, err)

	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal(payload, &doc))
	require.Len(t, doc["cartItems"], 2)
	first := doc["cartItems"][0]
	for _, field := range []string{"userId", "productId", "title", "image", "unitPrice", "variant", "quantity"} {
		assert.Contains(t, first, field)
	}

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Len(t, decoded.Items, len(state.Items))
	for i := range state.Items {
		want, got := state.Items[i], decoded.Items[i]
		assert.Equal(t, want.Key(), got.Key())
		assert.Equal(t, want.Quantity, got.Quantity)
		assert.Equal(t, want.Title, got.Title)
		assert.True(t, want.UnitPrice.Equal(got.UnitPrice))
	}
}

func TestDecodeNullItems(t *testing.T) {
	state, err := Decode([]byte(`{"cartItems":null}`))
	require.NoError(t, err)
	assert.NotNil(t, state.Items)

	_, err = Decode([]byte(`{"cartItems":`))
	assert.Error(t, err)

	payload, err := Encode(State{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cartItems":[]}`, string(payload))
}

func TestOwnerKey(t *testing.T) {
	assert.Equal(t, "cart-storage", OwnerKey(" "))
	assert.Equal(t, "cart-storage:user-1", OwnerKey("user-1"))
}
