package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// StorageKey is the fixed document key. Server-side carts are scoped per owner.
const StorageKey = "cart-storage"

// OwnerKey scopes StorageKey to one cart owner.
func OwnerKey(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return StorageKey
	}
	return StorageKey + ":" + owner
}

// Sink is the durable key-value store a Store persists into.
type Sink interface {
	// Load returns the stored state; found is false when nothing was saved under key.
	Load(ctx context.Context, key string) (state State, found bool, err error)
	Save(ctx context.Context, key string, state State) error
}

// Encode serializes state as {"cartItems": [...]}; an empty cart encodes as [] not null.
func Encode(state State) ([]byte, error) {
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return payload, nil
}

func Decode(payload []byte) (State, error) {
	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return State{}, fmt.Errorf("decode cart: %w", err)
	}
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	return state, nil
}

// MemorySink keeps encoded documents in process memory.
type MemorySink struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemorySink() *MemorySink {
	return &MemorySink{docs: make(map[string][]byte)}
}

func (m *MemorySink) Load(_ context.Context, key string) (State, bool, error) {
	m.mu.RLock()
	payload, ok := m.docs[key]
	m.mu.RUnlock()
	if !ok {
		return State{Items: []LineItem{}}, false, nil
	}
	state, err := Decode(payload)
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (m *MemorySink) Save(_ context.Context, key string, state State) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[key] = payload
	m.mu.Unlock()
	return nil
}

// Raw returns the encoded document saved under key.
func (m *MemorySink) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payload, ok := m.docs[key]
	return payload, ok
}
