package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Event is delivered to listeners after every transition. Err is set when the new state
// could not be persisted; State is the in-memory state either way.
type Event struct {
	Op    enums.CartOperation
	State State
	Err   error
}

type Listener func(Event)

type Option func(*Store)

// WithRemovalRule selects the RemoveFromCart predicate. Defaults to RemovalExact.
func WithRemovalRule(rule RemovalRule) Option {
	return func(s *Store) {
		if rule != "" {
			s.rule = rule
		}
	}
}

// Store owns one cart state, applies the reducers and writes the full document to its sink
// after each transition. It is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	state State
	sink  Sink
	key   string
	rule  RemovalRule

	listenersMu sync.Mutex
	listeners   []subscription
	nextID      int
}

type subscription struct {
	id int
	fn Listener
}

// NewStore rehydrates the cart saved under key. A nil sink keeps state in memory only.
func NewStore(ctx context.Context, sink Sink, key string, opts ...Option) (*Store, error) {
	if sink == nil {
		sink = NewMemorySink()
	}
	if key == "" {
		key = StorageKey
	}
	s := &Store{sink: sink, key: key, rule: RemovalExact}
	for _, opt := range opts {
		opt(s)
	}

	state, _, err := sink.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("rehydrate cart %s: %w", key, err)
	}
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	s.state = state
	return s, nil
}

func (s *Store) Key() string {
	return s.key
}

// Items returns a copy of the current line items.
func (s *Store) Items() []LineItem {
	return s.Snapshot().Items
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Add(ctx context.Context, item LineItem) error {
	return s.apply(ctx, enums.CartOperationAdd, func(st State) State {
		return Add(st, item)
	})
}

func (s *Store) RemoveOne(ctx context.Context, variantID, storage string) error {
	key := Key{VariantID: variantID, Storage: storage}
	return s.apply(ctx, enums.CartOperationRemoveOne, func(st State) State {
		return RemoveOne(st, key)
	})
}

func (s *Store) RemoveFromCart(ctx context.Context, variantID, storage string) error {
	key := Key{VariantID: variantID, Storage: storage}
	return s.apply(ctx, enums.CartOperationRemove, func(st State) State {
		return Remove(st, key, s.rule)
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.apply(ctx, enums.CartOperationClear, Clear)
}

// Subscribe registers fn for future transitions and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.listenersMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// apply swaps in the reduced state and persists it. The transition stands even when the
// sink fails; the error is returned afterwards.
func (s *Store) apply(ctx context.Context, op enums.CartOperation, reduce func(State) State) error {
	s.mu.Lock()
	next := reduce(s.state)
	s.state = next
	saveErr := s.sink.Save(ctx, s.key, next)
	snapshot := next.Clone()
	s.mu.Unlock()

	if saveErr != nil {
		saveErr = fmt.Errorf("persist cart %s after %s: %w", s.key, op, saveErr)
	}
	s.notify(Event{Op: op, State: snapshot, Err: saveErr})
	return saveErr
}

func (s *Store) notify(evt Event) {
	s.listenersMu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.listenersMu.Unlock()

	for _, sub := range subs {
		sub.fn(evt)
	}
}
