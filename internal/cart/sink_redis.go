package cart

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
)

type redisStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CartKey(storageKey string) string
}

// RedisSink stores each cart document as a JSON string. A positive ttl is refreshed on every
// save so idle carts expire.
type RedisSink struct {
	store redisStore
	ttl   time.Duration
}

func NewRedisSink(store redisStore, ttl time.Duration) (*RedisSink, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisSink{store: store, ttl: ttl}, nil
}

func (r *RedisSink) Load(ctx context.Context, key string) (State, bool, error) {
	raw, err := r.store.Get(ctx, r.store.CartKey(key))
	if err != nil {
		if redisclient.IsNil(err) {
			return State{Items: []LineItem{}}, false, nil
		}
		return State{}, false, fmt.Errorf("load cart %s: %w", key, err)
	}
	state, err := Decode([]byte(raw))
	if err != nil {
		return State{}, false, err
	}
	return state, true, nil
}

func (r *RedisSink) Save(ctx context.Context, key string, state State) error {
	payload, err := Encode(state)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.store.CartKey(key), string(payload), r.ttl); err != nil {
		return fmt.Errorf("save cart %s: %w", key, err)
	}
	return nil
}
