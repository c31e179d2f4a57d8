package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/eventcart/internal/port"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "eventcart:cart:"

type redisCartSlot struct {
	client  redis.Cmdable
	ownerID string
	ttl     time.Duration
}

// NewRedisCartSlot keeps ownerID's cart under a single key. A positive ttl
// expires an untouched cart; every write renews it.
func NewRedisCartSlot(client redis.Cmdable, ownerID string, ttl time.Duration) port.CartSlot {
	return &redisCartSlot{
		client:  client,
		ownerID: ownerID,
		ttl:     ttl,
	}
}

func (r *redisCartSlot) ReadCartBlob(ctx context.Context) ([]byte, bool, error) {
	if r.ownerID == "" {
		return nil, false, fmt.Errorf("ownerID is empty")
	}

	blob, err := r.client.Get(ctx, r.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("client.Get: %w", err)
	}

	return blob, true, nil
}

func (r *redisCartSlot) WriteCartBlob(ctx context.Context, blob []byte) error {
	if r.ownerID == "" {
		return fmt.Errorf("ownerID is empty")
	}

	if err := r.client.Set(ctx, r.key(), blob, r.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (r *redisCartSlot) key() string {
	return redisKeyPrefix + r.ownerID
}
