package resolution

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// claimTTL bounds how long a claim marker lives. Long enough to outlast any
// realistic race between the two completion paths, short enough that redis
// does not accumulate a row per order forever.
const claimTTL = 24 * time.Hour

type redisStore struct {
	client      *redis.Client
	serviceName string
}

// NewRedisStore returns a Store backed by redis SETNX, for deployments where
// the approval listener and the checkout flow are separate processes.
func NewRedisStore(addr, serviceName string) Store {
	return &redisStore{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

func (r *redisStore) key(orderID string) string {
	return fmt.Sprintf("%s:resolved:%s", r.serviceName, orderID)
}

func (r *redisStore) Claim(ctx context.Context, orderID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(orderID), "1", claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("resolution: claim %s: %w", orderID, err)
	}
	return ok, nil
}

func (r *redisStore) Resolved(ctx context.Context, orderID string) (bool, error) {
	_, err := r.client.Get(ctx, r.key(orderID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolution: lookup %s: %w", orderID, err)
	}
	return true, nil
}
