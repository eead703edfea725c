package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scopeLeasePrefix = "unischedule:lease:"

// releaseLease deletes the key only while it still holds the caller's token.
var releaseLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ScopeLeaseRepository keeps per-scope generation leases in Redis so runs on
// different API instances exclude each other.
type ScopeLeaseRepository struct {
	client *redis.Client
}

// NewScopeLeaseRepository constructs the repository.
func NewScopeLeaseRepository(client *redis.Client) *ScopeLeaseRepository {
	return &ScopeLeaseRepository{client: client}
}

// Acquire sets the lease when absent. It reports false while another holder owns it.
func (r *ScopeLeaseRepository) Acquire(ctx context.Context, scope, token string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, scopeLeasePrefix+scope, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire scope lease %s: %w", scope, err)
	}
	return ok, nil
}

// Release drops the lease if token still owns it.
func (r *ScopeLeaseRepository) Release(ctx context.Context, scope, token string) error {
	if err := releaseLease.Run(ctx, r.client, []string{scopeLeasePrefix + scope}, token).Err(); err != nil {
		return fmt.Errorf("release scope lease %s: %w", scope, err)
	}
	return nil
}
