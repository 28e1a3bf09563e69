package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates session affinity across replicas: no two
// workers may process turns for the same session concurrently.
type DistributedLocker interface {
	// Lock blocks until the lock for the key is acquired, the context is
	// canceled, or the TTL elapses (implementation specific). The returned
	// UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
