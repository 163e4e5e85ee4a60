package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates exclusive work across worker instances.
// Used to keep two workers from indexing the same channel concurrently.
type DistributedLock interface {
	// Acquire attempts to take the named lock. Returns false when another
	// holder has it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release releases the named lock if held by this instance
	Release(ctx context.Context, name string) error

	// Extend renews the TTL of a held lock
	Extend(ctx context.Context, name string, ttl time.Duration) error
}
