package driven

import "context"

// ConnectionPool is a bounded set of reusable Transport sessions. Acquire
// blocks until a connection is available or the capacity allows a new one
// to be opened; Release returns a healthy connection to the free list, and
// Discard drops one that failed during use so a replacement is opened on the
// next Acquire.
type ConnectionPool interface {
	Acquire(ctx context.Context) (Transport, error)
	Release(t Transport)
	Discard(t Transport)

	// Close closes all idle and leased connections once leases return; no
	// new leases are granted afterward.
	Close() error
}
