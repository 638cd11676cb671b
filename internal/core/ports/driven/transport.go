package driven

import "context"

// GroupInfo is the result of selecting a newsgroup on an NNTP session.
type GroupInfo struct {
	EstimatedCount uint64
	Low            uint64
	High           uint64
}

// Transport is a single NNTP session: TLS connect, authenticate, select a
// group, and stream XOVER ranges. One Transport is never shared between
// concurrent callers.
type Transport interface {
	// Open establishes the connection and authenticates.
	// Fails with domain.ErrAuth on 481/482/502, domain.ErrTransport on
	// socket/TLS faults.
	Open(ctx context.Context) error

	// SelectGroup sends GROUP, caching the current group so a redundant
	// SelectGroup for the same name is a no-op.
	SelectGroup(ctx context.Context, group string) (GroupInfo, error)

	// XOver sends "XOVER low-high" and returns the raw overview lines from
	// the dot-terminated response, with dot-unstuffing already applied.
	// Fails with domain.ErrNoSuchRange on 423, domain.ErrTransport otherwise.
	XOver(ctx context.Context, low, high uint64) ([]string, error)

	// Close sends QUIT and closes the socket.
	Close() error
}

// TransportFactory constructs a fresh Transport bound to one configured
// NNTP endpoint, used by the ConnectionPool for lazy construction.
type TransportFactory interface {
	NewTransport() Transport
}
