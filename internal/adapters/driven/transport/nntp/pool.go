package nntp

import (
	"context"
	"fmt"
	"sync"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

var _ driven.ConnectionPool = (*Pool)(nil)

// Pool is a bounded, lazily-constructed set of NNTP Transports, per
// spec.md §4.2 and the concurrency model in §5: a mutex-guarded free-list
// plus a capacity semaphore.
type Pool struct {
	factory driven.TransportFactory
	cap     int

	mu       sync.Mutex
	free     []driven.Transport
	outstanding int
	closed   bool
	sem      chan struct{}
}

// NewPool creates a pool of at most size Transports, built from factory.
func NewPool(factory driven.TransportFactory, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		factory: factory,
		cap:     size,
		sem:     make(chan struct{}, size),
	}
}

// Acquire blocks until a free connection is available or the pool's
// capacity allows opening a new one.
func (p *Pool) Acquire(ctx context.Context) (driven.Transport, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.sem
		return nil, fmt.Errorf("%w: pool closed", domain.ErrTransport)
	}
	if len(p.free) > 0 {
		conn := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
		p.outstanding++
		p.mu.Unlock()
		return conn, nil
	}
	p.outstanding++
	p.mu.Unlock()

	conn := p.factory.NewTransport()
	if err := conn.Open(ctx); err != nil {
		p.mu.Lock()
		p.outstanding--
		p.mu.Unlock()
		<-p.sem
		return nil, err
	}
	return conn, nil
}

// Release returns a healthy connection to the free list. It remains open
// and retains its last-selected group.
func (p *Pool) Release(t driven.Transport) {
	p.mu.Lock()
	p.outstanding--
	if p.closed {
		p.mu.Unlock()
		t.Close()
		<-p.sem
		return
	}
	p.free = append(p.free, t)
	p.mu.Unlock()
	<-p.sem
}

// Discard drops a connection that failed during use; a replacement is
// constructed on the next Acquire.
func (p *Pool) Discard(t driven.Transport) {
	p.mu.Lock()
	p.outstanding--
	p.mu.Unlock()
	t.Close()
	<-p.sem
}

// Close closes all idle connections. Leased connections close as they are
// released or discarded; no new leases are granted afterward.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	idle := p.free
	p.free = nil
	p.mu.Unlock()

	for _, conn := range idle {
		conn.Close()
	}
	return nil
}
