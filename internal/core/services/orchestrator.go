package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
	"github.com/usenet-tools/nntpidx/internal/logger"
)

// Ensure FetchOrchestrator implements the interface.
var _ driving.FetchOrchestrator = (*FetchOrchestrator)(nil)

const (
	retryBaseDelay   = 500 * time.Millisecond
	retryFactor      = 2
	retryJitterRatio = 0.25
)

// FetchOrchestrator partitions a requested article-number range into fixed
// size chunks, dispatches them across a connection pool, and drains parsed
// rows into the index store through a single writer.
type FetchOrchestrator struct {
	pool    driven.ConnectionPool
	store   driven.IndexStore
	pub     driven.ProgressPublisher
	limiter *rate.Limiter
}

// NewFetchOrchestrator creates an orchestrator backed by a connection pool
// and an index store. pub may be nil to disable progress-event publishing.
func NewFetchOrchestrator(pool driven.ConnectionPool, store driven.IndexStore, pub driven.ProgressPublisher) *FetchOrchestrator {
	return &FetchOrchestrator{pool: pool, store: store, pub: pub}
}

// WithRateLimit caps XOVER requests to maxPerSec across all workers, per
// the fetch config's max_requests_per_sec. maxPerSec <= 0 disables the
// limiter (the default).
func (o *FetchOrchestrator) WithRateLimit(maxPerSec float64) *FetchOrchestrator {
	if maxPerSec > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(maxPerSec), 1)
	}
	return o
}

// chunkJob pairs a chunk with its completed result for writer draining.
type chunkJob struct {
	result domain.ChunkResult
}

// FetchRange implements the Fetch Orchestrator contract from spec.md §4.3
// and the concurrency model from §5: a fixed-size worker pool dispatches
// chunk fetches, a single writer drains completed chunks into the store.
func (o *FetchOrchestrator) FetchRange(ctx context.Context, opts domain.FetchOptions, onProgress driving.ProgressFunc) (domain.FetchRun, error) {
	run := domain.FetchRun{
		ID:         uuid.NewString(),
		Group:      opts.Group,
		Low:        opts.Low,
		High:       opts.High,
		ChunkSize:  opts.ChunkSize,
		MaxWorkers: opts.MaxWorkers,
		StartedAt:  time.Now(),
	}

	if opts.Low == 0 && opts.High == 0 {
		if err := o.resolveGroupRange(ctx, &opts); err != nil {
			run.FinishedAt = time.Now()
			return run, err
		}
		run.Low, run.High = opts.Low, opts.High
	}

	if opts.Low > opts.High {
		run.FinishedAt = time.Now()
		return run, fmt.Errorf("%w: low (%d) must not exceed high (%d)", domain.ErrConfig, opts.Low, opts.High)
	}

	chunks := opts.Chunks()
	if len(chunks) == 0 {
		run.FinishedAt = time.Now()
		return run, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	nRetry := opts.NRetry
	if nRetry < 1 {
		nRetry = 3
	}

	runCtx, abortRun := context.WithCancel(ctx)
	defer abortRun()

	jobsCh := make(chan domain.ChunkRange)
	resultsCh := make(chan chunkJob, maxWorkers)

	cancelled := &atomicBool{}
	fatal := &atomicErr{}

	var workersWG sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		workersWG.Add(1)
		go func() {
			defer workersWG.Done()
			for chunk := range jobsCh {
				result := o.fetchChunk(runCtx, opts.Group, chunk, nRetry, cancelled)
				resultsCh <- chunkJob{result: result}
			}
		}()
	}

	go func() {
		defer close(jobsCh)
		for _, chunk := range chunks {
			select {
			case <-runCtx.Done():
				cancelled.set()
				return
			case jobsCh <- chunk:
			}
		}
	}()

	var writerWG sync.WaitGroup
	writerWG.Add(1)
	var (
		rowsSoFar    int
		chunksDone   int
		chunksFailed []domain.ChunkRange
	)
	go func() {
		defer writerWG.Done()
		for j := range resultsCh {
			chunksDone++
			res := j.result
			run.ParseErrors += res.ParseErrs

			switch {
			case errors.Is(res.Err, domain.ErrAuth):
				chunksFailed = append(chunksFailed, res.Range)
				fatal.setIfAbsent(res.Err)
				cancelled.set()
				abortRun()
			case fatal.get() != nil:
				// A prior chunk already aborted the run; drain without
				// writing so workers don't block sending to resultsCh.
				chunksFailed = append(chunksFailed, res.Range)
			case res.Failed:
				chunksFailed = append(chunksFailed, res.Range)
			case len(res.Rows) > 0:
				upserted, err := o.store.UpsertBatch(ctx, res.Rows)
				if err != nil {
					storeErr := fmt.Errorf("%w: upsert batch for chunk %d-%d: %w", domain.ErrStore, res.Range.Low, res.Range.High, err)
					logger.Warn("fetch: %v", storeErr)
					chunksFailed = append(chunksFailed, res.Range)
					fatal.setIfAbsent(storeErr)
					cancelled.set()
					abortRun()
				} else {
					run.Inserted += upserted.Inserted
					run.Ignored += upserted.Ignored
				}
			}
			rowsSoFar += len(res.Rows)
			if onProgress != nil {
				onProgress(domain.FetchProgress{
					ChunksDone:  chunksDone,
					ChunksTotal: len(chunks),
					RowsSoFar:   rowsSoFar,
				})
			}
		}
	}()

	go func() {
		workersWG.Wait()
		close(resultsCh)
	}()

	writerWG.Wait()

	run.RowsFetched = rowsSoFar
	run.ChunksFailed = chunksFailed
	run.Cancelled = cancelled.get() || ctx.Err() != nil
	run.FinishedAt = time.Now()

	if o.pub != nil {
		if err := o.pub.Publish(ctx, run); err != nil {
			logger.Warn("fetch: progress publish failed: %v", err)
		}
	}

	if err := fatal.get(); err != nil {
		return run, err
	}

	return run, nil
}

// resolveGroupRange fills in opts.Low/High from the group's current article
// range when the caller did not request an explicit range.
func (o *FetchOrchestrator) resolveGroupRange(ctx context.Context, opts *domain.FetchOptions) error {
	conn, err := o.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	info, err := conn.SelectGroup(ctx, opts.Group)
	if err != nil {
		o.pool.Discard(conn)
		return fmt.Errorf("select group %s: %w", opts.Group, err)
	}
	o.pool.Release(conn)
	opts.Low, opts.High = info.Low, info.High
	return nil
}

// fetchChunk acquires a pooled transport, fetches one XOVER range, and
// parses the lines into rows. Retries transport failures with exponential
// jittered backoff; a NoSuchRangeError is non-retryable.
func (o *FetchOrchestrator) fetchChunk(ctx context.Context, group string, chunk domain.ChunkRange, nRetry int, cancelled *atomicBool) domain.ChunkResult {
	result := domain.ChunkResult{Range: chunk}

	for attempt := 1; attempt <= nRetry+1; attempt++ {
		result.Attempts = attempt

		if cancelled.get() || ctx.Err() != nil {
			result.Failed = true
			result.Err = domain.ErrCancelled
			return result
		}

		rows, err := o.fetchChunkOnce(ctx, group, chunk, &result.ParseErrs)
		if err == nil {
			result.Rows = rows
			return result
		}

		if errors.Is(err, domain.ErrNoSuchRange) {
			return result
		}

		if errors.Is(err, domain.ErrAuth) {
			// Authentication failures are fatal for the whole run, not
			// retryable at chunk granularity: the caller (FetchRange's
			// writer) aborts remaining work once it sees this result.
			result.Failed = true
			result.Err = err
			return result
		}

		result.Err = err
		if attempt <= nRetry {
			delay := backoffDelay(attempt)
			logger.Debug("fetch: chunk %d-%d attempt %d failed: %v, retrying in %s", chunk.Low, chunk.High, attempt, err, delay)
			select {
			case <-ctx.Done():
				cancelled.set()
				result.Failed = true
				result.Err = domain.ErrCancelled
				return result
			case <-time.After(delay):
			}
		}
	}

	result.Failed = true
	return result
}

func (o *FetchOrchestrator) fetchChunkOnce(ctx context.Context, group string, chunk domain.ChunkRange, parseErrs *int) ([]domain.OverviewRow, error) {
	conn, err := o.pool.Acquire(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: acquire connection: %w", domain.ErrTransport, err)
	}

	if _, err := conn.SelectGroup(ctx, group); err != nil {
		o.pool.Discard(conn)
		return nil, err
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			o.pool.Release(conn)
			return nil, fmt.Errorf("%w: rate limit wait: %v", domain.ErrCancelled, err)
		}
	}

	lines, err := conn.XOver(ctx, chunk.Low, chunk.High)
	if err != nil {
		o.pool.Discard(conn)
		return nil, err
	}
	o.pool.Release(conn)

	rows := make([]domain.OverviewRow, 0, len(lines))
	for _, line := range lines {
		row, ok := ParseOverviewLine(group, line)
		if !ok {
			*parseErrs++
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// backoffDelay returns the exponential jittered backoff for a given attempt
// number, per spec.md §4.3: base 500ms, factor 2, jitter ±25%.
func backoffDelay(attempt int) time.Duration {
	base := float64(retryBaseDelay) * pow(retryFactor, attempt-1)
	jitter := base * retryJitterRatio * (2*rand.Float64() - 1)
	return time.Duration(base + jitter)
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// atomicBool is a small cancellation flag shared between the dispatcher and
// workers.
type atomicBool struct {
	mu sync.Mutex
	v  bool
}

func (b *atomicBool) set() {
	b.mu.Lock()
	b.v = true
	b.mu.Unlock()
}

func (b *atomicBool) get() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.v
}

// atomicErr latches the first fatal error reported by the writer, shared
// between the writer goroutine and FetchRange's return path.
type atomicErr struct {
	mu  sync.Mutex
	err error
}

func (e *atomicErr) setIfAbsent(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
}

func (e *atomicErr) get() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}
