package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driving"
)

// Scheduler runs recurring per-group fetches on a 1-minute ticker.
// It is a pure core service with no external control API beyond Start/Stop.
type Scheduler struct {
	configMu sync.RWMutex
	config   domain.SchedulerConfig

	store driven.SchedulerStore
	orch  driving.FetchOrchestrator

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	orch driving.FetchOrchestrator,
) *Scheduler {
	return &Scheduler{
		config: config,
		store:  store,
		orch:   orch,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		log.Printf("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Reconfigure swaps in a new SchedulerConfig while the scheduler is
// running, for config-file hot reload, and immediately registers any
// newly enabled group so it is picked up on the next tick without a
// restart.
func (s *Scheduler) Reconfigure(ctx context.Context, cfg domain.SchedulerConfig) error {
	s.configMu.Lock()
	s.config = cfg
	s.configMu.Unlock()

	return s.initialiseTasks(ctx)
}

func (s *Scheduler) currentConfig() domain.SchedulerConfig {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.config
}

// Stop gracefully shuts down the scheduler, waiting for in-flight fetches.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks ensures every configured group has a ScheduledTask row.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	config := s.currentConfig()
	if !config.Enabled {
		return nil
	}
	for group, cfg := range config.TaskConfigs {
		if !cfg.Enabled {
			continue
		}
		if err := s.ensureTask(ctx, domain.TaskID(group), group, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, group string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     "fetch " + group,
			Group:    group,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
			NextRun:  time.Now().Add(cfg.Interval),
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Group = group
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		log.Printf("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || task.NextRun.Before(now) || task.NextRun.Equal(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask runs one group's fetch in its own goroutine and records the result.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		itemsProcessed, err := s.runGroupFetch(ctx, task.Group)
		result.ItemsProcessed = itemsProcessed
		result.EndedAt = time.Now()

		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			log.Printf("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}

		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			log.Printf("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}

		if pruneErr := s.store.PruneHistory(ctx, 100); pruneErr != nil {
			log.Printf("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

// runGroupFetch fetches the full current article range for one group.
func (s *Scheduler) runGroupFetch(ctx context.Context, group string) (int, error) {
	if s.orch == nil {
		return 0, nil
	}

	run, err := s.orch.FetchRange(ctx, domain.FetchOptions{
		Group:      group,
		ChunkSize:  defaultScheduledChunkSize,
		MaxWorkers: defaultScheduledWorkers,
		NRetry:     defaultScheduledRetries,
	}, nil)
	if err != nil {
		return 0, err
	}
	return run.Inserted, nil
}

const (
	defaultScheduledChunkSize = 500
	defaultScheduledWorkers   = 4
	defaultScheduledRetries   = 3
)
