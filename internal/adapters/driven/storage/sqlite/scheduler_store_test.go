package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
)

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	store := newTestStore(t).SchedulerStore()
	ctx := context.Background()

	task := &domain.ScheduledTask{
		ID:       domain.TaskID("alt.test"),
		Name:     "fetch alt.test",
		Group:    "alt.test",
		Interval: time.Hour,
		Enabled:  true,
		NextRun:  time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, store.SaveTask(ctx, task))

	got, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.Group, got.Group)
	assert.Equal(t, task.Interval, got.Interval)
	assert.True(t, got.NextRun.Equal(task.NextRun))
}

func TestSchedulerStore_GetTask_NotFoundReturnsNilNoError(t *testing.T) {
	store := newTestStore(t).SchedulerStore()
	got, err := store.GetTask(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_SaveTask_UpdatesOnConflict(t *testing.T) {
	store := newTestStore(t).SchedulerStore()
	ctx := context.Background()

	task := &domain.ScheduledTask{ID: "t1", Name: "x", Group: "alt.test", Interval: time.Minute, Enabled: true}
	require.NoError(t, store.SaveTask(ctx, task))

	task.Enabled = false
	task.LastError = "boom"
	require.NoError(t, store.SaveTask(ctx, task))

	got, err := store.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.Equal(t, "boom", got.LastError)
}

func TestSchedulerStore_ListTasks(t *testing.T) {
	store := newTestStore(t).SchedulerStore()
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "t1", Group: "a"}))
	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "t2", Group: "b"}))

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestSchedulerStore_DeleteTask(t *testing.T) {
	store := newTestStore(t).SchedulerStore()
	ctx := context.Background()

	require.NoError(t, store.SaveTask(ctx, &domain.ScheduledTask{ID: "t1", Group: "a"}))
	require.NoError(t, store.DeleteTask(ctx, "t1"))

	got, err := store.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchedulerStore_RecordAndGetTaskHistory(t *testing.T) {
	store := newTestStore(t).SchedulerStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
			TaskID:         "t1",
			StartedAt:      time.Now().Add(time.Duration(i) * time.Minute),
			EndedAt:        time.Now().Add(time.Duration(i) * time.Minute).Add(time.Second),
			Success:        i%2 == 0,
			ItemsProcessed: i,
		}))
	}

	history, err := store.GetTaskHistory(ctx, "t1", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].StartedAt.After(history[1].StartedAt) || history[0].StartedAt.Equal(history[1].StartedAt))
}

func TestSchedulerStore_PruneHistory_KeepsMostRecentPerTask(t *testing.T) {
	store := newTestStore(t).SchedulerStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordResult(ctx, &domain.TaskResult{
			TaskID:    "t1",
			StartedAt: time.Now().Add(time.Duration(i) * time.Minute),
			EndedAt:   time.Now().Add(time.Duration(i) * time.Minute),
			Success:   true,
		}))
	}

	require.NoError(t, store.PruneHistory(ctx, 2))

	history, err := store.GetTaskHistory(ctx, "t1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
