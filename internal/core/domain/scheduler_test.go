package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskID("alt.binaries.test"): {Group: "alt.binaries.test", Enabled: true, Interval: 30 * time.Minute},
		},
	}

	cfg := config.GetTaskConfig(TaskID("alt.binaries.test"))
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Interval)

	unknown := config.GetTaskConfig("unknown-task")
	assert.False(t, unknown.Enabled)
	assert.Equal(t, time.Duration(0), unknown.Interval)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{Enabled: true, TaskConfigs: nil}

	cfg := config.GetTaskConfig("any-task")
	assert.False(t, cfg.Enabled)
	assert.Equal(t, time.Duration(0), cfg.Interval)
}

func TestTaskID(t *testing.T) {
	assert.Equal(t, "fetch:alt.binaries.test", TaskID("alt.binaries.test"))
}

func TestScheduledTask_Fields(t *testing.T) {
	now := time.Now()
	task := ScheduledTask{
		ID:          "fetch:alt.binaries.test",
		Name:        "alt.binaries.test",
		Group:       "alt.binaries.test",
		Interval:    1 * time.Hour,
		LastRun:     now.Add(-30 * time.Minute),
		NextRun:     now.Add(30 * time.Minute),
		LastError:   "previous error",
		LastSuccess: now.Add(-45 * time.Minute),
		Enabled:     true,
	}

	assert.Equal(t, "fetch:alt.binaries.test", task.ID)
	assert.Equal(t, "alt.binaries.test", task.Group)
	assert.Equal(t, 1*time.Hour, task.Interval)
	assert.Equal(t, "previous error", task.LastError)
	assert.True(t, task.Enabled)
}

func TestTaskResult_Fields(t *testing.T) {
	now := time.Now()
	result := TaskResult{
		TaskID:         "fetch:alt.binaries.test",
		StartedAt:      now.Add(-5 * time.Minute),
		EndedAt:        now,
		Success:        true,
		Error:          "",
		ItemsProcessed: 42,
	}

	assert.Equal(t, "fetch:alt.binaries.test", result.TaskID)
	assert.Equal(t, 42, result.ItemsProcessed)
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
}

func TestTaskResult_Failed(t *testing.T) {
	now := time.Now()
	result := TaskResult{
		TaskID:         "fetch:alt.binaries.test",
		StartedAt:      now.Add(-5 * time.Minute),
		EndedAt:        now,
		Success:        false,
		Error:          "connection timeout",
		ItemsProcessed: 0,
	}

	assert.False(t, result.Success)
	assert.Equal(t, "connection timeout", result.Error)
}

func TestTaskConfig_Fields(t *testing.T) {
	cfg := TaskConfig{
		Group:    "alt.binaries.test",
		Enabled:  true,
		Interval: 30 * time.Minute,
	}

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "alt.binaries.test", cfg.Group)
	assert.Equal(t, 30*time.Minute, cfg.Interval)
}
