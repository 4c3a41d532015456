package status

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTracker(t *testing.T) {
	tracker := NewMemoryTracker()
	ctx := context.Background()

	_, err := tracker.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)

	require.NoError(t, tracker.Set(ctx, Run{ID: "run-1", Shop: "shop.myshopify.com", State: StatePending}))
	require.NoError(t, tracker.Set(ctx, Run{ID: "run-1", Shop: "shop.myshopify.com", State: StateFailed, Stage: "upload_file", RetryCount: 3}))

	run, err := tracker.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, run.State)
	assert.Equal(t, "upload_file", run.Stage)
	assert.Equal(t, 3, run.RetryCount)
	assert.False(t, run.UpdatedAt.IsZero())
}

func TestRedisHashEncoding(t *testing.T) {
	updated := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	run := Run{
		ID:         "run-1",
		Shop:       "shop.myshopify.com",
		State:      StateFailed,
		Stage:      "push_import",
		RetryCount: 2,
		Error:      "boom",
		UpdatedAt:  updated,
	}

	fields := make(map[string]string)
	for k, v := range toHash(run) {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case int:
			fields[k] = fmt.Sprint(val)
		}
	}

	assert.Equal(t, &run, fromHash("run-1", fields))
}
