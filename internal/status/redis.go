package status

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const runTTL = 7 * 24 * time.Hour

type RedisTracker struct {
	client *redis.Client
}

func NewRedisTracker(ctx context.Context, url string) (*RedisTracker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTracker{client: client}, nil
}

func runKey(runID string) string {
	return "ffbridge:run:" + runID
}

func (r *RedisTracker) Set(ctx context.Context, run Run) error {
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = time.Now().UTC()
	}

	key := runKey(run.ID)
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, toHash(run))
	pipe.Expire(ctx, key, runTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisTracker) Get(ctx context.Context, runID string) (*Run, error) {
	fields, err := r.client.HGetAll(ctx, runKey(runID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrRunNotFound
	}
	return fromHash(runID, fields), nil
}

func (r *RedisTracker) Close() error {
	return r.client.Close()
}

func toHash(run Run) map[string]interface{} {
	return map[string]interface{}{
		"shop":        run.Shop,
		"state":       string(run.State),
		"stage":       run.Stage,
		"retry_count": run.RetryCount,
		"error":       run.Error,
		"updated_at":  run.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func fromHash(runID string, fields map[string]string) *Run {
	run := &Run{
		ID:    runID,
		Shop:  fields["shop"],
		State: State(fields["state"]),
		Stage: fields["stage"],
		Error: fields["error"],
	}
	run.RetryCount, _ = strconv.Atoi(fields["retry_count"])
	run.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return run
}
