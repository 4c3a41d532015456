package status

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State string

const (
	StatePending   State = "PENDING"
	StateExporting State = "EXPORTING"
	StateUploading State = "UPLOADING"
	StateImporting State = "IMPORTING"
	StateNotified  State = "NOTIFIED"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)

var ErrRunNotFound = errors.New("export run not found")

// Run is the last known state of one export pipeline run.
type Run struct {
	ID         string    `json:"id"`
	Shop       string    `json:"shop"`
	State      State     `json:"state"`
	Stage      string    `json:"stage,omitempty"`
	RetryCount int       `json:"retry_count"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Tracker records pipeline progress. Updates overwrite the previous state of
// the run.
type Tracker interface {
	Set(ctx context.Context, run Run) error
	Get(ctx context.Context, runID string) (*Run, error)
}

type MemoryTracker struct {
	mu   sync.RWMutex
	runs map[string]Run
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{runs: make(map[string]Run)}
}

func (m *MemoryTracker) Set(_ context.Context, run Run) error {
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *MemoryTracker) Get(_ context.Context, runID string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	return &run, nil
}
