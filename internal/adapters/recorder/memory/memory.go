package memory

import (
	"context"
	"fmt"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/port"
	"sort"
	"sync"
	"time"
)

// Recorder keeps the last storage key per role in process memory
type Recorder struct {
	mu      sync.RWMutex
	entries map[domain.AssetRole]domain.TraceEntry
	now     func() time.Time
}

var _ port.TraceRepository = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		entries: make(map[domain.AssetRole]domain.TraceEntry),
		now:     time.Now,
	}
}

// Record overwrites the entry of role
func (r *Recorder) Record(_ context.Context, role domain.AssetRole, key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", domain.ErrInvalidInputData)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[role] = domain.TraceEntry{
		Role:       role,
		Key:        key,
		RecordedAt: r.now().UTC(),
	}
	return nil
}

func (r *Recorder) FindByRole(_ context.Context, role domain.AssetRole) (*domain.TraceEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[role]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrTraceNotFound, role)
	}
	return &entry, nil
}

// List returns entries ordered by role
func (r *Recorder) List(_ context.Context) ([]domain.TraceEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]domain.TraceEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Role < entries[j].Role })
	return entries, nil
}
