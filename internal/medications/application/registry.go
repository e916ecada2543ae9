package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/nextdose/internal/medications/domain"
)

// Registry guards a domain.Scheduler shared by concurrent callers such as the
// MCP server. Writers hold the lock across the repository append and the
// in-memory append so both observe the same order.
type Registry struct {
	mu        sync.RWMutex
	scheduler *domain.Scheduler
}

// NewRegistry wraps scheduler. A nil scheduler starts empty.
func NewRegistry(scheduler *domain.Scheduler) *Registry {
	if scheduler == nil {
		scheduler = domain.NewScheduler(nil)
	}
	return &Registry{scheduler: scheduler}
}

// LoadRegistry seeds a registry from reader.
func LoadRegistry(ctx context.Context, reader domain.Reader) (*Registry, error) {
	records, err := reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}
	return NewRegistry(domain.NewScheduler(records)), nil
}

// Update runs fn with exclusive access to the scheduler.
func (r *Registry) Update(fn func(s *domain.Scheduler) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.scheduler)
}

// View runs fn with shared access. fn must not mutate the scheduler.
func (r *Registry) View(fn func(s *domain.Scheduler) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fn(r.scheduler)
}
