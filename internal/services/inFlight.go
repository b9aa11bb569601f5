package services

import "sync"

// InFlightRegistry tracks which browser sessions have a login request outstanding.
type InFlightRegistry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInFlightRegistry() *InFlightRegistry {
	return &InFlightRegistry{active: map[string]struct{}{}}
}

// Acquire marks id as busy. It returns false if id was already busy.
func (r *InFlightRegistry) Acquire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[id]; ok {
		return false
	}
	r.active[id] = struct{}{}
	return true
}

func (r *InFlightRegistry) Release(id string) {
	r.mu.Lock()
	delete(r.active, id)
	r.mu.Unlock()
}

func (r *InFlightRegistry) Busy(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[id]
	return ok
}
