package ratelimiter

import "sync"

// Registry maps public model names to their limiters. A model without an
// entry is not limited.
type Registry interface {
	Lookup(model string) (Limiter, bool)
	// Set installs limiter for model. A nil limiter removes the limit.
	Set(model string, limiter Limiter)
}

type mapRegistry struct {
	mu       sync.RWMutex
	limiters map[string]Limiter
}

// NewRegistry returns an in-memory Registry safe for concurrent use.
func NewRegistry() Registry {
	return &mapRegistry{limiters: make(map[string]Limiter)}
}

func (r *mapRegistry) Lookup(model string) (Limiter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.limiters[model]
	return l, ok
}

func (r *mapRegistry) Set(model string, limiter Limiter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limiter == nil {
		delete(r.limiters, model)
		return
	}
	r.limiters[model] = limiter
}
