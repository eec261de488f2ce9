package thumbnail

import "sync"

// Registry records the URL each target is currently waiting for.
// A target has at most one pending URL; a new request overwrites the old one.
type Registry[T comparable] struct {
	mu      sync.Mutex
	pending map[T]string
}

// NewRegistry creates an empty registry.
func NewRegistry[T comparable]() *Registry[T] {
	return &Registry[T]{pending: make(map[T]string)}
}

// Set records url as the pending request for target, replacing any previous one.
func (r *Registry[T]) Set(target T, url string) {
	r.mu.Lock()
	r.pending[target] = url
	r.mu.Unlock()
}

// Get returns the pending URL for target.
func (r *Registry[T]) Get(target T) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	url, ok := r.pending[target]
	return url, ok
}

// Resolve removes the entry for target only if it still points at url.
// It reports whether the entry matched; false means the request went stale.
func (r *Registry[T]) Resolve(target T, url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.pending[target]; !ok || current != url {
		return false
	}
	delete(r.pending, target)
	return true
}

// Remove drops any pending entry for target.
func (r *Registry[T]) Remove(target T) {
	r.mu.Lock()
	delete(r.pending, target)
	r.mu.Unlock()
}

// Clear drops every pending entry.
func (r *Registry[T]) Clear() {
	r.mu.Lock()
	r.pending = make(map[T]string)
	r.mu.Unlock()
}

// Len returns the number of pending targets.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
