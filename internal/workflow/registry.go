package workflow

import (
	"sync"

	"signage-console/internal/domain"
)

type key struct {
	session  string
	campaign domain.ID
}

// Registry holds one open modal per (session, campaign).
type Registry[T any] struct {
	mu    sync.Mutex
	items map[key]T
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[key]T)}
}

// Put replaces any modal already open for the same campaign.
func (r *Registry[T]) Put(sessionID string, campaignID domain.ID, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key{sessionID, campaignID}] = v
}

func (r *Registry[T]) Get(sessionID string, campaignID domain.ID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[key{sessionID, campaignID}]
	if !ok {
		var zero T
		return zero, ErrWorkflowNotFound
	}
	return v, nil
}

func (r *Registry[T]) Remove(sessionID string, campaignID domain.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, key{sessionID, campaignID})
}

// DropSession closes every modal of a session.
func (r *Registry[T]) DropSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.items {
		if k.session == sessionID {
			delete(r.items, k)
		}
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
