package login

import (
	"context"
	"net/url"
	"sync"
)

// Registry holds the login manager whose attempt is currently active, so the
// host's URL-handling delegate can route inbound URLs with a single call.
// It is constructed explicitly and injected into managers rather than living
// as a package global; hosts create one at app start and share it.
type Registry struct {
	mu     sync.Mutex
	active *LoginManager
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Activate publishes m as the active login manager, replacing any previous
// one.
func (r *Registry) Activate(m *LoginManager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = m
}

// Deactivate clears m from the registry if it is still the active manager.
func (r *Registry) Deactivate(m *LoginManager) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == m {
		r.active = nil
	}
}

// Active returns the active login manager, or nil.
func (r *Registry) Active() *LoginManager {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// HandleOpenURL routes an inbound URL to the active manager. It returns false
// when no manager is active or the manager declines the URL.
func (r *Registry) HandleOpenURL(ctx context.Context, u *url.URL, sourceApplication string, annotation any) bool {
	m := r.Active()
	if m == nil {
		return false
	}
	return m.HandleOpenURL(ctx, u, sourceApplication, annotation)
}
