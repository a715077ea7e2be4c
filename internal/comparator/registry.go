package comparator

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultWorkspaceTTL is how long an idle workspace is kept.
const DefaultWorkspaceTTL = 2 * time.Hour

// Registry holds the workspaces of all visitors.
type Registry struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
	known      []string
	ttl        time.Duration
	limit      int
}

// NewRegistry creates an empty registry.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultWorkspaceTTL
	}
	return &Registry{
		workspaces: make(map[string]*Workspace),
		ttl:        ttl,
	}
}

// SetKnownBanks updates the bank catalog of the registry and every workspace.
func (r *Registry) SetKnownBanks(known []string) {
	r.mu.Lock()
	r.known = append([]string(nil), known...)
	list := make([]*Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		list = append(list, ws)
	}
	r.mu.Unlock()

	for _, ws := range list {
		ws.SetKnownBanks(known)
	}
}

// SetLimit caps the number of live workspaces. Zero means unbounded.
func (r *Registry) SetLimit(n int) {
	r.mu.Lock()
	r.limit = n
	r.mu.Unlock()
}

// KnownBanks returns the current catalog ids.
func (r *Registry) KnownBanks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.known...)
}

// Get returns the workspace for id, creating one when id is empty or unknown.
// The returned workspace's ID may differ from id.
func (r *Registry) Get(id string) *Workspace {
	if id != "" {
		r.mu.RLock()
		ws, ok := r.workspaces[id]
		r.mu.RUnlock()
		if ok {
			ws.Touch()
			return ws
		}
	}

	r.mu.Lock()
	if ws, ok := r.workspaces[id]; ok {
		r.mu.Unlock()
		return ws
	}
	if id == "" {
		id = uuid.New().String()
	}
	var evicted *Workspace
	if r.limit > 0 && len(r.workspaces) >= r.limit {
		evicted = r.evictLocked()
	}
	ws := NewWorkspace(id, r.known)
	r.workspaces[id] = ws
	r.mu.Unlock()

	if evicted != nil {
		evicted.Cancel()
	}
	return ws
}

// evictLocked removes the workspace idle for the longest time.
func (r *Registry) evictLocked() *Workspace {
	var oldest *Workspace
	for _, ws := range r.workspaces {
		if oldest == nil || ws.IdleSince().Before(oldest.IdleSince()) {
			oldest = ws
		}
	}
	if oldest != nil {
		delete(r.workspaces, oldest.ID)
	}
	return oldest
}

// Lookup returns an existing workspace without creating one.
func (r *Registry) Lookup(id string) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.workspaces[id]
	if ok {
		ws.Touch()
	}
	return ws, ok
}

// Drop removes a workspace and aborts its in-flight comparison.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.mu.Unlock()
	if ok {
		ws.Cancel()
	}
}

// Sweep drops the workspaces idle for longer than the TTL and returns how
// many were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*Workspace
	for id, ws := range r.workspaces {
		if now.Sub(ws.IdleSince()) > r.ttl {
			expired = append(expired, ws)
			delete(r.workspaces, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range expired {
		ws.Cancel()
	}
	return len(expired)
}

// Len returns the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}
