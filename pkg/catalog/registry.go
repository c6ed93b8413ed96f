package catalog

import (
	"slices"
	"sync"

	"github.com/mash-protocol/zeroconf-go/pkg/discovery"
)

// Registry is the current set of known services keyed by name.
// Stored descriptors are private copies; callers only ever see clones.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*discovery.ServiceDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]*discovery.ServiceDescriptor),
	}
}

// Reset discards all entries.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = make(map[string]*discovery.ServiceDescriptor)
}

// Put inserts or overwrites the entry for svc.Name.
func (r *Registry) Put(svc *discovery.ServiceDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.Name] = svc.Clone()
}

// Delete removes the entry for name and reports whether one existed.
func (r *Registry) Delete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.services[name]
	delete(r.services, name)
	return ok
}

// UpdateTXT replaces the TXT record of a resolved entry, leaving every
// other field untouched. It returns a copy of the merged descriptor, or
// false if there is no resolved entry for name.
func (r *Registry) UpdateTXT(name string, txt discovery.TXTRecordMap) (*discovery.ServiceDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.services[name]
	if !ok || !existing.IsResolved() {
		return nil, false
	}
	existing.TXT = txt.Clone()
	return existing.Clone(), true
}

// Get returns a copy of the entry for name.
func (r *Registry) Get(name string) (discovery.ServiceDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	svc, ok := r.services[name]
	if !ok {
		return discovery.ServiceDescriptor{}, false
	}
	return *svc.Clone(), true
}

// Snapshot returns a deep copy of all entries.
func (r *Registry) Snapshot() map[string]discovery.ServiceDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]discovery.ServiceDescriptor, len(r.services))
	for name, svc := range r.services {
		out[name] = *svc.Clone()
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// Names returns the entry names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
