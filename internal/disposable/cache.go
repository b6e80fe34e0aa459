// Package disposable holds the process-wide cache of known disposable email
// domains shared by the validation pipeline and the refresh endpoint.
package disposable

import (
	"sync"
	"sync/atomic"
	"time"

	"mailguard/pkg/domain"
)

// Lookuper answers membership queries against the current domain set.
type Lookuper interface {
	// Lookup reports whether the normalized domain is a known disposable domain.
	Lookup(domain string) bool
}

// State is one consistent view of the cache: the active set together with the
// version and time it was installed at.
type State struct {
	// Set is the active domain set. It is never nil.
	Set *domain.DomainSet
	// Version is incremented by every Replace. It is 0 before the first load.
	Version uint64
	// RefreshedAt is when Set was installed. It is zero before the first load.
	RefreshedAt time.Time
}

// Cache owns the current DomainSet. Readers load an immutable State through an
// atomic pointer and never block; writers are serialized by mu so that version
// numbers are assigned in the same order sets are installed.
//
// A Cache must be created with New and is safe for concurrent use.
type Cache struct {
	state atomic.Pointer[State]
	mu    sync.Mutex
	now   func() time.Time
}

var _ Lookuper = (*Cache)(nil)

// New creates a cache holding an empty set at version 0.
func New() *Cache {
	c := &Cache{now: time.Now}
	c.state.Store(&State{Set: domain.EmptyDomainSet()})

	return c
}

// Lookup reports whether domain is a member of the current set.
func (c *Cache) Lookup(domain string) bool {
	return c.state.Load().Set.Contains(domain)
}

// CurrentVersion returns the version of the active set.
func (c *Cache) CurrentVersion() uint64 {
	return c.state.Load().Version
}

// Size returns the number of domains in the active set.
func (c *Cache) Size() int {
	return c.state.Load().Set.Len()
}

// LastRefresh returns when the active set was installed.
func (c *Cache) LastRefresh() time.Time {
	return c.state.Load().RefreshedAt
}

// Snapshot returns the active state. The returned value must not be modified.
func (c *Cache) Snapshot() State {
	return *c.state.Load()
}

// Replace atomically installs set as the active domain set, increments the
// version and returns the version that was active before. Lookups already in
// flight keep using the previous set. A nil set is installed as an empty set.
func (c *Cache) Replace(set *domain.DomainSet) uint64 {
	if set == nil {
		set = domain.EmptyDomainSet()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state.Load()
	c.state.Store(&State{
		Set:         set,
		Version:     prev.Version + 1,
		RefreshedAt: c.now(),
	})

	return prev.Version
}
