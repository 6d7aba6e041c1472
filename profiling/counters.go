// Package profiling provides named performance counters.
//
// A Counters registry maps names to uint64 values. Counters must be
// registered before they can be queried; Add on an unregistered name is
// ignored so hot paths need not check.
//
// A process-wide registry is managed with Create and Destroy and reached
// through Default:
//
//	profiling.Create()
//	defer profiling.Destroy()
//	profiling.Default().Register("draws")
//	profiling.Default().Add("draws", 1)
//	n, ok := profiling.Default().Query("draws")
package profiling

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Counters is a registry of named counters.
//
// Counters is safe for concurrent use.
type Counters struct {
	mu       sync.RWMutex
	counters map[string]uint64
}

// NewCounters returns an empty registry.
func NewCounters() *Counters {
	return &Counters{counters: make(map[string]uint64)}
}

// Register adds a counter starting at zero. It returns false if the name is
// already registered.
func (c *Counters) Register(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.counters[name]; ok {
		return false
	}
	c.counters[name] = 0
	return true
}

// Unregister removes a counter. It returns false if the name is not
// registered.
func (c *Counters) Unregister(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.counters[name]; !ok {
		return false
	}
	delete(c.counters, name)
	return true
}

// Query returns the value of a counter and whether it is registered.
func (c *Counters) Query(name string) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.counters[name]
	return v, ok
}

// Add increments a registered counter by delta.
func (c *Counters) Add(name string, delta uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.counters[name]; ok {
		c.counters[name] = v + delta
	}
}

// Set overwrites a registered counter.
func (c *Counters) Set(name string, value uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.counters[name]; ok {
		c.counters[name] = value
	}
}

// Reset sets every counter to zero. Registrations are kept.
func (c *Counters) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.counters {
		c.counters[name] = 0
	}
}

// Names returns the registered names in sorted order.
func (c *Counters) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.counters))
}

// Snapshot returns a copy of every counter.
func (c *Counters) Snapshot() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.counters)
}

var defaultCounters atomic.Pointer[Counters]

// Create sets up the process-wide registry. It returns false if the
// registry already exists.
func Create() bool {
	return defaultCounters.CompareAndSwap(nil, NewCounters())
}

// Destroy tears down the process-wide registry. It returns false if there
// is none.
func Destroy() bool {
	return defaultCounters.Swap(nil) != nil
}

// Default returns the process-wide registry, or nil before Create.
func Default() *Counters {
	return defaultCounters.Load()
}
