package material

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateName is returned by Add when a live material already uses
// the name.
var ErrDuplicateName = errors.New("material: duplicate name")

// Handle references a material in a Library. The zero Handle is invalid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

// String implements fmt.Stringer.
func (h Handle) String() string {
	if h.IsZero() {
		return "material(none)"
	}
	return fmt.Sprintf("material(%d#%d)", h.index, h.gen)
}

type slot struct {
	gen uint32
	mat *Material
}

// Library is an arena of materials addressed by Handle. Released slots are
// reused with a new generation, so stale handles resolve to nil.
//
// Library is safe for concurrent use.
type Library struct {
	mu     sync.RWMutex
	slots  []slot
	free   []uint32
	byName map[string]Handle
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{byName: make(map[string]Handle)}
}

// Create adds a new material and returns its handle. An existing material
// with the same name is returned instead of creating a second one.
func (l *Library) Create(name string, t Type) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.byName[name]; ok {
		return h
	}
	return l.insertLocked(New(name, t))
}

// Add stores m and returns its handle.
func (l *Library) Add(m *Material) (Handle, error) {
	if m == nil {
		return Handle{}, errors.New("material: nil material")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byName[m.Name]; ok {
		return Handle{}, fmt.Errorf("%w: %q", ErrDuplicateName, m.Name)
	}
	return l.insertLocked(m), nil
}

func (l *Library) insertLocked(m *Material) Handle {
	var idx uint32
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		idx = uint32(len(l.slots)) //nolint:gosec // arena size fits uint32
		l.slots = append(l.slots, slot{})
	}
	s := &l.slots[idx]
	s.gen++
	s.mat = m
	h := Handle{index: idx, gen: s.gen}
	l.byName[m.Name] = h
	return h
}

// Get resolves h. It returns nil for the zero handle and for handles whose
// material has been released.
func (l *Library) Get(h Handle) *Material {
	if h.IsZero() {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if int(h.index) >= len(l.slots) {
		return nil
	}
	s := l.slots[h.index]
	if s.gen != h.gen {
		return nil
	}
	return s.mat
}

// Lookup returns the handle of the named material.
func (l *Library) Lookup(name string) (Handle, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	h, ok := l.byName[name]
	return h, ok
}

// Release frees the slot of h. It reports whether h was live.
func (l *Library) Release(h Handle) bool {
	if h.IsZero() {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if int(h.index) >= len(l.slots) {
		return false
	}
	s := &l.slots[h.index]
	if s.gen != h.gen || s.mat == nil {
		return false
	}
	delete(l.byName, s.mat.Name)
	s.mat = nil
	// Bump the generation so h and any copies of it stop resolving.
	s.gen++
	l.free = append(l.free, h.index)
	return true
}

// Len returns the number of live materials.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byName)
}

// Each calls fn for every live material in slot order.
func (l *Library) Each(fn func(Handle, *Material)) {
	l.mu.RLock()
	type entry struct {
		h Handle
		m *Material
	}
	live := make([]entry, 0, len(l.byName))
	for i, s := range l.slots {
		if s.mat != nil {
			live = append(live, entry{Handle{index: uint32(i), gen: s.gen}, s.mat}) //nolint:gosec // arena size fits uint32
		}
	}
	l.mu.RUnlock()

	for _, e := range live {
		fn(e.h, e.m)
	}
}
