// Package gpubuffer maps buffer descriptions to backend buffers.
//
// A Manager holds at most one live backend buffer per description string.
// Requesting a description again returns the existing buffer without
// calling the backend. Creation failures are never cached, so the next
// request for the same description retries.
package gpubuffer

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/geometry"
)

// Manager errors.
var (
	// ErrNilImpl is returned when a Manager has no backend implementation.
	ErrNilImpl = errors.New("gpubuffer: nil implementation")

	// ErrEmptyDesc is returned for an empty description.
	ErrEmptyDesc = errors.New("gpubuffer: empty description")

	// ErrNilBuffer is returned when a nil buffer is passed.
	ErrNilBuffer = errors.New("gpubuffer: nil buffer")

	// ErrCreateFailed wraps backend creation failures.
	ErrCreateFailed = errors.New("gpubuffer: create failed")
)

// Impl is the backend plug-in that creates and mutates buffers.
// Every backend.Backend satisfies Impl.
type Impl = backend.BufferBackend

// Buffer is a registered backend buffer.
type Buffer struct {
	Desc   string
	Handle backend.BufferID
	Size   int
	Type   geometry.BufferType
}

// Stats reports manager activity.
type Stats struct {
	Live     int
	Hits     uint64
	Misses   uint64
	Failures uint64
	Released uint64
}

// Manager is a deduplicating registry of backend buffers keyed by
// description.
//
// Manager is safe for concurrent use.
type Manager struct {
	impl Impl

	mu      sync.Mutex
	buffers map[string]*Buffer

	hits     atomic.Uint64
	misses   atomic.Uint64
	failures atomic.Uint64
	released atomic.Uint64
}

// NewManager returns a manager that creates buffers through impl.
func NewManager(impl Impl) *Manager {
	return &Manager{
		impl:    impl,
		buffers: make(map[string]*Buffer),
	}
}

// CreateBuffer returns the buffer registered under desc, creating it from
// data when none exists. data may be nil for an empty buffer.
//
// When the backend fails, CreateBuffer returns nil and an error wrapping
// ErrCreateFailed; nothing is registered.
func (m *Manager) CreateBuffer(desc string, data *geometry.BufferData) (*Buffer, error) {
	if m.impl == nil {
		return nil, ErrNilImpl
	}
	if desc == "" {
		return nil, ErrEmptyDesc
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if buf, ok := m.buffers[desc]; ok {
		m.hits.Add(1)
		return buf, nil
	}
	m.misses.Add(1)

	bd := backend.BufferDesc{Label: desc}
	if data != nil {
		bd.Type = data.Type
		bd.Access = data.Access
		bd.Data = data.Data
	}
	h, err := m.impl.CreateBuffer(bd)
	if err != nil || h == backend.InvalidID {
		m.failures.Add(1)
		if err == nil {
			err = errors.New("backend returned an invalid handle")
		}
		g3d.Logger().Warn("gpubuffer: create failed", "desc", desc, "err", err)
		return nil, fmt.Errorf("%w: %q: %w", ErrCreateFailed, desc, err)
	}

	buf := &Buffer{Desc: desc, Handle: h, Size: data.Size(), Type: bd.Type}
	m.buffers[desc] = buf
	g3d.Logger().Debug("gpubuffer: created", "desc", desc, "handle", h, "size", buf.Size)
	return buf, nil
}

// BufferByDesc returns the buffer registered under desc.
func (m *Manager) BufferByDesc(desc string) (*Buffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.buffers[desc]
	return buf, ok
}

// UpdateBuffer overwrites the contents of buf.
func (m *Manager) UpdateBuffer(buf *Buffer, data []byte) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if m.impl == nil {
		return ErrNilImpl
	}
	if err := m.impl.UpdateBuffer(buf.Handle, data); err != nil {
		return fmt.Errorf("gpubuffer: update %q: %w", buf.Desc, err)
	}
	m.mu.Lock()
	buf.Size = len(data)
	m.mu.Unlock()
	return nil
}

// AppendToBuffer grows buf by data.
func (m *Manager) AppendToBuffer(buf *Buffer, data []byte) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if m.impl == nil {
		return ErrNilImpl
	}
	if err := m.impl.AppendToBuffer(buf.Handle, data); err != nil {
		return fmt.Errorf("gpubuffer: append %q: %w", buf.Desc, err)
	}
	m.mu.Lock()
	buf.Size += len(data)
	m.mu.Unlock()
	return nil
}

// ReleaseBuffer destroys buf and removes its registry entry, so the next
// CreateBuffer with the same description creates a new buffer.
func (m *Manager) ReleaseBuffer(buf *Buffer) {
	if buf == nil || m.impl == nil {
		return
	}
	m.mu.Lock()
	if cur, ok := m.buffers[buf.Desc]; ok && cur == buf {
		delete(m.buffers, buf.Desc)
	}
	m.mu.Unlock()

	m.impl.ReleaseBuffer(buf.Handle)
	m.released.Add(1)
}

// ReleaseAll destroys every registered buffer.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	bufs := make([]*Buffer, 0, len(m.buffers))
	for _, b := range m.buffers {
		bufs = append(bufs, b)
	}
	m.buffers = make(map[string]*Buffer)
	m.mu.Unlock()

	if m.impl == nil {
		return
	}
	for _, b := range bufs {
		m.impl.ReleaseBuffer(b.Handle)
		m.released.Add(1)
	}
}

// Len returns the number of registered buffers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers)
}

// Stats returns a snapshot of manager activity.
func (m *Manager) Stats() Stats {
	return Stats{
		Live:     m.Len(),
		Hits:     m.hits.Load(),
		Misses:   m.misses.Load(),
		Failures: m.failures.Load(),
		Released: m.released.Load(),
	}
}
