// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"sync"

	"github.com/gogpu/g3d"
)

// Backend name constants.
const (
	// BackendHeadless is the name of the recording backend.
	BackendHeadless = "headless"
	// BackendNative is the name of the gogpu/wgpu HAL backend.
	BackendNative = "native"
)

// Factory creates a new, uninitialized backend instance.
type Factory func() Backend

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for backend selection (first that initializes wins).
	backendPriority = []string{BackendNative, BackendHeadless}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in priority order,
// followed by any others.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	seen := make(map[string]bool, len(factories))
	for _, name := range backendPriority {
		if _, ok := factories[name]; ok {
			names = append(names, name)
			seen[name] = true
		}
	}
	for name := range factories {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Get returns a new backend instance by name, or nil if the name is not
// registered.
func Get(name string) Backend {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil
	}
	return factory()
}

// Default returns a new instance of the highest-priority registered backend.
// Returns nil if no backends are registered.
func Default() Backend {
	for _, name := range Available() {
		if b := Get(name); b != nil {
			return b
		}
	}
	return nil
}

// InitDefault initializes the first backend, in priority order, whose Init
// succeeds. Backends that fail to initialize are closed and skipped.
func InitDefault() (Backend, error) {
	var lastErr error
	for _, name := range Available() {
		b := Get(name)
		if b == nil {
			continue
		}
		if err := b.Init(); err != nil {
			g3d.Logger().Warn("backend: init failed, trying next", "backend", name, "err", err)
			b.Close()
			lastErr = err
			continue
		}
		g3d.Logger().Info("backend: selected", "backend", name)
		return b, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, lastErr)
	}
	return nil, ErrBackendNotAvailable
}
