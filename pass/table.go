// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pass

import (
	"slices"
	"sync"
)

// Table maps pass ids to passes. Each renderer owns one Table, so
// independent renderers never share pass configuration.
//
// Table is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	passes map[int]*RenderPass
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{passes: make(map[int]*RenderPass)}
}

// NewDefaultTable returns a table holding the main, UI and debug passes.
// The UI and debug passes use OverlayStates.
func NewDefaultTable() *Table {
	t := NewTable()
	t.Register(RenderPassID, NewRenderPass(RenderPassID, nil))
	t.Register(UIPassID, NewRenderPass(UIPassID, nil).Set(RenderTarget{}, OverlayStates()))
	t.Register(DebugPassID, NewRenderPass(DebugPassID, nil).Set(RenderTarget{}, OverlayStates()))
	return t
}

// Register stores p under id, replacing any pass already registered
// under that id. A nil pass is ignored.
func (t *Table) Register(id int, p *RenderPass) {
	if p == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.passes[id] = p
}

// Unregister removes id from the table.
func (t *Table) Unregister(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.passes, id)
}

// Create returns the pass registered under id, or nil.
func (t *Table) Create(id int) *RenderPass {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.passes[id]
}

// IDs returns the registered ids in ascending order.
func (t *Table) IDs() []int {
	t.mu.RLock()
	ids := make([]int, 0, len(t.passes))
	for id := range t.passes {
		ids = append(ids, id)
	}
	t.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered passes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.passes)
}
