// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/g3d/gpubuffer"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/pass"
	"github.com/gogpu/g3d/profiling"
)

// Option configures a Service during creation.
//
// Example:
//
//	table := pass.NewDefaultTable()
//	svc, err := render.New(b, render.WithPassTable(table))
type Option func(*options)

type options struct {
	passes   *pass.Table
	library  *material.Library
	buffers  *gpubuffer.Manager
	counters *profiling.Counters
}

// WithPassTable sets the pass table the service resolves pass ids against.
// The default is pass.NewDefaultTable().
func WithPassTable(t *pass.Table) Option {
	return func(o *options) {
		o.passes = t
	}
}

// WithMaterialLibrary sets the library that mesh material handles refer to.
// Scenes that create materials must share their library with the service.
func WithMaterialLibrary(l *material.Library) Option {
	return func(o *options) {
		o.library = l
	}
}

// WithBufferManager sets the buffer manager. It must create buffers on the
// same backend as the service.
func WithBufferManager(m *gpubuffer.Manager) Option {
	return func(o *options) {
		o.buffers = m
	}
}

// WithCounters publishes the service statistics into c after every frame.
// The counters named by the Counter constants are registered if missing.
func WithCounters(c *profiling.Counters) Option {
	return func(o *options) {
		o.counters = c
	}
}
