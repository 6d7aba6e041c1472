// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pass

import "github.com/gogpu/gputypes"

// Viewport is a rectangle of the render target in pixels.
type Viewport struct {
	X, Y, Width, Height int
}

// Empty reports whether the viewport has no area.
func (v Viewport) Empty() bool { return v.Width <= 0 || v.Height <= 0 }

// RenderTarget describes where a pass renders. The zero value renders to
// the backend's default surface.
type RenderTarget struct {
	Width    int
	Height   int
	Format   gputypes.TextureFormat
	Depth    bool
	Viewport Viewport
}

// IsDefault reports whether the target is the backend's default surface.
func (t RenderTarget) IsDefault() bool {
	return t.Width == 0 && t.Height == 0
}
