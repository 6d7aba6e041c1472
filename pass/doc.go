// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pass defines render passes: ordered stages of a frame, each with
// its own render target, render states and shader.
//
// Passes are registered in a Table owned by a renderer. Three ids are
// reserved:
//
//	RenderPassID = 0 // main scene
//	UIPassID     = 1 // user interface overlay
//	DebugPassID  = 2 // debug overlay
//
// A Table lookup is a map access. Register replaces an existing pass with
// the same id without warning.
package pass
