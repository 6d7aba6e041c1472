// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Package errors for the native backend.
var (
	// ErrNoDevice is returned by Init when no device provider exposes a HAL
	// device and queue.
	ErrNoDevice = errors.New("native: no GPU device")

	// ErrShaderCompile wraps WGSL compilation failures.
	ErrShaderCompile = errors.New("native: shader compilation failed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrNoFrame is returned for pass and draw calls outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("native: no active frame")

	// ErrFrameActive is returned by BeginFrame while a frame is recording.
	ErrFrameActive = errors.New("native: frame already active")

	// ErrPassActive is returned by BeginPass while a pass is recording.
	ErrPassActive = errors.New("native: pass already active")

	// ErrGroupNotUploaded is returned for draws of a primitive group the
	// vertex array was not created with.
	ErrGroupNotUploaded = errors.New("native: primitive group not in vertex array")
)
