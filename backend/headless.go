// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"slices"

	"github.com/gogpu/g3d/material"
)

// Op names a recorded backend call.
type Op string

// Recorded operations.
const (
	OpCreateBuffer       Op = "CreateBuffer"
	OpUpdateBuffer       Op = "UpdateBuffer"
	OpAppendToBuffer     Op = "AppendToBuffer"
	OpReleaseBuffer      Op = "ReleaseBuffer"
	OpCreateShader       Op = "CreateShader"
	OpReleaseShader      Op = "ReleaseShader"
	OpCreateTexture      Op = "CreateTexture"
	OpReleaseTexture     Op = "ReleaseTexture"
	OpCreateVertexArray  Op = "CreateVertexArray"
	OpReleaseVertexArray Op = "ReleaseVertexArray"
	OpBeginFrame         Op = "BeginFrame"
	OpBeginPass          Op = "BeginPass"
	OpBindMaterial       Op = "BindMaterial"
	OpDraw               Op = "Draw"
	OpEndPass            Op = "EndPass"
	OpEndFrame           Op = "EndFrame"
)

// Call is one recorded backend call.
type Call struct {
	Op    Op
	ID    uint64
	Label string
	Pass  int
	Draw  DrawCall
}

// String implements fmt.Stringer.
func (c Call) String() string {
	switch c.Op {
	case OpDraw:
		return fmt.Sprintf("%s(%s)", c.Op, c.Draw)
	case OpBeginPass:
		return fmt.Sprintf("%s(%d)", c.Op, c.Pass)
	default:
		return fmt.Sprintf("%s(%s#%d)", c.Op, c.Label, c.ID)
	}
}

// HeadlessBackend records every call and keeps buffer contents in memory.
// It needs no GPU and is used for tests, tooling and the headless demo.
type HeadlessBackend struct {
	initialized bool
	nextID      uint64

	buffers      map[BufferID][]byte
	bufferLabels map[BufferID]string
	shaders      map[ShaderID]string
	textures     map[TextureID]string
	vertexArrays map[VertexArrayID]VertexArrayDesc

	inFrame  bool
	inPass   bool
	bound    bool
	calls    []Call
	failures map[Op]error
}

func init() {
	Register(BackendHeadless, func() Backend {
		return NewHeadlessBackend()
	})
}

// NewHeadlessBackend creates a new, uninitialized headless backend.
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{
		buffers:      make(map[BufferID][]byte),
		bufferLabels: make(map[BufferID]string),
		shaders:      make(map[ShaderID]string),
		textures:     make(map[TextureID]string),
		vertexArrays: make(map[VertexArrayID]VertexArrayDesc),
		failures:     make(map[Op]error),
	}
}

var _ Backend = (*HeadlessBackend)(nil)

// Name returns the backend identifier.
func (b *HeadlessBackend) Name() string { return BackendHeadless }

// Init initializes the backend.
func (b *HeadlessBackend) Init() error {
	b.initialized = true
	return nil
}

// Close releases all recorded resources.
func (b *HeadlessBackend) Close() {
	clear(b.buffers)
	clear(b.bufferLabels)
	clear(b.shaders)
	clear(b.textures)
	clear(b.vertexArrays)
	b.initialized = false
}

// FailOn makes every subsequent call of op return err. A nil err clears
// the failure.
func (b *HeadlessBackend) FailOn(op Op, err error) {
	if err == nil {
		delete(b.failures, op)
		return
	}
	b.failures[op] = err
}

// Calls returns a copy of the recorded calls.
func (b *HeadlessBackend) Calls() []Call { return slices.Clone(b.calls) }

// Ops returns the recorded operations in order.
func (b *HeadlessBackend) Ops() []Op {
	ops := make([]Op, len(b.calls))
	for i, c := range b.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was recorded.
func (b *HeadlessBackend) Count(op Op) int {
	n := 0
	for _, c := range b.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset discards the recorded calls. Resources are kept.
func (b *HeadlessBackend) Reset() { b.calls = b.calls[:0] }

// BufferData returns the contents of a live buffer.
func (b *HeadlessBackend) BufferData(id BufferID) ([]byte, bool) {
	data, ok := b.buffers[id]
	return data, ok
}

// LiveBuffers returns the number of live buffers.
func (b *HeadlessBackend) LiveBuffers() int { return len(b.buffers) }

func (b *HeadlessBackend) record(c Call) error {
	b.calls = append(b.calls, c)
	if !b.initialized {
		return ErrNotInitialized
	}
	return b.failures[c.Op]
}

func (b *HeadlessBackend) newID() uint64 {
	b.nextID++
	return b.nextID
}

// CreateBuffer stores a copy of desc.Data.
func (b *HeadlessBackend) CreateBuffer(desc BufferDesc) (BufferID, error) {
	if err := b.record(Call{Op: OpCreateBuffer, Label: desc.Label}); err != nil {
		return InvalidID, err
	}
	id := BufferID(b.newID())
	b.buffers[id] = slices.Clone(desc.Data)
	b.bufferLabels[id] = desc.Label
	b.calls[len(b.calls)-1].ID = uint64(id)
	return id, nil
}

// UpdateBuffer overwrites a buffer.
func (b *HeadlessBackend) UpdateBuffer(id BufferID, data []byte) error {
	if err := b.record(Call{Op: OpUpdateBuffer, ID: uint64(id), Label: b.bufferLabels[id]}); err != nil {
		return err
	}
	if _, ok := b.buffers[id]; !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownResource, id)
	}
	b.buffers[id] = slices.Clone(data)
	return nil
}

// AppendToBuffer grows a buffer.
func (b *HeadlessBackend) AppendToBuffer(id BufferID, data []byte) error {
	if err := b.record(Call{Op: OpAppendToBuffer, ID: uint64(id), Label: b.bufferLabels[id]}); err != nil {
		return err
	}
	buf, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownResource, id)
	}
	b.buffers[id] = append(buf, data...)
	return nil
}

// ReleaseBuffer forgets a buffer.
func (b *HeadlessBackend) ReleaseBuffer(id BufferID) {
	_ = b.record(Call{Op: OpReleaseBuffer, ID: uint64(id), Label: b.bufferLabels[id]})
	delete(b.buffers, id)
	delete(b.bufferLabels, id)
}

// CreateShader records a shader. Shaders without vertex source fail.
func (b *HeadlessBackend) CreateShader(label string, s *material.Shader) (ShaderID, error) {
	if err := b.record(Call{Op: OpCreateShader, Label: label}); err != nil {
		return InvalidID, err
	}
	if s == nil || !s.HasStage(material.StageVertex) {
		return InvalidID, fmt.Errorf("%w: shader %q has no vertex stage", ErrInvalidDescriptor, label)
	}
	id := ShaderID(b.newID())
	b.shaders[id] = label
	b.calls[len(b.calls)-1].ID = uint64(id)
	return id, nil
}

// ReleaseShader forgets a shader.
func (b *HeadlessBackend) ReleaseShader(id ShaderID) {
	_ = b.record(Call{Op: OpReleaseShader, ID: uint64(id), Label: b.shaders[id]})
	delete(b.shaders, id)
}

// CreateTexture records a texture. Textures whose payload does not match
// their size fail.
func (b *HeadlessBackend) CreateTexture(label string, t *material.Texture) (TextureID, error) {
	if err := b.record(Call{Op: OpCreateTexture, Label: label}); err != nil {
		return InvalidID, err
	}
	if !t.Valid() {
		return InvalidID, fmt.Errorf("%w: texture %q", ErrInvalidDescriptor, label)
	}
	id := TextureID(b.newID())
	b.textures[id] = label
	b.calls[len(b.calls)-1].ID = uint64(id)
	return id, nil
}

// ReleaseTexture forgets a texture.
func (b *HeadlessBackend) ReleaseTexture(id TextureID) {
	_ = b.record(Call{Op: OpReleaseTexture, ID: uint64(id), Label: b.textures[id]})
	delete(b.textures, id)
}

// CreateVertexArray records a vertex array. The vertex buffer must exist.
func (b *HeadlessBackend) CreateVertexArray(desc VertexArrayDesc) (VertexArrayID, error) {
	if err := b.record(Call{Op: OpCreateVertexArray, Label: desc.Label}); err != nil {
		return InvalidID, err
	}
	if _, ok := b.buffers[desc.VertexBuffer]; !ok {
		return InvalidID, fmt.Errorf("%w: vertex buffer %d", ErrUnknownResource, desc.VertexBuffer)
	}
	id := VertexArrayID(b.newID())
	b.vertexArrays[id] = desc
	b.calls[len(b.calls)-1].ID = uint64(id)
	return id, nil
}

// ReleaseVertexArray forgets a vertex array.
func (b *HeadlessBackend) ReleaseVertexArray(id VertexArrayID) {
	_ = b.record(Call{Op: OpReleaseVertexArray, ID: uint64(id)})
	delete(b.vertexArrays, id)
}

// BeginFrame records the start of a frame.
func (b *HeadlessBackend) BeginFrame() error {
	if err := b.record(Call{Op: OpBeginFrame}); err != nil {
		return err
	}
	b.inFrame = true
	return nil
}

// BeginPass records the start of a pass.
func (b *HeadlessBackend) BeginPass(desc PassDesc) error {
	if err := b.record(Call{Op: OpBeginPass, Pass: desc.ID, Label: desc.Name}); err != nil {
		return err
	}
	b.inPass = true
	b.bound = false
	return nil
}

// BindMaterial records a material bind.
func (b *HeadlessBackend) BindMaterial(m MaterialBinding) error {
	if err := b.record(Call{Op: OpBindMaterial, ID: uint64(m.Shader), Label: m.Label}); err != nil {
		return err
	}
	if !b.inPass {
		return ErrNoActivePass
	}
	b.bound = true
	return nil
}

// Draw records a draw.
func (b *HeadlessBackend) Draw(d DrawCall) error {
	if err := b.record(Call{Op: OpDraw, ID: uint64(d.VertexArray), Draw: d}); err != nil {
		return err
	}
	if !b.inPass {
		return ErrNoActivePass
	}
	if !b.bound {
		return ErrNoMaterial
	}
	if _, ok := b.vertexArrays[d.VertexArray]; !ok {
		return fmt.Errorf("%w: vertex array %d", ErrUnknownResource, d.VertexArray)
	}
	return nil
}

// EndPass records the end of a pass.
func (b *HeadlessBackend) EndPass() error {
	err := b.record(Call{Op: OpEndPass})
	b.inPass = false
	b.bound = false
	return err
}

// EndFrame records the end of a frame.
func (b *HeadlessBackend) EndFrame() error {
	err := b.record(Call{Op: OpEndFrame})
	b.inFrame = false
	return err
}

// InFrame reports whether BeginFrame was called without a matching EndFrame.
func (b *HeadlessBackend) InFrame() bool { return b.inFrame }
