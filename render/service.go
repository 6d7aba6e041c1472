// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/command"
	"github.com/gogpu/g3d/gpubuffer"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/pass"
	"github.com/gogpu/g3d/profiling"
)

// Service errors.
var (
	// ErrNilBackend is returned by New for a nil backend.
	ErrNilBackend = errors.New("render: nil backend")

	// ErrUnknownPass is returned by BeginPass for ids missing from the table.
	ErrUnknownPass = errors.New("render: unknown pass")

	// ErrPassActive is returned when a pass is begun inside another pass,
	// or a frame is dispatched while a pass is still open.
	ErrPassActive = errors.New("render: pass already active")

	// ErrNoActivePass is returned for batch and staging calls outside a pass.
	ErrNoActivePass = errors.New("render: no active pass")

	// ErrBatchActive is returned when a batch is begun inside another batch.
	ErrBatchActive = errors.New("render: batch already active")

	// ErrNoActiveBatch is returned for staging calls outside a batch.
	ErrNoActiveBatch = errors.New("render: no active batch")

	// ErrMeshSkipped wraps the reason a mesh could not be staged.
	ErrMeshSkipped = errors.New("render: mesh skipped")
)

// DefaultMaterialName names the flat material used for meshes without one.
const DefaultMaterialName = "g3d.default"

const noPass = -1

// Stats reports service activity since creation.
type Stats struct {
	Frames         uint64
	Staged         uint64
	Skipped        uint64
	Commands       uint64
	Binds          uint64
	Draws          uint64
	DispatchErrors uint64
}

type camera struct {
	view       mgl32.Mat4
	projection mgl32.Mat4
}

type boundMaterial struct {
	valid  bool
	handle material.Handle
	shader backend.ShaderID
}

// Service stages meshes into per-pass command queues and dispatches them to
// a backend.
type Service struct {
	backend backend.Backend
	passes  *pass.Table
	library *material.Library
	buffers *gpubuffer.Manager

	defaultMaterial material.Handle

	queues map[int]*command.Queue
	order  []int
	active int
	batch  string

	inBatch bool
	bound   boundMaterial

	meshes      map[uint64]*meshResources
	shaders     map[string]backend.ShaderID
	matShaders  map[material.Handle]materialShader
	textures    map[string]backend.TextureID
	retired     retired
	ownsBuffers bool

	world    mgl32.Mat4
	hasWorld bool
	camera   camera
	cameras  map[int]camera

	stats    Stats
	counters *profiling.Counters
}

// New creates a service dispatching to b. The backend must already be
// initialized; the service never closes it.
func New(b backend.Backend, opts ...Option) (*Service, error) {
	if b == nil {
		return nil, ErrNilBackend
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.passes == nil {
		o.passes = pass.NewDefaultTable()
	}
	if o.library == nil {
		o.library = material.NewLibrary()
	}
	owns := o.buffers == nil
	if owns {
		o.buffers = gpubuffer.NewManager(b)
	}

	s := &Service{
		backend:  b,
		passes:   o.passes,
		library:  o.library,
		buffers:  o.buffers,
		queues:   make(map[int]*command.Queue),
		active:   noPass,
		meshes:      make(map[uint64]*meshResources),
		shaders:     make(map[string]backend.ShaderID),
		matShaders:  make(map[material.Handle]materialShader),
		textures:    make(map[string]backend.TextureID),
		ownsBuffers: owns,
		world:       mgl32.Ident4(),
		camera:      camera{view: mgl32.Ident4(), projection: mgl32.Ident4()},
		cameras:     make(map[int]camera),
		counters:    o.counters,
	}
	s.registerCounters()
	s.defaultMaterial = s.library.Create(DefaultMaterialName, material.TypeFlat)
	g3d.Logger().Debug("render: service created", "backend", b.Name())
	return s, nil
}

// Backend returns the backend the service dispatches to.
func (s *Service) Backend() backend.Backend { return s.backend }

// Passes returns the pass table.
func (s *Service) Passes() *pass.Table { return s.passes }

// Library returns the material library.
func (s *Service) Library() *material.Library { return s.library }

// Buffers returns the buffer manager.
func (s *Service) Buffers() *gpubuffer.Manager { return s.buffers }

// BeginPass makes pass id the target of subsequent batches. The first
// BeginPass of a frame for an id fixes that pass's dispatch position.
func (s *Service) BeginPass(id int) error {
	if s.active != noPass {
		return fmt.Errorf("%w: %s while %s is open", ErrPassActive, pass.PassNameByID(id), pass.PassNameByID(s.active))
	}
	if s.passes.Create(id) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownPass, id)
	}
	s.active = id
	if _, ok := s.queues[id]; !ok {
		s.queues[id] = &command.Queue{}
	}
	if !slices.Contains(s.order, id) {
		s.order = append(s.order, id)
	}
	s.bound = boundMaterial{}
	return nil
}

// BeginRenderBatch opens a named batch inside the active pass. The bound
// material is forgotten, so the first mesh of a batch always emits a
// SetMaterial.
func (s *Service) BeginRenderBatch(name string) error {
	if s.active == noPass {
		return ErrNoActivePass
	}
	if s.inBatch {
		return fmt.Errorf("%w: %q", ErrBatchActive, s.batch)
	}
	s.inBatch = true
	s.batch = name
	s.bound = boundMaterial{}
	return nil
}

// EndRenderBatch closes the active batch.
func (s *Service) EndRenderBatch() error {
	if !s.inBatch {
		return ErrNoActiveBatch
	}
	s.inBatch = false
	s.batch = ""
	s.bound = boundMaterial{}
	return nil
}

// EndPass closes the active pass. An open batch is closed with it.
func (s *Service) EndPass() error {
	if s.active == noPass {
		return ErrNoActivePass
	}
	if s.inBatch {
		g3d.Logger().Debug("render: batch closed by EndPass", "batch", s.batch)
		s.inBatch = false
		s.batch = ""
	}
	s.active = noPass
	s.bound = boundMaterial{}
	return nil
}

// ActivePass returns the id of the open pass.
func (s *Service) ActivePass() (int, bool) {
	return s.active, s.active != noPass
}

// SetWorldTransform sets the matrix applied to meshes staged after the
// call. Local meshes are drawn with world * mesh model matrix.
func (s *Service) SetWorldTransform(m mgl32.Mat4) {
	s.world = m
	s.hasWorld = m != mgl32.Ident4()
}

// WorldTransform returns the current world matrix.
func (s *Service) WorldTransform() mgl32.Mat4 { return s.world }

// SetCamera sets the view and projection used by passes without their own
// camera.
func (s *Service) SetCamera(view, projection mgl32.Mat4) {
	s.camera = camera{view: view, projection: projection}
}

// SetPassCamera sets the view and projection of one pass.
func (s *Service) SetPassCamera(id int, view, projection mgl32.Mat4) {
	s.cameras[id] = camera{view: view, projection: projection}
}

// ClearPassCamera makes pass id use the service camera again.
func (s *Service) ClearPassCamera(id int) {
	delete(s.cameras, id)
}

func (s *Service) cameraFor(id int) camera {
	if c, ok := s.cameras[id]; ok {
		return c
	}
	return s.camera
}

// Queue returns the queue of pass id for the frame being staged.
func (s *Service) Queue(id int) *command.Queue {
	return s.queues[id]
}

// PassOrder returns the dispatch order of the frame being staged.
func (s *Service) PassOrder() []int { return slices.Clone(s.order) }

// Stats returns a snapshot of service counters.
func (s *Service) Stats() Stats { return s.stats }

// Close releases every backend resource the service created, including
// every buffer of a manager the service created itself. The backend stays
// open.
func (s *Service) Close() {
	s.resetFrame()
	for id, r := range s.meshes {
		s.releaseResources(r)
		delete(s.meshes, id)
	}
	for key, id := range s.shaders {
		s.backend.ReleaseShader(id)
		delete(s.shaders, key)
	}
	for h, e := range s.matShaders {
		s.backend.ReleaseShader(e.id)
		delete(s.matShaders, h)
	}
	for key, id := range s.textures {
		s.backend.ReleaseTexture(id)
		delete(s.textures, key)
	}
	if s.ownsBuffers {
		s.buffers.ReleaseAll()
	}
	s.active = noPass
	s.inBatch = false
	g3d.Logger().Debug("render: service closed")
}

func (s *Service) resetFrame() {
	for _, q := range s.queues {
		q.Reset()
	}
	s.order = s.order[:0]
	s.flushRetired()
}

// retired holds backend objects released while queued commands still
// reference them. They are destroyed once the queues are reset.
type retired struct {
	vertexArrays []backend.VertexArrayID
	shaders      []backend.ShaderID
}

func (s *Service) queued() bool {
	for _, q := range s.queues {
		if q.Len() > 0 {
			return true
		}
	}
	return false
}

func (s *Service) retireVertexArray(id backend.VertexArrayID) {
	if s.queued() {
		s.retired.vertexArrays = append(s.retired.vertexArrays, id)
		return
	}
	s.backend.ReleaseVertexArray(id)
}

func (s *Service) retireShader(id backend.ShaderID) {
	if s.queued() {
		s.retired.shaders = append(s.retired.shaders, id)
		return
	}
	s.backend.ReleaseShader(id)
}

func (s *Service) flushRetired() {
	for _, id := range s.retired.vertexArrays {
		s.backend.ReleaseVertexArray(id)
	}
	for _, id := range s.retired.shaders {
		s.backend.ReleaseShader(id)
	}
	s.retired.vertexArrays = s.retired.vertexArrays[:0]
	s.retired.shaders = s.retired.shaders[:0]
}
