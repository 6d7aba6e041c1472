// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/backend"
	"github.com/gogpu/g3d/command"
	"github.com/gogpu/g3d/geometry"
)

// Frame dispatches every staged pass to the backend and clears the queues.
//
// Passes run in the order they were first begun since the previous Frame.
// A pass removed from the table after staging is skipped. Failing commands
// are logged and counted in Stats.DispatchErrors without stopping the
// frame. Frame returns an error when the frame itself cannot be started or
// submitted, or when ctx is done before dispatch begins.
func (s *Service) Frame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.active != noPass {
		return fmt.Errorf("%w: %d", ErrPassActive, s.active)
	}
	defer s.resetFrame()

	if err := s.backend.BeginFrame(); err != nil {
		return fmt.Errorf("render: begin frame: %w", err)
	}
	for _, id := range s.order {
		if err := ctx.Err(); err != nil {
			g3d.Logger().Warn("render: frame cancelled", "pass", id, "err", err)
			break
		}
		s.dispatchPass(id)
	}
	if err := s.backend.EndFrame(); err != nil {
		return fmt.Errorf("render: end frame: %w", err)
	}
	s.stats.Frames++
	s.publishCounters()
	return nil
}

func (s *Service) dispatchPass(id int) {
	rp := s.passes.Create(id)
	if rp == nil {
		g3d.Logger().Warn("render: pass unregistered before dispatch", "pass", id)
		return
	}
	cam := s.cameraFor(id)
	desc := backend.PassDesc{
		ID:         id,
		Name:       rp.Name(),
		Target:     rp.Target(),
		States:     rp.States(),
		Projection: cam.projection,
		View:       cam.view,
	}
	if err := s.backend.BeginPass(desc); err != nil {
		s.stats.DispatchErrors++
		g3d.Logger().Warn("render: begin pass failed", "pass", desc.Name, "err", err)
		return
	}

	var q []command.Command
	if queue := s.queues[id]; queue != nil {
		q = queue.Commands()
	}
	for i, cmd := range q {
		if err := s.execute(cmd); err != nil {
			s.stats.DispatchErrors++
			g3d.Logger().Warn("render: command failed",
				"pass", desc.Name, "index", i, "kind", cmd.Kind(), "err", err)
		}
	}

	if err := s.backend.EndPass(); err != nil {
		s.stats.DispatchErrors++
		g3d.Logger().Warn("render: end pass failed", "pass", desc.Name, "err", err)
	}
}

func (s *Service) execute(cmd command.Command) error {
	switch c := cmd.(type) {
	case command.SetMaterial:
		s.stats.Binds++
		return s.backend.BindMaterial(c.Binding)
	case command.DrawPrimitives:
		s.stats.Draws++
		return s.backend.Draw(backend.DrawCall{
			MeshID:      c.MeshID,
			VertexArray: c.VertexArray,
			Groups:      []geometry.PrimitiveGroup{c.Primitive},
			Instances:   1,
			Model:       modelOf(c.Model, c.HasModel),
		})
	case command.DrawInstancedPrimitives:
		s.stats.Draws++
		return s.backend.Draw(backend.DrawCall{
			MeshID:      c.MeshID,
			VertexArray: c.VertexArray,
			Groups:      c.Groups,
			Instances:   max(c.Instances, 1),
			Model:       modelOf(c.Model, c.HasModel),
		})
	default:
		return fmt.Errorf("render: unknown command %T", cmd)
	}
}

func modelOf(m mgl32.Mat4, ok bool) mgl32.Mat4 {
	if ok {
		return m
	}
	return mgl32.Ident4()
}
