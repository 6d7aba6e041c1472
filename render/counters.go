// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// Counter names published by a service created WithCounters.
const (
	CounterFrames         = "render.frames"
	CounterStaged         = "render.staged"
	CounterSkipped        = "render.skipped"
	CounterCommands       = "render.commands"
	CounterBinds          = "render.binds"
	CounterDraws          = "render.draws"
	CounterDispatchErrors = "render.dispatch_errors"
)

func (s *Service) registerCounters() {
	if s.counters == nil {
		return
	}
	for _, name := range []string{
		CounterFrames, CounterStaged, CounterSkipped, CounterCommands,
		CounterBinds, CounterDraws, CounterDispatchErrors,
	} {
		s.counters.Register(name)
	}
}

// publishCounters copies the cumulative statistics into the counters.
func (s *Service) publishCounters() {
	if s.counters == nil {
		return
	}
	st := s.stats
	s.counters.Set(CounterFrames, st.Frames)
	s.counters.Set(CounterStaged, st.Staged)
	s.counters.Set(CounterSkipped, st.Skipped)
	s.counters.Set(CounterCommands, st.Commands)
	s.counters.Set(CounterBinds, st.Binds)
	s.counters.Set(CounterDraws, st.Draws)
	s.counters.Set(CounterDispatchErrors, st.DispatchErrors)
}
