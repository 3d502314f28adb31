// Copyright 2025 The Palco Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package screen

import (
	"context"

	"github.com/looplab/fsm"

	internalfsm "github.com/palco-runtime/palco/internal/fsm"
	"github.com/palco-runtime/palco/pkg/metrics"
)

// registerCallbacks wires the entry callback for every lifecycle state.
// Each transition emits exactly one diagnostic record. On label-showing
// instances the states with a fixed label rewrite the surface text; content
// screens keep whatever their delegate displayed. Destruction never touches
// the surface, so the last text stays visible either way.
func (s *Instance) registerCallbacks() {
	s.machine.AddCallback("enter_"+internalfsm.StateCreated, func(ctx context.Context, e *fsm.Event) {
		s.recordTransition(e)
		s.writeLabel(LabelCreated)
	})

	s.machine.AddCallback("enter_"+internalfsm.StateStarted, func(ctx context.Context, e *fsm.Event) {
		s.recordTransition(e)
		s.writeLabel(LabelStarted)
	})

	s.machine.AddCallback("enter_"+internalfsm.StateResumed, func(ctx context.Context, e *fsm.Event) {
		s.recordTransition(e)
		s.writeLabel(LabelResumed)
	})

	s.machine.AddCallback("enter_"+internalfsm.StatePaused, func(ctx context.Context, e *fsm.Event) {
		s.recordTransition(e)
		s.writeLabel(LabelPaused)
	})

	s.machine.AddCallback("enter_"+internalfsm.StateStopped, func(ctx context.Context, e *fsm.Event) {
		s.recordTransition(e)
		s.writeLabel(LabelStopped)
	})

	s.machine.AddCallback("enter_"+internalfsm.StateDestroyed, func(ctx context.Context, e *fsm.Event) {
		s.recordTransition(e)
	})
}

// writeLabel pushes a fixed state label to the surface, on label-showing
// instances only.
func (s *Instance) writeLabel(label string) {
	if !s.labels {
		return
	}

	s.setVisibleText(label)
}

// recordTransition emits the single diagnostic record for a transition.
func (s *Instance) recordTransition(e *fsm.Event) {
	s.logger.Infof("Entering %s state for screen %s on %s from %s", e.Dst, s.ID(), e.Event, e.Src)
	metrics.RecordTransition(s.Name(), e.Event, e.Dst)
}
