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
	"errors"
	"sync"

	"go.uber.org/zap"

	internalfsm "github.com/palco-runtime/palco/internal/fsm"
	"github.com/palco-runtime/palco/pkg/snapshot"
)

// Lifecycle states, re-exported so callers do not need to reach into
// internal/fsm to compare against CurrentState.
const (
	// StateInitialized is the pre-lifecycle state of a freshly constructed
	// instance. No label has been written yet.
	StateInitialized = internalfsm.StateInitialized
	// StateCreated means Create has run: the instance exists in memory but
	// is not visible.
	StateCreated = internalfsm.StateCreated
	// StateStarted means the instance is visible but not yet interactive.
	StateStarted = internalfsm.StateStarted
	// StateResumed means the instance is visible and receiving input. This
	// is the only state in which button presses are delivered.
	StateResumed = internalfsm.StateResumed
	// StatePaused means another screen partially obscures the instance; it
	// is still visible but no longer interactive.
	StatePaused = internalfsm.StatePaused
	// StateStopped means the instance is fully hidden but retained in memory.
	StateStopped = internalfsm.StateStopped
	// StateDestroyed is terminal. The instance is unusable and must be
	// replaced by a fresh one to show the same screen again.
	StateDestroyed = internalfsm.StateDestroyed
)

// Lifecycle events, re-exported for tests and debug tooling that inspect
// transition records.
const (
	EventCreate  = internalfsm.EventCreate
	EventStart   = internalfsm.EventStart
	EventResume  = internalfsm.EventResume
	EventPause   = internalfsm.EventPause
	EventStop    = internalfsm.EventStop
	EventDestroy = internalfsm.EventDestroy
)

// SnapshotStateKey is the key under which an instance persists its visible
// text when the host asks it to save state before teardown.
const SnapshotStateKey = "estado"

// ErrInvalidTransition is returned when an operation is driven out of order,
// for example Resume on an instance that was never started.
var ErrInvalidTransition = internalfsm.ErrInvalidTransition

// ErrDestroyed is returned when an operation is attempted on an instance
// that has already reached its terminal state.
var ErrDestroyed = errors.New("screen instance is destroyed")

// Params carries the launch payload a screen was opened with. It is handed
// to the delegate exactly once, during Create.
type Params map[string]string

// Surface is the output sink for an instance's visible text. Implementations
// must tolerate being called from lifecycle callbacks; they should not block.
type Surface interface {
	// SetText replaces the surface content with the given text.
	SetText(text string)
}

// Delegate receives application-level lifecycle hooks after the instance has
// finished its own bookkeeping for the corresponding transition. All hooks
// are optional in spirit; implementations may ignore any of them.
type Delegate interface {
	// OnCreate runs once per instance, after any created label and snapshot
	// value have been applied. params is the launch payload the screen was
	// opened with, nil when it was opened without one.
	OnCreate(ctx context.Context, inst *Instance, params Params)
	// OnDestroy runs when the instance reaches its terminal state.
	OnDestroy(ctx context.Context, inst *Instance)
}

// ButtonHandler reacts to a button press routed by the host. Presses are
// only delivered while the owning instance is resumed.
type ButtonHandler interface {
	// OnPress handles a press of the named button.
	OnPress(ctx context.Context, inst *Instance, button string)
}

// Status is a point-in-time view of an instance, safe to copy and hand to
// debug endpoints.
type Status struct {
	// ID is the unique identifier of the instance.
	ID string `json:"id"`
	// Name is the screen kind the instance was created for.
	Name string `json:"name"`
	// State is the current lifecycle state.
	State string `json:"state"`
	// VisibleText is the most recent text written to the surface.
	VisibleText string `json:"visible_text"`
}

// InstanceConfig configures a new screen instance.
type InstanceConfig struct {
	// Name is the screen kind, for example "Main". It names the logger and
	// the metric series of the instance.
	Name string
	// Surface receives visible-text updates. A nil surface keeps the text
	// readable through VisibleText only.
	Surface Surface
	// Delegate receives application hooks. May be nil for label-only screens.
	Delegate Delegate
	// Buttons handles presses routed to this instance. May be nil.
	Buttons ButtonHandler
	// Labels makes the instance write the fixed state label on every
	// transition, the way the demo's main screen visualizes its lifecycle.
	// Screens whose delegate owns the surface content leave it false, so
	// transitions never overwrite what the delegate displayed.
	Labels bool
	// Params is the launch payload, delivered to the delegate during Create.
	Params Params
	// Logger overrides the default component logger. Tests use this to
	// observe diagnostic records; production callers leave it nil.
	Logger *zap.SugaredLogger
}

// Instance is a single run of a screen, from Create to Destroy. It owns the
// lifecycle machine, the visible text, and the snapshot round trip. All
// methods are safe for concurrent use, though the host drives each instance
// from a single goroutine.
type Instance struct {
	machine *internalfsm.Machine

	// mu guards visibleText.
	mu          sync.RWMutex
	visibleText string

	surface  Surface
	delegate Delegate
	buttons  ButtonHandler
	labels   bool
	params   Params

	logger *zap.SugaredLogger
}

// ID returns the unique identifier of this instance.
func (s *Instance) ID() string {
	return s.machine.ID()
}

// Name returns the screen kind this instance was created for.
func (s *Instance) Name() string {
	return s.machine.Name()
}

// CurrentState returns the current lifecycle state.
func (s *Instance) CurrentState() string {
	return s.machine.Current()
}

// IsDestroyed reports whether the instance has reached its terminal state.
func (s *Instance) IsDestroyed() bool {
	return s.machine.IsDestroyed()
}

// VisibleText returns the most recent text written to the surface.
func (s *Instance) VisibleText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleText
}

// Status returns a point-in-time view of the instance.
func (s *Instance) Status() Status {
	return Status{
		ID:          s.ID(),
		Name:        s.Name(),
		State:       s.CurrentState(),
		VisibleText: s.VisibleText(),
	}
}

// setVisibleText stores text as the current visible text and pushes it to
// the surface. Writes are last-write-wins; the caller sequences them.
func (s *Instance) setVisibleText(text string) {
	s.mu.Lock()
	s.visibleText = text
	s.mu.Unlock()
	if s.surface != nil {
		s.surface.SetText(text)
	}
}

// snap builds the persisted form of the instance's current state.
func (s *Instance) snap() snapshot.Snapshot {
	snap := snapshot.New()
	snap[SnapshotStateKey] = s.VisibleText()
	return snap
}
