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

	internalfsm "github.com/palco-runtime/palco/internal/fsm"
	"github.com/palco-runtime/palco/pkg/metrics"
	"github.com/palco-runtime/palco/pkg/snapshot"
)

// Create drives the instance out of initialized. On a label-showing
// instance the created label is written first; when prior carries a saved
// state the saved text overwrites it; finally the launch params are handed
// to the delegate. prior is nil on a fresh launch and non-nil when the host
// recreates the screen.
func (s *Instance) Create(ctx context.Context, prior snapshot.Snapshot) error {
	if err := s.machine.SendEvent(ctx, internalfsm.EventCreate); err != nil {
		return err
	}

	if value, ok := prior.Get(SnapshotStateKey); ok {
		s.logger.Infof("Restoring saved state for screen %s during create", s.ID())
		s.setVisibleText(value)
		metrics.RecordSnapshotRestore(s.Name())
	}

	if s.delegate != nil {
		s.delegate.OnCreate(ctx, s, s.params)
	}

	return nil
}

// Start makes the instance visible. Valid from created on first launch and
// from stopped when the screen comes back after a full occlusion.
func (s *Instance) Start(ctx context.Context) error {
	return s.machine.SendEvent(ctx, internalfsm.EventStart)
}

// Resume makes the instance interactive. Valid from started and from
// paused when the screen regains focus.
func (s *Instance) Resume(ctx context.Context) error {
	return s.machine.SendEvent(ctx, internalfsm.EventResume)
}

// Pause removes interactivity while the instance stays visible.
func (s *Instance) Pause(ctx context.Context) error {
	return s.machine.SendEvent(ctx, internalfsm.EventPause)
}

// Stop hides the instance entirely while keeping it in memory.
func (s *Instance) Stop(ctx context.Context) error {
	return s.machine.SendEvent(ctx, internalfsm.EventStop)
}

// Destroy moves the instance into its terminal state. The visible text is
// left exactly as it was; only the diagnostic record is emitted. After a
// successful destroy the instance rejects all further lifecycle events.
func (s *Instance) Destroy(ctx context.Context) error {
	if err := s.machine.SendEvent(ctx, internalfsm.EventDestroy); err != nil {
		return err
	}

	if s.delegate != nil {
		s.delegate.OnDestroy(ctx, s)
	}

	return nil
}

// SaveSnapshot captures the visible text for a future instance of the same
// screen. It may be called in any state before destruction; afterwards it
// returns ErrDestroyed.
func (s *Instance) SaveSnapshot() (snapshot.Snapshot, error) {
	if s.IsDestroyed() {
		return nil, ErrDestroyed
	}

	s.logger.Infof("Saving instance state for screen %s", s.ID())
	metrics.RecordSnapshotSave(s.Name())

	return s.snap(), nil
}

// RestoreSnapshot re-applies a previously saved snapshot to the visible
// text. A nil snapshot or one without the state key is skipped silently;
// restoration is never fatal.
func (s *Instance) RestoreSnapshot(snap snapshot.Snapshot) {
	if s.IsDestroyed() {
		s.logger.Debugf("Ignoring restore for destroyed screen %s", s.ID())
		return
	}

	value, ok := snap.Get(SnapshotStateKey)
	if !ok {
		s.logger.Debugf("No saved state to restore for screen %s", s.ID())
		return
	}

	s.logger.Infof("Restoring saved state for screen %s", s.ID())
	s.setVisibleText(value)
	metrics.RecordSnapshotRestore(s.Name())
}

// SetText writes application text to the surface. Delegates use this to
// display content on top of the lifecycle labels; like every other write
// it participates in last-write-wins.
func (s *Instance) SetText(text string) {
	s.setVisibleText(text)
}

// Press delivers a button press to the instance's button handler. Presses
// are only honored while the instance is resumed; in every other state the
// press is dropped. The return value reports whether the press was
// delivered.
func (s *Instance) Press(ctx context.Context, button string) bool {
	if !s.machine.Is(internalfsm.StateResumed) {
		s.logger.Debugf("Dropping press %q for screen %s in state %s", button, s.ID(), s.CurrentState())
		return false
	}

	if s.buttons == nil {
		s.logger.Debugf("No button handler on screen %s, dropping press %q", s.ID(), button)
		return false
	}

	s.buttons.OnPress(ctx, s, button)
	return true
}
