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

package fsm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/palco-runtime/palco/pkg/constants"
)

// ErrInvalidTransition is returned when the host fires an event the current
// state has no edge for. A conforming host never sees it; receiving one
// means the caller violated the lifecycle ordering.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Machine owns one screen's lifecycle state machine. Concrete screen
// instances wrap it to attach visible text, snapshot handling and delegate
// hooks; the machine itself only knows states, events and callbacks.
type Machine struct {
	id   string
	name string

	// mu is a mutex for protecting concurrent access to fields
	mu sync.RWMutex

	// fsm is the finite state machine that manages instance state
	fsm *fsm.FSM

	// Registered "enter_state" callbacks, purely for logging or minor side-effects.
	callbacks map[string]fsm.Callback

	// logger is the logger for the machine
	logger *zap.SugaredLogger
}

// NewMachine sets up a new machine with the canonical screen lifecycle
// transitions, starting in StateInitialized. id identifies the instance,
// name is the screen kind it was registered under.
func NewMachine(id string, name string, logger *zap.SugaredLogger) *Machine {
	m := &Machine{
		id:        id,
		name:      name,
		callbacks: make(map[string]fsm.Callback),
		logger:    logger,
	}

	m.fsm = fsm.NewFSM(
		StateInitialized,
		fsm.Events(Transitions()),
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				// Call registered callback for this state if exists
				if cb, ok := m.callbacks["enter_"+e.Dst]; ok {
					cb(ctx, e)
				}
			},
		},
	)

	m.AddCallback("enter_"+StateDestroyed, func(ctx context.Context, e *fsm.Event) {
		m.logger.Debugf("Entering destroyed state for machine %s", m.id)
	})

	return m
}

// AddCallback adds a callback for a given event name
func (m *Machine) AddCallback(eventName string, callback fsm.Callback) {
	m.callbacks[eventName] = callback
}

// SendEvent sends an event to the FSM and returns whether the event was processed.
//
// Context expiration during a transition is worse than failing to start one:
// it leaves the looplab machine with its internal transition flag set, and
// every later event fails with "previous transition did not complete". So we
// reject events outright when the context is already cancelled or when not
// enough time remains before its deadline.
func (m *Machine) SendEvent(ctx context.Context, eventName string, args ...interface{}) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) < constants.ExpectedMaxTransitionDuration {
			return fmt.Errorf("context deadline exceeded")
		}
	}

	err := m.fsm.Event(ctx, eventName, args...)
	if err != nil {
		var invalid fsm.InvalidEventError
		if errors.As(err, &invalid) {
			return fmt.Errorf("%w: event %q in state %q", ErrInvalidTransition, invalid.Event, invalid.State)
		}

		return err
	}

	return nil
}

// Current returns the current state of the machine
func (m *Machine) Current() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.fsm.Current()
}

// SetState sets the current state of the machine.
// This should only be called in tests.
func (m *Machine) SetState(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fsm.SetState(state)
}

// Is reports whether the machine is currently in the given state
func (m *Machine) Is(state string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.fsm.Is(state)
}

// Can reports whether the given event can fire from the current state
func (m *Machine) Can(eventName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.fsm.Can(eventName)
}

// IsDestroyed returns true once the machine has reached its terminal state
func (m *Machine) IsDestroyed() bool {
	return m.Current() == StateDestroyed
}

func (m *Machine) ID() string {
	return m.id
}

func (m *Machine) Name() string {
	return m.name
}

func (m *Machine) GetLogger() *zap.SugaredLogger {
	return m.logger
}
