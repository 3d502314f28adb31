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

import "github.com/looplab/fsm"

const (
	// EventCreate is triggered by the host to create a screen
	EventCreate = "create"
	// EventStart is triggered when the screen becomes visible
	EventStart = "start"
	// EventResume is triggered when the screen gains focus
	EventResume = "resume"
	// EventPause is triggered when the screen loses focus
	EventPause = "pause"
	// EventStop is triggered when the screen is no longer visible
	EventStop = "stop"
	// EventDestroy is triggered to tear the screen down for good
	EventDestroy = "destroy"
)

// State constants represent the lifecycle phases a screen instance passes
// through. The host drives them strictly forward, except for the two
// re-entry loops (stopped -> started, paused -> resumed).
const (
	// StateInitialized indicates the instance exists but create has not fired yet
	StateInitialized = "initialized"
	// StateCreated indicates the screen has been created
	StateCreated = "created"
	// StateStarted indicates the screen is visible
	StateStarted = "started"
	// StateResumed indicates the screen is visible and focused
	StateResumed = "resumed"
	// StatePaused indicates the screen lost focus but is still visible
	StatePaused = "paused"
	// StateStopped indicates the screen is no longer visible
	StateStopped = "stopped"
	// StateDestroyed indicates the screen has been torn down; terminal
	StateDestroyed = "destroyed"
)

// Transitions returns the canonical screen lifecycle transition table.
// start accepts stopped as a source (the "restart" loop) and resume accepts
// paused (the focus-regain loop); everything else is strictly linear.
func Transitions() []fsm.EventDesc {
	return []fsm.EventDesc{
		{Name: EventCreate, Src: []string{StateInitialized}, Dst: StateCreated},
		{Name: EventStart, Src: []string{StateCreated, StateStopped}, Dst: StateStarted},
		{Name: EventResume, Src: []string{StateStarted, StatePaused}, Dst: StateResumed},
		{Name: EventPause, Src: []string{StateResumed}, Dst: StatePaused},
		{Name: EventStop, Src: []string{StatePaused}, Dst: StateStopped},
		{Name: EventDestroy, Src: []string{StateStopped}, Dst: StateDestroyed},
	}
}

// State type checks
func IsLifecycleState(state string) bool {
	switch state {
	case StateInitialized,
		StateCreated,
		StateStarted,
		StateResumed,
		StatePaused,
		StateStopped,
		StateDestroyed:
		return true
	default:
		return false
	}
}

// IsTerminalState returns true for states no event leads out of.
func IsTerminalState(state string) bool {
	return state == StateDestroyed
}
