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

package host

import (
	"context"
	"errors"

	"github.com/palco-runtime/palco/pkg/intent"
	"github.com/palco-runtime/palco/pkg/screen"
)

// ErrUnknownScreen is returned when a launch names a screen kind no factory
// was registered for.
var ErrUnknownScreen = errors.New("unknown screen")

// ErrNoHandler marks an action message no registered handler declares
// support for. It is reported, never returned to the sender.
var ErrNoHandler = errors.New("no handler for action")

// Hooks bundles the application callbacks for one screen instance.
type Hooks struct {
	Delegate screen.Delegate
	Buttons  screen.ButtonHandler

	// Labels makes instances of this kind write the fixed state label on
	// every transition. Content screens leave it false so their delegate's
	// text survives the bring-up transitions.
	Labels bool
}

// Factory builds fresh hooks for every instance of a screen kind. It runs
// once per launch and once per recreate, so hooks may carry per-instance
// state.
type Factory func() Hooks

// ActionHandlerFunc handles an abstract action message, for example a dial
// request. A returned error marks the action as failed; failures are
// reported but never retried.
type ActionHandlerFunc func(ctx context.Context, msg intent.Message) error

// commandKind enumerates the work items of the host goroutine.
type commandKind string

const (
	cmdLaunch   commandKind = "launch"
	cmdFinish   commandKind = "finish"
	cmdRecreate commandKind = "recreate"
	cmdPress    commandKind = "press"
	cmdAction   commandKind = "action"
	cmdQuit     commandKind = "quit"
)

// command is one unit of work for the host goroutine. Which payload fields
// are meaningful depends on the kind.
type command struct {
	kind        commandKind
	destination string
	params      screen.Params
	button      string
	msg         intent.Message
}

// stackEntry is one screen on the back stack, together with the launch
// params it was opened with so a recreate can redeliver them.
type stackEntry struct {
	inst   *screen.Instance
	params screen.Params
}
