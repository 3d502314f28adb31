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

package screens

import (
	"context"

	"github.com/palco-runtime/palco/pkg/intent"
	"github.com/palco-runtime/palco/pkg/screen"
)

// Main is the entry screen. Its visible text is driven entirely by the
// lifecycle labels; the two buttons send one navigation message each.
type Main struct {
	dispatcher *intent.Dispatcher
}

// NewMain creates the main screen behavior around the given dispatcher.
func NewMain(dispatcher *intent.Dispatcher) *Main {
	return &Main{dispatcher: dispatcher}
}

// OnCreate implements screen.Delegate. The main screen has nothing to add
// on top of the lifecycle labels.
func (m *Main) OnCreate(ctx context.Context, inst *screen.Instance, params screen.Params) {}

// OnDestroy implements screen.Delegate.
func (m *Main) OnDestroy(ctx context.Context, inst *screen.Instance) {}

// OnPress implements screen.ButtonHandler. Both sends are fire-and-forget;
// the press handler returns before the message is resolved and never learns
// the outcome.
func (m *Main) OnPress(ctx context.Context, inst *screen.Instance, button string) {
	switch button {
	case ButtonOpenSecond:
		m.dispatcher.SendTargeted(ctx, ScreenSecond, intent.Extras{MessageKey: Greeting})
	case ButtonDial:
		m.dispatcher.SendAction(ctx, ActionDial, DialNumber)
	}
}
