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

// Package screens holds the two demo screens: a main screen whose buttons
// exercise both navigation message kinds, and a second screen that displays
// the greeting it was launched with.
package screens

import (
	"github.com/palco-runtime/palco/pkg/host"
	"github.com/palco-runtime/palco/pkg/intent"
)

// Registered screen names.
const (
	ScreenMain   = "Main"
	ScreenSecond = "Second"
)

// Button ids on the main screen.
const (
	ButtonOpenSecond = "open_second"
	ButtonDial       = "dial"
)

// Wire constants shared between the two screens.
const (
	// MessageKey is the extras key the second screen reads its greeting from.
	MessageKey = "mensagem"
	// Greeting is the text the main screen sends along.
	Greeting = "Olá da MainActivity!"
	// ActionDial is the abstract action the dial button requests.
	ActionDial = "dial"
	// DialNumber is the payload of the dial request.
	DialNumber = "tel:1234567890"
)

// Register adds both demo screens to the host registry. The dispatcher is
// shared across main screen instances; it carries no per-instance state.
// Only the main screen shows the fixed lifecycle labels; the second screen's
// surface belongs to its delegate.
func Register(h *host.Host, dispatcher *intent.Dispatcher) {
	h.Register(ScreenMain, func() host.Hooks {
		main := NewMain(dispatcher)

		return host.Hooks{Delegate: main, Buttons: main, Labels: true}
	})

	h.Register(ScreenSecond, func() host.Hooks {
		return host.Hooks{Delegate: NewSecond()}
	})
}
