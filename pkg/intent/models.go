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

// Package intent carries navigation messages between screens and the host.
// A message either targets a screen by name or names an abstract action for
// the host to resolve. Dispatch is fire-and-forget: senders never learn
// whether a message was resolvable.
package intent

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind distinguishes the two message forms.
type Kind string

const (
	// KindTargeted addresses a screen by its registered name.
	KindTargeted Kind = "targeted"
	// KindAction names an abstract capability, to be resolved by whoever
	// registered a handler for it.
	KindAction Kind = "action"
)

// Extras is the string payload attached to a targeted message. Ownership
// passes to the receiver; senders must not mutate a map after dispatch.
type Extras map[string]string

// Message is a single navigation request. Destination and Extras are set on
// targeted messages, Action and Data on action messages.
type Message struct {
	// ID uniquely identifies this dispatch, for correlation in logs.
	ID string
	// Kind tells which of the two field groups is populated.
	Kind Kind
	// Destination is the registered name of the target screen.
	Destination string
	// Extras is the payload handed to the target screen at creation.
	Extras Extras
	// Action is the abstract capability being requested.
	Action string
	// Data qualifies the action, typically as a URI-like string.
	Data string
}

// NewTargeted builds a message addressed to a screen by name. extras may be
// nil when the screen needs no payload.
func NewTargeted(destination string, extras Extras) Message {
	return Message{
		ID:          uuid.New().String(),
		Kind:        KindTargeted,
		Destination: destination,
		Extras:      extras,
	}
}

// NewAction builds a message requesting an abstract capability.
func NewAction(action string, data string) Message {
	return Message{
		ID:     uuid.New().String(),
		Kind:   KindAction,
		Action: action,
		Data:   data,
	}
}

// String renders the message for log lines.
func (m Message) String() string {
	switch m.Kind {
	case KindTargeted:
		return fmt.Sprintf("targeted intent %s to %s", m.ID, m.Destination)
	case KindAction:
		return fmt.Sprintf("action intent %s (%s %s)", m.ID, m.Action, m.Data)
	default:
		return fmt.Sprintf("intent %s of unknown kind %q", m.ID, string(m.Kind))
	}
}
