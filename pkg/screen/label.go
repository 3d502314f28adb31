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
	internalfsm "github.com/palco-runtime/palco/internal/fsm"
)

// Fixed labels written to the surface on entry into each labelled state.
const (
	LabelCreated = "Estado: Criado"
	LabelStarted = "Estado: Iniciado"
	LabelResumed = "Estado: Retomado"
	LabelPaused  = "Estado: Pausado"
	LabelStopped = "Estado: Parado"
)

// Label returns the fixed surface label for a lifecycle state. ok is false
// for states that do not write a label: initialized, because nothing has
// happened yet, and destroyed, because teardown must leave the last visible
// text untouched.
func Label(state string) (label string, ok bool) {
	switch state {
	case internalfsm.StateCreated:
		return LabelCreated, true
	case internalfsm.StateStarted:
		return LabelStarted, true
	case internalfsm.StateResumed:
		return LabelResumed, true
	case internalfsm.StatePaused:
		return LabelPaused, true
	case internalfsm.StateStopped:
		return LabelStopped, true
	default:
		return "", false
	}
}
