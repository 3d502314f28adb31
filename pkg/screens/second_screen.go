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

	"github.com/palco-runtime/palco/pkg/screen"
)

// Second displays the greeting it was launched with. It shows no lifecycle
// labels; a launch without the message key leaves its surface empty.
type Second struct{}

// NewSecond creates the second screen behavior.
func NewSecond() *Second {
	return &Second{}
}

// OnCreate implements screen.Delegate. The received greeting is displayed
// verbatim; its absence is an ordinary no-op display path, not an error.
func (s *Second) OnCreate(ctx context.Context, inst *screen.Instance, params screen.Params) {
	if text, ok := params[MessageKey]; ok {
		inst.SetText(text)
	}
}

// OnDestroy implements screen.Delegate.
func (s *Second) OnDestroy(ctx context.Context, inst *screen.Instance) {}
