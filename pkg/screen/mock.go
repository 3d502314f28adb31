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

import "sync"

// MockSurface is a Surface that records every write. Tests use it to assert
// on the full sequence of visible-text updates, not just the latest value.
type MockSurface struct {
	mu     sync.Mutex
	writes []string
}

// NewMockSurface creates an empty recording surface.
func NewMockSurface() *MockSurface {
	return &MockSurface{}
}

// SetText implements Surface.
func (m *MockSurface) SetText(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, text)
}

// Writes returns a copy of every text written so far, oldest first.
func (m *MockSurface) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// Current returns the most recent write, or the empty string when nothing
// has been written yet.
func (m *MockSurface) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.writes) == 0 {
		return ""
	}
	return m.writes[len(m.writes)-1]
}

// Reset clears the recorded writes.
func (m *MockSurface) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

var _ Surface = (*MockSurface)(nil)
