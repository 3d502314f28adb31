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

// Package snapshot holds the persisted key/value state a screen hands to
// the host before destruction and receives back on recreation. Ownership
// transfers entirely to the host in between; the screen never keeps a
// reference to a snapshot it saved.
package snapshot

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tiendc/go-deepcopy"
)

// Snapshot is a string-keyed snapshot of minimal UI state surviving a
// destroy/recreate cycle. A nil Snapshot means "no snapshot" and is safe
// to read from.
type Snapshot map[string]string

// New returns an empty snapshot ready to be written.
func New() Snapshot {
	return make(Snapshot)
}

// Get returns the value for key. Reading a nil or incomplete snapshot is
// not an error; the second return reports presence.
func (s Snapshot) Get(key string) (string, bool) {
	value, ok := s[key]

	return value, ok
}

// Has reports whether key is present.
func (s Snapshot) Has(key string) bool {
	_, ok := s[key]

	return ok
}

// Clone returns a deep copy so host and screen never share backing storage
// across the ownership handoff. Clone of nil is nil.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}

	var copied Snapshot
	if err := deepcopy.Copy(&copied, s); err != nil {
		// A map[string]string copy cannot fail; fall back to an empty
		// snapshot rather than sharing state.
		return New()
	}

	return copied
}

// Encode serializes the snapshot for handoff across a process boundary or
// for the debug endpoint.
func Encode(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return data, nil
}

// Decode parses a serialized snapshot. Malformed input yields a nil
// snapshot and an error for the host's log; callers treat nil as "no
// snapshot", so a corrupt handoff degrades to a fresh default state.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return s, nil
}
