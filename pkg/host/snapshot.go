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
	"sync"
	"time"

	"github.com/tiendc/go-deepcopy"

	"github.com/palco-runtime/palco/pkg/config"
	"github.com/palco-runtime/palco/pkg/screen"
)

// ScreenSnapshot is the immutable state of one screen instance on the back
// stack at snapshot time.
type ScreenSnapshot struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	VisibleText string `json:"visible_text"`
}

// SystemSnapshot is a point-in-time view of the whole host: the back stack
// bottom-first, the active config and the loop tick that produced it.
// Consumers only ever see deep copies, so a snapshot can be held and read
// long after the loop has moved on.
type SystemSnapshot struct {
	CurrentConfig config.FullConfig `json:"current_config"`
	// Stack lists the back stack bottom-first; the last entry is the
	// screen the user sees.
	Stack []ScreenSnapshot `json:"stack"`
	// SavedStates maps screen kinds to their serialized saved state, for
	// kinds that have gone through a save without a restore yet.
	SavedStates  map[string]string `json:"saved_states,omitempty"`
	SnapshotTime time.Time         `json:"snapshot_time"`
	Tick         uint64            `json:"tick"`
}

// Top returns the snapshot of the screen the user currently sees. ok is
// false when the stack was empty at snapshot time.
func (s SystemSnapshot) Top() (ScreenSnapshot, bool) {
	if len(s.Stack) == 0 {
		return ScreenSnapshot{}, false
	}

	return s.Stack[len(s.Stack)-1], true
}

// FindScreen returns the topmost stack entry for the named screen kind.
func FindScreen(snap SystemSnapshot, name string) (ScreenSnapshot, bool) {
	for i := len(snap.Stack) - 1; i >= 0; i-- {
		if snap.Stack[i].Name == name {
			return snap.Stack[i], true
		}
	}

	return ScreenSnapshot{}, false
}

// SnapshotManager manages thread-safe creation, storage, and retrieval of
// system snapshots. The loop goroutine writes, everything else reads.
type SnapshotManager struct {
	mu           sync.RWMutex
	lastSnapshot *SystemSnapshot
}

// NewSnapshotManager creates a snapshot manager holding an empty snapshot.
func NewSnapshotManager() *SnapshotManager {
	return &SnapshotManager{
		lastSnapshot: &SystemSnapshot{
			SnapshotTime: time.Now(),
		},
	}
}

// UpdateSnapshot replaces the stored snapshot.
func (s *SnapshotManager) UpdateSnapshot(snapshot *SystemSnapshot) {
	if s == nil || snapshot == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSnapshot = snapshot
}

// GetDeepCopySnapshot returns a deep copy of the most recent snapshot, so
// the caller never shares backing storage with the loop goroutine.
func (s *SnapshotManager) GetDeepCopySnapshot() SystemSnapshot {
	if s == nil {
		return SystemSnapshot{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var snapshotCopy SystemSnapshot
	if err := deepcopy.Copy(&snapshotCopy, s.lastSnapshot); err != nil {
		// If deep copy fails, return an empty snapshot to indicate failure
		return SystemSnapshot{}
	}

	return snapshotCopy
}

// updateSystemSnapshot captures the loop state after a command. Runs on the
// loop goroutine, which is the only place the stack may be read live.
func (h *Host) updateSystemSnapshot() {
	snap := &SystemSnapshot{
		CurrentConfig: h.currentConfig.Clone(),
		Stack:         make([]ScreenSnapshot, 0, len(h.stack)),
		SnapshotTime:  time.Now(),
		Tick:          h.tick,
	}

	for _, entry := range h.stack {
		snap.Stack = append(snap.Stack, screenSnapshotOf(entry.inst))
	}

	if len(h.savedStates) > 0 {
		snap.SavedStates = make(map[string]string, len(h.savedStates))
		for name, data := range h.savedStates {
			snap.SavedStates[name] = string(data)
		}
	}

	h.snapshotManager.UpdateSnapshot(snap)
}

func screenSnapshotOf(inst *screen.Instance) ScreenSnapshot {
	status := inst.Status()

	return ScreenSnapshot{
		ID:          status.ID,
		Name:        status.Name,
		State:       status.State,
		VisibleText: status.VisibleText,
	}
}
