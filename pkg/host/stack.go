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
	"fmt"
	"time"

	"github.com/palco-runtime/palco/pkg/intent"
	"github.com/palco-runtime/palco/pkg/metrics"
	"github.com/palco-runtime/palco/pkg/screen"
	"github.com/palco-runtime/palco/pkg/sentry"
	"github.com/palco-runtime/palco/pkg/snapshot"
)

// top returns the current top stack entry, or nil when the stack is empty.
// Loop goroutine only.
func (h *Host) top() *stackEntry {
	if len(h.stack) == 0 {
		return nil
	}

	return &h.stack[len(h.stack)-1]
}

// lookupFactory reads the registry under the lock; registrations may still
// arrive from other goroutines during early boot.
func (h *Host) lookupFactory(name string) (Factory, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	factory, ok := h.factories[name]

	return factory, ok
}

func (h *Host) lookupAction(action string) (ActionHandlerFunc, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	handler, ok := h.actions[action]

	return handler, ok
}

// launch opens the named screen on top of the back stack. The current top,
// if any, is paused and stopped first; the destination then runs through
// create, start and resume with the launch params delivered at create.
func (h *Host) launch(ctx context.Context, name string, params screen.Params) error {
	factory, ok := h.lookupFactory(name)
	if !ok {
		metrics.IncErrorCount(metrics.ComponentHostLoop, "main")

		return fmt.Errorf("%w: no factory registered for %q", ErrUnknownScreen, name)
	}

	if current := h.top(); current != nil {
		if err := current.inst.Pause(ctx); err != nil {
			return fmt.Errorf("failed to pause %s before launch: %w", current.inst.Name(), err)
		}

		if err := current.inst.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop %s before launch: %w", current.inst.Name(), err)
		}
	}

	hooks := factory()
	inst := screen.NewInstance(screen.InstanceConfig{
		Name:     name,
		Surface:  h.surface,
		Delegate: hooks.Delegate,
		Buttons:  hooks.Buttons,
		Labels:   hooks.Labels,
		Params:   params,
	})

	h.logger.Infof("Launching screen %s as instance %s", name, inst.ID())

	if err := h.bringUp(ctx, inst, nil); err != nil {
		return err
	}

	h.stack = append(h.stack, stackEntry{inst: inst, params: params})

	return nil
}

// finish closes the top screen: pause, stop, destroy, pop. The screen below
// re-enters through the stopped-to-started loop. Finishing the last screen
// reports exit so the loop can shut down.
func (h *Host) finish(ctx context.Context) (exit bool, err error) {
	current := h.top()
	if current == nil {
		return true, nil
	}

	h.logger.Infof("Finishing screen %s", current.inst.Name())

	if err := h.tearDown(ctx, current.inst); err != nil {
		return false, err
	}

	h.stack = h.stack[:len(h.stack)-1]

	below := h.top()
	if below == nil {
		h.logger.Infof("Back stack is empty, shutting down")

		return true, nil
	}

	if err := below.inst.Start(ctx); err != nil {
		return false, fmt.Errorf("failed to restart %s: %w", below.inst.Name(), err)
	}

	if err := below.inst.Resume(ctx); err != nil {
		return false, fmt.Errorf("failed to resume %s: %w", below.inst.Name(), err)
	}

	return false, nil
}

// recreate tears the top screen down through a state save and rebuilds a
// fresh instance of the same kind from the saved state, the way the mobile
// platform handles a configuration change. The save runs after pause, the
// platform's ordering: a label-showing screen therefore saves its paused
// label, while a content screen's text is untouched by pause and round-trips
// exactly. The saved state crosses the destroy/recreate boundary in
// serialized form; nothing of the old instance survives.
func (h *Host) recreate(ctx context.Context) error {
	current := h.top()
	if current == nil {
		h.logger.Debugf("Recreate requested with an empty stack, ignoring")

		return nil
	}

	name := current.inst.Name()

	factory, ok := h.lookupFactory(name)
	if !ok {
		return fmt.Errorf("%w: no factory registered for %q", ErrUnknownScreen, name)
	}

	h.logger.Infof("Recreating screen %s", name)

	if err := current.inst.Pause(ctx); err != nil {
		return fmt.Errorf("failed to pause %s for recreate: %w", name, err)
	}

	saved, err := current.inst.SaveSnapshot()
	if err != nil {
		return fmt.Errorf("failed to save state of %s: %w", name, err)
	}

	data, err := snapshot.Encode(saved)
	if err != nil {
		return fmt.Errorf("failed to encode saved state of %s: %w", name, err)
	}
	h.savedStates[name] = data

	if err := current.inst.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop %s for recreate: %w", name, err)
	}

	if err := current.inst.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy %s for recreate: %w", name, err)
	}

	// The old instance is gone. Everything from here on runs against a
	// fresh one, fed from the serialized state alone.
	prior, err := snapshot.Decode(h.savedStates[name])
	if err != nil {
		// Never fatal: a corrupt handoff degrades to a default launch.
		h.logger.Warnf("Saved state of %s is unreadable, recreating fresh: %v", name, err)
		prior = nil
	}
	delete(h.savedStates, name)

	hooks := factory()
	inst := screen.NewInstance(screen.InstanceConfig{
		Name:     name,
		Surface:  h.surface,
		Delegate: hooks.Delegate,
		Buttons:  hooks.Buttons,
		Labels:   hooks.Labels,
		Params:   current.params,
	})

	if err := h.bringUp(ctx, inst, prior); err != nil {
		return err
	}

	current.inst = inst

	return nil
}

// bringUp drives a fresh instance to resumed. prior is nil on a first
// launch. On recreation the restore runs twice, matching the platform this
// models: once inside Create and once after Start; last-write-wins makes
// the second application idempotent.
func (h *Host) bringUp(ctx context.Context, inst *screen.Instance, prior snapshot.Snapshot) error {
	if err := inst.Create(ctx, prior); err != nil {
		return fmt.Errorf("failed to create %s: %w", inst.Name(), err)
	}

	if err := inst.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s: %w", inst.Name(), err)
	}

	if prior != nil {
		inst.RestoreSnapshot(prior)
	}

	if err := inst.Resume(ctx); err != nil {
		return fmt.Errorf("failed to resume %s: %w", inst.Name(), err)
	}

	inst.PrintState()

	return nil
}

// tearDown walks an instance from wherever it is down to destroyed.
func (h *Host) tearDown(ctx context.Context, inst *screen.Instance) error {
	if inst.CurrentState() == screen.StateResumed {
		if err := inst.Pause(ctx); err != nil {
			return fmt.Errorf("failed to pause %s: %w", inst.Name(), err)
		}
	}

	if inst.CurrentState() == screen.StatePaused {
		if err := inst.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop %s: %w", inst.Name(), err)
		}
	}

	if err := inst.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy %s: %w", inst.Name(), err)
	}

	return nil
}

// press routes a button press to the top screen. Presses with no screen to
// receive them are dropped, not queued.
func (h *Host) press(ctx context.Context, button string) {
	current := h.top()
	if current == nil {
		h.logger.Debugf("Dropping press %q, back stack is empty", button)

		return
	}

	if !current.inst.Press(ctx, button) {
		h.logger.Debugf("Press %q not delivered to %s", button, current.inst.Name())
	}
}

// runAction resolves an action message against the handler registry. A
// message no handler declares support for is counted and logged; the report
// to the error tracker is debounced per action so a stuck button does not
// flood it. The sender is never informed either way.
func (h *Host) runAction(ctx context.Context, msg intent.Message) {
	handler, ok := h.lookupAction(msg.Action)
	if !ok {
		metrics.RecordIntentUnresolved(msg.Action)
		h.logger.Warnf("No handler declares support for %s", msg)

		if _, reported := h.unresolvedReports.Load(msg.Action); !reported {
			h.unresolvedReports.Set(msg.Action, time.Now())
			sentry.ReportIntentWarning(h.logger, msg.Action, "resolve",
				fmt.Errorf("%w: %s", ErrNoHandler, msg))
		}

		return
	}

	if err := handler(ctx, msg); err != nil {
		metrics.IncErrorCount(metrics.ComponentHostLoop, "main")
		sentry.ReportIntentError(h.logger, msg.Action, "handle",
			fmt.Errorf("handler for %s failed: %w", msg, err))
	}
}
