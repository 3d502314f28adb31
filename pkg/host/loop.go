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

// Package host implements the runtime that drives screen lifecycles.
//
// This package is responsible for:
// - Keeping the registry of screen kinds and action handlers
// - Owning the back stack and sequencing every lifecycle transition on it
// - Executing the single-threaded command loop that drives the system
// - Resolving navigation messages submitted by the intent dispatcher
// - Polling the configuration for changes and recreating the top screen
// - Maintaining snapshots of system state for external consumers
//
// The single-goroutine design ensures deterministic behavior: commands are
// handled strictly in arrival order, and no two lifecycle operations ever
// overlap. Everything outside the loop observes the system through
// deep-copied snapshots.
package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/united-manufacturing-hub/expiremap/v2/pkg/expiremap"
	"go.uber.org/zap"

	"github.com/palco-runtime/palco/pkg/config"
	"github.com/palco-runtime/palco/pkg/constants"
	"github.com/palco-runtime/palco/pkg/intent"
	"github.com/palco-runtime/palco/pkg/logger"
	"github.com/palco-runtime/palco/pkg/metrics"
	"github.com/palco-runtime/palco/pkg/screen"
	"github.com/palco-runtime/palco/pkg/sentry"
)

// Host is the central orchestration component. It drives every screen
// instance through its lifecycle from a single goroutine, so callers enqueue
// commands and never touch instances directly.
type Host struct {
	name          string
	logger        *zap.SugaredLogger
	configManager config.ConfigManager
	surface       screen.Surface

	// mu guards the registries, which are written during setup and read by
	// the loop goroutine.
	mu        sync.RWMutex
	factories map[string]Factory
	actions   map[string]ActionHandlerFunc

	commands chan command

	// Loop-goroutine state. Never touched from outside Run.
	stack          []stackEntry
	savedStates    map[string][]byte
	currentConfig  config.FullConfig
	lastConfigHash uint64
	tick           uint64

	snapshotManager   *SnapshotManager
	unresolvedReports *expiremap.ExpireMap[string, time.Time]
}

var (
	_ intent.Resolver       = (*Host)(nil)
	_ metrics.DebugProvider = (*Host)(nil)
)

// NewHost creates a host with an empty registry. The caller registers screen
// kinds and action handlers, then calls Run.
func NewHost(cfg config.FullConfig, configManager config.ConfigManager, surface screen.Surface) *Host {
	// Get a component-specific logger
	log := logger.For(logger.ComponentHost)
	if log == nil {
		// If logger initialization failed somehow, create a no-op logger to avoid nil panics
		log = zap.NewNop().Sugar()
	}

	metrics.InitErrorCounter(metrics.ComponentHostLoop, "main")

	return &Host{
		name:            constants.DefaultHostName,
		logger:          log,
		configManager:   configManager,
		surface:         surface,
		factories:       make(map[string]Factory),
		actions:         make(map[string]ActionHandlerFunc),
		commands:        make(chan command, constants.CommandQueueSize),
		savedStates:     make(map[string][]byte),
		currentConfig:   cfg,
		snapshotManager: NewSnapshotManager(),
		unresolvedReports: expiremap.NewEx[string, time.Time](
			constants.UnresolvedReportWindow/4, constants.UnresolvedReportWindow),
	}
}

// Register adds a screen kind to the registry. Later registrations under
// the same name replace earlier ones.
func (h *Host) Register(name string, factory Factory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.factories[name] = factory
	h.logger.Infof("Registered screen kind %s", name)
}

// RegisterAction declares support for an abstract action.
func (h *Host) RegisterAction(action string, handler ActionHandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions[action] = handler
	h.logger.Infof("Registered action handler %s", action)
}

// Launch asks the host to open the named screen on top of the back stack.
func (h *Host) Launch(screenName string, extras intent.Extras) {
	h.enqueue(command{kind: cmdLaunch, destination: screenName, params: screen.Params(extras)})
}

// Finish asks the host to close the top screen. Closing the last screen
// ends the loop.
func (h *Host) Finish() {
	h.enqueue(command{kind: cmdFinish})
}

// Recreate asks the host to tear down and rebuild the top screen from its
// saved state, the way a device rotation would.
func (h *Host) Recreate() {
	h.enqueue(command{kind: cmdRecreate})
}

// Press routes a button press to the top screen.
func (h *Host) Press(button string) {
	h.enqueue(command{kind: cmdPress, button: button})
}

// Quit asks the host to tear the whole stack down and end the loop.
func (h *Host) Quit() {
	h.enqueue(command{kind: cmdQuit})
}

// Submit implements intent.Resolver. Messages become loop commands; whether
// they can be resolved is discovered when the command runs, never reported
// back to the sender.
func (h *Host) Submit(ctx context.Context, msg intent.Message) {
	switch msg.Kind {
	case intent.KindTargeted:
		h.enqueue(command{kind: cmdLaunch, destination: msg.Destination, params: screen.Params(msg.Extras)})
	case intent.KindAction:
		h.enqueue(command{kind: cmdAction, msg: msg})
	default:
		h.logger.Warnf("Dropping %s", msg)
	}
}

// enqueue hands a command to the loop goroutine without blocking. Button
// handlers run inside the loop and enqueue follow-up commands, so a blocking
// send here could deadlock the loop against itself.
func (h *Host) enqueue(cmd command) {
	select {
	case h.commands <- cmd:
	default:
		h.logger.Warnf("Command queue full, dropping %s command", cmd.kind)
		metrics.IncErrorCount(metrics.ComponentHostLoop, "queue")
	}
}

// Run executes the host loop until the context is cancelled or the back
// stack empties. It launches the initial screen, then handles commands
// strictly in arrival order, polling the config file for changes in
// between.
//
// Error handling patterns:
// - Deadline exceeded: log warning and continue (a single slow command must not kill the loop)
// - Context cancelled: clean shutdown with a full stack teardown
// - Other errors: report and continue, commands are user-driven and independent
func (h *Host) Run(ctx context.Context) error {
	metrics.RegisterDebugProvider(h.name, h)
	defer metrics.UnregisterDebugProvider(h.name)

	// Seed the config hash so the poll below only fires on actual edits.
	if hash, err := h.configManager.ConfigHash(ctx); err == nil {
		h.lastConfigHash = hash
	}

	if err := h.launch(ctx, h.currentConfig.Host.InitialScreen, nil); err != nil {
		return fmt.Errorf("failed to launch initial screen %s: %w", h.currentConfig.Host.InitialScreen, err)
	}
	h.updateSystemSnapshot()

	// A nil channel blocks forever, so a disabled poll simply never fires.
	var pollC <-chan time.Time
	if interval := h.currentConfig.Host.PollInterval(); interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		pollC = ticker.C
	} else {
		h.logger.Infof("Config polling disabled, edits will not recreate screens")
	}

	for {
		select {
		case <-ctx.Done():
			h.logger.Infof("Host loop cancelled")
			h.teardown()
			return nil

		case cmd := <-h.commands:
			exit, err := h.handleCommand(ctx, cmd)
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					// For timeouts, log warning but continue
					sentry.ReportIssuef(sentry.IssueTypeWarning, h.logger, "Host command %s timed out: %v", cmd.kind, err)
				} else if errors.Is(err, context.Canceled) {
					// For cancellation, exit the loop
					h.logger.Infof("Host loop cancelled")
					h.teardown()
					return nil
				} else {
					metrics.IncErrorCountAndLog(metrics.ComponentHostLoop, "main", err, h.logger)
					sentry.ReportIssuef(sentry.IssueTypeError, h.logger, "Host command %s failed: %v", cmd.kind, err)
				}
			}

			h.updateSystemSnapshot()

			if exit {
				h.teardown()
				return nil
			}

		case <-pollC:
			h.pollConfig(ctx)
		}
	}
}

// handleCommand dispatches one command and measures its execution time.
func (h *Host) handleCommand(ctx context.Context, cmd command) (exit bool, err error) {
	h.tick++

	start := time.Now()
	defer func() {
		metrics.ObserveCommandTime(string(cmd.kind), time.Since(start))
	}()

	switch cmd.kind {
	case cmdLaunch:
		return false, h.launch(ctx, cmd.destination, cmd.params)
	case cmdFinish:
		return h.finish(ctx)
	case cmdRecreate:
		return false, h.recreate(ctx)
	case cmdPress:
		h.press(ctx, cmd.button)
		return false, nil
	case cmdAction:
		h.runAction(ctx, cmd.msg)
		return false, nil
	case cmdQuit:
		return true, nil
	default:
		return false, fmt.Errorf("unknown command kind %q", cmd.kind)
	}
}

// pollConfig re-hashes the config file and, when it changed, reloads it and
// recreates the top screen. A configuration change is handled like a device
// rotation: the screen is torn down and rebuilt from its saved state.
func (h *Host) pollConfig(ctx context.Context) {
	hash, err := h.configManager.ConfigHash(ctx)
	if err != nil {
		h.logger.Debugf("Config hash poll failed: %v", err)
		return
	}

	if hash == h.lastConfigHash {
		return
	}
	h.lastConfigHash = hash

	cfg, err := h.configManager.GetConfig(ctx)
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeWarning, h.logger,
			"Config changed but could not be loaded, keeping the last good one: %v", err)
		return
	}
	h.currentConfig = cfg

	h.logger.Infof("Configuration changed, recreating the top screen")
	if err := h.recreate(ctx); err != nil {
		metrics.IncErrorCountAndLog(metrics.ComponentHostLoop, "main", err, h.logger)
		sentry.ReportIssuef(sentry.IssueTypeError, h.logger, "Failed to recreate after config change: %v", err)
	}

	h.updateSystemSnapshot()
}

// teardown drains the back stack on shutdown. The run context may already
// be cancelled and unable to drive transitions, so teardown runs on its own
// deadline.
func (h *Host) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	for i := len(h.stack) - 1; i >= 0; i-- {
		inst := h.stack[i].inst

		// The top screen is resumed, everything below it is stopped.
		if inst.CurrentState() == screen.StateResumed {
			if err := inst.Pause(ctx); err != nil {
				sentry.ReportScreenError(h.logger, inst.ID(), inst.Name(), "pause", err)
			}
		}
		if inst.CurrentState() == screen.StatePaused {
			if err := inst.Stop(ctx); err != nil {
				sentry.ReportScreenError(h.logger, inst.ID(), inst.Name(), "stop", err)
			}
		}
		if err := inst.Destroy(ctx); err != nil {
			sentry.ReportScreenError(h.logger, inst.ID(), inst.Name(), "destroy", err)
		}
	}

	h.stack = nil
	h.updateSystemSnapshot()
	h.logger.Infof("Host loop stopped")
}

// GetSystemSnapshot returns a deep copy of the current system state.
// This is thread-safe and can be called from any goroutine.
func (h *Host) GetSystemSnapshot() SystemSnapshot {
	return h.snapshotManager.GetDeepCopySnapshot()
}

// GetDebugInfo implements metrics.DebugProvider for the /debug/screens
// endpoint.
func (h *Host) GetDebugInfo() interface{} {
	return h.GetSystemSnapshot()
}
