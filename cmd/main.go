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

package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/palco-runtime/palco/pkg/config"
	"github.com/palco-runtime/palco/pkg/constants"
	"github.com/palco-runtime/palco/pkg/env"
	"github.com/palco-runtime/palco/pkg/host"
	"github.com/palco-runtime/palco/pkg/intent"
	"github.com/palco-runtime/palco/pkg/logger"
	"github.com/palco-runtime/palco/pkg/metrics"
	"github.com/palco-runtime/palco/pkg/screens"
	"github.com/palco-runtime/palco/pkg/sentry"
)

// version is stamped via ldflags on release builds. The default keeps crash
// reporting disabled for local runs.
var version = constants.DefaultAppVersion

func main() {
	// Initialize the global logger first thing
	logger.Initialize()
	defer func() { _ = logger.Sync() }()

	// Initialize Sentry. PALCO_SENTRY_DEBOUNCE=false turns the per-severity
	// debounce off, which support uses to see every report during triage.
	debounce, err := env.GetAsBool("PALCO_SENTRY_DEBOUNCE", false, true)
	if err != nil {
		debounce = true
	}
	sentry.InitSentry(version, debounce)

	log := logger.For(logger.ComponentCore)
	log.Infof("Starting palco %s...", version)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load or create the configuration. A missing file is written out with
	// defaults so edits to it can drive recreation later.
	configManager := config.NewFileConfigManager()

	configData, err := config.LoadConfigWithEnvOverrides(ctx, configManager, log)
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "Failed to load config: %v", err)
		os.Exit(1)
	}

	// Start the metrics server
	server := metrics.SetupMetricsEndpoint(configData.Metrics.Address)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			sentry.ReportIssuef(sentry.IssueTypeError, log, "Failed to shutdown metrics server: %v", err)
		}
	}()

	// Wire the host, the demo screens and the one external capability the
	// demo declares support for.
	h := host.NewHost(configData, configManager, consoleSurface{logger.For(logger.ComponentScreen)})
	dispatcher := intent.NewDispatcher(h)
	screens.Register(h, dispatcher)

	dialLog := logger.For(logger.ComponentIntent)
	h.RegisterAction(screens.ActionDial, func(ctx context.Context, msg intent.Message) error {
		dialLog.Infof("Dialing %s", msg.Data)

		return nil
	})

	// Start the system snapshot logger
	go systemSnapshotLogger(ctx, h)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return h.Run(gctx)
	})

	g.Go(func() error {
		readCommands(gctx, h, log)

		return nil
	})

	if err := g.Wait(); err != nil {
		sentry.ReportIssuef(sentry.IssueTypeFatal, log, "Host loop failed: %v", err)
	}

	log.Info("palco completed")
}

// consoleSurface is the presentation stand-in: every visible-text write
// becomes one log line.
type consoleSurface struct {
	log *zap.SugaredLogger
}

func (c consoleSurface) SetText(text string) {
	c.log.Infof("[screen] %s", text)
}

// readCommands feeds stdin lines into host commands until EOF or quit.
// Scanning happens on its own goroutine so shutdown never blocks on a read.
func readCommands(ctx context.Context, h *host.Host, log *zap.SugaredLogger) {
	lines := make(chan string)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}

			switch line {
			case "open":
				h.Press(screens.ButtonOpenSecond)
			case "dial":
				h.Press(screens.ButtonDial)
			case "back":
				h.Finish()
			case "recreate":
				h.Recreate()
			case "state":
				logSnapshot(h, log)
			case "quit":
				h.Quit()

				return
			case "":
			default:
				log.Infof("Unknown command %q (try open, dial, back, recreate, state, quit)", line)
			}
		}
	}
}

// systemSnapshotLogger logs the system snapshot periodically. It reads only
// deep copies, so it never races the host loop.
func systemSnapshotLogger(ctx context.Context, h *host.Host) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	log := logger.For("SnapshotLogger")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logSnapshot(h, log)
		}
	}
}

func logSnapshot(h *host.Host, log *zap.SugaredLogger) {
	snap := h.GetSystemSnapshot()
	log.Infof("=== System Snapshot (Tick %d) - %d screen(s) ===", snap.Tick, len(snap.Stack))

	for i := len(snap.Stack) - 1; i >= 0; i-- {
		entry := snap.Stack[i]
		marker := "  "
		if i == len(snap.Stack)-1 {
			marker = "▶ "
		}

		log.Infof("%s%s (%s): state=%s text=%q", marker, entry.Name, entry.ID, entry.State, entry.VisibleText)
	}
}
