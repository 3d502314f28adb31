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

package metrics

import (
	"errors"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/palco-runtime/palco/pkg/logger"
	"github.com/palco-runtime/palco/pkg/sentry"
)

const (
	// Component Labels.
	ComponentHostLoop = "host_loop"
	// Instances.
	ComponentScreenInstance = "screen_instance"
	// Dispatch.
	ComponentIntentDispatcher = "intent_dispatcher"
	// Configuration.
	ComponentConfigManager = "config_manager"
)

var (
	// Namespace and subsystem for all metrics.
	namespace = "palco"
	subsystem = "core"

	// Error counters.
	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors encountered by component",
		},
		[]string{"component", "instance"},
	)

	// Command timing.
	commandTime = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "command_duration_milliseconds",
			Help:      "Time taken to process one host command (in milliseconds)",
			Objectives: map[float64]float64{
				0.5:  0.01, // 50th percentile with 1% error
				0.9:  0.01, // 90th percentile with 1% error
				0.95: 0.01, // 95th percentile with 1% error
				0.99: 0.01, // 99th percentile with 1% error
			},
		},
		[]string{"command"},
	)

	// Screen state metrics.
	screenTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "screen_transitions_total",
			Help:      "Total number of lifecycle transitions by screen and event",
		},
		[]string{"screen", "event"},
	)

	screenCurrentState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "screen_current_state",
			Help:      "Current lifecycle state of the screen (0=Initialized, 1=Created, 2=Started, 3=Resumed, 4=Paused, 5=Stopped, 6=Destroyed, -1=Unknown)",
		},
		[]string{"screen"},
	)

	// Intent metrics.
	intentsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "intents_dispatched_total",
			Help:      "Total number of navigation messages handed to the resolver by kind",
		},
		[]string{"kind"},
	)

	intentsUnresolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "intents_unresolved_total",
			Help:      "Total number of action messages no handler declared support for",
		},
		[]string{"action"},
	)

	// Snapshot metrics.
	snapshotSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_saves_total",
			Help:      "Total number of snapshot captures by screen",
		},
		[]string{"screen"},
	)

	snapshotRestores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "snapshot_restores_total",
			Help:      "Total number of snapshot restores by screen",
		},
		[]string{"screen"},
	)
)

// DebugProvider provides host introspection data for the debug endpoint.
// Implementations should return a JSON-serializable view of the screen stack.
type DebugProvider interface {
	GetDebugInfo() interface{}
}

// debugRegistry holds registered debug providers.
var debugRegistry struct {
	providers map[string]DebugProvider
	mu        sync.RWMutex
}

// RegisterDebugProvider registers a debug provider for the /debug/screens endpoint.
// Call this after creating a host to expose its introspection data.
func RegisterDebugProvider(name string, provider DebugProvider) {
	debugRegistry.mu.Lock()
	defer debugRegistry.mu.Unlock()

	if debugRegistry.providers == nil {
		debugRegistry.providers = make(map[string]DebugProvider)
	}

	debugRegistry.providers[name] = provider
}

// UnregisterDebugProvider removes a debug provider from the registry.
// Call this when shutting down a host.
func UnregisterDebugProvider(name string) {
	debugRegistry.mu.Lock()
	defer debugRegistry.mu.Unlock()

	delete(debugRegistry.providers, name)
}

// handleScreensDebug handles the /debug/screens endpoint.
func handleScreensDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)

		return
	}

	debugRegistry.mu.RLock()
	defer debugRegistry.mu.RUnlock()

	if len(debugRegistry.providers) == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"no_providers_registered","message":"No hosts are registered for debugging"}`))

		return
	}

	response := make(map[string]interface{}, len(debugRegistry.providers))
	for name, provider := range debugRegistry.providers {
		response[name] = provider.GetDebugInfo()
	}

	w.Header().Set("Content-Type", "application/json")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(response); err != nil {
		http.Error(w, "Failed to encode debug info", http.StatusInternalServerError)
	}
}

// SetupMetricsEndpoint starts an HTTP server to expose metrics
// This should be called once at application startup.
func SetupMetricsEndpoint(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/screens", handleScreensDebug)

	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.ReportIssue(err, sentry.IssueTypeFatal, logger.For("metrics"))
		}
	}()

	return server
}

// printDetailedStackTrace prints a detailed stack trace with more information.
func printDetailedStackTrace() {
	// Get stack trace for all goroutines with a large buffer
	buf := make([]byte, 1024*1024) // Allocate 1MB buffer
	n := runtime.Stack(buf, true)

	logger.For("stacktrace").Debugf("=== DETAILED STACK TRACE ===\n%s", string(buf[:n]))
}

// IncErrorCountAndLog increments the error counter for a component and logs a debug message if a logger is provided.
func IncErrorCountAndLog(component, instance string, err error, logger *zap.SugaredLogger) {
	IncErrorCount(component, instance)

	if logger != nil {
		printDetailedStackTrace()
		logger.Debugf("Component %s instance %s failed: %v", component, instance, err)
	}
}

// IncErrorCount increments the error counter for a component.
func IncErrorCount(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Inc()
}

// InitErrorCounter initializes the error counter for a component.
func InitErrorCounter(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Add(0)
}

// ObserveCommandTime records the time taken to process one host command.
func ObserveCommandTime(command string, duration time.Duration) {
	commandTime.WithLabelValues(command).Observe(float64(duration.Milliseconds()))
}

// RecordTransition counts a lifecycle transition and updates the state gauge.
func RecordTransition(screen, event, newState string) {
	screenTransitions.WithLabelValues(screen, event).Inc()
	screenCurrentState.WithLabelValues(screen).Set(getStateValue(newState))
}

// RecordIntentDispatched counts a navigation message handed to the resolver.
func RecordIntentDispatched(kind string) {
	intentsDispatched.WithLabelValues(kind).Inc()
}

// RecordIntentUnresolved counts an action message that found no handler.
func RecordIntentUnresolved(action string) {
	intentsUnresolved.WithLabelValues(action).Inc()
}

// RecordSnapshotSave counts a snapshot capture.
func RecordSnapshotSave(screen string) {
	snapshotSaves.WithLabelValues(screen).Inc()
}

// RecordSnapshotRestore counts a snapshot restore.
func RecordSnapshotRestore(screen string) {
	snapshotRestores.WithLabelValues(screen).Inc()
}

// getStateValue converts a lifecycle state string to a numeric value for the metric.
func getStateValue(state string) float64 {
	switch state {
	case "initialized":
		return 0
	case "created":
		return 1
	case "started":
		return 2
	case "resumed":
		return 3
	case "paused":
		return 4
	case "stopped":
		return 5
	case "destroyed":
		return 6
	default:
		return -1 // Unknown state
	}
}
