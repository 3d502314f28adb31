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

package constants

import "time"

const (
	// DefaultMetricsAddress is where the metrics endpoint listens when the
	// config does not say otherwise.
	DefaultMetricsAddress = ":8081"

	// CommandQueueSize bounds the host command queue. Commands are enqueued
	// by user input and the resolver and drained by the single host
	// goroutine; the queue only fills when that goroutine is wedged.
	CommandQueueSize = 64

	// DefaultShutdownTimeout is the grace period for the metrics server and
	// the host loop to drain on exit.
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultHostName is the default name for a host.
	DefaultHostName = "Core"

	// DefaultInitialScreen is the screen launched at boot when the config
	// does not name one.
	DefaultInitialScreen = "Main"

	// UnresolvedReportWindow is the per-action debounce window for reporting
	// unresolved action messages to the crash reporter. Repeats inside the
	// window are counted in metrics but not re-reported.
	UnresolvedReportWindow = 2 * time.Minute
)
