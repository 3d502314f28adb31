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

const (
	// DefaultAppVersion is the version reported by builds that were not
	// stamped via ldflags. Crash reporting stays disabled for it.
	DefaultAppVersion = "0.0.0-dev"

	// DefaultDevelopmentEnvironment is the crash reporter environment used
	// for prerelease builds.
	DefaultDevelopmentEnvironment = "development"

	// DefaultProductionEnvironment is the crash reporter environment used
	// for tagged release builds.
	DefaultProductionEnvironment = "production"

	// SentryDSNEnvVar names the environment variable carrying the Sentry DSN.
	// Reporting is disabled when it is unset.
	SentryDSNEnvVar = "PALCO_SENTRY_DSN"
)
