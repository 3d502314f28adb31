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
	// DefaultConfigPath is where the host looks for its configuration
	// when no path is given on the command line.
	DefaultConfigPath = "/data/config.yaml"

	// ConfigPathEnvVar overrides DefaultConfigPath when set.
	ConfigPathEnvVar = "PALCO_CONFIG_PATH"

	// SupportedConfigVersion is the config schema constraint the manager
	// accepts. Documents outside this range fail at boot.
	SupportedConfigVersion = "^1.0.0"

	// DefaultConfigVersion is written into freshly created config files and
	// assumed for files that carry no version field.
	DefaultConfigVersion = "1.0.0"

	// DefaultConfigPollInterval is how often the host re-hashes the config
	// file to detect a configuration change. A change recreates the current
	// screen, the same way a mobile platform recreates on rotation.
	DefaultConfigPollInterval = 2 * time.Second
)
