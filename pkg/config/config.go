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

package config

import (
	"reflect"
	"time"

	"github.com/tiendc/go-deepcopy"

	"github.com/palco-runtime/palco/pkg/constants"
)

type FullConfig struct {
	Version string        `yaml:"version"`           // Schema version, gated against the supported constraint at load
	Host    HostConfig    `yaml:"host"`              // Host runtime config, requires restart to take effect
	Metrics MetricsConfig `yaml:"metrics,omitempty"` // Metrics endpoint config
	Logging LoggingConfig `yaml:"logging,omitempty"` // Logging config, falls back to environment variables when empty
}

type HostConfig struct {
	InitialScreen  string `yaml:"initialScreen"`            // Screen launched at boot
	PollIntervalMs *int   `yaml:"pollIntervalMs,omitempty"` // Config change poll interval in milliseconds, unset means default, 0 disables the poll
}

type MetricsConfig struct {
	Address string `yaml:"address,omitempty"` // Listen address for the metrics endpoint
}

type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error or production
	Format string `yaml:"format,omitempty"` // console or json
}

// DefaultConfig is the config written to disk when no file exists yet.
func DefaultConfig() FullConfig {
	return FullConfig{
		Version: constants.DefaultConfigVersion,
		Host: HostConfig{
			InitialScreen: constants.DefaultInitialScreen,
		},
		Metrics: MetricsConfig{
			Address: constants.DefaultMetricsAddress,
		},
	}
}

// PollInterval returns the config poll interval as a duration. An unset
// field falls back to the default; an explicit zero or negative value
// returns 0, which disables the host's change poll entirely.
func (c HostConfig) PollInterval() time.Duration {
	if c.PollIntervalMs == nil {
		return constants.DefaultConfigPollInterval
	}
	if *c.PollIntervalMs <= 0 {
		return 0
	}
	return time.Duration(*c.PollIntervalMs) * time.Millisecond
}

// Equal checks if two FullConfigs are equal
func (c FullConfig) Equal(other FullConfig) bool {
	return reflect.DeepEqual(c, other)
}

// Clone creates a deep copy of FullConfig
func (c FullConfig) Clone() FullConfig {
	var clone FullConfig
	deepcopy.Copy(&clone, &c)
	return clone
}
