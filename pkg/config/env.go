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
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/palco-runtime/palco/pkg/env"
	"github.com/palco-runtime/palco/pkg/sentry"
)

// LoadConfigWithEnvOverrides loads the config file and applies environment
// variable overrides. It is used during startup to handle configuration from
// both the persistent config file and variables passed via docker -e flags.
//
// Order of precedence (highest to lowest):
//  1. Environment variables (PALCO_INITIAL_SCREEN, PALCO_METRICS_ADDRESS,
//     PALCO_POLL_INTERVAL)
//  2. Existing config file values
//  3. Default values
//
// Important: this function has side effects! The resulting configuration,
// overrides included, is written back to the config file, so environment
// variables cause permanent changes that become the baseline on subsequent
// runs.
func LoadConfigWithEnvOverrides(ctx context.Context, configManager *FileConfigManager, log *zap.SugaredLogger) (FullConfig, error) {
	// Collect environment variables that can override config values
	initialScreen, err := env.GetAsString("PALCO_INITIAL_SCREEN", false, "")
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeWarning, log, "Failed to get PALCO_INITIAL_SCREEN: %v", err)
	}

	metricsAddress, err := env.GetAsString("PALCO_METRICS_ADDRESS", false, "")
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeWarning, log, "Failed to get PALCO_METRICS_ADDRESS: %v", err)
	}

	pollInterval, err := env.GetAsDuration("PALCO_POLL_INTERVAL", false, 0)
	if err != nil {
		sentry.ReportIssuef(sentry.IssueTypeWarning, log, "Failed to get PALCO_POLL_INTERVAL: %v", err)
	}

	// Build the config override structure from environment variables
	configOverride := FullConfig{
		Host: HostConfig{
			InitialScreen: initialScreen,
		},
		Metrics: MetricsConfig{
			Address: metricsAddress,
		},
	}

	// An unset duration leaves the file's value alone; setting the variable
	// to 0 is an explicit way to disable the change poll.
	if pollInterval > 0 || os.Getenv("PALCO_POLL_INTERVAL") != "" {
		ms := int(pollInterval / time.Millisecond)
		configOverride.Host.PollIntervalMs = &ms
	}

	// Apply the environment overrides to the config
	configData, err := configManager.GetConfigWithOverwritesOrCreateNew(ctx, configOverride)
	if err != nil {
		return FullConfig{}, fmt.Errorf("failed to load config with environment overrides: %w", err)
	}

	return configData, nil
}
