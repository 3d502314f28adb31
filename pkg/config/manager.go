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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/palco-runtime/palco/pkg/constants"
	"github.com/palco-runtime/palco/pkg/env"
	"github.com/palco-runtime/palco/pkg/logger"
)

// ErrVersionMismatch is returned when the config file declares a schema
// version outside the supported range.
var ErrVersionMismatch = errors.New("unsupported config version")

// ConfigManager is the interface for config management
type ConfigManager interface {
	// GetConfig returns the current config, always reading fresh from disk
	GetConfig(ctx context.Context) (FullConfig, error)
	// ConfigHash returns a hash over the raw config file bytes, for cheap
	// change detection without parsing
	ConfigHash(ctx context.Context) (uint64, error)
}

// FileConfigManager implements the ConfigManager interface by reading from a file
type FileConfigManager struct {
	// configPath is the path to the config file
	configPath string

	// logger is the logger for the config manager
	logger *zap.SugaredLogger

	// mutexAtomicUpdate for full cycle read and write access (atomic update) to the config file
	// all writes to the config need to happen under this mutex -> writeConfig is therefore not exposed
	mutexAtomicUpdate sync.Mutex

	// simple mutex for read access or write access to the config file
	// it allows multiple GetConfig calls to happen in parallel while
	// preventing reads from overlapping a write
	mutexReadOrWrite sync.RWMutex
}

var _ ConfigManager = (*FileConfigManager)(nil)

// NewFileConfigManager creates a new FileConfigManager reading from the
// default path, or from PALCO_CONFIG_PATH when that is set.
func NewFileConfigManager() *FileConfigManager {
	configPath, err := env.GetAsString(constants.ConfigPathEnvVar, false, constants.DefaultConfigPath)
	if err != nil {
		configPath = constants.DefaultConfigPath
	}

	return &FileConfigManager{
		configPath: configPath,
		logger:     logger.For(logger.ComponentConfigManager),
	}
}

// WithConfigPath allows setting a custom config file path
// useful for testing or advanced use cases
func (m *FileConfigManager) WithConfigPath(configPath string) *FileConfigManager {
	m.configPath = configPath
	return m
}

// GetConfigWithOverwritesOrCreateNew gets the config or creates a new one with the given overrides.
// If the config file does not exist, it is created with default values and then
// overwritten with the given overrides. The result is persisted back to disk.
func (m *FileConfigManager) GetConfigWithOverwritesOrCreateNew(ctx context.Context, configOverride FullConfig) (FullConfig, error) {
	m.mutexAtomicUpdate.Lock()
	defer m.mutexAtomicUpdate.Unlock()

	// Check if context is already cancelled
	if ctx.Err() != nil {
		return FullConfig{}, ctx.Err()
	}

	config := DefaultConfig()

	_, err := os.Stat(m.configPath)
	switch {
	case err != nil && !os.IsNotExist(err):
		m.logger.Warnf("failed to check if config file exists in %s: %v", m.configPath, err)
	case err == nil:
		config, err = m.GetConfig(ctx)
		if err != nil {
			return FullConfig{}, fmt.Errorf("failed to get config that exists: %w", err)
		}
	}

	// Apply overrides
	if configOverride.Host.InitialScreen != "" {
		config.Host.InitialScreen = configOverride.Host.InitialScreen
	}

	if configOverride.Host.PollIntervalMs != nil {
		config.Host.PollIntervalMs = configOverride.Host.PollIntervalMs
	}

	if configOverride.Metrics.Address != "" {
		config.Metrics.Address = configOverride.Metrics.Address
	}

	if configOverride.Logging.Level != "" {
		config.Logging.Level = configOverride.Logging.Level
	}

	if configOverride.Logging.Format != "" {
		config.Logging.Format = configOverride.Logging.Format
	}

	// Persist the updated config
	if err := m.writeConfig(ctx, config); err != nil {
		return FullConfig{}, fmt.Errorf("failed to write new config: %w", err)
	}

	return config, nil
}

// GetConfig returns the current config, always reading fresh from disk
func (m *FileConfigManager) GetConfig(ctx context.Context) (FullConfig, error) {
	// we use a read lock here, because we only read the config file
	m.mutexReadOrWrite.RLock()
	defer m.mutexReadOrWrite.RUnlock()

	// Check if context is already cancelled
	if ctx.Err() != nil {
		return FullConfig{}, ctx.Err()
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return FullConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse the YAML
	var config FullConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return FullConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// An interrupted write or a filesystem error can leave an empty file
	// behind. Surface that as an error so callers keep their last good
	// config and retry on the next poll.
	if reflect.DeepEqual(config, FullConfig{}) {
		return FullConfig{}, fmt.Errorf("config file is empty: %s", m.configPath)
	}

	applyDefaults(&config)

	if err := validateVersion(config); err != nil {
		return FullConfig{}, err
	}

	return config, nil
}

// ConfigHash returns a hash over the raw bytes of the config file. The host
// polls it between commands to detect edits.
func (m *FileConfigManager) ConfigHash(ctx context.Context) (uint64, error) {
	m.mutexReadOrWrite.RLock()
	defer m.mutexReadOrWrite.RUnlock()

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read config file: %w", err)
	}

	return xxhash.Sum64(data), nil
}

// writeConfig writes the config to the file
// it should not be exposed or used outside of the config manager, due to potential race conditions
func (m *FileConfigManager) writeConfig(ctx context.Context, config FullConfig) error {
	// we use a write lock here, because we write the config file
	m.mutexReadOrWrite.Lock()
	defer m.mutexReadOrWrite.Unlock()

	// Check if context is already cancelled
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Create the directory if it doesn't exist
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal the config to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write the file
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.logger.Infof("Successfully wrote config to %s", m.configPath)
	return nil
}

// applyDefaults fills unset fields so the rest of the program never has to
// re-check for zero values.
func applyDefaults(config *FullConfig) {
	if config.Version == "" {
		config.Version = constants.DefaultConfigVersion
	}
	if config.Host.InitialScreen == "" {
		config.Host.InitialScreen = constants.DefaultInitialScreen
	}
	if config.Metrics.Address == "" {
		config.Metrics.Address = constants.DefaultMetricsAddress
	}
}

// validateVersion gates the declared schema version against the supported
// constraint.
func validateVersion(config FullConfig) error {
	version, err := semver.NewVersion(config.Version)
	if err != nil {
		return fmt.Errorf("failed to parse config version %q: %w", config.Version, err)
	}

	constraint, err := semver.NewConstraint(constants.SupportedConfigVersion)
	if err != nil {
		return fmt.Errorf("failed to parse supported version constraint: %w", err)
	}

	if !constraint.Check(version) {
		return fmt.Errorf("%w: config declares %s, supported is %s",
			ErrVersionMismatch, config.Version, constants.SupportedConfigVersion)
	}

	return nil
}
