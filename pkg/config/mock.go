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
	"sync"
	"time"
)

// MockConfigManager is a mock implementation of ConfigManager for testing
type MockConfigManager struct {
	GetConfigCalled bool
	Config          FullConfig
	ConfigError     error
	Hash            uint64
	HashError       error
	ConfigDelay     time.Duration

	mutexReadOrWrite sync.Mutex
}

var _ ConfigManager = (*MockConfigManager)(nil)

// NewMockConfigManager creates a new MockConfigManager serving the default
// config under hash 1.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		Config: DefaultConfig(),
		Hash:   1,
	}
}

// GetConfig implements the ConfigManager interface
func (m *MockConfigManager) GetConfig(ctx context.Context) (FullConfig, error) {
	m.mutexReadOrWrite.Lock()
	defer m.mutexReadOrWrite.Unlock()
	m.GetConfigCalled = true

	if m.ConfigDelay > 0 {
		select {
		case <-time.After(m.ConfigDelay):
			// Delay completed
		case <-ctx.Done():
			return FullConfig{}, ctx.Err()
		}
	}

	return m.Config, m.ConfigError
}

// ConfigHash implements the ConfigManager interface
func (m *MockConfigManager) ConfigHash(ctx context.Context) (uint64, error) {
	m.mutexReadOrWrite.Lock()
	defer m.mutexReadOrWrite.Unlock()

	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	return m.Hash, m.HashError
}

// SetConfig replaces the served config and bumps the hash so pollers see a
// change.
func (m *MockConfigManager) SetConfig(config FullConfig) {
	m.mutexReadOrWrite.Lock()
	defer m.mutexReadOrWrite.Unlock()
	m.Config = config
	m.Hash++
}

// BumpHash changes the served hash without touching the config, simulating
// an edit that does not parse.
func (m *MockConfigManager) BumpHash() {
	m.mutexReadOrWrite.Lock()
	defer m.mutexReadOrWrite.Unlock()
	m.Hash++
}
