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

package screen

import (
	"github.com/google/uuid"

	internalfsm "github.com/palco-runtime/palco/internal/fsm"
	"github.com/palco-runtime/palco/pkg/logger"
	"github.com/palco-runtime/palco/pkg/metrics"
)

// NewInstance creates a screen instance in the initialized state. The
// instance does nothing until the host drives Create.
func NewInstance(cfg InstanceConfig) *Instance {
	log := cfg.Logger
	if log == nil {
		log = logger.For(cfg.Name)
	}

	id := uuid.New().String()

	instance := &Instance{
		machine:  internalfsm.NewMachine(id, cfg.Name, log),
		surface:  cfg.Surface,
		delegate: cfg.Delegate,
		buttons:  cfg.Buttons,
		labels:   cfg.Labels,
		params:   cfg.Params,
		logger:   log,
	}

	instance.registerCallbacks()

	metrics.InitErrorCounter(metrics.ComponentScreenInstance, cfg.Name)

	return instance
}

// PrintState logs the current state and visible text at debug level.
func (s *Instance) PrintState() {
	s.logger.Debugf("Screen %s (%s): state=%s text=%q",
		s.Name(), s.ID(), s.CurrentState(), s.VisibleText())
}
