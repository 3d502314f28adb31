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

package intent

import (
	"context"

	"go.uber.org/zap"

	"github.com/palco-runtime/palco/pkg/logger"
	"github.com/palco-runtime/palco/pkg/metrics"
)

// Resolver accepts dispatched messages for asynchronous handling. The host
// implements it; tests substitute fakes.
type Resolver interface {
	// Submit hands a message over. Submit must not block on the message
	// being handled and never reports whether it could be resolved.
	Submit(ctx context.Context, msg Message)
}

// Dispatcher is the sending side of navigation. It validates nothing about
// the destination or action: whether anything can handle the message is the
// resolver's problem, discovered after the sender has already moved on.
type Dispatcher struct {
	resolver Resolver
	logger   *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher that submits to the given resolver.
func NewDispatcher(resolver Resolver) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		logger:   logger.For(logger.ComponentIntent),
	}
}

// SendTargeted dispatches a message to the named screen. It returns nothing:
// dispatch is fire-and-forget and an unknown destination is not the sender's
// concern.
func (d *Dispatcher) SendTargeted(ctx context.Context, destination string, extras Extras) {
	d.send(ctx, NewTargeted(destination, extras))
}

// SendAction dispatches an abstract action request, for example a dial
// request carrying a phone URI.
func (d *Dispatcher) SendAction(ctx context.Context, action string, data string) {
	d.send(ctx, NewAction(action, data))
}

func (d *Dispatcher) send(ctx context.Context, msg Message) {
	if d.resolver == nil {
		d.logger.Debugf("Dropping %s, no resolver attached", msg)
		return
	}

	d.logger.Infof("Dispatching %s", msg)
	metrics.RecordIntentDispatched(string(msg.Kind))
	d.resolver.Submit(ctx, msg)
}
