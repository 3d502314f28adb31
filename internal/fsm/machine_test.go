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

package fsm

import (
	"context"
	"testing"
	"time"

	"github.com/looplab/fsm"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestMachine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lifecycle Machine Suite")
}

var _ = Describe("Machine", func() {
	var (
		machine *Machine
		logger  *zap.Logger
		ctx     context.Context
	)

	BeforeEach(func() {
		logger = zaptest.NewLogger(GinkgoT())
		machine = NewMachine("test-machine", "Test", logger.Sugar())
		ctx = context.Background()
	})

	Context("when freshly constructed", func() {
		It("should start in the initialized state", func() {
			Expect(machine.Current()).To(Equal(StateInitialized))
			Expect(machine.IsDestroyed()).To(BeFalse())
		})

		It("should only be able to fire create", func() {
			Expect(machine.Can(EventCreate)).To(BeTrue())
			Expect(machine.Can(EventStart)).To(BeFalse())
			Expect(machine.Can(EventDestroy)).To(BeFalse())
		})
	})

	Context("when driven through the full lifecycle", func() {
		It("should follow the forward path state by state", func() {
			steps := []struct {
				event string
				state string
			}{
				{EventCreate, StateCreated},
				{EventStart, StateStarted},
				{EventResume, StateResumed},
				{EventPause, StatePaused},
				{EventStop, StateStopped},
				{EventDestroy, StateDestroyed},
			}

			for _, step := range steps {
				Expect(machine.SendEvent(ctx, step.event)).To(Succeed())
				Expect(machine.Current()).To(Equal(step.state))
			}

			Expect(machine.IsDestroyed()).To(BeTrue())
		})

		It("should allow the restart loop from stopped", func() {
			machine.SetState(StateStopped)

			Expect(machine.SendEvent(ctx, EventStart)).To(Succeed())
			Expect(machine.Current()).To(Equal(StateStarted))

			Expect(machine.SendEvent(ctx, EventResume)).To(Succeed())
			Expect(machine.Current()).To(Equal(StateResumed))
		})

		It("should allow the focus-regain loop from paused", func() {
			machine.SetState(StatePaused)

			Expect(machine.SendEvent(ctx, EventResume)).To(Succeed())
			Expect(machine.Current()).To(Equal(StateResumed))
		})

		It("should allow the pause/resume oscillation to repeat", func() {
			machine.SetState(StateResumed)

			for i := 0; i < 3; i++ {
				Expect(machine.SendEvent(ctx, EventPause)).To(Succeed())
				Expect(machine.SendEvent(ctx, EventResume)).To(Succeed())
			}

			Expect(machine.Current()).To(Equal(StateResumed))
		})
	})

	Context("when the host violates the ordering", func() {
		It("should reject skipping a transition", func() {
			err := machine.SendEvent(ctx, EventResume)

			Expect(err).To(MatchError(ErrInvalidTransition))
			Expect(machine.Current()).To(Equal(StateInitialized))
		})

		It("should reject destroy before stop", func() {
			machine.SetState(StateResumed)

			err := machine.SendEvent(ctx, EventDestroy)

			Expect(err).To(MatchError(ErrInvalidTransition))
			Expect(machine.Current()).To(Equal(StateResumed))
		})

		It("should reject any event once destroyed", func() {
			machine.SetState(StateDestroyed)

			for _, event := range []string{EventCreate, EventStart, EventResume, EventPause, EventStop, EventDestroy} {
				Expect(machine.SendEvent(ctx, event)).To(MatchError(ErrInvalidTransition))
			}

			Expect(machine.Current()).To(Equal(StateDestroyed))
		})
	})

	Context("when using SendEvent with different context states", func() {
		It("should reject events when context is already cancelled", func() {
			cancelledCtx, cancel := context.WithCancel(context.Background())
			cancel()

			err := machine.SendEvent(cancelledCtx, EventCreate)

			Expect(err).To(MatchError(context.Canceled))
			Expect(machine.Current()).To(Equal(StateInitialized))
		})

		It("should reject events when deadline is too close", func() {
			shortDeadline := time.Millisecond
			shortCtx, cancel := context.WithTimeout(context.Background(), shortDeadline)
			defer cancel()

			time.Sleep(shortDeadline / 2)

			err := machine.SendEvent(shortCtx, EventCreate)

			Expect(err).To(MatchError("context deadline exceeded"))
		})

		It("should accept events with sufficient deadline time remaining", func() {
			longCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			Expect(machine.SendEvent(longCtx, EventCreate)).To(Succeed())
			Expect(machine.Current()).To(Equal(StateCreated))
		})
	})

	Context("when callbacks are registered", func() {
		It("should invoke the enter callback for the destination state", func() {
			entered := make([]string, 0, 3)

			for _, state := range []string{StateCreated, StateStarted, StateResumed} {
				dst := state
				machine.AddCallback("enter_"+dst, func(ctx context.Context, e *fsm.Event) {
					entered = append(entered, e.Dst)
				})
			}

			Expect(machine.SendEvent(ctx, EventCreate)).To(Succeed())
			Expect(machine.SendEvent(ctx, EventStart)).To(Succeed())
			Expect(machine.SendEvent(ctx, EventResume)).To(Succeed())

			Expect(entered).To(Equal([]string{StateCreated, StateStarted, StateResumed}))
		})

		It("should hand event arguments through to the callback", func() {
			var got []interface{}

			machine.AddCallback("enter_"+StateCreated, func(ctx context.Context, e *fsm.Event) {
				got = e.Args
			})

			Expect(machine.SendEvent(ctx, EventCreate, "payload")).To(Succeed())
			Expect(got).To(HaveLen(1))
			Expect(got[0]).To(Equal("payload"))
		})
	})

	Context("when inspecting the transition table", func() {
		It("should classify lifecycle states", func() {
			for _, state := range []string{StateInitialized, StateCreated, StateStarted, StateResumed, StatePaused, StateStopped, StateDestroyed} {
				Expect(IsLifecycleState(state)).To(BeTrue(), "expected %s to be a lifecycle state", state)
			}

			Expect(IsLifecycleState("running")).To(BeFalse())
		})

		It("should mark only destroyed as terminal", func() {
			Expect(IsTerminalState(StateDestroyed)).To(BeTrue())
			Expect(IsTerminalState(StateStopped)).To(BeFalse())
		})
	})
})
