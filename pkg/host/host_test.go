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

package host

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/palco-runtime/palco/pkg/config"
	"github.com/palco-runtime/palco/pkg/intent"
	"github.com/palco-runtime/palco/pkg/screen"
)

func TestHost(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Host Suite")
}

// displayDelegate displays a text during OnCreate when the launch params
// carry the well-known message key, the way the demo's second screen does.
type displayDelegate struct {
	mu       sync.Mutex
	received []screen.Params
}

func (d *displayDelegate) OnCreate(ctx context.Context, inst *screen.Instance, params screen.Params) {
	d.mu.Lock()
	d.received = append(d.received, params)
	d.mu.Unlock()

	if text, ok := params["mensagem"]; ok {
		inst.SetText(text)
	}
}

func (d *displayDelegate) OnDestroy(ctx context.Context, inst *screen.Instance) {}

func (d *displayDelegate) Received() []screen.Params {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]screen.Params, len(d.received))
	copy(out, d.received)

	return out
}

// labelFactory builds a label-showing screen kind, like the demo's main
// screen.
func labelFactory() Factory {
	return func() Hooks {
		return Hooks{Labels: true}
	}
}

// contentFactory builds a content screen kind whose delegate owns the
// surface, like the demo's second screen.
func contentFactory() Factory {
	return func() Hooks {
		return Hooks{Delegate: &displayDelegate{}}
	}
}

func msPtr(ms int) *int {
	return &ms
}

var _ = Describe("Host back stack", func() {
	var (
		ctx     context.Context
		h       *Host
		surface *screen.MockSurface
	)

	BeforeEach(func() {
		ctx = context.Background()
		surface = screen.NewMockSurface()
		h = NewHost(config.DefaultConfig(), config.NewMockConfigManager(), surface)
		h.Register("Main", labelFactory())
		h.Register("Second", contentFactory())
	})

	It("drives a launched screen to resumed", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())

		top := h.top()
		Expect(top).ToNot(BeNil())
		Expect(top.inst.Name()).To(Equal("Main"))
		Expect(top.inst.CurrentState()).To(Equal(screen.StateResumed))
		Expect(top.inst.VisibleText()).To(Equal(screen.LabelResumed))
		Expect(surface.Writes()).To(Equal([]string{
			screen.LabelCreated, screen.LabelStarted, screen.LabelResumed,
		}))
	})

	It("rejects a launch for an unregistered screen", func() {
		err := h.launch(ctx, "NoSuchScreen", nil)
		Expect(err).To(MatchError(ErrUnknownScreen))
		Expect(h.stack).To(BeEmpty())
	})

	It("stops the current screen before the destination comes up", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		below := h.top().inst

		Expect(h.launch(ctx, "Second", nil)).To(Succeed())

		Expect(below.CurrentState()).To(Equal(screen.StateStopped))
		Expect(h.top().inst.Name()).To(Equal("Second"))
		Expect(h.top().inst.CurrentState()).To(Equal(screen.StateResumed))
		Expect(h.stack).To(HaveLen(2))
	})

	It("delivers launch params to the destination delegate at create", func() {
		delegate := &displayDelegate{}
		h.Register("Second", func() Hooks { return Hooks{Delegate: delegate} })

		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		Expect(h.launch(ctx, "Second", screen.Params{"mensagem": "Olá da MainActivity!"})).To(Succeed())

		Expect(delegate.Received()).To(HaveLen(1))
		Expect(delegate.Received()[0]).To(HaveKeyWithValue("mensagem", "Olá da MainActivity!"))
		Expect(h.top().inst.VisibleText()).To(Equal("Olá da MainActivity!"))
	})

	It("keeps the destination's text through its start and resume", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		Expect(h.launch(ctx, "Second", screen.Params{"mensagem": "Olá da MainActivity!"})).To(Succeed())

		// The outgoing screen writes its pause and stop labels, then the
		// destination writes the greeting once. Its own start and resume
		// leave the surface alone.
		Expect(surface.Writes()).To(Equal([]string{
			screen.LabelCreated, screen.LabelStarted, screen.LabelResumed,
			screen.LabelPaused, screen.LabelStopped,
			"Olá da MainActivity!",
		}))
		Expect(surface.Current()).To(Equal("Olá da MainActivity!"))
		Expect(h.top().inst.CurrentState()).To(Equal(screen.StateResumed))
	})

	It("re-enters the screen below when the top finishes", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		below := h.top().inst
		Expect(h.launch(ctx, "Second", nil)).To(Succeed())
		finished := h.top().inst

		exit, err := h.finish(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(exit).To(BeFalse())

		Expect(finished.IsDestroyed()).To(BeTrue())
		Expect(h.top().inst).To(BeIdenticalTo(below))
		Expect(below.CurrentState()).To(Equal(screen.StateResumed))
	})

	It("signals exit when the last screen finishes", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())

		exit, err := h.finish(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(exit).To(BeTrue())
		Expect(h.stack).To(BeEmpty())
	})

	It("routes presses to the top screen only while it is resumed", func() {
		var presses []string
		h.Register("Main", func() Hooks {
			return Hooks{
				Labels: true,
				Buttons: buttonFunc(func(ctx context.Context, inst *screen.Instance, button string) {
					presses = append(presses, button)
				}),
			}
		})

		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		h.press(ctx, "open_second")
		Expect(presses).To(Equal([]string{"open_second"}))

		Expect(h.top().inst.Pause(ctx)).To(Succeed())
		h.press(ctx, "open_second")
		Expect(presses).To(HaveLen(1))
	})
})

// buttonFunc adapts a function to screen.ButtonHandler.
type buttonFunc func(ctx context.Context, inst *screen.Instance, button string)

func (f buttonFunc) OnPress(ctx context.Context, inst *screen.Instance, button string) {
	f(ctx, inst, button)
}

var _ = Describe("Host recreation", func() {
	var (
		ctx     context.Context
		h       *Host
		surface *screen.MockSurface
	)

	BeforeEach(func() {
		ctx = context.Background()
		surface = screen.NewMockSurface()
		h = NewHost(config.DefaultConfig(), config.NewMockConfigManager(), surface)
		h.Register("Main", labelFactory())
		h.Register("Second", contentFactory())
	})

	It("replaces the top instance with a fresh one", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		oldID := h.top().inst.ID()

		Expect(h.recreate(ctx)).To(Succeed())

		Expect(h.stack).To(HaveLen(1))
		Expect(h.top().inst.ID()).ToNot(Equal(oldID))
		Expect(h.top().inst.CurrentState()).To(Equal(screen.StateResumed))
	})

	It("carries a content screen's text across the destroy/recreate boundary", func() {
		Expect(h.launch(ctx, "Second", nil)).To(Succeed())
		h.top().inst.SetText("algum texto do app")
		surface.Reset()

		Expect(h.recreate(ctx)).To(Succeed())

		// Pause runs before the save but writes no label on a content
		// screen, so the snapshot holds the user's text. Both restore
		// paths then re-apply it: once inside Create, once after Start.
		Expect(surface.Writes()).To(Equal([]string{
			"algum texto do app",
			"algum texto do app",
		}))
		Expect(h.top().inst.VisibleText()).To(Equal("algum texto do app"))
	})

	It("rebuilds a label-showing screen through its paused label", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		surface.Reset()

		Expect(h.recreate(ctx)).To(Succeed())

		// The save runs after pause, so the paused label is what crosses
		// the boundary; resume then writes its own label on top, exactly
		// like the platform this models.
		Expect(surface.Writes()).To(Equal([]string{
			screen.LabelPaused,
			screen.LabelStopped,
			screen.LabelCreated,
			screen.LabelPaused,
			screen.LabelStarted,
			screen.LabelPaused,
			screen.LabelResumed,
		}))
		Expect(h.top().inst.VisibleText()).To(Equal(screen.LabelResumed))
	})

	It("consumes the saved state on restore", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		Expect(h.recreate(ctx)).To(Succeed())
		Expect(h.savedStates).To(BeEmpty())
	})

	It("redelivers the original launch params to the fresh instance", func() {
		delegate := &displayDelegate{}
		h.Register("Main", func() Hooks { return Hooks{Delegate: delegate} })

		Expect(h.launch(ctx, "Main", screen.Params{"mensagem": "até logo"})).To(Succeed())
		Expect(h.recreate(ctx)).To(Succeed())

		Expect(delegate.Received()).To(HaveLen(2))
		Expect(delegate.Received()[1]).To(HaveKeyWithValue("mensagem", "até logo"))
	})

	It("ignores a recreate on an empty stack", func() {
		Expect(h.recreate(ctx)).To(Succeed())
	})
})

var _ = Describe("Host actions", func() {
	var (
		ctx context.Context
		h   *Host
	)

	BeforeEach(func() {
		ctx = context.Background()
		h = NewHost(config.DefaultConfig(), config.NewMockConfigManager(), screen.NewMockSurface())
	})

	It("invokes the registered handler with the message", func() {
		var handled []intent.Message
		h.RegisterAction("dial", func(ctx context.Context, msg intent.Message) error {
			handled = append(handled, msg)

			return nil
		})

		h.runAction(ctx, intent.NewAction("dial", "tel:1234567890"))

		Expect(handled).To(HaveLen(1))
		Expect(handled[0].Data).To(Equal("tel:1234567890"))
	})

	It("tolerates an action nothing declares support for", func() {
		Expect(func() {
			h.runAction(ctx, intent.NewAction("dial", "tel:1234567890"))
		}).ToNot(Panic())
	})

	It("debounces unresolved reports per action", func() {
		h.runAction(ctx, intent.NewAction("dial", "tel:1234567890"))
		_, reported := h.unresolvedReports.Load("dial")
		Expect(reported).To(BeTrue())

		// A repeat inside the window is counted but not re-reported.
		h.runAction(ctx, intent.NewAction("dial", "tel:1234567890"))
	})

	It("tolerates a failing handler", func() {
		h.RegisterAction("dial", func(ctx context.Context, msg intent.Message) error {
			return errors.New("device has no telephony")
		})

		Expect(func() {
			h.runAction(ctx, intent.NewAction("dial", "tel:1234567890"))
		}).ToNot(Panic())
	})
})

var _ = Describe("System snapshot", func() {
	var (
		ctx context.Context
		h   *Host
	)

	BeforeEach(func() {
		ctx = context.Background()
		h = NewHost(config.DefaultConfig(), config.NewMockConfigManager(), screen.NewMockSurface())
		h.Register("Main", labelFactory())
		h.Register("Second", labelFactory())
	})

	It("reflects the stack bottom-first", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		Expect(h.launch(ctx, "Second", nil)).To(Succeed())
		h.updateSystemSnapshot()

		snap := h.GetSystemSnapshot()
		Expect(snap.Stack).To(HaveLen(2))
		Expect(snap.Stack[0].Name).To(Equal("Main"))
		Expect(snap.Stack[0].State).To(Equal(screen.StateStopped))

		top, ok := snap.Top()
		Expect(ok).To(BeTrue())
		Expect(top.Name).To(Equal("Second"))
		Expect(top.State).To(Equal(screen.StateResumed))
		Expect(top.VisibleText).To(Equal(screen.LabelResumed))
	})

	It("finds screens by kind", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		h.updateSystemSnapshot()

		snap := h.GetSystemSnapshot()
		_, ok := FindScreen(snap, "Main")
		Expect(ok).To(BeTrue())
		_, ok = FindScreen(snap, "Second")
		Expect(ok).To(BeFalse())
	})

	It("hands out isolated copies", func() {
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())
		h.updateSystemSnapshot()

		snap := h.GetSystemSnapshot()
		snap.Stack[0].VisibleText = "mutated"

		again := h.GetSystemSnapshot()
		Expect(again.Stack[0].VisibleText).To(Equal(screen.LabelResumed))
	})
})

var _ = Describe("Host teardown", func() {
	It("reports instances that cannot finish their teardown and drains the stack anyway", func() {
		h := NewHost(config.DefaultConfig(), config.NewMockConfigManager(), screen.NewMockSurface())
		h.Register("Main", labelFactory())

		ctx := context.Background()
		Expect(h.launch(ctx, "Main", nil)).To(Succeed())

		// Walk the top screen into started, a state teardown cannot unwind:
		// destroy from started is an ordering violation, so the teardown
		// reports it and moves on.
		Expect(h.top().inst.Pause(ctx)).To(Succeed())
		Expect(h.top().inst.Stop(ctx)).To(Succeed())
		Expect(h.top().inst.Start(ctx)).To(Succeed())

		Expect(func() { h.teardown() }).ToNot(Panic())
		Expect(h.stack).To(BeEmpty())
	})
})

var _ = Describe("Host loop", func() {
	It("launches the initial screen and serves commands until quit", func() {
		cfg := config.DefaultConfig()
		surface := screen.NewMockSurface()
		h := NewHost(cfg, config.NewMockConfigManager(), surface)
		h.Register("Main", labelFactory())
		h.Register("Second", contentFactory())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- h.Run(ctx) }()

		Eventually(func() int {
			return len(h.GetSystemSnapshot().Stack)
		}).Should(Equal(1))

		// A targeted message submitted through the resolver side opens the
		// destination with its payload, end to end.
		disp := intent.NewDispatcher(h)
		disp.SendTargeted(ctx, "Second", intent.Extras{"mensagem": "Olá da MainActivity!"})

		Eventually(func() string {
			top, _ := h.GetSystemSnapshot().Top()

			return top.VisibleText
		}).Should(Equal("Olá da MainActivity!"))

		h.Quit()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))

		// Quit tears the whole stack down.
		Expect(h.GetSystemSnapshot().Stack).To(BeEmpty())
	})

	It("recreates the top screen when the config changes", func() {
		cfg := config.DefaultConfig()
		cfg.Host.PollIntervalMs = msPtr(10)
		manager := config.NewMockConfigManager()
		manager.Config = cfg

		h := NewHost(cfg, manager, screen.NewMockSurface())
		h.Register("Main", labelFactory())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- h.Run(ctx) }()

		Eventually(func() int {
			return len(h.GetSystemSnapshot().Stack)
		}).Should(Equal(1))

		oldTop, _ := h.GetSystemSnapshot().Top()

		manager.SetConfig(cfg)

		Eventually(func() string {
			top, _ := h.GetSystemSnapshot().Top()

			return top.ID
		}).ShouldNot(Equal(oldTop.ID))

		h.Quit()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
	})

	It("never recreates when the config poll is disabled", func() {
		cfg := config.DefaultConfig()
		cfg.Host.PollIntervalMs = msPtr(0)
		manager := config.NewMockConfigManager()
		manager.Config = cfg

		h := NewHost(cfg, manager, screen.NewMockSurface())
		h.Register("Main", labelFactory())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- h.Run(ctx) }()

		Eventually(func() int {
			return len(h.GetSystemSnapshot().Stack)
		}).Should(Equal(1))

		oldTop, _ := h.GetSystemSnapshot().Top()

		manager.SetConfig(cfg)

		Consistently(func() string {
			top, _ := h.GetSystemSnapshot().Top()

			return top.ID
		}, 200*time.Millisecond, 20*time.Millisecond).Should(Equal(oldTop.ID))

		h.Quit()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
	})
})
