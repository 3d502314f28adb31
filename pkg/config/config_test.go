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
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/palco-runtime/palco/pkg/constants"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

func msPtr(ms int) *int {
	return &ms
}

var _ = Describe("FileConfigManager", func() {
	var (
		ctx     context.Context
		manager *FileConfigManager
		path    string
	)

	writeFile := func(content string) {
		ExpectWithOffset(1, os.WriteFile(path, []byte(content), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		path = filepath.Join(GinkgoT().TempDir(), "config.yaml")
		manager = NewFileConfigManager().WithConfigPath(path)
	})

	Describe("GetConfig", func() {
		It("parses a full document", func() {
			writeFile(`
version: 1.0.0
host:
  initialScreen: Second
  pollIntervalMs: 500
metrics:
  address: ":9999"
logging:
  level: debug
  format: json
`)

			cfg, err := manager.GetConfig(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Version).To(Equal("1.0.0"))
			Expect(cfg.Host.InitialScreen).To(Equal("Second"))
			Expect(cfg.Host.PollInterval()).To(Equal(500 * time.Millisecond))
			Expect(cfg.Metrics.Address).To(Equal(":9999"))
			Expect(cfg.Logging.Level).To(Equal("debug"))
			Expect(cfg.Logging.Format).To(Equal("json"))
		})

		It("errors when the file is missing", func() {
			_, err := manager.GetConfig(ctx)
			Expect(err).To(HaveOccurred())
		})

		It("errors when the file is empty", func() {
			writeFile("")

			_, err := manager.GetConfig(ctx)
			Expect(err).To(MatchError(ContainSubstring("config file is empty")))
		})

		It("errors on malformed yaml", func() {
			writeFile("version: [")

			_, err := manager.GetConfig(ctx)
			Expect(err).To(MatchError(ContainSubstring("failed to parse config file")))
		})

		It("fills defaults for unset fields", func() {
			writeFile("version: 1.0.0\n")

			cfg, err := manager.GetConfig(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Host.InitialScreen).To(Equal(constants.DefaultInitialScreen))
			Expect(cfg.Metrics.Address).To(Equal(constants.DefaultMetricsAddress))
			Expect(cfg.Host.PollInterval()).To(Equal(constants.DefaultConfigPollInterval))
		})

		It("treats an explicit zero poll interval as disabled", func() {
			writeFile("version: 1.0.0\nhost:\n  pollIntervalMs: 0\n")

			cfg, err := manager.GetConfig(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Host.PollInterval()).To(Equal(time.Duration(0)))
		})

		It("returns early on a cancelled context", func() {
			writeFile("version: 1.0.0\n")
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := manager.GetConfig(cancelled)
			Expect(err).To(MatchError(context.Canceled))
		})

		Context("version gate", func() {
			It("accepts newer minors within the constraint", func() {
				writeFile("version: 1.2.3\nhost:\n  initialScreen: Main\n")

				_, err := manager.GetConfig(ctx)
				Expect(err).ToNot(HaveOccurred())
			})

			It("rejects the next major", func() {
				writeFile("version: 2.0.0\nhost:\n  initialScreen: Main\n")

				_, err := manager.GetConfig(ctx)
				Expect(err).To(MatchError(ErrVersionMismatch))
			})

			It("rejects versions that do not parse", func() {
				writeFile("version: not-a-version\nhost:\n  initialScreen: Main\n")

				_, err := manager.GetConfig(ctx)
				Expect(err).To(MatchError(ContainSubstring("failed to parse config version")))
			})

			It("assumes the default version when the field is missing", func() {
				writeFile("host:\n  initialScreen: Main\n")

				cfg, err := manager.GetConfig(ctx)
				Expect(err).ToNot(HaveOccurred())
				Expect(cfg.Version).To(Equal(constants.DefaultConfigVersion))
			})
		})
	})

	Describe("ConfigHash", func() {
		It("is stable while the file is unchanged", func() {
			writeFile("version: 1.0.0\n")

			first, err := manager.ConfigHash(ctx)
			Expect(err).ToNot(HaveOccurred())
			second, err := manager.ConfigHash(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(first).To(Equal(second))
		})

		It("changes when the file changes", func() {
			writeFile("version: 1.0.0\n")
			before, err := manager.ConfigHash(ctx)
			Expect(err).ToNot(HaveOccurred())

			writeFile("version: 1.0.1\n")
			after, err := manager.ConfigHash(ctx)
			Expect(err).ToNot(HaveOccurred())

			Expect(after).ToNot(Equal(before))
		})

		It("errors when the file is missing", func() {
			_, err := manager.ConfigHash(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetConfigWithOverwritesOrCreateNew", func() {
		It("creates the file with defaults when missing", func() {
			cfg, err := manager.GetConfigWithOverwritesOrCreateNew(ctx, FullConfig{})
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Host.InitialScreen).To(Equal(constants.DefaultInitialScreen))
			Expect(cfg.Version).To(Equal(constants.DefaultConfigVersion))

			Expect(path).To(BeAnExistingFile())

			reread, err := manager.GetConfig(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(reread.Equal(cfg)).To(BeTrue())
		})

		It("applies and persists overrides", func() {
			override := FullConfig{
				Host:    HostConfig{InitialScreen: "Second", PollIntervalMs: msPtr(250)},
				Metrics: MetricsConfig{Address: ":7777"},
			}

			cfg, err := manager.GetConfigWithOverwritesOrCreateNew(ctx, override)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Host.InitialScreen).To(Equal("Second"))
			Expect(cfg.Host.PollInterval()).To(Equal(250 * time.Millisecond))
			Expect(cfg.Metrics.Address).To(Equal(":7777"))

			fresh := NewFileConfigManager().WithConfigPath(path)
			persisted, err := fresh.GetConfig(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(persisted.Host.InitialScreen).To(Equal("Second"))
			Expect(persisted.Host.PollInterval()).To(Equal(250 * time.Millisecond))
		})

		It("keeps existing values that are not overridden", func() {
			writeFile("version: 1.0.0\nhost:\n  initialScreen: Second\n")

			cfg, err := manager.GetConfigWithOverwritesOrCreateNew(ctx, FullConfig{
				Metrics: MetricsConfig{Address: ":7777"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.Host.InitialScreen).To(Equal("Second"))
			Expect(cfg.Metrics.Address).To(Equal(":7777"))
		})
	})
})

var _ = Describe("FullConfig", func() {
	It("deep-copies through Clone", func() {
		original := DefaultConfig()
		clone := original.Clone()
		clone.Host.InitialScreen = "Second"

		Expect(original.Host.InitialScreen).To(Equal(constants.DefaultInitialScreen))
		Expect(clone.Equal(original)).To(BeFalse())
	})

	It("reports equality on identical configs", func() {
		Expect(DefaultConfig().Equal(DefaultConfig())).To(BeTrue())
	})

	DescribeTable("PollInterval",
		func(ms *int, expected time.Duration) {
			cfg := HostConfig{PollIntervalMs: ms}
			Expect(cfg.PollInterval()).To(Equal(expected))
		},
		Entry("unset falls back to the default", nil, constants.DefaultConfigPollInterval),
		Entry("explicit zero disables the poll", msPtr(0), time.Duration(0)),
		Entry("negative disables the poll", msPtr(-5), time.Duration(0)),
		Entry("positive is taken as milliseconds", msPtr(250), 250*time.Millisecond),
	)
})
