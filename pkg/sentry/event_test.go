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

package sentry

import (
	"errors"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSentry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sentry Suite")
}

var _ = Describe("error titles", func() {
	It("cuts the title at the first separator", func() {
		err := errors.New("failed to resolve action: no handler for dial")
		Expect(getMeaningfulErrorTitle(err)).To(Equal("failed to resolve action"))
	})

	It("keeps short messages whole", func() {
		err := errors.New("queue full")
		Expect(getMeaningfulErrorTitle(err)).To(Equal("queue full"))
	})

	It("truncates overly long titles", func() {
		err := errors.New(strings.Repeat("a", 200))
		title := getMeaningfulErrorTitle(err)
		Expect(title).To(HaveLen(100))
		Expect(title).To(HaveSuffix("..."))
	})
})

var _ = Describe("event building", func() {
	It("carries the level and message", func() {
		event := createSentryEvent(sentry.LevelWarning, errors.New("no handler for dial"))

		Expect(event.Level).To(Equal(sentry.LevelWarning))
		Expect(event.Message).To(Equal("no handler for dial"))
		Expect(event.Fingerprint).To(ContainElement("level: warning"))
	})

	It("turns simple context values into tags", func() {
		event := createSentryEventWithContext(sentry.LevelWarning, errors.New("boom"), map[string]interface{}{
			"screen_kind": "Main",
			"attempt":     3,
		})

		Expect(event.Tags).To(HaveKeyWithValue("screen_kind", "Main"))
		Expect(event.Tags).To(HaveKeyWithValue("attempt", "3"))
	})

	It("extends the fingerprint with grouping keys only", func() {
		event := createSentryEventWithContext(sentry.LevelWarning, errors.New("boom"), map[string]interface{}{
			"operation":   "resolve",
			"instance_id": "abc",
		})

		Expect(event.Fingerprint).To(ContainElement("operation: resolve"))
		Expect(event.Fingerprint).ToNot(ContainElement("instance_id: abc"))
	})

	It("moves complex values into the extras", func() {
		payload := map[string]string{"mensagem": "olá"}
		event := createSentryEventWithContext(sentry.LevelWarning, errors.New("boom"), map[string]interface{}{
			"payload": payload,
		})

		Expect(event.Tags).ToNot(HaveKey("payload"))
		Expect(event.Extra).To(HaveKeyWithValue("payload", payload))
	})
})

var _ = Describe("reporting without a DSN", func() {
	It("degrades to plain logging", func() {
		EnableTestMode()
		defer DisableTestMode()

		Expect(func() {
			ReportIssue(errors.New("no handler for dial"), IssueTypeWarning, nil)
			ReportIssuef(IssueTypeError, nil, "handler for %s failed", "dial")
			ReportIntentWarning(nil, "dial", "resolve", errors.New("no handler"))
		}).ToNot(Panic())
	})
})
