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
	"runtime/debug"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// debounceWindow is the minimum spacing between two non-fatal reports of
// the same severity. Fatal reports are never debounced.
const debounceWindow = 2 * time.Hour

var (
	errorLastSent   = time.Now().Add(-24 * time.Hour)
	warningLastSent = time.Now().Add(-24 * time.Hour)
	lastSentMutex   sync.Mutex
)

// reportFatal sends a fatal error to Sentry, including a stack trace and a
// message. Afterwards it reports the error to the logger and panics.
func reportFatal(err error, log *zap.SugaredLogger) {
	reportFatalWithContext(err, log, nil)
}

func reportFatalWithContext(err error, log *zap.SugaredLogger, context map[string]interface{}) {
	log.Error("The host has encountered a fatal error and will now terminate.")
	log.Errorf("Error: %s", err)
	log.Errorf("Stack trace: %s", string(debug.Stack()))

	event := createSentryEventWithContext(sentry.LevelFatal, err, context)
	sendSentryEvent(event)
	sentry.Flush(5 * time.Second)

	log.Panic("Fatal error")
}

// reportError sends an error to Sentry and the logger, debounced.
func reportError(err error, log *zap.SugaredLogger) {
	reportErrorWithContext(err, log, nil)
}

func reportErrorWithContext(err error, log *zap.SugaredLogger, context map[string]interface{}) {
	log.Error(err)

	lastSentMutex.Lock()
	defer lastSentMutex.Unlock()

	if shouldDebounceErrors && time.Since(errorLastSent) < debounceWindow {
		return
	}

	event := createSentryEventWithContext(sentry.LevelError, err, context)
	sendSentryEvent(event)
	errorLastSent = time.Now()
}

// reportWarning sends a warning to Sentry and the logger, debounced.
func reportWarning(err error, log *zap.SugaredLogger) {
	reportWarningWithContext(err, log, nil)
}

func reportWarningWithContext(err error, log *zap.SugaredLogger, context map[string]interface{}) {
	log.Warn(err)

	lastSentMutex.Lock()
	defer lastSentMutex.Unlock()

	if shouldDebounceErrors && time.Since(warningLastSent) < debounceWindow {
		return
	}

	event := createSentryEventWithContext(sentry.LevelWarning, err, context)
	sendSentryEvent(event)
	warningLastSent = time.Now()
}
