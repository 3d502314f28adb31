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
	"bytes"
	"fmt"
	"runtime"
	"strconv"

	"github.com/DataDog/gostackparse"
	"github.com/getsentry/sentry-go"
)

// captureGoroutinesAsThreads captures all current goroutines and converts
// them to Sentry threads. The raw stack dump is returned as well so it can
// be attached to the event.
func captureGoroutinesAsThreads() ([]sentry.Thread, []byte) {
	stack := entireStack()

	goroutines, err := gostackparse.Parse(bytes.NewReader(stack))
	if err != nil {
		fmt.Printf("Error parsing goroutines: %v\n", err)

		return nil, []byte("")
	}

	threads := make([]sentry.Thread, 0, len(goroutines))
	for _, g := range goroutines {
		threads = append(threads, goroutineToThread(g))
	}

	return threads, stack
}

func entireStack() []byte {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}

		buf = make([]byte, 2*len(buf))
	}
}

func goroutineToThread(g *gostackparse.Goroutine) sentry.Thread {
	frames := make([]sentry.Frame, 0, len(g.Stack))
	// Sentry expects frames oldest-first, the runtime prints newest-first.
	for i := len(g.Stack) - 1; i >= 0; i-- {
		f := g.Stack[i]
		frames = append(frames, sentry.Frame{
			Function: f.Func,
			AbsPath:  f.File,
			Lineno:   f.Line,
		})
	}

	return sentry.Thread{
		ID:         strconv.Itoa(g.ID),
		Name:       fmt.Sprintf("Goroutine %d", g.ID),
		Stacktrace: &sentry.Stacktrace{Frames: frames},
		Crashed:    false,
		Current:    false,
	}
}
