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

package constants

import "time"

const (
	// ExpectedMaxTransitionDuration is the worst case we allow for one
	// lifecycle transition including its callbacks. A transition is a label
	// write plus a log line, so this is generous; SendEvent refuses to start
	// when less time than this remains on the context, because interrupting
	// a looplab transition midway wedges the machine.
	ExpectedMaxTransitionDuration = 10 * time.Millisecond
)
