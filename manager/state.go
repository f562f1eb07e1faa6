// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package manager

import (
	"fmt"
	"strings"
)

// State is the lifecycle state of the extensions
type State int

const (
	Discovered State = iota
	Resolved
	Initialised
	Started
	Stopped
	Disposed
)

func (s State) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Resolved:
		return "resolved"
	case Initialised:
		return "initialised"
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	case Disposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DisposeOrder is the order extensions are disposed in
type DisposeOrder int

const (
	// DisposeForward disposes extensions in resolved order
	DisposeForward DisposeOrder = iota
	// DisposeReverse disposes extensions in reverse resolved order, like Stop
	DisposeReverse
)

func (o DisposeOrder) String() string {
	if o == DisposeReverse {
		return "reverse"
	}
	return "forward"
}

// ParseDisposeOrder parses "forward" or "reverse"
func ParseDisposeOrder(text string) (DisposeOrder, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "forward":
		return DisposeForward, nil
	case "reverse":
		return DisposeReverse, nil
	default:
		return DisposeForward, fmt.Errorf("unknown dispose order %q", text)
	}
}

const (
	phaseResolve    = "resolve"
	phaseInitialise = "initialise"
	phaseStart      = "start"
	phaseStop       = "stop"
	phaseDispose    = "dispose"
)
