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

package artifact

import (
	"fmt"
	"strings"
)

// Kind identifies the sort of deployable unit a descriptor describes
type Kind int

const (
	// Domain is a shared unit whose plugins are visible to every application it hosts
	Domain Kind = iota + 1
	// Application is a unit deployed inside a domain
	Application
	// Plugin is a unit bundled by a domain or an application
	Plugin
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case Domain:
		return "domain"
	case Application:
		return "application"
	case Plugin:
		return "plugin"
	default:
		return "unknown"
	}
}

// ParseKind converts a textual kind into a Kind
func ParseKind(text string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "domain":
		return Domain, nil
	case "application", "app":
		return Application, nil
	case "plugin":
		return Plugin, nil
	default:
		return 0, fmt.Errorf("unknown artifact kind %q", text)
	}
}
