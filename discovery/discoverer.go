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

package discovery

import (
	"context"
	"slices"

	"github.com/modhost/modhost/extension"
)

// Discoverer finds the extensions the manager drives
type Discoverer interface {
	// Discover returns the extensions in discovery order. The order is the
	// tie-break used when resolving dependencies.
	Discover(ctx context.Context) ([]extension.Extension, error)
}

// DiscovererFunc is a function implementing Discoverer
type DiscovererFunc func(ctx context.Context) ([]extension.Extension, error)

var _ Discoverer = DiscovererFunc(nil)

// Discover implements Discoverer
func (f DiscovererFunc) Discover(ctx context.Context) ([]extension.Extension, error) {
	return f(ctx)
}

type static struct {
	extensions []extension.Extension
}

// Static returns a Discoverer returning exts as given
func Static(exts ...extension.Extension) Discoverer {
	return &static{extensions: exts}
}

func (x *static) Discover(context.Context) ([]extension.Extension, error) {
	return slices.Clone(x.extensions), nil
}
