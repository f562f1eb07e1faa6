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

package extension

import "slices"

// DependencyDiscoverer returns the dependencies an extension declares.
// It must be pure: discovering the same extension twice yields the same
// dependencies. Dependencies no extension satisfies are not detected here.
type DependencyDiscoverer interface {
	Discover(ext Extension) []Dependency
}

// DependencyDiscovererFunc is a function implementing DependencyDiscoverer
type DependencyDiscovererFunc func(ext Extension) []Dependency

var _ DependencyDiscoverer = DependencyDiscovererFunc(nil)

// Discover implements DependencyDiscoverer
func (f DependencyDiscovererFunc) Discover(ext Extension) []Dependency {
	return f(ext)
}

// Discover is the default discoverer. It returns the dependencies of
// DependencyAware extensions and nothing for the others.
func Discover(ext Extension) []Dependency {
	if aware, ok := ext.(DependencyAware); ok {
		return slices.Clone(aware.Dependencies())
	}
	return nil
}
