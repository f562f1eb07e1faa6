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

// Unit is an extension together with its discovered dependencies
type Unit struct {
	extension    Extension
	dependencies []Dependency
	resolved     bool
}

// NewUnit creates an unresolved unit
func NewUnit(ext Extension, dependencies []Dependency) *Unit {
	return &Unit{extension: ext, dependencies: slices.Clone(dependencies)}
}

// ID returns the extension id
func (u *Unit) ID() string { return u.extension.ID() }

// Extension returns the extension
func (u *Unit) Extension() Extension { return u.extension }

// Dependencies returns the discovered dependencies
func (u *Unit) Dependencies() []Dependency { return slices.Clone(u.dependencies) }

// Resolved reports whether every dependency was injected
func (u *Unit) Resolved() bool { return u.resolved }
