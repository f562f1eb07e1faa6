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

import (
	"context"
	"slices"
)

// fakeExtension depends on the extensions whose ids it lists
type fakeExtension struct {
	id       string
	requires []string
	injected []string
}

var _ Extension = (*fakeExtension)(nil)
var _ DependencyAware = (*fakeExtension)(nil)

func newFake(id string, requires ...string) *fakeExtension {
	return &fakeExtension{id: id, requires: requires}
}

func (x *fakeExtension) ID() string                       { return x.id }
func (x *fakeExtension) Initialise(context.Context) error { return nil }
func (x *fakeExtension) Start(context.Context) error      { return nil }
func (x *fakeExtension) Stop(context.Context) error       { return nil }
func (x *fakeExtension) Dispose(context.Context) error    { return nil }

func (x *fakeExtension) Dependencies() []Dependency {
	dependencies := make([]Dependency, 0, len(x.requires))
	for _, id := range x.requires {
		dependencies = append(dependencies, NewDependency(id,
			func(ext Extension) bool { return ext.ID() == id },
			func(ext Extension) error {
				x.injected = append(x.injected, ext.ID())
				return nil
			}))
	}
	return dependencies
}

// Store is implemented by storage extensions
type Store interface {
	Extension
	Name() string
}

type storeExtension struct {
	fakeExtension
}

func (x *storeExtension) Name() string { return x.id }

// consumer needs any Store
type consumer struct {
	fakeExtension
	store Store
}

func (x *consumer) Dependencies() []Dependency {
	return []Dependency{Requires(func(store Store) { x.store = store })}
}

func ids(exts []Extension) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, ext.ID())
	}
	return out
}

func indexOf(exts []Extension, id string) int {
	return slices.IndexFunc(exts, func(ext Extension) bool { return ext.ID() == id })
}
