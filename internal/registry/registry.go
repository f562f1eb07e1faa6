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

package registry

import (
	"slices"
	"strings"

	"github.com/modhost/modhost/internal/xsync"
)

// Factory creates a fresh instance of a registered implementation
type Factory[T any] func() T

// Registry maps case-insensitive implementation names to their factories.
// It backs declarative registration files that name implementations to instantiate.
type Registry[T any] struct {
	m *xsync.Map[string, Factory[T]]
}

// New creates a new factory registry
func New[T any]() *Registry[T] {
	return &Registry[T]{m: xsync.NewMap[string, Factory[T]]()}
}

// Register adds or replaces the factory registered under name
func (x *Registry[T]) Register(name string, factory Factory[T]) {
	x.m.Set(lowTrim(name), factory)
}

// Deregister removes the factory registered under name
func (x *Registry[T]) Deregister(name string) {
	x.m.Delete(lowTrim(name))
}

// Exists return true when a factory is registered under name
func (x *Registry[T]) Exists(name string) bool {
	_, ok := x.m.Get(lowTrim(name))
	return ok
}

// Get returns the factory registered under name
func (x *Registry[T]) Get(name string) (Factory[T], bool) {
	return x.m.Get(lowTrim(name))
}

// Names returns the registered names in lexical order
func (x *Registry[T]) Names() []string {
	names := x.m.Keys()
	slices.Sort(names)
	return names
}

// lowTrim trim any space and lower the string value
func lowTrim(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
