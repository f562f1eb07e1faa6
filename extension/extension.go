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

import "context"

// Extension is a pluggable runtime component whose lifecycle is driven by
// the manager once its dependencies are resolved.
//
// Lifecycle calls happen one unit set at a time: Initialise and Start in
// resolved order, Stop in reverse resolved order, then Dispose.
type Extension interface {
	// ID returns the unique identifier for the extension.
	//
	// The identifier must:
	//   - Be no more than 255 characters long.
	//   - Start with an alphanumeric character [a-zA-Z0-9].
	//   - Contain only alphanumeric characters, hyphens (-), or underscores (_) thereafter.
	//
	// Identifiers that do not meet these constraints are considered invalid.
	ID() string
	// Initialise is called once, after every dependency has been injected.
	// An error aborts the whole extension wiring.
	Initialise(ctx context.Context) error
	// Start is called after every extension has been initialised.
	// An error aborts the remaining starts.
	Start(ctx context.Context) error
	// Stop is called on shutdown. Errors are logged and never stop the other extensions.
	Stop(ctx context.Context) error
	// Dispose releases the extension resources. Errors are logged only.
	Dispose(ctx context.Context) error
}

// DependencyAware is implemented by extensions requiring other extensions
type DependencyAware interface {
	// Dependencies returns the dependencies of the extension.
	// It must return the same dependencies every time it is called.
	Dependencies() []Dependency
}

// ExtensionsAware is implemented by extensions needing every sibling
// extension. The slice is in resolved order.
type ExtensionsAware interface {
	SetExtensions(extensions []Extension)
}
