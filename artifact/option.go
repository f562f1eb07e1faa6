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

import mapset "github.com/deckarep/golang-set/v2"

// Option is the interface that applies a descriptor option.
type Option interface {
	// Apply sets the Option value of a descriptor.
	Apply(*Descriptor)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Descriptor)

// Apply applies the option
func (f OptionFunc) Apply(d *Descriptor) {
	f(d)
}

// WithPlugins sets the plugins bundled by the artifact, in registration order.
func WithPlugins(plugins ...*Descriptor) Option {
	return OptionFunc(func(d *Descriptor) {
		d.plugins = append(d.plugins, plugins...)
	})
}

// WithExportedPackages sets the packages the artifact makes visible to others.
func WithExportedPackages(packages ...string) Option {
	return OptionFunc(func(d *Descriptor) {
		d.exportedPackages.Append(packages...)
	})
}

// WithExportedResources sets the resources the artifact makes visible to others.
func WithExportedResources(resources ...string) Option {
	return OptionFunc(func(d *Descriptor) {
		d.exportedResources.Append(resources...)
	})
}

// WithLocalPackages sets the packages the artifact keeps private and always
// resolves from its own resources.
func WithLocalPackages(packages ...string) Option {
	return OptionFunc(func(d *Descriptor) {
		d.localPackages.Append(packages...)
	})
}

// WithResourceRoots sets the folders the artifact resolves symbols and resources from.
func WithResourceRoots(roots ...string) Option {
	return OptionFunc(func(d *Descriptor) {
		d.resourceRoots = append(d.resourceRoots, roots...)
	})
}

// WithRootFolder sets the folder the artifact was deployed from.
func WithRootFolder(folder string) Option {
	return OptionFunc(func(d *Descriptor) {
		d.rootFolder = folder
	})
}

// WithDomain sets the domain an application is deployed in.
// It is ignored for other kinds.
func WithDomain(name string) Option {
	return OptionFunc(func(d *Descriptor) {
		d.domain = name
	})
}

func newSet(values ...string) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(values...)
}
