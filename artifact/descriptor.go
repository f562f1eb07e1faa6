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
	"slices"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/zeebo/xxh3"

	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/internal/validation"
)

// Descriptor is the immutable metadata of a deployable unit.
//
// A Descriptor never changes once New returns it: accessors hand out copies,
// so it can be shared between goroutines without synchronization.
type Descriptor struct {
	kind              Kind
	name              string
	id                string
	domain            string
	plugins           []*Descriptor
	exportedPackages  mapset.Set[string]
	exportedResources mapset.Set[string]
	localPackages     mapset.Set[string]
	resourceRoots     []string
	rootFolder        string
	fingerprint       uint64
}

// New builds and validates a descriptor of the given kind.
//
// Plugins passed through WithPlugins are re-identified under the new
// artifact, so the same plugin descriptor may be bundled by several owners.
func New(kind Kind, name string, opts ...Option) (*Descriptor, error) {
	d := &Descriptor{
		kind:              kind,
		name:              name,
		exportedPackages:  newSet(),
		exportedResources: newSet(),
		localPackages:     newSet(),
	}

	for _, opt := range opts {
		opt.Apply(d)
	}

	switch {
	case kind != Application:
		d.domain = ""
	case d.domain == "":
		d.domain = DefaultDomainName
	}

	d.id = d.computeID()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	plugins := make([]*Descriptor, 0, len(d.plugins))
	for _, plugin := range d.plugins {
		plugins = append(plugins, plugin.attach(d.id))
	}
	d.plugins = plugins
	d.fingerprint = d.computeFingerprint()
	return d, nil
}

// MustNew is like New but panics on error. It is meant for static
// descriptors and tests.
func MustNew(kind Kind, name string, opts ...Option) *Descriptor {
	d, err := New(kind, name, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// DefaultDomain returns the descriptor of the default domain
func DefaultDomain() *Descriptor {
	return MustNew(Domain, DefaultDomainName)
}

// ID returns the globally unique identifier derived from the name and kind
func (d *Descriptor) ID() string { return d.id }

// Name returns the artifact name
func (d *Descriptor) Name() string { return d.name }

// Kind returns the artifact kind
func (d *Descriptor) Kind() Kind { return d.kind }

// Domain returns the name of the domain an application is deployed in.
// It is empty for other kinds.
func (d *Descriptor) Domain() string { return d.domain }

// IsDefaultDomain reports whether d describes the default domain
func (d *Descriptor) IsDefaultDomain() bool {
	return d.kind == Domain && d.name == DefaultDomainName
}

// Plugins returns the bundled plugins in registration order
func (d *Descriptor) Plugins() []*Descriptor { return slices.Clone(d.plugins) }

// ExportedPackages returns a copy of the exported packages
func (d *Descriptor) ExportedPackages() mapset.Set[string] { return d.exportedPackages.Clone() }

// ExportedResources returns a copy of the exported resources
func (d *Descriptor) ExportedResources() mapset.Set[string] { return d.exportedResources.Clone() }

// LocalPackages returns a copy of the packages kept private to the artifact
func (d *Descriptor) LocalPackages() mapset.Set[string] { return d.localPackages.Clone() }

// ResourceRoots returns the resource roots in lookup order
func (d *Descriptor) ResourceRoots() []string { return slices.Clone(d.resourceRoots) }

// RootFolder returns the folder the artifact was deployed from. It may be empty
// for artifacts built in memory.
func (d *Descriptor) RootFolder() string { return d.rootFolder }

// Fingerprint returns a hash of the whole descriptor, plugins included.
// Two descriptors with the same fingerprint describe the same deployment.
func (d *Descriptor) Fingerprint() uint64 { return d.fingerprint }

// String returns the identifier
func (d *Descriptor) String() string { return d.id }

// Validate checks the descriptor
func (d *Descriptor) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewNameValidator(d.name, fmt.Errorf("name=(%s) %w", d.name, gerrors.ErrInvalidArtifactName))).
		AddAssertion(d.kind >= Domain && d.kind <= Plugin, fmt.Sprintf("%s: %d", gerrors.ErrInvalidArtifactKind, d.kind))

	if d.kind == Application {
		chain.AddValidator(validation.NewNameValidator(d.domain, fmt.Errorf("domain=(%s) %w", d.domain, gerrors.ErrInvalidArtifactName)))
	}

	for _, pkg := range sorted(d.exportedPackages) {
		chain.AddValidator(validation.NewPackageValidator(pkg))
	}
	for _, pkg := range sorted(d.localPackages) {
		chain.AddValidator(validation.NewPackageValidator(pkg))
	}

	seen := make(map[string]struct{}, len(d.plugins))
	for _, plugin := range d.plugins {
		if plugin == nil {
			chain.AddAssertion(false, "nil plugin descriptor")
			continue
		}
		chain.AddAssertion(plugin.kind == Plugin, fmt.Sprintf("%s: %s is a %s", gerrors.ErrInvalidArtifactKind, plugin.name, plugin.kind))
		chain.AddAssertion(len(plugin.plugins) == 0, fmt.Sprintf("plugin %s cannot bundle plugins", plugin.name))
		if _, ok := seen[plugin.name]; ok {
			chain.AddValidator(validation.ValidatorFunc(func() error {
				return fmt.Errorf("plugin=(%s) %w", plugin.name, gerrors.ErrDuplicatePlugin)
			}))
		}
		seen[plugin.name] = struct{}{}
	}

	if err := chain.Validate(); err != nil {
		return gerrors.NewErrInvalidDescriptor(err)
	}
	return nil
}

func (d *Descriptor) computeID() string {
	switch d.kind {
	case Domain:
		return DomainID(d.name)
	case Application:
		return ApplicationID(DomainID(d.domain), d.name)
	default:
		return standalonePluginID(d.name)
	}
}

// attach returns a copy of the plugin identified under ownerID
func (d *Descriptor) attach(ownerID string) *Descriptor {
	clone := *d
	clone.id = PluginID(ownerID, d.name)
	clone.plugins = nil
	clone.fingerprint = clone.computeFingerprint()
	return &clone
}

func (d *Descriptor) computeFingerprint() uint64 {
	hasher := xxh3.New()
	write := func(values ...string) {
		for _, value := range values {
			_, _ = hasher.WriteString(strconv.Itoa(len(value)))
			_, _ = hasher.WriteString(":")
			_, _ = hasher.WriteString(value)
		}
	}

	write(d.kind.String(), d.id, d.name, d.domain, d.rootFolder)
	write(sorted(d.exportedPackages)...)
	write("|")
	write(sorted(d.exportedResources)...)
	write("|")
	write(sorted(d.localPackages)...)
	write("|")
	write(d.resourceRoots...)
	for _, plugin := range d.plugins {
		write("plugin", strconv.FormatUint(plugin.fingerprint, 16))
	}
	return hasher.Sum64()
}

func sorted(set mapset.Set[string]) []string {
	values := set.ToSlice()
	slices.Sort(values)
	return values
}
