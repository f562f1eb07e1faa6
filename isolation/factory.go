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

package isolation

import (
	"fmt"
	"os"
	"slices"

	"github.com/modhost/modhost/artifact"
	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/internal/validation"
	"github.com/modhost/modhost/log"
)

const (
	// ContainerID is the id of the root node
	ContainerID = "container"

	regionSuffix = "/region"
)

// Factory builds the node trees of deployed artifacts under a single container node.
//
// Every domain gets a region fronting the domain node and its plugins. Every
// application gets a region under its domain node, fronting the application
// node and its own plugins. Packages provided by the container resolve
// parent only in every descendant.
type Factory struct {
	registry          *Registry
	container         *Node
	base              *LookupPolicy
	containerPackages []string
	containerSources  []Source
	symbolExtension   string
	stat              validation.StatFunc
	logger            log.Logger
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithContainerPackages sets the packages every artifact resolves from the container
func WithContainerPackages(packages ...string) FactoryOption {
	return func(f *Factory) { f.containerPackages = append(f.containerPackages, packages...) }
}

// WithContainerSources sets the local sources of the container node
func WithContainerSources(sources ...Source) FactoryOption {
	return func(f *Factory) { f.containerSources = append(f.containerSources, sources...) }
}

// WithSymbolExtension sets the file suffix that maps symbols onto files in resource roots
func WithSymbolExtension(ext string) FactoryOption {
	return func(f *Factory) { f.symbolExtension = ext }
}

// WithStat overrides the function used to validate artifact root folders
func WithStat(stat validation.StatFunc) FactoryOption {
	return func(f *Factory) {
		if stat != nil {
			f.stat = stat
		}
	}
}

// WithFactoryLogger sets the logger
func WithFactoryLogger(logger log.Logger) FactoryOption {
	return func(f *Factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFactory creates a Factory and registers its container node in registry
func NewFactory(registry *Registry, opts ...FactoryOption) (*Factory, error) {
	f := &Factory{
		registry:        registry,
		symbolExtension: ".sym",
		stat:            os.Stat,
		logger:          log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, pkg := range f.containerPackages {
		if err := validation.NewPackageValidator(pkg).Validate(); err != nil {
			return nil, gerrors.NewErrInvalidConfig(err)
		}
	}

	container, err := registry.NewNode(NodeConfig{
		ID:               ContainerID,
		ArtifactID:       ContainerID,
		Sources:          f.containerSources,
		ExportedPackages: f.containerPackages,
	})
	if err != nil {
		return nil, err
	}

	f.container = container
	f.base = NewLookupPolicy(ChildFirst, nil).ExtendPackages(f.containerPackages, ParentOnly, true)
	return f, nil
}

// Container returns the root node
func (f *Factory) Container() *Node {
	return f.container
}

// Registry returns the registry the factory builds nodes in
func (f *Factory) Registry() *Registry {
	return f.registry
}

// CreateDomain builds the node tree of a domain and returns the domain node.
//
// The default domain gets no plugins and no root folder validation. A
// custom domain must have an existing root folder; its plugins exported
// packages resolve parent first from the domain node so that they reach
// the domain region.
func (f *Factory) CreateDomain(descriptor *artifact.Descriptor) (*Node, error) {
	if descriptor == nil || descriptor.Kind() != artifact.Domain {
		return nil, gerrors.NewErrInvalidDescriptor(fmt.Errorf("%v is not a domain", descriptor))
	}

	id := descriptor.ID()
	plugins := descriptor.Plugins()
	if descriptor.IsDefaultDomain() {
		id = artifact.DomainID(artifact.DefaultDomainName)
		plugins = nil
	} else if err := f.validateRoot(descriptor); err != nil {
		return nil, err
	}

	regionPolicy := f.base
	ownerPolicy := regionPolicy.
		ExtendPackages(exportedPackages(plugins), ParentFirst, false).
		ExtendPackages(sortedSet(descriptor.LocalPackages()), ChildOnly, false)

	return f.createTree(id, f.container.ID(), descriptor, plugins, regionPolicy, ownerPolicy)
}

// CreateApplication builds the node tree of an application deployed in
// domain and returns the application node.
//
// The domain exported packages and its plugins packages resolve parent
// first; so do the application own plugins packages, which reach the
// application region.
func (f *Factory) CreateApplication(descriptor *artifact.Descriptor, domain *Node) (*Node, error) {
	if descriptor == nil || descriptor.Kind() != artifact.Application {
		return nil, gerrors.NewErrInvalidDescriptor(fmt.Errorf("%v is not an application", descriptor))
	}
	if domain == nil || domain.IsDisposed() {
		return nil, gerrors.NewDeploymentError(descriptor.ID(), gerrors.ErrNodeDisposed)
	}
	if err := f.validateRoot(descriptor); err != nil {
		return nil, err
	}

	plugins := descriptor.Plugins()
	regionPolicy := domain.Policy().ExtendPackages(sortedSet(domain.exported), ParentFirst, false)
	ownerPolicy := regionPolicy.
		ExtendPackages(exportedPackages(plugins), ParentFirst, false).
		ExtendPackages(sortedSet(descriptor.LocalPackages()), ChildOnly, false)

	return f.createTree(descriptor.ID(), domain.ID(), descriptor, plugins, regionPolicy, ownerPolicy)
}

// CreatePlugin builds a plugin node inside region and adds it as a member
// exporting the plugin packages and resources. Packages the region already
// resolves parent first are dropped from the export list with a warning.
func (f *Factory) CreatePlugin(region *Region, descriptor *artifact.Descriptor) (*Node, error) {
	if descriptor == nil || descriptor.Kind() != artifact.Plugin {
		return nil, gerrors.NewErrInvalidDescriptor(fmt.Errorf("%v is not a plugin", descriptor))
	}

	exported := f.sanitize(region, descriptor)
	policy := f.base.
		ExtendPackages(exported, ChildOnly, false).
		ExtendPackages(sortedSet(descriptor.LocalPackages()), ChildOnly, false)

	node, err := f.registry.NewNode(NodeConfig{
		ID:               descriptor.ID(),
		ArtifactID:       descriptor.ID(),
		ParentID:         region.ID(),
		Policy:           policy,
		Sources:          f.sources(descriptor),
		ExportedPackages: exported,
	})
	if err != nil {
		return nil, err
	}

	if err := region.AddMember(node, NewFilter(exported, sortedSet(descriptor.ExportedResources()))); err != nil {
		node.Dispose()
		return nil, err
	}
	return node, nil
}

func (f *Factory) createTree(id, parentID string, descriptor *artifact.Descriptor, plugins []*artifact.Descriptor, regionPolicy, ownerPolicy *LookupPolicy) (*Node, error) {
	region, err := f.registry.NewRegion(NodeConfig{
		ID:         id + regionSuffix,
		ArtifactID: id,
		ParentID:   parentID,
		Policy:     regionPolicy,
	})
	if err != nil {
		return nil, gerrors.NewDeploymentError(id, err)
	}

	owner, err := f.registry.NewNode(NodeConfig{
		ID:               id,
		ArtifactID:       id,
		ParentID:         region.ID(),
		Policy:           ownerPolicy,
		Sources:          f.sources(descriptor),
		ExportedPackages: sortedSet(descriptor.ExportedPackages()),
	})
	if err != nil {
		region.Dispose()
		return nil, gerrors.NewDeploymentError(id, err)
	}

	if err := region.SetOwner(owner); err != nil {
		region.Dispose()
		owner.Dispose()
		return nil, gerrors.NewDeploymentError(id, err)
	}

	for _, plugin := range plugins {
		if _, err := f.CreatePlugin(region, plugin); err != nil {
			region.Dispose()
			return nil, gerrors.NewDeploymentError(id, err)
		}
	}

	// the owner is what callers hold; disposing it tears the whole tree down
	_ = owner.AddShutdownListener(region.Dispose)
	f.logger.Debugf("module tree %s created with %d plugin(s)", id, len(plugins))
	return owner, nil
}

func (f *Factory) validateRoot(descriptor *artifact.Descriptor) error {
	err := validation.NewDirectoryValidator(
		descriptor.RootFolder(),
		f.stat,
		gerrors.ErrArtifactRootNotFound,
		gerrors.ErrArtifactRootNotDirectory,
	).Validate()
	if err != nil {
		return gerrors.NewDeploymentError(descriptor.ID(), err)
	}
	return nil
}

func (f *Factory) sources(descriptor *artifact.Descriptor) []Source {
	roots := descriptor.ResourceRoots()
	sources := make([]Source, 0, len(roots))
	for _, root := range roots {
		sources = append(sources, NewDirSource(root, f.symbolExtension))
	}
	return sources
}

func (f *Factory) sanitize(region *Region, descriptor *artifact.Descriptor) []string {
	exported := sortedSet(descriptor.ExportedPackages())
	return slices.DeleteFunc(exported, func(pkg string) bool {
		if strategy, ok := region.Policy().Entry(pkg); ok && strategy.delegatesFirst() {
			f.logger.Warnf("plugin %s exports package %s which %s resolves %s, ignoring it", descriptor.ID(), pkg, region.ID(), strategy)
			return true
		}
		return false
	})
}

func exportedPackages(plugins []*artifact.Descriptor) []string {
	var packages []string
	for _, plugin := range plugins {
		packages = append(packages, sortedSet(plugin.ExportedPackages())...)
	}
	return packages
}
