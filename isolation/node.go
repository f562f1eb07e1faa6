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
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/atomic"

	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/log"
)

// Resolution is the outcome of a successful lookup
type Resolution struct {
	// Symbol is the requested symbol or resource
	Symbol string
	// Location is where the source found it
	Location string
	// NodeID is the node whose local sources provided it
	NodeID string
	// ArtifactID is the artifact owning that node
	ArtifactID string
}

// ShutdownListener is notified when a node is disposed
type ShutdownListener func()

// NodeConfig describes a node to create in a Registry
type NodeConfig struct {
	// ID uniquely identifies the node in its registry
	ID string
	// ArtifactID identifies the artifact the node belongs to
	ArtifactID string
	// ParentID is the id of the parent node. Only the container has none.
	ParentID string
	// Policy decides where symbols are looked up first. Nil means child first for everything.
	Policy *LookupPolicy
	// Sources are the local resource roots, searched in order
	Sources []Source
	// ExportedPackages are the packages the artifact makes visible to others
	ExportedPackages []string
}

// Node is an isolated namespace: the module equivalent of a class loader.
//
// A node never holds its parent; it keeps the parent id and resolves it
// through its Registry on every delegation. Region members are owned by
// the region and held directly.
type Node struct {
	id         string
	artifactID string
	parentID   string
	policy     *LookupPolicy
	sources    []Source
	exported   mapset.Set[string]
	registry   *Registry
	logger     log.Logger

	mu        sync.RWMutex
	listeners []ShutdownListener
	members   []*member

	resolved *gocache.Cache
	disposed *atomic.Bool
	teardown func()
}

func newNode(registry *Registry, cfg NodeConfig) *Node {
	policy := cfg.Policy
	if policy == nil {
		policy = NewLookupPolicy(ChildFirst, nil)
	}
	return &Node{
		id:         cfg.ID,
		artifactID: cfg.ArtifactID,
		parentID:   cfg.ParentID,
		policy:     policy,
		sources:    slices.Clone(cfg.Sources),
		exported:   mapset.NewSet(cfg.ExportedPackages...),
		registry:   registry,
		logger:     registry.logger,
		resolved:   gocache.New(gocache.NoExpiration, 0),
		disposed:   atomic.NewBool(false),
	}
}

// ID returns the node id
func (n *Node) ID() string { return n.id }

// ArtifactID returns the id of the artifact owning the node
func (n *Node) ArtifactID() string { return n.artifactID }

// ParentID returns the id of the parent node, empty for the container
func (n *Node) ParentID() string { return n.parentID }

// Policy returns the node lookup policy
func (n *Node) Policy() *LookupPolicy { return n.policy }

// ExportedPackages returns a copy of the packages the node artifact exports
func (n *Node) ExportedPackages() mapset.Set[string] { return n.exported.Clone() }

// Parent returns the parent node when it is still registered
func (n *Node) Parent() (*Node, bool) {
	if n.parentID == "" {
		return nil, false
	}
	return n.registry.Get(n.parentID)
}

// IsDisposed reports whether Dispose was called
func (n *Node) IsDisposed() bool {
	return n.disposed.Load()
}

// Resolve looks a fully qualified symbol up.
//
// For packages resolved parent first, the parent is searched before the
// node; parent only packages are never searched locally. Otherwise the
// local sources are searched, then the region members in registration
// order, then the parent unless the package is child only. A miss returns
// false and is not an error.
//
// Hits, including those found through the parent, are cached for the life
// of the node: a symbol added later to a local source stays shadowed by the
// cached hit until a region membership change flushes the caches. Misses
// are not cached.
func (n *Node) Resolve(symbol string) (Resolution, bool) {
	if n.disposed.Load() {
		return Resolution{}, false
	}
	if cached, ok := n.resolved.Get(symbol); ok {
		return cached.(Resolution), true
	}

	resolution, ok := n.resolve(symbol)
	if ok {
		n.resolved.SetDefault(symbol, resolution)
	}
	return resolution, ok
}

func (n *Node) resolve(symbol string) (Resolution, bool) {
	strategy := n.policy.StrategyFor(symbol)
	if strategy.delegatesFirst() {
		if resolution, ok := n.resolveParent(symbol); ok {
			return resolution, true
		}
		if strategy == ParentOnly {
			return Resolution{}, false
		}
	}

	if resolution, ok := n.resolveLocal(symbol); ok {
		return resolution, true
	}

	if resolution, ok := n.resolveMembers(symbol); ok {
		return resolution, true
	}

	if strategy == ChildFirst {
		return n.resolveParent(symbol)
	}
	return Resolution{}, false
}

func (n *Node) resolveLocal(symbol string) (Resolution, bool) {
	for _, source := range n.sources {
		if location, ok := source.Lookup(symbol); ok {
			return n.resolution(symbol, location), true
		}
	}
	return Resolution{}, false
}

func (n *Node) resolveMembers(symbol string) (Resolution, bool) {
	pkg := PackageOf(symbol)
	for _, m := range n.candidates(func(m *member) bool { return m.filter.exportsPackage(pkg) }, func(m *member) bool { return m.filter.all }) {
		if resolution, ok := m.node.resolveLocal(symbol); ok {
			return resolution, true
		}
	}
	return Resolution{}, false
}

func (n *Node) resolveParent(symbol string) (Resolution, bool) {
	parent, ok := n.Parent()
	if !ok {
		return Resolution{}, false
	}
	return parent.Resolve(symbol)
}

// Resource returns the first location of a resource. The name is
// normalized first and its enclosing folder selects the lookup strategy.
func (n *Node) Resource(name string) (Resolution, bool) {
	all := n.resources(NormalizeResource(name), true)
	if len(all) == 0 {
		return Resolution{}, false
	}
	return all[0], true
}

// Resources returns every location of a resource: local ones first, then
// region members, then the parent chain.
func (n *Node) Resources(name string) []Resolution {
	return n.resources(NormalizeResource(name), false)
}

func (n *Node) resources(name string, first bool) []Resolution {
	if n.disposed.Load() || name == "" {
		return nil
	}

	strategy := n.policy.PackageStrategy(ResourcePackage(name))
	var found []Resolution
	collect := func(more []Resolution) bool {
		found = append(found, more...)
		return first && len(found) > 0
	}

	if strategy.delegatesFirst() {
		if collect(n.parentResources(name, first)) || strategy == ParentOnly {
			return found
		}
	}

	if collect(n.localResources(name, first)) {
		return found
	}

	members := n.candidates(func(m *member) bool { return m.filter.exportsResource(name) }, func(m *member) bool { return m.filter.all })
	for _, m := range members {
		if collect(m.node.localResources(name, first)) {
			return found
		}
	}

	if strategy == ChildFirst {
		collect(n.parentResources(name, first))
	}
	return found
}

func (n *Node) localResources(name string, first bool) []Resolution {
	var found []Resolution
	for _, source := range n.sources {
		if location, ok := source.Resource(name); ok {
			found = append(found, n.resolution(name, location))
			if first {
				break
			}
		}
	}
	return found
}

func (n *Node) parentResources(name string, first bool) []Resolution {
	parent, ok := n.Parent()
	if !ok {
		return nil
	}
	return parent.resources(name, first)
}

func (n *Node) resolution(symbol, location string) Resolution {
	return Resolution{Symbol: symbol, Location: location, NodeID: n.id, ArtifactID: n.artifactID}
}

// candidates returns the members explicitly exporting what is looked up,
// when there is one, and otherwise the members exporting everything.
func (n *Node) candidates(explicit, fallback func(*member) bool) []*member {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, m := range n.members {
		if explicit(m) && !m.node.IsDisposed() {
			return []*member{m}
		}
	}

	out := make([]*member, 0, len(n.members))
	for _, m := range n.members {
		if fallback(m) && !m.node.IsDisposed() {
			out = append(out, m)
		}
	}
	return out
}

// AddShutdownListener registers fn to run when the node is disposed.
// Listeners run once, in registration order.
func (n *Node) AddShutdownListener(fn ShutdownListener) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.disposed.Load() {
		return gerrors.ErrNodeDisposed
	}
	n.listeners = append(n.listeners, fn)
	return nil
}

// Dispose removes the node from its registry, then fires the shutdown
// listeners and drops the resolved symbol cache. The id is free again by
// the time the listeners run. Later calls are no-ops.
func (n *Node) Dispose() {
	n.mu.Lock()
	if !n.disposed.CompareAndSwap(false, true) {
		n.mu.Unlock()
		return
	}
	listeners := n.listeners
	n.listeners = nil
	n.mu.Unlock()

	n.registry.remove(n)

	if n.teardown != nil {
		n.teardown()
	}

	for _, listener := range listeners {
		n.notify(listener)
	}

	n.resolved.Flush()
	n.logger.Debugf("module node %s disposed", n.id)
}

func (n *Node) notify(listener ShutdownListener) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Errorf("shutdown listener of %s failed: %v", n.id, gerrors.NewPanicError(r))
		}
	}()
	listener()
}

// flush drops the resolved symbol cache of the node
func (n *Node) flush() {
	n.resolved.Flush()
}
