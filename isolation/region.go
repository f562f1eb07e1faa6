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
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	gerrors "github.com/modhost/modhost/errors"
)

// Filter decides what a member makes visible through its region
type Filter struct {
	packages  mapset.Set[string]
	resources mapset.Set[string]
	all       bool
}

// FilterAll exports every symbol and resource of a member
func FilterAll() Filter {
	return Filter{packages: mapset.NewSet[string](), resources: mapset.NewSet[string](), all: true}
}

// NewFilter exports exactly the given packages and resources
func NewFilter(packages, resources []string) Filter {
	normalized := make([]string, 0, len(resources))
	for _, resource := range resources {
		normalized = append(normalized, NormalizeResource(resource))
	}
	return Filter{packages: mapset.NewSet(packages...), resources: mapset.NewSet(normalized...)}
}

// ExportsAll reports whether the filter exports everything
func (f Filter) ExportsAll() bool { return f.all }

// Packages returns the explicitly exported packages in lexical order
func (f Filter) Packages() []string { return sortedSet(f.packages) }

// Resources returns the explicitly exported resources in lexical order
func (f Filter) Resources() []string { return sortedSet(f.resources) }

func (f Filter) exportsPackage(pkg string) bool {
	return f.packages != nil && f.packages.Contains(pkg)
}

func (f Filter) exportsResource(name string) bool {
	return f.resources != nil && f.resources.Contains(name)
}

func (f Filter) explicit() bool {
	return f.packages != nil && (f.packages.Cardinality() > 0 || f.resources.Cardinality() > 0)
}

type member struct {
	node   *Node
	filter Filter
}

// Region is a node fronting several sibling nodes, its members.
// Disposing the region disposes every member first.
//
// The owner, when set, is the first member and exports everything. Plugin
// members export what their filter lists. A symbol whose package a member
// exports explicitly is only looked up in that member; other symbols are
// looked up in the members exporting everything, in registration order,
// and the first match wins.
type Region struct {
	*Node
	ownerID string
}

// ComposeRegion creates a region in registry fronting members in
// registration order. Every member exports everything.
func ComposeRegion(registry *Registry, cfg NodeConfig, members ...*Node) (*Region, error) {
	region, err := registry.NewRegion(cfg)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if err := region.AddMember(m, FilterAll()); err != nil {
			region.Dispose()
			return nil, err
		}
	}
	return region, nil
}

// SetOwner adds owner as the first member of the region. The owner exports
// everything and cannot be removed.
func (r *Region) SetOwner(owner *Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ownerID != "" {
		return fmt.Errorf("region %s already owned by %s: %w", r.id, r.ownerID, gerrors.ErrMemberAlreadyInRegion)
	}
	if err := r.checkMember(owner); err != nil {
		return err
	}
	r.ownerID = owner.ID()
	r.members = slices.Insert(r.members, 0, &member{node: owner, filter: FilterAll()})
	r.registry.flushAll()
	return nil
}

// Owner returns the owner of the region
func (r *Region) Owner() (*Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ownerID == "" {
		return nil, false
	}
	return r.members[0].node, true
}

// AddMember appends node to the region.
//
// It fails when node already belongs to the region, when another member
// already exports one of the filter packages, or when the region resolves
// one of them parent first.
func (r *Region) AddMember(node *Node, filter Filter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkMember(node); err != nil {
		return err
	}

	for _, pkg := range filter.Packages() {
		if strategy, ok := r.policy.Entry(pkg); ok && strategy.delegatesFirst() {
			return fmt.Errorf("package=(%s) region=(%s) %w", pkg, r.id, gerrors.ErrIllegalPackageMapping)
		}
		for _, m := range r.members {
			if m.filter.exportsPackage(pkg) {
				return fmt.Errorf("package=(%s) member=(%s) %w", pkg, m.node.ID(), gerrors.ErrDuplicatePackageMapping)
			}
		}
	}

	r.members = append(r.members, &member{node: node, filter: filter})
	r.registry.flushAll()
	return nil
}

// RemoveMember removes node from the region and reports whether it was
// removed. The owner and members exporting packages or resources stay.
func (r *Region) RemoveMember(node *Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	index := slices.IndexFunc(r.members, func(m *member) bool { return m.node == node })
	if index < 0 {
		return false
	}
	if node.ID() == r.ownerID || r.members[index].filter.explicit() {
		return false
	}
	r.members = slices.Delete(r.members, index, index+1)
	r.registry.flushAll()
	return true
}

// Members returns the member nodes in registration order
func (r *Region) Members() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nodes := make([]*Node, 0, len(r.members))
	for _, m := range r.members {
		nodes = append(nodes, m.node)
	}
	return nodes
}

// MemberFilter returns the filter node was added with
func (r *Region) MemberFilter(node *Node) (Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.node == node {
			return m.filter, true
		}
	}
	return Filter{}, false
}

// disposeMembers runs when the region node is disposed, before its own listeners
func (r *Region) disposeMembers() {
	for _, m := range r.Members() {
		m.Dispose()
	}
}

// checkMember must be called with the region lock held
func (r *Region) checkMember(node *Node) error {
	if node == nil || node.IsDisposed() {
		return gerrors.ErrNodeDisposed
	}
	for _, m := range r.members {
		if m.node == node {
			return fmt.Errorf("member=(%s) region=(%s) %w", node.ID(), r.id, gerrors.ErrMemberAlreadyInRegion)
		}
	}
	return nil
}

func sortedSet(set mapset.Set[string]) []string {
	if set == nil {
		return nil
	}
	values := set.ToSlice()
	slices.Sort(values)
	return values
}
