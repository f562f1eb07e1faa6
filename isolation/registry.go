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
	"strings"

	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/internal/xsync"
	"github.com/modhost/modhost/log"
)

// Registry is the arena owning every live node, keyed by node id.
// Nodes find their parent through it and leave it once disposed.
type Registry struct {
	nodes  *xsync.Map[string, *Node]
	logger log.Logger
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger shared by the registry nodes
func WithRegistryLogger(logger log.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{nodes: xsync.NewMap[string, *Node](), logger: log.DiscardLogger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewNode creates and registers a node. The parent, when named, must be registered.
func (r *Registry) NewNode(cfg NodeConfig) (*Node, error) {
	if err := r.check(cfg); err != nil {
		return nil, err
	}
	node := newNode(r, cfg)
	if _, stored := r.nodes.SetIfAbsent(cfg.ID, node); !stored {
		return nil, gerrors.NewErrNodeAlreadyExists(cfg.ID)
	}
	return node, nil
}

// NewRegion creates and registers an empty region
func (r *Registry) NewRegion(cfg NodeConfig) (*Region, error) {
	node, err := r.NewNode(cfg)
	if err != nil {
		return nil, err
	}
	region := &Region{Node: node}
	node.teardown = region.disposeMembers
	return region, nil
}

func (r *Registry) check(cfg NodeConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return gerrors.NewErrInvalidDescriptor(gerrors.ErrInvalidArtifactName)
	}
	if cfg.ParentID != "" {
		if _, ok := r.nodes.Get(cfg.ParentID); !ok {
			return gerrors.NewErrParentNotFound(cfg.ParentID)
		}
	}
	return nil
}

// Get returns the node registered under id
func (r *Registry) Get(id string) (*Node, bool) {
	return r.nodes.Get(id)
}

// Nodes returns the registered nodes ordered by id
func (r *Registry) Nodes() []*Node {
	nodes := r.nodes.Values()
	slices.SortFunc(nodes, func(a, b *Node) int { return strings.Compare(a.id, b.id) })
	return nodes
}

// Len returns the number of registered nodes
func (r *Registry) Len() int {
	return r.nodes.Len()
}

// Resolve resolves symbol from the node registered under nodeID
func (r *Registry) Resolve(nodeID, symbol string) (Resolution, bool) {
	node, ok := r.nodes.Get(nodeID)
	if !ok {
		return Resolution{}, false
	}
	return node.Resolve(symbol)
}

func (r *Registry) remove(node *Node) {
	r.nodes.DeleteIf(node.id, func(current *Node) bool { return current == node })
}

// flushAll drops every resolved symbol cache after a region membership change
func (r *Registry) flushAll() {
	r.nodes.Range(func(_ string, node *Node) { node.flush() })
}
