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
	"context"
	"fmt"
	"sync"

	"github.com/modhost/modhost/artifact"
	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/internal/metric"
	"github.com/modhost/modhost/internal/xsync"
	"github.com/modhost/modhost/log"
)

type cacheEntry struct {
	node        *Node
	fingerprint uint64
}

// DomainCache shares one domain node per domain id between every
// application deployed in that domain.
//
// Reads go through the entry map without taking the cache mutex. A miss
// takes the mutex, checks again, then validates and builds the domain tree
// before releasing it: root folder validation runs inside the critical
// section so that two concurrent deployments of a domain can never build
// it twice. The node shutdown listener evicts the entry under the same mutex.
type DomainCache struct {
	mu      sync.Mutex
	entries *xsync.Map[string, *cacheEntry]
	factory *Factory
	logger  log.Logger
	metric  *metric.CacheMetric
}

// CacheOption configures a DomainCache
type CacheOption func(*DomainCache)

// WithCacheLogger sets the logger
func WithCacheLogger(logger log.Logger) CacheOption {
	return func(c *DomainCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCacheMetric records cache hits, misses, constructions and evictions
func WithCacheMetric(m *metric.CacheMetric) CacheOption {
	return func(c *DomainCache) { c.metric = m }
}

// NewDomainCache creates an empty cache building domains with factory
func NewDomainCache(factory *Factory, opts ...CacheOption) *DomainCache {
	c := &DomainCache{
		entries: xsync.NewMap[string, *cacheEntry](),
		factory: factory,
		logger:  log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the node of the domain described by descriptor,
// building it on first request. A failed construction caches nothing.
func (c *DomainCache) GetOrCreate(ctx context.Context, descriptor *artifact.Descriptor) (*Node, error) {
	if descriptor == nil || descriptor.Kind() != artifact.Domain {
		return nil, gerrors.NewErrInvalidDescriptor(fmt.Errorf("%v is not a domain", descriptor))
	}

	id := descriptor.ID()
	if entry, ok := c.entries.Get(id); ok {
		c.hit(ctx, entry, descriptor)
		return entry.node, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries.Get(id); ok {
		c.hit(ctx, entry, descriptor)
		return entry.node, nil
	}

	if c.metric != nil {
		c.metric.RecordMiss(ctx, id)
	}

	node, err := c.factory.CreateDomain(descriptor)
	if err != nil {
		return nil, err
	}

	entry := &cacheEntry{node: node, fingerprint: descriptor.Fingerprint()}
	if err := node.AddShutdownListener(func() { c.evict(id, entry) }); err != nil {
		return nil, gerrors.NewDeploymentError(id, err)
	}

	c.entries.Set(id, entry)
	if c.metric != nil {
		c.metric.RecordConstruction(ctx, id)
	}
	c.logger.Infof("domain %s module tree created", id)
	return node, nil
}

// Get returns the cached node of domainID
func (c *DomainCache) Get(domainID string) (*Node, bool) {
	entry, ok := c.entries.Get(domainID)
	if !ok {
		return nil, false
	}
	return entry.node, true
}

// Dispose disposes node. Its shutdown listener evicts the cache entry.
func (c *DomainCache) Dispose(node *Node) {
	if node != nil {
		node.Dispose()
	}
}

// Len returns the number of cached domains
func (c *DomainCache) Len() int {
	return c.entries.Len()
}

// DomainIDs returns the ids of the cached domains
func (c *DomainCache) DomainIDs() []string {
	return c.entries.Keys()
}

func (c *DomainCache) hit(ctx context.Context, entry *cacheEntry, descriptor *artifact.Descriptor) {
	if entry.fingerprint != descriptor.Fingerprint() {
		c.logger.Warnf("domain %s requested with a different descriptor, keeping the deployed one", descriptor.ID())
	}
	if c.metric != nil {
		c.metric.RecordHit(ctx, descriptor.ID())
	}
}

func (c *DomainCache) evict(id string, entry *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries.DeleteIf(id, func(current *cacheEntry) bool { return current == entry }) {
		if c.metric != nil {
			c.metric.RecordEviction(context.Background(), id)
		}
		c.logger.Infof("domain %s evicted", id)
	}
}
