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

package metric

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheMetric groups the instruments describing the domain loader cache.
//
// Instruments:
//   - domaincache.hits           (Int64Counter)
//   - domaincache.misses         (Int64Counter)
//   - domaincache.constructions  (Int64Counter)
//   - domaincache.evictions      (Int64Counter)
type CacheMetric struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	constructions metric.Int64Counter
	evictions     metric.Int64Counter
}

// NewCacheMetric creates the domain cache instruments using the provided Meter.
func NewCacheMetric(meter metric.Meter) (*CacheMetric, error) {
	var instruments CacheMetric
	var err error

	if instruments.hits, err = meter.Int64Counter(
		"domaincache.hits",
		metric.WithDescription("Number of domain lookups served from the cache"),
	); err != nil {
		return nil, err
	}

	if instruments.misses, err = meter.Int64Counter(
		"domaincache.misses",
		metric.WithDescription("Number of domain lookups that missed the lock-free read"),
	); err != nil {
		return nil, err
	}

	if instruments.constructions, err = meter.Int64Counter(
		"domaincache.constructions",
		metric.WithDescription("Number of domain module nodes constructed"),
	); err != nil {
		return nil, err
	}

	if instruments.evictions, err = meter.Int64Counter(
		"domaincache.evictions",
		metric.WithDescription("Number of domain module nodes evicted on shutdown"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// RecordHit records a cache hit for the given domain
func (x *CacheMetric) RecordHit(ctx context.Context, domainID string) {
	x.hits.Add(ctx, 1, domainAttr(domainID))
}

// RecordMiss records a cache miss for the given domain
func (x *CacheMetric) RecordMiss(ctx context.Context, domainID string) {
	x.misses.Add(ctx, 1, domainAttr(domainID))
}

// RecordConstruction records the construction of a domain node
func (x *CacheMetric) RecordConstruction(ctx context.Context, domainID string) {
	x.constructions.Add(ctx, 1, domainAttr(domainID))
}

// RecordEviction records the eviction of a domain node
func (x *CacheMetric) RecordEviction(ctx context.Context, domainID string) {
	x.evictions.Add(ctx, 1, domainAttr(domainID))
}

func domainAttr(domainID string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("domain", domainID))
}
