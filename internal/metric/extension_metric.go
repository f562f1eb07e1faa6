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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ExtensionMetric groups the instruments describing extension resolution and lifecycle.
//
// Instruments:
//   - extension.resolution.passes    (Int64Counter)
//   - extension.lifecycle.failures   (Int64Counter, attributes: phase, unit)
//   - extension.lifecycle.duration   (Float64Histogram, unit: ms, attribute: phase)
type ExtensionMetric struct {
	resolutionPasses  metric.Int64Counter
	lifecycleFailures metric.Int64Counter
	lifecycleDuration metric.Float64Histogram
}

// NewExtensionMetric creates the extension instruments using the provided Meter.
func NewExtensionMetric(meter metric.Meter) (*ExtensionMetric, error) {
	var instruments ExtensionMetric
	var err error

	if instruments.resolutionPasses, err = meter.Int64Counter(
		"extension.resolution.passes",
		metric.WithDescription("Number of fixed-point passes made while resolving extensions"),
	); err != nil {
		return nil, err
	}

	if instruments.lifecycleFailures, err = meter.Int64Counter(
		"extension.lifecycle.failures",
		metric.WithDescription("Number of extension lifecycle calls that returned an error"),
	); err != nil {
		return nil, err
	}

	if instruments.lifecycleDuration, err = meter.Float64Histogram(
		"extension.lifecycle.duration",
		metric.WithDescription("Time spent driving a lifecycle phase over every extension"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// RecordResolutionPasses records the number of passes a resolution took
func (x *ExtensionMetric) RecordResolutionPasses(ctx context.Context, passes int) {
	x.resolutionPasses.Add(ctx, int64(passes))
}

// RecordFailure records a failed lifecycle call
func (x *ExtensionMetric) RecordFailure(ctx context.Context, phase, unit string) {
	x.lifecycleFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("unit", unit),
	))
}

// RecordPhase records how long a lifecycle phase took
func (x *ExtensionMetric) RecordPhase(ctx context.Context, phase string, elapsed time.Duration) {
	x.lifecycleDuration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attribute.String("phase", phase)))
}
