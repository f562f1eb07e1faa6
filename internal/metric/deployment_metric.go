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

// DeploymentMetric counts deployments and undeployments per artifact kind and outcome.
type DeploymentMetric struct {
	deployments   metric.Int64Counter
	undeployments metric.Int64Counter
}

// NewDeploymentMetric creates the deployment instruments using the provided Meter.
func NewDeploymentMetric(meter metric.Meter) (*DeploymentMetric, error) {
	var instruments DeploymentMetric
	var err error

	if instruments.deployments, err = meter.Int64Counter(
		"deployment.deploys",
		metric.WithDescription("Number of artifact deployments"),
	); err != nil {
		return nil, err
	}

	if instruments.undeployments, err = meter.Int64Counter(
		"deployment.undeploys",
		metric.WithDescription("Number of artifact undeployments"),
	); err != nil {
		return nil, err
	}
	return &instruments, nil
}

// RecordDeploy records a deployment outcome
func (x *DeploymentMetric) RecordDeploy(ctx context.Context, kind string, err error) {
	x.deployments.Add(ctx, 1, outcome(kind, err))
}

// RecordUndeploy records an undeployment outcome
func (x *DeploymentMetric) RecordUndeploy(ctx context.Context, kind string, err error) {
	x.undeployments.Add(ctx, 1, outcome(kind, err))
}

func outcome(kind string, err error) metric.MeasurementOption {
	result := "success"
	if err != nil {
		result = "failure"
	}
	return metric.WithAttributes(attribute.String("kind", kind), attribute.String("outcome", result))
}
