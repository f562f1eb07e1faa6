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

package deployment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/sync/errgroup"

	"github.com/modhost/modhost/artifact"
	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/eventstream"
	"github.com/modhost/modhost/internal/metric"
	"github.com/modhost/modhost/isolation"
)

// recorder keeps every event it receives
type recorder struct {
	mu     sync.Mutex
	events []Event
}

var _ Listener = (*recorder)(nil)

func (r *recorder) record(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) OnDeploymentStart(event Event)     { r.record(event) }
func (r *recorder) OnDeploymentSuccess(event Event)   { r.record(event) }
func (r *recorder) OnDeploymentFailure(event Event)   { r.record(event) }
func (r *recorder) OnUndeploymentStart(event Event)   { r.record(event) }
func (r *recorder) OnUndeploymentSuccess(event Event) { r.record(event) }
func (r *recorder) OnUndeploymentFailure(event Event) { r.record(event) }

func (r *recorder) steps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := make([]string, 0, len(r.events))
	for _, event := range r.events {
		steps = append(steps, fmt.Sprintf("%s %s %s", event.Action, event.Phase, event.ArtifactID))
	}
	return steps
}

type mockListener struct {
	NopListener
	mock.Mock
}

func (m *mockListener) OnDeploymentSuccess(event Event) { m.Called(event) }
func (m *mockListener) OnDeploymentFailure(event Event) { m.Called(event) }

type panickingListener struct {
	NopListener
}

func (panickingListener) OnDeploymentStart(Event) { panic("listener bug") }

func newDeployer(t *testing.T, opts ...Option) *Deployer {
	t.Helper()
	registry := isolation.NewRegistry()
	factory, err := isolation.NewFactory(registry)
	require.NoError(t, err)
	return NewDeployer(factory, isolation.NewDomainCache(factory), opts...)
}

func domainDescriptor(t *testing.T, name string) *artifact.Descriptor {
	t.Helper()
	return artifact.MustNew(artifact.Domain, name, artifact.WithRootFolder(t.TempDir()))
}

func applicationDescriptor(t *testing.T, name, domain string) *artifact.Descriptor {
	t.Helper()
	return artifact.MustNew(artifact.Application, name, artifact.WithDomain(domain), artifact.WithRootFolder(t.TempDir()))
}

func TestDeployer(t *testing.T) {
	ctx := context.Background()

	t.Run("With a domain deployment", func(t *testing.T) {
		stream := eventstream.New()
		t.Cleanup(stream.Close)
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, TopicDomains)

		domains, apps := new(recorder), new(recorder)
		deployer := newDeployer(t, WithEventStream(stream))
		deployer.AddDomainDeploymentListener(domains)
		deployer.AddDeploymentListener(apps)

		descriptor := domainDescriptor(t, "billing")
		node, err := deployer.DeployDomain(ctx, descriptor)
		require.NoError(t, err)
		assert.Equal(t, "domain/billing", node.ID())
		assert.Equal(t, []string{"billing"}, deployer.Domains())

		got, ok := deployer.Domain("billing")
		require.True(t, ok)
		assert.Same(t, node, got)

		assert.Equal(t, []string{"deploy start domain/billing", "deploy success domain/billing"}, domains.steps())
		assert.Empty(t, apps.steps())
		assert.Equal(t, domains.events[0].CorrelationID, domains.events[1].CorrelationID)
		assert.NotEqual(t, domains.events[0].ID, domains.events[1].ID)
		assert.Equal(t, "billing", domains.events[1].Domain)

		var published []Event
		for message := range sub.Iterator() {
			published = append(published, message.Payload().(Event))
		}
		require.Len(t, published, 2)
		assert.Equal(t, Succeeded, published[1].Phase)

		_, err = deployer.DeployDomain(ctx, descriptor)
		require.ErrorIs(t, err, gerrors.ErrAlreadyDeployed)
		assert.Equal(t, "deploy failure domain/billing", domains.steps()[3])
	})
	t.Run("With a domain root folder missing", func(t *testing.T) {
		deployer := newDeployer(t)
		descriptor := artifact.MustNew(artifact.Domain, "ghost", artifact.WithRootFolder(filepath.Join(t.TempDir(), "missing")))

		_, err := deployer.DeployDomain(ctx, descriptor)
		require.ErrorIs(t, err, gerrors.ErrArtifactRootNotFound)
		assert.Empty(t, deployer.Domains())
		assert.Equal(t, 1, deployer.Registry().Len())
	})
	t.Run("With an application of the default domain", func(t *testing.T) {
		deployer := newDeployer(t)
		node, err := deployer.DeployApplication(ctx, applicationDescriptor(t, "orders", ""))
		require.NoError(t, err)

		assert.Equal(t, "domain/default/app/orders", node.ID())
		assert.Equal(t, []string{"default"}, deployer.Domains())
		assert.Equal(t, []string{"domain/default/app/orders"}, deployer.Applications())

		got, ok := deployer.Application(node.ID())
		require.True(t, ok)
		assert.Same(t, node, got)

		_, err = deployer.DeployApplication(ctx, applicationDescriptor(t, "orders", ""))
		require.ErrorIs(t, err, gerrors.ErrAlreadyDeployed)
	})
	t.Run("With an application of an unknown domain", func(t *testing.T) {
		listener := new(mockListener)
		listener.On("OnDeploymentFailure", mock.MatchedBy(func(event Event) bool {
			return event.ArtifactID == "domain/billing/app/orders" && event.Domain == "billing" && event.Err != nil
		})).Once()

		deployer := newDeployer(t)
		deployer.AddDeploymentListener(listener)

		_, err := deployer.DeployApplication(ctx, applicationDescriptor(t, "orders", "billing"))
		require.ErrorIs(t, err, gerrors.ErrDomainNotFound)

		var deployment *gerrors.DeploymentError
		require.ErrorAs(t, err, &deployment)
		listener.AssertExpectations(t)
	})
	t.Run("With undeployments", func(t *testing.T) {
		apps := new(recorder)
		deployer := newDeployer(t)
		deployer.AddDeploymentListener(apps)

		domain, err := deployer.DeployDomain(ctx, domainDescriptor(t, "billing"))
		require.NoError(t, err)
		app, err := deployer.DeployApplication(ctx, applicationDescriptor(t, "invoices", "billing"))
		require.NoError(t, err)

		err = deployer.UndeployDomain(ctx, "billing")
		require.ErrorIs(t, err, gerrors.ErrDomainInUse)
		assert.Contains(t, err.Error(), app.ID())
		assert.False(t, domain.IsDisposed())

		require.NoError(t, deployer.UndeployApplication(ctx, app.ID()))
		assert.True(t, app.IsDisposed())
		assert.Empty(t, deployer.Applications())

		require.NoError(t, deployer.UndeployDomain(ctx, "billing"))
		assert.True(t, domain.IsDisposed())
		assert.Empty(t, deployer.Domains())
		assert.Equal(t, 1, deployer.Registry().Len())

		require.ErrorIs(t, deployer.UndeployApplication(ctx, app.ID()), gerrors.ErrApplicationNotFound)
		require.ErrorIs(t, deployer.UndeployDomain(ctx, "billing"), gerrors.ErrDomainNotFound)

		assert.Equal(t, []string{
			"deploy start domain/billing/app/invoices",
			"deploy success domain/billing/app/invoices",
			"undeploy start domain/billing/app/invoices",
			"undeploy success domain/billing/app/invoices",
		}, apps.steps())
	})
	t.Run("With a domain disposed elsewhere", func(t *testing.T) {
		deployer := newDeployer(t)
		domain, err := deployer.DeployDomain(ctx, domainDescriptor(t, "billing"))
		require.NoError(t, err)

		domain.Dispose()
		assert.Empty(t, deployer.Domains())
	})
	t.Run("With listeners removed or panicking", func(t *testing.T) {
		apps := new(recorder)
		deployer := newDeployer(t)
		deployer.AddDeploymentListener(panickingListener{})
		deployer.AddDeploymentListener(apps)
		deployer.RemoveDeploymentListener(apps)

		_, err := deployer.DeployApplication(ctx, applicationDescriptor(t, "orders", ""))
		require.NoError(t, err)
		assert.Empty(t, apps.steps())

		domains := new(recorder)
		deployer.AddDomainDeploymentListener(domains)
		deployer.RemoveDomainDeploymentListener(domains)
		_, err = deployer.DeployDomain(ctx, domainDescriptor(t, "billing"))
		require.NoError(t, err)
		assert.Empty(t, domains.steps())
	})
	t.Run("With invalid descriptors", func(t *testing.T) {
		deployer := newDeployer(t)
		_, err := deployer.DeployDomain(ctx, applicationDescriptor(t, "orders", ""))
		require.ErrorIs(t, err, gerrors.ErrInvalidDescriptor)
		_, err = deployer.DeployApplication(ctx, domainDescriptor(t, "billing"))
		require.ErrorIs(t, err, gerrors.ErrInvalidDescriptor)
	})
	t.Run("With domains deployed concurrently", func(t *testing.T) {
		deployer := newDeployer(t)
		eg, ctx := errgroup.WithContext(ctx)
		for i := range 8 {
			descriptor := domainDescriptor(t, fmt.Sprintf("domain-%d", i))
			eg.Go(func() error {
				_, err := deployer.DeployDomain(ctx, descriptor)
				return err
			})
		}
		require.NoError(t, eg.Wait())
		assert.Len(t, deployer.Domains(), 8)
	})
	t.Run("With tracing and metrics", func(t *testing.T) {
		spans := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

		m, err := metric.NewDeploymentMetric(metric.New().Meter())
		require.NoError(t, err)

		deployer := newDeployer(t, WithTracer(provider.Tracer("test")), WithMetric(m))
		_, err = deployer.DeployApplication(ctx, applicationDescriptor(t, "orders", ""))
		require.NoError(t, err)

		var names []string
		for _, span := range spans.Ended() {
			names = append(names, span.Name())
		}
		assert.ElementsMatch(t, []string{"deployment.DeployDomain", "deployment.DeployApplication"}, names)
	})
}

func TestNopListener(t *testing.T) {
	event := newEvent("id", Undeploy, Failed, artifact.Application, "app", "default", os.ErrNotExist)
	assert.NotPanics(t, func() { dispatch(NopListener{}, event) })
	assert.Equal(t, TopicApplications, event.topic())
	assert.Equal(t, "undeploy", event.Action.String())
	assert.Equal(t, "failure", event.Phase.String())
}
