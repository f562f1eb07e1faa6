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
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/modhost/modhost/artifact"
	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/eventstream"
	"github.com/modhost/modhost/internal/metric"
	"github.com/modhost/modhost/internal/tracing"
	"github.com/modhost/modhost/internal/xsync"
	"github.com/modhost/modhost/isolation"
	"github.com/modhost/modhost/log"
)

type deployed struct {
	descriptor *artifact.Descriptor
	node       *isolation.Node
	domain     string
}

// Deployer is the default Service. Domains are built through the domain
// cache and applications through the factory.
//
// Domains deploy concurrently with each other. Application deployments
// and domain undeployments are serialized so that a domain is never
// disposed while an application is being deployed in it.
type Deployer struct {
	mu sync.Mutex

	factory *isolation.Factory
	cache   *isolation.DomainCache

	domains      *xsync.Map[string, *deployed]
	applications *xsync.Map[string, *deployed]

	listeners       *xsync.List[Listener]
	domainListeners *xsync.List[Listener]

	stream eventstream.Stream
	logger log.Logger
	metric *metric.DeploymentMetric
	tracer trace.Tracer
}

var _ Service = (*Deployer)(nil)

// Option configures a Deployer
type Option func(*Deployer)

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(d *Deployer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEventStream publishes every deployment event on stream
func WithEventStream(stream eventstream.Stream) Option {
	return func(d *Deployer) { d.stream = stream }
}

// WithMetric records deployment outcomes
func WithMetric(m *metric.DeploymentMetric) Option {
	return func(d *Deployer) { d.metric = m }
}

// WithTracer traces deployments
func WithTracer(tracer trace.Tracer) Option {
	return func(d *Deployer) {
		if tracer != nil {
			d.tracer = tracer
		}
	}
}

// NewDeployer creates a Deployer
func NewDeployer(factory *isolation.Factory, cache *isolation.DomainCache, opts ...Option) *Deployer {
	d := &Deployer{
		factory:         factory,
		cache:           cache,
		domains:         xsync.NewMap[string, *deployed](),
		applications:    xsync.NewMap[string, *deployed](),
		listeners:       xsync.NewList[Listener](),
		domainListeners: xsync.NewList[Listener](),
		logger:          log.DiscardLogger,
		tracer:          tracing.NoopTracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Deployer) AddDeploymentListener(listener Listener) {
	d.listeners.Append(listener)
}

func (d *Deployer) RemoveDeploymentListener(listener Listener) {
	d.listeners.Remove(listener)
}

func (d *Deployer) AddDomainDeploymentListener(listener Listener) {
	d.domainListeners.Append(listener)
}

func (d *Deployer) RemoveDomainDeploymentListener(listener Listener) {
	d.domainListeners.Remove(listener)
}

// DeployDomain builds the module tree of a domain through the domain cache.
// Deploying a domain twice fails with ErrAlreadyDeployed.
func (d *Deployer) DeployDomain(ctx context.Context, descriptor *artifact.Descriptor) (node *isolation.Node, err error) {
	if descriptor == nil || descriptor.Kind() != artifact.Domain {
		return nil, gerrors.NewErrInvalidDescriptor(fmt.Errorf("%v is not a domain", descriptor))
	}

	ctx, span := d.startSpan(ctx, "DeployDomain", descriptor)
	defer func() { tracing.End(span, err) }()

	correlation := d.notify(ctx, "", Deploy, Started, descriptor, nil)
	defer func() { d.notify(ctx, correlation, Deploy, outcome(err), descriptor, err) }()

	if _, ok := d.domains.Get(descriptor.Name()); ok {
		return nil, gerrors.NewErrAlreadyDeployed(descriptor.ID())
	}

	node, err = d.cache.GetOrCreate(ctx, descriptor)
	if err != nil {
		return nil, err
	}

	entry := &deployed{descriptor: descriptor, node: node, domain: descriptor.Name()}
	if _, stored := d.domains.SetIfAbsent(descriptor.Name(), entry); !stored {
		return nil, gerrors.NewErrAlreadyDeployed(descriptor.ID())
	}
	if err := node.AddShutdownListener(d.forget(d.domains, descriptor.Name(), entry)); err != nil {
		d.domains.DeleteIf(descriptor.Name(), func(current *deployed) bool { return current == entry })
		return nil, gerrors.NewDeploymentError(descriptor.ID(), err)
	}

	d.logger.Infof("domain %s deployed", descriptor.Name())
	return node, nil
}

// UndeployDomain disposes the module tree of the domain named name
func (d *Deployer) UndeployDomain(ctx context.Context, name string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.domains.Get(name)
	if !ok {
		return gerrors.NewErrDomainNotFound(name)
	}

	ctx, span := d.startSpan(ctx, "UndeployDomain", entry.descriptor)
	defer func() { tracing.End(span, err) }()

	correlation := d.notify(ctx, "", Undeploy, Started, entry.descriptor, nil)
	defer func() { d.notify(ctx, correlation, Undeploy, outcome(err), entry.descriptor, err) }()

	if apps := d.applicationsOf(name); len(apps) > 0 {
		return fmt.Errorf("domain=(%s) applications=%v: %w", name, apps, gerrors.ErrDomainInUse)
	}

	d.cache.Dispose(entry.node)
	d.domains.DeleteIf(name, func(current *deployed) bool { return current == entry })
	d.logger.Infof("domain %s undeployed", name)
	return nil
}

// DeployApplication builds the module tree of an application. Applications
// of the default domain deploy the default domain when needed; other
// domains must be deployed first.
func (d *Deployer) DeployApplication(ctx context.Context, descriptor *artifact.Descriptor) (node *isolation.Node, err error) {
	if descriptor == nil || descriptor.Kind() != artifact.Application {
		return nil, gerrors.NewErrInvalidDescriptor(fmt.Errorf("%v is not an application", descriptor))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, span := d.startSpan(ctx, "DeployApplication", descriptor)
	defer func() { tracing.End(span, err) }()

	correlation := d.notify(ctx, "", Deploy, Started, descriptor, nil)
	defer func() { d.notify(ctx, correlation, Deploy, outcome(err), descriptor, err) }()

	if _, ok := d.applications.Get(descriptor.ID()); ok {
		return nil, gerrors.NewErrAlreadyDeployed(descriptor.ID())
	}

	domain, err := d.domainOf(ctx, descriptor)
	if err != nil {
		return nil, err
	}

	node, err = d.factory.CreateApplication(descriptor, domain)
	if err != nil {
		return nil, err
	}

	entry := &deployed{descriptor: descriptor, node: node, domain: descriptor.Domain()}
	d.applications.Set(descriptor.ID(), entry)
	_ = node.AddShutdownListener(d.forget(d.applications, descriptor.ID(), entry))

	d.logger.Infof("application %s deployed", descriptor.ID())
	return node, nil
}

// UndeployApplication disposes the module tree of the application id
func (d *Deployer) UndeployApplication(ctx context.Context, id string) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.applications.Get(id)
	if !ok {
		return gerrors.NewErrApplicationNotFound(id)
	}

	ctx, span := d.startSpan(ctx, "UndeployApplication", entry.descriptor)
	defer func() { tracing.End(span, err) }()

	correlation := d.notify(ctx, "", Undeploy, Started, entry.descriptor, nil)
	defer func() { d.notify(ctx, correlation, Undeploy, outcome(err), entry.descriptor, err) }()

	entry.node.Dispose()
	d.applications.DeleteIf(id, func(current *deployed) bool { return current == entry })
	d.logger.Infof("application %s undeployed", id)
	return nil
}

// Domains returns the names of the deployed domains in lexical order
func (d *Deployer) Domains() []string {
	names := d.domains.Keys()
	slices.Sort(names)
	return names
}

// Applications returns the ids of the deployed applications in lexical order
func (d *Deployer) Applications() []string {
	ids := d.applications.Keys()
	slices.Sort(ids)
	return ids
}

// Domain returns the node of a deployed domain
func (d *Deployer) Domain(name string) (*isolation.Node, bool) {
	entry, ok := d.domains.Get(name)
	if !ok {
		return nil, false
	}
	return entry.node, true
}

// Application returns the node of a deployed application
func (d *Deployer) Application(id string) (*isolation.Node, bool) {
	entry, ok := d.applications.Get(id)
	if !ok {
		return nil, false
	}
	return entry.node, true
}

// Registry returns the registry holding every deployed node
func (d *Deployer) Registry() *isolation.Registry {
	return d.factory.Registry()
}

// domainOf must be called with the deployer lock held
func (d *Deployer) domainOf(ctx context.Context, descriptor *artifact.Descriptor) (*isolation.Node, error) {
	if entry, ok := d.domains.Get(descriptor.Domain()); ok {
		return entry.node, nil
	}
	if descriptor.Domain() != artifact.DefaultDomainName {
		return nil, gerrors.NewDeploymentError(descriptor.ID(), gerrors.NewErrDomainNotFound(descriptor.Domain()))
	}

	node, err := d.DeployDomain(ctx, artifact.DefaultDomain())
	if err != nil {
		// lost a race with another default domain deployment
		if entry, ok := d.domains.Get(artifact.DefaultDomainName); ok {
			return entry.node, nil
		}
		return nil, err
	}
	return node, nil
}

func (d *Deployer) applicationsOf(domain string) []string {
	var ids []string
	d.applications.Range(func(id string, entry *deployed) {
		if entry.domain == domain {
			ids = append(ids, id)
		}
	})
	slices.Sort(ids)
	return ids
}

func (d *Deployer) forget(entries *xsync.Map[string, *deployed], key string, entry *deployed) isolation.ShutdownListener {
	return func() {
		entries.DeleteIf(key, func(current *deployed) bool { return current == entry })
	}
}

func (d *Deployer) startSpan(ctx context.Context, name string, descriptor *artifact.Descriptor) (context.Context, trace.Span) {
	return d.tracer.Start(ctx, "deployment."+name, trace.WithAttributes(
		attribute.String(tracing.AttrArtifactID, descriptor.ID()),
		attribute.String(tracing.AttrArtifactKind, descriptor.Kind().String()),
	))
}

// notify dispatches an event to the listeners of its kind and publishes
// it on the event stream. It returns the event correlation id.
func (d *Deployer) notify(ctx context.Context, correlation string, action Action, phase Phase, descriptor *artifact.Descriptor, err error) string {
	if correlation == "" {
		correlation = uuid.NewString()
	}
	event := newEvent(correlation, action, phase, descriptor.Kind(), descriptor.ID(), domainName(descriptor), err)

	listeners := d.listeners
	if descriptor.Kind() == artifact.Domain {
		listeners = d.domainListeners
	}
	for _, listener := range listeners.Items() {
		d.dispatch(listener, event)
	}

	if d.stream != nil {
		d.stream.Publish(event.topic(), event)
	}

	if phase != Started && d.metric != nil {
		if action == Deploy {
			d.metric.RecordDeploy(ctx, descriptor.Kind().String(), err)
		} else {
			d.metric.RecordUndeploy(ctx, descriptor.Kind().String(), err)
		}
	}
	if phase == Failed {
		d.logger.Errorf("%s of %s failed: %v", action, descriptor.ID(), err)
	}
	return correlation
}

func (d *Deployer) dispatch(listener Listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("deployment listener failed on %s %s of %s: %v", event.Action, event.Phase, event.ArtifactID, gerrors.NewPanicError(r))
		}
	}()
	dispatch(listener, event)
}

func outcome(err error) Phase {
	if err != nil {
		return Failed
	}
	return Succeeded
}

func domainName(descriptor *artifact.Descriptor) string {
	if descriptor.Kind() == artifact.Domain {
		return descriptor.Name()
	}
	return descriptor.Domain()
}
