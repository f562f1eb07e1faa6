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

package manager

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/modhost/modhost/deployment"
	"github.com/modhost/modhost/discovery"
	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/extension"
	"github.com/modhost/modhost/internal/chain"
	"github.com/modhost/modhost/internal/metric"
	"github.com/modhost/modhost/internal/tracing"
	"github.com/modhost/modhost/internal/validation"
	"github.com/modhost/modhost/isolation"
	"github.com/modhost/modhost/log"
)

type unit struct {
	extension extension.Extension
	state     State
}

// Manager drives the lifecycle of the discovered extensions.
//
// Extensions are initialised and started in resolved order; the first
// failure aborts the step and is returned. They are stopped in reverse
// resolved order and disposed in forward resolved order unless configured
// otherwise; those failures are logged and never returned, so that one
// failing extension never blocks the teardown of the others.
type Manager struct {
	mu sync.Mutex

	discoverer   discovery.Discoverer
	resolver     *extension.Resolver
	logger       log.Logger
	service      deployment.Service
	registry     *isolation.Registry
	disposeOrder DisposeOrder
	metric       *metric.ExtensionMetric
	tracer       trace.Tracer

	state  State
	failed bool
	units  []*unit
}

// Option configures a Manager
type Option func(*Manager)

// WithResolver sets the dependency resolver
func WithResolver(resolver *extension.Resolver) Option {
	return func(m *Manager) {
		if resolver != nil {
			m.resolver = resolver
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDeploymentService sets the service handed to DeploymentServiceAware
// extensions. Extensions implementing deployment.Listener are registered
// with it as application and domain deployment listeners.
func WithDeploymentService(service deployment.Service) Option {
	return func(m *Manager) { m.service = service }
}

// WithRegistry sets the registry handed to RegistryAware extensions
func WithRegistry(registry *isolation.Registry) Option {
	return func(m *Manager) { m.registry = registry }
}

// WithDisposeOrder sets the order extensions are disposed in
func WithDisposeOrder(order DisposeOrder) Option {
	return func(m *Manager) { m.disposeOrder = order }
}

// WithMetric records lifecycle durations and failures
func WithMetric(recorder *metric.ExtensionMetric) Option {
	return func(m *Manager) { m.metric = recorder }
}

// WithTracer traces lifecycle steps
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Manager) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// New creates a Manager driving the extensions found by discoverer
func New(discoverer discovery.Discoverer, opts ...Option) *Manager {
	m := &Manager{
		discoverer: discoverer,
		logger:     log.DiscardLogger,
		tracer:     tracing.NoopTracer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.resolver == nil {
		m.resolver = extension.NewResolver(
			extension.WithResolverLogger(m.logger),
			extension.WithResolverMetric(m.metric))
	}
	return m
}

// State returns the lifecycle state of the extensions
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Extensions returns the extensions in resolved order
func (m *Manager) Extensions() []extension.Extension {
	m.mu.Lock()
	defer m.mu.Unlock()
	exts := make([]extension.Extension, 0, len(m.units))
	for _, u := range m.units {
		exts = append(exts, u.extension)
	}
	return exts
}

// Resolve discovers the extensions and orders them without initialising them
func (m *Manager) Resolve(ctx context.Context) ([]extension.Extension, error) {
	m.mu.Lock()
	if m.state != Discovered {
		m.mu.Unlock()
		return nil, gerrors.NewErrInvalidLifecycleState(phaseResolve, m.state.String())
	}
	err := m.resolve(ctx)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.Extensions(), nil
}

// Initialise discovers and resolves the extensions when not done yet,
// hands them the host capabilities they declare, then initialises them
// in resolved order.
func (m *Manager) Initialise(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Discovered && m.state != Resolved {
		return gerrors.NewErrInvalidLifecycleState(phaseInitialise, m.state.String())
	}
	if m.state == Discovered {
		if err := m.resolve(ctx); err != nil {
			return err
		}
	}

	m.injectCapabilities()
	m.state = Initialised
	err := m.forward(ctx, phaseInitialise, Resolved, Initialised, func(ctx context.Context, ext extension.Extension) error {
		return ext.Initialise(ctx)
	})
	m.failed = err != nil
	return err
}

// Start starts the extensions in resolved order. The first failure aborts.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Initialised || m.failed {
		return gerrors.NewErrInvalidLifecycleState(phaseStart, m.describe())
	}

	m.state = Started
	err := m.forward(ctx, phaseStart, Initialised, Started, func(ctx context.Context, ext extension.Extension) error {
		return ext.Start(ctx)
	})
	m.failed = err != nil
	return err
}

// Stop stops the started extensions in reverse resolved order. Failures
// are logged; every started extension is stopped.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Started && m.state != Initialised {
		return gerrors.NewErrInvalidLifecycleState(phaseStop, m.state.String())
	}

	units := slices.Clone(m.units)
	slices.Reverse(units)
	m.teardown(ctx, phaseStop, units, []State{Started}, Stopped, func(ctx context.Context, ext extension.Extension) error {
		return ext.Stop(ctx)
	})
	m.state = Stopped
	return nil
}

// Dispose disposes the initialised extensions. Failures are logged; every
// initialised extension is disposed. Deployment listeners are unregistered.
func (m *Manager) Dispose(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Started || m.state == Disposed {
		return gerrors.NewErrInvalidLifecycleState(phaseDispose, m.state.String())
	}

	units := slices.Clone(m.units)
	if m.disposeOrder == DisposeReverse {
		slices.Reverse(units)
	}
	m.teardown(ctx, phaseDispose, units, []State{Initialised, Stopped}, Disposed, func(ctx context.Context, ext extension.Extension) error {
		return ext.Dispose(ctx)
	})
	m.unregisterListeners()
	m.state = Disposed
	return nil
}

// resolve must be called with the lock held
func (m *Manager) resolve(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "extension."+phaseResolve)
	exts, err := m.discoverer.Discover(ctx)
	if err == nil {
		err = validate(exts)
	}
	if err == nil {
		exts, err = m.resolver.Resolve(ctx, exts)
	}
	tracing.End(span, err)
	if err != nil {
		return err
	}

	m.units = make([]*unit, 0, len(exts))
	for _, ext := range exts {
		m.units = append(m.units, &unit{extension: ext, state: Resolved})
	}
	m.state = Resolved
	m.logger.Infof("%d extension(s) resolved", len(m.units))
	return nil
}

// forward runs step on every unit in from state, in resolved order, and
// stops at the first failure
func (m *Manager) forward(ctx context.Context, phase string, from, to State, step func(context.Context, extension.Extension) error) error {
	started := time.Now()
	runner := chain.New(chain.WithFailFast(), chain.WithContext(ctx))
	for _, u := range m.units {
		if u.state != from {
			continue
		}
		runner.AddContextRunner(func(ctx context.Context) error {
			if err := m.run(ctx, phase, u, step); err != nil {
				return err
			}
			u.state = to
			return nil
		})
	}

	err := runner.Run()
	if m.metric != nil {
		m.metric.RecordPhase(ctx, phase, time.Since(started))
	}
	return err
}

// teardown runs step on every unit in one of the from states and logs the failures
func (m *Manager) teardown(ctx context.Context, phase string, units []*unit, from []State, to State, step func(context.Context, extension.Extension) error) {
	started := time.Now()
	runner := chain.New(chain.WithRunAll(), chain.WithContext(ctx))
	for _, u := range units {
		if !slices.Contains(from, u.state) {
			continue
		}
		runner.AddContextRunner(func(ctx context.Context) error {
			err := m.run(ctx, phase, u, step)
			u.state = to
			return err
		})
	}

	for _, err := range multierr.Errors(runner.Run()) {
		m.logger.Error(err)
	}
	if m.metric != nil {
		m.metric.RecordPhase(ctx, phase, time.Since(started))
	}
}

// run calls step on u and turns failures and panics into a LifecycleError
func (m *Manager) run(ctx context.Context, phase string, u *unit, step func(context.Context, extension.Extension) error) (err error) {
	id := u.extension.ID()
	ctx, span := m.tracer.Start(ctx, "extension."+phase, trace.WithAttributes(
		attribute.String(tracing.AttrUnitID, id),
		attribute.String(tracing.AttrPhase, phase),
	))

	defer func() {
		if r := recover(); r != nil {
			err = gerrors.NewPanicError(r)
		}
		if err != nil {
			err = gerrors.NewLifecycleError(phase, id, err)
			if m.metric != nil {
				m.metric.RecordFailure(ctx, phase, id)
			}
		}
		tracing.End(span, err)
	}()

	m.logger.Debugf("%s extension %s", phase, id)
	return step(ctx, u.extension)
}

// injectCapabilities must be called with the lock held
func (m *Manager) injectCapabilities() {
	exts := make([]extension.Extension, 0, len(m.units))
	for _, u := range m.units {
		exts = append(exts, u.extension)
	}

	for _, u := range m.units {
		if aware, ok := u.extension.(extension.DeploymentServiceAware); ok && m.service != nil {
			aware.SetDeploymentService(m.service)
		}
		if aware, ok := u.extension.(extension.RegistryAware); ok && m.registry != nil {
			aware.SetRegistry(m.registry)
		}
		if aware, ok := u.extension.(extension.ExtensionsAware); ok {
			aware.SetExtensions(slices.Clone(exts))
		}
		if listener, ok := u.extension.(deployment.Listener); ok && m.service != nil {
			m.service.AddDeploymentListener(listener)
			m.service.AddDomainDeploymentListener(listener)
		}
	}
}

func (m *Manager) unregisterListeners() {
	if m.service == nil {
		return
	}
	for _, u := range m.units {
		if listener, ok := u.extension.(deployment.Listener); ok {
			m.service.RemoveDeploymentListener(listener)
			m.service.RemoveDomainDeploymentListener(listener)
		}
	}
}

func (m *Manager) describe() string {
	if m.failed {
		return fmt.Sprintf("%s (failed)", m.state)
	}
	return m.state.String()
}

// validate checks the extension ids
func validate(exts []extension.Extension) error {
	checks := validation.New(validation.AllErrors())
	seen := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		if ext == nil {
			checks.AddAssertion(false, "nil extension")
			continue
		}
		id := ext.ID()
		checks.AddValidator(validation.NewNameValidator(id, fmt.Errorf("id=(%s) %w", id, gerrors.ErrInvalidExtensionID)))
		if _, ok := seen[id]; ok {
			checks.AddValidator(validation.ValidatorFunc(func() error { return gerrors.NewErrDuplicateExtension(id) }))
		}
		seen[id] = struct{}{}
	}
	return checks.Validate()
}
