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

package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"go.opentelemetry.io/otel/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/modhost/modhost/artifact"
	"github.com/modhost/modhost/config"
	"github.com/modhost/modhost/deployment"
	"github.com/modhost/modhost/discovery"
	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/eventstream"
	"github.com/modhost/modhost/extension"
	"github.com/modhost/modhost/internal/chain"
	imetric "github.com/modhost/modhost/internal/metric"
	"github.com/modhost/modhost/internal/tracing"
	"github.com/modhost/modhost/isolation"
	"github.com/modhost/modhost/log"
	"github.com/modhost/modhost/manager"
)

// Host is the composition root. It owns the isolation registry, the
// deployment service and the extensions lifecycle manager.
type Host struct {
	config *config.Config
	logger log.Logger

	discoverer    discovery.Discoverer
	factories     []namedFactory
	meterProvider metric.MeterProvider
	traceOptions  []sdktrace.TracerProviderOption

	registry *isolation.Registry
	factory  *isolation.Factory
	cache    *isolation.DomainCache
	deployer *deployment.Deployer
	stream   *eventstream.EventsStream
	manager  *manager.Manager
	watcher  *deployment.Watcher
	tracing  *tracing.Provider

	mu      sync.Mutex
	started *atomic.Bool
	events  eventstream.Subscriber
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Host
type Option func(*Host)

// WithLogger sets the logger. It defaults to a zap logger at the configured level.
func WithLogger(logger log.Logger) Option {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithDiscoverer sets how extensions are found. It replaces the
// registration files based discovery.
func WithDiscoverer(discoverer discovery.Discoverer) Option {
	return func(h *Host) { h.discoverer = discoverer }
}

// WithExtension registers an extension factory under name. Registered
// extensions are instantiated when listed in a registration file.
func WithExtension(name string, factory func() extension.Extension) Option {
	return func(h *Host) { h.factories = append(h.factories, namedFactory{name: name, factory: factory}) }
}

type namedFactory struct {
	name    string
	factory func() extension.Extension
}

// WithMeterProvider sets the meter provider instruments are created from
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(h *Host) { h.meterProvider = provider }
}

// WithTracerProviderOptions adds options to the tracer provider built when
// tracing is enabled, e.g. an extra span processor
func WithTracerProviderOptions(opts ...sdktrace.TracerProviderOption) Option {
	return func(h *Host) { h.traceOptions = append(h.traceOptions, opts...) }
}

// New creates a Host from cfg. Nothing runs until Start is called.
func New(cfg *config.Config, opts ...Option) (*Host, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Host{
		config:  cfg,
		logger:  log.NewZap(cfg.Level(), os.Stdout),
		started: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(h)
	}

	if err := h.build(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Host) build() (err error) {
	cfg := h.config
	h.logger = h.logger.With("host", cfg.Name)

	var meters []imetric.Option
	if h.meterProvider != nil {
		meters = append(meters, imetric.WithMeterProvider(h.meterProvider))
	}
	meter := imetric.New(meters...).Meter()

	cacheMetric, err := imetric.NewCacheMetric(meter)
	if err != nil {
		return err
	}
	deploymentMetric, err := imetric.NewDeploymentMetric(meter)
	if err != nil {
		return err
	}
	extensionMetric, err := imetric.NewExtensionMetric(meter)
	if err != nil {
		return err
	}

	if h.tracing, err = tracing.NewProvider(context.Background(), cfg.Tracing, h.traceOptions...); err != nil {
		return gerrors.NewErrInvalidConfig(err)
	}
	tracer := h.tracing.Tracer()

	h.registry = isolation.NewRegistry(isolation.WithRegistryLogger(h.logger))
	h.factory, err = isolation.NewFactory(h.registry,
		isolation.WithContainerPackages(cfg.ContainerPackages...),
		isolation.WithSymbolExtension(cfg.SymbolExtension),
		isolation.WithFactoryLogger(h.logger))
	if err != nil {
		return err
	}
	h.cache = isolation.NewDomainCache(h.factory,
		isolation.WithCacheLogger(h.logger),
		isolation.WithCacheMetric(cacheMetric))

	h.stream = eventstream.New()
	h.deployer = deployment.NewDeployer(h.factory, h.cache,
		deployment.WithLogger(h.logger),
		deployment.WithEventStream(h.stream),
		deployment.WithMetric(deploymentMetric),
		deployment.WithTracer(tracer))

	if h.discoverer == nil {
		extensions := discovery.NewRegistry(
			discovery.WithRegistrationFiles(cfg.RegistrationFiles...),
			discovery.WithLogger(h.logger))
		for _, named := range h.factories {
			extensions.Register(named.name, named.factory)
		}
		h.discoverer = extensions
	}

	h.manager = manager.New(h.discoverer,
		manager.WithLogger(h.logger),
		manager.WithDeploymentService(h.deployer),
		manager.WithRegistry(h.registry),
		manager.WithDisposeOrder(cfg.Order()),
		manager.WithMetric(extensionMetric),
		manager.WithTracer(tracer))

	if cfg.DomainsDir != "" || cfg.AppsDir != "" {
		h.watcher = deployment.NewWatcher(h.deployer,
			deployment.WithDomainsDir(cfg.DomainsDir),
			deployment.WithAppsDir(cfg.AppsDir),
			deployment.WithDebounce(cfg.WatchDebounce),
			deployment.WithWatcherLogger(h.logger))
	}
	return nil
}

// Start initialises and starts the extensions, deploys the default domain,
// then deploys the artifact folders. With watching enabled the folders
// keep being watched until Stop.
//
// Artifacts that fail to deploy are logged and skipped; extension
// failures abort the start.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.started.Load() {
		return gerrors.ErrHostAlreadyStarted
	}

	h.logger.Infof("starting %s", h.config.Name)
	h.events = h.stream.AddSubscriber()
	h.stream.Subscribe(h.events, deployment.TopicDomains)
	h.stream.Subscribe(h.events, deployment.TopicApplications)
	h.stop = make(chan struct{})
	h.wg.Add(1)
	go h.consume(h.events, h.stop)

	if err := chain.
		New(chain.WithFailFast(), chain.WithContext(ctx)).
		AddContextRunner(h.manager.Initialise).
		AddContextRunner(h.manager.Start).
		AddContextRunner(h.deployDefaultDomain).
		AddContextRunner(h.deployArtifacts).
		Run(); err != nil {
		h.logger.Errorf("failed to start %s: %v", h.config.Name, err)
		return multierr.Append(err, h.shutdown(ctx))
	}

	h.started.Store(true)
	h.logger.Infof("%s started with %d extension(s)", h.config.Name, len(h.manager.Extensions()))
	return nil
}

// Stop stops the watcher and the extensions, undeploys every application
// then every domain, and disposes the extensions.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started.Load() {
		return gerrors.ErrHostNotStarted
	}
	h.logger.Infof("stopping %s", h.config.Name)
	err := h.shutdown(ctx)
	h.started.Store(false)
	return err
}

// Run starts the host and blocks until ctx is done or the process
// receives SIGINT or SIGTERM, then stops it.
func (h *Host) Run(ctx context.Context) error {
	if err := h.Start(ctx); err != nil {
		return err
	}

	notifier := make(chan os.Signal, 1)
	signal.Notify(notifier, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(notifier)

	select {
	case sig := <-notifier:
		h.logger.Infof("received an interrupt signal (%s) to shutdown", sig.String())
	case <-ctx.Done():
	}
	return h.Stop(context.WithoutCancel(ctx))
}

// Resolve discovers and orders the extensions without initialising them
func (h *Host) Resolve(ctx context.Context) ([]extension.Extension, error) {
	return h.manager.Resolve(ctx)
}

// Started reports whether the host is running
func (h *Host) Started() bool {
	return h.started.Load()
}

// Deployments returns the deployment service
func (h *Host) Deployments() deployment.Service {
	return h.deployer
}

// Registry returns the isolation registry
func (h *Host) Registry() *isolation.Registry {
	return h.registry
}

// Extensions returns the extensions in resolved order
func (h *Host) Extensions() []extension.Extension {
	return h.manager.Extensions()
}

// Events returns the stream deployment events are published on
func (h *Host) Events() eventstream.Stream {
	return h.stream
}

func (h *Host) deployDefaultDomain(ctx context.Context) error {
	_, err := h.deployer.DeployDomain(ctx, artifact.DefaultDomain())
	if errors.Is(err, gerrors.ErrAlreadyDeployed) {
		return nil
	}
	return err
}

func (h *Host) deployArtifacts(ctx context.Context) error {
	if h.watcher == nil {
		return nil
	}
	var err error
	if h.config.Watch {
		err = h.watcher.Start(ctx)
		if err != nil && !h.watcher.Running() {
			return err
		}
	} else {
		err = h.watcher.Scan(ctx)
	}
	if err != nil {
		h.logger.Warnf("some artifacts failed to deploy: %v", err)
	}
	return nil
}

// shutdown must be called with the lock held
func (h *Host) shutdown(ctx context.Context) error {
	var err error
	if h.watcher != nil {
		err = multierr.Append(err, h.watcher.Stop())
	}

	switch h.manager.State() {
	case manager.Started, manager.Initialised:
		err = multierr.Append(err, h.manager.Stop(ctx))
	}

	err = multierr.Append(err, h.undeployAll(ctx))

	if state := h.manager.State(); state != manager.Disposed && state != manager.Discovered {
		err = multierr.Append(err, h.manager.Dispose(ctx))
	}

	if h.stop != nil {
		close(h.stop)
		h.wg.Wait()
		h.stream.RemoveSubscriber(h.events)
		h.stop = nil
	}

	err = multierr.Append(err, h.tracing.Shutdown(ctx))
	_ = h.logger.Flush()
	return err
}

func (h *Host) undeployAll(ctx context.Context) error {
	var err error
	for _, id := range h.deployer.Applications() {
		err = multierr.Append(err, h.deployer.UndeployApplication(ctx, id))
	}
	domains := h.deployer.Domains()
	// the default domain goes last
	slices.SortStableFunc(domains, func(a, b string) int {
		return boolToInt(a == artifact.DefaultDomainName) - boolToInt(b == artifact.DefaultDomainName)
	})
	for _, name := range domains {
		err = multierr.Append(err, h.deployer.UndeployDomain(ctx, name))
	}
	return err
}

// consume logs the deployment events until stop is closed
func (h *Host) consume(events eventstream.Subscriber, stop <-chan struct{}) {
	defer h.wg.Done()
	for {
		select {
		case <-stop:
			h.drain(events)
			return
		case <-events.Ready():
			h.drain(events)
		}
	}
}

func (h *Host) drain(events eventstream.Subscriber) {
	for message := range events.Iterator() {
		event, ok := message.Payload().(deployment.Event)
		if !ok {
			continue
		}
		switch event.Phase {
		case deployment.Failed:
			h.logger.Warnf("%s of %s %s failed: %v", event.Action, event.Kind, event.ArtifactID, event.Err)
		case deployment.Succeeded:
			h.logger.Infof("%s of %s %s succeeded", event.Action, event.Kind, event.ArtifactID)
		default:
			h.logger.Debugf("%s of %s %s started", event.Action, event.Kind, event.ArtifactID)
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (h *Host) String() string {
	return fmt.Sprintf("host(%s)", h.config.Name)
}
