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

package extension

import (
	"context"

	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/internal/metric"
	"github.com/modhost/modhost/log"
)

// Result is a successful resolution
type Result struct {
	// Units are the resolved units, every dependency before its dependents
	Units []*Unit
	// Passes is the number of passes needed to reach the fixed point
	Passes int
}

// Extensions returns the resolved extensions in order
func (r *Result) Extensions() []Extension {
	exts := make([]Extension, 0, len(r.Units))
	for _, unit := range r.Units {
		exts = append(exts, unit.extension)
	}
	return exts
}

// Resolver orders extensions so that every extension comes after the
// extensions it depends on, injecting dependencies along the way.
//
// Dependencies are matched by type compatibility rather than by name: a
// dependency is satisfied by any already resolved extension it matches.
// Resolution is an iterative fixed point. Each pass walks the unresolved
// units in discovery order and resolves every unit whose dependencies all
// match a resolved extension, including the ones resolved earlier in the
// same pass. When several resolved extensions match, the first resolved
// one wins. A pass resolving nothing fails the resolution.
type Resolver struct {
	discoverer DependencyDiscoverer
	logger     log.Logger
	metric     *metric.ExtensionMetric
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithDependencyDiscoverer sets the discoverer. It defaults to Discover.
func WithDependencyDiscoverer(discoverer DependencyDiscoverer) ResolverOption {
	return func(r *Resolver) {
		if discoverer != nil {
			r.discoverer = discoverer
		}
	}
}

// WithResolverLogger sets the logger
func WithResolverLogger(logger log.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResolverMetric records the number of resolution passes
func WithResolverMetric(m *metric.ExtensionMetric) ResolverOption {
	return func(r *Resolver) { r.metric = m }
}

// NewResolver creates a Resolver
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		discoverer: DependencyDiscovererFunc(Discover),
		logger:     log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns exts ordered so that every extension follows its dependencies
func (r *Resolver) Resolve(ctx context.Context, exts []Extension) ([]Extension, error) {
	result, err := r.ResolveUnits(ctx, exts)
	if err != nil {
		return nil, err
	}
	return result.Extensions(), nil
}

// ResolveUnits resolves exts and returns the resolved units.
//
// It fails with an InjectionError when an injection point fails or panics
// and with an UnresolvableDependencyError naming the units left when a pass
// makes no progress.
func (r *Resolver) ResolveUnits(ctx context.Context, exts []Extension) (*Result, error) {
	unresolved := make([]*Unit, 0, len(exts))
	for _, ext := range exts {
		unresolved = append(unresolved, NewUnit(ext, r.discoverer.Discover(ext)))
	}

	resolved := make([]*Unit, 0, len(unresolved))
	passes := 0
	for len(unresolved) > 0 {
		passes++
		remaining := make([]*Unit, 0, len(unresolved))
		for _, unit := range unresolved {
			providers, ok := r.match(unit, resolved)
			if !ok {
				remaining = append(remaining, unit)
				continue
			}

			for i, dependency := range unit.dependencies {
				if err := inject(unit, dependency, providers[i]); err != nil {
					return nil, err
				}
			}

			unit.resolved = true
			resolved = append(resolved, unit)
			r.logger.Debugf("extension %s resolved in pass %d", unit.ID(), passes)
		}

		if len(remaining) == len(unresolved) {
			ids := make([]string, 0, len(remaining))
			for _, unit := range remaining {
				ids = append(ids, unit.ID())
			}
			return nil, gerrors.NewUnresolvableDependencyError(ids)
		}
		unresolved = remaining
	}

	if r.metric != nil {
		r.metric.RecordResolutionPasses(ctx, passes)
	}
	return &Result{Units: resolved, Passes: passes}, nil
}

// match returns, for every dependency of unit, the first resolved
// extension matching it
func (r *Resolver) match(unit *Unit, resolved []*Unit) ([]Extension, bool) {
	providers := make([]Extension, 0, len(unit.dependencies))
	for _, dependency := range unit.dependencies {
		var provider Extension
		candidates := 0
		for _, candidate := range resolved {
			if dependency.Matches(candidate.extension) {
				if provider == nil {
					provider = candidate.extension
				}
				candidates++
			}
		}

		if provider == nil {
			return nil, false
		}
		if candidates > 1 {
			r.logger.Debugf("extension %s: %d extensions satisfy %s, using %s", unit.ID(), candidates, dependency.Name(), provider.ID())
		}
		providers = append(providers, provider)
	}
	return providers, true
}

func inject(unit *Unit, dependency Dependency, provider Extension) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = gerrors.NewInjectionError(unit.ID(), dependency.Name(), gerrors.NewPanicError(recovered))
		}
	}()
	if err := dependency.Inject(provider); err != nil {
		return gerrors.NewInjectionError(unit.ID(), dependency.Name(), err)
	}
	return nil
}
