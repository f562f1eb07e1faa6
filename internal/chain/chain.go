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

package chain

import (
	"context"

	"go.uber.org/multierr"
)

// Chain runs steps eagerly, in insertion order, and collects their errors.
//
// With WithFailFast the first failure short-circuits every later step. With
// WithRunAll every step runs and all failures are combined.
type Chain struct {
	returnFirst bool
	errs        []error
	ctx         context.Context
}

// Option configures a chain at creation time.
type Option func(*Chain)

// New creates a new chain. Runners are evaluated as they are added.
func New(opts ...Option) *Chain {
	chain := &Chain{
		errs: make([]error, 0),
		ctx:  context.Background(),
	}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// AddRunner runs fn unless the chain already failed in fail-fast mode
func (c *Chain) AddRunner(fn func() error) *Chain {
	return c.AddContextRunner(func(context.Context) error { return fn() })
}

// AddRunners adds a slice of runners. The slice order matters.
func (c *Chain) AddRunners(fns ...func() error) *Chain {
	for _, fn := range fns {
		c.AddRunner(fn)
	}
	return c
}

// AddContextRunner runs fn with the chain context unless the chain
// already failed in fail-fast mode
func (c *Chain) AddContextRunner(fn func(ctx context.Context) error) *Chain {
	if c.returnFirst && len(c.errs) > 0 {
		return c
	}
	if err := fn(c.ctx); err != nil {
		c.errs = append(c.errs, err)
	}
	return c
}

// Failed reports whether any runner has failed so far
func (c *Chain) Failed() bool {
	return len(c.errs) > 0
}

// Run returns the first error in fail-fast mode and the combined errors otherwise
func (c *Chain) Run() error {
	if len(c.errs) == 0 {
		return nil
	}
	if c.returnFirst {
		return c.errs[0]
	}
	return multierr.Combine(c.errs...)
}

// WithFailFast sets whether a chain should stop on first error.
func WithFailFast() Option {
	return func(c *Chain) { c.returnFirst = true }
}

// WithRunAll sets whether a chain should run every step and return all errors.
func WithRunAll() Option {
	return func(c *Chain) { c.returnFirst = false }
}

// WithContext sets the chain context to use
func WithContext(ctx context.Context) Option {
	return func(c *Chain) { c.ctx = ctx }
}
