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

package discovery

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/extension"
	"github.com/modhost/modhost/internal/registry"
	"github.com/modhost/modhost/log"
)

// registration is the content of a registration file
//
//	extensions:
//	  - mailer
//	  - audit
type registration struct {
	Extensions []string `yaml:"extensions"`
}

// Registry discovers the extensions named in registration files among
// the extension factories registered by name.
//
// Files are read in order and so are the names they list. A name listed
// several times is instantiated once, at its first position. Names are
// matched case insensitively.
type Registry struct {
	factories *registry.Registry[extension.Extension]
	files     []string
	logger    log.Logger
}

var _ Discoverer = (*Registry)(nil)

// Option configures a Registry
type Option func(*Registry)

// WithRegistrationFiles appends registration files to read
func WithRegistrationFiles(files ...string) Option {
	return func(r *Registry) { r.files = append(r.files, files...) }
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates a Registry with no factory
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		factories: registry.New[extension.Extension](),
		logger:    log.DiscardLogger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register registers the factory creating the extension known as name.
// A later registration under the same name replaces the earlier one.
func (r *Registry) Register(name string, factory func() extension.Extension) *Registry {
	r.factories.Register(name, factory)
	return r
}

// Names returns the registered names
func (r *Registry) Names() []string {
	return r.factories.Names()
}

// Discover reads the registration files and instantiates the extensions they name.
// Every unknown name is reported.
func (r *Registry) Discover(ctx context.Context) ([]extension.Extension, error) {
	var names []string
	for _, file := range r.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		listed, err := ReadRegistration(file)
		if err != nil {
			return nil, err
		}
		names = append(names, listed...)
	}
	return r.Instantiate(names...)
}

// Instantiate creates the extensions named by names
func (r *Registry) Instantiate(names ...string) ([]extension.Extension, error) {
	var (
		errs []error
		exts []extension.Extension
		seen = make(map[string]struct{}, len(names))
	)

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			r.logger.Debugf("extension %s registered more than once", name)
			continue
		}
		seen[key] = struct{}{}

		factory, ok := r.factories.Get(name)
		if !ok {
			errs = append(errs, gerrors.NewErrExtensionNotRegistered(name))
			continue
		}

		ext := factory()
		if ext == nil {
			errs = append(errs, fmt.Errorf("factory of extension %s returned nil", name))
			continue
		}
		exts = append(exts, ext)
	}

	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	r.logger.Infof("%d extension(s) discovered", len(exts))
	return exts, nil
}

// ReadRegistration reads the extension names listed by a registration file
func ReadRegistration(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registration file %s: %w", path, err)
	}
	return ParseRegistration(content)
}

// ParseRegistration parses the content of a registration file. Blank
// names are ignored.
func ParseRegistration(content []byte) ([]string, error) {
	var reg registration
	if err := yaml.Unmarshal(content, &reg); err != nil {
		return nil, fmt.Errorf("invalid registration file: %w", err)
	}
	names := make([]string, 0, len(reg.Extensions))
	for _, name := range reg.Extensions {
		if strings.TrimSpace(name) != "" {
			names = append(names, strings.TrimSpace(name))
		}
	}
	return names, nil
}
