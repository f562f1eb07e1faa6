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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	gerrors "github.com/modhost/modhost/errors"
	"github.com/modhost/modhost/extension"
)

type plain struct{ id string }

func (x *plain) ID() string                       { return x.id }
func (x *plain) Initialise(context.Context) error { return nil }
func (x *plain) Start(context.Context) error      { return nil }
func (x *plain) Stop(context.Context) error       { return nil }
func (x *plain) Dispose(context.Context) error    { return nil }

func factory(id string, created *int) func() extension.Extension {
	return func() extension.Extension {
		*created++
		return &plain{id: id}
	}
}

func registrationFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "extensions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func ids(exts []extension.Extension) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, ext.ID())
	}
	return out
}

func TestStatic(t *testing.T) {
	a, b := &plain{id: "a"}, &plain{id: "b"}
	discoverer := Static(a, b)

	exts, err := discoverer.Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(exts))

	exts[0] = nil
	again, err := discoverer.Discover(context.Background())
	require.NoError(t, err)
	assert.Same(t, a, again[0])
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("With registration files read in order", func(t *testing.T) {
		var mailer, audit, store int
		first := registrationFile(t, "extensions:\n  - mailer\n  - store\n")
		second := registrationFile(t, "extensions:\n  - audit\n  - MAILER\n  - ''\n")

		registry := NewRegistry(WithRegistrationFiles(first, second)).
			Register("mailer", factory("mailer", &mailer)).
			Register("audit", factory("audit", &audit)).
			Register("store", factory("store", &store))

		exts, err := registry.Discover(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"mailer", "store", "audit"}, ids(exts))
		assert.Equal(t, 1, mailer)
		assert.Equal(t, []string{"audit", "mailer", "store"}, registry.Names())
	})
	t.Run("With unknown extensions", func(t *testing.T) {
		var created int
		file := registrationFile(t, "extensions: [known, ghost, phantom]")
		registry := NewRegistry(WithRegistrationFiles(file)).Register("known", factory("known", &created))

		_, err := registry.Discover(ctx)
		require.ErrorIs(t, err, gerrors.ErrExtensionNotRegistered)
		assert.Len(t, multierr.Errors(err), 2)
		assert.Contains(t, err.Error(), "ghost")
		assert.Contains(t, err.Error(), "phantom")
	})
	t.Run("With a nil extension", func(t *testing.T) {
		registry := NewRegistry().Register("nil", func() extension.Extension { return nil })
		_, err := registry.Instantiate("nil")
		require.Error(t, err)
	})
	t.Run("With a missing registration file", func(t *testing.T) {
		registry := NewRegistry(WithRegistrationFiles(filepath.Join(t.TempDir(), "missing.yaml")))
		_, err := registry.Discover(ctx)
		require.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("With an invalid registration file", func(t *testing.T) {
		registry := NewRegistry(WithRegistrationFiles(registrationFile(t, "extensions: {mailer: true")))
		_, err := registry.Discover(ctx)
		require.Error(t, err)
	})
	t.Run("With a cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		registry := NewRegistry(WithRegistrationFiles(registrationFile(t, "extensions: []")))
		_, err := registry.Discover(cancelled)
		require.ErrorIs(t, err, context.Canceled)
	})
}
