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

package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/modhost/modhost/errors"
)

func TestNew(t *testing.T) {
	t.Run("With a domain and its plugins", func(t *testing.T) {
		http := MustNew(Plugin, "http", WithExportedPackages("org.acme.http"))
		assert.Equal(t, "plugin/http", http.ID())

		domain, err := New(Domain, "orders",
			WithPlugins(http),
			WithExportedPackages("org.acme.orders.api"),
			WithResourceRoots("/opt/orders/classes"),
			WithRootFolder("/opt/orders"))
		require.NoError(t, err)

		assert.Equal(t, "domain/orders", domain.ID())
		assert.Equal(t, "orders", domain.Name())
		assert.Equal(t, Domain, domain.Kind())
		assert.Empty(t, domain.Domain())
		assert.Equal(t, "/opt/orders", domain.RootFolder())
		assert.Equal(t, []string{"/opt/orders/classes"}, domain.ResourceRoots())
		assert.True(t, domain.ExportedPackages().Contains("org.acme.orders.api"))

		plugins := domain.Plugins()
		require.Len(t, plugins, 1)
		assert.Equal(t, "domain/orders/plugin/http", plugins[0].ID())
		// the standalone descriptor is untouched
		assert.Equal(t, "plugin/http", http.ID())
	})
	t.Run("With an application in the default domain", func(t *testing.T) {
		app := MustNew(Application, "billing")
		assert.Equal(t, "domain/default/app/billing", app.ID())
		assert.Equal(t, DefaultDomainName, app.Domain())
	})
	t.Run("With an application in a named domain", func(t *testing.T) {
		app := MustNew(Application, "billing", WithDomain("orders"))
		assert.Equal(t, "domain/orders/app/billing", app.ID())
	})
	t.Run("With the default domain", func(t *testing.T) {
		d := DefaultDomain()
		assert.True(t, d.IsDefaultDomain())
		assert.Equal(t, "domain/default", d.ID())
		assert.False(t, MustNew(Domain, "orders").IsDefaultDomain())
	})
	t.Run("With accessors returning copies", func(t *testing.T) {
		d := MustNew(Domain, "orders", WithExportedPackages("a.b"), WithResourceRoots("x"))
		d.ExportedPackages().Add("c.d")
		roots := d.ResourceRoots()
		roots[0] = "y"
		assert.Equal(t, 1, d.ExportedPackages().Cardinality())
		assert.Equal(t, []string{"x"}, d.ResourceRoots())
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		build  func() (*Descriptor, error)
		target error
	}{
		{
			name:   "empty name",
			build:  func() (*Descriptor, error) { return New(Domain, "") },
			target: gerrors.ErrInvalidArtifactName,
		},
		{
			name:   "invalid characters",
			build:  func() (*Descriptor, error) { return New(Domain, "or/ders") },
			target: gerrors.ErrInvalidArtifactName,
		},
		{
			name:   "unknown kind",
			build:  func() (*Descriptor, error) { return New(Kind(42), "orders") },
			target: gerrors.ErrInvalidDescriptor,
		},
		{
			name: "plugin of the wrong kind",
			build: func() (*Descriptor, error) {
				return New(Domain, "orders", WithPlugins(MustNew(Application, "app")))
			},
			target: gerrors.ErrInvalidDescriptor,
		},
		{
			name: "duplicate plugin",
			build: func() (*Descriptor, error) {
				p := MustNew(Plugin, "http")
				return New(Domain, "orders", WithPlugins(p, p))
			},
			target: gerrors.ErrDuplicatePlugin,
		},
		{
			name:   "invalid package",
			build:  func() (*Descriptor, error) { return New(Domain, "orders", WithExportedPackages("org..acme")) },
			target: gerrors.ErrInvalidDescriptor,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := tc.build()
			require.Error(t, err)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tc.target)
			assert.ErrorIs(t, err, gerrors.ErrInvalidDescriptor)
		})
	}

	assert.Panics(t, func() { MustNew(Domain, "") })
}

func TestFingerprint(t *testing.T) {
	build := func(pkgs ...string) *Descriptor {
		return MustNew(Domain, "orders",
			WithExportedPackages(pkgs...),
			WithPlugins(MustNew(Plugin, "http", WithExportedPackages("org.acme.http"))))
	}

	assert.Equal(t, build("a.b", "c.d").Fingerprint(), build("c.d", "a.b").Fingerprint())
	assert.NotEqual(t, build("a.b").Fingerprint(), build("a.c").Fingerprint())

	withOtherPlugin := MustNew(Domain, "orders",
		WithExportedPackages("a.b"),
		WithPlugins(MustNew(Plugin, "http", WithExportedPackages("org.acme.other"))))
	assert.NotEqual(t, build("a.b").Fingerprint(), withOtherPlugin.Fingerprint())
}

func TestParseKind(t *testing.T) {
	for text, kind := range map[string]Kind{"domain": Domain, "APP": Application, "application": Application, "plugin": Plugin} {
		got, err := ParseKind(text)
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}
	_, err := ParseKind("service")
	require.Error(t, err)
	assert.Equal(t, "unknown", Kind(0).String())
}
