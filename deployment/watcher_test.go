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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDescriptor(t *testing.T, dir, folder, content string) string {
	t.Helper()
	path := filepath.Join(dir, folder)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "artifact.yaml"), []byte(content), 0o600))
	return path
}

func domainYAML(name string) string {
	return fmt.Sprintf("name: %s\nkind: domain\nexportedPackages: [%s.shared]\n", name, name)
}

func appYAML(name, domain string, exported ...string) string {
	content := fmt.Sprintf("name: %s\nkind: app\ndomain: %s\n", name, domain)
	if len(exported) > 0 {
		content += fmt.Sprintf("exportedPackages: %v\n", exported)
	}
	return content
}

func TestWatcherScan(t *testing.T) {
	ctx := context.Background()
	domainsDir, appsDir := t.TempDir(), t.TempDir()
	writeDescriptor(t, domainsDir, "billing", domainYAML("billing"))
	writeDescriptor(t, domainsDir, "orders", domainYAML("orders"))
	writeDescriptor(t, appsDir, "invoices", appYAML("invoices", "billing"))
	writeDescriptor(t, appsDir, "shop", appYAML("shop", ""))
	require.NoError(t, os.MkdirAll(filepath.Join(appsDir, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appsDir, "README"), []byte("ignored"), 0o600))

	deployer := newDeployer(t)
	watcher := NewWatcher(deployer, WithDomainsDir(domainsDir), WithAppsDir(appsDir))

	require.NoError(t, watcher.Scan(ctx))
	assert.Equal(t, []string{"billing", "default", "orders"}, deployer.Domains())
	assert.Equal(t, []string{"domain/billing/app/invoices", "domain/default/app/shop"}, deployer.Applications())

	t.Run("With nothing changed", func(t *testing.T) {
		before, ok := deployer.Application("domain/billing/app/invoices")
		require.True(t, ok)
		require.NoError(t, watcher.Scan(ctx))
		after, ok := deployer.Application("domain/billing/app/invoices")
		require.True(t, ok)
		assert.Same(t, before, after)
	})
	t.Run("With a changed application", func(t *testing.T) {
		before, _ := deployer.Application("domain/billing/app/invoices")
		writeDescriptor(t, appsDir, "invoices", appYAML("invoices", "billing", "invoices.api"))

		require.NoError(t, watcher.Scan(ctx))
		after, ok := deployer.Application("domain/billing/app/invoices")
		require.True(t, ok)
		assert.NotSame(t, before, after)
		assert.True(t, before.IsDisposed())
	})
	t.Run("With a domain in use removed", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(filepath.Join(domainsDir, "billing")))
		err := watcher.Scan(ctx)
		require.Error(t, err)
		assert.Contains(t, deployer.Domains(), "billing")
	})
	t.Run("With removed folders", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(filepath.Join(appsDir, "invoices")))
		require.NoError(t, os.RemoveAll(filepath.Join(domainsDir, "orders")))

		require.NoError(t, watcher.Scan(ctx))
		assert.Equal(t, []string{"default"}, deployer.Domains())
		assert.Equal(t, []string{"domain/default/app/shop"}, deployer.Applications())
	})
	t.Run("With an invalid descriptor", func(t *testing.T) {
		writeDescriptor(t, appsDir, "broken", "name: broken\nkind: spaceship\n")
		writeDescriptor(t, appsDir, "misplaced", domainYAML("misplaced"))
		err := watcher.Scan(ctx)
		require.Error(t, err)
		assert.Equal(t, []string{"domain/default/app/shop"}, deployer.Applications())
	})
}

func TestWatcher(t *testing.T) {
	ctx := context.Background()
	domainsDir, appsDir := t.TempDir(), t.TempDir()
	writeDescriptor(t, domainsDir, "billing", domainYAML("billing"))

	scans := make(chan error, 16)
	deployer := newDeployer(t)
	watcher := NewWatcher(deployer,
		WithDomainsDir(domainsDir),
		WithAppsDir(appsDir),
		WithDebounce(50*time.Millisecond),
		WithScanHook(func(err error) {
			select {
			case scans <- err:
			default:
			}
		}))

	require.NoError(t, watcher.Start(ctx))
	require.NoError(t, watcher.Start(ctx))
	assert.True(t, watcher.Running())
	assert.Equal(t, []string{"billing"}, deployer.Domains())

	writeDescriptor(t, appsDir, "invoices", appYAML("invoices", "billing"))
	require.Eventually(t, func() bool {
		_, ok := deployer.Application("domain/billing/app/invoices")
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.RemoveAll(filepath.Join(appsDir, "invoices")))
	require.Eventually(t, func() bool {
		return len(deployer.Applications()) == 0
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, watcher.Stop())
	require.NoError(t, watcher.Stop())
	assert.False(t, watcher.Running())
	assert.Equal(t, []string{"billing"}, deployer.Domains())
	assert.NotEmpty(t, scans)
}

func TestWatcherStartFailure(t *testing.T) {
	watcher := NewWatcher(newDeployer(t), WithAppsDir(filepath.Join(t.TempDir(), "missing")))
	require.Error(t, watcher.Start(context.Background()))
	assert.False(t, watcher.Running())
	require.NoError(t, watcher.Stop())
}
