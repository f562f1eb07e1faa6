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

package isolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/modhost/modhost/errors"
)

func TestComposeRegion(t *testing.T) {
	t.Run("With first match winning in registration order", func(t *testing.T) {
		for range 5 {
			registry := NewRegistry()
			first := mustNode(t, registry, NodeConfig{ID: "first", Sources: []Source{symbols("org.shared.Codec", "first://codec")}})
			second := mustNode(t, registry, NodeConfig{ID: "second", Sources: []Source{symbols("org.shared.Codec", "second://codec", "org.other.Only", "second://only")}})

			region, err := ComposeRegion(registry, NodeConfig{ID: "region"}, first, second)
			require.NoError(t, err)

			resolution, ok := region.Resolve("org.shared.Codec")
			require.True(t, ok)
			assert.Equal(t, "first", resolution.NodeID)

			resolution, ok = region.Resolve("org.other.Only")
			require.True(t, ok)
			assert.Equal(t, "second", resolution.NodeID)

			assert.Equal(t, []*Node{first, second}, region.Members())
		}
	})
	t.Run("With a duplicate member", func(t *testing.T) {
		registry := NewRegistry()
		plugin := mustNode(t, registry, NodeConfig{ID: "plugin"})
		_, err := ComposeRegion(registry, NodeConfig{ID: "region"}, plugin, plugin)
		require.ErrorIs(t, err, gerrors.ErrMemberAlreadyInRegion)
		_, ok := registry.Get("region")
		assert.False(t, ok)
	})
	t.Run("With a region owned by its parent chain", func(t *testing.T) {
		registry := NewRegistry()
		container := mustNode(t, registry, NodeConfig{ID: "container", Sources: []Source{symbols("org.base.Type", "container://type")}})
		region, err := ComposeRegion(registry, NodeConfig{ID: "region", ParentID: container.ID()})
		require.NoError(t, err)

		resolution, ok := region.Resolve("org.base.Type")
		require.True(t, ok)
		assert.Equal(t, "container", resolution.NodeID)
	})
}

func TestRegionMembers(t *testing.T) {
	newRegion := func(t *testing.T, policy *LookupPolicy) (*Registry, *Region) {
		registry := NewRegistry()
		region, err := registry.NewRegion(NodeConfig{ID: "region", Policy: policy})
		require.NoError(t, err)
		return registry, region
	}

	t.Run("With explicit package mapping", func(t *testing.T) {
		registry, region := newRegion(t, nil)
		generic := mustNode(t, registry, NodeConfig{ID: "generic", Sources: []Source{symbols("org.http.Client", "generic://client")}})
		http := mustNode(t, registry, NodeConfig{ID: "http", Sources: []Source{symbols("org.http.Client", "http://client")}})

		require.NoError(t, region.AddMember(generic, FilterAll()))
		require.NoError(t, region.AddMember(http, NewFilter([]string{"org.http"}, []string{"/org/http/mime.types"})))

		resolution, ok := region.Resolve("org.http.Client")
		require.True(t, ok)
		assert.Equal(t, "http", resolution.NodeID)

		filter, ok := region.MemberFilter(http)
		require.True(t, ok)
		assert.Equal(t, []string{"org.http"}, filter.Packages())
		assert.Equal(t, []string{"org/http/mime.types"}, filter.Resources())
		assert.False(t, filter.ExportsAll())
	})
	t.Run("With explicit resource mapping", func(t *testing.T) {
		registry, region := newRegion(t, nil)
		generic := mustNode(t, registry, NodeConfig{ID: "generic", Sources: []Source{resources("org/http/mime.types", "generic://mime")}})
		http := mustNode(t, registry, NodeConfig{ID: "http", Sources: []Source{resources("org/http/mime.types", "http://mime")}})

		require.NoError(t, region.AddMember(generic, FilterAll()))
		require.NoError(t, region.AddMember(http, NewFilter(nil, []string{"org/http/mime.types"})))

		resolution, ok := region.Resource("org/http/mime.types")
		require.True(t, ok)
		assert.Equal(t, "http://mime", resolution.Location)
	})
	t.Run("With a duplicate package mapping", func(t *testing.T) {
		registry, region := newRegion(t, nil)
		a := mustNode(t, registry, NodeConfig{ID: "a"})
		b := mustNode(t, registry, NodeConfig{ID: "b"})

		require.NoError(t, region.AddMember(a, NewFilter([]string{"org.http"}, nil)))
		err := region.AddMember(b, NewFilter([]string{"org.json", "org.http"}, nil))
		require.ErrorIs(t, err, gerrors.ErrDuplicatePackageMapping)
		assert.Equal(t, []*Node{a}, region.Members())
	})
	t.Run("With an illegal package mapping", func(t *testing.T) {
		registry, region := newRegion(t, NewLookupPolicy(ChildFirst, map[string]Strategy{"org.api": ParentFirst}))
		a := mustNode(t, registry, NodeConfig{ID: "a"})
		err := region.AddMember(a, NewFilter([]string{"org.api"}, nil))
		require.ErrorIs(t, err, gerrors.ErrIllegalPackageMapping)
	})
	t.Run("With a disposed member", func(t *testing.T) {
		registry, region := newRegion(t, nil)
		a := mustNode(t, registry, NodeConfig{ID: "a"})
		a.Dispose()
		require.ErrorIs(t, region.AddMember(a, FilterAll()), gerrors.ErrNodeDisposed)
	})
	t.Run("With member removal", func(t *testing.T) {
		registry, region := newRegion(t, nil)
		owner := mustNode(t, registry, NodeConfig{ID: "owner", ParentID: region.ID()})
		open := mustNode(t, registry, NodeConfig{ID: "open", Sources: []Source{symbols("x.Y", "open://y")}})
		exporting := mustNode(t, registry, NodeConfig{ID: "exporting"})
		stranger := mustNode(t, registry, NodeConfig{ID: "stranger"})

		require.NoError(t, region.SetOwner(owner))
		require.NoError(t, region.AddMember(open, FilterAll()))
		require.NoError(t, region.AddMember(exporting, NewFilter([]string{"org.x"}, nil)))

		_, ok := region.Resolve("x.Y")
		require.True(t, ok)

		assert.False(t, region.RemoveMember(owner))
		assert.False(t, region.RemoveMember(exporting))
		assert.False(t, region.RemoveMember(stranger))
		assert.True(t, region.RemoveMember(open))
		assert.Equal(t, []*Node{owner, exporting}, region.Members())

		// the resolved symbol cache was dropped with the member
		_, ok = region.Resolve("x.Y")
		assert.False(t, ok)
	})
	t.Run("With an owner", func(t *testing.T) {
		registry, region := newRegion(t, nil)
		plugin := mustNode(t, registry, NodeConfig{ID: "plugin"})
		owner := mustNode(t, registry, NodeConfig{ID: "owner", ParentID: region.ID()})

		_, ok := region.Owner()
		assert.False(t, ok)

		require.NoError(t, region.AddMember(plugin, FilterAll()))
		require.NoError(t, region.SetOwner(owner))
		assert.Equal(t, []*Node{owner, plugin}, region.Members())

		got, ok := region.Owner()
		require.True(t, ok)
		assert.Same(t, owner, got)

		other := mustNode(t, registry, NodeConfig{ID: "other"})
		require.ErrorIs(t, region.SetOwner(other), gerrors.ErrMemberAlreadyInRegion)
	})
}

func TestRegionDispose(t *testing.T) {
	registry := NewRegistry()
	region, err := registry.NewRegion(NodeConfig{ID: "region"})
	require.NoError(t, err)

	owner := mustNode(t, registry, NodeConfig{ID: "owner", ParentID: region.ID()})
	plugin := mustNode(t, registry, NodeConfig{ID: "plugin", ParentID: region.ID()})
	require.NoError(t, region.SetOwner(owner))
	require.NoError(t, region.AddMember(plugin, FilterAll()))
	require.NoError(t, owner.AddShutdownListener(region.Dispose))
	require.NoError(t, plugin.AddShutdownListener(func() { panic("plugin failed") }))

	owner.Dispose()

	assert.True(t, region.IsDisposed())
	assert.True(t, plugin.IsDisposed())
	assert.Zero(t, registry.Len())
}
