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

package xsync

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	t.Run("Set Get Delete", func(t *testing.T) {
		m := NewMap[string, int]()
		m.Set("a", 1)
		m.Set("b", 2)

		v, ok := m.Get("a")
		require.True(t, ok)
		assert.Equal(t, 1, v)
		assert.Equal(t, 2, m.Len())

		m.Delete("a")
		_, ok = m.Get("a")
		assert.False(t, ok)

		keys := m.Keys()
		assert.Equal(t, []string{"b"}, keys)
		assert.Equal(t, []int{2}, m.Values())

		m.Reset()
		assert.Zero(t, m.Len())
	})
	t.Run("SetIfAbsent keeps the first value", func(t *testing.T) {
		m := NewMap[string, int]()
		v, stored := m.SetIfAbsent("a", 1)
		assert.True(t, stored)
		assert.Equal(t, 1, v)

		v, stored = m.SetIfAbsent("a", 2)
		assert.False(t, stored)
		assert.Equal(t, 1, v)
	})
	t.Run("DeleteIf only removes matching values", func(t *testing.T) {
		m := NewMap[string, int]()
		m.Set("a", 1)
		assert.False(t, m.DeleteIf("a", func(v int) bool { return v == 2 }))
		assert.False(t, m.DeleteIf("missing", func(int) bool { return true }))
		assert.True(t, m.DeleteIf("a", func(v int) bool { return v == 1 }))
		assert.Zero(t, m.Len())
	})
	t.Run("Concurrent access", func(t *testing.T) {
		m := NewMap[int, int]()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				m.Set(i, i)
				_, _ = m.Get(i)
			}(i)
		}
		wg.Wait()

		var keys []int
		m.Range(func(k, _ int) { keys = append(keys, k) })
		sort.Ints(keys)
		assert.Len(t, keys, 50)
		assert.Equal(t, 0, keys[0])
	})
}

func TestList(t *testing.T) {
	l := NewList[string]()
	assert.True(t, l.Append("a"))
	assert.True(t, l.Append("b"))
	assert.False(t, l.Append("a"))
	assert.True(t, l.Append("c"))

	assert.Equal(t, []string{"a", "b", "c"}, l.Items())
	assert.True(t, l.Contains("b"))

	assert.True(t, l.Remove("b"))
	assert.False(t, l.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, l.Items())
	assert.Equal(t, 2, l.Len())

	l.Reset()
	assert.Zero(t, l.Len())
}
