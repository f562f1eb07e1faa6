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

package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Run("With FIFO order", func(t *testing.T) {
		q := New[int]()
		for i := range 100 {
			require.True(t, q.Push(i))
		}
		assert.Equal(t, 100, q.Len())

		for i := range 60 {
			v, ok := q.Pop()
			require.True(t, ok)
			assert.Equal(t, i, v)
		}

		rest := q.Drain()
		require.Len(t, rest, 40)
		assert.Equal(t, 60, rest[0])
		assert.Equal(t, 99, rest[39])

		_, ok := q.Pop()
		assert.False(t, ok)
		assert.Zero(t, q.Len())
	})
	t.Run("With ready signal", func(t *testing.T) {
		q := New[string]()
		select {
		case <-q.Ready():
			t.Fatal("unexpected signal")
		default:
		}

		q.Push("a")
		q.Push("b")
		<-q.Ready()
		assert.Equal(t, []string{"a", "b"}, q.Drain())
	})
	t.Run("With concurrent producers", func(t *testing.T) {
		q := New[int]()
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 500 {
					q.Push(i)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 4000, q.Len())
	})
	t.Run("With close", func(t *testing.T) {
		q := New[int]()
		q.Push(1)
		q.Close()
		assert.True(t, q.IsClosed())
		assert.False(t, q.Push(2))
		assert.Zero(t, q.Len())
		assert.Empty(t, q.Drain())
	})
}
