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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type ctxKey struct{}

func TestChain(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	t.Run("With fail fast", func(t *testing.T) {
		var calls []string
		c := New(WithFailFast()).
			AddRunner(func() error { calls = append(calls, "a"); return nil }).
			AddRunner(func() error { calls = append(calls, "b"); return first }).
			AddRunner(func() error { calls = append(calls, "c"); return second })

		assert.True(t, c.Failed())
		require.ErrorIs(t, c.Run(), first)
		assert.Equal(t, []string{"a", "b"}, calls)
	})
	t.Run("With run all", func(t *testing.T) {
		var calls []string
		err := New(WithRunAll()).
			AddRunners(
				func() error { calls = append(calls, "a"); return first },
				func() error { calls = append(calls, "b"); return nil },
				func() error { calls = append(calls, "c"); return second },
			).Run()

		assert.Equal(t, []string{"a", "b", "c"}, calls)
		assert.Equal(t, []error{first, second}, multierr.Errors(err))
	})
	t.Run("With context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ctxKey{}, "value")
		var got any
		err := New(WithContext(ctx)).
			AddContextRunner(func(ctx context.Context) error {
				got = ctx.Value(ctxKey{})
				return nil
			}).Run()
		require.NoError(t, err)
		assert.Equal(t, "value", got)
	})
}
