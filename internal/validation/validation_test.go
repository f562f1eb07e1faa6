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

package validation

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestChain(t *testing.T) {
	t.Run("With all errors", func(t *testing.T) {
		chain := New(AllErrors()).
			AddAssertion(false, "first").
			AddAssertion(true, "skipped").
			AddValidator(NewBooleanValidator(false, "second"))

		err := chain.Validate()
		require.Error(t, err)
		assert.Len(t, multierr.Errors(err), 2)
		assert.EqualError(t, err, "first; second")

		// validating twice does not accumulate
		assert.Len(t, multierr.Errors(chain.Validate()), 2)
	})
	t.Run("With fail fast", func(t *testing.T) {
		err := New(FailFast()).
			AddAssertion(false, "first").
			AddAssertion(false, "second").
			Validate()
		require.EqualError(t, err, "first")
	})
	t.Run("With no violation", func(t *testing.T) {
		require.NoError(t, New().AddAssertion(true, "ok").Validate())
	})
	t.Run("With validator func", func(t *testing.T) {
		expected := errors.New("boom")
		err := New().AddValidator(ValidatorFunc(func() error { return expected })).Validate()
		assert.ErrorIs(t, err, expected)
	})
}

func TestPatternValidator(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+$`)
	require.NoError(t, NewPatternValidator(pattern, "abc", nil).Validate())
	require.EqualError(t, NewPatternValidator(pattern, "ABC", nil).Validate(), "invalid expression")

	custom := errors.New("custom")
	require.ErrorIs(t, NewPatternValidator(pattern, "1", custom).Validate(), custom)
}

func TestNameValidator(t *testing.T) {
	custom := errors.New("bad name")
	t.Run("With happy path", func(t *testing.T) {
		require.NoError(t, NewNameValidator("orders-domain_1", custom).Validate())
	})
	t.Run("With invalid length", func(t *testing.T) {
		require.ErrorIs(t, NewNameValidator(strings.Repeat("a", 300), custom).Validate(), custom)
		require.Error(t, NewNameValidator(strings.Repeat("a", 300), nil).Validate())
	})
	t.Run("With invalid characters", func(t *testing.T) {
		require.ErrorIs(t, NewNameValidator("$omeN@me", custom).Validate(), custom)
		require.ErrorIs(t, NewNameValidator("-leading", custom).Validate(), custom)
		require.ErrorIs(t, NewNameValidator("", custom).Validate(), custom)
	})
}

func TestPackageValidator(t *testing.T) {
	require.NoError(t, NewPackageValidator("org.acme.api").Validate())
	require.NoError(t, NewPackageValidator("api").Validate())
	require.Error(t, NewPackageValidator("org..api").Validate())
	require.Error(t, NewPackageValidator(".org").Validate())
	require.Error(t, NewPackageValidator("").Validate())
}

func TestDirectoryValidator(t *testing.T) {
	notFound := errors.New("not found")
	notDir := errors.New("not dir")
	dir := t.TempDir()

	require.NoError(t, NewDirectoryValidator(dir, os.Stat, notFound, notDir).Validate())

	err := NewDirectoryValidator(filepath.Join(dir, "missing"), os.Stat, notFound, notDir).Validate()
	require.ErrorIs(t, err, notFound)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	err = NewDirectoryValidator(file, os.Stat, notFound, notDir).Validate()
	require.ErrorIs(t, err, notDir)
}
