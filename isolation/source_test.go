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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, relative string) string {
	t.Helper()
	location := filepath.Join(root, filepath.FromSlash(relative))
	require.NoError(t, os.MkdirAll(filepath.Dir(location), 0o755))
	require.NoError(t, os.WriteFile(location, []byte(relative), 0o600))
	return location
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	symbol := writeFile(t, root, "org/acme/Service.sym")
	resource := writeFile(t, root, "org/acme/schema.json")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "org", "acme", "Folder.sym"), 0o755))

	source := NewDirSource(root, ".sym")
	assert.Equal(t, root, source.Root())

	location, ok := source.Lookup("org.acme.Service")
	require.True(t, ok)
	assert.Equal(t, symbol, location)

	_, ok = source.Lookup("org.acme.Missing")
	assert.False(t, ok)
	_, ok = source.Lookup("org.acme.Folder")
	assert.False(t, ok, "folders are not symbols")
	_, ok = source.Lookup("")
	assert.False(t, ok)

	location, ok = source.Resource("org/acme/schema.json")
	require.True(t, ok)
	assert.Equal(t, resource, location)
}

func TestMapSource(t *testing.T) {
	source := NewMapSource(
		map[string]string{"org.acme.Service": "mem://service"},
		map[string]string{"/org/./acme/schema.json": "mem://schema"},
	)

	location, ok := source.Lookup("org.acme.Service")
	require.True(t, ok)
	assert.Equal(t, "mem://service", location)

	location, ok = source.Resource("org/acme/schema.json")
	require.True(t, ok)
	assert.Equal(t, "mem://schema", location)
}

func TestNormalizeResource(t *testing.T) {
	assert.Equal(t, "a/c.txt", NormalizeResource("/a/./b/../c.txt"))
	assert.Equal(t, "c.txt", NormalizeResource("../../c.txt"))
	assert.Equal(t, "", NormalizeResource(""))
}
