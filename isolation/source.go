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
	"maps"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/modhost/modhost/internal/validation"
)

// Source is a local resource root of a node
type Source interface {
	// Lookup returns the location of a fully qualified symbol
	Lookup(symbol string) (string, bool)
	// Resource returns the location of a normalized resource path
	Resource(name string) (string, bool)
}

// DirSource resolves symbols and resources from a folder on disk.
// The symbol "a.b.C" maps onto the file "<root>/a/b/C<ext>".
type DirSource struct {
	root string
	ext  string
	stat validation.StatFunc
}

var _ Source = (*DirSource)(nil)

// NewDirSource creates a DirSource rooted at root
func NewDirSource(root, ext string) *DirSource {
	return &DirSource{root: root, ext: ext, stat: os.Stat}
}

// Root returns the folder of the source
func (s *DirSource) Root() string {
	return s.root
}

// Lookup returns the file backing symbol
func (s *DirSource) Lookup(symbol string) (string, bool) {
	if symbol == "" {
		return "", false
	}
	return s.file(strings.ReplaceAll(symbol, ".", "/") + s.ext)
}

// Resource returns the file backing the resource
func (s *DirSource) Resource(name string) (string, bool) {
	return s.file(name)
}

func (s *DirSource) file(relative string) (string, bool) {
	location := filepath.Join(s.root, filepath.FromSlash(relative))
	info, err := s.stat(location)
	if err != nil || info.IsDir() {
		return "", false
	}
	return location, true
}

// MapSource is an in-memory source. It backs container provided symbols
// and artifacts built without a folder.
type MapSource struct {
	symbols   map[string]string
	resources map[string]string
}

var _ Source = (*MapSource)(nil)

// NewMapSource creates a MapSource from symbol and resource locations.
// Resource names are normalized.
func NewMapSource(symbols, resources map[string]string) *MapSource {
	normalized := make(map[string]string, len(resources))
	for name, location := range resources {
		normalized[NormalizeResource(name)] = location
	}
	return &MapSource{symbols: maps.Clone(symbols), resources: normalized}
}

// Lookup returns the location of symbol
func (s *MapSource) Lookup(symbol string) (string, bool) {
	location, ok := s.symbols[symbol]
	return location, ok
}

// Resource returns the location of the resource
func (s *MapSource) Resource(name string) (string, bool) {
	location, ok := s.resources[name]
	return location, ok
}

// NormalizeResource cleans a resource path and makes it relative:
// "/a/./b/../c.txt" becomes "a/c.txt". Paths cannot escape the root.
func NormalizeResource(name string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
}
