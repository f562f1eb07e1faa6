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
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	gerrors "github.com/modhost/modhost/errors"
)

// DescriptorFile is the file name that marks a folder as a deployable artifact
const DescriptorFile = "artifact.yaml"

type descriptorFile struct {
	Name              string           `yaml:"name"`
	Kind              string           `yaml:"kind"`
	Domain            string           `yaml:"domain"`
	RootFolder        string           `yaml:"rootFolder"`
	ExportedPackages  []string         `yaml:"exportedPackages"`
	ExportedResources []string         `yaml:"exportedResources"`
	LocalPackages     []string         `yaml:"localPackages"`
	ResourceRoots     []string         `yaml:"resourceRoots"`
	Plugins           []descriptorFile `yaml:"plugins"`
}

// Load reads a descriptor from path, which is either a descriptor file or a
// folder holding one. The folder becomes the artifact root folder and
// relative resource roots are resolved against it. Domains and applications
// that declare no resource root use their root folder.
func Load(path string) (*Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load descriptor: %w", err)
	}

	file := path
	if info.IsDir() {
		file = filepath.Join(path, DescriptorFile)
	}

	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", file, err)
	}

	return Parse(bytes, filepath.Dir(file))
}

// Parse decodes a YAML descriptor whose root folder is folder
func Parse(content []byte, folder string) (*Descriptor, error) {
	var raw descriptorFile
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, gerrors.NewErrInvalidDescriptor(err)
	}

	kind, err := ParseKind(raw.Kind)
	if err != nil {
		return nil, gerrors.NewErrInvalidDescriptor(err)
	}

	return raw.build(kind, folder)
}

func (raw descriptorFile) build(kind Kind, folder string) (*Descriptor, error) {
	root := folder
	if raw.RootFolder != "" {
		root = resolve(folder, raw.RootFolder)
	}

	roots := make([]string, 0, len(raw.ResourceRoots))
	for _, r := range raw.ResourceRoots {
		roots = append(roots, resolve(root, r))
	}
	if len(roots) == 0 && kind != Plugin && root != "" {
		roots = append(roots, root)
	}

	plugins := make([]*Descriptor, 0, len(raw.Plugins))
	for _, p := range raw.Plugins {
		if p.Kind != "" && p.Kind != Plugin.String() {
			return nil, gerrors.NewErrInvalidDescriptor(fmt.Errorf("%w: plugin %s declared as %s", gerrors.ErrInvalidArtifactKind, p.Name, p.Kind))
		}
		plugin, err := p.build(Plugin, root)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, plugin)
	}

	return New(kind, raw.Name,
		WithDomain(raw.Domain),
		WithRootFolder(root),
		WithResourceRoots(roots...),
		WithExportedPackages(raw.ExportedPackages...),
		WithExportedResources(raw.ExportedResources...),
		WithLocalPackages(raw.LocalPackages...),
		WithPlugins(plugins...))
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) || base == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
