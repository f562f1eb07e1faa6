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
	"strings"
)

// Strategy tells a node where to look first for the symbols of a package
type Strategy int

const (
	// ChildFirst searches the node, then its region members, then its parent
	ChildFirst Strategy = iota
	// ParentFirst searches the parent before the node itself
	ParentFirst
	// ChildOnly never delegates to the parent
	ChildOnly
	// ParentOnly never searches the node itself
	ParentOnly
)

// String returns the name of the strategy
func (s Strategy) String() string {
	switch s {
	case ChildFirst:
		return "child-first"
	case ParentFirst:
		return "parent-first"
	case ChildOnly:
		return "child-only"
	case ParentOnly:
		return "parent-only"
	default:
		return "unknown"
	}
}

// delegatesFirst reports whether the strategy asks the parent before the node
func (s Strategy) delegatesFirst() bool {
	return s == ParentFirst || s == ParentOnly
}

// LookupPolicy maps package prefixes to strategies.
//
// A LookupPolicy is immutable: Extend and ExtendPackages return new
// policies and never touch the receiver, so a parent policy can be shared
// by every child built from it.
type LookupPolicy struct {
	entries  map[string]Strategy
	fallback Strategy
}

// NewLookupPolicy creates a policy. Packages without an entry, and without
// an entry for any of their parent packages, use fallback.
func NewLookupPolicy(fallback Strategy, entries map[string]Strategy) *LookupPolicy {
	copied := make(map[string]Strategy, len(entries))
	maps.Copy(copied, entries)
	return &LookupPolicy{entries: copied, fallback: fallback}
}

// StrategyFor returns the strategy for a fully qualified symbol such as
// "org.acme.api.Service". The longest package prefix with an entry wins.
func (p *LookupPolicy) StrategyFor(symbol string) Strategy {
	return p.PackageStrategy(PackageOf(symbol))
}

// PackageStrategy returns the strategy for a package, looking up the
// package itself and then each enclosing package.
func (p *LookupPolicy) PackageStrategy(pkg string) Strategy {
	for pkg != "" {
		if strategy, ok := p.entries[pkg]; ok {
			return strategy
		}
		index := strings.LastIndexByte(pkg, '.')
		if index < 0 {
			break
		}
		pkg = pkg[:index]
	}
	return p.fallback
}

// Entry returns the strategy registered for exactly pkg
func (p *LookupPolicy) Entry(pkg string) (Strategy, bool) {
	strategy, ok := p.entries[pkg]
	return strategy, ok
}

// Fallback returns the strategy used for packages without entry
func (p *LookupPolicy) Fallback() Strategy {
	return p.fallback
}

// Entries returns a copy of the package entries
func (p *LookupPolicy) Entries() map[string]Strategy {
	return maps.Clone(p.entries)
}

// Extend returns a new policy holding the receiver entries overridden by overrides
func (p *LookupPolicy) Extend(overrides map[string]Strategy) *LookupPolicy {
	extended := NewLookupPolicy(p.fallback, p.entries)
	maps.Copy(extended.entries, overrides)
	return extended
}

// ExtendPackages returns a new policy mapping every package in packages to
// strategy. Without overwrite, packages the receiver already maps keep their
// strategy, so container packages cannot be remapped by an artifact.
func (p *LookupPolicy) ExtendPackages(packages []string, strategy Strategy, overwrite bool) *LookupPolicy {
	extended := NewLookupPolicy(p.fallback, p.entries)
	for _, pkg := range packages {
		if _, exists := extended.entries[pkg]; exists && !overwrite {
			continue
		}
		extended.entries[pkg] = strategy
	}
	return extended
}

// PackageOf returns the package of a fully qualified symbol: everything
// before the last dot. Symbols without a dot live in the root package "".
func PackageOf(symbol string) string {
	index := strings.LastIndexByte(symbol, '.')
	if index < 0 {
		return ""
	}
	return symbol[:index]
}

// ResourcePackage returns the package a normalized resource path belongs
// to: "org/acme/api/schema.json" belongs to "org.acme.api".
func ResourcePackage(name string) string {
	index := strings.LastIndexByte(name, '/')
	if index < 0 {
		return ""
	}
	return strings.ReplaceAll(name[:index], "/", ".")
}
