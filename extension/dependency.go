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

package extension

import (
	"errors"
	"fmt"
	"reflect"
)

// Dependency is a requirement of an extension on another extension.
// It is satisfied by any extension it Matches and is handed over to the
// requiring extension through Inject.
type Dependency struct {
	typ     reflect.Type
	name    string
	matches func(Extension) bool
	inject  func(Extension) error
}

// Requires declares a dependency on any extension implementing T. T is
// usually an interface; the first resolved extension implementing it is
// passed to setter.
//
//	func (x *Mailer) Dependencies() []extension.Dependency {
//		return []extension.Dependency{
//			extension.Requires(func(store Store) { x.store = store }),
//		}
//	}
func Requires[T any](setter func(T)) Dependency {
	typ := reflect.TypeFor[T]()
	return Dependency{
		typ:  typ,
		name: typ.String(),
		matches: func(ext Extension) bool {
			_, ok := any(ext).(T)
			return ok
		},
		inject: func(ext Extension) error {
			value, ok := any(ext).(T)
			if !ok {
				return fmt.Errorf("%s does not implement %s", ext.ID(), typ)
			}
			setter(value)
			return nil
		},
	}
}

// NewDependency declares a dependency matched and injected by the given
// functions. name identifies the dependency in errors and logs.
func NewDependency(name string, matches func(Extension) bool, inject func(Extension) error) Dependency {
	return Dependency{name: name, matches: matches, inject: inject}
}

// Type returns the required type, nil for dependencies created with NewDependency
func (d Dependency) Type() reflect.Type {
	return d.typ
}

// Name returns the dependency name
func (d Dependency) Name() string {
	return d.name
}

// Matches reports whether ext satisfies the dependency
func (d Dependency) Matches(ext Extension) bool {
	return d.matches != nil && ext != nil && d.matches(ext)
}

// Inject hands ext over to the requiring extension
func (d Dependency) Inject(ext Extension) error {
	if d.inject == nil {
		return errors.New("dependency has no injection point")
	}
	return d.inject(ext)
}
