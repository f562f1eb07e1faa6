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
	"fmt"
	"io/fs"
)

// StatFunc returns file information for a path. os.Stat satisfies it.
type StatFunc func(name string) (fs.FileInfo, error)

type directoryValidator struct {
	path     string
	stat     StatFunc
	notFound error
	notDir   error
}

var _ Validator = (*directoryValidator)(nil)

// NewDirectoryValidator checks that path exists and is a directory.
// notFound and notDir are the sentinel errors wrapped into the result.
func NewDirectoryValidator(path string, stat StatFunc, notFound, notDir error) Validator {
	return &directoryValidator{path: path, stat: stat, notFound: notFound, notDir: notDir}
}

// Validate executes the validation
func (x *directoryValidator) Validate() error {
	info, err := x.stat(x.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("path=(%s) %w", x.path, x.notFound)
		}
		return fmt.Errorf("path=(%s): %w", x.path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path=(%s) %w", x.path, x.notDir)
	}
	return nil
}
