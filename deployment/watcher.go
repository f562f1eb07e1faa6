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

package deployment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/modhost/modhost/artifact"
	"github.com/modhost/modhost/log"
)

const loadAttempts = 3

// DefaultDebounce is the quiet period the watcher waits for before scanning
const DefaultDebounce = 500 * time.Millisecond

// Watcher keeps the deployed artifacts in sync with the content of the
// domains and applications folders.
//
// Every sub folder holding an artifact descriptor is an artifact. New
// folders are deployed, removed folders are undeployed and applications
// whose descriptor changed are redeployed. Domains are deployed in
// parallel. Changes are debounced.
type Watcher struct {
	service    Service
	domainsDir string
	appsDir    string
	debounce   time.Duration
	logger     log.Logger
	onScan     func(error)

	scanMu  sync.Mutex
	domains map[string]*artifact.Descriptor
	apps    map[string]*artifact.Descriptor

	fsWatcher *fsnotify.Watcher
	running   *atomic.Bool
	done      chan struct{}
	wg        sync.WaitGroup
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithDomainsDir sets the folder holding the domains
func WithDomainsDir(dir string) WatcherOption {
	return func(w *Watcher) { w.domainsDir = dir }
}

// WithAppsDir sets the folder holding the applications
func WithAppsDir(dir string) WatcherOption {
	return func(w *Watcher) { w.appsDir = dir }
}

// WithDebounce sets the debounce duration
func WithDebounce(debounce time.Duration) WatcherOption {
	return func(w *Watcher) {
		if debounce > 0 {
			w.debounce = debounce
		}
	}
}

// WithWatcherLogger sets the logger
func WithWatcherLogger(logger log.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithScanHook calls fn with the outcome of every scan triggered by a change
func WithScanHook(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onScan = fn }
}

// NewWatcher creates a Watcher deploying through service
func NewWatcher(service Service, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		service:  service,
		debounce: DefaultDebounce,
		logger:   log.DiscardLogger,
		domains:  make(map[string]*artifact.Descriptor),
		apps:     make(map[string]*artifact.Descriptor),
		running:  atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start scans the folders once then watches them until Stop is called.
// The outcome of the first scan is returned; the watcher runs either way.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.running.Store(false)
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	for _, dir := range w.dirs() {
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			w.running.Store(false)
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
		w.watchChildren(fsWatcher, dir)
	}

	w.fsWatcher = fsWatcher
	w.done = make(chan struct{})
	w.wg.Add(1)
	go w.loop(context.WithoutCancel(ctx))

	return w.Scan(ctx)
}

// Running reports whether the folders are being watched
func (w *Watcher) Running() bool {
	return w.running.Load()
}

// Stop stops watching. Deployed artifacts stay deployed.
func (w *Watcher) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	close(w.done)
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

// Scan deploys and undeploys artifacts to match the folders content.
// Every failure is reported; a failing artifact does not stop the others.
func (w *Watcher) Scan(ctx context.Context) error {
	w.scanMu.Lock()
	defer w.scanMu.Unlock()

	domains, domainErr := w.read(w.domainsDir, artifact.Domain)
	apps, appErr := w.read(w.appsDir, artifact.Application)
	errs := []error{domainErr, appErr}

	for folder, current := range w.apps {
		if next, ok := apps[folder]; !ok || next.Fingerprint() != current.Fingerprint() {
			errs = append(errs, w.undeployApplication(ctx, folder, current))
		}
	}

	for folder, current := range w.domains {
		if next, ok := domains[folder]; !ok {
			if err := w.service.UndeployDomain(ctx, current.Name()); err != nil {
				errs = append(errs, err)
				continue
			}
			delete(w.domains, folder)
		} else if next.Fingerprint() != current.Fingerprint() {
			w.logger.Warnf("domain %s changed in %s, undeploy it to apply the change", current.Name(), folder)
		}
	}

	errs = append(errs, w.deployDomains(ctx, domains))

	for _, folder := range sortedKeys(apps) {
		if _, ok := w.apps[folder]; ok {
			continue
		}
		if _, err := w.service.DeployApplication(ctx, apps[folder]); err != nil {
			errs = append(errs, err)
			continue
		}
		w.apps[folder] = apps[folder]
	}

	return multierr.Combine(errs...)
}

func (w *Watcher) undeployApplication(ctx context.Context, folder string, descriptor *artifact.Descriptor) error {
	delete(w.apps, folder)
	return w.service.UndeployApplication(ctx, descriptor.ID())
}

// deployDomains deploys the new domains in parallel
func (w *Watcher) deployDomains(ctx context.Context, domains map[string]*artifact.Descriptor) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	var pending []string
	for _, folder := range sortedKeys(domains) {
		if _, ok := w.domains[folder]; !ok {
			pending = append(pending, folder)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, folder := range pending {
		descriptor := domains[folder]
		eg.Go(func() error {
			_, err := w.service.DeployDomain(ctx, descriptor)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			w.domains[folder] = descriptor
			return nil
		})
	}

	_ = eg.Wait()
	return multierr.Combine(errs...)
}

// read loads the descriptors of the artifact folders under dir
func (w *Watcher) read(dir string, kind artifact.Kind) (map[string]*artifact.Descriptor, error) {
	descriptors := make(map[string]*artifact.Descriptor)
	if dir == "" {
		return descriptors, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return descriptors, fmt.Errorf("reading %s: %w", dir, err)
	}

	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folder := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(folder, artifact.DescriptorFile)); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}

		// the descriptor may still be being written when the change is seen
		var descriptor *artifact.Descriptor
		err := retry.NewRetrier(loadAttempts, 10*time.Millisecond, 50*time.Millisecond).Run(func() (err error) {
			descriptor, err = artifact.Load(folder)
			return err
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if descriptor.Kind() != kind {
			errs = append(errs, fmt.Errorf("%s holds a %s where a %s is expected", folder, descriptor.Kind(), kind))
			continue
		}
		descriptors[folder] = descriptor
	}
	return descriptors, multierr.Combine(errs...)
}

func (w *Watcher) dirs() []string {
	var dirs []string
	for _, dir := range []string{w.domainsDir, w.appsDir} {
		if dir != "" && !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// watchChildren watches the artifact folders so that descriptor writes are seen
func (w *Watcher) watchChildren(fsWatcher *fsnotify.Watcher, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := fsWatcher.Add(filepath.Join(dir, entry.Name())); err != nil {
				w.logger.Warnf("failed to watch %s: %v", entry.Name(), err)
			}
		}
	}
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		var fire <-chan time.Time
		if timer != nil {
			fire = timer.C
		}

		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsWatcher.Add(event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			err := w.Scan(ctx)
			if err != nil {
				w.logger.Errorf("deployment scan failed: %v", err)
			}
			if w.onScan != nil {
				w.onScan(err)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("deployment watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

func sortedKeys(m map[string]*artifact.Descriptor) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
