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

package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArtifactName is returned when an artifact name is empty or contains invalid characters.
	// A valid name must consist of only alphanumeric characters ([a-zA-Z0-9]), with optional
	// hyphens or underscores that are not leading.
	ErrInvalidArtifactName = errors.New("invalid artifact name, must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-' or '_')")
	// ErrInvalidArtifactKind is returned when a descriptor carries an unknown kind.
	ErrInvalidArtifactKind = errors.New("invalid artifact kind")
	// ErrInvalidDescriptor is returned when a descriptor is nil or fails validation.
	ErrInvalidDescriptor = errors.New("invalid artifact descriptor")
	// ErrDuplicatePlugin is returned when an artifact declares the same plugin twice.
	ErrDuplicatePlugin = errors.New("duplicate plugin")
	// ErrArtifactRootNotFound is returned when the root folder of an artifact does not exist.
	ErrArtifactRootNotFound = errors.New("artifact root folder does not exist")
	// ErrArtifactRootNotDirectory is returned when the root folder of an artifact is not a directory.
	ErrArtifactRootNotDirectory = errors.New("artifact root is not a directory")

	// ErrNodeDisposed is returned when operating on a module node that has been disposed.
	ErrNodeDisposed = errors.New("module node is disposed")
	// ErrNodeAlreadyExists is returned when a node id is registered twice.
	ErrNodeAlreadyExists = errors.New("module node already exists")
	// ErrParentNotFound is returned when a node is created under a parent that is not registered.
	ErrParentNotFound = errors.New("parent module node not found")
	// ErrMemberAlreadyInRegion is returned when a node is added twice to a region.
	ErrMemberAlreadyInRegion = errors.New("member already belongs to the region")
	// ErrDuplicatePackageMapping is returned when two region members export the same package.
	ErrDuplicatePackageMapping = errors.New("package already exported by another region member")
	// ErrIllegalPackageMapping is returned when a member exports a package the region resolves parent first.
	ErrIllegalPackageMapping = errors.New("package is resolved parent first and cannot be exported")

	// ErrUnresolvableDependency is returned when extension dependencies cannot reach a fixed point.
	ErrUnresolvableDependency = errors.New("unresolvable extension dependencies")
	// ErrInjectionFailure is returned when a dependency could not be injected into an extension.
	ErrInjectionFailure = errors.New("dependency injection failed")
	// ErrLifecycleFailure is returned when an extension fails a lifecycle phase.
	ErrLifecycleFailure = errors.New("extension lifecycle failure")
	// ErrInvalidLifecycleState is returned when a lifecycle phase is requested out of order.
	ErrInvalidLifecycleState = errors.New("invalid lifecycle state")
	// ErrInvalidExtensionID is returned when an extension id is empty or malformed.
	ErrInvalidExtensionID = errors.New("invalid extension id")
	// ErrDuplicateExtension is returned when two extensions share the same id.
	ErrDuplicateExtension = errors.New("duplicate extension")
	// ErrExtensionNotRegistered is returned when a registration file names an unknown extension.
	ErrExtensionNotRegistered = errors.New("extension is not registered")

	// ErrDomainNotFound is returned when a domain is not deployed.
	ErrDomainNotFound = errors.New("domain not found")
	// ErrApplicationNotFound is returned when an application is not deployed.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrDomainInUse is returned when undeploying a domain that still hosts applications.
	ErrDomainInUse = errors.New("domain still hosts applications")
	// ErrAlreadyDeployed is returned when deploying an artifact that is already deployed.
	ErrAlreadyDeployed = errors.New("artifact already deployed")

	// ErrInvalidConfig is returned when the host configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrHostNotStarted is returned when stopping a host that is not running.
	ErrHostNotStarted = errors.New("host is not started")
	// ErrHostAlreadyStarted is returned when starting a host twice.
	ErrHostAlreadyStarted = errors.New("host is already started")
)

// NewErrInvalidDescriptor wraps a base error with ErrInvalidDescriptor.
func NewErrInvalidDescriptor(err error) error {
	return errors.Join(ErrInvalidDescriptor, err)
}

// NewErrInvalidConfig wraps a base error with ErrInvalidConfig.
func NewErrInvalidConfig(err error) error {
	return errors.Join(ErrInvalidConfig, err)
}

// NewErrNodeAlreadyExists formats an ErrNodeAlreadyExists for the given node id.
func NewErrNodeAlreadyExists(id string) error {
	return fmt.Errorf("node=(%s) %w", id, ErrNodeAlreadyExists)
}

// NewErrParentNotFound formats an ErrParentNotFound for the given parent id.
func NewErrParentNotFound(id string) error {
	return fmt.Errorf("parent=(%s) %w", id, ErrParentNotFound)
}

// NewErrDuplicateExtension formats an ErrDuplicateExtension for the given extension id.
func NewErrDuplicateExtension(id string) error {
	return fmt.Errorf("extension=(%s) %w", id, ErrDuplicateExtension)
}

// NewErrExtensionNotRegistered formats an ErrExtensionNotRegistered for the given name.
func NewErrExtensionNotRegistered(name string) error {
	return fmt.Errorf("extension=(%s) %w", name, ErrExtensionNotRegistered)
}

// NewErrDomainNotFound formats an ErrDomainNotFound for the given domain name.
func NewErrDomainNotFound(name string) error {
	return fmt.Errorf("domain=(%s) %w", name, ErrDomainNotFound)
}

// NewErrApplicationNotFound formats an ErrApplicationNotFound for the given application id.
func NewErrApplicationNotFound(id string) error {
	return fmt.Errorf("application=(%s) %w", id, ErrApplicationNotFound)
}

// NewErrAlreadyDeployed formats an ErrAlreadyDeployed for the given artifact id.
func NewErrAlreadyDeployed(id string) error {
	return fmt.Errorf("artifact=(%s) %w", id, ErrAlreadyDeployed)
}

// NewErrInvalidLifecycleState formats an ErrInvalidLifecycleState for the requested phase.
func NewErrInvalidLifecycleState(phase, state string) error {
	return fmt.Errorf("cannot %s from state %s: %w", phase, state, ErrInvalidLifecycleState)
}

// DeploymentError reports an artifact whose isolation tree could not be built.
// It is fatal for that artifact only.
type DeploymentError struct {
	artifact string
	err      error
}

var _ error = (*DeploymentError)(nil)

// NewDeploymentError creates a DeploymentError for the given artifact id
func NewDeploymentError(artifact string, err error) *DeploymentError {
	return &DeploymentError{artifact: artifact, err: err}
}

// Artifact returns the id of the artifact that failed to deploy
func (e *DeploymentError) Artifact() string {
	return e.artifact
}

// Error implements the standard error interface
func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment of %s failed: %v", e.artifact, e.err)
}

func (e *DeploymentError) Unwrap() error {
	return e.err
}

// UnresolvableDependencyError names the extensions left unresolved once
// dependency resolution stopped making progress.
type UnresolvableDependencyError struct {
	units []string
}

var _ error = (*UnresolvableDependencyError)(nil)

// NewUnresolvableDependencyError creates an UnresolvableDependencyError for the given extension ids
func NewUnresolvableDependencyError(units []string) *UnresolvableDependencyError {
	return &UnresolvableDependencyError{units: append([]string(nil), units...)}
}

// Units returns the ids of the stuck extensions, in discovery order
func (e *UnresolvableDependencyError) Units() []string {
	return append([]string(nil), e.units...)
}

// Error implements the standard error interface
func (e *UnresolvableDependencyError) Error() string {
	return fmt.Sprintf("%s: [%s]", ErrUnresolvableDependency.Error(), strings.Join(e.units, ", "))
}

func (e *UnresolvableDependencyError) Unwrap() error {
	return ErrUnresolvableDependency
}

// InjectionError reports a dependency injection point that failed or panicked.
type InjectionError struct {
	unit       string
	dependency string
	err        error
}

var _ error = (*InjectionError)(nil)

// NewInjectionError creates an InjectionError
func NewInjectionError(unit, dependency string, err error) *InjectionError {
	return &InjectionError{unit: unit, dependency: dependency, err: err}
}

// Unit returns the id of the extension being injected
func (e *InjectionError) Unit() string { return e.unit }

// Dependency returns the name of the dependency being injected
func (e *InjectionError) Dependency() string { return e.dependency }

// Error implements the standard error interface
func (e *InjectionError) Error() string {
	return fmt.Sprintf("%s: unit=(%s) dependency=(%s): %v", ErrInjectionFailure.Error(), e.unit, e.dependency, e.err)
}

func (e *InjectionError) Unwrap() []error {
	return []error{ErrInjectionFailure, e.err}
}

// LifecycleError reports an extension failing one of its lifecycle phases.
type LifecycleError struct {
	phase string
	unit  string
	err   error
}

var _ error = (*LifecycleError)(nil)

// NewLifecycleError creates a LifecycleError
func NewLifecycleError(phase, unit string, err error) *LifecycleError {
	return &LifecycleError{phase: phase, unit: unit, err: err}
}

// Phase returns the lifecycle phase that failed
func (e *LifecycleError) Phase() string { return e.phase }

// Unit returns the id of the failing extension
func (e *LifecycleError) Unit() string { return e.unit }

// Error implements the standard error interface
func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s failed for extension=(%s): %v", e.phase, e.unit, e.err)
}

func (e *LifecycleError) Unwrap() []error {
	return []error{ErrLifecycleFailure, e.err}
}

// PanicError wraps a value recovered from a panic
type PanicError struct {
	err error
}

var _ error = (*PanicError)(nil)

// NewPanicError creates a PanicError from a recovered value
func NewPanicError(recovered any) *PanicError {
	if err, ok := recovered.(error); ok {
		return &PanicError{err: err}
	}
	return &PanicError{err: fmt.Errorf("%v", recovered)}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}
