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

	"github.com/modhost/modhost/artifact"
	"github.com/modhost/modhost/isolation"
)

// Service deploys and undeploys artifacts and notifies listeners about it
type Service interface {
	// AddDeploymentListener registers a listener of application deployments
	AddDeploymentListener(listener Listener)
	// RemoveDeploymentListener unregisters a listener of application deployments
	RemoveDeploymentListener(listener Listener)
	// AddDomainDeploymentListener registers a listener of domain deployments
	AddDomainDeploymentListener(listener Listener)
	// RemoveDomainDeploymentListener unregisters a listener of domain deployments
	RemoveDomainDeploymentListener(listener Listener)
	// DeployDomain builds the module tree of a domain
	DeployDomain(ctx context.Context, descriptor *artifact.Descriptor) (*isolation.Node, error)
	// UndeployDomain disposes the module tree of a domain. It fails while
	// applications are deployed in the domain.
	UndeployDomain(ctx context.Context, name string) error
	// DeployApplication builds the module tree of an application under its domain
	DeployApplication(ctx context.Context, descriptor *artifact.Descriptor) (*isolation.Node, error)
	// UndeployApplication disposes the module tree of an application
	UndeployApplication(ctx context.Context, id string) error
	// Domains returns the names of the deployed domains
	Domains() []string
	// Applications returns the ids of the deployed applications
	Applications() []string
}
