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

package main

import (
	"context"

	"github.com/modhost/modhost/deployment"
	"github.com/modhost/modhost/extension"
	"github.com/modhost/modhost/log"
)

const auditExtensionID = "audit"

// auditExtension logs every deployment outcome
type auditExtension struct {
	deployment.NopListener
	logger log.Logger
}

var (
	_ extension.Extension = (*auditExtension)(nil)
	_ deployment.Listener = (*auditExtension)(nil)
)

func newAuditExtension(logger log.Logger) *auditExtension {
	return &auditExtension{logger: logger.With("extension", auditExtensionID)}
}

func (a *auditExtension) ID() string                       { return auditExtensionID }
func (a *auditExtension) Initialise(context.Context) error { return nil }
func (a *auditExtension) Start(context.Context) error      { return nil }
func (a *auditExtension) Stop(context.Context) error       { return nil }
func (a *auditExtension) Dispose(context.Context) error    { return nil }

func (a *auditExtension) OnDeploymentSuccess(event deployment.Event) {
	a.logger.Infof("deployed %s (correlation %s)", event.ArtifactID, event.CorrelationID)
}

func (a *auditExtension) OnDeploymentFailure(event deployment.Event) {
	a.logger.Warnf("failed to deploy %s: %v", event.ArtifactID, event.Err)
}

func (a *auditExtension) OnUndeploymentSuccess(event deployment.Event) {
	a.logger.Infof("undeployed %s", event.ArtifactID)
}

func (a *auditExtension) OnUndeploymentFailure(event deployment.Event) {
	a.logger.Warnf("failed to undeploy %s: %v", event.ArtifactID, event.Err)
}
