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

// Listener is notified of deployments. Application listeners are added
// with AddDeploymentListener, domain listeners with AddDomainDeploymentListener.
//
// Listeners are called synchronously, in registration order, from the
// goroutine deploying the artifact. A panicking listener is logged and
// does not affect the deployment.
type Listener interface {
	OnDeploymentStart(event Event)
	OnDeploymentSuccess(event Event)
	OnDeploymentFailure(event Event)
	OnUndeploymentStart(event Event)
	OnUndeploymentSuccess(event Event)
	OnUndeploymentFailure(event Event)
}

// NopListener ignores every event. Embed it to implement only the
// callbacks of interest.
type NopListener struct{}

var _ Listener = NopListener{}

func (NopListener) OnDeploymentStart(Event)     {}
func (NopListener) OnDeploymentSuccess(Event)   {}
func (NopListener) OnDeploymentFailure(Event)   {}
func (NopListener) OnUndeploymentStart(Event)   {}
func (NopListener) OnUndeploymentSuccess(Event) {}
func (NopListener) OnUndeploymentFailure(Event) {}

func dispatch(listener Listener, event Event) {
	switch event.Action {
	case Deploy:
		switch event.Phase {
		case Started:
			listener.OnDeploymentStart(event)
		case Succeeded:
			listener.OnDeploymentSuccess(event)
		case Failed:
			listener.OnDeploymentFailure(event)
		}
	case Undeploy:
		switch event.Phase {
		case Started:
			listener.OnUndeploymentStart(event)
		case Succeeded:
			listener.OnUndeploymentSuccess(event)
		case Failed:
			listener.OnUndeploymentFailure(event)
		}
	}
}
