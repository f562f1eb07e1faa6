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
	"time"

	"github.com/google/uuid"

	"github.com/modhost/modhost/artifact"
)

const (
	// TopicDomains is the event stream topic of domain deployment events
	TopicDomains = "deployment.domains"
	// TopicApplications is the event stream topic of application deployment events
	TopicApplications = "deployment.applications"
)

// Action is what happens to an artifact
type Action int

const (
	Deploy Action = iota
	Undeploy
)

func (a Action) String() string {
	if a == Undeploy {
		return "undeploy"
	}
	return "deploy"
}

// Phase is the progress of an action
type Phase int

const (
	Started Phase = iota
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Succeeded:
		return "success"
	case Failed:
		return "failure"
	default:
		return "start"
	}
}

// Event describes one step of a deployment or undeployment.
// The start event and its outcome share the same CorrelationID.
type Event struct {
	ID            string
	CorrelationID string
	Action        Action
	Phase         Phase
	Kind          artifact.Kind
	ArtifactID    string
	Domain        string
	Err           error
	Time          time.Time
}

func newEvent(correlationID string, action Action, phase Phase, kind artifact.Kind, artifactID, domain string, err error) Event {
	return Event{
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		Action:        action,
		Phase:         phase,
		Kind:          kind,
		ArtifactID:    artifactID,
		Domain:        domain,
		Err:           err,
		Time:          time.Now(),
	}
}

func (e Event) topic() string {
	if e.Kind == artifact.Domain {
		return TopicDomains
	}
	return TopicApplications
}
