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

package eventstream

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/modhost/modhost/internal/queue"
)

// Subscriber receives the messages published on the topics it is
// subscribed to. Subscribers are created by a Stream.
type Subscriber interface {
	// ID returns the subscriber unique id
	ID() string
	// Active reports whether the subscriber still receives messages
	Active() bool
	// Topics returns the subscribed topics in lexical order
	Topics() []string
	// Iterator drains the buffered messages through a closed channel
	Iterator() chan *Message
	// Ready is signaled when messages are buffered
	Ready() <-chan struct{}
	// Shutdown stops the delivery of messages
	Shutdown()

	signal(message *Message)
	subscribe(topic string)
	unsubscribe(topic string)
}

type subscriber struct {
	id       string
	mu       sync.Mutex
	topics   map[string]struct{}
	messages *queue.Queue[*Message]
	active   *atomic.Bool
}

var _ Subscriber = (*subscriber)(nil)

func newSubscriber() *subscriber {
	return &subscriber{
		id:       uuid.NewString(),
		topics:   make(map[string]struct{}),
		messages: queue.New[*Message](),
		active:   atomic.NewBool(true),
	}
}

func (s *subscriber) ID() string {
	return s.id
}

func (s *subscriber) Active() bool {
	return s.active.Load()
}

func (s *subscriber) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, 0, len(s.topics))
	for topic := range s.topics {
		topics = append(topics, topic)
	}
	slices.Sort(topics)
	return topics
}

// Iterator drains the messages buffered at the time of the call.
// Messages published concurrently may be left for the next call.
func (s *subscriber) Iterator() chan *Message {
	messages := s.messages.Drain()
	out := make(chan *Message, len(messages))
	for _, message := range messages {
		out <- message
	}
	close(out)
	return out
}

func (s *subscriber) Ready() <-chan struct{} {
	return s.messages.Ready()
}

func (s *subscriber) Shutdown() {
	if s.active.CompareAndSwap(true, false) {
		s.messages.Close()
	}
}

func (s *subscriber) signal(message *Message) {
	if s.active.Load() {
		s.messages.Push(message)
	}
}

func (s *subscriber) subscribe(topic string) {
	s.mu.Lock()
	s.topics[topic] = struct{}{}
	s.mu.Unlock()
}

func (s *subscriber) unsubscribe(topic string) {
	s.mu.Lock()
	delete(s.topics, topic)
	s.mu.Unlock()
}
