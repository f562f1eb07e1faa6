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
	"sync"

	"github.com/modhost/modhost/internal/xsync"
)

// Stream is an in-process topic based publish/subscribe broker.
// Publishing never blocks: every subscriber buffers its messages until
// it drains them.
type Stream interface {
	// AddSubscriber creates a subscriber
	AddSubscriber() Subscriber
	// RemoveSubscriber unsubscribes sub from every topic and shuts it down
	RemoveSubscriber(sub Subscriber)
	// SubscribersCount returns the number of subscribers of topic
	SubscribersCount(topic string) int
	// Subscribe subscribes sub to topic. Inactive subscribers are ignored.
	Subscribe(sub Subscriber, topic string)
	// Unsubscribe unsubscribes sub from topic
	Unsubscribe(sub Subscriber, topic string)
	// Publish publishes payload on topic
	Publish(topic string, payload any)
	// Broadcast publishes payload on every topic of topics
	Broadcast(payload any, topics []string)
	// Close shuts every subscriber down
	Close()
}

// EventsStream is the default Stream implementation
type EventsStream struct {
	subscribers *xsync.Map[string, Subscriber]

	mu     sync.RWMutex
	topics map[string]map[string]Subscriber
}

var _ Stream = (*EventsStream)(nil)

// New creates an EventsStream
func New() *EventsStream {
	return &EventsStream{
		subscribers: xsync.NewMap[string, Subscriber](),
		topics:      make(map[string]map[string]Subscriber),
	}
}

func (x *EventsStream) AddSubscriber() Subscriber {
	sub := newSubscriber()
	x.subscribers.Set(sub.ID(), sub)
	return sub
}

func (x *EventsStream) RemoveSubscriber(sub Subscriber) {
	for _, topic := range sub.Topics() {
		x.Unsubscribe(sub, topic)
	}
	x.subscribers.Delete(sub.ID())
	sub.Shutdown()
}

func (x *EventsStream) SubscribersCount(topic string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.topics[topic])
}

func (x *EventsStream) Subscribe(sub Subscriber, topic string) {
	if !sub.Active() {
		return
	}
	sub.subscribe(topic)

	x.mu.Lock()
	defer x.mu.Unlock()
	subs, ok := x.topics[topic]
	if !ok {
		subs = make(map[string]Subscriber)
		x.topics[topic] = subs
	}
	subs[sub.ID()] = sub
}

func (x *EventsStream) Unsubscribe(sub Subscriber, topic string) {
	sub.unsubscribe(topic)

	x.mu.Lock()
	defer x.mu.Unlock()
	if subs, ok := x.topics[topic]; ok {
		delete(subs, sub.ID())
		if len(subs) == 0 {
			delete(x.topics, topic)
		}
	}
}

func (x *EventsStream) Publish(topic string, payload any) {
	x.publish(topic, payload)
}

func (x *EventsStream) Broadcast(payload any, topics []string) {
	for _, topic := range topics {
		x.publish(topic, payload)
	}
}

func (x *EventsStream) Close() {
	x.subscribers.Range(func(_ string, sub Subscriber) {
		sub.Shutdown()
	})
	x.subscribers.Reset()

	x.mu.Lock()
	x.topics = make(map[string]map[string]Subscriber)
	x.mu.Unlock()
}

func (x *EventsStream) publish(topic string, payload any) {
	x.mu.RLock()
	subs := make([]Subscriber, 0, len(x.topics[topic]))
	for _, sub := range x.topics[topic] {
		subs = append(subs, sub)
	}
	x.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	message := NewMessage(topic, payload)
	for _, sub := range subs {
		if sub.Active() {
			sub.signal(message)
		}
	}
}
