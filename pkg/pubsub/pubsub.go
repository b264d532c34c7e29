// Package pubsub fans out values to topic subscribers over buffered channels.
// The serve command uses it to stream population snapshots keyed by run id.
package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Subscribe after Shutdown.
var ErrClosed = errors.New("pubsub is shut down")

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 100

// PubSub provides publish/subscribe for values of type T
type PubSub[T any] struct {
	subscribers map[string]map[*Subscription[T]]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	shutdownMu  sync.Mutex
	isShutdown  bool
	buffer      int
	dropped     atomic.Uint64
}

// Subscription represents a subscription to a topic
type Subscription[T any] struct {
	topic     string
	channel   chan T
	ps        *PubSub[T]
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates a PubSub whose subscriptions buffer up to buffer values.
// A non-positive buffer selects DefaultBuffer.
func New[T any](buffer int) *PubSub[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &PubSub[T]{
		subscribers: make(map[string]map[*Subscription[T]]bool),
		shutdown:    make(chan struct{}),
		buffer:      buffer,
	}
}

// Subscribe creates a new subscription to a topic. The subscription ends
// when ctx is cancelled, Unsubscribe is called or the PubSub shuts down.
func (ps *PubSub[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return nil, ErrClosed
	}
	ps.shutdownMu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:   topic,
		channel: make(chan T, ps.buffer),
		ps:      ps,
		cancel:  cancel,
	}

	ps.mu.Lock()
	if ps.subscribers[topic] == nil {
		ps.subscribers[topic] = make(map[*Subscription[T]]bool)
	}
	ps.subscribers[topic][sub] = true
	ps.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-ps.shutdown:
			sub.close()
		}
	}()

	return sub, nil
}

// Publish sends a value to all subscribers of a topic without blocking.
// Subscribers whose buffer is full miss the value.
func (ps *PubSub[T]) Publish(topic string, value T) {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.shutdownMu.Unlock()

	// Snapshot the subscribers so sends happen outside the lock
	ps.mu.RLock()
	topicSubs := ps.subscribers[topic]
	if len(topicSubs) == 0 {
		ps.mu.RUnlock()
		return
	}
	subs := make([]*Subscription[T], 0, len(topicSubs))
	for sub := range topicSubs {
		subs = append(subs, sub)
	}
	ps.mu.RUnlock()

	for _, sub := range subs {
		if !sub.send(value) {
			ps.dropped.Add(1)
		}
	}
}

// send delivers value unless the subscription is full. A subscription
// closed between the snapshot and the send counts as delivered.
func (s *Subscription[T]) send(value T) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = true
		}
	}()
	select {
	case s.channel <- value:
		return true
	default:
		return false
	}
}

// Dropped returns how many deliveries were skipped because a subscriber
// was not keeping up.
func (ps *PubSub[T]) Dropped() uint64 {
	return ps.dropped.Load()
}

// GetSubscriberCount returns the number of subscribers for a topic
func (ps *PubSub[T]) GetSubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}

// Shutdown closes all subscriptions and shuts down the PubSub
func (ps *PubSub[T]) Shutdown() {
	ps.shutdownMu.Lock()
	if ps.isShutdown {
		ps.shutdownMu.Unlock()
		return
	}
	ps.isShutdown = true
	ps.shutdownMu.Unlock()

	close(ps.shutdown)

	ps.mu.Lock()
	for topic := range ps.subscribers {
		for sub := range ps.subscribers[topic] {
			sub.close()
		}
		delete(ps.subscribers, topic)
	}
	ps.mu.Unlock()
}

// Channel returns the subscription's value channel
func (s *Subscription[T]) Channel() <-chan T {
	return s.channel
}

// Topic returns the subscribed topic
func (s *Subscription[T]) Topic() string {
	return s.topic
}

// Unsubscribe removes the subscription
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if s.ps.subscribers[s.topic] != nil {
		delete(s.ps.subscribers[s.topic], s)
		if len(s.ps.subscribers[s.topic]) == 0 {
			delete(s.ps.subscribers, s.topic)
		}
	}

	s.close()
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
