package pubsub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type tick struct {
	run string
	n   int
}

// TestBasicPubSub tests basic publish/subscribe functionality
func TestBasicPubSub(t *testing.T) {
	ps := New[tick](0)
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if sub.Topic() != "run-1" {
		t.Errorf("Topic() = %q, want run-1", sub.Topic())
	}

	ps.Publish("run-1", tick{run: "run-1", n: 3})

	select {
	case msg := <-sub.Channel():
		if msg.n != 3 {
			t.Errorf("Expected tick 3, got %d", msg.n)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Timeout waiting for message")
	}

	sub.Unsubscribe()
}

// TestMultipleSubscribers tests multiple subscribers to the same topic
func TestMultipleSubscribers(t *testing.T) {
	ps := New[int](0)
	defer ps.Shutdown()

	const numSubscribers = 5
	subs := make([]*Subscription[int], numSubscribers)
	for i := range subs {
		sub, err := ps.Subscribe(context.Background(), "broadcast")
		if err != nil {
			t.Fatalf("Failed to subscribe %d: %v", i, err)
		}
		defer sub.Unsubscribe()
		subs[i] = sub
	}

	ps.Publish("broadcast", 42)

	for i, sub := range subs {
		select {
		case msg := <-sub.Channel():
			if msg != 42 {
				t.Errorf("Subscriber %d: expected 42, got %d", i, msg)
			}
		case <-time.After(1 * time.Second):
			t.Fatalf("Subscriber %d: timeout waiting for message", i)
		}
	}
}

// TestTopicIsolation tests that messages are isolated by topic
func TestTopicIsolation(t *testing.T) {
	ps := New[string](0)
	defer ps.Shutdown()

	sub1, _ := ps.Subscribe(context.Background(), "run-1")
	sub2, _ := ps.Subscribe(context.Background(), "run-2")
	defer sub1.Unsubscribe()
	defer sub2.Unsubscribe()

	ps.Publish("run-1", "for run 1")

	select {
	case msg := <-sub1.Channel():
		if msg != "for run 1" {
			t.Errorf("run-1: expected message, got %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("run-1: timeout")
	}

	select {
	case msg := <-sub2.Channel():
		t.Errorf("run-2: expected no message, got %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestUnsubscribe tests that unsubscribed clients don't receive messages
func TestUnsubscribe(t *testing.T) {
	ps := New[int](0)
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), "topic")
	ps.Publish("topic", 1)
	if msg := <-sub.Channel(); msg != 1 {
		t.Errorf("Expected 1, got %d", msg)
	}

	sub.Unsubscribe()
	ps.Publish("topic", 2)

	if _, ok := <-sub.Channel(); ok {
		t.Error("Received message after unsubscribe")
	}
	if ps.GetSubscriberCount("topic") != 0 {
		t.Error("Subscriber still registered after unsubscribe")
	}
}

// TestContextCancellation tests that subscriptions respect context cancellation
func TestContextCancellation(t *testing.T) {
	ps := New[int](0)
	defer ps.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := ps.Subscribe(ctx, "topic")

	done := make(chan bool, 1)
	go func() {
		for range sub.Channel() {
		}
		done <- true
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Subscription channel did not close on context cancellation")
	}
}

// TestConcurrentPublish tests concurrent publishing from multiple goroutines
func TestConcurrentPublish(t *testing.T) {
	ps := New[int](200)
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), "concurrent")
	defer sub.Unsubscribe()

	const numMessages = 100
	var wg sync.WaitGroup
	for i := 0; i < numMessages; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ps.Publish("concurrent", n)
		}(i)
	}
	wg.Wait()

	received := make(map[int]bool)
	for len(received) < numMessages {
		select {
		case n := <-sub.Channel():
			received[n] = true
		case <-time.After(time.Second):
			t.Fatalf("Expected %d messages, received %d", numMessages, len(received))
		}
	}
}

// TestSlowSubscriberDrops tests that a full buffer drops instead of blocking
func TestSlowSubscriberDrops(t *testing.T) {
	ps := New[int](2)
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), "topic")
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		ps.Publish("topic", i)
	}

	if got := ps.Dropped(); got != 3 {
		t.Errorf("Dropped() = %d, want 3", got)
	}
	for want := 0; want < 2; want++ {
		if msg := <-sub.Channel(); msg != want {
			t.Errorf("Expected %d, got %d", want, msg)
		}
	}
}

// TestGetSubscriberCount tests getting the number of subscribers for a topic
func TestGetSubscriberCount(t *testing.T) {
	ps := New[int](0)
	defer ps.Shutdown()

	if count := ps.GetSubscriberCount("topic"); count != 0 {
		t.Errorf("Expected 0 subscribers, got %d", count)
	}

	sub1, _ := ps.Subscribe(context.Background(), "topic")
	sub2, _ := ps.Subscribe(context.Background(), "topic")

	if count := ps.GetSubscriberCount("topic"); count != 2 {
		t.Errorf("Expected 2 subscribers, got %d", count)
	}

	sub1.Unsubscribe()
	if count := ps.GetSubscriberCount("topic"); count != 1 {
		t.Errorf("Expected 1 subscriber after unsubscribe, got %d", count)
	}
	sub2.Unsubscribe()
}

// TestShutdown tests graceful shutdown
func TestShutdown(t *testing.T) {
	ps := New[int](0)

	sub, _ := ps.Subscribe(context.Background(), "topic")

	done := make(chan bool, 1)
	go func() {
		for range sub.Channel() {
		}
		done <- true
	}()

	ps.Shutdown()
	ps.Shutdown()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Subscription channel did not close on shutdown")
	}

	if _, err := ps.Subscribe(context.Background(), "topic"); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after shutdown: got %v, want ErrClosed", err)
	}
	ps.Publish("topic", 1)
}
