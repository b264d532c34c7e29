package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestGracefulServerServeAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	gs := NewGracefulServer("127.0.0.1:0", handler, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, time.Second) }()

	resp, err := http.Get("http://" + gs.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("Expected body %q, got %q", "ok", body)
	}
	if gs.IsShuttingDown() {
		t.Error("Server should not be shutting down yet")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Server did not stop after cancellation")
	}

	if !gs.IsShuttingDown() {
		t.Error("Server should be shutting down")
	}
	select {
	case <-gs.ShutdownChannel():
	default:
		t.Error("Shutdown channel not closed")
	}

	// Second shutdown is a no-op
	if err := gs.Shutdown(time.Second); err != nil {
		t.Errorf("Second shutdown returned error: %v", err)
	}
}

func TestGracefulServerListenError(t *testing.T) {
	gs := NewGracefulServer("256.0.0.1:bad", http.NotFoundHandler(), nil)
	if err := gs.Serve(context.Background(), time.Second); err == nil {
		t.Error("Expected listen error")
	}
}

func TestGracefulServerReload(t *testing.T) {
	gs := NewGracefulServer(":0", http.NotFoundHandler(), nil)

	if err := gs.Reload(); err != nil {
		t.Errorf("Reload without a function should be a no-op, got %v", err)
	}

	called := false
	gs.SetReloadFunc(func() error {
		called = true
		return nil
	})
	if err := gs.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if !called {
		t.Error("Reload function was not called")
	}

	boom := errors.New("bad config")
	gs.SetReloadFunc(func() error { return boom })
	if err := gs.Reload(); !errors.Is(err, boom) {
		t.Errorf("Expected %v, got %v", boom, err)
	}
}
