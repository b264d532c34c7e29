package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/epidemic"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.GridRows = 8
	cfg.GridCols = 8
	cfg.Seed = 11
	return cfg
}

func newTestSession(t *testing.T, opts SessionOptions) *Session {
	t.Helper()
	s, err := NewSession(testConfig(), opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSessionStepRecordsHistory(t *testing.T) {
	s := newTestSession(t, SessionOptions{})

	require.Len(t, s.History(), 1)
	assert.True(t, s.RunState().LastStep.IsZero())

	steps := 0
	for steps < 5 && s.Step() {
		steps++
	}

	assert.GreaterOrEqual(t, len(s.History()), steps+1)
	assert.Equal(t, steps, s.Snapshot().Tick)
	if steps > 0 {
		assert.False(t, s.RunState().LastStep.IsZero())
	}
	assert.Equal(t, 20, s.Stats().NodeCount)
}

func TestSessionResetStartsNewRun(t *testing.T) {
	s := newTestSession(t, SessionOptions{})
	first := s.Snapshot().RunID
	s.Step()

	cfg := s.Config()
	cfg.Seed = 99
	require.NoError(t, s.Reset(cfg))

	assert.NotEqual(t, first, s.Snapshot().RunID)
	assert.Equal(t, 0, s.Snapshot().Tick)
	assert.Equal(t, uint64(99), s.Config().Seed)
	require.Len(t, s.History(), 1)
}

func TestSessionResetRejectsInvalidConfig(t *testing.T) {
	s := newTestSession(t, SessionOptions{})
	before := s.Snapshot().RunID

	cfg := s.Config()
	cfg.NodeCount = -1
	assert.ErrorIs(t, s.Reset(cfg), config.ErrInvalidConfig)
	assert.Equal(t, before, s.Snapshot().RunID)
}

func TestSessionHost(t *testing.T) {
	s := newTestSession(t, SessionOptions{})

	view, err := s.Host(0)
	require.NoError(t, err)
	assert.Equal(t, 0, view.ID)
	assert.Equal(t, 20, s.Stats().NodeCount)

	_, err = s.Host(1000)
	assert.ErrorIs(t, err, epidemic.ErrUnknownHost)
}

func TestSessionRunRestartsClearedRuns(t *testing.T) {
	cfg := testConfig()
	cfg.InitialOutbreakSize = 0
	s, err := NewSession(cfg, SessionOptions{Restart: true})
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	first := s.Snapshot().RunID
	require.NoError(t, s.Run(ctx, time.Millisecond))
	assert.NotEqual(t, first, s.Snapshot().RunID)
	assert.Greater(t, s.Config().Seed, cfg.Seed)
}

func TestSessionRunStopsOnCancel(t *testing.T) {
	s := newTestSession(t, SessionOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSessionSubscribe(t *testing.T) {
	s := newTestSession(t, SessionOptions{})

	sub, err := s.Subscribe(context.Background())
	require.NoError(t, err)
	defer sub.Unsubscribe()

	s.Step()

	select {
	case snap := <-sub.Channel():
		assert.Equal(t, s.Snapshot().RunID, snap.RunID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func TestSessionSubscriptionFollowsReset(t *testing.T) {
	s := newTestSession(t, SessionOptions{})

	sub, err := s.Subscribe(context.Background())
	require.NoError(t, err)
	defer sub.Unsubscribe()
	assert.Equal(t, 1, s.Subscribers())

	old := s.Snapshot().RunID
	cfg := s.Config()
	cfg.Seed++
	require.NoError(t, s.Reset(cfg))
	current := s.Snapshot().RunID
	require.NotEqual(t, old, current)

	s.Step()

	for _, tick := range []int{0, 1} {
		select {
		case snap := <-sub.Channel():
			assert.Equal(t, current, snap.RunID)
			assert.Equal(t, tick, snap.Tick)
		case <-time.After(time.Second):
			t.Fatalf("no snapshot for tick %d after reset", tick)
		}
	}
}
