package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/epidemic"
	"github.com/dd0wney/virusnet/pkg/logging"
	"github.com/dd0wney/virusnet/pkg/metrics"
	"github.com/dd0wney/virusnet/pkg/pubsub"
	"github.com/dd0wney/virusnet/pkg/randvar"
	"github.com/dd0wney/virusnet/pkg/topology"
)

func snap(tick int) epidemic.Snapshot {
	return epidemic.Snapshot{
		RunID:  "run-1",
		Tick:   tick,
		Counts: epidemic.Counts{Susceptible: 10 - tick, Infected: tick, Resistant: 2},
		Ratio:  epidemic.Ratio(0.2),
		Peak:   tick,
	}
}

func TestRecorderKeepsOrder(t *testing.T) {
	r := NewRecorder(0)
	_, ok := r.Last()
	assert.False(t, ok)

	for i := 0; i < 5; i++ {
		r.Observe(snap(i))
	}

	history := r.History()
	require.Len(t, history, 5)
	for i, s := range history {
		assert.Equal(t, i, s.Tick)
	}
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 4, last.Tick)

	// History is a copy
	history[0].Tick = 99
	assert.Equal(t, 0, r.History()[0].Tick)

	r.Reset()
	assert.Equal(t, 0, r.Len())
}

func TestRecorderLimit(t *testing.T) {
	r := NewRecorder(3)
	for i := 0; i < 10; i++ {
		r.Observe(snap(i))
	}

	history := r.History()
	require.Len(t, history, 3)
	assert.Equal(t, []int{7, 8, 9}, []int{history[0].Tick, history[1].Tick, history[2].Tick})
}

func TestRecorderConcurrentUse(t *testing.T) {
	r := NewRecorder(50)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Observe(snap(j % 10))
				_ = r.History()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Len())
}

func TestJSONLines(t *testing.T) {
	var buf bytes.Buffer
	j := NewJSONLines(&buf)

	s := snap(1)
	s.Ratio = epidemic.Ratio(math.Inf(1))
	j.Observe(snap(0))
	j.Observe(s)
	require.NoError(t, j.Err())

	scanner := bufio.NewScanner(&buf)
	var lines []epidemic.Snapshot
	for scanner.Scan() {
		var decoded epidemic.Snapshot
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &decoded))
		lines = append(lines, decoded)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].Tick)
	assert.True(t, math.IsInf(float64(lines[1].Ratio), 1))
}

type failingWriter struct{ calls int }

func (f *failingWriter) Write([]byte) (int, error) {
	f.calls++
	return 0, errors.New("disk full")
}

func TestJSONLinesKeepsFirstError(t *testing.T) {
	w := &failingWriter{}
	j := NewJSONLines(w)
	j.Observe(snap(3))
	j.Observe(snap(4))

	require.Error(t, j.Err())
	assert.Contains(t, j.Err().Error(), "tick 3")
	assert.Equal(t, 1, w.calls)
}

func TestLoggerSink(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)
	sink := NewLoggerSink(logger)

	sink.Observe(snap(2))
	final := snap(3)
	final.Finished = true
	sink.Observe(final)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "outbreak cleared", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
}

func gauge(t *testing.T, g interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	if m.Gauge != nil {
		return m.Gauge.GetValue()
	}
	return m.Counter.GetValue()
}

func TestMetricsSink(t *testing.T) {
	reg := metrics.NewRegistry()
	sink := NewMetricsSink(reg)

	sink.Observe(snap(0))
	s := snap(1)
	s.Events = epidemic.TickEvents{Infections: 2, Deaths: 1}
	s.Elapsed = time.Millisecond
	sink.Observe(s)
	final := snap(1)
	final.Finished = true
	sink.Observe(final)

	infected, err := reg.HostsByState.GetMetricWithLabelValues("infected")
	require.NoError(t, err)
	assert.Equal(t, 1.0, gauge(t, infected))
	assert.Equal(t, 1.0, gauge(t, reg.TicksTotal))
	assert.Equal(t, 0.2, gauge(t, reg.ResistantSusceptibleRatio))

	infections, _ := reg.TransitionsTotal.GetMetricWithLabelValues("infection")
	assert.Equal(t, 2.0, gauge(t, infections))
	cleared, _ := reg.RunsTotal.GetMetricWithLabelValues(metrics.OutcomeCleared)
	assert.Equal(t, 1.0, gauge(t, cleared))
}

func TestBroadcaster(t *testing.T) {
	ps := pubsub.New[epidemic.Snapshot](10)
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), "run-1")
	require.NoError(t, err)

	NewBroadcaster(ps, "").Observe(snap(4))

	select {
	case got := <-sub.Channel():
		assert.Equal(t, 4, got.Tick)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for snapshot")
	}
}

func TestBroadcasterFixedTopic(t *testing.T) {
	ps := pubsub.New[epidemic.Snapshot](10)
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), "live")
	require.NoError(t, err)

	b := NewBroadcaster(ps, "live")
	first, second := snap(1), snap(0)
	second.RunID = "run-2"
	b.Observe(first)
	b.Observe(second)

	for _, want := range []epidemic.Snapshot{first, second} {
		select {
		case got := <-sub.Channel():
			assert.Equal(t, want.RunID, got.RunID)
			assert.Equal(t, want.Tick, got.Tick)
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for snapshot")
		}
	}
}

func TestSinksFollowAPopulation(t *testing.T) {
	cfg := config.Default()
	cfg.GridRows, cfg.GridCols = 8, 8

	rec := NewRecorder(0)
	var buf bytes.Buffer
	lines := NewJSONLines(&buf)

	p, err := epidemic.New(cfg, randvar.New(7), epidemic.WithObserver(rec, lines))
	require.NoError(t, err)
	advanced := p.Run(10)

	require.GreaterOrEqual(t, rec.Len(), advanced+1)
	for _, s := range rec.History() {
		assert.Equal(t, cfg.NodeCount, s.Counts.Total())
		assert.Equal(t, p.ID(), s.RunID)
	}
	assert.Equal(t, rec.Len(), bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestRenderSummary(t *testing.T) {
	s := snap(5)
	s.Finished = true
	s.Ratio = epidemic.Ratio(math.Inf(1))

	out := RenderSummary(s, topology.Statistics{NodeCount: 10, EdgeCount: 14, AverageDegree: 2.8, Components: 1, LargestCluster: 10})

	for _, want := range []string{"run-1", "tick 5", "cleared", "infected", "+Inf", "mean degree", "2.80"} {
		assert.Contains(t, out, want)
	}
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "+Inf", FormatRatio(math.Inf(1)))
	assert.Equal(t, "0.500", FormatRatio(0.5))
}
