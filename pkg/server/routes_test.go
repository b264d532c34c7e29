package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/virusnet/pkg/config"
	"github.com/dd0wney/virusnet/pkg/epidemic"
	"github.com/dd0wney/virusnet/pkg/health"
	"github.com/dd0wney/virusnet/pkg/metrics"
	"github.com/dd0wney/virusnet/pkg/topology"
)

func newTestRoutes(t *testing.T) (Routes, *httptest.Server) {
	t.Helper()
	s := newTestSession(t, SessionOptions{})

	hc := health.NewHealthChecker()
	hc.RegisterCheck("simulation", health.SimulationCheck(s.RunState, time.Minute))
	hc.RegisterReadinessCheck("simulation", health.SimulationCheck(s.RunState, time.Minute))

	rt := Routes{Session: s, Health: hc, Metrics: metrics.NewRegistry()}
	srv := httptest.NewServer(rt.Handler())
	t.Cleanup(srv.Close)
	return rt, srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestSnapshotAndHistory(t *testing.T) {
	rt, srv := newTestRoutes(t)
	rt.Session.Step()
	rt.Session.Step()

	var snap epidemic.Snapshot
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/snapshot", &snap))
	assert.Equal(t, rt.Session.Snapshot().Tick, snap.Tick)
	assert.Equal(t, 20, snap.Counts.Total())

	var history []epidemic.Snapshot
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/history", &history))
	assert.Len(t, history, len(rt.Session.History()))

	var since []epidemic.Snapshot
	getJSON(t, srv.URL+"/history?since=1", &since)
	for _, s := range since {
		assert.GreaterOrEqual(t, s.Tick, 1)
	}

	var bad errorResponse
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/history?since=x", &bad))
	assert.Contains(t, bad.Error, "since")
}

func TestTopologyAndConfig(t *testing.T) {
	_, srv := newTestRoutes(t)

	var stats topology.Statistics
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/topology", &stats))
	assert.Equal(t, 20, stats.NodeCount)

	resp, err := http.Get(srv.URL + "/config")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

	var cfg config.Config
	require.NoError(t, yaml.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, uint64(11), cfg.Seed)
}

func TestHostRoute(t *testing.T) {
	_, srv := newTestRoutes(t)

	var view HostView
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/hosts/3", &view))
	assert.Equal(t, 3, view.ID)

	var e errorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/hosts/500", &e))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/hosts/abc", &e))
}

func TestResetRoute(t *testing.T) {
	rt, srv := newTestRoutes(t)
	before := rt.Session.Snapshot().RunID

	resp, err := http.Post(srv.URL+"/reset?seed=42", "", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var snap epidemic.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.NotEqual(t, before, snap.RunID)
	assert.Equal(t, uint64(42), rt.Session.Config().Seed)

	resp2, err := http.Post(srv.URL+"/reset?seed=-1", "", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/reset")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp3.StatusCode)
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	rt, srv := newTestRoutes(t)

	var h health.Response
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &h))
	assert.Equal(t, health.StatusHealthy, h.Status)
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health/ready", nil))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "virusnet_http_requests_total")

	c, err := rt.Metrics.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "GET /health", "200")
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	assert.Equal(t, 1.0, m.Counter.GetValue())
}

func TestStreamRoute(t *testing.T) {
	rt, srv := newTestRoutes(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() epidemic.Snapshot {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var s epidemic.Snapshot
				require.NoError(t, json.Unmarshal([]byte(data), &s))
				return s
			}
		}
	}

	first := readEvent()
	assert.Equal(t, 0, first.Tick)

	// the subscription is registered before the first event is written
	rt.Session.Step()
	next := readEvent()
	assert.Equal(t, 1, next.Tick)
}

func TestStreamRouteContinuesAcrossReset(t *testing.T) {
	rt, srv := newTestRoutes(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/stream", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readEvent := func() epidemic.Snapshot {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				var s epidemic.Snapshot
				require.NoError(t, json.Unmarshal([]byte(data), &s))
				return s
			}
		}
	}

	first := readEvent()

	reset, err := http.Post(srv.URL+"/reset?seed=99", "", nil)
	require.NoError(t, err)
	reset.Body.Close()
	require.Equal(t, http.StatusOK, reset.StatusCode)

	restarted := readEvent()
	assert.NotEqual(t, first.RunID, restarted.RunID)
	assert.Equal(t, 0, restarted.Tick)

	rt.Session.Step()
	next := readEvent()
	assert.Equal(t, restarted.RunID, next.RunID)
	assert.Equal(t, 1, next.Tick)
}
