package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer() *Server {
	return NewServer(NewStatusTracker(), zap.NewNop())
}

func TestServerHealthEndpoints(t *testing.T) {
	t.Parallel()

	server := newTestServer()

	for _, tc := range []struct {
		path string
		want string
	}{
		{path: "/healthz", want: "ok"},
		{path: "/readyz", want: "ready"},
	} {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()

			server.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.want, body["status"])
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestServerMetricsEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "devicefeed_records_processed_total")
}

func TestServerStatusBeforeAnyRun(t *testing.T) {
	t.Parallel()

	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no run recorded")
}

func TestServerStatusReturnsSnapshot(t *testing.T) {
	t.Parallel()

	tracker := NewStatusTracker()
	server := NewServer(tracker, zap.NewNop())

	started := time.Unix(1700000000, 0).UTC()
	tracker.Begin("run-42", "summaries", started)
	tracker.SetCount("processed", 12)
	tracker.SetCount("extracted", 9)

	req := httptest.NewRequest(http.MethodGet, "/v1/status", nil)
	rec := httptest.NewRecorder()

	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap RunSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "run-42", snap.RunID)
	assert.Equal(t, "summaries", snap.Command)
	assert.True(t, snap.StartedAt.Equal(started))
	assert.Equal(t, int64(12), snap.Counts["processed"])
	assert.Equal(t, int64(9), snap.Counts["extracted"])
}

func TestStatusTrackerSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	tracker := NewStatusTracker()
	tracker.Begin("run-1", "update", time.Now())
	tracker.SetCount("records", 5)

	snap := tracker.Snapshot()
	snap.Counts["records"] = 99

	assert.Equal(t, int64(5), tracker.Snapshot().Counts["records"])
}

func TestStatusTrackerBeginResetsCounts(t *testing.T) {
	t.Parallel()

	tracker := NewStatusTracker()
	tracker.Begin("run-1", "update", time.Now())
	tracker.SetCount("records", 5)

	tracker.Begin("run-2", "summaries", time.Now())

	snap := tracker.Snapshot()
	assert.Equal(t, "run-2", snap.RunID)
	assert.Empty(t, snap.Counts)
}
