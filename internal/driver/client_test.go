package driver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jpalmerr/queueboard/internal/engine"
	"github.com/jpalmerr/queueboard/internal/server"
	"github.com/jpalmerr/queueboard/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newQueueServer runs the real HTTP adapter over a store driven by a fake clock.
func newQueueServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	clk := clocktesting.NewFakeClock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	st := store.NewMemoryStore(func() *engine.Engine { return engine.New(clk) })
	ts := httptest.NewServer(server.NewServer(st, 0, nil, "", testLogger()).Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func TestClient_RoundTrip(t *testing.T) {
	ts, st := newQueueServer(t)
	c := NewClient(ts.URL+"/", time.Second)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Initialize(ctx, 1))
	require.NoError(t, c.Enter(ctx))
	require.NoError(t, c.Enter(ctx))

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsRunning)
	require.Len(t, status.Servers, 1)
	require.NotNil(t, status.Servers[0].ID)
	assert.Equal(t, "C1", *status.Servers[0].ID)
	assert.Equal(t, []string{"C2"}, status.Queue)

	require.NoError(t, c.Leave(ctx, 0))
	require.NoError(t, c.Stop(ctx))

	assert.False(t, st.Status().IsRunning)
	assert.Equal(t, 1, st.Status().Completed)
}

func TestClient_APIErrors(t *testing.T) {
	ts, _ := newQueueServer(t)
	c := NewClient(ts.URL, time.Second)
	ctx := context.Background()

	err := c.Initialize(ctx, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "invalid configuration")

	require.NoError(t, c.Initialize(ctx, 2))
	err = c.Leave(ctx, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestClient_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer ts.Close()

	err := NewClient(ts.URL, time.Second).Enter(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

func TestClient_BadStatusBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL, time.Second).Status(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode status")
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	start := time.Now()
	err := NewClient(ts.URL, 50*time.Millisecond).Stop(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_SendsJSON(t *testing.T) {
	var got map[string]int
	var contentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer ts.Close()

	require.NoError(t, NewClient(ts.URL, time.Second).Leave(context.Background(), 3))
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, map[string]int{"serverIndex": 3}, got)
}

func TestClient_CloseNil(t *testing.T) {
	var c *Client
	c.Close()
}
