package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/settlementhub/nettinghub/internal/workflowclient"
	"github.com/settlementhub/nettinghub/pkg/circuit"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    2,
		window:   time.Minute,
	}

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterTracksKeysIndependently(t *testing.T) {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    1,
		window:   time.Minute,
	}

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestParseWindowID(t *testing.T) {
	id, err := parseWindowID("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseWindowID("not-a-number")
	assert.Error(t, err)
}

func TestPollSettledWindowsReturnsImmediatelyWithoutWorkflowClient(t *testing.T) {
	g := &Gateway{logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		g.PollSettledWindows(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PollSettledWindows did not return with a nil workflow client")
	}
}

func TestPollOnceLogsAndSkipsWhenListingFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := &Gateway{
		logger:   zap.NewNop(),
		workflow: workflowclient.New(srv.URL, circuit.Config{MaxFailures: 5, Timeout: time.Second, HalfOpenMax: 2}, nil),
	}

	require.NotPanics(t, func() { g.pollOnce(context.Background()) })
}
