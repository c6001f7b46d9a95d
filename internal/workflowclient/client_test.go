package workflowclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settlementhub/nettinghub/pkg/circuit"
)

func testBreakerConfig() circuit.Config {
	return circuit.Config{MaxFailures: 5, Timeout: time.Second, HalfOpenMax: 2}
}

func TestSettledWindowsListsOpenWindows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "state=SETTLED", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"windowId":1,"state":"SETTLED","currency":"MAD"},{"windowId":2,"state":"SETTLED","currency":"EUR"}]`))
	}))
	defer srv.Close()

	client := New(srv.URL, testBreakerConfig(), nil)
	windows, err := client.SettledWindows(context.Background())
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, int64(1), windows[0].WindowID)
	assert.Equal(t, "EUR", windows[1].Currency)
}

func TestCloseWindowPostsToCorrectPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/windows/7/close", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL, testBreakerConfig(), nil)
	err := client.CloseWindow(context.Background(), 7)
	require.NoError(t, err)
}

func TestOpenWindowReturnsNewWindowID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/windows", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"windowId":99,"state":"OPEN","currency":"MAD"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, testBreakerConfig(), nil)
	id, err := client.OpenWindow(context.Background(), "MAD")
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
}
