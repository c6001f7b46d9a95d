package fxclient

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

func TestRateDecodesResponseIntoRateRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rates/EURUSD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rateSetId":"RS-EURUSD-01","currencyPair":"EURUSD","rate":"123456","decimalPlaces":4,"endTime":"2026-08-06T23:59:59Z"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, testBreakerConfig(), nil)
	record, err := client.Rate(context.Background(), "EURUSD")
	require.NoError(t, err)
	assert.Equal(t, "RS-EURUSD-01", record.RateSetID)
	assert.Equal(t, "EURUSD", record.CurrencyPair)
	assert.Equal(t, "123456", record.Rate)
	assert.Equal(t, 4, record.DecimalPlaces)
}

func TestRatePropagatesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, testBreakerConfig(), nil)
	_, err := client.Rate(context.Background(), "XXXYYY")
	require.Error(t, err)
}
