package obs

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// Metrics writes settlement-run timeseries points to InfluxDB: one point per
// completed window-settle, carrying transaction count and control sum so
// operators can watch throughput without scraping logs.
type Metrics struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewMetrics opens an InfluxDB client against url, authenticated with token,
// writing into the given org/bucket.
func NewMetrics(url, token, org, bucket string) *Metrics {
	client := influxdb2.NewClient(url, token)
	return &Metrics{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
	}
}

// RecordSettlement writes a point for one completed window-settle request.
func (m *Metrics) RecordSettlement(ctx context.Context, windowID int64, currency string, transactionCount int, controlSum string, elapsed time.Duration) error {
	point := influxdb2.NewPoint(
		"settlement_run",
		map[string]string{"currency": currency},
		map[string]interface{}{
			"window_id":         windowID,
			"transaction_count": transactionCount,
			"control_sum":       controlSum,
			"elapsed_ms":        elapsed.Milliseconds(),
		},
		time.Now(),
	)
	return m.writeAPI.WritePoint(ctx, point)
}

// Close releases the underlying HTTP client.
func (m *Metrics) Close() {
	m.client.Close()
}
