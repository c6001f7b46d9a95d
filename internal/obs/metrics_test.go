package obs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// RecordSettlement needs a reachable InfluxDB instance and is skipped in
// short mode, matching the Redis/etcd-backed collaborator tests elsewhere in
// this module.

func TestRecordSettlementWritesPoint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping InfluxDB-backed test in short mode")
	}

	m := NewMetrics("http://localhost:8086", "", "settlementhub", "settlement_metrics")
	defer m.Close()

	err := m.RecordSettlement(context.Background(), 42, "MAD", 3, "10.00", 15*time.Millisecond)
	require.NoError(t, err)
}
