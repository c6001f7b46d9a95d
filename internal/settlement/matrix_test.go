package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settlementhub/nettinghub/pkg/decimal"
)

func TestMatrixAuditCatchesNonPositiveCell(t *testing.T) {
	m := &PaymentMatrix{rows: map[int64]map[int64]decimal.Decimal{
		1: {2: decimal.Zero},
	}}
	positions := []ValidatedPosition{
		{ParticipantID: 1, Amount: decimal.MustParse("5")},
		{ParticipantID: 2, Amount: decimal.MustParse("-5")},
	}
	assert.Error(t, m.Audit(positions))
}

func TestMatrixAuditCatchesImbalance(t *testing.T) {
	m := &PaymentMatrix{rows: map[int64]map[int64]decimal.Decimal{
		1: {2: decimal.MustParse("4")},
	}}
	positions := []ValidatedPosition{
		{ParticipantID: 1, Amount: decimal.MustParse("5")},
		{ParticipantID: 2, Amount: decimal.MustParse("-5")},
	}
	assert.Error(t, m.Audit(positions))
}

func TestMatrixIterationIsSortedAscending(t *testing.T) {
	m := mustNet(t, map[int64]string{1: "-3", 2: "-7", 3: "10"}, "USD")
	payers := m.Payers()
	require.Len(t, payers, 1)
	assert.Equal(t, int64(3), payers[0])

	payees := m.Payees(payers[0])
	require.Len(t, payees, 2)
	assert.Equal(t, []int64{1, 2}, payees)
}

func TestMatrixControlSumAndTransactionCount(t *testing.T) {
	m := mustNet(t, map[int64]string{1: "-4", 2: "-4", 3: "3", 4: "5"}, "USD")
	assert.True(t, m.ControlSum().Equal(decimal.MustParse("8")))
	assert.LessOrEqual(t, m.TransactionCount(), 3)
}
