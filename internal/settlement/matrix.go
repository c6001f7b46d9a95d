package settlement

import (
	"sort"

	"github.com/settlementhub/nettinghub/pkg/decimal"
)

// PaymentMatrix is the immutable payer→payee→amount result of Net. It is
// built once by matrixBuilder and never mutated afterward.
type PaymentMatrix struct {
	// rows maps payer id to payee id to amount. Every amount is strictly
	// positive; a zero-amount transfer is never recorded.
	rows map[int64]map[int64]decimal.Decimal
}

type matrixBuilder struct {
	rows map[int64]map[int64]decimal.Decimal
}

func newMatrixBuilder() *matrixBuilder {
	return &matrixBuilder{rows: make(map[int64]map[int64]decimal.Decimal)}
}

// record adds a transfer. Amounts for the same (payer, payee) pair are
// accumulated rather than overwritten, though the engine's algorithm never
// actually produces two entries for the same pair.
func (b *matrixBuilder) record(payerID, payeeID int64, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	row, ok := b.rows[payerID]
	if !ok {
		row = make(map[int64]decimal.Decimal)
		b.rows[payerID] = row
	}
	if existing, ok := row[payeeID]; ok {
		row[payeeID] = existing.Add(amount)
	} else {
		row[payeeID] = amount
	}
}

func (b *matrixBuilder) build() *PaymentMatrix {
	return &PaymentMatrix{rows: b.rows}
}

// Payers returns the payer ids present in the matrix, ascending.
func (m *PaymentMatrix) Payers() []int64 {
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Payees returns the payee ids a given payer transfers to, ascending.
func (m *PaymentMatrix) Payees(payerID int64) []int64 {
	row := m.rows[payerID]
	ids := make([]int64, 0, len(row))
	for id := range row {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// AmountAt returns the transfer amount from payer to payee, and whether one
// exists.
func (m *PaymentMatrix) AmountAt(payerID, payeeID int64) (decimal.Decimal, bool) {
	row, ok := m.rows[payerID]
	if !ok {
		return decimal.Decimal{}, false
	}
	amt, ok := row[payeeID]
	return amt, ok
}

// TransactionCount returns the total number of nonzero cells in the matrix.
func (m *PaymentMatrix) TransactionCount() int {
	n := 0
	for _, row := range m.rows {
		n += len(row)
	}
	return n
}

// ControlSum returns the sum of every transfer amount.
func (m *PaymentMatrix) ControlSum() decimal.Decimal {
	sum := decimal.Zero
	for _, row := range m.rows {
		for _, amt := range row {
			sum = sum.Add(amt)
		}
	}
	return sum
}

// Audit re-checks invariants 1-3 of the data model against the original
// validated positions: every amount strictly positive, per-payer outgoing
// total equal to the magnitude of that payer's debit, per-payee incoming
// total equal to the magnitude of that payee's credit. The matrix carries no
// currency, so the single-currency invariant is not checked here. It is
// used by the test suite; Emit does not call it.
func (m *PaymentMatrix) Audit(positions []ValidatedPosition) error {
	byID := make(map[int64]decimal.Decimal, len(positions))
	for _, p := range positions {
		byID[p.ParticipantID] = p.Amount
	}

	outgoing := make(map[int64]decimal.Decimal)
	incoming := make(map[int64]decimal.Decimal)

	for payerID, row := range m.rows {
		for payeeID, amt := range row {
			if !amt.GreaterThan(decimal.Zero) {
				return &Error{Kind: KindFailedToBalance}
			}
			outgoing[payerID] = outgoing[payerID].Add(amt)
			incoming[payeeID] = incoming[payeeID].Add(amt)
		}
	}

	for id, total := range outgoing {
		want := byID[id]
		if !total.Equal(want.Abs()) {
			return &Error{Kind: KindFailedToBalance}
		}
	}
	for id, total := range incoming {
		want := byID[id]
		if !total.Equal(want.Abs()) {
			return &Error{Kind: KindFailedToBalance}
		}
	}
	return nil
}
