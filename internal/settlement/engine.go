package settlement

import (
	"github.com/settlementhub/nettinghub/pkg/decimal"
)

// Net runs the greedy two-pointer minimum-payments algorithm over positions
// already returned by Validate (ascending by amount, creditors first, ties
// broken by ascending participant id). It returns the payment matrix that
// discharges every position in at most len(positions)-1 transfers; being
// greedy, it does not always find the smallest possible transfer set.
//
// positions must sum to exactly zero; Validate guarantees this, so reaching
// the end of the debtor stack with creditors still unsettled — or the
// reverse — can only happen on a defect, and is reported as such rather than
// silently producing a partial result.
func Net(positions []ValidatedPosition) (*PaymentMatrix, error) {
	split := len(positions)
	for i, p := range positions {
		if p.Amount.Sign() > 0 {
			split = i
			break
		}
	}

	// Creditors hold negative amounts, ordered most-negative first (the
	// position sort already gives us this). Debtors hold positive amounts,
	// ordered smallest first; we consume from the tail, so the tail holds
	// the largest debtor.
	creditors := make([]ValidatedPosition, len(positions[:split]))
	copy(creditors, positions[:split])
	debtors := make([]ValidatedPosition, len(positions[split:]))
	copy(debtors, positions[split:])

	matrix := newMatrixBuilder()

	ci := 0
	for ci < len(creditors) {
		creditor := &creditors[ci]

		for len(debtors) > 0 {
			tail := &debtors[len(debtors)-1]
			// creditor.Amount is <= 0; tail.Amount is > 0. If adding the
			// largest remaining debtor's amount does not push the
			// creditor's balance above zero, that debtor alone cannot
			// cover this creditor (or exactly covers it) — transfer the
			// debtor's whole amount to the creditor and pop it.
			if creditor.Amount.Add(tail.Amount).GreaterThan(decimal.Zero) {
				break
			}
			matrix.record(tail.ParticipantID, creditor.ParticipantID, tail.Amount)
			creditor.Amount = creditor.Amount.Add(tail.Amount)
			debtors = debtors[:len(debtors)-1]
		}

		if creditor.Amount.LessThan(decimal.Zero) {
			if len(debtors) == 0 {
				return nil, &Error{Kind: KindFailedToBalance}
			}
			tail := &debtors[len(debtors)-1]
			remainder := creditor.Amount.Neg()
			matrix.record(tail.ParticipantID, creditor.ParticipantID, remainder)
			tail.Amount = tail.Amount.Add(creditor.Amount)
			creditor.Amount = decimal.Zero
		}

		ci++
	}

	if len(debtors) != 0 {
		return nil, &Error{Kind: KindFailedToBalance}
	}

	return matrix.build(), nil
}
