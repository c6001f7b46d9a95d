package settlement

import (
	"sort"

	"github.com/settlementhub/nettinghub/pkg/decimal"
)

// ValidatedPosition is a ParticipantPosition that has passed every check in
// Validate, sorted into the deterministic order the netting engine requires.
type ValidatedPosition struct {
	ParticipantID int64
	AccountID     int64
	Amount        decimal.Decimal
}

// Validate canonicalises and validates a raw SettlementWindow, returning the
// positions sorted ascending by amount (creditors first, then debtors) with
// ties broken by ascending participant id, plus the common currency. It
// performs every check in the order specified, returning the first failure —
// except precision conformance, which aggregates every offender before
// failing.
func Validate(w SettlementWindow) ([]ValidatedPosition, decimal.Currency, error) {
	if len(w.Participants) == 0 {
		return nil, decimal.Currency{}, &Error{Kind: KindEmptySettlement}
	}

	type rawPosition struct {
		participantID int64
		accountID     int64
		amountStr     string
		currencyCode  string
	}

	for _, p := range w.Participants {
		if len(p.Accounts) != 1 {
			return nil, decimal.Currency{}, &Error{Kind: KindMultipleAccounts, ParticipantID: p.ID}
		}
	}

	seen := make(map[int64]bool, len(w.Participants))
	for _, p := range w.Participants {
		if seen[p.ID] {
			return nil, decimal.Currency{}, &Error{Kind: KindDuplicateParticipant, ParticipantID: p.ID}
		}
		seen[p.ID] = true
	}

	raws := make([]rawPosition, 0, len(w.Participants))
	for _, p := range w.Participants {
		acct := p.Accounts[0]
		raws = append(raws, rawPosition{
			participantID: p.ID,
			accountID:     acct.ID,
			amountStr:     acct.NetSettlementAmount.Amount,
			currencyCode:  acct.NetSettlementAmount.Currency,
		})
	}

	firstCode := raws[0].currencyCode
	for _, r := range raws {
		if r.currencyCode != firstCode {
			return nil, decimal.Currency{}, &Error{Kind: KindMixedCurrencies}
		}
	}

	currency, err := decimal.LookupCurrency(firstCode)
	if err != nil {
		return nil, decimal.Currency{}, &Error{Kind: KindUnsupportedCurrency, Code: firstCode}
	}

	amounts := make([]decimal.Decimal, len(raws))
	var offenders []PrecisionOffender
	for i, r := range raws {
		amt, parseErr := decimal.Parse(r.amountStr)
		if parseErr != nil {
			// A string that isn't even a decimal literal can never
			// round-trip through RoundTo, so it is reported the same way
			// as an over-precise amount rather than as a distinct kind.
			offenders = append(offenders, PrecisionOffender{ParticipantID: r.participantID})
			continue
		}
		amounts[i] = amt
		if !amt.RoundTo(currency.DP).Equal(amt) {
			offenders = append(offenders, PrecisionOffender{ParticipantID: r.participantID, Amount: amt})
		}
	}
	if len(offenders) > 0 {
		return nil, decimal.Currency{}, &Error{Kind: KindInvalidPrecision, Offenders: offenders}
	}

	sum := decimal.Zero
	positions := make([]ValidatedPosition, len(raws))
	for i, r := range raws {
		sum = sum.Add(amounts[i])
		positions[i] = ValidatedPosition{
			ParticipantID: r.participantID,
			AccountID:     r.accountID,
			Amount:        amounts[i],
		}
	}
	if !sum.IsZero() {
		return nil, decimal.Currency{}, &Error{Kind: KindNonZeroSum, Sum: sum}
	}

	sort.SliceStable(positions, func(i, j int) bool {
		cmp := positions[i].Amount.Cmp(positions[j].Amount)
		if cmp != 0 {
			return cmp < 0
		}
		return positions[i].ParticipantID < positions[j].ParticipantID
	})

	return positions, currency, nil
}
