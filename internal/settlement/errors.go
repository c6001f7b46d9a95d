package settlement

import (
	"fmt"

	"github.com/settlementhub/nettinghub/pkg/decimal"
)

// Kind identifies one of the tagged error kinds §7 of the specification
// requires — callers that need to branch on failure reason switch on Kind
// rather than parsing Error().
type Kind string

const (
	KindEmptySettlement     Kind = "EmptySettlement"
	KindMultipleAccounts    Kind = "MultipleAccounts"
	KindDuplicateParticipant Kind = "DuplicateParticipant"
	KindMixedCurrencies     Kind = "MixedCurrencies"
	KindUnsupportedCurrency Kind = "UnsupportedCurrency"
	KindInvalidPrecision    Kind = "InvalidPrecision"
	KindNonZeroSum          Kind = "NonZeroSum"
	KindFailedToBalance     Kind = "FailedToBalance"
)

// PrecisionOffender is one (participant, amount) pair that failed the
// precision-conformance check, carried inside a KindInvalidPrecision error.
type PrecisionOffender struct {
	ParticipantID int64
	Amount        decimal.Decimal
}

// Error is the single error type every validator and engine failure in this
// package surfaces. It carries exactly the evidence §7 lists for its Kind.
type Error struct {
	Kind Kind

	ParticipantID int64                // MultipleAccounts, DuplicateParticipant
	Code          string               // UnsupportedCurrency
	Offenders     []PrecisionOffender  // InvalidPrecision
	Sum           decimal.Decimal      // NonZeroSum
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptySettlement:
		return "settlement: window has no positions"
	case KindMultipleAccounts:
		return fmt.Sprintf("settlement: participant %d holds more than one account", e.ParticipantID)
	case KindDuplicateParticipant:
		return fmt.Sprintf("settlement: participant %d appears more than once", e.ParticipantID)
	case KindMixedCurrencies:
		return "settlement: positions do not share a single currency"
	case KindUnsupportedCurrency:
		return fmt.Sprintf("settlement: unsupported currency %q", e.Code)
	case KindInvalidPrecision:
		return fmt.Sprintf("settlement: %d position(s) exceed their currency's decimal precision", len(e.Offenders))
	case KindNonZeroSum:
		return fmt.Sprintf("settlement: positions sum to %s, not zero", e.Sum.String())
	case KindFailedToBalance:
		return "settlement: netting engine failed to fully discharge the debtor stack (defect)"
	default:
		return fmt.Sprintf("settlement: %s", string(e.Kind))
	}
}

// Is lets errors.Is(err, &Error{Kind: KindX}) match on kind alone, which is
// how callers are expected to branch.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}
