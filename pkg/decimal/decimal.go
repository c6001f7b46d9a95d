// Package decimal provides the fixed-precision arithmetic type used
// everywhere a monetary amount crosses a package boundary. No caller may
// convert an amount to float64 and back; every operation here stays on
// shopspring/decimal's arbitrary-precision representation.
package decimal

import (
	"fmt"
	"strings"

	shopspring "github.com/shopspring/decimal"
)

// MinPrecision is the minimum number of significant digits the underlying
// representation must preserve. shopspring/decimal backs its coefficient with
// math/big.Int, which has no fixed digit ceiling, so this is a documented
// floor rather than an enforced one.
const MinPrecision = 22

// Decimal is a signed arbitrary-precision number restricted, at the call
// sites that need it, to a fixed number of fractional digits. It never holds
// a float64 internally.
type Decimal struct {
	v shopspring.Decimal
}

// Zero is the additive identity.
var Zero = Decimal{v: shopspring.Zero}

// Parse converts a canonical decimal string into a Decimal. Accepts an
// optional leading sign, digits, and an optional fractional part. Rejects
// exponents and underscore digit separators, neither of which appear in any
// wire format this system consumes.
func Parse(s string) (Decimal, error) {
	if s == "" {
		return Decimal{}, fmt.Errorf("decimal: empty string")
	}
	if strings.ContainsAny(s, "eE_") {
		return Decimal{}, fmt.Errorf("decimal: %q is not a plain decimal literal", s)
	}
	d, err := shopspring.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("decimal: %q: %w", s, err)
	}
	return Decimal{v: d}, nil
}

// MustParse is Parse without an error return, for table-driven test fixtures
// and embedded constant tables whose values are known-good at compile time.
func MustParse(s string) Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromInt builds a Decimal from an integer number of whole units.
func FromInt(i int64) Decimal {
	return Decimal{v: shopspring.NewFromInt(i)}
}

// Add returns d + other.
func (d Decimal) Add(other Decimal) Decimal {
	return Decimal{v: d.v.Add(other.v)}
}

// Sub returns d - other.
func (d Decimal) Sub(other Decimal) Decimal {
	return Decimal{v: d.v.Sub(other.v)}
}

// Neg returns -d.
func (d Decimal) Neg() Decimal {
	return Decimal{v: d.v.Neg()}
}

// Abs returns the unary absolute value of d.
func (d Decimal) Abs() Decimal {
	return Decimal{v: d.v.Abs()}
}

// MulInt multiplies d by an integer scalar. Multiplication by another
// Decimal is intentionally not exposed here: §4.1 restricts multiplication
// and division to rate formatting, which lives in the fx package and
// operates on digit strings, not on this type.
func (d Decimal) MulInt(i int64) Decimal {
	return Decimal{v: d.v.Mul(shopspring.NewFromInt(i))}
}

// Cmp returns -1, 0, or 1 as d is less than, equal to, or greater than other.
func (d Decimal) Cmp(other Decimal) int {
	return d.v.Cmp(other.v)
}

// LessThan reports whether d < other.
func (d Decimal) LessThan(other Decimal) bool {
	return d.Cmp(other) < 0
}

// LessThanOrEqual reports whether d <= other.
func (d Decimal) LessThanOrEqual(other Decimal) bool {
	return d.Cmp(other) <= 0
}

// GreaterThan reports whether d > other.
func (d Decimal) GreaterThan(other Decimal) bool {
	return d.Cmp(other) > 0
}

// Equal reports exact equality, not rounded equality.
func (d Decimal) Equal(other Decimal) bool {
	return d.Cmp(other) == 0
}

// IsZero reports whether d is exactly zero.
func (d Decimal) IsZero() bool {
	return d.v.IsZero()
}

// Sign returns -1, 0, or 1 for the sign of d.
func (d Decimal) Sign() int {
	return d.v.Sign()
}

// RoundTo rounds d to dp fractional digits using banker's rounding
// (round-half-to-even). The validator only ever uses this as an equality
// test (RoundTo(dp) == value), so the rounding mode does not affect
// acceptance — it only has to be consistent.
func (d Decimal) RoundTo(dp int32) Decimal {
	return Decimal{v: d.v.RoundBank(dp)}
}

// String renders the canonical form: a leading sign only when negative, no
// exponent, and no trailing fractional zeros, so "10.00" renders as "10".
func (d Decimal) String() string {
	return d.v.String()
}

// StringFixed renders d with exactly dp fractional digits, for output where
// a stable digit count matters more than canonical trimming, such as the
// ISO 20022 emitter's amount fields.
func (d Decimal) StringFixed(dp int32) string {
	return d.v.StringFixed(dp)
}
