package decimal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("parses a plain decimal", func(t *testing.T) {
		d, err := Parse("10.00")
		require.NoError(t, err)
		assert.Equal(t, "10", d.String())
	})

	t.Run("parses a negative decimal", func(t *testing.T) {
		d, err := Parse("-0.3")
		require.NoError(t, err)
		assert.Equal(t, "-0.3", d.String())
	})

	t.Run("rejects an empty string", func(t *testing.T) {
		_, err := Parse("")
		assert.Error(t, err)
	})

	t.Run("rejects exponent notation", func(t *testing.T) {
		_, err := Parse("1e10")
		assert.Error(t, err)
	})

	t.Run("rejects underscore separators", func(t *testing.T) {
		_, err := Parse("1_000")
		assert.Error(t, err)
	})
}

func TestArithmeticAvoidsFloatDrift(t *testing.T) {
	// The classic 0.1 + 0.2 float trap: binary floating point would give
	// 0.30000000000000004. Decimal must give exactly "0.3".
	a := MustParse("0.1")
	b := MustParse("0.2")
	assert.True(t, a.Add(b).Equal(MustParse("0.3")))
	assert.Equal(t, "0.3", a.Add(b).String())
}

func TestSubNegAbs(t *testing.T) {
	a := MustParse("5.00")
	b := MustParse("7.50")

	assert.True(t, a.Sub(b).Equal(MustParse("-2.5")))
	assert.True(t, a.Sub(b).Neg().Equal(MustParse("2.5")))
	assert.True(t, a.Sub(b).Abs().Equal(MustParse("2.5")))
}

func TestCmpAndSign(t *testing.T) {
	assert.Equal(t, -1, MustParse("1").Cmp(MustParse("2")))
	assert.Equal(t, 0, MustParse("2").Cmp(MustParse("2")))
	assert.Equal(t, 1, MustParse("3").Cmp(MustParse("2")))

	assert.Equal(t, -1, MustParse("-5").Sign())
	assert.Equal(t, 0, Zero.Sign())
	assert.Equal(t, 1, MustParse("5").Sign())
}

func TestRoundToIsOnlyUsedAsEqualityTest(t *testing.T) {
	// §4.1: rounding mode does not affect acceptance because the validator
	// only ever compares RoundTo(dp) against the original value.
	exact := MustParse("12.34")
	assert.True(t, exact.RoundTo(2).Equal(exact))

	tooFine := MustParse("12.345")
	assert.False(t, tooFine.RoundTo(2).Equal(tooFine))
}

func TestMulInt(t *testing.T) {
	d := MustParse("3.5")
	assert.True(t, d.MulInt(4).Equal(MustParse("14")))
}

func TestStringRoundTripsCanonicalForm(t *testing.T) {
	cases := []string{"0", "0.00", "10", "-10.5", "100.25", "0.1"}
	for _, s := range cases {
		d, err := Parse(s)
		require.NoError(t, err)
		reparsed, err := Parse(d.String())
		require.NoError(t, err)
		assert.True(t, d.Equal(reparsed), "round trip of %q changed value", s)
	}
}

func TestLookupCurrency(t *testing.T) {
	t.Run("known currency", func(t *testing.T) {
		c, err := LookupCurrency("USD")
		require.NoError(t, err)
		assert.Equal(t, int32(2), c.DP)
	})

	t.Run("zero-decimal currency", func(t *testing.T) {
		c, err := LookupCurrency("JPY")
		require.NoError(t, err)
		assert.Equal(t, int32(0), c.DP)
	})

	t.Run("three-decimal currency", func(t *testing.T) {
		c, err := LookupCurrency("KWD")
		require.NoError(t, err)
		assert.Equal(t, int32(3), c.DP)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := LookupCurrency("ZZZ")
		var unsupported *UnsupportedCurrencyError
		assert.ErrorAs(t, err, &unsupported)
	})

	t.Run("malformed code", func(t *testing.T) {
		_, err := LookupCurrency("usd")
		assert.Error(t, err)
		_, err = LookupCurrency("US")
		assert.Error(t, err)
	})
}
