package settlement

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// genBalancedWindow builds a window of n participants with random cent
// amounts that sum to exactly zero: n-1 participants get a random signed
// amount, and the last absorbs whatever remainder is needed to zero the sum.
func genBalancedWindow(rng *rand.Rand, n int) map[int64]string {
	amounts := make(map[int64]string, n)
	totalCents := int64(0)
	for i := 1; i < n; i++ {
		cents := int64(rng.Intn(200001) - 100000) // [-100000, 100000] cents
		totalCents += cents
		amounts[int64(i)] = centsString(cents)
	}
	amounts[int64(n)] = centsString(-totalCents)
	return amounts
}

// centsString renders a signed cent count as a two-decimal string, keeping
// the sign for amounts between -0.99 and -0.01.
func centsString(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%02d", sign, abs64(cents)/100, abs64(cents)%100)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// TestNetPropertiesAcrossRandomWindows is the property-based fuzz test §8
// requires: for every admissible input between 2 and 1000 participants,
// conservation, the minimality upper bound, and determinism must hold.
func TestNetPropertiesAcrossRandomWindows(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	sizes := []int{2, 3, 5, 10, 37, 100, 250, 1000}
	for _, n := range sizes {
		n := n
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			amounts := genBalancedWindow(rng, n)
			w := window(amounts, "USD")

			positions, _, err := Validate(w)
			require.NoError(t, err)

			m1, err := Net(positions)
			require.NoError(t, err)
			require.NoError(t, m1.Audit(positions)) // invariant 1: conservation

			require.LessOrEqual(t, m1.TransactionCount(), n-1) // invariant 2: minimality bound

			positions2, _, err := Validate(w)
			require.NoError(t, err)
			m2, err := Net(positions2)
			require.NoError(t, err)

			// invariant 3: determinism
			for _, payer := range m1.Payers() {
				for _, payee := range m1.Payees(payer) {
					a1, _ := m1.AmountAt(payer, payee)
					a2, ok := m2.AmountAt(payer, payee)
					require.True(t, ok)
					require.True(t, a1.Equal(a2))
				}
			}
			require.Equal(t, m1.TransactionCount(), m2.TransactionCount())
		})
	}
}
