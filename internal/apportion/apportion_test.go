package apportion

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApportionEqualSplitWhenNoWeight(t *testing.T) {
	got := Apportion(Weights(0, 0, 0), 100)
	assert.Equal(t, []int{34, 33, 33}, got)
}

func TestApportionLargestRemainder(t *testing.T) {
	// Quotas 33.33 / 33.33 / 33.33: all remainders tie, weight ties, index wins.
	got := Apportion(Weights(1, 1, 1), 100)
	assert.Equal(t, []int{34, 33, 33}, got)

	// Quotas 16.67 / 33.33 / 50: the 0.67 remainder takes the spare unit.
	got = Apportion(Weights(1, 2, 3), 100)
	assert.Equal(t, []int{17, 33, 50}, got)
}

func TestApportionTiebreak(t *testing.T) {
	claims := []Claim{{Weight: 1, Tiebreak: 5}, {Weight: 1, Tiebreak: 9}, {Weight: 1, Tiebreak: 1}}
	got := Apportion(claims, 100)
	assert.Equal(t, []int{33, 34, 33}, got)
}

func TestApportionNegativeWeightsIgnored(t *testing.T) {
	got := Apportion(Weights(-5, 10), 10)
	assert.Equal(t, []int{0, 10}, got)
}

func TestApportionSumsToTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(12)
		ws := make([]float64, n)
		for j := range ws {
			ws[j] = rng.Float64() * 1000
		}
		total := int64(rng.Intn(5_000_000))
		got := Apportion(Weights(ws...), total)
		require.Equal(t, total, Sum(got))
		for _, v := range got {
			require.GreaterOrEqual(t, v, int64(0))
		}
	}
}

func TestWithFloorsTakesFromLargest(t *testing.T) {
	got, err := WithFloors(Weights(60, 35, 5), 100, []int{0, 0, 10})
	require.NoError(t, err)
	assert.Equal(t, []int{55, 35, 10}, got)
	assert.Equal(t, 100, Sum(got))
}

func TestWithFloorsRejectsImpossibleFloors(t *testing.T) {
	_, err := WithFloors(Weights(1, 1), 10, []int{6, 6})
	assert.Error(t, err)
}

func TestDHondt(t *testing.T) {
	// Classic textbook example: 100k/80k/30k/20k for 8 seats → 4/3/1/0.
	got := DHondt([]int{100000, 80000, 30000, 20000}, 8)
	assert.Equal(t, []int{4, 3, 1, 0}, got)
	assert.Equal(t, []int{0, 0}, DHondt([]int{0, 0}, 3))
}

func TestDHondtCappedPassesSeatsOn(t *testing.T) {
	// The leader runs a one-person list, so its other three seats move on.
	got := DHondtCapped([]int{100000, 80000, 30000, 20000}, 8, []int{1})
	assert.Equal(t, 8, Sum(got))
	assert.Equal(t, 1, got[0])
	assert.Greater(t, got[1], 3)

	got = DHondtCapped([]int{10, 10}, 5, []int{1, 2})
	assert.Equal(t, []int{1, 2}, got, "seats nobody can take stay empty")
}
