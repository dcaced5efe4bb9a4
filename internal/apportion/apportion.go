// Package apportion distributes a fixed integer total across weighted buckets
// using the largest-remainder method. Demographic shares, budget lines, party
// popularity (in hundredths) and polling all go through here so that every
// sum-to-total invariant is enforced in one place.
package apportion

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// Claim is one bucket's share request. Weight decides the proportional quota;
// Tiebreak orders buckets whose remainders and weights are equal.
type Claim struct {
	Weight   float64
	Tiebreak float64
}

// Weights wraps plain weights as claims with no tiebreak.
func Weights(ws ...float64) []Claim {
	claims := make([]Claim, len(ws))
	for i, w := range ws {
		claims[i] = Claim{Weight: w}
	}
	return claims
}

// Apportion splits total across claims so that the parts sum to exactly total.
//
// Negative weights count as zero. When no claim has positive weight the total
// is split equally and the remainder goes to the earliest buckets. Otherwise
// each bucket gets the floor of its quota and the shortfall is handed out one
// unit at a time ordered by remainder desc, weight desc, tiebreak desc, index asc.
func Apportion[T constraints.Integer](claims []Claim, total T) []T {
	out := make([]T, len(claims))
	if len(claims) == 0 || total <= 0 {
		return out
	}

	sum := 0.0
	for _, c := range claims {
		if c.Weight > 0 {
			sum += c.Weight
		}
	}

	n := T(len(claims))
	if sum <= 0 {
		base := total / n
		extra := total % n
		for i := range out {
			out[i] = base
			if T(i) < extra {
				out[i]++
			}
		}
		return out
	}

	type rem struct {
		idx      int
		frac     float64
		weight   float64
		tiebreak float64
	}
	rems := make([]rem, len(claims))
	var assigned T
	for i, c := range claims {
		w := math.Max(c.Weight, 0)
		quota := w / sum * float64(total)
		whole := math.Floor(quota)
		out[i] = T(whole)
		assigned += out[i]
		rems[i] = rem{idx: i, frac: quota - whole, weight: w, tiebreak: c.Tiebreak}
	}

	sort.SliceStable(rems, func(a, b int) bool {
		ra, rb := rems[a], rems[b]
		if ra.frac != rb.frac {
			return ra.frac > rb.frac
		}
		if ra.weight != rb.weight {
			return ra.weight > rb.weight
		}
		if ra.tiebreak != rb.tiebreak {
			return ra.tiebreak > rb.tiebreak
		}
		return ra.idx < rb.idx
	})

	// Float error can leave the shortfall larger than the bucket count only in
	// pathological inputs; cycling keeps the invariant regardless.
	for k := 0; assigned < total; k++ {
		out[rems[k%len(rems)].idx]++
		assigned++
	}
	return out
}

// WithFloors apportions total and then raises every bucket below its floor,
// taking the deficit one unit at a time from whichever bucket is currently
// largest above its own floor. floors may be shorter than claims; missing
// entries mean no floor.
func WithFloors[T constraints.Integer](claims []Claim, total T, floors []T) ([]T, error) {
	if need := Sum(floors); need > total {
		return nil, fmt.Errorf("floors sum %v exceeds total %v", need, total)
	}

	out := Apportion(claims, total)
	floorAt := func(i int) T {
		if i < len(floors) {
			return floors[i]
		}
		return 0
	}

	for i := range out {
		for out[i] < floorAt(i) {
			donor := -1
			for j := range out {
				if j == i || out[j] <= floorAt(j) {
					continue
				}
				if donor == -1 || out[j] > out[donor] {
					donor = j
				}
			}
			if donor == -1 {
				return nil, fmt.Errorf("no bucket can donate to bucket %d", i)
			}
			// Move as much as possible in one step.
			move := floorAt(i) - out[i]
			if spare := out[donor] - floorAt(donor); spare < move {
				move = spare
			}
			out[donor] -= move
			out[i] += move
		}
	}
	return out, nil
}

// Sum adds up an apportioned slice.
func Sum[T constraints.Integer](parts []T) T {
	var s T
	for _, p := range parts {
		s += p
	}
	return s
}
