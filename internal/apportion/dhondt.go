package apportion

// DHondt allocates seats by the highest-averages method with divisors 1, 2, 3…
// Ties on the quotient go to the bucket with more votes, then the earlier one.
func DHondt(votes []int, seats int) []int {
	return DHondtCapped(votes, seats, nil)
}

// DHondtCapped is DHondt where bucket i stops winning seats once it holds
// caps[i]; its further seats go to the next highest quotient. Missing caps
// mean no limit. Seats no bucket can take are left unallocated.
func DHondtCapped(votes []int, seats int, caps []int) []int {
	out := make([]int, len(votes))
	if seats <= 0 || len(votes) == 0 {
		return out
	}
	total := 0
	for _, v := range votes {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return out
	}
	full := func(i int) bool { return i < len(caps) && out[i] >= caps[i] }

	for s := 0; s < seats; s++ {
		best := -1
		bestQ := -1.0
		for i, v := range votes {
			if v <= 0 || full(i) {
				continue
			}
			q := float64(v) / float64(out[i]+1)
			if q > bestQ || (q == bestQ && v > votes[best]) {
				best, bestQ = i, q
			}
		}
		if best < 0 {
			break
		}
		out[best]++
	}
	return out
}
