package election

import (
	"errors"
	"sort"

	"github.com/talgya/civic-sim/internal/apportion"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
)

var ErrAlreadyConcluded = errors.New("election already concluded")

// Resolve holds the vote and fills the election's outcome. Votes follow
// polling with per-candidate noise; turnout is between 45% and 70% of adults.
func Resolve(src *entropy.Source, e *Election, adultPopulation int) (Outcome, error) {
	if e.Concluded() {
		return e.Outcome, ErrAlreadyConcluded
	}
	if err := e.Validate(); err != nil {
		return Outcome{}, err
	}

	turnout := max(int(float64(max(adultPopulation, 1))*src.FloatRange(0.45, 0.70)), 1)
	out := Outcome{
		Status:             StatusConcluded,
		Turnout:            turnout,
		ResultsByCandidate: make(map[string]int),
		ResultsByParty:     make(map[string]int),
		SeatsByParty:       make(map[string]int),
	}
	seats := max(e.NumberOfSeatsToFill, 1)

	switch {
	case e.MMPData != nil:
		resolveMMP(src, e, seats, turnout, &out)
	case len(e.PartyLists) > 0:
		resolvePR(src, e, seats, turnout, &out)
	default:
		resolveCandidates(src, e, seats, turnout, &out)
	}

	for _, w := range out.Winners {
		if w.PartyID != "" {
			out.SeatsByParty[w.PartyID]++
		}
	}
	e.Outcome = out
	return out, nil
}

// castVotes splits votes across candidates by polling with ±15% noise.
func castVotes(src *entropy.Source, cands []*politics.Politician, votes int) []int {
	claims := make([]apportion.Claim, len(cands))
	for i, c := range cands {
		claims[i] = apportion.Claim{
			Weight:   float64(max(c.Polling, 1)) * src.FloatRange(0.85, 1.15),
			Tiebreak: float64(c.BaseScore),
		}
	}
	return apportion.Apportion(claims, votes)
}

// rankByVotes returns candidate indexes ordered by votes desc, then base score.
func rankByVotes(cands []*politics.Politician, votes []int) []int {
	idx := make([]int, len(cands))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if votes[ia] != votes[ib] {
			return votes[ia] > votes[ib]
		}
		return cands[ia].BaseScore > cands[ib].BaseScore
	})
	return idx
}

func resolveCandidates(src *entropy.Source, e *Election, seats, turnout int, out *Outcome) {
	cands := e.Candidates
	votes := castVotes(src, cands, turnout)
	for i, c := range cands {
		out.ResultsByCandidate[c.ID] = votes[i]
		if c.PartyID != "" {
			out.ResultsByParty[c.PartyID] += votes[i]
		}
	}
	order := rankByVotes(cands, votes)

	if IsMultiMember(e.ElectoralSystem) {
		for _, i := range order[:min(seats, len(order))] {
			out.Winners = append(out.Winners, cands[i])
		}
		return
	}

	winner := cands[order[0]]
	if e.ElectoralSystem == SystemTwoRound && len(order) > 1 && votes[order[0]]*2 <= turnout {
		// Runoff between the top two.
		out.RunoffHeld = true
		pair := []*politics.Politician{cands[order[0]], cands[order[1]]}
		runoff := castVotes(src, pair, turnout)
		if runoff[1] > runoff[0] {
			winner = pair[1]
		}
	}
	out.Winners = []*politics.Politician{winner}
}

func partyVotes(src *entropy.Source, e *Election, turnout int) ([]string, []int) {
	ids := sortedKeys(e.PartyPolling)
	claims := make([]apportion.Claim, len(ids))
	for i, id := range ids {
		claims[i] = apportion.Claim{Weight: float64(max(e.PartyPolling[id], 1)) * src.FloatRange(0.85, 1.15)}
	}
	return ids, apportion.Apportion(claims, turnout)
}

func resolvePR(src *entropy.Source, e *Election, seats, turnout int, out *Outcome) {
	ids, votes := partyVotes(src, e, turnout)
	caps := make([]int, len(ids))
	for i, id := range ids {
		caps[i] = len(e.PartyLists[id])
	}
	alloc := apportion.DHondtCapped(votes, seats, caps)
	for i, id := range ids {
		out.ResultsByParty[id] = votes[i]
		list := e.PartyLists[id]
		for _, c := range list[:min(alloc[i], len(list))] {
			out.Winners = append(out.Winners, c)
		}
	}
}

// resolveMMP awards constituency seats by plurality, then tops each party
// up to its proportional entitlement from its list. Overhang seats stand.
func resolveMMP(src *entropy.Source, e *Election, seats, turnout int, out *Outcome) {
	d := e.MMPData

	var constituency []*politics.Politician
	for _, id := range sortedKeys(d.ConstituencyCandidates) {
		constituency = append(constituency, d.ConstituencyCandidates[id]...)
	}
	constituency = append(constituency, d.IndependentCandidates...)

	won := make(map[string]int)
	elected := make(map[string]bool)
	if len(constituency) > 0 {
		votes := castVotes(src, constituency, turnout)
		for i, c := range constituency {
			out.ResultsByCandidate[c.ID] = votes[i]
		}
		order := rankByVotes(constituency, votes)
		for _, i := range order[:min(d.ConstituencySeats, len(order))] {
			c := constituency[i]
			out.Winners = append(out.Winners, c)
			elected[c.Name] = true
			if c.PartyID != "" {
				won[c.PartyID]++
			}
		}
	}

	ids, votes := partyVotes(src, e, turnout)
	caps := make([]int, len(ids))
	for i, id := range ids {
		caps[i] = len(e.PartyLists[id])
	}
	alloc := apportion.DHondtCapped(votes, seats, caps)
	for i, id := range ids {
		out.ResultsByParty[id] = votes[i]
		topUp := alloc[i] - won[id]
		for _, c := range d.PartyLists[id] {
			if topUp <= 0 {
				break
			}
			if elected[c.Name] {
				continue
			}
			out.Winners = append(out.Winners, c)
			elected[c.Name] = true
			topUp--
		}
	}
}
