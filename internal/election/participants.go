package election

import (
	"log/slog"
	"math"

	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
)

// IndependentListPrefix keys the one-person list an independent incumbent
// stands on in a party-list election.
const IndependentListPrefix = "independent:"

// IndependentListID is the PartyLists key for an independent's own list.
func IndependentListID(c *politics.Politician) string { return IndependentListPrefix + c.ID }

// maxDuplicateRetries bounds the attempts to draw an MMP constituency
// candidate who is not already on the party list.
const maxDuplicateRetries = 10

// ParticipantParams are the inputs to GenerateParticipants.
type ParticipantParams struct {
	Election        *Election
	Type            ElectionType
	Landscape       []*politics.Party
	Incumbents      []*politics.Politician // only those with IsActuallyRunning are seeded
	AdultPopulation int
	Campaign        CampaignData
}

// Participants is the roster produced for one election. Exactly one field
// set is populated.
type Participants struct {
	Candidates   []*politics.Politician
	PartyLists   map[string][]*politics.Politician
	MMPData      *MMPData
	PartyPolling map[string]int
}

// GenerateParticipants builds the roster for the election's electoral
// system, scores every participant and normalizes polling. Unknown systems
// are logged and handled as first-past-the-post.
func GenerateParticipants(src *entropy.Source, p ParticipantParams) Participants {
	system := p.Election.ElectoralSystem
	switch system {
	case SystemFPTP, SystemTwoRound, SystemElectoralCollege:
		return handleFPTP(src, p)
	case SystemPartyListPR:
		return handlePartyListPR(src, p)
	case SystemMMP:
		return handleMMP(src, p)
	case SystemSNTV, SystemBlockVote, SystemPluralityMMD:
		return handleMMD(src, p)
	default:
		slog.Warn("unknown electoral system, using FPTP", "system", system, "election", p.Election.ID)
		return handleFPTP(src, p)
	}
}

// runningIncumbents returns the incumbents who stand again, marked as running.
func runningIncumbents(incumbents []*politics.Politician, limit int) []*politics.Politician {
	var out []*politics.Politician
	for _, inc := range incumbents {
		if inc == nil || !inc.IsActuallyRunning {
			continue
		}
		if len(out) >= limit {
			break
		}
		inc.IsIncumbent = true
		out = append(out, inc)
	}
	return out
}

// unaffiliated returns the incumbents whose party is not on the landscape,
// independents included. No party list would carry them.
func unaffiliated(incumbents []*politics.Politician, landscape []*politics.Party) []*politics.Politician {
	var out []*politics.Politician
	for _, inc := range incumbents {
		if politics.FindParty(landscape, inc.PartyID) == nil {
			out = append(out, inc)
		}
	}
	return out
}

func newCandidate(src *entropy.Source, party *politics.Party, adults int) *politics.Politician {
	c := politics.GenerateFullAIPolitician(src, politics.PoliticianOptions{Party: party, AdultPopulation: adults})
	c.IsActuallyRunning = true
	return c
}

// drawParty picks a party weighted by popularity from those allowed, or nil.
func drawParty(src *entropy.Source, landscape []*politics.Party, allowed func(*politics.Party) bool) *politics.Party {
	var pool []*politics.Party
	var weights []float64
	for _, party := range landscape {
		if allowed(party) {
			pool = append(pool, party)
			weights = append(weights, math.Max(party.Popularity, 0.1))
		}
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[src.WeightedIndex(weights)]
}

// FPTPBounds returns the roster size range for single-seat races.
func FPTPBounds(parties int) (lo, hi int) {
	lo = 2
	hi = max(lo, min(parties+2, 6))
	return lo, hi
}

// MMDBounds returns the roster size range for multi-member races.
func MMDBounds(seats, parties int) (lo, hi int) {
	lo = seats + 1
	hi = max(lo, min(seats+parties+2, seats*3+2))
	return lo, hi
}

func handleFPTP(src *entropy.Source, p ParticipantParams) Participants {
	roster := runningIncumbents(p.Incumbents, 1)

	lo, hi := FPTPBounds(len(p.Landscape))
	target := src.IntRange(lo, hi)

	used := make(map[string]bool)
	for _, inc := range roster {
		if inc.PartyID != "" {
			used[inc.PartyID] = true
		}
	}

	for len(roster) < target {
		party := drawParty(src, p.Landscape, func(pt *politics.Party) bool { return !used[pt.ID] })
		if party != nil {
			used[party.ID] = true
		}
		roster = append(roster, newCandidate(src, party, p.AdultPopulation))
	}

	ScoreCandidates(src, roster, p.Election, p.Campaign)
	NormalizePolling(roster, p.AdultPopulation)
	return Participants{Candidates: roster}
}

func handleMMD(src *entropy.Source, p ParticipantParams) Participants {
	seats := max(p.Type.Seats, p.Election.NumberOfSeatsToFill, 1)
	roster := runningIncumbents(p.Incumbents, seats)

	lo, hi := MMDBounds(seats, len(p.Landscape))
	target := src.IntRange(lo, hi)

	perParty := make(map[string]int)
	for _, inc := range roster {
		if inc.PartyID != "" {
			perParty[inc.PartyID]++
		}
	}

	for len(roster) < target {
		var party *politics.Party
		if !src.Chance(0.15) {
			party = drawParty(src, p.Landscape, func(pt *politics.Party) bool { return perParty[pt.ID] < seats })
		}
		if party != nil {
			perParty[party.ID]++
		}
		roster = append(roster, newCandidate(src, party, p.AdultPopulation))
	}

	ScoreCandidates(src, roster, p.Election, p.Campaign)
	NormalizePolling(roster, p.AdultPopulation)
	return Participants{Candidates: roster}
}

// PRListSize is how many candidates a party lists for the given seats.
func PRListSize(src *entropy.Source, seats int) int {
	floor := int(math.Ceil(float64(seats)*0.5)) + 1
	return max(floor, src.IntRange(seats, seats+10))
}

// buildList fills a party list, placing the party's running incumbents first.
func buildList(src *entropy.Source, party *politics.Party, size int, incumbents []*politics.Politician, adults int) []*politics.Politician {
	var list []*politics.Politician
	for _, inc := range incumbents {
		if inc.PartyID == party.ID && len(list) < size {
			list = append(list, inc)
		}
	}
	for len(list) < size {
		list = append(list, newCandidate(src, party, adults))
	}
	for i, c := range list {
		c.ListPosition = i + 1
		c.PartyAffiliationReadOnly = party.Name
	}
	return list
}

func handlePartyListPR(src *entropy.Source, p ParticipantParams) Participants {
	seats := max(p.Type.Seats, p.Election.NumberOfSeatsToFill, 1)
	incumbents := runningIncumbents(p.Incumbents, len(p.Incumbents))

	lists := make(map[string][]*politics.Politician, len(p.Landscape))
	for _, party := range p.Landscape {
		list := buildList(src, party, PRListSize(src, seats), incumbents, p.AdultPopulation)
		ScoreCandidates(src, list, p.Election, p.Campaign)
		NormalizePolling(list, p.AdultPopulation)
		lists[party.ID] = list
	}
	for _, inc := range unaffiliated(incumbents, p.Landscape) {
		inc.ListPosition = 1
		inc.PartyAffiliationReadOnly = politics.IndependentName
		list := []*politics.Politician{inc}
		ScoreCandidates(src, list, p.Election, p.Campaign)
		NormalizePolling(list, p.AdultPopulation)
		lists[IndependentListID(inc)] = list
	}

	return Participants{PartyLists: lists, PartyPolling: partyPolling(lists, p.Landscape)}
}

// MMPSeats splits the seats into constituency and list seats.
func MMPSeats(t ElectionType, seats int) (constituency, list int) {
	ratio := t.MMPConstituencySeatsRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	constituency = max(int(math.Round(float64(seats)*ratio)), 1)
	return constituency, max(seats-constituency, 0)
}

func handleMMP(src *entropy.Source, p ParticipantParams) Participants {
	seats := max(p.Type.Seats, p.Election.NumberOfSeatsToFill, 2)
	constSeats, listSeats := MMPSeats(p.Type, seats)

	listRatio := p.Type.MMPListSeatsRatio
	if listRatio <= 0 {
		listRatio = 0.5
	}
	listSize := max(int(math.Ceil(float64(seats)*listRatio))+src.IntRange(0, 3), 1)

	incumbents := runningIncumbents(p.Incumbents, len(p.Incumbents))
	data := &MMPData{
		ConstituencySeats:      constSeats,
		ListSeats:              listSeats,
		PartyLists:             make(map[string][]*politics.Politician, len(p.Landscape)),
		ConstituencyCandidates: make(map[string][]*politics.Politician, len(p.Landscape)),
	}

	var constituency []*politics.Politician
	for _, party := range p.Landscape {
		list := buildList(src, party, listSize, incumbents, p.AdultPopulation)
		data.PartyLists[party.ID] = list

		taken := make(map[string]bool, len(list))
		for _, c := range list {
			taken[c.Name] = true
		}
		var pool []*politics.Politician
		for len(pool) < constSeats {
			c := newCandidate(src, party, p.AdultPopulation)
			for attempt := 0; attempt < maxDuplicateRetries && taken[c.Name]; attempt++ {
				c = newCandidate(src, party, p.AdultPopulation)
			}
			taken[c.Name] = true
			pool = append(pool, c)
		}
		data.ConstituencyCandidates[party.ID] = pool
		constituency = append(constituency, pool...)
	}

	for _, inc := range unaffiliated(incumbents, p.Landscape) {
		data.IndependentCandidates = append(data.IndependentCandidates, inc)
		constituency = append(constituency, inc)
	}
	for i := src.IntRange(0, 2); i > 0; i-- {
		ind := newCandidate(src, nil, p.AdultPopulation)
		data.IndependentCandidates = append(data.IndependentCandidates, ind)
		constituency = append(constituency, ind)
	}

	for _, id := range sortedKeys(data.PartyLists) {
		list := data.PartyLists[id]
		ScoreCandidates(src, list, p.Election, p.Campaign)
		NormalizePolling(list, p.AdultPopulation)
	}
	ScoreCandidates(src, constituency, p.Election, p.Campaign)
	NormalizePolling(constituency, p.AdultPopulation)

	return Participants{MMPData: data, PartyPolling: partyPolling(data.PartyLists, p.Landscape)}
}
