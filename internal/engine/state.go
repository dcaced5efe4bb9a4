package engine

import (
	"time"

	"github.com/talgya/civic-sim/internal/election"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// MaxEvents bounds the event log kept in State.
const MaxEvents = 500

// Event categories.
const (
	CategoryBudget   = "budget"
	CategoryStats    = "stats"
	CategoryPolitics = "politics"
	CategoryBill     = "bill"
	CategoryElection = "election"
	CategoryAdmin    = "admin"
)

// Event is a notable occurrence in the campaign.
type Event struct {
	Seq         uint64         `json:"seq"` // 1-based, unique within a campaign
	Month       uint64         `json:"month"`
	Date        time.Time      `json:"date"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// State is everything one campaign needs. The Simulation owns it; monthly
// steps compute replacements and the controller swaps them in.
type State struct {
	CampaignID string    `json:"campaign_id"`
	Seed       int64     `json:"seed"`
	Month      uint64    `json:"month"`
	StartDate  time.Time `json:"start_date"`
	CountryID  string    `json:"country_id"`

	City   *world.City  `json:"city"`
	Region *world.State `json:"region"`

	Offices       []*politics.Office      `json:"offices"`
	ElectionTypes []election.ElectionType `json:"election_types"`
	Elections     []*election.Election    `json:"elections"`
	Player        *politics.Politician    `json:"player"`
	Bills         []*legislation.Bill     `json:"bills"`
	Events        []Event                 `json:"events"`
	EventSeq      uint64                  `json:"event_seq"` // last Seq handed out
}

// Now is the current simulated date.
func (st *State) Now() time.Time {
	return SimDate(st.StartDate, st.Month)
}

// Office returns the office filled by the given election type.
func (st *State) Office(typeID string) *politics.Office {
	for _, o := range st.Offices {
		if o.TypeID == typeID {
			return o
		}
	}
	return nil
}

// Mayor returns the mayor, or nil while the post is vacant.
func (st *State) Mayor() *politics.Politician {
	if o := st.Office("mayor"); o != nil {
		return o.Holder
	}
	return nil
}

// Council returns the sitting city council.
func (st *State) Council() []*politics.Politician {
	if o := st.Office("city_council"); o != nil {
		return o.Incumbents()
	}
	return nil
}

// IncumbentPartyID is the mayor's party, or "" for an independent or vacancy.
func (st *State) IncumbentPartyID() string {
	if m := st.Mayor(); m != nil {
		return m.PartyID
	}
	return ""
}

// PlayerIsMayor reports whether the player holds the mayoralty.
func (st *State) PlayerIsMayor() bool {
	return st.Player != nil && st.Office("mayor").HeldBy(st.Player.ID)
}

// Entity returns the jurisdiction an election level refers to.
func (st *State) Entity(level string) *world.City {
	if level == politics.LevelState && st.Region != nil && st.Region.Entity != nil {
		return st.Region.Entity
	}
	return st.City
}

// Election finds an election by ID.
func (st *State) Election(id string) *election.Election {
	for _, e := range st.Elections {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Bill finds a bill by ID.
func (st *State) Bill(id string) *legislation.Bill {
	for _, b := range st.Bills {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// PendingBills lists bills still awaiting a vote.
func (st *State) PendingBills() []*legislation.Bill {
	var out []*legislation.Bill
	for _, b := range st.Bills {
		if b.Pending() {
			out = append(out, b)
		}
	}
	return out
}

// UpcomingElections lists elections not yet resolved, in date order.
func (st *State) UpcomingElections() []*election.Election {
	var out []*election.Election
	for _, e := range st.Elections {
		if !e.Concluded() {
			out = append(out, e)
		}
	}
	return out
}

// Relink restores shared politician identity after the state was decoded,
// so that the player, office holders and candidates with the same ID are one
// object again. The first occurrence wins: player, then offices, then
// election rosters.
func (st *State) Relink() {
	seen := make(map[string]*politics.Politician)
	canon := func(p *politics.Politician) *politics.Politician {
		if p == nil {
			return nil
		}
		if c, ok := seen[p.ID]; ok {
			return c
		}
		seen[p.ID] = p
		return p
	}
	relinkAll := func(list []*politics.Politician) {
		for i, p := range list {
			list[i] = canon(p)
		}
	}

	st.Player = canon(st.Player)
	for _, o := range st.Offices {
		o.Holder = canon(o.Holder)
		relinkAll(o.Members)
	}
	for _, e := range st.Elections {
		relinkAll(e.Candidates)
		for _, list := range e.PartyLists {
			relinkAll(list)
		}
		if d := e.MMPData; d != nil {
			for _, list := range d.PartyLists {
				relinkAll(list)
			}
			for _, list := range d.ConstituencyCandidates {
				relinkAll(list)
			}
			relinkAll(d.IndependentCandidates)
		}
		relinkAll(e.Outcome.Winners)
	}
}
