// Package election generates election instances: the roster of candidates or
// party lists, their base scores and normalized polling, and the result once
// voting day arrives.
package election

import (
	"errors"
	"fmt"
	"time"

	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// Electoral systems.
const (
	SystemFPTP             = "FPTP"
	SystemTwoRound         = "TwoRoundSystem"
	SystemElectoralCollege = "ElectoralCollege"
	SystemPartyListPR      = "PartyListPR"
	SystemMMP              = "MMP"
	SystemSNTV             = "SNTV_MMD"
	SystemBlockVote        = "BlockVote"
	SystemPluralityMMD     = "PluralityMMD"
)

// Election statuses.
const (
	StatusUpcoming  = "upcoming"
	StatusConcluded = "concluded"
)

var (
	ErrUnknownSystem = errors.New("unknown electoral system")
	ErrShape         = errors.New("participant shape does not match electoral system")
)

// Shape is which participant field an electoral system fills.
type Shape int

const (
	ShapeCandidates Shape = iota
	ShapePartyLists
	ShapeMMP
)

// ShapeFor maps an electoral system to its participant shape. Unknown
// systems are treated as candidate races.
func ShapeFor(system string) (Shape, error) {
	switch system {
	case SystemFPTP, SystemTwoRound, SystemElectoralCollege,
		SystemSNTV, SystemBlockVote, SystemPluralityMMD:
		return ShapeCandidates, nil
	case SystemPartyListPR:
		return ShapePartyLists, nil
	case SystemMMP:
		return ShapeMMP, nil
	default:
		return ShapeCandidates, fmt.Errorf("%w: %q", ErrUnknownSystem, system)
	}
}

// IsMultiMember reports whether the system fills several seats from one
// candidate roster.
func IsMultiMember(system string) bool {
	return system == SystemSNTV || system == SystemBlockVote || system == SystemPluralityMMD
}

// ElectionType is a static definition an election instance is created from.
type ElectionType struct {
	ID              string `json:"id" yaml:"id"`
	OfficeName      string `json:"office_name" yaml:"office_name"`
	Level           string `json:"level" yaml:"level"`
	ElectoralSystem string `json:"electoral_system" yaml:"electoral_system"`
	Seats           int    `json:"seats" yaml:"seats"`
	TermYears       int    `json:"term_years" yaml:"term_years"`
	FilingWeeks     int    `json:"filing_weeks" yaml:"filing_weeks"`

	// MMP only: the share of seats filled by constituency and by list.
	MMPConstituencySeatsRatio float64 `json:"mmp_constituency_seats_ratio,omitempty" yaml:"mmp_constituency_seats_ratio"`
	MMPListSeatsRatio         float64 `json:"mmp_list_seats_ratio,omitempty" yaml:"mmp_list_seats_ratio"`
}

// SingleSeat reports whether the office has exactly one holder.
func (t ElectionType) SingleSeat() bool {
	shape, _ := ShapeFor(t.ElectoralSystem)
	return shape == ShapeCandidates && !IsMultiMember(t.ElectoralSystem) && t.Seats <= 1
}

// TypesForCountry builds the mayor, council, governor and legislature
// election types for a country.
func TypesForCountry(c world.Country) []ElectionType {
	types := []ElectionType{
		{
			ID: "mayor", OfficeName: "Mayor", Level: politics.LevelCity,
			ElectoralSystem: c.MayorSystem, Seats: 1, TermYears: 4, FilingWeeks: 10,
		},
		{
			ID: "city_council", OfficeName: "City Council", Level: politics.LevelCity,
			ElectoralSystem: c.CouncilSystem, Seats: max(c.CouncilSeats, 1), TermYears: 4, FilingWeeks: 8,
		},
		{
			ID: "governor", OfficeName: "Governor", Level: politics.LevelState,
			ElectoralSystem: SystemFPTP, Seats: 1, TermYears: 4, FilingWeeks: 12,
		},
		{
			ID: "state_legislature", OfficeName: "State Legislature", Level: politics.LevelState,
			ElectoralSystem: c.LegislatureSystem, Seats: max(c.LegislatureSeats, 1), TermYears: 2, FilingWeeks: 8,
		},
	}
	if c.MayorSystem == SystemTwoRound {
		types[2].ElectoralSystem = SystemTwoRound
	}
	for i := range types {
		if types[i].ElectoralSystem == SystemMMP {
			types[i].MMPConstituencySeatsRatio = 0.5
			types[i].MMPListSeatsRatio = 0.5
		}
	}
	return types
}

// TypeByID finds an election type in a table.
func TypeByID(types []ElectionType, id string) (ElectionType, bool) {
	for _, t := range types {
		if t.ID == id {
			return t, true
		}
	}
	return ElectionType{}, false
}

// MMPData holds the two rosters of a mixed-member proportional election.
type MMPData struct {
	ConstituencySeats int `json:"constituency_seats"`
	ListSeats         int `json:"list_seats"`

	PartyLists             map[string][]*politics.Politician `json:"party_lists"`
	ConstituencyCandidates map[string][]*politics.Politician `json:"constituency_candidates"`
	IndependentCandidates  []*politics.Politician            `json:"independent_candidates"`
}

// Outcome is filled once, when the election is resolved.
type Outcome struct {
	Status             string                 `json:"status"`
	Winners            []*politics.Politician `json:"winners,omitempty"`
	ResultsByCandidate map[string]int         `json:"results_by_candidate,omitempty"` // politician ID → votes
	ResultsByParty     map[string]int         `json:"results_by_party,omitempty"`     // party ID → votes
	SeatsByParty       map[string]int         `json:"seats_by_party,omitempty"`
	Turnout            int                    `json:"turnout,omitempty"`
	RunoffHeld         bool                   `json:"runoff_held,omitempty"`
}

// Election is one scheduled contest. Exactly one of Candidates, PartyLists
// and MMPData is populated, chosen by ElectoralSystem.
type Election struct {
	ID                  string    `json:"id"`
	InstanceIDBase      string    `json:"instance_id_base"`
	TypeID              string    `json:"type_id"`
	EntityID            string    `json:"entity_id"`
	OfficeName          string    `json:"office_name"`
	Level               string    `json:"level"`
	ElectoralSystem     string    `json:"electoral_system"`
	ElectionDate        time.Time `json:"election_date"`
	FilingDeadline      time.Time `json:"filing_deadline"`
	NumberOfSeatsToFill int       `json:"number_of_seats_to_fill"`

	// IncumbentIDs are the office holders at creation time.
	IncumbentIDs []string `json:"incumbent_ids,omitempty"`

	Candidates []*politics.Politician            `json:"candidates,omitempty"`
	PartyLists map[string][]*politics.Politician `json:"party_lists,omitempty"`
	MMPData    *MMPData                          `json:"mmp_data,omitempty"`

	// PartyPolling is the per-party share for list-based systems.
	PartyPolling map[string]int `json:"party_polling,omitempty"`

	Outcome Outcome `json:"outcome"`
}

// IsListedIncumbent reports whether politicianID holds the office this
// election fills.
func (e *Election) IsListedIncumbent(politicianID string) bool {
	for _, id := range e.IncumbentIDs {
		if id == politicianID {
			return true
		}
	}
	return false
}

// Concluded reports whether the election has been resolved.
func (e *Election) Concluded() bool {
	return e.Outcome.Status == StatusConcluded
}

// Validate checks the one-populated-shape invariant.
func (e *Election) Validate() error {
	shape, err := ShapeFor(e.ElectoralSystem)
	if err != nil {
		return err
	}
	hasCands := len(e.Candidates) > 0
	hasLists := len(e.PartyLists) > 0
	hasMMP := e.MMPData != nil

	ok := false
	switch shape {
	case ShapeCandidates:
		ok = hasCands && !hasLists && !hasMMP
	case ShapePartyLists:
		ok = hasLists && !hasCands && !hasMMP
	case ShapeMMP:
		ok = hasMMP && !hasCands && !hasLists
	}
	if !ok {
		return fmt.Errorf("%w: %s election %s", ErrShape, e.ElectoralSystem, e.ID)
	}
	return nil
}

// AllCandidates flattens every roster into one slice.
func (e *Election) AllCandidates() []*politics.Politician {
	out := append([]*politics.Politician(nil), e.Candidates...)
	for _, id := range sortedKeys(e.PartyLists) {
		out = append(out, e.PartyLists[id]...)
	}
	if e.MMPData != nil {
		for _, id := range sortedKeys(e.MMPData.PartyLists) {
			out = append(out, e.MMPData.PartyLists[id]...)
		}
		for _, id := range sortedKeys(e.MMPData.ConstituencyCandidates) {
			out = append(out, e.MMPData.ConstituencyCandidates[id]...)
		}
		out = append(out, e.MMPData.IndependentCandidates...)
	}
	return out
}

// FindCandidate returns the politician with the given ID from any roster.
func (e *Election) FindCandidate(id string) *politics.Politician {
	for _, c := range e.AllCandidates() {
		if c.ID == id {
			return c
		}
	}
	return nil
}
