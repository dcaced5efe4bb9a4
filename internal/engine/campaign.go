package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/civic-sim/internal/election"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// CampaignParams are the inputs to NewCampaign.
type CampaignParams struct {
	CountryID       string
	CityName        string // renames the home city when set
	RegionName      string
	Cities          int // cities in the state, default 4
	StatePopulation int // default 1,000,000
	StartDate       time.Time

	PlayerName         string
	PlayerPartyID      string // empty for an independent
	PlayerRunsForMayor bool   // enter the player in the first mayoral race
}

// DefaultStartDate is used when CampaignParams.StartDate is zero.
var DefaultStartDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewCampaign generates a state, picks its largest city as the player's
// home, seats AI office holders, puts the player on the city council and
// schedules the first election of every type.
func NewCampaign(src *entropy.Source, p CampaignParams) *State {
	country := world.CountryByID(p.CountryID)
	start := p.StartDate
	if start.IsZero() {
		start = DefaultStartDate
	}
	cities := p.Cities
	if cities <= 0 {
		cities = 4
	}
	pop := p.StatePopulation
	if pop <= 0 {
		pop = 1_000_000
	}

	region := world.GenerateState(src, world.StateParams{
		Name:       p.RegionName,
		CountryID:  country.ID,
		Cities:     cities,
		Population: pop,
	})
	city := region.Cities[0]
	if p.CityName != "" {
		city.Name = p.CityName
	}

	st := &State{
		CampaignID:    uuid.New().String(), // names the run, so not seeded
		Seed:          src.Seed(),
		StartDate:     start,
		CountryID:     country.ID,
		City:          city,
		Region:        region,
		ElectionTypes: election.TypesForCountry(country),
	}

	for _, t := range st.ElectionTypes {
		entity := st.Entity(t.Level)
		office := &politics.Office{
			OfficeID:   src.UUID(),
			OfficeName: t.OfficeName,
			Level:      t.Level,
			TypeID:     t.ID,
		}
		seatAIHolders(src, office, t, entity)
		st.Offices = append(st.Offices, office)
	}

	st.Player = newPlayer(src, p, city)
	if council := st.Office("city_council"); council != nil && len(council.Members) > 0 {
		council.Members[0] = st.Player
	}

	for _, t := range st.ElectionTypes {
		office := st.Office(t.ID)
		date := SimDate(start, uint64(src.IntRange(3, max(t.TermYears, 1)*MonthsPerYear)))
		office.TermEnds = date
		st.Elections = append(st.Elections, election.NewInstance(src, election.InstanceParams{
			Type:         t,
			Entity:       st.Entity(t.Level),
			Incumbents:   office.Incumbents(),
			ElectionDate: date,
		}))
	}

	if p.PlayerRunsForMayor {
		for _, e := range st.Elections {
			if e.TypeID != "mayor" {
				continue
			}
			if err := election.EnterCandidate(src, e, st.Player, st.Entity(e.Level)); err != nil {
				slog.Warn("player could not enter the mayoral race", "election", e.ID, "error", err)
			}
		}
	}
	return st
}

// seatAIHolders fills an office with generated incumbents whose parties are
// drawn by popularity.
func seatAIHolders(src *entropy.Source, o *politics.Office, t election.ElectionType, entity *world.City) {
	seats := 1
	if !t.SingleSeat() {
		seats = max(t.Seats, 1)
	}
	adults := entity.AdultPopulation()
	for i := 0; i < seats; i++ {
		holder := politics.GenerateFullAIPolitician(src, politics.PoliticianOptions{
			Party:           drawByPopularity(src, entity.PoliticalLandscape),
			AdultPopulation: adults,
			IsIncumbent:     true,
		})
		if t.SingleSeat() {
			o.Holder = holder
		} else {
			o.Members = append(o.Members, holder)
		}
	}
}

func drawByPopularity(src *entropy.Source, landscape []*politics.Party) *politics.Party {
	if len(landscape) == 0 {
		return nil
	}
	weights := make([]float64, len(landscape))
	for i, p := range landscape {
		weights[i] = p.Popularity
	}
	return landscape[src.WeightedIndex(weights)]
}

func newPlayer(src *entropy.Source, p CampaignParams, city *world.City) *politics.Politician {
	player := politics.GenerateFullAIPolitician(src, politics.PoliticianOptions{
		Party:           politics.FindParty(city.PoliticalLandscape, p.PlayerPartyID),
		AdultPopulation: city.AdultPopulation(),
		IsIncumbent:     true,
	})
	if p.PlayerName != "" {
		player.Name = p.PlayerName
	}
	player.IsPlayer = true
	player.ApprovalRating = 50
	return player
}
