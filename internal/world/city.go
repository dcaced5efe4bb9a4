// Package world generates cities and states: population, demographics,
// economy, budget, stats, laws and the political landscape.
package world

import (
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
)

// City is a generated jurisdiction. States reuse the same schema for their
// aggregate entity.
type City struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CountryID  string `json:"countryId"`
	RegionID   string `json:"regionId"`
	Population int    `json:"population"`

	Demographics    Demographics    `json:"demographics"`
	EconomicProfile EconomicProfile `json:"economicProfile"`
	Stats           Stats           `json:"stats"`
	Laws            Laws            `json:"cityLaws"`

	PoliticalLandscape []*politics.Party `json:"politicalLandscape"`
}

// CityParams are the high-level inputs to GenerateCity.
type CityParams struct {
	Name       string // generated when empty
	CountryID  string
	RegionID   string
	Population int // clamped to at least 1

	// Prosperity in [-1, 1] moves GDP per capita by up to 15% either way
	// before the budget is drawn.
	Prosperity float64

	// Parties overrides the country's base parties when non-empty.
	Parties []politics.PartyTemplate
}

// GenerateCity builds a self-consistent city from a population figure and
// country context.
func GenerateCity(src *entropy.Source, p CityParams) *City {
	country := CountryByID(p.CountryID)
	pop := max(p.Population, 1)

	name := p.Name
	if name == "" {
		name = GenerateCityNames(src, 1)[0]
	}
	templates := p.Parties
	if len(templates) == 0 {
		templates = country.BaseParties
	}

	demo := GenerateCityDemographics(src)
	econ := GenerateEconomicProfile(src, pop, demo)
	if p.Prosperity != 0 {
		gdp := float64(econ.GDPPerCapita) * (1 + 0.15*clamp(p.Prosperity, -1, 1))
		econ.GDPPerCapita = max(round64(gdp), 12_000)
	}

	return &City{
		ID:                 src.UUID(),
		Name:               name,
		CountryID:          country.ID,
		RegionID:           p.RegionID,
		Population:         pop,
		Demographics:       demo,
		EconomicProfile:    econ,
		Stats:              GenerateInitialCityStats(src, pop, demo, econ),
		Laws:               GenerateLaws(src, econ),
		PoliticalLandscape: politics.GenerateLandscape(src, templates),
	}
}

// AdultPopulation is the city's voting-age population.
func (c *City) AdultPopulation() int {
	return AdultPopulation(c.Population, c.Demographics)
}

// Clone deep-copies the city so updates can be computed off to the side and
// swapped in whole.
func (c *City) Clone() *City {
	if c == nil {
		return nil
	}
	out := *c
	out.EconomicProfile.DominantIndustries = append([]string(nil), c.EconomicProfile.DominantIndustries...)
	out.Stats.MainIssues = append([]string(nil), c.Stats.MainIssues...)
	out.Stats.Budget = c.Stats.Budget.Clone()
	out.PoliticalLandscape = politics.CloneLandscape(c.PoliticalLandscape)
	return &out
}

// GenerateCityNames produces distinct names by combining syllables.
func GenerateCityNames(src *entropy.Source, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Bright", "High", "Fair",
		"Old", "New", "Far", "Long", "Broad", "Gold", "Maple",
		"Elm", "Oak", "Pine", "Copper", "River", "Lake", "Cedar",
	}
	suffixes := []string{
		"haven", "ford", "wick", "bridge", "gate", "port",
		"stead", "wood", "field", "dale", "crest", "vale",
		"ton", "bury", "well", "brook", "ridge", "view",
		"burg", "ville", "mouth", "point", "springs", "heights",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)
	for len(names) < count {
		name := entropy.Pick(src, prefixes) + entropy.Pick(src, suffixes)
		if len(used) >= len(prefixes)*len(suffixes) {
			name += " " + entropy.Pick(src, []string{"North", "South", "East", "West"})
		}
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}
	return names
}
