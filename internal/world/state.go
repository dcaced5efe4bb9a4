package world

import (
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/civic-sim/internal/apportion"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
)

// State is a set of cities under one state-level government. Entity is the
// aggregate jurisdiction the state offices govern.
type State struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CountryID string  `json:"countryId"`
	Entity    *City   `json:"entity"`
	Cities    []*City `json:"cities"`
}

// StateParams are the inputs to GenerateState.
type StateParams struct {
	Name       string
	CountryID  string
	Cities     int // at least 1
	Population int // total across all cities
}

// CitySite is where a city sits in the state's unit square, with the
// sampled regional prosperity in [-1, 1].
type CitySite struct {
	X, Y       float64
	Prosperity float64
}

// GenerateState scatters cities across the state, sizes them by a
// rank-size rule, shifts each city's GDP by a smooth regional prosperity
// field and aggregates the result into the state entity.
func GenerateState(src *entropy.Source, p StateParams) *State {
	country := CountryByID(p.CountryID)
	n := max(p.Cities, 1)
	total := max(p.Population, n)

	name := p.Name
	if name == "" {
		name = GenerateCityNames(src, 1)[0]
	}
	st := &State{ID: src.UUID(), Name: name, CountryID: country.ID}

	// Rank-size populations: the k-th city is about 1/k of the largest.
	weights := make([]float64, n)
	for k := range weights {
		weights[k] = 1 / float64(k+1) * src.FloatRange(0.8, 1.2)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))
	pops := apportion.Apportion(apportion.Weights(weights...), total)

	sites := SampleSites(src, n)
	names := GenerateCityNames(src, n)
	for i := 0; i < n; i++ {
		c := GenerateCity(src, CityParams{
			Name:       names[i],
			CountryID:  country.ID,
			RegionID:   st.ID,
			Population: pops[i],
			Prosperity: sites[i].Prosperity,
		})
		st.Cities = append(st.Cities, c)
	}

	st.Entity = aggregate(src, st, country)
	return st
}

// SampleSites places n cities uniformly and samples the prosperity field.
func SampleSites(src *entropy.Source, n int) []CitySite {
	noise := opensimplex.NewNormalized(src.Seed() + 300)
	sites := make([]CitySite, n)
	for i := range sites {
		x, y := src.Float(), src.Float()
		// Normalized noise is in [0, 1]; recentre to [-1, 1].
		v := octaveNoise(noise, x*8, y*8, 3, 0.5, 0.5)
		sites[i] = CitySite{X: x, Y: y, Prosperity: clamp(v*2-1, -1, 1)}
	}
	return sites
}

// aggregate builds the state-level entity from its cities: summed
// population, population-weighted demographics and GDP, the most common
// industries, and a fresh state budget and stats.
func aggregate(src *entropy.Source, st *State, country Country) *City {
	var pop int
	var ageW, eduW [4]float64
	var gdpW float64
	industryCount := make(map[string]int)

	for _, c := range st.Cities {
		w := float64(c.Population)
		pop += c.Population
		a, e := c.Demographics.AgeDistribution, c.Demographics.EducationLevels
		ageW[0] += w * float64(a.Youth)
		ageW[1] += w * float64(a.YoungAdult)
		ageW[2] += w * float64(a.Adult)
		ageW[3] += w * float64(a.Senior)
		eduW[0] += w * float64(e.HighSchoolOrLess)
		eduW[1] += w * float64(e.SomeCollege)
		eduW[2] += w * float64(e.BachelorsOrHigher)
		gdpW += w * float64(c.EconomicProfile.GDPPerCapita)
		for _, ind := range c.EconomicProfile.DominantIndustries {
			industryCount[ind]++
		}
	}

	age := normalizeShares(ageW[:], []int{0, 0, 0, MinSeniorShare})
	edu := normalizeShares(eduW[:3], []int{MinHighSchoolOrLessShare})
	demo := Demographics{
		AgeDistribution: AgeDistribution{Youth: age[0], YoungAdult: age[1], Adult: age[2], Senior: age[3]},
		EducationLevels: EducationLevels{HighSchoolOrLess: edu[0], SomeCollege: edu[1], BachelorsOrHigher: edu[2]},
	}
	econ := EconomicProfile{
		DominantIndustries: topIndustries(industryCount, 3),
		GDPPerCapita:       round64(gdpW / float64(max(pop, 1))),
	}

	stats := GenerateInitialCityStats(src, pop, demo, econ)
	stats.Type = TypeState

	return &City{
		ID:                 st.ID,
		Name:               st.Name,
		CountryID:          country.ID,
		Population:         pop,
		Demographics:       demo,
		EconomicProfile:    econ,
		Stats:              stats,
		Laws:               GenerateLaws(src, econ),
		PoliticalLandscape: politics.GenerateLandscape(src, country.BaseParties),
	}
}

func topIndustries(counts map[string]int, n int) []string {
	out := make([]string, 0, len(counts))
	for ind := range counts {
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// octaveNoise layers several noise frequencies for a smoother field.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Population returns the summed population of the state's cities.
func (s *State) Population() int {
	total := 0
	for _, c := range s.Cities {
		total += c.Population
	}
	return total
}
