package world

import (
	"math"

	"github.com/talgya/civic-sim/internal/entropy"
)

// Stats are the ratings the simulation tracks and citizens react to.
type Stats struct {
	Type               string   `json:"type"`
	Wealth             string   `json:"wealth"`
	MainIssues         []string `json:"mainIssues"`
	EconomicOutlook    string   `json:"economicOutlook"`
	EducationQuality   string   `json:"educationQuality"`
	OverallCitizenMood string   `json:"overallCitizenMood"`

	HealthcareCoverage float64 `json:"healthcareCoverage"` // percent insured
	PovertyRate        float64 `json:"povertyRate"`        // percent
	CrimeRatePer1000   float64 `json:"crimeRatePer1000"`
	UnemploymentRate   float64 `json:"unemploymentRate"` // percent

	Budget Budget `json:"budget"`
}

// Indicators is the numeric subset recomputed every month.
type Indicators struct {
	UnemploymentRate   float64
	HealthcareCoverage float64
	PovertyRate        float64
	CrimeRatePer1000   float64
}

// GenerateInitialCityStats derives type, wealth, issues, budget and
// indicators for a new jurisdiction.
func GenerateInitialCityStats(src *entropy.Source, population int, d Demographics, econ EconomicProfile) Stats {
	population = max(population, 1)
	s := Stats{
		Type:       CityType(population),
		Wealth:     WealthTier(econ.GDPPerCapita, d.EducationLevels),
		MainIssues: drawMainIssues(src),
		// Initial outlook sits between Struggling and Growing.
		EconomicOutlook: EconomicOutlookLevels[src.IntRange(1, 4)],
	}
	s.Budget = GenerateInitialBudget(src, population, econ, s.MainIssues)

	ind := CalculateIndicators(population, d, econ, s.Type, s.EconomicOutlook, s.Budget)
	s.applyIndicators(ind)

	s.EducationQuality = EducationQualityFor(s.PovertyRate, d.EducationLevels)
	s.OverallCitizenMood = CitizenMoodLevels[src.IntRange(2, 4)]
	return s
}

// drawMainIssues picks two or three distinct issues.
func drawMainIssues(src *entropy.Source) []string {
	n := src.IntRange(2, 3)
	issues := entropy.Sample(src, MainIssues, n)
	seen := make(map[string]bool, len(issues))
	out := issues[:0]
	for _, is := range issues {
		if !seen[is] {
			seen[is] = true
			out = append(out, is)
		}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// WealthTier maps GDP per capita and the graduate share onto WealthLevels.
func WealthTier(gdpPerCapita int64, edu EducationLevels) string {
	score := float64(gdpPerCapita)/1000 + float64(edu.BachelorsOrHigher-25)*0.5
	switch {
	case score < 25:
		return WealthLevels[0]
	case score < 32:
		return WealthLevels[1]
	case score < 42:
		return WealthLevels[2]
	case score < 55:
		return WealthLevels[3]
	default:
		return WealthLevels[4]
	}
}

// CalculateUnemploymentRate is driven by education, the outlook, industry
// and economic development spending.
func CalculateUnemploymentRate(d Demographics, econ EconomicProfile, outlook string, b Budget, population int) float64 {
	rate := 6.0
	rate -= float64(d.EducationLevels.BachelorsOrHigher-25) * 0.08
	if idx := LevelIndex(EconomicOutlookLevels, outlook); idx >= 0 {
		rate -= float64(idx-3) * 0.9
	}
	if hasIndustry(econ.DominantIndustries, "Manufacturing") {
		rate += 0.5
	}
	if hasIndustry(econ.DominantIndustries, "Technology") {
		rate -= 0.4
	}
	rate -= math.Min(1.5, b.PerCapitaSpending(ExpenseEconomicDevelopment, population)/100)
	return round1(clamp(rate, 1.5, 25))
}

// CalculateHealthcareCoverage rises with healthcare spending and income.
func CalculateHealthcareCoverage(econ EconomicProfile, b Budget, population int) float64 {
	cov := 70.0
	cov += math.Min(20, b.PerCapitaSpending(ExpenseHealthcare, population)/20)
	cov += clamp(float64(econ.GDPPerCapita-35_000)/2000, -10, 10)
	return round1(clamp(cov, 40, 99))
}

// CalculatePovertyRate falls with income and social spending and rises
// with unemployment.
func CalculatePovertyRate(econ EconomicProfile, unemployment float64, b Budget, population int) float64 {
	rate := 18.0
	rate -= float64(econ.GDPPerCapita-35_000) / 2500
	rate += (unemployment - 5) * 0.8
	rate -= math.Min(5, b.PerCapitaSpending(ExpenseSocialServices, population)/40)
	return round1(clamp(rate, 2, 45))
}

// CalculateCrimeRate returns offences per 1000 residents.
func CalculateCrimeRate(cityType string, poverty, unemployment float64, b Budget, population int) float64 {
	rate := 30.0 + poverty*0.8 + unemployment*0.5
	rate -= math.Min(15, b.PerCapitaSpending(ExpensePublicSafety, population)/15)
	switch cityType {
	case TypeMetropolis:
		rate += 8
	case TypeCity:
		rate += 4
	}
	return round1(clamp(rate, 5, 120))
}

// CalculateIndicators runs every calculator in dependency order.
func CalculateIndicators(population int, d Demographics, econ EconomicProfile, cityType, outlook string, b Budget) Indicators {
	unemp := CalculateUnemploymentRate(d, econ, outlook, b, population)
	poverty := CalculatePovertyRate(econ, unemp, b, population)
	return Indicators{
		UnemploymentRate:   unemp,
		HealthcareCoverage: CalculateHealthcareCoverage(econ, b, population),
		PovertyRate:        poverty,
		CrimeRatePer1000:   CalculateCrimeRate(cityType, poverty, unemp, b, population),
	}
}

// RecalculateIndicators refreshes a city's numeric stats from its current
// economy and budget and returns the new values.
func RecalculateIndicators(c *City) Indicators {
	ind := CalculateIndicators(c.Population, c.Demographics, c.EconomicProfile, c.Stats.Type, c.Stats.EconomicOutlook, c.Stats.Budget)
	c.Stats.applyIndicators(ind)
	return ind
}

func (s *Stats) applyIndicators(ind Indicators) {
	s.UnemploymentRate = ind.UnemploymentRate
	s.HealthcareCoverage = ind.HealthcareCoverage
	s.PovertyRate = ind.PovertyRate
	s.CrimeRatePer1000 = ind.CrimeRatePer1000
}

// EducationQualityFor is the level a city's schools trend toward given
// its poverty rate, nudged by graduate share.
func EducationQualityFor(poverty float64, edu EducationLevels) string {
	if edu.BachelorsOrHigher >= 35 {
		poverty -= 2
	}
	switch {
	case poverty < 5:
		return EducationQualityLevels[4]
	case poverty < 10:
		return EducationQualityLevels[3]
	case poverty < 18:
		return EducationQualityLevels[2]
	case poverty < 28:
		return EducationQualityLevels[1]
	default:
		return EducationQualityLevels[0]
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
