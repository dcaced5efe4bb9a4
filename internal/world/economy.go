package world

import (
	"github.com/talgya/civic-sim/internal/entropy"
)

// EconomicProfile describes what a jurisdiction lives on.
type EconomicProfile struct {
	DominantIndustries []string `json:"dominantIndustries"`
	GDPPerCapita       int64    `json:"gdpPerCapita"`
}

// Additive GDP per capita adjustments by industry.
var industryGDPEffect = map[string]int64{
	"Technology":  8000,
	"Finance":     6000,
	"Energy":      3000,
	"Healthcare":  2000,
	"Logistics":   1000,
	"Tourism":     -1000,
	"Retail":      -1500,
	"Agriculture": -3000,
}

// GenerateEconomicProfile picks 1 to 3 dominant industries and derives GDP per
// capita from a base draw, the education mix and the industries.
func GenerateEconomicProfile(src *entropy.Source, population int, d Demographics) EconomicProfile {
	industries := entropy.Sample(src, Industries, src.IntRange(1, 3))

	gdp := int64(src.IntRange(20_000, 50_000))
	gdp += int64(d.EducationLevels.BachelorsOrHigher-25) * 400
	gdp -= int64(max(d.EducationLevels.HighSchoolOrLess-40, 0)) * 150

	for _, ind := range industries {
		gdp += industryGDPEffect[ind]
	}
	if hasIndustry(industries, "Manufacturing") && !hasIndustry(industries, "Technology") {
		gdp -= 2500
	}

	// Agglomeration premium for large cities.
	if population >= 250_000 {
		gdp += 3000
	}

	return EconomicProfile{
		DominantIndustries: industries,
		GDPPerCapita:       max(gdp, 12_000),
	}
}
