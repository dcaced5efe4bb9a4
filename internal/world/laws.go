package world

import (
	"math"

	"github.com/talgya/civic-sim/internal/entropy"
)

// Laws are the local ordinances legislation can change.
type Laws struct {
	MinimumWage          float64 `json:"minimumWage"` // hourly
	RentControl          bool    `json:"rentControl"`
	PlasticBagBan        bool    `json:"plasticBagBan"`
	PublicSmokingBan     bool    `json:"publicSmokingBan"`
	YouthCurfew          bool    `json:"youthCurfew"`
	SpeedLimitUrban      int     `json:"speedLimitUrban"` // km/h
	ShortTermRentalLimit bool    `json:"shortTermRentalLimit"`
}

// GenerateLaws draws a starting set of ordinances.
func GenerateLaws(src *entropy.Source, econ EconomicProfile) Laws {
	wage := 8 + float64(econ.GDPPerCapita)/10_000 + src.FloatRange(-1, 2)
	return Laws{
		MinimumWage:          math.Round(wage*100) / 100,
		RentControl:          src.Chance(0.25),
		PlasticBagBan:        src.Chance(0.4),
		PublicSmokingBan:     src.Chance(0.7),
		YouthCurfew:          src.Chance(0.2),
		SpeedLimitUrban:      entropy.Pick(src, []int{30, 40, 50}),
		ShortTermRentalLimit: hasIndustry(econ.DominantIndustries, "Tourism") && src.Chance(0.6),
	}
}
