package world

import (
	"github.com/talgya/civic-sim/internal/apportion"
	"github.com/talgya/civic-sim/internal/entropy"
)

// Minimum shares enforced after normalization.
const (
	MinSeniorShare           = 10
	MinHighSchoolOrLessShare = 15
)

// AgeDistribution holds percentage shares per age bracket. Youth are under 18.
type AgeDistribution struct {
	Youth      int `json:"youth"`
	YoungAdult int `json:"youngAdult"`
	Adult      int `json:"adult"`
	Senior     int `json:"senior"`
}

// Sum totals the shares.
func (a AgeDistribution) Sum() int { return a.Youth + a.YoungAdult + a.Adult + a.Senior }

// EducationLevels holds percentage shares per attainment level.
type EducationLevels struct {
	HighSchoolOrLess  int `json:"highSchoolOrLess"`
	SomeCollege       int `json:"someCollege"`
	BachelorsOrHigher int `json:"bachelorsOrHigher"`
}

// Sum totals the shares.
func (e EducationLevels) Sum() int { return e.HighSchoolOrLess + e.SomeCollege + e.BachelorsOrHigher }

// Demographics groups the distributions of a population.
type Demographics struct {
	AgeDistribution AgeDistribution `json:"ageDistribution"`
	EducationLevels EducationLevels `json:"educationLevels"`
}

// GenerateCityDemographics draws bracket shares and normalizes each group to
// exactly 100, raising seniors and high-school-or-less to their floors.
func GenerateCityDemographics(src *entropy.Source) Demographics {
	age := normalizeShares(
		[]float64{
			float64(src.IntRange(15, 25)),
			float64(src.IntRange(20, 30)),
			float64(src.IntRange(25, 40)),
			float64(src.IntRange(10, 20)),
		},
		[]int{0, 0, 0, MinSeniorShare},
	)
	edu := normalizeShares(
		[]float64{
			float64(src.IntRange(25, 50)),
			float64(src.IntRange(20, 35)),
			float64(src.IntRange(15, 40)),
		},
		[]int{MinHighSchoolOrLessShare},
	)

	return Demographics{
		AgeDistribution: AgeDistribution{Youth: age[0], YoungAdult: age[1], Adult: age[2], Senior: age[3]},
		EducationLevels: EducationLevels{HighSchoolOrLess: edu[0], SomeCollege: edu[1], BachelorsOrHigher: edu[2]},
	}
}

// normalizeShares apportions 100 across raw draws with per-bucket floors.
// The floors used here always fit within 100.
func normalizeShares(raw []float64, floors []int) []int {
	out, err := apportion.WithFloors(apportion.Weights(raw...), 100, floors)
	if err != nil {
		return apportion.Apportion(apportion.Weights(raw...), 100)
	}
	return out
}

// AdultPopulation is the population aged 18 and over, never below 1.
func AdultPopulation(population int, d Demographics) int {
	if population <= 0 {
		return 1
	}
	youth := d.AgeDistribution.Youth
	if d.AgeDistribution.Sum() == 0 {
		youth = 20
	}
	adults := population * (100 - youth) / 100
	return max(adults, 1)
}
