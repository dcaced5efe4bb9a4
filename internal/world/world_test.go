package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
)

func TestDemographicsSumAndFloors(t *testing.T) {
	for seed := int64(0); seed < 2000; seed++ {
		d := GenerateCityDemographics(entropy.New(seed))
		require.Equal(t, 100, d.AgeDistribution.Sum(), "seed %d", seed)
		require.Equal(t, 100, d.EducationLevels.Sum(), "seed %d", seed)
		require.GreaterOrEqual(t, d.AgeDistribution.Senior, MinSeniorShare, "seed %d", seed)
		require.GreaterOrEqual(t, d.EducationLevels.HighSchoolOrLess, MinHighSchoolOrLessShare, "seed %d", seed)
	}
}

func TestBudgetReconciles(t *testing.T) {
	for seed := int64(0); seed < 300; seed++ {
		src := entropy.New(seed)
		pop := src.IntRange(500, 3_000_000)
		d := GenerateCityDemographics(src)
		econ := GenerateEconomicProfile(src, pop, d)
		b := GenerateInitialBudget(src, pop, econ, []string{"Crime", "Housing"})

		assert.Equal(t, SumExpenses(b.ExpenseAllocations), b.TotalAnnualExpenses, "seed %d", seed)
		assert.Equal(t, SumIncome(b.IncomeSources), b.TotalAnnualIncome, "seed %d", seed)
		assert.Equal(t, b.TotalAnnualIncome-b.TotalAnnualExpenses, b.Balance, "seed %d", seed)
		assert.Len(t, b.IncomeSources, len(IncomeSources))
		assert.Len(t, b.ExpenseAllocations, len(ExpenseCategories))
		assert.GreaterOrEqual(t, b.AccumulatedDebt, int64(0))
		for cat, v := range b.ExpenseAllocations {
			assert.GreaterOrEqual(t, v, int64(0), "%s seed %d", cat, seed)
		}

		// Expenses stay within 20% of income either way (rounding aside).
		income := float64(b.TotalAnnualIncome)
		assert.LessOrEqual(t, float64(b.TotalAnnualExpenses), income*1.2+1, "seed %d", seed)
		assert.GreaterOrEqual(t, float64(b.TotalAnnualExpenses), income*0.8-1, "seed %d", seed)
	}
}

func TestBudgetDebtServicingFollowsDebt(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		src := entropy.New(seed)
		econ := EconomicProfile{DominantIndustries: []string{"Retail"}, GDPPerCapita: 40_000}
		b := GenerateInitialBudget(src, 100_000, econ, nil)
		if b.AccumulatedDebt == 0 {
			assert.Zero(t, b.ExpenseAllocations[ExpenseDebtServicing], "seed %d", seed)
			continue
		}
		if b.AccumulatedDebt < 10_000 {
			continue
		}
		ratio := float64(b.ExpenseAllocations[ExpenseDebtServicing]) / float64(b.AccumulatedDebt)
		assert.InDelta(t, 0.06, ratio, 0.0201, "seed %d", seed)
	}
}

func TestCityType(t *testing.T) {
	assert.Equal(t, TypeVillage, CityType(1))
	assert.Equal(t, TypeTown, CityType(10_000))
	assert.Equal(t, TypeCity, CityType(50_000))
	assert.Equal(t, TypeCity, CityType(249_999))
	assert.Equal(t, TypeMetropolis, CityType(250_000))
}

func TestStepLevelMovesOneStep(t *testing.T) {
	assert.Equal(t, "Growing", StepLevel(EconomicOutlookLevels, "Stable", 5))
	assert.Equal(t, "Stagnant", StepLevel(EconomicOutlookLevels, "Stable", -2))
	assert.Equal(t, "Booming", StepLevel(EconomicOutlookLevels, "Booming", 1))
	assert.Equal(t, "Recession", StepLevel(EconomicOutlookLevels, "Recession", -1))
	assert.Equal(t, "Stable", StepLevel(EconomicOutlookLevels, "Stable", 0))
}

func TestGenerateCity(t *testing.T) {
	c := GenerateCity(entropy.New(42), CityParams{CountryID: "GBR", Population: 120_000})
	require.NotNil(t, c)
	assert.NotEmpty(t, c.ID)
	assert.NotEmpty(t, c.Name)
	assert.Equal(t, "GBR", c.CountryID)
	assert.Equal(t, TypeCity, c.Stats.Type)
	assert.Len(t, c.PoliticalLandscape, len(CountryByID("GBR").BaseParties))
	assert.InDelta(t, 100.0, politics.TotalPopularity(c.PoliticalLandscape), 0.01)

	n := len(c.Stats.MainIssues)
	assert.True(t, n >= 2 && n <= 3, "main issues %v", c.Stats.MainIssues)
	seen := map[string]bool{}
	for _, is := range c.Stats.MainIssues {
		assert.False(t, seen[is], "duplicate issue %s", is)
		seen[is] = true
	}

	n = len(c.EconomicProfile.DominantIndustries)
	assert.True(t, n >= 1 && n <= 3)
	assert.GreaterOrEqual(t, c.EconomicProfile.GDPPerCapita, int64(12_000))

	assert.NotEqual(t, -1, LevelIndex(WealthLevels, c.Stats.Wealth))
	assert.NotEqual(t, -1, LevelIndex(EconomicOutlookLevels, c.Stats.EconomicOutlook))
	assert.NotEqual(t, -1, LevelIndex(EducationQualityLevels, c.Stats.EducationQuality))
	assert.NotEqual(t, -1, LevelIndex(CitizenMoodLevels, c.Stats.OverallCitizenMood))
	assert.Less(t, c.AdultPopulation(), c.Population)
}

func TestGenerateCityIsReproducible(t *testing.T) {
	a := GenerateCity(entropy.New(7), CityParams{Name: "Elmford", Population: 30_000})
	b := GenerateCity(entropy.New(7), CityParams{Name: "Elmford", Population: 30_000})
	assert.Equal(t, a.Demographics, b.Demographics)
	assert.Equal(t, a.EconomicProfile, b.EconomicProfile)
	assert.Equal(t, a.Stats, b.Stats)
	assert.Equal(t, a.Laws, b.Laws)
}

func TestGenerateCityClampsPopulation(t *testing.T) {
	c := GenerateCity(entropy.New(3), CityParams{Population: -5})
	assert.Equal(t, 1, c.Population)
	assert.Equal(t, TypeVillage, c.Stats.Type)
	assert.Equal(t, 1, c.AdultPopulation())
	assert.Equal(t, c.Stats.Budget.TotalAnnualIncome-c.Stats.Budget.TotalAnnualExpenses, c.Stats.Budget.Balance)
}

func TestCloneIsDeep(t *testing.T) {
	c := GenerateCity(entropy.New(5), CityParams{Population: 80_000})
	cp := c.Clone()
	cp.Stats.Budget.ExpenseAllocations[ExpenseEducation] += 1000
	cp.PoliticalLandscape[0].Popularity = 0
	cp.Stats.MainIssues[0] = "changed"

	assert.NotEqual(t, c.Stats.Budget.ExpenseAllocations[ExpenseEducation], cp.Stats.Budget.ExpenseAllocations[ExpenseEducation])
	assert.NotZero(t, c.PoliticalLandscape[0].Popularity)
	assert.NotEqual(t, "changed", c.Stats.MainIssues[0])
}

func TestGenerateState(t *testing.T) {
	st := GenerateState(entropy.New(11), StateParams{CountryID: "DEU", Cities: 5, Population: 2_000_000})
	require.Len(t, st.Cities, 5)
	assert.Equal(t, 2_000_000, st.Population())
	assert.Equal(t, st.Population(), st.Entity.Population)
	assert.Equal(t, TypeState, st.Entity.Stats.Type)
	assert.Equal(t, 100, st.Entity.Demographics.AgeDistribution.Sum())
	assert.Equal(t, 100, st.Entity.Demographics.EducationLevels.Sum())

	for i := 1; i < len(st.Cities); i++ {
		assert.GreaterOrEqual(t, st.Cities[i-1].Population, st.Cities[i].Population)
	}
	for _, c := range st.Cities {
		b := c.Stats.Budget
		assert.Equal(t, b.TotalAnnualIncome-b.TotalAnnualExpenses, b.Balance)
		assert.Equal(t, st.ID, c.RegionID)
	}
}

func TestSampleSitesProsperityRange(t *testing.T) {
	for _, s := range SampleSites(entropy.New(9), 50) {
		assert.GreaterOrEqual(t, s.Prosperity, -1.0)
		assert.LessOrEqual(t, s.Prosperity, 1.0)
		assert.GreaterOrEqual(t, s.X, 0.0)
		assert.Less(t, s.X, 1.0)
	}
}

func TestStateCitiesKeepBudgetBounds(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		st := GenerateState(entropy.New(seed), StateParams{CountryID: "USA", Cities: 4, Population: 1_000_000})
		for _, c := range st.Cities {
			b := c.Stats.Budget
			ratio := float64(b.TotalAnnualExpenses) / float64(b.TotalAnnualIncome)
			require.GreaterOrEqual(t, ratio, 0.8-1e-6, "seed %d city %s", seed, c.Name)
			require.LessOrEqual(t, ratio, 1.2+1e-6, "seed %d city %s", seed, c.Name)
			require.Equal(t, max(b.TotalAnnualExpenses-b.TotalAnnualIncome, 0), b.AccumulatedDebt, "seed %d city %s", seed, c.Name)
		}
	}
}

func TestProsperityShiftsGDPBeforeBudget(t *testing.T) {
	base := GenerateCity(entropy.New(4), CityParams{Population: 80_000})
	rich := GenerateCity(entropy.New(4), CityParams{Population: 80_000, Prosperity: 1})
	poor := GenerateCity(entropy.New(4), CityParams{Population: 80_000, Prosperity: -1})

	assert.Greater(t, rich.EconomicProfile.GDPPerCapita, base.EconomicProfile.GDPPerCapita)
	assert.LessOrEqual(t, poor.EconomicProfile.GDPPerCapita, base.EconomicProfile.GDPPerCapita)
	assert.Greater(t, rich.Stats.Budget.TotalAnnualIncome, poor.Stats.Budget.TotalAnnualIncome)
}

func TestIndicatorsRespondToSpending(t *testing.T) {
	c := GenerateCity(entropy.New(21), CityParams{Population: 100_000})
	before := RecalculateIndicators(c)

	c.Stats.Budget.ExpenseAllocations[ExpenseHealthcare] = 0
	c.Stats.Budget.ExpenseAllocations[ExpensePublicSafety] = 0
	after := RecalculateIndicators(c)

	assert.LessOrEqual(t, after.HealthcareCoverage, before.HealthcareCoverage)
	assert.GreaterOrEqual(t, after.CrimeRatePer1000, before.CrimeRatePer1000)
}
