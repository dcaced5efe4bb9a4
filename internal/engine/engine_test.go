package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civic-sim/internal/election"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

func surplusCity(debt int64) *world.City {
	return &world.City{
		Name:       "Testville",
		Population: 1,
		Stats: world.Stats{
			Budget: world.Budget{
				PerCapitaRevenue:   world.PerCapitaRevenue{Fees: 5000},
				IncomeSources:      map[world.IncomeSource]int64{},
				ExpenseAllocations: map[world.ExpenseCategory]int64{},
				AccumulatedDebt:    debt,
			},
		},
	}
}

func TestBudgetSurplusPaysOffDebt(t *testing.T) {
	city := surplusCity(3000)

	b, res := RunMonthlyBudgetUpdate(city)
	require.NotNil(t, b)
	assert.Equal(t, StatusApplied, res.Status)
	assert.Equal(t, int64(5000), b.TotalAnnualIncome)
	assert.Zero(t, b.TotalAnnualExpenses)
	assert.Equal(t, int64(5000), b.Balance)
	assert.Zero(t, b.AccumulatedDebt, "debt never goes negative")
	assert.Equal(t, int64(3000), city.Stats.Budget.AccumulatedDebt, "input untouched")
	assert.NotEmpty(t, res.News)
}

func TestBudgetDeficitGrowsDebt(t *testing.T) {
	city := surplusCity(1000)
	city.Stats.Budget.ExpenseAllocations[world.ExpensePublicSafety] = 7000

	b, res := RunMonthlyBudgetUpdate(city)
	require.NotNil(t, b)
	assert.Equal(t, StatusApplied, res.Status)
	assert.Equal(t, int64(-2000), b.Balance)
	assert.Equal(t, int64(3000), b.AccumulatedDebt)
}

func TestBudgetUnchangedAndSkipped(t *testing.T) {
	city := surplusCity(0)
	b, _ := RunMonthlyBudgetUpdate(city)
	require.NotNil(t, b)
	city.Stats.Budget = *b

	b, res := RunMonthlyBudgetUpdate(city)
	assert.Nil(t, b)
	assert.Equal(t, StatusUnchanged, res.Status)

	b, res = RunMonthlyBudgetUpdate(&world.City{Name: "Empty"})
	assert.Nil(t, b)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.NotEmpty(t, res.Reason)

	_, res = RunMonthlyBudgetUpdate(nil)
	assert.Equal(t, StatusSkipped, res.Status)
}

func TestStatUpdateMovesOneLevel(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		city := world.GenerateCity(entropy.New(seed), world.CityParams{Population: 80_000})
		next, res := RunMonthlyStatUpdate(entropy.New(seed), city)
		require.NotNil(t, next)
		assert.Equal(t, StatusApplied, res.Status)

		for _, c := range []struct {
			levels   []string
			old, new string
		}{
			{world.CitizenMoodLevels, city.Stats.OverallCitizenMood, next.Stats.OverallCitizenMood},
			{world.EconomicOutlookLevels, city.Stats.EconomicOutlook, next.Stats.EconomicOutlook},
			{world.EducationQualityLevels, city.Stats.EducationQuality, next.Stats.EducationQuality},
		} {
			diff := world.LevelIndex(c.levels, c.new) - world.LevelIndex(c.levels, c.old)
			assert.LessOrEqual(t, diff, 1, "seed %d", seed)
			assert.GreaterOrEqual(t, diff, -1, "seed %d", seed)
		}
		assert.NotSame(t, city, next)
	}

	_, res := RunMonthlyStatUpdate(entropy.New(1), nil)
	assert.Equal(t, StatusSkipped, res.Status)
}

func TestPartyPopularitySumsTo100(t *testing.T) {
	city := world.GenerateCity(entropy.New(4), world.CityParams{Population: 60_000})
	city.Stats.PovertyRate = 25
	city.Stats.CrimeRatePer1000 = 60
	city.Stats.UnemploymentRate = 10
	incumbent := city.PoliticalLandscape[0]
	for _, p := range city.PoliticalLandscape {
		if p.Popularity > incumbent.Popularity {
			incumbent = p
		}
	}

	landscape := city.PoliticalLandscape
	for month := 0; month < 24; month++ {
		next, res := RunMonthlyPartyPopularityUpdate(entropy.New(int64(month)), landscape, incumbent.ID, city)
		require.NotNil(t, next)
		assert.Equal(t, StatusApplied, res.Status)
		assert.InDelta(t, 100, politics.TotalPopularity(next), 0.01)
		for _, p := range next {
			assert.GreaterOrEqual(t, p.Popularity, politics.DefaultMinPopularity-1e-9)
		}
		landscape = next
	}
	assert.Less(t, politics.FindParty(landscape, incumbent.ID).Popularity, incumbent.Popularity,
		"incumbent party loses ground in hard times")

	next, res := RunMonthlyPartyPopularityUpdate(entropy.New(1), nil, "", city)
	assert.Nil(t, next)
	assert.Equal(t, StatusSkipped, res.Status)
}

func TestApprovalVeryUnhappyMayor(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		player := &politics.Politician{IsPlayer: true, ApprovalRating: 50}
		v, res := RunMonthlyPlayerApprovalUpdate(entropy.New(seed), player, "Very Unhappy", true)
		assert.Equal(t, StatusApplied, res.Status)
		assert.GreaterOrEqual(t, v, 47.0)
		assert.LessOrEqual(t, v, 49.0)
	}
}

func TestApprovalHalvedOutsideMayoralty(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		player := &politics.Politician{IsPlayer: true, ApprovalRating: 50}
		v, _ := RunMonthlyPlayerApprovalUpdate(entropy.New(seed), player, "Prospering", false)
		assert.GreaterOrEqual(t, v, 50.5)
		assert.LessOrEqual(t, v, 52.5)
	}
}

func TestApprovalBoundsAndSkips(t *testing.T) {
	player := &politics.Politician{IsPlayer: true, ApprovalRating: 0.5}
	v, _ := RunMonthlyPlayerApprovalUpdate(entropy.New(1), player, "Very Unhappy", true)
	assert.Zero(t, v)

	player.ApprovalRating = 99.5
	v, _ = RunMonthlyPlayerApprovalUpdate(entropy.New(1), player, "Prospering", true)
	assert.Equal(t, 100.0, v)

	v, res := RunMonthlyPlayerApprovalUpdate(entropy.New(1), player, "Ecstatic", true)
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, 99.5, v)

	_, res = RunMonthlyPlayerApprovalUpdate(entropy.New(1), nil, "Content", true)
	assert.Equal(t, StatusSkipped, res.Status)
}

func TestAIBillProposals(t *testing.T) {
	city := world.GenerateCity(entropy.New(3), world.CityParams{Population: 90_000})
	var council []*politics.Politician
	for i := 0; i < 40; i++ {
		council = append(council, politics.GenerateFullAIPolitician(entropy.New(int64(i)), politics.PoliticianOptions{}))
	}
	council[0].IsPlayer = true
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	bills, res := RunAIBillProposals(entropy.New(9), legislation.TemplateAuthor{}, council, city, nil, now)
	require.Equal(t, StatusApplied, res.Status)
	seen := map[string]bool{}
	for _, b := range bills {
		assert.False(t, seen[b.ProposalID], "duplicate proposal %s", b.ProposalID)
		seen[b.ProposalID] = true
		assert.NotEqual(t, council[0].ID, b.AuthorID, "player never auto-proposes")
	}
	assert.Len(t, res.News, len(bills))

	_, res = RunAIBillProposals(entropy.New(9), nil, council, city, nil, now)
	assert.Equal(t, StatusSkipped, res.Status)
	_, res = RunAIBillProposals(entropy.New(9), legislation.TemplateAuthor{}, nil, city, nil, now)
	assert.Equal(t, StatusSkipped, res.Status)
}

func newTestCampaign(t *testing.T, country string) *State {
	t.Helper()
	return NewCampaign(entropy.New(21), CampaignParams{
		CountryID:       country,
		CityName:        "Harbor City",
		StatePopulation: 600_000,
		PlayerName:      "Alex Player",
	})
}

func TestNewCampaign(t *testing.T) {
	st := newTestCampaign(t, "USA")

	assert.Equal(t, "Harbor City", st.City.Name)
	require.NotNil(t, st.Player)
	assert.True(t, st.Player.IsPlayer)
	assert.Equal(t, "Alex Player", st.Player.Name)
	assert.True(t, st.Office("city_council").HeldBy(st.Player.ID))
	assert.False(t, st.PlayerIsMayor())
	require.NotNil(t, st.Mayor())

	assert.Len(t, st.Offices, len(st.ElectionTypes))
	assert.Len(t, st.Elections, len(st.ElectionTypes))
	for _, e := range st.Elections {
		require.NoError(t, e.Validate())
		assert.True(t, e.ElectionDate.After(st.StartDate))
	}
	assert.Same(t, st.Region.Entity, st.Entity(politics.LevelState))
	assert.Same(t, st.City, st.Entity(politics.LevelCity))
}

func TestNewCampaignIDsRepeatPerSeed(t *testing.T) {
	a, b := newTestCampaign(t, "USA"), newTestCampaign(t, "USA")

	assert.Equal(t, a.City.ID, b.City.ID)
	assert.Equal(t, a.Region.ID, b.Region.ID)
	assert.Equal(t, a.Player.ID, b.Player.ID)
	for i := range a.Offices {
		assert.Equal(t, a.Offices[i].OfficeID, b.Offices[i].OfficeID)
	}
	for i := range a.Elections {
		ca, cb := a.Elections[i].AllCandidates(), b.Elections[i].AllCandidates()
		require.Len(t, cb, len(ca))
		for j := range ca {
			assert.Equal(t, ca[j].ID, cb[j].ID)
		}
	}
	assert.NotEqual(t, a.CampaignID, b.CampaignID, "each run is its own campaign")
}

func TestPlayerStandsForCouncilUnderEverySystem(t *testing.T) {
	for _, country := range []string{"USA", "GBR", "FRA", "NLD", "DEU", "JPN"} {
		t.Run(country, func(t *testing.T) {
			st := newTestCampaign(t, country)
			var council *election.Election
			for _, e := range st.Elections {
				if e.TypeID == "city_council" {
					council = e
				}
			}
			require.NotNil(t, council)
			assert.Same(t, st.Player, council.FindCandidate(st.Player.ID), council.ElectoralSystem)
		})
	}
}

func TestPlayerRunsForMayor(t *testing.T) {
	st := NewCampaign(entropy.New(21), CampaignParams{
		CountryID:          "USA",
		StatePopulation:    600_000,
		PlayerName:         "Alex Player",
		PlayerRunsForMayor: true,
	})
	var mayorRace *election.Election
	for _, e := range st.Elections {
		if e.TypeID == "mayor" {
			mayorRace = e
		}
	}
	require.NotNil(t, mayorRace)
	assert.Same(t, st.Player, mayorRace.FindCandidate(st.Player.ID))
	total := 0
	for _, c := range mayorRace.Candidates {
		total += c.Polling
	}
	assert.Equal(t, 100, total)

	// Standing for mayor does not give up the council seat.
	assert.True(t, st.Office("city_council").HeldBy(st.Player.ID))
}

func TestEnterRace(t *testing.T) {
	sim := NewSimulation(newTestCampaign(t, "NLD"), nil)

	var mayorID, councilID string
	sim.View(func(st *State) {
		for _, e := range st.Elections {
			switch e.TypeID {
			case "mayor":
				mayorID = e.ID
			case "city_council":
				councilID = e.ID
			}
		}
	})

	desc, err := sim.EnterRace(mayorID)
	require.NoError(t, err)
	assert.Contains(t, desc, "Alex Player enters the race for Mayor")
	_, err = sim.EnterRace(mayorID)
	assert.NoError(t, err, "entering again is harmless")

	_, err = sim.EnterRace("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = sim.EnterRace(councilID)
	assert.ErrorIs(t, err, election.ErrShape, "party-list councils take lists, not entrants")

	sim.View(func(st *State) {
		assert.Same(t, st.Player, st.Election(mayorID).FindCandidate(st.Player.ID))
		last := st.Events[len(st.Events)-1]
		assert.Equal(t, CategoryElection, last.Category)
		assert.Equal(t, mayorID, last.Meta["election_id"])
	})
}

func TestMayoralApprovalUsesFullDelta(t *testing.T) {
	approvalAfterTick := func(asMayor bool) (float64, float64, string) {
		st := newTestCampaign(t, "USA")
		if asMayor {
			st.Office("mayor").SeatWinners([]*politics.Politician{st.Player}, true, st.StartDate.AddDate(4, 0, 0))
			require.True(t, st.PlayerIsMayor())
		}
		before := st.Player.ApprovalRating
		sim := NewSimulation(st, nil)
		sim.TickMonth(1)
		var after float64
		var mood string
		sim.View(func(st *State) {
			after = st.Player.ApprovalRating
			mood = st.City.Stats.OverallCitizenMood
		})
		return before, after, mood
	}

	b1, mayor, mood := approvalAfterTick(true)
	b2, council, mood2 := approvalAfterTick(false)
	require.Equal(t, b1, b2)
	require.Equal(t, mood, mood2)

	d := approvalDelta[world.LevelIndex(world.CitizenMoodLevels, mood)]
	assert.InDelta(t, d*(1-NonMayorApprovalScale), mayor-council, 1e-9)
}

func TestTickNextIsAtomic(t *testing.T) {
	sim := NewSimulation(newTestCampaign(t, "USA"), nil)

	var wg sync.WaitGroup
	months := make([]uint64, 2)
	for i := range months {
		wg.Add(1)
		go func() {
			defer wg.Done()
			months[i], _ = sim.TickNext()
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []uint64{1, 2}, months)
	assert.EqualValues(t, 2, sim.CurrentMonth())
}

func TestTickMonthRunsEveryStep(t *testing.T) {
	sim := NewSimulation(newTestCampaign(t, "GBR"), nil)

	results := sim.TickMonth(1)
	var steps []string
	for _, r := range results {
		steps = append(steps, r.Step)
	}
	assert.Equal(t, []string{"budget", "stats", "parties", "approval", "votes", "bills", "elections"}, steps)
	assert.Equal(t, uint64(1), sim.CurrentMonth())
	assert.Equal(t, results, sim.LastResults())

	sim.View(func(st *State) {
		assert.InDelta(t, 100, politics.TotalPopularity(st.City.PoliticalLandscape), 0.01)
		assert.GreaterOrEqual(t, st.Player.ApprovalRating, 0.0)
		assert.LessOrEqual(t, st.Player.ApprovalRating, 100.0)
	})
}

func TestTickMonthIsDeterministicPerSeed(t *testing.T) {
	run := func() (string, float64) {
		sim := NewSimulation(newTestCampaign(t, "USA"), nil)
		for m := uint64(1); m <= 6; m++ {
			sim.TickMonth(m)
		}
		var mood string
		var approval float64
		sim.View(func(st *State) {
			mood = st.City.Stats.OverallCitizenMood
			approval = st.Player.ApprovalRating
		})
		return mood, approval
	}
	m1, a1 := run()
	m2, a2 := run()
	assert.Equal(t, m1, m2)
	assert.Equal(t, a1, a2)
}

func TestElectionsResolveAndReschedule(t *testing.T) {
	for _, country := range []string{"USA", "DEU", "NLD", "JPN"} {
		t.Run(country, func(t *testing.T) {
			sim := NewSimulation(newTestCampaign(t, country), nil)

			// Every first election falls within four years.
			for m := uint64(1); m <= 4*MonthsPerYear+1; m++ {
				sim.TickMonth(m)
			}

			sim.View(func(st *State) {
				concluded := map[string]bool{}
				for _, e := range st.Elections {
					if e.Concluded() {
						concluded[e.TypeID] = true
						assert.NotEmpty(t, e.Outcome.Winners, e.ID)
						assert.Positive(t, e.Outcome.Turnout)
					}
				}
				for _, typ := range st.ElectionTypes {
					assert.True(t, concluded[typ.ID], "%s never held", typ.ID)
				}
				assert.NotEmpty(t, st.UpcomingElections(), "next cycle scheduled")
				for _, e := range st.UpcomingElections() {
					assert.False(t, e.ElectionDate.Before(st.Now()), e.ID)
				}
				mayor := st.Office("mayor")
				require.NotNil(t, mayor.Holder)
				assert.True(t, mayor.Holder.IsIncumbent)
				assert.LessOrEqual(t, len(st.Events), MaxEvents)
			})
		})
	}
}

func TestBillsAreVotedTheFollowingMonth(t *testing.T) {
	sim := NewSimulation(newTestCampaign(t, "USA"), nil)

	b, err := sim.ProposeBill("school_investment")
	require.NoError(t, err)
	_, err = sim.ProposeBill("school_investment")
	assert.Error(t, err, "duplicate pending proposal")
	_, err = sim.ProposeBill("moon_landing")
	assert.ErrorIs(t, err, ErrNotFound)

	sim.TickMonth(1)
	sim.View(func(st *State) {
		assert.NotEqual(t, legislation.StatusProposed, st.Bill(b.ID).Status)
		assert.Equal(t, b.VotesFor+b.VotesAgainst, len(st.Council()))
	})
}

func TestInterventions(t *testing.T) {
	sim := NewSimulation(newTestCampaign(t, "USA"), nil)

	_, err := sim.EditAllocation(string(world.ExpensePublicSafety), 1_000_000)
	require.NoError(t, err)
	_, err = sim.EditAllocation("moonbase", 5)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = sim.EditAllocation(string(world.ExpensePublicSafety), -1)
	assert.Error(t, err)

	_, err = sim.SetTaxRate("sales", 0.5)
	require.NoError(t, err)
	_, err = sim.SetTaxRate("carbon", 0.01)
	assert.ErrorIs(t, err, ErrNotFound)

	b, err := sim.ProposeBill("rent_stabilization")
	require.NoError(t, err)
	_, err = sim.ForceEnact(b.ID)
	require.NoError(t, err)
	_, err = sim.ForceEnact(b.ID)
	assert.Error(t, err, "already enacted")
	_, err = sim.ForceEnact("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	sim.View(func(st *State) {
		budget := st.City.Stats.Budget
		assert.Equal(t, int64(1_000_000), budget.ExpenseAllocations[world.ExpensePublicSafety])
		assert.Equal(t, world.SumExpenses(budget.ExpenseAllocations), budget.TotalAnnualExpenses)
		assert.Equal(t, 0.1, budget.TaxRates.Sales, "clamped")
		assert.True(t, st.City.Laws.RentControl)
		assert.Equal(t, legislation.StatusEnacted, st.Bill(b.ID).Status)

		var admin int
		for _, e := range st.Events {
			if e.Category == CategoryAdmin {
				admin++
			}
		}
		assert.Equal(t, 3, admin)
	})
}

func TestEngineStepFiresCallbacks(t *testing.T) {
	e := NewEngine(0, time.Millisecond)
	var months, quarters, years int
	e.OnMonth = func(uint64) { months++ }
	e.OnQuarter = func(uint64) { quarters++ }
	e.OnYear = func(uint64) { years++ }

	for i := 0; i < 24; i++ {
		e.Step()
	}
	assert.Equal(t, 24, months)
	assert.Equal(t, 8, quarters)
	assert.Equal(t, 2, years)
}

func TestEngineRunStopsOnCancel(t *testing.T) {
	e := NewEngine(0, time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, e.Month)

	e.SetSpeed(-3)
	assert.Zero(t, e.Speed())
}

func TestSimDate(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), SimDate(start, 14))
	assert.Equal(t, "March 2026", SimTime(start, 14))
}

func TestTypesCoverOffices(t *testing.T) {
	st := newTestCampaign(t, "FRA")
	for _, typ := range st.ElectionTypes {
		o := st.Office(typ.ID)
		require.NotNil(t, o, typ.ID)
		if typ.SingleSeat() {
			assert.NotNil(t, o.Holder)
		} else {
			assert.Len(t, o.Members, typ.Seats)
		}
		_, ok := election.TypeByID(st.ElectionTypes, typ.ID)
		assert.True(t, ok)
	}
}
