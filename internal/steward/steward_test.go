package steward

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civic-sim/internal/api"
	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/world"
)

func snapshotWith(income, expenses, debt int64) *Snapshot {
	snap := &Snapshot{}
	s := &snap.City.Stats
	s.OverallCitizenMood = "Content"
	s.UnemploymentRate = 5
	s.PovertyRate = 10
	s.Budget = world.Budget{
		TaxRates:            world.TaxRates{Property: 0.01, Sales: 0.02, Business: 0.01, Income: 0.01},
		TotalAnnualIncome:   income,
		TotalAnnualExpenses: expenses,
		Balance:             income - expenses,
		AccumulatedDebt:     debt,
		ExpenseAllocations: map[world.ExpenseCategory]int64{
			world.ExpenseEducation:           400_000,
			world.ExpenseAdministration:      100_000,
			world.ExpenseEconomicDevelopment: 50_000,
			world.ExpenseDebtServicing:       20_000,
		},
	}
	return snap
}

func TestTriageLevels(t *testing.T) {
	assert.Equal(t, CrisisHealthy, Triage(snapshotWith(1_000_000, 900_000, 0)).CrisisLevel)
	assert.Equal(t, CrisisWatch, Triage(snapshotWith(1_000_000, 1_010_000, 0)).CrisisLevel)
	assert.Equal(t, CrisisWarning, Triage(snapshotWith(1_000_000, 1_050_000, 0)).CrisisLevel)
	assert.Equal(t, CrisisCritical, Triage(snapshotWith(1_000_000, 1_200_000, 0)).CrisisLevel)
	assert.Equal(t, CrisisCritical, Triage(snapshotWith(1_000_000, 900_000, 1_500_000)).CrisisLevel)

	h := Triage(snapshotWith(1_000_000, 1_050_000, 0))
	assert.InDelta(t, 0.05, h.DeficitRatio, 1e-9)

	unhappy := snapshotWith(1_000_000, 900_000, 0)
	unhappy.City.Stats.OverallCitizenMood = "Very Unhappy"
	assert.Equal(t, CrisisWarning, Triage(unhappy).CrisisLevel)
}

func TestRuleDecision(t *testing.T) {
	snap := snapshotWith(1_000_000, 1_200_000, 0)
	d := RuleDecision(snap, Triage(snap))
	require.Equal(t, ActionTax, d.Action)
	assert.Equal(t, "property", d.Intervention.Tax)
	assert.InDelta(t, 0.0125, d.Intervention.Rate, 1e-9)

	snap = snapshotWith(1_000_000, 1_050_000, 0)
	d = RuleDecision(snap, Triage(snap))
	require.Equal(t, ActionAllocation, d.Action)
	assert.Equal(t, string(world.ExpenseEducation), d.Intervention.Category)
	assert.EqualValues(t, 380_000, d.Intervention.Amount)

	snap = snapshotWith(1_000_000, 900_000, 0)
	snap.City.Stats.UnemploymentRate = 12
	d = RuleDecision(snap, Triage(snap))
	require.Equal(t, ActionAllocation, d.Action)
	assert.Equal(t, string(world.ExpenseEconomicDevelopment), d.Intervention.Category)
	assert.EqualValues(t, 52_500, d.Intervention.Amount)

	snap = snapshotWith(1_000_000, 900_000, 0)
	d = RuleDecision(snap, Triage(snap))
	assert.Equal(t, ActionNone, d.Action)
	assert.Nil(t, d.Intervention)
}

func TestGuardrails(t *testing.T) {
	snap := snapshotWith(1_000_000, 900_000, 0)

	d := &Decision{Action: ActionAllocation, Intervention: &Intervention{Category: "education", Amount: 900_000, Tax: "sales"}}
	require.NoError(t, enforceGuardrails(d, snap))
	assert.EqualValues(t, 440_000, d.Intervention.Amount, "capped at +10%")
	assert.Equal(t, ActionAllocation, d.Intervention.Type)
	assert.Empty(t, d.Intervention.Tax)

	d = &Decision{Action: ActionAllocation, Intervention: &Intervention{Category: "administration", Amount: -5}}
	require.NoError(t, enforceGuardrails(d, snap))
	assert.EqualValues(t, 90_000, d.Intervention.Amount, "capped at -10%")

	d = &Decision{Action: ActionTax, Intervention: &Intervention{Tax: "sales", Rate: 0.5}}
	require.NoError(t, enforceGuardrails(d, snap))
	assert.InDelta(t, 0.025, d.Intervention.Rate, 1e-9)

	assert.Error(t, enforceGuardrails(&Decision{Action: ActionAllocation, Intervention: &Intervention{Category: "debtServicing"}}, snap))
	assert.Error(t, enforceGuardrails(&Decision{Action: ActionAllocation, Intervention: &Intervention{Category: "moonbase"}}, snap))
	assert.Error(t, enforceGuardrails(&Decision{Action: ActionTax, Intervention: &Intervention{Tax: "hat"}}, snap))
	assert.ErrorIs(t, enforceGuardrails(&Decision{Action: ActionTax}, snap), errNoPayload)
	assert.Error(t, enforceGuardrails(&Decision{Action: "bailout"}, snap))

	d = &Decision{Action: ActionNone, Intervention: &Intervention{Category: "education"}}
	require.NoError(t, enforceGuardrails(d, snap))
	assert.Nil(t, d.Intervention)
}

func TestMemoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steward.json")
	mem := LoadMemory(path)
	assert.Empty(t, mem.Records)
	assert.Empty(t, mem.FormatForPrompt())

	for m := uint64(1); m <= maxRecords+3; m++ {
		mem.Record(CycleRecord{Month: m, Action: ActionNone, CrisisLevel: CrisisHealthy})
	}
	require.NoError(t, mem.Save())

	loaded := LoadMemory(path)
	require.Len(t, loaded.Records, maxRecords)
	assert.EqualValues(t, 4, loaded.Records[0].Month)
	assert.Contains(t, loaded.FormatForPrompt(), "Month 15")
	assert.NotContains(t, loaded.FormatForPrompt(), "Month 10:")
}

func TestCycleAgainstAPI(t *testing.T) {
	sim := engine.NewSimulation(engine.NewCampaign(entropy.New(3), engine.CampaignParams{
		StatePopulation: 300_000,
		PlayerName:      "Dana Cole",
	}), nil)

	// Push the city deep into deficit.
	var income int64
	var property float64
	sim.View(func(st *engine.State) {
		income = st.City.Stats.Budget.TotalAnnualIncome
		property = st.City.Stats.Budget.TaxRates.Property
	})
	require.Less(t, property+ruleTaxRaise, MaxTaxRate)
	_, err := sim.EditAllocation(string(world.ExpenseAdministration), income)
	require.NoError(t, err)

	srv := httptest.NewServer((&api.Server{Sim: sim, AdminKey: "k"}).Handler())
	defer srv.Close()

	s := New(srv.URL, "k", nil, nil)
	require.NoError(t, s.WaitForAPI(context.Background(), 0))

	rec, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, CrisisCritical, rec.CrisisLevel)
	assert.Equal(t, ActionTax, rec.Action)
	assert.Equal(t, "property", rec.Target)
	assert.Len(t, s.Memory.Records, 1)

	sim.View(func(st *engine.State) {
		assert.InDelta(t, property+ruleTaxRaise, st.City.Stats.Budget.TaxRates.Property, 1e-4)
	})

	bad := New(srv.URL, "wrong", nil, nil)
	_, err = bad.RunCycle(context.Background())
	assert.ErrorContains(t, err, "401")
}
