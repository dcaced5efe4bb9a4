package steward

import (
	"github.com/talgya/civic-sim/internal/world"
)

// Crisis levels, most severe first.
const (
	CrisisCritical = "CRITICAL"
	CrisisWarning  = "WARNING"
	CrisisWatch    = "WATCH"
	CrisisHealthy  = "HEALTHY"
)

// Health holds derived fiscal and social signals computed from a Snapshot.
// Runs before any LLM call; deterministic and free.
type Health struct {
	Balance      int64
	Debt         int64
	DeficitRatio float64 // deficit as a fraction of income, 0 when in surplus
	DebtRatio    float64 // debt as a fraction of income
	Unemployment float64
	Poverty      float64
	Crime        float64
	Mood         string
	CrisisLevel  string
}

// Triage computes the city's Health from the snapshot.
func Triage(snap *Snapshot) *Health {
	s := snap.City.Stats
	b := s.Budget
	h := &Health{
		Balance:      b.Balance,
		Debt:         b.AccumulatedDebt,
		Unemployment: s.UnemploymentRate,
		Poverty:      s.PovertyRate,
		Crime:        s.CrimeRatePer1000,
		Mood:         s.OverallCitizenMood,
	}
	if income := float64(b.TotalAnnualIncome); income > 0 {
		if b.Balance < 0 {
			h.DeficitRatio = float64(-b.Balance) / income
		}
		h.DebtRatio = float64(b.AccumulatedDebt) / income
	} else if b.Balance < 0 {
		h.DeficitRatio = 1
	}

	h.CrisisLevel = CrisisHealthy
	switch {
	case h.DebtRatio > 1, h.DeficitRatio > 0.10:
		h.CrisisLevel = CrisisCritical
	case h.DeficitRatio > 0.03, h.Unemployment > 10, h.Mood == world.CitizenMoodLevels[0]:
		h.CrisisLevel = CrisisWarning
	case h.DeficitRatio > 0, h.Unemployment > 8, h.Poverty > 20:
		h.CrisisLevel = CrisisWatch
	}
	return h
}
