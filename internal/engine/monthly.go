package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// Status says what a monthly step did.
type Status string

const (
	StatusApplied   Status = "applied"   // state changed
	StatusUnchanged Status = "unchanged" // ran, nothing to change
	StatusSkipped   Status = "skipped"   // precondition failed, see Reason
)

// Result reports one monthly step.
type Result struct {
	Step   string   `json:"step"`
	Status Status   `json:"status"`
	Reason string   `json:"reason,omitempty"`
	News   []string `json:"news,omitempty"`
}

func skipped(step, reason string) Result {
	return Result{Step: step, Status: StatusSkipped, Reason: reason}
}

// Monthly step tuning.
const (
	BillProposalChance    = 0.15
	PopularityShift       = 0.25
	MinPartyPopularity    = 0.5
	MaxPartyPopularity    = 95.0
	ApprovalJitter        = 1.0
	NonMayorApprovalScale = 0.5
)

// approvalDelta is indexed by the citizen mood level.
var approvalDelta = [...]float64{-2, -1, 0, 1, 2, 3}

// RunMonthlyBudgetUpdate recomputes income from current rates, takes
// expenses as the literal sum of current allocations and moves the debt by
// the balance, never below zero. A nil budget means nothing changed.
func RunMonthlyBudgetUpdate(city *world.City) (*world.Budget, Result) {
	const step = "budget"
	if city == nil {
		return nil, skipped(step, "no city")
	}
	old := city.Stats.Budget
	if old.IncomeSources == nil || old.ExpenseAllocations == nil {
		return nil, skipped(step, "no budget")
	}

	next := old.Clone()
	next.IncomeSources = world.ComputeIncome(city.Population, city.EconomicProfile, next.TaxRates, next.PerCapitaRevenue)
	next.Reconcile()
	next.AccumulatedDebt = max(next.AccumulatedDebt-next.Balance, 0)

	if next.TotalAnnualIncome == old.TotalAnnualIncome &&
		next.TotalAnnualExpenses == old.TotalAnnualExpenses &&
		next.Balance == old.Balance &&
		next.AccumulatedDebt == old.AccumulatedDebt {
		return nil, Result{Step: step, Status: StatusUnchanged}
	}

	res := Result{Step: step, Status: StatusApplied}
	switch {
	case next.Balance < 0:
		res.News = append(res.News, fmt.Sprintf("%s runs a deficit of %s; debt now %s",
			city.Name, humanize.Comma(-next.Balance), humanize.Comma(next.AccumulatedDebt)))
	case old.AccumulatedDebt > 0 && next.AccumulatedDebt == 0:
		res.News = append(res.News, fmt.Sprintf("%s has paid off its debt", city.Name))
	}
	return &next, res
}

// RunMonthlyStatUpdate recomputes the numeric indicators and moves each
// qualitative rating at most one level.
func RunMonthlyStatUpdate(src *entropy.Source, city *world.City) (*world.City, Result) {
	const step = "stats"
	if city == nil {
		return nil, skipped(step, "no city")
	}
	next := city.Clone()
	s := &next.Stats

	// GDP drifts with the outlook.
	if idx := world.LevelIndex(world.EconomicOutlookLevels, s.EconomicOutlook); idx >= 0 {
		growth := float64(idx-2)*0.0015 + src.FloatRange(-0.002, 0.002)
		gdp := float64(next.EconomicProfile.GDPPerCapita) * (1 + growth)
		next.EconomicProfile.GDPPerCapita = max(int64(math.Round(gdp)), 12_000)
	}

	world.RecalculateIndicators(next)

	switch {
	case s.UnemploymentRate < 4.0:
		s.EconomicOutlook = world.StepLevel(world.EconomicOutlookLevels, s.EconomicOutlook, 1)
	case s.UnemploymentRate > 8.0:
		s.EconomicOutlook = world.StepLevel(world.EconomicOutlookLevels, s.EconomicOutlook, -1)
	}

	s.OverallCitizenMood = world.StepLevel(world.CitizenMoodLevels, s.OverallCitizenMood, moodSignal(s))

	target := world.LevelIndex(world.EducationQualityLevels, world.EducationQualityFor(s.PovertyRate, next.Demographics.EducationLevels))
	current := world.LevelIndex(world.EducationQualityLevels, s.EducationQuality)
	s.EducationQuality = world.StepLevel(world.EducationQualityLevels, s.EducationQuality, target-current)

	s.Wealth = world.WealthTier(next.EconomicProfile.GDPPerCapita, next.Demographics.EducationLevels)

	res := Result{Step: step, Status: StatusApplied}
	old := city.Stats
	if s.EconomicOutlook != old.EconomicOutlook {
		res.News = append(res.News, fmt.Sprintf("Economic outlook in %s is now %s", city.Name, s.EconomicOutlook))
	}
	if s.OverallCitizenMood != old.OverallCitizenMood {
		res.News = append(res.News, fmt.Sprintf("Residents of %s are now %s", city.Name, s.OverallCitizenMood))
	}
	return next, res
}

// moodSignal sums the outlook, crime, poverty and healthcare signals.
func moodSignal(s *world.Stats) int {
	signal := 0
	outlook := world.LevelIndex(world.EconomicOutlookLevels, s.EconomicOutlook)
	switch {
	case outlook >= 4:
		signal++
	case outlook >= 0 && outlook <= 1:
		signal--
	}
	switch {
	case s.CrimeRatePer1000 > 50:
		signal--
	case s.CrimeRatePer1000 < 15:
		signal++
	}
	switch {
	case s.PovertyRate > 20:
		signal--
	case s.PovertyRate < 8:
		signal++
	}
	switch {
	case s.HealthcareCoverage < 70:
		signal--
	case s.HealthcareCoverage > 90:
		signal++
	}
	return signal
}

// RunAIBillProposals gives each non-player council member a chance to
// propose a bill. Bills drafted this month count as existing so no two
// members propose the same thing.
func RunAIBillProposals(src *entropy.Source, author legislation.Author, council []*politics.Politician,
	city *world.City, pending []*legislation.Bill, now time.Time) ([]*legislation.Bill, Result) {
	const step = "bills"
	if author == nil {
		return nil, skipped(step, "no bill author")
	}
	if len(council) == 0 {
		return nil, skipped(step, "no council")
	}

	var drafted []*legislation.Bill
	for _, m := range council {
		if m.IsPlayer || !src.Chance(BillProposalChance) {
			continue
		}
		existing := append(append([]*legislation.Bill(nil), pending...), drafted...)
		if b, ok := author.DraftBill(src, m, city, existing, now); ok {
			drafted = append(drafted, b)
		}
	}

	if len(drafted) == 0 {
		return nil, Result{Step: step, Status: StatusUnchanged}
	}
	res := Result{Step: step, Status: StatusApplied}
	for _, b := range drafted {
		res.News = append(res.News, fmt.Sprintf("%s introduces the %s", b.AuthorName, b.Title))
	}
	return drafted, res
}

// RunMonthlyPartyPopularityUpdate drifts each party, rewards or punishes the
// incumbent party for the city's condition and renormalizes to 100.
func RunMonthlyPartyPopularityUpdate(src *entropy.Source, landscape []*politics.Party, incumbentPartyID string, city *world.City) ([]*politics.Party, Result) {
	const step = "parties"
	if len(landscape) == 0 {
		return nil, skipped(step, "no political landscape")
	}

	next := politics.CloneLandscape(landscape)
	var poverty, crime, unemployment float64
	if city != nil {
		poverty = city.Stats.PovertyRate
		crime = city.Stats.CrimeRatePer1000
		unemployment = city.Stats.UnemploymentRate
	}

	for _, p := range next {
		p.Popularity += src.FloatRange(-PopularityShift, PopularityShift)

		incumbent := incumbentPartyID != "" && p.ID == incumbentPartyID
		if city != nil {
			if poverty > 20 {
				p.Popularity += pick(incumbent, -0.5, 0.3)
			}
			if crime > 50 {
				p.Popularity += pick(incumbent, -0.4, 0.2)
			}
			if unemployment > 8 {
				p.Popularity += pick(incumbent, -0.4, 0.2)
			}
			if incumbent && poverty < 8 && unemployment < 4 {
				p.Popularity += 0.3
			}
		}
		p.Popularity = math.Max(MinPartyPopularity, math.Min(MaxPartyPopularity, p.Popularity))
	}
	politics.NormalizePartyPopularities(next, politics.DefaultMinPopularity)

	return next, Result{Step: step, Status: StatusApplied}
}

func pick(incumbent bool, ifIncumbent, otherwise float64) float64 {
	if incumbent {
		return ifIncumbent
	}
	return otherwise
}

// RunMonthlyPlayerApprovalUpdate moves the player's approval by the mood
// table, halved when the player is not mayor, plus jitter, within [0,100].
func RunMonthlyPlayerApprovalUpdate(src *entropy.Source, player *politics.Politician, mood string, holdsMayoralty bool) (float64, Result) {
	const step = "approval"
	if player == nil {
		return 0, skipped(step, "no player")
	}
	idx := world.LevelIndex(world.CitizenMoodLevels, mood)
	if idx < 0 || idx >= len(approvalDelta) {
		return player.ApprovalRating, skipped(step, fmt.Sprintf("unknown mood %q", mood))
	}

	delta := approvalDelta[idx]
	if !holdsMayoralty {
		delta *= NonMayorApprovalScale
	}
	delta += src.FloatRange(-ApprovalJitter, ApprovalJitter)

	approval := math.Max(0, math.Min(100, player.ApprovalRating+delta))
	return approval, Result{Step: step, Status: StatusApplied}
}
