package legislation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

var (
	ErrNotPassed     = errors.New("bill has not passed")
	ErrUnknownTarget = errors.New("unknown policy target")
)

// Tax rate bounds applied after a change.
const (
	minTaxRate = 0
	maxTaxRate = 0.1
)

// Vote has every council member vote on a bill. Members support bills near
// their own position and their party's bills; the author always votes yes.
// A simple majority passes.
func Vote(src *entropy.Source, b *Bill, council []*politics.Politician, now time.Time) {
	b.VotesFor, b.VotesAgainst = 0, 0
	for _, m := range council {
		support := 0.9 - m.IdeologyScores.Distance(b.Axes)*0.5
		if m.PartyID != "" && m.PartyID == b.PartyID {
			support += 0.3
		}
		if m.ID == b.AuthorID || src.Chance(clamp01(support)) {
			b.VotesFor++
		} else {
			b.VotesAgainst++
		}
	}
	b.Status = StatusFailed
	if b.VotesFor > b.VotesAgainst {
		b.Status = StatusPassed
	}
	b.DecidedOn = now
}

// Enact applies a passed bill to a copy of the city and returns it. The
// budget is reconciled and income recomputed from any new tax rates.
func Enact(city *world.City, b *Bill) (*world.City, error) {
	if b.Status != StatusPassed {
		return nil, fmt.Errorf("enact %s: %w", b.ID, ErrNotPassed)
	}
	next := city.Clone()
	for _, ch := range b.Changes {
		if err := Apply(next, ch); err != nil {
			return nil, fmt.Errorf("enact %s: %w", b.ID, err)
		}
	}
	b.Status = StatusEnacted
	return next, nil
}

// Apply makes one change to the city in place.
func Apply(c *world.City, ch PolicyChange) error {
	budget := &c.Stats.Budget
	switch ch.Kind {
	case KindTaxRate:
		var rate *float64
		switch ch.Target {
		case "property":
			rate = &budget.TaxRates.Property
		case "sales":
			rate = &budget.TaxRates.Sales
		case "business":
			rate = &budget.TaxRates.Business
		case "income":
			rate = &budget.TaxRates.Income
		default:
			return fmt.Errorf("%w: tax %q", ErrUnknownTarget, ch.Target)
		}
		*rate = math.Round(math.Max(minTaxRate, math.Min(maxTaxRate, *rate+ch.Delta))*10000) / 10000
		budget.IncomeSources = world.ComputeIncome(c.Population, c.EconomicProfile, budget.TaxRates, budget.PerCapitaRevenue)

	case KindAllocation:
		cat := world.ExpenseCategory(ch.Target)
		if !world.IsExpenseCategory(cat) {
			return fmt.Errorf("%w: expense %q", ErrUnknownTarget, ch.Target)
		}
		cur := budget.ExpenseAllocations[cat]
		budget.ExpenseAllocations[cat] = max(int64(math.Round(float64(cur)*(1+ch.Delta))), 0)

	case KindLaw:
		if err := applyLaw(&c.Laws, ch.Target, ch.Value); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: kind %q", ErrUnknownTarget, ch.Kind)
	}
	budget.Reconcile()
	return nil
}

func applyLaw(l *world.Laws, target, value string) error {
	switch target {
	case "minimum_wage":
		// A leading sign means relative to the current wage.
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("minimum wage %q: %w", value, err)
		}
		if strings.HasPrefix(value, "+") || strings.HasPrefix(value, "-") {
			v += l.MinimumWage
		}
		l.MinimumWage = math.Round(math.Max(v, 0)*100) / 100
		return nil
	case "speed_limit_urban":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("speed limit %q: %w", value, err)
		}
		l.SpeedLimitUrban = v
		return nil
	}

	flag, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("law %s value %q: %w", target, value, err)
	}
	switch target {
	case "rent_control":
		l.RentControl = flag
	case "plastic_bag_ban":
		l.PlasticBagBan = flag
	case "public_smoking_ban":
		l.PublicSmokingBan = flag
	case "youth_curfew":
		l.YouthCurfew = flag
	case "short_term_rental_limit":
		l.ShortTermRentalLimit = flag
	default:
		return fmt.Errorf("%w: law %q", ErrUnknownTarget, target)
	}
	return nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
