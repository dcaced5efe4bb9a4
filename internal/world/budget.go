// Municipal finance: revenue lines, spending allocations and debt.
package world

import (
	"math"

	"github.com/talgya/civic-sim/internal/apportion"
	"github.com/talgya/civic-sim/internal/entropy"
)

// TaxRates are fractions applied to their respective bases.
type TaxRates struct {
	Property float64 `json:"property"`
	Sales    float64 `json:"sales"`
	Business float64 `json:"business"`
	Income   float64 `json:"income"`
}

// PerCapitaRevenue holds the non-tax revenue lines as yearly amounts per resident.
type PerCapitaRevenue struct {
	Fees       float64 `json:"fees"`
	Utilities  float64 `json:"utilities"`
	Grants     float64 `json:"grants"`
	Investment float64 `json:"investment"`
}

// Budget is a jurisdiction's yearly finances. ExpenseAllocations always sum
// to TotalAnnualExpenses and Balance is income minus expenses.
type Budget struct {
	TaxRates           TaxRates                  `json:"taxRates"`
	PerCapitaRevenue   PerCapitaRevenue          `json:"perCapitaRevenue"`
	IncomeSources      map[IncomeSource]int64    `json:"incomeSources"`
	ExpenseAllocations map[ExpenseCategory]int64 `json:"expenseAllocations"`

	TotalAnnualIncome   int64 `json:"totalAnnualIncome"`
	TotalAnnualExpenses int64 `json:"totalAnnualExpenses"`
	Balance             int64 `json:"balance"`
	AccumulatedDebt     int64 `json:"accumulatedDebt"`
}

// ComputeIncome derives every revenue line from the economy and the rates.
func ComputeIncome(population int, econ EconomicProfile, rates TaxRates, pc PerCapitaRevenue) map[IncomeSource]int64 {
	pop := float64(max(population, 1))
	output := pop * float64(econ.GDPPerCapita)

	sales := output * 0.35 * rates.Sales
	if hasIndustry(econ.DominantIndustries, "Tourism") || hasIndustry(econ.DominantIndustries, "Retail") {
		sales *= 1.10
	}
	business := output * 0.12 * rates.Business
	if hasIndustry(econ.DominantIndustries, "Finance") || hasIndustry(econ.DominantIndustries, "Technology") {
		business *= 1.20
	}

	return map[IncomeSource]int64{
		IncomePropertyTax: round64(output * 3 * rates.Property),
		IncomeSalesTax:    round64(sales),
		IncomeBusinessTax: round64(business),
		IncomeIncomeTax:   round64(output * 0.6 * rates.Income),
		IncomeFees:        round64(pop * pc.Fees),
		IncomeUtilities:   round64(pop * pc.Utilities),
		IncomeGrants:      round64(pop * pc.Grants),
		IncomeInvestment:  round64(pop * pc.Investment),
	}
}

// GenerateInitialBudget draws tax rates and spending shares, then reconciles
// the budget so allocations sum exactly to the total.
func GenerateInitialBudget(src *entropy.Source, population int, econ EconomicProfile, mainIssues []string) Budget {
	population = max(population, 1)
	b := Budget{
		TaxRates: TaxRates{
			Property: round4(src.FloatRange(0.008, 0.015)),
			Sales:    round4(src.FloatRange(0.04, 0.08)),
			Business: round4(src.FloatRange(0.02, 0.05)),
			Income:   round4(src.FloatRange(0, 0.03)),
		},
		PerCapitaRevenue: PerCapitaRevenue{
			Fees:       math.Round(src.FloatRange(25, 40)),
			Utilities:  math.Round(src.FloatRange(40, 70)),
			Grants:     math.Round(src.FloatRange(100, 250)),
			Investment: math.Round(src.FloatRange(5, 15)),
		},
	}
	b.IncomeSources = ComputeIncome(population, econ, b.TaxRates, b.PerCapitaRevenue)
	b.TotalAnnualIncome = SumIncome(b.IncomeSources)

	// Per-capita spending, kept within 20% of income either way.
	income := float64(b.TotalAnnualIncome)
	target := float64(population) * float64(econ.GDPPerCapita) * src.FloatRange(0.045, 0.075)
	target = math.Max(income*0.8, math.Min(income*1.2, target))
	totalExpenses := round64(target)

	if gap := totalExpenses - b.TotalAnnualIncome; gap > 0 {
		b.AccumulatedDebt = gap
	}
	debtServicing := round64(float64(b.AccumulatedDebt) * src.FloatRange(0.04, 0.08))
	misc := round64(float64(totalExpenses) * src.FloatRange(0.01, 0.03))
	program := max(totalExpenses-debtServicing-misc, 0)

	weights := programWeights(src, mainIssues)
	amounts := apportion.Apportion(apportion.Weights(weights...), program)

	b.ExpenseAllocations = make(map[ExpenseCategory]int64, len(ExpenseCategories))
	var allocated int64
	for i, cat := range ProgramCategories {
		b.ExpenseAllocations[cat] = amounts[i]
		allocated += amounts[i]
	}
	b.ExpenseAllocations[ExpenseDebtServicing] = debtServicing
	allocated += debtServicing
	b.ExpenseAllocations[ExpenseMiscellaneous] = max(totalExpenses-allocated, 0)

	b.Reconcile()
	return b
}

// programWeights draws a share for each programme category, normalizes them
// to 100 points and boosts the categories tied to main issues.
func programWeights(src *entropy.Source, mainIssues []string) []float64 {
	raw := make([]float64, len(ProgramCategories))
	total := 0.0
	for i := range raw {
		raw[i] = src.FloatRange(3, 10)
		total += raw[i]
	}
	for i := range raw {
		raw[i] = raw[i] / total * 100
	}

	for _, issue := range mainIssues {
		cat, ok := IssueExpense[issue]
		if !ok {
			continue
		}
		for i, c := range ProgramCategories {
			if c == cat {
				raw[i] = math.Min(raw[i]+float64(src.IntRange(2, 4)), 25)
			}
		}
	}
	return raw
}

// Reconcile recomputes totals and balance from the line items.
func (b *Budget) Reconcile() {
	b.TotalAnnualIncome = SumIncome(b.IncomeSources)
	b.TotalAnnualExpenses = SumExpenses(b.ExpenseAllocations)
	b.Balance = b.TotalAnnualIncome - b.TotalAnnualExpenses
}

// Clone deep-copies the budget.
func (b Budget) Clone() Budget {
	out := b
	out.IncomeSources = make(map[IncomeSource]int64, len(b.IncomeSources))
	for k, v := range b.IncomeSources {
		out.IncomeSources[k] = v
	}
	out.ExpenseAllocations = make(map[ExpenseCategory]int64, len(b.ExpenseAllocations))
	for k, v := range b.ExpenseAllocations {
		out.ExpenseAllocations[k] = v
	}
	return out
}

// PerCapitaSpending is the yearly spend on a category per resident.
func (b Budget) PerCapitaSpending(cat ExpenseCategory, population int) float64 {
	return float64(b.ExpenseAllocations[cat]) / float64(max(population, 1))
}

// SumIncome totals revenue lines.
func SumIncome(m map[IncomeSource]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

// SumExpenses totals spending lines.
func SumExpenses(m map[ExpenseCategory]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

func round64(v float64) int64 { return int64(math.Round(v)) }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
