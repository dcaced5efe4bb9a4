// Static catalogues: industries, issues, rating levels and budget lines.
package world

// Industries a city economy can be dominated by.
var Industries = []string{
	"Technology", "Manufacturing", "Finance", "Healthcare", "Tourism",
	"Agriculture", "Retail", "Logistics", "Energy", "Education",
	"Construction", "Entertainment",
}

// MainIssues is the catalogue of citizen concerns. The names match policy
// question categories so alignment scoring can weight them.
var MainIssues = []string{
	"Crime", "Economy", "Education", "Healthcare", "Housing", "Infrastructure",
	"Environment", "Unemployment", "Taxes", "Public Transit", "Poverty",
}

// Ordered level lists. Index 0 is the worst rating.
var (
	WealthLevels           = []string{"Very Low", "Low", "Medium", "High", "Very High"}
	EconomicOutlookLevels  = []string{"Recession", "Struggling", "Stagnant", "Stable", "Growing", "Booming"}
	EducationQualityLevels = []string{"Very Poor", "Poor", "Average", "Good", "Excellent"}
	CitizenMoodLevels      = []string{"Very Unhappy", "Frustrated", "Concerned", "Content", "Optimistic", "Prospering"}
)

// City types by population.
const (
	TypeVillage    = "Village"
	TypeTown       = "Town"
	TypeCity       = "City"
	TypeMetropolis = "Metropolis"
	TypeState      = "State"
)

// CityType classifies a population.
func CityType(population int) string {
	switch {
	case population < 10_000:
		return TypeVillage
	case population < 50_000:
		return TypeTown
	case population < 250_000:
		return TypeCity
	default:
		return TypeMetropolis
	}
}

// LevelIndex returns the position of value in levels, or -1.
func LevelIndex(levels []string, value string) int {
	for i, l := range levels {
		if l == value {
			return i
		}
	}
	return -1
}

// StepLevel moves value at most one step along levels in the direction of
// delta's sign. Unknown values start from the middle of the list.
func StepLevel(levels []string, value string, delta int) string {
	idx := LevelIndex(levels, value)
	if idx < 0 {
		idx = len(levels) / 2
	}
	switch {
	case delta > 0 && idx < len(levels)-1:
		idx++
	case delta < 0 && idx > 0:
		idx--
	}
	return levels[idx]
}

// IncomeSource names a revenue line.
type IncomeSource string

const (
	IncomePropertyTax IncomeSource = "propertyTax"
	IncomeSalesTax    IncomeSource = "salesTax"
	IncomeBusinessTax IncomeSource = "businessTax"
	IncomeIncomeTax   IncomeSource = "incomeTax"
	IncomeFees        IncomeSource = "feesAndPermits"
	IncomeUtilities   IncomeSource = "utilityRevenue"
	IncomeGrants      IncomeSource = "intergovernmentalGrants"
	IncomeInvestment  IncomeSource = "investmentIncome"
)

// IncomeSources lists every revenue line in display order.
var IncomeSources = []IncomeSource{
	IncomePropertyTax, IncomeSalesTax, IncomeBusinessTax, IncomeIncomeTax,
	IncomeFees, IncomeUtilities, IncomeGrants, IncomeInvestment,
}

// ExpenseCategory names a spending line.
type ExpenseCategory string

const (
	ExpenseEducation           ExpenseCategory = "education"
	ExpensePublicSafety        ExpenseCategory = "publicSafety"
	ExpenseFireServices        ExpenseCategory = "fireServices"
	ExpenseHealthcare          ExpenseCategory = "healthcare"
	ExpenseInfrastructure      ExpenseCategory = "infrastructure"
	ExpensePublicTransit       ExpenseCategory = "publicTransit"
	ExpenseParks               ExpenseCategory = "parksAndRecreation"
	ExpenseSocialServices      ExpenseCategory = "socialServices"
	ExpenseHousing             ExpenseCategory = "housing"
	ExpenseEnvironment         ExpenseCategory = "environment"
	ExpenseEconomicDevelopment ExpenseCategory = "economicDevelopment"
	ExpenseAdministration      ExpenseCategory = "administration"
	ExpenseSanitation          ExpenseCategory = "sanitation"
	ExpenseCulture             ExpenseCategory = "culture"
	ExpenseDebtServicing       ExpenseCategory = "debtServicing"
	ExpenseMiscellaneous       ExpenseCategory = "miscellaneousExpenses"
)

// ProgramCategories are the spending lines shared out by weight.
var ProgramCategories = []ExpenseCategory{
	ExpenseEducation, ExpensePublicSafety, ExpenseFireServices, ExpenseHealthcare,
	ExpenseInfrastructure, ExpensePublicTransit, ExpenseParks, ExpenseSocialServices,
	ExpenseHousing, ExpenseEnvironment, ExpenseEconomicDevelopment, ExpenseAdministration,
	ExpenseSanitation, ExpenseCulture,
}

// ExpenseCategories lists every spending line in display order.
var ExpenseCategories = append(append([]ExpenseCategory{}, ProgramCategories...),
	ExpenseDebtServicing, ExpenseMiscellaneous)

// IssueExpense maps a main issue to the spending line it boosts.
var IssueExpense = map[string]ExpenseCategory{
	"Crime":          ExpensePublicSafety,
	"Economy":        ExpenseEconomicDevelopment,
	"Education":      ExpenseEducation,
	"Healthcare":     ExpenseHealthcare,
	"Housing":        ExpenseHousing,
	"Infrastructure": ExpenseInfrastructure,
	"Environment":    ExpenseEnvironment,
	"Unemployment":   ExpenseEconomicDevelopment,
	"Public Transit": ExpensePublicTransit,
	"Poverty":        ExpenseSocialServices,
}

// IsExpenseCategory reports whether c is a known spending line.
func IsExpenseCategory(c ExpenseCategory) bool {
	for _, e := range ExpenseCategories {
		if e == c {
			return true
		}
	}
	return false
}

func hasIndustry(industries []string, name string) bool {
	for _, i := range industries {
		if i == name {
			return true
		}
	}
	return false
}
