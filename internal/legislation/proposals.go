package legislation

import (
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// Proposal is a bill template an author can draft from.
type Proposal struct {
	ID      string         `json:"id" yaml:"id"`
	Title   string         `json:"title" yaml:"title"`
	Summary string         `json:"summary" yaml:"summary"`
	Issue   string         `json:"issue" yaml:"issue"`
	Axes    politics.Axes  `json:"axes" yaml:"axes"`
	Changes []PolicyChange `json:"changes" yaml:"changes"`
}

func alloc(cat world.ExpenseCategory, delta float64) PolicyChange {
	return PolicyChange{Kind: KindAllocation, Target: string(cat), Delta: delta}
}

func tax(target string, delta float64) PolicyChange {
	return PolicyChange{Kind: KindTaxRate, Target: target, Delta: delta}
}

func law(target, value string) PolicyChange {
	return PolicyChange{Kind: KindLaw, Target: target, Value: value}
}

// Proposals is the built-in catalogue.
var Proposals = []Proposal{
	{
		ID: "police_expansion", Title: "Safer Streets Act", Issue: "Crime",
		Summary: "Expands the police budget to hire additional patrol officers.",
		Axes:    politics.Axes{Economic: 0.2, Social: 0.7},
		Changes: []PolicyChange{alloc(world.ExpensePublicSafety, 0.15)},
	},
	{
		ID: "violence_prevention", Title: "Community Violence Prevention Act", Issue: "Crime",
		Summary: "Funds outreach and youth programmes in high-crime neighbourhoods.",
		Axes:    politics.Axes{Economic: -0.5, Social: -0.5},
		Changes: []PolicyChange{alloc(world.ExpenseSocialServices, 0.10), alloc(world.ExpensePublicSafety, -0.05)},
	},
	{
		ID: "business_tax_cut", Title: "Main Street Competitiveness Act", Issue: "Economy",
		Summary: "Lowers the business tax rate to attract employers.",
		Axes:    politics.Axes{Economic: 0.8, Social: 0.1},
		Changes: []PolicyChange{tax("business", -0.005)},
	},
	{
		ID: "school_investment", Title: "Classrooms First Act", Issue: "Education",
		Summary: "Raises school funding, paid for by a small property tax increase.",
		Axes:    politics.Axes{Economic: -0.6, Social: -0.3},
		Changes: []PolicyChange{alloc(world.ExpenseEducation, 0.12), tax("property", 0.0005)},
	},
	{
		ID: "clinic_network", Title: "Neighbourhood Clinics Act", Issue: "Healthcare",
		Summary: "Expands municipal clinics and community health workers.",
		Axes:    politics.Axes{Economic: -0.7, Social: -0.3},
		Changes: []PolicyChange{alloc(world.ExpenseHealthcare, 0.15)},
	},
	{
		ID: "rent_stabilization", Title: "Tenant Protection Ordinance", Issue: "Housing",
		Summary: "Introduces rent stabilization for existing units.",
		Axes:    politics.Axes{Economic: -0.8, Social: -0.4},
		Changes: []PolicyChange{law("rent_control", "true")},
	},
	{
		ID: "housing_supply", Title: "Build More Homes Act", Issue: "Housing",
		Summary: "Funds housing construction and lifts short-term rental limits.",
		Axes:    politics.Axes{Economic: 0.5, Social: -0.2},
		Changes: []PolicyChange{alloc(world.ExpenseHousing, 0.10), law("short_term_rental_limit", "false")},
	},
	{
		ID: "road_repair", Title: "Fix Our Roads Act", Issue: "Infrastructure",
		Summary: "A multi-year programme of road and bridge repair.",
		Axes:    politics.Axes{Economic: 0.1, Social: 0.2},
		Changes: []PolicyChange{alloc(world.ExpenseInfrastructure, 0.12)},
	},
	{
		ID: "green_city", Title: "Clean Air and Plastic Reduction Act", Issue: "Environment",
		Summary: "Bans single-use plastic bags and funds environmental programmes.",
		Axes:    politics.Axes{Economic: -0.3, Social: -0.5},
		Changes: []PolicyChange{law("plastic_bag_ban", "true"), alloc(world.ExpenseEnvironment, 0.10)},
	},
	{
		ID: "jobs_programme", Title: "Good Jobs Act", Issue: "Unemployment",
		Summary: "Job training and hiring incentives for local employers.",
		Axes:    politics.Axes{Economic: 0.0, Social: 0.0},
		Changes: []PolicyChange{alloc(world.ExpenseEconomicDevelopment, 0.15)},
	},
	{
		ID: "property_tax_relief", Title: "Homeowner Relief Act", Issue: "Taxes",
		Summary: "Cuts the property tax rate and trims administration.",
		Axes:    politics.Axes{Economic: 0.7, Social: 0.3},
		Changes: []PolicyChange{tax("property", -0.001), alloc(world.ExpenseAdministration, -0.08)},
	},
	{
		ID: "transit_expansion", Title: "Connected City Transit Act", Issue: "Public Transit",
		Summary: "Expands bus frequency and plans a new rail line.",
		Axes:    politics.Axes{Economic: -0.5, Social: -0.4},
		Changes: []PolicyChange{alloc(world.ExpensePublicTransit, 0.15), tax("sales", 0.0025)},
	},
	{
		ID: "anti_poverty", Title: "Fair Start Act", Issue: "Poverty",
		Summary: "Raises the minimum wage and expands social services.",
		Axes:    politics.Axes{Economic: -0.8, Social: -0.3},
		Changes: []PolicyChange{law("minimum_wage", "+1.00"), alloc(world.ExpenseSocialServices, 0.10)},
	},
	{
		ID: "youth_curfew", Title: "Safe Nights Ordinance", Issue: "Crime",
		Summary: "Introduces a night-time curfew for minors.",
		Axes:    politics.Axes{Economic: 0.1, Social: 0.8},
		Changes: []PolicyChange{law("youth_curfew", "true")},
	},
}

// ProposalByID looks up a catalogue entry.
func ProposalByID(id string) (Proposal, bool) {
	for _, p := range Proposals {
		if p.ID == id {
			return p, true
		}
	}
	return Proposal{}, false
}
