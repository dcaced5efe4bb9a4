// Policy questions: the stances politicians hold and the electorate prefers.
package politics

// PolicyOption is one answer to a policy question.
type PolicyOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Axes  Axes   `json:"axes"`
}

// PolicyQuestion is a question with a category matching a city main issue.
type PolicyQuestion struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Category string         `json:"category"`
	Options  []PolicyOption `json:"options"`
}

// PolicyQuestions is the fixed stance catalogue.
var PolicyQuestions = []PolicyQuestion{
	{
		ID: "policing", Text: "How should the city approach policing?", Category: "Crime",
		Options: []PolicyOption{
			{ID: "expand_police", Label: "Hire more officers", Axes: Axes{Economic: 0.2, Social: 0.8}},
			{ID: "community_policing", Label: "Community policing", Axes: Axes{Economic: 0.0, Social: 0.0}},
			{ID: "reallocate_police", Label: "Shift funds to social services", Axes: Axes{Economic: -0.6, Social: -0.8}},
		},
	},
	{
		ID: "business_tax", Text: "What should happen to business taxes?", Category: "Economy",
		Options: []PolicyOption{
			{ID: "cut_business_tax", Label: "Cut business taxes", Axes: Axes{Economic: 0.9, Social: 0.1}},
			{ID: "keep_business_tax", Label: "Keep rates stable", Axes: Axes{Economic: 0.1, Social: 0.0}},
			{ID: "raise_business_tax", Label: "Raise business taxes", Axes: Axes{Economic: -0.8, Social: -0.2}},
		},
	},
	{
		ID: "school_funding", Text: "How should public schools be funded?", Category: "Education",
		Options: []PolicyOption{
			{ID: "increase_school_funding", Label: "Increase public school budgets", Axes: Axes{Economic: -0.6, Social: -0.3}},
			{ID: "school_choice", Label: "Vouchers and school choice", Axes: Axes{Economic: 0.7, Social: 0.5}},
			{ID: "performance_funding", Label: "Tie funding to results", Axes: Axes{Economic: 0.3, Social: 0.1}},
		},
	},
	{
		ID: "public_health", Text: "What role should the city play in healthcare?", Category: "Healthcare",
		Options: []PolicyOption{
			{ID: "municipal_clinics", Label: "Expand municipal clinics", Axes: Axes{Economic: -0.8, Social: -0.3}},
			{ID: "subsidize_private", Label: "Subsidize private providers", Axes: Axes{Economic: 0.4, Social: 0.1}},
			{ID: "minimal_role", Label: "Leave it to the market", Axes: Axes{Economic: 0.9, Social: 0.3}},
		},
	},
	{
		ID: "housing", Text: "How should the city address housing costs?", Category: "Housing",
		Options: []PolicyOption{
			{ID: "rent_control", Label: "Rent control", Axes: Axes{Economic: -0.8, Social: -0.4}},
			{ID: "upzoning", Label: "Loosen zoning to build more", Axes: Axes{Economic: 0.6, Social: -0.3}},
			{ID: "preserve_neighbourhoods", Label: "Preserve neighbourhood character", Axes: Axes{Economic: 0.2, Social: 0.7}},
		},
	},
	{
		ID: "roads", Text: "What should infrastructure money prioritize?", Category: "Infrastructure",
		Options: []PolicyOption{
			{ID: "road_repair", Label: "Road and bridge repair", Axes: Axes{Economic: 0.3, Social: 0.4}},
			{ID: "green_infrastructure", Label: "Green infrastructure", Axes: Axes{Economic: -0.4, Social: -0.6}},
			{ID: "public_private", Label: "Public-private partnerships", Axes: Axes{Economic: 0.8, Social: 0.0}},
		},
	},
	{
		ID: "emissions", Text: "Should the city regulate emissions?", Category: "Environment",
		Options: []PolicyOption{
			{ID: "strict_emissions", Label: "Strict local limits", Axes: Axes{Economic: -0.6, Social: -0.6}},
			{ID: "incentives", Label: "Incentives, not mandates", Axes: Axes{Economic: 0.4, Social: -0.1}},
			{ID: "no_regulation", Label: "No new regulation", Axes: Axes{Economic: 0.8, Social: 0.5}},
		},
	},
	{
		ID: "jobs", Text: "How should the city fight unemployment?", Category: "Unemployment",
		Options: []PolicyOption{
			{ID: "jobs_guarantee", Label: "Municipal jobs programme", Axes: Axes{Economic: -0.9, Social: 0.0}},
			{ID: "business_incentives", Label: "Attract employers with incentives", Axes: Axes{Economic: 0.7, Social: 0.2}},
			{ID: "job_training", Label: "Job training partnerships", Axes: Axes{Economic: -0.1, Social: -0.1}},
		},
	},
	{
		ID: "property_tax", Text: "What should happen to property taxes?", Category: "Taxes",
		Options: []PolicyOption{
			{ID: "cut_property_tax", Label: "Cut property taxes", Axes: Axes{Economic: 0.8, Social: 0.4}},
			{ID: "freeze_property_tax", Label: "Freeze rates", Axes: Axes{Economic: 0.3, Social: 0.2}},
			{ID: "raise_property_tax", Label: "Raise rates to fund services", Axes: Axes{Economic: -0.7, Social: -0.3}},
		},
	},
	{
		ID: "transit", Text: "How should public transit evolve?", Category: "Public Transit",
		Options: []PolicyOption{
			{ID: "fare_free_transit", Label: "Fare-free transit", Axes: Axes{Economic: -0.9, Social: -0.5}},
			{ID: "expand_routes", Label: "Expand bus and rail routes", Axes: Axes{Economic: -0.3, Social: -0.2}},
			{ID: "privatize_transit", Label: "Contract out transit", Axes: Axes{Economic: 0.9, Social: 0.2}},
		},
	},
	{
		ID: "welfare", Text: "How should the city support low-income residents?", Category: "Poverty",
		Options: []PolicyOption{
			{ID: "expand_welfare", Label: "Expand direct assistance", Axes: Axes{Economic: -0.9, Social: -0.4}},
			{ID: "workfare", Label: "Assistance tied to work", Axes: Axes{Economic: 0.5, Social: 0.6}},
			{ID: "charity_partnerships", Label: "Partner with charities", Axes: Axes{Economic: 0.3, Social: 0.5}},
		},
	},
}

// QuestionByID looks up a policy question.
func QuestionByID(id string) (PolicyQuestion, bool) {
	for _, q := range PolicyQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return PolicyQuestion{}, false
}

// ClosestOption returns the option of q nearest to a position.
func ClosestOption(q PolicyQuestion, a Axes) PolicyOption {
	best := q.Options[0]
	bestDist := a.Distance(best.Axes)
	for _, opt := range q.Options[1:] {
		if d := a.Distance(opt.Axes); d < bestDist {
			best, bestDist = opt, d
		}
	}
	return best
}

// ElectorateProfile derives the electorate's preferred option per question
// from the popularity-weighted centre of the political landscape.
func ElectorateProfile(landscape []*Party) map[string]string {
	centre := Axes{}
	total := 0.0
	for _, p := range landscape {
		if p.Popularity <= 0 {
			continue
		}
		centre.Economic += p.IdeologyScores.Economic * p.Popularity
		centre.Social += p.IdeologyScores.Social * p.Popularity
		total += p.Popularity
	}
	if total > 0 {
		centre.Economic /= total
		centre.Social /= total
	}

	profile := make(map[string]string, len(PolicyQuestions))
	for _, q := range PolicyQuestions {
		profile[q.ID] = ClosestOption(q, centre).ID
	}
	return profile
}
