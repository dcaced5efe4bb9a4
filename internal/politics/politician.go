// Politicians: candidates, office holders and the player.
package politics

import (
	"math"

	"github.com/talgya/civic-sim/internal/entropy"
)

// IndependentName labels politicians without a party.
const IndependentName = "Independent"

// Attributes are ratings from 1 to 10 of a politician's skills.
type Attributes struct {
	Charisma     int `json:"charisma"`
	Integrity    int `json:"integrity"`
	Intelligence int `json:"intelligence"`
	Oratory      int `json:"oratory"`
	Fundraising  int `json:"fundraising"`
	Negotiation  int `json:"negotiation"`
}

// Background is biographical detail with light numeric consequence.
type Background struct {
	Age        int    `json:"age"`
	Education  string `json:"education"`
	Occupation string `json:"occupation"`
}

// Politician is a candidate, office holder or the player.
type Politician struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PartyID   string `json:"party_id,omitempty"`
	PartyName string `json:"party_name"`

	Attributes         Attributes        `json:"attributes"`
	Background         Background        `json:"background"`
	PolicyStances      map[string]string `json:"policy_stances"` // question ID → option ID
	CalculatedIdeology string            `json:"calculated_ideology"`
	IdeologyScores     Axes              `json:"ideology_scores"`

	BaseScore       int     `json:"base_score"`
	Polling         int     `json:"polling"`
	NameRecognition int     `json:"name_recognition"` // adults aware of this politician
	CampaignFunds   int64   `json:"campaign_funds"`
	Treasury        int64   `json:"treasury"`
	ApprovalRating  float64 `json:"approval_rating"` // percent
	MediaBuzz       float64 `json:"media_buzz"`

	IsIncumbent bool `json:"is_incumbent"`
	IsPlayer    bool `json:"is_player"`

	// Roster metadata set by the election engine.
	IsActuallyRunning        bool   `json:"is_actually_running,omitempty"`
	ListPosition             int    `json:"list_position,omitempty"`
	PartyAffiliationReadOnly string `json:"party_affiliation_read_only,omitempty"`
}

// PoliticianOptions parameterizes GenerateFullAIPolitician.
type PoliticianOptions struct {
	Party           *Party // nil for an independent
	AdultPopulation int
	IsIncumbent     bool
}

var educationLevels = []string{"High School", "Associate Degree", "Bachelor's Degree", "Master's Degree", "Law Degree", "Doctorate"}

var occupations = []string{
	"Attorney", "Teacher", "Small Business Owner", "Union Organizer", "Physician",
	"Engineer", "Police Officer", "Nurse", "Nonprofit Director", "Real Estate Developer",
	"Journalist", "Farmer", "Accountant", "Pastor", "Software Developer", "Veteran",
}

// GenerateFullAIPolitician creates a politician with attributes, background,
// policy stances near the party's position, and campaign resources.
func GenerateFullAIPolitician(src *entropy.Source, opts PoliticianOptions) *Politician {
	centre := Axes{Economic: src.FloatRange(-0.8, 0.8), Social: src.FloatRange(-0.8, 0.8)}
	partyID, partyName := "", IndependentName
	if opts.Party != nil {
		centre = opts.Party.IdeologyScores
		partyID, partyName = opts.Party.ID, opts.Party.Name
	}

	stances := make(map[string]string, len(PolicyQuestions))
	for _, q := range PolicyQuestions {
		pos := Axes{
			Economic: centre.Economic + src.FloatRange(-0.45, 0.45),
			Social:   centre.Social + src.FloatRange(-0.45, 0.45),
		}
		stances[q.ID] = ClosestOption(q, pos).ID
	}
	axes, ideology := CalculateIdeology(stances)

	attrs := Attributes{
		Charisma:     src.IntRange(2, 9),
		Integrity:    src.IntRange(2, 9),
		Intelligence: src.IntRange(2, 9),
		Oratory:      src.IntRange(2, 9),
		Fundraising:  src.IntRange(2, 9),
		Negotiation:  src.IntRange(2, 9),
	}

	recognition := src.FloatRange(0.02, 0.15)
	if opts.IsIncumbent {
		recognition = src.FloatRange(0.35, 0.7)
		attrs.Negotiation = min(attrs.Negotiation+1, 10)
	}

	adults := max(opts.AdultPopulation, 0)
	funds := int64(src.IntRange(5_000, 50_000)) * int64(attrs.Fundraising) / 5

	return &Politician{
		ID:        src.UUID(),
		Name:      GenerateName(src),
		PartyID:   partyID,
		PartyName: partyName,

		Attributes: attrs,
		Background: Background{
			Age:        src.IntRange(28, 72),
			Education:  entropy.Pick(src, educationLevels),
			Occupation: entropy.Pick(src, occupations),
		},
		PolicyStances:      stances,
		CalculatedIdeology: ideology.Name,
		IdeologyScores:     axes,

		NameRecognition: int(math.Round(recognition * float64(adults))),
		CampaignFunds:   funds,
		Treasury:        funds / 4,
		ApprovalRating:  math.Round(src.FloatRange(35, 65)*100) / 100,
		MediaBuzz:       math.Round(src.FloatRange(0, 30)*100) / 100,
		IsIncumbent:     opts.IsIncumbent,
	}
}

// CalculateIdeology averages the axes of the chosen options and maps the
// result onto the nearest catalogue ideology. Unknown questions or options
// are ignored.
func CalculateIdeology(stances map[string]string) (Axes, Ideology) {
	sum := Axes{}
	n := 0
	for qid, oid := range stances {
		q, ok := QuestionByID(qid)
		if !ok {
			continue
		}
		for _, opt := range q.Options {
			if opt.ID == oid {
				sum.Economic += opt.Axes.Economic
				sum.Social += opt.Axes.Social
				n++
				break
			}
		}
	}
	if n > 0 {
		sum.Economic /= float64(n)
		sum.Social /= float64(n)
	}
	return sum, NearestIdeology(sum)
}

// IsIndependent reports whether the politician has no party.
func (p *Politician) IsIndependent() bool {
	return p.PartyID == ""
}
