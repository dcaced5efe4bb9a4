// Parties and the political landscape of a jurisdiction.
package politics

import (
	"math"

	"github.com/talgya/civic-sim/internal/apportion"
	"github.com/talgya/civic-sim/internal/entropy"
)

// DefaultMinPopularity is the floor every party keeps after normalization.
const DefaultMinPopularity = 1.0

// Party is a political party within one jurisdiction's landscape.
type Party struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Ideology       string  `json:"ideology"`
	IdeologyID     string  `json:"ideology_id"`
	Color          string  `json:"color"`
	Popularity     float64 `json:"popularity"` // percent; the landscape sums to 100
	IdeologyScores Axes    `json:"ideology_scores"`
}

// PartyTemplate is a country-level base party the landscape is drawn from.
type PartyTemplate struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	IdeologyID string `json:"ideology_id" yaml:"ideology_id"`
	Major      bool   `json:"major" yaml:"major"`
}

// GenerateLandscape instantiates the base parties with random popularity and
// a small ideological drift from their catalogue position, then normalizes.
func GenerateLandscape(src *entropy.Source, templates []PartyTemplate) []*Party {
	parties := make([]*Party, 0, len(templates))
	for _, t := range templates {
		ide, ok := IdeologyByID(t.IdeologyID)
		if !ok {
			ide, _ = IdeologyByID("centrist")
		}

		pop := src.FloatRange(3, 15)
		if t.Major {
			pop = src.FloatRange(20, 45)
		}

		parties = append(parties, &Party{
			ID:         t.ID,
			Name:       t.Name,
			Ideology:   ide.Name,
			IdeologyID: ide.ID,
			Color:      ide.Color,
			Popularity: pop,
			IdeologyScores: Axes{
				Economic: clampAxis(ide.Axes.Economic + src.FloatRange(-0.15, 0.15)),
				Social:   clampAxis(ide.Axes.Social + src.FloatRange(-0.15, 0.15)),
			},
		})
	}
	NormalizePartyPopularities(parties, DefaultMinPopularity)
	return parties
}

// NormalizePartyPopularities rescales popularity so the landscape sums to
// exactly 100.00 (in hundredths) with every party at or above minPopularity.
// If the floor cannot be honoured for this many parties it drops to an equal share.
func NormalizePartyPopularities(parties []*Party, minPopularity float64) {
	n := len(parties)
	if n == 0 {
		return
	}
	if minPopularity < 0 {
		minPopularity = 0
	}
	if minPopularity*float64(n) > 100 {
		minPopularity = math.Floor(100/float64(n)*100) / 100
	}

	claims := make([]apportion.Claim, n)
	floors := make([]int, n)
	floorCents := int(math.Round(minPopularity * 100))
	for i, p := range parties {
		claims[i] = apportion.Claim{Weight: p.Popularity}
		floors[i] = floorCents
	}

	cents, err := apportion.WithFloors(claims, 10000, floors)
	if err != nil {
		cents = apportion.Apportion(apportion.Weights(make([]float64, n)...), 10000)
	}
	for i, p := range parties {
		p.Popularity = float64(cents[i]) / 100
	}
}

// FindParty returns the party with the given ID, or nil.
func FindParty(landscape []*Party, id string) *Party {
	for _, p := range landscape {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CloneLandscape deep-copies a landscape so updates can replace it whole.
func CloneLandscape(landscape []*Party) []*Party {
	out := make([]*Party, len(landscape))
	for i, p := range landscape {
		cp := *p
		out[i] = &cp
	}
	return out
}

// TotalPopularity sums popularity across a landscape.
func TotalPopularity(landscape []*Party) float64 {
	total := 0.0
	for _, p := range landscape {
		total += p.Popularity
	}
	return total
}

func clampAxis(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
