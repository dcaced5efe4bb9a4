package politics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civic-sim/internal/entropy"
)

var testTemplates = []PartyTemplate{
	{ID: "blue", Name: "Blue Party", IdeologyID: "liberal", Major: true},
	{ID: "red", Name: "Red Party", IdeologyID: "conservative", Major: true},
	{ID: "green", Name: "Green Party", IdeologyID: "green"},
	{ID: "gold", Name: "Liberty Party", IdeologyID: "libertarian"},
}

func TestNormalizePartyPopularitiesSumsTo100(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		src := entropy.New(seed)
		parties := GenerateLandscape(src, testTemplates)
		for _, p := range parties {
			p.Popularity = src.FloatRange(0, 80)
		}
		NormalizePartyPopularities(parties, DefaultMinPopularity)

		assert.InDelta(t, 100.0, TotalPopularity(parties), 0.01, "seed %d", seed)
		for _, p := range parties {
			assert.GreaterOrEqual(t, p.Popularity, DefaultMinPopularity, "seed %d", seed)
			assert.Equal(t, p.Popularity, math.Round(p.Popularity*100)/100, "two decimals")
		}
	}
}

func TestNormalizePartyPopularitiesRaisesFloor(t *testing.T) {
	parties := []*Party{{ID: "a", Popularity: 99}, {ID: "b", Popularity: 0}, {ID: "c", Popularity: 0}}
	NormalizePartyPopularities(parties, 1)
	assert.Equal(t, 98.0, parties[0].Popularity)
	assert.Equal(t, 1.0, parties[1].Popularity)
	assert.Equal(t, 1.0, parties[2].Popularity)
}

func TestNormalizePartyPopularitiesAllZero(t *testing.T) {
	parties := []*Party{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	NormalizePartyPopularities(parties, 1)
	for _, p := range parties {
		assert.Equal(t, 25.0, p.Popularity)
	}
}

func TestNormalizePartyPopularitiesImpossibleFloor(t *testing.T) {
	parties := make([]*Party, 3)
	for i := range parties {
		parties[i] = &Party{Popularity: float64(i)}
	}
	NormalizePartyPopularities(parties, 50)
	assert.InDelta(t, 100.0, TotalPopularity(parties), 0.01)
}

func TestGenerateFullAIPolitician(t *testing.T) {
	src := entropy.New(12)
	party := GenerateLandscape(src, testTemplates)[0]

	p := GenerateFullAIPolitician(src, PoliticianOptions{Party: party, AdultPopulation: 100000})
	require.NotEmpty(t, p.ID)
	assert.Equal(t, party.ID, p.PartyID)
	assert.Equal(t, party.Name, p.PartyName)
	assert.Len(t, p.PolicyStances, len(PolicyQuestions))
	assert.NotEmpty(t, p.CalculatedIdeology)
	assert.LessOrEqual(t, p.NameRecognition, 100000)
	assert.GreaterOrEqual(t, p.NameRecognition, 0)
	for _, v := range []int{p.Attributes.Charisma, p.Attributes.Integrity, p.Attributes.Intelligence,
		p.Attributes.Oratory, p.Attributes.Fundraising, p.Attributes.Negotiation} {
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 10)
	}

	ind := GenerateFullAIPolitician(src, PoliticianOptions{AdultPopulation: 1000})
	assert.True(t, ind.IsIndependent())
	assert.Equal(t, IndependentName, ind.PartyName)
}

func TestIncumbentRecognitionIsHigher(t *testing.T) {
	src := entropy.New(4)
	inc := GenerateFullAIPolitician(src, PoliticianOptions{AdultPopulation: 100000, IsIncumbent: true})
	assert.GreaterOrEqual(t, inc.NameRecognition, 35000)
	assert.True(t, inc.IsIncumbent)
}

func TestCalculateIdeologyMatchesExtremeStances(t *testing.T) {
	stances := map[string]string{
		"business_tax":  "cut_business_tax",
		"public_health": "minimal_role",
		"transit":       "privatize_transit",
		"jobs":          "business_incentives",
		"unknown":       "ignored",
	}
	axes, ide := CalculateIdeology(stances)
	assert.InDelta(t, 0.85, axes.Economic, 1e-9)
	assert.InDelta(t, 0.2, axes.Social, 1e-9)
	assert.Equal(t, "conservative", ide.ID)
}

func TestElectorateProfileCoversEveryQuestion(t *testing.T) {
	landscape := GenerateLandscape(entropy.New(8), testTemplates)
	profile := ElectorateProfile(landscape)
	assert.Len(t, profile, len(PolicyQuestions))
	for _, q := range PolicyQuestions {
		_, ok := profile[q.ID]
		assert.True(t, ok, q.ID)
	}
}

func TestOfficeSeatWinners(t *testing.T) {
	old := &Politician{ID: "old", IsIncumbent: true}
	office := &Office{OfficeID: "mayor", Holder: old}
	assert.True(t, office.HeldBy("old"))

	winner := &Politician{ID: "new"}
	office.SeatWinners([]*Politician{winner}, true, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, old.IsIncumbent)
	assert.True(t, winner.IsIncumbent)
	assert.True(t, office.HeldBy("new"))
	assert.False(t, office.HeldBy("old"))

	council := &Office{OfficeID: "council"}
	council.SeatWinners([]*Politician{{ID: "a"}, {ID: "b"}}, false, time.Time{})
	assert.Nil(t, council.Holder)
	assert.Len(t, council.Incumbents(), 2)
	assert.True(t, council.HeldBy("b"))
}
