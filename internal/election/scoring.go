package election

import (
	"maps"
	"math"
	"slices"

	"github.com/talgya/civic-sim/internal/apportion"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// Scoring weights.
const (
	baseScore            = 15.0
	incumbentMoodWeight  = 2.0
	challengerMoodWeight = 0.5
	popularityWeight     = 0.3
	mainIssueMatchPoints = 3.0
	otherMatchPoints     = 1.0
	scoreJitter          = 3.0
)

// moodEffect is the range the incumbency term is drawn from per mood.
var moodEffect = map[string][2]float64{
	"Prospering":   {12, 15},
	"Optimistic":   {10, 12},
	"Content":      {2, 5},
	"Concerned":    {-5, -2},
	"Frustrated":   {-12, -10},
	"Very Unhappy": {-15, -12},
}

// CampaignData is the context a candidate is scored against.
type CampaignData struct {
	ElectorateProfile map[string]string // question ID → preferred option ID
	MainIssues        []string
	Mood              string
	Landscape         []*politics.Party
}

// CampaignDataFor derives the scoring context from a jurisdiction.
func CampaignDataFor(entity *world.City) CampaignData {
	if entity == nil {
		return CampaignData{}
	}
	return CampaignData{
		ElectorateProfile: politics.ElectorateProfile(entity.PoliticalLandscape),
		MainIssues:        entity.Stats.MainIssues,
		Mood:              entity.Stats.OverallCitizenMood,
		Landscape:         entity.PoliticalLandscape,
	}
}

// CalculateBaseCandidateScore rates a candidate's raw competitiveness. The
// result is always at least 1.
func CalculateBaseCandidateScore(src *entropy.Source, c *politics.Politician, e *Election, cd CampaignData) int {
	score := baseScore

	if r, ok := moodEffect[cd.Mood]; ok {
		effect := src.FloatRange(r[0], r[1])
		switch {
		case e != nil && e.IsListedIncumbent(c.ID):
			score += effect * incumbentMoodWeight
		case effect < 0:
			score += -effect * challengerMoodWeight
		}
	}

	if p := politics.FindParty(cd.Landscape, c.PartyID); p != nil {
		score += p.Popularity * popularityWeight
	}

	// Match points are whole numbers, so the sum is exact in any map order.
	var alignment float64
	for qid, preferred := range cd.ElectorateProfile {
		if c.PolicyStances[qid] != preferred {
			continue
		}
		q, ok := politics.QuestionByID(qid)
		if ok && slices.Contains(cd.MainIssues, q.Category) {
			alignment += mainIssueMatchPoints
		} else {
			alignment += otherMatchPoints
		}
	}
	score += alignment

	score += src.FloatRange(-scoreJitter, scoreJitter)
	return max(int(math.Round(score)), 1)
}

// ScoreCandidates sets BaseScore on every candidate.
func ScoreCandidates(src *entropy.Source, cands []*politics.Politician, e *Election, cd CampaignData) {
	for _, c := range cands {
		c.BaseScore = CalculateBaseCandidateScore(src, c, e, cd)
	}
}

// NormalizePolling sets Polling so the roster sums to exactly 100.
//
// A candidate's effective weight is its base score times the fraction of
// adults who recognize it. With no effective weight at all the split is
// equal, remainder to the earliest candidates. Otherwise shares are floored
// and the shortfall goes by remainder, then weight, then base score.
func NormalizePolling(cands []*politics.Politician, adultPopulation int) {
	if len(cands) == 0 {
		return
	}
	claims := make([]apportion.Claim, len(cands))
	for i, c := range cands {
		claims[i] = apportion.Claim{
			Weight:   float64(max(c.BaseScore, 0)) * recognitionFraction(c.NameRecognition, adultPopulation),
			Tiebreak: float64(c.BaseScore),
		}
	}
	for i, pct := range apportion.Apportion(claims, 100) {
		cands[i].Polling = pct
	}
}

func recognitionFraction(recognition, adultPopulation int) float64 {
	if adultPopulation <= 0 || recognition <= 0 {
		return 0
	}
	return float64(min(recognition, adultPopulation)) / float64(adultPopulation)
}

// partyPolling scores each party by popularity and the strength of its
// top candidates, then normalizes the synthetic entries to 100.
func partyPolling(lists map[string][]*politics.Politician, landscape []*politics.Party) map[string]int {
	ids := sortedKeys(lists)
	entries := make([]*politics.Politician, len(ids))
	for i, id := range ids {
		top := lists[id][:min(3, len(lists[id]))]
		sum := 0
		for _, c := range top {
			sum += c.BaseScore
		}
		avg := 0.0
		if len(top) > 0 {
			avg = float64(sum) / float64(len(top))
		}
		pop := 0.0
		if p := politics.FindParty(landscape, id); p != nil {
			pop = p.Popularity
		}
		entries[i] = &politics.Politician{
			BaseScore:       max(int(math.Round(pop*2+avg*0.5)), 1),
			NameRecognition: 1,
		}
	}
	NormalizePolling(entries, 1)

	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = entries[i].Polling
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
