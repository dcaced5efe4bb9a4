package election

import (
	"fmt"
	"math"
	"time"

	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// DefaultRerunChance is the probability an AI incumbent stands again.
const DefaultRerunChance = 0.8

// InstanceParams are the inputs to NewInstance.
type InstanceParams struct {
	Type         ElectionType
	Entity       *world.City
	Incumbents   []*politics.Politician
	ElectionDate time.Time
	RerunChance  float64 // zero means DefaultRerunChance
}

// NewInstance schedules an election of the given type for a jurisdiction
// and generates its participants. The player always stands again if they
// hold the office.
func NewInstance(src *entropy.Source, p InstanceParams) *Election {
	entityID := ""
	if p.Entity != nil {
		entityID = p.Entity.ID
	}
	base := fmt.Sprintf("%s_%s", p.Type.ID, entityID)
	weeks := max(p.Type.FilingWeeks, 1)

	e := &Election{
		ID:                  fmt.Sprintf("%s_%s", base, p.ElectionDate.Format("2006-01")),
		InstanceIDBase:      base,
		TypeID:              p.Type.ID,
		EntityID:            entityID,
		OfficeName:          p.Type.OfficeName,
		Level:               p.Type.Level,
		ElectoralSystem:     p.Type.ElectoralSystem,
		ElectionDate:        p.ElectionDate,
		FilingDeadline:      p.ElectionDate.AddDate(0, 0, -7*weeks),
		NumberOfSeatsToFill: max(p.Type.Seats, 1),
		Outcome:             Outcome{Status: StatusUpcoming},
	}

	rerun := p.RerunChance
	if rerun <= 0 {
		rerun = DefaultRerunChance
	}
	for _, inc := range p.Incumbents {
		if inc == nil {
			continue
		}
		e.IncumbentIDs = append(e.IncumbentIDs, inc.ID)
		inc.IsActuallyRunning = inc.IsPlayer || src.Chance(rerun)
	}

	var landscape []*politics.Party
	adults := 0
	if p.Entity != nil {
		landscape = p.Entity.PoliticalLandscape
		adults = p.Entity.AdultPopulation()
	}

	parts := GenerateParticipants(src, ParticipantParams{
		Election:        e,
		Type:            p.Type,
		Landscape:       landscape,
		Incumbents:      p.Incumbents,
		AdultPopulation: adults,
		Campaign:        CampaignDataFor(p.Entity),
	})
	e.Candidates = parts.Candidates
	e.PartyLists = parts.PartyLists
	e.MMPData = parts.MMPData
	e.PartyPolling = parts.PartyPolling
	return e
}

// EnterCandidate puts a challenger on the ballot of an upcoming
// candidate-ballot election and renormalizes the field. Entering someone
// already on the ballot is a no-op.
func EnterCandidate(src *entropy.Source, e *Election, c *politics.Politician, entity *world.City) error {
	if e.Concluded() {
		return fmt.Errorf("%w: %s", ErrAlreadyConcluded, e.ID)
	}
	shape, err := ShapeFor(e.ElectoralSystem)
	if err != nil {
		return err
	}
	if shape != ShapeCandidates {
		return fmt.Errorf("%w: %s election %s takes party lists", ErrShape, e.ElectoralSystem, e.ID)
	}
	if e.FindCandidate(c.ID) != nil {
		return nil
	}

	c.IsActuallyRunning = true
	e.Candidates = append(e.Candidates, c)
	adults := 0
	if entity != nil {
		adults = entity.AdultPopulation()
	}
	ScoreCandidates(src, e.Candidates, e, CampaignDataFor(entity))
	NormalizePolling(e.Candidates, adults)
	return nil
}

// RefreshPolling grows name recognition with media buzz, rescores every
// participant against the jurisdiction's current state and renormalizes.
func RefreshPolling(src *entropy.Source, e *Election, entity *world.City) {
	if e == nil || e.Concluded() || entity == nil {
		return
	}
	adults := entity.AdultPopulation()
	cd := CampaignDataFor(entity)

	grow := func(cands []*politics.Politician) {
		for _, c := range cands {
			gain := float64(adults) * (0.005 + c.MediaBuzz/1000)
			c.NameRecognition = min(c.NameRecognition+int(math.Round(gain)), adults)
		}
		ScoreCandidates(src, cands, e, cd)
		NormalizePolling(cands, adults)
	}

	switch {
	case e.MMPData != nil:
		var constituency []*politics.Politician
		for _, id := range sortedKeys(e.MMPData.PartyLists) {
			grow(e.MMPData.PartyLists[id])
		}
		for _, id := range sortedKeys(e.MMPData.ConstituencyCandidates) {
			constituency = append(constituency, e.MMPData.ConstituencyCandidates[id]...)
		}
		constituency = append(constituency, e.MMPData.IndependentCandidates...)
		grow(constituency)
		e.PartyPolling = partyPolling(e.MMPData.PartyLists, entity.PoliticalLandscape)
	case len(e.PartyLists) > 0:
		for _, id := range sortedKeys(e.PartyLists) {
			grow(e.PartyLists[id])
		}
		e.PartyPolling = partyPolling(e.PartyLists, entity.PoliticalLandscape)
	default:
		grow(e.Candidates)
	}
}
