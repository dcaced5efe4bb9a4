package legislation

import (
	"math"
	"slices"
	"time"

	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/politics"
	"github.com/talgya/civic-sim/internal/world"
)

// Author drafts a bill for a council member. It returns false when the member
// has nothing new to propose. existing holds bills already pending or drafted
// this month; an author must not duplicate them.
type Author interface {
	DraftBill(src *entropy.Source, member *politics.Politician, city *world.City, existing []*Bill, now time.Time) (*Bill, bool)
}

// TemplateAuthor drafts from the proposal catalogue, preferring proposals
// close to the member's ideology and those addressing the city's main issues.
type TemplateAuthor struct {
	Proposals []Proposal // defaults to the built-in catalogue
}

// DraftBill implements Author.
func (a TemplateAuthor) DraftBill(src *entropy.Source, member *politics.Politician, city *world.City, existing []*Bill, now time.Time) (*Bill, bool) {
	catalogue := a.Proposals
	if len(catalogue) == 0 {
		catalogue = Proposals
	}

	var issues []string
	if city != nil {
		issues = city.Stats.MainIssues
	}

	var pool []Proposal
	var weights []float64
	for _, p := range catalogue {
		if HasProposal(existing, p.ID) {
			continue
		}
		// Distance on the axes is at most 2*sqrt(2).
		w := math.Max(2.9-member.IdeologyScores.Distance(p.Axes), 0.05)
		w *= w
		if slices.Contains(issues, p.Issue) {
			w *= 2
		}
		pool = append(pool, p)
		weights = append(weights, w)
	}
	if len(pool) == 0 {
		return nil, false
	}

	p := pool[src.WeightedIndex(weights)]
	return NewBill(src, p, member, now), true
}

// NewBill instantiates a proposal for an author. A nil src draws a random ID.
func NewBill(src *entropy.Source, p Proposal, author *politics.Politician, now time.Time) *Bill {
	return &Bill{
		ID:         src.UUID(),
		ProposalID: p.ID,
		Title:      p.Title,
		Summary:    p.Summary,
		Issue:      p.Issue,
		Axes:       p.Axes,
		Changes:    slices.Clone(p.Changes),
		AuthorID:   author.ID,
		AuthorName: author.Name,
		PartyID:    author.PartyID,
		Status:     StatusProposed,
		ProposedOn: now,
	}
}
