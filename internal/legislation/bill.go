// Package legislation covers bills: what they change, who drafts them, how a
// council votes on them and how an enacted bill alters a jurisdiction.
package legislation

import (
	"time"

	"github.com/talgya/civic-sim/internal/politics"
)

// Bill statuses.
const (
	StatusProposed = "proposed"
	StatusPassed   = "passed"
	StatusFailed   = "failed"
	StatusEnacted  = "enacted"
)

// Change kinds.
const (
	KindTaxRate    = "tax_rate"
	KindAllocation = "allocation"
	KindLaw        = "law"
)

// PolicyChange is one concrete edit a bill makes.
//
// For tax_rate, Target is a tax (property, sales, business, income) and Delta
// is added to the rate. For allocation, Target is an expense category and
// Delta is a fractional change (0.1 is +10%). For law, Target is an ordinance
// and Value its new setting.
type PolicyChange struct {
	Kind   string  `json:"kind" yaml:"kind"`
	Target string  `json:"target" yaml:"target"`
	Delta  float64 `json:"delta,omitempty" yaml:"delta"`
	Value  string  `json:"value,omitempty" yaml:"value"`
}

// Bill is a proposal before a council.
type Bill struct {
	ID         string         `json:"id"`
	ProposalID string         `json:"proposal_id"`
	Title      string         `json:"title"`
	Summary    string         `json:"summary"`
	Issue      string         `json:"issue,omitempty"`
	Axes       politics.Axes  `json:"axes"`
	Changes    []PolicyChange `json:"changes"`

	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	PartyID    string `json:"party_id,omitempty"`

	Status       string    `json:"status"`
	ProposedOn   time.Time `json:"proposed_on"`
	DecidedOn    time.Time `json:"decided_on,omitempty"`
	VotesFor     int       `json:"votes_for"`
	VotesAgainst int       `json:"votes_against"`
}

// Pending reports whether the bill still awaits a vote.
func (b *Bill) Pending() bool {
	return b.Status == StatusProposed
}

// HasProposal reports whether any bill in the set was drafted from proposalID.
func HasProposal(bills []*Bill, proposalID string) bool {
	for _, b := range bills {
		if b.ProposalID == proposalID {
			return true
		}
	}
	return false
}
