package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/talgya/civic-sim/internal/election"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/world"
)

var (
	ErrNotFound = errors.New("not found")
	ErrNoPlayer = errors.New("campaign has no player")
)

// EditAllocation sets one expense line to an absolute amount and reconciles
// the budget.
func (s *Simulation) EditAllocation(category string, amount int64) (string, error) {
	cat := world.ExpenseCategory(category)
	if !world.IsExpenseCategory(cat) {
		return "", fmt.Errorf("expense category %q: %w", category, ErrNotFound)
	}
	if amount < 0 {
		return "", fmt.Errorf("allocation for %s must not be negative", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.City.Clone()
	old := next.Stats.Budget.ExpenseAllocations[cat]
	next.Stats.Budget.ExpenseAllocations[cat] = amount
	next.Stats.Budget.Reconcile()
	s.state.City = next

	desc := fmt.Sprintf("%s budget for %s changed from %s to %s",
		next.Name, category, humanize.Comma(old), humanize.Comma(amount))
	s.EmitEvent(Event{
		Description: desc,
		Category:    CategoryAdmin,
		Meta: map[string]any{
			"category": category,
			"old":      old,
			"new":      amount,
		},
	})

	slog.Info("allocation intervention", "category", category, "old", old, "new", amount)
	return desc, nil
}

// SetTaxRate sets a tax rate directly, bounded to [0, 0.1].
func (s *Simulation) SetTaxRate(tax string, rate float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.City.Clone()
	rates := next.Stats.Budget.TaxRates
	current, ok := map[string]float64{
		"property": rates.Property,
		"sales":    rates.Sales,
		"business": rates.Business,
		"income":   rates.Income,
	}[tax]
	if !ok {
		return "", fmt.Errorf("tax %q: %w", tax, ErrNotFound)
	}
	if err := legislation.Apply(next, legislation.PolicyChange{Kind: legislation.KindTaxRate, Target: tax, Delta: rate - current}); err != nil {
		return "", fmt.Errorf("set tax rate: %w", err)
	}
	s.state.City = next

	desc := fmt.Sprintf("%s %s tax rate set to %.2f%%", next.Name, tax, rate*100)
	s.EmitEvent(Event{
		Description: desc,
		Category:    CategoryAdmin,
		Meta:        map[string]any{"tax": tax, "old": current, "new": rate},
	})

	slog.Info("tax intervention", "tax", tax, "old", current, "new", rate)
	return desc, nil
}

// ProposeBill introduces a catalogue proposal on the player's behalf. It is
// voted on from the following month.
func (s *Simulation) ProposeBill(proposalID string) (*legislation.Bill, error) {
	p, ok := legislation.ProposalByID(proposalID)
	if !ok {
		return nil, fmt.Errorf("proposal %q: %w", proposalID, ErrNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.Player == nil {
		return nil, ErrNoPlayer
	}
	if legislation.HasProposal(st.PendingBills(), p.ID) {
		return nil, fmt.Errorf("proposal %q is already before the council", p.ID)
	}

	b := legislation.NewBill(nil, p, st.Player, st.Now())
	st.Bills = append(st.Bills, b)
	s.EmitEvent(Event{
		Description: fmt.Sprintf("%s introduces the %s", b.AuthorName, b.Title),
		Category:    CategoryBill,
		Meta:        map[string]any{"bill_id": b.ID, "proposal": p.ID},
	})

	slog.Info("player bill proposed", "bill", b.ID, "proposal", p.ID)
	return b, nil
}

// ForceEnact enacts a pending or passed bill without a council vote.
func (s *Simulation) ForceEnact(billID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	b := st.Bill(billID)
	if b == nil {
		return "", fmt.Errorf("bill %q: %w", billID, ErrNotFound)
	}
	if b.Status != legislation.StatusProposed && b.Status != legislation.StatusPassed {
		return "", fmt.Errorf("bill %q is already %s", billID, b.Status)
	}

	prev := b.Status
	b.Status = legislation.StatusPassed
	next, err := legislation.Enact(st.City, b)
	if err != nil {
		b.Status = prev
		return "", fmt.Errorf("force enact: %w", err)
	}
	b.DecidedOn = st.Now()
	st.City = next

	desc := fmt.Sprintf("The %s is enacted by decree", b.Title)
	s.EmitEvent(Event{
		Description: desc,
		Category:    CategoryAdmin,
		Meta:        map[string]any{"bill_id": b.ID, "proposal": b.ProposalID},
	})

	slog.Info("enact intervention", "bill", b.ID, "title", b.Title)
	return desc, nil
}

// EnterRace puts the player on the ballot of an upcoming candidate election,
// such as the mayoralty.
func (s *Simulation) EnterRace(electionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.Player == nil {
		return "", ErrNoPlayer
	}
	e := st.Election(electionID)
	if e == nil {
		return "", fmt.Errorf("election %q: %w", electionID, ErrNotFound)
	}
	src := entropy.New(st.Seed + int64(st.Month)*1000).Derive(streamEntry)
	if err := election.EnterCandidate(src, e, st.Player, st.Entity(e.Level)); err != nil {
		return "", fmt.Errorf("enter race: %w", err)
	}

	desc := fmt.Sprintf("%s enters the race for %s, polling at %d%%", st.Player.Name, e.OfficeName, st.Player.Polling)
	s.EmitEvent(Event{
		Description: desc,
		Category:    CategoryElection,
		Meta:        map[string]any{"election_id": e.ID, "politician_id": st.Player.ID},
	})

	slog.Info("player entered race", "election", e.ID, "polling", st.Player.Polling)
	return desc, nil
}
