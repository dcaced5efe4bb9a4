// Simulation owns the campaign state and runs the monthly steps in order.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/civic-sim/internal/election"
	"github.com/talgya/civic-sim/internal/entropy"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/politics"
)

// Per-step stream offsets within a month's source.
const (
	streamStats int64 = iota + 1
	streamParties
	streamApproval
	streamVotes
	streamBills
	streamElections
	streamEntry
)

// Simulation is the controller for one campaign. All access to State goes
// through it.
type Simulation struct {
	mu     sync.RWMutex
	state  *State
	author legislation.Author

	lastResults []Result

	// OnEvent, if set, is called for every emitted event with the lock held.
	OnEvent func(Event)
}

// NewSimulation wraps a campaign state. A nil author uses the proposal
// catalogue.
func NewSimulation(st *State, author legislation.Author) *Simulation {
	if author == nil {
		author = legislation.TemplateAuthor{}
	}
	return &Simulation{state: st, author: author}
}

// View runs fn with read access to the state. fn must not retain or modify it.
func (s *Simulation) View(fn func(st *State)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Update runs fn with write access to the state.
func (s *Simulation) Update(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// CurrentMonth returns the most recently processed month.
func (s *Simulation) CurrentMonth() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Month
}

// LastResults returns the step results of the most recent month.
func (s *Simulation) LastResults() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Result(nil), s.lastResults...)
}

// EmitEvent appends an event to the log. Callers must hold the lock.
func (s *Simulation) EmitEvent(e Event) {
	st := s.state
	if e.Date.IsZero() {
		e.Month = st.Month
		e.Date = st.Now()
	}
	st.EventSeq++
	e.Seq = st.EventSeq
	st.Events = append(st.Events, e)
	if s.OnEvent != nil {
		s.OnEvent(e)
	}
}

func (s *Simulation) emitNews(r Result, category string) {
	for _, n := range r.News {
		s.EmitEvent(Event{Description: n, Category: category})
	}
}

// TickMonth advances the campaign to the given month and runs the budget,
// stats, party, approval, bill and election steps in that order.
func (s *Simulation) TickMonth(month uint64) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick(month)
}

// TickNext advances exactly one month past the current one. Concurrent
// callers each get their own month.
func (s *Simulation) TickNext() (uint64, []Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	month := s.state.Month + 1
	return month, s.tick(month)
}

func (s *Simulation) tick(month uint64) []Result {
	st := s.state
	st.Month = month
	now := st.Now()
	src := entropy.New(st.Seed + int64(month)*1000)

	var results []Result
	record := func(r Result, category string) {
		results = append(results, r)
		s.emitNews(r, category)
		if r.Status == StatusSkipped {
			slog.Debug("monthly step skipped", "step", r.Step, "reason", r.Reason, "month", month)
		}
	}

	// Budget.
	budget, r := RunMonthlyBudgetUpdate(st.City)
	if budget != nil {
		next := *st.City
		next.Stats.Budget = *budget
		st.City = &next
	}
	record(r, CategoryBudget)

	// Stats.
	city, r := RunMonthlyStatUpdate(src.Derive(streamStats), st.City)
	if city != nil {
		st.City = city
	}
	record(r, CategoryStats)

	// Party popularity.
	var landscape []*politics.Party
	if st.City != nil {
		landscape = st.City.PoliticalLandscape
	}
	parties, r := RunMonthlyPartyPopularityUpdate(src.Derive(streamParties), landscape, st.IncumbentPartyID(), st.City)
	if parties != nil {
		next := *st.City
		next.PoliticalLandscape = parties
		st.City = &next
	}
	record(r, CategoryPolitics)

	// Player approval.
	mood := ""
	if st.City != nil {
		mood = st.City.Stats.OverallCitizenMood
	}
	approval, r := RunMonthlyPlayerApprovalUpdate(src.Derive(streamApproval), st.Player, mood, st.PlayerIsMayor())
	if r.Status == StatusApplied {
		// Politicians are shared between offices and rosters, so the rating
		// is written in place.
		st.Player.ApprovalRating = approval
	}
	record(r, CategoryPolitics)

	record(s.voteOnBills(src.Derive(streamVotes)), CategoryBill)

	drafted, r := RunAIBillProposals(src.Derive(streamBills), s.author, st.Council(), st.City, st.PendingBills(), now)
	st.Bills = append(st.Bills, drafted...)
	record(r, CategoryBill)

	record(s.runElections(src.Derive(streamElections)), CategoryElection)

	if len(st.Events) > MaxEvents {
		st.Events = append([]Event(nil), st.Events[len(st.Events)-MaxEvents:]...)
	}
	s.lastResults = results

	s.logMonth(results)
	return results
}

// voteOnBills puts every bill proposed before this month to the council and
// enacts those that pass.
func (s *Simulation) voteOnBills(src *entropy.Source) Result {
	const step = "votes"
	st := s.state
	council := st.Council()
	if len(council) == 0 {
		return skipped(step, "no council")
	}
	now := st.Now()

	res := Result{Step: step, Status: StatusUnchanged}
	for _, b := range st.PendingBills() {
		if !b.ProposedOn.Before(now) {
			continue
		}
		legislation.Vote(src, b, council, now)
		res.Status = StatusApplied
		if b.Status != legislation.StatusPassed {
			res.News = append(res.News, fmt.Sprintf("Council rejects the %s (%d-%d)", b.Title, b.VotesFor, b.VotesAgainst))
			continue
		}
		next, err := legislation.Enact(st.City, b)
		if err != nil {
			slog.Warn("bill passed but could not be enacted", "bill", b.ID, "error", err)
			continue
		}
		st.City = next
		res.News = append(res.News, fmt.Sprintf("Council passes the %s (%d-%d)", b.Title, b.VotesFor, b.VotesAgainst))
	}
	return res
}

// runElections refreshes polling for upcoming elections, resolves those
// whose date has arrived, seats the winners and schedules the next cycle.
func (s *Simulation) runElections(src *entropy.Source) Result {
	const step = "elections"
	st := s.state
	if len(st.Elections) == 0 {
		return skipped(step, "no elections scheduled")
	}
	now := st.Now()

	res := Result{Step: step, Status: StatusUnchanged}
	var scheduled []*election.Election
	for _, e := range st.Elections {
		if e.Concluded() {
			continue
		}
		entity := st.Entity(e.Level)
		if entity == nil {
			continue
		}
		if now.Before(e.ElectionDate) {
			election.RefreshPolling(src, e, entity)
			continue
		}

		// Polling lives on the politician, so someone standing in two races
		// is rescored for this one before the count.
		election.RefreshPolling(src, e, entity)
		res.Status = StatusApplied
		out, err := election.Resolve(src, e, entity.AdultPopulation())
		if err != nil {
			slog.Warn("election could not be resolved", "election", e.ID, "error", err)
			continue
		}
		t, ok := election.TypeByID(st.ElectionTypes, e.TypeID)
		if !ok {
			slog.Warn("election type missing", "election", e.ID, "type", e.TypeID)
			continue
		}

		termEnds := e.ElectionDate.AddDate(max(t.TermYears, 1), 0, 0)
		office := st.Office(e.TypeID)
		if office != nil {
			office.SeatWinners(out.Winners, t.SingleSeat(), termEnds)
		}
		res.News = append(res.News, describeOutcome(e, out))
		s.logElection(e, out)

		var incumbents []*politics.Politician
		if office != nil {
			incumbents = office.Incumbents()
		}
		scheduled = append(scheduled, election.NewInstance(src, election.InstanceParams{
			Type:         t,
			Entity:       entity,
			Incumbents:   incumbents,
			ElectionDate: termEnds,
		}))
	}
	st.Elections = append(st.Elections, scheduled...)
	return res
}

func describeOutcome(e *election.Election, out election.Outcome) string {
	if len(out.Winners) == 0 {
		return fmt.Sprintf("%s election ends without a winner", e.OfficeName)
	}
	if len(out.Winners) == 1 {
		w := out.Winners[0]
		party := w.PartyName
		if party == "" {
			party = politics.IndependentName
		}
		return fmt.Sprintf("%s (%s) wins the %s election", w.Name, party, e.OfficeName)
	}
	return fmt.Sprintf("%d seats filled in the %s election", len(out.Winners), e.OfficeName)
}

func (s *Simulation) logElection(e *election.Election, out election.Outcome) {
	winners := make([]string, len(out.Winners))
	for i, w := range out.Winners {
		winners[i] = w.Name
	}
	slog.Info("election resolved",
		"election", e.ID,
		"system", e.ElectoralSystem,
		"turnout", out.Turnout,
		"runoff", out.RunoffHeld,
		"winners", winners,
	)
}

func (s *Simulation) logMonth(results []Result) {
	st := s.state
	counts := make(map[Status]int)
	for _, r := range results {
		counts[r.Status]++
	}
	attrs := []any{
		"month", st.Month,
		"date", SimTime(st.StartDate, st.Month),
		"applied", counts[StatusApplied],
		"unchanged", counts[StatusUnchanged],
		"skipped", counts[StatusSkipped],
	}
	if c := st.City; c != nil {
		attrs = append(attrs,
			"mood", c.Stats.OverallCitizenMood,
			"outlook", c.Stats.EconomicOutlook,
			"balance", c.Stats.Budget.Balance,
			"debt", c.Stats.Budget.AccumulatedDebt,
		)
	}
	if st.Player != nil {
		attrs = append(attrs, "approval", fmt.Sprintf("%.1f", st.Player.ApprovalRating))
	}
	slog.Info("monthly report", attrs...)
}
