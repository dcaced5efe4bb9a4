package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/talgya/civic-sim/internal/election"
	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/politics"
)

var (
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	header  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell    = lipgloss.NewStyle().Padding(0, 1)
)

func formatInt(n int) string { return humanize.Comma(int64(n)) }

func money(n int64) string {
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dim).
		BorderRow(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", heading.Render(title))
}

// renderCampaign prints the overview produced by generate.
func renderCampaign(w io.Writer, st *engine.State) {
	fmt.Fprintf(w, "%s %s\n", heading.Render("Campaign"), dim.Render(st.CampaignID))
	fmt.Fprintf(w, "Seed %d, %s, starting %s\n", st.Seed, st.CountryID, engine.SimTime(st.StartDate, st.Month))

	if r := st.Region; r != nil {
		section(w, fmt.Sprintf("State of %s", r.Name))
		t := newTable("City", "Population", "Wealth", "Outlook", "Mood")
		for _, c := range r.Cities {
			name := c.Name
			if c.ID == st.City.ID {
				name += " *"
			}
			t.Row(name, formatInt(c.Population), c.Stats.Wealth, c.Stats.EconomicOutlook, c.Stats.OverallCitizenMood)
		}
		fmt.Fprintln(w, t.Render())
	}

	renderCity(w, st)
	renderParties(w, st.City.PoliticalLandscape, st.IncumbentPartyID())

	section(w, "Offices")
	t := newTable("Office", "Level", "Holders", "Term ends")
	for _, o := range st.Offices {
		t.Row(o.OfficeName, o.Level, holders(o), o.TermEnds.Format("Jan 2006"))
	}
	fmt.Fprintln(w, t.Render())

	if p := st.Player; p != nil {
		section(w, "You")
		fmt.Fprintf(w, "%s (%s), %s, approval %.0f%%\n", p.Name, p.PartyName, p.CalculatedIdeology, p.ApprovalRating)
	}

	section(w, "Scheduled elections")
	t = newTable("Election", "System", "Date", "Seats", "Candidates")
	for _, e := range st.UpcomingElections() {
		t.Row(e.OfficeName, e.ElectoralSystem, e.ElectionDate.Format("Jan 2006"),
			fmt.Sprint(e.NumberOfSeatsToFill), fmt.Sprint(len(e.AllCandidates())))
	}
	fmt.Fprintln(w, t.Render())
}

func holders(o *politics.Office) string {
	inc := o.Incumbents()
	switch {
	case len(inc) == 0:
		return "vacant"
	case len(inc) == 1:
		return fmt.Sprintf("%s (%s)", inc[0].Name, inc[0].PartyName)
	}
	return fmt.Sprintf("%d members", len(inc))
}

func renderCity(w io.Writer, st *engine.State) {
	c := st.City
	s := c.Stats
	b := s.Budget

	section(w, fmt.Sprintf("%s, %s residents", c.Name, formatInt(c.Population)))
	fmt.Fprintf(w, "%s %s city; mood %s, outlook %s, education %s\n",
		s.Wealth, strings.ToLower(s.Type), s.OverallCitizenMood, s.EconomicOutlook, s.EducationQuality)
	fmt.Fprintf(w, "Unemployment %.1f%%  Poverty %.1f%%  Crime %.1f/1000  Insured %.1f%%\n",
		s.UnemploymentRate, s.PovertyRate, s.CrimeRatePer1000, s.HealthcareCoverage)
	if len(s.MainIssues) > 0 {
		fmt.Fprintf(w, "Main issues: %s\n", strings.Join(s.MainIssues, ", "))
	}
	fmt.Fprintf(w, "Budget: income %s, expenses %s, balance %s, debt %s\n",
		money(b.TotalAnnualIncome), money(b.TotalAnnualExpenses), money(b.Balance), money(b.AccumulatedDebt))
}

func renderParties(w io.Writer, landscape []*politics.Party, incumbentID string) {
	parties := politics.CloneLandscape(landscape)
	slices.SortFunc(parties, func(a, b *politics.Party) int {
		switch {
		case a.Popularity > b.Popularity:
			return -1
		case a.Popularity < b.Popularity:
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})

	section(w, "Parties")
	t := newTable("Party", "Ideology", "Popularity")
	for _, p := range parties {
		name := p.Name
		if p.ID == incumbentID {
			name += " (governing)"
		}
		t.Row(name, p.Ideology, fmt.Sprintf("%.1f%%", p.Popularity))
	}
	fmt.Fprintln(w, t.Render())
}

// renderPoll prints the current standings of one election.
func renderPoll(w io.Writer, e *election.Election, partyNames map[string]string) {
	section(w, fmt.Sprintf("%s, %s (%s)", e.OfficeName, e.ElectionDate.Format("January 2006"), e.ElectoralSystem))

	if len(e.PartyPolling) > 0 {
		ids := make([]string, 0, len(e.PartyPolling))
		for id := range e.PartyPolling {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, func(a, b string) int {
			if d := e.PartyPolling[b] - e.PartyPolling[a]; d != 0 {
				return d
			}
			return strings.Compare(a, b)
		})
		t := newTable("Party list", "Poll")
		for _, id := range ids {
			name := partyNames[id]
			if cid, ok := strings.CutPrefix(id, election.IndependentListPrefix); ok && name == "" {
				if c := e.FindCandidate(cid); c != nil {
					name = c.Name + " (" + politics.IndependentName + ")"
				}
			}
			if name == "" {
				name = id
			}
			t.Row(name, fmt.Sprintf("%d%%", e.PartyPolling[id]))
		}
		fmt.Fprintln(w, t.Render())
	}

	if len(e.Candidates) == 0 {
		return
	}
	cands := slices.Clone(e.Candidates)
	slices.SortStableFunc(cands, func(a, b *politics.Politician) int { return b.Polling - a.Polling })
	t := newTable("Candidate", "Party", "Poll", "Recognition", "Score")
	for _, c := range cands {
		name := c.Name
		if c.IsIncumbent {
			name += " (inc.)"
		}
		if c.IsPlayer {
			name += " *"
		}
		t.Row(name, c.PartyName, fmt.Sprintf("%d%%", c.Polling), formatInt(c.NameRecognition), fmt.Sprint(c.BaseScore))
	}
	fmt.Fprintln(w, t.Render())
}

// renderMonth prints one month of step results for simulate. Quiet steps
// are listed only when verbose.
func renderMonth(w io.Writer, label string, results []engine.Result, verbose bool) {
	fmt.Fprintln(w, heading.Render(label))
	for _, r := range results {
		switch {
		case r.Status == engine.StatusApplied:
			for _, n := range r.News {
				fmt.Fprintf(w, "  %s\n", n)
			}
		case !verbose:
		case r.Status == engine.StatusSkipped:
			fmt.Fprintf(w, "  %s\n", dim.Render(fmt.Sprintf("%s skipped: %s", r.Step, r.Reason)))
		default:
			fmt.Fprintf(w, "  %s\n", dim.Render(r.Step+" unchanged"))
		}
	}
}
