// Gazette generation: turns a month of campaign events into a news digest.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/politics"
)

// GazetteData holds the raw material for one issue.
type GazetteData struct {
	SimTime    string
	City       string
	Population int

	Mood         string
	Outlook      string
	MainIssues   []string
	Unemployment float64
	Poverty      float64
	Crime        float64
	Balance      int64
	Debt         int64

	Mayor     string
	Player    string
	Approval  float64
	Parties   []PartySummary
	Elections []ElectionSummary

	// Recent events by category.
	Budget   []string
	Stats    []string
	Politics []string
	Bills    []string
	Election []string
	Decrees  []string
}

// PartySummary is one line of the party standings.
type PartySummary struct {
	Name       string
	Popularity float64
}

// ElectionSummary describes an upcoming contest.
type ElectionSummary struct {
	Office string
	Date   string
	Leader string
}

// Gazette holds a generated issue.
type Gazette struct {
	GeneratedAt time.Time `json:"generated_at"`
	Month       uint64    `json:"month"`
	SimTime     string    `json:"sim_time"`
	Content     string    `json:"content"`
	Narrated    bool      `json:"narrated"`
}

// GazetteDataFromState gathers the last month's events and the city's
// condition. Callers must hold the simulation's read lock.
func GazetteDataFromState(st *engine.State) *GazetteData {
	d := &GazetteData{SimTime: engine.SimTime(st.StartDate, st.Month)}
	if c := st.City; c != nil {
		s := c.Stats
		d.City = c.Name
		d.Population = c.Population
		d.Mood = s.OverallCitizenMood
		d.Outlook = s.EconomicOutlook
		d.MainIssues = s.MainIssues
		d.Unemployment = s.UnemploymentRate
		d.Poverty = s.PovertyRate
		d.Crime = s.CrimeRatePer1000
		d.Balance = s.Budget.Balance
		d.Debt = s.Budget.AccumulatedDebt

		parties := politics.CloneLandscape(c.PoliticalLandscape)
		slices.SortFunc(parties, func(a, b *politics.Party) int {
			switch {
			case a.Popularity > b.Popularity:
				return -1
			case a.Popularity < b.Popularity:
				return 1
			}
			return strings.Compare(a.Name, b.Name)
		})
		for _, p := range parties {
			d.Parties = append(d.Parties, PartySummary{Name: p.Name, Popularity: p.Popularity})
		}
	}
	if m := st.Mayor(); m != nil {
		d.Mayor = m.Name
	}
	if p := st.Player; p != nil {
		d.Player = p.Name
		d.Approval = p.ApprovalRating
	}

	for _, e := range st.UpcomingElections() {
		sum := ElectionSummary{Office: e.OfficeName, Date: e.ElectionDate.Format("January 2006")}
		var leader *politics.Politician
		for _, c := range e.Candidates {
			if leader == nil || c.Polling > leader.Polling {
				leader = c
			}
		}
		if leader != nil {
			sum.Leader = fmt.Sprintf("%s (%d%%)", leader.Name, leader.Polling)
		}
		d.Elections = append(d.Elections, sum)
	}

	for _, ev := range st.Events {
		if ev.Month != st.Month {
			continue
		}
		switch ev.Category {
		case engine.CategoryBudget:
			d.Budget = append(d.Budget, ev.Description)
		case engine.CategoryStats:
			d.Stats = append(d.Stats, ev.Description)
		case engine.CategoryPolitics:
			d.Politics = append(d.Politics, ev.Description)
		case engine.CategoryBill:
			d.Bills = append(d.Bills, ev.Description)
		case engine.CategoryElection:
			d.Election = append(d.Election, ev.Description)
		case engine.CategoryAdmin:
			d.Decrees = append(d.Decrees, ev.Description)
		}
	}
	return d
}

const gazetteSystem = `You are the editor of the city gazette, a civic newspaper covering local government: the council, the mayor's office, the budget and upcoming elections. Write in a brisk, neutral newspaper register with a headline and short sections. Report the numbers you are given; do not invent new figures or people. Keep it under 400 words.`

// GenerateGazette writes an issue with the LLM, falling back to a plain
// digest when the client is disabled or the call fails.
func GenerateGazette(ctx context.Context, client *Client, month uint64, data *GazetteData) *Gazette {
	g := &Gazette{GeneratedAt: time.Now(), Month: month, SimTime: data.SimTime}
	if !client.Enabled() {
		g.Content = fallbackGazette(data)
		return g
	}

	content, err := client.Complete(ctx, gazetteSystem, buildGazettePrompt(data), 800)
	if err != nil {
		slog.Warn("gazette generation failed, using fallback", "error", err)
		g.Content = fallbackGazette(data)
		return g
	}
	g.Content = content
	g.Narrated = true
	return g
}

func writeSection(b *strings.Builder, title string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s\n", title)
	for i, it := range items {
		if i >= limit {
			fmt.Fprintf(b, "...and %d more.\n", len(items)-limit)
			break
		}
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

func buildGazettePrompt(d *GazetteData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write this month's edition of the %s Gazette.\n\n", d.City)
	fmt.Fprintf(&b, "DATE: %s\n", d.SimTime)
	fmt.Fprintf(&b, "CITY: %s residents. Mood: %s. Economic outlook: %s.\n", humanize.Comma(int64(d.Population)), d.Mood, d.Outlook)
	fmt.Fprintf(&b, "INDICATORS: unemployment %.1f%%, poverty %.1f%%, crime %.1f per 1000.\n", d.Unemployment, d.Poverty, d.Crime)
	fmt.Fprintf(&b, "BUDGET: balance %s, debt %s.\n", humanize.Comma(d.Balance), humanize.Comma(d.Debt))
	if len(d.MainIssues) > 0 {
		fmt.Fprintf(&b, "MAIN ISSUES: %s\n", strings.Join(d.MainIssues, ", "))
	}
	if d.Mayor != "" {
		fmt.Fprintf(&b, "MAYOR: %s\n", d.Mayor)
	}
	if d.Player != "" {
		fmt.Fprintf(&b, "COUNCILLOR TO WATCH: %s, approval %.0f%%\n", d.Player, d.Approval)
	}
	b.WriteString("\n")

	if len(d.Parties) > 0 {
		b.WriteString("PARTY STANDINGS:\n")
		for _, p := range d.Parties {
			fmt.Fprintf(&b, "- %s: %.1f%%\n", p.Name, p.Popularity)
		}
		b.WriteString("\n")
	}
	if len(d.Elections) > 0 {
		b.WriteString("UPCOMING ELECTIONS:\n")
		for _, e := range d.Elections {
			fmt.Fprintf(&b, "- %s on %s", e.Office, e.Date)
			if e.Leader != "" {
				fmt.Fprintf(&b, ", leading: %s", e.Leader)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeSection(&b, "ELECTION RESULTS:", d.Election, 5)
	writeSection(&b, "COUNCIL BUSINESS:", d.Bills, 6)
	writeSection(&b, "CITY HALL DECREES:", d.Decrees, 3)
	writeSection(&b, "BUDGET NEWS:", d.Budget, 3)
	writeSection(&b, "QUALITY OF LIFE:", append(slices.Clone(d.Stats), d.Politics...), 4)
	return b.String()
}

func fallbackGazette(d *GazetteData) string {
	var b strings.Builder

	title := "THE CITY GAZETTE"
	if d.City != "" {
		title = strings.ToUpper("The " + d.City + " Gazette")
	}
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", title, strings.Repeat("=", len(title)), d.SimTime)

	b.WriteString("STATE OF THE CITY\n")
	fmt.Fprintf(&b, "%s residents are %s; the economic outlook is %s.\n",
		humanize.Comma(int64(d.Population)), strings.ToLower(d.Mood), strings.ToLower(d.Outlook))
	fmt.Fprintf(&b, "Unemployment %.1f%%, poverty %.1f%%, crime %.1f per 1000.\n", d.Unemployment, d.Poverty, d.Crime)
	if d.Balance < 0 {
		fmt.Fprintf(&b, "The city runs a deficit of %s; debt stands at %s.\n\n", humanize.Comma(-d.Balance), humanize.Comma(d.Debt))
	} else {
		fmt.Fprintf(&b, "The city runs a surplus of %s; debt stands at %s.\n\n", humanize.Comma(d.Balance), humanize.Comma(d.Debt))
	}

	if d.Mayor != "" || d.Player != "" {
		b.WriteString("CITY HALL\n")
		if d.Mayor != "" {
			fmt.Fprintf(&b, "Mayor: %s\n", d.Mayor)
		}
		if d.Player != "" {
			fmt.Fprintf(&b, "%s's approval: %.0f%%\n", d.Player, d.Approval)
		}
		b.WriteString("\n")
	}

	if len(d.Parties) > 0 {
		b.WriteString("PARTY STANDINGS\n")
		for _, p := range d.Parties {
			fmt.Fprintf(&b, "- %s: %.1f%%\n", p.Name, p.Popularity)
		}
		b.WriteString("\n")
	}

	writeSection(&b, "ELECTION RESULTS", d.Election, 5)
	if len(d.Elections) > 0 {
		b.WriteString("ON THE BALLOT\n")
		for _, e := range d.Elections {
			fmt.Fprintf(&b, "- %s, %s", e.Office, e.Date)
			if e.Leader != "" {
				fmt.Fprintf(&b, " (leading: %s)", e.Leader)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	writeSection(&b, "COUNCIL BUSINESS", d.Bills, 6)
	writeSection(&b, "DECREES", d.Decrees, 3)
	writeSection(&b, "BUDGET", d.Budget, 3)
	writeSection(&b, "AROUND TOWN", append(slices.Clone(d.Stats), d.Politics...), 4)

	return strings.TrimRight(b.String(), "\n") + "\n"
}
