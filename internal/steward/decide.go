package steward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/talgya/civic-sim/internal/llm"
	"github.com/talgya/civic-sim/internal/world"
)

// Actions the steward may take.
const (
	ActionNone       = "none"
	ActionAllocation = "allocation"
	ActionTax        = "tax"
)

// Per-cycle limits on how far one intervention may move the budget.
const (
	MaxAllocationStep = 0.10  // fraction of the current line
	MaxTaxStep        = 0.005 // absolute rate
	MaxTaxRate        = 0.10
	ruleAllocationCut = 0.05
	ruleTaxRaise      = 0.0025
)

const systemPrompt = `You are the City Steward, an autonomous budget officer for a simulated city. Each month the city's income is recomputed from its tax rates, the annual balance is applied to its debt, and citizen mood follows unemployment, poverty and crime.

Your role: read the city's condition and recommend zero or one modest budget intervention per cycle. Prefer doing nothing.

## Priorities (in order)

1. SOLVENCY: stop a deficit from compounding into debt larger than a year's income.
2. WELFARE: when unemployment is above 10% or citizens are Very Unhappy, fund the programs that address the main issues.
3. RESTRAINT: never swing the budget. One line or one tax per cycle.

## Available Actions

- "none": no intervention. This is the RIGHT choice most of the time.
- "allocation": set one expense line to a new annual amount. Moves of more than 10% are capped.
- "tax": set one tax rate (property, sales, business or income) as a fraction, e.g. 0.0125. Moves of more than half a point are capped; rates stay within 0 and 0.1.

## Response Format

Respond with ONLY valid JSON:
{
  "action": "allocation",
  "rationale": "Deficit is 6% of income; trimming administration.",
  "intervention": {"type": "allocation", "category": "administration", "amount": 1200000}
}
or {"action": "tax", "rationale": "...", "intervention": {"type": "tax", "tax": "property", "rate": 0.012}}
or {"action": "none", "rationale": "...", "intervention": null}`

// Decision is the steward's recommended action.
type Decision struct {
	Action       string        `json:"action"`
	Rationale    string        `json:"rationale"`
	Intervention *Intervention `json:"intervention"`
}

// Intervention is the payload for the admin budget and tax endpoints.
type Intervention struct {
	Type     string  `json:"type"`
	Category string  `json:"category,omitempty"`
	Amount   int64   `json:"amount,omitempty"`
	Tax      string  `json:"tax,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
}

// Decide asks the LLM for a decision, or applies the built-in rules when the
// client is not configured.
func Decide(ctx context.Context, client *llm.Client, snap *Snapshot, h *Health, mem *CycleMemory) (*Decision, error) {
	if !client.Enabled() {
		return RuleDecision(snap, h), nil
	}

	prompt := formatSnapshot(snap, h) + mem.FormatForPrompt()
	slog.Debug("steward prompt", "length", len(prompt))

	resp, err := client.Complete(ctx, systemPrompt, prompt, 512)
	if err != nil {
		return nil, fmt.Errorf("llm call: %w", err)
	}

	// Strip markdown fences if the model wraps them anyway.
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var d Decision
	if err := json.Unmarshal([]byte(resp), &d); err != nil {
		return nil, fmt.Errorf("parse decision (raw: %s): %w", resp, err)
	}
	if err := enforceGuardrails(&d, snap); err != nil {
		return nil, fmt.Errorf("guardrail violation: %w", err)
	}
	return &d, nil
}

// RuleDecision is the deterministic policy: raise the property tax in a
// crisis, trim the largest program while in deficit, and fund economic
// development when unemployment is high and the books balance.
func RuleDecision(snap *Snapshot, h *Health) *Decision {
	b := snap.City.Stats.Budget
	d := &Decision{Action: ActionNone, Rationale: fmt.Sprintf("city is %s; no intervention needed", strings.ToLower(h.CrisisLevel))}

	switch {
	case h.CrisisLevel == CrisisCritical && b.TaxRates.Property < MaxTaxRate:
		d.Action = ActionTax
		d.Intervention = &Intervention{Tax: "property", Rate: b.TaxRates.Property + ruleTaxRaise}
		d.Rationale = fmt.Sprintf("deficit %.1f%% of income and debt %s; raising property tax",
			h.DeficitRatio*100, humanize.Comma(h.Debt))

	case h.DeficitRatio > 0 && h.CrisisLevel != CrisisWatch:
		cat := largestProgram(b)
		if cat == "" {
			break
		}
		cur := b.ExpenseAllocations[cat]
		d.Action = ActionAllocation
		d.Intervention = &Intervention{Category: string(cat), Amount: int64(math.Round(float64(cur) * (1 - ruleAllocationCut)))}
		d.Rationale = fmt.Sprintf("deficit %.1f%% of income; trimming %s", h.DeficitRatio*100, cat)

	case h.Unemployment > 10 && h.Balance >= 0:
		cur := b.ExpenseAllocations[world.ExpenseEconomicDevelopment]
		d.Action = ActionAllocation
		d.Intervention = &Intervention{
			Category: string(world.ExpenseEconomicDevelopment),
			Amount:   int64(math.Round(float64(cur) * (1 + ruleAllocationCut))),
		}
		d.Rationale = fmt.Sprintf("unemployment %.1f%% with a balanced budget; funding economic development", h.Unemployment)
	}

	// Clamps a raise at the tax ceiling.
	if err := enforceGuardrails(d, snap); err != nil {
		return &Decision{Action: ActionNone, Rationale: err.Error()}
	}
	return d
}

func largestProgram(b world.Budget) world.ExpenseCategory {
	var best world.ExpenseCategory
	var top int64
	for _, c := range world.ProgramCategories {
		if v := b.ExpenseAllocations[c]; v > top {
			best, top = c, v
		}
	}
	return best
}

var errNoPayload = errors.New("intervention payload required")

// enforceGuardrails validates and clamps the decision within safe bounds.
func enforceGuardrails(d *Decision, snap *Snapshot) error {
	switch d.Action {
	case ActionNone:
		d.Intervention = nil
		return nil
	case ActionAllocation, ActionTax:
		if d.Intervention == nil {
			return fmt.Errorf("action %q: %w", d.Action, errNoPayload)
		}
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}

	iv := d.Intervention
	iv.Type = d.Action
	b := snap.City.Stats.Budget

	switch d.Action {
	case ActionAllocation:
		cat := world.ExpenseCategory(iv.Category)
		if !world.IsExpenseCategory(cat) || cat == world.ExpenseDebtServicing {
			return fmt.Errorf("allocation category %q not allowed", iv.Category)
		}
		cur := b.ExpenseAllocations[cat]
		step := max(int64(float64(cur)*MaxAllocationStep), 1)
		if clamped := min(max(iv.Amount, cur-step, 0), cur+step); clamped != iv.Amount {
			slog.Warn("steward allocation capped", "category", cat, "requested", iv.Amount, "capped", clamped)
			iv.Amount = clamped
		}
		iv.Tax, iv.Rate = "", 0

	case ActionTax:
		cur, ok := taxRate(b.TaxRates, iv.Tax)
		if !ok {
			return fmt.Errorf("unknown tax %q", iv.Tax)
		}
		if clamped := min(max(iv.Rate, cur-MaxTaxStep, 0), cur+MaxTaxStep, MaxTaxRate); clamped != iv.Rate {
			slog.Warn("steward tax capped", "tax", iv.Tax, "requested", iv.Rate, "capped", clamped)
			iv.Rate = clamped
		}
		iv.Category, iv.Amount = "", 0
	}
	return nil
}

func taxRate(r world.TaxRates, tax string) (float64, bool) {
	switch tax {
	case "property":
		return r.Property, true
	case "sales":
		return r.Sales, true
	case "business":
		return r.Business, true
	case "income":
		return r.Income, true
	}
	return 0, false
}

// formatSnapshot builds a concise prompt from the snapshot.
func formatSnapshot(snap *Snapshot, h *Health) string {
	var b strings.Builder
	c := snap.City
	s := c.Stats
	bud := s.Budget

	fmt.Fprintf(&b, "## %s (%s)\n", c.Name, snap.Status.SimTime)
	fmt.Fprintf(&b, "Population: %s | Mood: %s | Outlook: %s\n", humanize.Comma(int64(c.Population)), s.OverallCitizenMood, s.EconomicOutlook)
	fmt.Fprintf(&b, "Unemployment %.1f%% | Poverty %.1f%% | Crime %.1f per 1000\n", s.UnemploymentRate, s.PovertyRate, s.CrimeRatePer1000)
	if len(s.MainIssues) > 0 {
		fmt.Fprintf(&b, "Main issues: %s\n", strings.Join(s.MainIssues, ", "))
	}
	fmt.Fprintf(&b, "Crisis level: %s\n\n", h.CrisisLevel)

	b.WriteString("## Budget\n")
	fmt.Fprintf(&b, "Income %s | Expenses %s | Balance %s | Debt %s\n",
		humanize.Comma(bud.TotalAnnualIncome), humanize.Comma(bud.TotalAnnualExpenses),
		humanize.Comma(bud.Balance), humanize.Comma(bud.AccumulatedDebt))
	r := bud.TaxRates
	fmt.Fprintf(&b, "Tax rates: property %.4f, sales %.4f, business %.4f, income %.4f\n", r.Property, r.Sales, r.Business, r.Income)
	for _, cat := range world.ExpenseCategories {
		fmt.Fprintf(&b, "- %s: %s\n", cat, humanize.Comma(bud.ExpenseAllocations[cat]))
	}
	b.WriteString("\n")

	if len(snap.Events) > 0 {
		b.WriteString("## Recent events\n")
		for _, e := range snap.Events {
			fmt.Fprintf(&b, "- [%s] %s\n", e.Category, e.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}
