package steward

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/civic-sim/internal/llm"
)

// Steward runs observe, decide and act cycles against a running campaign.
type Steward struct {
	Observer *Observer
	Actor    *Actor
	LLM      *llm.Client
	Memory   *CycleMemory
}

// New wires a steward for the API at baseURL.
func New(baseURL, adminKey string, client *llm.Client, mem *CycleMemory) *Steward {
	if mem == nil {
		mem = &CycleMemory{}
	}
	return &Steward{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, adminKey),
		LLM:      client,
		Memory:   mem,
	}
}

// RunCycle executes one observe, decide, act cycle and records it.
func (s *Steward) RunCycle(ctx context.Context) (*CycleRecord, error) {
	slog.Info("steward cycle starting")

	snap, err := s.Observer.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}
	h := Triage(snap)
	slog.Info("observation complete",
		"month", snap.Status.Month,
		"city", snap.City.Name,
		"balance", h.Balance,
		"debt", h.Debt,
		"crisis", h.CrisisLevel,
	)

	d, err := Decide(ctx, s.LLM, snap, h, s.Memory)
	if err != nil {
		return nil, fmt.Errorf("decide: %w", err)
	}
	slog.Info("decision made", "action", d.Action, "rationale", d.Rationale)

	rec := CycleRecord{
		Month:       snap.Status.Month,
		Action:      d.Action,
		Balance:     h.Balance,
		Debt:        h.Debt,
		Deficit:     h.DeficitRatio,
		CrisisLevel: h.CrisisLevel,
		Rationale:   d.Rationale,
	}

	if d.Action != ActionNone && d.Intervention != nil {
		rec.Target = d.Intervention.Category + d.Intervention.Tax
		result, err := s.Actor.Act(ctx, d.Intervention)
		if err != nil {
			return nil, fmt.Errorf("act: %w", err)
		}
		slog.Info("intervention executed", "type", d.Intervention.Type, "target", rec.Target, "details", result.Details)
	}

	s.Memory.Record(rec)
	if err := s.Memory.Save(); err != nil {
		slog.Error("steward memory save failed", "error", err)
	}
	return &rec, nil
}

// Run waits for the API, runs a cycle immediately and then one per
// interval until ctx is cancelled. Failed cycles are logged and skipped.
func (s *Steward) Run(ctx context.Context, interval time.Duration) error {
	if err := s.WaitForAPI(ctx, 5*time.Minute); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			slog.Error("steward cycle failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForAPI polls the status endpoint with exponential backoff until it
// responds or the timeout passes.
func (s *Steward) WaitForAPI(ctx context.Context, timeout time.Duration) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(timeout)

	for {
		if s.Observer.Ready(ctx) {
			slog.Info("campaign API is ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("campaign API at %s not ready after %s", s.Observer.BaseURL, timeout)
		}
		slog.Info("campaign API not ready, retrying...", "backoff", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
