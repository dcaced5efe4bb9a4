package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/civic-sim/internal/api"
	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/legislation"
	"github.com/talgya/civic-sim/internal/llm"
	"github.com/talgya/civic-sim/internal/persistence"
)

func runCmd(a *app) *cobra.Command {
	var fresh bool
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the campaign in real time with the HTTP API, resuming from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.run(cmd.Context(), fresh)
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "discard the saved campaign and generate a new one")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP API port (overrides config)")
	return cmd
}

func (a *app) run(ctx context.Context, fresh bool) error {
	cfg := a.cfg

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	// ── Load or Generate Campaign ─────────────────────────────────────
	st, err := db.LoadState()
	switch {
	case fresh || errors.Is(err, persistence.ErrNoCampaign):
		if st, err = a.newCampaign(); err != nil {
			return err
		}
		if err := db.SaveState(st); err != nil {
			return fmt.Errorf("initial save: %w", err)
		}
	case err != nil:
		return err
	default:
		slog.Info("campaign restored",
			"campaign", st.CampaignID,
			"month", st.Month,
			"sim_time", engine.SimTime(st.StartDate, st.Month),
		)
	}

	// ── LLM Client ────────────────────────────────────────────────────
	client := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model)
	var author legislation.Author
	if client.Enabled() {
		author = llm.BillAuthor{Client: client}
		slog.Info("LLM client enabled", "model", cfg.LLM.Model)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, gazette and bill titles use templates")
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(st, author)
	save := func() {
		var err error
		sim.View(func(st *engine.State) { err = db.SaveState(st) })
		if err != nil {
			slog.Error("save failed", "error", err)
		}
	}

	eng := engine.NewEngine(st.Month, cfg.MonthDuration())
	eng.SetSpeed(cfg.Engine.Speed)
	eng.OnMonth = func(month uint64) {
		sim.TickMonth(month)
		save()
	}
	eng.OnYear = func(month uint64) {
		sim.View(func(st *engine.State) {
			slog.Info("year complete",
				"sim_time", engine.SimTime(st.StartDate, month),
				"debt", st.City.Stats.Budget.AccumulatedDebt,
				"bills", len(st.Bills),
			)
		})
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Server.AdminKey == "" {
		slog.Warn("CIVICSIM_ADMIN_KEY not set, admin POST endpoints are disabled")
	}
	srv := &api.Server{
		Sim:         sim,
		Eng:         eng,
		LLM:         client,
		DB:          db,
		Port:        cfg.Server.Port,
		AdminKey:    cfg.Server.AdminKey,
		CORSOrigins: cfg.Origins(),
		GazetteRate: cfg.Server.GazetteRate,
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\n%s is in session: %s residents, month %d (%s).\n",
		st.City.Name, formatInt(st.City.Population), st.Month, engine.SimTime(st.StartDate, st.Month))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	err = g.Wait()

	// Final save on shutdown.
	slog.Info("final save...")
	save()

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err == nil {
		fmt.Println("Simulation stopped. Campaign saved.")
	}
	return err
}
