package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/persistence"
)

func simulateCmd(a *app) *cobra.Command {
	var months uint64
	var verbose, save bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a new campaign headless for a number of months and print each month's news",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.newCampaign()
			if err != nil {
				return err
			}
			sim := engine.NewSimulation(st, nil)
			w := cmd.OutOrStdout()

			for m := uint64(1); m <= months; m++ {
				results := sim.TickMonth(m)
				renderMonth(w, engine.SimTime(st.StartDate, m), results, verbose)
			}

			sim.View(func(st *engine.State) {
				renderCity(w, st)
				renderParties(w, st.City.PoliticalLandscape, st.IncumbentPartyID())
				if p := st.Player; p != nil {
					fmt.Fprintf(w, "\n%s finishes with %.0f%% approval", p.Name, p.ApprovalRating)
					if st.PlayerIsMayor() {
						fmt.Fprint(w, " as mayor")
					}
					fmt.Fprintln(w)
				}
			})

			if !save {
				return nil
			}
			return a.saveCampaign(sim)
		},
	}
	cmd.Flags().Uint64VarP(&months, "months", "m", 24, "months to simulate")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list unchanged and skipped steps too")
	cmd.Flags().BoolVar(&save, "save", false, "store the result in the database so run resumes from it")
	return cmd
}

func (a *app) saveCampaign(sim *engine.Simulation) error {
	path := a.cfg.Database.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	db, err := persistence.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	sim.View(func(st *engine.State) { err = db.SaveState(st) })
	if err != nil {
		return err
	}
	slog.Info("campaign saved", "path", path, "month", sim.CurrentMonth())
	return nil
}
