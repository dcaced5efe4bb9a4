package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/politics"
)

func pollCmd(a *app) *cobra.Command {
	var months uint64
	var office string

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Print the polling of every upcoming election, optionally after advancing some months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.newCampaign()
			if err != nil {
				return err
			}
			sim := engine.NewSimulation(st, nil)
			for m := uint64(1); m <= months; m++ {
				sim.TickMonth(m)
			}

			w := cmd.OutOrStdout()
			found := false
			sim.View(func(st *engine.State) {
				fmt.Fprintf(w, "%s polling, %s\n", st.City.Name, engine.SimTime(st.StartDate, st.Month))

				names := partyNames(st.City.PoliticalLandscape)
				if r := st.Region; r != nil && r.Entity != nil {
					for id, n := range partyNames(r.Entity.PoliticalLandscape) {
						names[id] = n
					}
				}
				for _, e := range st.UpcomingElections() {
					if office != "" && e.TypeID != office {
						continue
					}
					found = true
					renderPoll(w, e, names)
				}
			})
			if office != "" && !found {
				return fmt.Errorf("no upcoming election matches %q", office)
			}
			return nil
		},
	}
	cmd.Flags().Uint64VarP(&months, "months", "m", 0, "months to simulate before polling")
	cmd.Flags().StringVar(&office, "office", "", "only this election type, e.g. mayor or city_council")
	return cmd
}

func partyNames(landscape []*politics.Party) map[string]string {
	out := make(map[string]string, len(landscape))
	for _, p := range landscape {
		out[p.ID] = p.Name
	}
	return out
}
