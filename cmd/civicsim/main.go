// Command civicsim runs the election and polling simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/talgya/civic-sim/internal/config"
	"github.com/talgya/civic-sim/internal/engine"
	"github.com/talgya/civic-sim/internal/entropy"
)

// app carries the loaded configuration to every subcommand.
type app struct {
	cfgPath  string
	seed     int64
	country  string
	logLevel string

	cfg *config.Config
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "civicsim",
		Short:         "Procedural city politics: elections, polling and monthly governance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "civicsim.yaml", "config file (written with defaults if missing)")
	rootCmd.PersistentFlags().Int64Var(&a.seed, "seed", 0, "campaign seed (overrides config; 0 draws a fresh one)")
	rootCmd.PersistentFlags().StringVar(&a.country, "country", "", "country ID (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	rootCmd.AddCommand(runCmd(a))
	rootCmd.AddCommand(generateCmd(a))
	rootCmd.AddCommand(pollCmd(a))
	rootCmd.AddCommand(simulateCmd(a))
	rootCmd.AddCommand(stewardCmd(a))
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Campaign.Seed = a.seed
	}
	if a.country != "" {
		cfg.Campaign.Country = a.country
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", a.cfgPath, err)
	}
	a.cfg = cfg
	setupLogging(cfg.Logging)
	return nil
}

// setupLogging installs the default slog handler: text on a terminal, JSON
// otherwise, unless the config forces a format.
func setupLogging(lc config.LoggingConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	out := os.Stderr
	var h slog.Handler
	switch lc.Format {
	case "json":
		h = slog.NewJSONHandler(out, opts)
	case "text":
		h = slog.NewTextHandler(out, opts)
	default:
		if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
			h = slog.NewTextHandler(out, opts)
		} else {
			h = slog.NewJSONHandler(out, opts)
		}
	}
	slog.SetDefault(slog.New(h))
}

// newCampaign generates a campaign from the config. A zero seed draws a
// fresh one, which is logged so the run can be reproduced.
func (a *app) newCampaign() (*engine.State, error) {
	c := a.cfg.Campaign
	start, err := a.cfg.Start()
	if err != nil {
		return nil, err
	}

	seed := c.Seed
	if seed == 0 {
		seed = entropy.NewSeed()
	}
	st := engine.NewCampaign(entropy.New(seed), engine.CampaignParams{
		CountryID:          c.Country,
		CityName:           c.CityName,
		RegionName:         c.RegionName,
		Cities:             c.Cities,
		StatePopulation:    c.StatePopulation,
		StartDate:          start,
		PlayerName:         c.PlayerName,
		PlayerPartyID:      c.PlayerParty,
		PlayerRunsForMayor: c.PlayerRunsForMayor,
	})
	slog.Info("campaign generated",
		"campaign", st.CampaignID,
		"seed", seed,
		"country", st.CountryID,
		"city", st.City.Name,
		"population", st.City.Population,
	)
	return st, nil
}
