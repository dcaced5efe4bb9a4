package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/civic-sim/internal/llm"
	"github.com/talgya/civic-sim/internal/steward"
)

func stewardCmd(a *app) *cobra.Command {
	var apiURL, memPath string
	var interval time.Duration
	var once bool

	cmd := &cobra.Command{
		Use:   "steward",
		Short: "Watch a running campaign and make budget interventions through the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if apiURL == "" {
				apiURL = fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)
			}
			return a.steward(cmd.Context(), apiURL, memPath, interval, once)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "campaign API base URL (default http://localhost:<server.port>)")
	cmd.Flags().StringVar(&memPath, "memory", "data/steward.json", "cycle memory file (empty keeps it in process)")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Minute, "time between cycles")
	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")
	return cmd
}

func (a *app) steward(ctx context.Context, apiURL, memPath string, interval time.Duration, once bool) error {
	cfg := a.cfg
	if cfg.Server.AdminKey == "" {
		return errors.New("steward needs CIVICSIM_ADMIN_KEY (server.admin_key)")
	}
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}

	client := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model)
	if !client.Enabled() {
		slog.Warn("ANTHROPIC_API_KEY not set, steward uses its built-in rules")
	}

	s := steward.New(apiURL, cfg.Server.AdminKey, client, steward.LoadMemory(memPath))
	slog.Info("steward starting", "api_url", apiURL, "interval", interval, "memory", memPath)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		if err := s.WaitForAPI(ctx, time.Minute); err != nil {
			return err
		}
		rec, err := s.RunCycle(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Month %d: %s, %s\n", rec.Month, rec.CrisisLevel, rec.Action)
		return nil
	}

	err := s.Run(ctx, interval)
	if errors.Is(err, context.Canceled) {
		fmt.Println("Steward stopped.")
		return nil
	}
	return err
}
