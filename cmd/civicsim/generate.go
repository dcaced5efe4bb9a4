package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func generateCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a campaign and print the state, its home city, parties, offices and elections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.newCampaign()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(st); err != nil {
					return fmt.Errorf("encode campaign: %w", err)
				}
				return nil
			}
			renderCampaign(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full campaign state as JSON")
	return cmd
}
