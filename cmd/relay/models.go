package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petasbytes/advisor-relay/internal/config"
	"github.com/petasbytes/advisor-relay/internal/provider"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the configured provider offers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lister, err := provider.NewLister(config.ProviderSettings(a.v, a.cfg))
			if err != nil {
				return err
			}
			ids, err := lister.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}
			for _, id := range ids {
				marker := " "
				if id == a.cfg.Model {
					marker = "*"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
