package main

import (
	"github.com/spf13/cobra"

	"ytscribe/internal/catalog"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the hosted models available for punctuation and metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			models := catalog.Models()
			if jsonOut {
				return writeJSON(cmd, models)
			}
			rows := make([][]string, 0, len(models))
			for _, m := range models {
				marker := ""
				if m.Name == cfg.Clarifai.DefaultModel {
					marker = "yes"
				}
				rows = append(rows, []string{m.Name, m.UserID + "/" + m.AppID, m.ModelID, marker})
			}
			writeRows(cmd.OutOrStdout(), []string{"Name", "Owner/App", "Model", "Default"}, rows, nil)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
