package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(cmd.Context(), deps.Requirements(cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				rows = append(rows, []string{
					status.Name,
					status.Command,
					yesNo(status.Available),
					status.Version,
					status.Detail,
				})
			}
			writeRows(cmd.OutOrStdout(), []string{"Name", "Command", "Available", "Version", "Detail"}, rows, nil)
			if missing := deps.Missing(statuses); len(missing) > 0 {
				return fmt.Errorf("%d required dependency missing: %s", len(missing), missing[0].Name)
			}
			return nil
		},
	}
}
