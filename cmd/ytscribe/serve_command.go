package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytscribe/internal/api"
	"ytscribe/internal/deps"
	"ytscribe/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the interactive web page and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx, bind)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind (host:port)")
	return cmd
}

func runServe(cmd *cobra.Command, ctx *commandContext, bind string) error {
	signalCtx := cmd.Context()

	cfg, captionFetcher, client, logger, err := ctx.pipeline()
	if err != nil {
		return err
	}
	if bind != "" {
		cfg.Server.Bind = bind
	}

	for _, missing := range deps.Missing(deps.CheckBinaries(signalCtx, deps.Requirements(cfg))) {
		logging.WarnWithContext(logger, "dependency unavailable", "dependency_missing",
			logging.String("dependency", missing.Name),
			logging.String("detail", missing.Detail),
			logging.String(logging.FieldErrorHint, "install yt-dlp or set fetcher.binary"),
			logging.String(logging.FieldImpact, "caption fetches will fail"),
		)
	}

	server, err := api.NewServer(cfg, captionFetcher, client, api.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if err := server.Start(signalCtx); err != nil {
		return err
	}
	defer server.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", server.Addr())
	<-signalCtx.Done()
	logger.Info("ytscribe server shutting down")
	return nil
}
