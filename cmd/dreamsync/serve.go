package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/dreamjournal/internal/app"
)

func (c *cli) serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the client in the background with the status server",
		Long: `Watches connectivity, replays queued writes on every reconnect, checks
for a due weekly report periodically and serves /health, /queues and
/metrics until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client *app.Client) error {
				if migrate {
					n, err := client.Migrate(ctx)
					if err != nil {
						return err
					}
					c.log.InfoContext(ctx, "migrations applied", slog.Int("count", n))
				}
				return client.Serve(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply remote store migrations before serving")
	return cmd
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply remote store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWithContext(cmd.Context(), func(ctx context.Context, client *app.Client) error {
				n, err := client.Migrate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
				return nil
			})
		},
	}
}
