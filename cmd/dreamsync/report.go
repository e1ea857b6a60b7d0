package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/dreamjournal/internal/app"
)

func (c *cli) reportCmd() *cobra.Command {
	var list int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate last week's report if it is due, or list past reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client *app.Client) error {
				if list > 0 {
					reports, err := client.ListReports(ctx, list)
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), reports)
				}

				agg, err := client.CheckAndGenerateReport(ctx)
				if err != nil {
					return err
				}
				if agg == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "no report due")
					return nil
				}
				return printJSON(cmd.OutOrStdout(), agg)
			})
		},
	}
	cmd.Flags().IntVar(&list, "list", 0, "list the N most recent reports instead")
	return cmd
}

func (c *cli) dreamsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dreams",
		Short: "List recent dreams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, client *app.Client) error {
				dreams, err := client.ListDreams(ctx, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dreams)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "how many dreams to show (0 for all)")
	return cmd
}

func (c *cli) enrichCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrich <dream-id>",
		Short: "Run deep analysis for a stored dream now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid dream id %q: %w", args[0], err)
			}
			return c.run(cmd, func(ctx context.Context, client *app.Client) error {
				if err := client.Enrich(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enriched %s\n", id)
				return nil
			})
		},
	}
}
