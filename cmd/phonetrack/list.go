package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/polkiloo/phonetrack/internal/app"
)

func newListCmd() *cobra.Command {
	var (
		asJSON  bool
		offline bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the collection, refreshed from the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTracker(cmd, func(ctx context.Context, tracker *app.Tracker) error {
				if offline {
					records, err := tracker.List(ctx)
					if err != nil {
						return err
					}
					return printRecords(cmd.OutOrStdout(), records, asJSON)
				}
				result, err := synced(ctx, cmd, tracker)
				if err != nil {
					return err
				}
				return printRecords(cmd.OutOrStdout(), result.Records, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "Print the cached list without contacting the service")
	return cmd
}
