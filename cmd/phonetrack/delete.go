package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/polkiloo/phonetrack/internal/app"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID|NUMBER",
		Short: "Delete a phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, tracker *app.Tracker) error {
				if _, err := synced(ctx, cmd, tracker); err != nil {
					return err
				}
				rec, err := resolve(ctx, tracker, args[0])
				if err != nil {
					return err
				}
				if err := tracker.Delete(ctx, rec.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", rec.Number, rec.ID)
				return nil
			})
		},
	}
}
