package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/polkiloo/phonetrack/internal/app"
	"github.com/polkiloo/phonetrack/internal/domain/model"
)

func newAddCmd() *cobra.Command {
	var (
		name   string
		redeem bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "add NUMBER",
		Short: "Add a phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(cmd, func(ctx context.Context, tracker *app.Tracker) error {
				if _, err := synced(ctx, cmd, tracker); err != nil {
					return err
				}
				draft := model.Draft{Number: args[0], HasRedeemValue: redeem}
				if cmd.Flags().Changed("name") {
					draft.Name = &name
				}
				rec, err := tracker.Add(ctx, draft)
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), rec, asJSON)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Label for the number")
	cmd.Flags().BoolVar(&redeem, "redeem", false, "Mark the number as having a redeem value")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")
	return cmd
}
