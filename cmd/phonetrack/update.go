package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/polkiloo/phonetrack/internal/app"
	"github.com/polkiloo/phonetrack/internal/domain/model"
)

type updateFlags struct {
	redeem    bool
	spent     float64
	points    int
	name      string
	lastUsed  string
	lastTried string
	noDerive  bool
	asJSON    bool
}

func newUpdateCmd() *cobra.Command {
	var f updateFlags
	cmd := &cobra.Command{
		Use:   "update ID|NUMBER",
		Short: "Change fields of a phone number",
		Long: `Change fields of a phone number. Setting --spent recomputes points from
the amount unless --points is also given or --no-derive is set.
--last-used and --last-tried accept RFC 3339 or phrases like "yesterday 5pm".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := buildPatch(cmd, f, time.Now())
			if err != nil {
				return err
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update")
			}
			return withTracker(cmd, func(ctx context.Context, tracker *app.Tracker) error {
				if _, err := synced(ctx, cmd, tracker); err != nil {
					return err
				}
				rec, err := resolve(ctx, tracker, args[0])
				if err != nil {
					return err
				}
				updated, err := tracker.Modify(ctx, rec.ID, patch)
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), updated, f.asJSON)
			})
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&f.redeem, "redeem", false, "Set the redeem value flag")
	fs.Float64Var(&f.spent, "spent", 0, "Set the amount spent")
	fs.IntVar(&f.points, "points", 0, "Set points directly")
	fs.StringVar(&f.name, "name", "", "Set the label")
	fs.StringVar(&f.lastUsed, "last-used", "", "Set when the number was last used")
	fs.StringVar(&f.lastTried, "last-tried", "", "Set when the number was last tried")
	fs.BoolVar(&f.noDerive, "no-derive", false, "Keep points when changing the amount spent")
	fs.BoolVar(&f.asJSON, "json", false, "Print the record as JSON")
	return cmd
}

func buildPatch(cmd *cobra.Command, f updateFlags, now time.Time) (model.Patch, error) {
	var patch model.Patch
	changed := cmd.Flags().Changed

	if changed("redeem") {
		patch.HasRedeemValue = &f.redeem
	}
	if changed("name") {
		patch.Name = &f.name
	}
	if changed("spent") {
		if f.spent < 0 {
			return patch, fmt.Errorf("--spent must not be negative")
		}
		patch.AmountSpent = &f.spent
		patch.DerivePoints = !f.noDerive && !changed("points")
	}
	if changed("points") {
		if f.points < 0 {
			return patch, fmt.Errorf("--points must not be negative")
		}
		patch.NumberOfPoints = &f.points
	}
	if changed("last-used") {
		t, err := parseWhen(f.lastUsed, now)
		if err != nil {
			return patch, fmt.Errorf("--last-used: %w", err)
		}
		patch.LastUsed = &t
	}
	if changed("last-tried") {
		t, err := parseWhen(f.lastTried, now)
		if err != nil {
			return patch, fmt.Errorf("--last-tried: %w", err)
		}
		patch.LastTried = &t
	}
	return patch, nil
}
