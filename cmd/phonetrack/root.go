package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/app"
	"github.com/polkiloo/phonetrack/internal/config"
	"github.com/polkiloo/phonetrack/internal/di"
)

const configFlag = "config"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "phonetrack",
		Short: "Track phone numbers, spend and loyalty points against the phone number service",
		Long: `phonetrack keeps a local copy of the phone number collection in sync with
the remote service. Reads are served from the local copy, every change is
sent to the service and the canonical result is written back to the cache.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(configFlag, "", "Path to a YAML config file (also PHONETRACK_CONFIG)")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(),
		newListCmd(),
		newAddCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newImportCmd(),
	)
	return root
}

func sourceFor(cmd *cobra.Command) config.Source {
	file, _ := cmd.Flags().GetString(configFlag)
	return config.Source{File: file, Flags: cmd.Flags()}
}

// withTracker builds the core graph, hydrates it from the cache and runs fn.
func withTracker(cmd *cobra.Command, fn func(ctx context.Context, tracker *app.Tracker) error) error {
	ctx := cmd.Context()
	var tracker *app.Tracker
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		fx.Supply(sourceFor(cmd)),
		di.Core(),
		fx.Populate(&tracker),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}
	if err := fxApp.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() { _ = fxApp.Stop(context.Background()) }()

	if err := tracker.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, tracker)
}

// synced refreshes the collection and warns on stderr when the cached copy is used.
func synced(ctx context.Context, cmd *cobra.Command, tracker *app.Tracker) (app.RefreshResult, error) {
	result, err := tracker.Refresh(ctx)
	if err != nil {
		return result, err
	}
	if result.SyncErr != nil {
		cmd.PrintErrf("warning: showing cached list, refresh failed: %v\n", result.SyncErr)
	}
	return result, nil
}
