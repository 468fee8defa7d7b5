package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Houeta/deal-watch/internal/config"
)

var errCycleFailed = errors.New("cycle finished with failed terms")

func execute() int {
	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	}

	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "dealwatch",
		Short:         "Watch marketplace searches and push new matching listings",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(newServeCmd(), newOnceCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat front-end and a scrape cycle every DW_CYCLE_INTERVAL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(".env")
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cfg, setupLogger(cfg.Env, cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			defer a.Close()

			return a.serve(ctx)
		},
	}
}

func newOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run exactly one scrape cycle and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(".env")
			if err != nil {
				return err
			}

			a, err := newApp(ctx, cfg, setupLogger(cfg.Env, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.checker.RunCycle(ctx)
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(),
					"terms=%d refreshed=%d unchanged=%d failed=%d obligations=%d pushed=%d\n",
					report.Terms, report.Refreshed, report.Unchanged, report.Failed, report.Obligations, report.Pushed)
			}
			if err != nil {
				return fmt.Errorf("%w: %w", errCycleFailed, err)
			}

			return nil
		},
	}
}
