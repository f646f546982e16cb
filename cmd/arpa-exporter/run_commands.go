package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gostjobs/internal/daemon"
	"gostjobs/internal/preflight"
	"gostjobs/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process export tasks until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			manager, cfg, logger, err := ctx.buildManager(signalCtx)
			if err != nil {
				return err
			}
			d, err := daemon.New(cfg, manager, logger)
			if err != nil {
				return err
			}
			return d.Run(signalCtx)
		},
	}
}

func newOnceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Receive and process at most one export task",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			lock, err := daemon.AcquireLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() { _ = lock.Unlock() }()

			manager, _, _, err := ctx.buildManager(cmd.Context())
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if len(preflight.Failed(results)) > 0 {
				return services.Wrap(services.ErrConfiguration, "cli", "preflight", preflight.Summary(results), nil)
			}
			if err := manager.HandleOne(cmd.Context()); err != nil {
				return err
			}

			status := manager.Status()
			out := cmd.OutOrStdout()
			if status.Processed == 0 {
				fmt.Fprintln(out, "No task processed")
				return nil
			}
			fmt.Fprintf(out, "Processed task for organization %d\n", status.LastTask.OrganizationID)
			return nil
		},
	}
}
