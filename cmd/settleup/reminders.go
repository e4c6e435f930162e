package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newRemindersCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Work with scheduled reminders",
	}

	var interval time.Duration
	dispatch := &cobra.Command{
		Use:   "dispatch",
		Short: "Send every scheduled reminder that is due",
		Long: "Send every scheduled reminder that is due. Without --interval the command " +
			"runs once, suitable for a system cron job; with it, the command repeats until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if interval <= 0 {
				return a.dispatchDue(ctx)
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				if err := a.dispatchDue(ctx); err != nil {
					slog.Error("Dispatch failed", "error", err)
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	dispatch.Flags().DurationVar(&interval, "interval", 0, "repeat every interval (e.g. 1m) instead of running once")

	cmd.AddCommand(dispatch)
	return cmd
}

func (a *app) dispatchDue(ctx context.Context) error {
	summary, err := a.dispatcher.DispatchDue(ctx, time.Now())
	if err != nil {
		return err
	}
	slog.Info("Scheduled reminders dispatched",
		"due", summary.Due,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
	return nil
}
