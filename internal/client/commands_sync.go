// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-bill-keeper/models"
)

func (c *cli) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [bill]",
		Short: "Send unsent changes to the server, for one bill or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				results, err := c.app.Services.SyncService.SyncPending(cmd.Context())
				printResults(out, results)
				if len(results) == 0 && err == nil {
					fmt.Fprintln(out, "nothing to sync")
				}
				return err
			}

			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			res, err := c.app.Services.SyncService.Sync(cmd.Context(), bill.LocalID)
			if err != nil {
				return err
			}
			fmt.Fprint(out, renderSyncResult(res))
			return nil
		},
	}
}

func (c *cli) retryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <bill>",
		Short: "Leave the error state and sync the bill again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOne(cmd, args[0], c.app.Services.SyncService.Retry)
		},
	}
}

func (c *cli) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <bill>",
		Short: "Fetch the latest server state of a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOne(cmd, args[0], c.app.Services.SyncService.Refresh)
		},
	}
}

func (c *cli) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <bill>",
		Short: "Follow changes peers make to a bill until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}

			ctx, stop := interruptible(cmd.Context())
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "watching %s %q, ctrl+c to stop\n", bill.LocalID, bill.State.Name)
			return c.app.Watch(ctx, bill.LocalID, func(ev models.BillUpdatedEvent, res models.SyncResult, err error) {
				if err != nil {
					fmt.Fprintf(out, "version %d by %s: %s\n", ev.Version, ev.ActorID, errorStyle.Render(err.Error()))
					return
				}
				fmt.Fprintf(out, "version %d by %s: ", ev.Version, ev.ActorID)
				fmt.Fprint(out, renderSyncResult(res))
			})
		},
	}
}

func (c *cli) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Keep every bill in sync in the background until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := interruptible(cmd.Context())
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "syncing every %s, ctrl+c to stop\n", c.cfg.Workers.SyncInterval)
			return c.app.Run(ctx)
		},
	}
}

func (c *cli) runOne(cmd *cobra.Command, ref string, fn func(context.Context, string) (models.SyncResult, error)) error {
	bill, err := c.bill(ref)
	if err != nil {
		return err
	}
	res, err := fn(cmd.Context(), bill.LocalID)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), renderSyncResult(res))
	return nil
}

func printResults(out io.Writer, results []models.SyncResult) {
	for _, res := range results {
		fmt.Fprint(out, renderSyncResult(res))
	}
}

func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
