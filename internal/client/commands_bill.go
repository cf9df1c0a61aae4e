// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-bill-keeper/internal/utils"
)

var errNoSignKey = errors.New("APP_TOKEN_SIGN_KEY is not configured")

func (c *cli) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a bill in the local ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.app.Ledger.CreateBill(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created bill %s %q\n", bill.LocalID, bill.State.Name)
			return nil
		},
	}
}

func (c *cli) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <bill> <name>",
		Short: "Rename a bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			if _, err = c.app.Ledger.RenameBill(cmd.Context(), bill.LocalID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed bill %s to %q\n", bill.LocalID, args[1])
			return nil
		},
	}
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status [bill]",
		Aliases: []string{"ls", "show"},
		Short:   "List bills, or show one bill in detail",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), renderBillList(c.app.Ledger.List()))
				return nil
			}
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBill(bill))
			return nil
		},
	}
}

func (c *cli) balancesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balances <bill>",
		Short: "Show who owes whom",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			balances, err := c.app.Services.BillService.Balances(cmd.Context(), bill.LocalID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderBalances(bill, balances))
			return nil
		},
	}
}

func (c *cli) shareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "share <bill>",
		Short: "Print the code peers use to join a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			code, err := c.app.Services.BillService.ShareCode(bill.LocalID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}

func (c *cli) joinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "join <share-code>",
		Short: "Import a bill shared by somebody else",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.app.Services.BillService.Join(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "joined bill %s %q at version %d\n", bill.LocalID, bill.State.Name, bill.Version)
			return nil
		},
	}
}

func (c *cli) pingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the bill server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Adapter.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "server is reachable")
			return nil
		},
	}
}

func (c *cli) tokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "token <user-id>",
		Short:       "Mint a bearer token for development servers",
		Long:        "token signs a JWT with the configured APP_TOKEN_SIGN_KEY and issuer. Put it into ADAPTER_TOKEN to act as that user.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{needsAnnotation: needsConfig},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.App.TokenSignKey == "" {
				return errNoSignKey
			}
			token, err := utils.GenerateJWTToken(c.cfg.App.TokenIssuer, args[0], c.cfg.App.TokenDuration, c.cfg.App.TokenSignKey)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token.String())
			return nil
		},
	}
}
