// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-bill-keeper/internal/ledger"
)

func (c *cli) addCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add members, expenses, items and settlements to a bill",
	}
	cmd.AddCommand(c.addMemberCommand(), c.addExpenseCommand(), c.addItemCommand(), c.addSettlementCommand())
	return cmd
}

func (c *cli) addMemberCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "member <bill> <name>",
		Short: "Add a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			in := ledger.MemberInput{Name: args[1], DisplayOrder: len(bill.State.Members)}
			if userID != "" {
				in.UserID = &userID
			}
			m, err := c.app.Ledger.AddMember(cmd.Context(), bill.LocalID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added member %s %q\n", m.LocalID, m.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "registered user the member stands for")
	return cmd
}

func (c *cli) addExpenseCommand() *cobra.Command {
	var (
		paidBy   string
		split    []string
		fee      string
		itemized bool
	)

	cmd := &cobra.Command{
		Use:   "expense <bill> <name> <amount>",
		Short: "Add an expense, split evenly between all members unless --split is given",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			s := bill.State

			in := ledger.ExpenseInput{Name: args[1], IsItemized: itemized}
			if in.Amount, err = parseMoney(args[2]); err != nil {
				return err
			}
			if fee != "" {
				if in.ServiceFeePercent, err = parseMoney(fee); err != nil {
					return err
				}
			}
			if paidBy != "" {
				if in.PaidBy, err = pickMember(s, paidBy); err != nil {
					return err
				}
			}
			if len(split) > 0 {
				if in.Participants, err = pickMembers(s, split); err != nil {
					return err
				}
			} else {
				in.Participants = allMembers(s)
			}

			e, err := c.app.Ledger.AddExpense(cmd.Context(), bill.LocalID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added expense %s %q %s\n", e.LocalID, e.Name, e.Amount.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVarP(&paidBy, "paid-by", "p", "", "member who paid")
	cmd.Flags().StringSliceVarP(&split, "split", "s", nil, "members sharing the expense")
	cmd.Flags().StringVar(&fee, "fee", "", "service fee percent")
	cmd.Flags().BoolVar(&itemized, "itemized", false, "split by line items instead of evenly")
	return cmd
}

func (c *cli) addItemCommand() *cobra.Command {
	var (
		paidBy string
		split  []string
	)

	cmd := &cobra.Command{
		Use:   "item <bill> <expense> <name> <amount>",
		Short: "Add a line item to an itemized expense",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			s := bill.State

			in := ledger.ItemInput{Name: args[2]}
			if in.ExpenseID, err = pickExpense(s, args[1]); err != nil {
				return err
			}
			if in.Amount, err = parseMoney(args[3]); err != nil {
				return err
			}
			if paidBy != "" {
				if in.PaidBy, err = pickMember(s, paidBy); err != nil {
					return err
				}
			}
			if in.Participants, err = pickMembers(s, split); err != nil {
				return err
			}

			it, err := c.app.Ledger.AddItem(cmd.Context(), bill.LocalID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added item %s %q %s\n", it.LocalID, it.Name, it.Amount.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVarP(&paidBy, "paid-by", "p", "", "member who paid, when not the payer of the expense")
	cmd.Flags().StringSliceVarP(&split, "split", "s", nil, "members sharing the item")
	_ = cmd.MarkFlagRequired("split")
	return cmd
}

func (c *cli) addSettlementCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settlement <bill> <from> <to> <amount>",
		Short: "Record that one member paid another back",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			s := bill.State

			var in ledger.SettlementInput
			if in.FromMember, err = pickMember(s, args[1]); err != nil {
				return err
			}
			if in.ToMember, err = pickMember(s, args[2]); err != nil {
				return err
			}
			if in.Amount, err = parseMoney(args[3]); err != nil {
				return err
			}

			st, err := c.app.Ledger.AddSettlement(cmd.Context(), bill.LocalID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recorded settlement %s %s\n", st.LocalID, st.Amount.StringFixed(2))
			return nil
		},
	}
}

func (c *cli) editCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change members and expenses",
	}
	cmd.AddCommand(c.editMemberCommand(), c.editExpenseCommand())
	return cmd
}

func (c *cli) editMemberCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "member <bill> <member>",
		Short: "Rename a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			memberID, err := pickMember(bill.State, args[1])
			if err != nil {
				return err
			}
			m, err := c.app.Ledger.UpdateMember(cmd.Context(), bill.LocalID, memberID, ledger.MemberPatch{Name: &name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated member %s %q\n", m.LocalID, m.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *cli) editExpenseCommand() *cobra.Command {
	var (
		name, amount, fee, paidBy string
		split                     []string
	)

	cmd := &cobra.Command{
		Use:   "expense <bill> <expense>",
		Short: "Change the fields of an expense given as flags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[0])
			if err != nil {
				return err
			}
			s := bill.State
			expenseID, err := pickExpense(s, args[1])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var patch ledger.ExpensePatch
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("amount") {
				d, err := parseMoney(amount)
				if err != nil {
					return err
				}
				patch.Amount = &d
			}
			if flags.Changed("fee") {
				d, err := parseMoney(fee)
				if err != nil {
					return err
				}
				patch.ServiceFeePercent = &d
			}
			if flags.Changed("paid-by") {
				// an empty value clears the payer
				id := ""
				if paidBy != "" {
					if id, err = pickMember(s, paidBy); err != nil {
						return err
					}
				}
				patch.PaidBy = &id
			}
			if flags.Changed("split") {
				ids, err := pickMembers(s, split)
				if err != nil {
					return err
				}
				patch.Participants = &ids
			}

			e, err := c.app.Ledger.UpdateExpense(cmd.Context(), bill.LocalID, expenseID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated expense %s %q %s\n", e.LocalID, e.Name, e.Amount.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&fee, "fee", "", "new service fee percent")
	cmd.Flags().StringVarP(&paidBy, "paid-by", "p", "", "new payer, empty to clear")
	cmd.Flags().StringSliceVarP(&split, "split", "s", nil, "new participants")
	return cmd
}

func (c *cli) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "remove <member|expense|item|settlement> <bill> <ref>",
		Aliases:   []string{"rm"},
		Short:     "Remove an entity from a bill",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"member", "expense", "item", "settlement"},
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, err := c.bill(args[1])
			if err != nil {
				return err
			}
			ctx, s, ref := cmd.Context(), bill.State, args[2]

			var id string
			switch args[0] {
			case "member":
				if id, err = pickMember(s, ref); err == nil {
					_, err = c.app.Ledger.DeleteMember(ctx, bill.LocalID, id)
				}
			case "expense":
				if id, err = pickExpense(s, ref); err == nil {
					_, err = c.app.Ledger.DeleteExpense(ctx, bill.LocalID, id)
				}
			case "item":
				if id, err = pickItem(s, ref); err == nil {
					_, err = c.app.Ledger.DeleteItem(ctx, bill.LocalID, id)
				}
			case "settlement":
				if id, err = pickSettlement(s, ref); err == nil {
					_, err = c.app.Ledger.DeleteSettlement(ctx, bill.LocalID, id)
				}
			default:
				return fmt.Errorf("unknown entity %q, want one of member, expense, item, settlement", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s\n", args[0], id)
			return nil
		},
	}
}
