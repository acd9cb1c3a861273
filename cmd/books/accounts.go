package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func (a *app) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage cash, bank and credit card accounts",
	}

	cmd.AddCommand(a.addAccountCmd())
	cmd.AddCommand(a.listAccountsCmd())
	cmd.AddCommand(a.verifyAccountsCmd())

	return cmd
}

func (a *app) addAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Long: `Add an account. The balance starts at the opening balance, which may be
negative for a credit card that already carries debt.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kindFlag, _ := cmd.Flags().GetString("kind")
			kind, err := model.ParseAccountKind(kindFlag)
			if err != nil {
				return err
			}

			openingFlag, _ := cmd.Flags().GetString("opening")
			opening, err := decimal.NewFromString(strings.ReplaceAll(openingFlag, ",", "."))
			if err != nil {
				return fmt.Errorf("%w: invalid opening balance %q", common.ErrInvalidInput, openingFlag)
			}

			account := model.Account{Name: args[0], Kind: kind, OpeningBalance: opening}
			if kind == model.AccountCreditCard {
				if account.CreditLimit, err = flagAmount(cmd, "credit-limit"); err != nil {
					return err
				}
				if account.MinPaymentPct, err = flagAmount(cmd, "min-payment-pct"); err != nil {
					return err
				}
				if account.InterestPct, err = flagAmount(cmd, "interest-pct"); err != nil {
					return err
				}
				account.CutDay, _ = cmd.Flags().GetInt("cut-day")
				account.DueDay, _ = cmd.Flags().GetInt("due-day")
			}

			var added model.Account
			err = a.updateBook(cmd.Context(), func(book model.Book) (model.Book, error) {
				book, added, err = a.engine().AddAccount(book, account)
				return book, err
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s account %q with balance %s",
				added.Kind, added.Name, added.Balance.StringFixed(2))))
			return nil
		},
	}

	cmd.Flags().String("kind", string(model.AccountBank), "account kind (cash, bank, credit_card)")
	cmd.Flags().String("opening", "0", "opening balance")
	cmd.Flags().String("credit-limit", "", "credit card limit")
	cmd.Flags().String("min-payment-pct", "", "credit card minimum payment as a percent of the debt")
	cmd.Flags().String("interest-pct", "", "credit card annual interest percent")
	cmd.Flags().Int("cut-day", 0, "credit card statement day (1-31)")
	cmd.Flags().Int("due-day", 0, "credit card payment due day (1-31)")

	return cmd
}

func (a *app) listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts and balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, err := a.readBook(cmd.Context())
			if err != nil {
				return err
			}
			if len(book.Accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No accounts yet. Use 'books accounts add' to create one."))
				return nil
			}
			return cli.RenderAccounts(cmd.OutOrStdout(), book.Accounts)
		},
	}
}

func (a *app) verifyAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check every balance against its transactions",
		Long: `Recompute each account's balance from its opening balance and transactions
and compare it with the stored balance.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, err := a.readBook(cmd.Context())
			if err != nil {
				return err
			}

			recs := a.engine().Reconcile(book)
			if err := cli.RenderReconciliation(cmd.OutOrStdout(), book.Accounts, recs); err != nil {
				return err
			}

			for _, r := range recs {
				if !r.Balanced {
					return common.NewUserError("some accounts are out of balance", common.ErrDatabaseCorrupted)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("All accounts balance"))
			return nil
		},
	}
}
