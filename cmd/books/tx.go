package main

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/engine"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/spf13/cobra"
)

func (a *app) txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record, edit and list transactions",
	}

	cmd.AddCommand(a.addTxCmd())
	cmd.AddCommand(a.editTxCmd())
	cmd.AddCommand(a.deleteTxCmd())
	cmd.AddCommand(a.listTxCmd())

	return cmd
}

func addTxFlags(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "transaction date YYYY-MM-DD (default: today)")
	cmd.Flags().String("category", "", "spending category, also used to find the envelope")
	cmd.Flags().String("class", "", "budget class (need, want, saving); guessed when empty")
	cmd.Flags().String("note", "", "free text note")
	cmd.Flags().String("account", "", "account name or id")
	cmd.Flags().String("envelope", "", "envelope code, name or id charged by an expense")
}

// applyTxFlags copies the flags the user set onto tx.
func applyTxFlags(cmd *cobra.Command, book model.Book, tx *model.Transaction) error {
	flags := cmd.Flags()

	if flags.Changed("date") {
		date, err := flagDate(cmd, "date")
		if err != nil {
			return err
		}
		tx.Date = date
	}
	if flags.Changed("category") {
		tx.Category, _ = flags.GetString("category")
	}
	if flags.Changed("class") {
		s, _ := flags.GetString("class")
		if s == "" {
			tx.BudgetClass = ""
		} else {
			class, err := model.ParseBudgetClass(s)
			if err != nil {
				return err
			}
			tx.BudgetClass = class
		}
	}
	if flags.Changed("note") {
		tx.Note, _ = flags.GetString("note")
	}
	if flags.Changed("account") {
		ref, _ := flags.GetString("account")
		id, err := resolveAccount(book, ref)
		if err != nil {
			return err
		}
		tx.AccountID = id
	}
	if flags.Changed("envelope") {
		ref, _ := flags.GetString("envelope")
		id, err := resolveEnvelope(book, ref)
		if err != nil {
			return err
		}
		tx.EnvelopeID = id
	}
	return nil
}

func parseKind(s string) (model.TransactionKind, error) {
	switch model.TransactionKind(s) {
	case model.KindIncome:
		return model.KindIncome, nil
	case model.KindExpense:
		return model.KindExpense, nil
	}
	return "", fmt.Errorf("%w: kind must be income or expense, got %q", common.ErrInvalidInput, s)
}

func (a *app) addTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <income|expense> <amount>",
		Short: "Record a transaction",
		Long: `Record an income or expense.

Income is added to its account and distributed across envelopes. An expense is
taken from its account and charged to its envelope, found by --envelope or by
the envelope linked to its category.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			amount, err := model.ParseAmount(args[1])
			if err != nil {
				return err
			}

			var res engine.RecordResult
			err = a.updateBook(cmd.Context(), func(book model.Book) (model.Book, error) {
				tx := model.Transaction{Kind: kind, Amount: amount}
				if err := applyTxFlags(cmd, book, &tx); err != nil {
					return book, err
				}
				res, err = a.engine().RecordTransaction(book, tx)
				return res.Book, err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Recorded %s %s (%s) as %s",
				res.Transaction.Kind, res.Transaction.Amount.StringFixed(2), res.Transaction.BudgetClass, res.Transaction.ID)))
			if !res.Account.Applied() && res.Transaction.AccountID != "" {
				fmt.Fprintln(out, cli.FormatWarning("Account not found; no balance was changed"))
			}
			if res.Allocation != nil {
				return cli.RenderAllocation(out, *res.Allocation)
			}
			if !res.Envelope.Applied() {
				fmt.Fprintln(out, cli.FormatInfo("No envelope matched this expense"))
			}
			return nil
		},
	}

	addTxFlags(cmd)
	return cmd
}

func (a *app) editTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a recorded transaction",
		Long: `Change a recorded transaction. The old values are reverted from their
account and envelope and the new values applied. Only the flags you pass are
changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var res engine.EditResult
			err := a.updateBook(cmd.Context(), func(book model.Book) (model.Book, error) {
				tx, ok := book.FindTransaction(args[0])
				if !ok {
					return book, common.NewUserError(fmt.Sprintf("no transaction %s", args[0]), common.ErrNotFound)
				}

				if cmd.Flags().Changed("kind") {
					s, _ := cmd.Flags().GetString("kind")
					kind, err := parseKind(s)
					if err != nil {
						return book, err
					}
					tx.Kind = kind
				}
				if cmd.Flags().Changed("amount") {
					amount, err := flagAmount(cmd, "amount")
					if err != nil {
						return book, err
					}
					tx.Amount = amount
				}
				if err := applyTxFlags(cmd, book, &tx); err != nil {
					return book, err
				}

				var err error
				res, err = a.engine().EditTransaction(book, args[0], tx)
				return res.Book, err
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s", res.Transaction.ID)))
			return cli.RenderTransactions(cmd.OutOrStdout(), []model.Transaction{res.Transaction})
		},
	}

	cmd.Flags().String("kind", "", "income or expense")
	cmd.Flags().String("amount", "", "new amount")
	addTxFlags(cmd)
	return cmd
}

func (a *app) deleteTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and revert its effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				ok, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(),
					fmt.Sprintf("Delete transaction %s?", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			err := a.updateBook(cmd.Context(), func(book model.Book) (model.Book, error) {
				return a.engine().DeleteTransaction(book, args[0])
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s", args[0])))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *app) listTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions by date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			from, err := flagDate(cmd, "from")
			if err != nil {
				return err
			}
			to, err := flagDate(cmd, "to")
			if err != nil {
				return err
			}

			var filter service.TransactionFilter
			if !from.IsZero() {
				filter.StartDate = &from
			}
			if !to.IsZero() {
				end := to.AddDate(0, 0, 1)
				filter.EndDate = &end
			}
			if ref, _ := cmd.Flags().GetString("account"); ref != "" {
				accounts, err := store.GetAccounts(ctx)
				if err != nil {
					return err
				}
				if filter.AccountID, err = resolveAccount(model.Book{Accounts: accounts}, ref); err != nil {
					return err
				}
			}
			filter.Limit, _ = cmd.Flags().GetInt("limit")

			txs, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No transactions found"))
				return nil
			}
			return cli.RenderTransactions(cmd.OutOrStdout(), txs)
		},
	}

	cmd.Flags().String("from", "", "first day to include YYYY-MM-DD")
	cmd.Flags().String("to", "", "last day to include YYYY-MM-DD")
	cmd.Flags().String("account", "", "only this account")
	cmd.Flags().Int("limit", 0, "maximum number of transactions")
	return cmd
}
