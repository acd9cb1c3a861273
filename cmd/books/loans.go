package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/engine"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/tui"
	"github.com/spf13/cobra"
)

func (a *app) loansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "loans",
		Aliases: []string{"loan"},
		Short:   "Register loans and follow their amortization schedule",
	}

	cmd.AddCommand(a.addLoanCmd())
	cmd.AddCommand(a.listLoansCmd())
	cmd.AddCommand(a.scheduleCmd())
	cmd.AddCommand(a.viewLoanCmd())
	cmd.AddCommand(a.payLoanCmd())

	return cmd
}

func (a *app) addLoanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a loan and compute its schedule",
		Long: `Register a loan. The amortization schedule is computed once from the
principal, annual rate, term and first payment date and never changes.

Methods:
  french          constant payments
  american        interest only, principal repaid with the last installment
  daily_compound  constant payments at a rate compounded daily over 30 days`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := engine.LoanRequest{Name: args[0]}

			var err error
			if req.Principal, err = flagAmount(cmd, "principal"); err != nil {
				return err
			}
			if req.AnnualRatePct, err = flagAmount(cmd, "rate"); err != nil {
				return err
			}
			req.TermMonths, _ = cmd.Flags().GetInt("months")

			methodFlag, _ := cmd.Flags().GetString("method")
			if req.Method, err = model.ParseCalculationMethod(methodFlag); err != nil {
				return err
			}

			if req.FirstPaymentDate, err = flagDate(cmd, "start"); err != nil {
				return err
			}
			if req.FirstPaymentDate.IsZero() {
				req.FirstPaymentDate = model.TruncateDay(time.Now())
			}

			var loan model.Loan
			err = a.updateBook(cmd.Context(), func(book model.Book) (model.Book, error) {
				book, loan, err = a.engine().RegisterLoan(book, req)
				return book, err
			})
			if err != nil {
				return err
			}

			return cli.RenderSchedule(cmd.OutOrStdout(), loan)
		},
	}

	cmd.Flags().String("principal", "", "amount borrowed")
	cmd.Flags().String("rate", "0", "annual interest rate in percent")
	cmd.Flags().Int("months", 0, "term in months")
	cmd.Flags().String("method", string(model.MethodFrench), "calculation method (french, american, daily_compound)")
	cmd.Flags().String("start", "", "first payment date YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("months")

	return cmd
}

func (a *app) listLoansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List loans with their next installment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, err := a.readBook(cmd.Context())
			if err != nil {
				return err
			}
			if len(book.Loans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No loans yet. Use 'books loans add' to register one."))
				return nil
			}
			return cli.RenderLoans(cmd.OutOrStdout(), book.Loans, model.TruncateDay(time.Now()))
		},
	}
}

func (a *app) findLoan(cmd *cobra.Command, ref string) (model.Loan, error) {
	store, err := a.openStorage(cmd.Context())
	if err != nil {
		return model.Loan{}, err
	}
	defer func() { _ = store.Close() }()

	loan, err := store.GetLoan(cmd.Context(), ref)
	if err != nil {
		return model.Loan{}, common.NewUserError(fmt.Sprintf("no loan named %q", ref), err)
	}
	return *loan, nil
}

func (a *app) scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <loan>",
		Short: "Print a loan's amortization table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loan, err := a.findLoan(cmd, args[0])
			if err != nil {
				return err
			}
			return cli.RenderSchedule(cmd.OutOrStdout(), loan)
		},
	}
}

func (a *app) viewLoanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <loan>",
		Short: "Browse a loan's amortization table interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loan, err := a.findLoan(cmd, args[0])
			if err != nil {
				return err
			}
			return tui.RunSchedule(cmd.Context(), loan)
		},
	}
}

func (a *app) payLoanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <loan> [installment]",
		Short: "Mark an installment as paid",
		Long: `Mark an installment as paid. Without an installment number the next
unpaid one is used. With --account the payment is also recorded as an expense
from that account.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountRef, _ := cmd.Flags().GetString("account")

			var res engine.PaymentResult
			err := a.updateBook(cmd.Context(), func(book model.Book) (model.Book, error) {
				loan, ok := book.FindLoan(args[0])
				if !ok {
					return book, common.NewUserError(fmt.Sprintf("no loan named %q", args[0]), common.ErrNotFound)
				}

				n, err := installmentNumber(loan, args[1:])
				if err != nil {
					return book, err
				}

				accountID, err := resolveAccount(book, accountRef)
				if err != nil {
					return book, err
				}

				res, err = a.engine().PayInstallment(book, loan.ID, n, accountID)
				return res.Book, err
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Paid installment %d of %s: %s, outstanding %s",
				res.Installment.Number, res.Loan.Name,
				res.Installment.TotalPayment.StringFixed(2),
				res.Loan.OutstandingBalance().StringFixed(2))))
			return nil
		},
	}

	cmd.Flags().String("account", "", "account the payment comes from")

	return cmd
}

func installmentNumber(loan model.Loan, args []string) (int, error) {
	if len(args) == 0 {
		inst, ok := loan.NextDue(time.Time{})
		if !ok {
			return 0, common.NewUserError(fmt.Sprintf("every installment of %s is paid", loan.Name), common.ErrInvalidInput)
		}
		return inst.Number, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: installment must be a number, got %q", common.ErrInvalidInput, args[0])
	}
	return n, nil
}
