package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/spf13/cobra"
)

func (a *app) budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Compare spending with the 50/30/20 rule",
		Long: `Report a month's income and spending. Needs, wants and savings are
compared with 50%, 30% and 20% of the month's income.`,
	}

	cmd.PersistentFlags().String("month", "", "month to report as YYYY-MM (default: current month)")

	cmd.AddCommand(a.budgetSummaryCmd())
	cmd.AddCommand(a.budgetCategoriesCmd())

	return cmd
}

func (a *app) budgetSummary(cmd *cobra.Command) (budget.Summary, error) {
	month, _ := cmd.Flags().GetString("month")
	start, end, err := monthRange(month, time.Now())
	if err != nil {
		return budget.Summary{}, err
	}

	book, err := a.readBook(cmd.Context())
	if err != nil {
		return budget.Summary{}, err
	}
	return budget.Summarize(book.Transactions, start, end), nil
}

func (a *app) budgetSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and spending per budget class",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.budgetSummary(cmd)
			if err != nil {
				return err
			}
			return cli.RenderBudget(cmd.OutOrStdout(), summary)
		},
	}
}

func (a *app) budgetCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show spending per category, largest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.budgetSummary(cmd)
			if err != nil {
				return err
			}
			if len(summary.ByCategory) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No expenses in this month"))
				return nil
			}
			return cli.RenderCategories(cmd.OutOrStdout(), summary.ByCategory)
		},
	}
}
