package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/budget"
	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/sheets"
	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Publish schedules and budgets to Google Sheets",
	}

	cmd.AddCommand(a.exportSheetsCmd())
	cmd.AddCommand(a.exportAuthCmd())

	return cmd
}

func (a *app) exportSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write loan schedules and a monthly budget to a spreadsheet",
		Long: `Write every loan's amortization schedule and the budget of one month to
Google Sheets, one tab each. Tabs are rewritten on every export.

Authentication uses either a service account (sheets.service_account_path) or
OAuth2 client credentials with a token from 'books export auth'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			month, _ := cmd.Flags().GetString("month")
			start, end, err := monthRange(month, time.Now())
			if err != nil {
				return err
			}
			loanRefs, _ := cmd.Flags().GetStringSlice("loan")
			skipBudget, _ := cmd.Flags().GetBool("no-budget")

			book, err := a.readBook(ctx)
			if err != nil {
				return err
			}
			loans, err := selectLoans(book, loanRefs)
			if err != nil {
				return err
			}

			var summary *budget.Summary
			if !skipBudget {
				s := budget.Summarize(book.Transactions, start, end)
				summary = &s
			}

			sheetsConfig, err := config.LoadSheetsConfig(a.v)
			if err != nil {
				return common.NewUserError("Google Sheets is not configured; see 'books export sheets --help'", err)
			}
			writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
			if err != nil {
				return err
			}

			if err := exportReports(ctx, writer, loans, summary); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported to spreadsheet %s", writer.SpreadsheetID())))
			return nil
		},
	}

	cmd.Flags().String("month", "", "budget month as YYYY-MM (default: current month)")
	cmd.Flags().StringSlice("loan", nil, "only export these loans (default: all)")
	cmd.Flags().Bool("no-budget", false, "skip the budget tab")

	return cmd
}

func selectLoans(book model.Book, refs []string) ([]model.Loan, error) {
	if len(refs) == 0 {
		return book.Loans, nil
	}
	loans := make([]model.Loan, 0, len(refs))
	for _, ref := range refs {
		loan, ok := book.FindLoan(ref)
		if !ok {
			return nil, common.NewUserError(fmt.Sprintf("no loan named %q", ref), common.ErrNotFound)
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

// exportReports writes each loan schedule and, when given, the budget summary.
func exportReports(ctx context.Context, w service.ReportWriter, loans []model.Loan, summary *budget.Summary) error {
	for _, loan := range loans {
		if err := w.WriteSchedule(ctx, loan); err != nil {
			return fmt.Errorf("failed to export schedule of %s: %w", loan.Name, err)
		}
	}
	if summary != nil {
		if err := w.WriteBudget(ctx, *summary); err != nil {
			return fmt.Errorf("failed to export budget: %w", err)
		}
	}
	return nil
}

func (a *app) exportAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Sheets",
		Long: `Authorize access to Google Sheets using OAuth2.

This command will:
1. Print a Google consent URL to open in your browser
2. Wait for the redirect on a local port
3. Save the token to sheets.token_file

You'll need to run this once before exporting with OAuth2 credentials.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if id, _ := cmd.Flags().GetString("client-id"); id != "" {
				a.v.Set("sheets.client_id", id)
			}
			if secret, _ := cmd.Flags().GetString("client-secret"); secret != "" {
				a.v.Set("sheets.client_secret", secret)
			}

			sheetsConfig, err := config.LoadSheetsAuthConfig(a.v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, err = sheets.Authorize(cmd.Context(), *sheetsConfig, func(url string) {
				fmt.Fprintln(out, cli.FormatPrompt("Open this URL in your browser to authorize access:"))
				fmt.Fprintln(out, url)
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess("Authorized. Token saved to "+sheetsConfig.TokenFile))
			return nil
		},
	}

	cmd.Flags().String("client-id", "", "OAuth2 client id (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret (overrides config)")

	return cmd
}
