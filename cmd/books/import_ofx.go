package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/engine"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func (a *app) importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx <file>...",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import transactions from OFX or QFX files downloaded from your bank.

Each statement is matched to an account whose name or id equals the statement's
account number, unless --account names the account explicitly. Transactions
already in the book are skipped, so importing the same file twice is harmless.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			accountRef, _ := cmd.Flags().GetString("account")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			parser := ofx.NewParser()
			var stmts []ofx.Statement
			for _, path := range args {
				parsed, err := parseStatementFile(cmd, parser, path)
				if err != nil {
					return err
				}
				stmts = append(stmts, parsed...)
			}

			var stats engine.ImportStats
			apply := func(book model.Book) (model.Book, error) {
				txs, err := assignAccounts(book, stmts, accountRef)
				if err != nil {
					return book, err
				}
				if len(txs) == 0 {
					return book, common.NewUserError("the statements contain no transactions", common.ErrNoTransactions)
				}

				bar := newImportProgressBar(cmd.ErrOrStderr(), len(txs))
				book, stats, err = a.engine().ImportTransactions(book, txs, func() {
					if err := bar.Add(1); err != nil {
						slog.Warn("Failed to update progress bar", "error", err)
					}
				})
				_ = bar.Finish()
				return book, err
			}

			var err error
			if dryRun {
				var book model.Book
				if book, err = a.readBook(ctx); err == nil {
					_, err = apply(book)
				}
			} else {
				err = a.updateBook(ctx, apply)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", stats.Recorded)))
			if stats.Duplicates > 0 {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("%d already in the book", stats.Duplicates)))
			}
			if stats.Skipped > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d skipped as invalid", stats.Skipped)))
			}
			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo("Dry run; nothing was saved"))
			}
			return nil
		},
	}

	cmd.Flags().String("account", "", "account every statement belongs to")
	cmd.Flags().Bool("dry-run", false, "parse and count without saving")

	return cmd
}

func parseStatementFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Statement, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stmts, err := parser.ParseStatements(cmd.Context(), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stmts, nil
}

// assignAccounts points each statement's transactions at a book account.
// Statements with no matching account are imported without one.
func assignAccounts(book model.Book, stmts []ofx.Statement, accountRef string) ([]model.Transaction, error) {
	forced, err := resolveAccount(book, accountRef)
	if err != nil {
		return nil, err
	}

	var txs []model.Transaction
	for _, s := range stmts {
		accountID := forced
		if accountID == "" {
			if account, ok := book.FindAccount(s.AccountNumber); ok {
				accountID = account.ID
			} else {
				slog.Warn("No account matches statement; importing without one",
					"account_number", s.AccountNumber,
					"transactions", len(s.Transactions))
			}
		}
		for _, tx := range s.Transactions {
			tx.AccountID = accountID
			txs = append(txs, tx)
		}
	}
	return txs, nil
}

func newImportProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Importing transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(w)
		}),
	)
}
