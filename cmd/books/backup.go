package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore the whole book as JSON",
	}

	cmd.AddCommand(a.backupExportCmd())
	cmd.AddCommand(a.backupImportCmd())

	return cmd
}

func (a *app) backupExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a JSON backup (default: stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := a.readBook(cmd.Context())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return storage.ExportBackup(cmd.OutOrStdout(), book, time.Now())
			}

			f, err := os.OpenFile(filepath.Clean(args[0]), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			if err := storage.ExportBackup(f, book, time.Now()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write backup file: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Backed up %d accounts, %d envelopes, %d loans and %d transactions to %s",
				len(book.Accounts), len(book.Envelopes), len(book.Loans), len(book.Transactions), args[0])))
			return nil
		},
	}
}

func (a *app) backupImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the book with a JSON backup",
		Long: `Replace the whole book with the contents of a backup. The current book is
overwritten, so you are asked first unless --yes is given. Use - to read the
backup from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(filepath.Clean(args[0]))
				if err != nil {
					return fmt.Errorf("failed to open backup: %w", err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			restored, err := storage.ImportBackup(r)
			if err != nil {
				return err
			}

			yes, _ := cmd.Flags().GetBool("yes")
			confirmed := false
			err = a.updateBook(cmd.Context(), func(current model.Book) (model.Book, error) {
				if !yes && !isEmpty(current) {
					if args[0] == "-" {
						return current, common.NewUserError("use --yes to replace a non-empty book from stdin", common.ErrInvalidInput)
					}
					ok, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(),
						"This replaces the current book. Continue?")
					if err != nil {
						return current, err
					}
					if !ok {
						return current, nil
					}
				}
				confirmed = true
				return restored, nil
			})
			if err != nil {
				return err
			}

			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing restored"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Restored %d accounts, %d envelopes, %d loans and %d transactions",
				len(restored.Accounts), len(restored.Envelopes), len(restored.Loans), len(restored.Transactions))))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "overwrite without asking")

	return cmd
}

func isEmpty(book model.Book) bool {
	return len(book.Accounts) == 0 && len(book.Envelopes) == 0 && len(book.Loans) == 0 && len(book.Transactions) == 0
}
