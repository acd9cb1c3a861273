package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/envelope"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/spf13/cobra"
)

func (a *app) envelopesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "envelopes",
		Aliases: []string{"envelope", "env"},
		Short:   "Manage budget envelopes",
	}

	cmd.AddCommand(a.addEnvelopeCmd())
	cmd.AddCommand(a.listEnvelopesCmd())
	cmd.AddCommand(a.allocateCmd())

	return cmd
}

func (a *app) addEnvelopeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an envelope",
		Long: `Add an envelope. Fixed envelopes are filled up to their limit in priority
order; variable envelopes share whatever income is left.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kindFlag, _ := cmd.Flags().GetString("kind")
			env := model.Envelope{
				Name: args[0],
				Kind: model.EnvelopeKind(strings.ToLower(kindFlag)),
			}

			var err error
			if env.Limit, err = flagAmount(cmd, "limit"); err != nil {
				return err
			}
			if p, _ := cmd.Flags().GetString("priority"); p != "" {
				if env.Priority, err = model.ParsePriority(p); err != nil {
					return err
				}
			}
			if c, _ := cmd.Flags().GetString("class"); c != "" {
				if env.DistributionCategory, err = model.ParseBudgetClass(c); err != nil {
					return err
				}
			}
			env.Code, _ = cmd.Flags().GetString("code")
			env.LinkedCategory, _ = cmd.Flags().GetString("category")
			env.PaymentDay, _ = cmd.Flags().GetInt("payment-day")

			var added model.Envelope
			err = a.updateBook(cmd.Context(), func(book model.Book) (model.Book, error) {
				book, added, err = a.engine().AddEnvelope(book, env)
				return book, err
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s envelope %s %q", added.Kind, added.Code, added.Name)))
			return nil
		},
	}

	cmd.Flags().String("kind", string(model.EnvelopeVariable), "envelope kind (fixed, variable)")
	cmd.Flags().String("limit", "", "amount a fixed envelope is filled up to")
	cmd.Flags().String("priority", "", "funding priority (high, medium, low)")
	cmd.Flags().String("class", "", "budget class the envelope belongs to (need, want, saving)")
	cmd.Flags().String("category", "", "expense category charged to this envelope")
	cmd.Flags().String("code", "", "display code (default: next free E01, E02, ...)")
	cmd.Flags().Int("payment-day", 0, "day of month a fixed envelope is paid out (1-31)")

	return cmd
}

func (a *app) listEnvelopesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List envelopes and balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			book, err := a.readBook(cmd.Context())
			if err != nil {
				return err
			}
			if len(book.Envelopes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No envelopes yet. Use 'books envelopes add' to create one."))
				return nil
			}
			return cli.RenderEnvelopes(cmd.OutOrStdout(), book.Envelopes)
		},
	}
}

func (a *app) allocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocate <amount>",
		Short: "Distribute an amount across envelopes",
		Long: `Distribute an amount across envelopes without recording an income
transaction. Use --dry-run to preview the distribution.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := model.ParseAmount(args[0])
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			var alloc envelope.Allocation
			apply := func(book model.Book) (model.Book, error) {
				book, alloc, err = a.engine().AllocateIncome(book, amount)
				return book, err
			}

			if dryRun {
				book, err := a.readBook(cmd.Context())
				if err != nil {
					return err
				}
				if _, err := apply(book); err != nil {
					return err
				}
			} else if err := a.updateBook(cmd.Context(), apply); err != nil {
				return err
			}

			return cli.RenderAllocation(cmd.OutOrStdout(), alloc)
		},
	}

	cmd.Flags().Bool("dry-run", false, "show the distribution without saving it")

	return cmd
}
