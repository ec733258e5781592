package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flux/internal/core"
	"flux/internal/finance"
)

func newSummaryCommand(opts *rootOptions) *cobra.Command {
	var (
		userID string
		month  string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the month overview of a user's ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := core.DateOf(time.Now()).MonthOf()
			if month != "" {
				var err error
				if m, err = core.ParseMonth(month); err != nil {
					return fmt.Errorf("month %q: %w", month, err)
				}
			}

			repo, err := opts.openRepository(cmd)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer repo.Close()

			ts, err := repo.ListTransactions(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("listing transactions: %w", err)
			}

			ov := finance.Overview(ts, m)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Month            %s\n", ov.Month)
			fmt.Fprintf(out, "Income           %s\n", ov.Totals.Income.FormatBRL())
			fmt.Fprintf(out, "Expense          %s\n", ov.Totals.Expense.FormatBRL())
			fmt.Fprintf(out, "Result           %s\n", ov.Totals.Result.FormatBRL())
			fmt.Fprintf(out, "Closing balance  %s\n", ov.ClosingBalance.FormatBRL())
			fmt.Fprintf(out, "Next opening     %s\n", ov.NextOpening.FormatBRL())
			if len(ov.ByCategory) > 0 {
				fmt.Fprintln(out, "By category:")
				for _, c := range ov.ByCategory {
					fmt.Fprintf(out, "  %-15s%s\n", c.Name, c.Amount.FormatBRL())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "ledger owner id (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")
	return cmd
}
