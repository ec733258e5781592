package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"flux/internal/core"
	"flux/internal/installment"
)

func newPreviewCommand() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "preview <amount> <installments>",
		Short: "Show how a purchase splits into monthly installments",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cents, err := core.ParseDecimalToCents(args[0])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[0], err)
			}
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("installments %q: not a number", args[1])
			}

			date := core.DateOf(time.Now())
			if start != "" {
				if date, err = core.ParseDate(start); err != nil {
					return err
				}
			}

			parts, err := installment.Split(core.Money{Cents: cents}, count, date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range parts {
				fmt.Fprintf(out, "%3d/%-3d  %s  %14s\n", p.Number, len(parts), p.Date, p.Amount.FormatBRL())
			}
			fmt.Fprintf(out, "Total             %14s\n", installment.Sum(parts).FormatBRL())
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "date of the first installment, YYYY-MM-DD (default today)")
	return cmd
}
