package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"techhub/internal/domain"
	"techhub/internal/receipt"
)

func ordersCmd() *cobra.Command {
	var receiptFor string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List recent orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()
			s, closer, err := openShop(ctx, cfg, "")
			if err != nil {
				return err
			}
			defer closer.Close()

			hist, err := s.History(ctx)
			if err != nil {
				return err
			}

			if receiptFor != "" {
				for _, rec := range hist {
					if rec.OrderID == receiptFor {
						r, err := receipt.New()
						if err != nil {
							return err
						}
						return r.Render(os.Stdout, rec)
					}
				}
				return fmt.Errorf("order %s not in history", receiptFor)
			}

			if len(hist) == 0 {
				fmt.Println("No orders yet.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tDATE\tITEMS\tPAYMENT\tTOTAL")
			for _, rec := range hist {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", rec.OrderID, rec.OrderDate.Local().Format("2006-01-02 15:04"),
					rec.Cart.TotalItems, rec.PaymentData.Method.Label(), domain.Money(rec.Total))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&receiptFor, "receipt", "", "print the HTML receipt of this order")
	return cmd
}
