package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"techhub/internal/domain"
)

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the session cart",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <productId> [delta]",
		Short: "Add (or with a negative delta, remove) units of a product",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			delta := 1
			if len(args) == 2 {
				if delta, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid delta %q", args[1])
				}
			}

			cfg := loadConfig()
			ctx := cmd.Context()
			s, closer, err := openShop(ctx, cfg, "")
			if err != nil {
				return err
			}
			defer closer.Close()

			c, err := s.Cart.AddToCart(ctx, id, delta)
			if err != nil {
				for _, n := range s.Cart.Notices() {
					fmt.Fprintln(os.Stderr, n.Message)
				}
				return err
			}
			return printCart(c)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the session cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()
			s, closer, err := openShop(ctx, cfg, "")
			if err != nil {
				return err
			}
			defer closer.Close()

			c, err := s.Cart.Refresh(ctx)
			if err != nil {
				return err
			}
			return printCart(c)
		},
	})
	return cmd
}

func printCart(c domain.Cart) error {
	if c.IsEmpty() {
		fmt.Println("Your cart is empty.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tTOTAL")
	for _, it := range c.Items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", it.Product.ID, it.Product.Name, it.Quantity, domain.Money(it.Product.Price), domain.Money(it.LineTotal()))
	}
	fmt.Fprintf(w, "\t\t%d\tSubtotal\t%s\n", c.TotalItems, domain.Money(c.TotalPrice))
	fmt.Fprintf(w, "\t\t\tTax\t%s\n", domain.Money(c.Tax()))
	fmt.Fprintf(w, "\t\t\tTotal\t%s\n", domain.Money(c.Total()))
	return w.Flush()
}
