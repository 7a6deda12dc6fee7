package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"techhub/internal/catalog"
	"techhub/internal/domain"
)

func browseCmd() *cobra.Command {
	var (
		search, category, sortBy, minPrice, maxPrice string
		pages                                        int
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List catalog products",
		Long: `List catalog products, fetching more pages the way scrolling would.

Examples:
  techhub browse --q phone
  techhub browse --category Audio --sort price-desc --pages 3
  techhub browse --min 100 --max 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()
			s, closer, err := openShop(ctx, cfg, catalog.QueryString(search, domain.Category(category)))
			if err != nil {
				return err
			}
			defer closer.Close()

			<-s.Start(ctx)
			if err := s.Catalog.BlockingError(); err != nil {
				return fmt.Errorf("could not load products: %w", err)
			}
			for i := 1; i < pages; i++ {
				done, ok := s.Catalog.LoadNextPage()
				if !ok {
					break
				}
				<-done
			}

			lo, hi := catalog.ParsePriceRange(minPrice, maxPrice)
			s.Stage.SetFilter(catalog.Filter{Min: lo, Max: hi, Sort: catalog.SortKey(sortBy)})
			products := s.Products()
			st := s.Catalog.State()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tIN CART")
			for _, p := range products {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, domain.Money(p.Price), p.InCart)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			more := "more available"
			if st.Exhausted {
				more = "end of results"
			}
			fmt.Printf("\n%d shown of %d fetched (%d total, %s)\n", len(products), len(st.Products), st.Total, more)
			if qs := s.QueryString(); qs != "" {
				fmt.Printf("?%s\n", qs)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "q", "q", "", "search text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category filter")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "sort: name, name-desc, price, price-desc")
	cmd.Flags().StringVar(&minPrice, "min", "", "minimum price")
	cmd.Flags().StringVar(&maxPrice, "max", "", "maximum price")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "pages to fetch")
	return cmd
}
