package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/storefront"
)

func productArg(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("product id must be an integer: %q", s)
	}
	return id, nil
}

func (a *app) productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(a.productsListCmd(), a.productsShowCmd())
	return cmd
}

func (a *app) productsListCmd() *cobra.Command {
	var (
		f        catalog.Filter
		query    string
		sortMode string
		minPrice float64
		maxPrice float64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products matching a filter",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			if cmd.Flags().Changed("min-price") {
				f.MinPrice = &minPrice
			}
			if cmd.Flags().Changed("max-price") {
				f.MaxPrice = &maxPrice
			}
			var found []catalog.Product
			for _, p := range shop.Catalog.Search(query) {
				if f.Match(p) {
					found = append(found, p)
				}
			}
			catalog.Sort(found, catalog.SortMode(sortMode))
			printProducts(cmd.OutOrStdout(), found)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search text")
	cmd.Flags().StringSliceVar(&f.Categories, "category", nil, "Category (repeatable)")
	cmd.Flags().StringSliceVar(&f.PetTypes, "pet-type", nil, "Pet type (repeatable)")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Maximum price")
	cmd.Flags().BoolVar(&f.InStock, "in-stock", false, "Only products in stock")
	cmd.Flags().BoolVar(&f.IsNew, "new", false, "Only new products")
	cmd.Flags().BoolVar(&f.IsSale, "sale", false, "Only products on sale")
	cmd.Flags().StringVar(&sortMode, "sort", string(catalog.SortPopular), "popular, price_asc, price_desc, rating or new")
	return cmd
}

func (a *app) productsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show PRODUCT_ID",
		Short: "Show a product with related suggestions",
		Args:  cobra.ExactArgs(1),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			id, err := productArg(args[0])
			if err != nil {
				return err
			}
			p, ok := shop.Catalog.ByID(id)
			if !ok {
				return fmt.Errorf("product %d: %w", id, catalog.ErrProductNotFound)
			}
			sum, err := shop.Reviews.Summary(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printProduct(out, p, sum)
			if related := shop.Catalog.Related(p, 0); len(related) > 0 {
				fmt.Fprintln(out, "\nYou may also like:")
				printProducts(out, related)
			}
			return nil
		}),
	}
}

func (a *app) reviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Read and write product reviews",
	}

	list := &cobra.Command{
		Use:   "list PRODUCT_ID",
		Short: "Show the reviews of a product",
		Args:  cobra.ExactArgs(1),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			id, err := productArg(args[0])
			if err != nil {
				return err
			}
			rs, err := shop.Reviews.ForProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			sum, err := shop.Reviews.Summary(cmd.Context(), id)
			if err != nil {
				return err
			}
			printReviews(cmd.OutOrStdout(), rs, sum)
			return nil
		}),
	}

	var (
		rating int
		text   string
	)
	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Review a product as the signed-in user",
		Args:  cobra.ExactArgs(1),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			id, err := productArg(args[0])
			if err != nil {
				return err
			}
			sess, err := signedIn(cmd.Context(), shop)
			if err != nil {
				return err
			}
			r, err := shop.AddReview(cmd.Context(), sess, id, rating, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review #%d added.\n", r.ID)
			return nil
		}),
	}
	add.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5")
	add.Flags().StringVar(&text, "text", "", "Review text")
	_ = add.MarkFlagRequired("rating")

	helpful := &cobra.Command{
		Use:   "helpful REVIEW_ID",
		Short: "Toggle the helpful mark of a review",
		Args:  cobra.ExactArgs(1),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("review id must be an integer: %q", args[0])
			}
			sess, err := signedIn(cmd.Context(), shop)
			if err != nil {
				return err
			}
			found, err := shop.Reviews.ToggleHelpful(cmd.Context(), id, sess.UserID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("review %d not found", id)
			}
			marked, err := shop.Reviews.IsMarkedHelpful(cmd.Context(), id, sess.UserID)
			if err != nil {
				return err
			}
			if marked {
				fmt.Fprintf(cmd.OutOrStdout(), "Marked review #%d as helpful.\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed helpful mark from review #%d.\n", id)
			}
			return nil
		}),
	}

	cmd.AddCommand(list, add, helpful)
	return cmd
}
