package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dreamware/petsclaws/internal/orders"
	"github.com/dreamware/petsclaws/internal/storefront"
)

func (a *app) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			s, err := localShopper(cmd.Context(), shop)
			if err != nil {
				return err
			}
			v, err := shop.ViewCart(cmd.Context(), s)
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), v)
			return nil
		}),
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			id, err := productArg(args[0])
			if err != nil {
				return err
			}
			s, err := localShopper(cmd.Context(), shop)
			if err != nil {
				return err
			}
			v, err := shop.AddToCart(cmd.Context(), s, id, quantity)
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), v)
			return nil
		}),
	}
	add.Flags().IntVarP(&quantity, "quantity", "n", 1, "Units to add")

	set := &cobra.Command{
		Use:   "set PRODUCT_ID QUANTITY",
		Short: "Set the quantity of a cart line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			id, err := productArg(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be an integer: %q", args[1])
			}
			s, err := localShopper(cmd.Context(), shop)
			if err != nil {
				return err
			}
			v, err := shop.SetCartQuantity(cmd.Context(), s, id, qty)
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), v)
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			id, err := productArg(args[0])
			if err != nil {
				return err
			}
			s, err := localShopper(cmd.Context(), shop)
			if err != nil {
				return err
			}
			v, err := shop.RemoveFromCart(cmd.Context(), s, id)
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), v)
			return nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			s, err := localShopper(cmd.Context(), shop)
			if err != nil {
				return err
			}
			if err := shop.ClearCart(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
			return nil
		}),
	}

	cmd.AddCommand(add, set, remove, clearCmd)
	return cmd
}

func (a *app) favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage the signed-in user's favorites",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			sess, err := signedIn(cmd.Context(), shop)
			if err != nil {
				return err
			}
			favs, err := shop.Favorites.List(cmd.Context(), sess.UserID)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), favs)
			return nil
		}),
	}

	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add a product to favorites",
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
			added, err := shop.AddFavorite(cmd.Context(), sess, id)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintf(cmd.OutOrStdout(), "Added product %d to favorites.\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Product %d is already a favorite.\n", id)
			}
			return nil
		}),
	}

	remove := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product from favorites",
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
			removed, err := shop.Favorites.Remove(cmd.Context(), sess.UserID, id)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed product %d from favorites.\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Product %d is not a favorite.\n", id)
			}
			return nil
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every favorite",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			sess, err := signedIn(cmd.Context(), shop)
			if err != nil {
				return err
			}
			if err := shop.Favorites.Clear(cmd.Context(), sess.UserID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Favorites cleared.")
			return nil
		}),
	}

	cmd.AddCommand(add, remove, clearCmd)
	return cmd
}

func (a *app) checkoutCmd() *cobra.Command {
	var form orders.Checkout
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the signed-in user's cart",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			sess, err := signedIn(cmd.Context(), shop)
			if err != nil {
				return err
			}
			o, fieldErrs, err := shop.Checkout(cmd.Context(), sess, form)
			if err != nil {
				if errors.Is(err, orders.ErrEmptyCart) {
					return errors.New("your cart is empty")
				}
				return err
			}
			if fieldErrs != nil {
				return fieldErrs
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Thank you for your order!")
			printOrder(cmd.OutOrStdout(), o)
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&form.FullName, "full-name", "", "Recipient name")
	f.StringVar(&form.Email, "email", "", "Contact email")
	f.StringVar(&form.Phone, "phone", "", "Contact phone")
	f.StringVar(&form.Address, "address", "", "Street address")
	f.StringVar(&form.City, "city", "", "City")
	f.StringVar(&form.PostalCode, "postal-code", "", "Postal code")
	f.StringVar(&form.DeliveryMethod, "delivery", orders.DeliveryCourier, "courier, pickup or selfPickup")
	f.StringVar(&form.DeliveryDate, "delivery-date", "", "Delivery date (not needed for selfPickup)")
	f.StringVar(&form.DeliveryTime, "delivery-time", "", "Delivery time slot")
	f.StringVar(&form.PaymentMethod, "payment", orders.PaymentCard, "card, sbp or cash")
	return cmd
}

func (a *app) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show the signed-in user's orders",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			sess, err := signedIn(cmd.Context(), shop)
			if err != nil {
				return err
			}
			mine, err := shop.Orders.ByUser(cmd.Context(), sess.UserID)
			if err != nil {
				return err
			}
			orders.SortNewestFirst(mine)
			printOrders(cmd.OutOrStdout(), mine)
			return nil
		}),
	}

	show := &cobra.Command{
		Use:   "show ORDER_ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			sess, err := signedIn(cmd.Context(), shop)
			if err != nil {
				return err
			}
			o, found, err := shop.Orders.ByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found || o.UserID != sess.UserID {
				return fmt.Errorf("order %s not found", args[0])
			}
			printOrder(cmd.OutOrStdout(), o)
			return nil
		}),
	}

	var outPath string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export the signed-in user's orders as an xlsx workbook",
		RunE: a.withShop(func(cmd *cobra.Command, args []string, shop *storefront.Storefront) error {
			sess, err := signedIn(cmd.Context(), shop)
			if err != nil {
				return err
			}
			mine, err := shop.Orders.ByUser(cmd.Context(), sess.UserID)
			if err != nil {
				return err
			}
			orders.SortNewestFirst(mine)

			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := orders.ExportXLSX(f, mine); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d orders to %s.\n", len(mine), outPath)
			return nil
		}),
	}
	export.Flags().StringVarP(&outPath, "out", "o", "orders.xlsx", "Output file")

	cmd.AddCommand(show, export)
	return cmd
}
