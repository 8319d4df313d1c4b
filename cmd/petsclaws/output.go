package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dreamware/petsclaws/internal/catalog"
	"github.com/dreamware/petsclaws/internal/orders"
	"github.com/dreamware/petsclaws/internal/reviews"
	"github.com/dreamware/petsclaws/internal/storefront"
)

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printProducts(w io.Writer, ps []catalog.Product) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tPET\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range ps {
		stock := "in stock"
		if !p.InStock {
			stock = "out of stock"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.PetType, p.Category, money(p.Price), stock)
	}
	tw.Flush()
}

func printProduct(w io.Writer, p catalog.Product, sum reviews.Summary) {
	fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(w, "  %s for %s\n", p.Category, p.PetType)
	price := money(p.Price)
	if p.OldPrice != nil {
		price += " (was " + money(*p.OldPrice) + ")"
	}
	fmt.Fprintf(w, "  Price: %s\n", price)
	var tags []string
	if p.InStock {
		tags = append(tags, "in stock")
	} else {
		tags = append(tags, "out of stock")
	}
	if p.IsNew {
		tags = append(tags, "new")
	}
	if p.IsSale {
		tags = append(tags, "sale")
	}
	fmt.Fprintf(w, "  %s\n", strings.Join(tags, ", "))
	fmt.Fprintf(w, "  Rating: %.1f from %d reviews\n", sum.Average, sum.Count)
	if p.Description != "" {
		fmt.Fprintf(w, "\n%s\n", p.Description)
	}
	for _, f := range p.Features {
		fmt.Fprintf(w, "  - %s\n", f)
	}
}

func printCart(w io.Writer, v storefront.CartView) {
	if len(v.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range v.Items {
		sub := decimal.NewFromFloat(l.Product.EffectivePrice()).Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", l.Product.ID, l.Product.Name, l.Quantity, money(l.Product.EffectivePrice()), sub.StringFixed(2))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %d items, %s\n", v.Totals.Items, money(v.Price))
}

func printOrders(w io.Writer, list []orders.Order) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No orders yet.")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tITEMS\tDELIVERY\tTOTAL")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			o.ID, o.CreatedAt.Local().Format(time.DateTime), o.Status, len(o.Items), o.DeliveryMethod, money(o.TotalPrice))
	}
	tw.Flush()
}

func printOrder(w io.Writer, o orders.Order) {
	fmt.Fprintf(w, "Order %s (%s)\n", o.ID, o.Status)
	fmt.Fprintf(w, "  Placed:   %s\n", o.CreatedAt.Local().Format(time.DateTime))
	delivery := o.DeliveryMethod
	if o.DeliveryDate != "" {
		delivery += " on " + o.DeliveryDate
		if o.DeliveryTime != "" {
			delivery += " " + o.DeliveryTime
		}
	}
	fmt.Fprintf(w, "  Delivery: %s (%s)\n", delivery, money(o.DeliveryPrice))
	fmt.Fprintf(w, "  Payment:  %s\n", o.PaymentMethod)
	a := o.ShippingAddress
	fmt.Fprintf(w, "  Ship to:  %s, %s, %s %s, %s\n", a.FullName, a.Address, a.City, a.PostalCode, a.Phone)
	for _, l := range o.Items {
		fmt.Fprintf(w, "  %3d x %s\n", l.Quantity, l.Product.Name)
	}
	fmt.Fprintf(w, "  Total:    %s\n", money(o.TotalPrice))
}

func printReviews(w io.Writer, rs []reviews.Review, sum reviews.Summary) {
	if sum.Count == 0 {
		fmt.Fprintln(w, "No reviews yet.")
		return
	}
	fmt.Fprintf(w, "Average %.1f from %d reviews\n", sum.Average, sum.Count)
	for _, b := range sum.Histogram {
		fmt.Fprintf(w, "  %d★ %-20s %3d%%\n", b.Rating, strings.Repeat("█", b.Percentage/5), b.Percentage)
	}
	for _, r := range rs {
		fmt.Fprintf(w, "\n#%d %s, %s, %d★ (helpful: %d)\n", r.ID, r.Author, r.Date, r.Rating, r.Helpful)
		if r.Text != "" {
			fmt.Fprintf(w, "  %s\n", r.Text)
		}
	}
}
