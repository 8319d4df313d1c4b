package storefront

import (
	"context"

	"github.com/dreamware/petsclaws/internal/cart"
	"github.com/dreamware/petsclaws/internal/identity"
)

// Shopper is whoever owns a cart: a signed-in user or an anonymous guest.
type Shopper struct {
	UserID  string
	GuestID string
}

// UserShopper is the shopper of a signed-in session.
func UserShopper(sess identity.Session) Shopper {
	return Shopper{UserID: sess.UserID}
}

// GuestShopper is an anonymous shopper. cart.DefaultGuest is the local one.
func GuestShopper(guestID string) Shopper {
	return Shopper{GuestID: guestID}
}

// IsGuest reports whether the shopper is anonymous.
func (s Shopper) IsGuest() bool { return s.UserID == "" }

// CartView is a cart with its derived totals.
type CartView struct {
	Items []cart.Line `json:"items"`
	cart.Totals
}

func view(lines []cart.Line) CartView {
	return CartView{Items: lines, Totals: cart.Compute(lines)}
}

// Cart returns the cart handle of s.
func (sf *Storefront) Cart(s Shopper) *cart.Cart {
	if s.IsGuest() {
		return sf.Carts.Guest(s.GuestID)
	}
	return sf.Carts.User(s.UserID)
}

// ViewCart returns the lines and totals of s.
func (sf *Storefront) ViewCart(ctx context.Context, s Shopper) (CartView, error) {
	lines, err := sf.Cart(s).Lines(ctx)
	if err != nil {
		return CartView{}, err
	}
	return view(lines), nil
}

// AddToCart adds quantity units of the catalog product productID.
func (sf *Storefront) AddToCart(ctx context.Context, s Shopper, productID, quantity int) (CartView, error) {
	p, err := sf.product(productID)
	if err != nil {
		return CartView{}, err
	}
	lines, err := sf.Cart(s).Add(ctx, p, quantity)
	if err != nil {
		return CartView{}, err
	}
	return view(lines), nil
}

// SetCartQuantity replaces the quantity of productID; <= 0 removes it.
func (sf *Storefront) SetCartQuantity(ctx context.Context, s Shopper, productID, quantity int) (CartView, error) {
	lines, err := sf.Cart(s).SetQuantity(ctx, productID, quantity)
	if err != nil {
		return CartView{}, err
	}
	return view(lines), nil
}

// RemoveFromCart deletes productID from the cart of s.
func (sf *Storefront) RemoveFromCart(ctx context.Context, s Shopper, productID int) (CartView, error) {
	lines, err := sf.Cart(s).Remove(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	return view(lines), nil
}

// ClearCart empties the cart of s.
func (sf *Storefront) ClearCart(ctx context.Context, s Shopper) error {
	return sf.Cart(s).Clear(ctx)
}
